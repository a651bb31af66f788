package lang

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/goccy/go-yaml"
)

// Native converts v to plain Go data suitable for serialization.
//
// Integers become int64, or decimal text when out of range. Floats become
// float64 when their precision is at most [DefaultPrecision] and their value
// is finite, otherwise decimal text. Dicts become map[string]any.
func Native(v Value) any {
	switch v.kind {
	case KindInteger:
		n := v.Int()
		if n.IsInt64() {
			return n.Int64()
		}

		return n.String()

	case KindFloat:
		f := v.Float()
		if f.Prec() <= DefaultPrecision && !f.IsInf() {
			x, _ := f.Float64()

			return x
		}

		return formatFloat(f)

	case KindString:
		return v.str

	case KindDict:
		m := make(map[string]any, len(v.dict))
		for k, e := range v.dict {
			m[k] = Native(e)
		}

		return m

	default:
		return nil
	}
}

// Native returns the bindings of s as plain Go data.
func (s *Scope) Native() map[string]any {
	m := make(map[string]any, len(s.vars))
	for name, v := range s.vars {
		m[name] = Native(v)
	}

	return m
}

// Native returns every visible binding of e as plain Go data. Inner scopes
// shadow outer ones.
func (e *Environment) Native() map[string]any {
	m := make(map[string]any)

	for i := range e.scopes {
		for name, v := range e.scopes[i].vars {
			m[name] = Native(v)
		}
	}

	return m
}

// MarshalJSON encodes the visible bindings of e as a JSON object.
func (e *Environment) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Native())
}

// MarshalJSONIndent encodes the visible bindings of e as an indented JSON
// object. A non-positive indent produces compact output.
func MarshalJSONIndent(e *Environment, indent int) ([]byte, error) {
	if indent <= 0 {
		return json.Marshal(e.Native())
	}

	return json.MarshalIndent(e.Native(), "", strings.Repeat(" ", indent))
}

// MarshalYAML encodes the visible bindings of e as a YAML mapping. A
// non-positive indent produces flow style.
func MarshalYAML(ctx context.Context, e *Environment, indent int) ([]byte, error) {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	return yaml.MarshalContext(ctx, e.Native(), opts...)
}
