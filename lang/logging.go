package lang

import (
	"log/slog"
	"sort"
)

func sortedKeys[T any](m map[string]T) []string {
	if len(m) == 0 {
		return nil
	}

	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// valueAttr describes v for structured logging without rendering nested
// dictionaries.
func valueAttr(key string, v Value) slog.Attr {
	switch v.kind {
	case KindDict:
		return slog.Group(key,
			slog.String("kind", v.kind.String()),
			slog.Int("len", len(v.dict)),
		)

	default:
		return slog.Group(key,
			slog.String("kind", v.kind.String()),
			slog.String("value", v.String()),
		)
	}
}
