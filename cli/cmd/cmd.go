package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/micron/lang"
	"github.com/ardnew/micron/log"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdout returns the writer kong was configured with, or [os.Stdout].
func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Kong != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// stderr returns the writer kong was configured with, or [os.Stderr].
func stderr(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Kong != nil && ktx.Stderr != nil {
		return ktx.Stderr
	}

	return os.Stderr
}

// kongVar returns the kong variable named key, if the kong context has one.
func kongVar(ctx context.Context, key string) (string, bool) {
	ktx := kongContextFrom(ctx)
	if ktx == nil || ktx.Kong == nil || ktx.Model == nil {
		return "", false
	}

	v, ok := ktx.Model.Vars()[key]

	return v, ok
}

// source is one unit of program text. Each source is parsed on its own, so a
// missing final ";" in one file never joins it to the next.
type source struct {
	name string
	text string
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// readSources returns the inline sources followed by the contents of the
// files at paths, in order.
//
// Files are deduplicated by resolving symlinks and comparing device/inode
// pairs, so each file runs once. All occurrences of "-" read standard input
// once, at the position of the first.
func readSources(stdin io.Reader, inline, paths []string) ([]source, error) {
	srcs := make([]source, 0, len(inline)+len(paths))

	for i, text := range inline {
		srcs = append(srcs, source{name: "-e#" + strconv.Itoa(i+1), text: text})
	}

	seen := make(map[fileKey]struct{})
	readStdin := false

	for _, path := range paths {
		if path == stdinSource {
			if readStdin {
				continue
			}

			readStdin = true

			data, err := io.ReadAll(stdin)
			if err != nil {
				return nil, ErrReadSource.With(slog.String("source", "stdin")).Wrap(err)
			}

			srcs = append(srcs, source{name: "stdin", text: string(data)})

			continue
		}

		text, ok, err := readUniqueFile(path, seen)
		if err != nil {
			return nil, ErrReadSource.With(slog.String("source", path)).Wrap(err)
		}

		if ok {
			srcs = append(srcs, source{name: path, text: text})
		}
	}

	return srcs, nil
}

// readUniqueFile reads the file at path unless it has been seen before.
func readUniqueFile(path string, seen map[fileKey]struct{}) (string, bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", false, err
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return "", false, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", false, err
	}

	if key, ok := makeFileKey(info); ok {
		if _, exists := seen[key]; exists {
			return "", false, nil
		}

		seen[key] = struct{}{}
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return "", false, err
	}

	return string(data), true, nil
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

// newInterpreter returns an interpreter that traces through the package-level
// logger.
func newInterpreter() *lang.Interpreter {
	return lang.NewInterpreter(
		lang.WithLogger(log.With(slog.String("component", "lang"))),
	)
}

// execSources executes srcs in order in one interpreter session and calls
// each with every statement result. Execution stops at the first error, after
// a source snippet is written to errOut when the error has a position.
func execSources(
	ctx context.Context,
	in *lang.Interpreter,
	srcs []source,
	errOut io.Writer,
	each func(lang.Result) error,
) error {
	for _, src := range srcs {
		results, err := in.Exec(ctx, src.text)

		if each != nil {
			for _, r := range results {
				if werr := each(r); werr != nil {
					return werr
				}
			}
		}

		if err != nil {
			if snip := lang.Snippet(src.text, err); snip != "" && errOut != nil {
				fmt.Fprintln(errOut, snip)
			}

			return ErrExecute.With(slog.String("source", src.name)).Wrap(err)
		}

		log.DebugContext(ctx, "executed source",
			slog.String("source", src.name),
			slog.Int("statements", len(results)),
		)
	}

	return nil
}
