// Package namespace resolves a namespace spec — a literal, the HOST
// sentinel, a zero-argument function, or a (module, function,
// arguments) style call — into a '/'-joined path fragment inserted
// between a cache's root directory and its name.
package namespace

import (
	"fmt"
	"os"
	"strings"

	"github.com/javi11/filecache/internal/cerrors"
)

// Part is one element of a namespace spec. Implementations are
// provided by the constructors below; callers outside this package
// should not implement it themselves.
type Part interface {
	resolve() (string, error)
}

type literal string

func (l literal) resolve() (string, error) { return string(l), nil }

// Literal returns a namespace part that resolves to s verbatim.
func Literal(s string) Part { return literal(s) }

type hostPart struct{}

func (hostPart) resolve() (string, error) {
	h, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("namespace: resolve hostname: %w", err)
	}
	return h, nil
}

// Host is the HOST sentinel: resolves to the local hostname.
var Host Part = hostPart{}

type funcPart func() (string, error)

func (f funcPart) resolve() (string, error) { return f() }

// Func wraps a zero-argument function as a namespace part.
func Func(fn func() (string, error)) Part { return funcPart(fn) }

type callPart struct {
	fn func(args ...any) (string, error)
	// module is kept only for documentation; args are the bound
	// arguments passed to fn on resolve. The source models these as a
	// (module, function, arguments) triple dispatched dynamically,
	// which Go expresses more directly as fn plus its bound args.
	module string
	args   []any
}

func (c callPart) resolve() (string, error) { return c.fn(c.args...) }

// Call wraps a function together with bound arguments, mirroring the
// source's (module, function, arguments) triple.
func Call(module string, fn func(args ...any) (string, error), args ...any) Part {
	return callPart{fn: fn, module: module, args: args}
}

// Resolve expands a sequence of namespace parts into a '/'-joined path
// fragment. A nil/empty spec yields the empty fragment. Every
// resolved part must be free of '/'.
func Resolve(spec []Part) (string, error) {
	if len(spec) == 0 {
		return "", nil
	}
	segments := make([]string, 0, len(spec))
	for _, part := range spec {
		s, err := part.resolve()
		if err != nil {
			return "", err
		}
		if strings.ContainsRune(s, '/') {
			return "", fmt.Errorf("%w: %q contains '/'", cerrors.ErrBadNamespacePart, s)
		}
		if s == "" {
			continue
		}
		segments = append(segments, s)
	}
	return strings.Join(segments, "/"), nil
}
