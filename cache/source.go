package cache

import (
	"bytes"
	"io"

	"github.com/javi11/filecache/internal/cerrors"
)

type sourceKind int

const (
	kindBytes sourceKind = iota
	kindChunks
	kindReader
	kindFunc
)

// Source is the closed sum type of producer shapes the cache accepts:
// raw bytes, a sequence of byte chunks (concatenated), a lazy byte
// stream, or a zero-argument function returning any of the above. The
// function form is resolved exactly once, at the start of a write.
type Source struct {
	kind   sourceKind
	bytes  []byte
	chunks [][]byte
	stream io.Reader
	thunk  func() (Source, error)
}

// BytesSource wraps a raw byte slice.
func BytesSource(b []byte) Source {
	return Source{kind: kindBytes, bytes: b}
}

// ChunksSource wraps a sequence of byte chunks, concatenated in order.
func ChunksSource(chunks [][]byte) Source {
	return Source{kind: kindChunks, chunks: chunks}
}

// ReaderSource wraps a lazy byte stream.
func ReaderSource(r io.Reader) Source {
	return Source{kind: kindReader, stream: r}
}

// FuncSource wraps a zero-argument function that produces a Source
// when called. It is invoked at most once per write.
func FuncSource(f func() (Source, error)) Source {
	return Source{kind: kindFunc, thunk: f}
}

// reader resolves the source to a single io.Reader, calling the thunk
// (if any) exactly once.
func (s Source) reader() (io.Reader, error) {
	switch s.kind {
	case kindBytes:
		return bytes.NewReader(s.bytes), nil
	case kindChunks:
		readers := make([]io.Reader, len(s.chunks))
		for i, c := range s.chunks {
			readers[i] = bytes.NewReader(c)
		}
		return io.MultiReader(readers...), nil
	case kindReader:
		if s.stream == nil {
			return nil, cerrors.ErrBadProducer
		}
		return s.stream, nil
	case kindFunc:
		if s.thunk == nil {
			return nil, cerrors.ErrBadProducer
		}
		inner, err := s.thunk()
		if err != nil {
			return nil, err
		}
		return inner.reader()
	default:
		return nil, cerrors.ErrBadProducer
	}
}

// resolve invokes the thunk (if any) exactly once, returning a Source
// that is directly readable (bytes, chunks, or an already-open
// stream). Writers must call resolve before attempting any retry loop
// around reader(), so a retried write never re-invokes a producer
// function.
func (s Source) resolve() (Source, error) {
	if s.kind != kindFunc {
		return s, nil
	}
	if s.thunk == nil {
		return Source{}, cerrors.ErrBadProducer
	}
	inner, err := s.thunk()
	if err != nil {
		return Source{}, err
	}
	return inner.resolve()
}

// replayable reports whether reader() can be called more than once
// without changing the bytes it yields. Bytes and chunk producers
// rebuild a fresh reader over their stored slices every call; an
// already-open stream cannot be rewound, so it is not replayable.
func (s Source) replayable() bool {
	return s.kind == kindBytes || s.kind == kindChunks
}

// toSource converts a loosely-typed producer argument into a Source,
// mirroring the duck-typed acceptance of the source system but as an
// explicit, closed type switch. Anything not recognized is
// bad_producer.
func toSource(v any) (Source, error) {
	switch t := v.(type) {
	case Source:
		return t, nil
	case []byte:
		return BytesSource(t), nil
	case [][]byte:
		return ChunksSource(t), nil
	case string:
		return BytesSource([]byte(t)), nil
	case io.Reader:
		return ReaderSource(t), nil
	case func() (any, error):
		return FuncSource(func() (Source, error) {
			produced, err := t()
			if err != nil {
				return Source{}, err
			}
			return toSource(produced)
		}), nil
	default:
		return Source{}, cerrors.ErrBadProducer
	}
}
