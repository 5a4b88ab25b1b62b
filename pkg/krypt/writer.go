package krypt

import (
	"fmt"
	"io"
)

// Writer wraps an io.WriteSeeker and enciphers every byte written through
// it. A fresh Writer starts in identity state; InitState re-keys it in
// place.
type Writer struct {
	dst     io.WriteSeeker
	state   state
	scratch []byte
	owns    bool
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WriterOwnsDest makes Close release the underlying stream.
func WriterOwnsDest() WriterOption {
	return func(w *Writer) { w.owns = true }
}

// NewWriter creates an enciphering writer over dst, initially in identity
// state.
func NewWriter(dst io.WriteSeeker, opts ...WriterOption) *Writer {
	w := &Writer{dst: dst}
	w.state.init(IdentitySeed, false)
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// EnsureWriter returns a cipher writer over w, reusing w itself when it is
// already one. The reused stream must be in identity state at the handoff
// point; see EnsureReader.
func EnsureWriter(w io.Writer) (*Writer, error) {
	if kw, ok := w.(*Writer); ok {
		if !kw.IsIdenticalCrypto() {
			return nil, ErrCipherState
		}
		return kw, nil
	}
	if ws, ok := w.(io.WriteSeeker); ok {
		return NewWriter(ws), nil
	}
	return nil, fmt.Errorf("krypt: stream %T is not seekable", w)
}

// InitState re-keys the cipher, resetting its byte counter. It reports
// whether the new configuration is the identity cipher.
func (w *Writer) InitState(seed int32, additive bool) bool {
	return w.state.init(seed, additive)
}

// IsIdenticalCrypto reports whether the current state is the pass-through
// cipher.
func (w *Writer) IsIdenticalCrypto() bool {
	return w.state.identical
}

// Write enciphers p and writes it to the underlying stream. The caller's
// buffer is left untouched; the byte counter advances by the count
// actually written through.
func (w *Writer) Write(p []byte) (int, error) {
	w.scratch = append(w.scratch[:0], p...)
	w.state.transform(w.scratch)
	n, err := w.dst.Write(w.scratch)
	w.state.advance(n)
	return n, err
}

// Seek forwards to the underlying stream, keeping the byte counter in step
// with the new position. Rewinding a non-identical additive cipher before
// the start of its run fails with ErrInvalidSeek.
func (w *Writer) Seek(offset int64, whence int) (int64, error) {
	cur, next, err := seekTarget(w.dst, offset, whence)
	if err != nil {
		return 0, err
	}
	if err := w.state.seekCounter(cur, next); err != nil {
		return cur, err
	}
	return w.dst.Seek(next, io.SeekStart)
}

// Close releases the underlying stream when the Writer owns it.
func (w *Writer) Close() error {
	if !w.owns {
		return nil
	}
	if c, ok := w.dst.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
