package krypt

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// Seeds spanning the interesting cipher classes: identity, small
// non-identity, large non-identity.
var testSeeds = []int32{248, 3328, 28927}

func encodeAll(t *testing.T, seed int32, additive bool, data []byte) []byte {
	t.Helper()
	buf := &seekableBuffer{Buffer: &bytes.Buffer{}}
	w := NewWriter(buf)
	w.InitState(seed, additive)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("write: %v", err)
	}
	return buf.Buffer.Bytes()
}

func decodeAll(t *testing.T, seed int32, additive bool, data []byte) []byte {
	t.Helper()
	r := NewReader(bytes.NewReader(data))
	r.InitState(seed, additive)
	out := make([]byte, len(data))
	if _, err := io.ReadFull(r, out); err != nil {
		t.Fatalf("read: %v", err)
	}
	return out
}

func TestRoundTrip(t *testing.T) {
	data := make([]byte, 1024)
	for i := range data {
		data[i] = byte(i * 7)
	}
	for _, seed := range testSeeds {
		for _, additive := range []bool{false, true} {
			enc := encodeAll(t, seed, additive, data)
			dec := decodeAll(t, seed, additive, enc)
			if !bytes.Equal(dec, data) {
				t.Errorf("seed %d additive %v: round trip mismatch", seed, additive)
			}
		}
	}
}

func TestRoundTripAcrossChunks(t *testing.T) {
	// Chunk boundaries must not influence the transform: one 64-byte
	// write decodes identically when read back in uneven pieces.
	data := make([]byte, 64)
	for i := range data {
		data[i] = byte(255 - i)
	}
	enc := encodeAll(t, 28927, true, data)

	r := NewReader(bytes.NewReader(enc))
	r.InitState(28927, true)
	var dec []byte
	for _, n := range []int{1, 3, 10, 50} {
		chunk := make([]byte, n)
		if _, err := io.ReadFull(r, chunk); err != nil {
			t.Fatalf("read chunk: %v", err)
		}
		dec = append(dec, chunk...)
	}
	if !bytes.Equal(dec, data) {
		t.Error("chunked decode mismatch")
	}
}

func TestIdentityPassThrough(t *testing.T) {
	data := []byte{10, 20, 30, 40}
	for _, seed := range []int32{248, 498, -2} {
		if !IsIdenticalCrypto(seed, false) {
			t.Errorf("seed %d: expected identity configuration", seed)
		}
		if out := encodeAll(t, seed, false, data); !bytes.Equal(out, data) {
			t.Errorf("seed %d: output %v, want %v", seed, out, data)
		}
	}
	if IsIdenticalCrypto(248, true) {
		t.Error("additive 248 must not be identity")
	}
}

func TestFirstByteExemption(t *testing.T) {
	data := []byte{10, 20, 30, 40}
	for _, seed := range testSeeds {
		for _, additive := range []bool{false, true} {
			enc := encodeAll(t, seed, additive, data)
			if enc[0] != data[0] {
				t.Errorf("seed %d additive %v: first byte %d, want %d",
					seed, additive, enc[0], data[0])
			}
		}
	}

	t.Run("AfterRekey", func(t *testing.T) {
		buf := &seekableBuffer{Buffer: &bytes.Buffer{}}
		w := NewWriter(buf)
		w.InitState(3328, false)
		w.Write([]byte{1, 2, 3})
		w.InitState(28927, false)
		w.Write([]byte{77})
		out := buf.Buffer.Bytes()
		if out[3] != 77 {
			t.Errorf("first byte after re-key is %d, want 77", out[3])
		}
	})
}

func TestSubstitutionTable(t *testing.T) {
	// With additive off, the transform is a pure substitution: encoding
	// every byte value (behind a pad so none sits at counter zero) must
	// produce a permutation, deterministically.
	all := make([]byte, 257)
	for i := 1; i < len(all); i++ {
		all[i] = byte(i - 1)
	}
	enc := encodeAll(t, 3328, false, all)
	enc2 := encodeAll(t, 3328, false, all)
	if !bytes.Equal(enc, enc2) {
		t.Fatal("table construction is not deterministic")
	}
	seen := make(map[byte]bool)
	for _, b := range enc[1:] {
		if seen[b] {
			t.Fatalf("byte %d appears twice: table is not a permutation", b)
		}
		seen[b] = true
	}
	if bytes.Equal(enc[1:], all[1:]) {
		t.Error("seed 3328 must not be the identity table")
	}

	// The decode table is the strict inverse.
	if dec := decodeAll(t, 3328, false, enc); !bytes.Equal(dec, all) {
		t.Error("decode table is not the inverse of the encode table")
	}
}

func TestScenarioSeed3328(t *testing.T) {
	data := []byte{10, 20, 30, 40}
	enc := encodeAll(t, 3328, false, data)
	if enc[0] != 10 {
		t.Errorf("first byte %d, want 10", enc[0])
	}
	// The tail is the substitution of 20, 30, 40: position independent,
	// so re-encoding each at any non-zero offset agrees.
	probe := encodeAll(t, 3328, false, []byte{0, 20, 30, 40})
	if !bytes.Equal(enc[1:], probe[1:]) {
		t.Error("substitution is not position independent without additive keying")
	}
}

func TestSeek(t *testing.T) {
	data := make([]byte, 32)
	enc := encodeAll(t, 3328, true, data)

	t.Run("BackwardAdditiveRejected", func(t *testing.T) {
		r := NewReader(bytes.NewReader(enc))
		r.InitState(3328, true)
		if _, err := r.Seek(-1, io.SeekCurrent); !errors.Is(err, ErrInvalidSeek) {
			t.Errorf("got %v, want ErrInvalidSeek", err)
		}
	})

	t.Run("ForwardAdditive", func(t *testing.T) {
		r := NewReader(bytes.NewReader(enc))
		r.InitState(3328, true)
		if _, err := r.Seek(8, io.SeekCurrent); err != nil {
			t.Fatalf("forward seek: %v", err)
		}
		out := make([]byte, len(enc)-8)
		if _, err := io.ReadFull(r, out); err != nil {
			t.Fatalf("read after seek: %v", err)
		}
		if !bytes.Equal(out, data[8:]) {
			t.Error("decode after forward seek mismatch")
		}
	})

	t.Run("BackwardNonAdditive", func(t *testing.T) {
		r := NewReader(bytes.NewReader(enc))
		if _, err := r.Seek(4, io.SeekStart); err != nil {
			t.Fatalf("seek: %v", err)
		}
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			t.Fatalf("backward identity seek: %v", err)
		}
	})
}

func TestEnsure(t *testing.T) {
	buf := &seekableBuffer{Buffer: &bytes.Buffer{}}
	w := NewWriter(buf)

	got, err := EnsureWriter(w)
	if err != nil {
		t.Fatalf("ensure identity writer: %v", err)
	}
	if got != w {
		t.Error("identity writer was wrapped instead of reused")
	}

	w.InitState(3328, false)
	if _, err := EnsureWriter(w); !errors.Is(err, ErrCipherState) {
		t.Errorf("got %v, want ErrCipherState", err)
	}

	r := NewReader(bytes.NewReader(nil))
	r.InitState(3328, true)
	if _, err := EnsureReader(r); !errors.Is(err, ErrCipherState) {
		t.Errorf("got %v, want ErrCipherState", err)
	}
}

func TestWriteKeepsCallerBuffer(t *testing.T) {
	buf := &seekableBuffer{Buffer: &bytes.Buffer{}}
	w := NewWriter(buf)
	w.InitState(3328, false)
	data := []byte{9, 9, 9, 9}
	keep := append([]byte(nil), data...)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !bytes.Equal(data, keep) {
		t.Error("Write mutated the caller's buffer")
	}
}

type seekableBuffer struct {
	Buffer *bytes.Buffer
	pos    int64
}

func (s *seekableBuffer) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = s.pos + offset
	case io.SeekEnd:
		newPos = int64(s.Buffer.Len()) + offset
	}
	s.pos = newPos
	return newPos, nil
}

func (s *seekableBuffer) Write(p []byte) (n int, err error) {
	for int64(s.Buffer.Len()) < s.pos {
		s.Buffer.WriteByte(0)
	}
	if s.pos < int64(s.Buffer.Len()) {
		data := s.Buffer.Bytes()
		n = copy(data[s.pos:], p)
		if n < len(p) {
			m, err := s.Buffer.Write(p[n:])
			n += m
			if err != nil {
				return n, err
			}
		}
	} else {
		n, err = s.Buffer.Write(p)
	}
	s.pos += int64(n)
	return n, err
}
