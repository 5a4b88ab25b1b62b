package gexfile

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/gmextkit/gexpack/pkg/krypt"
	"github.com/gmextkit/gexpack/pkg/wire"
)

// writeBlock compresses one payload slot into memory, then frames it as
// its packed byte length followed by the raw zlib stream. A nil source is
// an empty slot and becomes a zero-length block.
func writeBlock(w io.Writer, src io.Reader, level int) error {
	if src == nil {
		return wire.WriteInt(w, 0)
	}
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return fmt.Errorf("compressor: %w", err)
	}
	if _, err := io.Copy(zw, src); err != nil {
		return fmt.Errorf("compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("flush compressor: %w", err)
	}
	if err := wire.WriteInt(w, int32(buf.Len())); err != nil {
		return err
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write block: %w", err)
	}
	return nil
}

// readBlock reads one framed block and decompresses it into sink. The
// packed bytes are consumed exactly; a zero-length block writes nothing.
func readBlock(r io.Reader, sink io.Writer) error {
	n, err := wire.ReadInt(r)
	if err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("negative block length %d", n)
	}
	if n == 0 {
		return nil
	}
	packed := make([]byte, n)
	if _, err := io.ReadFull(r, packed); err != nil {
		return fmt.Errorf("read block: %w", err)
	}
	zr, err := zlib.NewReader(bytes.NewReader(packed))
	if err != nil {
		return fmt.Errorf("decompressor: %w", err)
	}
	if _, err := io.Copy(sink, zr); err != nil {
		zr.Close()
		return fmt.Errorf("decompress: %w", err)
	}
	return zr.Close()
}

// skipBlock seeks past one framed block without decompressing it.
func skipBlock(r *krypt.Reader) error {
	n, err := wire.ReadInt(r)
	if err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("negative block length %d", n)
	}
	if n > 0 {
		if _, err := r.Seek(int64(n), io.SeekCurrent); err != nil {
			return err
		}
	}
	return nil
}

// WriteData writes a generic data blob (DAT): the key seed through an
// identity cipher, then the payload region, one block per source. Nil
// sources become zero-length blocks.
func WriteData(w io.WriteSeeker, seed int32, sources []io.Reader, level int) error {
	kw := krypt.NewWriter(w)
	defer kw.Close()
	if err := wire.WriteInt(kw, seed); err != nil {
		return fmt.Errorf("write key seed: %w", err)
	}
	kw.InitState(seed, false)
	for i, src := range sources {
		if err := writeBlock(kw, src, level); err != nil {
			return fmt.Errorf("write payload %d: %w", i, err)
		}
	}
	return nil
}

// ReadData reads a generic data blob into the given sinks, one block per
// sink in order. Nil sinks skip their block. The slot count is not
// recorded in the file; the caller supplies it. Returns the key seed.
func ReadData(r io.ReadSeeker, sinks []io.Writer) (int32, error) {
	kr := krypt.NewReader(r)
	defer kr.Close()
	seed, err := wire.ReadInt(kr)
	if err != nil {
		return 0, fmt.Errorf("read key seed: %w", err)
	}
	kr.InitState(seed, false)
	for i, sink := range sinks {
		if sink == nil {
			if err := skipBlock(kr); err != nil {
				return seed, fmt.Errorf("skip payload %d: %w", i, err)
			}
			continue
		}
		if err := readBlock(kr, sink); err != nil {
			return seed, fmt.Errorf("read payload %d: %w", i, err)
		}
	}
	return seed, nil
}
