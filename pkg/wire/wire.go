// Package wire implements the scalar primitives shared by every container
// format: 32-bit little-endian signed integers and length-prefixed byte
// strings.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ReadInt reads a 32-bit little-endian signed integer.
func ReadInt(r io.Reader) (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("read int: %w", err)
	}
	return int32(binary.LittleEndian.Uint32(buf[:])), nil
}

// WriteInt writes a 32-bit little-endian signed integer.
func WriteInt(w io.Writer, v int32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("write int: %w", err)
	}
	return nil
}

// ReadString reads a length-prefixed byte string: a 32-bit little-endian
// length followed by that many raw bytes. No terminator, no encoding
// translation.
func ReadString(r io.Reader) (string, error) {
	n, err := ReadInt(r)
	if err != nil {
		return "", fmt.Errorf("read string length: %w", err)
	}
	if n < 0 {
		return "", fmt.Errorf("negative string length %d", n)
	}
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("read string body: %w", err)
	}
	return string(buf), nil
}

// WriteString writes a length-prefixed byte string.
func WriteString(w io.Writer, s string) error {
	if err := WriteInt(w, int32(len(s))); err != nil {
		return fmt.Errorf("write string length: %w", err)
	}
	if len(s) == 0 {
		return nil
	}
	if _, err := io.WriteString(w, s); err != nil {
		return fmt.Errorf("write string body: %w", err)
	}
	return nil
}

// ReadBool reads an integer-encoded boolean.
func ReadBool(r io.Reader) (bool, error) {
	v, err := ReadInt(r)
	return v != 0, err
}

// WriteBool writes a boolean as 0 or 1.
func WriteBool(w io.Writer, b bool) error {
	if b {
		return WriteInt(w, 1)
	}
	return WriteInt(w, 0)
}

// WriteIntOpt writes v, unless skip is set and the field is not required,
// in which case fallback is written instead. Used by optimized writes to
// elide fields the reader recovers from defaults.
func WriteIntOpt(w io.Writer, v, fallback int32, skip, required bool) error {
	if skip && !required {
		v = fallback
	}
	return WriteInt(w, v)
}

// WriteStringOpt is the string counterpart of WriteIntOpt.
func WriteStringOpt(w io.Writer, s, fallback string, skip, required bool) error {
	if skip && !required {
		s = fallback
	}
	return WriteString(w, s)
}
