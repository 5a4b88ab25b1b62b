// Package gexfile reads and writes the GameMaker extension container
// files: editable projects (GED/GMP), compiled packages (GEX) and generic
// data blobs (DAT). A package file is a cipher-wrapped metadata tree
// followed by a payload region of independently zlib-compressed blocks.
package gexfile

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zlib"

	"github.com/gmextkit/gexpack/pkg/extension"
	"github.com/gmextkit/gexpack/pkg/krypt"
	"github.com/gmextkit/gexpack/pkg/wire"
)

// Signature is the 32-bit magic opening every compiled package file.
const Signature int32 = 1234321

// ErrInvalidSignature reports a package file that does not open with
// Signature.
var ErrInvalidSignature = errors.New("gexfile: invalid package signature")

// SourceFunc resolves the payload bytes for one slot during a save. It
// receives the logical name and the current source hint and returns a
// byte source together with the (possibly rewritten) hint. A nil source
// skips the slot: a zero-length block is emitted. The container closes
// the returned source.
type SourceFunc func(name, source string) (io.ReadCloser, string, error)

// SinkFunc resolves the destination for one payload slot during a load.
// A nil sink skips the slot: its block is seeked past without
// decompression. The container closes the returned sink; the returned
// hint is recorded on the entry.
type SinkFunc func(name, source string) (io.WriteCloser, string, error)

// File orchestrates loading and saving one extension. A File may be
// reused across successive operations once the previous one completed or
// errored.
type File struct {
	Package *extension.Package

	// Level is the zlib level for payload blocks.
	Level int

	slots []io.ReadCloser
}

// New creates a File holding an empty package, compressing payloads at
// the default level.
func New() *File {
	return &File{
		Package: extension.NewPackage(),
		Level:   zlib.DefaultCompression,
	}
}

// release drops per-operation state. Runs at the end of every load and
// save, error paths included.
func (f *File) release() {
	for _, src := range f.slots {
		if src != nil {
			src.Close()
		}
	}
	f.slots = nil
}

// LoadProject reads an editable project (GED/GMP): a bare prototype
// entry, no cipher, no payload region.
func (f *File) LoadProject(r io.Reader) error {
	return extension.ReadEntry(r, f.Package.Proto)
}

// SaveProject writes an editable project.
func (f *File) SaveProject(w io.Writer, optimize bool) error {
	return extension.WriteEntry(w, f.Package.Proto, optimize)
}

// LoadPackage reads a compiled package (GEX): the raw signature, then the
// cipher-wrapped package entry and payload region. Payload destinations
// are resolved per slot through resolve, in walk order.
func (f *File) LoadPackage(r io.ReadSeeker, resolve SinkFunc) error {
	defer f.release()

	sig, err := wire.ReadInt(r)
	if err != nil {
		return fmt.Errorf("read signature: %w", err)
	}
	if sig != Signature {
		return fmt.Errorf("%w: %d", ErrInvalidSignature, sig)
	}

	kr := krypt.NewReader(r)
	defer kr.Close()
	if err := extension.ReadEntry(kr, f.Package); err != nil {
		return fmt.Errorf("read package entry: %w", err)
	}

	for i, ref := range f.walkSlots() {
		sink, source, err := resolve(ref.name, ref.source)
		if err != nil {
			return fmt.Errorf("resolve payload %q: %w", ref.name, err)
		}
		if sink == nil {
			if err := skipBlock(kr); err != nil {
				return fmt.Errorf("skip payload %d: %w", i, err)
			}
			continue
		}
		err = readBlock(kr, sink)
		if cerr := sink.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("read payload %q: %w", ref.name, err)
		}
		ref.setSource(source)
	}
	return nil
}

// SavePackage writes a compiled package. Payload sources are resolved per
// slot through resolve after the package entry is written, then the
// payload region is compressed and framed in order.
func (f *File) SavePackage(w io.WriteSeeker, resolve SourceFunc, optimize bool) error {
	defer f.release()

	if err := wire.WriteInt(w, Signature); err != nil {
		return fmt.Errorf("write signature: %w", err)
	}

	kw := krypt.NewWriter(w)
	defer kw.Close()
	if err := extension.WriteEntry(kw, f.Package, optimize); err != nil {
		return fmt.Errorf("write package entry: %w", err)
	}

	for _, ref := range f.walkSlots() {
		src, source, err := resolve(ref.name, ref.source)
		if err != nil {
			return fmt.Errorf("resolve payload %q: %w", ref.name, err)
		}
		f.slots = append(f.slots, src)
		if src != nil {
			ref.setSource(source)
		}
	}

	for i, src := range f.slots {
		if err := writeBlock(kw, src, f.Level); err != nil {
			return fmt.Errorf("write payload %d: %w", i, err)
		}
	}
	return nil
}

// slotRef is one payload slot in walk order: its logical name, the
// current source hint and a setter recording a rewritten hint.
type slotRef struct {
	name      string
	source    string
	setSource func(string)
}

// walkSlots lists the payload slots of the prototype in on-disk order:
// the help file first when one is named, then each content's data entry.
func (f *File) walkSlots() []slotRef {
	proto := f.Package.Proto
	var refs []slotRef
	if proto.HelpFile != "" {
		name := baseName(proto.HelpFile)
		if name == "" {
			name = proto.TempFolder
		}
		refs = append(refs, slotRef{
			name:      name,
			source:    proto.HelpFile,
			setSource: func(s string) { proto.HelpFile = s },
		})
	}
	for _, c := range proto.Contents {
		e := c.Entry()
		name := baseName(e.Source)
		if name == "" {
			name = e.Name
		}
		refs = append(refs, slotRef{
			name:      name,
			source:    e.Source,
			setSource: func(s string) { e.Source = s },
		})
	}
	return refs
}

// baseName extracts the file-name part of a source hint. Hints come from
// the original Windows tooling and may use either separator or a bare
// drive prefix.
func baseName(p string) string {
	if i := strings.LastIndexAny(p, `\/:`); i >= 0 {
		p = p[i+1:]
	}
	return p
}
