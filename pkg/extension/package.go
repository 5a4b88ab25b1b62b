package extension

import (
	"fmt"
	"io"

	"github.com/gmextkit/gexpack/pkg/krypt"
	"github.com/gmextkit/gexpack/pkg/wire"
)

// Package is the root entry of a compiled extension: exactly one
// prototype plus the key seed of the cipher enclosing the package body.
type Package struct {
	Proto   *Prototype
	KeySeed int32
}

// NewPackage creates a package holding an empty prototype.
func NewPackage() *Package {
	return &Package{Proto: NewPrototype()}
}

// Revision returns the wire revision of a package root entry.
func (p *Package) Revision() int32 { return RevisionGEX }

func (p *Package) reset() {
	p.KeySeed = 0
	p.Proto.reset()
}

// readBody reads the package dialect: the key seed arrives through the
// surrounding cipher while it is still in identity state, then the same
// cipher is re-keyed in place before the nested prototype entry.
func (p *Package) readBody(r io.Reader, rev int32) error {
	if rev != RevisionGEX {
		return fmt.Errorf("%w: package entry %d", ErrUnsupportedRevision, rev)
	}
	kr, err := krypt.EnsureReader(r)
	if err != nil {
		return err
	}
	seed, err := wire.ReadInt(kr)
	if err != nil {
		return fmt.Errorf("read key seed: %w", err)
	}
	p.KeySeed = seed
	kr.InitState(seed, false)
	return ReadEntry(kr, p.Proto)
}

func (p *Package) writeBody(w io.Writer, rev int32, optimize bool) error {
	if rev != RevisionGEX {
		return fmt.Errorf("%w: package entry %d", ErrUnsupportedRevision, rev)
	}
	kw, err := krypt.EnsureWriter(w)
	if err != nil {
		return err
	}
	if err := wire.WriteInt(kw, p.KeySeed); err != nil {
		return fmt.Errorf("write key seed: %w", err)
	}
	kw.InitState(p.KeySeed, false)
	return WriteEntry(kw, p.Proto, optimize)
}
