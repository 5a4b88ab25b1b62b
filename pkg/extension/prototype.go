package extension

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/gmextkit/gexpack/pkg/wire"
)

// Prototype is the extension manifest: identity fields, dependency list
// and the ordered list of contents. It owns both lists.
type Prototype struct {
	Name        string
	TempFolder  string
	Version     string
	Author      string
	Date        string
	License     string
	Description string
	HelpFile    string
	Hidden      bool
	Editable    bool

	Dependencies []string
	Contents     []*Content
}

// NewPrototype creates an empty prototype. Prototypes are editable by
// default.
func NewPrototype() *Prototype {
	return &Prototype{Editable: true}
}

// AddContent appends a new data entry of the given kind and returns its
// content.
func (p *Prototype) AddContent(kind ContentKind) *Content {
	e := NewDataEntry(kind)
	p.Contents = append(p.Contents, e.Content())
	return e.Content()
}

// Revision returns the wire revision of a prototype entry.
func (p *Prototype) Revision() int32 { return RevisionDefault }

func (p *Prototype) reset() {
	*p = Prototype{Editable: true}
}

func (p *Prototype) readBody(r io.Reader, rev int32) error {
	if rev != RevisionDefault {
		return fmt.Errorf("%w: prototype entry %d", ErrUnsupportedRevision, rev)
	}
	var err error
	if p.Editable, err = wire.ReadBool(r); err != nil {
		return err
	}
	for _, field := range []*string{
		&p.Name, &p.TempFolder, &p.Version, &p.Author,
		&p.Date, &p.License, &p.Description, &p.HelpFile,
	} {
		if *field, err = wire.ReadString(r); err != nil {
			return err
		}
	}
	if p.Hidden, err = wire.ReadBool(r); err != nil {
		return err
	}
	depCount, err := wire.ReadInt(r)
	if err != nil {
		return err
	}
	for i := int32(0); i < depCount; i++ {
		dep, err := wire.ReadString(r)
		if err != nil {
			return fmt.Errorf("read dependency %d: %w", i, err)
		}
		p.Dependencies = append(p.Dependencies, dep)
	}
	fileCount, err := wire.ReadInt(r)
	if err != nil {
		return err
	}
	for i := int32(0); i < fileCount; i++ {
		e := NewDataEntry(KindBinary)
		if err := ReadEntry(r, e); err != nil {
			return fmt.Errorf("read data entry %d: %w", i, err)
		}
		p.Contents = append(p.Contents, e.Content())
	}
	return nil
}

func (p *Prototype) writeBody(w io.Writer, rev int32, optimize bool) error {
	if rev != RevisionDefault {
		return fmt.Errorf("%w: prototype entry %d", ErrUnsupportedRevision, rev)
	}
	// A compiled package is never editable again.
	editable := int32(0)
	if p.Editable {
		editable = 1
	}
	if err := wire.WriteIntOpt(w, editable, 0, optimize, false); err != nil {
		return err
	}
	helpFile := p.HelpFile
	if optimize {
		// The IDE only shells out on the extension of the help file.
		helpFile = filepath.Ext(p.HelpFile)
	}
	for _, field := range []string{
		p.Name, p.TempFolder, p.Version, p.Author,
		p.Date, p.License, p.Description, helpFile,
	} {
		if err := wire.WriteString(w, field); err != nil {
			return err
		}
	}
	if err := wire.WriteBool(w, p.Hidden); err != nil {
		return err
	}
	if err := wire.WriteInt(w, int32(len(p.Dependencies))); err != nil {
		return err
	}
	for i, dep := range p.Dependencies {
		if err := wire.WriteString(w, dep); err != nil {
			return fmt.Errorf("write dependency %d: %w", i, err)
		}
	}
	if err := wire.WriteInt(w, int32(len(p.Contents))); err != nil {
		return err
	}
	for i, c := range p.Contents {
		if err := WriteEntry(w, c.Entry(), optimize); err != nil {
			return fmt.Errorf("write data entry %d: %w", i, err)
		}
	}
	return nil
}
