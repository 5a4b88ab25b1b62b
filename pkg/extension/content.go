package extension

import (
	"fmt"
	"io"

	"github.com/gmextkit/gexpack/pkg/wire"
)

// ContentKind tags the payload flavor of a data entry.
type ContentKind int32

const (
	// KindLibrary is a native DLL with function and constant tables.
	KindLibrary ContentKind = 1
	// KindScripts is a GML script library with function and constant
	// tables.
	KindScripts ContentKind = 2
	// KindPlugin is a binary plugin without metadata.
	KindPlugin ContentKind = 3
	// KindBinary is an opaque binary asset without metadata.
	KindBinary ContentKind = 4
)

// coerceKind maps the GM4HTML5 quirk tags onto the kinds actually
// emitted: 0 and 5 load as native libraries, 6 as a simple binary.
func coerceKind(tag int32) (ContentKind, error) {
	switch tag {
	case 0, 5:
		return KindLibrary, nil
	case 6:
		return KindBinary, nil
	case int32(KindLibrary), int32(KindScripts), int32(KindPlugin), int32(KindBinary):
		return ContentKind(tag), nil
	}
	return 0, fmt.Errorf("extension: unknown content kind %d", tag)
}

// hasTables reports whether the kind carries function and constant
// tables.
func (k ContentKind) hasTables() bool {
	return k == KindLibrary || k == KindScripts
}

// functionKind returns the function flavor a library of this kind
// instantiates.
func (k ContentKind) functionKind() FunctionKind {
	if k == KindScripts {
		return ScriptFunction
	}
	return NativeFunction
}

// Content is the payload descriptor owned by a data entry. The two form
// one unit: the content keeps a back-reference to its entry, used when
// walking a prototype's content list.
type Content struct {
	Kind      ContentKind
	InitFn    string
	ExitFn    string
	Functions []*Function
	Constants []*Constant

	entry *DataEntry
}

// Entry returns the data entry owning this content.
func (c *Content) Entry() *DataEntry { return c.entry }

// DataEntry names one payload of an extension. Source is a hint (usually
// a path) consumed and possibly rewritten by the payload callbacks.
type DataEntry struct {
	Name   string
	Source string

	content *Content
}

// NewDataEntry creates a data entry together with its content of the
// given kind, wired as one unit.
func NewDataEntry(kind ContentKind) *DataEntry {
	e := &DataEntry{}
	e.content = &Content{Kind: kind, entry: e}
	return e
}

// Content returns the content owned by this entry.
func (e *DataEntry) Content() *Content { return e.content }

// Revision returns the wire revision of a data entry.
func (e *DataEntry) Revision() int32 { return RevisionDefault }

func (e *DataEntry) reset() {
	c := e.content
	*e = DataEntry{content: c}
	*c = Content{Kind: c.Kind, entry: e}
}

func (e *DataEntry) readBody(r io.Reader, rev int32) error {
	if rev != RevisionDefault {
		return fmt.Errorf("%w: data entry %d", ErrUnsupportedRevision, rev)
	}
	var err error
	if e.Name, err = wire.ReadString(r); err != nil {
		return err
	}
	if e.Source, err = wire.ReadString(r); err != nil {
		return err
	}
	tag, err := wire.ReadInt(r)
	if err != nil {
		return err
	}
	kind, err := coerceKind(tag)
	if err != nil {
		return err
	}
	e.content.Kind = kind
	return e.content.readBody(r)
}

func (e *DataEntry) writeBody(w io.Writer, rev int32, optimize bool) error {
	if rev != RevisionDefault {
		return fmt.Errorf("%w: data entry %d", ErrUnsupportedRevision, rev)
	}
	if err := wire.WriteString(w, e.Name); err != nil {
		return err
	}
	// The source hint is local to the authoring machine; a compiled
	// package can drop it.
	if err := wire.WriteStringOpt(w, e.Source, "", optimize, false); err != nil {
		return err
	}
	if err := wire.WriteInt(w, int32(e.content.Kind)); err != nil {
		return err
	}
	return e.content.writeBody(w, optimize)
}

func (c *Content) readBody(r io.Reader) error {
	var err error
	if c.InitFn, err = wire.ReadString(r); err != nil {
		return err
	}
	if c.ExitFn, err = wire.ReadString(r); err != nil {
		return err
	}
	funcCount, err := wire.ReadInt(r)
	if err != nil {
		return err
	}
	if !c.Kind.hasTables() && (c.InitFn != "" || c.ExitFn != "" || funcCount != 0) {
		return fmt.Errorf("%w: kind %d", ErrBinaryMetadata, c.Kind)
	}
	for i := int32(0); i < funcCount; i++ {
		f := NewFunction(c.Kind.functionKind())
		if err := ReadEntry(r, f); err != nil {
			return fmt.Errorf("read function %d: %w", i, err)
		}
		c.Functions = append(c.Functions, f)
	}
	constCount, err := wire.ReadInt(r)
	if err != nil {
		return err
	}
	if !c.Kind.hasTables() && constCount != 0 {
		return fmt.Errorf("%w: kind %d", ErrBinaryMetadata, c.Kind)
	}
	for i := int32(0); i < constCount; i++ {
		cn := &Constant{}
		if err := ReadEntry(r, cn); err != nil {
			return fmt.Errorf("read constant %d: %w", i, err)
		}
		c.Constants = append(c.Constants, cn)
	}
	return nil
}

func (c *Content) writeBody(w io.Writer, optimize bool) error {
	if !c.Kind.hasTables() {
		// Binary flavors carry four fixed empty fields.
		if err := wire.WriteString(w, ""); err != nil {
			return err
		}
		if err := wire.WriteString(w, ""); err != nil {
			return err
		}
		if err := wire.WriteInt(w, 0); err != nil {
			return err
		}
		return wire.WriteInt(w, 0)
	}
	if err := wire.WriteString(w, c.InitFn); err != nil {
		return err
	}
	if err := wire.WriteString(w, c.ExitFn); err != nil {
		return err
	}
	if err := wire.WriteInt(w, int32(len(c.Functions))); err != nil {
		return err
	}
	for i, f := range c.Functions {
		if err := WriteEntry(w, f, optimize); err != nil {
			return fmt.Errorf("write function %d: %w", i, err)
		}
	}
	if err := wire.WriteInt(w, int32(len(c.Constants))); err != nil {
		return err
	}
	for i, cn := range c.Constants {
		if err := WriteEntry(w, cn, optimize); err != nil {
			return fmt.Errorf("write constant %d: %w", i, err)
		}
	}
	return nil
}
