package extension

import (
	"fmt"
	"io"

	"github.com/gmextkit/gexpack/pkg/wire"
)

// Constant describes one named constant exported by a library. The value
// is stored verbatim as GML source text.
type Constant struct {
	Name   string
	Value  string
	Hidden bool
}

// Revision returns the wire revision of a constant entry.
func (c *Constant) Revision() int32 { return RevisionDefault }

func (c *Constant) reset() {
	*c = Constant{}
}

func (c *Constant) readBody(r io.Reader, rev int32) error {
	if rev != RevisionDefault {
		return fmt.Errorf("%w: constant entry %d", ErrUnsupportedRevision, rev)
	}
	var err error
	if c.Name, err = wire.ReadString(r); err != nil {
		return err
	}
	if c.Value, err = wire.ReadString(r); err != nil {
		return err
	}
	c.Hidden, err = wire.ReadBool(r)
	return err
}

func (c *Constant) writeBody(w io.Writer, rev int32, optimize bool) error {
	if rev != RevisionDefault {
		return fmt.Errorf("%w: constant entry %d", ErrUnsupportedRevision, rev)
	}
	if err := wire.WriteString(w, c.Name); err != nil {
		return err
	}
	if err := wire.WriteString(w, c.Value); err != nil {
		return err
	}
	return wire.WriteBool(w, c.Hidden)
}
