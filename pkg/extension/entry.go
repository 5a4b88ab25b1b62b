// Package extension models the metadata tree of a GameMaker extension and
// its versioned wire codec: the prototype manifest, data entries with
// their content variants, function and constant descriptors, and the
// package root of a compiled extension.
package extension

import (
	"errors"
	"fmt"
	"io"

	"github.com/gmextkit/gexpack/pkg/wire"
)

// Wire revisions. The absolute value of the integer prefixing every
// serialized entry selects the dialect; a negative value marks output
// written in optimize mode.
const (
	// RevisionDefault is the dialect used by editable projects and by
	// everything nested inside a package.
	RevisionDefault int32 = 700
	// RevisionGEX is the dialect of the package root of a compiled
	// extension.
	RevisionGEX int32 = 701
)

var (
	// ErrUnsupportedRevision reports a revision that is unknown or that
	// the selected entry variant does not implement.
	ErrUnsupportedRevision = errors.New("extension: unsupported entry revision")

	// ErrBinaryMetadata reports a binary content whose metadata fields
	// are not empty on disk.
	ErrBinaryMetadata = errors.New("extension: binary content metadata not empty")
)

// Entry is one node of the serialized metadata tree. Every entry is
// prefixed on the wire by its revision integer.
type Entry interface {
	// Revision returns the wire revision the entry serializes as.
	Revision() int32

	reset()
	readBody(r io.Reader, rev int32) error
	writeBody(w io.Writer, rev int32, optimize bool) error
}

// ReadEntry reads one revision-prefixed entry into e. The value is
// reinitialized first, so lists left over from a previous read are
// emptied; owned links survive the reinitialization.
func ReadEntry(r io.Reader, e Entry) error {
	rev, err := wire.ReadInt(r)
	if err != nil {
		return fmt.Errorf("read entry revision: %w", err)
	}
	if rev < 0 {
		// Optimize mode leaves no trace beyond the sign; readers accept
		// either form.
		rev = -rev
	}
	e.reset()
	return e.readBody(r, rev)
}

// WriteEntry writes e as one revision-prefixed entry. With optimize set,
// the revision is negated on the wire and fields the reader can recover
// from defaults are elided.
func WriteEntry(w io.Writer, e Entry, optimize bool) error {
	rev := e.Revision()
	wireRev := rev
	if optimize {
		wireRev = -rev
	}
	if err := wire.WriteInt(w, wireRev); err != nil {
		return fmt.Errorf("write entry revision: %w", err)
	}
	return e.writeBody(w, rev, optimize)
}
