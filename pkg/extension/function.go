package extension

import (
	"fmt"
	"io"

	"github.com/gmextkit/gexpack/pkg/wire"
)

// Calling conventions for native functions.
const (
	CallStdcall int32 = 11
	CallCdecl   int32 = 12
)

// Value types for function arguments and results.
const (
	TypeString int32 = 1
	TypeReal   int32 = 2
)

// MaxArgs is the largest declarable argument count. The wire layout
// carries one extra argument-type slot that is written but never used.
const (
	MaxArgs      = 16
	argTypeSlots = 17
)

// FunctionKind selects the wire flavor of a function descriptor.
type FunctionKind int

const (
	// NativeFunction is exported by a DLL and carries a calling
	// convention and argument/result value types.
	NativeFunction FunctionKind = iota
	// ScriptFunction is a GML script and may accept any argument count.
	ScriptFunction
)

// Function describes one callable exported by a library.
type Function struct {
	Kind     FunctionKind
	Name     string
	Symbol   string // external name; empty means Name
	HelpLine string
	Hidden   bool
	ArgCount int32

	// AnyArity marks a script function accepting any argument count. On
	// the wire it rides as an argument count of -1.
	AnyArity bool

	// Native-only fields.
	CallConv   int32
	ResultType int32
	ArgTypes   [argTypeSlots]int32
}

// NewFunction creates a function descriptor of the given kind with the
// default convention and value types.
func NewFunction(kind FunctionKind) *Function {
	f := &Function{Kind: kind}
	f.setDefaults()
	return f
}

func (f *Function) setDefaults() {
	f.CallConv = CallStdcall
	f.ResultType = TypeReal
	for i := range f.ArgTypes {
		f.ArgTypes[i] = TypeReal
	}
}

// Revision returns the wire revision of a function entry.
func (f *Function) Revision() int32 { return RevisionDefault }

func (f *Function) reset() {
	kind := f.Kind
	*f = Function{Kind: kind}
	f.setDefaults()
}

func (f *Function) readBody(r io.Reader, rev int32) error {
	if rev != RevisionDefault {
		return fmt.Errorf("%w: function entry %d", ErrUnsupportedRevision, rev)
	}
	var err error
	if f.Name, err = wire.ReadString(r); err != nil {
		return err
	}
	if f.Symbol, err = wire.ReadString(r); err != nil {
		return err
	}
	invoke, err := wire.ReadInt(r)
	if err != nil {
		return err
	}
	if f.HelpLine, err = wire.ReadString(r); err != nil {
		return err
	}
	if f.Hidden, err = wire.ReadBool(r); err != nil {
		return err
	}
	argc, err := wire.ReadInt(r)
	if err != nil {
		return err
	}
	var argTypes [argTypeSlots]int32
	for i := range argTypes {
		if argTypes[i], err = wire.ReadInt(r); err != nil {
			return err
		}
	}
	result, err := wire.ReadInt(r)
	if err != nil {
		return err
	}

	switch f.Kind {
	case NativeFunction:
		f.CallConv = invoke
		f.ArgCount = argc
		f.ArgTypes = argTypes
		f.ResultType = result
	case ScriptFunction:
		// The invoke type and the arg/result value types carry no
		// meaning for scripts. A GM8 bundled extension ships an invoke
		// type other than 2 here, so any value is tolerated.
		if argc == -1 {
			f.AnyArity = true
			f.ArgCount = 0
		} else {
			f.ArgCount = argc
		}
	}
	return nil
}

func (f *Function) writeBody(w io.Writer, rev int32, optimize bool) error {
	if rev != RevisionDefault {
		return fmt.Errorf("%w: function entry %d", ErrUnsupportedRevision, rev)
	}
	if err := wire.WriteString(w, f.Name); err != nil {
		return err
	}
	// An optimized symbol equal to the name collapses to empty; the
	// reader falls back to the name.
	if err := wire.WriteStringOpt(w, f.Symbol, "", optimize, f.Symbol != f.Name); err != nil {
		return err
	}
	invoke := f.CallConv
	if f.Kind == ScriptFunction {
		invoke = 2
	}
	if err := wire.WriteInt(w, invoke); err != nil {
		return err
	}
	// Help for a hidden function is never shown, so it is elided.
	if err := wire.WriteStringOpt(w, f.HelpLine, "", optimize, !f.Hidden); err != nil {
		return err
	}
	if err := wire.WriteBool(w, f.Hidden); err != nil {
		return err
	}
	argc := f.ArgCount
	if f.Kind == ScriptFunction && f.AnyArity {
		argc = -1
	}
	if err := wire.WriteInt(w, argc); err != nil {
		return err
	}
	for i := range f.ArgTypes {
		t := f.ArgTypes[i]
		if f.Kind == ScriptFunction {
			t = TypeReal
		}
		if err := wire.WriteInt(w, t); err != nil {
			return err
		}
	}
	result := f.ResultType
	if f.Kind == ScriptFunction {
		result = TypeReal
	}
	return wire.WriteInt(w, result)
}
