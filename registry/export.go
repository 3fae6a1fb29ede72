package registry

import "github.com/AlephTX/enigma/term"

// ExportKind discriminates the two things an MFA can resolve to.
type ExportKind uint8

const (
	ExportFun ExportKind = iota
	ExportBif
)

// BifFunc is a built-in function implementation. It returns a plain `error`
// rather than a concrete exception type so this package doesn't need to
// import the bif/exception packages; exception.Exception itself implements
// error, so bif registrations plug in directly.
type BifFunc func(args []term.Term) (term.Term, error)

// Export is the resolved target of an MFA: either a bytecode entry point
// inside some module, or a native Go function.
type Export struct {
	Kind ExportKind
	Fun  Instr
	Bif  BifFunc
}

// Tag implements term.Boxed.
func (*Export) Tag() term.BoxTag { return term.TagExport }

// Tag implements term.Boxed for Module.
func (*Module) Tag() term.BoxTag { return term.TagModule }
