package registry

import "github.com/AlephTX/enigma/term"

// infoKeys lists every key get_module_info/1 folds into its result, in the
// order the BIF checks them.
var infoKeys = []string{
	"module", "exports", "functions", "attributes", "compile", "native",
	"nifs", "md5", "native_addresses",
}

// GetModuleInfoKey implements get_module_info/2: a single named key.
func GetModuleInfoKey(atoms *term.AtomTable, m *Module, key string) (term.Term, bool) {
	switch key {
	case "module":
		return term.Atom(m.Name), true
	case "exports":
		return exportsList(atoms, m), true
	case "functions":
		// This core doesn't distinguish exported from purely-local
		// functions (no instruction stream to scan for non-exported
		// func_info entries), so functions/0 reports the same set as
		// exports/0 — a documented simplification, see DESIGN.md.
		return exportsList(atoms, m), true
	case "attributes":
		return m.attributes, true
	case "compile":
		return m.compile, true
	case "native":
		return term.Atom(atoms.Intern("false")), true
	case "nifs":
		return term.Nil(), true
	case "md5":
		return term.Atom(atoms.Intern("undefined")), true
	case "native_addresses":
		return term.Nil(), true
	default:
		return term.Term{}, false
	}
}

// GetModuleInfo implements get_module_info/1: every key folded into a
// [{Key, Value}] proplist, the all-keys form callers reach for when they
// don't know which single key they want.
func GetModuleInfo(atoms *term.AtomTable, m *Module) term.Term {
	elems := make([]term.Term, 0, len(infoKeys))
	for _, key := range infoKeys {
		v, _ := GetModuleInfoKey(atoms, m, key)
		elems = append(elems, term.NewTuple(term.Atom(atoms.Intern(key)), v))
	}
	return term.FromSlice(elems)
}

func exportsList(atoms *term.AtomTable, m *Module) term.Term {
	elems := make([]term.Term, len(m.Exports))
	for i, fi := range m.Exports {
		elems[i] = term.NewTuple(term.Atom(fi.Function), term.SmallInt(int64(fi.Arity)))
	}
	return term.FromSlice(elems)
}
