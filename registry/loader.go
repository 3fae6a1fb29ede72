package registry

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/AlephTX/enigma/term"
)

var gzipMagic = []byte{0x1F, 0x8B}

// maybeUncompress transparently gunzips data if it starts with the gzip
// magic.
func maybeUncompress(data []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != gzipMagic[0] || data[1] != gzipMagic[1] {
		return data, nil
	}
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("registry: gzip header detected but invalid: %w", err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

// PreparedModule is the result of PrepareLoading: a decoded-enough-to-link
// module waiting for FinishLoading to publish it into a ModuleRegistry and
// register its exports. Splitting prepare/finish lets code be staged and
// validated before it becomes live and callable.
type PreparedModule struct {
	Module *Module
}

// Tag implements term.Boxed. A PreparedModule shares Module's own boxed tag:
// a prepared module and a registered one are the same kind of thing at the
// term level, differing only in whether FinishLoading has published it yet.
func (*PreparedModule) Tag() term.BoxTag { return term.TagModule }

// Loader coordinates module preparation and publication. The actual bytecode
// decode (turning a .beam chunk into Module.Exports/Imports/Lambdas) lives
// outside this core; Loader's job is the surrounding contract: decompression,
// staging, publish (module by module), NIF patching, and introspection.
type Loader struct {
	Modules *ModuleRegistry
	Exports *ExportsTable
	log     *slog.Logger

	group singleflight.Group

	mu       sync.Mutex
	decodeFn func(name term.AtomID, code []byte) (*Module, error)
}

// NewLoader builds a Loader. decodeFn turns raw (already decompressed)
// module bytes into a Module; supplying it is how an embedding interpreter
// plugs in its real bytecode decoder without this core needing to know the
// instruction format.
func NewLoader(modules *ModuleRegistry, exports *ExportsTable, decodeFn func(term.AtomID, []byte) (*Module, error)) *Loader {
	return &Loader{
		Modules:  modules,
		Exports:  exports,
		log:      slog.Default().With("component", "registry.Loader"),
		decodeFn: decodeFn,
	}
}

// PrepareLoading decompresses (if gzip'd) and decodes code for name,
// returning a PreparedModule not yet visible to the registry. Concurrent
// PrepareLoading calls for the same module name are collapsed into a single
// decode via golang.org/x/sync/singleflight, since multiple schedulers can
// race to load the same module independently.
func (l *Loader) PrepareLoading(name term.AtomID, code []byte) (*PreparedModule, error) {
	v, err, _ := l.group.Do(fmt.Sprintf("%d", name), func() (interface{}, error) {
		raw, err := maybeUncompress(code)
		if err != nil {
			return nil, err
		}
		mod, err := l.decodeFn(name, raw)
		if err != nil {
			return nil, err
		}
		return &PreparedModule{Module: mod}, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*PreparedModule), nil
}

// HasPreparedCodeOnLoad reports whether a prepared module declared an
// on_load function, matching has_prepared_code_on_load_1.
func (l *Loader) HasPreparedCodeOnLoad(p *PreparedModule) bool {
	return p.Module.OnLoadFunc != nil
}

// knownNIFModules lists modules whose NIFs this core patches in after
// loading.
var knownNIFModules = map[string]bool{
	"beam_lib": true,
}

// FinishLoading publishes every prepared module: each module's export
// processing (registering its FuncInfo table's entries, subject to
// BIF-override precedence) runs concurrently via golang.org/x/sync/errgroup,
// since the modules are independent once inserted. The NIF-patch pass that
// follows stays serialized under the exports table's own write lock, since
// it must see the fully published state of every module before deciding
// what to patch.
func (l *Loader) FinishLoading(prepared []*PreparedModule, atoms *term.AtomTable) error {
	refs := make([]ModuleRef, len(prepared))
	for i, p := range prepared {
		refs[i] = l.Modules.Insert(p.Module)
	}

	var g errgroup.Group
	for i := range prepared {
		mod := prepared[i].Module
		g.Go(func() error {
			l.processExports(mod)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, p := range prepared {
		name, _ := atoms.Name(p.Module.Name)
		if knownNIFModules[name] {
			l.patchNifs(p.Module)
		}
	}
	return nil
}

func (l *Loader) processExports(m *Module) {
	for _, fi := range m.Exports {
		mfa := MFA{Module: m.Name, Function: fi.Function, Arity: fi.Arity}
		l.Exports.RegisterFun(mfa, fi.Entry)
	}
}

// patchNifs scans a module's func_info entries for ones matching a
// registered native implementation and overwrites the instruction following
// func_info to call the BIF directly instead of falling into the module's
// own (stub) body. Since this core has no instruction stream to mutate, the
// effect is modeled directly: any FuncInfo whose MFA already has a BIF
// registered is left as-is (the BIF-override precedence in RegisterFun
// already ensures calls resolve to it), and this pass exists as the hook an
// embedding interpreter's real instruction patcher would call in its place.
func (l *Loader) patchNifs(m *Module) {
	l.Exports.mu.Lock()
	defer l.Exports.mu.Unlock()
	for _, fi := range m.Exports {
		mfa := MFA{Module: m.Name, Function: fi.Function, Arity: fi.Arity}
		if exp, ok := l.Exports.exports[mfa]; ok && exp.Kind == ExportBif {
			l.log.Debug("nif patched", "module", m.Name, "function", fi.Function, "arity", fi.Arity)
		}
	}
}

// LoadBytes implements load_bytes: decode code under name, register the
// resulting Module in the registry, and process its exports immediately —
// the direct, unstaged counterpart to PrepareLoading/FinishLoading, for a
// caller that has no need to stage a batch of modules before publishing
// them. Unlike the reference's load_bytes, which holds the registry's and
// exports table's locks for the whole decode and export-processing pass,
// this takes each lock only inside the individual Insert and RegisterFun
// calls.
func (l *Loader) LoadBytes(name term.AtomID, code []byte) (ModuleRef, error) {
	raw, err := maybeUncompress(code)
	if err != nil {
		return ModuleRef{}, err
	}
	mod, err := l.decodeFn(name, raw)
	if err != nil {
		return ModuleRef{}, err
	}
	ref := l.Modules.Insert(mod)
	l.processExports(mod)
	return ref, nil
}

// LoadFile implements load_file: read path from disk and otherwise behave
// exactly like LoadBytes, the counterpart to the reference's load_module
// reading from a filesystem path instead of an in-memory blob.
func (l *Loader) LoadFile(name term.AtomID, path string) (ModuleRef, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return ModuleRef{}, fmt.Errorf("registry: read %s: %w", path, err)
	}
	return l.LoadBytes(name, code)
}

// PurgeModule unloads the module ref refers to.
func (l *Loader) PurgeModule(ref ModuleRef) bool {
	return l.Modules.Purge(ref)
}
