package rt

import (
	"fmt"
	"os"
	"plugin"
	"sync"
)

// SymbolSource resolves exported package-level symbols from a loaded module.
// *plugin.Plugin satisfies it; tests substitute in-process fakes.
type SymbolSource interface {
	Lookup(symName string) (plugin.Symbol, error)
}

// ExporterEnv names the shared object that owns the exported globals. It is
// consulted once, lazily, when no source was bound via BindExporter.
const ExporterEnv = "SOLO_EXPORTER"

var exporter struct {
	mu    sync.Mutex
	src   SymbolSource
	bound bool
}

// BindExporter fixes the exporting module for this process. The host must
// call it before loading any importing module, so that import resolution at
// plugin init time finds it. Binding twice, or binding after a lookup already
// fell back to SOLO_EXPORTER, is a programming error.
func BindExporter(src SymbolSource) {
	exporter.mu.Lock()
	defer exporter.mu.Unlock()
	if exporter.bound {
		panic("solo: exporter already bound")
	}
	exporter.src = src
	exporter.bound = true
}

func exporterSource() (SymbolSource, error) {
	exporter.mu.Lock()
	defer exporter.mu.Unlock()
	if exporter.bound {
		return exporter.src, nil
	}
	path := os.Getenv(ExporterEnv)
	if path == "" {
		return nil, fmt.Errorf("no exporting module: call rt.BindExporter or set %s", ExporterEnv)
	}
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open exporting module %s: %w", path, err)
	}
	exporter.src = p
	exporter.bound = true
	return p, nil
}

// mustResolve performs the one-time load-time lookup of an exported stable
// name. Failure is fatal by design: it is the moral equivalent of the dynamic
// loader refusing to start the process, and the unresolved name must stay
// visible to whoever diagnoses the role or version mismatch.
func mustResolve(name string) plugin.Symbol {
	src, err := exporterSource()
	if err != nil {
		panic(fmt.Sprintf("solo: cannot resolve %q: %v", name, err))
	}
	sym, err := src.Lookup(name)
	if err != nil {
		panic(fmt.Sprintf("solo: unresolved symbol %q: %v", name, err))
	}
	return sym
}

// MustImportVar resolves a process-scoped export and wraps it for read-through
// access. Called from generated importing code at package init.
func MustImportVar[T any](name string) Extern[T] {
	sym := mustResolve(name)
	ref, ok := sym.(*T)
	if !ok {
		panic(fmt.Sprintf("solo: symbol %q has unexpected type %T", name, sym))
	}
	return Extern[T]{ref: ref}
}

// MustResolveVar resolves a mutable process-scoped export as the raw storage
// pointer. Mutable shared statics are unsynchronized on both sides, so there
// is no wrapper to hide behind.
func MustResolveVar[T any](name string) *T {
	sym := mustResolve(name)
	ref, ok := sym.(*T)
	if !ok {
		panic(fmt.Sprintf("solo: symbol %q has unexpected type %T", name, sym))
	}
	return ref
}

// MustImportKey resolves a thread-scoped export. The published symbol is a
// reference to the exporter's accessor reference, so the resolved value
// carries two indirection levels; ExternKey follows both on every access.
func MustImportKey[T any](name string) ExternKey[T] {
	sym := mustResolve(name)
	ref, ok := sym.(**LocalKey[T])
	if !ok {
		panic(fmt.Sprintf("solo: symbol %q has unexpected type %T", name, sym))
	}
	return ExternKey[T]{ExternDouble[LocalKey[T]]{ref: ref}}
}
