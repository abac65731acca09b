// Package decl models the global-state declarations the generator consumes
// and the stable symbol naming convention that links exporting and importing
// modules.
package decl

import "unicode"

// Scope selects how many instances of a declaration's storage exist.
type Scope uint8

const (
	// ScopeProcess: exactly one instance per process.
	ScopeProcess Scope = iota
	// ScopeThread: one instance per live goroutine, regardless of module.
	ScopeThread
)

func (s Scope) String() string {
	switch s {
	case ScopeProcess:
		return "process"
	case ScopeThread:
		return "thread"
	}
	return "unknown"
}

// ParseScope maps a manifest scope value. Empty defaults to process.
func ParseScope(v string) (Scope, bool) {
	switch v {
	case "", "process":
		return ScopeProcess, true
	case "thread":
		return ScopeThread, true
	}
	return ScopeProcess, false
}

// Decl is one named piece of global state.
type Decl struct {
	// Name is the public identifier generated code declares. It must be an
	// exported Go identifier: the stable symbol derived from it has to be
	// visible to plugin.Lookup.
	Name string
	// Type is the Go type expression of the stored value.
	Type string
	// Scope selects process- or thread-scoped storage.
	Scope Scope
	// Mutable marks raw shared mutable state; the importing form then skips
	// the read-through wrapper, exactly as unsafe as an ordinary mutable
	// shared static.
	Mutable bool
	// Init is an optional Go expression producing the initial value,
	// evaluated once per owning instance (per goroutine for thread scope).
	// Empty means the zero value.
	Init string
	// Imports lists extra import paths Type and Init need.
	Imports []string
	// Doc is an optional doc comment line for the generated declaration.
	Doc string
}

// StableName returns the external symbol name a declaration is published and
// resolved under. It is a pure function of the declaration name, computed
// character-identically in exporting and importing builds; Go applies no
// mangling to package-level identifiers, so the result is usable verbatim as
// a plugin.Lookup key. Any divergence between the two sides surfaces as an
// unresolved symbol when the importing module loads.
func StableName(name string) string {
	return name + ExportSuffix
}

// ExportSuffix is the fixed suffix appended to a declaration name to form
// its stable symbol name.
const ExportSuffix = "__SoloExport"

// IsValidName reports whether name is usable as a declaration name: an ASCII
// Go identifier. Exportedness is checked separately so the two failure modes
// get distinct diagnostics.
func IsValidName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r > unicode.MaxASCII {
			return false
		}
		if i == 0 && r != '_' && !unicode.IsLetter(r) {
			return false
		}
		if i > 0 && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// IsExportedName reports whether name starts with an uppercase letter.
// plugin.Lookup only sees exported package-level symbols, so unexported
// declaration names could never be resolved by an importing module.
func IsExportedName(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}
