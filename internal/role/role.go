// Package role resolves the single build-time role of a generated module.
//
// Exactly one role applies to an entire generation run: a module either owns
// its globals (Local), owns and publishes them (Exporting), or resolves them
// from another module at load time (Importing). Exporting and Importing are
// mutually exclusive; a configuration that selects both is rejected before
// any declaration is looked at.
package role

import (
	"errors"
	"fmt"
)

type Role uint8

const (
	// Local compiles declarations normally; storage stays private.
	Local Role = iota
	// Exporting declares storage and publishes it under stable names.
	Exporting
	// Importing declares no storage and resolves stable names at load time.
	Importing
)

func (r Role) String() string {
	switch r {
	case Local:
		return "local"
	case Exporting:
		return "export"
	case Importing:
		return "import"
	}
	return "unknown"
}

// Tag is the single-letter role marker used in trace output.
func (r Role) Tag() string {
	switch r {
	case Exporting:
		return "E"
	case Importing:
		return "I"
	}
	return "N"
}

// ErrConflict is returned when the configuration selects both the exporting
// and the importing role.
var ErrConflict = errors.New("the export and import roles are mutually exclusive")

// Signals carries every build-time input that can select a role.
type Signals struct {
	// ExportFlag and ImportFlag mirror the --export / --import CLI flags.
	ExportFlag bool
	ImportFlag bool
	// Manifest is the optional [build].role manifest value: "", "local",
	// "export" or "import".
	Manifest string
}

// Resolve yields exactly one role from the given signals, or fails. The
// failure is fatal by contract: callers must not process any declaration
// after a conflict. With no signal at all, the role defaults to Local.
func Resolve(s Signals) (Role, error) {
	if s.ExportFlag && s.ImportFlag {
		return Local, fmt.Errorf("--export and --import: %w", ErrConflict)
	}

	manifest := Local
	switch s.Manifest {
	case "", "local":
	case "export":
		manifest = Exporting
	case "import":
		manifest = Importing
	default:
		return Local, fmt.Errorf("unknown role %q in manifest (must be local, export or import)", s.Manifest)
	}

	if s.ExportFlag && manifest == Importing {
		return Local, fmt.Errorf("--export conflicts with manifest role \"import\": %w", ErrConflict)
	}
	if s.ImportFlag && manifest == Exporting {
		return Local, fmt.Errorf("--import conflicts with manifest role \"export\": %w", ErrConflict)
	}

	switch {
	case s.ExportFlag:
		return Exporting, nil
	case s.ImportFlag:
		return Importing, nil
	default:
		return manifest, nil
	}
}
