// Package gen turns a validated manifest into Go source: the owning,
// exporting, or importing form of every declaration, selected by the resolved
// role. The transformation is mechanical — no runtime decisions, no side
// effects beyond the file content it returns.
package gen

import (
	"fmt"
	"go/format"
	"sort"
	"strings"

	"solo/internal/decl"
	"solo/internal/manifest"
	"solo/internal/role"
)

// Header marks generated files, in the form tooling recognizes.
const Header = "// Code generated by solo. DO NOT EDIT."

// Options overrides manifest-level generation settings.
type Options struct {
	// PackageName overrides [module].package.
	PackageName string
	// RuntimePath overrides [module].runtime.
	RuntimePath string
}

// Emitter builds one generated file. It collects imports while walking the
// declarations, then renders everything in a fixed order.
type Emitter struct {
	m    *manifest.Manifest
	role role.Role
	pkg  string
	rt   string

	buf  strings.Builder
	body strings.Builder
}

// EmitFile renders the generated file for a manifest under the given role.
// On a formatting failure the unformatted source is returned alongside the
// error, so diagnostics can show what the emitter actually produced.
func EmitFile(m *manifest.Manifest, r role.Role, opts Options) ([]byte, error) {
	pkg := opts.PackageName
	if pkg == "" {
		pkg = m.Module.Package
	}
	rtPath := opts.RuntimePath
	if rtPath == "" {
		rtPath = m.Module.Runtime
	}
	e := &Emitter{m: m, role: r, pkg: pkg, rt: rtPath}

	e.emitRoleInit()
	for _, d := range m.Decls {
		e.emitDecl(d)
	}

	e.emitHeader()
	e.emitImports()
	e.buf.WriteString(e.body.String())

	src := e.buf.String()
	out, err := format.Source([]byte(src))
	if err != nil {
		return []byte(src), fmt.Errorf("format generated code: %w", err)
	}
	return out, nil
}

func (e *Emitter) emitHeader() {
	e.buf.WriteString(Header + "\n")
	fmt.Fprintf(&e.buf, "//\n// Module %s, role %s.\n\n", e.m.Module.Name, e.role)
	fmt.Fprintf(&e.buf, "package %s\n\n", e.pkg)
}

// needsRuntime reports whether the generated file references the runtime
// package: every non-local role does (for the role tag), and thread-scoped
// declarations do under any role.
func (e *Emitter) needsRuntime() bool {
	if e.role != role.Local {
		return true
	}
	for _, d := range e.m.Decls {
		if d.Scope == decl.ScopeThread {
			return true
		}
	}
	return false
}

func (e *Emitter) emitImports() {
	paths := make(map[string]bool)
	for _, d := range e.m.Decls {
		// Importing forms never mention the declared type's dependencies
		// except in the type argument, which still needs the import.
		for _, imp := range d.Imports {
			paths[imp] = true
		}
	}

	needRT := e.needsRuntime()
	// A declaration may list the runtime path among its own imports; the
	// named rt import already covers it.
	if needRT {
		delete(paths, e.rt)
	}
	if len(paths) == 0 && !needRT {
		return
	}

	sorted := make([]string, 0, len(paths))
	for p := range paths {
		sorted = append(sorted, p)
	}
	if needRT {
		sorted = append(sorted, e.rt)
	}
	sort.Strings(sorted)

	e.buf.WriteString("import (\n")
	for _, p := range sorted {
		if p == e.rt && needRT {
			fmt.Fprintf(&e.buf, "\trt %q\n", p)
			continue
		}
		fmt.Fprintf(&e.buf, "\t%q\n", p)
	}
	e.buf.WriteString(")\n\n")
}

// emitRoleInit stamps the module's role into the runtime so trace output can
// tell loaded modules apart by role.
func (e *Emitter) emitRoleInit() {
	if e.role == role.Local {
		return
	}
	fmt.Fprintf(&e.body, "func init() { rt.SetRoleTag(%q) }\n\n", e.role.Tag())
}

func (e *Emitter) emitDecl(d decl.Decl) {
	switch d.Scope {
	case decl.ScopeThread:
		e.emitThread(d)
	default:
		e.emitProcess(d)
	}
}

func (e *Emitter) emitDoc(d decl.Decl) {
	if d.Doc != "" {
		fmt.Fprintf(&e.body, "// %s %s\n", d.Name, d.Doc)
	}
}
