package gen

import (
	"fmt"

	"solo/internal/decl"
	"solo/internal/role"
)

// emitProcess renders a process-scoped declaration. All three forms expose
// the declaration name as a *T, so call sites compile and behave identically
// regardless of role — binary compatibility lives in this uniformity.
func (e *Emitter) emitProcess(d decl.Decl) {
	switch e.role {
	case role.Exporting:
		e.emitProcessExport(d)
	case role.Importing:
		e.emitProcessImport(d)
	default:
		e.emitProcessLocal(d)
	}
}

// Local: storage compiled normally, private to this module.
func (e *Emitter) emitProcessLocal(d decl.Decl) {
	storage := "soloStorage_" + d.Name
	fmt.Fprintf(&e.body, "var %s %s%s\n\n", storage, d.Type, initClause(d))
	e.emitDoc(d)
	fmt.Fprintf(&e.body, "var %s = &%s\n\n", d.Name, storage)
}

// Exporting: the storage itself is declared under the stable name, which
// makes it visible to the dynamic loader; the declaration name aliases it.
// Mutable declarations publish the same thing — a reference to mutable
// storage — so the form does not fork on mutability here.
func (e *Emitter) emitProcessExport(d decl.Decl) {
	stable := decl.StableName(d.Name)
	fmt.Fprintf(&e.body, "// %s is the published storage for %s.\n", stable, d.Name)
	fmt.Fprintf(&e.body, "var %s %s%s\n\n", stable, d.Type, initClause(d))
	e.emitDoc(d)
	fmt.Fprintf(&e.body, "var %s = &%s\n\n", d.Name, stable)
}

// Importing: no storage here. The stable name resolves once at load time;
// immutable declarations go through the read-through wrapper, mutable ones
// bind the raw storage pointer, as unguarded as any mutable shared static.
func (e *Emitter) emitProcessImport(d decl.Decl) {
	stable := decl.StableName(d.Name)
	e.emitDoc(d)
	if d.Mutable {
		fmt.Fprintf(&e.body, "var %s = rt.MustResolveVar[%s](%q)\n\n", d.Name, d.Type, stable)
		return
	}
	fmt.Fprintf(&e.body, "var %s = rt.MustImportVar[%s](%q).Deref()\n\n", d.Name, d.Type, stable)
}

// initClause renders the optional initializer of a process-scoped storage
// var. Thread-scoped initializers run per goroutine instead; see
// initFunc.
func initClause(d decl.Decl) string {
	if d.Init == "" {
		return ""
	}
	return " = " + d.Init
}
