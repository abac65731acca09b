package gen

import (
	"fmt"

	"solo/internal/decl"
	"solo/internal/role"
)

// emitThread renders a thread-scoped declaration. The public surface is
// rt.Key[T] under every role: the owning and exporting forms satisfy it with
// the accessor itself, the importing form with the double-indirection
// wrapper, and call sites cannot tell the difference.
func (e *Emitter) emitThread(d decl.Decl) {
	switch e.role {
	case role.Exporting:
		e.emitThreadExport(d)
	case role.Importing:
		e.emitThreadImport(d)
	default:
		e.emitThreadLocal(d)
	}
}

func (e *Emitter) emitThreadLocal(d decl.Decl) {
	e.emitDoc(d)
	fmt.Fprintf(&e.body, "var %s rt.Key[%s] = %s\n\n", d.Name, d.Type, initFunc(d))
}

// Exporting: the accessor is created normally, and what gets published under
// the stable name is a reference to it. The accessor's own address is fixed
// at load time, not compile time, so a reference is the only thing the
// exporting module can put in a linkable symbol.
func (e *Emitter) emitThreadExport(d decl.Decl) {
	key := "soloKey_" + d.Name
	stable := decl.StableName(d.Name)
	fmt.Fprintf(&e.body, "var %s = %s\n\n", key, initFunc(d))
	fmt.Fprintf(&e.body, "// %s publishes a reference to the accessor for %s.\n", stable, d.Name)
	fmt.Fprintf(&e.body, "var %s *rt.LocalKey[%s] = %s\n\n", stable, d.Type, key)
	e.emitDoc(d)
	fmt.Fprintf(&e.body, "var %s rt.Key[%s] = %s\n\n", d.Name, d.Type, key)
}

// Importing: the resolved symbol is a reference to the exporter's accessor
// reference, so the bound value carries two indirection levels; ExternKey
// forwards every access through both.
func (e *Emitter) emitThreadImport(d decl.Decl) {
	stable := decl.StableName(d.Name)
	e.emitDoc(d)
	fmt.Fprintf(&e.body, "var %s rt.Key[%s] = rt.MustImportKey[%s](%q)\n\n", d.Name, d.Type, d.Type, stable)
}

// initFunc renders the per-goroutine initializer. Without an init
// expression the key starts slots at the zero value.
func initFunc(d decl.Decl) string {
	if d.Init == "" {
		return fmt.Sprintf("rt.NewLocalKey[%s](nil)", d.Type)
	}
	return fmt.Sprintf("rt.NewLocalKey(func() %s { return %s })", d.Type, d.Init)
}
