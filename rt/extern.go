package rt

// Extern wraps a reference resolved once from the exporting module. It is the
// importing form of a process-scoped declaration: dereferencing yields the
// exporter's storage directly.
//
// The only reason this is safe without further checks is that the reference
// was established by the one-time load-time resolution step and is never
// reassigned. Only the import helpers in this package construct it.
type Extern[T any] struct {
	ref *T
}

// Deref returns the underlying storage.
func (e Extern[T]) Deref() *T { return e.ref }

// ExternDouble wraps a reference to a reference. Thread-scoped exports can
// only publish "the address of my reference to the accessor" — the accessor's
// own address is fixed at load time, not compile time — so the importing side
// holds one extra level of indirection and must follow both on every access.
type ExternDouble[T any] struct {
	ref **T
}

// Deref follows both levels and returns the accessor itself.
func (e ExternDouble[T]) Deref() *T { return *e.ref }
