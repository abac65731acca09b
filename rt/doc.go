// Package rt is the runtime half of solo. Generated code imports it; nothing
// else is expected to.
//
// # Purpose
//
//   - Indirection wrappers (Extern, ExternDouble, ExternKey) that make a
//     reference resolved from another loaded module behave like the original
//     declaration at every call site.
//   - LocalKey, the thread-scoped storage facility backing `scope = "thread"`
//     declarations: one lazily created slot per goroutine, shared by every
//     module that touches the key.
//   - One-time symbol resolution against the exporting module via the
//     standard plugin package (BindExporter / SOLO_EXPORTER).
//   - SharedObjectID and Beacon, the per-loaded-module identity and the
//     deterministic color derived from it, consumed by Tracef.
//
// # Guarantees
//
// The wrappers add no locking, retries, or caching of their own: the only
// guarantee is that every module observes the same storage location, never
// that access to it is serialised. Concurrent access safety belongs to the
// declared type, exactly as with an ordinary shared static.
//
// Resolution happens once, at package-init time of the importing module, and
// the resolved reference is never reassigned. A missing or misnamed export is
// a fatal panic naming the unresolved symbol — there is nothing sensible to
// recover to when two modules disagree about who owns a global.
package rt
