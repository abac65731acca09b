package rt

import "sync"

// Key is the accessor surface of a thread-scoped declaration. The owning and
// exporting forms expose a *LocalKey directly; the importing form exposes an
// ExternKey that forwards through the resolved double reference. Call sites
// see the same interface either way.
type Key[T any] interface {
	// Get returns a copy of the current goroutine's slot value, creating the
	// slot from the initializer on first access.
	Get() T
	// Set overwrites the current goroutine's slot value.
	Set(v T)
	// With calls f with the current goroutine's slot. The pointer must not be
	// retained past the call: it belongs to this goroutine's slot lifecycle.
	With(f func(*T))
	// Forget releases the current goroutine's slot. The next access re-runs
	// the initializer.
	Forget()
}

// LocalKey is the thread-scoped storage facility: one slot per live
// goroutine, created lazily on first access by that goroutine regardless of
// which module performs the access.
//
// All slot state lives inside the instance, which is owned by the module that
// declared it. Importing modules reach the same instance through ExternKey,
// so the per-goroutine partitioning is shared, not duplicated.
type LocalKey[T any] struct {
	init func() T

	mu    sync.Mutex
	slots map[uint64]*T
}

// NewLocalKey creates a key whose slots start from the value produced by
// init. The initializer runs once per goroutine, on that goroutine, at first
// access.
func NewLocalKey[T any](init func() T) *LocalKey[T] {
	if init == nil {
		init = func() T { var zero T; return zero }
	}
	return &LocalKey[T]{
		init:  init,
		slots: make(map[uint64]*T),
	}
}

// slot returns the current goroutine's slot, creating it if needed. The
// returned pointer is only ever handed to its own goroutine, so access to the
// pointee needs no further coordination.
func (k *LocalKey[T]) slot() *T {
	g := gid()
	k.mu.Lock()
	s, ok := k.slots[g]
	k.mu.Unlock()
	if ok {
		return s
	}
	// First access on this goroutine. The initializer is arbitrary user code,
	// so it runs outside the lock; no other goroutine can race on this gid.
	v := k.init()
	s = &v
	k.mu.Lock()
	k.slots[g] = s
	k.mu.Unlock()
	onGoroutineExit(g, func() { k.drop(g) })
	return s
}

func (k *LocalKey[T]) drop(g uint64) {
	k.mu.Lock()
	delete(k.slots, g)
	k.mu.Unlock()
}

func (k *LocalKey[T]) Get() T          { return *k.slot() }
func (k *LocalKey[T]) Set(v T)         { *k.slot() = v }
func (k *LocalKey[T]) With(f func(*T)) { f(k.slot()) }
func (k *LocalKey[T]) Forget()         { k.drop(gid()) }

var _ Key[int] = (*LocalKey[int])(nil)

// ExternKey is the importing form of a thread-scoped declaration: an
// ExternDouble around the exporter's published accessor reference, with every
// accessor method forwarded through both indirection levels on each call.
type ExternKey[T any] struct {
	ExternDouble[LocalKey[T]]
}

func (k ExternKey[T]) Get() T          { return k.Deref().Get() }
func (k ExternKey[T]) Set(v T)         { k.Deref().Set(v) }
func (k ExternKey[T]) With(f func(*T)) { k.Deref().With(f) }
func (k ExternKey[T]) Forget()         { k.Deref().Forget() }

var _ Key[int] = ExternKey[int]{}
