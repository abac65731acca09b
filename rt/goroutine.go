package rt

import (
	"runtime"
	"sync"
)

// gid returns the current goroutine's id, parsed from the stack header
// ("goroutine 123 [running]:"). Slot lookup is not on anyone's hot path, so
// the parse cost is acceptable; the id is only ever used as a map key.
func gid() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	const prefix = len("goroutine ")
	var id uint64
	for i := prefix; i < n; i++ {
		c := buf[i]
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + uint64(c-'0')
	}
	return id
}

// exitHooks tracks slot-release callbacks for goroutines started via Spawn.
// Presence of a gid marks the goroutine as tracked; keys created on untracked
// goroutines live until Forget is called explicitly.
var exitHooks = struct {
	mu sync.Mutex
	m  map[uint64][]func()
}{m: make(map[uint64][]func())}

func onGoroutineExit(g uint64, fn func()) {
	exitHooks.mu.Lock()
	if hooks, tracked := exitHooks.m[g]; tracked {
		exitHooks.m[g] = append(hooks, fn)
	}
	exitHooks.mu.Unlock()
}

// Spawn runs fn on a new goroutine and releases every thread-scoped slot the
// goroutine acquired once fn returns. This is the lifecycle integration
// point: a slot's lifetime belongs to its goroutine, not to any module.
//
// Goroutines started with plain `go` keep their slots until each key's
// Forget is called.
func Spawn(fn func()) {
	go func() {
		g := gid()
		exitHooks.mu.Lock()
		exitHooks.m[g] = nil
		exitHooks.mu.Unlock()
		defer releaseSlots(g)
		fn()
	}()
}

func releaseSlots(g uint64) {
	exitHooks.mu.Lock()
	hooks := exitHooks.m[g]
	delete(exitHooks.m, g)
	exitHooks.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}
