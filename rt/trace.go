package rt

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// TraceEnv gates trace output. It is read exactly once per process, on first
// use; output is produced only when the value is exactly "1".
const TraceEnv = "SOLO_TRACE"

var (
	traceOnce    sync.Once
	traceEnabled atomic.Bool
)

func tracingOn() bool {
	traceOnce.Do(func() {
		traceEnabled.Store(os.Getenv(TraceEnv) == "1")
	})
	return traceEnabled.Load()
}

// Tracef prints a diagnostic line prefixed with a cycling millisecond
// timestamp (wraps at 99999), the role-tagged shared-object beacon and the
// current goroutine's beacon. It is deliberately wasteful, which is why it
// hides behind an environment variable.
func Tracef(format string, args ...any) {
	if !tracingOn() {
		return
	}
	ts := time.Now().UnixMilli() % 99999
	so := NewBeacon(roleTag, SharedObjectID())
	g := NewBeacon("g", gid())
	fmt.Fprintf(os.Stderr, "%05d %s %s %s\n", ts, so, g, fmt.Sprintf(format, args...))
}
