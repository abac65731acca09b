package observ

import (
	"strings"
	"testing"
	"time"
)

func TestTimerPhases(t *testing.T) {
	tm := NewTimer()
	i := tm.Begin("load")
	time.Sleep(time.Millisecond)
	tm.End(i, "1 manifest")

	j := tm.Begin("generate")
	tm.End(j, "")

	report := tm.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("report has %d phases, want 2", len(report.Phases))
	}
	if report.Phases[0].Name != "load" || report.Phases[0].Note != "1 manifest" {
		t.Fatalf("first phase = %+v", report.Phases[0])
	}
	if report.Phases[0].DurationMS <= 0 {
		t.Fatalf("load duration not recorded")
	}
	if report.TotalMS < report.Phases[0].DurationMS {
		t.Fatalf("total %.2f smaller than a single phase %.2f", report.TotalMS, report.Phases[0].DurationMS)
	}
}

func TestTimerSummaryMentionsPhases(t *testing.T) {
	tm := NewTimer()
	tm.End(tm.Begin("validate"), "")
	s := tm.Summary()
	if !strings.Contains(s, "validate") || !strings.Contains(s, "total") {
		t.Fatalf("summary incomplete:\n%s", s)
	}
}

func TestTimerEndOutOfRange(t *testing.T) {
	tm := NewTimer()
	tm.End(5, "nope") // must not panic
	if got := len(tm.Report().Phases); got != 0 {
		t.Fatalf("phantom phase recorded: %d", got)
	}
}
