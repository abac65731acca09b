// Package events carries progress notifications from the generation
// pipeline to whatever renders them (plain prints or the TUI).
package events

// Stage identifies a pipeline phase for one manifest.
type Stage uint8

const (
	StageLoad Stage = iota
	StageValidate
	StageGenerate
	StageWrite
)

func (s Stage) String() string {
	switch s {
	case StageLoad:
		return "load"
	case StageValidate:
		return "validate"
	case StageGenerate:
		return "generate"
	case StageWrite:
		return "write"
	}
	return "unknown"
}

// Status describes how far along a stage is.
type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusDone
	StatusError
)

// Event is one progress notification. Manifest is empty for run-wide events.
type Event struct {
	Manifest string
	Stage    Stage
	Status   Status
	Note     string
}

// Sink receives pipeline events.
type Sink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// NopSink drops every event.
type NopSink struct{}

func (NopSink) OnEvent(Event) {}
