package feedback

import (
	"time"

	"github.com/handslab/signcoach/internal/dynamic"
	"github.com/handslab/signcoach/internal/evaluate"
)

// #region event-kind

// EventKind tags what an Event reports.
type EventKind string

const (
	EventStateChanged    EventKind = "state_changed"
	EventMessageChanged  EventKind = "message_changed"
	EventOverlayChanged  EventKind = "overlay_changed"
	EventAnalysis        EventKind = "analysis"
	EventPhaseChanged    EventKind = "phase_changed"
	EventAttemptFinished EventKind = "attempt_finished"
)

// #endregion event-kind

// #region event

// Event is one observation appended to the orchestrator's output queue.
// The queue replaces delegate callbacks: collaborators (renderer, audio, UI)
// drain it once per tick, so the core stays callback-free.
type Event struct {
	Kind      EventKind
	At        time.Time
	AttemptID string
	Sign      string

	State    State
	Phase    dynamic.Phase
	Messages []string
	Overlay  bool

	// Analysis is set on EventAnalysis only.
	Analysis *evaluate.Result

	// Succeeded is meaningful on EventAttemptFinished.
	Succeeded bool
}

// #endregion event

// #region queue

// DrainEvents returns and clears everything emitted since the previous
// drain. Single-threaded by contract: the host calls this from the same
// logical thread that ticks the orchestrator.
func (o *Orchestrator) DrainEvents() []Event {
	events := o.events
	o.events = nil
	return events
}

func (o *Orchestrator) emit(ev Event) {
	ev.AttemptID = o.attemptID
	ev.Sign = o.sign
	o.events = append(o.events, ev)
}

// #endregion queue
