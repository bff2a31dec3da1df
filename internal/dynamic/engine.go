package dynamic

// #region engine

// Engine is the dynamic-gesture phase state machine. It is driven
// synchronously by recognizer events pushed into the tick; it holds no
// timers of its own — latching outcome messages is the orchestrator's job.
type Engine struct {
	config  Config
	phase   Phase
	gesture string

	progress      float32
	lastIssue     Issue
	failureReason FailureReason
	failurePhase  GesturePhase
}

// NewEngine creates an engine in the Idle phase.
func NewEngine(config Config) *Engine {
	return &Engine{config: config, phase: PhaseIdle, lastIssue: IssueNone}
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase { return e.phase }

// Gesture returns the name of the gesture in flight, or "".
func (e *Engine) Gesture() string { return e.gesture }

// Progress returns the last reported progress in [0,1].
func (e *Engine) Progress() float32 { return e.progress }

// FailureReason returns the recognizer's reason for the last failure.
func (e *Engine) FailureReason() (FailureReason, GesturePhase) {
	return e.failureReason, e.failurePhase
}

// #endregion engine

// #region transitions

// HandleStarted moves Idle → StartDetected when the recognizer confirms the
// gesture's required starting hand shape. Ignored in any other phase.
func (e *Engine) HandleStarted(name string) bool {
	if e.phase != PhaseIdle {
		return false
	}
	e.phase = PhaseStartDetected
	e.gesture = name
	e.progress = 0
	e.lastIssue = IssueNone
	return true
}

// HandleProgress consumes one progress sample. The first sample moves
// StartDetected → InProgress; afterwards InProgress and NearCompletion
// toggle freely on the progress threshold. accepted is false when the
// engine is in a phase that takes no samples (Idle or a latched outcome),
// in which case nothing changes.
func (e *Engine) HandleProgress(name string, progress float32, m Metrics, def Definition) (issue Issue, accepted, phaseChanged bool) {
	switch e.phase {
	case PhaseStartDetected, PhaseInProgress, PhaseNearCompletion:
	default:
		return IssueNone, false, false
	}

	e.gesture = name
	e.progress = progress

	prev := e.phase
	if progress >= e.config.NearCompletionProgress {
		e.phase = PhaseNearCompletion
	} else {
		e.phase = PhaseInProgress
	}

	issue = e.DetectMovementIssue(m, def)
	e.lastIssue = issue
	return issue, true, e.phase != prev
}

// HandleCompleted moves InProgress/NearCompletion → Completed on the
// recognizer's success signal.
func (e *Engine) HandleCompleted() bool {
	if e.phase != PhaseInProgress && e.phase != PhaseNearCompletion {
		return false
	}
	e.phase = PhaseCompleted
	return true
}

// HandleFailed moves InProgress/NearCompletion → Failed with the
// recognizer's reason and the gesture sub-phase it happened in.
func (e *Engine) HandleFailed(reason FailureReason, gesturePhase GesturePhase) bool {
	if e.phase != PhaseInProgress && e.phase != PhaseNearCompletion {
		return false
	}
	e.phase = PhaseFailed
	e.failureReason = reason
	e.failurePhase = gesturePhase
	return true
}

// Resume pulls a Failed engine back to InProgress, used when the learner's
// start pose is still valid after the failure message latch expires.
func (e *Engine) Resume() bool {
	if e.phase != PhaseFailed {
		return false
	}
	e.phase = PhaseInProgress
	e.failureReason = FailureNone
	e.failurePhase = ""
	return true
}

// Reset returns the engine to Idle from any phase and clears gesture state.
func (e *Engine) Reset() {
	e.phase = PhaseIdle
	e.gesture = ""
	e.progress = 0
	e.lastIssue = IssueNone
	e.failureReason = FailureNone
	e.failurePhase = ""
}

// #endregion transitions
