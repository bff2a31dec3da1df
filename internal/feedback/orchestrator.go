package feedback

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/handslab/signcoach/internal/dynamic"
	"github.com/handslab/signcoach/internal/evaluate"
	"github.com/handslab/signcoach/internal/hand"
	"github.com/handslab/signcoach/internal/profile"
	"github.com/handslab/signcoach/internal/stabilize"
)

// Fallback texts for the two locally recovered error cases: a sign with no
// authored profile, and a recognizer that still says no-match when the
// evaluator finds nothing wrong.
const (
	genericFallbackMessage = "Adjust your hand position"
	disagreementMessage    = "Not fully recognized yet, try again"
)

// #region params

// Params wires the orchestrator. Nil sub-components get defaults so tests
// can construct only what they exercise.
type Params struct {
	Registry          *profile.Registry
	Evaluator         *evaluate.Evaluator
	Stabilizer        *stabilize.Stabilizer
	Engine            *dynamic.Engine
	DynamicRecognizer DynamicRecognizer
	Config            Config
	Logger            *zap.Logger
	Rand              *rand.Rand
}

// #endregion params

// #region orchestrator

// Orchestrator is the top-level coordinator. It is explicitly constructed
// and passed to collaborators by the host's composition root; there is no
// package-level instance. All methods must be called from one logical
// thread.
type Orchestrator struct {
	log        *zap.Logger
	registry   *profile.Registry
	evaluator  *evaluate.Evaluator
	stabilizer *stabilize.Stabilizer
	engine     *dynamic.Engine
	dynRec     DynamicRecognizer
	config     Config
	rng        *rand.Rand

	active    bool
	sign      string
	state     State
	attemptID string
	overlay   bool
	messages  []string

	lastAnalysis time.Time
	analyzed     bool
	successUntil time.Time
	latchUntil   time.Time
	latched      bool

	warnedSigns map[string]bool
	events      []Event
}

// New creates an orchestrator from Params.
func New(p Params) *Orchestrator {
	if p.Registry == nil {
		p.Registry = profile.NewRegistry()
	}
	if p.Evaluator == nil {
		p.Evaluator = evaluate.NewEvaluator(evaluate.DefaultConfig())
	}
	if p.Stabilizer == nil {
		p.Stabilizer = stabilize.NewStabilizer(stabilize.DefaultConfig())
	}
	if p.Engine == nil {
		p.Engine = dynamic.NewEngine(dynamic.DefaultConfig())
	}
	if p.Config == (Config{}) {
		p.Config = DefaultConfig()
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.Rand == nil {
		p.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Orchestrator{
		log:         p.Logger,
		registry:    p.Registry,
		evaluator:   p.Evaluator,
		stabilizer:  p.Stabilizer,
		engine:      p.Engine,
		dynRec:      p.DynamicRecognizer,
		config:      p.Config,
		rng:         p.Rand,
		state:       StateInactive,
		warnedSigns: make(map[string]bool),
	}
}

// State returns the externally observed feedback state.
func (o *Orchestrator) State() State { return o.state }

// Phase returns the dynamic engine's current phase.
func (o *Orchestrator) Phase() dynamic.Phase { return o.engine.Phase() }

// Messages returns the currently displayed message list.
func (o *Orchestrator) Messages() []string { return o.messages }

// OverlayVisible reports whether the static per-finger overlay should show.
// Visible only while the dynamic engine is Idle: mid-motion, static shape
// cues would contradict the movement the learner is making.
func (o *Orchestrator) OverlayVisible() bool { return o.overlay }

// #endregion orchestrator

// #region lifecycle

// SetActive enables or disables the orchestrator. Disabling synchronously
// clears all hysteresis windows and latch timers so nothing stale fires
// into the next session.
func (o *Orchestrator) SetActive(active bool, now time.Time) {
	if o.active == active {
		return
	}
	o.active = active
	if !active {
		o.resetAll(now)
		o.setState(StateInactive, now)
		o.syncOverlay(now)
		return
	}
	o.newAttempt()
	o.setState(StateWaiting, now)
	o.syncOverlay(now)
}

// SetSign switches the target sign. A sign change is a new context: every
// window and timer is cleared.
func (o *Orchestrator) SetSign(signName string, now time.Time) {
	if o.sign == signName {
		return
	}
	o.sign = signName
	o.resetAll(now)
	if o.active {
		o.newAttempt()
		o.setState(StateWaiting, now)
	}
	o.syncOverlay(now)
}

// Reset clears all transient state while staying active.
func (o *Orchestrator) Reset(now time.Time) {
	o.resetAll(now)
	if o.active {
		o.newAttempt()
		o.setState(StateWaiting, now)
	}
	o.syncOverlay(now)
}

// resetAll clears hysteresis, latch, engine, messages, and the debounce
// clock.
func (o *Orchestrator) resetAll(now time.Time) {
	o.stabilizer.Clear()
	o.engine.Reset()
	o.latched = false
	o.latchUntil = time.Time{}
	o.successUntil = time.Time{}
	o.analyzed = false
	o.setMessages(nil, now)
}

func (o *Orchestrator) newAttempt() {
	o.attemptID = uuid.New().String()
}

// #endregion lifecycle

// #region tick

// Tick runs one update cycle on this tick's snapshot. performed is the
// external recognizer's authoritative match signal. The snapshot must come
// from the same tick as performed so curls and the match flag never tear.
func (o *Orchestrator) Tick(now time.Time, snap hand.Snapshot, performed bool) {
	if !o.active {
		return
	}

	o.expireLatch(now)

	if o.engine.Phase() != dynamic.PhaseIdle {
		// A dynamic gesture is in flight; static analysis stays out of the
		// way until the engine re-arms.
		o.syncOverlay(now)
		return
	}
	o.syncOverlay(now)

	if now.Before(o.successUntil) {
		return
	}
	if o.analyzed && now.Sub(o.lastAnalysis) < o.config.AnalysisInterval {
		return
	}
	o.lastAnalysis = now
	o.analyzed = true

	o.analyzeStatic(now, snap, performed)
}

// analyzeStatic runs evaluation, stabilization, and state derivation for the
// static path.
func (o *Orchestrator) analyzeStatic(now time.Time, snap hand.Snapshot, performed bool) {
	prof, found := o.registry.Lookup(o.sign)
	if !found && !o.warnedSigns[o.sign] {
		o.warnedSigns[o.sign] = true
		o.log.Warn("no constraint profile for sign, using generic fallback",
			zap.String("sign", o.sign))
	}

	if performed {
		res := evaluate.Result{IsMatch: true, MatchScore: 1}
		o.emit(Event{Kind: EventAnalysis, At: now, Analysis: &res})
		o.stabilizer.Clear()
		o.setMessages(nil, now)
		o.setState(StateSuccess, now)
		o.successUntil = now.Add(o.config.SuccessDisplay)
		o.emit(Event{Kind: EventAttemptFinished, At: now, Succeeded: true})
		o.newAttempt()
		return
	}

	var cands []stabilize.Candidate
	var res evaluate.Result
	switch {
	case !found:
		res = evaluate.Result{MatchScore: 0}
		cands = []stabilize.Candidate{{Text: genericFallbackMessage, Weight: 2, Affected: 1}}
	default:
		res = o.evaluator.Evaluate(prof, snap, false)
		cands = stabilize.BuildCandidates(res)
		if len(res.Errors) == 0 {
			// The evaluator agrees but the authoritative recognizer does
			// not; never claim success on the evaluator's word alone.
			cands = append(cands, stabilize.Candidate{Text: disagreementMessage, Weight: 2, Affected: 1})
		}
	}

	o.emit(Event{Kind: EventAnalysis, At: now, Analysis: &res})
	stable := o.stabilizer.Update(cands, now)
	o.setMessages(stable, now)

	switch {
	case res.MajorCount > 0:
		o.setState(StateShowingErrors, now)
	case res.IsNearMatch:
		o.setState(StatePartialMatch, now)
	case found && len(res.Errors) == 0:
		o.setState(StatePartialMatch, now)
	default:
		o.setState(StateShowingErrors, now)
	}
}

// #endregion tick

// #region latch

// expireLatch resolves an elapsed outcome latch. Completed always re-arms to
// Idle. Failed consults the recognizer once, at expiry: if the start pose is
// still valid the learner is still trying, so the phase resumes InProgress
// instead of punishing with a reset.
func (o *Orchestrator) expireLatch(now time.Time) {
	if !o.latched || now.Before(o.latchUntil) {
		return
	}
	o.latched = false
	o.latchUntil = time.Time{}

	switch o.engine.Phase() {
	case dynamic.PhaseCompleted:
		o.engine.Reset()
		o.setMessages(nil, now)
		o.setState(StateWaiting, now)
		o.emit(Event{Kind: EventPhaseChanged, At: now, Phase: o.engine.Phase()})
	case dynamic.PhaseFailed:
		if o.dynRec != nil && o.dynRec.IsStartPoseValid() {
			o.engine.Resume()
			o.setMessages(nil, now)
			o.setState(StateInProgress, now)
		} else {
			o.engine.Reset()
			o.setMessages(nil, now)
			o.setState(StateWaiting, now)
		}
		o.emit(Event{Kind: EventPhaseChanged, At: now, Phase: o.engine.Phase()})
	}
	o.syncOverlay(now)
}

// #endregion latch

// #region dynamic-events

// OnGestureStarted consumes the recognizer's start signal for a motion
// gesture. Static feedback is suspended until the engine returns to Idle.
func (o *Orchestrator) OnGestureStarted(name string, now time.Time) {
	if !o.active || !o.engine.HandleStarted(name) {
		return
	}
	o.newAttempt()
	o.stabilizer.Clear()
	o.setMessages(nil, now)
	o.setState(StateInProgress, now)
	o.emit(Event{Kind: EventPhaseChanged, At: now, Phase: o.engine.Phase()})
	o.syncOverlay(now)
}

// OnGestureProgress consumes one progress sample with its metrics snapshot.
// The single detected issue, if any, is shown immediately: dynamic
// corrections are already stabilized by the one-issue priority cascade.
// A sample the engine rejects is dropped whole, so a straggler arriving
// during a latched outcome cannot disturb the held message.
func (o *Orchestrator) OnGestureProgress(name string, progress float32, m dynamic.Metrics, def dynamic.Definition, now time.Time) {
	if !o.active {
		return
	}
	issue, accepted, phaseChanged := o.engine.HandleProgress(name, progress, m, def)
	if !accepted {
		return
	}
	if phaseChanged {
		o.emit(Event{Kind: EventPhaseChanged, At: now, Phase: o.engine.Phase()})
	}

	switch {
	case issue != dynamic.IssueNone:
		o.setMessages([]string{dynamic.IssueMessage(issue, def)}, now)
		o.setState(StateInProgress, now)
	case o.engine.Phase() == dynamic.PhaseNearCompletion:
		o.setMessages([]string{"Almost there, keep going"}, now)
		o.setState(StateInProgress, now)
	default:
		o.setMessages(nil, now)
		o.setState(StateInProgress, now)
	}
}

// OnNearCompletion consumes the recognizer's explicit near-completion
// signal.
func (o *Orchestrator) OnNearCompletion(name string, progress float32, now time.Time) {
	o.OnGestureProgress(name, progress, dynamic.Metrics{HandShapeStable: true}, dynamic.Definition{}, now)
}

// OnGestureCompleted latches the success message, then re-arms after the
// hold expires.
func (o *Orchestrator) OnGestureCompleted(now time.Time) {
	if !o.active || !o.engine.HandleCompleted() {
		return
	}
	o.latched = true
	o.latchUntil = now.Add(o.config.DynamicSuccessHold)
	o.setMessages([]string{dynamic.SuccessMessage(o.engine.Gesture())}, now)
	o.setState(StateSuccess, now)
	o.emit(Event{Kind: EventPhaseChanged, At: now, Phase: o.engine.Phase()})
	o.emit(Event{Kind: EventAttemptFinished, At: now, Succeeded: true})
}

// OnGestureFailed latches the failure message for a randomized hold, after
// which expireLatch decides between resuming and re-arming.
func (o *Orchestrator) OnGestureFailed(reason dynamic.FailureReason, gesturePhase dynamic.GesturePhase, now time.Time) {
	if !o.active || !o.engine.HandleFailed(reason, gesturePhase) {
		return
	}
	o.latched = true
	o.latchUntil = now.Add(o.randomErrorHold())
	o.setMessages([]string{dynamic.FailureMessage(reason, gesturePhase)}, now)
	o.setState(StateShowingErrors, now)
	o.emit(Event{Kind: EventPhaseChanged, At: now, Phase: o.engine.Phase()})
	o.emit(Event{Kind: EventAttemptFinished, At: now, Succeeded: false})
}

// randomErrorHold picks a hold duration uniformly in [min, max].
func (o *Orchestrator) randomErrorHold() time.Duration {
	span := o.config.ErrorHoldMax - o.config.ErrorHoldMin
	if span <= 0 {
		return o.config.ErrorHoldMin
	}
	return o.config.ErrorHoldMin + time.Duration(o.rng.Int63n(int64(span)))
}

// #endregion dynamic-events

// #region observed-state

func (o *Orchestrator) setState(s State, now time.Time) {
	if o.state == s {
		return
	}
	o.state = s
	o.emit(Event{Kind: EventStateChanged, At: now, State: s})
}

func (o *Orchestrator) setMessages(msgs []string, now time.Time) {
	if equalStrings(o.messages, msgs) {
		return
	}
	o.messages = msgs
	o.emit(Event{Kind: EventMessageChanged, At: now, Messages: append([]string(nil), msgs...)})
}

func (o *Orchestrator) syncOverlay(now time.Time) {
	visible := o.active && o.engine.Phase() == dynamic.PhaseIdle
	if o.overlay == visible {
		return
	}
	o.overlay = visible
	o.emit(Event{Kind: EventOverlayChanged, At: now, Overlay: visible})
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// #endregion observed-state
