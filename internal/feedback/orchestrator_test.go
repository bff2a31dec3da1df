package feedback

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/handslab/signcoach/internal/dynamic"
	"github.com/handslab/signcoach/internal/hand"
	"github.com/handslab/signcoach/internal/profile"
)

type stubDynRec struct {
	startPoseValid bool
}

func (s *stubDynRec) IsStartPoseValid() bool { return s.startPoseValid }

func fistProfile() *profile.Profile {
	p := &profile.Profile{SignName: "fist"}
	for _, f := range hand.AllFingers {
		p.Fingers[f].Curl = profile.CurlConstraint{Min: 0.75, Max: 1.0, Enabled: true, Severity: hand.SeverityMajor}
	}
	return p
}

func fistSnapshot(curl float32) hand.Snapshot {
	var snap hand.Snapshot
	for _, f := range hand.AllFingers {
		snap.Curls[f] = curl
		snap.Directions[f] = hand.Vec3{Y: 1}
	}
	return snap
}

func newTestOrchestrator(t *testing.T, rec DynamicRecognizer) *Orchestrator {
	t.Helper()
	reg := profile.NewRegistry()
	reg.Register(fistProfile())
	return New(Params{
		Registry:          reg,
		DynamicRecognizer: rec,
		Rand:              rand.New(rand.NewSource(1)),
	})
}

func countKind(events []Event, kind EventKind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func TestInactiveIgnoresTicks(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	t0 := time.Unix(0, 0)

	o.Tick(t0, fistSnapshot(0), false)
	require.Equal(t, StateInactive, o.State())
	require.Empty(t, o.DrainEvents())
}

func TestActivationStartsAnAttempt(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	t0 := time.Unix(0, 0)

	o.SetActive(true, t0)
	require.Equal(t, StateWaiting, o.State())
	require.True(t, o.OverlayVisible())

	events := o.DrainEvents()
	require.Equal(t, 1, countKind(events, EventStateChanged))
	require.Equal(t, 1, countKind(events, EventOverlayChanged))
	require.NotEmpty(t, events[0].AttemptID)
}

func TestAnalysisDebounce(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	t0 := time.Unix(0, 0)
	o.SetActive(true, t0)
	o.SetSign("fist", t0)
	o.DrainEvents()

	o.Tick(t0, fistSnapshot(0.85), false)
	o.Tick(t0.Add(100*time.Millisecond), fistSnapshot(0.85), false)
	o.Tick(t0.Add(200*time.Millisecond), fistSnapshot(0.85), false)

	// The 100ms tick falls inside the analysis interval and is skipped.
	require.Equal(t, 2, countKind(o.DrainEvents(), EventAnalysis))
}

func TestStaticSuccessPausesAnalysis(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	t0 := time.Unix(0, 0)
	o.SetSign("fist", t0)
	o.SetActive(true, t0)
	first := o.DrainEvents()[0].AttemptID

	o.Tick(t0, fistSnapshot(0.85), true)
	require.Equal(t, StateSuccess, o.State())
	require.Empty(t, o.Messages())

	events := o.DrainEvents()
	require.Equal(t, 1, countKind(events, EventAttemptFinished))
	for _, ev := range events {
		if ev.Kind == EventAttemptFinished {
			require.True(t, ev.Succeeded)
			require.Equal(t, first, ev.AttemptID)
		}
	}

	// The next attempt gets a fresh id and analysis stays paused for the
	// whole success display window.
	o.Tick(t0.Add(500*time.Millisecond), fistSnapshot(0), false)
	require.Equal(t, 0, countKind(o.DrainEvents(), EventAnalysis))
	require.Equal(t, StateSuccess, o.State())

	o.Tick(t0.Add(2100*time.Millisecond), fistSnapshot(0), false)
	events = o.DrainEvents()
	require.Equal(t, 1, countKind(events, EventAnalysis))
	for _, ev := range events {
		require.NotEqual(t, first, ev.AttemptID)
	}
}

func TestMajorErrorsShowAfterHysteresis(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	t0 := time.Unix(0, 0)
	o.SetActive(true, t0)
	o.SetSign("fist", t0)
	o.DrainEvents()

	// Fully extended hand against a fist profile: five major errors.
	o.Tick(t0, fistSnapshot(0.05), false)
	require.Equal(t, StateShowingErrors, o.State())
	require.Empty(t, o.Messages(), "messages wait out the entry delay")

	o.Tick(t0.Add(200*time.Millisecond), fistSnapshot(0.05), false)
	o.Tick(t0.Add(400*time.Millisecond), fistSnapshot(0.05), false)
	require.Equal(t, []string{
		"Adjust: thumb, index, middle, ring and pinky",
		"5 fingers left",
	}, o.Messages())
}

func TestNearMatchIsPartial(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	t0 := time.Unix(0, 0)
	o.SetActive(true, t0)
	o.SetSign("fist", t0)

	// Widened lower bound is 0.67; a curl of 0.55 is a minor deviation.
	o.Tick(t0, fistSnapshot(0.55), false)
	require.Equal(t, StatePartialMatch, o.State())
}

func TestRecognizerDisagreement(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	t0 := time.Unix(0, 0)
	o.SetActive(true, t0)
	o.SetSign("fist", t0)

	// The evaluator finds nothing wrong but the recognizer still says no.
	o.Tick(t0, fistSnapshot(0.85), false)
	require.Equal(t, StatePartialMatch, o.State())

	o.Tick(t0.Add(200*time.Millisecond), fistSnapshot(0.85), false)
	o.Tick(t0.Add(400*time.Millisecond), fistSnapshot(0.85), false)
	require.Equal(t, []string{"Not fully recognized yet, try again"}, o.Messages())
}

func TestMissingProfileFallback(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	t0 := time.Unix(0, 0)
	o.SetActive(true, t0)
	o.SetSign("unauthored", t0)

	o.Tick(t0, fistSnapshot(0.85), false)
	require.Equal(t, StateShowingErrors, o.State())

	o.Tick(t0.Add(200*time.Millisecond), fistSnapshot(0.85), false)
	o.Tick(t0.Add(400*time.Millisecond), fistSnapshot(0.85), false)
	require.Equal(t, []string{"Adjust your hand position"}, o.Messages())
}

func TestDynamicGestureSuspendsStaticAnalysis(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	t0 := time.Unix(0, 0)
	o.SetActive(true, t0)
	o.SetSign("fist", t0)
	o.DrainEvents()

	o.OnGestureStarted("letter_j", t0)
	require.Equal(t, StateInProgress, o.State())
	require.False(t, o.OverlayVisible(), "overlay hides while a motion is in flight")

	o.Tick(t0.Add(300*time.Millisecond), fistSnapshot(0.05), false)
	require.Equal(t, 0, countKind(o.DrainEvents(), EventAnalysis))
}

func TestGestureProgressShowsSingleIssue(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	t0 := time.Unix(0, 0)
	o.SetActive(true, t0)
	o.OnGestureStarted("letter_j", t0)

	def := dynamic.Definition{Name: "letter_j", MinSpeed: 0.5, Hint: "draw a J shape"}
	m := dynamic.Metrics{AverageSpeed: 0.1, HandShapeStable: true, Duration: 0.1}
	o.OnGestureProgress("letter_j", 0.3, m, def, t0.Add(100*time.Millisecond))

	require.Equal(t, []string{"Move a bit faster (draw a J shape)"}, o.Messages())
	require.Equal(t, StateInProgress, o.State())

	// A clean sample near the end swaps to the morale message.
	m.AverageSpeed = 0.6
	o.OnGestureProgress("letter_j", 0.9, m, def, t0.Add(200*time.Millisecond))
	require.Equal(t, []string{"Almost there, keep going"}, o.Messages())
	require.Equal(t, dynamic.PhaseNearCompletion, o.Phase())
}

func TestCompletedGestureLatchesThenRearms(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	t0 := time.Unix(0, 0)
	o.SetActive(true, t0)
	o.OnGestureStarted("letter_j", t0)
	o.OnGestureProgress("letter_j", 0.5, dynamic.Metrics{HandShapeStable: true}, dynamic.Definition{}, t0)
	o.DrainEvents()

	o.OnGestureCompleted(t0)
	require.Equal(t, StateSuccess, o.State())
	require.Equal(t, []string{`Great, "letter_j" complete`}, o.Messages())
	events := o.DrainEvents()
	require.Equal(t, 1, countKind(events, EventAttemptFinished))

	// Held for the full success hold, ignoring ticks.
	o.Tick(t0.Add(time.Second), fistSnapshot(0), false)
	require.Equal(t, StateSuccess, o.State())
	require.Equal(t, dynamic.PhaseCompleted, o.Phase())

	// After the hold the engine re-arms to Idle and the overlay returns.
	o.Tick(t0.Add(3*time.Second+time.Millisecond), fistSnapshot(0), false)
	require.Equal(t, dynamic.PhaseIdle, o.Phase())
	require.True(t, o.OverlayVisible())
}

func TestFailedGestureResumesWhenStartPoseHolds(t *testing.T) {
	rec := &stubDynRec{startPoseValid: true}
	o := newTestOrchestrator(t, rec)
	t0 := time.Unix(0, 0)
	o.SetActive(true, t0)
	o.OnGestureStarted("letter_z", t0)
	o.OnGestureProgress("letter_z", 0.5, dynamic.Metrics{HandShapeStable: true}, dynamic.Definition{}, t0)

	o.OnGestureFailed(dynamic.FailureWrongPath, dynamic.GesturePhaseMove, t0)
	require.Equal(t, StateShowingErrors, o.State())
	require.Equal(t, []string{"The movement path didn't match, try again"}, o.Messages())
	require.Equal(t, dynamic.PhaseFailed, o.Phase())

	// The hold is randomized in [1.0s, 1.3s); at 1.3s it has expired. The
	// start pose still being valid pulls the learner back into the motion
	// instead of resetting them to the beginning.
	o.Tick(t0.Add(1300*time.Millisecond), fistSnapshot(0), false)
	require.Equal(t, dynamic.PhaseInProgress, o.Phase())
	require.Equal(t, StateInProgress, o.State())
	require.Empty(t, o.Messages())
}

func TestStragglerProgressKeepsFailureLatch(t *testing.T) {
	rec := &stubDynRec{startPoseValid: true}
	o := newTestOrchestrator(t, rec)
	t0 := time.Unix(0, 0)
	o.SetActive(true, t0)
	o.OnGestureStarted("letter_z", t0)
	o.OnGestureProgress("letter_z", 0.4, dynamic.Metrics{HandShapeStable: true}, dynamic.Definition{}, t0)
	o.OnGestureFailed(dynamic.FailureWrongPath, dynamic.GesturePhaseMove, t0)

	// A sample still in flight from the recognizer lands after the failure
	// latched; it must not wipe the held message or flip the state.
	o.OnGestureProgress("letter_z", 0.45, dynamic.Metrics{HandShapeStable: true}, dynamic.Definition{}, t0.Add(50*time.Millisecond))
	require.Equal(t, dynamic.PhaseFailed, o.Phase())
	require.Equal(t, StateShowingErrors, o.State())
	require.Equal(t, []string{"The movement path didn't match, try again"}, o.Messages())
}

func TestStragglerProgressKeepsSuccessLatch(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	t0 := time.Unix(0, 0)
	o.SetActive(true, t0)
	o.OnGestureStarted("letter_j", t0)
	o.OnGestureProgress("letter_j", 0.9, dynamic.Metrics{HandShapeStable: true}, dynamic.Definition{}, t0)
	o.OnGestureCompleted(t0)

	o.OnGestureProgress("letter_j", 0.95, dynamic.Metrics{HandShapeStable: true}, dynamic.Definition{}, t0.Add(50*time.Millisecond))
	require.Equal(t, dynamic.PhaseCompleted, o.Phase())
	require.Equal(t, StateSuccess, o.State())
	require.Equal(t, []string{`Great, "letter_j" complete`}, o.Messages())
}

func TestProgressWithoutStartedGestureIsIgnored(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	t0 := time.Unix(0, 0)
	o.SetActive(true, t0)
	o.DrainEvents()

	o.OnGestureProgress("letter_j", 0.5, dynamic.Metrics{HandShapeStable: true}, dynamic.Definition{}, t0)
	require.Equal(t, StateWaiting, o.State())
	require.Equal(t, dynamic.PhaseIdle, o.Phase())
	require.Empty(t, o.DrainEvents())
}

func TestFailedGestureResetsWhenStartPoseLost(t *testing.T) {
	rec := &stubDynRec{startPoseValid: false}
	o := newTestOrchestrator(t, rec)
	t0 := time.Unix(0, 0)
	o.SetActive(true, t0)
	o.OnGestureStarted("letter_z", t0)
	o.OnGestureProgress("letter_z", 0.5, dynamic.Metrics{HandShapeStable: true}, dynamic.Definition{}, t0)
	o.OnGestureFailed(dynamic.FailureTimeout, dynamic.GesturePhaseEnd, t0)

	o.Tick(t0.Add(1300*time.Millisecond), fistSnapshot(0), false)
	require.Equal(t, dynamic.PhaseIdle, o.Phase())
	require.True(t, o.OverlayVisible())
}

func TestSetSignClearsEverything(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	t0 := time.Unix(0, 0)
	o.SetActive(true, t0)
	o.SetSign("fist", t0)

	o.Tick(t0, fistSnapshot(0.05), false)
	o.Tick(t0.Add(200*time.Millisecond), fistSnapshot(0.05), false)
	o.Tick(t0.Add(400*time.Millisecond), fistSnapshot(0.05), false)
	require.NotEmpty(t, o.Messages())
	events := o.DrainEvents()
	firstAttempt := events[len(events)-1].AttemptID

	o.SetSign("letter_c", t0.Add(500*time.Millisecond))
	require.Equal(t, StateWaiting, o.State())
	require.Empty(t, o.Messages())

	events = o.DrainEvents()
	require.NotEmpty(t, events)
	for _, ev := range events {
		require.Equal(t, "letter_c", ev.Sign)
		if ev.Kind == EventStateChanged {
			require.Equal(t, StateWaiting, ev.State)
			require.NotEqual(t, firstAttempt, ev.AttemptID, "a sign switch starts a new attempt")
		}
	}
}

func TestDeactivationClearsState(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	t0 := time.Unix(0, 0)
	o.SetActive(true, t0)
	o.SetSign("fist", t0)
	o.Tick(t0, fistSnapshot(0.05), false)

	o.SetActive(false, t0.Add(time.Second))
	require.Equal(t, StateInactive, o.State())
	require.False(t, o.OverlayVisible())
	require.Empty(t, o.Messages())
}
