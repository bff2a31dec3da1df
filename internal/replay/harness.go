package replay

import (
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/handslab/signcoach/internal/config"
	"github.com/handslab/signcoach/internal/dynamic"
	"github.com/handslab/signcoach/internal/evaluate"
	"github.com/handslab/signcoach/internal/feedback"
	"github.com/handslab/signcoach/internal/hand"
	"github.com/handslab/signcoach/internal/profile"
	"github.com/handslab/signcoach/internal/stabilize"
)

// #region result-types

// FrameResult captures the observable state after one frame's tick.
type FrameResult struct {
	Index    int
	AtMs     int64
	State    feedback.State
	Phase    dynamic.Phase
	Messages []string
	Overlay  bool
	Events   []feedback.Event
}

// Mismatch records one failed expectation.
type Mismatch struct {
	Frame int
	Field string
	Want  string
	Got   string
}

// Summary aggregates one replay run.
type Summary struct {
	Frames         int
	Analyses       int
	MessageChanges int
	PhaseChanges   int
	AttemptsWon    int
	AttemptsLost   int
	Mismatches     []Mismatch
	FinalState     feedback.State
	FinalPhase     dynamic.Phase
}

// #endregion result-types

// #region recognizer-stub

// scriptedRecognizer replays the fixture's pull-side start-pose flag.
type scriptedRecognizer struct {
	startPoseValid bool
}

func (s *scriptedRecognizer) IsStartPoseValid() bool { return s.startPoseValid }

// #endregion recognizer-stub

// #region replay

// Replay runs every frame through the full pipeline with a synthetic clock
// and returns per-frame results. Operates entirely in-memory.
func Replay(fix *Fixture) ([]FrameResult, error) {
	tun := config.DefaultTunables()
	if fix.Tunables != nil {
		tun = *fix.Tunables
	}

	reg := profile.NewRegistry()
	if fix.Profile != nil {
		p, err := fix.Profile.ToProfile()
		if err != nil {
			return nil, fmt.Errorf("fixture profile: %w", err)
		}
		reg.Register(p)
	}

	rec := &scriptedRecognizer{}
	orch := feedback.New(feedback.Params{
		Registry:          reg,
		Evaluator:         evaluate.NewEvaluator(tun.Evaluator),
		Stabilizer:        stabilize.NewStabilizer(tun.Stabilizer),
		Engine:            dynamic.NewEngine(tun.Dynamic),
		DynamicRecognizer: rec,
		Config:            tun.Orchestrator,
		Logger:            zap.NewNop(),
		Rand:              rand.New(rand.NewSource(fix.Seed)),
	})

	epoch := time.Unix(0, 0).UTC()
	orch.SetActive(true, epoch)
	orch.SetSign(fix.Sign, epoch)
	orch.DrainEvents()

	var snap hand.Snapshot
	results := make([]FrameResult, 0, len(fix.Frames))

	for i, frame := range fix.Frames {
		now := epoch.Add(time.Duration(frame.AtMs) * time.Millisecond)
		applyFrame(&snap, frame)

		if ev := frame.Event; ev != nil {
			if ev.StartPoseValid != nil {
				rec.startPoseValid = *ev.StartPoseValid
			}
			dispatchEvent(orch, ev, now)
		}

		orch.Tick(now, snap, frame.Performed)

		results = append(results, FrameResult{
			Index:    i,
			AtMs:     frame.AtMs,
			State:    orch.State(),
			Phase:    orch.Phase(),
			Messages: append([]string(nil), orch.Messages()...),
			Overlay:  orch.OverlayVisible(),
			Events:   orch.DrainEvents(),
		})
	}
	return results, nil
}

// applyFrame folds one frame's sparse snapshot values onto the carried
// snapshot.
func applyFrame(snap *hand.Snapshot, frame Frame) {
	if frame.Curls != nil {
		snap.Curls = *frame.Curls
	}
	if frame.Directions != nil {
		for _, f := range hand.AllFingers {
			d := frame.Directions[f]
			snap.Directions[f] = hand.Vec3{X: d[0], Y: d[1], Z: d[2]}
		}
	}
	if frame.Tips != nil {
		for _, f := range hand.AllFingers {
			t := frame.Tips[f]
			snap.TipPositions[f] = hand.Vec3{X: t[0], Y: t[1], Z: t[2]}
		}
	}
	if frame.PalmForward != nil {
		p := *frame.PalmForward
		snap.PalmForward = hand.Vec3{X: p[0], Y: p[1], Z: p[2]}.Normalized()
		snap.PalmTracked = true
	}
}

// dispatchEvent pushes one recorded recognizer signal into the
// orchestrator.
func dispatchEvent(orch *feedback.Orchestrator, ev *DynamicEvent, now time.Time) {
	switch ev.Type {
	case "started":
		orch.OnGestureStarted(ev.Name, now)
	case "progress":
		var m dynamic.Metrics
		if ev.Metrics != nil {
			m = *ev.Metrics
		}
		var def dynamic.Definition
		if ev.Definition != nil {
			def = *ev.Definition
		}
		orch.OnGestureProgress(ev.Name, ev.Progress, m, def, now)
	case "near_completion":
		orch.OnNearCompletion(ev.Name, ev.Progress, now)
	case "completed":
		orch.OnGestureCompleted(now)
	case "failed":
		orch.OnGestureFailed(dynamic.FailureReason(ev.Reason), dynamic.GesturePhase(ev.GesturePhase), now)
	}
}

// #endregion replay

// #region summarize

// Summarize checks expectations and aggregates stats from replay results.
func Summarize(fix *Fixture, results []FrameResult) Summary {
	s := Summary{Frames: len(results)}
	if len(results) > 0 {
		last := results[len(results)-1]
		s.FinalState = last.State
		s.FinalPhase = last.Phase
	}

	for _, r := range results {
		for _, ev := range r.Events {
			switch ev.Kind {
			case feedback.EventAnalysis:
				s.Analyses++
			case feedback.EventMessageChanged:
				s.MessageChanges++
			case feedback.EventPhaseChanged:
				s.PhaseChanges++
			case feedback.EventAttemptFinished:
				if ev.Succeeded {
					s.AttemptsWon++
				} else {
					s.AttemptsLost++
				}
			}
		}
	}

	for _, exp := range fix.Expected {
		if exp.Frame < 0 || exp.Frame >= len(results) {
			s.Mismatches = append(s.Mismatches, Mismatch{
				Frame: exp.Frame, Field: "frame",
				Want: "in range", Got: fmt.Sprintf("%d frames", len(results)),
			})
			continue
		}
		r := results[exp.Frame]
		if exp.State != "" && string(r.State) != exp.State {
			s.Mismatches = append(s.Mismatches, Mismatch{Frame: exp.Frame, Field: "state", Want: exp.State, Got: string(r.State)})
		}
		if exp.Phase != "" && string(r.Phase) != exp.Phase {
			s.Mismatches = append(s.Mismatches, Mismatch{Frame: exp.Frame, Field: "phase", Want: exp.Phase, Got: string(r.Phase)})
		}
		if exp.Overlay != nil && r.Overlay != *exp.Overlay {
			s.Mismatches = append(s.Mismatches, Mismatch{Frame: exp.Frame, Field: "overlay", Want: fmt.Sprint(*exp.Overlay), Got: fmt.Sprint(r.Overlay)})
		}
		if exp.Messages != nil && !sameMessages(exp.Messages, r.Messages) {
			s.Mismatches = append(s.Mismatches, Mismatch{Frame: exp.Frame, Field: "messages", Want: fmt.Sprint(exp.Messages), Got: fmt.Sprint(r.Messages)})
		}
	}
	return s
}

func sameMessages(a, b []string) bool {
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

// #endregion summarize
