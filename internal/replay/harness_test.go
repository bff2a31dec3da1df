package replay

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/handslab/signcoach/internal/dynamic"
	"github.com/handslab/signcoach/internal/feedback"
	"github.com/handslab/signcoach/internal/hand"
	"github.com/handslab/signcoach/internal/profile"
)

func fistDocument() *profile.Document {
	fingers := make(map[string]profile.FingerDoc, hand.FingerCount)
	for _, f := range hand.AllFingers {
		fingers[f.String()] = profile.FingerDoc{
			Curl: &profile.CurlDoc{Min: 0.75, Max: 1.0},
		}
	}
	return &profile.Document{SignName: "fist", Fingers: fingers}
}

func flatCurls(v float32) *[hand.FingerCount]float32 {
	var curls [hand.FingerCount]float32
	for _, f := range hand.AllFingers {
		curls[f] = v
	}
	return &curls
}

func TestReplayStaticCorrectionFlow(t *testing.T) {
	fix := &Fixture{
		Description: "extended hand against a fist, then confirmed",
		Seed:        1,
		Sign:        "fist",
		Profile:     fistDocument(),
		Frames: []Frame{
			{AtMs: 0, Curls: flatCurls(0.05)},
			{AtMs: 200},
			{AtMs: 400},
			{AtMs: 600, Curls: flatCurls(0.9), Performed: true},
		},
	}

	results, err := Replay(fix)
	require.NoError(t, err)
	require.Len(t, results, 4)

	// The first analysis classifies immediately but messages wait out the
	// stabilizer's entry delay.
	require.Equal(t, feedback.StateShowingErrors, results[0].State)
	require.Empty(t, results[0].Messages)

	require.Equal(t, []string{
		"Adjust: thumb, index, middle, ring and pinky",
		"5 fingers left",
	}, results[2].Messages)

	require.Equal(t, feedback.StateSuccess, results[3].State)
	require.Empty(t, results[3].Messages)

	sum := Summarize(fix, results)
	require.Equal(t, 1, sum.AttemptsWon)
	require.Zero(t, sum.AttemptsLost)
	require.Empty(t, sum.Mismatches)
}

func TestReplayDynamicGestureFlow(t *testing.T) {
	stable := &dynamic.Metrics{AverageSpeed: 0.5, HandShapeStable: true}
	fix := &Fixture{
		Seed: 7,
		Sign: "letter_j",
		Frames: []Frame{
			{AtMs: 0, Curls: flatCurls(0.5), Event: &DynamicEvent{Type: "started", Name: "letter_j"}},
			{AtMs: 100, Event: &DynamicEvent{Type: "progress", Name: "letter_j", Progress: 0.5, Metrics: stable}},
			{AtMs: 200, Event: &DynamicEvent{Type: "progress", Name: "letter_j", Progress: 0.9, Metrics: stable}},
			{AtMs: 300, Event: &DynamicEvent{Type: "completed"}},
			{AtMs: 3400},
		},
	}

	results, err := Replay(fix)
	require.NoError(t, err)

	require.Equal(t, dynamic.PhaseInProgress, results[1].Phase)
	require.False(t, results[1].Overlay)

	require.Equal(t, dynamic.PhaseNearCompletion, results[2].Phase)
	require.Equal(t, []string{"Almost there, keep going"}, results[2].Messages)

	require.Equal(t, feedback.StateSuccess, results[3].State)
	require.Equal(t, []string{`Great, "letter_j" complete`}, results[3].Messages)

	// The success hold has expired by the last frame: re-armed and the
	// static overlay is back.
	require.Equal(t, dynamic.PhaseIdle, results[4].Phase)
	require.True(t, results[4].Overlay)

	sum := Summarize(fix, results)
	require.Equal(t, 1, sum.AttemptsWon)
}

func TestReplayFailedGestureResumes(t *testing.T) {
	valid := true
	stable := &dynamic.Metrics{AverageSpeed: 0.5, HandShapeStable: true}
	fix := &Fixture{
		Seed: 3,
		Sign: "letter_z",
		Frames: []Frame{
			{AtMs: 0, Curls: flatCurls(0.5), Event: &DynamicEvent{Type: "started", Name: "letter_z"}},
			{AtMs: 100, Event: &DynamicEvent{Type: "progress", Name: "letter_z", Progress: 0.4, Metrics: stable}},
			{AtMs: 200, Event: &DynamicEvent{
				Type: "failed", Reason: "wrong_path", GesturePhase: "move",
				StartPoseValid: &valid,
			}},
			{AtMs: 1600},
		},
	}

	results, err := Replay(fix)
	require.NoError(t, err)

	require.Equal(t, dynamic.PhaseFailed, results[2].Phase)
	require.Equal(t, feedback.StateShowingErrors, results[2].State)
	require.Equal(t, []string{"The movement path didn't match, try again"}, results[2].Messages)

	// Hold expired with the start pose still valid: back in the motion.
	require.Equal(t, dynamic.PhaseInProgress, results[3].Phase)
	require.Equal(t, feedback.StateInProgress, results[3].State)

	sum := Summarize(fix, results)
	require.Equal(t, 1, sum.AttemptsLost)
}

func TestSummarizeReportsMismatches(t *testing.T) {
	fix := &Fixture{
		Sign:   "fist",
		Frames: []Frame{{AtMs: 0, Curls: flatCurls(0.5)}},
		Expected: []Expectation{
			{Frame: 0, State: "success"},
			{Frame: 9, State: "waiting"},
		},
	}

	results, err := Replay(fix)
	require.NoError(t, err)

	sum := Summarize(fix, results)
	require.Len(t, sum.Mismatches, 2)
	require.Equal(t, "state", sum.Mismatches[0].Field)
	require.Equal(t, "frame", sum.Mismatches[1].Field)
}

func TestShippedFixturePasses(t *testing.T) {
	fix, err := LoadFixture(filepath.Join("testdata", "fist_session.json"))
	require.NoError(t, err)

	results, err := Replay(fix)
	require.NoError(t, err)

	sum := Summarize(fix, results)
	require.Empty(t, sum.Mismatches)
	require.Equal(t, 1, sum.AttemptsWon)
}

func TestFixtureRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.json")
	fix := &Fixture{
		Description: "round trip",
		Seed:        42,
		Sign:        "fist",
		Profile:     fistDocument(),
		Frames: []Frame{
			{AtMs: 0, Curls: flatCurls(0.8), Performed: true},
		},
		Expected: []Expectation{{Frame: 0, State: "success"}},
	}

	require.NoError(t, WriteFixture(path, fix))
	loaded, err := LoadFixture(path)
	require.NoError(t, err)
	require.Equal(t, fix.Sign, loaded.Sign)
	require.Equal(t, fix.Seed, loaded.Seed)
	require.Len(t, loaded.Frames, 1)
	require.Equal(t, *fix.Frames[0].Curls, *loaded.Frames[0].Curls)

	results, err := Replay(loaded)
	require.NoError(t, err)
	require.Empty(t, Summarize(loaded, results).Mismatches)
}
