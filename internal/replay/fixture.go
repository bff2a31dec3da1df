// Package replay drives the full feedback pipeline from recorded telemetry
// fixtures. Fixtures are authored JSON: a frame stream of snapshot values
// and recognizer events, plus optional expected outcomes per frame.
package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/handslab/signcoach/internal/config"
	"github.com/handslab/signcoach/internal/dynamic"
	"github.com/handslab/signcoach/internal/hand"
	"github.com/handslab/signcoach/internal/profile"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay session.
type Fixture struct {
	Description string `json:"description,omitempty"`

	// Seed fixes the orchestrator's randomized failure hold so replays are
	// deterministic.
	Seed int64 `json:"seed"`

	Sign     string            `json:"sign"`
	Profile  *profile.Document `json:"profile,omitempty"`
	Tunables *config.Tunables  `json:"tunables,omitempty"`

	Frames   []Frame       `json:"frames"`
	Expected []Expectation `json:"expected,omitempty"`
}

// Frame is one recorded tick. Nil snapshot fields carry the previous
// frame's values forward, which keeps hand-authored fixtures short.
type Frame struct {
	AtMs int64 `json:"at_ms"`

	Curls       *[hand.FingerCount]float32    `json:"curls,omitempty"`
	Directions  *[hand.FingerCount][3]float32 `json:"directions,omitempty"`
	Tips        *[hand.FingerCount][3]float32 `json:"tips,omitempty"`
	PalmForward *[3]float32                   `json:"palm_forward,omitempty"`

	Performed bool `json:"performed,omitempty"`

	Event *DynamicEvent `json:"event,omitempty"`
}

// DynamicEvent is a recorded motion-recognizer signal delivered before the
// frame's tick.
type DynamicEvent struct {
	Type     string  `json:"type"` // started | progress | near_completion | completed | failed
	Name     string  `json:"name,omitempty"`
	Progress float32 `json:"progress,omitempty"`

	Metrics    *dynamic.Metrics    `json:"metrics,omitempty"`
	Definition *dynamic.Definition `json:"definition,omitempty"`

	Reason       string `json:"reason,omitempty"`
	GesturePhase string `json:"gesture_phase,omitempty"`

	// StartPoseValid updates the pull-side recognizer value consulted at
	// latch expiry.
	StartPoseValid *bool `json:"start_pose_valid,omitempty"`
}

// Expectation asserts the observable state after a given frame's tick.
type Expectation struct {
	Frame    int      `json:"frame"`
	State    string   `json:"state,omitempty"`
	Phase    string   `json:"phase,omitempty"`
	Messages []string `json:"messages,omitempty"`
	Overlay  *bool    `json:"overlay,omitempty"`
}

// #endregion fixture-types

// #region io

// LoadFixture reads a fixture from disk.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var fix Fixture
	if err := json.Unmarshal(data, &fix); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &fix, nil
}

// WriteFixture writes a fixture as indented JSON, the capture-side half of
// record/replay.
func WriteFixture(path string, fix *Fixture) error {
	data, err := json.MarshalIndent(fix, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}
	return nil
}

// #endregion io
