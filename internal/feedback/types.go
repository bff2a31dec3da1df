// Package feedback owns the externally observable feedback state. The
// orchestrator drives the static debounce flow and the dynamic latch flow,
// and publishes everything through an event queue the host drains each tick.
package feedback

import "time"

// #region state

// State is the orchestrator's externally observed state.
type State string

const (
	StateInactive      State = "inactive"
	StateWaiting       State = "waiting"
	StateShowingErrors State = "showing_errors"
	StatePartialMatch  State = "partial_match"
	StateSuccess       State = "success"
	StateInProgress    State = "in_progress"
)

// #endregion state

// #region config

// Config holds the orchestrator's timing disciplines.
type Config struct {
	// AnalysisInterval debounces the static evaluator.
	AnalysisInterval time.Duration `yaml:"analysis_interval" json:"analysis_interval"`

	// SuccessDisplay pauses analysis entirely while a confirmed static
	// success is on screen.
	SuccessDisplay time.Duration `yaml:"success_display" json:"success_display"`

	// DynamicSuccessHold pins a completed-gesture message before re-arming.
	DynamicSuccessHold time.Duration `yaml:"dynamic_success_hold" json:"dynamic_success_hold"`

	// Failure messages hold for a random duration in [ErrorHoldMin,
	// ErrorHoldMax]; the randomization avoids a mechanical cadence.
	ErrorHoldMin time.Duration `yaml:"error_hold_min" json:"error_hold_min"`
	ErrorHoldMax time.Duration `yaml:"error_hold_max" json:"error_hold_max"`
}

// DefaultConfig returns the calibrated orchestrator timing.
func DefaultConfig() Config {
	return Config{
		AnalysisInterval:   200 * time.Millisecond,
		SuccessDisplay:     2 * time.Second,
		DynamicSuccessHold: 3 * time.Second,
		ErrorHoldMin:       1000 * time.Millisecond,
		ErrorHoldMax:       1300 * time.Millisecond,
	}
}

// #endregion config

// #region ports

// StaticRecognizer is the authoritative match signal for the tracked hand.
// The evaluator never derives a match on its own.
type StaticRecognizer interface {
	IsPerformed() bool
	TargetSign() string
}

// DynamicRecognizer exposes the one pull-side query the orchestrator needs
// from the motion recognizer; its other signals arrive as pushed events.
type DynamicRecognizer interface {
	IsStartPoseValid() bool
}

// #endregion ports
