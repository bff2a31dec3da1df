// Package dynamic owns the motion-gesture feedback phase machine and the
// movement-issue detector that explains what is currently wrong with an
// in-flight trajectory.
package dynamic

// #region phase

// Phase is one state of the dynamic-gesture feedback state machine. Idle and
// the two terminal phases are re-entrant only via explicit reset.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseStartDetected  Phase = "start_detected"
	PhaseInProgress     Phase = "in_progress"
	PhaseNearCompletion Phase = "near_completion"
	PhaseCompleted      Phase = "completed"
	PhaseFailed         Phase = "failed"
)

// Terminal reports whether the phase has no outgoing transitions except
// reset.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseFailed
}

// #endregion phase

// #region issue

// Issue tags what is currently wrong with the motion. At most one is
// reported per detection call.
type Issue string

const (
	IssueNone                     Issue = "none"
	IssueDirectionWrong           Issue = "direction_wrong"
	IssueTooFast                  Issue = "too_fast"
	IssueTooSlow                  Issue = "too_slow"
	IssueTooShort                 Issue = "too_short"
	IssueNotContinuous            Issue = "not_continuous"
	IssueNotCircular              Issue = "not_circular"
	IssueNeedMoreDirectionChanges Issue = "need_more_direction_changes"
	IssueRotationInsufficient     Issue = "rotation_insufficient"
	IssueStartPoseDegrading       Issue = "start_pose_degrading"
)

// #endregion issue

// #region metrics

// Metrics is the motion tracker's per-tick value snapshot. Consumed, never
// mutated.
type Metrics struct {
	AverageSpeed     float32 `json:"average_speed"`
	MaxSpeed         float32 `json:"max_speed"`
	TotalDistance    float32 `json:"total_distance"`
	Duration         float32 `json:"duration"`
	DirectionChanges int     `json:"direction_changes"`
	TotalRotation    float32 `json:"total_rotation"`
	CircularityScore float32 `json:"circularity_score"`
	NetDisplacement  float32 `json:"net_displacement"`

	// DirectionAlignment is cosine-like agreement with the gesture's
	// required direction, 1 meaning perfectly aligned.
	DirectionAlignment float32 `json:"direction_alignment"`
	PathStraightness   float32 `json:"path_straightness"`
	HandShapeStable    bool    `json:"hand_shape_stable"`
}

// #endregion metrics

// #region definition

// Definition describes one motion gesture's trajectory requirements. These
// arrive from the gesture registry; the engine never derives them.
type Definition struct {
	Name string `json:"name"`

	MinSpeed    float32 `json:"min_speed"`
	MaxSpeed    float32 `json:"max_speed"`
	MinDistance float32 `json:"min_distance"`

	RequiresDirection     bool    `json:"requires_direction,omitempty"`
	MinDirectionAlignment float32 `json:"min_direction_alignment,omitempty"`

	RequiresRotation bool    `json:"requires_rotation,omitempty"`
	RequiredRotation float32 `json:"required_rotation,omitempty"`

	RequiresCircularity bool    `json:"requires_circularity,omitempty"`
	RequiredCircularity float32 `json:"required_circularity,omitempty"`

	RequiredDirectionChanges int `json:"required_direction_changes,omitempty"`

	// Hint is an optional per-gesture phrase appended to issue messages,
	// e.g. the trajectory shape for letters drawn in the air.
	Hint string `json:"hint,omitempty"`
}

// #endregion definition

// #region failure

// FailureReason is the recognizer's explanation for a failed gesture.
type FailureReason string

const (
	FailureNone         FailureReason = "none"
	FailureWrongPath    FailureReason = "wrong_path"
	FailureTooSlow      FailureReason = "too_slow"
	FailureTimeout      FailureReason = "timeout"
	FailureShapeLost    FailureReason = "shape_lost"
	FailureWrongEndPose FailureReason = "wrong_end_pose"
	FailureInterrupted  FailureReason = "interrupted"
)

// GesturePhase locates where in the gesture a failure happened.
type GesturePhase string

const (
	GesturePhaseStart GesturePhase = "start"
	GesturePhaseMove  GesturePhase = "move"
	GesturePhaseEnd   GesturePhase = "end"
)

// #endregion failure

// #region config

// Config holds the detector's tunable factors.
type Config struct {
	// NearCompletionProgress is the binary threshold for the morale phase;
	// no hysteresis band, almost-done is a morale message, not a correction.
	NearCompletionProgress float32 `yaml:"near_completion_progress" json:"near_completion_progress"`

	SlowFactor   float32 `yaml:"slow_factor" json:"slow_factor"`
	FastFactor   float32 `yaml:"fast_factor" json:"fast_factor"`
	ShortFactor  float32 `yaml:"short_factor" json:"short_factor"`
	MinIssueTime float32 `yaml:"min_issue_time" json:"min_issue_time"`

	RotationFactor    float32 `yaml:"rotation_factor" json:"rotation_factor"`
	CircularityFactor float32 `yaml:"circularity_factor" json:"circularity_factor"`

	// ContinuityMin flags a jagged path on direction-specific gestures.
	ContinuityMin float32 `yaml:"continuity_min" json:"continuity_min"`
}

// DefaultConfig returns the calibrated detector factors.
func DefaultConfig() Config {
	return Config{
		NearCompletionProgress: 0.80,
		SlowFactor:             0.5,
		FastFactor:             1.5,
		ShortFactor:            0.5,
		MinIssueTime:           0.3,
		RotationFactor:         0.7,
		CircularityFactor:      0.7,
		ContinuityMin:          0.4,
	}
}

// #endregion config
