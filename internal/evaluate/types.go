// Package evaluate compares one tick's hand snapshot against a constraint
// profile and emits a severity-graded error set with a match score.
package evaluate

import (
	"github.com/handslab/signcoach/internal/hand"
)

// #region error-kind

// ErrorKind tags what is wrong with a finger.
type ErrorKind string

const (
	// Semantic transitions derived from (current shape, expected shape).
	KindNeedsCurve  ErrorKind = "needs_curve"
	KindNeedsFist   ErrorKind = "needs_fist"
	KindTooMuchCurl ErrorKind = "too_much_curl"
	KindNeedsExtend ErrorKind = "needs_extend"

	// Positional errors.
	KindSpreadTooNarrow    ErrorKind = "spread_too_narrow"
	KindSpreadTooWide      ErrorKind = "spread_too_wide"
	KindShouldTouch        ErrorKind = "should_touch"
	KindShouldNotTouch     ErrorKind = "should_not_touch"
	KindThumbPositionWrong ErrorKind = "thumb_position_wrong"
	KindRotationWrong      ErrorKind = "rotation_wrong"

	// Legacy generic fallbacks when no semantic expected state is set.
	KindTooExtended ErrorKind = "too_extended"
	KindTooCurled   ErrorKind = "too_curled"
)

// #endregion error-kind

// #region finger-error

// FingerError is one graded constraint violation. Produced fresh every
// evaluation; temporal stability is the stabilizer's job, not this
// package's.
type FingerError struct {
	Finger   hand.Finger
	Kind     ErrorKind
	Severity hand.Severity
	Current  float32
	Expected float32

	// Message is non-empty only when the profile carries a custom override
	// for this error kind; it is surfaced verbatim.
	Message string
}

// #endregion finger-error

// #region result

// Result aggregates one evaluation pass.
type Result struct {
	IsMatch     bool
	Errors      []FingerError
	MajorCount  int
	MinorCount  int
	MatchScore  float32
	IsNearMatch bool
}

// score computes the match score from the error counts.
func score(majorCount, minorCount int) float32 {
	return hand.Clamp01(1 - 0.3*float32(majorCount) - 0.1*float32(minorCount))
}

// #endregion result

// #region config

// Config holds the evaluator's tunable thresholds. The thumb entries exist
// because its per-person anatomical variance is larger; a false major
// correction there costs more learner trust than a missed one.
type Config struct {
	// Tolerance is the authored tolerance; the effective widening applied to
	// each curl range is max(Tolerance/2, ToleranceFloor).
	Tolerance           float32 `yaml:"tolerance" json:"tolerance"`
	ToleranceFloor      float32 `yaml:"tolerance_floor" json:"tolerance_floor"`
	ThumbToleranceFloor float32 `yaml:"thumb_tolerance_floor" json:"thumb_tolerance_floor"`

	// Severity bands on curl deviation: above MajorDeviation is major, above
	// MinorDeviation is minor, anything closer is suppressed as jitter.
	MajorDeviation float32 `yaml:"major_deviation" json:"major_deviation"`
	MinorDeviation float32 `yaml:"minor_deviation" json:"minor_deviation"`

	// ThumbMajorDowngradeBelow downgrades a thumb major to minor while its
	// deviation stays under this bound.
	ThumbMajorDowngradeBelow float32 `yaml:"thumb_major_downgrade_below" json:"thumb_major_downgrade_below"`

	// TouchDistance is the fingertip contact threshold in meters.
	TouchDistance float32 `yaml:"touch_distance" json:"touch_distance"`
	// TouchTargetMaxCurl suppresses thumb-touch errors when the target
	// finger is still clearly extended; the target must be corrected first.
	TouchTargetMaxCurl float32 `yaml:"touch_target_max_curl" json:"touch_target_max_curl"`

	// DefaultOrientationToleranceDeg applies when a profile enables the
	// orientation check without its own tolerance.
	DefaultOrientationToleranceDeg float32 `yaml:"default_orientation_tolerance_deg" json:"default_orientation_tolerance_deg"`
}

// DefaultConfig returns the calibrated evaluator thresholds.
func DefaultConfig() Config {
	return Config{
		Tolerance:                      0.16,
		ToleranceFloor:                 0.08,
		ThumbToleranceFloor:            0.12,
		MajorDeviation:                 0.18,
		MinorDeviation:                 0.08,
		ThumbMajorDowngradeBelow:       0.25,
		TouchDistance:                  0.03,
		TouchTargetMaxCurl:             0.25,
		DefaultOrientationToleranceDeg: 25,
	}
}

// #endregion config
