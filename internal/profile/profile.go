// Package profile defines the declarative per-sign constraint model, the
// in-memory registry the runtime reads from, and the sqlite catalog plus
// YAML documents used to author and ship profiles.
package profile

import (
	"fmt"

	"github.com/handslab/signcoach/internal/hand"
)

// #region curl-constraint

// CurlConstraint bounds a finger's curl to [Min, Max] on the [0,1] scale.
type CurlConstraint struct {
	Min      float32
	Max      float32
	Enabled  bool
	Severity hand.Severity // severity when out of range
}

// Validate checks the range invariant.
func (c CurlConstraint) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Min > c.Max {
		return fmt.Errorf("curl constraint: min %.2f exceeds max %.2f", c.Min, c.Max)
	}
	if c.Min < 0 || c.Max > 1 {
		return fmt.Errorf("curl constraint: range [%.2f, %.2f] outside [0,1]", c.Min, c.Max)
	}
	return nil
}

// Midpoint returns the center of the allowed range.
func (c CurlConstraint) Midpoint() float32 {
	return (c.Min + c.Max) / 2
}

// #endregion curl-constraint

// #region spread-constraint

// SpreadConstraint bounds the angle in degrees between this finger's
// direction and the spatially next finger's direction.
type SpreadConstraint struct {
	MinAngle float32
	MaxAngle float32
	Enabled  bool
	Severity hand.Severity
}

// Validate checks the angular range invariant.
func (c SpreadConstraint) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.MinAngle > c.MaxAngle {
		return fmt.Errorf("spread constraint: min %.1f exceeds max %.1f", c.MinAngle, c.MaxAngle)
	}
	if c.MinAngle < -30 || c.MaxAngle > 30 {
		return fmt.Errorf("spread constraint: range [%.1f, %.1f] outside [-30,30]", c.MinAngle, c.MaxAngle)
	}
	return nil
}

// #endregion spread-constraint

// #region messages

// Messages carries optional per-finger override texts. A non-empty entry is
// surfaced verbatim as its own feedback candidate instead of the grouped
// default phrasing.
type Messages struct {
	NeedsCurve  string
	NeedsFist   string
	TooMuchCurl string
	NeedsExtend string
	Generic     string
}

// #endregion messages

// #region finger-constraint

// FingerConstraint is the full declarative expectation for one finger.
type FingerConstraint struct {
	Curl   CurlConstraint
	Spread SpreadConstraint

	// ExpectedState, when empty, is derived from the curl range midpoint
	// using the same thresholds as live shape bucketing.
	ExpectedState hand.ShapeState

	Messages Messages
}

// ExpectedShape resolves the declared or derived shape state. The second
// return value is false when neither a declaration nor an enabled curl range
// is available, in which case evaluation falls back to the legacy generic
// curl errors.
func (c FingerConstraint) ExpectedShape() (hand.ShapeState, bool) {
	if c.ExpectedState != "" {
		return c.ExpectedState, true
	}
	if c.Curl.Enabled {
		return hand.ShapeForCurl(c.Curl.Midpoint()), true
	}
	return "", false
}

// #endregion finger-constraint

// #region thumb-checks

// ThumbChecks carries the contact and position predicates only the thumb
// needs: it is opposable, so curl alone underdetermines its placement.
type ThumbChecks struct {
	ShouldTouchIndex  bool
	ShouldTouchMiddle bool
	ShouldTouchRing   bool
	ShouldTouchPinky  bool

	// ShouldAvoidTouch flags poses where the thumb must stay clear of every
	// fingertip.
	ShouldAvoidTouch bool

	ShouldBeOverFingers   bool
	ShouldBeBesideFingers bool

	TouchSeverity hand.Severity
}

// TouchTargets lists the fingers an enabled shouldTouch predicate names.
func (t ThumbChecks) TouchTargets() []hand.Finger {
	var targets []hand.Finger
	if t.ShouldTouchIndex {
		targets = append(targets, hand.Index)
	}
	if t.ShouldTouchMiddle {
		targets = append(targets, hand.Middle)
	}
	if t.ShouldTouchRing {
		targets = append(targets, hand.Ring)
	}
	if t.ShouldTouchPinky {
		targets = append(targets, hand.Pinky)
	}
	return targets
}

// #endregion thumb-checks

// #region orientation

// Orientation optionally pins the palm-forward direction.
type Orientation struct {
	Enabled         bool
	ExpectedForward hand.Vec3
	ToleranceDeg    float32
}

// #endregion orientation

// #region profile

// Profile is the full declarative expectation for one sign. Immutable after
// registration.
type Profile struct {
	SignName    string
	Description string

	// Fingers is indexed by hand.Finger; Fingers[hand.Thumb] carries the
	// thumb's curl and spread, Thumb carries its extra predicates.
	Fingers [hand.FingerCount]FingerConstraint
	Thumb   ThumbChecks

	Orientation Orientation
}

// Validate checks every owned constraint.
func (p *Profile) Validate() error {
	if p.SignName == "" {
		return fmt.Errorf("profile has no sign name")
	}
	for _, f := range hand.AllFingers {
		if err := p.Fingers[f].Curl.Validate(); err != nil {
			return fmt.Errorf("%s %s: %w", p.SignName, f, err)
		}
		if err := p.Fingers[f].Spread.Validate(); err != nil {
			return fmt.Errorf("%s %s: %w", p.SignName, f, err)
		}
	}
	if p.Orientation.Enabled && p.Orientation.ToleranceDeg <= 0 {
		return fmt.Errorf("%s: orientation tolerance must be positive", p.SignName)
	}
	return nil
}

// #endregion profile
