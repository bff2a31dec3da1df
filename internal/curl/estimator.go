// Package curl derives normalized per-finger flexion values from tracked
// joint poses. 0 is a straight finger, 1 is fully folded.
package curl

import (
	"github.com/handslab/signcoach/internal/hand"
)

// #region config

// Config holds the angle endpoints of the curl mapping. An average
// inter-segment angle at or above the straight endpoint maps to 0, at or
// below the folded endpoint maps to 1.
type Config struct {
	StraightAngleDeg      float32 `yaml:"straight_angle_deg" json:"straight_angle_deg"`
	FoldedAngleDeg        float32 `yaml:"folded_angle_deg" json:"folded_angle_deg"`
	ThumbStraightAngleDeg float32 `yaml:"thumb_straight_angle_deg" json:"thumb_straight_angle_deg"`
	ThumbFoldedAngleDeg   float32 `yaml:"thumb_folded_angle_deg" json:"thumb_folded_angle_deg"`
}

// DefaultConfig returns the calibrated mapping endpoints.
func DefaultConfig() Config {
	return Config{
		StraightAngleDeg:      180,
		FoldedAngleDeg:        60,
		ThumbStraightAngleDeg: 180,
		ThumbFoldedAngleDeg:   50,
	}
}

// #endregion config

// #region estimator

// Estimator converts joint poses into curl values. It remembers the last
// valid value per finger so a single-frame tracking dropout holds steady
// instead of flashing a spurious correction.
type Estimator struct {
	config   Config
	lastCurl [hand.FingerCount]float32
	lastDir  [hand.FingerCount]hand.Vec3
	lastTip  [hand.FingerCount]hand.Vec3
	seen     [hand.FingerCount]bool
}

// NewEstimator creates an estimator with the given mapping config.
func NewEstimator(config Config) *Estimator {
	return &Estimator{config: config}
}

// #endregion estimator

// #region estimate

// Estimate computes the curl for one finger from its four joint poses.
// tracked flags which poses are valid this tick. On any dropout the last
// valid value is held; before any valid observation a neutral 0.5 is
// returned, meaning "uncertain", not "wrong".
func (e *Estimator) Estimate(f hand.Finger, joints [hand.JointPartCount]hand.Pose, tracked [hand.JointPartCount]bool) float32 {
	for _, ok := range tracked {
		if !ok {
			return e.held(f)
		}
	}

	var curl float32
	if f == hand.Thumb {
		curl = e.thumbCurl(joints)
	} else {
		curl = e.fingerCurl(joints)
	}

	e.lastCurl[f] = curl
	e.lastDir[f] = joints[hand.Tip].Position.Sub(joints[hand.Proximal].Position).Normalized()
	e.lastTip[f] = joints[hand.Tip].Position
	e.seen[f] = true
	return curl
}

// fingerCurl averages the two inter-segment angles along the finger and maps
// the average onto [0,1] via inverse lerp between the straight and folded
// endpoints.
func (e *Estimator) fingerCurl(joints [hand.JointPartCount]hand.Pose) float32 {
	s0 := joints[hand.Intermediate].Position.Sub(joints[hand.Proximal].Position)
	s1 := joints[hand.Distal].Position.Sub(joints[hand.Intermediate].Position)
	s2 := joints[hand.Tip].Position.Sub(joints[hand.Distal].Position)

	// Reversing the incoming segment makes a straight finger read 180.
	a1 := hand.AngleDeg(s0.Scale(-1), s1)
	a2 := hand.AngleDeg(s1.Scale(-1), s2)
	avg := (a1 + a2) / 2

	return inverseLerp(e.config.StraightAngleDeg, e.config.FoldedAngleDeg, avg)
}

// thumbCurl uses a single angle: the thumb has two usable segments and
// different kinematics than the other fingers.
func (e *Estimator) thumbCurl(joints [hand.JointPartCount]hand.Pose) float32 {
	base := joints[hand.Intermediate].Position.Sub(joints[hand.Proximal].Position)
	tip := joints[hand.Tip].Position.Sub(joints[hand.Distal].Position)

	a := hand.AngleDeg(base.Scale(-1), tip)
	return inverseLerp(e.config.ThumbStraightAngleDeg, e.config.ThumbFoldedAngleDeg, a)
}

// held returns the dropout value for a finger: last valid curl, or the
// neutral prior when nothing valid has ever been observed.
func (e *Estimator) held(f hand.Finger) float32 {
	if e.seen[f] {
		return e.lastCurl[f]
	}
	return 0.5
}

// #endregion estimate

// #region snapshot

// BuildSnapshot queries the tracking source for every finger joint plus the
// palm and reduces them to one tick's Snapshot. Dropped-out fingers carry
// their held curl and last known direction and tip.
func (e *Estimator) BuildSnapshot(src hand.TrackingSource) hand.Snapshot {
	var snap hand.Snapshot

	for _, f := range hand.AllFingers {
		var joints [hand.JointPartCount]hand.Pose
		var tracked [hand.JointPartCount]bool
		for p := 0; p < hand.JointPartCount; p++ {
			joints[p], tracked[p] = src.TryGetJointPose(hand.JointID{Finger: f, Part: hand.JointPart(p)})
		}
		snap.Curls[f] = e.Estimate(f, joints, tracked)
		snap.Directions[f] = e.lastDir[f]
		snap.TipPositions[f] = e.lastTip[f]
	}

	if palm, ok := src.TryGetPalmPose(); ok {
		snap.PalmForward = palm.Forward.Normalized()
		snap.PalmTracked = true
	}
	return snap
}

// #endregion snapshot

// #region helpers

// inverseLerp maps v from [from, to] onto [0, 1], clamped.
func inverseLerp(from, to, v float32) float32 {
	if from == to {
		return 0
	}
	return hand.Clamp01((v - from) / (to - from))
}

// #endregion helpers
