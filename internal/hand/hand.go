// Package hand holds the value types shared by every stage of the feedback
// pipeline: finger and joint identifiers, severity grading, shape-state
// buckets, and the per-tick snapshot of tracked hand geometry.
package hand

// #region finger

// Finger identifies one of the five fingers. Arrays across the pipeline are
// indexed by it.
type Finger int

const (
	Thumb Finger = iota
	Index
	Middle
	Ring
	Pinky
)

// FingerCount is the fixed cardinality of Finger.
const FingerCount = 5

// AllFingers lists every finger in index order.
var AllFingers = [FingerCount]Finger{Thumb, Index, Middle, Ring, Pinky}

var fingerNames = [FingerCount]string{"thumb", "index", "middle", "ring", "pinky"}

func (f Finger) String() string {
	if f < 0 || int(f) >= FingerCount {
		return "unknown"
	}
	return fingerNames[f]
}

// #endregion finger

// #region severity

// Severity grades how far a measurement deviates from a constraint.
// Ordering matters: None < Minor < Major.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityMinor
	SeverityMajor
)

func (s Severity) String() string {
	switch s {
	case SeverityMinor:
		return "minor"
	case SeverityMajor:
		return "major"
	default:
		return "none"
	}
}

// #endregion severity

// #region shape-state

// ShapeState is the semantic bucket a continuous curl value falls into.
// Curved vs Closed disambiguates signs that differ only in how far the
// fingers fold (full-fist letters vs tip-curl letters).
type ShapeState string

const (
	ShapeExtended ShapeState = "extended"
	ShapeCurved   ShapeState = "curved"
	ShapeClosed   ShapeState = "closed"
)

// Fixed bucket thresholds on the [0,1] curl scale.
const (
	CurvedThreshold float32 = 0.30
	ClosedThreshold float32 = 0.72
)

// ShapeForCurl maps a curl value to its semantic bucket.
func ShapeForCurl(curl float32) ShapeState {
	switch {
	case curl < CurvedThreshold:
		return ShapeExtended
	case curl <= ClosedThreshold:
		return ShapeCurved
	default:
		return ShapeClosed
	}
}

// #endregion shape-state

// #region joints

// JointPart identifies one of the four tracked joints along a finger.
type JointPart int

const (
	Proximal JointPart = iota
	Intermediate
	Distal
	Tip
)

// JointPartCount is the number of tracked joints per finger.
const JointPartCount = 4

// JointID addresses a single finger joint on the tracked hand.
type JointID struct {
	Finger Finger
	Part   JointPart
}

// #endregion joints

// #region pose

// Pose is a tracked position with an orientation axis. For finger joints only
// Position is meaningful; for the palm, Forward carries the palm-forward
// direction used by orientation checks.
type Pose struct {
	Position Vec3
	Forward  Vec3
}

// TrackingSource is the collaborator that supplies joint poses each tick.
// The second return value is false on a tracking dropout.
type TrackingSource interface {
	TryGetJointPose(id JointID) (Pose, bool)
	TryGetPalmPose() (Pose, bool)
}

// #endregion pose

// #region snapshot

// Snapshot is one tick's view of the tracked hand, already reduced to the
// values the evaluator consumes. All stages of a tick must run against the
// same snapshot so curls and directions never mix across ticks.
type Snapshot struct {
	Curls        [FingerCount]float32
	Directions   [FingerCount]Vec3 // unit vector from proximal joint toward tip
	TipPositions [FingerCount]Vec3
	PalmForward  Vec3
	PalmTracked  bool
}

// #endregion snapshot
