package evaluate

import (
	"github.com/handslab/signcoach/internal/hand"
	"github.com/handslab/signcoach/internal/profile"
)

// #region evaluator

// Evaluator grades a hand snapshot against a constraint profile.
type Evaluator struct {
	config Config
}

// NewEvaluator creates an evaluator with the given thresholds.
func NewEvaluator(config Config) *Evaluator {
	return &Evaluator{config: config}
}

// #endregion evaluator

// #region evaluate

// Evaluate runs every enabled constraint check and aggregates the result.
//
// confirmed is the authoritative match signal from the external recognizer.
// When set, the evaluation short-circuits to a clean success: the evaluator
// only ever explains why a non-match happened and never promotes its own
// agreement into a match.
func (e *Evaluator) Evaluate(p *profile.Profile, snap hand.Snapshot, confirmed bool) Result {
	if confirmed {
		return Result{IsMatch: true, MatchScore: 1}
	}

	var errs []FingerError
	errs = append(errs, e.curlErrors(p, snap)...)
	errs = append(errs, e.spreadErrors(p, snap)...)
	errs = append(errs, e.thumbErrors(p, snap)...)
	if oe, ok := e.orientationError(p, snap); ok {
		errs = append(errs, oe)
	}

	var majors, minors int
	for _, fe := range errs {
		switch fe.Severity {
		case hand.SeverityMajor:
			majors++
		case hand.SeverityMinor:
			minors++
		}
	}

	return Result{
		Errors:      errs,
		MajorCount:  majors,
		MinorCount:  minors,
		MatchScore:  score(majors, minors),
		IsNearMatch: majors == 0 && minors > 0,
	}
}

// #endregion evaluate

// #region curl

// curlErrors checks each enabled curl constraint against the live curl,
// widening the range by the effective tolerance before comparing.
func (e *Evaluator) curlErrors(p *profile.Profile, snap hand.Snapshot) []FingerError {
	var errs []FingerError

	for _, f := range hand.AllFingers {
		fc := p.Fingers[f]
		if !fc.Curl.Enabled {
			continue
		}

		tol := e.config.Tolerance / 2
		if tol < e.config.ToleranceFloor {
			tol = e.config.ToleranceFloor
		}
		if f == hand.Thumb && tol < e.config.ThumbToleranceFloor {
			tol = e.config.ThumbToleranceFloor
		}

		v := snap.Curls[f]
		lo := fc.Curl.Min - tol
		hi := fc.Curl.Max + tol

		var deviation float32
		below := false
		switch {
		case v < lo:
			deviation = lo - v
			below = true
		case v > hi:
			deviation = v - hi
		default:
			continue
		}

		sev := e.curlSeverity(f, deviation)
		if sev == hand.SeverityNone {
			continue
		}

		kind := curlKind(fc, below)
		expected := fc.Curl.Min
		if !below {
			expected = fc.Curl.Max
		}

		errs = append(errs, FingerError{
			Finger:   f,
			Kind:     kind,
			Severity: sev,
			Current:  v,
			Expected: expected,
			Message:  overrideMessage(fc.Messages, kind),
		})
	}
	return errs
}

// curlSeverity applies the three-band policy: the continuous deviation is
// quantized so jitter cannot toggle severities every frame. A thumb major
// under the downgrade bound is reported as minor.
func (e *Evaluator) curlSeverity(f hand.Finger, deviation float32) hand.Severity {
	switch {
	case deviation > e.config.MajorDeviation:
		if f == hand.Thumb && deviation < e.config.ThumbMajorDowngradeBelow {
			return hand.SeverityMinor
		}
		return hand.SeverityMajor
	case deviation > e.config.MinorDeviation:
		return hand.SeverityMinor
	default:
		return hand.SeverityNone
	}
}

// curlKind maps the out-of-range direction and the declared expected shape
// to a semantic error kind. Without an explicit declaration the legacy
// generic kinds fire; the midpoint-derived shape is for overlay consumers,
// not error wording.
func curlKind(fc profile.FingerConstraint, below bool) ErrorKind {
	expected := fc.ExpectedState
	if expected == "" {
		if below {
			return KindTooExtended
		}
		return KindTooCurled
	}

	if below {
		// Finger is too straight for the expected shape.
		if expected == hand.ShapeClosed {
			return KindNeedsFist
		}
		return KindNeedsCurve
	}
	// Finger is folded further than the expected shape allows.
	if expected == hand.ShapeExtended {
		return KindNeedsExtend
	}
	return KindTooMuchCurl
}

// #endregion curl

// #region spread

// spreadErrors checks the angle between each adjacent finger pair with an
// enabled spread constraint. The constraint on finger f governs the pair
// (f, f+1).
func (e *Evaluator) spreadErrors(p *profile.Profile, snap hand.Snapshot) []FingerError {
	var errs []FingerError

	for f := hand.Thumb; f < hand.Pinky; f++ {
		sc := p.Fingers[f].Spread
		if !sc.Enabled {
			continue
		}
		// A zero direction means the finger has never been tracked; live
		// directions are normalized and never zero. No data, no judgment,
		// mirroring the curl dropout policy.
		if snap.Directions[f] == (hand.Vec3{}) || snap.Directions[f+1] == (hand.Vec3{}) {
			continue
		}

		angle := hand.AngleDeg(snap.Directions[f], snap.Directions[f+1])
		switch {
		case angle > sc.MaxAngle:
			errs = append(errs, FingerError{
				Finger:   f,
				Kind:     KindSpreadTooWide,
				Severity: sc.Severity,
				Current:  angle,
				Expected: sc.MaxAngle,
			})
		case angle < sc.MinAngle:
			errs = append(errs, FingerError{
				Finger:   f,
				Kind:     KindSpreadTooNarrow,
				Severity: sc.Severity,
				Current:  angle,
				Expected: sc.MinAngle,
			})
		}
	}
	return errs
}

// #endregion spread

// #region thumb

// thumbErrors checks the thumb's contact and position predicates.
func (e *Evaluator) thumbErrors(p *profile.Profile, snap hand.Snapshot) []FingerError {
	var errs []FingerError
	thumbTip := snap.TipPositions[hand.Thumb]

	for _, target := range p.Thumb.TouchTargets() {
		// A clearly extended target finger is itself grossly out of
		// position; correct it first instead of blaming the thumb.
		if snap.Curls[target] < e.config.TouchTargetMaxCurl {
			continue
		}
		dist := thumbTip.Distance(snap.TipPositions[target])
		if dist > e.config.TouchDistance {
			errs = append(errs, FingerError{
				Finger:   hand.Thumb,
				Kind:     KindShouldTouch,
				Severity: p.Thumb.TouchSeverity,
				Current:  dist,
				Expected: e.config.TouchDistance,
			})
		}
	}

	if p.Thumb.ShouldAvoidTouch {
		for f := hand.Index; f <= hand.Pinky; f++ {
			dist := thumbTip.Distance(snap.TipPositions[f])
			if dist < e.config.TouchDistance {
				errs = append(errs, FingerError{
					Finger:   hand.Thumb,
					Kind:     KindShouldNotTouch,
					Severity: hand.SeverityMinor,
					Current:  dist,
					Expected: e.config.TouchDistance,
				})
				break
			}
		}
	}

	if snap.PalmTracked && (p.Thumb.ShouldBeOverFingers || p.Thumb.ShouldBeBesideFingers) {
		// Positive projection along palm-forward means the thumb sits in
		// front of the finger mass.
		var centroid hand.Vec3
		for f := hand.Index; f <= hand.Pinky; f++ {
			centroid = centroid.Add(snap.TipPositions[f])
		}
		centroid = centroid.Scale(1.0 / 4.0)
		over := thumbTip.Sub(centroid).Dot(snap.PalmForward) > 0

		if p.Thumb.ShouldBeOverFingers != over {
			errs = append(errs, FingerError{
				Finger:   hand.Thumb,
				Kind:     KindThumbPositionWrong,
				Severity: hand.SeverityMinor,
			})
		}
	}

	return errs
}

// #endregion thumb

// #region orientation

// orientationError compares the palm-forward vector against the profile's
// expected direction. Hand-level, so the finger field is left at its zero
// value.
func (e *Evaluator) orientationError(p *profile.Profile, snap hand.Snapshot) (FingerError, bool) {
	if !p.Orientation.Enabled || !snap.PalmTracked {
		return FingerError{}, false
	}

	tol := p.Orientation.ToleranceDeg
	if tol <= 0 {
		tol = e.config.DefaultOrientationToleranceDeg
	}

	dev := hand.AngleDeg(snap.PalmForward, p.Orientation.ExpectedForward)
	if dev <= tol {
		return FingerError{}, false
	}
	return FingerError{
		Kind:     KindRotationWrong,
		Severity: hand.SeverityMinor,
		Current:  dev,
		Expected: tol,
	}, true
}

// #endregion orientation

// #region overrides

// overrideMessage resolves a custom per-finger message for a curl error
// kind, if the profile authors one.
func overrideMessage(m profile.Messages, kind ErrorKind) string {
	switch kind {
	case KindNeedsCurve:
		return m.NeedsCurve
	case KindNeedsFist:
		return m.NeedsFist
	case KindTooMuchCurl:
		return m.TooMuchCurl
	case KindNeedsExtend:
		return m.NeedsExtend
	case KindTooExtended, KindTooCurled:
		return m.Generic
	default:
		return ""
	}
}

// #endregion overrides
