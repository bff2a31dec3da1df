package dynamic

// #region detect

// DetectMovementIssue returns at most one issue per call, in strict priority
// order: a single correction at a time, highest-leverage first. Hand-shape
// instability outranks everything because continuing the motion is pointless
// once the shape is already wrong.
func (e *Engine) DetectMovementIssue(m Metrics, def Definition) Issue {
	cfg := e.config

	// 1. Shape degrading.
	if !m.HandShapeStable {
		return IssueStartPoseDegrading
	}

	// 2-3. Speed band.
	if def.MinSpeed > 0 && m.AverageSpeed < cfg.SlowFactor*def.MinSpeed {
		return IssueTooSlow
	}
	if def.MaxSpeed > 0 && m.AverageSpeed > cfg.FastFactor*def.MaxSpeed {
		return IssueTooFast
	}

	// 4. Direction alignment, only for direction-specific gestures.
	if def.RequiresDirection && m.DirectionAlignment < def.MinDirectionAlignment {
		return IssueDirectionWrong
	}

	// 5. Distance covered, once enough time has passed to judge it.
	if m.Duration > cfg.MinIssueTime && def.MinDistance > 0 &&
		m.TotalDistance < cfg.ShortFactor*def.MinDistance {
		return IssueTooShort
	}

	// 6. Path continuity on direction-specific gestures: a jagged,
	// stop-start trace reads as hesitation rather than one stroke.
	if def.RequiresDirection && m.PathStraightness > 0 && m.PathStraightness < cfg.ContinuityMin {
		return IssueNotContinuous
	}

	// 7. Rotation budget.
	if def.RequiresRotation && m.TotalRotation < cfg.RotationFactor*def.RequiredRotation {
		return IssueRotationInsufficient
	}

	// 8. Circularity.
	if def.RequiresCircularity && m.CircularityScore < cfg.CircularityFactor*def.RequiredCircularity {
		return IssueNotCircular
	}

	// 9. Direction-change count.
	if def.RequiredDirectionChanges > 0 && m.DirectionChanges < def.RequiredDirectionChanges {
		return IssueNeedMoreDirectionChanges
	}

	return IssueNone
}

// #endregion detect
