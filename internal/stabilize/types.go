// Package stabilize turns per-frame error sets into a short, prioritized,
// temporally stable message list. Per-frame evaluator output is noisy; this
// package owns all hysteresis so the learner never sees flicker.
package stabilize

import "time"

// #region candidate

// Candidate is one proposed feedback message for the current frame.
type Candidate struct {
	Text string

	// Weight ranks candidates: 3 when any affected finger is major, 2 when
	// minor only, 1 for supplementary morale/progress messages.
	Weight int

	// Affected counts fingers covered by this message; bigger sentences
	// outrank smaller ones at equal weight.
	Affected int

	// Order is the declaration position of the first contributing error,
	// the final tie-breaker.
	Order int
}

// #endregion candidate

// #region config

// Config holds the hysteresis windows. The exit delay is deliberately longer
// than the entry delay: stability wins over responsiveness.
type Config struct {
	EnterDelay  time.Duration `yaml:"enter_delay" json:"enter_delay"`
	ExitDelay   time.Duration `yaml:"exit_delay" json:"exit_delay"`
	MaxMessages int           `yaml:"max_messages" json:"max_messages"`
}

// DefaultConfig returns the calibrated stabilizer timing.
func DefaultConfig() Config {
	return Config{
		EnterDelay:  250 * time.Millisecond,
		ExitDelay:   450 * time.Millisecond,
		MaxMessages: 3,
	}
}

// #endregion config
