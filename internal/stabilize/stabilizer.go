package stabilize

import (
	"sort"
	"time"
)

// #region window

// window tracks one distinct message string through its hysteresis
// lifecycle.
type window struct {
	firstSeen time.Time
	lastSeen  time.Time
	active    bool
	rank      int
}

// #endregion window

// #region stabilizer

// Stabilizer applies per-message enter/exit hysteresis to ranked candidates.
// All state is driven from the single tick thread; timestamps are supplied
// by the caller so every timer is a plain wall-clock comparison.
type Stabilizer struct {
	config     Config
	windows    map[string]*window
	lastStable []string
}

// NewStabilizer creates a stabilizer with the given timing config.
func NewStabilizer(config Config) *Stabilizer {
	return &Stabilizer{
		config:  config,
		windows: make(map[string]*window),
	}
}

// #endregion stabilizer

// #region update

// Update feeds this frame's candidates through hysteresis and returns the
// current stable message list in rank order.
//
// A message activates only after being proposed continuously for the enter
// delay, and deactivates only after being absent continuously for the exit
// delay. If hysteresis yields nothing but a previous stable set exists, the
// previous set is retained: a transient dip must not blank the display.
func (s *Stabilizer) Update(cands []Candidate, now time.Time) []string {
	ranked := Rank(cands, s.config.MaxMessages)

	proposed := make(map[string]struct{}, len(ranked))
	for i, c := range ranked {
		proposed[c.Text] = struct{}{}
		w := s.windows[c.Text]
		if w == nil {
			s.windows[c.Text] = &window{firstSeen: now, lastSeen: now, rank: i}
			continue
		}
		// A gap longer than the enter delay breaks the streak: entry
		// requires a continuous run of proposals.
		if !w.active && now.Sub(w.lastSeen) > s.config.EnterDelay {
			w.firstSeen = now
		}
		w.lastSeen = now
		w.rank = i
		if !w.active && now.Sub(w.firstSeen) >= s.config.EnterDelay {
			w.active = true
		}
	}

	for text, w := range s.windows {
		if _, ok := proposed[text]; ok {
			continue
		}
		absent := now.Sub(w.lastSeen)
		if w.active && absent >= s.config.ExitDelay {
			w.active = false
		}
		if !w.active && absent >= s.config.ExitDelay {
			delete(s.windows, text)
		}
	}

	stable := s.activeInRankOrder()
	if len(stable) == 0 && len(s.lastStable) > 0 {
		return append([]string(nil), s.lastStable...)
	}
	s.lastStable = stable
	return append([]string(nil), stable...)
}

// activeInRankOrder collects active windows sorted by their last proposed
// rank (ties broken by text for determinism), capped at the message limit.
func (s *Stabilizer) activeInRankOrder() []string {
	type entry struct {
		text string
		rank int
	}
	var entries []entry
	for text, w := range s.windows {
		if w.active {
			entries = append(entries, entry{text: text, rank: w.rank})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].rank != entries[j].rank {
			return entries[i].rank < entries[j].rank
		}
		return entries[i].text < entries[j].text
	})

	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.text)
		if len(out) == s.config.MaxMessages {
			break
		}
	}
	return out
}

// #endregion update

// #region clear

// Clear drops every window and the retained stable set. Called on confirmed
// success and on reset so stability state never leaks into the next attempt.
func (s *Stabilizer) Clear() {
	s.windows = make(map[string]*window)
	s.lastStable = nil
}

// #endregion clear
