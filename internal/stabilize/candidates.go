package stabilize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/handslab/signcoach/internal/evaluate"
	"github.com/handslab/signcoach/internal/hand"
)

// #region action-phrases

// Grouped curl and spread kinds share one sentence naming every affected
// finger; the rest carry a fixed standalone phrase.
var groupPhrases = map[evaluate.ErrorKind]string{
	evaluate.KindNeedsCurve:      "Curve: %s",
	evaluate.KindNeedsFist:       "Make a fist: %s",
	evaluate.KindTooMuchCurl:     "Relax: %s",
	evaluate.KindNeedsExtend:     "Straighten: %s",
	evaluate.KindTooExtended:     "Adjust: %s",
	evaluate.KindTooCurled:       "Adjust: %s",
	evaluate.KindSpreadTooWide:   "Bring together: %s",
	evaluate.KindSpreadTooNarrow: "Separate: %s",
}

var standalonePhrases = map[evaluate.ErrorKind]string{
	evaluate.KindShouldTouch:        "Touch your thumb to your fingertips",
	evaluate.KindShouldNotTouch:     "Keep your thumb clear of your fingertips",
	evaluate.KindThumbPositionWrong: "Reposition your thumb",
	evaluate.KindRotationWrong:      "Rotate your palm",
}

// groupKeyFor collapses the two legacy kinds into one bucket so a hand with
// both reads as a single generic correction.
func groupKeyFor(kind evaluate.ErrorKind) evaluate.ErrorKind {
	if kind == evaluate.KindTooCurled {
		return evaluate.KindTooExtended
	}
	return kind
}

// #endregion action-phrases

// #region build

type bucket struct {
	kind     evaluate.ErrorKind
	fingers  []hand.Finger
	anyMajor bool
	order    int
}

// BuildCandidates groups the frame's errors by required action and produces
// ranked message candidates. Grouping is by action, not by finger: one
// sentence covers every finger needing the same correction, keeping the
// message count low. A finger with a custom override message becomes its own
// candidate so authored guidance is surfaced verbatim.
func BuildCandidates(res evaluate.Result) []Candidate {
	var cands []Candidate
	buckets := make(map[evaluate.ErrorKind]*bucket)
	var bucketOrder []evaluate.ErrorKind

	for i, fe := range res.Errors {
		if fe.Severity == hand.SeverityNone {
			continue
		}

		if fe.Message != "" {
			cands = append(cands, Candidate{
				Text:     fe.Message,
				Weight:   weightFor(fe.Severity == hand.SeverityMajor),
				Affected: 1,
				Order:    i,
			})
			continue
		}

		key := groupKeyFor(fe.Kind)
		b := buckets[key]
		if b == nil {
			b = &bucket{kind: key, order: i}
			buckets[key] = b
			bucketOrder = append(bucketOrder, key)
		}
		b.fingers = append(b.fingers, fe.Finger)
		b.anyMajor = b.anyMajor || fe.Severity == hand.SeverityMajor
	}

	for _, key := range bucketOrder {
		b := buckets[key]
		cands = append(cands, Candidate{
			Text:     bucketText(b),
			Weight:   weightFor(b.anyMajor),
			Affected: len(b.fingers),
			Order:    b.order,
		})
	}

	// Supplementary morale and progress candidates rank below every real
	// correction.
	if res.MajorCount == 0 && res.MinorCount > 0 {
		cands = append(cands, Candidate{
			Text:     "Almost there, hold steady",
			Weight:   1,
			Affected: 0,
			Order:    len(res.Errors),
		})
	}
	if n := distinctFingers(res.Errors); n > 0 {
		cands = append(cands, Candidate{
			Text:     progressText(n),
			Weight:   1,
			Affected: 0,
			Order:    len(res.Errors) + 1,
		})
	}

	return cands
}

// Rank orders candidates by weight, then coverage, then declaration order,
// deduplicates by text, and caps the list.
func Rank(cands []Candidate, max int) []Candidate {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Weight != cands[j].Weight {
			return cands[i].Weight > cands[j].Weight
		}
		if cands[i].Affected != cands[j].Affected {
			return cands[i].Affected > cands[j].Affected
		}
		return cands[i].Order < cands[j].Order
	})

	seen := make(map[string]struct{}, len(cands))
	ranked := make([]Candidate, 0, max)
	for _, c := range cands {
		if _, dup := seen[c.Text]; dup {
			continue
		}
		seen[c.Text] = struct{}{}
		ranked = append(ranked, c)
		if len(ranked) == max {
			break
		}
	}
	return ranked
}

// #endregion build

// #region helpers

func weightFor(anyMajor bool) int {
	if anyMajor {
		return 3
	}
	return 2
}

func bucketText(b *bucket) string {
	if phrase, ok := standalonePhrases[b.kind]; ok {
		return phrase
	}
	return fmt.Sprintf(groupPhrases[b.kind], fingerList(b.fingers))
}

// fingerList joins finger names naturally: "index", "index and middle",
// "index, middle and ring".
func fingerList(fingers []hand.Finger) string {
	names := make([]string, 0, len(fingers))
	seen := make(map[hand.Finger]struct{}, len(fingers))
	for _, f := range fingers {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		names = append(names, f.String())
	}
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}

func distinctFingers(errs []evaluate.FingerError) int {
	seen := make(map[hand.Finger]struct{})
	for _, fe := range errs {
		if fe.Severity == hand.SeverityNone {
			continue
		}
		// Rotation is a hand-level error; its zero-value finger field must
		// not count toward the fingers-left tally.
		if fe.Kind == evaluate.KindRotationWrong {
			continue
		}
		seen[fe.Finger] = struct{}{}
	}
	return len(seen)
}

func progressText(n int) string {
	if n == 1 {
		return "1 finger left"
	}
	return fmt.Sprintf("%d fingers left", n)
}

// #endregion helpers
