package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/handslab/signcoach/internal/hand"
)

func TestCurlConstraintValidate(t *testing.T) {
	require.NoError(t, CurlConstraint{Min: 0.2, Max: 0.8, Enabled: true}.Validate())
	require.Error(t, CurlConstraint{Min: 0.8, Max: 0.2, Enabled: true}.Validate())
	require.Error(t, CurlConstraint{Min: -0.1, Max: 0.5, Enabled: true}.Validate())
	require.Error(t, CurlConstraint{Min: 0.5, Max: 1.2, Enabled: true}.Validate())
	// Disabled constraints are never checked.
	require.NoError(t, CurlConstraint{Min: 5, Max: -5}.Validate())
}

func TestSpreadConstraintValidate(t *testing.T) {
	require.NoError(t, SpreadConstraint{MinAngle: -10, MaxAngle: 10, Enabled: true}.Validate())
	require.Error(t, SpreadConstraint{MinAngle: 10, MaxAngle: -10, Enabled: true}.Validate())
	require.Error(t, SpreadConstraint{MinAngle: -45, MaxAngle: 0, Enabled: true}.Validate())
	require.Error(t, SpreadConstraint{MinAngle: 0, MaxAngle: 45, Enabled: true}.Validate())
}

func TestExpectedShapeResolution(t *testing.T) {
	// An explicit declaration wins over the curl range.
	declared := FingerConstraint{
		Curl:          CurlConstraint{Min: 0.8, Max: 1.0, Enabled: true},
		ExpectedState: hand.ShapeExtended,
	}
	shape, ok := declared.ExpectedShape()
	require.True(t, ok)
	require.Equal(t, hand.ShapeExtended, shape)

	// Without a declaration the midpoint of the range buckets the shape.
	derived := FingerConstraint{Curl: CurlConstraint{Min: 0.35, Max: 0.55, Enabled: true}}
	shape, ok = derived.ExpectedShape()
	require.True(t, ok)
	require.Equal(t, hand.ShapeCurved, shape)

	fist := FingerConstraint{Curl: CurlConstraint{Min: 0.8, Max: 1.0, Enabled: true}}
	shape, ok = fist.ExpectedShape()
	require.True(t, ok)
	require.Equal(t, hand.ShapeClosed, shape)

	// Nothing declared and no curl range: no expectation at all.
	_, ok = FingerConstraint{}.ExpectedShape()
	require.False(t, ok)
}

func TestProfileValidate(t *testing.T) {
	p := &Profile{SignName: "letter_a"}
	require.NoError(t, p.Validate())

	require.Error(t, (&Profile{}).Validate(), "missing sign name")

	bad := &Profile{SignName: "letter_b"}
	bad.Fingers[hand.Index].Curl = CurlConstraint{Min: 0.9, Max: 0.1, Enabled: true}
	require.Error(t, bad.Validate())

	orient := &Profile{SignName: "letter_c"}
	orient.Orientation = Orientation{Enabled: true, ToleranceDeg: 0}
	require.Error(t, orient.Validate())
}

func TestRegistryRegisterIsIdempotent(t *testing.T) {
	r := NewRegistry()
	first := &Profile{SignName: "hello", Description: "first"}
	second := &Profile{SignName: "hello", Description: "second"}

	r.Register(first)
	r.Register(second)
	require.Equal(t, 1, r.Len())

	p, ok := r.Lookup("hello")
	require.True(t, ok)
	require.Equal(t, "first", p.Description, "the first registration wins")

	_, ok = r.Lookup("unknown")
	require.False(t, ok)

	r.Register(&Profile{SignName: "bye"})
	require.Equal(t, []string{"bye", "hello"}, r.Names())
}

func TestDocumentRoundTrip(t *testing.T) {
	p := &Profile{SignName: "letter_c", Description: "curved hand"}
	for _, f := range hand.AllFingers {
		p.Fingers[f].Curl = CurlConstraint{Min: 0.35, Max: 0.6, Enabled: true, Severity: hand.SeverityMajor}
	}
	p.Fingers[hand.Index].Spread = SpreadConstraint{MinAngle: -5, MaxAngle: 15, Enabled: true, Severity: hand.SeverityMinor}
	p.Fingers[hand.Index].Messages.NeedsCurve = "Curve your index like a C"
	p.Thumb = ThumbChecks{ShouldBeBesideFingers: true, TouchSeverity: hand.SeverityMajor}
	p.Orientation = Orientation{Enabled: true, ExpectedForward: hand.Vec3{Z: 1}, ToleranceDeg: 25}

	back, err := FromProfile(p).ToProfile()
	require.NoError(t, err)
	require.Equal(t, p.SignName, back.SignName)
	require.Equal(t, p.Fingers, back.Fingers)
	require.Equal(t, p.Thumb, back.Thumb)
	require.Equal(t, p.Orientation.Enabled, back.Orientation.Enabled)
	require.InDelta(t, 1, float64(back.Orientation.ExpectedForward.Z), 1e-5)
}

func TestLoadDocumentAppliesSeverityDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "letter_v.yaml")
	doc := `
fingers:
  index:
    curl:
      min: 0.0
      max: 0.2
  middle:
    curl:
      min: 0.0
      max: 0.2
    spread:
      min_angle: 10
      max_angle: 30
thumb:
  should_touch_ring: true
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	loaded, err := LoadDocument(path)
	require.NoError(t, err)
	require.Equal(t, "letter_v", loaded.SignName, "sign name falls back to the file name")

	p, err := loaded.ToProfile()
	require.NoError(t, err)
	require.Equal(t, hand.SeverityMajor, p.Fingers[hand.Index].Curl.Severity)
	require.Equal(t, hand.SeverityMinor, p.Fingers[hand.Middle].Spread.Severity)
	require.Equal(t, []hand.Finger{hand.Ring}, p.Thumb.TouchTargets())
}

func TestLoadDirSortsAndSkipsNonYAML(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.yml", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("fingers: {}\n"), 0o644))
	}

	docs, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, "a", docs[0].SignName)
	require.Equal(t, "b", docs[1].SignName)
}
