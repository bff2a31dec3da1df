package hand

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShapeForCurlBuckets(t *testing.T) {
	cases := []struct {
		curl float32
		want ShapeState
	}{
		{0.0, ShapeExtended},
		{0.29, ShapeExtended},
		{0.30, ShapeCurved},
		{0.50, ShapeCurved},
		{0.72, ShapeCurved},
		{0.73, ShapeClosed},
		{1.0, ShapeClosed},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, ShapeForCurl(tc.curl), "curl %.2f", tc.curl)
	}
}

func TestSeverityOrdering(t *testing.T) {
	require.True(t, SeverityNone < SeverityMinor)
	require.True(t, SeverityMinor < SeverityMajor)
}

func TestFingerNames(t *testing.T) {
	require.Equal(t, "thumb", Thumb.String())
	require.Equal(t, "pinky", Pinky.String())
	require.Equal(t, "unknown", Finger(9).String())
}

func TestAngleDeg(t *testing.T) {
	x := Vec3{X: 1}
	y := Vec3{Y: 1}

	require.InDelta(t, 90, AngleDeg(x, y), 0.01)
	require.InDelta(t, 0, AngleDeg(x, x), 0.01)
	require.InDelta(t, 180, AngleDeg(x, x.Scale(-1)), 0.01)
	require.Equal(t, float32(0), AngleDeg(Vec3{}, x))
}

func TestVec3Helpers(t *testing.T) {
	v := Vec3{X: 3, Y: 4}
	require.InDelta(t, 5, v.Length(), 1e-6)
	require.InDelta(t, 1, v.Normalized().Length(), 1e-6)
	require.Equal(t, Vec3{}, Vec3{}.Normalized())
	require.InDelta(t, 5, Vec3{}.Distance(v), 1e-6)
}

func TestClamp01(t *testing.T) {
	require.Equal(t, float32(0), Clamp01(-0.5))
	require.Equal(t, float32(1), Clamp01(1.5))
	require.Equal(t, float32(0.4), Clamp01(0.4))
}
