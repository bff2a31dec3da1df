package profile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/handslab/signcoach/internal/hand"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := OpenCatalog(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCatalogPutGetRoundTrip(t *testing.T) {
	c := openTestCatalog(t)

	p := &Profile{SignName: "letter_o", Description: "rounded hand"}
	for _, f := range hand.AllFingers {
		p.Fingers[f].Curl = CurlConstraint{Min: 0.4, Max: 0.7, Enabled: true, Severity: hand.SeverityMajor}
	}
	p.Thumb = ThumbChecks{ShouldTouchIndex: true, TouchSeverity: hand.SeverityMajor}

	require.NoError(t, c.Put(p))

	got, err := c.Get("letter_o")
	require.NoError(t, err)
	require.Equal(t, p.SignName, got.SignName)
	require.Equal(t, p.Fingers, got.Fingers)
	require.Equal(t, p.Thumb, got.Thumb)
}

func TestCatalogPutUpserts(t *testing.T) {
	c := openTestCatalog(t)

	p := &Profile{SignName: "letter_s", Description: "v1"}
	require.NoError(t, c.Put(p))
	p.Description = "v2"
	require.NoError(t, c.Put(p))

	names, err := c.ListNames()
	require.NoError(t, err)
	require.Equal(t, []string{"letter_s"}, names)

	got, err := c.Get("letter_s")
	require.NoError(t, err)
	require.Equal(t, "v2", got.Description)
}

func TestCatalogRejectsInvalidProfile(t *testing.T) {
	c := openTestCatalog(t)
	require.Error(t, c.Put(&Profile{}))
}

func TestCatalogGetMissing(t *testing.T) {
	c := openTestCatalog(t)
	_, err := c.Get("nope")
	require.Error(t, err)
}

func TestLoadRegistryReadsWholeCatalog(t *testing.T) {
	c := openTestCatalog(t)
	for _, name := range []string{"alpha", "bravo", "charlie"} {
		require.NoError(t, c.Put(&Profile{SignName: name}))
	}

	reg, err := c.LoadRegistry()
	require.NoError(t, err)
	require.Equal(t, 3, reg.Len())
	_, ok := reg.Lookup("bravo")
	require.True(t, ok)
}
