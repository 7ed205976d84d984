package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/magda-harmony/internal/models"
)

func TestDefaultCatalog(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	styles := reg.Styles()
	require.NotEmpty(t, styles)
	for _, s := range styles {
		assert.NotEmpty(t, s.Variations, s.ID)
		assert.GreaterOrEqual(t, s.Tempo.Default, s.Tempo.Min, s.ID)
		assert.LessOrEqual(t, s.Tempo.Default, s.Tempo.Max, s.ID)
		for _, v := range s.Variations {
			_, err := reg.DrumPattern(v.DrumPattern)
			assert.NoError(t, err, "%s/%s", s.ID, v.Name)
		}
	}
}

func TestStyleLookup(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	s, err := reg.Style("pop-8beat")
	require.NoError(t, err)
	assert.Equal(t, "pop", s.Category)
	assert.Equal(t, 110, s.Tempo.Default)
	assert.Equal(t, models.VoiceBass, s.Voices[0].Type)

	_, err = reg.Style("polka")
	assert.ErrorIs(t, err, ErrStyleNotFound)

	_, ok := reg.LookupStyle("polka")
	assert.False(t, ok)
}

func TestVoiceRhythm(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	house, err := reg.Style("edm-house")
	require.NoError(t, err)
	rhythms := map[string]string{}
	for _, v := range house.Voices {
		rhythms[v.ID] = v.Rhythm
	}
	assert.Equal(t, "offbeat", rhythms["bass"])
	assert.Equal(t, "staccato", rhythms["stabs"])
	assert.Empty(t, rhythms["arp"])

	pop, err := reg.Style("pop-8beat")
	require.NoError(t, err)
	for _, v := range pop.Voices {
		assert.Empty(t, v.Rhythm, v.ID)
	}
}

func TestStyleSearch(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	assert.Len(t, reg.StylesByCategory("pop"), 2)
	assert.Len(t, reg.StylesByCategory("JAZZ"), 1)
	assert.Empty(t, reg.StylesByCategory("metal"))

	found := reg.SearchStyles("four-on")
	require.Len(t, found, 1)
	assert.Equal(t, "edm-house", found[0].ID)

	assert.Empty(t, reg.SearchStyles("zydeco"))
	assert.Len(t, reg.SearchStyles(""), len(reg.Styles()))
}

func TestDrumPatternLookup(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	p, err := reg.DrumPattern("house-basic")
	require.NoError(t, err)
	assert.Equal(t, 16, p.Steps)

	_, err = reg.DrumPattern("missing")
	assert.ErrorIs(t, err, ErrDrumPatternNotFound)

	assert.NotEmpty(t, reg.DrumPatternsByCategory("edm"))
	assert.Empty(t, reg.DrumPatternsByCategory("metal"))
	assert.NotEmpty(t, reg.DrumPatternsByTag("swing"))
	assert.Empty(t, reg.DrumPatternsByTag("blast-beat"))
}

func TestLookupsReturnCopies(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	s, err := reg.Style("pop-8beat")
	require.NoError(t, err)
	s.Variations[0].DrumPattern = "changed"
	s.Tags[0] = "changed"

	again, err := reg.Style("pop-8beat")
	require.NoError(t, err)
	assert.Equal(t, "pop-basic", again.Variations[0].DrumPattern)
	assert.Equal(t, "pop", again.Tags[0])
}

func TestNewRegistryValidation(t *testing.T) {
	pattern := DrumPattern{ID: "p", Steps: 4, Tracks: []DrumTrack{{Instrument: "kick", Note: 36, Grid: "x---"}}}

	_, err := NewRegistry(nil, []DrumPattern{pattern, pattern})
	assert.Error(t, err)

	bad := pattern
	bad.ID = "bad"
	bad.Tracks = []DrumTrack{{Instrument: "kick", Note: 36, Grid: "x-"}}
	_, err = NewRegistry(nil, []DrumPattern{bad})
	assert.Error(t, err)

	style := Style{ID: "s", Variations: []Variation{{Name: "A", DrumPattern: "nope"}}}
	_, err = NewRegistry([]Style{style}, []DrumPattern{pattern})
	assert.ErrorIs(t, err, ErrDrumPatternNotFound)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := `
styles:
  - id: test-style
    name: Test
    category: test
    tempo: {min: 60, max: 120, default: 90}
    variations:
      - {name: A, drumPattern: beat}
drumPatterns:
  - id: beat
    steps: 8
    tracks:
      - {instrument: kick, note: 36, grid: "x---x---"}
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	reg, err := LoadFile(path)
	require.NoError(t, err)
	s, err := reg.Style("test-style")
	require.NoError(t, err)
	assert.Equal(t, 90, s.Tempo.Default)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestStyleVariationClamps(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)
	s, err := reg.Style("pop-8beat")
	require.NoError(t, err)

	v, ok := s.Variation(9)
	require.True(t, ok)
	assert.Equal(t, "D", v.Name)

	v, ok = s.Variation(-1)
	require.True(t, ok)
	assert.Equal(t, "A", v.Name)
}
