package accompaniment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/magda-harmony/internal/catalog"
	"github.com/Conceptual-Machines/magda-harmony/internal/harmony/chord"
	"github.com/Conceptual-Machines/magda-harmony/internal/harmony/voicing"
	"github.com/Conceptual-Machines/magda-harmony/internal/mathx"
	"github.com/Conceptual-Machines/magda-harmony/internal/models"
)

func loadStyle(t *testing.T, id string) (*catalog.Registry, catalog.Style) {
	t.Helper()
	reg, err := catalog.Default()
	require.NoError(t, err)
	s, err := reg.Style(id)
	require.NoError(t, err)
	return reg, s
}

func mustParse(t *testing.T, symbol string) chord.Chord {
	t.Helper()
	c, err := chord.Parse(symbol)
	require.NoError(t, err)
	return c
}

func TestGetRhythmTemplate(t *testing.T) {
	tmpl, ok := GetRhythmTemplate("quarters")
	require.True(t, ok)
	assert.Len(t, tmpl.Offsets, 4)

	_, ok = GetRhythmTemplate("polka")
	assert.False(t, ok)
}

func TestRhythmTemplateHits(t *testing.T) {
	tmpl, _ := GetRhythmTemplate("half")
	hits := tmpl.hits()
	require.Len(t, hits, 2)
	assert.Equal(t, 0, hits[0].tick)
	assert.Equal(t, 960, hits[1].tick)
	assert.Equal(t, 960, hits[0].duration)

	staccato, _ := GetRhythmTemplate("staccato")
	for _, h := range staccato.hits() {
		assert.Less(t, h.duration, models.PPQ)
	}
}

func TestSwingDelay(t *testing.T) {
	assert.Equal(t, 0, swingDelay(0, 0.6))
	assert.Equal(t, 0, swingDelay(240, 0))
	assert.Equal(t, 48, swingDelay(240, 0.6))
	assert.Equal(t, 80, swingDelay(720, 1))
}

func TestGenerateTexture_VoicesAndRanges(t *testing.T) {
	_, style := loadStyle(t, "pop-8beat")
	c := mustParse(t, "C")

	events := GenerateTexture(TextureRequest{Chord: c, Style: style, Energy: 3, Bars: 2})
	require.NotEmpty(t, events)

	voices := map[string]catalog.Voice{}
	for _, v := range style.Voices {
		voices[v.ID] = v
	}
	seen := map[string]bool{}
	pcs := c.PitchClasses()
	for _, e := range events {
		seen[e.VoiceID] = true
		v := voices[e.VoiceID]
		assert.GreaterOrEqual(t, e.Note, v.Low, e.VoiceID)
		assert.LessOrEqual(t, e.Note, v.High, e.VoiceID)
		assert.Contains(t, pcs, mathx.Mod(e.Note, 12))
		assert.Less(t, e.StartTick, 2*models.TicksPerBar)
		assert.Positive(t, e.Duration)
		assert.InDelta(t, 64, e.Velocity, 63)
	}
	assert.True(t, seen["bass"])
	assert.True(t, seen["keys"])
	assert.True(t, seen["pad"])
	assert.False(t, seen["drums"])
}

func TestGenerateTexture_EnergyAddsDensity(t *testing.T) {
	_, style := loadStyle(t, "pop-8beat")
	c := mustParse(t, "Am")

	low := GenerateTexture(TextureRequest{Chord: c, Style: style, Energy: 1, Bars: 1})
	high := GenerateTexture(TextureRequest{Chord: c, Style: style, Energy: 5, Bars: 1})
	assert.Greater(t, len(high), len(low))

	clamped := GenerateTexture(TextureRequest{Chord: c, Style: style, Energy: 42, Bars: 1})
	assert.Equal(t, len(high), len(clamped))
}

func TestGenerateTexture_UsesVoicing(t *testing.T) {
	_, style := loadStyle(t, "pop-8beat")
	c := mustParse(t, "C")
	v := voicing.Apply(nil, c, voicing.DefaultConfig())

	events := GenerateTexture(TextureRequest{Chord: c, Voicing: &v, Style: style, Energy: 1, Bars: 1})
	for _, e := range events {
		if e.VoiceID == "bass" {
			assert.Equal(t, v.Bass, e.Note)
		}
	}
}

func TestGenerateTexture_SlashBass(t *testing.T) {
	_, style := loadStyle(t, "pop-8beat")
	events := GenerateTexture(TextureRequest{Chord: mustParse(t, "C/E"), Style: style, Energy: 2, Bars: 1})
	for _, e := range events {
		if e.VoiceType == models.VoiceBass {
			assert.Equal(t, 4, mathx.Mod(e.Note, 12))
		}
	}
}

func TestGenerateTexture_VoiceRhythm(t *testing.T) {
	_, house := loadStyle(t, "edm-house")
	am := mustParse(t, "Am")

	byVoice := func(events []models.NoteEvent, id string) []models.NoteEvent {
		var out []models.NoteEvent
		for _, e := range events {
			if e.VoiceID == id {
				out = append(out, e)
			}
		}
		return out
	}

	// the house bass pumps on the offbeats once the groove is up
	bass := byVoice(GenerateTexture(TextureRequest{Chord: am, Style: house, Energy: 3, Bars: 1}), "bass")
	var starts []int
	for _, e := range bass {
		starts = append(starts, e.StartTick)
	}
	assert.Equal(t, []int{240, 720, 1200, 1680}, starts)

	// below energy 3 the energy table still thins it out
	sparse := byVoice(GenerateTexture(TextureRequest{Chord: am, Style: house, Energy: 2, Bars: 1}), "bass")
	require.Len(t, sparse, 2)
	assert.Zero(t, sparse[0].StartTick)

	stabs := byVoice(GenerateTexture(TextureRequest{Chord: am, Style: house, Energy: 4, Bars: 1}), "stabs")
	require.NotEmpty(t, stabs)
	for _, e := range stabs {
		assert.Less(t, e.Duration, models.PPQ/2, "staccato stabs")
	}

	_, ballad := loadStyle(t, "ballad-slow")
	legato := byVoice(GenerateTexture(TextureRequest{Chord: mustParse(t, "Eb"), Style: ballad, Energy: 4, Bars: 1}), "bass")
	require.Len(t, legato, 4)
	for _, e := range legato {
		assert.Greater(t, e.Duration, models.PPQ, "legato notes overlap the next beat")
	}
}

func TestRhythmForFallsBackOnUnknownName(t *testing.T) {
	voice := catalog.Voice{ID: "bass", Type: models.VoiceBass, Rhythm: "polka"}
	assert.Equal(t, "quarters", rhythmFor(voice, 3, "quarters").Name)

	voice.Rhythm = "stride"
	assert.Equal(t, "stride", rhythmFor(voice, 3, "quarters").Name)
	assert.Equal(t, "whole", rhythmFor(voice, 1, "whole").Name)
}

func TestGenerateTexture_ArpAndSwing(t *testing.T) {
	_, style := loadStyle(t, "edm-house")
	events := GenerateTexture(TextureRequest{Chord: mustParse(t, "Am"), Style: style, Variation: 1, Energy: 3, StartTick: 1920, Bars: 1})

	var arp []models.NoteEvent
	for _, e := range events {
		assert.GreaterOrEqual(t, e.StartTick, 1920)
		if e.VoiceType == models.VoiceArp {
			arp = append(arp, e)
		}
	}
	// eighth-note arpeggio at energy 3
	require.Len(t, arp, 8)
	// variation B swings the offbeats
	assert.Equal(t, 1920+240+4, arp[1].StartTick)
}

func TestGenerateDrums(t *testing.T) {
	reg, _ := loadStyle(t, "pop-8beat")
	pattern, err := reg.DrumPattern("pop-full")
	require.NoError(t, err)

	full := GenerateDrums(DrumRequest{Pattern: pattern, Energy: 4, Bars: 2})
	medium := GenerateDrums(DrumRequest{Pattern: pattern, Energy: 2, Bars: 2})
	sparse := GenerateDrums(DrumRequest{Pattern: pattern, Energy: 1, Bars: 2})

	assert.Greater(t, len(full), len(medium))
	assert.Greater(t, len(medium), len(sparse))
	for i := 1; i < len(full); i++ {
		assert.LessOrEqual(t, full[i-1].StartTick, full[i].StartTick)
	}
	for _, e := range sparse {
		assert.Zero(t, e.StartTick%(models.PPQ/2))
	}
}

func TestGenerateDrums_GridCounts(t *testing.T) {
	reg, _ := loadStyle(t, "edm-house")
	pattern, err := reg.DrumPattern("house-basic")
	require.NoError(t, err)

	events := GenerateDrums(DrumRequest{Pattern: pattern, Energy: 3, Bars: 1})
	kicks := 0
	for _, e := range events {
		if e.Instrument == "kick" {
			kicks++
			assert.Equal(t, 36, e.Note)
		}
	}
	assert.Equal(t, 4, kicks)
	assert.Len(t, events, 8)
}

func TestGenerateFill(t *testing.T) {
	tests := []struct {
		name        string
		req         FillRequest
		expectHits  int
		expectCrash bool
	}{
		{"snare roll eighths", FillRequest{Type: SnareRoll, Energy: 2, StartTick: 1440, Beats: 1}, 2, false},
		{"snare roll sixteenths", FillRequest{Type: SnareRoll, Energy: 3, StartTick: 1440, Beats: 1}, 4, true},
		{"tom cascade", FillRequest{Type: TomCascade, Energy: 4, StartTick: 960, Beats: 2}, 8, true},
		{"kick build 32nds", FillRequest{Type: KickBuild, Energy: 5, StartTick: 1440, Beats: 1}, 8, true},
		{"break", FillRequest{Type: Break, Energy: 1, StartTick: 1440, Beats: 1}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := GenerateFill(tt.req)
			hits, crashes := 0, 0
			for _, e := range events {
				if e.Instrument == "crash" {
					crashes++
					assert.Equal(t, tt.req.StartTick+tt.req.Beats*models.PPQ, e.StartTick)
					continue
				}
				hits++
			}
			assert.Equal(t, tt.expectHits, hits)
			assert.Equal(t, tt.expectCrash, crashes == 1)
		})
	}
}

func TestGenerateFill_Crescendo(t *testing.T) {
	events := GenerateFill(FillRequest{Type: SnareRoll, Energy: 2, StartTick: 0, Beats: 2})
	require.Len(t, events, 4)
	for i := 1; i < len(events); i++ {
		assert.Greater(t, events[i].Velocity, events[i-1].Velocity)
	}
}

func TestFillForEnergy(t *testing.T) {
	assert.Equal(t, Break, FillForEnergy(0))
	assert.Equal(t, SnareRoll, FillForEnergy(2))
	assert.Equal(t, TomCascade, FillForEnergy(4))
	assert.Equal(t, KickBuild, FillForEnergy(9))
}

func TestGenerateEnding(t *testing.T) {
	_, style := loadStyle(t, "pop-8beat")
	c := mustParse(t, "C")

	t.Run("fermata", func(t *testing.T) {
		e := GenerateEnding(EndingRequest{Type: Fermata, Chord: c, Style: style, Energy: 3, StartTick: 3840})
		require.NotEmpty(t, e.Notes)
		for _, n := range e.Notes {
			assert.Equal(t, 3840, n.StartTick)
		}
		assert.Equal(t, 2*models.TicksPerBar, e.LengthTicks)
		assert.Len(t, e.Drums, 2)
	})

	t.Run("cadence lands on the chord after its dominant", func(t *testing.T) {
		e := GenerateEnding(EndingRequest{Type: Cadence, Chord: c, Style: style, Energy: 3})
		var first, last []int
		for _, n := range e.Notes {
			if n.VoiceType == models.VoiceBass {
				if n.StartTick == 0 {
					first = append(first, mathx.Mod(n.Note, 12))
				} else {
					last = append(last, mathx.Mod(n.Note, 12))
				}
			}
		}
		assert.Equal(t, []int{7}, first)
		assert.Equal(t, []int{0}, last)
		assert.Equal(t, 3*models.TicksPerBar, e.LengthTicks)
	})

	t.Run("ritardando spreads hits", func(t *testing.T) {
		e := GenerateEnding(EndingRequest{Type: Ritardando, Chord: c, Style: style, Energy: 2})
		starts := map[int]bool{}
		for _, n := range e.Notes {
			starts[n.StartTick] = true
		}
		assert.Len(t, starts, len(ritardandoBeats))
	})

	t.Run("stinger is short", func(t *testing.T) {
		e := GenerateEnding(EndingRequest{Type: Stinger, Chord: c, Style: style, Energy: 5})
		assert.Equal(t, models.PPQ/2, e.LengthTicks)
	})
}
