package accompaniment

import (
	"math"

	"github.com/Conceptual-Machines/magda-harmony/internal/models"
)

// RhythmTemplate defines timing and accent patterns for one bar of an accompaniment voice
type RhythmTemplate struct {
	Name string
	// Offsets within a bar (in beats, 0-4 for 4/4 time)
	Offsets []float64
	// Velocity multipliers for accents (1.0 = normal)
	Accents []float64
	// Duration multiplier (affects note length, 0.0-1.0)
	Articulation float64
}

// Rhythm template constants
const (
	articulationHigh    = 0.9
	articulationMidHigh = 0.85
	articulationShort   = 0.4
	articulationOverlap = 1.1
)

var rhythmTemplates = map[string]RhythmTemplate{
	"whole": {
		Name:         "whole",
		Offsets:      []float64{0},
		Accents:      []float64{1.0},
		Articulation: 1.0,
	},
	"half": {
		Name:         "half",
		Offsets:      []float64{0, 2},
		Accents:      []float64{1.0, 0.9},
		Articulation: 1.0,
	},
	"quarters": {
		Name:         "quarters",
		Offsets:      []float64{0, 1, 2, 3},
		Accents:      []float64{1.0, 0.8, 0.9, 0.8},
		Articulation: articulationHigh,
	},
	"8ths": {
		Name:         "8ths",
		Offsets:      []float64{0, 0.5, 1, 1.5, 2, 2.5, 3, 3.5},
		Accents:      []float64{1.0, 0.7, 0.9, 0.7, 0.95, 0.7, 0.9, 0.7},
		Articulation: articulationMidHigh,
	},
	"offbeat": {
		Name:         "offbeat",
		Offsets:      []float64{0.5, 1.5, 2.5, 3.5},
		Accents:      []float64{0.9, 0.85, 0.9, 0.85},
		Articulation: articulationMidHigh,
	},
	"syncopated": {
		Name:         "syncopated",
		Offsets:      []float64{0, 0.5, 1.5, 2, 3, 3.5},
		Accents:      []float64{1.0, 0.8, 0.9, 0.85, 0.95, 0.8},
		Articulation: articulationMidHigh,
	},
	"charleston": {
		Name:         "charleston",
		Offsets:      []float64{0, 1.5},
		Accents:      []float64{1.0, 0.85},
		Articulation: articulationShort,
	},
	"stride": {
		Name:         "stride",
		Offsets:      []float64{0, 1, 2, 3},
		Accents:      []float64{1.0, 0.8, 0.9, 0.8},
		Articulation: articulationHigh,
	},
	"staccato": {
		Name:         "staccato",
		Offsets:      []float64{0, 1, 2, 3},
		Accents:      []float64{1.0, 0.9, 0.95, 0.9},
		Articulation: articulationShort,
	},
	"legato": {
		Name:         "legato",
		Offsets:      []float64{0, 1, 2, 3},
		Accents:      []float64{0.9, 0.85, 0.9, 0.85},
		Articulation: articulationOverlap,
	},
}

// GetRhythmTemplate returns a rhythm template by name
func GetRhythmTemplate(name string) (RhythmTemplate, bool) {
	tmpl, ok := rhythmTemplates[name]
	return tmpl, ok
}

// hit is one resolved template position inside a bar
type hit struct {
	tick     int
	duration int
	accent   float64
}

// hits resolves the template into ticks relative to the bar start. Each note is shortened
// so it never runs into the next hit or past the bar, except for overlapping articulation.
func (t RhythmTemplate) hits() []hit {
	out := make([]hit, 0, len(t.Offsets))
	for i, offset := range t.Offsets {
		next := 4.0
		if i+1 < len(t.Offsets) {
			next = t.Offsets[i+1]
		}
		span := next - offset
		length := span * t.Articulation
		if t.Articulation <= 1 {
			length = math.Min(length, span)
		}
		accent := 1.0
		if i < len(t.Accents) {
			accent = t.Accents[i]
		}
		out = append(out, hit{
			tick:     beatsToTicks(offset),
			duration: max(beatsToTicks(length), 1),
			accent:   accent,
		})
	}
	return out
}

func beatsToTicks(beats float64) int {
	return int(math.Round(beats * models.PPQ))
}

// swingDelay pushes offbeat eighths late. Swing 1.0 moves them to the last triplet.
func swingDelay(tick int, swing float64) int {
	if swing <= 0 || tick%models.PPQ != models.PPQ/2 {
		return 0
	}
	return int(math.Round(math.Min(swing, 1) * models.PPQ / 6))
}
