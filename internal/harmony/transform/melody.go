package transform

import (
	"slices"

	"github.com/Conceptual-Machines/magda-harmony/internal/harmony/chord"
	"github.com/Conceptual-Machines/magda-harmony/internal/mathx"
)

// HarmonyType selects how a melody note is harmonized
type HarmonyType string

const (
	Thirds         HarmonyType = "thirds"
	Sixths         HarmonyType = "sixths"
	Fourths        HarmonyType = "fourths"
	Fifths         HarmonyType = "fifths"
	Octaves        HarmonyType = "octaves"
	DiatonicThirds HarmonyType = "diatonic-thirds"
	FourPart       HarmonyType = "four-part"
)

var parallelIntervals = map[HarmonyType]int{
	Thirds:  4,
	Sixths:  9,
	Fourths: 5,
	Fifths:  7,
	Octaves: 12,
}

// Direction places harmony voices above or below the melody
type Direction string

const (
	Below Direction = "below"
	Above Direction = "above"
)

// MajorScale is the default scale for diatonic harmonization, as pitch classes from the key
var MajorScale = []int{0, 2, 4, 5, 7, 9, 11}

// HarmonizerConfig configures HarmonizeMelody
type HarmonizerConfig struct {
	Type HarmonyType `json:"type"`
	// Voices counts the melody itself; 2 means one harmony note
	Voices    int       `json:"voices"`
	Direction Direction `json:"direction"`
	// Key and Scale feed diatonic-thirds
	Key   int   `json:"key"`
	Scale []int `json:"scale,omitempty"`
	// Chord feeds four-part
	Chord *chord.Chord `json:"chord,omitempty"`
}

// DefaultHarmonizerConfig harmonizes in thirds below with one extra voice
func DefaultHarmonizerConfig() HarmonizerConfig {
	return HarmonizerConfig{Type: Thirds, Voices: 2, Direction: Below}
}

// HarmonizeMelody returns the melody note followed by its harmony notes. Notes falling
// outside 0..127 are dropped.
func HarmonizeMelody(note int, config HarmonizerConfig) []int {
	voices := max(config.Voices, 1)
	sign := -1
	if config.Direction == Above {
		sign = 1
	}

	var out []int
	switch config.Type {
	case DiatonicThirds:
		out = diatonicThirds(note, voices, sign, config)
	case FourPart:
		out = chordTonesNear(note, voices, sign, config.Chord)
	default:
		interval, ok := parallelIntervals[config.Type]
		if !ok {
			interval = parallelIntervals[Thirds]
		}
		for i := range voices {
			out = append(out, note+sign*i*interval)
		}
	}
	return slices.DeleteFunc(out, func(n int) bool { return n < 0 || n > 127 })
}

func diatonicThirds(note, voices, sign int, config HarmonizerConfig) []int {
	scale := config.Scale
	if len(scale) == 0 {
		scale = MajorScale
	}
	degree, octave := scalePosition(note, config.Key, scale)

	out := []int{note}
	for i := 1; i < voices; i++ {
		d := degree + sign*2*i
		oct := octave + floorDiv(d, len(scale))
		pc := scale[mathx.Mod(d, len(scale))]
		out = append(out, oct*12+config.Key+pc)
	}
	return out
}

// scalePosition snaps note down to the nearest scale degree and returns that degree and
// its octave relative to the key
func scalePosition(note, key int, scale []int) (int, int) {
	rel := note - key
	octave := floorDiv(rel, 12)
	pc := mathx.Mod(rel, 12)
	degree := 0
	for i, s := range scale {
		if s <= pc {
			degree = i
		}
	}
	return degree, octave
}

func chordTonesNear(note, voices, sign int, c *chord.Chord) []int {
	out := []int{note}
	if c == nil {
		return out
	}
	pcs := c.PitchClasses()
	for n := note + sign; len(out) < voices && n >= 0 && n <= 127; n += sign {
		if slices.Contains(pcs, mathx.Mod(n, 12)) {
			out = append(out, n)
		}
	}
	return out
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
