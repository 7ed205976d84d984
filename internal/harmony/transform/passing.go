package transform

import (
	"math"

	"github.com/Conceptual-Machines/magda-harmony/internal/harmony/chord"
	"github.com/Conceptual-Machines/magda-harmony/internal/mathx"
	"github.com/Conceptual-Machines/magda-harmony/internal/models"
)

// maxPassingChords caps how many passing chords density can request
const maxPassingChords = 2

// PassingType selects how passing chords are built
type PassingType string

const (
	Chromatic PassingType = "chromatic"
	Diatonic  PassingType = "diatonic"
)

// PassingConfig controls passing-chord generation. Density in [0, 1] scales how many
// chords are inserted; 0 inserts nothing.
type PassingConfig struct {
	Type    PassingType `json:"type"`
	Density float64     `json:"density"`
}

// GeneratePassingChords returns the chords to insert between from and to, in playing order.
// The result grows monotonically with density. Chords matching from are skipped.
func GeneratePassingChords(from, to chord.Chord, config PassingConfig) []chord.Chord {
	density := mathx.Clamp(config.Density, 0, 1)
	count := int(math.Ceil(density * maxPassingChords))
	if count == 0 {
		return nil
	}

	var chain []chord.Chord
	switch config.Type {
	case Diatonic:
		// ii - V7 approach: the V7 of the target always sounds last
		chain = []chord.Chord{
			chord.New(to.Root+2, chord.Min7),
			chord.New(to.Root+7, chord.Dom7),
		}
	default:
		// diminished seventh a half step below the target, preceded by the tritone dominant
		chain = []chord.Chord{
			chord.New(to.Root+1, chord.Dom7),
			chord.New(to.Root+11, chord.Dim7),
		}
	}
	// a passing chord identical to the departure chord would only repeat it
	var out []chord.Chord
	for _, c := range chain[len(chain)-count:] {
		if c.Root == from.Root && c.Quality == from.Quality {
			continue
		}
		out = append(out, c)
	}
	return out
}

// ApplyPedalTone holds note in the bass under c. The symbol gains "/Note" unless the pedal
// is the chord root.
func ApplyPedalTone(c chord.Chord, note int) chord.Chord {
	return c.WithBass(mathx.Mod(note, 12))
}

// RandomSource supplies uniform values in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// RandomFunc adapts a function to RandomSource
type RandomFunc func() float64

// Float64 implements RandomSource
func (f RandomFunc) Float64() float64 {
	return f()
}

// AnticipationConfig controls how far and how often notes are pushed early
type AnticipationConfig struct {
	// Amount is in beats; 0.25 pushes a sixteenth early
	Amount      float64 `json:"amount"`
	Probability float64 `json:"probability"`
}

// DefaultAnticipationConfig pushes an eighth note early half of the time
func DefaultAnticipationConfig() AnticipationConfig {
	return AnticipationConfig{Amount: 0.5, Probability: 0.5}
}

// ApplyAnticipation moves tick earlier by Amount beats when rng draws below Probability.
// The result never goes below zero.
func ApplyAnticipation(tick int, config AnticipationConfig, rng RandomSource) int {
	if rng == nil || rng.Float64() >= config.Probability {
		return tick
	}
	shifted := tick - int(math.Round(config.Amount*models.PPQ))
	return max(shifted, 0)
}
