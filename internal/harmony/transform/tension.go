package transform

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/Conceptual-Machines/magda-harmony/internal/harmony/chord"
	"github.com/Conceptual-Machines/magda-harmony/internal/mathx"
)

// Dissonance weight per interval class (0..6 semitones)
var intervalClassWeights = [7]float64{0, 1.0, 0.4, 0, 0, 0, 0.8}

const (
	extensionWeight  = 0.1
	alterationWeight = 0.15
	tensionScale     = 4.0
	tensionEpsilon   = 1e-9
)

// CalculateTension scores harmonic tension in [0, 1] from the chord's pairwise interval
// dissonance plus its extension and alteration content. A major triad scores 0.
func CalculateTension(c chord.Chord) float64 {
	pcs := c.PitchClasses()
	weights := make([]float64, 0, len(pcs)*len(pcs)/2+len(c.Extensions)+len(c.Alterations))
	for i := 0; i < len(pcs); i++ {
		for j := i + 1; j < len(pcs); j++ {
			d := mathx.Mod(pcs[j]-pcs[i], 12)
			weights = append(weights, intervalClassWeights[min(d, 12-d)])
		}
	}
	for range c.Extensions {
		weights = append(weights, extensionWeight)
	}
	for range c.Alterations {
		weights = append(weights, alterationWeight)
	}
	return math.Min(1, floats.Sum(weights)/tensionScale)
}

// tensionSteps are applied in order to raise tension
var tensionSteps = []func(chord.Chord) chord.Chord{
	func(c chord.Chord) chord.Chord { return addDegree(c, 9) },
	func(c chord.Chord) chord.Chord { return addDegree(c, 13) },
	func(c chord.Chord) chord.Chord { return addAlteration(c, "b9") },
	func(c chord.Chord) chord.Chord { return addAlteration(c, "#11") },
	func(c chord.Chord) chord.Chord { return addAlteration(c, "b13") },
}

// AdjustTension adds or strips colour until the measured tension approaches target.
// Target is clamped to [0, 1]. When the chord already sits on the target side nothing
// changes.
func AdjustTension(c chord.Chord, target float64) Result {
	target = mathx.Clamp(target, 0, 1)
	current := CalculateTension(c)
	out := c

	switch {
	case current+tensionEpsilon < target:
		for _, step := range tensionSteps {
			if CalculateTension(out)+tensionEpsilon >= target {
				break
			}
			out = step(out)
		}
	case current > target+tensionEpsilon:
		for _, strip := range []func(chord.Chord) chord.Chord{stripAlterations, stripExtensions, stripToSeventh, stripToTriad} {
			if CalculateTension(out) <= target+tensionEpsilon {
				break
			}
			out = strip(out)
		}
	default:
		return unchanged(c)
	}

	if out.Equal(c) {
		return unchanged(c)
	}
	out.Notes = nil
	return changed(out)
}

func addDegree(c chord.Chord, degree int) chord.Chord {
	if slices.Contains(c.Extensions, degree) || slices.Contains(c.Quality.ImpliedExtensions(), degree) {
		return c
	}
	return c.WithExtensions(append(slices.Clone(c.Extensions), degree)...)
}

func addAlteration(c chord.Chord, alt string) chord.Chord {
	if slices.Contains(c.Alterations, alt) {
		return c
	}
	return c.WithAlterations(append(slices.Clone(c.Alterations), alt)...)
}

func stripAlterations(c chord.Chord) chord.Chord {
	return c.WithAlterations()
}

func stripExtensions(c chord.Chord) chord.Chord {
	return c.WithExtensions(c.Quality.ImpliedExtensions()...)
}

func stripToSeventh(c chord.Chord) chord.Chord {
	return simplify(c).Chord
}

func stripToTriad(c chord.Chord) chord.Chord {
	return c.WithQuality(c.Triad()).WithExtensions().WithAlterations()
}

// Complexity is a target harmonic richness tier
type Complexity int

const (
	Triads Complexity = iota
	Sevenths
	Ninths
	Elevenths
	Thirteenths
)

// AdjustComplexity maps c deterministically onto a tier, keeping its root and family
// (major, minor, dominant, diminished, suspended).
func AdjustComplexity(c chord.Chord, tier Complexity) Result {
	tier = mathx.Clamp(tier, Triads, Thirteenths)
	fam := family(c)

	var q chord.Quality
	var exts []int
	switch tier {
	case Triads:
		q = c.Triad()
	case Sevenths:
		q = fam.seventh
	case Ninths:
		q = fam.ninth
		exts = []int{9}
	case Elevenths:
		q = fam.seventh
		exts = []int{9, 11}
	case Thirteenths:
		q = fam.seventh
		exts = []int{9, 13}
		if c.Quality.IsDominant() {
			q = chord.Dom13
		}
	}
	if tier >= Ninths && fam.ninth == fam.seventh {
		// diminished and suspended families take colour as plain extensions
		q = fam.seventh
	}

	out := c.WithQuality(q).WithExtensions(exts...).WithAlterations()
	if out.Equal(c) {
		return unchanged(c)
	}
	return changed(out)
}

type qualityFamily struct {
	seventh chord.Quality
	ninth   chord.Quality
}

func family(c chord.Chord) qualityFamily {
	switch {
	case c.Quality.IsDominant() && c.Quality != chord.Dom7Sus4:
		return qualityFamily{seventh: chord.Dom7, ninth: chord.Dom9}
	case c.Quality.IsMinor():
		return qualityFamily{seventh: chord.Min7, ninth: chord.Min9}
	case c.Quality.IsMajor():
		return qualityFamily{seventh: chord.Maj7, ninth: chord.Maj9}
	case c.Quality == chord.Diminished || c.Quality == chord.Dim7:
		return qualityFamily{seventh: chord.Dim7, ninth: chord.Dim7}
	case c.Quality == chord.HalfDim7:
		return qualityFamily{seventh: chord.HalfDim7, ninth: chord.HalfDim7}
	case c.Quality == chord.Sus4 || c.Quality == chord.Dom7Sus4:
		return qualityFamily{seventh: chord.Dom7Sus4, ninth: chord.Dom7Sus4}
	case c.Quality == chord.Augmented || c.Quality == chord.Aug7:
		return qualityFamily{seventh: chord.Aug7, ninth: chord.Aug7}
	}
	return qualityFamily{seventh: c.Quality, ninth: c.Quality}
}
