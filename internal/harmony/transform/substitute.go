package transform

import (
	"slices"

	"github.com/Conceptual-Machines/magda-harmony/internal/harmony/chord"
)

// Result is the outcome of a transform. Changed is false when the transform did not apply
// and Chord is the input unchanged.
type Result struct {
	Chord   chord.Chord `json:"chord"`
	Changed bool        `json:"changed"`
}

func unchanged(c chord.Chord) Result {
	return Result{Chord: c, Changed: false}
}

func changed(c chord.Chord) Result {
	return Result{Chord: c, Changed: true}
}

// SubstitutionType selects a reharmonization rule
type SubstitutionType string

const (
	Tritone    SubstitutionType = "tritone"
	Relative   SubstitutionType = "relative"
	Secondary  SubstitutionType = "secondary"
	Diminished SubstitutionType = "diminished"
	Extended   SubstitutionType = "extended"
	Simplified SubstitutionType = "simplified"
)

// SubstitutionTypes lists every supported substitution
var SubstitutionTypes = []SubstitutionType{Tritone, Relative, Secondary, Diminished, Extended, Simplified}

// Substitute applies a substitution. Inapplicable substitutions return the input unchanged.
func Substitute(c chord.Chord, kind SubstitutionType) Result {
	switch kind {
	case Tritone:
		if !c.Quality.IsDominant() {
			return unchanged(c)
		}
		return changed(c.WithRoot(c.Root + 6).WithBass(chord.NoPitch))
	case Relative:
		switch c.Quality {
		case chord.Major:
			return changed(chord.New(c.Root+9, chord.Minor))
		case chord.Minor:
			return changed(chord.New(c.Root+3, chord.Major))
		}
		return unchanged(c)
	case Secondary:
		return changed(chord.New(c.Root+7, chord.Dom7))
	case Diminished:
		// leading-tone diminished seventh a half step below the chord it approaches
		return changed(chord.New(c.Root+11, chord.Dim7))
	case Extended:
		return extend(c)
	case Simplified:
		return simplify(c)
	}
	return unchanged(c)
}

func extend(c chord.Chord) Result {
	var q chord.Quality
	switch c.Quality {
	case chord.Major, chord.Maj7, chord.Sixth, chord.Add9:
		q = chord.Maj9
	case chord.Minor, chord.Min7:
		q = chord.Min9
	case chord.Dom7:
		if len(c.Alterations) > 0 {
			return addExtension(c, 9)
		}
		q = chord.Dom9
	case chord.Maj9, chord.Min9, chord.Dom9, chord.Dom11, chord.Dom13:
		return unchanged(c)
	default:
		return addExtension(c, 9)
	}
	out := c.WithQuality(q).WithExtensions(append(slices.Clone(c.Extensions), 9)...)
	return changed(out)
}

func addExtension(c chord.Chord, degree int) Result {
	for _, ext := range c.Extensions {
		if ext == degree {
			return unchanged(c)
		}
	}
	out := c.WithExtensions(append(slices.Clone(c.Extensions), degree)...)
	out.Notes = nil
	return changed(out)
}

var simplifiedQualities = map[chord.Quality]chord.Quality{
	chord.Add9:     chord.Major,
	chord.Sixth:    chord.Major,
	chord.Maj9:     chord.Maj7,
	chord.Dom9:     chord.Dom7,
	chord.Dom11:    chord.Dom7,
	chord.Dom13:    chord.Dom7,
	chord.Min9:     chord.Min7,
	chord.MinSixth: chord.Minor,
	chord.Aug7:     chord.Dom7,
}

func simplify(c chord.Chord) Result {
	q := c.Quality
	if s, ok := simplifiedQualities[q]; ok {
		q = s
	}
	if q == c.Quality && len(c.Extensions) == 0 && len(c.Alterations) == 0 {
		return unchanged(c)
	}
	out := c.WithQuality(q).WithExtensions().WithAlterations()
	return changed(out)
}
