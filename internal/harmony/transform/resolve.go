package transform

import (
	"github.com/Conceptual-Machines/magda-harmony/internal/harmony/chord"
)

// Resolve moves an unstable chord to its expected target: suspensions fall to the major
// triad, dominants resolve a fourth up to major, diminished sevenths rise a half step to
// minor. Any other chord is already stable and comes back unchanged.
func Resolve(c chord.Chord) Result {
	switch {
	case c.Quality == chord.Sus2 || c.Quality == chord.Sus4:
		return changed(chord.New(c.Root, chord.Major))
	case c.Quality.IsDominant():
		return changed(chord.New(c.Root+5, chord.Major))
	case c.Quality == chord.Dim7:
		return changed(chord.New(c.Root+1, chord.Minor))
	}
	return unchanged(c)
}

// ResolveChain resolves repeatedly until the chord is stable, returning every step after
// the input. A dominant seventh suspension, for example, yields only its resolution.
func ResolveChain(c chord.Chord) []chord.Chord {
	var out []chord.Chord
	for range 4 {
		r := Resolve(c)
		if !r.Changed {
			break
		}
		out = append(out, r.Chord)
		c = r.Chord
	}
	return out
}
