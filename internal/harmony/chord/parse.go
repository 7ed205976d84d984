package chord

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSymbol is returned when a chord symbol cannot be parsed
var ErrInvalidSymbol = errors.New("invalid chord symbol")

var rootOffsets = map[string]int{
	"C":  0,
	"C#": 1, "Db": 1,
	"D":  2,
	"D#": 3, "Eb": 3,
	"E":  4,
	"F":  5,
	"F#": 6, "Gb": 6,
	"G":  7,
	"G#": 8, "Ab": 8,
	"A":  9,
	"A#": 10, "Bb": 10,
	"B": 11,
}

// suffixes maps a written suffix to its quality, extensions and alterations.
// Longest suffixes are matched first.
var suffixes = []struct {
	text        string
	quality     Quality
	extensions  []int
	alterations []string
}{
	{"maj13", Maj7, []int{9, 13}, nil},
	{"maj11", Maj7, []int{9, 11}, nil},
	{"mMaj7", MinMaj7, nil, nil},
	{"7sus4", Dom7Sus4, nil, nil},
	{"maj9", Maj9, []int{9}, nil},
	{"maj7", Maj7, nil, nil},
	{"m7b5", HalfDim7, nil, nil},
	{"dim7", Dim7, nil, nil},
	{"add9", Add9, []int{9}, nil},
	{"sus2", Sus2, nil, nil},
	{"sus4", Sus4, nil, nil},
	{"min7", Min7, nil, nil},
	{"7#5", Aug7, nil, nil},
	{"7b9", Dom7, nil, []string{"b9"}},
	{"7#9", Dom7, nil, []string{"#9"}},
	{"m11", Min7, []int{9, 11}, nil},
	{"m13", Min7, []int{9, 13}, nil},
	{"dim", Diminished, nil, nil},
	{"aug", Augmented, nil, nil},
	{"min", Minor, nil, nil},
	{"sus", Sus4, nil, nil},
	{"m9", Min9, []int{9}, nil},
	{"m7", Min7, nil, nil},
	{"m6", MinSixth, nil, nil},
	{"11", Dom11, []int{9, 11}, nil},
	{"13", Dom13, []int{9, 13}, nil},
	{"9", Dom9, []int{9}, nil},
	{"7", Dom7, nil, nil},
	{"6", Sixth, nil, nil},
	{"5", Power, nil, nil},
	{"m", Minor, nil, nil},
	{"", Major, nil, nil},
}

// Parse converts a chord symbol such as "C", "Am7", "G7b9" or "Em/G" into a Chord
func Parse(symbol string) (Chord, error) {
	symbol = strings.TrimSpace(symbol)
	base := symbol
	bassName := ""
	if before, after, found := strings.Cut(symbol, "/"); found {
		base = strings.TrimSpace(before)
		bassName = strings.TrimSpace(after)
	}

	root, rest, err := splitRoot(base)
	if err != nil {
		return Chord{}, err
	}

	for _, s := range suffixes {
		if rest != s.text {
			continue
		}
		c := New(root, s.quality).WithExtensions(s.extensions...).WithAlterations(s.alterations...)
		if bassName != "" {
			bass, ok := rootOffsets[bassName]
			if !ok {
				return Chord{}, fmt.Errorf("%w: bad bass note %q", ErrInvalidSymbol, bassName)
			}
			c = c.WithBass(bass)
		}
		return c, nil
	}
	return Chord{}, fmt.Errorf("%w: unknown quality %q in %q", ErrInvalidSymbol, rest, symbol)
}

func splitRoot(symbol string) (int, string, error) {
	if symbol == "" {
		return 0, "", fmt.Errorf("%w: empty", ErrInvalidSymbol)
	}
	name := symbol[:1]
	if len(symbol) > 1 && (symbol[1] == '#' || symbol[1] == 'b') {
		name = symbol[:2]
	}
	root, ok := rootOffsets[name]
	if !ok {
		return 0, "", fmt.Errorf("%w: invalid root note %q", ErrInvalidSymbol, name)
	}
	return root, symbol[len(name):], nil
}

// Voicing returns close-position MIDI notes for c with the root in the given octave
// (C4 = 60). A slash bass is prepended one octave below.
func Voicing(c Chord, octave int) []int {
	rootMIDI := (octave+1)*12 + c.Root
	notes := make([]int, 0, len(c.Intervals())+1)
	for _, iv := range c.Intervals() {
		n := rootMIDI + iv
		if n < 0 || n > 127 {
			continue
		}
		notes = append(notes, n)
	}
	if c.HasBass() {
		bass := octave*12 + c.Bass
		if bass >= 0 && bass <= 127 {
			notes = append([]int{bass}, notes...)
		}
	}
	return notes
}
