package chord

import (
	"slices"

	"github.com/Conceptual-Machines/magda-harmony/internal/mathx"
)

const defaultMinNotes = 3

// RecognizerConfig configures chord recognition
type RecognizerConfig struct {
	// MinNotes is the minimum number of distinct pitch classes (>= 2)
	MinNotes int
}

// DefaultRecognizerConfig returns the default recognition settings
func DefaultRecognizerConfig() RecognizerConfig {
	return RecognizerConfig{MinNotes: defaultMinNotes}
}

type template struct {
	quality     Quality
	pcs         []int // sorted intervals mod 12
	extensions  []int
	alterations []string
}

func newTemplate(q Quality, exts []int, alts []string, intervals ...int) template {
	pcs := make([]int, 0, len(intervals))
	for _, iv := range intervals {
		pcs = append(pcs, iv%12)
	}
	slices.Sort(pcs)
	return template{quality: q, pcs: pcs, extensions: exts, alterations: alts}
}

// templates is searched in order; the first exact match wins
var templates = []template{
	// Triads
	newTemplate(Major, nil, nil, 0, 4, 7),
	newTemplate(Minor, nil, nil, 0, 3, 7),
	newTemplate(Diminished, nil, nil, 0, 3, 6),
	newTemplate(Augmented, nil, nil, 0, 4, 8),
	// Sevenths and sixths
	newTemplate(Dom7, nil, nil, 0, 4, 7, 10),
	newTemplate(Maj7, nil, nil, 0, 4, 7, 11),
	newTemplate(Min7, nil, nil, 0, 3, 7, 10),
	newTemplate(Dim7, nil, nil, 0, 3, 6, 9),
	newTemplate(HalfDim7, nil, nil, 0, 3, 6, 10),
	newTemplate(MinMaj7, nil, nil, 0, 3, 7, 11),
	newTemplate(Aug7, nil, nil, 0, 4, 8, 10),
	newTemplate(Sixth, nil, nil, 0, 4, 7, 9),
	newTemplate(MinSixth, nil, nil, 0, 3, 7, 9),
	// Extended
	newTemplate(Add9, []int{9}, nil, 0, 2, 4, 7),
	newTemplate(Dom9, []int{9}, nil, 0, 2, 4, 7, 10),
	newTemplate(Maj9, []int{9}, nil, 0, 2, 4, 7, 11),
	newTemplate(Min9, []int{9}, nil, 0, 2, 3, 7, 10),
	newTemplate(Dom7, nil, []string{"b9"}, 0, 1, 4, 7, 10),
	newTemplate(Dom7, nil, []string{"#9"}, 0, 3, 4, 7, 10),
	newTemplate(Dom11, []int{9, 11}, nil, 0, 2, 4, 5, 7, 10),
	newTemplate(Dom13, []int{9, 13}, nil, 0, 2, 4, 7, 9, 10),
	// Suspended and power
	newTemplate(Sus2, nil, nil, 0, 2, 7),
	newTemplate(Sus4, nil, nil, 0, 5, 7),
	newTemplate(Dom7Sus4, nil, nil, 0, 5, 7, 10),
	newTemplate(Power, nil, nil, 0, 7),
}

// Recognizer classifies note sets into chords
type Recognizer struct {
	config RecognizerConfig
}

// NewRecognizer creates a recognizer; MinNotes below 2 is raised to 2
func NewRecognizer(config RecognizerConfig) *Recognizer {
	if config.MinNotes == 0 {
		config.MinNotes = defaultMinNotes
	}
	config.MinNotes = max(config.MinNotes, 2)
	return &Recognizer{config: config}
}

// Recognize classifies notes (any order, duplicates allowed). The second return value is
// false when fewer than MinNotes distinct pitch classes sound or no template matches.
//
// Candidate roots are tried starting at the lowest sounding pitch class and ascending, so
// an inversion resolves to its root-position reading with the sounding bass recorded.
func (r *Recognizer) Recognize(notes []int) (Chord, bool) {
	if len(notes) == 0 {
		return Chord{}, false
	}
	pcs := pitchClassSet(notes)
	if len(pcs) < r.config.MinNotes {
		return Chord{}, false
	}

	lowest := slices.Min(notes)
	bassPC := mathx.Mod(lowest, 12)

	start := slices.Index(pcs, bassPC)
	for i := range pcs {
		root := pcs[(start+i)%len(pcs)]
		rel := make([]int, len(pcs))
		for j, pc := range pcs {
			rel[j] = mathx.Mod(pc-root, 12)
		}
		slices.Sort(rel)
		for _, tmpl := range templates {
			if !slices.Equal(rel, tmpl.pcs) {
				continue
			}
			c := Chord{
				Root:        root,
				Quality:     tmpl.quality,
				Bass:        NoPitch,
				Extensions:  slices.Clone(tmpl.extensions),
				Alterations: slices.Clone(tmpl.alterations),
				Notes:       sortedCopy(notes),
			}
			if bassPC != root {
				c.Bass = bassPC
			}
			return c, true
		}
	}
	return Chord{}, false
}

// Recognize classifies notes with the default configuration
func Recognize(notes []int) (Chord, bool) {
	return NewRecognizer(DefaultRecognizerConfig()).Recognize(notes)
}

func pitchClassSet(notes []int) []int {
	var pcs []int
	for _, n := range notes {
		pc := mathx.Mod(n, 12)
		if !slices.Contains(pcs, pc) {
			pcs = append(pcs, pc)
		}
	}
	slices.Sort(pcs)
	return pcs
}

func sortedCopy(notes []int) []int {
	out := slices.Clone(notes)
	slices.Sort(out)
	return out
}
