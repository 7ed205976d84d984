package chord

import (
	"slices"
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/magda-harmony/internal/mathx"
)

// NoPitch marks an absent pitch class (no slash bass)
const NoPitch = -1

// Quality is the harmonic quality of a chord
type Quality string

const (
	Major        Quality = "major"
	Minor        Quality = "minor"
	Diminished   Quality = "dim"
	Augmented    Quality = "aug"
	Dom7         Quality = "dom7"
	Maj7         Quality = "maj7"
	Min7         Quality = "min7"
	Dim7         Quality = "dim7"
	HalfDim7     Quality = "m7b5"
	MinMaj7      Quality = "minmaj7"
	Aug7         Quality = "aug7"
	Sixth        Quality = "6"
	MinSixth     Quality = "m6"
	Sus2         Quality = "sus2"
	Sus4         Quality = "sus4"
	Dom7Sus4     Quality = "7sus4"
	Power        Quality = "power"
	Add9         Quality = "add9"
	Dom9         Quality = "9"
	Maj9         Quality = "maj9"
	Min9         Quality = "m9"
	Dom11        Quality = "11"
	Dom13        Quality = "13"
	UnknownChord Quality = "unknown"
)

type qualityInfo struct {
	intervals []int
	suffix    string
	implied   []int // extension degrees already spelled by the suffix
}

var qualities = map[Quality]qualityInfo{
	Major:      {intervals: []int{0, 4, 7}, suffix: ""},
	Minor:      {intervals: []int{0, 3, 7}, suffix: "m"},
	Diminished: {intervals: []int{0, 3, 6}, suffix: "dim"},
	Augmented:  {intervals: []int{0, 4, 8}, suffix: "aug"},
	Dom7:       {intervals: []int{0, 4, 7, 10}, suffix: "7"},
	Maj7:       {intervals: []int{0, 4, 7, 11}, suffix: "maj7"},
	Min7:       {intervals: []int{0, 3, 7, 10}, suffix: "m7"},
	Dim7:       {intervals: []int{0, 3, 6, 9}, suffix: "dim7"},
	HalfDim7:   {intervals: []int{0, 3, 6, 10}, suffix: "m7b5"},
	MinMaj7:    {intervals: []int{0, 3, 7, 11}, suffix: "mMaj7"},
	Aug7:       {intervals: []int{0, 4, 8, 10}, suffix: "7#5"},
	Sixth:      {intervals: []int{0, 4, 7, 9}, suffix: "6"},
	MinSixth:   {intervals: []int{0, 3, 7, 9}, suffix: "m6"},
	Sus2:       {intervals: []int{0, 2, 7}, suffix: "sus2"},
	Sus4:       {intervals: []int{0, 5, 7}, suffix: "sus4"},
	Dom7Sus4:   {intervals: []int{0, 5, 7, 10}, suffix: "7sus4"},
	Power:      {intervals: []int{0, 7}, suffix: "5"},
	Add9:       {intervals: []int{0, 2, 4, 7}, suffix: "add9", implied: []int{9}},
	Dom9:       {intervals: []int{0, 2, 4, 7, 10}, suffix: "9", implied: []int{9}},
	Maj9:       {intervals: []int{0, 2, 4, 7, 11}, suffix: "maj9", implied: []int{9}},
	Min9:       {intervals: []int{0, 2, 3, 7, 10}, suffix: "m9", implied: []int{9}},
	Dom11:      {intervals: []int{0, 2, 4, 5, 7, 10}, suffix: "11", implied: []int{9, 11}},
	Dom13:      {intervals: []int{0, 2, 4, 7, 9, 10}, suffix: "13", implied: []int{9, 13}},
}

// Intervals returns the semitone offsets from the root that define q
func (q Quality) Intervals() []int {
	return slices.Clone(qualities[q].intervals)
}

// Suffix returns the symbol suffix for q ("m", "maj7", ...)
func (q Quality) Suffix() string {
	return qualities[q].suffix
}

// ImpliedExtensions returns the extension degrees the quality name already carries
func (q Quality) ImpliedExtensions() []int {
	return slices.Clone(qualities[q].implied)
}

// IsDominant reports whether q contains a major third and a minor seventh
func (q Quality) IsDominant() bool {
	switch q {
	case Dom7, Dom9, Dom11, Dom13, Aug7, Dom7Sus4:
		return true
	}
	return false
}

// IsMinor reports whether q is built on a minor third (diminished qualities excluded)
func (q Quality) IsMinor() bool {
	switch q {
	case Minor, Min7, MinMaj7, MinSixth, Min9:
		return true
	}
	return false
}

// IsMajor reports whether q is built on a major triad without a minor seventh
func (q Quality) IsMajor() bool {
	switch q {
	case Major, Maj7, Sixth, Add9, Maj9:
		return true
	}
	return false
}

// Chord is an immutable chord value. Mutators return copies.
type Chord struct {
	Root        int      `json:"root" yaml:"root"`
	Quality     Quality  `json:"quality" yaml:"quality"`
	Bass        int      `json:"bass" yaml:"bass"`
	Extensions  []int    `json:"extensions,omitempty" yaml:"extensions,omitempty"`
	Alterations []string `json:"alterations,omitempty" yaml:"alterations,omitempty"`
	Notes       []int    `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// New builds a root-position chord with no extensions
func New(root int, quality Quality) Chord {
	return Chord{Root: mathx.Mod(root, 12), Quality: quality, Bass: NoPitch}
}

// Clone returns a deep copy of c
func (c Chord) Clone() Chord {
	c.Extensions = slices.Clone(c.Extensions)
	c.Alterations = slices.Clone(c.Alterations)
	c.Notes = slices.Clone(c.Notes)
	return c
}

// HasBass reports whether the chord carries a slash bass different from its root
func (c Chord) HasBass() bool {
	return c.Bass != NoPitch && c.Bass != c.Root
}

// BassPitchClass returns the sounding bass pitch class (slash bass or root)
func (c Chord) BassPitchClass() int {
	if c.HasBass() {
		return c.Bass
	}
	return c.Root
}

// WithRoot returns a copy transposed to root; a slash bass keeps its interval to the root
func (c Chord) WithRoot(root int) Chord {
	out := c.Clone()
	shift := root - c.Root
	out.Root = mathx.Mod(root, 12)
	if c.Bass != NoPitch {
		out.Bass = mathx.Mod(c.Bass+shift, 12)
	}
	out.Notes = nil
	return out
}

// WithQuality returns a copy with quality q
func (c Chord) WithQuality(q Quality) Chord {
	out := c.Clone()
	out.Quality = q
	out.Notes = nil
	return out
}

// WithBass returns a copy with the given slash bass; NoPitch or the root clears it
func (c Chord) WithBass(pc int) Chord {
	out := c.Clone()
	if pc == NoPitch {
		out.Bass = NoPitch
		return out
	}
	pc = mathx.Mod(pc, 12)
	if pc == c.Root {
		out.Bass = NoPitch
	} else {
		out.Bass = pc
	}
	return out
}

// WithExtensions returns a copy whose extensions are exts, deduplicated and ascending
func (c Chord) WithExtensions(exts ...int) Chord {
	out := c.Clone()
	out.Extensions = normalizeExtensions(exts)
	return out
}

// WithAlterations returns a copy whose alterations are alts, deduplicated and sorted
func (c Chord) WithAlterations(alts ...string) Chord {
	out := c.Clone()
	out.Alterations = normalizeAlterations(alts)
	return out
}

// Triad returns the bare triad quality the chord is built on
func (c Chord) Triad() Quality {
	switch c.Quality {
	case Major, Maj7, Dom7, Sixth, Add9, Dom9, Maj9, Dom11, Dom13:
		return Major
	case Minor, Min7, MinMaj7, MinSixth, Min9:
		return Minor
	case Diminished, Dim7, HalfDim7:
		return Diminished
	case Augmented, Aug7:
		return Augmented
	case Sus2:
		return Sus2
	case Sus4, Dom7Sus4:
		return Sus4
	}
	return c.Quality
}

// PitchClasses returns the sorted pitch-class content of the chord including extensions
// and alterations, relative to nothing (absolute pitch classes).
func (c Chord) PitchClasses() []int {
	set := map[int]bool{}
	for _, iv := range qualities[c.Quality].intervals {
		set[mathx.Mod(c.Root+iv, 12)] = true
	}
	for _, ext := range c.Extensions {
		if off, ok := extensionOffsets[ext]; ok {
			set[mathx.Mod(c.Root+off, 12)] = true
		}
	}
	for _, alt := range c.Alterations {
		if off, ok := alterationOffsets[alt]; ok {
			set[mathx.Mod(c.Root+off, 12)] = true
		}
	}
	if c.Bass != NoPitch {
		set[c.Bass] = true
	}
	out := make([]int, 0, len(set))
	for pc := range set {
		out = append(out, pc)
	}
	slices.Sort(out)
	return out
}

// Intervals returns the ordered interval list from the root: quality intervals followed by
// extension and alteration offsets not already present.
func (c Chord) Intervals() []int {
	out := c.Quality.Intervals()
	seen := map[int]bool{}
	for _, iv := range out {
		seen[iv%12] = true
	}
	add := func(off int) {
		if !seen[off%12] {
			seen[off%12] = true
			out = append(out, off)
		}
	}
	for _, ext := range c.Extensions {
		if off, ok := extensionOffsets[ext]; ok {
			add(off)
		}
	}
	for _, alt := range c.Alterations {
		if off, ok := alterationOffsets[alt]; ok {
			add(off)
		}
	}
	return out
}

// Symbol renders the chord name, e.g. "C", "Am7", "G7b9", "C/E"
func (c Chord) Symbol() string {
	var b strings.Builder
	b.WriteString(PitchName(c.Root))
	b.WriteString(c.suffix())
	for _, alt := range c.Alterations {
		b.WriteString(alt)
	}
	if c.HasBass() {
		b.WriteString("/")
		b.WriteString(PitchName(c.Bass))
	}
	return b.String()
}

func (c Chord) String() string {
	return c.Symbol()
}

// suffix folds extensions not implied by the quality into the quality suffix
func (c Chord) suffix() string {
	suffix := c.Quality.Suffix()
	implied := c.Quality.ImpliedExtensions()
	var extra []int
	for _, ext := range c.Extensions {
		if !slices.Contains(implied, ext) {
			extra = append(extra, ext)
		}
	}
	if len(extra) == 0 {
		return suffix
	}
	highest := extra[len(extra)-1]
	switch c.Quality {
	case Dom7, Dom9, Dom11, Dom13:
		if highest > impliedMax(implied) {
			return strconv.Itoa(highest)
		}
	case Maj7, Maj9:
		if highest > impliedMax(implied) {
			return "maj" + strconv.Itoa(highest)
		}
	case Min7, Min9:
		if highest > impliedMax(implied) {
			return "m" + strconv.Itoa(highest)
		}
	}
	for _, ext := range extra {
		suffix += "add" + strconv.Itoa(ext)
	}
	return suffix
}

func impliedMax(implied []int) int {
	if len(implied) == 0 {
		return 0
	}
	return slices.Max(implied)
}

// Equal reports value equality between two chords
func (c Chord) Equal(o Chord) bool {
	return c.Root == o.Root &&
		c.Quality == o.Quality &&
		c.Bass == o.Bass &&
		slices.Equal(c.Extensions, o.Extensions) &&
		slices.Equal(c.Alterations, o.Alterations) &&
		slices.Equal(c.Notes, o.Notes)
}

var extensionOffsets = map[int]int{9: 14, 11: 17, 13: 21}

var alterationOffsets = map[string]int{
	"b5":  6,
	"#5":  8,
	"b9":  13,
	"#9":  15,
	"#11": 18,
	"b13": 20,
}

// alterationOrder is the rendering order for alterations
var alterationOrder = []string{"b5", "#5", "b9", "#9", "#11", "b13"}

func normalizeExtensions(exts []int) []int {
	var out []int
	for _, ext := range exts {
		if _, ok := extensionOffsets[ext]; ok && !slices.Contains(out, ext) {
			out = append(out, ext)
		}
	}
	slices.Sort(out)
	return out
}

func normalizeAlterations(alts []string) []string {
	var out []string
	for _, alt := range alterationOrder {
		if slices.Contains(alts, alt) {
			out = append(out, alt)
		}
	}
	return out
}

var pitchNames = [12]string{"C", "C#", "D", "Eb", "E", "F", "F#", "G", "Ab", "A", "Bb", "B"}

// PitchName returns the display name of a pitch class
func PitchName(pc int) string {
	return pitchNames[mathx.Mod(pc, 12)]
}

// NoteName returns a MIDI note's name with octave, C4 = 60
func NoteName(note int) string {
	return PitchName(note) + strconv.Itoa(note/12-1)
}
