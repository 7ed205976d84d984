package voicing

import (
	"cmp"
	"slices"

	"github.com/Conceptual-Machines/magda-harmony/internal/harmony/chord"
	"github.com/Conceptual-Machines/magda-harmony/internal/mathx"
)

const defaultMaxMovement = 7

// searchWindow bounds candidate search around the previous pitch (two octaves each way)
const searchWindow = 24

// Voice identifies one of the four parts
type Voice int

const (
	Bass Voice = iota
	Tenor
	Alto
	Soprano
)

var voiceNames = [...]string{"bass", "tenor", "alto", "soprano"}

func (v Voice) String() string {
	return voiceNames[v]
}

// Range is an inclusive MIDI note range
type Range struct {
	Low  int `json:"low" yaml:"low"`
	High int `json:"high" yaml:"high"`
}

// Contains reports whether note lies within r
func (r Range) Contains(note int) bool {
	return note >= r.Low && note <= r.High
}

// Middle returns the centre of r
func (r Range) Middle() int {
	return (r.Low + r.High) / 2
}

// FourPart is an immutable SATB voicing; Soprano >= Alto >= Tenor >= Bass
type FourPart struct {
	Soprano int `json:"soprano"`
	Alto    int `json:"alto"`
	Tenor   int `json:"tenor"`
	Bass    int `json:"bass"`
}

// Get returns the pitch of voice v
func (f FourPart) Get(v Voice) int {
	switch v {
	case Bass:
		return f.Bass
	case Tenor:
		return f.Tenor
	case Alto:
		return f.Alto
	default:
		return f.Soprano
	}
}

func (f FourPart) with(v Voice, note int) FourPart {
	switch v {
	case Bass:
		f.Bass = note
	case Tenor:
		f.Tenor = note
	case Alto:
		f.Alto = note
	default:
		f.Soprano = note
	}
	return f
}

// Notes returns the voicing bottom-up
func (f FourPart) Notes() []int {
	return []int{f.Bass, f.Tenor, f.Alto, f.Soprano}
}

// Ordered reports whether the voices do not cross
func (f FourPart) Ordered() bool {
	return f.Soprano >= f.Alto && f.Alto >= f.Tenor && f.Tenor >= f.Bass
}

// TotalMovement sums the absolute movement of every voice from prev
func (f FourPart) TotalMovement(prev FourPart) int {
	total := 0
	for _, v := range []Voice{Bass, Tenor, Alto, Soprano} {
		total += mathx.Abs(f.Get(v) - prev.Get(v))
	}
	return total
}

// Config controls voice ranges and preferences
type Config struct {
	Ranges map[Voice]Range
	// MaxMovement is preferred, not enforced: a voice moves further when nothing closer fits
	MaxMovement       int
	PreferCommonTones bool
	AvoidParallels    bool
}

// DefaultConfig returns conventional SATB ranges
func DefaultConfig() Config {
	return Config{
		Ranges: map[Voice]Range{
			Bass:    {Low: 40, High: 60},
			Tenor:   {Low: 48, High: 67},
			Alto:    {Low: 55, High: 74},
			Soprano: {Low: 60, High: 81},
		},
		MaxMovement:       defaultMaxMovement,
		PreferCommonTones: true,
		AvoidParallels:    true,
	}
}

func (c Config) rangeOf(v Voice) Range {
	if r, ok := c.Ranges[v]; ok {
		return r
	}
	return DefaultConfig().Ranges[v]
}

// ChordTones returns the chord's ascending tone offsets, walking the interval list from the
// root and lifting each tone by octaves until it is not below the previous one.
// A minor gives {9, 12, 16}.
func ChordTones(c chord.Chord) []int {
	tones := make([]int, 0, 6)
	prev := -1
	for _, iv := range c.Intervals() {
		tone := c.Root + mathx.Mod(iv, 12)
		for tone < prev {
			tone += 12
		}
		tones = append(tones, tone)
		prev = tone
	}
	return tones
}

// Apply assigns c to four voices. With no previous voicing each voice takes the chord tone
// nearest the middle of its range; otherwise each voice (bass first) takes the candidate
// that moves least, ties broken by common tones, contrary motion against the bass, then
// avoidance of parallel fifths and octaves.
func Apply(previous *FourPart, c chord.Chord, config Config) FourPart {
	if previous == nil {
		return initial(c, config)
	}
	return lead(*previous, c, config)
}

func initial(c chord.Chord, config Config) FourPart {
	var out FourPart
	floor := 0
	for _, v := range []Voice{Bass, Tenor, Alto, Soprano} {
		r := config.rangeOf(v)
		pcs := voicePitchClasses(v, c)
		cands := candidatesIn(pcs, r, max(r.Low, floor), r.High)
		note := max(r.Low, floor)
		if len(cands) > 0 {
			mid := r.Middle()
			note = slices.MinFunc(cands, func(a, b int) int {
				return cmp.Or(
					cmp.Compare(mathx.Abs(a-mid), mathx.Abs(b-mid)),
					cmp.Compare(a, b),
				)
			})
		}
		out = out.with(v, note)
		floor = note
	}
	return out
}

func lead(prev FourPart, c chord.Chord, config Config) FourPart {
	var out FourPart
	floor := 0
	prevPCs := map[int]bool{}
	for _, n := range prev.Notes() {
		prevPCs[mathx.Mod(n, 12)] = true
	}

	for _, v := range []Voice{Bass, Tenor, Alto, Soprano} {
		r := config.rangeOf(v)
		p := prev.Get(v)
		lo := max(r.Low, floor, p-searchWindow)
		hi := min(r.High, p+searchWindow)
		cands := candidatesIn(voicePitchClasses(v, c), r, lo, hi)
		if len(cands) == 0 {
			// Nothing fits above the voice below; double it
			note := mathx.Clamp(floor, r.Low, r.High)
			out = out.with(v, note)
			floor = note
			continue
		}

		if config.MaxMovement > 0 {
			near := slices.DeleteFunc(slices.Clone(cands), func(n int) bool {
				return mathx.Abs(n-p) > config.MaxMovement
			})
			if len(near) > 0 {
				cands = near
			}
		}

		bassMotion := 0
		if v != Bass {
			bassMotion = out.Bass - prev.Bass
		}
		note := slices.MinFunc(cands, func(a, b int) int {
			return cmp.Or(
				cmp.Compare(mathx.Abs(a-p), mathx.Abs(b-p)),
				compareBool(config.PreferCommonTones && !prevPCs[mathx.Mod(a, 12)], config.PreferCommonTones && !prevPCs[mathx.Mod(b, 12)]),
				compareBool(!contrary(a-p, bassMotion), !contrary(b-p, bassMotion)),
				compareBool(config.AvoidParallels && makesParallel(v, a, prev, out), config.AvoidParallels && makesParallel(v, b, prev, out)),
				cmp.Compare(a, b),
			)
		})
		out = out.with(v, note)
		floor = note
	}
	return out
}

// voicePitchClasses restricts the bass to the sounding bass pitch class
func voicePitchClasses(v Voice, c chord.Chord) []int {
	if v == Bass {
		return []int{c.BassPitchClass()}
	}
	pcs := make([]int, 0, 6)
	for _, t := range ChordTones(c) {
		pcs = append(pcs, mathx.Mod(t, 12))
	}
	return pcs
}

func candidatesIn(pcs []int, r Range, lo, hi int) []int {
	lo = max(lo, r.Low)
	hi = min(hi, r.High)
	var out []int
	for n := lo; n <= hi; n++ {
		if slices.Contains(pcs, mathx.Mod(n, 12)) {
			out = append(out, n)
		}
	}
	return out
}

func contrary(motion, bassMotion int) bool {
	if bassMotion == 0 || motion == 0 {
		return false
	}
	return (motion > 0) != (bassMotion > 0)
}

// makesParallel reports whether placing voice v on note moves in parallel perfect fifths
// or octaves with a voice already assigned in out
func makesParallel(v Voice, note int, prev, out FourPart) bool {
	motion := note - prev.Get(v)
	if motion == 0 {
		return false
	}
	for w := Bass; w < v; w++ {
		other := out.Get(w)
		otherMotion := other - prev.Get(w)
		if otherMotion == 0 || (otherMotion > 0) != (motion > 0) {
			continue
		}
		before := mathx.Mod(prev.Get(v)-prev.Get(w), 12)
		after := mathx.Mod(note-other, 12)
		if before == after && (after == 0 || after == 7) {
			return true
		}
	}
	return false
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
