package accompaniment

import (
	"slices"

	"github.com/Conceptual-Machines/magda-harmony/internal/catalog"
	"github.com/Conceptual-Machines/magda-harmony/internal/harmony/chord"
	"github.com/Conceptual-Machines/magda-harmony/internal/harmony/voicing"
	"github.com/Conceptual-Machines/magda-harmony/internal/mathx"
	"github.com/Conceptual-Machines/magda-harmony/internal/models"
)

const (
	defaultVelocity = 90
	minEnergy       = 1
	maxEnergy       = 5
)

// chordRhythms and bassRhythms pick a template per energy level (index 0 = energy 1)
var (
	chordRhythms = [maxEnergy]string{"whole", "half", "quarters", "syncopated", "8ths"}
	bassRhythms  = [maxEnergy]string{"whole", "half", "quarters", "8ths", "8ths"}
	jazzComping  = [maxEnergy]string{"whole", "charleston", "charleston", "syncopated", "syncopated"}
	arpSteps     = [maxEnergy]int{models.PPQ, models.PPQ, models.PPQ / 2, models.PPQ / 2, models.PPQ / 4}
)

// TextureRequest describes one rendering pass of the pitched accompaniment voices
type TextureRequest struct {
	Chord chord.Chord
	// Voicing, when set, supplies the bass and upper-structure pitches so successive
	// chords stay voice-led
	Voicing   *voicing.FourPart
	Style     catalog.Style
	Variation int
	Energy    int
	StartTick int
	Bars      int
}

// GenerateTexture renders every non-drum voice of the style over the requested bars
func GenerateTexture(req TextureRequest) []models.NoteEvent {
	energy := mathx.Clamp(req.Energy, minEnergy, maxEnergy)
	bars := max(req.Bars, 1)
	swing := 0.0
	if v, ok := req.Style.Variation(req.Variation); ok {
		swing = v.Swing
	}

	var out []models.NoteEvent
	for _, voice := range req.Style.Voices {
		var events []models.NoteEvent
		switch voice.Type {
		case models.VoiceBass:
			events = bassLine(req, voice, energy)
		case models.VoiceChord:
			events = comping(req, voice, energy)
		case models.VoicePad:
			events = pad(req, voice, energy)
		case models.VoiceArp:
			events = arpeggio(req, voice, energy)
		default:
			continue
		}
		for bar := range bars {
			for _, e := range events {
				e.StartTick += req.StartTick + bar*models.TicksPerBar
				e.StartTick += swingDelay(e.StartTick-req.StartTick, swing)
				out = append(out, e)
			}
		}
	}
	slices.SortStableFunc(out, func(a, b models.NoteEvent) int {
		return a.StartTick - b.StartTick
	})
	return out
}

func velocityFor(voice catalog.Voice, energy int, accent float64) int {
	base := voice.Velocity
	if base == 0 {
		base = defaultVelocity
	}
	scale := 0.6 + 0.1*float64(energy)
	return mathx.Clamp(int(float64(base)*scale*accent), 1, 127)
}

func voiceRange(voice catalog.Voice) voicing.Range {
	r := voicing.Range{Low: voice.Low, High: voice.High}
	if r.Low == 0 && r.High == 0 {
		r = voicing.Range{Low: 36, High: 84}
	}
	return r
}

// placeInRange returns the pitch of class pc nearest target inside r
func placeInRange(pc int, r voicing.Range, target int) int {
	best := -1
	for n := r.Low; n <= r.High; n++ {
		if mathx.Mod(n, 12) != mathx.Mod(pc, 12) {
			continue
		}
		if best < 0 || mathx.Abs(n-target) < mathx.Abs(best-target) {
			best = n
		}
	}
	if best < 0 {
		return mathx.Clamp(target, r.Low, r.High)
	}
	return best
}

// fitToRange moves each note by octaves into r and drops duplicates
func fitToRange(notes []int, r voicing.Range) []int {
	var out []int
	for _, n := range notes {
		for n < r.Low && n+12 <= 127 {
			n += 12
		}
		for n > r.High && n-12 >= 0 {
			n -= 12
		}
		if r.Contains(n) && !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return out
}

func upperStructure(req TextureRequest, r voicing.Range) []int {
	if req.Voicing != nil {
		v := req.Voicing
		return fitToRange([]int{v.Tenor, v.Alto, v.Soprano}, r)
	}
	return fitToRange(chord.Voicing(req.Chord, 4), r)
}

func bassLine(req TextureRequest, voice catalog.Voice, energy int) []models.NoteEvent {
	r := voiceRange(voice)
	target := r.Low + 7
	if req.Voicing != nil {
		target = req.Voicing.Bass
	}
	root := placeInRange(req.Chord.BassPitchClass(), r, target)
	fifth := placeInRange(req.Chord.BassPitchClass()+7, r, root+7)

	tmpl := rhythmFor(voice, energy, bassRhythms[energy-1])
	var out []models.NoteEvent
	for i, h := range tmpl.hits() {
		note := root
		switch {
		case energy == 3 && i%2 == 1:
			note = fifth
		case energy == maxEnergy && i%2 == 1 && root+12 <= r.High:
			note = root + 12
		}
		out = append(out, models.NoteEvent{
			VoiceID:   voice.ID,
			VoiceType: voice.Type,
			StartTick: h.tick,
			Note:      note,
			Duration:  h.duration,
			Velocity:  velocityFor(voice, energy, h.accent),
			Channel:   voice.Channel,
		})
	}
	return out
}

// rhythmFor returns the voice's own rhythm from energy 3 up, and the energy table's
// template otherwise. Unknown rhythm names fall back to the table.
func rhythmFor(voice catalog.Voice, energy int, fallback string) RhythmTemplate {
	if voice.Rhythm != "" && energy >= 3 {
		if tmpl, ok := GetRhythmTemplate(voice.Rhythm); ok {
			return tmpl
		}
	}
	return rhythmTemplates[fallback]
}

func comping(req TextureRequest, voice catalog.Voice, energy int) []models.NoteEvent {
	notes := upperStructure(req, voiceRange(voice))
	name := chordRhythms[energy-1]
	if req.Style.Category == "jazz" {
		name = jazzComping[energy-1]
	}
	tmpl := rhythmFor(voice, energy, name)

	var out []models.NoteEvent
	for _, h := range tmpl.hits() {
		for _, n := range notes {
			out = append(out, models.NoteEvent{
				VoiceID:   voice.ID,
				VoiceType: voice.Type,
				StartTick: h.tick,
				Note:      n,
				Duration:  h.duration,
				Velocity:  velocityFor(voice, energy, h.accent),
				Channel:   voice.Channel,
			})
		}
	}
	return out
}

func pad(req TextureRequest, voice catalog.Voice, energy int) []models.NoteEvent {
	notes := upperStructure(req, voiceRange(voice))
	var out []models.NoteEvent
	for _, n := range notes {
		out = append(out, models.NoteEvent{
			VoiceID:   voice.ID,
			VoiceType: voice.Type,
			StartTick: 0,
			Note:      n,
			Duration:  models.TicksPerBar,
			Velocity:  velocityFor(voice, energy, 0.8),
			Channel:   voice.Channel,
		})
	}
	return out
}

func arpeggio(req TextureRequest, voice catalog.Voice, energy int) []models.NoteEvent {
	r := voiceRange(voice)
	tones := fitToRange(chord.Voicing(req.Chord, 4), r)
	if len(tones) == 0 {
		return nil
	}
	// climb an extra octave at higher energy when it fits
	if energy >= 4 {
		for _, n := range slices.Clone(tones) {
			if n+12 <= r.High && !slices.Contains(tones, n+12) {
				tones = append(tones, n+12)
			}
		}
		slices.Sort(tones)
	}

	step := arpSteps[energy-1]
	var out []models.NoteEvent
	for i, tick := 0, 0; tick < models.TicksPerBar; i, tick = i+1, tick+step {
		accent := 0.8
		if tick%models.PPQ == 0 {
			accent = 1.0
		}
		out = append(out, models.NoteEvent{
			VoiceID:   voice.ID,
			VoiceType: voice.Type,
			StartTick: tick,
			Note:      tones[i%len(tones)],
			Duration:  int(float64(step) * articulationMidHigh),
			Velocity:  velocityFor(voice, energy, accent),
			Channel:   voice.Channel,
		})
	}
	return out
}
