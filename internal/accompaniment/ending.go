package accompaniment

import (
	"github.com/Conceptual-Machines/magda-harmony/internal/catalog"
	"github.com/Conceptual-Machines/magda-harmony/internal/harmony/chord"
	"github.com/Conceptual-Machines/magda-harmony/internal/harmony/transform"
	"github.com/Conceptual-Machines/magda-harmony/internal/models"
)

// EndingType selects how the arrangement finishes
type EndingType string

const (
	Fermata    EndingType = "fermata"
	Ritardando EndingType = "ritardando"
	Cadence    EndingType = "cadence"
	Stinger    EndingType = "stinger"
)

// ritardandoBeats are the chord hits of a ritardando, spreading further apart
var ritardandoBeats = []float64{0, 1.25, 2.75, 4.75}

// EndingRequest describes the final phrase
type EndingRequest struct {
	Type      EndingType
	Chord     chord.Chord
	Style     catalog.Style
	Energy    int
	StartTick int
}

// Ending holds the pitched and drum events of an ending
type Ending struct {
	Notes []models.NoteEvent `json:"notes"`
	Drums []models.DrumEvent `json:"drums"`
	// LengthTicks is the total span from StartTick to the last release
	LengthTicks int `json:"lengthTicks"`
}

type chordHit struct {
	chord    chord.Chord
	tick     int
	duration int
	accent   float64
}

// GenerateEnding renders the ending. A cadence plays the dominant of the final chord for a
// bar before landing on it.
func GenerateEnding(req EndingRequest) Ending {
	var hits []chordHit
	var drums []models.DrumEvent

	switch req.Type {
	case Cadence:
		dominant := transform.Substitute(req.Chord, transform.Secondary).Chord
		hits = []chordHit{
			{chord: dominant, tick: 0, duration: models.TicksPerBar, accent: 0.9},
			{chord: req.Chord, tick: models.TicksPerBar, duration: 2 * models.TicksPerBar, accent: 1.0},
		}
		drums = append(drums, GenerateFill(FillRequest{
			Type:      SnareRoll,
			Energy:    max(req.Energy, 3),
			StartTick: req.StartTick + 3*models.PPQ,
			Beats:     1,
		})...)
	case Ritardando:
		for i, beat := range ritardandoBeats {
			duration := models.PPQ
			if i == len(ritardandoBeats)-1 {
				duration = 2*models.TicksPerBar - beatsToTicks(beat)
			}
			hits = append(hits, chordHit{chord: req.Chord, tick: beatsToTicks(beat), duration: duration, accent: 1.0 - 0.05*float64(i)})
		}
		drums = append(drums, crash(req.StartTick+beatsToTicks(ritardandoBeats[len(ritardandoBeats)-1])))
	case Stinger:
		hits = []chordHit{{chord: req.Chord, tick: 0, duration: models.PPQ / 2, accent: 1.0}}
		drums = append(drums, crash(req.StartTick), kick(req.StartTick))
	default:
		hits = []chordHit{{chord: req.Chord, tick: 0, duration: 2 * models.TicksPerBar, accent: 1.0}}
		drums = append(drums, crash(req.StartTick), kick(req.StartTick))
	}

	energy := max(req.Energy, minEnergy)
	var notes []models.NoteEvent
	end := 0
	for _, h := range hits {
		for _, voice := range req.Style.Voices {
			var pitches []int
			switch voice.Type {
			case models.VoiceBass:
				r := voiceRange(voice)
				pitches = []int{placeInRange(h.chord.BassPitchClass(), r, r.Low+7)}
			case models.VoiceChord, models.VoicePad, models.VoiceArp:
				pitches = fitToRange(chord.Voicing(h.chord, 4), voiceRange(voice))
			default:
				continue
			}
			for _, p := range pitches {
				notes = append(notes, models.NoteEvent{
					VoiceID:   voice.ID,
					VoiceType: voice.Type,
					StartTick: req.StartTick + h.tick,
					Note:      p,
					Duration:  h.duration,
					Velocity:  velocityFor(voice, min(energy, maxEnergy), h.accent),
					Channel:   voice.Channel,
				})
			}
		}
		end = max(end, h.tick+h.duration)
	}
	sortDrums(drums)
	return Ending{Notes: notes, Drums: drums, LengthTicks: end}
}

func crash(tick int) models.DrumEvent {
	return models.DrumEvent{VoiceID: drumVoiceID, Instrument: "crash", StartTick: tick, Note: noteCrash, Duration: models.TicksPerBar, Velocity: accentVelocity}
}

func kick(tick int) models.DrumEvent {
	return models.DrumEvent{VoiceID: drumVoiceID, Instrument: "kick", StartTick: tick, Note: noteKick, Duration: models.PPQ, Velocity: accentVelocity}
}
