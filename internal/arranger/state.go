package arranger

import (
	"maps"

	"github.com/Conceptual-Machines/magda-harmony/internal/harmony/chord"
	"github.com/Conceptual-Machines/magda-harmony/internal/mathx"
)

// Transport bounds
const (
	MinTempo     = 40
	MaxTempo     = 240
	DefaultTempo = 120
	MinEnergy    = 1
	MaxEnergy    = 5
)

// VoiceMix is the mute/solo state of one style voice
type VoiceMix struct {
	Muted  bool `json:"muted"`
	Soloed bool `json:"soloed"`
}

// State is the arranger transport and harmony state. Values are immutable: Reduce returns
// a new State and never modifies its input.
type State struct {
	IsPlaying      bool                `json:"isPlaying"`
	Tempo          int                 `json:"tempo"`
	PositionTicks  int                 `json:"positionTicks"`
	StyleID        string              `json:"styleId"`
	VariationIndex int                 `json:"variationIndex"`
	VariationCount int                 `json:"variationCount"`
	CurrentChord   *chord.Chord        `json:"currentChord,omitempty"`
	Energy         int                 `json:"energy"`
	SyncStart      bool                `json:"syncStart"`
	SyncStop       bool                `json:"syncStop"`
	ChordMemory    bool                `json:"chordMemory"`
	TempoLock      bool                `json:"tempoLock"`
	FillQueued     bool                `json:"fillQueued"`
	Voices         map[string]VoiceMix `json:"voices,omitempty"`
}

// New returns a stopped arranger with default tempo and medium energy
func New() State {
	return State{
		Tempo:  DefaultTempo,
		Energy: 3,
	}
}

// clone copies the reference fields so the result can be modified freely
func (s State) clone() State {
	if s.CurrentChord != nil {
		c := s.CurrentChord.Clone()
		s.CurrentChord = &c
	}
	s.Voices = maps.Clone(s.Voices)
	return s
}

// Chord returns the current chord, if any
func (s State) Chord() (chord.Chord, bool) {
	if s.CurrentChord == nil {
		return chord.Chord{}, false
	}
	return s.CurrentChord.Clone(), true
}

// Audible reports whether a voice sounds given the mute and solo flags. When any voice is
// soloed only soloed voices sound.
func (s State) Audible(voiceID string) bool {
	anySolo := false
	for _, m := range s.Voices {
		if m.Soloed {
			anySolo = true
			break
		}
	}
	m := s.Voices[voiceID]
	if anySolo {
		return m.Soloed
	}
	return !m.Muted
}

func clampTempo(bpm int) int {
	return mathx.Clamp(bpm, MinTempo, MaxTempo)
}

func clampEnergy(e int) int {
	return mathx.Clamp(e, MinEnergy, MaxEnergy)
}
