package arranger

import (
	"github.com/Conceptual-Machines/magda-harmony/internal/catalog"
	"github.com/Conceptual-Machines/magda-harmony/internal/harmony/chord"
)

// Command is an arranger transition. Commands are plain values.
type Command interface {
	arrangerCommand()
}

type (
	// LoadStyle selects a style and adopts its default tempo unless the tempo is locked
	LoadStyle struct{ Style catalog.Style }

	// Play starts the transport
	Play struct{}

	// Stop halts the transport and rewinds to tick 0
	Stop struct{}

	// SetVariation selects a style variation, clamped to the loaded style
	SetVariation struct{ Index int }

	// SetChord recognizes the held notes as the current chord
	SetChord struct{ Notes []int }

	// ReleaseChord signals that every chord key was released
	ReleaseChord struct{}

	SetSyncStart struct{ Enabled bool }

	SetSyncStop struct{ Enabled bool }

	SetChordMemory struct{ Enabled bool }

	SetTempoLock struct{ Enabled bool }

	// SetEnergy sets the energy level, clamped to 1-5
	SetEnergy struct{ Level int }

	// SetTempo sets the tempo, clamped to 40-240 BPM
	SetTempo struct{ BPM int }

	MuteVoice struct {
		VoiceID string
		Muted   bool
	}

	SoloVoice struct {
		VoiceID string
		Soloed  bool
	}

	// TriggerFill queues a fill for the next render
	TriggerFill struct{}

	// ConsumeFill clears a queued fill once it has been rendered
	ConsumeFill struct{}

	// Advance moves the play position forward while playing
	Advance struct{ Ticks int }
)

func (LoadStyle) arrangerCommand()      {}
func (Play) arrangerCommand()           {}
func (Stop) arrangerCommand()           {}
func (SetVariation) arrangerCommand()   {}
func (SetChord) arrangerCommand()       {}
func (ReleaseChord) arrangerCommand()   {}
func (SetSyncStart) arrangerCommand()   {}
func (SetSyncStop) arrangerCommand()    {}
func (SetChordMemory) arrangerCommand() {}
func (SetTempoLock) arrangerCommand()   {}
func (SetEnergy) arrangerCommand()      {}
func (SetTempo) arrangerCommand()       {}
func (MuteVoice) arrangerCommand()      {}
func (SoloVoice) arrangerCommand()      {}
func (TriggerFill) arrangerCommand()    {}
func (ConsumeFill) arrangerCommand()    {}
func (Advance) arrangerCommand()        {}

// Reducer applies commands to arranger states
type Reducer struct {
	recognizer *chord.Recognizer
}

// NewReducer returns a reducer that recognizes chords with rec. A nil rec uses the default
// recognizer.
func NewReducer(rec *chord.Recognizer) Reducer {
	if rec == nil {
		rec = chord.NewRecognizer(chord.DefaultRecognizerConfig())
	}
	return Reducer{recognizer: rec}
}

var defaultReducer = NewReducer(nil)

// Reduce applies cmd with the default recognizer
func Reduce(s State, cmd Command) State {
	return defaultReducer.Reduce(s, cmd)
}

// Reduce returns the state after cmd. Unknown commands return s unchanged.
func (r Reducer) Reduce(s State, cmd Command) State {
	switch c := cmd.(type) {
	case LoadStyle:
		next := s.clone()
		next.StyleID = c.Style.ID
		next.VariationCount = len(c.Style.Variations)
		next.VariationIndex = clampVariation(next.VariationIndex, next.VariationCount)
		if !s.TempoLock && c.Style.Tempo.Default > 0 {
			next.Tempo = clampTempo(c.Style.Tempo.Default)
		}
		next.Voices = nil
		return next

	case Play:
		next := s.clone()
		next.IsPlaying = true
		return next

	case Stop:
		next := s.clone()
		next.IsPlaying = false
		next.PositionTicks = 0
		return next

	case SetVariation:
		next := s.clone()
		next.VariationIndex = clampVariation(c.Index, s.VariationCount)
		return next

	case SetChord:
		recognized, ok := r.recognizer.Recognize(c.Notes)
		if !ok {
			return s
		}
		next := s.clone()
		next.CurrentChord = &recognized
		if s.SyncStart && !s.IsPlaying {
			next.IsPlaying = true
		}
		return next

	case ReleaseChord:
		next := s.clone()
		if s.SyncStop && s.IsPlaying {
			next.IsPlaying = false
			next.PositionTicks = 0
		}
		if !s.ChordMemory {
			next.CurrentChord = nil
		}
		return next

	case SetSyncStart:
		next := s.clone()
		next.SyncStart = c.Enabled
		return next

	case SetSyncStop:
		next := s.clone()
		next.SyncStop = c.Enabled
		return next

	case SetChordMemory:
		next := s.clone()
		next.ChordMemory = c.Enabled
		return next

	case SetTempoLock:
		next := s.clone()
		next.TempoLock = c.Enabled
		return next

	case SetEnergy:
		next := s.clone()
		next.Energy = clampEnergy(c.Level)
		return next

	case SetTempo:
		next := s.clone()
		next.Tempo = clampTempo(c.BPM)
		return next

	case MuteVoice:
		next := s.clone()
		m := next.Voices[c.VoiceID]
		m.Muted = c.Muted
		next.Voices = setMix(next.Voices, c.VoiceID, m)
		return next

	case SoloVoice:
		next := s.clone()
		m := next.Voices[c.VoiceID]
		m.Soloed = c.Soloed
		next.Voices = setMix(next.Voices, c.VoiceID, m)
		return next

	case TriggerFill:
		next := s.clone()
		next.FillQueued = true
		return next

	case ConsumeFill:
		next := s.clone()
		next.FillQueued = false
		return next

	case Advance:
		if !s.IsPlaying || c.Ticks <= 0 {
			return s
		}
		next := s.clone()
		next.PositionTicks += c.Ticks
		return next
	}
	return s
}

func clampVariation(index, count int) int {
	if count <= 0 {
		return max(index, 0)
	}
	return min(max(index, 0), count-1)
}

func setMix(voices map[string]VoiceMix, id string, m VoiceMix) map[string]VoiceMix {
	if voices == nil {
		voices = map[string]VoiceMix{}
	}
	if m == (VoiceMix{}) {
		delete(voices, id)
	} else {
		voices[id] = m
	}
	if len(voices) == 0 {
		return nil
	}
	return voices
}
