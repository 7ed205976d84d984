package control

import (
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/Conceptual-Machines/magda-harmony/internal/arranger"
	"github.com/Conceptual-Machines/magda-harmony/internal/harmony/chord"
	"github.com/Conceptual-Machines/magda-harmony/internal/mathx"
)

// Control bounds and defaults
const (
	DefaultSplitPoint = 60
	MinOctaveOffset   = -2
	MaxOctaveOffset   = 2
	NoBassNote        = -1
	maxTaps           = 4
)

// State is the real-time performance control layer. Setters return a new State.
type State struct {
	SyncStart      bool      `json:"syncStart"`
	SyncStop       bool      `json:"syncStop"`
	TempoLock      bool      `json:"tempoLock"`
	ChordMemory    bool      `json:"chordMemory"`
	SplitPoint     int       `json:"splitPoint"`
	OctaveOffset   int       `json:"octaveOffset"`
	ForcedBassNote int       `json:"forcedBassNote"`
	HeldChordNotes []int     `json:"heldChordNotes,omitempty"`
	TapTimestamps  []float64 `json:"tapTimestamps,omitempty"`
}

// New returns the default control state: split at middle C, no overrides
func New() State {
	return State{
		SplitPoint:     DefaultSplitPoint,
		ForcedBassNote: NoBassNote,
	}
}

func (s State) clone() State {
	s.HeldChordNotes = slices.Clone(s.HeldChordNotes)
	s.TapTimestamps = slices.Clone(s.TapTimestamps)
	return s
}

func (s State) WithSyncStart(on bool) State {
	next := s.clone()
	next.SyncStart = on
	return next
}

func (s State) WithSyncStop(on bool) State {
	next := s.clone()
	next.SyncStop = on
	return next
}

func (s State) WithTempoLock(on bool) State {
	next := s.clone()
	next.TempoLock = on
	return next
}

func (s State) WithChordMemory(on bool) State {
	next := s.clone()
	next.ChordMemory = on
	return next
}

// WithSplitPoint sets the keyboard split, clamped to 0-127
func (s State) WithSplitPoint(note int) State {
	next := s.clone()
	next.SplitPoint = mathx.Clamp(note, 0, 127)
	return next
}

// WithOctaveOffset sets the octave transposition, clamped to -2..2
func (s State) WithOctaveOffset(octaves int) State {
	next := s.clone()
	next.OctaveOffset = mathx.Clamp(octaves, MinOctaveOffset, MaxOctaveOffset)
	return next
}

// WithForcedBassNote forces the bass to note's pitch class. NoBassNote (or any negative
// value) clears the override.
func (s State) WithForcedBassNote(note int) State {
	next := s.clone()
	if note < 0 {
		next.ForcedBassNote = NoBassNote
	} else {
		next.ForcedBassNote = mathx.Clamp(note, 0, 127)
	}
	return next
}

// WithHeldChordNotes replaces the held chord notes. No notes is stored as nil.
func (s State) WithHeldChordNotes(notes []int) State {
	next := s.clone()
	next.HeldChordNotes = nil
	if len(notes) > 0 {
		next.HeldChordNotes = slices.Clone(notes)
	}
	return next
}

// TapTempo records a tap timestamp in milliseconds, keeping only the newest four
func (s State) TapTempo(timestampMs float64) State {
	next := s.clone()
	next.TapTimestamps = append(next.TapTimestamps, timestampMs)
	if n := len(next.TapTimestamps); n > maxTaps {
		next.TapTimestamps = slices.Clone(next.TapTimestamps[n-maxTaps:])
	}
	return next
}

// Tempo returns the tempo implied by the recorded taps
func (s State) Tempo() (float64, bool) {
	return CalculateTapTempo(s.TapTimestamps)
}

// CalculateTapTempo converts tap timestamps (ms) to BPM from the mean interval, clamped to
// 40-240. Fewer than two taps, or taps that do not move forward in time, give no tempo.
func CalculateTapTempo(timestampsMs []float64) (float64, bool) {
	if len(timestampsMs) < 2 {
		return 0, false
	}
	intervals := make([]float64, 0, len(timestampsMs)-1)
	for i := 1; i < len(timestampsMs); i++ {
		intervals = append(intervals, timestampsMs[i]-timestampsMs[i-1])
	}
	mean := stat.Mean(intervals, nil)
	if mean <= 0 {
		return 0, false
	}
	return mathx.Clamp(60000/mean, arranger.MinTempo, arranger.MaxTempo), true
}

// SplitNotes divides played notes at the split point: notes below it form the chord hand,
// the rest the melody hand. The octave offset applies to the melody hand.
func (s State) SplitNotes(notes []int) (chordHand, melodyHand []int) {
	for _, n := range notes {
		if n < s.SplitPoint {
			chordHand = append(chordHand, n)
		} else {
			melodyHand = append(melodyHand, s.ApplyOctave(n))
		}
	}
	return chordHand, melodyHand
}

// ApplyOctave transposes note by the octave offset, staying inside the MIDI range
func (s State) ApplyOctave(note int) int {
	shifted := note + 12*s.OctaveOffset
	for shifted > 127 {
		shifted -= 12
	}
	for shifted < 0 {
		shifted += 12
	}
	return shifted
}

// EffectiveBass applies the forced bass note, if any, as the chord's slash bass
func (s State) EffectiveBass(c chord.Chord) chord.Chord {
	if s.ForcedBassNote == NoBassNote {
		return c
	}
	return c.WithBass(mathx.Mod(s.ForcedBassNote, 12))
}

// ArrangerCommands returns the commands that bring an arranger in line with the toggles
func (s State) ArrangerCommands() []arranger.Command {
	return []arranger.Command{
		arranger.SetSyncStart{Enabled: s.SyncStart},
		arranger.SetSyncStop{Enabled: s.SyncStop},
		arranger.SetChordMemory{Enabled: s.ChordMemory},
		arranger.SetTempoLock{Enabled: s.TempoLock},
	}
}
