package control

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/magda-harmony/internal/arranger"
	"github.com/Conceptual-Machines/magda-harmony/internal/harmony/chord"
)

func TestCalculateTapTempo(t *testing.T) {
	tests := []struct {
		name   string
		taps   []float64
		want   float64
		wantOK bool
	}{
		{"120 bpm", []float64{0, 500, 1000, 1500}, 120, true},
		{"60 bpm", []float64{0, 1000, 2000}, 60, true},
		{"too fast clamps", []float64{0, 10, 20}, 240, true},
		{"too slow clamps", []float64{0, 10000}, 40, true},
		{"single tap", []float64{0}, 0, false},
		{"no taps", nil, 0, false},
		{"backwards taps", []float64{1000, 500}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CalculateTapTempo(tt.taps)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestTapTempoKeepsNewestFour(t *testing.T) {
	s := New()
	for _, ts := range []float64{0, 400, 800, 1300, 1800, 2300} {
		s = s.TapTempo(ts)
		assert.LessOrEqual(t, len(s.TapTimestamps), 4)
	}
	assert.Equal(t, []float64{800, 1300, 1800, 2300}, s.TapTimestamps)

	bpm, ok := s.Tempo()
	require.True(t, ok)
	assert.InDelta(t, 120, bpm, 1e-9)
}

func TestTapTempoDoesNotModifyReceiver(t *testing.T) {
	s := New().TapTempo(0).TapTempo(500)
	_ = s.TapTempo(1000)
	assert.Len(t, s.TapTimestamps, 2)
}

func TestSettersClamp(t *testing.T) {
	s := New()
	assert.Equal(t, 60, s.SplitPoint)
	assert.Equal(t, 127, s.WithSplitPoint(300).SplitPoint)
	assert.Equal(t, 0, s.WithSplitPoint(-4).SplitPoint)
	assert.Equal(t, 2, s.WithOctaveOffset(5).OctaveOffset)
	assert.Equal(t, -2, s.WithOctaveOffset(-9).OctaveOffset)
	assert.Equal(t, 43, s.WithForcedBassNote(43).ForcedBassNote)
	assert.Equal(t, NoBassNote, s.WithForcedBassNote(43).WithForcedBassNote(-7).ForcedBassNote)
}

func TestHeldChordNotesAreCopied(t *testing.T) {
	notes := []int{48, 52, 55}
	s := New().WithHeldChordNotes(notes)
	notes[0] = 0
	assert.Equal(t, []int{48, 52, 55}, s.HeldChordNotes)
}

func TestToggles(t *testing.T) {
	s := New().WithSyncStart(true).WithSyncStop(true).WithChordMemory(true).WithTempoLock(true)
	assert.True(t, s.SyncStart)
	assert.True(t, s.SyncStop)
	assert.True(t, s.ChordMemory)
	assert.True(t, s.TempoLock)

	a := arranger.New()
	for _, cmd := range s.ArrangerCommands() {
		a = arranger.Reduce(a, cmd)
	}
	assert.True(t, a.SyncStart)
	assert.True(t, a.SyncStop)
	assert.True(t, a.ChordMemory)
	assert.True(t, a.TempoLock)
}

func TestSplitNotes(t *testing.T) {
	s := New().WithOctaveOffset(1)
	chordHand, melody := s.SplitNotes([]int{48, 52, 55, 72, 60})
	assert.Equal(t, []int{48, 52, 55}, chordHand)
	assert.Equal(t, []int{84, 72}, melody)
}

func TestApplyOctaveStaysInRange(t *testing.T) {
	assert.Equal(t, 120, New().WithOctaveOffset(2).ApplyOctave(120))
	assert.Equal(t, 4, New().WithOctaveOffset(-2).ApplyOctave(4))
	assert.Equal(t, 36, New().WithOctaveOffset(-2).ApplyOctave(60))
}

func TestEffectiveBass(t *testing.T) {
	c := chord.New(0, chord.Major)
	assert.True(t, New().EffectiveBass(c).Equal(c))

	slash := New().WithForcedBassNote(43).EffectiveBass(c)
	assert.Equal(t, 7, slash.BassPitchClass())
	assert.Equal(t, "C/G", slash.Symbol())
}

func TestStateJSONRoundTrip(t *testing.T) {
	ctrl := New().
		WithSyncStart(true).
		WithChordMemory(true).
		WithSplitPoint(54).
		WithOctaveOffset(-1).
		WithForcedBassNote(40).
		WithHeldChordNotes([]int{48, 52, 55}).
		TapTempo(0).
		TapTempo(500)

	data, err := json.Marshal(ctrl)
	require.NoError(t, err)
	var decoded State
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, ctrl, decoded)

	// released notes survive the trip as no notes
	released := ctrl.WithHeldChordNotes([]int{})
	data, err = json.Marshal(released)
	require.NoError(t, err)
	decoded = State{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, released, decoded)
	assert.Nil(t, decoded.HeldChordNotes)
}
