package live

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"

	"github.com/Conceptual-Machines/magda-harmony/internal/models"
)

func TestTracker(t *testing.T) {
	tr := NewTracker(-1)
	assert.True(t, tr.Handle(midi.NoteOn(0, 64, 100)))
	assert.True(t, tr.Handle(midi.NoteOn(0, 60, 90)))
	assert.False(t, tr.Handle(midi.NoteOn(0, 60, 90)), "repeated note-on")
	assert.True(t, tr.Handle(midi.NoteOn(3, 67, 80)))
	assert.Equal(t, []int{60, 64, 67}, tr.Notes())

	assert.True(t, tr.Handle(midi.NoteOff(0, 64)))
	// note-on with zero velocity is a release
	assert.True(t, tr.Handle(midi.NoteOn(3, 67, 0)))
	assert.Equal(t, []int{60}, tr.Notes())

	assert.False(t, tr.Handle(midi.ControlChange(0, 64, 127)))

	tr.Reset()
	assert.Empty(t, tr.Notes())
}

func TestTrackerChannelFilter(t *testing.T) {
	tr := NewTracker(1)
	assert.False(t, tr.Handle(midi.NoteOn(0, 60, 100)))
	assert.True(t, tr.Handle(midi.NoteOn(1, 62, 100)))
	assert.Equal(t, []int{62}, tr.Notes())
}

func TestToMessages(t *testing.T) {
	notes := []models.NoteEvent{
		{VoiceID: "keys", StartTick: 0, Note: 60, Duration: 480, Velocity: 90, Channel: 2},
		{VoiceID: "keys", StartTick: 480, Note: 60, Duration: 480, Velocity: 90, Channel: 2},
	}
	drums := []models.DrumEvent{{VoiceID: "drums", StartTick: 240, Note: 36, Duration: 60, Velocity: 110}}

	msgs := ToMessages(notes, drums)
	require.Len(t, msgs, 6)

	var ticks []int
	for _, m := range msgs {
		ticks = append(ticks, m.Tick)
	}
	assert.Equal(t, []int{0, 240, 300, 480, 480, 960}, ticks)

	var ch, key, vel uint8
	require.True(t, msgs[1].Msg.GetNoteStart(&ch, &key, &vel))
	assert.Equal(t, uint8(DrumChannel), ch)
	assert.Equal(t, uint8(36), key)

	// the release of the first C sounds before the retrigger
	assert.True(t, msgs[3].Msg.GetNoteEnd(&ch, &key))
	assert.True(t, msgs[4].Msg.GetNoteStart(&ch, &key, &vel))
	assert.Equal(t, uint8(2), ch)
}

func TestToMessagesClipsOverlappingStrikes(t *testing.T) {
	notes := []models.NoteEvent{
		{VoiceID: "bass", StartTick: 0, Note: 40, Duration: 528, Velocity: 80, Channel: 1},
		{VoiceID: "bass", StartTick: 480, Note: 40, Duration: 528, Velocity: 80, Channel: 1},
		// same key on another channel is left alone
		{VoiceID: "keys", StartTick: 0, Note: 40, Duration: 960, Velocity: 80, Channel: 2},
	}
	msgs := ToMessages(notes, nil)
	require.Len(t, msgs, 6)

	var offs []int
	var ch, key uint8
	for _, m := range msgs {
		if m.Msg.GetNoteEnd(&ch, &key) {
			offs = append(offs, m.Tick)
		}
	}
	assert.Equal(t, []int{480, 960, 1008}, offs)
}

func TestTickDuration(t *testing.T) {
	assert.Equal(t, time.Minute/(120*480), TickDuration(120))
	assert.Zero(t, TickDuration(0))
}

func TestToSMF(t *testing.T) {
	msgs := ToMessages(
		[]models.NoteEvent{{StartTick: 0, Note: 60, Duration: 960, Velocity: 90, Channel: 1}},
		[]models.DrumEvent{{StartTick: 480, Note: 38, Duration: 120, Velocity: 100}},
	)
	sm, err := ToSMF(120, msgs)
	require.NoError(t, err)
	require.Len(t, sm.Tracks, 2)

	perf := sm.Tracks[1]
	// four messages plus end of track
	require.Len(t, perf, 5)
	var total uint32
	for _, ev := range perf {
		total += ev.Delta
	}
	assert.Equal(t, uint32(models.TicksPerBar), total)

	_, err = ToSMF(120, []TimedMessage{{Tick: 480, Msg: midi.NoteOn(0, 60, 90)}, {Tick: 0, Msg: midi.NoteOff(0, 60)}})
	assert.Error(t, err)
}
