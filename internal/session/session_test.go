package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/magda-harmony/internal/arranger"
	"github.com/Conceptual-Machines/magda-harmony/internal/catalog"
	"github.com/Conceptual-Machines/magda-harmony/internal/models"
	"github.com/Conceptual-Machines/magda-harmony/internal/scene"
	"github.com/Conceptual-Machines/magda-harmony/internal/song"
)

type unknownCommand struct{}

func (unknownCommand) sessionCommand() {}

func popSession(t *testing.T) State {
	t.Helper()
	reg, err := catalog.Default()
	require.NoError(t, err)
	structure, err := song.BuildPop(reg, "pop-8beat")
	require.NoError(t, err)
	style, err := reg.Style("pop-8beat")
	require.NoError(t, err)

	s := New(structure)
	return Reduce(s, ArrangerCmd{Cmd: arranger.LoadStyle{Style: style}})
}

func TestNewSyncsFirstPart(t *testing.T) {
	s := popSession(t)
	intro := s.Song.Parts[0]
	assert.Equal(t, intro.Energy, s.Arranger.Energy)
	assert.Equal(t, intro.VariationIndex, s.Arranger.VariationIndex)
	assert.Equal(t, 110, s.Arranger.Tempo)
}

func TestJumpOverridesManualChanges(t *testing.T) {
	s := popSession(t)
	s = Reduce(s, ArrangerCmd{Cmd: arranger.SetEnergy{Level: 5}})
	s = Reduce(s, ArrangerCmd{Cmd: arranger.SetVariation{Index: 3}})
	assert.Equal(t, 5, s.Arranger.Energy)

	for i, p := range s.Song.Parts {
		next := Reduce(s, SceneCmd{Cmd: scene.JumpToPart{Index: i}})
		assert.Equal(t, p.Energy, next.Arranger.Energy, p.Name)
		assert.Equal(t, p.VariationIndex, next.Arranger.VariationIndex, p.Name)
		assert.Zero(t, next.Scene.PositionInPart)
		assert.False(t, next.Scene.HasQueued())
	}
}

func TestManualOverridesDriftUntilSync(t *testing.T) {
	s := popSession(t)
	s = Reduce(s, SceneCmd{Cmd: scene.SelectPart{Index: 2}})
	s = Reduce(s, ArrangerCmd{Cmd: arranger.SetEnergy{Level: 5}})
	assert.Equal(t, 5, s.Arranger.Energy)

	s = Reduce(s, Sync{})
	assert.Equal(t, s.Song.Parts[0].Energy, s.Arranger.Energy)
}

func TestTickCrossesParts(t *testing.T) {
	s := popSession(t)
	s = Reduce(s, Tick{Ticks: models.TicksPerBar})
	assert.Zero(t, s.Scene.PositionInPart, "stopped transport does not move")

	s = Reduce(s, ArrangerCmd{Cmd: arranger.Play{}})
	s = Reduce(s, ArrangerCmd{Cmd: arranger.SetEnergy{Level: 5}})
	introTicks := s.Song.Parts[0].LengthBars * models.TicksPerBar
	s = Reduce(s, Tick{Ticks: introTicks})

	verse := s.Song.Parts[1]
	assert.Equal(t, 1, s.Scene.CurrentPartIndex)
	assert.Equal(t, verse.Energy, s.Arranger.Energy)
	assert.Equal(t, introTicks, s.Arranger.PositionTicks)
}

func TestTickStopsAtSongEnd(t *testing.T) {
	s := popSession(t)
	s = Reduce(s, ArrangerCmd{Cmd: arranger.Play{}})
	s = Reduce(s, Tick{Ticks: s.Song.TotalBars * models.TicksPerBar})
	assert.False(t, s.Arranger.IsPlaying)
	assert.Zero(t, s.Arranger.PositionTicks)
	assert.Equal(t, s.Song.Len()-1, s.Scene.CurrentPartIndex)
}

func TestPlayAfterSongEndRestarts(t *testing.T) {
	s := popSession(t)
	s = Reduce(s, ArrangerCmd{Cmd: arranger.Play{}})
	s = Reduce(s, Tick{Ticks: s.Song.TotalBars * models.TicksPerBar})
	require.True(t, s.Scene.AtEnd(s.Song))
	s = Reduce(s, ArrangerCmd{Cmd: arranger.SetEnergy{Level: 5}})
	assert.True(t, s.Scene.AtEnd(s.Song), "only starting the transport rewinds")

	s = Reduce(s, ArrangerCmd{Cmd: arranger.Play{}})
	assert.True(t, s.Arranger.IsPlaying)
	assert.Zero(t, s.Scene.CurrentPartIndex)
	assert.Zero(t, s.Scene.PositionInPart)
	assert.Equal(t, s.Song.Parts[0].Energy, s.Arranger.Energy)

	s = Reduce(s, Tick{Ticks: models.TicksPerBar})
	assert.True(t, s.Arranger.IsPlaying)
	assert.Equal(t, models.TicksPerBar, s.Arranger.PositionTicks)
	assert.Equal(t, models.TicksPerBar, s.Scene.SongPositionTicks(s.Song))
}

func TestStructuralEditsKeepTotals(t *testing.T) {
	s := popSession(t)
	s = Reduce(s, SceneCmd{Cmd: scene.RemovePart{Index: 0}})
	s = Reduce(s, SceneCmd{Cmd: scene.DuplicatePart{Index: 0}})
	total := 0
	for _, p := range s.Song.Parts {
		total += p.LengthBars
	}
	assert.Equal(t, total, s.Song.TotalBars)
}

func TestUnknownCommand(t *testing.T) {
	s := popSession(t)
	assert.Equal(t, s, Reduce(s, unknownCommand{}))
}

func TestStateJSONRoundTrip(t *testing.T) {
	s := popSession(t)
	// E in the bass under C and G
	s = Reduce(s, ArrangerCmd{Cmd: arranger.SetChord{Notes: []int{40, 48, 55}}})
	s = Reduce(s, ArrangerCmd{Cmd: arranger.MuteVoice{VoiceID: "pad", Muted: true}})
	s = Reduce(s, ArrangerCmd{Cmd: arranger.TriggerFill{}})
	s = Reduce(s, SceneCmd{Cmd: scene.SelectPart{Index: 1}})
	s = Reduce(s, SceneCmd{Cmd: scene.SelectPart{Index: 2, Add: true}})
	s = Reduce(s, SceneCmd{Cmd: scene.SetLoopRange{Start: 1, End: 2}})
	s = Reduce(s, SceneCmd{Cmd: scene.QueuePart{Index: 3}})
	s = Reduce(s, ArrangerCmd{Cmd: arranger.Play{}})
	s = Reduce(s, Tick{Ticks: 100})

	c, ok := s.Arranger.Chord()
	require.True(t, ok)
	require.Equal(t, "C/E", c.Symbol())
	require.NotNil(t, s.Scene.LoopRange)
	require.True(t, s.Scene.HasQueued())

	data, err := json.Marshal(s)
	require.NoError(t, err)
	var decoded State
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, s, decoded)

	// the decoded session keeps playing the same way
	assert.Equal(t, Reduce(s, Tick{Ticks: models.TicksPerBar}), Reduce(decoded, Tick{Ticks: models.TicksPerBar}))
}
