package session

import (
	"github.com/Conceptual-Machines/magda-harmony/internal/arranger"
	"github.com/Conceptual-Machines/magda-harmony/internal/scene"
	"github.com/Conceptual-Machines/magda-harmony/internal/song"
)

// State ties the arranger transport to the scene view over a song structure
type State struct {
	Arranger arranger.State     `json:"arranger"`
	Scene    scene.View         `json:"scene"`
	Song     song.SongStructure `json:"song"`
}

// New starts a session at the first part of s with the arranger synced to it
func New(s song.SongStructure) State {
	a := arranger.New()
	if s.Tempo > 0 {
		a = arranger.Reduce(a, arranger.SetTempo{BPM: s.Tempo})
	}
	return syncFromPart(State{Arranger: a, Scene: scene.NewView(), Song: s})
}

// Command is a session transition
type Command interface {
	sessionCommand()
}

type (
	// ArrangerCmd forwards a command to the arranger
	ArrangerCmd struct{ Cmd arranger.Command }

	// SceneCmd forwards a command to the scene view
	SceneCmd struct{ Cmd scene.Command }

	// Sync copies the current part's variation and energy into the arranger
	Sync struct{}

	// Tick advances arranger and scene together while playing
	Tick struct{ Ticks int }
)

func (ArrangerCmd) sessionCommand() {}
func (SceneCmd) sessionCommand()    {}
func (Sync) sessionCommand()        {}
func (Tick) sessionCommand()        {}

// Reducer applies session commands
type Reducer struct {
	arranger arranger.Reducer
}

// NewReducer wraps an arranger reducer
func NewReducer(a arranger.Reducer) Reducer {
	return Reducer{arranger: a}
}

var defaultReducer = NewReducer(arranger.NewReducer(nil))

// Reduce applies cmd with the default arranger reducer
func Reduce(s State, cmd Command) State {
	return defaultReducer.Reduce(s, cmd)
}

// Reduce returns the state after cmd. Jumping to a part, or moving into another part as the
// transport advances, re-applies that part's variation and energy and overrides any manual
// arranger changes. Between those points the arranger may drift from the structure.
//
// When the song runs out the transport stops and the cursor stays on the end, so the ending
// can be placed after the last bar. Starting the transport again from there plays the song
// from the top.
func (r Reducer) Reduce(s State, cmd Command) State {
	switch c := cmd.(type) {
	case ArrangerCmd:
		next := s
		next.Arranger = r.arranger.Reduce(s.Arranger, c.Cmd)
		if !s.Arranger.IsPlaying && next.Arranger.IsPlaying && next.Scene.AtEnd(next.Song) {
			next.Scene, next.Song = scene.Reduce(next.Scene, next.Song, scene.JumpToPart{Index: 0})
			return syncFromPart(next)
		}
		return next

	case SceneCmd:
		next := s
		next.Scene, next.Song = scene.Reduce(s.Scene, s.Song, c.Cmd)
		switch sc := c.Cmd.(type) {
		case scene.JumpToPart:
			if next.Scene.CurrentPartIndex == sc.Index {
				return syncFromPart(next)
			}
		case scene.Advance:
			if partChanged(s, next) {
				return syncFromPart(next)
			}
		}
		return next

	case Sync:
		return syncFromPart(s)

	case Tick:
		if !s.Arranger.IsPlaying || c.Ticks <= 0 {
			return s
		}
		next := s
		next.Arranger = r.arranger.Reduce(s.Arranger, arranger.Advance{Ticks: c.Ticks})
		next.Scene, next.Song = scene.Reduce(s.Scene, s.Song, scene.Advance{Ticks: c.Ticks})
		if partChanged(s, next) {
			next = syncFromPart(next)
		}
		if next.Scene.AtEnd(next.Song) {
			next.Arranger = r.arranger.Reduce(next.Arranger, arranger.Stop{})
		}
		return next
	}
	return s
}

// CurrentPart returns the part under the scene cursor
func (s State) CurrentPart() (song.SongPart, bool) {
	return s.Scene.CurrentPart(s.Song)
}

func partChanged(before, after State) bool {
	return before.Scene.CurrentPartIndex != after.Scene.CurrentPartIndex
}

func syncFromPart(s State) State {
	p, ok := s.CurrentPart()
	if !ok {
		return s
	}
	s.Arranger.VariationIndex = p.VariationIndex
	s.Arranger.Energy = p.Energy
	return s
}
