package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/Conceptual-Machines/magda-harmony/internal/accompaniment"
	"github.com/Conceptual-Machines/magda-harmony/internal/arranger"
	"github.com/Conceptual-Machines/magda-harmony/internal/catalog"
	"github.com/Conceptual-Machines/magda-harmony/internal/control"
	"github.com/Conceptual-Machines/magda-harmony/internal/harmony/chord"
	"github.com/Conceptual-Machines/magda-harmony/internal/harmony/voicing"
	"github.com/Conceptual-Machines/magda-harmony/internal/logger"
	"github.com/Conceptual-Machines/magda-harmony/internal/models"
	"github.com/Conceptual-Machines/magda-harmony/internal/session"
)

// RenderRequest describes one bar of playback
type RenderRequest struct {
	Session session.State
	// Control, when set, applies the forced bass note
	Control *control.State
	// Previous is the voicing of the last rendered chord, for voice leading
	Previous *voicing.FourPart
}

// Frame is the output of one render pass
type Frame struct {
	Notes  []models.NoteEvent  `json:"notes"`
	Drums  []models.DrumEvent  `json:"drums"`
	Chords []models.ChordEvent `json:"chords"`
	// Voicing is nil when no chord is held
	Voicing *voicing.FourPart `json:"voicing,omitempty"`
	Chord   *chord.Chord      `json:"chord,omitempty"`
	Fill    bool              `json:"fill"`
}

// Render produces the bar containing the arranger's position: texture for the current chord,
// the variation's drum pattern, and a one-beat fill at the end of the bar when one is
// queued. The returned session has the fill consumed once it has been played; a fill queued
// while the drums are silent waits for them.
func (e *Engine) Render(ctx context.Context, req RenderRequest) (Frame, session.State, error) {
	start := time.Now()
	s := req.Session
	a := s.Arranger
	if a.StyleID == "" {
		return Frame{}, s, ErrNoStyle
	}
	style, err := e.registry.Style(a.StyleID)
	if err != nil {
		logger.Error("Render failed", err, logger.Fields{"style_id": a.StyleID})
		return Frame{}, s, fmt.Errorf("failed to render: %w", err)
	}
	variation, ok := style.Variation(a.VariationIndex)
	if !ok {
		return Frame{}, s, fmt.Errorf("style %s has no variations", style.ID)
	}
	barStart := a.PositionTicks / models.TicksPerBar * models.TicksPerBar

	var frame Frame
	if c, ok := a.Chord(); ok {
		if req.Control != nil {
			c = req.Control.EffectiveBass(c)
		}
		v := voicing.Apply(req.Previous, c, e.voicing)
		frame.Chord = &c
		frame.Voicing = &v
		frame.Chords = []models.ChordEvent{{ChordSymbol: c.Symbol(), StartTick: barStart, Duration: models.TicksPerBar}}
		for _, n := range accompaniment.GenerateTexture(accompaniment.TextureRequest{
			Chord:     c,
			Voicing:   &v,
			Style:     style,
			Variation: a.VariationIndex,
			Energy:    a.Energy,
			StartTick: barStart,
			Bars:      1,
		}) {
			if a.Audible(n.VoiceID) {
				frame.Notes = append(frame.Notes, n)
			}
		}
	}

	drumID := drumVoiceID(style)
	if a.Audible(drumID) && variation.DrumPattern != "" {
		pattern, err := e.registry.DrumPattern(variation.DrumPattern)
		if err != nil {
			return Frame{}, s, fmt.Errorf("failed to render drums: %w", err)
		}
		drums := accompaniment.GenerateDrums(accompaniment.DrumRequest{
			Pattern:   pattern,
			Energy:    a.Energy,
			Swing:     variation.Swing,
			StartTick: barStart,
			Bars:      1,
		})
		if a.FillQueued {
			fillStart := barStart + models.TicksPerBar - models.PPQ
			drums = withFill(drums, fillStart, accompaniment.GenerateFill(accompaniment.FillRequest{
				Type:      accompaniment.FillForEnergy(a.Energy),
				Energy:    a.Energy,
				StartTick: fillStart,
				Beats:     1,
			}))
			frame.Fill = true
		}
		for i := range drums {
			drums[i].VoiceID = drumID
		}
		frame.Drums = drums
	}

	if frame.Fill {
		s = e.reducer.Reduce(s, session.ArrangerCmd{Cmd: arranger.ConsumeFill{}})
	}

	duration := time.Since(start)
	logger.LogRender(ctx, style.ID, duration, len(frame.Notes), len(frame.Drums), logger.Fields{
		"bar":    barStart/models.TicksPerBar + 1,
		"energy": a.Energy,
	})
	e.metrics.RecordRender(ctx, style.ID, a.Energy, len(frame.Notes), len(frame.Drums), duration)
	return frame, s, nil
}

// withFill replaces the groove from fillStart on with the fill. The fill's closing crash lands
// on the next downbeat, outside this bar.
func withFill(groove []models.DrumEvent, fillStart int, fill []models.DrumEvent) []models.DrumEvent {
	out := make([]models.DrumEvent, 0, len(groove)+len(fill))
	for _, d := range groove {
		if d.StartTick < fillStart {
			out = append(out, d)
		}
	}
	return append(out, fill...)
}

// RenderEnding produces the ending for the session's current chord (or the style key's
// tonic when none is held), starting on the first bar line at or after the song position
func (e *Engine) RenderEnding(ctx context.Context, s session.State, kind accompaniment.EndingType) (accompaniment.Ending, error) {
	a := s.Arranger
	if a.StyleID == "" {
		return accompaniment.Ending{}, ErrNoStyle
	}
	style, err := e.registry.Style(a.StyleID)
	if err != nil {
		return accompaniment.Ending{}, fmt.Errorf("failed to render ending: %w", err)
	}
	c, ok := a.Chord()
	if !ok {
		c = keyChord(style)
	}
	pos := s.Scene.SongPositionTicks(s.Song)
	start := (pos + models.TicksPerBar - 1) / models.TicksPerBar * models.TicksPerBar
	ending := accompaniment.GenerateEnding(accompaniment.EndingRequest{
		Type:      kind,
		Chord:     c,
		Style:     style,
		Energy:    a.Energy,
		StartTick: start,
	})
	logger.Debug("Ending rendered", logger.Fields{
		"style_id": style.ID,
		"type":     string(kind),
		"chord":    c.Symbol(),
		"length":   ending.LengthTicks,
	})
	return ending, nil
}

// keyChord returns the tonic triad of the style's key, falling back to C major
func keyChord(style catalog.Style) chord.Chord {
	c, err := chord.Parse(style.Key)
	if err != nil {
		return chord.New(0, chord.Major)
	}
	return c
}
