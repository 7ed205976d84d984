package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gitlab.com/gomidi/midi/v2"

	"github.com/Conceptual-Machines/magda-harmony/internal/arranger"
	"github.com/Conceptual-Machines/magda-harmony/internal/catalog"
	"github.com/Conceptual-Machines/magda-harmony/internal/config"
	"github.com/Conceptual-Machines/magda-harmony/internal/control"
	"github.com/Conceptual-Machines/magda-harmony/internal/harmony/chord"
	"github.com/Conceptual-Machines/magda-harmony/internal/harmony/voicing"
	"github.com/Conceptual-Machines/magda-harmony/internal/live"
	"github.com/Conceptual-Machines/magda-harmony/internal/logger"
	"github.com/Conceptual-Machines/magda-harmony/internal/metrics"
	"github.com/Conceptual-Machines/magda-harmony/internal/models"
	"github.com/Conceptual-Machines/magda-harmony/internal/session"
	"github.com/Conceptual-Machines/magda-harmony/internal/song"
)

// ErrNoStyle is returned when rendering a session without a loaded style
var ErrNoStyle = errors.New("no style loaded")

// Options tune an Engine. Zero values select the defaults.
type Options struct {
	MinNotes    int
	MaxMovement int
	Metrics     *metrics.SentryMetrics
}

// Engine binds an injected catalog to the recognizer, reducers and generators
type Engine struct {
	registry   *catalog.Registry
	recognizer *chord.Recognizer
	reducer    session.Reducer
	voicing    voicing.Config
	metrics    *metrics.SentryMetrics
}

// New creates an engine over reg
func New(reg *catalog.Registry, opts Options) (*Engine, error) {
	if reg == nil {
		return nil, errors.New("engine requires a catalog registry")
	}
	rec := chord.NewRecognizer(chord.RecognizerConfig{MinNotes: opts.MinNotes})
	vc := voicing.DefaultConfig()
	if opts.MaxMovement > 0 {
		vc.MaxMovement = opts.MaxMovement
	}
	return &Engine{
		registry:   reg,
		recognizer: rec,
		reducer:    session.NewReducer(arranger.NewReducer(rec)),
		voicing:    vc,
		metrics:    opts.Metrics,
	}, nil
}

// FromConfig loads the catalog named by cfg (or the embedded one) and creates an engine
func FromConfig(cfg *config.Config) (*Engine, error) {
	start := time.Now()
	reg, err := LoadCatalog(cfg.CatalogFile)
	if err != nil {
		return nil, err
	}
	logger.Info("Catalog loaded", logger.Fields{
		"source":      catalogSource(cfg.CatalogFile),
		"styles":      len(reg.Styles()),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return New(reg, Options{
		MinNotes:    cfg.MinNotes,
		MaxMovement: cfg.MaxMovement,
		Metrics:     metrics.NewSentryMetrics(cfg.SentryDSN != ""),
	})
}

// LoadCatalog reads path, or the embedded catalog when path is empty
func LoadCatalog(path string) (*catalog.Registry, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}

func catalogSource(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}

// Registry returns the injected catalog
func (e *Engine) Registry() *catalog.Registry {
	return e.registry
}

// VoicingConfig returns the voice-leading configuration in use
func (e *Engine) VoicingConfig() voicing.Config {
	return e.voicing
}

// Recognize classifies notes with the configured recognizer
func (e *Engine) Recognize(notes []int) (chord.Chord, bool) {
	return e.recognizer.Recognize(notes)
}

// NewSession builds a song from template for styleID and loads the style into the arranger
func (e *Engine) NewSession(ctx context.Context, template song.Template, styleID string) (session.State, error) {
	start := time.Now()
	structure, err := song.Build(e.registry, template, styleID)
	if err != nil {
		return session.State{}, err
	}
	style, err := e.registry.Style(styleID)
	if err != nil {
		return session.State{}, err
	}
	s := session.New(structure)
	s = e.reducer.Reduce(s, session.ArrangerCmd{Cmd: arranger.LoadStyle{Style: style}})
	e.metrics.RecordPerformanceMetric(ctx, "session.new", time.Since(start), map[string]interface{}{
		"template": string(template),
		"style_id": styleID,
		"parts":    structure.Len(),
		"bars":     structure.TotalBars,
	})
	return s, nil
}

// Dispatch applies a session command
func (e *Engine) Dispatch(ctx context.Context, s session.State, cmd session.Command) session.State {
	start := time.Now()
	next := e.reducer.Reduce(s, cmd)
	e.metrics.RecordCommand(ctx, commandName(cmd), !sameTransport(s, next), time.Since(start))
	return next
}

// ApplyControl pushes the control toggles into the arranger
func (e *Engine) ApplyControl(s session.State, ctrl control.State) session.State {
	for _, cmd := range ctrl.ArrangerCommands() {
		s = e.reducer.Reduce(s, session.ArrangerCmd{Cmd: cmd})
	}
	return s
}

// HandleNotes feeds the chord hand of the held notes to the arranger. An empty chord hand
// releases the chord.
func (e *Engine) HandleNotes(s session.State, ctrl control.State, held []int) session.State {
	chordHand, _ := ctrl.SplitNotes(held)
	if len(chordHand) == 0 {
		return e.reducer.Reduce(s, session.ArrangerCmd{Cmd: arranger.ReleaseChord{}})
	}
	return e.reducer.Reduce(s, session.ArrangerCmd{Cmd: arranger.SetChord{Notes: chordHand}})
}

// HandleMIDI applies msg to the tracker and, when the held set changed, feeds the result to
// HandleNotes
func (e *Engine) HandleMIDI(s session.State, ctrl control.State, t *live.Tracker, msg midi.Message) session.State {
	if !t.Handle(msg) {
		return s
	}
	return e.HandleNotes(s, ctrl, t.Notes())
}

func commandName(cmd session.Command) string {
	switch c := cmd.(type) {
	case session.ArrangerCmd:
		return fmt.Sprintf("%T", c.Cmd)
	case session.SceneCmd:
		return fmt.Sprintf("%T", c.Cmd)
	default:
		return fmt.Sprintf("%T", cmd)
	}
}

func sameTransport(a, b session.State) bool {
	return a.Arranger.IsPlaying == b.Arranger.IsPlaying &&
		a.Arranger.PositionTicks == b.Arranger.PositionTicks &&
		a.Scene.CurrentPartIndex == b.Scene.CurrentPartIndex &&
		a.Arranger.Energy == b.Arranger.Energy &&
		a.Arranger.VariationIndex == b.Arranger.VariationIndex
}

func drumVoiceID(style catalog.Style) string {
	for _, v := range style.Voices {
		if v.Type == models.VoiceDrums {
			return v.ID
		}
	}
	return "drums"
}
