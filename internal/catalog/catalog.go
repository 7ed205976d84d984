package catalog

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Conceptual-Machines/magda-harmony/internal/models"
	"github.com/Conceptual-Machines/magda-harmony/pkg/embedded"
)

var (
	// ErrStyleNotFound is returned when an explicit style id is not in the registry
	ErrStyleNotFound = errors.New("style not found")
	// ErrDrumPatternNotFound is returned when an explicit drum pattern id is not in the registry
	ErrDrumPatternNotFound = errors.New("drum pattern not found")
)

// TempoRange bounds a style's playable tempo
type TempoRange struct {
	Min     int `yaml:"min" json:"min"`
	Max     int `yaml:"max" json:"max"`
	Default int `yaml:"default" json:"default"`
}

// Voice is one instrument part of a style
type Voice struct {
	ID       string           `yaml:"id" json:"id"`
	Type     models.VoiceType `yaml:"type" json:"type"`
	Channel  int              `yaml:"channel" json:"channel"`
	Low      int              `yaml:"low" json:"low"`
	High     int              `yaml:"high" json:"high"`
	Velocity int              `yaml:"velocity" json:"velocity"`
	// Rhythm names the template bass and chord voices play from energy 3 up
	Rhythm string `yaml:"rhythm,omitempty" json:"rhythm,omitempty"`
}

// Variation is a named alternative pattern set within a style
type Variation struct {
	Name        string  `yaml:"name" json:"name"`
	DrumPattern string  `yaml:"drumPattern" json:"drumPattern"`
	Swing       float64 `yaml:"swing" json:"swing"`
}

// Style describes an accompaniment style
type Style struct {
	ID         string      `yaml:"id" json:"id"`
	Name       string      `yaml:"name" json:"name"`
	Category   string      `yaml:"category" json:"category"`
	Tags       []string    `yaml:"tags" json:"tags"`
	Key        string      `yaml:"key" json:"key"`
	Tempo      TempoRange  `yaml:"tempo" json:"tempo"`
	Voices     []Voice     `yaml:"voices" json:"voices"`
	Variations []Variation `yaml:"variations" json:"variations"`
}

func (s Style) clone() Style {
	s.Tags = slices.Clone(s.Tags)
	s.Voices = slices.Clone(s.Voices)
	s.Variations = slices.Clone(s.Variations)
	return s
}

// Variation returns the variation at index, clamped to the available range
func (s Style) Variation(index int) (Variation, bool) {
	if len(s.Variations) == 0 {
		return Variation{}, false
	}
	index = min(max(index, 0), len(s.Variations)-1)
	return s.Variations[index], true
}

// DrumTrack is one instrument lane of a drum pattern
type DrumTrack struct {
	Instrument string `yaml:"instrument" json:"instrument"`
	Note       int    `yaml:"note" json:"note"`
	Grid       string `yaml:"grid" json:"grid"`
}

// DrumPattern is a one-bar step pattern
type DrumPattern struct {
	ID       string      `yaml:"id" json:"id"`
	Name     string      `yaml:"name" json:"name"`
	Category string      `yaml:"category" json:"category"`
	Tags     []string    `yaml:"tags" json:"tags"`
	Steps    int         `yaml:"steps" json:"steps"`
	Tracks   []DrumTrack `yaml:"tracks" json:"tracks"`
}

func (p DrumPattern) clone() DrumPattern {
	p.Tags = slices.Clone(p.Tags)
	p.Tracks = slices.Clone(p.Tracks)
	return p
}

type document struct {
	Styles       []Style       `yaml:"styles"`
	DrumPatterns []DrumPattern `yaml:"drumPatterns"`
}

// Registry is a read-only catalog of styles and drum patterns. It is safe for concurrent
// readers; lookups return copies.
type Registry struct {
	styles   []Style
	patterns []DrumPattern
	styleIdx map[string]int
	patIdx   map[string]int
}

// NewRegistry validates and indexes styles and patterns
func NewRegistry(styles []Style, patterns []DrumPattern) (*Registry, error) {
	r := &Registry{
		styleIdx: make(map[string]int, len(styles)),
		patIdx:   make(map[string]int, len(patterns)),
	}
	for _, p := range patterns {
		if p.ID == "" {
			return nil, fmt.Errorf("drum pattern with empty id")
		}
		if _, dup := r.patIdx[p.ID]; dup {
			return nil, fmt.Errorf("duplicate drum pattern id: %s", p.ID)
		}
		if p.Steps <= 0 {
			p.Steps = 16
		}
		for _, tr := range p.Tracks {
			if len(tr.Grid) != p.Steps {
				return nil, fmt.Errorf("drum pattern %s: %s grid has %d steps, want %d", p.ID, tr.Instrument, len(tr.Grid), p.Steps)
			}
		}
		r.patIdx[p.ID] = len(r.patterns)
		r.patterns = append(r.patterns, p.clone())
	}
	for _, s := range styles {
		if s.ID == "" {
			return nil, fmt.Errorf("style with empty id")
		}
		if _, dup := r.styleIdx[s.ID]; dup {
			return nil, fmt.Errorf("duplicate style id: %s", s.ID)
		}
		for _, v := range s.Variations {
			if _, ok := r.patIdx[v.DrumPattern]; v.DrumPattern != "" && !ok {
				return nil, fmt.Errorf("style %s variation %s: %w: %s", s.ID, v.Name, ErrDrumPatternNotFound, v.DrumPattern)
			}
		}
		r.styleIdx[s.ID] = len(r.styles)
		r.styles = append(r.styles, s.clone())
	}
	return r, nil
}

// Load parses a YAML catalog document
func Load(data []byte) (*Registry, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return NewRegistry(doc.Styles, doc.DrumPatterns)
}

// LoadFile reads a YAML catalog from disk
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return Load(data)
}

// Default returns the embedded catalog
func Default() (*Registry, error) {
	return Load(embedded.CatalogYAML)
}

// Style returns the style with the given id or ErrStyleNotFound
func (r *Registry) Style(id string) (Style, error) {
	i, ok := r.styleIdx[id]
	if !ok {
		return Style{}, fmt.Errorf("%w: %s", ErrStyleNotFound, id)
	}
	return r.styles[i].clone(), nil
}

// LookupStyle returns the style for display purposes, reporting absence instead of failing
func (r *Registry) LookupStyle(id string) (Style, bool) {
	i, ok := r.styleIdx[id]
	if !ok {
		return Style{}, false
	}
	return r.styles[i].clone(), true
}

// Styles returns every style in catalog order
func (r *Registry) Styles() []Style {
	out := make([]Style, 0, len(r.styles))
	for _, s := range r.styles {
		out = append(out, s.clone())
	}
	return out
}

// StylesByCategory returns the styles in category; empty when none match
func (r *Registry) StylesByCategory(category string) []Style {
	var out []Style
	for _, s := range r.styles {
		if strings.EqualFold(s.Category, category) {
			out = append(out, s.clone())
		}
	}
	return out
}

// SearchStyles matches query case-insensitively against id, name, category and tags
func (r *Registry) SearchStyles(query string) []Style {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []Style
	for _, s := range r.styles {
		if q == "" || styleMatches(s, q) {
			out = append(out, s.clone())
		}
	}
	return out
}

func styleMatches(s Style, q string) bool {
	if strings.Contains(strings.ToLower(s.ID), q) ||
		strings.Contains(strings.ToLower(s.Name), q) ||
		strings.Contains(strings.ToLower(s.Category), q) {
		return true
	}
	return slices.ContainsFunc(s.Tags, func(tag string) bool {
		return strings.Contains(strings.ToLower(tag), q)
	})
}

// DrumPattern returns the pattern with the given id or ErrDrumPatternNotFound
func (r *Registry) DrumPattern(id string) (DrumPattern, error) {
	i, ok := r.patIdx[id]
	if !ok {
		return DrumPattern{}, fmt.Errorf("%w: %s", ErrDrumPatternNotFound, id)
	}
	return r.patterns[i].clone(), nil
}

// DrumPatternsByCategory returns the patterns in category; empty when none match
func (r *Registry) DrumPatternsByCategory(category string) []DrumPattern {
	var out []DrumPattern
	for _, p := range r.patterns {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p.clone())
		}
	}
	return out
}

// DrumPatternsByTag returns the patterns carrying tag; empty when none match
func (r *Registry) DrumPatternsByTag(tag string) []DrumPattern {
	var out []DrumPattern
	for _, p := range r.patterns {
		if slices.ContainsFunc(p.Tags, func(t string) bool { return strings.EqualFold(t, tag) }) {
			out = append(out, p.clone())
		}
	}
	return out
}
