package song

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/Conceptual-Machines/magda-harmony/internal/mathx"
)

// PartType is the structural role of a song part
type PartType string

const (
	Intro     PartType = "intro"
	Verse     PartType = "verse"
	PreChorus PartType = "pre-chorus"
	Chorus    PartType = "chorus"
	Bridge    PartType = "bridge"
	Breakdown PartType = "breakdown"
	Buildup   PartType = "buildup"
	Drop      PartType = "drop"
	Solo      PartType = "solo"
	Outro     PartType = "outro"
	Interlude PartType = "interlude"
)

// Energy bounds of a part
const (
	MinEnergy = 1
	MaxEnergy = 5
)

// Variation indexes, A through D
const (
	VariationA = iota
	VariationB
	VariationC
	VariationD
)

type partDefaults struct {
	bars      int
	energy    int
	variation int
}

var defaults = map[PartType]partDefaults{
	Intro:     {bars: 4, energy: 1, variation: VariationA},
	Verse:     {bars: 8, energy: 2, variation: VariationA},
	PreChorus: {bars: 4, energy: 3, variation: VariationB},
	Chorus:    {bars: 8, energy: 4, variation: VariationC},
	Bridge:    {bars: 8, energy: 3, variation: VariationB},
	Breakdown: {bars: 8, energy: 2, variation: VariationB},
	Buildup:   {bars: 4, energy: 4, variation: VariationC},
	Drop:      {bars: 16, energy: 5, variation: VariationD},
	Solo:      {bars: 16, energy: 4, variation: VariationC},
	Outro:     {bars: 4, energy: 2, variation: VariationA},
	Interlude: {bars: 4, energy: 2, variation: VariationB},
}

// fallback for part types without an entry in the defaults table
var otherDefaults = partDefaults{bars: 8, energy: 3, variation: VariationA}

// SongPart is one section of a song
type SongPart struct {
	ID             string   `json:"id"`
	Type           PartType `json:"type"`
	Number         int      `json:"number"`
	Name           string   `json:"name"`
	LengthBars     int      `json:"lengthBars"`
	VariationIndex int      `json:"variationIndex"`
	Energy         int      `json:"energy"`
}

// Option overrides a default of CreateSongPart
type Option func(p *SongPart)

// WithLength sets the part length in bars (at least 1)
func WithLength(bars int) Option {
	return func(p *SongPart) {
		p.LengthBars = max(bars, 1)
	}
}

// WithEnergy sets the part energy, clamped to 1-5
func WithEnergy(energy int) Option {
	return func(p *SongPart) {
		p.Energy = mathx.Clamp(energy, MinEnergy, MaxEnergy)
	}
}

// WithVariation sets the style variation index
func WithVariation(index int) Option {
	return func(p *SongPart) {
		p.VariationIndex = max(index, 0)
	}
}

// WithName replaces the generated display name
func WithName(name string) Option {
	return func(p *SongPart) {
		p.Name = name
	}
}

// CreateSongPart builds a part from the per-type defaults, then applies overrides
func CreateSongPart(partType PartType, number int, opts ...Option) SongPart {
	d, ok := defaults[partType]
	if !ok {
		d = otherDefaults
	}
	p := SongPart{
		ID:             uuid.NewString(),
		Type:           partType,
		Number:         number,
		Name:           DisplayName(partType, number),
		LengthBars:     d.bars,
		VariationIndex: d.variation,
		Energy:         d.energy,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// DisplayName formats a part type and ordinal, e.g. "Pre-Chorus 2"
func DisplayName(partType PartType, number int) string {
	words := strings.Split(string(partType), "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	name := strings.Join(words, "-")
	if number <= 0 {
		return name
	}
	return fmt.Sprintf("%s %d", name, number)
}

// SongStructure is an ordered list of parts. TotalBars always equals the sum of part lengths;
// the With* methods return new values and never modify the receiver.
type SongStructure struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Key       string     `json:"key"`
	Tempo     int        `json:"tempo"`
	StyleID   string     `json:"styleId"`
	Parts     []SongPart `json:"parts"`
	TotalBars int        `json:"totalBars"`
}

// NewSongStructure assembles a structure and computes its length
func NewSongStructure(name, key string, tempo int, styleID string, parts []SongPart) SongStructure {
	return SongStructure{
		ID:      uuid.NewString(),
		Name:    name,
		Key:     key,
		Tempo:   tempo,
		StyleID: styleID,
	}.WithParts(parts)
}

// Clone returns a copy that shares no slices with s
func (s SongStructure) Clone() SongStructure {
	s.Parts = slices.Clone(s.Parts)
	return s
}

// WithParts replaces the part list and recomputes TotalBars. Parts are at least one bar long.
func (s SongStructure) WithParts(parts []SongPart) SongStructure {
	s.Parts = slices.Clone(parts)
	s.TotalBars = 0
	for i := range s.Parts {
		s.Parts[i].LengthBars = max(s.Parts[i].LengthBars, 1)
		s.TotalBars += s.Parts[i].LengthBars
	}
	return s
}

// Len returns the number of parts
func (s SongStructure) Len() int {
	return len(s.Parts)
}

// Part returns the part at index
func (s SongStructure) Part(index int) (SongPart, bool) {
	if index < 0 || index >= len(s.Parts) {
		return SongPart{}, false
	}
	return s.Parts[index], true
}

// StartBar returns the bar at which the part at index begins
func (s SongStructure) StartBar(index int) int {
	bar := 0
	for i := 0; i < index && i < len(s.Parts); i++ {
		bar += s.Parts[i].LengthBars
	}
	return bar
}

// PartAtBar returns the index of the part containing bar, or false past the end
func (s SongStructure) PartAtBar(bar int) (int, bool) {
	if bar < 0 {
		return 0, false
	}
	start := 0
	for i, p := range s.Parts {
		if bar < start+p.LengthBars {
			return i, true
		}
		start += p.LengthBars
	}
	return 0, false
}

// WithPartInserted inserts p at index (clamped to the valid range)
func (s SongStructure) WithPartInserted(index int, p SongPart) SongStructure {
	index = mathx.Clamp(index, 0, len(s.Parts))
	p.LengthBars = max(p.LengthBars, 1)
	return s.WithParts(slices.Insert(slices.Clone(s.Parts), index, p))
}

// WithPartRemoved removes the part at index. It refuses to remove the last remaining part
// or an index out of range, returning s and false.
func (s SongStructure) WithPartRemoved(index int) (SongStructure, bool) {
	if len(s.Parts) <= 1 || index < 0 || index >= len(s.Parts) {
		return s, false
	}
	return s.WithParts(slices.Delete(slices.Clone(s.Parts), index, index+1)), true
}

// WithPartDuplicated inserts a copy of the part at index right after it, with a new id
func (s SongStructure) WithPartDuplicated(index int) (SongStructure, bool) {
	p, ok := s.Part(index)
	if !ok {
		return s, false
	}
	p.ID = uuid.NewString()
	return s.WithPartInserted(index+1, p), true
}

// WithPartUpdated replaces the part at index. The id is kept, length and energy are clamped.
func (s SongStructure) WithPartUpdated(index int, p SongPart) (SongStructure, bool) {
	old, ok := s.Part(index)
	if !ok {
		return s, false
	}
	p.ID = old.ID
	p.LengthBars = max(p.LengthBars, 1)
	p.Energy = mathx.Clamp(p.Energy, MinEnergy, MaxEnergy)
	p.VariationIndex = max(p.VariationIndex, 0)
	parts := slices.Clone(s.Parts)
	parts[index] = p
	return s.WithParts(parts), true
}

// WithPartMoved moves the part at from so that it ends up at index to
func (s SongStructure) WithPartMoved(from, to int) (SongStructure, bool) {
	p, ok := s.Part(from)
	if !ok || to < 0 || to >= len(s.Parts) || from == to {
		return s, false
	}
	parts := slices.Delete(slices.Clone(s.Parts), from, from+1)
	return s.WithParts(slices.Insert(parts, to, p)), true
}
