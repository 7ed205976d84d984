package song

import (
	"fmt"

	"github.com/Conceptual-Machines/magda-harmony/internal/catalog"
)

// Template is a named canonical part sequence
type Template string

const (
	TemplatePop  Template = "pop"
	TemplateEDM  Template = "edm"
	TemplateJazz Template = "jazz"
)

// Templates lists the canonical structures in display order
var Templates = []Template{TemplatePop, TemplateEDM, TemplateJazz}

type partSpec struct {
	typ  PartType
	opts []Option
}

func part(typ PartType, opts ...Option) partSpec {
	return partSpec{typ: typ, opts: opts}
}

var templateParts = map[Template][]partSpec{
	TemplatePop: {
		part(Intro),
		part(Verse), part(PreChorus), part(Chorus),
		part(Verse), part(PreChorus), part(Chorus),
		part(Bridge),
		part(Chorus, WithEnergy(MaxEnergy), WithVariation(VariationD)),
		part(Outro),
	},
	TemplateEDM: {
		part(Intro, WithLength(8)),
		part(Buildup),
		part(Drop),
		part(Breakdown),
		part(Buildup),
		part(Drop),
		part(Outro, WithLength(8)),
	},
	// 32-bar AABA head, a solo chorus, the last A, then a tag
	TemplateJazz: {
		part(Verse, WithName("A"), WithEnergy(3)),
		part(Verse, WithName("A"), WithEnergy(3)),
		part(Bridge, WithName("B")),
		part(Verse, WithName("A"), WithEnergy(3)),
		part(Solo, WithLength(32)),
		part(Verse, WithName("A"), WithEnergy(3)),
		part(Outro),
	},
}

// Build assembles the named template using the tempo and key of a catalog style. An unknown
// style id is an error; an unknown template falls back to pop.
func Build(reg *catalog.Registry, template Template, styleID string) (SongStructure, error) {
	style, err := reg.Style(styleID)
	if err != nil {
		return SongStructure{}, fmt.Errorf("failed to build %s structure: %w", template, err)
	}
	specs, ok := templateParts[template]
	if !ok {
		template = TemplatePop
		specs = templateParts[TemplatePop]
	}

	counts := map[PartType]int{}
	parts := make([]SongPart, 0, len(specs))
	for _, ps := range specs {
		counts[ps.typ]++
		parts = append(parts, CreateSongPart(ps.typ, counts[ps.typ], ps.opts...))
	}

	name := fmt.Sprintf("%s %s", style.Name, templateTitle[template])
	return NewSongStructure(name, style.Key, style.Tempo.Default, style.ID, parts), nil
}

var templateTitle = map[Template]string{
	TemplatePop:  "Song",
	TemplateEDM:  "Track",
	TemplateJazz: "AABA",
}

// BuildPop returns intro, two verse/pre-chorus/chorus rounds, bridge, final chorus and outro
func BuildPop(reg *catalog.Registry, styleID string) (SongStructure, error) {
	return Build(reg, TemplatePop, styleID)
}

// BuildEDM returns intro, buildup, drop, breakdown, buildup, drop and outro
func BuildEDM(reg *catalog.Registry, styleID string) (SongStructure, error) {
	return Build(reg, TemplateEDM, styleID)
}

// BuildJazzAABA returns an AABA head with a solo section before the last A
func BuildJazzAABA(reg *catalog.Registry, styleID string) (SongStructure, error) {
	return Build(reg, TemplateJazz, styleID)
}
