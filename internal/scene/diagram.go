package scene

import (
	"bytes"
	"fmt"
	"math"
	"text/template"

	"github.com/Masterminds/sprig"

	"github.com/Conceptual-Machines/magda-harmony/internal/models"
	"github.com/Conceptual-Machines/magda-harmony/internal/song"
)

const miniViewTemplate = `
{{- range $i, $p := .Parts -}}
{{ if $i }} {{ end }}{{ if eq $i $.Current }}[>{{ $p.Name }}<]{{ else }}[{{ $p.Name }}]{{ end }}
{{- end -}}
`

const timelineTemplate = `
{{- .Name }} | {{ .Key }} | {{ .Tempo }} bpm | {{ .TotalBars }} bars | loop {{ .LoopMode }}
{{ range .Blocks }}[{{ $label := trunc .Inner .Name }}{{ $label }}{{ repeat (sub .Inner (len $label) | int) "=" }}]{{ end }}
{{ repeat .Marker " " }}^`

var (
	miniView = template.Must(template.New("mini").Funcs(sprig.TxtFuncMap()).Parse(miniViewTemplate))
	timeline = template.Must(template.New("timeline").Funcs(sprig.TxtFuncMap()).Parse(timelineTemplate))
)

// MiniView renders the parts on one line with the current part marked as [>Name<]
func MiniView(v View, s song.SongStructure) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Parts   []song.SongPart
		Current int
	}{Parts: s.Parts, Current: v.CurrentPartIndex}
	if err := miniView.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render mini view: %w", err)
	}
	return buf.String(), nil
}

type timelineBlock struct {
	Name  string
	Inner int
}

// Timeline renders the song as bar-proportional blocks with a single ^ under the cursor.
// At zoom 1 each bar takes two columns.
func Timeline(v View, s song.SongStructure) (string, error) {
	perBar := 2 * max(v.Zoom, MinZoom)
	blocks := make([]timelineBlock, 0, s.Len())
	marker := 0
	col := 0
	for i, p := range s.Parts {
		width := max(int(math.Round(float64(p.LengthBars)*perBar)), 3)
		if i == v.CurrentPartIndex {
			frac := 0.0
			if ticks := partTicks(p); ticks > 0 {
				frac = math.Min(float64(v.PositionInPart)/float64(ticks), 1)
			}
			marker = col + min(int(frac*float64(width)), width-1)
		}
		blocks = append(blocks, timelineBlock{Name: p.Name, Inner: width - 2})
		col += width
	}

	data := struct {
		Name      string
		Key       string
		Tempo     int
		TotalBars int
		LoopMode  LoopMode
		Blocks    []timelineBlock
		Marker    int
	}{s.Name, s.Key, s.Tempo, s.TotalBars, v.LoopMode, blocks, marker}

	var buf bytes.Buffer
	if err := timeline.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render timeline: %w", err)
	}
	return buf.String(), nil
}

// BarAt returns the 1-based song bar under the cursor, as shown in transport displays
func BarAt(v View, s song.SongStructure) int {
	return v.SongPositionTicks(s)/models.TicksPerBar + 1
}
