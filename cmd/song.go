package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Conceptual-Machines/magda-harmony/internal/scene"
	"github.com/Conceptual-Machines/magda-harmony/internal/song"
)

func newSongCmd(a *app) *cobra.Command {
	var (
		template string
		styleID  string
		part     int
		zoom     float64
	)
	cmd := &cobra.Command{
		Use:     "song",
		Short:   "Builds a song structure from a template and draws its timeline",
		Example: `  magda-harmony song --template edm --style edm-house --part 2`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := song.Build(a.eng.Registry(), song.Template(template), styleID)
			if err != nil {
				return err
			}
			v, s := scene.Reduce(scene.NewView(), s, scene.JumpToPart{Index: part})
			v, s = scene.Reduce(v, s, scene.SetZoom{Zoom: zoom})

			mini, err := scene.MiniView(v, s)
			if err != nil {
				return err
			}
			timeline, err := scene.Timeline(v, s)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, timeline)
			fmt.Fprintln(out)
			fmt.Fprintln(out, mini)
			fmt.Fprintln(out)
			for i, p := range s.Parts {
				fmt.Fprintf(out, "%2d  %-12s bar %3d  %2d bars  energy %d  variation %c\n",
					i, p.Name, s.StartBar(i)+1, p.LengthBars, p.Energy, 'A'+rune(p.VariationIndex))
			}
			return nil
		},
	}
	names := make([]string, len(song.Templates))
	for i, t := range song.Templates {
		names[i] = string(t)
	}
	cmd.Flags().StringVar(&template, "template", string(song.TemplatePop), "song template: "+strings.Join(names, ", "))
	cmd.Flags().StringVar(&styleID, "style", "", "style id (defaults to the configured style)")
	cmd.Flags().IntVar(&part, "part", 0, "part index to place the cursor on")
	cmd.Flags().Float64Var(&zoom, "zoom", scene.DefaultZoom, "timeline zoom")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		if styleID == "" {
			styleID = a.cfg.DefaultStyle
		}
	}
	return cmd
}
