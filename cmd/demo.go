package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"

	"github.com/Conceptual-Machines/magda-harmony/internal/accompaniment"
	"github.com/Conceptual-Machines/magda-harmony/internal/arranger"
	"github.com/Conceptual-Machines/magda-harmony/internal/control"
	"github.com/Conceptual-Machines/magda-harmony/internal/engine"
	"github.com/Conceptual-Machines/magda-harmony/internal/harmony/chord"
	"github.com/Conceptual-Machines/magda-harmony/internal/harmony/voicing"
	"github.com/Conceptual-Machines/magda-harmony/internal/live"
	"github.com/Conceptual-Machines/magda-harmony/internal/models"
	"github.com/Conceptual-Machines/magda-harmony/internal/session"
	"github.com/Conceptual-Machines/magda-harmony/internal/song"
)

type demoOptions struct {
	template   string
	styleID    string
	chords     []string
	bars       int
	forcedBass int
	fills      bool
	ending     string
	out        string
}

func newDemoCmd(a *app) *cobra.Command {
	opts := demoOptions{}
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Plays a chord loop through a song and renders the accompaniment",
		Long: `demo builds a song from a template, loops the given chords one per bar, and
renders each bar through the arranger. Parts advance automatically; a fill is
queued on the last bar of every part. With --out the result is written as a
standard MIDI file.`,
		Example: `  magda-harmony demo --style jazz-swing --template jazz --chords Dm7,G7,Cmaj7,Cmaj7
  magda-harmony demo --bars 0 --ending ritardando --out song.mid`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.styleID == "" {
				opts.styleID = a.cfg.DefaultStyle
			}
			return runDemo(cmd, a, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.template, "template", string(song.TemplatePop), "song template")
	f.StringVar(&opts.styleID, "style", "", "style id (defaults to the configured style)")
	f.StringSliceVar(&opts.chords, "chords", []string{"C", "Am", "F", "G"}, "chord loop, one chord per bar")
	f.IntVar(&opts.bars, "bars", 16, "bars to render; 0 plays the whole song")
	f.IntVar(&opts.forcedBass, "bass", control.NoBassNote, "force a bass note (MIDI number)")
	f.BoolVar(&opts.fills, "fills", true, "queue a fill at the end of each part")
	f.StringVar(&opts.ending, "ending", "", "append an ending: fermata, ritardando, cadence, stinger")
	f.StringVar(&opts.out, "out", "", "write a MIDI file")
	return cmd
}

func runDemo(cmd *cobra.Command, a *app, opts demoOptions) error {
	ctx := context.Background()
	eng := a.eng
	out := cmd.OutOrStdout()

	progression, err := parseChords(opts.chords)
	if err != nil {
		return err
	}
	if len(progression) == 0 {
		return fmt.Errorf("no chords given")
	}

	s, err := eng.NewSession(ctx, song.Template(opts.template), opts.styleID)
	if err != nil {
		return err
	}
	ctrl := control.New().WithForcedBassNote(opts.forcedBass)
	s = eng.ApplyControl(s, ctrl)
	s = eng.Dispatch(ctx, s, session.ArrangerCmd{Cmd: arranger.Play{}})

	bars := opts.bars
	if bars <= 0 {
		bars = s.Song.TotalBars
	}

	var (
		notes []models.NoteEvent
		drums []models.DrumEvent
		prev  *voicing.FourPart
	)
	// the loop is played into a held-note tracker the way a keyboard would
	keys := live.NewTracker(-1)
	var held []int
	for bar := 0; bar < bars && s.Arranger.IsPlaying; bar++ {
		c := progression[bar%len(progression)]
		for _, n := range held {
			s = eng.HandleMIDI(s, ctrl, keys, midi.NoteOff(0, uint8(n)))
		}
		held = chord.Voicing(c, 2)
		for _, n := range held {
			s = eng.HandleMIDI(s, ctrl, keys, midi.NoteOn(0, uint8(n), 100))
		}

		part, _ := s.CurrentPart()
		if opts.fills && s.Scene.PositionInPart+models.TicksPerBar >= part.LengthBars*models.TicksPerBar {
			s = eng.Dispatch(ctx, s, session.ArrangerCmd{Cmd: arranger.TriggerFill{}})
		}

		var frame engine.Frame
		frame, s, err = eng.Render(ctx, engine.RenderRequest{Session: s, Control: &ctrl, Previous: prev})
		if err != nil {
			return err
		}
		prev = frame.Voicing
		notes = append(notes, frame.Notes...)
		drums = append(drums, frame.Drums...)

		symbol := "-"
		for _, ce := range frame.Chords {
			symbol = ce.ChordSymbol
		}
		fill := ""
		if frame.Fill {
			fill = "fill"
		}
		fmt.Fprintf(out, "bar %3d  %-12s %-8s energy %d  notes %3d  drums %3d  %s\n",
			bar+1, part.Name, symbol, s.Arranger.Energy, len(frame.Notes), len(frame.Drums), fill)

		s = eng.Dispatch(ctx, s, session.Tick{Ticks: models.TicksPerBar})
	}

	if opts.ending != "" {
		ending, err := eng.RenderEnding(ctx, s, accompaniment.EndingType(opts.ending))
		if err != nil {
			return err
		}
		notes = append(notes, ending.Notes...)
		drums = append(drums, ending.Drums...)
		fmt.Fprintf(out, "ending   %-12s %d bars\n", opts.ending, (ending.LengthTicks+models.TicksPerBar-1)/models.TicksPerBar)
	}

	msgs := live.ToMessages(notes, drums)
	length := 0
	if len(msgs) > 0 {
		length = msgs[len(msgs)-1].Tick
	}
	fmt.Fprintf(out, "%d events, %s at %d bpm\n",
		len(msgs), (time.Duration(length) * live.TickDuration(s.Arranger.Tempo)).Round(time.Millisecond), s.Arranger.Tempo)

	if opts.out != "" {
		if err := live.WriteSMF(opts.out, s.Arranger.Tempo, msgs); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", opts.out)
	}
	return nil
}
