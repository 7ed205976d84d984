package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Conceptual-Machines/magda-harmony/internal/harmony/chord"
	"github.com/Conceptual-Machines/magda-harmony/internal/harmony/transform"
	"github.com/Conceptual-Machines/magda-harmony/internal/harmony/voicing"
)

func newRecognizeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "recognize NOTE...",
		Short: "Names the chord formed by MIDI note numbers",
		Example: `  magda-harmony recognize 43 47 50 53
  magda-harmony recognize 64 60 67`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			notes, err := parseNotes(args)
			if err != nil {
				return err
			}
			c, ok := a.eng.Recognize(notes)
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "no chord")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\troot=%s quality=%s tension=%.2f\n",
				c.Symbol(), chord.PitchName(c.Root), c.Quality, transform.CalculateTension(c))
			return nil
		},
	}
}

func newVoiceleadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "voicelead CHORD...",
		Short:   "Voices a progression in four parts with smooth voice leading",
		Example: `  magda-harmony voicelead C Am F G7 C`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chords, err := parseChords(args)
			if err != nil {
				return err
			}
			var prev *voicing.FourPart
			for _, c := range chords {
				v := voicing.Apply(prev, c, a.eng.VoicingConfig())
				moved := 0
				if prev != nil {
					moved = v.TotalMovement(*prev)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s S=%-4s A=%-4s T=%-4s B=%-4s moved=%d\n",
					c.Symbol(),
					chord.NoteName(v.Soprano), chord.NoteName(v.Alto),
					chord.NoteName(v.Tenor), chord.NoteName(v.Bass), moved)
				prev = &v
			}
			return nil
		},
	}
}

func newReharmCmd(a *app) *cobra.Command {
	var (
		kind    string
		tension float64
		chain   bool
	)
	cmd := &cobra.Command{
		Use:   "reharm CHORD...",
		Short: "Substitutes, colours or resolves chords",
		Example: `  magda-harmony reharm --sub tritone G7
  magda-harmony reharm --tension 0.6 C
  magda-harmony reharm --chain Gsus4`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chords, err := parseChords(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, c := range chords {
				var steps []chord.Chord
				switch {
				case chain:
					steps = transform.ResolveChain(c)
				case tension >= 0:
					steps = []chord.Chord{transform.AdjustTension(c, tension).Chord}
				default:
					steps = []chord.Chord{transform.Substitute(c, transform.SubstitutionType(kind)).Chord}
				}
				symbols := []string{c.Symbol()}
				for _, s := range steps {
					symbols = append(symbols, s.Symbol())
				}
				fmt.Fprintln(out, strings.Join(symbols, " -> "))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "sub", string(transform.Tritone), "substitution: tritone, relative, secondary, diminished, extended, simplified")
	cmd.Flags().Float64Var(&tension, "tension", -1, "adjust towards a tension target in [0, 1] instead of substituting")
	cmd.Flags().BoolVar(&chain, "chain", false, "print the resolution chain instead of substituting")
	return cmd
}

func parseNotes(args []string) ([]int, error) {
	notes := make([]int, 0, len(args))
	for _, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 || n > 127 {
			return nil, fmt.Errorf("invalid MIDI note %q", arg)
		}
		notes = append(notes, n)
	}
	return notes, nil
}

func parseChords(args []string) ([]chord.Chord, error) {
	var chords []chord.Chord
	for _, arg := range args {
		// accept "C,Am,F" as well as separate arguments
		for _, symbol := range strings.Split(arg, ",") {
			if strings.TrimSpace(symbol) == "" {
				continue
			}
			c, err := chord.Parse(symbol)
			if err != nil {
				return nil, err
			}
			chords = append(chords, c)
		}
	}
	return chords, nil
}
