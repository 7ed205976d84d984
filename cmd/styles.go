package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Conceptual-Machines/magda-harmony/internal/catalog"
)

func newStylesCmd(a *app) *cobra.Command {
	var (
		category string
		search   string
	)
	cmd := &cobra.Command{
		Use:   "styles",
		Short: "Lists the styles in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := a.eng.Registry()
			var styles []catalog.Style
			switch {
			case search != "":
				styles = reg.SearchStyles(search)
			case category != "":
				styles = reg.StylesByCategory(category)
			default:
				styles = reg.Styles()
			}
			out := cmd.OutOrStdout()
			if len(styles) == 0 {
				fmt.Fprintln(out, "no styles")
				return nil
			}
			for _, s := range styles {
				variations := make([]string, len(s.Variations))
				for i, v := range s.Variations {
					variations[i] = v.Name
				}
				fmt.Fprintf(out, "%-12s %-14s %-5s %3d bpm  key %-3s variations %s\n",
					s.ID, s.Name, s.Category, s.Tempo.Default, s.Key, strings.Join(variations, ""))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only list styles of this category")
	cmd.Flags().StringVar(&search, "search", "", "match id, name or tag")
	return cmd
}
