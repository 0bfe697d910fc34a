package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/ashureev/keyrelay/internal/hittest"
	"github.com/spf13/cobra"
)

func newLayoutCmd() *cobra.Command {
	var lf layoutFlags

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print key widths and offsets for a layout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := lf.resolve()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintf(out, "layout %s, %d keys per row\n", g.Name(), g.KeysPerRow()); err != nil {
				return err
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "ROW\tCOL\tKEY\tSTART\tWIDTH")
			for r, row := range g.Rows() {
				widths := hittest.Widths(row, g.KeysPerRow())
				starts := hittest.Starts(row, g.KeysPerRow())
				for c, tok := range row {
					_, _ = fmt.Fprintf(tw, "%d\t%d\t%s\t%.2f\t%.2f\n", r, c, tok, starts[c], widths[c])
				}
			}
			return tw.Flush()
		},
	}

	lf.bind(cmd)
	return cmd
}
