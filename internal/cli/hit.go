package cli

import (
	"encoding/json"
	"fmt"

	"github.com/ashureev/keyrelay/internal/hittest"
	"github.com/spf13/cobra"
)

func newHitCmd() *cobra.Command {
	var (
		x, y       float64
		widths     string
		stripWidth float64
		asJSON     bool
		lf         layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "hit",
		Short: "Resolve one cursor position to a key or suggestion",
		RunE: func(cmd *cobra.Command, _ []string) error {
			geometry, err := lf.resolve()
			if err != nil {
				return err
			}
			w, err := parseWidths(widths)
			if err != nil {
				return err
			}

			board := hittest.Board{Geometry: geometry}
			if cmd.Flags().Changed("suggestions") {
				board.Suggestions = true
				board.Measurer = hittest.FixedWidths{Widths: w, Strip: stripWidth}
			}
			t := board.Resolve(x, y)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{
					"kind":   t.Kind.String(),
					"row":    t.Row,
					"column": t.Column,
					"token":  t.Token,
				})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), describe(t))
			return err
		},
	}

	cmd.Flags().Float64Var(&x, "x", 0, "horizontal position, percent of keyboard width")
	cmd.Flags().Float64Var(&y, "y", 0, "vertical position, percent of keyboard height")
	cmd.Flags().StringVar(&widths, "suggestions", "", "show the suggestion strip with these comma-separated pixel widths")
	cmd.Flags().Float64Var(&stripWidth, "strip-width", hittest.DefaultStripWidth, "suggestion strip width in pixels")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the target as JSON")
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("y")
	lf.bind(cmd)

	return cmd
}
