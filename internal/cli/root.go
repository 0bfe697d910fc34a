// Package cli implements the keyrelay command tree.
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ashureev/keyrelay/internal/layout"
	"github.com/spf13/cobra"
)

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "keyrelay",
		Short:         "Relay a remote pointer device to an on-screen keyboard",
		Long:          "keyrelay pairs one remote pointer device with one keyboard interface, relays cursor events between them, and logs timed text-entry sessions.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newProbeCmd(),
		newHitCmd(),
		newLayoutCmd(),
	)

	return rootCmd
}

// layoutFlags binds the flags shared by every command that needs a layout.
type layoutFlags struct {
	name string
	file string
}

func (f *layoutFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "layout", layout.Simplified, "built-in layout name (simplified, standard)")
	cmd.Flags().StringVar(&f.file, "layout-file", "", "YAML layout file; overrides --layout")
}

func (f *layoutFlags) resolve() (*layout.Geometry, error) {
	g, err := layout.Resolve(f.name, f.file)
	if err != nil {
		return nil, fmt.Errorf("load layout: %w", err)
	}
	return g, nil
}

// parseWidths parses a comma-separated list of suggestion pixel widths.
func parseWidths(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("invalid suggestion width %q", p)
		}
		out = append(out, v)
	}
	return out, nil
}
