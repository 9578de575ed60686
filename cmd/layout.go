package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/proposal-engine/internal/settings"
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Show and change the layout settings",
}

var layoutShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the layout settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(w *localWorkspace) error {
			values := w.engine.Layout()
			for _, lv := range settings.LayoutVars {
				fmt.Printf("%-24s %d%s\n", lv.Key, values[lv.Key], lv.Unit)
			}
			return nil
		})
	},
}

var layoutSetCmd = &cobra.Command{
	Use:   "set <key>=<value>...",
	Short: "Change layout settings",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		values := make(map[string]int, len(args))
		for _, a := range args {
			k, v, ok := strings.Cut(a, "=")
			if !ok {
				return fmt.Errorf("expected key=value, got %q", a)
			}
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("value of %s must be an integer", k)
			}
			values[strings.TrimSpace(k)] = n
		}
		return withWorkspace(cmd, func(w *localWorkspace) error {
			return w.engine.SetLayout(values)
		})
	},
}

func init() {
	layoutCmd.AddCommand(layoutShowCmd, layoutSetCmd)
	rootCmd.AddCommand(layoutCmd)
}
