package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/proposal-engine/internal/api"
	"github.com/ziadkadry99/proposal-engine/internal/progress"
	"github.com/ziadkadry99/proposal-engine/internal/session"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the proposal as one self-contained HTML file",
	Long: `Renders the enabled pages with the given fields and colours, inlines every
local image as a data URL, appends attachment pages and removes all editing
markers. Fields left empty fall back to the config defaults.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringP("output", "o", "proposal.html", "output file, - for stdout")
	exportCmd.Flags().String("recipient", "", "receiving organisation")
	exportCmd.Flags().String("proposer", "", "proposing organisation")
	exportCmd.Flags().String("tel", "", "contact phone number")
	exportCmd.Flags().String("email", "", "contact email (defaults to the configured email)")
	exportCmd.Flags().Bool("no-email", false, "remove the email line")
	exportCmd.Flags().String("primary", "", "primary theme colour (#rrggbb)")
	exportCmd.Flags().String("accent", "", "accent theme colour (#rrggbb)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	f := session.Fields{}
	f.Recipient, _ = cmd.Flags().GetString("recipient")
	f.Proposer, _ = cmd.Flags().GetString("proposer")
	f.Tel, _ = cmd.Flags().GetString("tel")
	f.Email, _ = cmd.Flags().GetString("email")
	f.NoEmail, _ = cmd.Flags().GetBool("no-email")
	f.Primary, _ = cmd.Flags().GetString("primary")
	f.Accent, _ = cmd.Flags().GetString("accent")

	return withWorkspace(cmd, func(w *localWorkspace) error {
		var reporter session.Reporter
		if output != "-" {
			reporter = progress.NewReporter("Exporting proposal")
		}
		out, err := w.engine.Export(api.MergeFields(f, w.cfg.Fields()), reporter)
		if err != nil {
			return fmt.Errorf("exporting: %w", err)
		}
		for _, warn := range out.Warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", warn)
		}

		if output == "-" {
			_, err := os.Stdout.WriteString(out.HTML)
			return err
		}
		if err := atomic.WriteFile(output, bytes.NewReader([]byte(out.HTML))); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}
		fmt.Fprintf(os.Stderr, "Exported %s (%d bytes)\n", output, len(out.HTML))
		return nil
	})
}
