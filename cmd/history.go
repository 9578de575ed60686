package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/proposal-engine/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the edit history of the workspace",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 50, "maximum number of edits")
	historyCmd.Flags().String("action", "", "only show edits of this action, e.g. block_save")
	historyCmd.Flags().Duration("since", 0, "only show edits newer than this, e.g. 24h")
	historyCmd.Flags().Duration("prune", 0, "delete edits older than this instead of listing")
	historyCmd.Flags().Bool("json", false, "output edits as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	action, _ := cmd.Flags().GetString("action")
	since, _ := cmd.Flags().GetDuration("since")
	prune, _ := cmd.Flags().GetDuration("prune")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	return withWorkspace(cmd, func(w *localWorkspace) error {
		ctx := cmd.Context()
		if prune > 0 {
			n, err := w.history.DeleteBefore(ctx, time.Now().Add(-prune))
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Deleted %d edit(s)\n", n)
			return nil
		}

		filter := history.Filter{SessionID: localSession, Action: action, Limit: limit}
		if since > 0 {
			t := time.Now().Add(-since)
			filter.Since = &t
		}
		edits, err := w.history.List(ctx, filter)
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(edits)
		}
		if len(edits) == 0 {
			fmt.Fprintln(os.Stderr, "No edits recorded.")
			return nil
		}
		for _, e := range edits {
			fmt.Printf("%s  %-18s %-20s %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Action, e.Target, e.Detail)
		}
		return nil
	})
}
