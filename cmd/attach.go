package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/proposal-engine/internal/session"
)

var attachCmd = &cobra.Command{
	Use:   "attach",
	Short: "Manage the image pages appended after the proposal",
}

var attachListCmd = &cobra.Command{
	Use:   "list",
	Short: "List attachment pages in export order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(w *localWorkspace) error {
			paths, err := w.engine.Attachments()
			if err != nil {
				return err
			}
			for i, p := range paths {
				fmt.Printf("%3d %s\n", i+1, p)
			}
			return nil
		})
	},
}

var attachAddCmd = &cobra.Command{
	Use:   "add <file>...",
	Short: "Copy images into the workspace as attachment pages",
	Long:  `Copies each image into the workspace. Files that cannot be read or are not images are reported and skipped.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var files []session.SourceImage
		var failed []string
		for _, a := range args {
			data, err := os.ReadFile(a)
			if err != nil {
				failed = append(failed, fmt.Sprintf("reading %s: %v", a, err))
				continue
			}
			files = append(files, session.SourceImage{Name: filepath.Base(a), Data: data})
		}

		return withWorkspace(cmd, func(w *localWorkspace) error {
			res, err := w.engine.AddAttachments(files)
			if err != nil {
				return err
			}
			for _, name := range res.Added {
				logf("Added %s", name)
			}
			failed = append(failed, res.Failed...)
			for _, f := range failed {
				fmt.Fprintf(os.Stderr, "Failed: %s\n", f)
			}
			fmt.Fprintf(os.Stderr, "Added %d attachment(s)\n", len(res.Added))
			if len(res.Added) == 0 {
				return fmt.Errorf("no attachments added")
			}
			return nil
		})
	},
}

var attachRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove an uploaded attachment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(w *localWorkspace) error {
			return w.engine.RemoveAttachment(args[0])
		})
	},
}

func init() {
	attachCmd.AddCommand(attachListCmd, attachAddCmd, attachRemoveCmd)
	rootCmd.AddCommand(attachCmd)
}
