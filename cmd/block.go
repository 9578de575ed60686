package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var blockCmd = &cobra.Command{
	Use:   "block",
	Short: "Edit the text blocks of pages",
	Long: `Text blocks have a title and a plain-text body: one line per paragraph,
lines starting with "- " become list items.`,
}

var blockListCmd = &cobra.Command{
	Use:   "list <page>",
	Short: "Show the text blocks of a page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		i, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		return withWorkspace(cmd, func(w *localWorkspace) error {
			blocks, err := w.engine.Blocks(i)
			if err != nil {
				return err
			}
			if len(blocks) == 0 {
				fmt.Fprintf(os.Stderr, "Page %d has no text blocks.\n", i)
				return nil
			}
			for n, b := range blocks {
				if n > 0 {
					fmt.Println()
				}
				fmt.Printf("%s  %s\n", b.ID, b.Title)
				fmt.Println(strings.Repeat("-", 40))
				fmt.Println(b.Body)
			}
			return nil
		})
	},
}

var blockSaveCmd = &cobra.Command{
	Use:   "save <id>",
	Short: "Replace the title and body of a text block",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		body, _ := cmd.Flags().GetString("body")
		bodyFile, _ := cmd.Flags().GetString("body-file")
		if bodyFile != "" {
			data, err := readInput(bodyFile)
			if err != nil {
				return err
			}
			body = string(data)
		}

		return withWorkspace(cmd, func(w *localWorkspace) error {
			cur, err := w.engine.Block(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("title") {
				title = cur.Title
			}
			if !cmd.Flags().Changed("body") && bodyFile == "" {
				body = cur.Body
			}
			return w.engine.SaveBlock(args[0], title, body)
		})
	},
}

var blockAddCmd = &cobra.Command{
	Use:   "add <page>",
	Short: "Append a placeholder text block to a page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		i, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		return withWorkspace(cmd, func(w *localWorkspace) error {
			id, err := w.engine.AddBlock(i)
			if err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		})
	},
}

var blockDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a text block",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(w *localWorkspace) error {
			return w.engine.DeleteBlock(args[0])
		})
	},
}

func init() {
	blockSaveCmd.Flags().String("title", "", "new block title")
	blockSaveCmd.Flags().String("body", "", "new body text")
	blockSaveCmd.Flags().String("body-file", "", "read the body from a file, - for stdin")
	blockCmd.AddCommand(blockListCmd, blockSaveCmd, blockAddCmd, blockDeleteCmd)
	rootCmd.AddCommand(blockCmd)
}
