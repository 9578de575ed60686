package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var pageCmd = &cobra.Command{
	Use:   "page",
	Short: "List and arrange the pages of the proposal",
}

var pageListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pages with their enabled state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(w *localWorkspace) error {
			pages, err := w.engine.Pages()
			if err != nil {
				return err
			}
			for _, p := range pages {
				mark := "x"
				if !p.Enabled {
					mark = " "
				}
				title := p.Title
				if title == "" {
					title = "(untitled)"
				}
				extra := ""
				if len(p.Tables) > 0 {
					nums := make([]string, len(p.Tables))
					for i, n := range p.Tables {
						nums[i] = fmt.Sprint(n)
					}
					extra = "  tables: " + strings.Join(nums, ",")
				}
				fmt.Printf("%3d [%s] %s (%d blocks)%s\n", p.Index, mark, title, p.Blocks, extra)
			}
			return nil
		})
	},
}

func pageEnableCmd(use string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <index>...",
		Short: fmt.Sprintf("%s pages in the export", strings.ToUpper(use[:1])+use[1:]),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, func(w *localWorkspace) error {
				for _, a := range args {
					i, err := parseIndex(a)
					if err != nil {
						return err
					}
					if err := w.engine.SetPageEnabled(i, enabled); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

var pageMoveCmd = &cobra.Command{
	Use:   "move <index> up|down",
	Short: "Swap a page with its neighbour",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		i, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		var delta int
		switch args[1] {
		case "up":
			delta = -1
		case "down":
			delta = 1
		default:
			return fmt.Errorf("direction must be up or down, got %q", args[1])
		}
		return withWorkspace(cmd, func(w *localWorkspace) error {
			return w.engine.MovePage(i, delta)
		})
	},
}

var pageDuplicateCmd = &cobra.Command{
	Use:   "duplicate <index>",
	Short: "Insert a copy of a page after it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		i, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		return withWorkspace(cmd, func(w *localWorkspace) error {
			return w.engine.DuplicatePage(i)
		})
	},
}

var pageDeleteCmd = &cobra.Command{
	Use:   "delete <index>",
	Short: "Remove a page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		i, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		return withWorkspace(cmd, func(w *localWorkspace) error {
			return w.engine.DeletePage(i)
		})
	},
}

var pageAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Append a page with an empty text block, or rendered from markdown",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mdPath, _ := cmd.Flags().GetString("markdown")
		return withWorkspace(cmd, func(w *localWorkspace) error {
			if mdPath != "" {
				src, err := readInput(mdPath)
				if err != nil {
					return err
				}
				if err := w.engine.AddMarkdownPage(string(src)); err != nil {
					return err
				}
				fmt.Fprintln(os.Stderr, "Added markdown page")
				return nil
			}
			id, err := w.engine.AddPage()
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Added page with block %s\n", id)
			return nil
		})
	},
}

func init() {
	pageAddCmd.Flags().String("markdown", "", "markdown file to render as the page, - for stdin")
	pageCmd.AddCommand(pageListCmd, pageEnableCmd("enable", true), pageEnableCmd("disable", false),
		pageMoveCmd, pageDuplicateCmd, pageDeleteCmd, pageAddCmd)
	rootCmd.AddCommand(pageCmd)
}
