package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Read and replace numbered tables",
}

var tableListCmd = &cobra.Command{
	Use:   "list",
	Short: "List table numbers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(w *localWorkspace) error {
			nums, err := w.engine.Tables()
			if err != nil {
				return err
			}
			for _, n := range nums {
				fmt.Println(n)
			}
			return nil
		})
	},
}

func parseTable(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid table number %q", s)
	}
	return n, nil
}

var tableGetCmd = &cobra.Command{
	Use:   "get <n>",
	Short: "Print the HTML of a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := parseTable(args[0])
		if err != nil {
			return err
		}
		return withWorkspace(cmd, func(w *localWorkspace) error {
			html, err := w.engine.Table(n)
			if err != nil {
				return err
			}
			fmt.Println(html)
			return nil
		})
	},
}

var tableSetCmd = &cobra.Command{
	Use:   "set <n> <file>",
	Short: "Replace a table with HTML read from a file (- for stdin)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := parseTable(args[0])
		if err != nil {
			return err
		}
		data, err := readInput(args[1])
		if err != nil {
			return err
		}
		return withWorkspace(cmd, func(w *localWorkspace) error {
			return w.engine.SetTable(n, string(data))
		})
	},
}

var iconCmd = &cobra.Command{
	Use:   "icon",
	Short: "Read and replace icon groups",
}

var iconListCmd = &cobra.Command{
	Use:   "list",
	Short: "List icon group keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(w *localWorkspace) error {
			keys, err := w.engine.IconGroups()
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Println(k)
			}
			return nil
		})
	},
}

var iconGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the HTML of an icon group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(w *localWorkspace) error {
			html, err := w.engine.IconGroup(args[0])
			if err != nil {
				return err
			}
			fmt.Println(html)
			return nil
		})
	},
}

var iconSetCmd = &cobra.Command{
	Use:   "set <key> <file>",
	Short: "Replace an icon group with HTML read from a file (- for stdin)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(args[1])
		if err != nil {
			return err
		}
		return withWorkspace(cmd, func(w *localWorkspace) error {
			return w.engine.SetIconGroup(args[0], string(data))
		})
	},
}

func init() {
	tableCmd.AddCommand(tableListCmd, tableGetCmd, tableSetCmd)
	iconCmd.AddCommand(iconListCmd, iconGetCmd, iconSetCmd)
	rootCmd.AddCommand(tableCmd, iconCmd)
}
