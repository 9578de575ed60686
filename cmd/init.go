package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/proposal-engine/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize proposal configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the template, default fields and page extraction, and generates a .proposal.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
