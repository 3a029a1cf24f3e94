package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kerala-navigator/navigator/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize navigator configuration with an interactive wizard",
	Long:  `Runs an interactive wizard for ports, provider keys and storage, and writes the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
