package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kerala-navigator/navigator/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "navigator",
	Short: "Bilingual assistant for Kerala government services",
	Long: `Navigator answers citizen questions about Kerala government services in
English and Malayalam. Questions are matched against curated life-event
checklists and service records first; anything else is answered by a chain
of generative providers behind a quality gate.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadDotEnv(".env")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
