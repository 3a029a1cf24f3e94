package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kerala-navigator/navigator/internal/catalog"
	mcpserver "github.com/kerala-navigator/navigator/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing the navigator's question answering and service catalog as tools.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(context.Background(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		var services catalog.Source = catalog.NewLocal(catalog.LocalServices())
		if a.services != nil {
			services = a.services
		}

		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "navigator MCP server started on stdio (store=%s)\n", cfg.Store.Path)

		return mcpserver.NewServer(a.resolver, services).Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
