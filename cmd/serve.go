package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kerala-navigator/navigator/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the navigator HTTP API",
	Long:  `Starts the HTTP API used by the web frontend: /ai for questions, /whisper and /tts for voice, /chats and /todo for stored data, /metrics for Prometheus.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := server.New(server.Config{
			Port:           cfg.Server.Port,
			FrontendURL:    cfg.Server.FrontendURL,
			MaxBodyBytes:   cfg.Server.MaxBodyBytes,
			MaxUploadBytes: cfg.Server.MaxUploadBytes,
		}, a.serverDeps())

		storePath := "disabled"
		if a.database != nil {
			storePath = a.database.Path()
		}
		a.logger.Info("navigator starting",
			zap.String("version", Version),
			zap.Int("port", cfg.Server.Port),
			zap.String("store", storePath),
			zap.String("frontend_url", cfg.Server.FrontendURL),
		)

		// Run drains in-flight requests before returning, so the deferred
		// Close never races a handler writing history.
		return srv.Run(ctx, server.DefaultDrainTimeout)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", server.DefaultPort, "port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
