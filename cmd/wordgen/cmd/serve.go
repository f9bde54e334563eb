package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MeKo-Tech/wordgen/internal/config"
	"github.com/MeKo-Tech/wordgen/internal/models"
	"github.com/MeKo-Tech/wordgen/internal/pipeline"
	"github.com/MeKo-Tech/wordgen/internal/server"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for sentence generation",
	Long: `Start an HTTP server that loads one model and generates sentences on request.

The server provides the following endpoints:
  POST /generate     - Run every generation stage (text, json or csv)
  GET  /ws/generate  - Stream beam rounds over a WebSocket
  GET  /model        - Describe the loaded model
  GET  /health       - Health check endpoint
  GET  /metrics      - Prometheus metrics

Examples:
  wordgen serve --model model.txt
  wordgen serve --model model.yaml --port 8080
  wordgen serve --model model.txt --host 0.0.0.0 --rate-limit-enabled`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		serverConfig, shutdownTimeout, err := configToServerConfig(cfg, cmd)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		wordServer, err := server.NewServer(serverConfig)
		if err != nil {
			return fmt.Errorf("failed to initialize server: %w", err)
		}

		mux := http.NewServeMux()
		wordServer.SetupRoutes(mux)

		httpServer := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", serverConfig.Host, serverConfig.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       time.Duration(serverConfig.TimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(serverConfig.TimeoutSec) * time.Second,
		}

		go func() {
			slog.Info("Starting wordgen server",
				"host", serverConfig.Host,
				"port", serverConfig.Port,
				"model", cfg.ModelPath)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Server error", "error", err)
				cancel()
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			slog.Info("Received shutdown signal", "signal", sig.String())
		case <-ctx.Done():
			slog.Info("Context cancelled, initiating shutdown")
		}

		slog.Info("Starting graceful shutdown", "timeout", fmt.Sprintf("%ds", shutdownTimeout))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(shutdownTimeout)*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
			return fmt.Errorf("shutdown: %w", err)
		}

		slog.Info("Graceful shutdown completed")
		return nil
	},
}

// configToServerConfig applies flag overrides to the centralized
// configuration, loads the model and returns the server settings together
// with the shutdown timeout in seconds.
func configToServerConfig(cfg *config.Config, cmd *cobra.Command) (server.Config, int, error) {
	if cmd.Flags().Changed("model") {
		cfg.ModelPath, _ = cmd.Flags().GetString("model")
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("cors-origin") {
		cfg.Server.CORSOrigin, _ = cmd.Flags().GetString("cors-origin")
	}
	if cmd.Flags().Changed("max-body-kb") {
		cfg.Server.MaxBodyKB, _ = cmd.Flags().GetInt("max-body-kb")
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Server.TimeoutSec, _ = cmd.Flags().GetInt("timeout")
	}
	if cmd.Flags().Changed("shutdown-timeout") {
		cfg.Server.ShutdownTimeout, _ = cmd.Flags().GetInt("shutdown-timeout")
	}
	if cmd.Flags().Changed("rate-limit-enabled") {
		cfg.Server.RateLimitEnabled, _ = cmd.Flags().GetBool("rate-limit-enabled")
	}
	if cmd.Flags().Changed("requests-per-minute") {
		cfg.Server.RequestsPerMinute, _ = cmd.Flags().GetInt("requests-per-minute")
	}
	if cmd.Flags().Changed("requests-per-hour") {
		cfg.Server.RequestsPerHour, _ = cmd.Flags().GetInt("requests-per-hour")
	}
	if cmd.Flags().Changed("max-requests-per-day") {
		cfg.Server.MaxRequestsPerDay, _ = cmd.Flags().GetInt("max-requests-per-day")
	}
	if cmd.Flags().Changed("top-words") {
		cfg.Output.TopWords, _ = cmd.Flags().GetInt("top-words")
	}
	applyDecoderFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return server.Config{}, 0, err
	}
	if cfg.ModelPath == "" {
		return server.Config{}, 0, errors.New("no model given: use --model or set \"model\" in the config")
	}

	cfg.ModelPath = models.ResolveModelPath(cfg.ModelsDir, cfg.ModelPath)
	gen, err := pipeline.NewBuilder().
		WithModelPath(cfg.ModelPath).
		WithDecoderConfig(cfg.ToDecoderConfig()).
		WithTopWords(cfg.Output.TopWords).
		Build()
	if err != nil {
		return server.Config{}, 0, fmt.Errorf("failed to create generator: %w", err)
	}

	return server.Config{
		Host:       cfg.Server.Host,
		Port:       cfg.Server.Port,
		CORSOrigin: cfg.Server.CORSOrigin,
		MaxBodyKB:  int64(cfg.Server.MaxBodyKB),
		TimeoutSec: cfg.Server.TimeoutSec,
		RateLimit: server.RateLimitConfig{
			Enabled:           cfg.Server.RateLimitEnabled,
			RequestsPerMinute: cfg.Server.RequestsPerMinute,
			RequestsPerHour:   cfg.Server.RequestsPerHour,
			MaxRequestsPerDay: cfg.Server.MaxRequestsPerDay,
		},
		Generator: gen,
	}, cfg.Server.ShutdownTimeout, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	defaults := config.DefaultConfig()
	serveCmd.Flags().StringP("model", "m", "", "model file served by the generator")
	serveCmd.Flags().StringP("host", "H", defaults.Server.Host, "server host")
	serveCmd.Flags().IntP("port", "p", defaults.Server.Port, "server port")
	serveCmd.Flags().String("cors-origin", defaults.Server.CORSOrigin, "CORS allowed origins")
	serveCmd.Flags().Int("max-body-kb", defaults.Server.MaxBodyKB, "maximum request body size in KB")
	serveCmd.Flags().Int("timeout", defaults.Server.TimeoutSec, "request timeout in seconds")
	serveCmd.Flags().Int("shutdown-timeout", defaults.Server.ShutdownTimeout, "shutdown timeout in seconds")
	serveCmd.Flags().Int("top-words", defaults.Output.TopWords, "number of words reported by the top-words stage")
	addDecoderFlags(serveCmd)

	// Rate limiting flags
	serveCmd.Flags().Bool("rate-limit-enabled", defaults.Server.RateLimitEnabled, "enable rate limiting")
	serveCmd.Flags().Int("requests-per-minute", defaults.Server.RequestsPerMinute, "maximum requests per minute per client")
	serveCmd.Flags().Int("requests-per-hour", defaults.Server.RequestsPerHour, "maximum requests per hour per client")
	serveCmd.Flags().Int("max-requests-per-day", defaults.Server.MaxRequestsPerDay, "maximum requests per day per client")
}
