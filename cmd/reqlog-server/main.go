// reqlog-server serves a fixed response on GET / and writes every request's
// log entries to an append-only log file.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/augustoroman/reqlog/config"
)

var rootCmd = &cobra.Command{
	Use:   "reqlog-server",
	Short: "HTTP server that logs each request to a file",
	Long: `reqlog-server answers GET / with a fixed message. Each request's log
entries are collected while it is handled and appended to the log file as one
block when the response is done.

With no subcommand it serves, so "reqlog-server -c cfg.yaml" is the same as
"reqlog-server serve -c cfg.yaml".`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the server",
	RunE:  runServe,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and print the loaded settings",
	RunE:  runValidate,
}

var configFilePath string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFilePath, "config", "c", "", "Path to configuration file (YAML or JSON)")
	configCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(serveCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFilePath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := initializeLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	logFile, err := os.OpenFile(cfg.LogFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", cfg.LogFilePath, err)
	}
	defer logFile.Close()

	srv := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: newHandler(cfg, logFile, logger),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening",
			zap.String("listen_addr", cfg.Server.ListenAddr),
			zap.String("log_file_path", cfg.LogFilePath))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFilePath)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Configuration is valid:")
	fmt.Fprintf(out, "  log_file_path:           %s\n", cfg.LogFilePath)
	fmt.Fprintf(out, "  server.listen_addr:      %s\n", cfg.Server.ListenAddr)
	fmt.Fprintf(out, "  server.response_message: %q\n", cfg.Server.ResponseMessage)
	fmt.Fprintf(out, "  server.shutdown_timeout: %s\n", cfg.Server.ShutdownTimeout)
	fmt.Fprintf(out, "  log.level:               %s\n", cfg.Log.Level)
	fmt.Fprintf(out, "  log.format:              %s\n", cfg.Log.Format)
	fmt.Fprintf(out, "  metrics.enabled:         %t\n", cfg.Metrics.Enabled)
	fmt.Fprintf(out, "  metrics.path:            %s\n", cfg.Metrics.Path)
	return nil
}

// initializeLogger creates a zap logger based on configuration
func initializeLogger(logCfg config.LogConfig) (*zap.Logger, error) {
	var cfg zap.Config
	if logCfg.Format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(logCfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", logCfg.Level, err)
	}
	cfg.Level = level
	return cfg.Build()
}
