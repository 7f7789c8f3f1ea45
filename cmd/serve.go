package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwbudde/arcfit/internal/server"
	"github.com/cwbudde/arcfit/internal/store"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	serveAddr       string
	serveDataDir    string
	serveConfigPath string
)

// serveConfig is the optional YAML config file for the serve command.
// Flags that were set explicitly take precedence over the file.
type serveConfig struct {
	Addr    string `yaml:"addr"`
	DataDir string `yaml:"dataDir"`
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the fit job HTTP server",
	Long: `Serves a JSON API for running fit jobs, with per-job progress streaming,
plot rendering, and filesystem checkpoints.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "./data", "Base directory for checkpoints and traces")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Optional YAML config file")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveConfigPath != "" {
		data, err := os.ReadFile(serveConfigPath)
		if err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		var cfg serveConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
		if cfg.Addr != "" && !cmd.Flags().Changed("addr") {
			serveAddr = cfg.Addr
		}
		if cfg.DataDir != "" && !cmd.Flags().Changed("data-dir") {
			serveDataDir = cfg.DataDir
		}
	}

	checkpointStore, err := store.NewFSStore(serveDataDir)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint store: %w", err)
	}

	srv := server.NewServer(serveAddr, checkpointStore)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown failed", "error", err)
		return err
	}
	return nil
}
