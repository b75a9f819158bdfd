package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/smckit/internal/config"
	"github.com/joshuapare/smckit/internal/logger"
	"github.com/joshuapare/smckit/internal/service"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	configPath string
	logEnabled bool
)

var rootCmd = &cobra.Command{
	Use:   "smcctl",
	Short: "Inspect and drive an emulated SMC key store",
	Long: `smcctl manages an emulated System Management Controller key store:
a table of 4-character keys holding typed values or live sensor readings.
Caller-written keys persist in NVRAM between runs.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file (YAML)")
	rootCmd.PersistentFlags().BoolVar(&logEnabled, "log", false, "Write structured logs to stderr or the configured log file")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// openService loads the configuration, initializes logging and starts the
// key store. The returned cleanup closes both.
func openService(ctx context.Context, forceLog bool) (*service.Service, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	printVerbose("Using configuration: %s\n", describeConfig())

	closer, err := logger.Init(logger.Options{
		Enabled: logEnabled || forceLog,
		Level:   logger.ParseLevel(cfg.Log.Level),
		Format:  cfg.Log.Format,
		File:    cfg.Log.File,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	svc, err := service.New(ctx, cfg)
	if err != nil {
		closer.Close()
		return nil, nil, fmt.Errorf("failed to start key store: %w", err)
	}
	cleanup := func() {
		if err := svc.Close(context.Background()); err != nil {
			printError("%v\n", err)
		}
		closer.Close()
	}
	return svc, cleanup, nil
}

func describeConfig() string {
	if configPath == "" {
		return "built-in defaults"
	}
	return configPath
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	return writeJSON(os.Stdout, v)
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
