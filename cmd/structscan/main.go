// Package main provides the structscan binary entry point.
// Structscan discovers framework components in source trees by scanning
// for annotations and interface contracts, without executing any of the
// scanned code.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	// Register source scanners via init()
	_ "github.com/c360studio/structscan/scanner/java"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "structscan"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Static component discovery for annotated source trees",
		Long: `Structscan scans configured source locations for framework components
declared through annotations and interface contracts, then registers
what it finds. Source files are parsed, never executed.

Results cache per location-set fingerprint, so unchanged trees skip
re-scanning on subsequent runs.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	newApp := func() (*app, error) {
		return buildApp(configPath, newLogger(logLevel))
	}

	var (
		only       []string
		clearCache bool
	)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Discover and apply components in one pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			return a.run(cmd.Context(), only, clearCache)
		},
	}
	runCmd.Flags().StringArrayVar(&only, "discovery", nil, "Limit to named discoveries (repeatable)")
	runCmd.Flags().BoolVar(&clearCache, "clear-cache", false, "Drop cached results before running")
	cmd.AddCommand(runCmd)

	discoverCmd := &cobra.Command{
		Use:   "discover",
		Short: "Discover components without applying them",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			return a.discover(cmd.Context(), only, clearCache)
		},
	}
	discoverCmd.Flags().StringArrayVar(&only, "discovery", nil, "Limit to named discoveries (repeatable)")
	discoverCmd.Flags().BoolVar(&clearCache, "clear-cache", false, "Drop cached results before running")
	cmd.AddCommand(discoverCmd)

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run discovery whenever watched sources change",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.watch(ctx)
		},
	}
	cmd.AddCommand(watchCmd)

	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the discovery result cache",
	}
	cacheCmd.AddCommand(&cobra.Command{
		Use:   "flush",
		Short: "Remove every cached discovery result",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			return a.flushCache(cmd.Context())
		},
	})
	cmd.AddCommand(cacheCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

func newLogger(logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
