package main

import (
	"log/slog"
	"os"

	"github.com/chazu/printparts/pkg/config"
	"github.com/chazu/printparts/pkg/kernel/sdfx"
	"github.com/chazu/printparts/pkg/workspace"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	verbose  bool
	settings = &config.Settings{
		MeshCells:    config.DefaultMeshCells,
		OutputFormat: config.FormatTable,
		LogLevel:     "info",
	}
)

// rootCmd is the application entry point.
var rootCmd = &cobra.Command{
	Use:   "partgen",
	Short: "Parametric part builder for 3D printing",
	Long: `partgen composes printable solids from primitives, booleans, edge
features and arrays. Parts come from built-in construction scripts or from
Lisp construction files, with parameters overridable from YAML or HCL.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if err := initConfig(); err != nil {
			return err
		}
		setupLogging()
		return nil
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.partgen.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// initConfig loads settings from the config file and environment.
func initConfig() error {
	s, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	settings = s
	return nil
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	} else {
		_ = level.UnmarshalText([]byte(settings.LogLevel))
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	workspace.SetLogger(logger)
	if settings.File != "" {
		slog.Debug("using config file", "file", settings.File)
	}
}

// newKernel returns the geometry kernel at the configured mesh resolution.
func newKernel() *sdfx.SdfxKernel {
	return sdfx.New(sdfx.WithMeshCells(settings.MeshCells))
}
