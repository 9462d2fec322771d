// mcqbuild converts a directory of reStructuredText files into HTML,
// with the mcq question directive enabled.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matthewdargan/mcq/builder"
	"github.com/matthewdargan/mcq/internal/logging"
)

var (
	configPath string
	watch      bool
	logLevel   string
	logFormat  string
	stylesheet string
	title      string
)

var rootCmd = &cobra.Command{
	Use:   "mcqbuild [source [output]]",
	Short: "Build HTML pages from reStructuredText with mcq questions",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := builder.LoadConfig(configPath)
		if err != nil {
			return err
		}
		// Flags override the config file and environment.
		if len(args) > 0 {
			cfg.Source = args[0]
		}
		if len(args) > 1 {
			cfg.Output = args[1]
		}
		if cmd.Flags().Changed("stylesheet") {
			cfg.Stylesheet = stylesheet
		}
		if cmd.Flags().Changed("title") {
			cfg.Title = title
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			cfg.LogFormat = logFormat
		}

		logger := logging.New(logging.Config{
			Level:  logging.ParseLevel(cfg.LogLevel),
			Format: logging.ParseFormat(cfg.LogFormat),
		})
		b, err := builder.New(cfg, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if watch {
			return b.Watch(ctx)
		}
		return b.Build(ctx)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.Flags().BoolVarP(&watch, "watch", "w", false, "Rebuild when source files change")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
	rootCmd.Flags().StringVar(&stylesheet, "stylesheet", "", "Stylesheet URL linked from every page")
	rootCmd.Flags().StringVar(&title, "title", "", "Page title override")
	rootCmd.SilenceUsage = true
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
