package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wachat-insight/internal/config"
	"github.com/Zuo-Peng/wachat-insight/internal/logging"
)

var version = "dev"

// cfg is loaded once before any command runs.
var cfg *config.Config

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string
	var logJSON bool

	root := &cobra.Command{
		Use:           "wca",
		Short:         "WhatsApp chat insight - parse chat export archives and analyze them",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("log-level") {
				c.LogLevel = logLevel
			}
			if cmd.Flags().Changed("log-json") {
				c.LogJSON = logJSON
			}
			cfg = c
			return logging.Setup(cfg.LogLevel, cfg.LogJSON)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Log JSON lines instead of console output")

	root.AddCommand(analyzeCmd())
	root.AddCommand(dashboardCmd())
	root.AddCommand(exportCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(sampleCmd())
	root.AddCommand(indexCmd())
	root.AddCommand(searchCmd())
	root.AddCommand(listCmd())
	root.AddCommand(previewCmd())
	root.AddCommand(openCmd())
	root.AddCommand(doctorCmd())
	return root
}
