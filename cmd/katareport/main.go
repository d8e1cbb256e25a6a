// KataChat report service.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katachat/katareport/internal/config"
	"github.com/katachat/katareport/internal/logging"
	"github.com/katachat/katareport/internal/report"
	"github.com/katachat/katareport/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger
var (
	cfg    *config.Config
	logger *zap.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "katareport",
	Short: "KataChat profile report service",
	Long: `katareport turns a short profile form (name, gender, birthdate, country)
into a learning or performance report: metrics, narrative and bar charts,
returned as JSON and mailed as a full HTML document.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		logger, err = logging.New(cfg.Logging)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(resolveAgeCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("katareport %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  katareport — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Printf("  Time (SGT):    %s\n", utils.FormatDateTime(utils.NowSGT()))
		if cfg.Source != "" {
			fmt.Printf("  Config file:   %s\n", cfg.Source)
		}
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    API Server:    %s\n", cfg.API.Addr())
		fmt.Printf("    Default set:   %s\n", cfg.Report.DefaultSet)
		fmt.Printf("    Chart style:   %s\n", cfg.Report.ChartStyle)
		fmt.Printf("    Metrics mode:  %s\n", cfg.Report.MetricsMode)
		if cfg.Report.MetricsMode == config.MetricsAI {
			fmt.Printf("    LLM Provider:  %s (model: %s, %d req/min)\n", cfg.LLM.Primary, cfg.LLM.Model, cfg.LLM.RequestsPerMinute)
		}
		if cfg.SMTP.Enabled() {
			fmt.Printf("    SMTP:          %s:%d → %s\n", cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Recipient())
		} else {
			fmt.Println("    SMTP:          not configured (reports are logged only)")
		}
		fmt.Printf("    PDF engine:    %s\n", pdfEngineName())
		fmt.Println()

		fmt.Println("  Secrets:")
		for _, k := range config.CheckKeys(cfg) {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

func pdfEngineName() string {
	if !report.IsPDFSupported() {
		return "none (HTML fallback)"
	}
	return string(report.DetectPDFEngine())
}
