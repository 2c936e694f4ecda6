package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/wirecat/wirecat/internal/id"
	"github.com/wirecat/wirecat/pkg/logging"
)

var (
	// Persistent flags available to all subcommands
	jsonOutput  bool
	verbose     bool
	logFile     string
	configPath  string
	profileName string

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wirecat",
	Short: "wirecat is a websocket client for the command line",
	Long: `wirecat connects to websocket endpoints for testing and debugging.

It speaks RFC 6455 directly: fragmented messages are reassembled, pings
are answered, and close handshakes are completed in both directions.
Connection settings can come from flags or from named profiles stored
in a config file (create one with 'wirecat init').

By default the config file lives at ~/.config/wirecat/config.yaml.`,
	// No Run function here means 'wirecat' with no args will print help text by default.
	SilenceUsage:  true,
	SilenceErrors: true, // We handle errors in Execute()
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Define persistent flags that apply globally to all wirecat commands
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results in JSON format (one line per message for streams)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write debug logs to this file (JSON format)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.config/wirecat/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "Connection profile to use")
}

// buildLogger assembles the logger from --verbose and --log-file. The
// returned func closes the log file, if any; call it before exiting.
func buildLogger() (*slog.Logger, func(), error) {
	level := logging.LevelWarn
	if verbose {
		level = logging.LevelDebug
	}
	stderrHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})

	if logFile == "" {
		return slog.New(stderrHandler), func() {}, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	fileHandler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: logging.LevelDebug})
	// The session tag distinguishes runs appending to the same file.
	log := slog.New(logging.NewMultiHandler(stderrHandler, fileHandler)).With("session", id.Short())
	return log, func() { _ = f.Close() }, nil
}
