package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/keepline/internal/ir"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
	Database   string
	LogLevel   string

	// Logger is built from Verbose and LogLevel before any subcommand runs.
	Logger *slog.Logger
}

// logger returns the configured logger, or slog.Default() when a
// subcommand runs without the root's pre-run hook (as in tests).
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the keepline CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "keepline",
		Short: "keepline - mark what to keep on a timeline",
		Long: `Keep or cut stretches of a video timeline with begin/stop gestures,
toggles and splits. Projects and their gesture journals live in SQLite;
edit decisions can be imported from CUE files and replayed exactly.`,
		Version:      ir.EngineVersion,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, opts.ConfigFile)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}
			cfg.apply(opts)

			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			level, err := parseLogLevel(opts.LogLevel)
			if err != nil {
				return err
			}
			if opts.Verbose {
				level = slog.LevelDebug
			}
			opts.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			opts.Logger.Debug("config loaded", "file", v.ConfigFileUsed(), "db", opts.Database, "format", opts.Format)
			return nil
		},
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.ConfigFile, "config", "", "config file (default .keepline.yaml)")
	flags.StringVar(&opts.Database, "db", defaultDatabase, "path to SQLite database")
	flags.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug|info|warn|error)")
	bindFlags(v, flags)

	// Add subcommands
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewApplyCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
