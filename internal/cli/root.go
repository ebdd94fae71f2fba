package cli

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/initiative/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string
	Dir      string

	// SessionID identifies this process in logs and JSON responses.
	SessionID string
	Logger    *slog.Logger

	cfg    config.Config
	cfgErr error
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the initiative CLI.
// Flag defaults come from the INITIATIVE_* environment variables.
func NewRootCommand() *cobra.Command {
	cfg, cfgErr := config.ParseEnv()
	if cfgErr != nil {
		cfg = config.Config{Dir: ".", Format: "text", LogLevel: "info"}
	}
	opts := &RootOptions{cfg: cfg, cfgErr: cfgErr}

	cmd := &cobra.Command{
		Use:   "initiative",
		Short: "initiative - turn order tracker",
		Long: `Track initiative order, hit points and conditions for a tabletop
combat encounter. Every change is saved to a SQLite file, so an encounter
can be resumed later from the same turn.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.cfgErr != nil {
				return WrapExitError(ExitCommandError, "invalid environment", opts.cfgErr)
			}
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			opts.SessionID = newSessionID()
			opts.Logger = newLogger(cmd, opts)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", cfg.Format, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", cfg.Database, "path to the encounter database")
	cmd.PersistentFlags().StringVar(&opts.Dir, "dir", cfg.Dir, "directory searched for *.db files when --db is not set")

	// Add subcommands
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewNextCommand(opts))
	cmd.AddCommand(NewDamageCommand(opts))
	cmd.AddCommand(NewHealCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewClearCommand(opts))
	cmd.AddCommand(NewConditionCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewSetInitCommand(opts))
	cmd.AddCommand(NewShellCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// formatter builds the OutputFormatter for a command invocation.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
		TraceID:   o.SessionID,
	}
}

// newLogger writes text logs to stderr so stdout stays parseable.
// --verbose forces Debug; otherwise INITIATIVE_LOG_LEVEL applies.
func newLogger(cmd *cobra.Command, opts *RootOptions) *slog.Logger {
	level := opts.cfg.Level()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler).With("session", opts.SessionID)
}

// newSessionID returns a time-ordered UUIDv7, falling back to v4.
func newSessionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
