package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/initiative/internal/config"
	"github.com/roach88/initiative/internal/engine"
	"github.com/roach88/initiative/internal/store"
)

// session is one opened encounter: the store, the engine over it and the
// formatter the command reports through.
type session struct {
	path   string
	store  *store.Store
	engine *engine.Engine
	out    *OutputFormatter
	logger *slog.Logger
}

func (s *session) Close() error {
	return s.store.Close()
}

// withSession resolves and opens the database, runs fn and closes it.
func withSession(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, s *session) error) error {
	out := opts.formatter(cmd)

	path, _, err := config.ResolveDatabase(opts.Database, opts.Dir)
	if err != nil {
		if errors.Is(err, config.ErrAmbiguousDatabase) {
			return out.Fail(ExitCommandError, CodeAmbiguousDB, "choose a database with --db", err)
		}
		return out.Fail(ExitCommandError, CodeStorage, "cannot locate database", err)
	}

	s, err := openSession(cmd.Context(), opts, path)
	if err != nil {
		return out.Fail(ExitCommandError, CodeStorage, fmt.Sprintf("cannot open %s", path), err)
	}
	defer s.Close()
	s.out = out

	return fn(cmd.Context(), s)
}

func openSession(ctx context.Context, opts *RootOptions, path string) (*session, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	opts.Logger.Debug("opening database", "path", path)
	st, err := store.Open(path)
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(ctx, st, engine.WithLogger(opts.Logger))
	if err != nil {
		st.Close()
		return nil, err
	}

	return &session{path: path, store: st, engine: eng, logger: opts.Logger}, nil
}

// notFound reports an unknown combatant (exit code 1).
func (s *session) notFound(name string) error {
	return s.out.Fail(ExitFailure, CodeNotFound, fmt.Sprintf("combatant %q not found", name), nil)
}

// failed reports a failed engine operation (exit code 2). Empty names are
// input errors; everything else came from storage.
func (s *session) failed(op string, err error) error {
	if errors.Is(err, engine.ErrInvalidName) {
		return invalidInput(s.out, op+": name must not be empty", err)
	}
	return s.out.Fail(ExitCommandError, CodeStorage, op+" failed", err)
}

// invalidInput reports a bad argument (exit code 2).
func invalidInput(out *OutputFormatter, message string, err error) error {
	return out.Fail(ExitCommandError, CodeInvalidInput, message, err)
}
