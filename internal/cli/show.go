package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/initiative/internal/engine"
	"github.com/roach88/initiative/internal/render"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the round and the initiative order",
		Example: `  initiative show
  initiative show --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(ctx context.Context, s *session) error {
				return s.showEncounter()
			})
		},
	}
}

// NewNextCommand creates the next command.
func NewNextCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "End the current turn and move to the next combatant",
		Long: `End the current combatant's turn.

Timed conditions on the combatant whose turn ends lose one round and expire
at zero. After the last combatant the order wraps to the top and the round
counter increases.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(ctx context.Context, s *session) error {
				if err := s.engine.AdvanceTurn(ctx); err != nil {
					return s.failed("next", err)
				}
				return s.showEncounter()
			})
		},
	}
}

func (s *session) showEncounter() error {
	snap := s.engine.Snapshot()
	return s.out.Render(snap, func(w io.Writer) error {
		return renderSnapshot(w, snap)
	})
}

func renderSnapshot(w io.Writer, snap engine.Snapshot) error {
	return render.Encounter(w, snap.State(), snap.Combatants)
}
