package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rem"},
		Short:   "Remove a combatant from the encounter",
		Long: `Remove every combatant with a matching name (case-insensitive), along
with their conditions and history. Removing the last combatant ends the
encounter.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return withSession(cmd, rootOpts, func(ctx context.Context, s *session) error {
				found, err := s.engine.RemoveCombatant(ctx, name)
				if err != nil {
					return s.failed("remove", err)
				}
				if !found {
					return s.notFound(name)
				}

				snap := s.engine.Snapshot()
				return s.out.Render(snap, func(w io.Writer) error {
					fmt.Fprintf(w, "Removed %s\n", name)
					return renderSnapshot(w, snap)
				})
			})
		},
	}
}

// ClearOptions holds flags for the clear command.
type ClearOptions struct {
	*RootOptions
	Yes bool
}

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClearOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "clear",
		Short:         "Delete all combatants and end the encounter",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.Yes {
				return invalidInput(opts.formatter(cmd), "clear deletes every combatant; pass --yes to confirm", nil)
			}
			return withSession(cmd, opts.RootOptions, func(ctx context.Context, s *session) error {
				if err := s.engine.ClearAll(ctx); err != nil {
					return s.failed("clear", err)
				}
				snap := s.engine.Snapshot()
				return s.out.Render(snap, func(w io.Writer) error {
					_, err := fmt.Fprintln(w, "Encounter cleared")
					return err
				})
			})
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "confirm deleting all combatants")

	return cmd
}
