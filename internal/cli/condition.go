package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/initiative/internal/combat"
)

// ConditionOptions holds flags for the condition add command.
type ConditionOptions struct {
	*RootOptions
	Duration int
}

// NewConditionCommand creates the condition command group.
func NewConditionCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "condition",
		Aliases: []string{"cond"},
		Short:   "Add or remove status conditions",
		Long: `Add or remove status conditions.

A timed condition loses one round each time its holder's turn ends and
expires at zero. 1 round = 6 seconds, 10 rounds = 1 minute.`,
	}

	cmd.AddCommand(newConditionAddCommand(rootOpts))
	cmd.AddCommand(newConditionRemoveCommand(rootOpts))

	return cmd
}

func newConditionAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConditionOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <name> <condition>",
		Short: "Attach a condition to a combatant",
		Example: `  initiative condition add Goblin prone
  initiative cond add Aria stunned --duration 2`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, condition := args[0], args[1]

			var duration *int
			if cmd.Flags().Changed("duration") {
				if opts.Duration < 1 {
					return invalidInput(opts.formatter(cmd), "--duration must be at least 1 round", nil)
				}
				duration = combat.Int(opts.Duration)
			}

			return withSession(cmd, opts.RootOptions, func(ctx context.Context, s *session) error {
				found, err := s.engine.AddCondition(ctx, name, condition, duration)
				if err != nil {
					return s.failed("condition add", err)
				}
				if !found {
					return s.notFound(name)
				}
				label := combat.Condition{Name: condition, Duration: duration}.Label()
				return s.reportConditions(name, fmt.Sprintf("%s is now %s", name, label))
			})
		},
	}

	cmd.Flags().IntVarP(&opts.Duration, "duration", "d", 0, "duration in rounds (indefinite when omitted)")

	return cmd
}

func newConditionRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "remove <name> <condition>",
		Aliases:       []string{"rem"},
		Short:         "Remove a condition from a combatant",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, condition := args[0], args[1]
			return withSession(cmd, rootOpts, func(ctx context.Context, s *session) error {
				found, err := s.engine.RemoveCondition(ctx, name, condition)
				if err != nil {
					return s.failed("condition remove", err)
				}
				if !found {
					return s.notFound(name)
				}
				return s.reportConditions(name, fmt.Sprintf("%s is no longer %s", name, condition))
			})
		},
	}
}

func (s *session) reportConditions(name, line string) error {
	c, _ := s.engine.Find(name)
	snap := s.engine.Snapshot()
	return s.out.Render(CombatantResult{Combatant: c, Encounter: snap}, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, line)
		return err
	})
}
