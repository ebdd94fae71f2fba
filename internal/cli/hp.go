package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/initiative/internal/combat"
	"github.com/roach88/initiative/internal/render"
)

// DamageOptions holds flags for the damage command.
type DamageOptions struct {
	*RootOptions
	DamageType string
}

// NewDamageCommand creates the damage command.
func NewDamageCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DamageOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:     "damage <name> <amount>",
		Aliases: []string{"dam"},
		Short:   "Deal damage to a combatant",
		Long: `Deal damage to the first combatant in initiative order with a matching
name. Hit points never drop below zero. The damage is logged in the
combatant's history even when hit points are not tracked.`,
		Example:       `  initiative damage Goblin 5 --type fire`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHP(rootOpts, cmd, args, func(ctx context.Context, s *session, name string, amount int) (bool, error) {
				return s.engine.TakeDamage(ctx, name, amount, opts.DamageType)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.DamageType, "type", "t", "", "damage type (fire, slashing, ...)")

	return cmd
}

// NewHealCommand creates the heal command.
func NewHealCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "heal <name> <amount>",
		Short: "Restore hit points to a combatant",
		Long: `Heal the first combatant in initiative order with a matching name.
Hit points never exceed the maximum. The heal is logged in the combatant's
history even when hit points are not tracked.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHP(rootOpts, cmd, args, func(ctx context.Context, s *session, name string, amount int) (bool, error) {
				return s.engine.Heal(ctx, name, amount)
			})
		},
	}
}

type hpFunc func(ctx context.Context, s *session, name string, amount int) (bool, error)

func runHP(opts *RootOptions, cmd *cobra.Command, args []string, apply hpFunc) error {
	name := args[0]
	out := opts.formatter(cmd)

	amount, err := strconv.Atoi(args[1])
	if err != nil {
		return invalidInput(out, fmt.Sprintf("amount must be an integer, got %q", args[1]), err)
	}

	return withSession(cmd, opts, func(ctx context.Context, s *session) error {
		target, ok := s.engine.Find(name)
		if !ok {
			return s.notFound(name)
		}

		found, err := apply(ctx, s, name, amount)
		if err != nil {
			return s.failed(cmd.Name(), err)
		}
		if !found {
			return s.notFound(name)
		}

		snap := s.engine.Snapshot()
		var c combat.Combatant
		if i, ok := combat.IndexOf(snap.Combatants, target.ID); ok {
			c = snap.Combatants[i]
		}
		return s.out.Render(CombatantResult{Combatant: c, Encounter: snap}, func(w io.Writer) error {
			if len(c.History) == 0 {
				_, err := fmt.Fprintf(w, "%s (HP: %s)\n", c.Name, hpSummary(c))
				return err
			}
			last := c.History[len(c.History)-1]
			_, err := fmt.Fprintf(w, "%s: %s (HP: %s)\n", c.Name, last.Describe(), hpSummary(c))
			return err
		})
	})
}

func hpSummary(c combat.Combatant) string {
	if !c.TracksHP() {
		return "N/A"
	}
	s := fmt.Sprintf("%s/%d", combat.FormatOptional(c.CurrentHP), *c.MaxHP)
	if st := c.Status(); st != combat.StatusNone {
		s += " " + string(st)
	}
	return s
}

// HistoryResult is the JSON payload of the history command.
type HistoryResult struct {
	Name    string                `json:"name"`
	History []combat.HistoryEntry `json:"history"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "history <name>",
		Short:         "Show the damage and healing log of a combatant",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return withSession(cmd, rootOpts, func(ctx context.Context, s *session) error {
				c, ok := s.engine.Find(name)
				if !ok {
					return s.notFound(name)
				}
				result := HistoryResult{Name: c.Name, History: c.History}
				return s.out.Render(result, func(w io.Writer) error {
					return render.History(w, c)
				})
			})
		},
	}
}
