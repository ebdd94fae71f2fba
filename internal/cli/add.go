package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/initiative/internal/combat"
	"github.com/roach88/initiative/internal/engine"
	"github.com/roach88/initiative/internal/rosterfile"
)

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
	MaxHP      int
	ArmorClass int
	Player     bool
}

// CombatantResult is the JSON payload of commands that change one
// combatant.
type CombatantResult struct {
	Combatant combat.Combatant `json:"combatant"`
	Encounter engine.Snapshot  `json:"encounter"`
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <name> <initiative>",
		Short: "Add a combatant to the encounter",
		Long: `Add a combatant to the encounter.

Adding to an empty roster starts round 1. Hit points are only tracked when
--hp is given; current HP starts at the maximum.`,
		Example: `  initiative add Aria 15 --player
  initiative add Goblin 12 --hp 7 --ac 15`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(opts, cmd, args[0], args[1])
		},
	}

	cmd.Flags().IntVar(&opts.MaxHP, "hp", 0, "maximum hit points (untracked when omitted)")
	cmd.Flags().IntVar(&opts.ArmorClass, "ac", 0, "armor class")
	cmd.Flags().BoolVar(&opts.Player, "player", false, "combatant is a player character")

	return cmd
}

func runAdd(opts *AddOptions, cmd *cobra.Command, name, initArg string) error {
	out := opts.formatter(cmd)

	initiative, err := strconv.Atoi(initArg)
	if err != nil {
		return invalidInput(out, fmt.Sprintf("initiative must be an integer, got %q", initArg), err)
	}

	d := combat.Draft{
		Name:       name,
		Initiative: initiative,
		IsPlayer:   opts.Player,
	}
	if cmd.Flags().Changed("hp") {
		if opts.MaxHP < 0 {
			return invalidInput(out, "--hp must not be negative", nil)
		}
		d.MaxHP = combat.Int(opts.MaxHP)
	}
	if cmd.Flags().Changed("ac") {
		d.ArmorClass = combat.Int(opts.ArmorClass)
	}

	return withSession(cmd, opts.RootOptions, func(ctx context.Context, s *session) error {
		id, err := s.engine.AddCombatant(ctx, d)
		if err != nil {
			return s.failed("add", err)
		}
		return s.reportCombatant(id, "Added %s")
	})
}

// reportCombatant prints the combatant with the given id after a change.
// format receives the combatant's summary line.
func (s *session) reportCombatant(id int64, format string) error {
	snap := s.engine.Snapshot()
	var c combat.Combatant
	if i, ok := combat.IndexOf(snap.Combatants, id); ok {
		c = snap.Combatants[i]
	}
	return s.out.Render(CombatantResult{Combatant: c, Encounter: snap}, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, format+"\n", c)
		return err
	})
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <roster.cue>",
		Short: "Add every combatant declared in a CUE roster file",
		Long: `Add the combatants declared in a CUE roster file.

The whole file is validated before anything is added. Combatants are added
in file order; the initiative order is re-sorted as usual.`,
		Example:       `  initiative import party.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, cmd, args[0])
		},
	}
}

// ImportResult is the JSON payload of the import command.
type ImportResult struct {
	File      string          `json:"file"`
	Added     int             `json:"added"`
	Encounter engine.Snapshot `json:"encounter"`
}

func runImport(opts *RootOptions, cmd *cobra.Command, path string) error {
	out := opts.formatter(cmd)

	drafts, err := rosterfile.Load(path)
	if err != nil {
		return out.Fail(ExitCommandError, CodeInvalidFile, fmt.Sprintf("cannot import %s", path), err)
	}

	return withSession(cmd, opts, func(ctx context.Context, s *session) error {
		for i, d := range drafts {
			if _, err := s.engine.AddCombatant(ctx, d); err != nil {
				return s.failed(fmt.Sprintf("import %s (entry %d)", path, i+1), err)
			}
		}

		snap := s.engine.Snapshot()
		result := ImportResult{File: path, Added: len(drafts), Encounter: snap}
		return s.out.Render(result, func(w io.Writer) error {
			fmt.Fprintf(w, "Imported %d combatant(s) from %s\n", len(drafts), path)
			return renderSnapshot(w, snap)
		})
	})
}

// NewSetInitCommand creates the set-init command.
func NewSetInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-init <name> <initiative>",
		Short: "Change a combatant's initiative",
		Long: `Change a combatant's initiative and re-sort the order.

The current turn stays with the same combatant.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			out := rootOpts.formatter(cmd)
			initiative, err := strconv.Atoi(args[1])
			if err != nil {
				return invalidInput(out, fmt.Sprintf("initiative must be an integer, got %q", args[1]), err)
			}

			return withSession(cmd, rootOpts, func(ctx context.Context, s *session) error {
				target, ok := s.engine.Find(name)
				if !ok {
					return s.notFound(name)
				}
				if _, err := s.engine.SetInitiative(ctx, name, initiative); err != nil {
					return s.failed("set-init", err)
				}
				return s.reportCombatant(target.ID, "Updated %s")
			})
		},
	}
}
