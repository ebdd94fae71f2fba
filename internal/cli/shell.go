package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/initiative/internal/combat"
	"github.com/roach88/initiative/internal/config"
	"github.com/roach88/initiative/internal/render"
)

const (
	clearScreen   = "\033[H\033[2J"
	shellCommands = "\nCommands: add, next, dam, heal, rem, clear, cond, init, history, quit\n> "
)

var errNotANumber = errors.New("not a number")

// ShellOptions holds flags for the shell command.
type ShellOptions struct {
	*RootOptions
	NoClear bool
}

// NewShellCommand creates the interactive shell command.
func NewShellCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShellOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Run the interactive encounter prompt",
		Long: `Run an interactive prompt that redraws the encounter after every
command and asks for each value in turn.

When several *.db files exist and --db is not set, the shell asks which
encounter to open. End the session with quit or Ctrl-D.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.NoClear, "no-clear", false, "do not clear the screen between commands")

	return cmd
}

func runShell(opts *ShellOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	if opts.Format != "text" {
		return invalidInput(out, "shell only supports text output", nil)
	}

	p := &prompter{r: bufio.NewReader(cmd.InOrStdin()), w: cmd.OutOrStdout()}

	path, candidates, err := config.ResolveDatabase(opts.Database, opts.Dir)
	if errors.Is(err, config.ErrAmbiguousDatabase) {
		path, err = chooseDatabase(p, candidates)
		if errors.Is(err, io.EOF) {
			return nil
		}
	}
	if err != nil {
		return out.Fail(ExitCommandError, CodeStorage, "cannot locate database", err)
	}

	s, err := openSession(cmd.Context(), opts.RootOptions, path)
	if err != nil {
		return out.Fail(ExitCommandError, CodeStorage, fmt.Sprintf("cannot open %s", path), err)
	}
	defer s.Close()
	s.out = out

	sh := &shell{session: s, p: p, clear: !opts.NoClear}
	return sh.run(cmd.Context())
}

func chooseDatabase(p *prompter, candidates []string) (string, error) {
	fmt.Fprintln(p.w, "Multiple encounters found:")
	for i, c := range candidates {
		fmt.Fprintf(p.w, "%d. %s\n", i+1, filepath.Base(c))
	}

	for {
		answer, err := p.ask(fmt.Sprintf("Select an instance (1-%d): ", len(candidates)))
		if err != nil {
			return "", err
		}
		n, err := strconv.Atoi(strings.TrimSpace(answer))
		if err != nil {
			fmt.Fprintln(p.w, "Invalid input. Please enter a number.")
			continue
		}
		if n < 1 || n > len(candidates) {
			fmt.Fprintf(p.w, "Please enter a number between 1 and %d.\n", len(candidates))
			continue
		}
		return candidates[n-1], nil
	}
}

// prompter reads one answer per line.
type prompter struct {
	r *bufio.Reader
	w io.Writer
}

// ask prints label and returns the next line without its newline.
// Returns io.EOF once input is exhausted.
func (p *prompter) ask(label string) (string, error) {
	fmt.Fprint(p.w, label)
	line, err := p.r.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *prompter) askInt(label string) (int, error) {
	answer, err := p.ask(label)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errNotANumber, answer)
	}
	return n, nil
}

func (p *prompter) askYes(label string) (bool, error) {
	answer, err := p.ask(label)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(strings.TrimSpace(answer), "y"), nil
}

func (p *prompter) pause() error {
	_, err := p.ask("\nPress Enter to continue...")
	return err
}

type shell struct {
	*session
	p     *prompter
	clear bool
}

func (sh *shell) run(ctx context.Context) error {
	w := sh.p.w
	for {
		if sh.clear {
			fmt.Fprint(w, clearScreen)
		}
		snap := sh.engine.Snapshot()
		if err := render.Encounter(w, snap.State(), snap.Combatants); err != nil {
			return err
		}
		fmt.Fprintf(w, "initiative - connected to %s\n", sh.path)

		line, err := sh.p.ask(shellCommands)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		name := strings.ToLower(fields[0])
		if name == "quit" || name == "exit" || name == "q" {
			return nil
		}

		err = sh.dispatch(ctx, name)
		switch {
		case err == nil:
			continue
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, errNotANumber):
			fmt.Fprintln(w, "Invalid input.")
		default:
			sh.logger.Error("shell command failed", "command", name, "err", err)
			fmt.Fprintf(w, "An error occurred: %v\n", err)
		}
		if err := sh.p.pause(); err != nil {
			return nil
		}
	}
}

func (sh *shell) dispatch(ctx context.Context, name string) error {
	switch name {
	case "add":
		return sh.add(ctx)
	case "next":
		return sh.engine.AdvanceTurn(ctx)
	case "dam", "damage":
		return sh.damage(ctx)
	case "heal":
		return sh.heal(ctx)
	case "rem", "remove":
		target, err := sh.p.ask("Name to remove: ")
		if err != nil {
			return err
		}
		found, err := sh.engine.RemoveCombatant(ctx, target)
		if err != nil || found {
			return err
		}
		return sh.notFoundPause()
	case "clear":
		ok, err := sh.p.askYes("Are you sure you want to delete all combatants? (y/n): ")
		if err != nil || !ok {
			return err
		}
		return sh.engine.ClearAll(ctx)
	case "cond", "condition":
		return sh.condition(ctx)
	case "init":
		return sh.setInitiative(ctx)
	case "history":
		return sh.history()
	default:
		fmt.Fprintln(sh.p.w, "Unknown command.")
		return sh.p.pause()
	}
}

func (sh *shell) add(ctx context.Context) error {
	name, err := sh.p.ask("Name: ")
	if err != nil {
		return err
	}
	initiative, err := sh.p.askInt("Initiative: ")
	if err != nil {
		return err
	}
	isPlayer, err := sh.p.askYes("Is Player? (y/n): ")
	if err != nil {
		return err
	}

	askStats := true
	if isPlayer {
		skip, err := sh.p.askYes("Skip HP/AC? (y/n): ")
		if err != nil {
			return err
		}
		askStats = !skip
	}

	d := combat.Draft{Name: name, Initiative: initiative, IsPlayer: isPlayer}
	if askStats {
		hp, err := sh.p.askInt("Max HP: ")
		if err != nil {
			return err
		}
		ac, err := sh.p.askInt("AC: ")
		if err != nil {
			return err
		}
		d.MaxHP, d.ArmorClass = combat.Int(hp), combat.Int(ac)
	}

	_, err = sh.engine.AddCombatant(ctx, d)
	return err
}

func (sh *shell) damage(ctx context.Context) error {
	name, err := sh.p.ask("Target Name: ")
	if err != nil {
		return err
	}
	amount, err := sh.p.askInt("Damage Amount: ")
	if err != nil {
		return err
	}
	damageType, err := sh.p.ask("Damage Type: ")
	if err != nil {
		return err
	}

	found, err := sh.engine.TakeDamage(ctx, name, amount, damageType)
	if err != nil || found {
		return err
	}
	return sh.notFoundPause()
}

func (sh *shell) heal(ctx context.Context) error {
	name, err := sh.p.ask("Target Name: ")
	if err != nil {
		return err
	}
	amount, err := sh.p.askInt("Heal Amount: ")
	if err != nil {
		return err
	}

	found, err := sh.engine.Heal(ctx, name, amount)
	if err != nil || found {
		return err
	}
	return sh.notFoundPause()
}

func (sh *shell) condition(ctx context.Context) error {
	sub, err := sh.p.ask("Subcommand (add/rem): ")
	if err != nil {
		return err
	}
	name, err := sh.p.ask("Target Name: ")
	if err != nil {
		return err
	}
	cond, err := sh.p.ask("Condition: ")
	if err != nil {
		return err
	}

	var found bool
	switch strings.ToLower(strings.TrimSpace(sub)) {
	case "add":
		fmt.Fprintln(sh.p.w, "Duration cheat sheet: 1 round = 6 seconds. 10 rounds = 1 minute.")
		answer, err := sh.p.ask("Duration in rounds (optional, press Enter to skip): ")
		if err != nil {
			return err
		}
		var duration *int
		if strings.TrimSpace(answer) != "" {
			n, err := strconv.Atoi(strings.TrimSpace(answer))
			if err != nil {
				return fmt.Errorf("%w: %q", errNotANumber, answer)
			}
			duration = combat.Int(n)
		}
		found, err = sh.engine.AddCondition(ctx, name, cond, duration)
		if err != nil {
			return err
		}
	case "rem", "remove":
		found, err = sh.engine.RemoveCondition(ctx, name, cond)
		if err != nil {
			return err
		}
	default:
		return nil
	}

	if found {
		return nil
	}
	return sh.notFoundPause()
}

func (sh *shell) setInitiative(ctx context.Context) error {
	name, err := sh.p.ask("Target Name: ")
	if err != nil {
		return err
	}
	initiative, err := sh.p.askInt("New Initiative: ")
	if err != nil {
		return err
	}

	found, err := sh.engine.SetInitiative(ctx, name, initiative)
	if err != nil || found {
		return err
	}
	return sh.notFoundPause()
}

func (sh *shell) history() error {
	name, err := sh.p.ask("Target Name: ")
	if err != nil {
		return err
	}
	c, ok := sh.engine.Find(name)
	if !ok {
		return sh.notFoundPause()
	}

	fmt.Fprintln(sh.p.w)
	if err := render.History(sh.p.w, c); err != nil {
		return err
	}
	return sh.p.pause()
}

func (sh *shell) notFoundPause() error {
	fmt.Fprintln(sh.p.w, "Combatant not found.")
	return sh.p.pause()
}
