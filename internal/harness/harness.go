package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/roach88/initiative/internal/combat"
	"github.com/roach88/initiative/internal/engine"
	"github.com/roach88/initiative/internal/store"
)

// Harness drives one engine over one database file.
type Harness struct {
	path   string
	store  *store.Store
	engine *engine.Engine
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh database in a temporary directory.
//
// Execution flow:
// 1. Open the database and engine
// 2. Execute setup steps (any failure aborts the run)
// 3. Execute flow steps, tracing each and checking its expect clause
// 4. Evaluate assertions against the final encounter
//
// The returned error covers infrastructure failures only; expectation and
// assertion failures are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "initiative-scenario-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario dir: %w", err)
	}
	defer os.RemoveAll(dir)

	h := &Harness{
		path:   filepath.Join(dir, "encounter.db"),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	ctx := context.Background()
	if err := h.open(ctx); err != nil {
		return nil, err
	}
	defer h.close()

	for i, step := range scenario.Setup {
		found, err := h.apply(ctx, step)
		if err != nil {
			return nil, fmt.Errorf("setup[%d] %s: %w", i, step.Op, err)
		}
		if found != nil && !*found {
			return nil, fmt.Errorf("setup[%d] %s: target not found", i, step.Op)
		}
	}

	result := NewResult()
	for i, step := range scenario.Flow {
		found, err := h.apply(ctx, step)
		if err != nil && h.engine == nil {
			// reopen failed; nothing left to run against
			return nil, fmt.Errorf("flow[%d] %s: %w", i, step.Op, err)
		}

		ev := h.event(i+1, step, found, err)
		result.AddTrace(ev)
		checkExpect(result, i, step, ev, err)

		h.logger.Debug("flow step completed", "step", i, "op", step.Op)
	}

	result.Final = h.engine.Snapshot()
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

func (h *Harness) open(ctx context.Context) error {
	st, err := store.Open(h.path)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	eng, err := engine.New(ctx, st, engine.WithLogger(h.logger))
	if err != nil {
		st.Close()
		return fmt.Errorf("failed to load encounter: %w", err)
	}
	h.store, h.engine = st, eng
	return nil
}

func (h *Harness) close() {
	if h.store != nil {
		h.store.Close()
	}
	h.store, h.engine = nil, nil
}

// apply runs one step. found is nil for operations that do not look up
// a combatant by name.
func (h *Harness) apply(ctx context.Context, step Step) (*bool, error) {
	a := args(step.Args)
	var (
		found bool
		err   error
	)

	switch step.Op {
	case OpAdd:
		var d combat.Draft
		if d, err = a.draft(); err != nil {
			return nil, err
		}
		_, err = h.engine.AddCombatant(ctx, d)
		return nil, err
	case OpRemove:
		found, err = h.engine.RemoveCombatant(ctx, a.str("name"))
	case OpClear:
		return nil, h.engine.ClearAll(ctx)
	case OpDamage:
		var amount int
		if amount, err = a.integer("amount"); err != nil {
			return nil, err
		}
		found, err = h.engine.TakeDamage(ctx, a.str("name"), amount, a.str("type"))
	case OpHeal:
		var amount int
		if amount, err = a.integer("amount"); err != nil {
			return nil, err
		}
		found, err = h.engine.Heal(ctx, a.str("name"), amount)
	case OpConditionAdd:
		var duration *int
		if duration, err = a.optional("duration"); err != nil {
			return nil, err
		}
		found, err = h.engine.AddCondition(ctx, a.str("name"), a.str("condition"), duration)
	case OpConditionRemove:
		found, err = h.engine.RemoveCondition(ctx, a.str("name"), a.str("condition"))
	case OpNext:
		return nil, h.engine.AdvanceTurn(ctx)
	case OpSetInit:
		var initiative int
		if initiative, err = a.integer("initiative"); err != nil {
			return nil, err
		}
		found, err = h.engine.SetInitiative(ctx, a.str("name"), initiative)
	case OpReopen:
		h.close()
		return nil, h.open(ctx)
	default:
		return nil, fmt.Errorf("unknown op %q", step.Op)
	}

	return &found, err
}

// event captures the encounter after a step.
func (h *Harness) event(seq int, step Step, found *bool, err error) TraceEvent {
	snap := h.engine.Snapshot()
	ev := TraceEvent{
		Seq:   seq,
		Op:    step.Op,
		Args:  step.Args,
		Found: found,
		Round: snap.Round,
		Index: snap.CurrentIndex,
		Order: make([]string, len(snap.Combatants)),
	}
	for i, c := range snap.Combatants {
		ev.Order[i] = c.Name
	}
	if c, ok := h.engine.Current(); ok {
		ev.Current = c.Name
	}
	if err != nil {
		ev.Error = err.Error()
	}
	return ev
}

func checkExpect(result *Result, i int, step Step, ev TraceEvent, err error) {
	exp := step.Expect
	prefix := fmt.Sprintf("flow[%d] %s", i, step.Op)

	if exp == nil || exp.Error == "" {
		if err != nil {
			result.AddError(fmt.Sprintf("%s: unexpected error: %v", prefix, err))
		}
	} else if err == nil || !strings.Contains(err.Error(), exp.Error) {
		result.AddError(fmt.Sprintf("%s: expected error containing %q, got %v", prefix, exp.Error, err))
	}
	if exp == nil {
		return
	}

	if exp.Found != nil {
		if ev.Found == nil {
			result.AddError(fmt.Sprintf("%s: found is not reported by this op", prefix))
		} else if *ev.Found != *exp.Found {
			result.AddError(fmt.Sprintf("%s: found = %v, expected %v", prefix, *ev.Found, *exp.Found))
		}
	}
	if exp.Round != nil && ev.Round != *exp.Round {
		result.AddError(fmt.Sprintf("%s: round = %d, expected %d", prefix, ev.Round, *exp.Round))
	}
	if exp.Index != nil && ev.Index != *exp.Index {
		result.AddError(fmt.Sprintf("%s: current_index = %d, expected %d", prefix, ev.Index, *exp.Index))
	}
	if exp.Current != nil && ev.Current != *exp.Current {
		result.AddError(fmt.Sprintf("%s: current = %q, expected %q", prefix, ev.Current, *exp.Current))
	}
	if exp.Order != nil && !slices.Equal(ev.Order, exp.Order) {
		result.AddError(fmt.Sprintf("%s: order = %v, expected %v", prefix, ev.Order, exp.Order))
	}
}

// args reads typed values out of YAML-decoded step arguments.
type args map[string]interface{}

func (a args) str(key string) string {
	v, ok := a[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func (a args) integer(key string) (int, error) {
	v, err := a.optional(key)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, fmt.Errorf("arg %q is required", key)
	}
	return *v, nil
}

// optional returns nil when key is absent or null.
func (a args) optional(key string) (*int, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return nil, nil
	}
	n, err := toInt(v)
	if err != nil {
		return nil, fmt.Errorf("arg %q: %w", key, err)
	}
	return &n, nil
}

func (a args) boolean(key string) (bool, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("arg %q: expected bool, got %T", key, v)
	}
	return b, nil
}

func (a args) draft() (combat.Draft, error) {
	d := combat.Draft{Name: a.str("name")}

	var err error
	if d.Initiative, err = a.integer("initiative"); err != nil {
		return d, err
	}
	if d.MaxHP, err = a.optional("hp"); err != nil {
		return d, err
	}
	if d.ArmorClass, err = a.optional("ac"); err != nil {
		return d, err
	}
	if d.IsPlayer, err = a.boolean("player"); err != nil {
		return d, err
	}

	raw, ok := a["conditions"]
	if !ok || raw == nil {
		return d, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return d, fmt.Errorf("arg \"conditions\": expected list, got %T", raw)
	}
	for i, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			return d, fmt.Errorf("conditions[%d]: expected mapping, got %T", i, item)
		}
		ca := args(m)
		duration, err := ca.optional("duration")
		if err != nil {
			return d, fmt.Errorf("conditions[%d]: %w", i, err)
		}
		d.Conditions = append(d.Conditions, combat.DraftCondition{Name: ca.str("name"), Duration: duration})
	}
	return d, nil
}

// toInt accepts the integer shapes a YAML decoder produces.
func toInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("expected integer, got %v", n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}
