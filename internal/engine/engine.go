package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/initiative/internal/combat"
	"github.com/roach88/initiative/internal/store"
)

// ErrInvalidName is returned when a combatant or condition name is empty
// after normalization.
var ErrInvalidName = errors.New("name must not be empty")

// RosterStore is the durable storage the engine commits through.
// Implemented by *store.Store; tests wrap it to inject faults.
type RosterStore interface {
	LoadAll(ctx context.Context) (combat.EncounterState, []combat.Combatant, error)
	SaveState(ctx context.Context, st combat.EncounterState) error
	InsertCombatant(ctx context.Context, d combat.Draft) (int64, error)
	UpdateInitiative(ctx context.Context, id int64, initiative int) error
	DeleteCombatantByName(ctx context.Context, name string) (int64, error)
	DeleteAllCombatants(ctx context.Context) (int64, error)
	UpdateCurrentHP(ctx context.Context, id int64, value int) error
	InsertHistory(ctx context.Context, id int64, entry combat.HistoryEntry) error
	InsertCondition(ctx context.Context, id int64, name string, duration *int) (int64, error)
	DeleteCondition(ctx context.Context, id int64, name string) (int64, error)
	UpdateConditionDuration(ctx context.Context, rowID int64, duration int) error
	DeleteConditionRow(ctx context.Context, rowID int64) error
}

var _ RosterStore = (*store.Store)(nil)

// Engine owns the in-memory roster and the current-turn pointer.
//
// The roster is rebuilt from the store after every mutating call. Nothing
// is cached across calls beyond what the last reload produced.
type Engine struct {
	store  RosterStore
	logger *slog.Logger

	state  combat.EncounterState
	roster []combat.Combatant
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for operation logs.
// Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine over st and loads the persisted encounter.
// A load failure here means storage is unusable and should be treated as
// fatal by the caller.
func New(ctx context.Context, st RosterStore, opts ...Option) (*Engine, error) {
	e := &Engine{
		store:  st,
		logger: slog.Default(),
		roster: []combat.Combatant{},
	}

	for _, opt := range opts {
		opt(e)
	}

	if err := e.reload(ctx); err != nil {
		return nil, fmt.Errorf("initial load: %w", err)
	}

	e.logger.Debug("encounter loaded",
		"round", e.state.Round,
		"current_index", e.state.CurrentIndex,
		"combatants", len(e.roster))
	return e, nil
}

// Snapshot is a point-in-time copy of the encounter for display.
type Snapshot struct {
	Round        int                `json:"round"`
	CurrentIndex int                `json:"current_index"`
	Combatants   []combat.Combatant `json:"combatants"`
}

// State returns the snapshot's round and pointer.
func (s Snapshot) State() combat.EncounterState {
	return combat.EncounterState{Round: s.Round, CurrentIndex: s.CurrentIndex}
}

// State returns the round and current-turn pointer.
func (e *Engine) State() combat.EncounterState {
	return e.state
}

// Roster returns a deep copy of the roster in turn order.
func (e *Engine) Roster() []combat.Combatant {
	out := make([]combat.Combatant, len(e.roster))
	for i := range e.roster {
		out[i] = e.roster[i].Clone()
	}
	return out
}

// Snapshot returns the state and roster together.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Round:        e.state.Round,
		CurrentIndex: e.state.CurrentIndex,
		Combatants:   e.Roster(),
	}
}

// Current returns the combatant whose turn it is.
// ok is false when the roster is empty.
func (e *Engine) Current() (combat.Combatant, bool) {
	if len(e.roster) == 0 {
		return combat.Combatant{}, false
	}
	return e.roster[e.state.CurrentIndex].Clone(), true
}

// Find returns the first combatant in turn order whose name matches under
// case folding. Duplicate names make targeting ambiguous; the first wins.
func (e *Engine) Find(name string) (combat.Combatant, bool) {
	i, ok := combat.FindByName(e.roster, name)
	if !ok {
		return combat.Combatant{}, false
	}
	return e.roster[i].Clone(), true
}

// History returns the damage/heal log of the named combatant.
func (e *Engine) History(name string) ([]combat.HistoryEntry, bool) {
	c, ok := e.Find(name)
	if !ok {
		return nil, false
	}
	return c.History, true
}

// Reload re-derives the encounter from storage.
func (e *Engine) Reload(ctx context.Context) error {
	if err := e.reload(ctx); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	return nil
}
