package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/roach88/initiative/internal/combat"
	"github.com/roach88/initiative/internal/store"
)

// ErrInjected is the error returned by a FaultStore call that was set to
// fail.
var ErrInjected = errors.New("injected fault")

// FaultStore wraps a real store and fails selected operations.
// Operation names match the store method names, e.g. "SaveState".
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type FaultStore struct {
	*store.Store

	mu    sync.Mutex
	fail  map[string]bool
	calls map[string]int
}

// NewFaultStore wraps s with no faults armed.
func NewFaultStore(s *store.Store) *FaultStore {
	return &FaultStore{
		Store: s,
		fail:  make(map[string]bool),
		calls: make(map[string]int),
	}
}

// Fail arms a fault for the named operation until Heal is called.
func (f *FaultStore) Fail(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[op] = true
}

// Heal disarms every fault.
func (f *FaultStore) Heal() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = make(map[string]bool)
}

// Calls returns how many times the named operation was invoked.
func (f *FaultStore) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *FaultStore) check(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	if f.fail[op] {
		return ErrInjected
	}
	return nil
}

func (f *FaultStore) LoadAll(ctx context.Context) (combat.EncounterState, []combat.Combatant, error) {
	if err := f.check("LoadAll"); err != nil {
		return combat.EncounterState{}, nil, err
	}
	return f.Store.LoadAll(ctx)
}

func (f *FaultStore) SaveState(ctx context.Context, st combat.EncounterState) error {
	if err := f.check("SaveState"); err != nil {
		return err
	}
	return f.Store.SaveState(ctx, st)
}

func (f *FaultStore) InsertCombatant(ctx context.Context, d combat.Draft) (int64, error) {
	if err := f.check("InsertCombatant"); err != nil {
		return 0, err
	}
	return f.Store.InsertCombatant(ctx, d)
}

func (f *FaultStore) UpdateCurrentHP(ctx context.Context, id int64, value int) error {
	if err := f.check("UpdateCurrentHP"); err != nil {
		return err
	}
	return f.Store.UpdateCurrentHP(ctx, id, value)
}

func (f *FaultStore) InsertHistory(ctx context.Context, id int64, entry combat.HistoryEntry) error {
	if err := f.check("InsertHistory"); err != nil {
		return err
	}
	return f.Store.InsertHistory(ctx, id, entry)
}

func (f *FaultStore) DeleteConditionRow(ctx context.Context, rowID int64) error {
	if err := f.check("DeleteConditionRow"); err != nil {
		return err
	}
	return f.Store.DeleteConditionRow(ctx, rowID)
}
