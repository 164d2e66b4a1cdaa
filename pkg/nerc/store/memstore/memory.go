package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/nerc/pkg/nerc/internalerr"
	"github.com/cognicore/nerc/pkg/nerc/store"
)

type eventKey struct {
	sample   int
	position int
}

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu     sync.RWMutex
	runs   map[string]store.Run
	events map[string]map[eventKey]store.Event
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		runs:   make(map[string]store.Run),
		events: make(map[string]map[eventKey]store.Event),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// CreateRun registers a new run.
func (s *Store) CreateRun(ctx context.Context, r store.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		return fmt.Errorf("run id is empty: %w", internalerr.ErrInvalidInput)
	}
	if _, ok := s.runs[r.ID]; ok {
		return fmt.Errorf("run %s already exists: %w", r.ID, internalerr.ErrInvalidInput)
	}
	s.runs[r.ID] = r
	s.events[r.ID] = make(map[eventKey]store.Event)
	return nil
}

// FinishRun records the final counts of a run.
func (s *Store) FinishRun(ctx context.Context, id string, samples, events int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.runs[id]
	if !ok {
		return fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	r.Samples, r.Events, r.Finished = samples, events, true
	s.runs[id] = r
	return nil
}

// GetRun returns a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[id]
	if !ok {
		return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	return r, nil
}

// Runs lists all runs ordered by ID.
func (s *Store) Runs(ctx context.Context) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]store.Run, 0, len(s.runs))
	for _, r := range s.runs {
		runs = append(runs, r)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].ID < runs[j].ID })
	return runs, nil
}

// DeleteRun removes a run and its events.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[id]; !ok {
		return fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	delete(s.runs, id)
	delete(s.events, id)
	return nil
}

// AppendEvents stores events of a run, replacing any at the same position.
func (s *Store) AppendEvents(ctx context.Context, runID string, events []store.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byKey, ok := s.events[runID]
	if !ok {
		return fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}
	for _, ev := range events {
		byKey[eventKey{ev.Sample, ev.Position}] = copyEvent(ev)
	}
	return nil
}

// Events returns the events of one sample in token order.
func (s *Store) Events(ctx context.Context, runID string, sample int) ([]store.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byKey, ok := s.events[runID]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}

	var events []store.Event
	for k, ev := range byKey {
		if k.sample == sample {
			events = append(events, copyEvent(ev))
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Position < events[j].Position })
	return events, nil
}

// OutcomeCounts returns how often each outcome occurs in a run.
func (s *Store) OutcomeCounts(ctx context.Context, runID string) ([]store.OutcomeCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byKey, ok := s.events[runID]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}

	totals := make(map[string]int64)
	for _, ev := range byKey {
		totals[ev.Outcome]++
	}
	counts := make([]store.OutcomeCount, 0, len(totals))
	for outcome, n := range totals {
		counts = append(counts, store.OutcomeCount{Outcome: outcome, Count: n})
	}
	store.SortOutcomeCounts(counts)
	return counts, nil
}

func copyEvent(ev store.Event) store.Event {
	ev.Features = append([]string(nil), ev.Features...)
	return ev
}
