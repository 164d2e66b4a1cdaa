package store

import (
	"context"
	"sort"
	"time"
)

// Store persists training events so that an external trainer can read
// them back run by run
type Store interface {
	Close() error

	// Runs
	CreateRun(ctx context.Context, r Run) error
	FinishRun(ctx context.Context, id string, samples, events int) error
	GetRun(ctx context.Context, id string) (Run, error)
	Runs(ctx context.Context) ([]Run, error)
	DeleteRun(ctx context.Context, id string) error

	// Events
	AppendEvents(ctx context.Context, runID string, events []Event) error
	Events(ctx context.Context, runID string, sample int) ([]Event, error)
	OutcomeCounts(ctx context.Context, runID string) ([]OutcomeCount, error)
}

// Run is one extraction pass over a corpus
type Run struct {
	ID          string
	Language    string
	Fingerprint string
	CreatedAt   time.Time
	Samples     int
	Events      int
	Finished    bool
}

// Event is one token of one sample with its outcome and features
type Event struct {
	Sample   int
	Position int
	Token    string
	Outcome  string
	Features []string
}

// OutcomeCount is the number of events with a given outcome
type OutcomeCount struct {
	Outcome string
	Count   int64
}

// SortOutcomeCounts orders counts by count descending, then outcome
func SortOutcomeCounts(counts []OutcomeCount) {
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Outcome < counts[j].Outcome
	})
}
