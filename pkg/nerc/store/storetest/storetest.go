// Package storetest holds behaviour checks shared by the store.Store
// implementations.
package storetest

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/cognicore/nerc/pkg/nerc/internalerr"
	"github.com/cognicore/nerc/pkg/nerc/store"
)

// Run exercises st against the store.Store contract. st must be empty.
func Run(t *testing.T, st store.Store) {
	t.Helper()
	ctx := context.Background()
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	run := store.Run{ID: "01HX0000000000000000000001", Language: "eu", Fingerprint: "abc", CreatedAt: created}
	if err := st.CreateRun(ctx, run); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if err := st.CreateRun(ctx, store.Run{ID: "01HX0000000000000000000002", Language: "en", CreatedAt: created}); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	events := []store.Event{
		{Sample: 0, Position: 1, Token: "bizi", Outcome: "O", Features: []string{"w=bizi", "po=B-LOC"}},
		{Sample: 0, Position: 0, Token: "Bilbo", Outcome: "B-LOC", Features: []string{"w=bilbo", "po=bos"}},
		{Sample: 1, Position: 0, Token: "Mikel", Outcome: "B-PER", Features: []string{"w=mikel"}},
		{Sample: 1, Position: 1, Token: "etorri", Outcome: "O", Features: nil},
	}
	if err := st.AppendEvents(ctx, run.ID, events); err != nil {
		t.Fatalf("AppendEvents: %v", err)
	}

	got, err := st.Events(ctx, run.ID, 0)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(got) != 2 || got[0].Token != "Bilbo" || got[1].Token != "bizi" {
		t.Fatalf("Events should come back in token order, got %+v", got)
	}
	if !reflect.DeepEqual(got[0].Features, []string{"w=bilbo", "po=bos"}) {
		t.Errorf("Features mismatch: %v", got[0].Features)
	}

	counts, err := st.OutcomeCounts(ctx, run.ID)
	if err != nil {
		t.Fatalf("OutcomeCounts: %v", err)
	}
	want := []store.OutcomeCount{
		{Outcome: "O", Count: 2},
		{Outcome: "B-LOC", Count: 1},
		{Outcome: "B-PER", Count: 1},
	}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("Expected %v, got %v", want, counts)
	}

	if err := st.FinishRun(ctx, run.ID, 2, 4); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	r, err := st.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if !r.Finished || r.Samples != 2 || r.Events != 4 || r.Language != "eu" || !r.CreatedAt.Equal(created) {
		t.Errorf("Unexpected run %+v", r)
	}

	runs, err := st.Runs(ctx)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != run.ID {
		t.Errorf("Expected 2 runs oldest first, got %+v", runs)
	}

	if err := st.AppendEvents(ctx, "missing", events); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("AppendEvents on missing run: expected ErrNotFound, got %v", err)
	}
	if _, err := st.Events(ctx, "missing", 0); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("Events on missing run: expected ErrNotFound, got %v", err)
	}
	if err := st.FinishRun(ctx, "missing", 0, 0); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("FinishRun on missing run: expected ErrNotFound, got %v", err)
	}

	if err := st.DeleteRun(ctx, run.ID); err != nil {
		t.Fatalf("DeleteRun: %v", err)
	}
	if _, err := st.GetRun(ctx, run.ID); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("Deleted run should be gone, got %v", err)
	}
	if err := st.DeleteRun(ctx, run.ID); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("Second delete: expected ErrNotFound, got %v", err)
	}
}
