package nerc

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/cognicore/nerc/pkg/nerc/config"
	"github.com/cognicore/nerc/pkg/nerc/corpus"
	"github.com/cognicore/nerc/pkg/nerc/events"
	"github.com/cognicore/nerc/pkg/nerc/internalerr"
	"github.com/cognicore/nerc/pkg/nerc/span"
	"github.com/cognicore/nerc/pkg/nerc/store/memstore"
	"github.com/cognicore/nerc/pkg/nerc/store/sqlite"
)

const corpusText = `Athletic	B-ORG
de	I-ORG
Bilbao	I-ORG
gana	O


Iñaki	B-PER
vive	O
en	O
Bilbao	B-LOC
`

func loadComponents(t *testing.T, lang string) *config.Components {
	t.Helper()
	comp, err := (&config.Loader{Language: lang}).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return comp
}

func TestNewRequiresComponents(t *testing.T) {
	if _, err := New(Options{Store: memstore.New()}); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestExtract(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	n, err := New(Options{Store: st, Components: loadComponents(t, "es")})
	if err != nil {
		t.Fatal(err)
	}
	defer n.Close()

	run, err := n.Extract(ctx, corpus.NewStringSource(corpusText))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if run.Samples != 2 || run.Events != 8 || !run.Finished {
		t.Errorf("Unexpected run %+v", run)
	}
	if len(run.ID) != 26 {
		t.Errorf("Expected a ULID run id, got %q", run.ID)
	}

	stored, err := st.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Fingerprint == "" || stored.Language != "es" || !stored.Finished {
		t.Errorf("Unexpected stored run %+v", stored)
	}

	evs, err := st.Events(ctx, run.ID, 1)
	if err != nil {
		t.Fatal(err)
	}
	outcomes := make([]string, len(evs))
	for i, ev := range evs {
		outcomes[i] = ev.Outcome
	}
	if !reflect.DeepEqual(outcomes, []string{"B-PER", "O", "O", "B-LOC"}) {
		t.Errorf("Unexpected outcomes %v", outcomes)
	}

	// Spanish keeps adaptive data: Bilbao was I-ORG in the first sentence
	found := false
	for _, f := range evs[3].Features {
		if f == "pd=I-ORG" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected pd=I-ORG for Bilbao, got %v", evs[3].Features)
	}
}

func TestExtractRunIDsIncrease(t *testing.T) {
	ctx := context.Background()
	n, err := New(Options{Store: memstore.New(), Components: loadComponents(t, "en")})
	if err != nil {
		t.Fatal(err)
	}

	a, err := n.Extract(ctx, corpus.NewStringSource(corpusText))
	if err != nil {
		t.Fatal(err)
	}
	b, err := n.Extract(ctx, corpus.NewStringSource(corpusText))
	if err != nil {
		t.Fatal(err)
	}
	if a.ID >= b.ID {
		t.Errorf("Run IDs should be monotonic: %s then %s", a.ID, b.ID)
	}
}

func TestExtractMalformedCorpus(t *testing.T) {
	n, err := New(Options{Store: memstore.New(), Components: loadComponents(t, "en")})
	if err != nil {
		t.Fatal(err)
	}

	_, err = n.Extract(context.Background(), corpus.NewStringSource("a\tO\tX\n"))
	var recErr *corpus.MalformedRecordError
	if !errors.As(err, &recErr) {
		t.Fatalf("Expected MalformedRecordError, got %v", err)
	}
	if recErr.LineNumber != 1 || recErr.Fields != 3 {
		t.Errorf("Unexpected error details %+v", recErr)
	}
}

func TestExtractCancelled(t *testing.T) {
	n, err := New(Options{Store: memstore.New(), Components: loadComponents(t, "en")})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := n.Extract(ctx, corpus.NewStringSource(corpusText)); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestExtractWithoutStore(t *testing.T) {
	n, err := New(Options{Components: loadComponents(t, "en")})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := n.Extract(context.Background(), corpus.NewStringSource(corpusText)); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
	if err := n.Close(); err != nil {
		t.Errorf("Close without store: %v", err)
	}
}

func TestExtractSQLite(t *testing.T) {
	ctx := context.Background()
	st, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatal(err)
	}
	n, err := New(Options{Store: st, Components: loadComponents(t, "eu")})
	if err != nil {
		t.Fatal(err)
	}
	defer n.Close()

	run, err := n.Extract(ctx, corpus.NewStringSource(corpusText))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	counts, err := st.OutcomeCounts(ctx, run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(counts) == 0 || counts[0].Outcome != "O" || counts[0].Count != 3 {
		t.Errorf("Unexpected counts %+v", counts)
	}

	// Basque resets: Bilbao carries no memory of the first sentence
	evs, err := st.Events(ctx, run.ID, 1)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range evs[3].Features {
		if strings.HasPrefix(f, "pd=") {
			t.Errorf("Unexpected adaptive feature %q", f)
		}
	}
}

// gazetteerModel tags capitalized tokens as locations
var gazetteerModel = events.ClassifierFunc(func(fs []string) (string, error) {
	upper, cont := false, false
	for _, f := range fs {
		switch f {
		case "wc=ic":
			upper = true
		case "po=B-LOC", "po=I-LOC":
			cont = true
		}
	}
	switch {
	case upper && cont:
		return "I-LOC", nil
	case upper:
		return "B-LOC", nil
	}
	return "O", nil
})

func TestAnnotate(t *testing.T) {
	n, err := New(Options{Components: loadComponents(t, "en")})
	if err != nil {
		t.Fatal(err)
	}

	spans, err := n.Annotate([]string{"flights", "to", "San", "Sebastian", "today"}, gazetteerModel)
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	want := []span.Span{{Start: 2, End: 4, Type: "LOC"}}
	if !reflect.DeepEqual(spans, want) {
		t.Errorf("Expected %v, got %v", want, spans)
	}

	n.ClearAdaptiveData()
	spans, err = n.Annotate(nil, gazetteerModel)
	if err != nil || len(spans) != 0 {
		t.Errorf("Empty sentence should give no spans, got %v %v", spans, err)
	}
}
