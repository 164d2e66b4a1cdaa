package nerc

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/nerc/internal/logging"
	"github.com/cognicore/nerc/pkg/nerc/config"
	"github.com/cognicore/nerc/pkg/nerc/corpus"
	"github.com/cognicore/nerc/pkg/nerc/events"
	"github.com/cognicore/nerc/pkg/nerc/features"
	"github.com/cognicore/nerc/pkg/nerc/internalerr"
	"github.com/cognicore/nerc/pkg/nerc/span"
	"github.com/cognicore/nerc/pkg/nerc/store"
)

// progressEvery is how many samples pass between progress log lines
const progressEvery = 1000

// NERC extracts training events from annotated corpora and tags new
// sentences with an external model
type NERC struct {
	store  store.Store
	comp   *config.Components
	logger *slog.Logger

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	tagger  *features.CachedGenerator
}

// Options configures a NERC instance
type Options struct {
	Store      store.Store
	Components *config.Components
	Logger     *slog.Logger
}

// New creates a NERC instance with the given dependencies
func New(opts Options) (*NERC, error) {
	if opts.Components == nil {
		return nil, fmt.Errorf("components are required: %w", internalerr.ErrInvalidConfig)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &NERC{
		store:   opts.Store,
		comp:    opts.Components,
		logger:  logger,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}, nil
}

// Close cleanly shuts down the instance and its store
func (n *NERC) Close() error {
	if n.store == nil {
		return nil
	}
	return n.store.Close()
}

func (n *NERC) newRunID() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return ulid.MustNew(ulid.Now(), n.entropy).String()
}

// Extract reads every sentence of src, generates its training events with
// a fresh generator and appends them to the store under a new run. The
// source is not closed. Cancellation is checked between sentences.
func (n *NERC) Extract(ctx context.Context, src corpus.LineSource) (store.Run, error) {
	if n.store == nil {
		return store.Run{}, fmt.Errorf("extract needs a store: %w", internalerr.ErrInvalidConfig)
	}

	g, err := n.comp.NewGenerator()
	if err != nil {
		return store.Run{}, err
	}

	run := store.Run{
		ID:          n.newRunID(),
		Language:    n.comp.Params.Language,
		Fingerprint: n.comp.Fingerprint,
		CreatedAt:   time.Now().UTC(),
	}
	ctx = logging.WithRunID(ctx, run.ID)
	log := logging.FromContext(ctx, n.logger)

	if err := n.store.CreateRun(ctx, run); err != nil {
		return store.Run{}, err
	}
	log.Info("extract started",
		"language", run.Language,
		"fingerprint", run.Fingerprint,
		"reset_adaptive", n.comp.ResetAdaptiveState(),
	)

	stream := events.NewStream(corpus.NewReader(src, n.comp.ReaderOptions()), g)
	var batch []store.Event
	start := time.Now()

	for {
		if err := ctx.Err(); err != nil {
			return run, err
		}

		_, evs, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Error("extract failed", "sample", run.Samples, "error", err)
			return run, fmt.Errorf("extract run %s: %w", run.ID, err)
		}

		batch = batch[:0]
		for _, ev := range evs {
			batch = append(batch, store.Event{
				Sample:   run.Samples,
				Position: ev.Position,
				Token:    ev.Token,
				Outcome:  ev.Outcome,
				Features: ev.Features,
			})
		}
		if err := n.store.AppendEvents(ctx, run.ID, batch); err != nil {
			return run, err
		}

		run.Samples++
		run.Events += len(evs)
		if run.Samples%progressEvery == 0 {
			log.Debug("extract progress", "samples", run.Samples, "events", run.Events)
		}
	}

	if err := n.store.FinishRun(ctx, run.ID, run.Samples, run.Events); err != nil {
		return run, err
	}
	run.Finished = true

	hits, misses := g.Stats()
	log.Info("extract done",
		"samples", run.Samples,
		"events", run.Events,
		"cache_hits", hits,
		"cache_misses", misses,
		"duration", time.Since(start),
	)
	return run, nil
}

// Annotate tags one sentence greedily with c and returns the decoded
// entity spans. Calls share one generator, so adaptive data carries over
// between sentences unless the language resets it.
func (n *NERC) Annotate(tokens []string, c events.Classifier) ([]span.Span, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.tagger == nil {
		g, err := n.comp.NewGenerator()
		if err != nil {
			return nil, err
		}
		n.tagger = g
	}
	if n.comp.ResetAdaptiveState() {
		n.tagger.ClearAdaptiveData()
	}

	return events.Annotate(tokens, n.tagger, c, n.comp.ReaderOptions().Decoder)
}

// ClearAdaptiveData forgets what Annotate learned, for example at a
// document boundary
func (n *NERC) ClearAdaptiveData() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.tagger != nil {
		n.tagger.ClearAdaptiveData()
	}
}
