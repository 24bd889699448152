package recon

import (
	"context"
	"runtime"
	"sync"
	"time"

	"datarecon/core/record"
	"datarecon/core/source"
	"datarecon/core/staging"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// batchErrorCap bounds how many batch failure messages a report carries.
const batchErrorCap = 5

// Options configures one reconciliation run.
type Options struct {
	// RunID identifies the run in logs and the report. Empty means a fresh
	// uuid is assigned.
	RunID string
	// PageSize is the batch size B for both scan passes.
	PageSize int
	// SampleCap bounds the differing-records sample in the report.
	SampleCap int
	// Workers bounds in-pass batch parallelism. Zero means automatic
	// (NumCPU clamped to [1, 8]).
	Workers int
	// IDField is the record identifier field shared by both datasets.
	IDField string
	// Exclude is the set of volatile field names removed before digesting.
	Exclude map[string]struct{}
	// OnProgress, when set, is invoked after each processed batch.
	OnProgress func(Progress)
}

// Engine drives the two scan passes, populates the staging store and
// computes the four-way classification.
type Engine struct {
	store  staging.Store
	logger *zap.Logger
	opts   Options
}

// New creates an engine over the given staging store. Zero option values get
// the documented defaults (page size 50000, sample cap 10, id field "id").
func New(store staging.Store, logger *zap.Logger, opts Options) *Engine {
	if opts.PageSize <= 0 {
		opts.PageSize = 50000
	}
	if opts.SampleCap <= 0 {
		opts.SampleCap = 10
	}
	if opts.IDField == "" {
		opts.IDField = "id"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: store, logger: logger, opts: opts}
}

// Run executes one point-in-time reconciliation of source against target.
//
// The two passes are strictly sequential: target-only detection depends on
// the staging store holding every source id before the target pass starts.
// Within a pass, batches are hashed and written by a bounded worker pool.
// Cancellation is honored between batches, leaving the store in a partial
// state; a fresh run re-initializes it.
func (e *Engine) Run(ctx context.Context, src, tgt source.Source) (*Report, error) {
	runID := e.opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	rep := &Report{
		RunID:    runID,
		Started:  time.Now().UTC(),
		Complete: true,
	}
	log := e.logger.With(zap.String("run_id", rep.RunID))

	if err := e.store.Reset(ctx); err != nil {
		return nil, err
	}

	log.Info("Starting source pass", zap.Int("page_size", e.opts.PageSize))
	if err := e.pass(ctx, src, SideSource, rep, log); err != nil {
		return nil, err
	}

	log.Info("Starting target pass")
	if err := e.pass(ctx, tgt, SideTarget, rep, log); err != nil {
		return nil, err
	}

	if err := e.classify(ctx, tgt, rep); err != nil {
		return nil, err
	}

	rep.Complete = rep.FailedBatches == 0
	rep.Finished = time.Now().UTC()

	log.Info("Reconciliation finished",
		zap.Bool("complete", rep.Complete),
		zap.Int64("total", rep.Total),
		zap.Int64("match", rep.Match),
		zap.Int64("source_only", rep.SourceOnly),
		zap.Int64("target_only", rep.TargetOnly),
		zap.Int64("differing", rep.Differing),
		zap.Duration("duration", rep.Duration()),
	)
	return rep, nil
}

// passState accumulates per-pass counters under one lock; batches complete in
// any order.
type passState struct {
	mu         sync.Mutex
	batches    int
	records    int64
	malformed  int64
	failed     int
	unresolved int64
	errSamples []string
}

func (e *Engine) pass(ctx context.Context, src source.Source, side Side, rep *Report, log *zap.Logger) error {
	scanner := source.NewScanner(src, e.opts.Exclude, e.opts.PageSize)
	state := &passState{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers())

	batchNum := 0
	for {
		// Abort is checked at batch boundaries only.
		if err := ctx.Err(); err != nil {
			_ = g.Wait()
			return err
		}

		batch, err := scanner.Next(ctx)
		if err != nil {
			_ = g.Wait()
			return &UnavailableError{Side: side, Err: err}
		}
		if len(batch) == 0 {
			break
		}

		batchNum++
		num := batchNum
		records := batch
		g.Go(func() error {
			e.processBatch(gctx, side, num, records, state, log)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	rep.Malformed += state.malformed
	rep.FailedBatches += state.failed
	rep.Unresolved += state.unresolved
	for _, msg := range state.errSamples {
		if len(rep.BatchErrors) >= batchErrorCap {
			break
		}
		rep.BatchErrors = append(rep.BatchErrors, msg)
	}

	log.Info("Pass finished",
		zap.String("side", string(side)),
		zap.Int("batches", state.batches),
		zap.Int64("records", state.records),
		zap.Int64("malformed", state.malformed),
		zap.Int("failed_batches", state.failed),
	)
	return nil
}

// processBatch canonicalizes, hashes and stages one batch. Write failures
// degrade the run instead of aborting it; each record's contribution is
// independent and commutative within the pass.
func (e *Engine) processBatch(ctx context.Context, side Side, num int, batch []record.Record, state *passState, log *zap.Logger) {
	pairs := make([]staging.Pair, 0, len(batch))
	var malformed int64

	for _, rec := range batch {
		id, err := record.ID(rec, e.opts.IDField)
		if err != nil {
			// Without an identifier the record cannot be staged at all.
			malformed++
			log.Warn("Skipping record without identifier",
				zap.String("side", string(side)), zap.Error(err))
			continue
		}

		digest, err := record.DigestRecord(rec, e.opts.Exclude)
		if err != nil {
			// One bad record must not block the run: stage a side-tagged
			// sentinel digest so the id classifies as differing.
			malformed++
			digest = forcedDigest(side, id)
			log.Warn("Record failed canonicalization, forcing mismatch",
				zap.String("side", string(side)), zap.String("id", id), zap.Error(err))
		}
		pairs = append(pairs, staging.Pair{ID: id, Digest: digest})
	}

	var writeErr error
	if side == SideSource {
		writeErr = e.store.UpsertSourceBatch(ctx, pairs)
	} else {
		writeErr = e.store.UpdateTargetBatch(ctx, pairs)
	}

	state.mu.Lock()
	state.batches++
	state.records += int64(len(batch))
	state.malformed += malformed
	if writeErr != nil {
		batchErr := &StagingWriteError{Side: side, Batch: num, Records: len(pairs), Err: writeErr}
		state.failed++
		state.unresolved += int64(len(pairs))
		if len(state.errSamples) < batchErrorCap {
			state.errSamples = append(state.errSamples, batchErr.Error())
		}
		log.Error("Staging write failed", zap.Error(batchErr))
	}
	progress := Progress{Side: side, Batches: state.batches, Records: state.records}
	state.mu.Unlock()

	if e.opts.OnProgress != nil {
		e.opts.OnProgress(progress)
	}
}

// classify computes the four-way counts and the bounded diff sample.
func (e *Engine) classify(ctx context.Context, tgt source.Source, rep *Report) error {
	staged, err := e.store.Count(ctx, staging.All)
	if err != nil {
		return err
	}
	if rep.Match, err = e.store.Count(ctx, staging.Match); err != nil {
		return err
	}
	if rep.SourceOnly, err = e.store.Count(ctx, staging.SourceOnly); err != nil {
		return err
	}
	if rep.Differing, err = e.store.Count(ctx, staging.Differing); err != nil {
		return err
	}

	// The target pass cannot create entries, so ids present only in the
	// target are invisible to the predicates above. Detect them by explicit
	// set difference against the staged id set.
	targetIDs, err := tgt.DistinctIDs(ctx)
	if err != nil {
		return &UnavailableError{Side: SideTarget, Err: err}
	}
	existing, err := e.store.CountExisting(ctx, targetIDs)
	if err != nil {
		return err
	}
	rep.TargetOnly = int64(len(targetIDs)) - existing
	rep.Total = staged + rep.TargetOnly

	sample, err := e.store.Sample(ctx, staging.Differing, e.opts.SampleCap)
	if err != nil {
		return err
	}
	rep.Sample = make([]DiffSample, 0, len(sample))
	for _, entry := range sample {
		rep.Sample = append(rep.Sample, DiffSample{
			ID:           entry.ID,
			SourceDigest: entry.SourceDigest,
			TargetDigest: entry.TargetDigest,
		})
	}
	rep.SampleTruncated = rep.Differing - int64(len(rep.Sample))
	return nil
}

func (e *Engine) workers() int {
	if e.opts.Workers > 0 {
		return e.opts.Workers
	}
	n := runtime.NumCPU()
	if n < 1 {
		n = 1
	}
	if n > 8 {
		n = 8
	}
	return n
}

// forcedDigest builds the sentinel digest staged for a record that failed
// canonicalization. It is side-tagged so the same broken record on both
// sides still classifies as differing, never as a match.
func forcedDigest(side Side, id string) record.Digest {
	return record.DigestBytes([]byte("malformed:" + string(side) + ":" + id))
}
