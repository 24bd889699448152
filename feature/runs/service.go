package runs

import (
	"context"
	"errors"
	"sync"
	"time"

	"datarecon/core/recon"
	"datarecon/core/source"
	"datarecon/core/staging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State is the lifecycle state of a run.
type State string

const (
	StatePending  State = "pending"
	StateRunning  State = "running"
	StateComplete State = "complete"
	StatePartial  State = "partial"
	StateFailed   State = "failed"
	StateCanceled State = "canceled"
)

// ErrRunActive is returned when a launch is attempted while another run is
// still in flight. Runs are single-flight per process.
var ErrRunActive = errors.New("a reconciliation run is already active")

// ErrNotFound is returned for unknown run ids.
var ErrNotFound = errors.New("run not found")

// Run is one reconciliation run tracked by the registry.
type Run struct {
	ID       string         `json:"id"`
	State    State          `json:"state"`
	Started  time.Time      `json:"started"`
	Finished *time.Time     `json:"finished,omitempty"`
	Progress recon.Progress `json:"progress"`
	Error    string         `json:"error,omitempty"`

	report *recon.Report
	cancel context.CancelFunc
}

// snapshot copies the run for handing outside the service lock. The returned
// copy is safe to read and marshal while the run keeps mutating.
func (r *Run) snapshot() *Run {
	c := *r
	c.report = nil
	c.cancel = nil
	return &c
}

// SourceBuilder opens the two dataset sides for a run. Injected so tests can
// substitute fixtures for live connections.
type SourceBuilder func() (src, tgt source.Source, err error)

// StoreBuilder opens a fresh staging store for a run.
type StoreBuilder func() (staging.Store, error)

// Archiver uploads a finished report and returns the object key.
type Archiver func(ctx context.Context, rep *recon.Report) (string, error)

// Service launches reconciliation runs asynchronously and retains finished
// runs in memory for the life of the process.
type Service struct {
	logger       *zap.Logger
	opts         recon.Options
	newStore     StoreBuilder
	buildSources SourceBuilder
	archiver     Archiver

	mu     sync.RWMutex
	runs   map[string]*Run
	order  []string
	active bool
}

// NewService creates a runs service.
func NewService(logger *zap.Logger, opts recon.Options, newStore StoreBuilder, buildSources SourceBuilder) *Service {
	return &Service{
		logger:       logger,
		opts:         opts,
		newStore:     newStore,
		buildSources: buildSources,
		runs:         make(map[string]*Run),
	}
}

// SetArchiver enables report archival for finished runs.
func (s *Service) SetArchiver(a Archiver) {
	s.archiver = a
}

// Launch starts a run in the background and returns its registry entry.
// Only one run may be active at a time.
func (s *Service) Launch() (*Run, error) {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return nil, ErrRunActive
	}

	ctx, cancel := context.WithCancel(context.Background())
	run := &Run{
		ID:      uuid.NewString(),
		State:   StatePending,
		Started: time.Now().UTC(),
		cancel:  cancel,
	}
	s.runs[run.ID] = run
	s.order = append(s.order, run.ID)
	s.active = true
	snap := run.snapshot()
	s.mu.Unlock()

	go s.execute(ctx, run)
	return snap, nil
}

// Get returns a snapshot of the run with the given id.
func (s *Service) Get(id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return run.snapshot(), nil
}

// List returns snapshots of all runs in launch order.
func (s *Service) List() []*Run {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Run, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.runs[id].snapshot())
	}
	return out
}

// Report returns the finished report of a run, or ErrNotFound until the run
// has produced one.
func (s *Service) Report(id string) (*recon.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok || run.report == nil {
		return nil, ErrNotFound
	}
	return run.report, nil
}

// Cancel aborts an in-flight run at the next batch boundary.
func (s *Service) Cancel(id string) error {
	s.mu.RLock()
	run, ok := s.runs[id]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	run.cancel()
	return nil
}

func (s *Service) execute(ctx context.Context, run *Run) {
	defer func() {
		s.mu.Lock()
		s.active = false
		s.mu.Unlock()
	}()

	store, err := s.newStore()
	if err != nil {
		s.finish(run, nil, err)
		return
	}
	defer store.Close()

	src, tgt, err := s.buildSources()
	if err != nil {
		s.finish(run, nil, err)
		return
	}
	defer src.Close()
	defer tgt.Close()

	opts := s.opts
	opts.RunID = run.ID
	opts.OnProgress = func(p recon.Progress) {
		s.mu.Lock()
		run.Progress = p
		s.mu.Unlock()
	}

	s.mu.Lock()
	run.State = StateRunning
	s.mu.Unlock()

	engine := recon.New(store, s.logger, opts)
	rep, err := engine.Run(ctx, src, tgt)
	s.finish(run, rep, err)

	if rep != nil && err == nil && s.archiver != nil {
		key, aerr := s.archiver(context.Background(), rep)
		if aerr != nil {
			s.logger.Error("Report archival failed", zap.String("run_id", run.ID), zap.Error(aerr))
		} else {
			s.logger.Info("Report archived", zap.String("run_id", run.ID), zap.String("object", key))
		}
	}
}

func (s *Service) finish(run *Run, rep *recon.Report, err error) {
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	run.Finished = &now
	switch {
	case errors.Is(err, context.Canceled):
		run.State = StateCanceled
	case err != nil:
		run.State = StateFailed
		run.Error = err.Error()
		s.logger.Error("Run failed", zap.String("run_id", run.ID), zap.Error(err))
	case rep.Complete:
		run.State = StateComplete
		run.report = rep
	default:
		run.State = StatePartial
		run.report = rep
	}
}
