package runs_test

import (
	"errors"
	"testing"
	"time"

	"datarecon/core/recon"
	"datarecon/core/record"
	"datarecon/core/source"
	"datarecon/core/staging"
	"datarecon/feature/runs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func memoryBuilders() (runs.StoreBuilder, runs.SourceBuilder) {
	newStore := func() (staging.Store, error) {
		return staging.NewMemory(), nil
	}
	buildSources := func() (source.Source, source.Source, error) {
		src := source.NewMemory("src", "id", []record.Record{
			{"id": 1, "name": "chair"},
			{"id": 2, "name": "table"},
		})
		tgt := source.NewMemory("tgt", "id", []record.Record{
			{"id": 1, "name": "chair"},
			{"id": 2, "name": "stool"},
			{"id": 3, "name": "lamp"},
		})
		return src, tgt, nil
	}
	return newStore, buildSources
}

// memoryHoldingSources builds empty in-memory sources once release is closed.
func memoryHoldingSources(release <-chan struct{}) runs.SourceBuilder {
	return func() (source.Source, source.Source, error) {
		<-release
		return source.NewMemory("src", "id", nil), source.NewMemory("tgt", "id", nil), nil
	}
}

// memoryStartedSources additionally signals started when the builder is entered.
func memoryStartedSources(started chan<- struct{}, release <-chan struct{}) runs.SourceBuilder {
	return func() (source.Source, source.Source, error) {
		close(started)
		<-release
		return source.NewMemory("src", "id", nil), source.NewMemory("tgt", "id", nil), nil
	}
}

func waitFinished(t *testing.T, svc *runs.Service, id string) *runs.Run {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		run, err := svc.Get(id)
		require.NoError(t, err)
		if run.State != runs.StatePending && run.State != runs.StateRunning {
			return run
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("run did not finish in time")
	return nil
}

func TestServiceLaunchCompletes(t *testing.T) {
	newStore, buildSources := memoryBuilders()
	svc := runs.NewService(zap.NewNop(), recon.Options{PageSize: 10}, newStore, buildSources)

	run, err := svc.Launch()
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)

	finished := waitFinished(t, svc, run.ID)
	assert.Equal(t, runs.StateComplete, finished.State)
	assert.NotNil(t, finished.Finished)

	rep, err := svc.Report(run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, rep.RunID)
	assert.Equal(t, int64(3), rep.Total)
	assert.Equal(t, int64(1), rep.Match)
	assert.Equal(t, int64(1), rep.Differing)
	assert.Equal(t, int64(1), rep.TargetOnly)
}

func TestServiceSingleFlight(t *testing.T) {
	newStore, _ := memoryBuilders()
	release := make(chan struct{})
	svc := runs.NewService(zap.NewNop(), recon.Options{}, newStore, memoryHoldingSources(release))

	first, err := svc.Launch()
	require.NoError(t, err)

	_, err = svc.Launch()
	assert.ErrorIs(t, err, runs.ErrRunActive)

	close(release)
	waitFinished(t, svc, first.ID)

	// Another run may start once the first has finished.
	second, err := svc.Launch()
	require.NoError(t, err)
	waitFinished(t, svc, second.ID)
}

func TestServiceSourceFailure(t *testing.T) {
	newStore, _ := memoryBuilders()
	buildSources := func() (source.Source, source.Source, error) {
		return nil, nil, errors.New("dsn refused")
	}
	svc := runs.NewService(zap.NewNop(), recon.Options{}, newStore, buildSources)

	run, err := svc.Launch()
	require.NoError(t, err)

	finished := waitFinished(t, svc, run.ID)
	assert.Equal(t, runs.StateFailed, finished.State)
	assert.Contains(t, finished.Error, "dsn refused")

	_, err = svc.Report(run.ID)
	assert.ErrorIs(t, err, runs.ErrNotFound)
}

func TestServiceListOrderAndGet(t *testing.T) {
	newStore, buildSources := memoryBuilders()
	svc := runs.NewService(zap.NewNop(), recon.Options{}, newStore, buildSources)

	first, err := svc.Launch()
	require.NoError(t, err)
	waitFinished(t, svc, first.ID)

	second, err := svc.Launch()
	require.NoError(t, err)
	waitFinished(t, svc, second.ID)

	list := svc.List()
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	_, err = svc.Get("missing")
	assert.ErrorIs(t, err, runs.ErrNotFound)
}

func TestServiceCancel(t *testing.T) {
	newStore, _ := memoryBuilders()
	started := make(chan struct{})
	release := make(chan struct{})
	svc := runs.NewService(zap.NewNop(), recon.Options{}, newStore, memoryStartedSources(started, release))

	run, err := svc.Launch()
	require.NoError(t, err)
	<-started

	require.NoError(t, svc.Cancel(run.ID))
	close(release)

	finished := waitFinished(t, svc, run.ID)
	assert.Equal(t, runs.StateCanceled, finished.State)

	assert.ErrorIs(t, svc.Cancel("missing"), runs.ErrNotFound)
}
