package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"lingvovault/sources/tracing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocalConvState() (*ConvStateRepository, *tracing.Logger) {
	log := tracing.NewConsoleLogger()
	return NewConvStateRepository(nil, log), log
}

func TestConvStateIsolatedPerIdentity(t *testing.T) {
	repo, log := newLocalConvState()

	require.NoError(t, repo.SetState(log, 1, NewConvState(StepSearchQuery, FlowFreeText)))
	require.NoError(t, repo.SetState(log, 2, NewConvState(StepUploadFile, FlowStructured)))

	first, err := repo.GetState(log, 1)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, StepSearchQuery, first.Step)

	second, err := repo.GetState(log, 2)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, StepUploadFile, second.Step)

	require.NoError(t, repo.ClearState(log, 1))

	cleared, err := repo.GetState(log, 1)
	require.NoError(t, err)
	assert.Nil(t, cleared)

	untouched, err := repo.GetState(log, 2)
	require.NoError(t, err)
	require.NotNil(t, untouched)
	assert.Equal(t, StepUploadFile, untouched.Step)
}

func TestConvStateAbsentByDefault(t *testing.T) {
	repo, log := newLocalConvState()

	state, err := repo.GetState(log, 404)
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestConvStateOverwriteReplacesStep(t *testing.T) {
	repo, log := newLocalConvState()

	require.NoError(t, repo.SetState(log, 1, NewConvState(StepUploadFile, FlowStructured)))
	require.NoError(t, repo.SetState(log, 1, NewConvState(StepUploadTitle, FlowStructured)))

	state, err := repo.GetState(log, 1)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, StepUploadTitle, state.Step)
}

func TestConvStateFieldsAccumulate(t *testing.T) {
	repo, log := newLocalConvState()

	state := NewConvState(StepUploadTitle, FlowStructured).
		WithField("file_id", "abc").
		WithField("kind", "document")
	require.NoError(t, repo.SetState(log, 1, state))

	loaded, err := repo.GetState(log, 1)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "abc", loaded.Fields["file_id"])
	assert.Equal(t, "document", loaded.Fields["kind"])
}

type fakeStateStore struct {
	mu      sync.Mutex
	data    map[string]string
	failing bool
	calls   int
}

func newFakeStateStore() *fakeStateStore {
	return &fakeStateStore{data: map[string]string{}}
}

func (f *fakeStateStore) fail(failing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = failing
}

func (f *fakeStateStore) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failing {
		return redis.NewStringResult("", errors.New("connection refused"))
	}
	value, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func (f *fakeStateStore) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failing {
		return redis.NewStatusResult("", errors.New("connection refused"))
	}
	f.data[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeStateStore) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failing {
		return redis.NewIntResult(0, errors.New("connection refused"))
	}
	for _, key := range keys {
		delete(f.data, key)
	}
	return redis.NewIntResult(1, nil)
}

func (f *fakeStateStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeStateStore) holds(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok
}

func TestConvStateDegradesRecoversAndMigrates(t *testing.T) {
	log := tracing.NewConsoleLogger()
	store := newFakeStateStore()
	repo := NewConvStateRepository(nil, log)
	repo.redis = store

	require.NoError(t, repo.SetState(log, 1, NewConvState(StepSearchQuery, FlowFreeText)))
	assert.True(t, store.holds(repo.key(1)))

	store.fail(true)

	// The failed write degrades the repository; the state lands locally and
	// stays readable.
	require.NoError(t, repo.SetState(log, 2, NewConvState(StepUploadFile, FlowStructured)))
	assert.True(t, repo.isDegraded())

	parked, err := repo.GetState(log, 2)
	require.NoError(t, err)
	require.NotNil(t, parked)
	assert.Equal(t, StepUploadFile, parked.Step)

	// Within the probe interval no further redis calls are attempted.
	before := store.callCount()
	_, err = repo.GetState(log, 2)
	require.NoError(t, err)
	assert.Equal(t, before, store.callCount())

	// Redis comes back; once a probe is due the next call recovers and
	// migrates the parked entry.
	store.fail(false)
	repo.mu.Lock()
	repo.lastProbe = time.Now().Add(-redisProbeInterval - time.Second)
	repo.mu.Unlock()

	migrated, err := repo.GetState(log, 2)
	require.NoError(t, err)
	require.NotNil(t, migrated)
	assert.Equal(t, StepUploadFile, migrated.Step)

	assert.False(t, repo.isDegraded())
	assert.True(t, store.holds(repo.key(2)))

	repo.mu.RLock()
	_, stillLocal := repo.local[2]
	repo.mu.RUnlock()
	assert.False(t, stillLocal)

	// Back on the shared tier for good: reads now come from redis.
	restored, err := repo.GetState(log, 2)
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, StepUploadFile, restored.Step)
}

func TestConvStateStaysLocalBetweenProbes(t *testing.T) {
	log := tracing.NewConsoleLogger()
	store := newFakeStateStore()
	store.fail(true)
	repo := NewConvStateRepository(nil, log)
	repo.redis = store

	require.NoError(t, repo.SetState(log, 1, NewConvState(StepSearchQuery, FlowFreeText)))
	require.True(t, repo.isDegraded())

	before := store.callCount()
	require.NoError(t, repo.SetState(log, 1, NewConvState(StepUploadTitle, FlowStructured)))
	require.NoError(t, repo.ClearState(log, 1))

	state, err := repo.GetState(log, 1)
	require.NoError(t, err)
	assert.Nil(t, state)
	assert.Equal(t, before, store.callCount())
}

func TestConvStateExpiresLocally(t *testing.T) {
	repo, log := newLocalConvState()

	stale := NewConvState(StepSearchQuery, FlowFreeText)
	stale.CreatedAt = time.Now().Add(-convStateTTL - time.Minute)
	require.NoError(t, repo.SetState(log, 1, stale))

	state, err := repo.GetState(log, 1)
	require.NoError(t, err)
	assert.Nil(t, state)
}
