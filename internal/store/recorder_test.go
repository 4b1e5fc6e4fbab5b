package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu      sync.Mutex
	results []*GameResult
}

func (m *memoryStore) SaveResult(_ context.Context, res *GameResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	res.ID = int64(len(m.results) + 1)
	m.results = append(m.results, res)
	return nil
}

func (m *memoryStore) ListResults(_ context.Context, limit int) ([]*GameResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*GameResult, 0, len(m.results))
	for i := len(m.results) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.results[i])
	}
	return out, nil
}

func (m *memoryStore) Close() error { return nil }

func (m *memoryStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.results)
}

func TestRecorderPersistsQueuedResults(t *testing.T) {
	st := &memoryStore{}
	rec := NewRecorder(st, 4, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rec.Run(ctx)
		close(done)
	}()

	require.True(t, rec.Record(GameResult{Room: 1, Black: 40, White: 24, Winner: "black", FinishedAt: time.Now()}))
	assert.Eventually(t, func() bool { return st.count() == 1 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestRecorderDropsWhenFullAndFlushesOnStop(t *testing.T) {
	st := &memoryStore{}
	rec := NewRecorder(st, 2, nil)

	assert.True(t, rec.Record(GameResult{Room: 1}))
	assert.True(t, rec.Record(GameResult{Room: 2}))
	assert.False(t, rec.Record(GameResult{Room: 3}), "queue is full while Run is not draining")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.Run(ctx)

	assert.Equal(t, 2, st.count())
}
