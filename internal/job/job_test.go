package job

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"rpgserver/internal/metrics"
	"rpgserver/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type mockOutboxStore struct {
	mock.Mock
}

func (m *mockOutboxStore) GetPendingMessages(ctx context.Context, limit int) ([]*model.OutboxMessage, error) {
	args := m.Called(ctx, limit)
	msgs, _ := args.Get(0).([]*model.OutboxMessage)
	return msgs, args.Error(1)
}

func (m *mockOutboxStore) MarkAsSent(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockOutboxStore) IncrementRetryCount(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockOutboxStore) MarkAsFailed(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type fakePublisher struct {
	mu     sync.Mutex
	fail   map[string]bool
	sent   []string
	closed bool
}

func (p *fakePublisher) Publish(_ context.Context, topic, key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail[key] {
		return errors.New("broker unavailable")
	}
	p.sent = append(p.sent, topic+"/"+key)
	return nil
}

func (p *fakePublisher) Close() error {
	p.closed = true
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestOutboxRelay_RunOnce(t *testing.T) {
	ctx := context.Background()
	store := new(mockOutboxStore)
	pub := &fakePublisher{fail: map[string]bool{"k2": true, "k3": true}}
	m := metrics.New(prometheus.NewRegistry())

	messages := []*model.OutboxMessage{
		{ID: 1, Topic: "game-event", MessageKey: "k1", Payload: "{}"},
		{ID: 2, Topic: "game-event", MessageKey: "k2", Payload: "{}", RetryCount: 0},
		{ID: 3, Topic: "game-event", MessageKey: "k3", Payload: "{}", RetryCount: 2},
	}
	store.On("GetPendingMessages", ctx, 10).Return(messages, nil)
	store.On("MarkAsSent", ctx, int64(1)).Return(nil)
	store.On("IncrementRetryCount", ctx, int64(2)).Return(nil)
	store.On("MarkAsFailed", ctx, int64(3)).Return(nil)

	relay := NewOutboxRelay(store, pub, OutboxRelayOptions{BatchSize: 10, MaxRetry: 3}, m, discardLogger())
	sent := relay.RunOnce(ctx)

	assert.Equal(t, 1, sent)
	assert.Equal(t, []string{"game-event/k1"}, pub.sent)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.OutboxPublished))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.OutboxFailures))
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "MarkAsFailed", ctx, int64(2))
	store.AssertNotCalled(t, "IncrementRetryCount", ctx, int64(3))
}

func TestOutboxRelay_QueryError(t *testing.T) {
	ctx := context.Background()
	store := new(mockOutboxStore)
	store.On("GetPendingMessages", ctx, 100).Return(nil, errors.New("db down"))

	relay := NewOutboxRelay(store, &fakePublisher{}, OutboxRelayOptions{}, nil, discardLogger())
	assert.Equal(t, 0, relay.RunOnce(ctx))
	store.AssertExpectations(t)
}

func TestOutboxRelay_StopAndCancel(t *testing.T) {
	store := new(mockOutboxStore)
	store.On("GetPendingMessages", mock.Anything, mock.Anything).Return(nil, nil)

	t.Run("stop", func(t *testing.T) {
		relay := NewOutboxRelay(store, &fakePublisher{}, OutboxRelayOptions{Interval: time.Millisecond}, nil, discardLogger())
		done := make(chan struct{})
		go func() {
			relay.Start(context.Background())
			close(done)
		}()
		time.Sleep(5 * time.Millisecond)
		relay.Stop()
		relay.Stop()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("relay did not stop")
		}
	})

	t.Run("context cancel", func(t *testing.T) {
		relay := NewOutboxRelay(store, &fakePublisher{}, OutboxRelayOptions{Interval: time.Millisecond}, nil, discardLogger())
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			relay.Start(ctx)
			close(done)
		}()
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("relay did not exit on cancel")
		}
	})
}

type fakeTokenStore struct {
	mu    sync.Mutex
	calls []time.Time
	n     int64
	err   error
}

func (s *fakeTokenStore) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, before)
	return s.n, s.err
}

func TestTokenSweeper_RunOnce(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeTokenStore{n: 3}
	m := metrics.New(prometheus.NewRegistry())

	sweeper := NewTokenSweeper(store, time.Minute, m, discardLogger())
	sweeper.now = func() time.Time { return now }

	require.Equal(t, int64(3), sweeper.RunOnce(context.Background()))
	assert.Equal(t, []time.Time{now}, store.calls)
	assert.Equal(t, float64(3), testutil.ToFloat64(m.TokensSwept))

	store.err = errors.New("db down")
	assert.Equal(t, int64(0), sweeper.RunOnce(context.Background()))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.TokensSwept))
}

func TestTokenSweeper_Stop(t *testing.T) {
	sweeper := NewTokenSweeper(&fakeTokenStore{}, time.Millisecond, nil, discardLogger())
	done := make(chan struct{})
	go func() {
		sweeper.Start(context.Background())
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	sweeper.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
