package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/internal/infrastructure/outbox"
)

type fakeHealth struct{ online atomic.Bool }

func (h *fakeHealth) IsOnline() bool { return h.online.Load() }

type fakeSender struct {
	mu   sync.Mutex
	fail bool
	sent []domain.Notification
}

func (s *fakeSender) Send(_ context.Context, n domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("channel unavailable")
	}
	s.sent = append(s.sent, n)
	return nil
}

func (s *fakeSender) setFail(fail bool) {
	s.mu.Lock()
	s.fail = fail
	s.mu.Unlock()
}

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func newOutbox(t *testing.T, maxRetries int) (*NotificationOutbox, *fakeSender, *fakeHealth) {
	t.Helper()
	store, err := outbox.Open(filepath.Join(t.TempDir(), "outbox.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	sender := &fakeSender{}
	health := &fakeHealth{}
	health.online.Store(true)
	o := NewNotificationOutbox(store, sender, health, nil, OutboxConfig{MaxRetries: maxRetries})
	return o, sender, health
}

func TestNotify_SendsWhenOnline(t *testing.T) {
	o, sender, _ := newOutbox(t, 3)

	require.NoError(t, o.Notify(context.Background(), domain.Notification{UserID: 1, Kind: domain.NotifyTaskAssigned}))
	assert.Equal(t, 1, sender.count())
	assert.Zero(t, o.Size())
}

func TestNotify_QueuesWhenOfflineAndDrainsLater(t *testing.T) {
	o, sender, health := newOutbox(t, 3)
	ctx := context.Background()
	health.online.Store(false)

	require.NoError(t, o.Notify(ctx, domain.Notification{UserID: 1}))
	require.NoError(t, o.Notify(ctx, domain.Notification{UserID: 2}))
	assert.Zero(t, sender.count())
	assert.Equal(t, 2, o.Size())

	// Offline drains are skipped.
	require.NoError(t, o.Drain(ctx))
	assert.Equal(t, 2, o.Size())

	health.online.Store(true)
	require.NoError(t, o.Drain(ctx))
	assert.Zero(t, o.Size())
	require.Equal(t, 2, sender.count())
	assert.Equal(t, int64(1), sender.sent[0].UserID)
	assert.False(t, sender.sent[0].CreatedAt.IsZero())
}

func TestNotify_QueuesOnSendFailure(t *testing.T) {
	o, sender, _ := newOutbox(t, 2)
	ctx := context.Background()
	sender.setFail(true)

	require.NoError(t, o.Notify(ctx, domain.Notification{UserID: 9}))
	assert.Equal(t, 1, o.Size())

	require.NoError(t, o.Drain(ctx))
	assert.Equal(t, 1, o.Size())

	// Second failed attempt exhausts retries.
	require.NoError(t, o.Drain(ctx))
	assert.Zero(t, o.Size())
	dead, err := o.store.DeadLetters()
	require.NoError(t, err)
	assert.Equal(t, 1, dead)
}

func TestNotificationOutbox_StartStop(t *testing.T) {
	o, _, _ := newOutbox(t, 1)
	o.Start()
	o.Stop(context.Background())
	assert.NoError(t, o.Purge())
}
