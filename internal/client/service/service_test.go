package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicedesk/internal/allocation"
	"servicedesk/internal/client"
	"servicedesk/internal/platform/audit"
	dErrors "servicedesk/pkg/domain-errors"
	"servicedesk/pkg/platform/sentinel"
)

func newService(t *testing.T) (*Service, *client.InMemoryStore, *audit.MemoryPublisher) {
	t.Helper()
	store := client.NewInMemoryStore()
	sink := audit.NewMemoryPublisher()
	svc := New(store, allocation.New(), sink, slog.Default(),
		WithClock(func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }))
	return svc, store, sink
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("allocates the dedicated number from the name", func(t *testing.T) {
		svc, _, _ := newService(t)

		created, err := svc.Create(ctx, "ops@corp", CreateInput{Name: "Global Tech Inc."})
		require.NoError(t, err)
		assert.Equal(t, "G01", created.DedicatedNumber)

		second, err := svc.Create(ctx, "ops@corp", CreateInput{Name: "Granite Works"})
		require.NoError(t, err)
		assert.Equal(t, "G02", second.DedicatedNumber)
	})

	t.Run("rejects a blank name", func(t *testing.T) {
		svc, store, _ := newService(t)

		_, err := svc.Create(ctx, "ops@corp", CreateInput{Name: "   "})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))

		clients, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, clients, "no record persisted on validation failure")
	})

	t.Run("emits an audit event with the allocated number", func(t *testing.T) {
		svc, _, sink := newService(t)

		created, err := svc.Create(ctx, "ops@corp", CreateInput{Name: "Acme"})
		require.NoError(t, err)

		events := sink.Events()
		require.Len(t, events, 1)
		assert.Equal(t, audit.ActionClientCreated, events[0].Action)
		assert.Equal(t, "ops@corp", events[0].Actor)
		assert.Equal(t, created.ID.String(), events[0].EntityID)
		assert.Equal(t, []string{"A01"}, events[0].Codes)
	})
}

func TestCreate_Exhausted(t *testing.T) {
	// An always-conflicting store drives the allocator to its bound; the
	// service surfaces that as a retryable congestion error.
	store := &exhaustingStore{InMemoryStore: client.NewInMemoryStore()}
	svc := New(store, allocation.New(allocation.WithMaxAttempts(2)), nil, slog.Default())

	_, err := svc.Create(context.Background(), "ops@corp", CreateInput{Name: "Acme"})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeCongested))
}

// exhaustingStore rejects every insert as a lost race.
type exhaustingStore struct {
	*client.InMemoryStore
}

func (s *exhaustingStore) Insert(context.Context, *client.Client) error {
	return sentinel.ErrDuplicateCode
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	created, err := svc.Create(ctx, "ops@corp", CreateInput{Name: "Acme"})
	require.NoError(t, err)

	found, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.DedicatedNumber, found.DedicatedNumber)

	_, err = svc.Get(ctx, uuid.New())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
