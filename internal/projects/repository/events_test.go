package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/domain"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/repository"
)

func receive(t *testing.T, ch <-chan domain.SectionEvent) domain.SectionEvent {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return domain.SectionEvent{}
}

func testBroker(t *testing.T, broker repository.Broker) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, stop, err := broker.Subscribe(ctx, "doc-1")
	require.NoError(t, err)
	defer stop()

	other, stopOther, err := broker.Subscribe(ctx, "doc-2")
	require.NoError(t, err)
	defer stopOther()

	require.NoError(t, broker.Publish(ctx, domain.SectionEvent{
		DocumentID: "doc-1", SectionID: "sec-1", State: domain.StateGenerating, At: time.Now(),
	}))

	ev := receive(t, events)
	assert.Equal(t, "sec-1", ev.SectionID)
	assert.Equal(t, domain.StateGenerating, ev.State)

	select {
	case ev := <-other:
		t.Fatalf("unexpected event for other document: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}

	stop()
	assert.Eventually(t, func() bool {
		_, ok := <-events
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestMemoryBroker(t *testing.T) {
	testBroker(t, repository.NewMemoryBroker())
}

func TestRedisBroker(t *testing.T) {
	client, _ := setupTestRedis(t)
	testBroker(t, repository.NewRedisBroker(client))
}
