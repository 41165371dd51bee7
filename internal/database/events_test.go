package database

import (
	"context"
	"encoding/json"
	"photogenie/internal/events"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogEventAndGetSince(t *testing.T) {
	ctx := context.Background()

	first, err := testStore.LogEvent(ctx, events.PostCreated, map[string]int64{"id": 1})
	require.NoError(t, err)
	require.NotZero(t, first.ID)
	require.NotZero(t, first.EventTime)

	second, err := testStore.LogEvent(ctx, events.PostDeleted, map[string]int64{"id": 1})
	require.NoError(t, err)
	require.Greater(t, second.ID, first.ID)

	since, err := testStore.GetEventsSince(ctx, first.ID)
	require.NoError(t, err)
	require.NotEmpty(t, since)
	require.Equal(t, second.ID, since[0].ID)
	require.Equal(t, events.PostDeleted, since[0].EventType)

	var payload map[string]int64
	require.NoError(t, json.Unmarshal(since[0].Payload, &payload))
	require.Equal(t, int64(1), payload["id"])
}

func TestLogEvent_RolledBackWithTransaction(t *testing.T) {
	ctx := context.Background()
	var logged *events.Event

	err := testStore.ExecTx(ctx, func(q *Queries) error {
		var err error
		logged, err = q.LogEvent(ctx, events.PostUpdated, map[string]string{"reason": "rollback"})
		if err != nil {
			return err
		}
		return ErrPostNotFound
	})
	require.ErrorIs(t, err, ErrPostNotFound)

	since, err := testStore.GetEventsSince(ctx, logged.ID-1)
	require.NoError(t, err)
	for _, e := range since {
		require.NotEqual(t, logged.ID, e.ID)
	}
}
