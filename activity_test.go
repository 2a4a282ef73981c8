package console

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivitySinkFunc(t *testing.T) {
	var got ActivityEvent
	sink := ActivitySinkFunc(func(ctx context.Context, event ActivityEvent) error {
		got = event
		return nil
	})

	event := ActivityEvent{
		EventType:  ActivityEventLoginSuccess,
		UserID:     "1",
		OccurredAt: time.Now(),
	}
	require.NoError(t, sink.Record(context.Background(), event))
	assert.Equal(t, event, got)
}

func TestNormalizeActivitySink(t *testing.T) {
	normalized := normalizeActivitySink(nil)
	require.NotNil(t, normalized)
	assert.NoError(t, normalized.Record(context.Background(), ActivityEvent{}))

	sink := ActivitySinkFunc(func(context.Context, ActivityEvent) error { return nil })
	assert.NotNil(t, normalizeActivitySink(sink))
}
