package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenghermawan/clandestineproject/internal/audit"
)

func TestInMemoryStoreKeepsNewestWithinCapacity(t *testing.T) {
	s := NewInMemoryStore(2)
	ctx := context.Background()
	for _, target := range []string{"a", "b", "c"} {
		require.NoError(t, s.Append(ctx, audit.Event{TargetUserID: target}))
	}

	events, err := s.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "c", events[0].TargetUserID)
	assert.Equal(t, "b", events[1].TargetUserID)

	limited, _ := s.ListRecent(ctx, 1)
	assert.Len(t, limited, 1)

	s.Clear()
	empty, _ := s.ListRecent(ctx, 0)
	assert.Empty(t, empty)
}
