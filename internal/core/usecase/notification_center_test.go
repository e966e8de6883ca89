package usecase

import (
	"context"
	"fmt"
	"property-explorer/internal/core/domain"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationCenter_DeduplicatesWithinWindow(t *testing.T) {
	clock := clockwork.NewFakeClock()
	notifier := &fakeNotifier{}
	center := NewNotificationCenter(context.Background(), "s1", notifier, clock)

	assert.True(t, center.Error(domain.SourceFetch500, "server error"))
	assert.False(t, center.Error(domain.SourceFetch500, "server error"))
	assert.True(t, center.Error(domain.SourceFetch404, "server error"), "different source is a different key")

	clock.Advance(10 * time.Second)
	assert.True(t, center.Error(domain.SourceFetch500, "server error"))

	notes := notifier.notifications()
	require.Len(t, notes, 3)
	assert.Equal(t, domain.LevelError, notes[0].Level)
	assert.NotEmpty(t, notes[0].ID)
}

func TestNotificationCenter_CapacityEvictsOldest(t *testing.T) {
	clock := clockwork.NewFakeClock()
	center := NewNotificationCenter(context.Background(), "s1", nil, clock)

	for i := 0; i < DefaultNotificationCapacity; i++ {
		require.True(t, center.Error("src", fmt.Sprintf("m%d", i)))
		clock.Advance(time.Millisecond)
	}
	// 51-й ключ вытесняет самый старый
	require.True(t, center.Error("src", "overflow"))
	assert.True(t, center.Error("src", "m0"), "oldest key was evicted")
	assert.False(t, center.Error("src", "m10"))
}

func TestNotificationCenter_SuccessIsNotDeduplicated(t *testing.T) {
	notifier := &fakeNotifier{}
	center := NewNotificationCenter(context.Background(), "s1", notifier, clockwork.NewFakeClock())

	center.Success("saved")
	center.Success("saved")

	notes := notifier.notifications()
	require.Len(t, notes, 2)
	assert.Equal(t, domain.LevelSuccess, notes[1].Level)
}
