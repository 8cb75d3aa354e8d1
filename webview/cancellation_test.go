package webview

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCancellationManager_CancelAndRelease(t *testing.T) {
	m := NewCancellationManager()

	ctx, release := m.Track(context.Background(), "a")
	assert.Equal(t, 1, m.Len())

	assert.True(t, m.Cancel("a"))
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.Zero(t, m.Len())
	assert.False(t, m.Cancel("a"))

	release()
	release()
	assert.Zero(t, m.Len())
}

func TestCancellationManager_ReleaseOnCompletion(t *testing.T) {
	m := NewCancellationManager()
	ctx, release := m.Track(context.Background(), "a")
	release()

	assert.Zero(t, m.Len())
	assert.Error(t, ctx.Err())
	assert.False(t, m.Cancel("a"))
}

func TestCancellationManager_RetrackCancelsOlder(t *testing.T) {
	m := NewCancellationManager()
	first, releaseFirst := m.Track(context.Background(), "typeahead")
	second, releaseSecond := m.Track(context.Background(), "typeahead")
	defer releaseSecond()

	assert.ErrorIs(t, first.Err(), context.Canceled)
	assert.NoError(t, second.Err())

	// The older request finishing must not drop the newer mapping.
	releaseFirst()
	assert.Equal(t, 1, m.Len())
	assert.True(t, m.Cancel("typeahead"))
	assert.ErrorIs(t, second.Err(), context.Canceled)
}

func TestCancellationManager_EmptyKeyUntracked(t *testing.T) {
	m := NewCancellationManager()
	ctx, release := m.Track(context.Background(), "")
	assert.Zero(t, m.Len())
	assert.NoError(t, ctx.Err())
	release()
	assert.Error(t, ctx.Err())
}
