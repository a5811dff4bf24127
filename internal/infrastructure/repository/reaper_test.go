package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hilthontt/parley/internal/domain"
	"github.com/hilthontt/parley/internal/infrastructure/logging"
)

type nopLogger struct{}

func (nopLogger) Init() {}

func (nopLogger) Debug(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Info(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any)  {}
func (nopLogger) Warn(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any)  {}
func (nopLogger) Error(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Fatal(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}
func (nopLogger) Fatalf(string, ...any) {}

func TestSweepEvictsCompletedRooms(t *testing.T) {
	repo := NewRoomRepository(Options{})
	ctx := context.Background()

	room, err := repo.Create(ctx, "soon done")
	require.NoError(t, err)
	_, token, err := room.Join("alice")
	require.NoError(t, err)
	require.NoError(t, room.Complete(token, "done"))

	expired := 0
	reaper := NewReaper(repo, nopLogger{}, ReaperOptions{
		CompletedTTL: 20 * time.Millisecond,
		OnExpire:     func() { expired++ },
	})

	// Inside the TTL the room must survive a sweep.
	reaper.Sweep(ctx)
	assert.Equal(t, 1, repo.Len())

	time.Sleep(30 * time.Millisecond)
	reaper.Sweep(ctx)

	assert.Equal(t, 0, repo.Len())
	assert.Equal(t, 1, expired)

	_, err = repo.GetByID(ctx, room.ID())
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)

	// The room itself was expired, not just dropped from the registry.
	_, err = room.Info(token)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestSweepEvictsStaleActiveRooms(t *testing.T) {
	repo := NewRoomRepository(Options{})
	ctx := context.Background()

	room, err := repo.Create(ctx, "abandoned")
	require.NoError(t, err)
	_, _, err = room.Join("alice")
	require.NoError(t, err)

	reaper := NewReaper(repo, nopLogger{}, ReaperOptions{
		ActiveTTL: 20 * time.Millisecond,
	})

	time.Sleep(30 * time.Millisecond)
	reaper.Sweep(ctx)

	assert.Equal(t, 0, repo.Len())
}

func TestSweepLeavesActiveRoomsWhenDisabled(t *testing.T) {
	repo := NewRoomRepository(Options{})
	ctx := context.Background()

	_, err := repo.Create(ctx, "long lived")
	require.NoError(t, err)

	// ActiveTTL 0 disables the abandoned-room policy entirely.
	reaper := NewReaper(repo, nopLogger{}, ReaperOptions{
		CompletedTTL: time.Millisecond,
	})

	time.Sleep(10 * time.Millisecond)
	reaper.Sweep(ctx)

	assert.Equal(t, 1, repo.Len())
}

func TestSweepClosesLiveStreams(t *testing.T) {
	repo := NewRoomRepository(Options{})
	ctx := context.Background()

	room, err := repo.Create(ctx, "streamed")
	require.NoError(t, err)
	_, token, err := room.Join("alice")
	require.NoError(t, err)

	sub, err := room.Subscribe(token)
	require.NoError(t, err)

	// An active room expired by the abandoned-room policy still has live
	// streams; eviction must end them.
	reaper := NewReaper(repo, nopLogger{}, ReaperOptions{
		ActiveTTL: time.Millisecond,
	})
	time.Sleep(10 * time.Millisecond)
	reaper.Sweep(ctx)

	ev, ok := <-sub.Events()
	require.True(t, ok)
	assert.Equal(t, domain.EventDisconnected, ev.Kind)

	_, ok = <-sub.Events()
	assert.False(t, ok, "eviction must close remaining streams")
}

func TestOnExpireFiresAfterEviction(t *testing.T) {
	repo := NewRoomRepository(Options{})
	ctx := context.Background()

	room, err := repo.Create(ctx, "soon gone")
	require.NoError(t, err)
	_, token, err := room.Join("alice")
	require.NoError(t, err)
	require.NoError(t, room.Complete(token, "done"))

	// Gauges derived from Len inside the callback must already see the
	// eviction.
	var lenAtExpire int
	reaper := NewReaper(repo, nopLogger{}, ReaperOptions{
		CompletedTTL: time.Millisecond,
		OnExpire:     func() { lenAtExpire = repo.Len() },
	})

	time.Sleep(10 * time.Millisecond)
	reaper.Sweep(ctx)

	assert.Equal(t, 0, lenAtExpire)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	repo := NewRoomRepository(Options{})

	reaper := NewReaper(repo, nopLogger{}, ReaperOptions{
		Interval: time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reaper.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop after cancellation")
	}
}
