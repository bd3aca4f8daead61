package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryLedger_AddContainsRemove(t *testing.T) {
	l := NewMemoryLedger(0)
	ctx := context.Background()
	now := time.Now().UTC()
	exp := now.Add(time.Hour)

	require.NoError(t, l.Add(ctx, "u1", "t1", exp, now))

	live, err := l.Contains(ctx, "u1", "t1", now)
	require.NoError(t, err)
	require.True(t, live)

	// Wrong user, wrong token.
	live, err = l.Contains(ctx, "u2", "t1", now)
	require.NoError(t, err)
	require.False(t, live)
	live, err = l.Contains(ctx, "u1", "t2", now)
	require.NoError(t, err)
	require.False(t, live)

	require.NoError(t, l.Remove(ctx, "u1", "t1"))
	require.ErrorIs(t, l.Remove(ctx, "u1", "t1"), ErrTokenNotFound)

	live, err = l.Contains(ctx, "u1", "t1", now)
	require.NoError(t, err)
	require.False(t, live)
}

func TestMemoryLedger_ExpiredNotLive(t *testing.T) {
	l := NewMemoryLedger(0)
	ctx := context.Background()
	now := time.Now().UTC()
	exp := now.Add(time.Minute)

	require.NoError(t, l.Add(ctx, "u1", "t1", exp, now))

	live, err := l.Contains(ctx, "u1", "t1", exp.Add(time.Second))
	require.NoError(t, err)
	require.False(t, live)

	// Expired entries are pruned, so rotating off one fails too.
	err = l.Replace(ctx, "u1", "t1", "t2", exp.Add(time.Hour), exp.Add(time.Second))
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestMemoryLedger_Replace(t *testing.T) {
	l := NewMemoryLedger(0)
	ctx := context.Background()
	now := time.Now().UTC()
	exp := now.Add(time.Hour)

	require.NoError(t, l.Add(ctx, "u1", "old", exp, now))
	require.NoError(t, l.Replace(ctx, "u1", "old", "new", exp, now))

	live, err := l.Contains(ctx, "u1", "old", now)
	require.NoError(t, err)
	require.False(t, live)
	live, err = l.Contains(ctx, "u1", "new", now)
	require.NoError(t, err)
	require.True(t, live)

	// Replaying the rotated token fails.
	require.ErrorIs(t, l.Replace(ctx, "u1", "old", "newer", exp, now), ErrTokenNotFound)
}

func TestMemoryLedger_ReplaceConcurrentSingleWinner(t *testing.T) {
	l := NewMemoryLedger(0)
	ctx := context.Background()
	now := time.Now().UTC()
	exp := now.Add(time.Hour)

	require.NoError(t, l.Add(ctx, "u1", "old", exp, now))

	const racers = 32
	var wg sync.WaitGroup
	errs := make([]error, racers)
	start := make(chan struct{})

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = l.Replace(ctx, "u1", "old", "new-"+string(rune('a'+i)), exp, now)
		}(i)
	}
	close(start)
	wg.Wait()

	var wins int
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			require.ErrorIs(t, err, ErrTokenNotFound)
		}
	}
	require.Equal(t, 1, wins)
}

func TestMemoryLedger_CapEvictsOldest(t *testing.T) {
	l := NewMemoryLedger(2)
	ctx := context.Background()
	now := time.Now().UTC()
	exp := now.Add(time.Hour)

	require.NoError(t, l.Add(ctx, "u1", "t1", exp, now))
	require.NoError(t, l.Add(ctx, "u1", "t2", exp, now.Add(time.Second)))
	require.NoError(t, l.Add(ctx, "u1", "t3", exp, now.Add(2*time.Second)))

	live, err := l.Contains(ctx, "u1", "t1", now.Add(3*time.Second))
	require.NoError(t, err)
	require.False(t, live, "oldest token should have been evicted")

	for _, tok := range []string{"t2", "t3"} {
		live, err = l.Contains(ctx, "u1", tok, now.Add(3*time.Second))
		require.NoError(t, err)
		require.True(t, live)
	}
}

func TestMemoryLedger_UsersIsolated(t *testing.T) {
	l := NewMemoryLedger(0)
	ctx := context.Background()
	now := time.Now().UTC()
	exp := now.Add(time.Hour)

	require.NoError(t, l.Add(ctx, "u1", "shared", exp, now))
	require.NoError(t, l.Add(ctx, "u2", "shared", exp, now))

	require.NoError(t, l.Remove(ctx, "u1", "shared"))

	live, err := l.Contains(ctx, "u2", "shared", now)
	require.NoError(t, err)
	require.True(t, live)
}
