package singleflight

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestDo_Coalesces(t *testing.T) {
	var g Group[string, int]
	var calls int64
	release := make(chan struct{})

	const n = 32
	var ready sync.WaitGroup
	ready.Add(n)

	var eg errgroup.Group
	for i := 0; i < n; i++ {
		eg.Go(func() error {
			ready.Done()
			v, _, err := g.Do(context.Background(), "k", func() (int, error) {
				atomic.AddInt64(&calls, 1)
				<-release
				return 7, nil
			})
			if err == nil && v != 7 {
				t.Errorf("got %d", v)
			}
			return err
		})
	}

	// Let followers pile up behind the leader.
	ready.Wait()
	require.Eventually(t, func() bool { return atomic.LoadInt64(&calls) == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)

	require.NoError(t, eg.Wait())
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls), "fn must run once for the whole flight")
	assert.Zero(t, g.Inflight())
}

func TestDo_FollowerCancel(t *testing.T) {
	var g Group[int, string]
	started := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_, _, _ = g.Do(context.Background(), 1, func() (string, error) {
			close(started)
			<-release
			return "v", nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, shared, err := g.Do(ctx, 1, func() (string, error) { return "other", nil })
	assert.True(t, shared)
	assert.ErrorIs(t, err, context.Canceled)
	close(release)
}

// After ForgetAll a new caller must start its own flight.
func TestForgetAll_StartsNewFlight(t *testing.T) {
	var g Group[string, int]
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan int)

	go func() {
		v, _, _ := g.Do(context.Background(), "k", func() (int, error) {
			close(started)
			<-release
			return 1, nil
		})
		done <- v
	}()
	<-started

	g.ForgetAll()
	require.Zero(t, g.Inflight())

	v, shared, err := g.Do(context.Background(), "k", func() (int, error) { return 2, nil })
	require.NoError(t, err)
	assert.False(t, shared)
	assert.Equal(t, 2, v)

	close(release)
	assert.Equal(t, 1, <-done)
	assert.Zero(t, g.Inflight())
}
