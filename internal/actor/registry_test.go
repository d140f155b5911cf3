package actor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_SerialisesPerKey(t *testing.T) {
	reg := NewRegistry[string]()
	ctx := context.Background()

	var inFlight, maxInFlight atomic.Int32
	counter := 0 // unsynchronised on purpose: only safe if jobs never overlap

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := reg.Do(ctx, "bill-1", func(context.Context) error {
				n := inFlight.Add(1)
				for {
					m := maxInFlight.Load()
					if n <= m || maxInFlight.CompareAndSwap(m, n) {
						break
					}
				}
				counter++
				inFlight.Add(-1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 200, counter)
	assert.Equal(t, int32(1), maxInFlight.Load())
}

func TestRegistry_PreservesArrivalOrder(t *testing.T) {
	reg := NewRegistry[string]()
	ctx := context.Background()

	release := make(chan struct{})
	var order []int
	var mu sync.Mutex

	// Hold the mailbox so the following jobs queue up behind it.
	done := make(chan error, 1)
	go func() {
		done <- reg.Do(ctx, "k", func(context.Context) error {
			<-release
			return nil
		})
	}()
	require.Eventually(t, func() bool { return reg.Len() == 1 }, time.Second, time.Millisecond)

	results := make([]chan error, 5)
	for i := range results {
		results[i] = make(chan error, 1)
		i := i
		go func() {
			results[i] <- reg.Do(ctx, "k", func(context.Context) error {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil
			})
		}()
		// Give each sender time to enqueue before the next one starts.
		time.Sleep(10 * time.Millisecond)
	}

	close(release)
	require.NoError(t, <-done)
	for _, ch := range results {
		require.NoError(t, <-ch)
	}

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestRegistry_KeysRunIndependently(t *testing.T) {
	reg := NewRegistry[string]()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// Each job waits for the other; this only completes if the two keys
	// are processed concurrently.
	aStarted := make(chan struct{})
	bStarted := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.NoError(t, reg.Do(ctx, "a", func(ctx context.Context) error {
			close(aStarted)
			select {
			case <-bStarted:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}))
	}()
	go func() {
		defer wg.Done()
		assert.NoError(t, reg.Do(ctx, "b", func(ctx context.Context) error {
			close(bStarted)
			select {
			case <-aStarted:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}))
	}()
	wg.Wait()
}

func TestRegistry_RetiresIdleMailboxes(t *testing.T) {
	reg := NewRegistry[string]()
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, reg.Do(ctx, key, func(context.Context) error { return nil }))
	}

	require.Eventually(t, func() bool { return reg.Len() == 0 }, time.Second, time.Millisecond)

	// A retired key comes back on demand.
	require.NoError(t, reg.Do(ctx, "a", func(context.Context) error { return nil }))
}

func TestRegistry_ReturnsJobError(t *testing.T) {
	reg := NewRegistry[string]()
	boom := errors.New("boom")

	err := reg.Do(context.Background(), "k", func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestRegistry_RecoversPanics(t *testing.T) {
	reg := NewRegistry[string]()

	err := reg.Do(context.Background(), "k", func(context.Context) error { panic("bad job") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad job")

	// The key keeps working after a panic.
	assert.NoError(t, reg.Do(context.Background(), "k", func(context.Context) error { return nil }))
}

func TestRegistry_CancelledContext(t *testing.T) {
	reg := NewRegistry[string]()

	t.Run("before submit", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		ran := false
		err := reg.Do(ctx, "k", func(context.Context) error { ran = true; return nil })
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, ran)
	})

	t.Run("while queued", func(t *testing.T) {
		release := make(chan struct{})
		blocker := make(chan error, 1)
		go func() {
			blocker <- reg.Do(context.Background(), "q", func(context.Context) error {
				<-release
				return nil
			})
		}()
		require.Eventually(t, func() bool { return reg.Len() == 1 }, time.Second, time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		var ran atomic.Bool
		queued := make(chan error, 1)
		go func() {
			queued <- reg.Do(ctx, "q", func(context.Context) error { ran.Store(true); return nil })
		}()
		time.Sleep(10 * time.Millisecond)
		cancel()

		assert.ErrorIs(t, <-queued, context.Canceled)
		close(release)
		require.NoError(t, <-blocker)

		require.Eventually(t, func() bool { return reg.Len() == 0 }, time.Second, time.Millisecond)
		assert.False(t, ran.Load(), "a job cancelled while queued must be skipped")
	})
}

func TestRegistry_FullMailboxHonoursContext(t *testing.T) {
	reg := NewRegistry[string]()

	release := make(chan struct{})
	var ran atomic.Int32
	job := func(context.Context) error {
		ran.Add(1)
		return nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, reg.Do(context.Background(), "k", func(context.Context) error {
			<-release
			return nil
		}))
	}()
	require.Eventually(t, func() bool { return reg.Len() == 1 }, time.Second, time.Millisecond)

	for i := 0; i < mailboxBuffer; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, reg.Do(context.Background(), "k", job))
		}()
	}
	queued := func() int {
		reg.mu.Lock()
		defer reg.mu.Unlock()
		mb, ok := reg.mailboxes["k"]
		if !ok {
			return 0
		}
		return len(mb.jobs)
	}
	require.Eventually(t, func() bool { return queued() == mailboxBuffer }, time.Second, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var overflowRan atomic.Bool
	start := time.Now()
	err := reg.Do(ctx, "k", func(context.Context) error {
		overflowRan.Store(true)
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second, "Do must not block past its deadline")

	close(release)
	wg.Wait()

	assert.Equal(t, int32(mailboxBuffer), ran.Load())
	assert.False(t, overflowRan.Load(), "a job whose send timed out must never run")
	require.Eventually(t, func() bool { return reg.Len() == 0 }, time.Second, time.Millisecond)
}

func TestRegistry_WithdrawnSendRetiresIdleWorker(t *testing.T) {
	reg := NewRegistry[string]()

	// A withdrawn send that was the only pending job leaves nothing for the
	// worker to do; the mailbox must retire rather than leak.
	mb := &mailbox{jobs: make(chan envelope, mailboxBuffer), pending: 1}
	reg.mailboxes["k"] = mb
	exited := make(chan struct{})
	go func() {
		reg.run("k", mb)
		close(exited)
	}()

	reg.withdraw("k", mb)

	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("worker did not exit")
	}
	assert.Equal(t, 0, reg.Len())

	// The key comes back on demand.
	require.NoError(t, reg.Do(context.Background(), "k", func(context.Context) error { return nil }))
}
