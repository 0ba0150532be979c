package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/garyjia/lecturer-claims/internal/domain/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements Logger for testing
type mockLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, msg)
}

func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, msg)
}

func (m *mockLogger) ErrorCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.errors)
}

func TestDispatch_RunsHandlersInOrder(t *testing.T) {
	d := NewDispatcher()
	var order []string

	d.Subscribe(event.TypeClaimSubmitted, "first", func(ctx context.Context, evt *event.Event) error {
		order = append(order, "first")
		return nil
	})
	d.Subscribe(event.TypeClaimSubmitted, "second", func(ctx context.Context, evt *event.Event) error {
		order = append(order, "second")
		return nil
	})

	err := d.Dispatch(context.Background(), event.NewEvent(event.TypeClaimSubmitted, 1, "lect-1", nil))

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestDispatch_OnlyMatchingType(t *testing.T) {
	d := NewDispatcher()
	called := false
	d.Subscribe(event.TypeClaimPaid, "paid", func(ctx context.Context, evt *event.Event) error {
		called = true
		return nil
	})

	require.NoError(t, d.Dispatch(context.Background(), event.NewEvent(event.TypeClaimApproved, 1, "c-1", nil)))
	assert.False(t, called)
}

func TestDispatch_StopsAtFirstError(t *testing.T) {
	logger := &mockLogger{}
	d := NewDispatcher(WithLogger(logger))
	secondCalled := false

	d.Subscribe(event.TypeClaimRejected, "failing", func(ctx context.Context, evt *event.Event) error {
		return errors.New("boom")
	})
	d.Subscribe(event.TypeClaimRejected, "after", func(ctx context.Context, evt *event.Event) error {
		secondCalled = true
		return nil
	})

	err := d.Dispatch(context.Background(), event.NewEvent(event.TypeClaimRejected, 1, "c-1", nil))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "handler failing failed")
	assert.False(t, secondCalled)
	assert.Equal(t, 1, logger.ErrorCount())
}

func TestDispatch_RecoversPanic(t *testing.T) {
	d := NewDispatcher()
	d.Subscribe(event.TypeClaimPaid, "panicky", func(ctx context.Context, evt *event.Event) error {
		panic("unexpected")
	})

	err := d.Dispatch(context.Background(), event.NewEvent(event.TypeClaimPaid, 1, "hr-1", nil))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "handler panic")
}

func TestDispatchAsync_DetachesFromCallerCancellation(t *testing.T) {
	d := NewDispatcher()
	var ctxErr atomic.Value
	done := make(chan struct{})

	d.Subscribe(event.TypeClaimApproved, "audit", func(ctx context.Context, evt *event.Event) error {
		time.Sleep(10 * time.Millisecond)
		ctxErr.Store(fmt.Sprint(ctx.Err()))
		close(done)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	d.DispatchAsync(ctx, event.NewEvent(event.TypeClaimApproved, 1, "c-1", nil))
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("async handler did not run")
	}
	assert.Equal(t, "<nil>", ctxErr.Load())
	require.NoError(t, d.Close())
}

func TestClose_WaitsForAsyncHandlers(t *testing.T) {
	d := NewDispatcher()
	var count atomic.Int32

	d.SubscribeAll([]event.Type{event.TypeClaimApproved, event.TypeClaimPaid}, "counter", func(ctx context.Context, evt *event.Event) error {
		time.Sleep(5 * time.Millisecond)
		count.Add(1)
		return nil
	})

	d.DispatchAsync(context.Background(), event.NewEvent(event.TypeClaimApproved, 1, "c-1", nil))
	d.DispatchAsync(context.Background(), event.NewEvent(event.TypeClaimPaid, 1, "hr-1", nil))

	require.NoError(t, d.Close())
	assert.Equal(t, int32(2), count.Load())

	assert.Error(t, d.Close(), "second close should fail")
	assert.Error(t, d.Dispatch(context.Background(), event.NewEvent(event.TypeClaimPaid, 1, "hr-1", nil)))
}

func TestClose_RacingDispatchAsync(t *testing.T) {
	logger := &mockLogger{}
	d := NewDispatcher(WithLogger(logger))
	var started, finished atomic.Int32

	d.Subscribe(event.TypeClaimSubmitted, "counter", func(ctx context.Context, evt *event.Event) error {
		started.Add(1)
		time.Sleep(time.Millisecond)
		finished.Add(1)
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			d.DispatchAsync(context.Background(), event.NewEvent(event.TypeClaimSubmitted, id, "lect-1", nil))
		}(int64(i))
	}

	require.NoError(t, d.Close())
	// Every handler accepted before Close must have completed when Close returns
	assert.Equal(t, started.Load(), finished.Load())

	wg.Wait()
	assert.Equal(t, int32(50), started.Load()+int32(logger.ErrorCount()))
}

func TestHandlers(t *testing.T) {
	d := NewDispatcher()
	noop := func(ctx context.Context, evt *event.Event) error { return nil }

	d.Subscribe(event.TypeClaimSubmitted, "audit-log", noop)
	d.Subscribe(event.TypeClaimSubmitted, "metrics", noop)

	assert.Equal(t, []string{"audit-log", "metrics"}, d.Handlers(event.TypeClaimSubmitted))
	assert.Empty(t, d.Handlers(event.TypeClaimPaid))
}
