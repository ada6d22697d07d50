package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAfterRunsOnce(t *testing.T) {
	s := New(time.Second)
	var runs int32
	done := make(chan struct{})

	s.After("ack:1", 10*time.Millisecond, func(ctx context.Context) {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		atomic.AddInt32(&runs, 1)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&runs))
	assert.Equal(t, 0, s.Pending())
}

func TestAfterReplacesSameKey(t *testing.T) {
	s := New(time.Second)
	var first, second int32
	done := make(chan struct{})

	s.After("ack:1", 30*time.Millisecond, func(context.Context) { atomic.AddInt32(&first, 1) })
	s.After("ack:1", 10*time.Millisecond, func(context.Context) {
		atomic.AddInt32(&second, 1)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("replacement task did not run")
	}
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&first))
	assert.Equal(t, int32(1), atomic.LoadInt32(&second))
}

func TestShutdownStopsPending(t *testing.T) {
	s := New(0)
	var runs int32

	s.After("ack:1", 20*time.Millisecond, func(context.Context) { atomic.AddInt32(&runs, 1) })
	s.After("ack:2", 20*time.Millisecond, func(context.Context) { atomic.AddInt32(&runs, 1) })
	assert.Equal(t, 2, s.Pending())

	s.Shutdown()
	s.After("ack:3", time.Millisecond, func(context.Context) { atomic.AddInt32(&runs, 1) })

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&runs))
	assert.Equal(t, 0, s.Pending())
}

func TestPanicIsRecovered(t *testing.T) {
	s := New(time.Second)
	done := make(chan struct{})

	s.After("boom", time.Millisecond, func(context.Context) {
		defer close(done)
		panic("boom")
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}
}
