package workerpool_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trinitylake/trinitylake-go/internal/workerpool"
)

func TestPool_RunsAllSubmittedTasks(t *testing.T) {
	pool := workerpool.New(workerpool.Config{Name: "test", MaxWorkers: 4, QueueSize: 20})
	defer pool.Stop(time.Second)

	var ran int32
	for i := 0; i < 20; i++ {
		err := pool.Submit(workerpool.Task{
			ID: "task",
			Fn: func(context.Context) error {
				atomic.AddInt32(&ran, 1)
				return nil
			},
		})
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&ran) == 20
	}, time.Second, time.Millisecond)

	assert.Equal(t, uint64(20), pool.Completed())
	assert.Equal(t, uint64(0), pool.Failed())
}

func TestPool_RecoversPanickingTask(t *testing.T) {
	pool := workerpool.New(workerpool.Config{Name: "test", MaxWorkers: 1, QueueSize: 1})
	defer pool.Stop(time.Second)

	err := pool.Submit(workerpool.Task{
		ID: "boom",
		Fn: func(context.Context) error {
			panic("boom")
		},
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return pool.Failed() == 1
	}, time.Second, time.Millisecond)
}
