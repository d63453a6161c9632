// Package workerpool provides a small bounded goroutine pool used to drive
// concurrent commit races in tests; the transaction engine itself spawns no
// internal threads, matching spec's "no internal thread pools" requirement
// on the engine proper.
package workerpool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Task is a unit of work submitted to a Pool.
type Task struct {
	ID      string
	Fn      func(context.Context) error
	Context context.Context
}

// Pool runs submitted Tasks across a bounded set of worker goroutines.
type Pool struct {
	name          string
	maxWorkers    int
	taskQueue     chan Task
	logger        *zap.Logger
	wg            sync.WaitGroup
	stopOnce      sync.Once
	stopChan      chan struct{}
	completedTasks uint64
	failedTasks   uint64
}

// Config configures a Pool at construction.
type Config struct {
	Name       string
	MaxWorkers int
	QueueSize  int
	Logger     *zap.Logger
}

// New creates and starts a worker pool.
func New(cfg Config) *Pool {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 10
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = cfg.MaxWorkers
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	p := &Pool{
		name:       cfg.Name,
		maxWorkers: cfg.MaxWorkers,
		taskQueue:  make(chan Task, cfg.QueueSize),
		logger:     cfg.Logger,
		stopChan:   make(chan struct{}),
	}

	for i := 0; i < p.maxWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			return
		case task := <-p.taskQueue:
			p.executeTask(id, task)
		}
	}
}

func (p *Pool) executeTask(workerID int, task Task) {
	err := p.safeExecute(task)
	if err != nil {
		atomic.AddUint64(&p.failedTasks, 1)
		p.logger.Debug("task failed", zap.String("pool", p.name), zap.Int("worker_id", workerID), zap.String("task_id", task.ID), zap.Error(err))
	} else {
		atomic.AddUint64(&p.completedTasks, 1)
	}
}

func (p *Pool) safeExecute(task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	if task.Context == nil {
		task.Context = context.Background()
	}
	return task.Fn(task.Context)
}

// Submit blocks until task is accepted or the pool is stopped.
func (p *Pool) Submit(task Task) error {
	select {
	case <-p.stopChan:
		return fmt.Errorf("worker pool %q is stopped", p.name)
	case p.taskQueue <- task:
		return nil
	}
}

// Stop stops accepting work and waits for in-flight tasks to finish.
func (p *Pool) Stop(timeout time.Duration) error {
	var err error
	p.stopOnce.Do(func() {
		close(p.stopChan)
		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(timeout):
			err = fmt.Errorf("worker pool %q stop timeout after %v", p.name, timeout)
		}
	})
	return err
}

// Completed returns the number of tasks that returned without error.
func (p *Pool) Completed() uint64 {
	return atomic.LoadUint64(&p.completedTasks)
}

// Failed returns the number of tasks that returned an error or panicked.
func (p *Pool) Failed() uint64 {
	return atomic.LoadUint64(&p.failedTasks)
}
