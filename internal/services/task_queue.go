package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type task struct {
	key string
	fn  func(ctx context.Context) error
}

// TaskQueue 投票副作用的有界异步队列。
// 相同 key 的任务在执行前只保留一份；队列满时丢弃并记日志。
type TaskQueue struct {
	queue   chan task
	pending map[string]bool
	mu      sync.Mutex
	timeout time.Duration
	log     zerolog.Logger
	wg      sync.WaitGroup
	closed  bool
}

// NewTaskQueue 创建队列并启动 workers 个后台 worker
func NewTaskQueue(size, workers int, log zerolog.Logger) *TaskQueue {
	q := &TaskQueue{
		queue:   make(chan task, size),
		pending: make(map[string]bool),
		timeout: 30 * time.Second,
		log:     log,
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

// Dispatch 非阻塞入队
func (q *TaskQueue) Dispatch(key string, fn func(ctx context.Context) error) {
	q.mu.Lock()
	if q.closed || q.pending[key] {
		q.mu.Unlock()
		return
	}
	q.pending[key] = true

	select {
	case q.queue <- task{key: key, fn: fn}:
		q.mu.Unlock()
	default:
		delete(q.pending, key)
		q.mu.Unlock()
		q.log.Warn().Str("key", key).Msg("task queue full, dropping side effect")
	}
}

func (q *TaskQueue) worker() {
	defer q.wg.Done()
	for t := range q.queue {
		// 先清除 pending，执行期间再来的同 key 任务会重新排队
		q.mu.Lock()
		delete(q.pending, t.key)
		q.mu.Unlock()

		q.run(t)
	}
}

func (q *TaskQueue) run(t task) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Error().Interface("panic", r).Str("key", t.key).Msg("task panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	if err := t.fn(ctx); err != nil {
		q.log.Error().Err(err).Str("key", t.key).Msg("task failed")
	}
}

// Close 停止接收新任务，等待队列中的任务执行完
func (q *TaskQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.queue)
	q.mu.Unlock()

	q.wg.Wait()
}
