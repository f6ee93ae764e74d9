package bridge

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrQueueClosed is returned for operations submitted after Stop.
var ErrQueueClosed = errors.New("bridge queue is closed")

// Queue serializes automation calls: one operation at a time, strict FIFO,
// no overlap, regardless of caller concurrency. An optional delay is
// inserted between consecutive operations.
type Queue struct {
	ops   chan queuedOp
	delay time.Duration

	stopOnce sync.Once
	stopped  chan struct{}
}

type queuedOp struct {
	id    string
	name  string
	ctx   context.Context
	fn    func(ctx context.Context) (string, error)
	reply chan opResult
}

type opResult struct {
	out string
	err error
}

// NewQueue creates a queue and starts its single worker.
func NewQueue(delay time.Duration) *Queue {
	q := &Queue{
		ops:     make(chan queuedOp, 64),
		delay:   delay,
		stopped: make(chan struct{}),
	}
	go q.worker()
	return q
}

// Stop shuts the worker down. In-flight operations complete; queued ones
// fail with ErrQueueClosed.
func (q *Queue) Stop() {
	q.stopOnce.Do(func() { close(q.stopped) })
}

// Do submits an operation and waits for its result. Operations execute in
// submission order.
func (q *Queue) Do(ctx context.Context, name string, fn func(ctx context.Context) (string, error)) (string, error) {
	op := queuedOp{
		id:    uuid.NewString(),
		name:  name,
		ctx:   ctx,
		fn:    fn,
		reply: make(chan opResult, 1),
	}

	select {
	case q.ops <- op:
	case <-q.stopped:
		return "", ErrQueueClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case res := <-op.reply:
		return res.out, res.err
	case <-q.stopped:
		return "", ErrQueueClosed
	case <-ctx.Done():
		// The operation may still run; the worker discards its result.
		return "", ctx.Err()
	}
}

func (q *Queue) worker() {
	for {
		select {
		case <-q.stopped:
			q.drain()
			return
		case op := <-q.ops:
			q.execute(op)
			if q.delay > 0 {
				time.Sleep(q.delay)
			}
		}
	}
}

func (q *Queue) execute(op queuedOp) {
	if err := op.ctx.Err(); err != nil {
		op.reply <- opResult{err: err}
		return
	}

	start := time.Now()
	out, err := op.fn(op.ctx)
	if err != nil {
		log.Printf("bridge op %s (%s) failed after %v: %v", op.id, op.name, time.Since(start).Round(time.Millisecond), err)
	}
	op.reply <- opResult{out: out, err: err}
}

func (q *Queue) drain() {
	for {
		select {
		case op := <-q.ops:
			op.reply <- opResult{err: ErrQueueClosed}
		default:
			return
		}
	}
}
