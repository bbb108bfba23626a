// Package results provides the bounded queue workers emit records into.
package results

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bookfetch/yes24-metadata/internal/metadata"
)

// Queue is a bounded in-memory record queue with context-aware operations.
// Workers put records concurrently; the coordinator drains after the join.
type Queue struct {
	ch      chan *metadata.Record
	closeMu sync.Mutex
	closed  bool
}

// NewQueue constructs a queue with the provided capacity.
func NewQueue(capacity int) *Queue {
	return &Queue{
		ch: make(chan *metadata.Record, capacity),
	}
}

// Put pushes a record into the queue or returns if the context ends.
func (q *Queue) Put(ctx context.Context, rec *metadata.Record) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("put canceled: %w", ctx.Err())
	case q.ch <- rec:
		return nil
	}
}

// Get pops the next record, respecting context cancellation.
func (q *Queue) Get(ctx context.Context) (*metadata.Record, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("get canceled: %w", ctx.Err())
	case rec, ok := <-q.ch:
		if !ok {
			return nil, errors.New("queue closed")
		}
		return rec, nil
	}
}

// Drain returns every record currently buffered without blocking.
func (q *Queue) Drain() []*metadata.Record {
	var recs []*metadata.Record
	for {
		select {
		case rec, ok := <-q.ch:
			if !ok {
				return recs
			}
			recs = append(recs, rec)
		default:
			return recs
		}
	}
}

// Close closes the underlying channel for shutdown.
func (q *Queue) Close() {
	q.closeMu.Lock()
	defer q.closeMu.Unlock()
	if q.closed {
		return
	}
	close(q.ch)
	q.closed = true
}
