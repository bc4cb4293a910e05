package db

import (
	"database/sql"
	"time"
)

type dbTask struct {
	exec func(*sql.DB) (interface{}, error)
	resp chan dbResult
}

type dbResult struct {
	data interface{}
	err  error
}

// DBQueue funnels every database operation through a single worker
// goroutine, serializing access so concurrent update handlers never
// interleave writes to the same draft.
type DBQueue struct {
	tasks      chan dbTask
	db         *sql.DB
	maxRetry   int
	retryDelay time.Duration
	backoff    bool
}

func NewDBQueue(db *sql.DB) *DBQueue {
	q := &DBQueue{
		tasks:      make(chan dbTask, 100),
		db:         db,
		maxRetry:   3,
		retryDelay: 100 * time.Millisecond,
		backoff:    true,
	}
	go q.worker()
	return q
}

// NewDBQueueForTest uses a minimal fixed retry delay so failing tests
// don't stall.
func NewDBQueueForTest(db *sql.DB) *DBQueue {
	q := &DBQueue{
		tasks:      make(chan dbTask, 100),
		db:         db,
		maxRetry:   3,
		retryDelay: time.Millisecond,
	}
	go q.worker()
	return q
}

// Execute runs task on the queue's worker and blocks until it finishes.
func (q *DBQueue) Execute(task func(*sql.DB) (interface{}, error)) (interface{}, error) {
	resp := make(chan dbResult, 1)
	q.tasks <- dbTask{exec: task, resp: resp}
	result := <-resp
	return result.data, result.err
}

func (q *DBQueue) worker() {
	for task := range q.tasks {
		task.resp <- q.runWithRetry(task)
	}
}

func (q *DBQueue) runWithRetry(task dbTask) dbResult {
	var lastErr error
	for attempt := 0; attempt < q.maxRetry; attempt++ {
		data, err := task.exec(q.db)
		if err == nil {
			return dbResult{data: data}
		}
		lastErr = err
		if attempt < q.maxRetry-1 {
			delay := q.retryDelay
			if q.backoff {
				delay = time.Duration(attempt+1) * q.retryDelay
			}
			time.Sleep(delay)
		}
	}
	return dbResult{err: lastErr}
}

func (q *DBQueue) Close() {
	close(q.tasks)
}

func (q *DBQueue) DB() *sql.DB {
	return q.db
}
