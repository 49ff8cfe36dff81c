package qsim

import (
	"sync"
	"time"
)

// Result is the outcome of a job.
type Result struct {
	ID        string
	Value     any
	Error     error
	CreatedAt time.Time
	TTL       time.Duration
}

/*
resultSpace stores job results and hands them to whoever awaits them.

Awaiting before the result exists parks a buffered channel that Store fills;
awaiting afterwards gets the stored value immediately.
*/
type resultSpace struct {
	mu      sync.Mutex
	values  map[string]Result
	waiting map[string][]chan Result
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

func newResultSpace(cleanupInterval time.Duration) *resultSpace {
	rs := &resultSpace{
		values:  make(map[string]Result),
		waiting: make(map[string][]chan Result),
		done:    make(chan struct{}),
	}

	rs.wg.Add(1)
	go func() {
		defer rs.wg.Done()
		rs.cleanup(cleanupInterval)
	}()

	return rs
}

// Store records a result and wakes every waiter.
func (rs *resultSpace) Store(id string, value any, err error, ttl time.Duration) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	r := Result{
		ID:        id,
		Value:     value,
		Error:     err,
		CreatedAt: time.Now(),
		TTL:       ttl,
	}
	rs.values[id] = r

	for _, ch := range rs.waiting[id] {
		ch <- r
		close(ch)
	}
	delete(rs.waiting, id)

	logger.Debug("stored result", "job", id, "error", err)
}

// Await returns a channel that receives the result once it is stored.
func (rs *resultSpace) Await(id string) chan Result {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	ch := make(chan Result, 1)

	if r, ok := rs.values[id]; ok {
		ch <- r
		close(ch)
		return ch
	}

	rs.waiting[id] = append(rs.waiting[id], ch)
	return ch
}

func (rs *resultSpace) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rs.done:
			return
		case <-ticker.C:
			rs.expire(time.Now())
		}
	}
}

// expire drops results whose TTL has passed. Results without TTL stay.
func (rs *resultSpace) expire(now time.Time) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	for id, r := range rs.values {
		if r.TTL > 0 && now.Sub(r.CreatedAt) > r.TTL {
			delete(rs.values, id)
		}
	}
}

func (rs *resultSpace) Close() {
	rs.once.Do(func() {
		close(rs.done)
		rs.wg.Wait()
	})
}
