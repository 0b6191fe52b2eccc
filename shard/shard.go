// Package shard implements the proactor-per-thread model the rest of
// the store is built on: each Shard pins one goroutine that drains a
// task queue, and every piece of shard-owned state (the pub/sub
// registry, the key/value partition) is only ever touched from that
// goroutine. Cross-shard callers reach it exclusively by posting brief
// tasks, never by taking a lock, following the teacher's single
// consumer-goroutine executor (database.DBExecutor) generalized from
// one global executor to N shard-pinned ones.
package shard

import (
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/lovelydayss/shardcache/lib/pool"
)

// task is a brief unit of work posted to a shard, with a completion
// signal so the caller can await it ("await on thread T").
type task struct {
	fn   func()
	done chan struct{}
}

// Shard is one thread-pinned partition: one goroutine, one task queue.
type Shard struct {
	id    uint32
	tasks chan task
	stop  chan struct{}
	wg    sync.WaitGroup
}

func newShard(id uint32) *Shard {
	s := &Shard{
		id:    id,
		tasks: make(chan task, 256),
		stop:  make(chan struct{}),
	}
	s.wg.Add(1)
	pool.Submit(s.run)
	return s
}

// ID returns the shard's index.
func (s *Shard) ID() uint32 {
	return s.id
}

func (s *Shard) run() {
	defer s.wg.Done()
	for {
		select {
		case t := <-s.tasks:
			t.fn()
			if t.done != nil {
				close(t.done)
			}
		case <-s.stop:
			// Drain whatever is already queued before exiting so no
			// caller of RunBrief is left waiting forever.
			for {
				select {
				case t := <-s.tasks:
					t.fn()
					if t.done != nil {
						close(t.done)
					}
				default:
					return
				}
			}
		}
	}
}

// runBrief posts fn to the shard and blocks until it has executed.
func (s *Shard) runBrief(fn func()) {
	done := make(chan struct{})
	s.tasks <- task{fn: fn, done: done}
	<-done
}

// runAsync posts fn to the shard without waiting for completion. It
// backs Manager.RunAsync; the publish fan-out does not use it.
func (s *Shard) runAsync(fn func()) {
	s.tasks <- task{fn: fn}
}

// Manager owns the fixed set of shards a keyspace is partitioned across.
type Manager struct {
	shards []*Shard
}

// NewManager starts n shards, each on its own pooled goroutine.
func NewManager(n int) *Manager {
	m := &Manager{shards: make([]*Shard, n)}
	for i := 0; i < n; i++ {
		m.shards[i] = newShard(uint32(i))
	}
	return m
}

// NumShards returns how many shards the keyspace is split across.
func (m *Manager) NumShards() int {
	return len(m.shards)
}

// ShardOf deterministically maps a key to its owning shard.
func (m *Manager) ShardOf(key string) uint32 {
	return uint32(xxhash.Sum64String(key) % uint64(len(m.shards)))
}

// RunBrief runs fn on shard id's own goroutine and waits for it to
// finish before returning.
func (m *Manager) RunBrief(id uint32, fn func()) {
	m.shards[id].runBrief(fn)
}

// RunAsync posts fn to shard id without waiting for it to run.
func (m *Manager) RunAsync(id uint32, fn func()) {
	m.shards[id].runAsync(fn)
}

// RunBriefInParallel posts task to every shard for which predicate
// returns true (or every shard, if predicate is nil), and blocks until
// all of them have completed.
func (m *Manager) RunBriefInParallel(task func(shardID uint32), predicate func(shardID uint32) bool) {
	var wg sync.WaitGroup
	for _, s := range m.shards {
		if predicate != nil && !predicate(s.id) {
			continue
		}
		wg.Add(1)
		sh := s
		pool.Submit(func() {
			defer wg.Done()
			sh.runBrief(func() { task(sh.id) })
		})
	}
	wg.Wait()
}

// Stop signals every shard to drain its queue and exit.
func (m *Manager) Stop() {
	for _, s := range m.shards {
		close(s.stop)
	}
	for _, s := range m.shards {
		s.wg.Wait()
	}
}
