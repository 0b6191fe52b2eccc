package store

import (
	"fmt"
	"time"

	"github.com/lovelydayss/shardcache/lib/pool"
	"github.com/lovelydayss/shardcache/memcache"
	"github.com/lovelydayss/shardcache/pubsub"
	"github.com/lovelydayss/shardcache/resp"
	"github.com/lovelydayss/shardcache/shard"
)

// Store is the external collaborator a connection dispatches commands
// through: it hashes a command's key to a shard, routes the call onto
// that shard's own goroutine, and owns the per-shard pub/sub fan-out.
// It is the direct descendant of the teacher's DBTrigger, generalized
// from a single-executor hop to a sharded one.
type Store struct {
	mgr     *shard.Manager
	engines []*Engine
	fanout  *pubsub.Fanout

	gcStop chan struct{}
}

// pubsubCommands never take a key as their first argument, so they
// never go through the per-shard key-dispatch path.
var pubsubCommands = map[string]bool{
	"subscribe":    true,
	"unsubscribe":  true,
	"psubscribe":   true,
	"punsubscribe": true,
	"publish":      true,
	"ping":         true,
}

// NewStore starts shardCount shards, one Engine per shard, and the
// pub/sub fan-out wired across all of them.
func NewStore(shardCount int) *Store {
	mgr := shard.NewManager(shardCount)
	s := &Store{
		mgr:     mgr,
		engines: make([]*Engine, shardCount),
		fanout:  pubsub.NewFanout(mgr),
		gcStop:  make(chan struct{}),
	}
	for i := 0; i < shardCount; i++ {
		s.engines[i] = NewEngine(uint32(i))
	}
	pool.Submit(s.runGC)
	return s
}

func (s *Store) runGC() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.gcStop:
			return
		case <-ticker.C:
			s.mgr.RunBriefInParallel(func(shardID uint32) {
				s.engines[shardID].GC()
			}, nil)
		}
	}
}

// Close stops the GC sweep and every shard.
func (s *Store) Close() {
	close(s.gcStop)
	s.mgr.Stop()
}

// Fanout exposes the pub/sub fan-out for the conn package to drive
// Subscribe/Unsubscribe/Publish without Store needing to know about
// connections.
func (s *Store) Fanout() *pubsub.Fanout {
	return s.fanout
}

// ShardManager exposes the store's shard manager. Subscribe/unsubscribe
// partitioning is done by the Fanout, not by callers of this method.
func (s *Store) ShardManager() *shard.Manager {
	return s.mgr
}


// Dispatch runs a parsed RESP command line against the owning shard's
// engine. cmdLine[0] is the verb, the rest are arguments; the first
// argument after the verb is taken as the routing key.
func (s *Store) Dispatch(cmdLine [][]byte) resp.Reply {
	if len(cmdLine) == 0 {
		return resp.NewErrReply("ERR empty command")
	}

	cmd := string(cmdLine[0])
	args := cmdLine[1:]

	if cmd == "ping" {
		if len(args) == 0 {
			return resp.NewSimpleStringReply("PONG")
		}
		return resp.NewBulkReply(args[0])
	}

	// Every other pub/sub verb is intercepted by the connection layer
	// before a command line ever reaches Dispatch; a caller that
	// forwards one anyway gets a clear error instead of a spurious
	// per-key routing attempt.
	if pubsubCommands[cmd] {
		return resp.NewErrReply(fmt.Sprintf("ERR '%s' must be handled by the connection layer", cmd))
	}

	if len(args) == 0 {
		return resp.NewErrReply(fmt.Sprintf("ERR wrong number of arguments for '%s'", cmd))
	}

	shardID := s.mgr.ShardOf(string(args[0]))
	var reply resp.Reply
	s.mgr.RunBrief(shardID, func() {
		engine := s.engines[shardID]
		if !engine.ValidCommand(cmd) {
			reply = resp.NewErrReply(fmt.Sprintf("ERR unknown command '%s'", cmd))
			return
		}
		reply = engine.Dispatch(cmd, args)
	})
	return reply
}

// DispatchMC runs a decoded memcache request against the owning
// shard's engine. Exactly one of storage/retrieval/del is non-nil.
func (s *Store) DispatchMC(storage *memcache.StorageCommand, retrieval *memcache.RetrievalCommand, del *memcache.DeleteCommand) []byte {
	switch {
	case storage != nil:
		shardID := s.mgr.ShardOf(storage.Key)
		var status memcache.StatusLine
		s.mgr.RunBrief(shardID, func() {
			status = s.engines[shardID].DispatchStorage(storage)
		})
		return memcache.EncodeStatus(status)

	case retrieval != nil:
		byShard := make(map[uint32][]string)
		for _, key := range retrieval.Keys {
			id := s.mgr.ShardOf(key)
			byShard[id] = append(byShard[id], key)
		}
		var items []memcache.Item
		for shardID, keys := range byShard {
			sub := *retrieval
			sub.Keys = keys
			s.mgr.RunBrief(shardID, func() {
				items = append(items, s.engines[shardID].DispatchRetrieval(&sub)...)
			})
		}
		return memcache.EncodeValues(items, retrieval.WithCAS)

	case del != nil:
		shardID := s.mgr.ShardOf(del.Key)
		var status memcache.StatusLine
		s.mgr.RunBrief(shardID, func() {
			status = s.engines[shardID].DispatchDelete(del)
		})
		return memcache.EncodeStatus(status)
	}
	return memcache.EncodeServerError("empty request")
}

// Publish hashes channel to its shard and fans the message out to
// every matching subscriber and pattern subscriber, returning how
// many subscribers received it.
func (s *Store) Publish(channel string, message []byte) int64 {
	return s.fanout.Publish(channel, message)
}
