package pubsub

import (
	"sync"

	"golang.org/x/exp/slices"

	"github.com/lovelydayss/shardcache/shard"
)

// Fanout coordinates the per-shard registries and the shard manager to
// implement subscribe/unsubscribe partitioning and publish fan-out.
type Fanout struct {
	mgr        *shard.Manager
	registries []*Registry
}

// NewFanout builds one Registry per shard the manager owns.
func NewFanout(mgr *shard.Manager) *Fanout {
	f := &Fanout{mgr: mgr, registries: make([]*Registry, mgr.NumShards())}
	for i := range f.registries {
		f.registries[i] = NewRegistry()
	}
	return f
}

// AddSubscriptions inserts sub into the exact-channel registries of the
// shards owning each of channels, partitioning and running one brief
// task per owning shard. It is called with the deduplicated set of
// channels the connection is newly subscribing to.
func (f *Fanout) AddSubscriptions(channels []string, sub Subscriber, threadID uint32) {
	f.partitionAndRun(channels, threadID, func(r *Registry, ch string) {
		r.AddSubscription(ch, sub, threadID)
	})
}

// RemoveSubscriptions mirrors AddSubscriptions for unsubscribe.
func (f *Fanout) RemoveSubscriptions(channels []string, sub Subscriber) {
	f.partitionAndRun(channels, 0, func(r *Registry, ch string) {
		r.RemoveSubscription(ch, sub)
	})
}

// AddPatterns registers sub for every pattern on every shard: patterns
// must be replicated because a publish on any channel may need to test
// them regardless of which shard owns that channel.
func (f *Fanout) AddPatterns(patterns []string, sub Subscriber, threadID uint32) {
	f.mgr.RunBriefInParallel(func(shardID uint32) {
		for _, p := range patterns {
			f.registries[shardID].AddGlobPattern(p, sub, threadID)
		}
	}, nil)
}

// RemovePatterns mirrors AddPatterns for unsubscribe.
func (f *Fanout) RemovePatterns(patterns []string, sub Subscriber) {
	f.mgr.RunBriefInParallel(func(shardID uint32) {
		for _, p := range patterns {
			f.registries[shardID].RemoveGlobPattern(p, sub)
		}
	}, nil)
}

func (f *Fanout) partitionAndRun(channels []string, threadID uint32, apply func(r *Registry, ch string)) {
	byShard := make(map[uint32][]string)
	for _, ch := range channels {
		id := f.mgr.ShardOf(ch)
		byShard[id] = append(byShard[id], ch)
	}
	for id, chans := range byShard {
		slices.Sort(chans)
		shardID, list := id, chans
		f.mgr.RunBrief(shardID, func() {
			for _, ch := range list {
				apply(f.registries[shardID], ch)
			}
		})
	}
}

// Publish hashes channel to its owning shard for exact-match delivery,
// then broadcasts to every shard so replicated patterns are evaluated
// everywhere; a pattern subscription found on several shards is
// delivered to once. The caller does not block on deliveries being
// observed, only on handoffs being posted onto each subscriber's own
// queue. It returns the number of subscribers the message was handed to.
func (f *Fanout) Publish(channel string, message []byte) int64 {
	var delivered int64

	exactShard := f.mgr.ShardOf(channel)
	f.mgr.RunBrief(exactShard, func() {
		for _, sub := range f.registries[exactShard].FetchSubscribers(channel) {
			deliver(sub, channel, message, nil)
			delivered++
		}
	})

	var mu sync.Mutex
	seen := make(map[string]struct{})
	f.mgr.RunBriefInParallel(func(shardID uint32) {
		var local int64
		for _, m := range f.registries[shardID].FetchMatchingPatterns(channel) {
			pattern := m.pattern
			for _, sub := range m.subs {
				key := pattern + "\x00" + sub.ID()
				mu.Lock()
				_, dup := seen[key]
				seen[key] = struct{}{}
				mu.Unlock()
				if dup {
					continue
				}
				deliver(sub, channel, message, []byte(pattern))
				local++
			}
		}
		mu.Lock()
		delivered += local
		mu.Unlock()
	}, nil)

	return delivered
}

func deliver(sub Subscriber, channel string, message, pattern []byte) {
	done := NewBlockingCounter()
	done.Add(1)
	sub.EnqueuePubMessage(&PubMessage{
		Channel: []byte(channel),
		Message: message,
		Pattern: pattern,
		Done:    done,
	})
}
