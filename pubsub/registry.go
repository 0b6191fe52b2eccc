// Package pubsub implements the per-shard channel/pattern registry and
// the cross-shard publish fan-out, grounded on the teacher's channel
// registry shape (a plain map guarded by single-thread ownership rather
// than a lock) and on the original channel-slice design: one registry
// per shard, channels hash to exactly one shard, patterns are
// replicated onto every shard.
package pubsub

// Subscriber is the weak identity a registry stores for a subscribed
// connection: relation and lookup only, never ownership. The concrete
// Connection type implements this without pubsub importing conn.
type Subscriber interface {
	// ID uniquely identifies the connection for map dedup.
	ID() string
	// EnqueuePubMessage is the async-enqueue entry point: it must post
	// onto the target connection's own thread before touching its
	// queue, so it is safe to call from any shard.
	EnqueuePubMessage(msg *PubMessage)
}

// PubMessage is the payload handed to a subscriber's async-enqueue
// entry point. Done is decremented once the target connection has
// copied channel/message/pattern into its own storage.
type PubMessage struct {
	Channel []byte
	Message []byte
	Pattern []byte // empty unless this is a pattern delivery
	Done    *BlockingCounter
}

type subscriberEntry struct {
	sub      Subscriber
	threadID uint32
}

// Registry is one shard's view of channel and pattern subscriptions.
// Every mutation must happen on the owning shard's own goroutine; the
// registry itself does no locking.
type Registry struct {
	channels map[string]map[string]subscriberEntry
	patterns map[string]map[string]subscriberEntry
}

// NewRegistry returns an empty per-shard registry.
func NewRegistry() *Registry {
	return &Registry{
		channels: make(map[string]map[string]subscriberEntry),
		patterns: make(map[string]map[string]subscriberEntry),
	}
}

// AddSubscription registers sub for channel on this shard.
func (r *Registry) AddSubscription(channel string, sub Subscriber, threadID uint32) {
	m, ok := r.channels[channel]
	if !ok {
		m = make(map[string]subscriberEntry)
		r.channels[channel] = m
	}
	m[sub.ID()] = subscriberEntry{sub: sub, threadID: threadID}
}

// RemoveSubscription unregisters sub from channel on this shard.
func (r *Registry) RemoveSubscription(channel string, sub Subscriber) {
	m, ok := r.channels[channel]
	if !ok {
		return
	}
	delete(m, sub.ID())
	if len(m) == 0 {
		delete(r.channels, channel)
	}
}

// AddGlobPattern registers sub for pattern on this shard.
func (r *Registry) AddGlobPattern(pattern string, sub Subscriber, threadID uint32) {
	m, ok := r.patterns[pattern]
	if !ok {
		m = make(map[string]subscriberEntry)
		r.patterns[pattern] = m
	}
	m[sub.ID()] = subscriberEntry{sub: sub, threadID: threadID}
}

// RemoveGlobPattern unregisters sub from pattern on this shard.
func (r *Registry) RemoveGlobPattern(pattern string, sub Subscriber) {
	m, ok := r.patterns[pattern]
	if !ok {
		return
	}
	delete(m, sub.ID())
	if len(m) == 0 {
		delete(r.patterns, pattern)
	}
}

// FetchSubscribers returns the exact-match subscribers for channel.
func (r *Registry) FetchSubscribers(channel string) []Subscriber {
	m, ok := r.channels[channel]
	if !ok {
		return nil
	}
	out := make([]Subscriber, 0, len(m))
	for _, e := range m {
		out = append(out, e.sub)
	}
	return out
}

// patternMatch pairs a matched pattern with its subscribers, for
// delivery of {"pmessage", pattern, channel, message}.
type patternMatch struct {
	pattern string
	subs    []Subscriber
}

// FetchMatchingPatterns returns every pattern registered on this shard
// that matches channel, along with its subscribers.
func (r *Registry) FetchMatchingPatterns(channel string) []patternMatch {
	var out []patternMatch
	for pattern, m := range r.patterns {
		if !globMatch(pattern, channel) {
			continue
		}
		subs := make([]Subscriber, 0, len(m))
		for _, e := range m {
			subs = append(subs, e.sub)
		}
		out = append(out, patternMatch{pattern: pattern, subs: subs})
	}
	return out
}
