// Package conn implements the per-connection pipeline: a reader that
// drives the protocol parser and decides between inline and queued
// dispatch, and a single dispatch worker that drains the resulting
// queue in order, interleaving command replies with pub/sub
// deliveries. It generalizes the teacher's handler.Handle (one
// goroutine reading a parser's Droplet channel and writing replies
// straight back) into the reader/worker split spec.md's
// ConnectionPipeline requires, grounded on dragonfly_connection.h's
// Connection/DispatchFiber/IoLoop split.
package conn

import (
	"net"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/lovelydayss/shardcache/lib/pool"
	"github.com/lovelydayss/shardcache/log"
	"github.com/lovelydayss/shardcache/memcache"
	"github.com/lovelydayss/shardcache/pubsub"
	"github.com/lovelydayss/shardcache/store"
)

// Protocol names which wire format a Connection speaks.
type Protocol int

const (
	RESP Protocol = iota
	Memcache
)

// queuePending is the small bound spec.md §4.3 names ("≈10") past
// which a producer blocks instead of growing the queue further — a
// buffered channel models the "yield cooperatively" behavior directly.
const queuePending = 10

// queueItem is either a commandFrame or a pubMessageFrame, the two
// kinds of work the dispatch worker drains in order.
type queueItem interface {
	isQueueItem()
}

type commandFrame struct {
	args [][]byte
}

func (*commandFrame) isQueueItem() {}

type pubMessageFrame struct {
	channel, message, pattern []byte
}

func (*pubMessageFrame) isQueueItem() {}

type mcCommandFrame struct {
	frame *memcache.Frame
}

func (*mcCommandFrame) isQueueItem() {}

// Connection is one client session: identity, protocol, subscription
// state, and the queue + worker that give it ordered reply delivery.
type Connection struct {
	id       string
	protocol Protocol
	netConn  net.Conn
	store    *store.Store

	queue       chan queueItem
	closeSignal chan struct{}
	closeOnce   sync.Once
	closing     atomic.Bool

	// execMu is the async_dispatch lock window: held for the duration
	// of one command's execution and reply write, by whichever side
	// (inline reader path or dispatch worker) is currently running it.
	execMu sync.Mutex

	subMu    sync.Mutex
	channels map[string]struct{}
	patterns map[string]struct{}

	phase atomic.Value // string

	creationTime    time.Time
	lastInteraction atomic.Int64 // unix nanos

	shutdownMu    sync.Mutex
	shutdownHooks map[int]func()
	nextHookID    int
}

// New wraps netConn as a Connection speaking protocol, backed by store
// for command execution and pub/sub fan-out.
func New(netConn net.Conn, protocol Protocol, st *store.Store) *Connection {
	c := &Connection{
		id:            uuid.NewString(),
		protocol:      protocol,
		netConn:       netConn,
		store:         st,
		queue:         make(chan queueItem, queuePending),
		closeSignal:   make(chan struct{}),
		channels:      make(map[string]struct{}),
		patterns:      make(map[string]struct{}),
		creationTime:  time.Now(),
		shutdownHooks: make(map[int]func()),
	}
	c.setPhase("readsock")
	c.touch()
	connActive.Inc()
	return c
}

// ID satisfies pubsub.Subscriber.
func (c *Connection) ID() string {
	return c.id
}

var _ pubsub.Subscriber = (*Connection)(nil)

// Serve runs the connection to completion: it starts the dispatch
// worker on a pooled goroutine and drives the protocol reader loop on
// the calling goroutine, returning once the connection is closed.
func (c *Connection) Serve() {
	defer c.close()

	var workerDone sync.WaitGroup
	workerDone.Add(1)
	pool.Submit(func() {
		defer workerDone.Done()
		c.dispatchWorker()
	})

	switch c.protocol {
	case RESP:
		c.readLoopRESP()
	case Memcache:
		c.readLoopMemcache()
	}

	c.closeOnce.Do(func() { close(c.closeSignal) })
	workerDone.Wait()
}

func (c *Connection) touch() {
	c.lastInteraction.Store(time.Now().UnixNano())
}

func (c *Connection) setPhase(phase string) {
	c.phase.Store(phase)
}

// Phase returns the connection's current human-readable phase, for
// observability ("readsock" | "process" | "wait").
func (c *Connection) Phase() string {
	p, _ := c.phase.Load().(string)
	return p
}

// RegisterShutdownHook registers cb to run once, in registration
// order, when the connection closes, before the socket itself closes.
// It returns a handle UnregisterShutdownHook can cancel with.
func (c *Connection) RegisterShutdownHook(cb func()) int {
	c.shutdownMu.Lock()
	defer c.shutdownMu.Unlock()
	id := c.nextHookID
	c.nextHookID++
	c.shutdownHooks[id] = cb
	return id
}

// UnregisterShutdownHook cancels a hook registered with id.
func (c *Connection) UnregisterShutdownHook(id int) {
	c.shutdownMu.Lock()
	defer c.shutdownMu.Unlock()
	delete(c.shutdownHooks, id)
}

func (c *Connection) runShutdownHooks() {
	c.shutdownMu.Lock()
	ids := make([]int, 0, len(c.shutdownHooks))
	for id := range c.shutdownHooks {
		ids = append(ids, id)
	}
	hooks := c.shutdownHooks
	c.shutdownMu.Unlock()

	sort.Ints(ids)
	for _, id := range ids {
		if hook := hooks[id]; hook != nil {
			hook()
		}
	}
}

// close drains the dispatch queue (freeing any frames still posted so
// no publisher blocks on a borrow token forever), runs shutdown hooks,
// and closes the socket. Safe to call more than once.
func (c *Connection) close() {
	if !c.closing.CompareAndSwap(false, true) {
		return
	}
	c.closeOnce.Do(func() { close(c.closeSignal) })

drain:
	for {
		select {
		case <-c.queue:
		default:
			break drain
		}
	}

	c.runShutdownHooks()

	if len(c.channels) > 0 {
		names := make([]string, 0, len(c.channels))
		for ch := range c.channels {
			names = append(names, ch)
		}
		c.store.Fanout().RemoveSubscriptions(names, c)
	}
	if len(c.patterns) > 0 {
		names := make([]string, 0, len(c.patterns))
		for p := range c.patterns {
			names = append(names, p)
		}
		c.store.Fanout().RemovePatterns(names, c)
	}

	if err := c.netConn.Close(); err != nil {
		log.Warnf("[conn %s] close err: %s", c.id, err.Error())
	}
	connActive.Dec()
}

// EnqueuePubMessage satisfies pubsub.Subscriber: it copies the message
// payload (so Done can be released immediately, per the borrow-token
// contract — "copied into own storage") then posts the frame onto the
// connection's own queue from a pooled goroutine, so the calling
// shard's goroutine is never blocked by a slow or closing subscriber.
func (c *Connection) EnqueuePubMessage(msg *pubsub.PubMessage) {
	frame := &pubMessageFrame{
		channel: append([]byte(nil), msg.Channel...),
		message: append([]byte(nil), msg.Message...),
	}
	if len(msg.Pattern) > 0 {
		frame.pattern = append([]byte(nil), msg.Pattern...)
	}
	msg.Done.Add(-1)

	pool.Submit(func() {
		select {
		case c.queue <- frame:
			pubsubDeliveries.Inc()
		case <-c.closeSignal:
		}
	})
}

func (c *Connection) forceDispatch() bool {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	return len(c.channels) > 0 || len(c.patterns) > 0
}

func lowerCmd(b []byte) string {
	return strings.ToLower(string(b))
}
