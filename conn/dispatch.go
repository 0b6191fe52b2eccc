package conn

import (
	"github.com/lovelydayss/shardcache/log"
	"github.com/lovelydayss/shardcache/resp"
)

func toStrings(args [][]byte) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = string(a)
	}
	return out
}

// canInlineDispatch implements the single inline-vs-queued predicate
// spec.md §9 insists live at one call site:
// inline_allowed ↔ (queue empty ∧ ¬async_dispatch ∧ ¬force_dispatch).
// Holding execMu on success *is* async_dispatch=true for the duration
// of the inline command; releasing it is the matching clear. The
// caller must call c.execMu.Unlock() itself once done.
func (c *Connection) canInlineDispatch() bool {
	if len(c.queue) != 0 || c.forceDispatch() {
		return false
	}
	return c.execMu.TryLock()
}

// enqueueCommand appends a parsed command line to the dispatch queue
// and returns once the send has been posted (blocking if the queue is
// at its bound, the cooperative-yield behavior spec.md §4.3 asks for).
func (c *Connection) enqueueCommand(args [][]byte) {
	select {
	case c.queue <- &commandFrame{args: args}:
	case <-c.closeSignal:
	}
}

// dispatchInline runs one command frame directly on the reader
// goroutine, having already won execMu via canInlineDispatch.
func (c *Connection) dispatchInline(args [][]byte) {
	defer c.execMu.Unlock()
	c.setPhase("process")
	c.runCommand(args)
	c.setPhase("readsock")
}

// dispatchWorker drains the queue in order until closing AND the
// queue is empty, interleaving command replies with pub/sub
// deliveries exactly as enqueued.
func (c *Connection) dispatchWorker() {
	for {
		select {
		case item := <-c.queue:
			c.execMu.Lock()
			c.setPhase("process")
			switch f := item.(type) {
			case *commandFrame:
				c.runCommand(f.args)
			case *pubMessageFrame:
				c.writePubMessage(f)
			case *mcCommandFrame:
				c.runMemcacheCommand(f.frame)
			}
			c.setPhase("wait")
			c.execMu.Unlock()
		case <-c.closeSignal:
			// Drain whatever is left so no publisher's borrow token
			// (already released at enqueue time, see
			// EnqueuePubMessage) or pending command is silently lost,
			// then exit.
			for {
				select {
				case item := <-c.queue:
					c.execMu.Lock()
					switch f := item.(type) {
					case *commandFrame:
						c.runCommand(f.args)
					case *pubMessageFrame:
						c.writePubMessage(f)
					case *mcCommandFrame:
						c.runMemcacheCommand(f.frame)
					}
					c.execMu.Unlock()
				default:
					return
				}
			}
		}
	}
}

// runCommand executes one parsed RESP command line, dispatching
// pub/sub verbs to the subscription orchestration and everything else
// straight to the store. It always writes exactly the reply frames
// the invoking command produces (one, except for SUBSCRIBE-family
// commands which ack once per argument).
func (c *Connection) runCommand(args [][]byte) {
	if len(args) == 0 {
		return
	}
	c.touch()
	cmd := lowerCmd(args[0])

	switch cmd {
	case "subscribe":
		c.doSubscribe(toStrings(args[1:]))
	case "unsubscribe":
		c.doUnsubscribe(toStrings(args[1:]))
	case "psubscribe":
		c.doPSubscribe(toStrings(args[1:]))
	case "punsubscribe":
		c.doPUnsubscribe(toStrings(args[1:]))
	case "publish":
		c.doPublish(args[1:])
	default:
		normalized := make([][]byte, len(args))
		normalized[0] = []byte(cmd)
		copy(normalized[1:], args[1:])
		reply := c.store.Dispatch(normalized)
		if reply != nil {
			c.write(reply.ToBytes())
		} else {
			c.write(resp.UnknownErrReplyBytes)
		}
	}
}

func (c *Connection) doSubscribe(channels []string) {
	if len(channels) == 0 {
		c.write(resp.NewErrReply("ERR wrong number of arguments for 'subscribe'").ToBytes())
		return
	}
	var newly []string
	c.subMu.Lock()
	for _, ch := range channels {
		if _, ok := c.channels[ch]; !ok {
			c.channels[ch] = struct{}{}
			newly = append(newly, ch)
		}
	}
	c.subMu.Unlock()

	if len(newly) > 0 {
		c.store.Fanout().AddSubscriptions(newly, c, 0)
	}
	for _, ch := range channels {
		c.write((&resp.SubAckReply{Kind: "subscribe", Channel: []byte(ch), Count: c.subCount()}).ToBytes())
	}
}

func (c *Connection) doUnsubscribe(channels []string) {
	c.subMu.Lock()
	if len(channels) == 0 {
		for ch := range c.channels {
			channels = append(channels, ch)
		}
	}
	var removed []string
	for _, ch := range channels {
		if _, ok := c.channels[ch]; ok {
			delete(c.channels, ch)
			removed = append(removed, ch)
		}
	}
	c.subMu.Unlock()

	if len(removed) > 0 {
		c.store.Fanout().RemoveSubscriptions(removed, c)
	}
	if len(channels) == 0 {
		c.write((&resp.SubAckReply{Kind: "unsubscribe", Channel: nil, Count: c.subCount()}).ToBytes())
		return
	}
	for _, ch := range channels {
		c.write((&resp.SubAckReply{Kind: "unsubscribe", Channel: []byte(ch), Count: c.subCount()}).ToBytes())
	}
}

func (c *Connection) doPSubscribe(patterns []string) {
	if len(patterns) == 0 {
		c.write(resp.NewErrReply("ERR wrong number of arguments for 'psubscribe'").ToBytes())
		return
	}
	var newly []string
	c.subMu.Lock()
	for _, p := range patterns {
		if _, ok := c.patterns[p]; !ok {
			c.patterns[p] = struct{}{}
			newly = append(newly, p)
		}
	}
	c.subMu.Unlock()

	if len(newly) > 0 {
		c.store.Fanout().AddPatterns(newly, c, 0)
	}
	for _, p := range patterns {
		c.write((&resp.SubAckReply{Kind: "psubscribe", Channel: []byte(p), Count: c.subCount()}).ToBytes())
	}
}

func (c *Connection) doPUnsubscribe(patterns []string) {
	c.subMu.Lock()
	if len(patterns) == 0 {
		for p := range c.patterns {
			patterns = append(patterns, p)
		}
	}
	var removed []string
	for _, p := range patterns {
		if _, ok := c.patterns[p]; ok {
			delete(c.patterns, p)
			removed = append(removed, p)
		}
	}
	c.subMu.Unlock()

	if len(removed) > 0 {
		c.store.Fanout().RemovePatterns(removed, c)
	}
	if len(patterns) == 0 {
		c.write((&resp.SubAckReply{Kind: "punsubscribe", Channel: nil, Count: c.subCount()}).ToBytes())
		return
	}
	for _, p := range patterns {
		c.write((&resp.SubAckReply{Kind: "punsubscribe", Channel: []byte(p), Count: c.subCount()}).ToBytes())
	}
}

func (c *Connection) doPublish(args [][]byte) {
	if len(args) != 2 {
		c.write(resp.NewErrReply("ERR wrong number of arguments for 'publish'").ToBytes())
		return
	}
	count := c.store.Publish(string(args[0]), args[1])
	c.write(resp.NewIntReply(count).ToBytes())
}

func (c *Connection) subCount() int64 {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	return int64(len(c.channels) + len(c.patterns))
}

func (c *Connection) writePubMessage(f *pubMessageFrame) {
	reply := &resp.PubMessageReply{Pattern: f.pattern, Channel: f.channel, Payload: f.message}
	c.write(reply.ToBytes())
}

// write sends b over the socket. It always runs with execMu held by
// the caller, so reader-inline writes and worker writes never
// interleave mid-frame.
func (c *Connection) write(b []byte) {
	if _, err := c.netConn.Write(b); err != nil {
		if !c.closing.Load() {
			log.Warnf("[conn %s] write err: %s", c.id, err.Error())
		}
		c.closeOnce.Do(func() { close(c.closeSignal) })
	}
}
