package conn

import (
	"github.com/lovelydayss/shardcache/memcache"
)

// readLoopMemcache mirrors readLoopRESP for the memcache text
// protocol: no subscriptions exist on this path, so force_dispatch is
// always false and the only reason to queue is a pipelined follow-up
// command already parsed behind this one.
func (c *Connection) readLoopMemcache() {
	parser := memcache.NewParser()
	frames := parser.ParseStream(c.netConn)

	var pending *memcache.Frame
	channelClosed := false

	for {
		var frame *memcache.Frame
		if pending != nil {
			frame, pending = pending, nil
		} else {
			if channelClosed {
				return
			}
			f, ok := <-frames
			if !ok {
				return
			}
			frame = f
		}

		c.touch()

		if frame.Err != nil {
			if !frame.Terminated() {
				c.write(memcache.EncodeClientError(frame.Err.Error()))
			}
			return
		}

		pipelined := false
		select {
		case nf, ok := <-frames:
			if !ok {
				channelClosed = true
			} else {
				pending = nf
				pipelined = true
			}
		default:
		}

		if !pipelined && c.canInlineDispatch() {
			// canInlineDispatch already holds execMu on success.
			c.setPhase("process")
			c.runMemcacheCommand(frame)
			c.setPhase("readsock")
			c.execMu.Unlock()
		} else {
			select {
			case c.queue <- &mcCommandFrame{frame: frame}:
			case <-c.closeSignal:
				return
			}
		}
	}
}

// runMemcacheCommand executes one decoded memcache request and writes
// its reply, honoring noreply for storage and delete commands.
func (c *Connection) runMemcacheCommand(frame *memcache.Frame) {
	switch {
	case frame.Storage != nil:
		reply := c.store.DispatchMC(frame.Storage, nil, nil)
		if !frame.Storage.NoReply {
			c.write(reply)
		}
	case frame.Retrieval != nil:
		reply := c.store.DispatchMC(nil, frame.Retrieval, nil)
		c.write(reply)
	case frame.Delete != nil:
		reply := c.store.DispatchMC(nil, nil, frame.Delete)
		if !frame.Delete.NoReply {
			c.write(reply)
		}
	}
}
