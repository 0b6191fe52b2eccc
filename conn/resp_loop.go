package conn

import (
	"github.com/lovelydayss/shardcache/resp"
)

// readLoopRESP drives the RESP parser and applies the inline-vs-queued
// dispatch decision to every parsed command line. It peeks one frame
// ahead (non-blocking) to approximate "parser has consumed all
// buffered bytes": when another frame is already sitting behind this
// one — the pipelined case — dispatch is forced to queue so replies
// still come out in the order the frames were produced.
func (c *Connection) readLoopRESP() {
	parser := resp.NewParser()
	frames := parser.ParseStream(c.netConn)

	var pending *resp.Frame
	channelClosed := false

	for {
		var frame *resp.Frame
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
				c.write(resp.NewErrReply("ERR Protocol error: " + frame.Err.Error()).ToBytes())
			}
			return
		}

		multi, ok := frame.Reply.(resp.MultiReply)
		if !ok || len(multi.Args()) == 0 {
			continue
		}
		args := multi.Args()

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
			c.dispatchInline(args)
		} else {
			c.enqueueCommand(args)
		}
	}
}
