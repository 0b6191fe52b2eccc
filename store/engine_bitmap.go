package store

import (
	"strconv"

	mbitmap "github.com/lovelydayss/shardcache/datastruct/bitmap"
	"github.com/lovelydayss/shardcache/resp"
)

// SetBit implements SETBIT key offset value.
func (e *Engine) SetBit(args [][]byte) resp.Reply {
	if len(args) != 3 {
		return syntaxErr()
	}
	key := string(args[0])
	offset, err := strconv.ParseInt(string(args[1]), 10, 64)
	if err != nil || offset < 0 {
		return syntaxErr()
	}
	val, err := strconv.ParseInt(string(args[2]), 10, 8)
	if err != nil || (val != 0 && val != 1) {
		return syntaxErr()
	}

	bm, errReply := e.getAsBitmap(key)
	if errReply != nil {
		return errReply
	}
	if bm == nil {
		bm = mbitmap.NewBitMapEntity(key)
		e.putAsBitmap(key, bm)
	}

	prev := bm.GetBit(offset)
	bm.SetBit(offset, byte(val))
	if prev == nil || string(prev) == "0" {
		return resp.NewIntReply(0)
	}
	return resp.NewIntReply(1)
}

// GetBit implements GETBIT key offset.
func (e *Engine) GetBit(args [][]byte) resp.Reply {
	if len(args) != 2 {
		return syntaxErr()
	}
	offset, err := strconv.ParseInt(string(args[1]), 10, 64)
	if err != nil {
		return syntaxErr()
	}

	bm, errReply := e.getAsBitmap(string(args[0]))
	if errReply != nil {
		return errReply
	}
	if bm == nil {
		return resp.NewIntReply(0)
	}
	v := bm.GetBit(offset)
	if v == nil {
		return resp.NewIntReply(0)
	}
	return resp.NewBulkReply(v)
}

// BitCount implements BITCOUNT key.
func (e *Engine) BitCount(args [][]byte) resp.Reply {
	if len(args) != 1 {
		return syntaxErr()
	}
	bm, errReply := e.getAsBitmap(string(args[0]))
	if errReply != nil {
		return errReply
	}
	if bm == nil {
		return resp.NewIntReply(0)
	}
	return resp.NewBulkReply(bm.Count())
}
