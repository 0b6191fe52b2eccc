package store

import (
	"strconv"

	mlist "github.com/lovelydayss/shardcache/datastruct/list"
	"github.com/lovelydayss/shardcache/resp"
)

// LPush implements LPUSH key value [value ...].
func (e *Engine) LPush(args [][]byte) resp.Reply {
	if len(args) < 2 {
		return syntaxErr()
	}
	key := string(args[0])
	list, errReply := e.getAsList(key)
	if errReply != nil {
		return errReply
	}
	if list == nil {
		list = mlist.NewListEntity(key)
		e.putAsList(key, list)
	}
	for _, v := range args[1:] {
		list.LPush(v)
	}
	return resp.NewIntReply(list.Len())
}

// LPop implements LPOP key [count].
func (e *Engine) LPop(args [][]byte) resp.Reply {
	return e.pop(args, true)
}

// RPop implements RPOP key [count].
func (e *Engine) RPop(args [][]byte) resp.Reply {
	return e.pop(args, false)
}

func (e *Engine) pop(args [][]byte, left bool) resp.Reply {
	if len(args) < 1 {
		return syntaxErr()
	}
	key := string(args[0])

	var cnt int64
	if len(args) > 1 {
		rawCnt, err := strconv.ParseInt(string(args[1]), 10, 64)
		if err != nil || rawCnt < 1 {
			return syntaxErr()
		}
		cnt = rawCnt
	}
	if cnt == 0 {
		cnt = 1
	}

	list, errReply := e.getAsList(key)
	if errReply != nil {
		return errReply
	}
	if list == nil {
		return resp.NewNullBulkReply()
	}

	var popped [][]byte
	if left {
		popped = list.LPop(cnt)
	} else {
		popped = list.RPop(cnt)
	}
	if popped == nil {
		return resp.NewNullBulkReply()
	}
	if len(popped) == 1 {
		return resp.NewBulkReply(popped[0])
	}
	return resp.NewMultiBulkReply(popped)
}

// RPush implements RPUSH key value [value ...].
func (e *Engine) RPush(args [][]byte) resp.Reply {
	if len(args) < 2 {
		return syntaxErr()
	}
	key := string(args[0])
	list, errReply := e.getAsList(key)
	if errReply != nil {
		return errReply
	}
	if list == nil {
		list = mlist.NewListEntity(key, args[1:]...)
		e.putAsList(key, list)
		return resp.NewIntReply(list.Len())
	}
	for _, v := range args[1:] {
		list.RPush(v)
	}
	return resp.NewIntReply(list.Len())
}

// LRange implements LRANGE key start stop.
func (e *Engine) LRange(args [][]byte) resp.Reply {
	if len(args) != 3 {
		return syntaxErr()
	}
	key := string(args[0])
	start, err := strconv.ParseInt(string(args[1]), 10, 64)
	if err != nil {
		return syntaxErr()
	}
	stop, err := strconv.ParseInt(string(args[2]), 10, 64)
	if err != nil {
		return syntaxErr()
	}

	list, errReply := e.getAsList(key)
	if errReply != nil {
		return errReply
	}
	if list == nil {
		return resp.NewNullArrayReply()
	}

	if got := list.Range(start, stop); got != nil {
		return resp.NewMultiBulkReply(got)
	}
	return resp.NewNullArrayReply()
}

// LLen implements LLEN key.
func (e *Engine) LLen(args [][]byte) resp.Reply {
	if len(args) != 1 {
		return syntaxErr()
	}
	list, errReply := e.getAsList(string(args[0]))
	if errReply != nil {
		return errReply
	}
	if list == nil {
		return resp.NewIntReply(0)
	}
	return resp.NewIntReply(list.Len())
}
