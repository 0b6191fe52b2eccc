package store

import (
	"strconv"
	"strings"
	"time"

	"github.com/lovelydayss/shardcache/resp"
)

// Get implements GET key.
func (e *Engine) Get(args [][]byte) resp.Reply {
	if len(args) != 1 {
		return syntaxErr()
	}
	v, errReply := e.getAsString(string(args[0]))
	if errReply != nil {
		return errReply
	}
	if v == nil {
		return resp.NewNullBulkReply()
	}
	return resp.NewBulkReply(v.Bytes())
}

// MGet implements MGET key [key ...].
func (e *Engine) MGet(args [][]byte) resp.Reply {
	res := make([][]byte, 0, len(args))
	for _, arg := range args {
		v, errReply := e.getAsString(string(arg))
		if errReply != nil {
			return errReply
		}
		if v == nil {
			res = append(res, nil)
			continue
		}
		res = append(res, v.Bytes())
	}
	return resp.NewMultiBulkReply(res)
}

// Set implements SET key value [NX] [EX seconds].
func (e *Engine) Set(args [][]byte) resp.Reply {
	if len(args) < 2 {
		return syntaxErr()
	}
	key := string(args[0])
	value := string(args[1])

	var (
		insertOnly bool
		hasTTL     bool
		ttlSeconds int64
	)

	for i := 2; i < len(args); i++ {
		switch strings.ToLower(string(args[i])) {
		case "nx":
			insertOnly = true
		case "ex":
			if hasTTL || i == len(args)-1 {
				return syntaxErr()
			}
			ttl, err := strconv.ParseInt(string(args[i+1]), 10, 64)
			if err != nil || ttl <= 0 {
				return resp.NewErrReply("ERR invalid expire time")
			}
			hasTTL = true
			ttlSeconds = ttl
			i++
		default:
			return syntaxErr()
		}
	}

	affected := e.put(key, value, insertOnly)
	if affected == 0 {
		return resp.NewNullBulkReply()
	}
	if hasTTL {
		e.setExpireAt(key, time.Now().Add(time.Duration(ttlSeconds)*time.Second))
	}
	return resp.NewIntReply(affected)
}

// MSet implements MSET key value [key value ...].
func (e *Engine) MSet(args [][]byte) resp.Reply {
	if len(args)&1 == 1 {
		return syntaxErr()
	}
	for i := 0; i < len(args); i += 2 {
		e.put(string(args[i]), string(args[i+1]), false)
	}
	return resp.NewIntReply(int64(len(args) >> 1))
}
