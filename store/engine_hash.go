package store

import (
	mhash "github.com/lovelydayss/shardcache/datastruct/hash"
	"github.com/lovelydayss/shardcache/resp"
)

// HSet implements HSET key field value [field value ...].
func (e *Engine) HSet(args [][]byte) resp.Reply {
	if len(args) < 3 || len(args)&1 != 1 {
		return syntaxErr()
	}
	key := string(args[0])
	hmap, errReply := e.getAsHashMap(key)
	if errReply != nil {
		return errReply
	}
	if hmap == nil {
		hmap = mhash.NewHashMapEntity(key)
		e.putAsHashMap(key, hmap)
	}

	for i := 1; i < len(args); i += 2 {
		hmap.Put(string(args[i]), args[i+1])
	}
	return resp.NewIntReply(int64((len(args) - 1) >> 1))
}

// HGet implements HGET key field.
func (e *Engine) HGet(args [][]byte) resp.Reply {
	if len(args) != 2 {
		return syntaxErr()
	}
	hmap, errReply := e.getAsHashMap(string(args[0]))
	if errReply != nil {
		return errReply
	}
	if hmap == nil {
		return resp.NewNullBulkReply()
	}
	if v := hmap.Get(string(args[1])); v != nil {
		return resp.NewBulkReply(v)
	}
	return resp.NewNullBulkReply()
}

// HDel implements HDEL key field [field ...].
func (e *Engine) HDel(args [][]byte) resp.Reply {
	if len(args) < 2 {
		return syntaxErr()
	}
	hmap, errReply := e.getAsHashMap(string(args[0]))
	if errReply != nil {
		return errReply
	}
	if hmap == nil {
		return resp.NewIntReply(0)
	}

	var removed int64
	for _, arg := range args[1:] {
		removed += hmap.Del(string(arg))
	}
	return resp.NewIntReply(removed)
}
