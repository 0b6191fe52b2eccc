// Package store is the per-shard key/value engine: one Engine lives on
// each shard goroutine (see the shard package) and is only ever
// touched from that goroutine, generalizing the teacher's single
// DBExecutor (database/executor.go) from one global instance to one
// per shard. Store is the external collaborator: it hashes a command's
// key to a shard and runs the matching Engine method through
// shard.Manager.RunBrief, the same reception the teacher's DBTrigger
// gave a command before handing it to the executor's channel.
package store

import (
	"fmt"
	"time"

	msortedset "github.com/lovelydayss/shardcache/datastruct/sortedset"
	"github.com/lovelydayss/shardcache/resp"
)

// Engine holds one shard's partition of the keyspace. Every exported
// method assumes it runs on the owning shard's goroutine.
type Engine struct {
	shardID uint32

	data      map[string]interface{}
	expiredAt map[string]time.Time
	expireWheel msortedset.SortedSet

	handlers map[string]func(args [][]byte) resp.Reply
}

// NewEngine returns an empty engine for shard id.
func NewEngine(id uint32) *Engine {
	e := &Engine{
		shardID:     id,
		data:        make(map[string]interface{}),
		expiredAt:   make(map[string]time.Time),
		expireWheel: msortedset.NewSkiplist("expire-wheel"),
	}
	e.handlers = map[string]func(args [][]byte) resp.Reply{
		"expire":   e.Expire,
		"expireat": e.ExpireAt,
		"ttl":      e.TTL,
		"exists":   e.Exists,

		"get":  e.Get,
		"set":  e.Set,
		"mget": e.MGet,
		"mset": e.MSet,
		"del":  e.Del,

		"lpush":  e.LPush,
		"lpop":   e.LPop,
		"rpush":  e.RPush,
		"rpop":   e.RPop,
		"lrange": e.LRange,
		"llen":   e.LLen,

		"sadd":      e.SAdd,
		"sismember": e.SIsMember,
		"srem":      e.SRem,
		"smembers":  e.SMembers,

		"hset": e.HSet,
		"hget": e.HGet,
		"hdel": e.HDel,

		"zadd":          e.ZAdd,
		"zscore":        e.ZScore,
		"zrangebyscore": e.ZRangeByScore,
		"zrem":          e.ZRem,

		"setbit":   e.SetBit,
		"getbit":   e.GetBit,
		"bitcount": e.BitCount,
	}
	return e
}

// ValidCommand reports whether cmd names a command this engine handles.
func (e *Engine) ValidCommand(cmd string) bool {
	_, ok := e.handlers[cmd]
	return ok
}

// Dispatch runs cmd against args (the command line without the verb),
// lazily expiring args[0] first when the command takes a key as its
// first argument.
func (e *Engine) Dispatch(cmd string, args [][]byte) resp.Reply {
	handler, ok := e.handlers[cmd]
	if !ok {
		return resp.NewErrReply(fmt.Sprintf("ERR unknown command '%s'", cmd))
	}
	if len(args) > 0 {
		e.expirePreprocess(string(args[0]))
	}
	return handler(args)
}

func syntaxErr() resp.Reply {
	return resp.NewErrReply("ERR syntax error")
}

func wrongTypeErr() resp.Reply {
	return resp.NewErrReply("WRONGTYPE Operation against a key holding the wrong kind of value")
}
