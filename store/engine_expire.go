package store

import (
	"strconv"
	"time"

	"github.com/lovelydayss/shardcache/resp"
)

// GC sweeps every key whose expiry has passed, using the expire wheel
// to avoid a full scan of the keyspace.
func (e *Engine) GC() {
	now := float64(time.Now().Unix())
	for _, key := range e.expireWheel.Range(0, now) {
		e.expireProcess(key)
	}
}

// expirePreprocess lazily evicts key if its expiry has already passed.
func (e *Engine) expirePreprocess(key string) {
	expiredAt, ok := e.expiredAt[key]
	if !ok {
		return
	}
	if expiredAt.After(time.Now()) {
		return
	}
	e.expireProcess(key)
}

func (e *Engine) expireProcess(key string) {
	delete(e.expiredAt, key)
	delete(e.data, key)
	e.expireWheel.Rem(key)
}

// Expire sets key's TTL as a relative offset in seconds: args = [key, seconds].
func (e *Engine) Expire(args [][]byte) resp.Reply {
	if len(args) != 2 {
		return syntaxErr()
	}
	key := string(args[0])
	ttl, err := strconv.ParseInt(string(args[1]), 10, 64)
	if err != nil || ttl <= 0 {
		return resp.NewErrReply("ERR invalid expire time")
	}
	return e.setExpireAt(key, time.Now().Add(time.Duration(ttl)*time.Second))
}

// ExpireAt sets key's TTL as an absolute unix timestamp: args = [key, unixSeconds].
func (e *Engine) ExpireAt(args [][]byte) resp.Reply {
	if len(args) != 2 {
		return syntaxErr()
	}
	key := string(args[0])
	unixSec, err := strconv.ParseInt(string(args[1]), 10, 64)
	if err != nil {
		return resp.NewErrReply("ERR invalid expire time")
	}
	at := time.Unix(unixSec, 0)
	if at.Before(time.Now()) {
		return resp.NewErrReply("ERR invalid expire time")
	}
	return e.setExpireAt(key, at)
}

func (e *Engine) setExpireAt(key string, at time.Time) resp.Reply {
	if _, ok := e.data[key]; !ok {
		return resp.NewIntReply(0)
	}
	e.expiredAt[key] = at
	e.expireWheel.Add(float64(at.Unix()), key)
	return resp.OKReply
}

// TTL reports the remaining seconds until key expires: -1 if it has
// no expiry, -2 if it does not exist.
func (e *Engine) TTL(args [][]byte) resp.Reply {
	if len(args) != 1 {
		return syntaxErr()
	}
	key := string(args[0])
	if _, ok := e.data[key]; !ok {
		return resp.NewIntReply(-2)
	}
	expiredAt, ok := e.expiredAt[key]
	if !ok {
		return resp.NewIntReply(-1)
	}
	remaining := int64(time.Until(expiredAt).Seconds())
	if remaining < 0 {
		remaining = 0
	}
	return resp.NewIntReply(remaining)
}

// Exists reports how many of args are present keys (0 or 1, since it
// takes exactly one key).
func (e *Engine) Exists(args [][]byte) resp.Reply {
	if len(args) != 1 {
		return syntaxErr()
	}
	if _, ok := e.data[string(args[0])]; ok {
		return resp.NewIntReply(1)
	}
	return resp.NewIntReply(0)
}

// Del implements DEL key [key ...], returning the number of keys that
// actually existed.
func (e *Engine) Del(args [][]byte) resp.Reply {
	if len(args) == 0 {
		return syntaxErr()
	}
	var removed int64
	for _, arg := range args {
		key := string(arg)
		if _, ok := e.data[key]; !ok {
			continue
		}
		e.expireProcess(key)
		removed++
	}
	return resp.NewIntReply(removed)
}
