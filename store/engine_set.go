package store

import (
	mset "github.com/lovelydayss/shardcache/datastruct/set"
	"github.com/lovelydayss/shardcache/resp"
)

// SAdd implements SADD key member [member ...].
func (e *Engine) SAdd(args [][]byte) resp.Reply {
	if len(args) < 2 {
		return syntaxErr()
	}
	key := string(args[0])
	set, errReply := e.getAsSet(key)
	if errReply != nil {
		return errReply
	}
	if set == nil {
		set = mset.NewSetEntity(key)
		e.putAsSet(key, set)
	}

	var added int64
	for _, arg := range args[1:] {
		added += set.Add(string(arg))
	}
	return resp.NewIntReply(added)
}

// SIsMember implements SISMEMBER key member.
func (e *Engine) SIsMember(args [][]byte) resp.Reply {
	if len(args) != 2 {
		return syntaxErr()
	}
	set, errReply := e.getAsSet(string(args[0]))
	if errReply != nil {
		return errReply
	}
	if set == nil {
		return resp.NewIntReply(0)
	}
	return resp.NewIntReply(set.Exist(string(args[1])))
}

// SRem implements SREM key member [member ...].
func (e *Engine) SRem(args [][]byte) resp.Reply {
	if len(args) < 2 {
		return syntaxErr()
	}
	set, errReply := e.getAsSet(string(args[0]))
	if errReply != nil {
		return errReply
	}
	if set == nil {
		return resp.NewIntReply(0)
	}

	var removed int64
	for _, arg := range args[1:] {
		removed += set.Rem(string(arg))
	}
	return resp.NewIntReply(removed)
}

// SMembers implements SMEMBERS key.
func (e *Engine) SMembers(args [][]byte) resp.Reply {
	if len(args) != 1 {
		return syntaxErr()
	}
	set, errReply := e.getAsSet(string(args[0]))
	if errReply != nil {
		return errReply
	}
	if set == nil {
		return resp.NewEmptyMultiBulkReply()
	}

	members := set.Members()
	out := make([][]byte, len(members))
	for i, m := range members {
		out[i] = []byte(m)
	}
	return resp.NewMultiBulkReply(out)
}
