package store

import (
	"strconv"

	msortedset "github.com/lovelydayss/shardcache/datastruct/sortedset"
	"github.com/lovelydayss/shardcache/resp"
)

// ZAdd implements ZADD key score member [score member ...].
func (e *Engine) ZAdd(args [][]byte) resp.Reply {
	if len(args) < 3 || len(args)&1 != 1 {
		return syntaxErr()
	}
	key := string(args[0])

	scores := make([]float64, 0, (len(args)-1)>>1)
	members := make([]string, 0, (len(args)-1)>>1)
	for i := 1; i < len(args); i += 2 {
		score, err := strconv.ParseFloat(string(args[i]), 64)
		if err != nil {
			return syntaxErr()
		}
		scores = append(scores, score)
		members = append(members, string(args[i+1]))
	}

	zset, errReply := e.getAsSortedSet(key)
	if errReply != nil {
		return errReply
	}
	if zset == nil {
		zset = msortedset.NewSkiplist(key)
		e.putAsSortedSet(key, zset)
	}

	var added int64
	for i := range scores {
		added += zset.Add(scores[i], members[i])
	}
	return resp.NewIntReply(added)
}

// ZScore implements ZSCORE key member.
func (e *Engine) ZScore(args [][]byte) resp.Reply {
	if len(args) != 2 {
		return syntaxErr()
	}
	zset, errReply := e.getAsSortedSet(string(args[0]))
	if errReply != nil {
		return errReply
	}
	if zset == nil {
		return resp.NewNullBulkReply()
	}
	score, ok := zset.Score(string(args[1]))
	if !ok {
		return resp.NewNullBulkReply()
	}
	return resp.NewBulkReply([]byte(strconv.FormatFloat(score, 'f', -1, 64)))
}

// ZRangeByScore implements ZRANGEBYSCORE key min max.
func (e *Engine) ZRangeByScore(args [][]byte) resp.Reply {
	if len(args) != 3 {
		return syntaxErr()
	}
	key := string(args[0])
	score1, err := strconv.ParseFloat(string(args[1]), 64)
	if err != nil {
		return syntaxErr()
	}
	score2, err := strconv.ParseFloat(string(args[2]), 64)
	if err != nil {
		return syntaxErr()
	}

	zset, errReply := e.getAsSortedSet(key)
	if errReply != nil {
		return errReply
	}
	if zset == nil {
		return resp.NewEmptyMultiBulkReply()
	}

	members := zset.Range(score1, score2)
	out := make([][]byte, len(members))
	for i, m := range members {
		out[i] = []byte(m)
	}
	return resp.NewMultiBulkReply(out)
}

// ZRem implements ZREM key member [member ...].
func (e *Engine) ZRem(args [][]byte) resp.Reply {
	if len(args) < 2 {
		return syntaxErr()
	}
	zset, errReply := e.getAsSortedSet(string(args[0]))
	if errReply != nil {
		return errReply
	}
	if zset == nil {
		return resp.NewIntReply(0)
	}

	var removed int64
	for _, arg := range args[1:] {
		removed += zset.Rem(string(arg))
	}
	return resp.NewIntReply(removed)
}
