package store

import (
	"testing"

	"github.com/lovelydayss/shardcache/resp"
)

func args(ss ...string) [][]byte {
	out := make([][]byte, len(ss))
	for i, s := range ss {
		out[i] = []byte(s)
	}
	return out
}

func mustInt(t *testing.T, r resp.Reply) int64 {
	t.Helper()
	i, ok := r.(*resp.IntReply)
	if !ok {
		t.Fatalf("expected *resp.IntReply, got %#v", r)
	}
	return i.Value
}

func mustBulk(t *testing.T, r resp.Reply) []byte {
	t.Helper()
	b, ok := r.(*resp.BulkReply)
	if !ok {
		t.Fatalf("expected *resp.BulkReply, got %#v", r)
	}
	return b.Arg
}

func TestEngineGetSet(t *testing.T) {
	e := NewEngine(0)

	if got := e.Dispatch("set", args("foo", "bar")); mustInt(t, got) != 1 {
		t.Fatalf("expected SET to report 1 affected, got %+v", got)
	}
	if got := mustBulk(t, e.Dispatch("get", args("foo"))); string(got) != "bar" {
		t.Fatalf("expected bar, got %q", got)
	}
	if got := e.Dispatch("get", args("missing")); got.(*resp.BulkReply).Arg != nil {
		t.Fatalf("expected nil for a missing key, got %+v", got)
	}
}

func TestEngineSetNX(t *testing.T) {
	e := NewEngine(0)

	e.Dispatch("set", args("foo", "bar"))
	got := e.Dispatch("set", args("foo", "baz", "NX"))
	if _, ok := got.(*resp.BulkReply); !ok {
		t.Fatalf("expected NX to report no-op as a null bulk reply, got %+v", got)
	}
	if got := mustBulk(t, e.Dispatch("get", args("foo"))); string(got) != "bar" {
		t.Fatalf("NX should not have overwritten foo, got %q", got)
	}
}

func TestEngineDel(t *testing.T) {
	e := NewEngine(0)

	e.Dispatch("set", args("a", "1"))
	e.Dispatch("set", args("b", "2"))

	if got := mustInt(t, e.Dispatch("del", args("a", "b", "missing"))); got != 2 {
		t.Fatalf("expected 2 keys deleted, got %d", got)
	}
	if got := mustInt(t, e.Dispatch("exists", args("a"))); got != 0 {
		t.Fatalf("expected a to be gone, got exists=%d", got)
	}
}

func TestEngineExpireAndTTL(t *testing.T) {
	e := NewEngine(0)

	e.Dispatch("set", args("foo", "bar"))
	if got := mustInt(t, e.Dispatch("ttl", args("foo"))); got != -1 {
		t.Fatalf("expected -1 for a key with no TTL, got %d", got)
	}
	e.Dispatch("expire", args("foo", "100"))
	if got := mustInt(t, e.Dispatch("ttl", args("foo"))); got <= 0 || got > 100 {
		t.Fatalf("expected a TTL in (0, 100], got %d", got)
	}
	if got := mustInt(t, e.Dispatch("ttl", args("missing"))); got != -2 {
		t.Fatalf("expected -2 for a missing key, got %d", got)
	}
}

func TestEngineListOps(t *testing.T) {
	e := NewEngine(0)

	e.Dispatch("rpush", args("list", "a", "b", "c"))
	if got := mustInt(t, e.Dispatch("llen", args("list"))); got != 3 {
		t.Fatalf("expected length 3, got %d", got)
	}
	if got := mustBulk(t, e.Dispatch("lpop", args("list"))); string(got) != "a" {
		t.Fatalf("expected a, got %q", got)
	}
}

func TestEngineSetTypeOps(t *testing.T) {
	e := NewEngine(0)

	e.Dispatch("sadd", args("s", "x", "y", "x"))
	if got := mustInt(t, e.Dispatch("sismember", args("s", "x"))); got != 1 {
		t.Fatalf("expected x to be a member, got %d", got)
	}
	if got := mustInt(t, e.Dispatch("srem", args("s", "x"))); got != 1 {
		t.Fatalf("expected 1 removed, got %d", got)
	}
}

func TestEngineWrongType(t *testing.T) {
	e := NewEngine(0)

	e.Dispatch("set", args("foo", "bar"))
	got := e.Dispatch("sadd", args("foo", "member"))
	errReply, ok := got.(*resp.ErrReply)
	if !ok || errReply.Message[:9] != "WRONGTYPE" {
		t.Fatalf("expected a WRONGTYPE error, got %+v", got)
	}
}

func TestEngineHashOps(t *testing.T) {
	e := NewEngine(0)

	e.Dispatch("hset", args("h", "f1", "v1"))
	if got := mustBulk(t, e.Dispatch("hget", args("h", "f1"))); string(got) != "v1" {
		t.Fatalf("expected v1, got %q", got)
	}
	if got := mustInt(t, e.Dispatch("hdel", args("h", "f1"))); got != 1 {
		t.Fatalf("expected 1 removed, got %d", got)
	}
}

func TestEngineZSetOps(t *testing.T) {
	e := NewEngine(0)

	e.Dispatch("zadd", args("z", "10", "a"))
	e.Dispatch("zadd", args("z", "20", "b"))

	if got := mustBulk(t, e.Dispatch("zscore", args("z", "a"))); string(got) != "10" {
		t.Fatalf("expected score 10, got %q", got)
	}
	reply := e.Dispatch("zrangebyscore", args("z", "0", "100"))
	multi, ok := reply.(*resp.MultiBulkReply)
	if !ok || len(multi.Args()) != 2 {
		t.Fatalf("expected 2 members in range, got %+v", reply)
	}
	if got := mustInt(t, e.Dispatch("zrem", args("z", "a"))); got != 1 {
		t.Fatalf("expected 1 removed, got %d", got)
	}
}

func TestEngineZAddFractionalScore(t *testing.T) {
	e := NewEngine(0)

	if got := mustInt(t, e.Dispatch("zadd", args("z", "1.1", "a"))); got != 1 {
		t.Fatalf("expected 1 added, got %d", got)
	}
	if got := mustBulk(t, e.Dispatch("zscore", args("z", "a"))); string(got) != "1.1" {
		t.Fatalf("expected score 1.1, got %q", got)
	}
}

func TestEngineBitmapOps(t *testing.T) {
	e := NewEngine(0)

	e.Dispatch("setbit", args("bm", "3", "1"))
	if got := mustBulk(t, e.Dispatch("getbit", args("bm", "3"))); string(got) != "1" {
		t.Fatalf("expected bit 3 to be set, got %q", got)
	}
	if got := mustBulk(t, e.Dispatch("bitcount", args("bm"))); string(got) != "1" {
		t.Fatalf("expected bitcount 1, got %q", got)
	}
}

func TestEngineUnknownCommand(t *testing.T) {
	e := NewEngine(0)
	got := e.Dispatch("nosuchcommand", args("foo"))
	if _, ok := got.(*resp.ErrReply); !ok {
		t.Fatalf("expected an error reply, got %+v", got)
	}
}
