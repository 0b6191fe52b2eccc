package store

import (
	"testing"

	"github.com/lovelydayss/shardcache/memcache"
)

func TestMemcacheSetGet(t *testing.T) {
	e := NewEngine(0)

	status := e.DispatchStorage(&memcache.StorageCommand{Cmd: memcache.CmdSet, Key: "foo", Flags: 3, Data: []byte("bar")})
	if status != memcache.StatusStored {
		t.Fatalf("expected STORED, got %s", status)
	}

	items := e.DispatchRetrieval(&memcache.RetrievalCommand{Cmd: memcache.CmdGet, Keys: []string{"foo"}})
	if len(items) != 1 || string(items[0].Value) != "bar" || items[0].Flags != 3 {
		t.Fatalf("unexpected retrieval result: %+v", items)
	}
}

func TestMemcacheAddReplace(t *testing.T) {
	e := NewEngine(0)

	if status := e.DispatchStorage(&memcache.StorageCommand{Cmd: memcache.CmdReplace, Key: "foo", Data: []byte("x")}); status != memcache.StatusNotStored {
		t.Fatalf("expected NOT_STORED for REPLACE on a missing key, got %s", status)
	}

	if status := e.DispatchStorage(&memcache.StorageCommand{Cmd: memcache.CmdAdd, Key: "foo", Data: []byte("x")}); status != memcache.StatusStored {
		t.Fatalf("expected STORED for ADD on a missing key, got %s", status)
	}

	if status := e.DispatchStorage(&memcache.StorageCommand{Cmd: memcache.CmdAdd, Key: "foo", Data: []byte("y")}); status != memcache.StatusNotStored {
		t.Fatalf("expected NOT_STORED for ADD on an existing key, got %s", status)
	}
}

func TestMemcacheCASIncrementsOnEachStore(t *testing.T) {
	e := NewEngine(0)

	e.DispatchStorage(&memcache.StorageCommand{Cmd: memcache.CmdSet, Key: "foo", Data: []byte("1")})
	first := e.DispatchRetrieval(&memcache.RetrievalCommand{Cmd: memcache.CmdGets, Keys: []string{"foo"}, WithCAS: true})[0].CAS

	e.DispatchStorage(&memcache.StorageCommand{Cmd: memcache.CmdSet, Key: "foo", Data: []byte("2")})
	second := e.DispatchRetrieval(&memcache.RetrievalCommand{Cmd: memcache.CmdGets, Keys: []string{"foo"}, WithCAS: true})[0].CAS

	if second <= first {
		t.Fatalf("expected CAS to increase, got %d then %d", first, second)
	}
}

func TestMemcacheDelete(t *testing.T) {
	e := NewEngine(0)

	if status := e.DispatchDelete(&memcache.DeleteCommand{Key: "foo"}); status != memcache.StatusNotFound {
		t.Fatalf("expected NOT_FOUND for a missing key, got %s", status)
	}

	e.DispatchStorage(&memcache.StorageCommand{Cmd: memcache.CmdSet, Key: "foo", Data: []byte("x")})
	if status := e.DispatchDelete(&memcache.DeleteCommand{Key: "foo"}); status != memcache.StatusDeleted {
		t.Fatalf("expected DELETED, got %s", status)
	}
	if items := e.DispatchRetrieval(&memcache.RetrievalCommand{Cmd: memcache.CmdGet, Keys: []string{"foo"}}); len(items) != 0 {
		t.Fatalf("expected no items after delete, got %+v", items)
	}
}

func TestMemcacheNegativeExptimeExpiresImmediately(t *testing.T) {
	e := NewEngine(0)

	e.DispatchStorage(&memcache.StorageCommand{Cmd: memcache.CmdSet, Key: "foo", Data: []byte("x"), ExptSec: -1})
	if items := e.DispatchRetrieval(&memcache.RetrievalCommand{Cmd: memcache.CmdGet, Keys: []string{"foo"}}); len(items) != 0 {
		t.Fatalf("expected a negative exptime to expire immediately, got %+v", items)
	}
}

func TestMemcacheKeyspaceIsolatedFromRESPStrings(t *testing.T) {
	e := NewEngine(0)

	e.Dispatch("set", args("foo", "resp-value"))
	items := e.DispatchRetrieval(&memcache.RetrievalCommand{Cmd: memcache.CmdGet, Keys: []string{"foo"}})
	if len(items) != 0 {
		t.Fatalf("expected a RESP string value to be invisible over the memcache retrieval path, got %+v", items)
	}
}
