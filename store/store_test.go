package store

import (
	"testing"

	"github.com/lovelydayss/shardcache/memcache"
	"github.com/lovelydayss/shardcache/resp"
)

func TestStorePing(t *testing.T) {
	s := NewStore(4)
	defer s.Close()

	got, ok := s.Dispatch(args("ping")).(*resp.SimpleStringReply)
	if !ok || got.Status != "PONG" {
		t.Fatalf("expected +PONG, got %+v", got)
	}

	echoed := s.Dispatch(args("ping", "hello")).(*resp.BulkReply)
	if string(echoed.Arg) != "hello" {
		t.Fatalf("expected ping to echo its argument, got %q", echoed.Arg)
	}
}

func TestStoreRejectsPubSubVerbs(t *testing.T) {
	s := NewStore(4)
	defer s.Close()

	got, ok := s.Dispatch(args("subscribe", "news")).(*resp.ErrReply)
	if !ok {
		t.Fatalf("expected an error reply, got %+v", got)
	}
}

func TestStoreDispatchRoutesAcrossShards(t *testing.T) {
	s := NewStore(4)
	defer s.Close()

	keys := []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot"}
	for _, k := range keys {
		s.Dispatch(args("set", k, "v-"+k))
	}
	for _, k := range keys {
		got := s.Dispatch(args("get", k)).(*resp.BulkReply)
		if string(got.Arg) != "v-"+k {
			t.Fatalf("expected v-%s, got %q", k, got.Arg)
		}
	}
}

func TestStoreDispatchMCMultiShardGet(t *testing.T) {
	s := NewStore(4)
	defer s.Close()

	keys := []string{"alpha", "bravo", "charlie", "delta"}
	for _, k := range keys {
		s.DispatchMC(&memcache.StorageCommand{Cmd: memcache.CmdSet, Key: k, Data: []byte(k)}, nil, nil)
	}

	reply := s.DispatchMC(nil, &memcache.RetrievalCommand{Cmd: memcache.CmdGet, Keys: keys}, nil)
	for _, k := range keys {
		if !containsSubstring(string(reply), "VALUE "+k+" ") {
			t.Fatalf("expected reply to contain a VALUE line for %s, got %q", k, reply)
		}
	}
}

func TestStorePublishNoSubscribers(t *testing.T) {
	s := NewStore(4)
	defer s.Close()

	if n := s.Publish("news", []byte("hi")); n != 0 {
		t.Fatalf("expected 0 deliveries with no subscribers, got %d", n)
	}
}

func containsSubstring(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
