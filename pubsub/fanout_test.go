package pubsub

import (
	"testing"
	"time"

	"github.com/lovelydayss/shardcache/shard"
)

func waitForDelivery(t *testing.T, sub *fakeSub, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(sub.received) >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("expected %d messages, got %d", n, len(sub.received))
}

func TestFanoutExactChannelDelivery(t *testing.T) {
	mgr := shard.NewManager(4)
	defer mgr.Stop()
	f := NewFanout(mgr)

	sub := &fakeSub{id: "conn-1"}
	f.AddSubscriptions([]string{"news"}, sub, 0)

	delivered := f.Publish("news", []byte("hello"))
	if delivered != 1 {
		t.Fatalf("expected 1 delivery, got %d", delivered)
	}
	waitForDelivery(t, sub, 1)
	if string(sub.received[0].Channel) != "news" || string(sub.received[0].Message) != "hello" {
		t.Fatalf("unexpected payload: %+v", sub.received[0])
	}

	f.RemoveSubscriptions([]string{"news"}, sub)
	if delivered := f.Publish("news", []byte("again")); delivered != 0 {
		t.Fatalf("expected 0 deliveries after unsubscribe, got %d", delivered)
	}
}

func TestFanoutPatternDelivery(t *testing.T) {
	mgr := shard.NewManager(4)
	defer mgr.Stop()
	f := NewFanout(mgr)

	sub := &fakeSub{id: "conn-1"}
	f.AddPatterns([]string{"news.*"}, sub, 0)

	delivered := f.Publish("news.tech", []byte("hello"))
	if delivered != 1 {
		t.Fatalf("expected 1 delivery, got %d", delivered)
	}
	waitForDelivery(t, sub, 1)
	if string(sub.received[0].Pattern) != "news.*" {
		t.Fatalf("expected pattern to be recorded, got %+v", sub.received[0])
	}

	if delivered := f.Publish("sports.tech", []byte("nope")); delivered != 0 {
		t.Fatalf("expected no match on a different namespace, got %d", delivered)
	}
}
