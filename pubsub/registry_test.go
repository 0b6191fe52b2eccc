package pubsub

import "testing"

type fakeSub struct {
	id       string
	received []*PubMessage
}

func (f *fakeSub) ID() string { return f.id }

func (f *fakeSub) EnqueuePubMessage(msg *PubMessage) {
	f.received = append(f.received, msg)
	msg.Done.Add(-1)
}

func TestAddFetchRemoveSubscription(t *testing.T) {
	r := NewRegistry()
	a := &fakeSub{id: "a"}
	b := &fakeSub{id: "b"}

	r.AddSubscription("news", a, 0)
	r.AddSubscription("news", b, 0)

	subs := r.FetchSubscribers("news")
	if len(subs) != 2 {
		t.Fatalf("expected 2 subscribers, got %d", len(subs))
	}

	r.RemoveSubscription("news", a)
	subs = r.FetchSubscribers("news")
	if len(subs) != 1 || subs[0].ID() != "b" {
		t.Fatalf("expected only b left, got %+v", subs)
	}

	r.RemoveSubscription("news", b)
	if subs := r.FetchSubscribers("news"); len(subs) != 0 {
		t.Fatalf("expected channel to be empty, got %+v", subs)
	}
}

func TestFetchMatchingPatterns(t *testing.T) {
	r := NewRegistry()
	a := &fakeSub{id: "a"}
	b := &fakeSub{id: "b"}

	r.AddGlobPattern("news.*", a, 0)
	r.AddGlobPattern("sports.*", b, 0)

	matches := r.FetchMatchingPatterns("news.tech")
	if len(matches) != 1 || matches[0].pattern != "news.*" {
		t.Fatalf("expected one match on news.*, got %+v", matches)
	}
	if len(matches[0].subs) != 1 || matches[0].subs[0].ID() != "a" {
		t.Fatalf("expected subscriber a, got %+v", matches[0].subs)
	}

	r.RemoveGlobPattern("news.*", a)
	if matches := r.FetchMatchingPatterns("news.tech"); len(matches) != 0 {
		t.Fatalf("expected no matches after removal, got %+v", matches)
	}
}
