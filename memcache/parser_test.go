package memcache

import (
	"strings"
	"testing"
	"time"
)

func nextFrame(t *testing.T, frames <-chan *Frame) *Frame {
	t.Helper()
	select {
	case f, ok := <-frames:
		if !ok {
			t.Fatal("stream closed unexpectedly")
		}
		return f
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
	}
	return nil
}

func TestParseSetCommand(t *testing.T) {
	p := NewParser()
	frames := p.ParseStream(strings.NewReader("set foo 0 0 5\r\nhello\r\n"))

	f := nextFrame(t, frames)
	if f.Err != nil {
		t.Fatalf("unexpected error: %v", f.Err)
	}
	if f.Storage == nil {
		t.Fatal("expected a storage command")
	}
	if f.Storage.Cmd != CmdSet || f.Storage.Key != "foo" || string(f.Storage.Data) != "hello" {
		t.Fatalf("unexpected storage command: %+v", f.Storage)
	}
}

func TestParseSetWithNoreply(t *testing.T) {
	p := NewParser()
	frames := p.ParseStream(strings.NewReader("set foo 1 0 3 noreply\r\nbar\r\n"))

	f := nextFrame(t, frames)
	if f.Storage == nil || !f.Storage.NoReply {
		t.Fatalf("expected noreply storage command, got %+v", f.Storage)
	}
	if f.Storage.Flags != 1 {
		t.Fatalf("expected flags 1, got %d", f.Storage.Flags)
	}
}

func TestParseGetMultiKey(t *testing.T) {
	p := NewParser()
	frames := p.ParseStream(strings.NewReader("get foo bar baz\r\n"))

	f := nextFrame(t, frames)
	if f.Retrieval == nil {
		t.Fatal("expected a retrieval command")
	}
	if f.Retrieval.Cmd != CmdGet || len(f.Retrieval.Keys) != 3 {
		t.Fatalf("unexpected retrieval command: %+v", f.Retrieval)
	}
}

func TestParseGetsSetsWithCAS(t *testing.T) {
	p := NewParser()
	frames := p.ParseStream(strings.NewReader("gets foo\r\n"))

	f := nextFrame(t, frames)
	if f.Retrieval == nil || !f.Retrieval.WithCAS {
		t.Fatalf("expected WithCAS retrieval, got %+v", f.Retrieval)
	}
}

func TestParseGat(t *testing.T) {
	p := NewParser()
	frames := p.ParseStream(strings.NewReader("gat 100 foo\r\n"))

	f := nextFrame(t, frames)
	if f.Retrieval == nil || f.Retrieval.ExptSec != 100 || len(f.Retrieval.Keys) != 1 {
		t.Fatalf("unexpected gat command: %+v", f.Retrieval)
	}
}

func TestParseDelete(t *testing.T) {
	p := NewParser()
	frames := p.ParseStream(strings.NewReader("delete foo\r\n"))

	f := nextFrame(t, frames)
	if f.Delete == nil || f.Delete.Key != "foo" {
		t.Fatalf("unexpected delete command: %+v", f.Delete)
	}
}

func TestParseMalformedHeader(t *testing.T) {
	p := NewParser()
	frames := p.ParseStream(strings.NewReader("bogus\r\n"))

	f := nextFrame(t, frames)
	if f.Err != ErrMalformedHeader {
		t.Fatalf("expected ErrMalformedHeader, got %v", f.Err)
	}
}

func TestParseBadDataChunk(t *testing.T) {
	p := NewParser()
	frames := p.ParseStream(strings.NewReader("set foo 0 0 3\r\nbarXX"))

	f := nextFrame(t, frames)
	if f.Err != ErrBadDataChunk {
		t.Fatalf("expected ErrBadDataChunk, got %v", f.Err)
	}
}

func TestFrameTerminatedOnEOF(t *testing.T) {
	p := NewParser()
	frames := p.ParseStream(strings.NewReader(""))

	f := nextFrame(t, frames)
	if !f.Terminated() {
		t.Fatalf("expected EOF frame to report Terminated, got err=%v", f.Err)
	}
}
