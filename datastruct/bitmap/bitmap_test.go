package mbitmap

import "testing"

func TestSetAndGetBit(t *testing.T) {
	bm := NewBitMapEntity("b")

	bm.SetBit(3, 1)
	if got := bm.GetBit(3); string(got) != "1" {
		t.Fatalf("expected bit 3 to be 1, got %q", got)
	}
	if got := bm.GetBit(2); string(got) != "0" {
		t.Fatalf("expected bit 2 to be 0, got %q", got)
	}
}

func TestGetBitPastEndReturnsNil(t *testing.T) {
	bm := NewBitMapEntity("b")
	if got := bm.GetBit(100); got != nil {
		t.Fatalf("expected nil for a bit past the buffer end, got %q", got)
	}
}

func TestSetBitGrowsBuffer(t *testing.T) {
	bm := NewBitMapEntity("b")
	bm.SetBit(17, 1)
	if got := bm.GetBit(17); string(got) != "1" {
		t.Fatalf("expected bit 17 to be set, got %q", got)
	}
}

func TestCount(t *testing.T) {
	bm := NewBitMapEntity("b")
	bm.SetBit(0, 1)
	bm.SetBit(1, 1)
	bm.SetBit(8, 1)
	if got := bm.Count(); string(got) != "3" {
		t.Fatalf("expected count 3, got %q", got)
	}
}

func TestSetBitZeroClears(t *testing.T) {
	bm := NewBitMapEntity("b")
	bm.SetBit(4, 1)
	bm.SetBit(4, 0)
	if got := bm.GetBit(4); string(got) != "0" {
		t.Fatalf("expected bit 4 to be cleared, got %q", got)
	}
}
