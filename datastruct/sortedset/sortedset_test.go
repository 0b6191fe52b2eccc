package msortedset

import "testing"

func TestAddScoreAndRem(t *testing.T) {
	s := NewSkiplist("z")

	if n := s.Add(10, "a"); n != 1 {
		t.Fatalf("expected 1 for a new member, got %d", n)
	}
	if n := s.Add(10, "a"); n != 0 {
		t.Fatalf("expected 0 for re-adding the same score, got %d", n)
	}
	if score, ok := s.Score("a"); !ok || score != 10 {
		t.Fatalf("expected score 10, got %v, ok=%v", score, ok)
	}

	if n := s.Rem("a"); n != 1 {
		t.Fatalf("expected 1 on removing a present member, got %d", n)
	}
	if n := s.Rem("a"); n != 0 {
		t.Fatalf("expected 0 on removing an absent member, got %d", n)
	}
}

func TestAddRepositionsOnScoreChange(t *testing.T) {
	s := NewSkiplist("z")
	s.Add(10, "a")
	s.Add(5, "a")

	if score, _ := s.Score("a"); score != 5 {
		t.Fatalf("expected score to update to 5, got %v", score)
	}
	if s.Len() != 1 {
		t.Fatalf("expected exactly one entry after repositioning, got %d", s.Len())
	}
}

func TestRangeOrdersByScore(t *testing.T) {
	s := NewSkiplist("z")
	s.Add(30, "c")
	s.Add(10, "a")
	s.Add(20, "b")

	got := s.Range(0, 100)
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestRangeBounds(t *testing.T) {
	s := NewSkiplist("z")
	s.Add(10, "a")
	s.Add(20, "b")
	s.Add(30, "c")

	got := s.Range(15, 25)
	if len(got) != 1 || got[0] != "b" {
		t.Fatalf("expected only b in range [15,25], got %v", got)
	}
}

func TestAddAndScoreAcceptFractionalScores(t *testing.T) {
	s := NewSkiplist("z")
	s.Add(1.1, "a")
	if score, ok := s.Score("a"); !ok || score != 1.1 {
		t.Fatalf("expected score 1.1, got %v, ok=%v", score, ok)
	}
}

func TestLen(t *testing.T) {
	s := NewSkiplist("z")
	if s.Len() != 0 {
		t.Fatalf("expected empty set to have length 0, got %d", s.Len())
	}
	s.Add(1, "a")
	s.Add(2, "b")
	if s.Len() != 2 {
		t.Fatalf("expected length 2, got %d", s.Len())
	}
}
