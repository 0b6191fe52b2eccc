package pubsub

import "testing"

func TestGlobMatch(t *testing.T) {
	cases := []struct {
		pattern, str string
		want         bool
	}{
		{"news.*", "news.tech", true},
		{"news.*", "news", false},
		{"news.?", "news.a", true},
		{"news.?", "news.ab", false},
		{"*", "anything", true},
		{"news.tech", "news.tech", true},
		{"news.tech", "news.sports", false},
		{"a\\*b", "a*b", true},
		{"a\\*b", "axb", false},
	}

	for _, c := range cases {
		if got := globMatch(c.pattern, c.str); got != c.want {
			t.Errorf("globMatch(%q, %q) = %v, want %v", c.pattern, c.str, got, c.want)
		}
	}
}
