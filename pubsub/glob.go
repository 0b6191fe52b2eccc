package pubsub

// globMatch implements the small subset of shell-glob syntax pub/sub
// pattern matching needs: '*' (any run of characters), '?' (any single
// character), and '\\' as an escape for the next character. It is a
// self-contained algorithm rather than a wired dependency: nothing in
// the retrieved corpus ships a glob matcher, and pulling one in for a
// dozen lines of recursion would not exercise it anywhere else.
func globMatch(pattern, str string) bool {
	return globMatchBytes([]byte(pattern), []byte(str))
}

func globMatchBytes(pattern, str []byte) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case '*':
			for len(pattern) > 1 && pattern[1] == '*' {
				pattern = pattern[1:]
			}
			if len(pattern) == 1 {
				return true
			}
			for i := 0; i <= len(str); i++ {
				if globMatchBytes(pattern[1:], str[i:]) {
					return true
				}
			}
			return false
		case '?':
			if len(str) == 0 {
				return false
			}
			str = str[1:]
			pattern = pattern[1:]
		case '\\':
			if len(pattern) >= 2 {
				pattern = pattern[1:]
			}
			fallthrough
		default:
			if len(str) == 0 || str[0] != pattern[0] {
				return false
			}
			str = str[1:]
			pattern = pattern[1:]
		}
	}
	return len(str) == 0
}
