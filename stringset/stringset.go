// Package stringset implements a compact, open-addressed set of short
// byte strings. It backs set-typed values in the store; the pub/sub
// channel and pattern registries do not use it and keep plain maps.
//
// The design keeps the tagged-pointer string set from the teacher's
// domain: each bucket holds either nothing, one string displaced by at
// most one neighboring bucket, or a chain of strings that could not be
// placed by displacement. Go has no spare pointer bits to steal, so a
// bucket is represented as a small struct instead of a tagged word, and
// chain nodes live in a side arena indexed by int32 rather than behind
// real pointers.
package stringset

import (
	"github.com/cespare/xxhash/v2"
)

const wordSize = 8 // bytes; used only for set_malloc_used accounting

type kind uint8

const (
	kindEmpty kind = iota
	kindDirect
	kindLink
)

type slot struct {
	kind      kind
	displaced bool
	str       string
	link      int32 // valid iff kind == kindLink; index into links
}

type linkNode struct {
	str  string
	next int32 // -1 terminates the chain
}

// StringSet is an open-addressed hash set of strings. The zero value is
// ready to use.
type StringSet struct {
	entries     []slot
	capacityLog uint // bucket count is 1<<capacityLog

	links     []linkNode
	freeLinks []int32

	size            uint32
	numChainEntries uint32
}

// Reserve ensures the table can hold at least n entries without chaining
// under typical load.
func (s *StringSet) Reserve(n int) {
	if n <= 0 {
		return
	}
	log := uint(2)
	for (uint32(1) << log) < uint32(n) {
		log++
	}
	if s.entries == nil {
		s.allocate(log)
		return
	}
	if log > s.capacityLog {
		s.growTo(log)
	}
}

func (s *StringSet) allocate(log uint) {
	s.capacityLog = log
	s.entries = make([]slot, uint32(1)<<log)
}

func (s *StringSet) ensureAllocated() {
	if s.entries == nil {
		s.allocate(2)
	}
}

func hash64(str string) uint64 {
	return xxhash.Sum64String(str)
}

func (s *StringSet) bucketID(h uint64) uint32 {
	return uint32(h >> (64 - s.capacityLog))
}

func (s *StringSet) wrap(b uint32, offset int) uint32 {
	n := uint32(1) << s.capacityLog
	switch offset {
	case 0:
		return b
	case -1:
		if b == 0 {
			return n - 1
		}
		return b - 1
	default: // +1
		if b == n-1 {
			return 0
		}
		return b + 1
	}
}

// Add inserts str if absent. Returns true iff it was inserted.
func (s *StringSet) Add(str string) bool {
	s.ensureAllocated()
	h := hash64(str)
	if s.contains(str, h) {
		return false
	}
	s.insert(str, h)
	s.size++
	if s.shouldGrow() {
		s.growTo(s.capacityLog + 1)
	}
	return true
}

// Contains reports whether str is present.
func (s *StringSet) Contains(str string) bool {
	if s.entries == nil {
		return false
	}
	return s.contains(str, hash64(str))
}

func (s *StringSet) contains(str string, h uint64) bool {
	b := s.bucketID(h)
	for _, off := range [...]int{0, -1, 1} {
		p := s.wrap(b, off)
		e := &s.entries[p]
		switch e.kind {
		case kindDirect:
			if e.str == str {
				return true
			}
		case kindLink:
			if off == 0 && s.chainContains(e.link, str) {
				return true
			}
		}
	}
	return false
}

func (s *StringSet) chainContains(head int32, str string) bool {
	for cur := head; cur != -1; cur = s.links[cur].next {
		if s.links[cur].str == str {
			return true
		}
	}
	return false
}

func (s *StringSet) insert(str string, h uint64) {
	b := s.bucketID(h)

	for _, off := range [...]int{0, -1, 1} {
		p := s.wrap(b, off)
		if s.entries[p].kind == kindEmpty {
			s.entries[p] = slot{kind: kindDirect, str: str, displaced: off != 0}
			return
		}
	}

	if p, ok := s.trySwapBack(b); ok {
		s.entries[p] = slot{kind: kindDirect, str: str, displaced: p != b}
		return
	}

	if s.entries[b].kind == kindLink || s.entries[b].displaced {
		// A second chain would be needed, or b's occupant belongs to a
		// neighboring bucket and cannot join b's chain; grow instead.
		s.growTo(s.capacityLog + 1)
		s.insert(str, h)
		return
	}

	s.promoteToChain(b, str)
}

// trySwapBack looks for a displaced entry around b whose true home bucket
// is empty, and moves it home, freeing its slot for a new entry. Returns
// the freed slot position and true if a legal swap was found.
func (s *StringSet) trySwapBack(b uint32) (uint32, bool) {
	for _, off := range [...]int{0, -1, 1} {
		p := s.wrap(b, off)
		e := &s.entries[p]
		if e.kind != kindDirect || !e.displaced {
			continue
		}
		home := s.bucketID(hash64(e.str))
		if home != p && s.entries[home].kind == kindEmpty {
			s.entries[home] = slot{kind: kindDirect, str: e.str, displaced: false}
			*e = slot{}
			return p, true
		}
	}
	return 0, false
}

func (s *StringSet) promoteToChain(b uint32, newStr string) {
	old := s.entries[b]
	oldHead := s.newLink(old.str, -1)
	newHead := s.newLink(newStr, oldHead)
	s.entries[b] = slot{kind: kindLink, link: newHead}
	s.numChainEntries += 2
}

func (s *StringSet) newLink(str string, next int32) int32 {
	if n := len(s.freeLinks); n > 0 {
		idx := s.freeLinks[n-1]
		s.freeLinks = s.freeLinks[:n-1]
		s.links[idx] = linkNode{str: str, next: next}
		return idx
	}
	s.links = append(s.links, linkNode{str: str, next: next})
	return int32(len(s.links) - 1)
}

func (s *StringSet) freeLink(idx int32) {
	s.links[idx] = linkNode{}
	s.freeLinks = append(s.freeLinks, idx)
}

// Remove deletes str if present. Returns true iff it was removed.
func (s *StringSet) Remove(str string) bool {
	if s.entries == nil {
		return false
	}
	h := hash64(str)
	b := s.bucketID(h)

	for _, off := range [...]int{0, -1, 1} {
		p := s.wrap(b, off)
		e := &s.entries[p]
		if e.kind == kindDirect && e.str == str {
			*e = slot{}
			s.size--
			return true
		}
	}

	if s.entries[b].kind == kindLink {
		if s.removeFromChain(b, str) {
			s.size--
			return true
		}
	}
	return false
}

func (s *StringSet) removeFromChain(b uint32, str string) bool {
	head := s.entries[b].link
	var prev int32 = -1
	for cur := head; cur != -1; {
		node := s.links[cur]
		if node.str != str {
			prev = cur
			cur = node.next
			continue
		}

		if prev == -1 {
			head = node.next
		} else {
			s.links[prev].next = node.next
		}
		s.freeLink(cur)
		s.numChainEntries--

		// Collapse a singleton chain back into an inline direct slot.
		if head != -1 && s.links[head].next == -1 {
			last := s.links[head]
			s.freeLink(head)
			s.numChainEntries--
			s.entries[b] = slot{kind: kindDirect, str: last.str, displaced: false}
		} else if head == -1 {
			s.entries[b] = slot{}
		} else {
			s.entries[b] = slot{kind: kindLink, link: head}
		}
		return true
	}
	return false
}

func (s *StringSet) shouldGrow() bool {
	capacity := uint32(1) << s.capacityLog
	if uint32(4)*s.numChainEntries > capacity {
		return true
	}
	return s.size*10 > capacity*9 // load factor > 0.9
}

func (s *StringSet) growTo(log uint) {
	if s.entries == nil {
		s.allocate(log)
		return
	}
	if log <= s.capacityLog {
		return
	}

	old := s.entries
	oldLinks := s.links

	s.entries = make([]slot, uint32(1)<<log)
	s.links = nil
	s.freeLinks = nil
	s.numChainEntries = 0
	s.capacityLog = log

	for _, e := range old {
		switch e.kind {
		case kindDirect:
			s.insert(e.str, hash64(e.str))
		case kindLink:
			for cur := e.link; cur != -1; cur = oldLinks[cur].next {
				s.insert(oldLinks[cur].str, hash64(oldLinks[cur].str))
			}
		}
	}
}

// Size returns the number of distinct strings currently stored.
func (s *StringSet) Size() int {
	return int(s.size)
}

// BucketCount returns the current table capacity in buckets.
func (s *StringSet) BucketCount() int {
	if s.entries == nil {
		return 0
	}
	return len(s.entries)
}

// SetMallocUsed approximates the memory held by the table itself
// (buckets plus chain nodes), in bytes.
func (s *StringSet) SetMallocUsed() uint64 {
	return uint64(s.numChainEntries+uint32(s.BucketCount())) * wordSize
}

// Iterate calls fn once for every stored string, in no particular order.
// It stops early if fn returns false.
func (s *StringSet) Iterate(fn func(str string) bool) {
	for b := range s.entries {
		e := &s.entries[b]
		switch e.kind {
		case kindDirect:
			if !fn(e.str) {
				return
			}
		case kindLink:
			for cur := e.link; cur != -1; cur = s.links[cur].next {
				if !fn(s.links[cur].str) {
					return
				}
			}
		}
	}
}

const scanBucketsPerCall = 16

// Scan yields a bounded batch of strings starting at cursor (0 begins a
// new scan) and returns the next cursor, or 0 once the scan has covered
// the whole table. The cursor is expressed in a 32-bit space independent
// of the current table size, so it stays meaningful across Grow: the top
// capacityLog bits of the cursor select a bucket, exactly like bucketID
// selects a bucket from the top bits of a hash. Doubling the table adds
// one more bit to that selection without invalidating buckets already
// scanned; halving it drops one, collapsing pairs of already-scanned
// buckets into one already-scanned bucket.
func (s *StringSet) Scan(cursor uint32, cb func(str string)) uint32 {
	if s.entries == nil || s.capacityLog == 0 {
		return 0
	}

	shift := 32 - s.capacityLog
	bucket := cursor >> shift
	n := uint32(1) << s.capacityLog

	visited := uint32(0)
	for bucket < n && visited < scanBucketsPerCall {
		e := &s.entries[bucket]
		switch e.kind {
		case kindDirect:
			cb(e.str)
		case kindLink:
			for cur := e.link; cur != -1; cur = s.links[cur].next {
				cb(s.links[cur].str)
			}
		}
		bucket++
		visited++
	}

	if bucket >= n {
		return 0
	}
	return bucket << shift
}
