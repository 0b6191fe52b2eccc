// Package mset is the SADD/SREM/SISMEMBER value type. It is backed by
// stringset.StringSet instead of a bare map[string]struct{}. The pub/sub
// channel registries do not share this table; they use plain maps.
package mset

import "github.com/lovelydayss/shardcache/stringset"

// Set is the set-typed value interface the store engine holds behind
// its generic data map.
type Set interface {
	Add(value string) int64
	Exist(value string) int64
	Rem(value string) int64
	Len() int64
	Members() []string
}

type setEntity struct {
	key       string
	container *stringset.StringSet
}

// NewSetEntity returns an empty set value for key.
func NewSetEntity(key string) Set {
	return &setEntity{key: key, container: &stringset.StringSet{}}
}

func (s *setEntity) Add(value string) int64 {
	if s.container.Add(value) {
		return 1
	}
	return 0
}

func (s *setEntity) Exist(value string) int64 {
	if s.container.Contains(value) {
		return 1
	}
	return 0
}

func (s *setEntity) Rem(value string) int64 {
	if s.container.Remove(value) {
		return 1
	}
	return 0
}

func (s *setEntity) Len() int64 {
	return int64(s.container.Size())
}

func (s *setEntity) Members() []string {
	members := make([]string, 0, s.container.Size())
	s.container.Iterate(func(str string) bool {
		members = append(members, str)
		return true
	})
	return members
}
