package store

import (
	mbitmap "github.com/lovelydayss/shardcache/datastruct/bitmap"
	mhash "github.com/lovelydayss/shardcache/datastruct/hash"
	mlist "github.com/lovelydayss/shardcache/datastruct/list"
	mset "github.com/lovelydayss/shardcache/datastruct/set"
	msortedset "github.com/lovelydayss/shardcache/datastruct/sortedset"
	mstring "github.com/lovelydayss/shardcache/datastruct/string"
	"github.com/lovelydayss/shardcache/resp"
)

func (e *Engine) getAsString(key string) (mstring.String, resp.Reply) {
	v, ok := e.data[key]
	if !ok {
		return nil, nil
	}
	str, ok := v.(mstring.String)
	if !ok {
		return nil, wrongTypeErr()
	}
	return str, nil
}

func (e *Engine) put(key, value string, insertOnly bool) int64 {
	if _, ok := e.data[key]; ok && insertOnly {
		return 0
	}
	e.data[key] = mstring.NewString(key, value)
	return 1
}

func (e *Engine) getAsList(key string) (mlist.List, resp.Reply) {
	v, ok := e.data[key]
	if !ok {
		return nil, nil
	}
	list, ok := v.(mlist.List)
	if !ok {
		return nil, wrongTypeErr()
	}
	return list, nil
}

func (e *Engine) putAsList(key string, list mlist.List) {
	e.data[key] = list
}

func (e *Engine) getAsHashMap(key string) (mhash.HashMap, resp.Reply) {
	v, ok := e.data[key]
	if !ok {
		return nil, nil
	}
	hmap, ok := v.(mhash.HashMap)
	if !ok {
		return nil, wrongTypeErr()
	}
	return hmap, nil
}

func (e *Engine) putAsHashMap(key string, hmap mhash.HashMap) {
	e.data[key] = hmap
}

func (e *Engine) getAsSet(key string) (mset.Set, resp.Reply) {
	v, ok := e.data[key]
	if !ok {
		return nil, nil
	}
	set, ok := v.(mset.Set)
	if !ok {
		return nil, wrongTypeErr()
	}
	return set, nil
}

func (e *Engine) putAsSet(key string, set mset.Set) {
	e.data[key] = set
}

func (e *Engine) getAsSortedSet(key string) (msortedset.SortedSet, resp.Reply) {
	v, ok := e.data[key]
	if !ok {
		return nil, nil
	}
	zset, ok := v.(msortedset.SortedSet)
	if !ok {
		return nil, wrongTypeErr()
	}
	return zset, nil
}

func (e *Engine) putAsSortedSet(key string, zset msortedset.SortedSet) {
	e.data[key] = zset
}

func (e *Engine) getAsBitmap(key string) (mbitmap.BitMap, resp.Reply) {
	v, ok := e.data[key]
	if !ok {
		return nil, nil
	}
	bm, ok := v.(mbitmap.BitMap)
	if !ok {
		return nil, wrongTypeErr()
	}
	return bm, nil
}

func (e *Engine) putAsBitmap(key string, bm mbitmap.BitMap) {
	e.data[key] = bm
}
