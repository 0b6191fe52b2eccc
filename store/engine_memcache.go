package store

import (
	"time"

	"github.com/lovelydayss/shardcache/memcache"
)

// mcItem is the memcache-side value representation: flags and a CAS
// counter alongside the payload, distinct from mstring.String so a
// key written over the memcache listener is never silently readable
// as a RESP string of a different shape (and vice versa). The two
// protocols share a shard and a keyspace, not a value encoding.
type mcItem struct {
	flags uint32
	value []byte
	cas   uint64
}

// thirtyDays is the classic memcached cutover: an exptime at or below
// this many seconds is relative to now, above it is a Unix timestamp.
const thirtyDays = 60 * 60 * 24 * 30

func expiryFromExpt(exptSec int64) (at time.Time, hasExpiry bool) {
	if exptSec == 0 {
		return time.Time{}, false
	}
	if exptSec < 0 {
		return time.Unix(0, 0), true
	}
	if exptSec <= thirtyDays {
		return time.Now().Add(time.Duration(exptSec) * time.Second), true
	}
	return time.Unix(exptSec, 0), true
}

func (e *Engine) getAsMCItem(key string) *mcItem {
	e.expirePreprocess(key)
	v, ok := e.data[key]
	if !ok {
		return nil
	}
	it, ok := v.(*mcItem)
	if !ok {
		return nil
	}
	return it
}

// DispatchStorage implements memcache SET/ADD/REPLACE.
func (e *Engine) DispatchStorage(cmd *memcache.StorageCommand) memcache.StatusLine {
	existing := e.getAsMCItem(cmd.Key)
	switch cmd.Cmd {
	case memcache.CmdAdd:
		if existing != nil {
			return memcache.StatusNotStored
		}
	case memcache.CmdReplace:
		if existing == nil {
			return memcache.StatusNotStored
		}
	}

	var cas uint64 = 1
	if existing != nil {
		cas = existing.cas + 1
	}
	e.data[cmd.Key] = &mcItem{flags: cmd.Flags, value: append([]byte(nil), cmd.Data...), cas: cas}

	if at, hasExpiry := expiryFromExpt(cmd.ExptSec); hasExpiry {
		e.setExpireAt(cmd.Key, at)
	} else {
		delete(e.expiredAt, cmd.Key)
		e.expireWheel.Rem(cmd.Key)
	}
	return memcache.StatusStored
}

// DispatchRetrieval implements memcache GET/GETS/GAT/GATS.
func (e *Engine) DispatchRetrieval(cmd *memcache.RetrievalCommand) []memcache.Item {
	items := make([]memcache.Item, 0, len(cmd.Keys))
	for _, key := range cmd.Keys {
		it := e.getAsMCItem(key)
		if it == nil {
			continue
		}
		if at, hasExpiry := expiryFromExpt(cmd.ExptSec); hasExpiry {
			e.setExpireAt(key, at)
		}
		item := memcache.Item{Key: key, Flags: it.flags, Value: it.value}
		if cmd.WithCAS {
			item.CAS = it.cas
		}
		items = append(items, item)
	}
	return items
}

// DispatchDelete implements memcache DELETE.
func (e *Engine) DispatchDelete(cmd *memcache.DeleteCommand) memcache.StatusLine {
	if e.getAsMCItem(cmd.Key) == nil {
		return memcache.StatusNotFound
	}
	e.expireProcess(cmd.Key)
	return memcache.StatusDeleted
}
