// Package memcache implements the classic memcached text protocol: a
// line-oriented command header, optionally followed by a fixed-length
// data block, line parsing done the way the resp package's parser and
// the teacher's original parser.go read a bufio.Reader one line at a
// time. Command and response token names follow the naming scheme of
// the meta-protocol constants file in the reference pack, adapted
// down to the classic (non-meta) command set this store exposes.
package memcache

import "errors"

// CmdType identifies a decoded request's command.
type CmdType string

const (
	CmdSet     CmdType = "set"
	CmdGet     CmdType = "get"
	CmdGets    CmdType = "gets"
	CmdGat     CmdType = "gat"
	CmdGats    CmdType = "gats"
	CmdAdd     CmdType = "add"
	CmdReplace CmdType = "replace"
	CmdDelete  CmdType = "delete"
)

// StatusLine is the one-line status token a storage command replies with.
type StatusLine string

const (
	StatusStored    StatusLine = "STORED"
	StatusNotStored StatusLine = "NOT_STORED"
	StatusExists    StatusLine = "EXISTS"
	StatusNotFound  StatusLine = "NOT_FOUND"
	StatusDeleted   StatusLine = "DELETED"
	StatusError     StatusLine = "ERROR"
)

var (
	ErrMalformedHeader = errors.New("memcache: malformed command header")
	ErrBadDataChunk    = errors.New("memcache: data block didn't end with \\r\\n")
	ErrTooLarge        = errors.New("memcache: value too large for buffer")
)

// StorageCommand is a decoded SET/ADD/REPLACE request.
type StorageCommand struct {
	Cmd     CmdType
	Key     string
	Flags   uint32
	ExptSec int64
	Bytes   int
	Data    []byte
	NoReply bool
}

// RetrievalCommand is a decoded GET/GETS/GAT/GATS request, possibly
// naming more than one key (GET/GETS only).
type RetrievalCommand struct {
	Cmd     CmdType
	Keys    []string
	ExptSec int64 // only meaningful for GAT/GATS
	WithCAS bool  // GETS/GATS report a cas unique value
}

// DeleteCommand is a decoded DELETE request.
type DeleteCommand struct {
	Key     string
	NoReply bool
}

// Item is one stored value as returned by a retrieval command.
type Item struct {
	Key   string
	Flags uint32
	Value []byte
	CAS   uint64
}
