package server

import (
	"bufio"
	"bytes"
	"net"
	"time"

	"github.com/lovelydayss/shardcache/config"
)

// prefixedConn replays whatever the probe already buffered before
// falling through to the underlying socket for the rest of the reads,
// so a non-HTTP connection sees its first bytes exactly once.
type prefixedConn struct {
	net.Conn
	r *bufio.Reader
}

func (p *prefixedConn) Read(b []byte) (int, error) {
	return p.r.Read(b)
}

// probeHTTP peeks the first line of netConn without permanently
// consuming it: if it looks like an HTTP/1.1 request line (spec.md
// §6: "begins with `GET ` and ends with ` HTTP/1.1` before the first
// `\n`"), it reports isHTTP so the caller can hand it to the HTTP
// path; otherwise it returns a net.Conn that replays the peeked bytes
// so RESP/memcache dispatch begins with any already-read data retained.
//
// Only a single byte is peeked up front: enough to rule out RESP
// arrays and the lowercase memcache commands. Input starting with an
// uppercase 'G' (an HTTP request, or an inline RESP command such as
// GET) pays for peeking the rest of the line, under a short deadline
// so a client that never completes a line can't wedge the accept path;
// a line without the HTTP/1.1 suffix is passed through to the protocol.
func probeHTTP(netConn net.Conn) (out net.Conn, isHTTP bool) {
	br := bufio.NewReaderSize(netConn, config.Config.Server.MaxReadBuffer)

	first, err := br.Peek(1)
	if err != nil || first[0] != 'G' {
		return &prefixedConn{Conn: netConn, r: br}, false
	}

	_ = netConn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	peeked, _ := br.Peek(br.Size())
	_ = netConn.SetReadDeadline(time.Time{})

	if idx := bytes.IndexByte(peeked, '\n'); idx >= 0 {
		line := bytes.TrimRight(peeked[:idx], "\r")
		if bytes.HasPrefix(line, []byte("GET ")) && bytes.HasSuffix(line, []byte(" HTTP/1.1")) {
			return netConn, true
		}
	}

	return &prefixedConn{Conn: netConn, r: br}, false
}
