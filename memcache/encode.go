package memcache

import (
	"strconv"
)

// EncodeStatus writes a bare one-line status reply, e.g. "STORED\r\n".
func EncodeStatus(status StatusLine) []byte {
	return []byte(string(status) + "\r\n")
}

// EncodeClientError writes "CLIENT_ERROR <msg>\r\n".
func EncodeClientError(msg string) []byte {
	return []byte("CLIENT_ERROR " + msg + "\r\n")
}

// EncodeServerError writes "SERVER_ERROR <msg>\r\n".
func EncodeServerError(msg string) []byte {
	return []byte("SERVER_ERROR " + msg + "\r\n")
}

// EncodeValues writes the VALUE lines and data blocks for a
// GET/GETS/GAT/GATS response, terminated by "END\r\n".
func EncodeValues(items []Item, withCAS bool) []byte {
	buf := make([]byte, 0, 64*(len(items)+1))
	for _, it := range items {
		buf = append(buf, "VALUE "...)
		buf = append(buf, it.Key...)
		buf = append(buf, ' ')
		buf = strconv.AppendUint(buf, uint64(it.Flags), 10)
		buf = append(buf, ' ')
		buf = strconv.AppendInt(buf, int64(len(it.Value)), 10)
		if withCAS {
			buf = append(buf, ' ')
			buf = strconv.AppendUint(buf, it.CAS, 10)
		}
		buf = append(buf, '\r', '\n')
		buf = append(buf, it.Value...)
		buf = append(buf, '\r', '\n')
	}
	buf = append(buf, "END\r\n"...)
	return buf
}
