package memcache

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/lovelydayss/shardcache/lib/pool"
)

// Frame is one decoded request, wrapping whichever concrete command
// type it parsed to, mirroring the resp package's Frame/Reply split.
type Frame struct {
	Storage   *StorageCommand
	Retrieval *RetrievalCommand
	Delete    *DeleteCommand
	Err       error
}

// Terminated reports whether Err reflects the connection going away
// rather than a malformed request, mirroring resp.Frame.Terminated.
func (f *Frame) Terminated() bool {
	if f.Err == io.EOF || f.Err == io.ErrUnexpectedEOF {
		return true
	}
	return f.Err != nil && bytes.Contains([]byte(f.Err.Error()), []byte("use of closed network connection"))
}

// Parser decodes a stream of classic memcache text-protocol requests.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// ParseStream starts parsing reader on a pooled goroutine, the same
// one-goroutine-per-connection-parser convention the resp package uses.
func (p *Parser) ParseStream(reader io.Reader) <-chan *Frame {
	ch := make(chan *Frame)
	pool.Submit(func() {
		p.parse(reader, ch)
	})
	return ch
}

func (p *Parser) parse(rawReader io.Reader, ch chan<- *Frame) {
	defer close(ch)
	reader := bufio.NewReader(rawReader)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			ch <- &Frame{Err: err}
			return
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		switch CmdType(fields[0]) {
		case CmdSet, CmdAdd, CmdReplace:
			frame := p.parseStorage(CmdType(fields[0]), fields, reader)
			ch <- frame
		case CmdGet, CmdGets:
			ch <- p.parseRetrieval(CmdType(fields[0]), fields, false)
		case CmdGat, CmdGats:
			ch <- p.parseRetrieval(CmdType(fields[0]), fields, true)
		case CmdDelete:
			ch <- p.parseDelete(fields)
		default:
			ch <- &Frame{Err: ErrMalformedHeader}
		}
	}
}

func (p *Parser) parseStorage(cmd CmdType, fields []string, reader *bufio.Reader) *Frame {
	// <cmd> <key> <flags> <exptime> <bytes> [noreply]
	if len(fields) < 5 {
		return &Frame{Err: ErrMalformedHeader}
	}

	flags, err := strconv.ParseUint(fields[2], 10, 32)
	if err != nil {
		return &Frame{Err: ErrMalformedHeader}
	}
	expt, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return &Frame{Err: ErrMalformedHeader}
	}
	nbytes, err := strconv.Atoi(fields[4])
	if err != nil || nbytes < 0 {
		return &Frame{Err: ErrMalformedHeader}
	}

	data := make([]byte, nbytes+2)
	if _, err := io.ReadFull(reader, data); err != nil {
		return &Frame{Err: err}
	}
	if data[nbytes] != '\r' || data[nbytes+1] != '\n' {
		return &Frame{Err: ErrBadDataChunk}
	}

	return &Frame{Storage: &StorageCommand{
		Cmd:     cmd,
		Key:     fields[1],
		Flags:   uint32(flags),
		ExptSec: expt,
		Bytes:   nbytes,
		Data:    data[:nbytes],
		NoReply: len(fields) >= 6 && fields[5] == "noreply",
	}}
}

func (p *Parser) parseRetrieval(cmd CmdType, fields []string, touch bool) *Frame {
	withCAS := cmd == CmdGets || cmd == CmdGats
	if touch {
		// gat/gats <exptime> <key>*
		if len(fields) < 3 {
			return &Frame{Err: ErrMalformedHeader}
		}
		expt, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return &Frame{Err: ErrMalformedHeader}
		}
		return &Frame{Retrieval: &RetrievalCommand{
			Cmd:     cmd,
			Keys:    fields[2:],
			ExptSec: expt,
			WithCAS: withCAS,
		}}
	}

	// get/gets <key>*
	if len(fields) < 2 {
		return &Frame{Err: ErrMalformedHeader}
	}
	return &Frame{Retrieval: &RetrievalCommand{
		Cmd:     cmd,
		Keys:    fields[1:],
		WithCAS: withCAS,
	}}
}

func (p *Parser) parseDelete(fields []string) *Frame {
	if len(fields) < 2 {
		return &Frame{Err: ErrMalformedHeader}
	}
	return &Frame{Delete: &DeleteCommand{
		Key:     fields[1],
		NoReply: len(fields) >= 3 && fields[2] == "noreply",
	}}
}
