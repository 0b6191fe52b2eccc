package resp

import (
	"bufio"
	"bytes"
	"io"
	"strconv"

	"github.com/lovelydayss/shardcache/lib/pool"
	"github.com/lovelydayss/shardcache/log"
)

// Frame pairs a parsed reply with a parse error, the direct analogue
// of the teacher's def.Droplet.
type Frame struct {
	Reply Reply
	Err   error
}

// Terminated reports whether Err reflects the connection going away,
// as opposed to a single bad command line.
func (f *Frame) Terminated() bool {
	if f.Err == io.EOF || f.Err == io.ErrUnexpectedEOF {
		return true
	}
	return f.Err != nil && bytes.Contains([]byte(f.Err.Error()), []byte("use of closed network connection"))
}

type lineParser func(header []byte, reader *bufio.Reader) *Frame

// Parser turns a byte stream into a channel of parsed command frames,
// one goroutine per connection, submitted through the shared pool
// rather than spawned with a bare go statement.
type Parser struct {
	lineParsers map[byte]lineParser
}

func NewParser() *Parser {
	p := &Parser{}
	p.lineParsers = map[byte]lineParser{
		'+': p.parseSimpleString,
		'-': p.parseError,
		':': p.parseInt,
		'$': p.parseBulk,
		'*': p.parseMultiBulk,
	}
	return p
}

// ParseStream starts parsing reader on a pooled goroutine and returns
// the channel frames arrive on.
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
		firstLine, err := reader.ReadBytes('\n')
		if err != nil {
			ch <- &Frame{Reply: NewErrReply(err.Error()), Err: err}
			return
		}

		length := len(firstLine)
		if length <= 2 || firstLine[length-1] != '\n' || firstLine[length-2] != '\r' {
			if length > 0 {
				// Bare line with no CRLF framing: treat as an inline
				// command, the classic space-separated fallback.
				if frame := parseInline(bytes.TrimRight(firstLine, "\r\n")); frame != nil {
					ch <- frame
				}
			}
			continue
		}

		firstLine = bytes.TrimSuffix(firstLine, []byte{'\r', '\n'})
		if len(firstLine) == 0 {
			continue
		}

		lineParseFunc, ok := p.lineParsers[firstLine[0]]
		if !ok {
			// Not a typed RESP line: classic inline protocol, where a
			// client sends "SET key value\r\n" with no "*N" prefix.
			ch <- parseInline(firstLine)
			continue
		}

		ch <- lineParseFunc(firstLine, reader)
	}
}

func parseInline(line []byte) *Frame {
	fields := bytes.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	args := make([][]byte, len(fields))
	copy(args, fields)
	return &Frame{Reply: NewMultiBulkReply(args)}
}

func (p *Parser) parseSimpleString(header []byte, _ *bufio.Reader) *Frame {
	return &Frame{Reply: NewSimpleStringReply(string(header[1:]))}
}

func (p *Parser) parseInt(header []byte, _ *bufio.Reader) *Frame {
	i, err := strconv.ParseInt(string(header[1:]), 10, 64)
	if err != nil {
		return &Frame{Err: err, Reply: NewErrReply(err.Error())}
	}
	return &Frame{Reply: NewIntReply(i)}
}

func (p *Parser) parseError(header []byte, _ *bufio.Reader) *Frame {
	return &Frame{Reply: NewErrReply(string(header[1:]))}
}

func (p *Parser) parseBulk(header []byte, reader *bufio.Reader) *Frame {
	body, err := p.parseBulkBody(header, reader)
	if err != nil {
		return &Frame{Reply: NewErrReply(err.Error()), Err: err}
	}
	return &Frame{Reply: NewBulkReply(body)}
}

func (p *Parser) parseBulkBody(header []byte, reader *bufio.Reader) ([]byte, error) {
	strLen, err := strconv.ParseInt(string(header[1:]), 10, 64)
	if err != nil {
		return nil, err
	}
	if strLen < 0 {
		return nil, nil
	}

	body := make([]byte, strLen+2)
	if _, err = io.ReadFull(reader, body); err != nil {
		return nil, err
	}
	return body[:len(body)-2], nil
}

func (p *Parser) parseMultiBulk(header []byte, reader *bufio.Reader) (frame *Frame) {
	var parseErr error
	defer func() {
		if parseErr != nil {
			frame = &Frame{Reply: NewErrReply(parseErr.Error()), Err: parseErr}
		}
	}()

	length, err := strconv.ParseInt(string(header[1:]), 10, 64)
	if err != nil {
		parseErr = err
		return
	}

	if length <= 0 {
		return &Frame{Reply: NewEmptyMultiBulkReply()}
	}

	args := make([][]byte, 0, length)
	for i := int64(0); i < length; i++ {
		firstLine, err := reader.ReadBytes('\n')
		if err != nil {
			parseErr = err
			return
		}

		lineLen := len(firstLine)
		if lineLen < 4 || firstLine[lineLen-2] != '\r' || firstLine[lineLen-1] != '\n' || firstLine[0] != '$' {
			log.Warnf("[resp] malformed bulk header in multibulk, skipping")
			continue
		}

		bulkBody, err := p.parseBulkBody(firstLine[:lineLen-2], reader)
		if err != nil {
			parseErr = err
			return
		}

		args = append(args, bulkBody)
	}

	return &Frame{Reply: NewMultiBulkReply(args)}
}
