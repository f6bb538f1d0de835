package message

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultMaxBodyBytes bounds the Content-Length a request may declare.
const DefaultMaxBodyBytes = 10 << 20

// MaxHeaderBytes bounds the request line and header block together.
const MaxHeaderBytes = 1 << 20

var errHeaderTooLarge = errors.New("header block too large")

// Request is a parsed HTTP request.
//
// Header names are case-sensitive and a repeated name keeps its last value.
// Folded header lines and chunked bodies are not understood.
type Request struct {
	Method  string
	Path    string // percent-decoded
	Version string
	Header  map[string]string
	Body    []byte
}

// ReadRequest reads exactly one request from r. Only the bytes of the
// request line, the header block and a Content-Length delimited body are
// consumed; without a Content-Length nothing past the blank line is read.
//
// maxBody limits the declared Content-Length; values <= 0 select
// DefaultMaxBodyBytes.
func ReadRequest(r *bufio.Reader, maxBody int64) (*Request, error) {
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	budget := MaxHeaderBytes
	line, err := readLine(r, &budget)
	if err != nil {
		return nil, ErrInvalidRequestLine
	}
	words := strings.Fields(line)
	if len(words) != 3 {
		return nil, ErrInvalidRequestLine
	}

	path, err := PathUnescape(words[1])
	if err != nil {
		return nil, ErrInvalidPathEncoding
	}

	req := &Request{
		Method:  words[0],
		Path:    path,
		Version: words[2],
		Header:  make(map[string]string),
	}

	for {
		line, err := readLine(r, &budget)
		if err != nil {
			return nil, ErrInvalidHeader
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		parts := strings.Split(line, ": ")
		if len(parts) != 2 {
			return nil, ErrInvalidHeader
		}
		req.Header[parts[0]] = parts[1]
	}

	if v, ok := req.Header["Content-Length"]; ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 || n > maxBody {
			return nil, ErrInvalidHeader
		}
		// A short read is tolerated; the missing tail stays zeroed so the
		// body length always matches the declared length.
		body := make([]byte, n)
		io.ReadFull(r, body)
		if !utf8.Valid(body) {
			return nil, ErrInvalidBody
		}
		req.Body = body
	}

	return req, nil
}

// readLine returns the next line including its terminator and charges its
// length to budget. Reaching EOF is not an error: the partial (possibly
// empty) line is returned instead.
func readLine(r *bufio.Reader, budget *int) (string, error) {
	var line []byte
	for {
		frag, err := r.ReadSlice('\n')
		if len(frag) > *budget {
			return "", errHeaderTooLarge
		}
		*budget -= len(frag)
		line = append(line, frag...)
		if err == nil || err == io.EOF {
			break
		}
		if err != bufio.ErrBufferFull {
			return "", err
		}
	}
	if !utf8.Valid(line) {
		return "", ErrInvalidRequestLine
	}
	return string(line), nil
}
