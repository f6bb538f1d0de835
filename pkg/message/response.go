package message

import (
	"bytes"
	"io"
	"net/http"
	"sort"
	"strconv"
)

// Version is the only protocol version this server speaks.
const Version = "HTTP/1.1"

// Response is an HTTP response waiting to be serialised.
// Keep-alive is not supported, so every response carries "Connection: close".
type Response struct {
	Version string
	Code    int
	Reason  string
	Header  map[string]string
	Body    []byte
}

// NewResponse returns an empty-bodied response for the given status code.
func NewResponse(code int) *Response {
	return &Response{
		Version: Version,
		Code:    code,
		Reason:  http.StatusText(code),
		Header: map[string]string{
			"Connection": "close",
		},
	}
}

// OK returns an empty 200 response.
func OK() *Response { return NewResponse(http.StatusOK) }

// BadRequest returns an empty 400 response.
func BadRequest() *Response { return NewResponse(http.StatusBadRequest) }

// NotFound returns an empty 404 response.
func NotFound() *Response { return NewResponse(http.StatusNotFound) }

// InternalServerError returns an empty 500 response.
func InternalServerError() *Response { return NewResponse(http.StatusInternalServerError) }

// NotImplemented returns an empty 501 response.
func NotImplemented() *Response { return NewResponse(http.StatusNotImplemented) }

// WithBody sets the body together with its Content-Type and Content-Length
// headers and returns r.
func (r *Response) WithBody(contentType string, body []byte) *Response {
	r.Body = body
	r.Header["Content-Type"] = contentType
	r.Header["Content-Length"] = strconv.Itoa(len(body))
	return r
}

// Bytes serialises r into its wire form. Headers are written sorted by name.
func (r *Response) Bytes() []byte {
	var b bytes.Buffer
	b.Grow(128 + len(r.Body))

	b.WriteString(r.Version)
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(r.Code))
	b.WriteByte(' ')
	b.WriteString(r.Reason)
	b.WriteString("\r\n")

	keys := make([]string, 0, len(r.Header))
	for k := range r.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(r.Header[k])
		b.WriteString("\r\n")
	}
	b.WriteString("\r\n")
	b.Write(r.Body)
	return b.Bytes()
}

// WriteTo writes the serialised response to w.
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.Bytes())
	return int64(n), err
}
