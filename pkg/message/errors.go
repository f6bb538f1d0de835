package message

import "fmt"

// ParseError is the reason a request could not be read off the wire.
// A connection whose request fails to parse is closed without a response.
type ParseError int

const (
	ErrInvalidRequestLine ParseError = iota
	ErrInvalidPathEncoding
	ErrInvalidHeader
	ErrInvalidBody
)

func (e ParseError) Error() string {
	switch e {
	case ErrInvalidRequestLine:
		return "invalid request line"
	case ErrInvalidPathEncoding:
		return "invalid path encoding"
	case ErrInvalidHeader:
		return "invalid header"
	case ErrInvalidBody:
		return "invalid body"
	default:
		return fmt.Sprintf("unknown parse error: %d", int(e))
	}
}
