package protocol

import (
	"bytes"
	"errors"
	"fmt"
)

// duplicateLoginSignal is the fixed substring the server embeds in any
// response served to a session that was superseded by a newer login. It is
// checked on the raw body before structural parsing.
var duplicateLoginSignal = []byte("doubleLogin")

// ErrDuplicateLogin reports that the session was superseded elsewhere and
// must be invalidated. Distinct from a parse failure.
var ErrDuplicateLogin = errors.New("protocol: session superseded by duplicate login")

// errNoElements marks a response that parsed as XML but carried no match
// elements; fallback request shapes treat it as structurally invalid.
var errNoElements = errors.New("no match elements in response")

// ParseError wraps a structural XML failure. Callers treat it as "no data
// this cycle", never as fatal.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("protocol: %s: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsDuplicateLogin reports whether the raw response body carries the
// duplicate-login signal.
func IsDuplicateLogin(body []byte) bool {
	return bytes.Contains(body, duplicateLoginSignal)
}
