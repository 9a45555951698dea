package listeners

import (
	"errors"
	"fmt"

	"github.com/reusee/bridges/nets"
)

var (
	ErrPortInUse   = errors.New("port in use")
	ErrLineTooLong = errors.New("line too long")
)

// BindError is fatal at startup.
type BindError struct {
	Peer string
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	if nets.IsAddrInUse(e.Err) {
		return fmt.Sprintf("bind %s for %s: %v: %v", e.Addr, e.Peer, ErrPortInUse, e.Err)
	}
	return fmt.Sprintf("bind %s for %s: %v", e.Addr, e.Peer, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

func (e *BindError) Is(target error) bool {
	return target == ErrPortInUse && nets.IsAddrInUse(e.Err)
}

// DecodeError drops one line; the connection continues.
type DecodeError struct {
	Peer   string
	Remote string
	Line   int
	Size   int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("line %d from %s (%s): %d bytes of invalid utf-8", e.Line, e.Remote, e.Peer, e.Size)
}

// ConnectionError ends one connection; the accept loop continues.
type ConnectionError struct {
	Peer   string
	Remote string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection %s (%s): %v", e.Remote, e.Peer, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
