package senders

import "errors"

var (
	ErrUnknownPeer = errors.New("unknown peer")
	ErrBadText     = errors.New("text must be one line of valid utf-8")
)
