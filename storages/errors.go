package storages

import (
	"errors"

	"github.com/reusee/e5"
)

var wrap = e5.Wrap.With(e5.WrapStacktrace)

var (
	ErrEmptyContent = errors.New("empty content")
	ErrBadCategory  = errors.New("bad category")
)
