package scripts

import (
	"errors"

	"github.com/reusee/e5"
)

var wrap = e5.Wrap.With(e5.WrapStacktrace)

var ErrNoHandler = errors.New("script does not define on_message")
