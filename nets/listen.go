package nets

import (
	"context"
	"errors"
	"net"
	"syscall"

	"github.com/reusee/bridges/configs"
	"golang.org/x/net/netutil"
)

// MaxConns bounds concurrently open connections per listening socket.
type MaxConns int

func (Module) MaxConns(
	loader configs.Loader,
) MaxConns {
	if n := configs.First[int](loader, "max_conns"); n > 0 {
		return MaxConns(n)
	}
	return 16
}

type Listen func(ctx context.Context, addr string) (net.Listener, error)

func (Module) Listen(
	maxConns MaxConns,
) Listen {
	return func(ctx context.Context, addr string) (net.Listener, error) {
		// no SO_REUSEPORT: a second bind on the same port must fail
		var lc net.ListenConfig
		ln, err := lc.Listen(ctx, "tcp", addr)
		if err != nil {
			return nil, err
		}
		if maxConns > 0 {
			ln = netutil.LimitListener(ln, int(maxConns))
		}
		return ln, nil
	}
}

func IsAddrInUse(err error) bool {
	return errors.Is(err, syscall.EADDRINUSE)
}
