package nets

import (
	"context"
	"net"
	"time"

	"github.com/reusee/bridges/configs"
)

type Dialer interface {
	Dial(network, addr string) (net.Conn, error)
	DialContext(ctx context.Context, network, addr string) (net.Conn, error)
}

type DialTimeout time.Duration

func (d DialTimeout) Duration() time.Duration {
	return time.Duration(d)
}

func (Module) DialTimeout(
	loader configs.Loader,
) DialTimeout {
	if str := configs.First[string](loader, "dial_timeout"); str != "" {
		if d, err := time.ParseDuration(str); err == nil && d > 0 {
			return DialTimeout(d)
		}
	}
	return DialTimeout(5 * time.Second)
}

// Dialer connects directly to loopback and private addresses and through the
// configured proxy otherwise.
func (Module) Dialer(
	getProxyDialer GetProxyDialer,
	isLocalAddr IsLocalAddr,
	timeout DialTimeout,
) Dialer {
	direct := &net.Dialer{
		Timeout: timeout.Duration(),
	}
	return DialerFunc(func(ctx context.Context, network, addr string) (ret net.Conn, err error) {
		if isLocal, err := isLocalAddr(addr); err != nil {
			return nil, err
		} else if isLocal {
			return direct.DialContext(ctx, network, addr)
		}
		proxyDialer, err := getProxyDialer()
		if err != nil {
			return nil, err
		}
		return proxyDialer.DialContext(ctx, network, addr)
	})
}

type DialerFunc func(context.Context, string, string) (net.Conn, error)

var _ Dialer = DialerFunc(nil)

func (d DialerFunc) DialContext(ctx context.Context, network string, addr string) (net.Conn, error) {
	return d(ctx, network, addr)
}

func (d DialerFunc) Dial(network string, addr string) (net.Conn, error) {
	return d(context.Background(), network, addr)
}
