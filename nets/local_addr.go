package nets

import "net"

type IsLocalAddr func(addr string) (bool, error)

func (Module) IsLocalAddr() IsLocalAddr {
	return func(addr string) (bool, error) {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			// no port
			host = addr
		}
		if host == "" || host == "localhost" {
			return true, nil
		}

		isLocal := func(ip net.IP) bool {
			return ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified()
		}

		if ip := net.ParseIP(host); ip != nil {
			return isLocal(ip), nil
		}

		ips, err := net.LookupIP(host)
		if err != nil {
			// unresolvable here, let the proxy try
			return false, nil
		}
		for _, ip := range ips {
			if isLocal(ip) {
				return true, nil
			}
		}
		return false, nil
	}
}
