package peers

import (
	"os"
	"strconv"

	"github.com/reusee/bridges/cmds"
	"github.com/reusee/bridges/configs"
	"github.com/reusee/bridges/logs"
	"github.com/reusee/bridges/vars"
)

type ListenHost string

func (Module) ListenHost(
	loader configs.Loader,
) ListenHost {
	return vars.FirstNonZero(
		configs.First[ListenHost](loader, "listen_host"),
		ListenHost(os.Getenv("BRIDGE_LISTEN_HOST")),
		"127.0.0.1",
	)
}

// Peers is the full peer table, used for dialing.
func (Module) Peers(
	loader configs.Loader,
	host ListenHost,
) Peers {
	peers := configs.First[Peers](loader, "peers")
	if len(peers) == 0 {
		peers = append(Peers(nil), DefaultPeers...)
	}
	for i := range peers {
		if peers[i].Host == "" {
			peers[i].Host = string(host)
		}
	}
	return peers
}

var (
	portFlag     = cmds.Var[int]("--port", "-port")
	peerNameFlag = cmds.Var[string]("--peer-name", "-peer-name")
)

// LocalPeers are the peers this process listens for.
// --peer-name and --port narrow the table to a single peer.
type LocalPeers Peers

func (Module) LocalPeers(
	all Peers,
	host ListenHost,
	logger logs.Logger,
) (ret LocalPeers) {
	defer func() {
		logger.Info("local peers", "peers", Peers(ret).Names())
	}()
	return selectLocal(all, string(host), *peerNameFlag, *portFlag)
}

func selectLocal(all Peers, host string, name string, port int) LocalPeers {
	if name == "" && port == 0 {
		return LocalPeers(all)
	}

	if name != "" {
		peer, ok := all.Lookup(name)
		if !ok {
			peer = Peer{
				Name: name,
				Host: host,
			}
		}
		if port != 0 {
			peer.Port = port
		}
		return LocalPeers{peer}
	}

	for _, peer := range all {
		if peer.Port == port {
			return LocalPeers{peer}
		}
	}
	return LocalPeers{{
		Name: "peer-" + strconv.Itoa(port),
		Host: host,
		Port: port,
	}}
}

// SelfName is the --peer-name flag, empty when not given.
type SelfName string

func (Module) SelfName() SelfName {
	return SelfName(*peerNameFlag)
}
