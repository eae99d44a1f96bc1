package profiler

import (
	"fmt"
	"net"

	"github.com/ALEYI17/InfraSight_mpi/internal/collective"
	"github.com/ALEYI17/InfraSight_mpi/internal/config"
	collgrpc "github.com/ALEYI17/InfraSight_mpi/internal/grpc"
	"github.com/ALEYI17/InfraSight_mpi/pkg/types"
)

func newCommunicator(cfg *config.Config) (types.Communicator, error) {
	switch cfg.ResolvedTransport() {
	case config.TransportSingle:
		return collective.Single{}, nil
	case config.TransportGrpc:
		if cfg.Rank == 0 {
			return collgrpc.NewCoordinator(listenAddr(cfg.Coordinator), cfg.Size)
		}
		return collgrpc.NewGrpcClient(cfg.Coordinator, cfg.Rank, cfg.Size)
	default:
		return nil, fmt.Errorf("unsupported or unknown transport %q", cfg.Transport)
	}
}

// listenAddr keeps the port of the coordinator address and listens on
// every interface, so the name other ranks dial need not be local.
func listenAddr(addr string) string {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return net.JoinHostPort("", port)
}
