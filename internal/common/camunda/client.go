// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"github.com/DharitG/jobs/internal/common/config"
)

// Connect dials the Zeebe gateway and verifies the broker is reachable with a
// topology request before handing the client back. A client that dials but
// cannot reach a broker would otherwise fail only once the first job arrives.
func Connect(ctx context.Context, cfg config.CamundaConfig) (zbc.Client, error) {
	client, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.BrokerAddress,
		UsePlaintextConnection: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create zeebe client: %w", err)
	}

	timeout := time.Duration(cfg.RequestTimeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if _, err := client.NewTopologyCommand().Send(checkCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("zeebe broker unreachable at %s: %w", cfg.BrokerAddress, err)
	}
	return client, nil
}
