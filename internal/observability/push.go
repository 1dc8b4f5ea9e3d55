package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus/push"
)

// Push sends the current value of every collector to a Prometheus
// Pushgateway, replacing the metrics previously pushed under job.
func (m *Metrics) Push(ctx context.Context, gatewayURL, job string) error {
	pusher := push.New(gatewayURL, job)
	for _, c := range m.collectors() {
		pusher.Collector(c)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
