// Package metrics exposes the Prometheus registry used by the item bank
// client and writes it out for one-shot processes.
//
// Collectors are defined next to the code that updates them (pkg/client);
// this package only documents them and handles export.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the item bank client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the source read by WriteTextfile.
var Gatherer prometheus.Gatherer = prometheus.DefaultGatherer

// WriteTextfile writes every gathered metric to path in the text exposition
// format, for the node-exporter textfile collector. The file is replaced
// atomically.
func WriteTextfile(path string) error {
	if path == "" {
		return fmt.Errorf("metrics file path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create metrics dir: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, Gatherer); err != nil {
		return fmt.Errorf("write metrics file: %w", err)
	}
	return nil
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - itembank_requests_total{endpoint, status} (Counter): Requests by URL path and HTTP status,
//     or status="network_error" when no response arrived
//   - itembank_request_duration_seconds{endpoint} (Histogram): Request duration by URL path
//   - itembank_errors_total{class} (Counter): Errors by class (client, server, network, decode)
//
// Example Prometheus Queries:
//
//   # Fetch error rate
//   sum(rate(itembank_errors_total[1h])) / sum(rate(itembank_requests_total[1h]))
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(itembank_request_duration_seconds_bucket[1h]))
