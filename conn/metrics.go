package conn

import "github.com/VictoriaMetrics/metrics"

// Ambient runtime counters, exposed the way the pack uses
// VictoriaMetrics/metrics for gauges/counters rather than rolling a
// bespoke stats struct: active connection count and total pub/sub
// deliveries handed to a connection's queue.
var (
	connActive       = metrics.NewCounter("shardcache_connections_active")
	pubsubDeliveries = metrics.NewCounter("shardcache_pubsub_deliveries_total")
)
