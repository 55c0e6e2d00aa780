/*
Package observability turns dispatcher and wizard lifecycle events into
Prometheus metrics and structured log records.

Every helper returns a domain.LifecycleHooks value; Combine fans one event out
to several of them:

	metrics, _ := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := observability.Combine(metrics.Hooks(), observability.LogHooks(logger))
*/
package observability
