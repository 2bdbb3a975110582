// Package health runs component health checks under the async toolkit.
//
// A Checker reports a Status: Healthy, Degraded or Unhealthy. An Aggregator
// holds named checkers and runs them all with async.Parallel, bounding
// in-flight checks by AggregatorConfig.Concurrency and racing each one
// against AggregatorConfig.Timeout with async.WithTimeout:
//
//	agg := health.NewAggregator(health.AggregatorConfig{
//	    Timeout:     2 * time.Second,
//	    Concurrency: 4,
//	})
//	agg.Register("database", health.NewPingChecker("database", db.PingContext))
//	agg.Register("payments", health.NewCircuitChecker("payments", breaker))
//
//	results := agg.CheckAll(ctx)
//	overall := health.OverallStatus(results)
//
// A check that times out is reported unhealthy with ErrCheckTimeout. A check
// that panics is reported unhealthy with an error matching ErrCheckFailed and
// async.ErrPanic; it never takes the aggregator down. Ready condenses a run
// into a single error suitable for a readiness probe.
//
// NewCircuitChecker and NewBulkheadChecker expose the state of resilience
// primitives as health checks.
package health
