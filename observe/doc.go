// Package observe instruments async operations with OpenTelemetry tracing,
// metrics and a JSON structured logger.
//
// An Observer owns the tracer and meter providers built from Config.
// Middleware turns them into per-operation telemetry:
//
//	mw, err := observe.MiddlewareFromObserver(obs)
//	fetch := observe.Instrument(mw, observe.OpMeta{Namespace: "profiles", Name: "fetch"}, fetchProfile)
//
// Each execution produces a span named op.exec.<namespace>.<name>, the
// op.exec.total, op.exec.errors and op.exec.duration_ms instruments, and one
// log line. Timeouts are counted separately in op.timeouts, and retried
// attempts reported through OnRetry land in op.retry.attempts.
package observe
