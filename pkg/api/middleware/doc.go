// Package middleware provides the HTTP middleware of the netbuilder API.
//
//   - recovery.go: panic recovery
//   - request_id.go: request id propagation
//   - logging.go: one structured log line per request
//   - metrics.go: Prometheus request metrics keyed by route pattern
//   - cors.go: cross-origin access for browser display clients
//   - body_limit.go: request body size limit
//
// Every middleware has the shape func(http.Handler) http.Handler:
//
//	handler := middleware.Metrics(registry)(mux)
//	handler = middleware.Logging(logger)(handler)
//	handler = middleware.RequestID()(handler)
//	handler = middleware.PanicRecovery(logger)(handler)
package middleware
