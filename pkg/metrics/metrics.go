package metrics

import (
	"math/big"
	"runtime"
	"time"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordResponseSize records the size of an HTTP response body.
func (r *Registry) RecordResponseSize(method, path string, size float64) {
	r.HTTPResponseSizeBytes.WithLabelValues(method, path).Observe(size)
}

func (r *Registry) IncHTTPRequestsInFlight() { r.HTTPRequestsInFlight.Inc() }
func (r *Registry) DecHTTPRequestsInFlight() { r.HTTPRequestsInFlight.Dec() }

// RecordCommand records one editing command. status is "applied" or "rejected".
func (r *Registry) RecordCommand(command, status string, duration time.Duration) {
	r.CommandsTotal.WithLabelValues(command, status).Inc()
	r.CommandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// AddNetworkSize adjusts the node and link gauges by the change one command
// (or one opened/closed session) made.
func (r *Registry) AddNetworkSize(nodes, links int) {
	r.NetworkNodes.Add(float64(nodes))
	r.NetworkLinks.Add(float64(links))
}

// SessionOpened accounts for a new session and its initial network.
func (r *Registry) SessionOpened(nodes, links int) {
	r.SessionsActive.Inc()
	r.AddNetworkSize(nodes, links)
}

// SessionClosed removes a session and its network from the gauges.
func (r *Registry) SessionClosed(session string, nodes, links int) {
	r.SessionsActive.Dec()
	r.AddNetworkSize(-nodes, -links)
	r.ParameterGraphSize.DeleteLabelValues(session)
}

// RecordDerivation records a recomputation of a session's report.
// Sizes beyond float64 precision are reported approximately.
func (r *Registry) RecordDerivation(session string, duration time.Duration, size *big.Int, unsupportedKeys []string) {
	r.DerivationDuration.Observe(duration.Seconds())
	if size != nil {
		f, _ := new(big.Float).SetInt(size).Float64()
		r.ParameterGraphSize.WithLabelValues(session).Set(f)
	}
	for _, key := range unsupportedKeys {
		r.UnsupportedShapesTotal.WithLabelValues(key).Inc()
	}
}

// RecordBroadcast records one published frame.
func (r *Registry) RecordBroadcast(encoding string, bytes int, err error) {
	if err != nil {
		r.BroadcastFramesTotal.WithLabelValues("error").Inc()
		return
	}
	r.BroadcastFramesTotal.WithLabelValues("sent").Inc()
	r.BroadcastBytesTotal.WithLabelValues(encoding).Add(float64(bytes))
}

// UpdateSystemMetrics refreshes uptime, goroutine and heap gauges.
func (r *Registry) UpdateSystemMetrics(started time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	r.UptimeSeconds.Set(time.Since(started).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(mem.Alloc))
}
