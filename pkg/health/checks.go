package health

import (
	"fmt"
	"runtime"
)

// SimpleCheck always reports healthy.
func SimpleCheck(name string) CheckFunc {
	return func() Check {
		return Check{Name: name, Status: StatusHealthy}
	}
}

// SessionsCheck reports the number of open editing sessions. Reaching
// softLimit degrades the server; softLimit <= 0 disables the limit.
func SessionsCheck(count func() int, softLimit int) CheckFunc {
	return func() Check {
		n := count()
		check := Check{
			Name:    "sessions",
			Status:  StatusHealthy,
			Details: map[string]any{"open": n},
		}
		if softLimit > 0 {
			check.Details["soft_limit"] = softLimit
			if n >= softLimit {
				check.Status = StatusDegraded
				check.Message = fmt.Sprintf("%d open sessions", n)
			}
		}
		return check
	}
}

// BroadcastCheck reports the report publisher. A nil ping means broadcast is
// disabled.
func BroadcastCheck(addr string, ping func() error) CheckFunc {
	return func() Check {
		check := Check{Name: "broadcast", Details: map[string]any{}}
		if ping == nil {
			check.Status = StatusHealthy
			check.Message = "disabled"
			return check
		}
		check.Details["addr"] = addr
		if err := ping(); err != nil {
			check.Status = StatusUnhealthy
			check.Message = err.Error()
			return check
		}
		check.Status = StatusHealthy
		return check
	}
}

// MemoryCheck reports heap usage relative to memory obtained from the OS.
func MemoryCheck(getUsage func() (alloc, sys uint64)) CheckFunc {
	return func() Check {
		alloc, sys := getUsage()
		check := Check{
			Name:   "memory",
			Status: StatusHealthy,
			Details: map[string]any{
				"alloc_bytes": alloc,
				"sys_bytes":   sys,
			},
		}
		if sys > 0 && float64(alloc)/float64(sys) > 0.9 {
			check.Status = StatusDegraded
			check.Message = "high memory usage"
		}
		return check
	}
}

// RuntimeMemory reads the usage MemoryCheck expects from the Go runtime.
func RuntimeMemory() (alloc, sys uint64) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc, m.Sys
}
