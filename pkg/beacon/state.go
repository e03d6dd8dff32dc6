// state.go captures runtime state attached to envelopes as device context.

package beacon

import (
	"os"
	"runtime"
	"time"
)

// CaptureRuntimeState returns process metrics for the envelope's device
// section. The startTime parameter is used to calculate process uptime.
func CaptureRuntimeState(startTime time.Time) map[string]any {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	hostname, _ := os.Hostname() // empty hostname is acceptable

	uptimeMs := time.Since(startTime).Milliseconds()
	if uptimeMs < 0 {
		uptimeMs = 0
	}

	return map[string]any{
		"memory_bytes": int64(memStats.Alloc),
		"goroutines":   runtime.NumGoroutine(),
		"uptime_ms":    uptimeMs,
		"hostname":     hostname,
		"go_version":   runtime.Version(),
	}
}
