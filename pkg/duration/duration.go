// Package duration provides canonical time constants for the entire codebase.
// This is the SINGLE SOURCE OF TRUTH for all time-based configuration.
//
// Usage:
//
//	ctx, cancel := context.WithTimeout(ctx, duration.ServerShutdown)
//
// DO NOT use hardcoded time.Duration values like `30 * time.Second` anywhere.
// Instead, reference the appropriate constant from this package.
package duration

import "time"

// ============================================================================
// HTTP SERVER TIMEOUTS
// ============================================================================

const (
	// ServerReadHeader bounds request header reads (5s)
	ServerReadHeader = 5 * time.Second

	// ServerRead bounds full request reads (15s)
	ServerRead = 15 * time.Second

	// ServerWrite bounds response writes; PDF rendering happens inside it (30s)
	ServerWrite = 30 * time.Second

	// ServerIdle is the keep-alive idle timeout (60s)
	ServerIdle = 60 * time.Second

	// ServerShutdown is the graceful shutdown window (10s)
	ServerShutdown = 10 * time.Second
)

// ============================================================================
// TELEMETRY TIMEOUTS
// ============================================================================

const (
	// TelemetryConnect bounds exporter connection setup (10s)
	TelemetryConnect = 10 * time.Second

	// TelemetryShutdown bounds span flushing on exit (5s)
	TelemetryShutdown = 5 * time.Second
)

// ============================================================================
// STORAGE TIMEOUTS
// ============================================================================

const (
	// ArchiveWrite bounds a single archive insert (5s)
	ArchiveWrite = 5 * time.Second

	// SQLiteBusy is the busy_timeout pragma in milliseconds (5000)
	SQLiteBusy = 5000
)
