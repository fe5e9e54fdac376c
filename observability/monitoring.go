package observability

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// ClientStats aggregates client-side counters for diagnostics.
// Swallowed failures (message appends, subscription hiccups) are invisible
// in ChatState by design; this is where they stay countable.
type ClientStats struct {
	log *slog.Logger

	snapshotsApplied uint64
	messagesSent     uint64
	sendFailures     uint64
	authFailures     uint64
}

func NewClientStats(log *slog.Logger) *ClientStats {
	return &ClientStats{log: log}
}

func (c *ClientStats) IncrSnapshotsApplied() {
	atomic.AddUint64(&c.snapshotsApplied, 1)
}

func (c *ClientStats) IncrMessagesSent() {
	atomic.AddUint64(&c.messagesSent, 1)
}

func (c *ClientStats) IncrSendFailures() {
	atomic.AddUint64(&c.sendFailures, 1)
}

func (c *ClientStats) IncrAuthFailures() {
	atomic.AddUint64(&c.authFailures, 1)
}

// Report returns a point-in-time view of all counters.
func (c *ClientStats) Report() map[string]uint64 {
	return map[string]uint64{
		"snapshots_applied": atomic.LoadUint64(&c.snapshotsApplied),
		"messages_sent":     atomic.LoadUint64(&c.messagesSent),
		"send_failures":     atomic.LoadUint64(&c.sendFailures),
		"auth_failures":     atomic.LoadUint64(&c.authFailures),
	}
}

// Listen periodically logs the counters until ctx is cancelled.
func (c *ClientStats) Listen(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Debug("stats reporter stopped")
			return
		case <-ticker.C:
			report := c.Report()
			c.log.Debug("client stats",
				"snapshots_applied", report["snapshots_applied"],
				"messages_sent", report["messages_sent"],
				"send_failures", report["send_failures"],
				"auth_failures", report["auth_failures"])
		}
	}
}
