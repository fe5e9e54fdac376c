package sink

import (
	"chat-client/domain"
	"context"
	"log/slog"
)

// SnapshotSink bridges the fan-out to a single subscriber channel.
// The channel has capacity one and conflates: a slow reader always gets
// the freshest snapshot, never a backlog. Each snapshot is a full
// replacement, so skipping intermediate ones loses nothing.
type SnapshotSink struct {
	log       *slog.Logger
	Snapshots chan domain.Snapshot
}

func NewSnapshotSink(log *slog.Logger) *SnapshotSink {
	return &SnapshotSink{
		log:       log,
		Snapshots: make(chan domain.Snapshot, 1),
	}
}

// Consume is called by the fan-out. It redirects the snapshot to the owner
// of the channel, dropping a stale pending snapshot when the reader lags.
func (s *SnapshotSink) Consume(ctx context.Context, snapshot domain.Snapshot) error {
	for {
		select {
		case s.Snapshots <- snapshot:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
			select {
			case <-s.Snapshots:
				s.log.Debug("stale snapshot dropped for slow subscriber")
			default:
			}
		}
	}
}
