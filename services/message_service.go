package services

import (
	"context"
	"log/slog"

	"chat-client/domain"
	"chat-client/repositories"
	"chat-client/runtime"
	"chat-client/sink"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// MessageService is the embedded document store behind the MessageGateway
// contract: an append-only ordered collection with live snapshot fan-out.
type MessageService struct {
	repo     repositories.IMessageRepository
	registry *runtime.Registry
	log      *slog.Logger
}

func NewMessageService(repo repositories.IMessageRepository,
	registry *runtime.Registry, log *slog.Logger) *MessageService {
	return &MessageService{repo: repo, registry: registry, log: log}
}

// Append persists the message, then broadcasts a freshly built snapshot to
// every live subscription. Broadcast problems stay diagnostic; the append
// itself is the only failure the caller hears about.
func (m *MessageService) Append(ctx context.Context, message domain.Message) error {
	err := m.repo.StoreMessage(repositories.DiskMessage{
		ID:      message.ID,
		Author:  message.Author,
		Content: message.Content,
		At:      message.CreatedAt,
	})
	if err != nil {
		return err
	}

	m.broadcast(ctx)
	return nil
}

// Subscribe opens a live feed of full ordered snapshots. The current
// snapshot is delivered immediately so a new subscriber renders without
// waiting for traffic. Cancelling ctx releases the subscription.
func (m *MessageService) Subscribe(ctx context.Context) (<-chan domain.Snapshot, error) {
	subscriber := sink.NewSnapshotSink(m.log)
	subscriberID := uuid.NewString()
	m.registry.Subscribe(subscriberID, subscriber)

	go func() {
		<-ctx.Done()
		m.registry.Unsubscribe(subscriberID)
		m.log.Debug("subscription released", "subscriber_id", subscriberID)
	}()

	if snapshot, err := m.snapshot(); err == nil {
		_ = subscriber.Consume(ctx, snapshot)
	} else {
		m.log.Error("could not build initial snapshot", "error", err)
	}

	return subscriber.Snapshots, nil
}

func (m *MessageService) broadcast(ctx context.Context) {
	snapshot, err := m.snapshot()
	if err != nil {
		// Subscribers keep their previous snapshot; partial reads are
		// never delivered.
		m.log.Error("could not build snapshot", "error", err)
		return
	}

	for _, subscriber := range m.registry.Sinks() {
		if err := subscriber.Consume(ctx, snapshot); err != nil {
			m.log.Warn("snapshot delivery failed", "error", err)
		}
	}
}

func (m *MessageService) snapshot() (domain.Snapshot, error) {
	diskMessages, err := m.repo.GetMessages()
	if err != nil {
		return nil, err
	}

	return lo.Map(diskMessages, func(item repositories.DiskMessage, _ int) domain.Message {
		return domain.Message{
			ID:        item.ID,
			Author:    item.Author,
			Content:   item.Content,
			CreatedAt: item.At,
		}
	}), nil
}
