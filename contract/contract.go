//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-client/domain"
	"context"
)

// SessionGateway abstracts the remote identity provider.
// Failure kinds are sentinel errors from the errors package:
// ErrInvalidUser means the account does not exist, ErrInvalidCredentials
// means the password was rejected, anything else is an unclassified failure.
type SessionGateway interface {
	// CurrentUser resolves a previously established session.
	// Absence of a session is a normal state, not a failure.
	CurrentUser(ctx context.Context) (string, bool)
	SignIn(ctx context.Context, email, password string) (string, error)
	SignUp(ctx context.Context, email, password string) (string, error)
}

// MessageGateway abstracts the remote append-only ordered document store.
type MessageGateway interface {
	Append(ctx context.Context, message domain.Message) error
	// Subscribe opens a live feed of full ordered snapshots (newest first).
	// The stream is infinite and restartable per call; cancelling ctx
	// releases the subscription.
	Subscribe(ctx context.Context) (<-chan domain.Snapshot, error)
}

// SnapshotSink receives snapshot events during fan-out.
type SnapshotSink interface {
	Consume(ctx context.Context, snapshot domain.Snapshot) error
}
