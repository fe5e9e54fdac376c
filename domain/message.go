// Package domain contains core concepts of the chat client.
// This file defines Message records and snapshot events.
// Messages are immutable and never mutated or deleted client-side.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat record as stored by the backend.
type Message struct {
	ID        uuid.UUID // unique identifier
	Author    string
	Content   string
	CreatedAt time.Time
}

// Snapshot is the full current collection of messages delivered by a live
// subscription whenever the underlying data changes. Ordering is a contract
// with the gateway: newest first. Consumers replace, they never merge.
type Snapshot []Message
