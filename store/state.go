package store

import (
	"time"

	"github.com/google/uuid"
)

// Message is the presentation-facing view of a chat record.
// IsMine is derived at snapshot-apply time against the current user id,
// it is never stored remotely.
type Message struct {
	ID        uuid.UUID
	Author    string
	Content   string
	CreatedAt time.Time
	IsMine    bool
}

// ChatState is the single aggregate observed by the presentation layer.
//
// LoggedIn is a tri-state: nil means the session has not been resolved yet.
// Messages always mirrors the most recently delivered snapshot, newest
// first; the store never re-sorts it. LastError holds the latest auth
// failure and is only ever set, never cleared.
type ChatState struct {
	LoggedIn  *bool
	LastError error
	Messages  []Message
}
