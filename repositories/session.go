//go:generate go run go.uber.org/mock/mockgen -source=session.go -destination=../mocks/mock_session_repository.go -package=mocks
package repositories

import (
	"github.com/dgraph-io/badger/v4"
)

// sessionKey holds the device's resumable session token.
// There is no logout in scope, so the key is only ever overwritten.
var sessionKey = []byte("session:current")

type ISessionRepository interface {
	SaveToken(token string) error
	LoadToken() (string, error)
}

type SessionRepository struct {
	db *badger.DB
}

func NewSessionRepository(db *badger.DB) ISessionRepository {
	return &SessionRepository{db: db}
}

func (s SessionRepository) SaveToken(token string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(sessionKey, []byte(token))
	})
}

// LoadToken returns the persisted token, or an empty string when none has
// been stored yet. Absence of a session is a normal state, not a failure.
func (s SessionRepository) LoadToken() (string, error) {
	var token string

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			token = string(val)
			return nil
		})
	})

	if err == badger.ErrKeyNotFound {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	return token, nil
}
