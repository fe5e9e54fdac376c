// Package store owns the client's chat state: login status, last auth
// error, and the live message list. It is the only mutator of ChatState;
// the presentation layer holds a read-only observation and issues commands.
package store

import (
	"chat-client/contract"
	"chat-client/domain"
	"chat-client/observability"
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	apperrors "chat-client/errors"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Store serializes every mutation of ChatState behind one mutex.
// Two independent event sources feed it: auth completions and snapshot
// deliveries from the message subscription. Neither can observe a partial
// transition.
//
// Gateway failures never cross the store boundary: auth failures become
// LastError, delivery and subscription failures are diagnostic only.
type Store struct {
	mu       sync.RWMutex
	log      *slog.Logger
	session  contract.SessionGateway
	messages contract.MessageGateway
	stats    *observability.ClientStats

	state      ChatState
	userID     string
	subscribed bool

	// subCtx bounds the lifetime of the message subscription. It is only
	// cancelled by Close; during a session the feed is never torn down.
	subCtx    context.Context
	cancelSub context.CancelFunc

	watchers      map[int]watcher
	nextWatcherID int
}

type watcher struct {
	ctx context.Context
	ch  chan ChatState
}

func New(log *slog.Logger, session contract.SessionGateway,
	messages contract.MessageGateway, stats *observability.ClientStats) *Store {
	subCtx, cancel := context.WithCancel(context.Background())
	return &Store{
		log:       log,
		session:   session,
		messages:  messages,
		stats:     stats,
		subCtx:    subCtx,
		cancelSub: cancel,
		watchers:  make(map[int]watcher),
	}
}

// Initialize resolves the session once at startup. Absence of a session is
// a normal state, there is no error path here. When a session exists the
// live message feed starts immediately.
func (s *Store) Initialize(ctx context.Context) {
	userID, ok := s.session.CurrentUser(ctx)
	if !ok {
		s.apply(func(st *ChatState) { st.LoggedIn = lo.ToPtr(false) })
		return
	}
	s.completeAuth(userID)
}

// LogIn delegates to the session gateway. An unknown account triggers
// exactly one registration attempt with the same credentials; any other
// failure lands in LastError and login status is left unchanged.
func (s *Store) LogIn(ctx context.Context, email, password string) {
	userID, err := s.session.SignIn(ctx, email, password)
	switch {
	case err == nil:
		s.completeAuth(userID)
	case errors.Is(err, apperrors.ErrInvalidUser):
		s.log.Info("no account for this login, attempting registration", "email", email)
		s.signUp(ctx, email, password)
	default:
		s.stats.IncrAuthFailures()
		s.log.Warn("sign-in failed", "error", err)
		s.apply(func(st *ChatState) { st.LastError = err })
	}
}

// signUp is the implicit fallback of LogIn, never user-invocable directly.
func (s *Store) signUp(ctx context.Context, email, password string) {
	userID, err := s.session.SignUp(ctx, email, password)
	if err != nil {
		s.stats.IncrAuthFailures()
		s.log.Warn("registration failed", "error", err)
		s.apply(func(st *ChatState) { st.LastError = err })
		return
	}
	s.completeAuth(userID)
}

// SendMessage submits the content verbatim, stamped with the current user
// and time. Fire-and-forget: delivery failures never reach ChatState, the
// message list is driven exclusively by the subscription feed.
func (s *Store) SendMessage(ctx context.Context, content string) {
	s.mu.RLock()
	author := s.userID
	s.mu.RUnlock()
	if author == "" {
		s.log.Warn("dropping message sent before login")
		return
	}

	message := domain.Message{
		ID:        uuid.New(),
		Author:    author,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messages.Append(ctx, message); err != nil {
		s.stats.IncrSendFailures()
		s.log.Warn("message append failed", "message_id", message.ID, "error", err)
		return
	}
	s.stats.IncrMessagesSent()
}

// State returns the current aggregate. The message slice is replaced
// wholesale on every snapshot and its entries are immutable, so sharing it
// with the caller is safe.
func (s *Store) State() ChatState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Watch returns a read-only observation of ChatState, seeded with the
// current value. The channel always carries the most recent state;
// intermediate values may be skipped. It is closed when ctx ends or the
// store closes.
func (s *Store) Watch(ctx context.Context) <-chan ChatState {
	ch := make(chan ChatState, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextWatcherID
	s.nextWatcherID++
	s.watchers[id] = watcher{ctx: ctx, ch: ch}
	ch <- s.state
	return ch
}

// Close releases the message subscription and every watcher channel.
// The presentation layer only calls this at process teardown, never while
// a session is active.
func (s *Store) Close() {
	s.cancelSub()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, w := range s.watchers {
		delete(s.watchers, id)
		close(w.ch)
	}
}

func (s *Store) completeAuth(userID string) {
	s.mu.Lock()
	s.userID = userID
	s.state.LoggedIn = lo.ToPtr(true)
	s.publishLocked()
	s.mu.Unlock()

	s.startSubscription()
}

// startSubscription opens the live feed at most once for the lifetime of
// the store. A feed that cannot be opened is diagnostic only: the UI keeps
// whatever list it already has.
func (s *Store) startSubscription() {
	s.mu.Lock()
	if s.subscribed {
		s.mu.Unlock()
		return
	}
	s.subscribed = true
	s.mu.Unlock()

	snapshots, err := s.messages.Subscribe(s.subCtx)
	if err != nil {
		s.log.Error("message subscription failed", "error", err)
		s.mu.Lock()
		s.subscribed = false
		s.mu.Unlock()
		return
	}
	go s.consume(snapshots)
}

// consume applies snapshots in delivery order. A single goroutine per
// subscription keeps the list an exact mirror of the latest event.
func (s *Store) consume(snapshots <-chan domain.Snapshot) {
	for {
		select {
		case <-s.subCtx.Done():
			return
		case snapshot, ok := <-snapshots:
			if !ok {
				return
			}
			s.applySnapshot(snapshot)
		}
	}
}

// applySnapshot replaces the message list wholesale, recomputing IsMine
// against the user id current at apply time. The gateway owns the ordering.
func (s *Store) applySnapshot(snapshot domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID := s.userID
	s.state.Messages = lo.Map(snapshot, func(m domain.Message, _ int) Message {
		return Message{
			ID:        m.ID,
			Author:    m.Author,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
			IsMine:    m.Author == userID,
		}
	})
	s.stats.IncrSnapshotsApplied()
	s.publishLocked()
}

func (s *Store) apply(mutate func(*ChatState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mutate(&s.state)
	s.publishLocked()
}

// publishLocked notifies watchers without ever blocking a state mutation.
// Latest-wins: a slow observer gets the freshest state, never a backlog.
func (s *Store) publishLocked() {
	for id, w := range s.watchers {
		if w.ctx.Err() != nil {
			delete(s.watchers, id)
			close(w.ch)
			continue
		}
		select {
		case w.ch <- s.state:
		default:
			select {
			case <-w.ch:
			default:
			}
			select {
			case w.ch <- s.state:
			default:
			}
		}
	}
}
