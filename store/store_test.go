package store

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"chat-client/domain"
	apperrors "chat-client/errors"
	"chat-client/mocks"
	"chat-client/observability"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	waitFor = 2 * time.Second
	tick    = 10 * time.Millisecond
)

func newTestStore(t *testing.T) (*Store, *mocks.MockSessionGateway, *mocks.MockMessageGateway) {
	ctrl := gomock.NewController(t)
	session := mocks.NewMockSessionGateway(ctrl)
	messages := mocks.NewMockMessageGateway(ctrl)
	s := New(slog.Default(), session, messages, observability.NewClientStats(slog.Default()))
	t.Cleanup(s.Close)
	return s, session, messages
}

// feed converts a test-owned channel into the receive-only stream the
// gateway contract returns.
func feed(ch chan domain.Snapshot) <-chan domain.Snapshot {
	return ch
}

func Test_Initialize_Without_Session(t *testing.T) {
	req := require.New(t)
	s, session, messages := newTestStore(t)

	session.EXPECT().CurrentUser(gomock.Any()).Return("", false).Times(1)
	messages.EXPECT().Subscribe(gomock.Any()).Times(0)

	s.Initialize(context.Background())

	state := s.State()
	req.NotNil(state.LoggedIn)
	req.False(*state.LoggedIn)
	req.Empty(state.Messages)
	req.NoError(state.LastError)
}

func Test_Initialize_With_Session_Starts_Subscription(t *testing.T) {
	req := require.New(t)
	s, session, messages := newTestStore(t)

	snapshots := make(chan domain.Snapshot, 1)
	session.EXPECT().CurrentUser(gomock.Any()).Return("a@x.com", true).Times(1)
	messages.EXPECT().Subscribe(gomock.Any()).Return(feed(snapshots), nil).Times(1)

	s.Initialize(context.Background())

	state := s.State()
	req.NotNil(state.LoggedIn)
	req.True(*state.LoggedIn)

	snapshots <- domain.Snapshot{
		{ID: uuid.New(), Author: "a@x.com", Content: "hi", CreatedAt: time.Unix(100, 0).UTC()},
	}

	req.Eventually(func() bool {
		st := s.State()
		return len(st.Messages) == 1 && st.Messages[0].IsMine
	}, waitFor, tick)
}

func Test_LogIn_Success_Leaves_LastError_Untouched(t *testing.T) {
	req := require.New(t)
	s, session, messages := newTestStore(t)

	session.EXPECT().CurrentUser(gomock.Any()).Return("", false).Times(1)
	session.EXPECT().SignIn(gomock.Any(), "a@x.com", "pw").Return("a@x.com", nil).Times(1)
	messages.EXPECT().Subscribe(gomock.Any()).Return(feed(make(chan domain.Snapshot)), nil).Times(1)

	s.Initialize(context.Background())
	s.LogIn(context.Background(), "a@x.com", "pw")

	state := s.State()
	req.NotNil(state.LoggedIn)
	req.True(*state.LoggedIn)
	req.NoError(state.LastError)
}

func Test_LastError_Survives_A_Later_Successful_LogIn(t *testing.T) {
	req := require.New(t)
	s, session, messages := newTestStore(t)

	failure := fmt.Errorf("backend unreachable")
	session.EXPECT().SignIn(gomock.Any(), "a@x.com", "bad").Return("", failure).Times(1)
	session.EXPECT().SignIn(gomock.Any(), "a@x.com", "pw").Return("a@x.com", nil).Times(1)
	messages.EXPECT().Subscribe(gomock.Any()).Return(feed(make(chan domain.Snapshot)), nil).Times(1)

	s.LogIn(context.Background(), "a@x.com", "bad")
	req.ErrorIs(s.State().LastError, failure)

	s.LogIn(context.Background(), "a@x.com", "pw")

	state := s.State()
	req.True(*state.LoggedIn)
	// The error is only ever set, never cleared.
	req.ErrorIs(state.LastError, failure)
}

func Test_Unknown_Account_Falls_Back_To_SignUp(t *testing.T) {
	req := require.New(t)
	s, session, messages := newTestStore(t)

	session.EXPECT().SignIn(gomock.Any(), "new@x.com", "pw").
		Return("", apperrors.ErrInvalidUser).Times(1)
	session.EXPECT().SignUp(gomock.Any(), "new@x.com", "pw").
		Return("new@x.com", nil).Times(1)
	messages.EXPECT().Subscribe(gomock.Any()).Return(feed(make(chan domain.Snapshot)), nil).Times(1)

	s.LogIn(context.Background(), "new@x.com", "pw")

	state := s.State()
	req.NotNil(state.LoggedIn)
	req.True(*state.LoggedIn)
	req.NoError(state.LastError)
}

func Test_Other_Failure_Sets_LastError_Without_SignUp(t *testing.T) {
	req := require.New(t)
	s, session, messages := newTestStore(t)

	session.EXPECT().CurrentUser(gomock.Any()).Return("", false).Times(1)
	session.EXPECT().SignIn(gomock.Any(), "a@x.com", "bad").
		Return("", apperrors.ErrInvalidCredentials).Times(1)
	session.EXPECT().SignUp(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	messages.EXPECT().Subscribe(gomock.Any()).Times(0)

	s.Initialize(context.Background())
	s.LogIn(context.Background(), "a@x.com", "bad")

	state := s.State()
	req.ErrorIs(state.LastError, apperrors.ErrInvalidCredentials)
	req.NotNil(state.LoggedIn)
	req.False(*state.LoggedIn)
}

func Test_Failed_SignUp_Sets_LastError(t *testing.T) {
	req := require.New(t)
	s, session, messages := newTestStore(t)

	session.EXPECT().SignIn(gomock.Any(), "new@x.com", "weak").
		Return("", apperrors.ErrInvalidUser).Times(1)
	session.EXPECT().SignUp(gomock.Any(), "new@x.com", "weak").
		Return("", apperrors.ErrInvalidPassword).Times(1)
	messages.EXPECT().Subscribe(gomock.Any()).Times(0)

	s.LogIn(context.Background(), "new@x.com", "weak")

	state := s.State()
	req.ErrorIs(state.LastError, apperrors.ErrInvalidPassword)
	req.Nil(state.LoggedIn)
}

func Test_Messages_Mirror_The_Last_Snapshot_Exactly(t *testing.T) {
	req := require.New(t)
	s, session, messages := newTestStore(t)

	snapshots := make(chan domain.Snapshot, 2)
	session.EXPECT().CurrentUser(gomock.Any()).Return("a@x.com", true).Times(1)
	messages.EXPECT().Subscribe(gomock.Any()).Return(feed(snapshots), nil).Times(1)

	s.Initialize(context.Background())

	first := domain.Snapshot{
		{ID: uuid.New(), Author: "a@x.com", Content: "mine", CreatedAt: time.Unix(200, 0).UTC()},
		{ID: uuid.New(), Author: "b@x.com", Content: "theirs", CreatedAt: time.Unix(100, 0).UTC()},
	}
	snapshots <- first

	req.Eventually(func() bool {
		return len(s.State().Messages) == 2
	}, waitFor, tick)

	// The second snapshot arrives in a deliberately different order: the
	// store must mirror it as delivered, without re-sorting.
	second := domain.Snapshot{first[1], first[0]}
	snapshots <- second

	req.Eventually(func() bool {
		st := s.State().Messages
		return len(st) == 2 && st[0].Content == "theirs" && st[1].Content == "mine"
	}, waitFor, tick)

	state := s.State()
	req.False(state.Messages[0].IsMine)
	req.True(state.Messages[1].IsMine)
}

func Test_SendMessage_Submits_Verbatim_And_Swallows_Failures(t *testing.T) {
	req := require.New(t)
	s, session, messages := newTestStore(t)

	session.EXPECT().CurrentUser(gomock.Any()).Return("a@x.com", true).Times(1)
	messages.EXPECT().Subscribe(gomock.Any()).Return(feed(make(chan domain.Snapshot)), nil).Times(1)

	s.Initialize(context.Background())
	before := s.State()

	var sent domain.Message
	messages.EXPECT().Append(gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, message domain.Message) {
			sent = message
		}).
		Return(fmt.Errorf("write refused")).
		Times(1)

	// An empty body goes through untouched.
	s.SendMessage(context.Background(), "")

	req.Equal("a@x.com", sent.Author)
	req.Empty(sent.Content)
	req.NotZero(sent.CreatedAt)

	// The delivery failure produces no observable change in ChatState.
	after := s.State()
	req.Equal(before.LoggedIn, after.LoggedIn)
	req.Equal(before.Messages, after.Messages)
	req.NoError(after.LastError)
}

func Test_SendMessage_Before_Login_Never_Reaches_The_Gateway(t *testing.T) {
	s, _, messages := newTestStore(t)

	messages.EXPECT().Append(gomock.Any(), gomock.Any()).Times(0)

	s.SendMessage(context.Background(), "hello")
}

func Test_Subscription_Is_Started_At_Most_Once(t *testing.T) {
	req := require.New(t)
	s, session, messages := newTestStore(t)

	session.EXPECT().SignIn(gomock.Any(), "a@x.com", "pw").
		Return("a@x.com", nil).Times(2)
	messages.EXPECT().Subscribe(gomock.Any()).Return(feed(make(chan domain.Snapshot)), nil).Times(1)

	s.LogIn(context.Background(), "a@x.com", "pw")
	s.LogIn(context.Background(), "a@x.com", "pw")

	req.True(*s.State().LoggedIn)
}

func Test_Close_Releases_The_Subscription(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	session := mocks.NewMockSessionGateway(ctrl)
	messages := mocks.NewMockMessageGateway(ctrl)
	s := New(slog.Default(), session, messages, observability.NewClientStats(slog.Default()))

	var subCtx context.Context
	session.EXPECT().CurrentUser(gomock.Any()).Return("a@x.com", true).Times(1)
	messages.EXPECT().Subscribe(gomock.Any()).
		Do(func(ctx context.Context) { subCtx = ctx }).
		Return(feed(make(chan domain.Snapshot)), nil).
		Times(1)

	s.Initialize(context.Background())
	req.NoError(subCtx.Err())

	s.Close()
	req.Error(subCtx.Err())
}

func Test_Watch_Is_Seeded_And_Carries_The_Freshest_State(t *testing.T) {
	req := require.New(t)
	s, session, messages := newTestStore(t)

	session.EXPECT().CurrentUser(gomock.Any()).Return("", false).Times(1)
	messages.EXPECT().Subscribe(gomock.Any()).Times(0)

	watch := s.Watch(context.Background())

	// Seeded immediately with the unresolved state.
	seed := <-watch
	req.Nil(seed.LoggedIn)

	s.Initialize(context.Background())

	req.Eventually(func() bool {
		select {
		case state := <-watch:
			return state.LoggedIn != nil && !*state.LoggedIn
		default:
			return false
		}
	}, waitFor, tick)
}
