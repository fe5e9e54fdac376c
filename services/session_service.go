package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"chat-client/auth"
	"chat-client/contract"
	"chat-client/errors"
	"chat-client/repositories"
)

// SessionService is the embedded identity provider behind the
// SessionGateway contract. The account email doubles as the public chat
// identity: it is what messages are authored as and what CurrentUser
// resolves to.
type SessionService struct {
	users         repositories.IUserRepository
	sessions      repositories.ISessionRepository
	log           *slog.Logger
	tokenDuration time.Duration
}

func NewSessionService(users repositories.IUserRepository,
	sessions repositories.ISessionRepository, log *slog.Logger,
	tokenDuration time.Duration) contract.SessionGateway {
	return &SessionService{
		users:         users,
		sessions:      sessions,
		log:           log,
		tokenDuration: tokenDuration,
	}
}

// CurrentUser resolves the device's persisted session token.
// A missing, expired, or tampered token means no session; that is a normal
// state and never an error.
func (s *SessionService) CurrentUser(_ context.Context) (string, bool) {
	token, err := s.sessions.LoadToken()
	if err != nil {
		s.log.Warn("could not read stored session", "error", err)
		return "", false
	}
	if token == "" {
		return "", false
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		s.log.Debug("stored session rejected", "error", err)
		return "", false
	}

	return claims.Email, true
}

func (s *SessionService) SignIn(_ context.Context, email, password string) (string, error) {
	// 1. Retrieve the account; an absent key surfaces as ErrInvalidUser so
	// the caller can fall back to registration.
	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		return "", err
	}

	// 2. Compare the provided password with the stored hash
	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}

	// 3. Issue and persist the resumable session token
	if err := s.persistSession(user); err != nil {
		return "", err
	}

	return user.Email, nil
}

func (s *SessionService) SignUp(_ context.Context, email, password string) (string, error) {
	creds := auth.Credentials{
		Email:    email,
		Password: password,
	}

	// 1. Validate business rules (email format, password complexity)
	// We check this before any expensive cryptographic operation.
	if err := auth.ValidateCredentials(creds); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrInvalidPassword, err)
	}

	// 2. Hash the password using Argon2id
	// Done in the service layer to keep the repository unaware of plain passwords.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}

	// 3. Persist the account with the generated hash
	user, err := s.users.CreateUser(email, hashedPassword)
	if err != nil {
		return "", err // Will propagate ErrUserAlreadyExists if email is taken
	}

	// 4. Generate the initial session token
	if err := s.persistSession(user); err != nil {
		return "", err
	}

	return user.Email, nil
}

func (s *SessionService) persistSession(user repositories.User) error {
	token, err := auth.GenerateToken(user.ID, user.Email, s.tokenDuration)
	if err != nil {
		return errors.ErrTokenGeneration
	}

	// A token that cannot be stored only degrades session resume; the
	// current login still succeeds.
	if err := s.sessions.SaveToken(token); err != nil {
		s.log.Warn("could not persist session token", "error", err)
	}
	return nil
}
