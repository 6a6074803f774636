// Package auth is the credential collaborator: it verifies logins and
// registers accounts. The study core consumes only the resulting username
// and admin flag.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"flashdeck-service/internal/domain"
)

// CredentialStore is the slice of user storage the authenticator needs.
type CredentialStore interface {
	Get(ctx context.Context, username string) (domain.UserRecord, error)
	Create(ctx context.Context, user domain.UserRecord) error
}

// Service authenticates users against stored scrypt credentials.
type Service struct {
	users  CredentialStore
	hasher *PasswordHasher
	now    func() time.Time
}

func NewService(users CredentialStore) *Service {
	return &Service{
		users:  users,
		hasher: NewPasswordHasher(),
		now:    time.Now,
	}
}

// Authenticate returns the user record for valid credentials. Unknown users
// and wrong passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, username, password string) (domain.UserRecord, error) {
	user, err := s.users.Get(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.UserRecord{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.UserRecord{}, err
	}

	ok, err := s.hasher.Verify(password, user.Password)
	if err != nil || !ok {
		return domain.UserRecord{}, domain.ErrInvalidCredentials
	}
	return user, nil
}

// CreateUser registers a new account with zeroed stats.
func (s *Service) CreateUser(ctx context.Context, username, password string, isAdmin bool) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: username must not be empty", domain.ErrValidation)
	}
	if password == "" {
		return fmt.Errorf("%w: password must not be empty", domain.ErrValidation)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	return s.users.Create(ctx, domain.UserRecord{
		Username:  username,
		Password:  hash,
		Admin:     isAdmin,
		CreatedAt: s.now(),
	})
}
