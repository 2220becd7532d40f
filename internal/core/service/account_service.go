package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ksalp/portal/internal/core/domain"
	"github.com/ksalp/portal/internal/core/ports"
)

// AccountService creates, loads and edits user records.
type AccountService struct {
	users  ports.UserRepository
	ids    idSource
	hasher *PasswordHasher
	now    func() time.Time
}

func NewAccountService(users ports.UserRepository, ids idSource, hasher *PasswordHasher) *AccountService {
	return &AccountService{users: users, ids: ids, hasher: hasher, now: time.Now}
}

func (s *AccountService) Create(ctx context.Context, params domain.NewUserParams) (*domain.User, error) {
	id, err := s.ids.Generate(ctx, domain.UserIDLength, domain.Base64URL)
	if err != nil {
		return nil, err
	}

	user, err := domain.NewUser(id, params, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.users.Insert(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AccountService) Load(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

// LoadByEmail matches the address exactly as stored.
func (s *AccountService) LoadByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.users.FindByEmail(ctx, email)
}

func (s *AccountService) Save(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	return s.users.Save(ctx, user)
}

func (s *AccountService) Update(ctx context.Context, id string, update domain.UserUpdate) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := user.Apply(update)
	if err != nil {
		return nil, err
	}

	if err := s.Save(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

// ChangePassword verifies the current password and stores a new salt and hash.
func (s *AccountService) ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	if newPassword == "" {
		return domain.NewValidationError("password", "must not be empty")
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.hasher.Check(oldPassword, user.Salt, user.Hash) {
		return domain.ErrWrongPassword
	}

	salt, err := NewSalt()
	if err != nil {
		return err
	}
	user.Salt = salt
	user.Hash = s.hasher.Hash(newPassword, salt)

	if err := s.users.Save(ctx, user); err != nil {
		return fmt.Errorf("save password: %w", err)
	}
	return nil
}
