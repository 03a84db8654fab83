package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleStaff   = "staff"
	RoleStudent = "student"
)

var (
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidRole   = errors.New("invalid role")
	ErrAuthFailed    = errors.New("authentication failed")
)

type AuthService interface {
	Login(ctx context.Context, id, password string) (string, error)
	Register(ctx context.Context, id, password, role, profileID string) error
}

type Service struct {
	store  AccountStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(store AccountStore, secret []byte, ttl time.Duration) *Service {
	return &Service{store: store, secret: secret, ttl: ttl, now: time.Now}
}

func (s *Service) Login(ctx context.Context, id, password string) (string, error) {
	acct, err := s.store.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if acct == nil || acct.IsDisabled {
		return "", ErrAuthFailed
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return "", ErrAuthFailed
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        acct.ID,
		"profile_id": acct.ProfileID,
		"role":       acct.Role,
		"exp":        s.now().Add(s.ttl).Unix(),
	})
	return token.SignedString(s.secret)
}

func (s *Service) Register(ctx context.Context, id, password, role, profileID string) error {
	if role != RoleStaff && role != RoleStudent {
		return ErrInvalidRole
	}
	exists, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if exists != nil {
		return ErrAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.store.Create(ctx, &Account{
		ID:           id,
		PasswordHash: string(hash),
		Role:         role,
		ProfileID:    profileID,
	})
}
