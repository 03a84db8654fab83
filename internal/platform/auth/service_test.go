package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"library-backend/internal/platform/auth"
)

type memAccounts struct {
	byID map[string]*auth.Account
}

func (m *memAccounts) GetByID(_ context.Context, id string) (*auth.Account, error) {
	return m.byID[id], nil
}

func (m *memAccounts) Create(_ context.Context, a *auth.Account) error {
	m.byID[a.ID] = a
	return nil
}

func newAccounts(t *testing.T) *memAccounts {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	return &memAccounts{byID: map[string]*auth.Account{
		"alice":  {ID: "alice", PasswordHash: string(hash), Role: auth.RoleStudent, ProfileID: "student-1"},
		"frozen": {ID: "frozen", PasswordHash: string(hash), Role: auth.RoleStudent, ProfileID: "student-2", IsDisabled: true},
	}}
}

func Test_Login_IssuesTokenWithProfile(t *testing.T) {
	secret := []byte("test-secret")
	svc := auth.NewService(newAccounts(t), secret, time.Hour)

	tokenStr, err := svc.Login(context.Background(), "alice", "correct-horse")
	require.NoError(t, err)

	token, err := jwt.Parse(tokenStr, func(*jwt.Token) (any, error) { return secret, nil })
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "alice", claims["sub"])
	assert.Equal(t, "student-1", claims["profile_id"])
	assert.Equal(t, auth.RoleStudent, claims["role"])
}

func Test_Login_Rejects(t *testing.T) {
	svc := auth.NewService(newAccounts(t), []byte("s"), time.Hour)

	tests := []struct {
		name, id, password string
	}{
		{name: "wrong_password", id: "alice", password: "nope"},
		{name: "unknown_account", id: "bob", password: "correct-horse"},
		{name: "disabled_account", id: "frozen", password: "correct-horse"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tc.id, tc.password)
			assert.ErrorIs(t, err, auth.ErrAuthFailed)
		})
	}
}

func Test_Register(t *testing.T) {
	accounts := newAccounts(t)
	svc := auth.NewService(accounts, []byte("s"), time.Hour)

	require.NoError(t, svc.Register(context.Background(), "carol", "password123", auth.RoleStaff, "staff-9"))
	assert.Equal(t, "staff-9", accounts.byID["carol"].ProfileID)
	assert.NotEqual(t, "password123", accounts.byID["carol"].PasswordHash)

	assert.ErrorIs(t, svc.Register(context.Background(), "alice", "password123", auth.RoleStudent, "x"), auth.ErrAlreadyExists)
	assert.ErrorIs(t, svc.Register(context.Background(), "dave", "password123", "admin", "x"), auth.ErrInvalidRole)
}
