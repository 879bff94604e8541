package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/banterhq/banter/domain/model"
	"github.com/banterhq/banter/infrastructure/config"
	"github.com/banterhq/banter/infrastructure/logger"
	pgrepo "github.com/banterhq/banter/infrastructure/persistence/repository"
	"github.com/banterhq/banter/infrastructure/token"
)

type fakeUserRepo struct {
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, pgrepo.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, pgrepo.ErrUserNotFound
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, pgrepo.ErrUserNotFound
}

func (f *fakeUserRepo) SearchExcluding(_ context.Context, userID string) ([]*model.User, error) {
	var out []*model.User
	for _, u := range f.users {
		if u.ID != userID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	delete(f.users, id)
	return nil
}

func newTestUseCase() (AuthUseCase, *token.Manager) {
	tokens := token.NewManager(&config.Config{
		Auth: config.AuthConfig{
			AccessTokenSecret:  "access-secret-for-tests",
			RefreshTokenSecret: "refresh-secret-for-tests",
			AccessTokenExpiry:  time.Minute,
			RefreshTokenExpiry: time.Hour,
			Issuer:             "banter-test",
		},
	})
	log := &logger.Logger{Log: zap.NewNop()}
	return NewAuthUseCase(newFakeUserRepo(), tokens, nil, log), tokens
}

func TestRegisterAndLogin(t *testing.T) {
	uc, tokens := newTestUseCase()

	user, err := uc.Register(context.Background(), "alice", "alice@example.com", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, user.Role)

	// The stored password is a hash, never the plaintext.
	assert.NotEqual(t, "correct horse battery", user.Password)

	got, pair, err := uc.Login(context.Background(), "alice@example.com", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	userID, err := tokens.VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	userID, err = tokens.VerifyRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	uc, _ := newTestUseCase()

	_, err := uc.Register(context.Background(), "alice", "alice@example.com", "password123")
	require.NoError(t, err)

	_, err = uc.Register(context.Background(), "alice2", "alice@example.com", "password123")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	uc, _ := newTestUseCase()

	_, err := uc.Register(context.Background(), "alice", "alice@example.com", "password123")
	require.NoError(t, err)

	_, err = uc.Register(context.Background(), "alice", "other@example.com", "password123")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLoginWrongPassword(t *testing.T) {
	uc, _ := newTestUseCase()

	_, err := uc.Register(context.Background(), "alice", "alice@example.com", "password123")
	require.NoError(t, err)

	_, _, err = uc.Login(context.Background(), "alice@example.com", "password124")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	uc, _ := newTestUseCase()

	_, _, err := uc.Login(context.Background(), "ghost@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRejectsInvalidToken(t *testing.T) {
	uc, _ := newTestUseCase()

	_, err := uc.Refresh(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, token.ErrUnauthenticated)
}

func TestLogoutWithInvalidTokenIsNoOp(t *testing.T) {
	uc, _ := newTestUseCase()

	assert.NoError(t, uc.Logout(context.Background(), ""))
	assert.NoError(t, uc.Logout(context.Background(), "not-a-token"))
}
