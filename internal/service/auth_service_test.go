package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hexfit/gymops-api/internal/dto"
	"github.com/hexfit/gymops-api/internal/models"
	appErrors "github.com/hexfit/gymops-api/pkg/errors"
)

type userReaderStub struct {
	user *models.User
}

func (s userReaderStub) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, sql.ErrNoRows
	}
	return s.user, nil
}

func newAuthFixture(t *testing.T, active bool) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		ID:           "user-1",
		Email:        "front@desk.example",
		PasswordHash: string(hash),
		Role:         "manager",
		Active:       active,
	}
	return NewAuthService(userReaderStub{user: user}, "test-secret", time.Hour, nil, nil)
}

func TestLoginIssuesToken(t *testing.T) {
	svc := newAuthFixture(t, true)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Email: "front@desk.example", Password: "s3cret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "manager", claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newAuthFixture(t, true)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "front@desk.example", Password: "nope"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newAuthFixture(t, true)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "other@desk.example", Password: "s3cret"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginInactiveUser(t *testing.T) {
	svc := newAuthFixture(t, false)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "front@desk.example", Password: "s3cret"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthFixture(t, true)

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
