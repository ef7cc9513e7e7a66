package services

import (
	"testing"

	"freelancehub/internal/auth"
	"freelancehub/internal/models"
	"freelancehub/internal/repositories"
	"freelancehub/internal/services/dto"
	"freelancehub/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService() AuthService {
	return NewAuthService(repositories.NewUserRepository())
}

func registerReq(email, username, role string) *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Email:    email,
		Password: "s3cret-pass",
		Username: username,
		Role:     role,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService()

	resp, err := svc.Register(db, registerReq("ann@example.com", "ann", "freelancer"))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, models.UserRoleFreelancer, resp.User.Role)

	claims, err := auth.ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	login, err := svc.Login(db, &dto.LoginRequest{Email: "ann@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService()

	_, err := svc.Register(db, registerReq("bob@example.com", "bob", "client"))
	require.NoError(t, err)

	_, err = svc.Register(db, registerReq("bob@example.com", "bob2", "client"))
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeAlreadyExists, appErr.Code)
}

func TestRegisterAdminForbidden(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService()

	_, err := svc.Register(db, registerReq("root@example.com", "root", "admin"))
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService()

	_, err := svc.Register(db, registerReq("eve@example.com", "eve", "client"))
	require.NoError(t, err)

	_, err = svc.Login(db, &dto.LoginRequest{Email: "eve@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	// unknown email yields the same opaque error
	_, err = svc.Login(db, &dto.LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}
