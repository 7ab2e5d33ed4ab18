package service

import (
	"context"
	"testing"
	"time"

	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/tokens"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(t *testing.T) *AuthService {
	return &AuthService{
		Repo:      newTestRepo(t),
		JWTSecret: []byte("test-jwt-secret"),
		AccessTTL: 15 * time.Minute,
	}
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, transport.RegisterRequest{Username: "jane", Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "user", u.Role)
	assert.NotEqual(t, "secret1", u.PasswordHash)

	_, err = svc.Register(ctx, transport.RegisterRequest{Username: "jane", Email: "other@example.com", Password: "secret2"})
	assert.ErrorIs(t, err, ErrConflict)

	res, err := svc.Login(ctx, transport.LoginRequest{Username: "jane", Password: "secret1"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), res.AccessExp, 5*time.Second)

	claims, err := tokens.AccessClaimsFromToken(res.AccessToken, svc.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), claims.Subject)
	assert.Equal(t, "user", claims.Role)

	me, err := svc.Me(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane", me.Username)

	_, err = svc.Me(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthService_LoginFailures(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, transport.RegisterRequest{Username: "jane", Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		req     transport.LoginRequest
		wantErr error
	}{
		{name: "wrong password", req: transport.LoginRequest{Username: "jane", Password: "nope"}, wantErr: ErrUnauthorized},
		{name: "unknown user", req: transport.LoginRequest{Username: "john", Password: "secret1"}, wantErr: ErrUnauthorized},
		{name: "empty username", req: transport.LoginRequest{Password: "secret1"}, wantErr: ErrValidation},
		{name: "empty password", req: transport.LoginRequest{Username: "jane"}, wantErr: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Login(ctx, tt.req)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := newTestAuthService(t)

	_, err := svc.Register(context.Background(), transport.RegisterRequest{Username: "ab", Email: "x", Password: "1"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "username")
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "password")
}

func TestAuthService_CreateAdminPromotes(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, transport.RegisterRequest{Username: "boss", Email: "boss@example.com", Password: "secret1"})
	require.NoError(t, err)

	admin, err := svc.CreateAdmin(ctx, transport.RegisterRequest{Username: "boss", Email: "boss@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, admin.ID)
	assert.Equal(t, "admin", admin.Role)

	fresh, err := svc.CreateAdmin(ctx, transport.RegisterRequest{Username: "root", Email: "root@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "admin", fresh.Role)
}
