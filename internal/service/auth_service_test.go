package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Tomlord1122/task-manager/internal/repository"
)

func TestRegister_IssuesVerifiableToken(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t, newTestDB(t))

	resp, err := svc.Register(ctx, RegisterRequest{Email: "a@x.com", Secret: "secret1"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	userID, err := svc.Verify(resp.Token)
	require.NoError(t, err)

	user, err := svc.CurrentUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
}

func TestRegister_NormalizesEmailAndHashesSecret(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newAuthService(t, db)

	_, err := svc.Register(ctx, RegisterRequest{Email: "  Alice@Example.COM ", Secret: "secret1"})
	require.NoError(t, err)

	stored, err := repository.NewGormUserRepository(db).FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t, newTestDB(t))

	_, err := svc.Register(ctx, RegisterRequest{Email: "a@x.com", Secret: "secret1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Email: "A@X.com", Secret: "another"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRegister_Validation(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t, newTestDB(t))

	tests := []struct {
		name string
		req  RegisterRequest
		msg  string
	}{
		{"short secret", RegisterRequest{Email: "a@x.com", Secret: "12345"}, "password must be at least 6 characters"},
		{"missing secret", RegisterRequest{Email: "a@x.com"}, "password is required"},
		{"missing email", RegisterRequest{Secret: "secret1"}, "email is required"},
		{"bad email", RegisterRequest{Email: "not-an-email", Secret: "secret1"}, "email is not valid"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.req)
			require.ErrorIs(t, err, ErrValidation)
			assert.EqualError(t, err, tc.msg)
		})
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t, newTestDB(t))

	_, err := svc.Register(ctx, RegisterRequest{Email: "a@x.com", Secret: "secret1"})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, LoginRequest{Email: " A@x.com", Secret: "secret1"})
	require.NoError(t, err)
	_, err = svc.Verify(resp.Token)
	assert.NoError(t, err)

	_, wrongSecret := svc.Login(ctx, LoginRequest{Email: "a@x.com", Secret: "wrong"})
	_, unknownEmail := svc.Login(ctx, LoginRequest{Email: "nobody@x.com", Secret: "secret1"})

	assert.ErrorIs(t, wrongSecret, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongSecret.Error(), unknownEmail.Error())
}

func TestSecretByteLimit(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(t, newTestDB(t))

	tooLong := strings.Repeat("s", maxSecretBytes+1)
	_, err := svc.Register(ctx, RegisterRequest{Email: "long@x.com", Secret: tooLong})
	require.ErrorIs(t, err, ErrValidation)
	assert.EqualError(t, err, "password cannot exceed 72 bytes")

	// Multi-byte runes count by bytes: 25 three-byte runes is 75 bytes.
	_, err = svc.Register(ctx, RegisterRequest{Email: "runes@x.com", Secret: strings.Repeat("€", 25)})
	require.ErrorIs(t, err, ErrValidation)

	exact := strings.Repeat("s", maxSecretBytes)
	_, err = svc.Register(ctx, RegisterRequest{Email: "exact@x.com", Secret: exact})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "exact@x.com", Secret: exact})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "exact@x.com", Secret: exact + "EXTRA"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@x.com", Secret: exact + "EXTRA"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerify(t *testing.T) {
	svc := newAuthService(t, newTestDB(t))

	_, err := svc.Verify("")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.Verify("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCurrentUser_Missing(t *testing.T) {
	svc := newAuthService(t, newTestDB(t))

	_, err := svc.CurrentUser(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewAuthService_RejectsBadCost(t *testing.T) {
	_, err := NewAuthService(nil, nil, bcrypt.MaxCost+1, discard)
	assert.Error(t, err)
}
