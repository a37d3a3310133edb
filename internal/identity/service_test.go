package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	tokens := NewTokenService(TokenConfig{Secret: "test-secret", Issuer: "tinttrack-test", Expiration: time.Hour})
	svc := NewService(NewMemoryUserStore(), tokens, NewMemoryRevocationList(), zaptest.NewLogger(t))
	svc.cost = bcrypt.MinCost
	return svc
}

func TestSignUpAndSignIn(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	session, err := svc.SignUp(ctx, SignUpInput{Email: " Ana@Example.com ", Password: "secret1", DisplayName: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", session.User.Email)
	assert.NotEmpty(t, session.Token.AccessToken)
	assert.Equal(t, "Bearer", session.Token.TokenType)

	signedIn, err := svc.SignIn(ctx, SignInInput{Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, signedIn.User.ID)

	p, err := svc.Authenticate(ctx, signedIn.Token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, p.UserID)
	assert.Equal(t, "Ana", p.DisplayName)
}

func TestSignUp_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   SignUpInput
		want error
	}{
		{"bad email", SignUpInput{Email: "nope", Password: "secret1", DisplayName: "Ana"}, ErrInvalidEmail},
		{"short password", SignUpInput{Email: "a@b.com", Password: "123", DisplayName: "Ana"}, ErrWeakPassword},
		{"short name", SignUpInput{Email: "a@b.com", Password: "secret1", DisplayName: "A"}, ErrInvalidName},
		{"missing email", SignUpInput{Password: "secret1", DisplayName: "Ana"}, ErrInvalidEmail},
		{"blank name", SignUpInput{Email: "a@b.com", Password: "secret1", DisplayName: "   "}, ErrInvalidName},
		{"email reported first", SignUpInput{Email: "nope", Password: "1", DisplayName: ""}, ErrInvalidEmail},
		{"password before name", SignUpInput{Email: "a@b.com", Password: "12345", DisplayName: "A"}, ErrWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SignUp(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSignUpInput_Validate(t *testing.T) {
	in := SignUpInput{Email: " Jose@Loja.com ", Password: "secret", DisplayName: " Zé "}
	require.NoError(t, in.Validate())
	assert.Equal(t, "jose@loja.com", in.Email)
	assert.Equal(t, "Zé", in.DisplayName, "two runes are enough")

	msg, ok := FriendlyMessage((&SignUpInput{Email: "a@b.com", Password: "123", DisplayName: "Ana"}).Validate())
	assert.True(t, ok)
	assert.Equal(t, "A senha deve ter pelo menos 6 caracteres.", msg)
}

func TestCurrentUser(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	session, err := svc.SignUp(ctx, SignUpInput{Email: "ana@example.com", Password: "secret1", DisplayName: "Ana"})
	require.NoError(t, err)
	p, err := svc.Authenticate(ctx, session.Token.AccessToken)
	require.NoError(t, err)

	u, err := svc.CurrentUser(WithPrincipal(ctx, p))
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, u.ID)
	assert.Equal(t, "ana@example.com", u.Email)

	_, err = svc.CurrentUser(WithPrincipal(ctx, Principal{UserID: "deleted"}))
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.CurrentUser(ctx)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, SignUpInput{Email: "ana@example.com", Password: "secret1", DisplayName: "Ana"})
	require.NoError(t, err)

	_, err = svc.SignUp(ctx, SignUpInput{Email: "ANA@example.com", Password: "secret2", DisplayName: "Ana 2"})
	assert.ErrorIs(t, err, ErrEmailInUse)
}

func TestSignIn_WrongPassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, SignUpInput{Email: "ana@example.com", Password: "secret1", DisplayName: "Ana"})
	require.NoError(t, err)

	_, err = svc.SignIn(ctx, SignInInput{Email: "ana@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.SignIn(ctx, SignInInput{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignOut_RevokesToken(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	session, err := svc.SignUp(ctx, SignUpInput{Email: "ana@example.com", Password: "secret1", DisplayName: "Ana"})
	require.NoError(t, err)

	p, err := svc.Authenticate(ctx, session.Token.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(WithPrincipal(ctx, p)))

	_, err = svc.Authenticate(ctx, session.Token.AccessToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestSignOut_RequiresPrincipal(t *testing.T) {
	svc := newTestService(t)
	assert.ErrorIs(t, svc.SignOut(context.Background()), ErrUnauthenticated)
}

type failingRevocations struct{}

func (failingRevocations) Revoke(context.Context, string, time.Duration) error {
	return errors.New("redis down")
}

func (failingRevocations) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestAuthenticate_RevocationLookupFailsOpen(t *testing.T) {
	tokens := NewTokenService(TokenConfig{Secret: "s", Issuer: "i", Expiration: time.Hour})
	svc := NewService(NewMemoryUserStore(), tokens, failingRevocations{}, zaptest.NewLogger(t))

	tok, err := tokens.Issue(&User{ID: "u1", Email: "a@b.com"})
	require.NoError(t, err)

	p, err := svc.Authenticate(context.Background(), tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", p.UserID)
}

func TestFriendlyMessage(t *testing.T) {
	msg, ok := FriendlyMessage(ErrInvalidCredentials)
	assert.True(t, ok)
	assert.Equal(t, "E-mail ou senha inválidos.", msg)

	msg, ok = FriendlyMessage(errors.New("boom"))
	assert.False(t, ok)
	assert.NotEmpty(t, msg)
}

func TestPrincipalContext(t *testing.T) {
	_, ok := PrincipalFrom(context.Background())
	assert.False(t, ok)

	_, err := RequirePrincipal(WithPrincipal(context.Background(), Principal{}))
	assert.ErrorIs(t, err, ErrUnauthenticated)

	p, err := RequirePrincipal(WithPrincipal(context.Background(), Principal{UserID: "u1"}))
	require.NoError(t, err)
	assert.Equal(t, "u1", p.UserID)
}
