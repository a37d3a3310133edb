package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"tinttrack/internal/logger"
)

// SignUpInput is the sign-up form.
type SignUpInput struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	DisplayName string `json:"displayName" validate:"required,min=2"`
}

// SignInInput is the sign-in form.
type SignInInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is returned on successful sign-up or sign-in.
type Session struct {
	User  *User  `json:"user"`
	Token *Token `json:"token"`
}

// Service signs users up, in and out, and authenticates bearer tokens.
type Service struct {
	users   UserStore
	tokens  *TokenService
	revoked RevocationList
	logger  *zap.Logger
	now     func() time.Time
	cost    int
}

// NewService creates a new Service.
func NewService(users UserStore, tokens *TokenService, revoked RevocationList, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if revoked == nil {
		revoked = NewMemoryRevocationList()
	}
	return &Service{
		users:   users,
		tokens:  tokens,
		revoked: revoked,
		logger:  logger,
		now:     time.Now,
		cost:    bcrypt.DefaultCost,
	}
}

// SignUp creates an account and signs it in.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*Session, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	email, name := in.Email, in.DisplayName

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  name,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if !errors.Is(err, ErrEmailInUse) {
			s.log(ctx).Error("failed to create user", zap.String("email", email), zap.Error(err))
		}
		return nil, err
	}

	s.log(ctx).Info("user signed up", zap.String("user_id", u.ID))
	return s.session(u)
}

// SignIn checks the credentials and issues a token.
func (s *Service) SignIn(ctx context.Context, in SignInInput) (*Session, error) {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.log(ctx).Error("failed to look up user", zap.Error(err))
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.log(ctx).Info("user signed in", zap.String("user_id", u.ID))
	return s.session(u)
}

// SignOut revokes the token of the principal in ctx until it expires.
func (s *Service) SignOut(ctx context.Context) error {
	p, err := RequirePrincipal(ctx)
	if err != nil {
		return err
	}
	ttl := p.ExpiresAt.Sub(s.now())
	if err := s.revoked.Revoke(ctx, p.TokenID, ttl); err != nil {
		s.log(ctx).Error("failed to revoke token", zap.String("user_id", p.UserID), zap.Error(err))
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	s.log(ctx).Info("user signed out", zap.String("user_id", p.UserID))
	return nil
}

// CurrentUser loads the account behind the principal in ctx. Tokens that
// outlive their account yield ErrUserNotFound.
func (s *Service) CurrentUser(ctx context.Context) (*User, error) {
	p, err := RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			s.log(ctx).Error("failed to load user", zap.String("user_id", p.UserID), zap.Error(err))
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
		return nil, err
	}
	return u, nil
}

// Authenticate turns a bearer token into a principal.
func (s *Service) Authenticate(ctx context.Context, raw string) (Principal, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return Principal{}, err
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		// Revocation lookups fail open.
		s.log(ctx).Error("failed to check token revocation", zap.String("jti", claims.ID), zap.Error(err))
	} else if revoked {
		return Principal{}, ErrTokenRevoked
	}

	p := Principal{
		UserID:      claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
		TokenID:     claims.ID,
	}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}

func (s *Service) session(u *User) (*Session, error) {
	tok, err := s.tokens.Issue(u)
	if err != nil {
		s.logger.Error("failed to issue token", zap.String("user_id", u.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &Session{User: u, Token: tok}, nil
}

// log returns the request-scoped logger when one is on ctx.
func (s *Service) log(ctx context.Context) *zap.Logger {
	return logger.FromContext(ctx, s.logger)
}
