package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"crm-platform/internal/auth"
	"crm-platform/internal/rbac"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound        = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrBadCredentials  = errors.New("incorrect email or password")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrForbidden       = errors.New("not authorized")
	ErrInactive        = errors.New("account is deactivated")
)

// Service handles registration and credential authentication. Token
// issuance is delegated to the auth manager.
type Service struct {
	repo   Repository
	tokens *auth.Manager
	clock  func() time.Time
}

func NewService(repo Repository, tokens *auth.Manager) *Service {
	return &Service{repo: repo, tokens: tokens, clock: time.Now}
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role,omitempty"`
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return User{}, ErrInvalidArgument
	}
	if len(req.Password) < 8 {
		return User{}, ErrInvalidArgument
	}
	role := req.Role
	if role == "" {
		role = rbac.RoleClient
	}
	if !rbac.IsKnownRole(role) {
		return User{}, ErrInvalidArgument
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return User{}, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	now := s.clock().UTC()
	u := User{
		ID:           uuid.NewString(),
		Email:        email,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         role,
		IsActive:     true,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and issues a JWT pair. Lookup failures and
// password mismatches collapse into one error so callers cannot probe for
// registered emails.
func (s *Service) Login(ctx context.Context, req LoginRequest) (Token, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Token{}, ErrBadCredentials
		}
		return Token{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return Token{}, ErrBadCredentials
	}
	if !u.IsActive {
		return Token{}, ErrInactive
	}

	pair, err := s.tokens.IssuePair(s.clock(), u.ID, u.Role)
	if err != nil {
		return Token{}, err
	}
	return Token{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		User:         u,
	}, nil
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh exchanges a valid refresh token for a new JWT pair. The user is
// reloaded so deactivation takes effect before the old pair expires.
func (s *Service) Refresh(ctx context.Context, req RefreshRequest) (Token, error) {
	claims, err := s.tokens.Verify(req.RefreshToken, auth.TokenTypeRefresh, s.clock())
	if err != nil {
		return Token{}, ErrBadCredentials
	}
	u, err := s.repo.Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Token{}, ErrBadCredentials
		}
		return Token{}, err
	}
	if !u.IsActive {
		return Token{}, ErrInactive
	}

	pair, err := s.tokens.IssuePair(s.clock(), u.ID, u.Role)
	if err != nil {
		return Token{}, err
	}
	return Token{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		User:         u,
	}, nil
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.repo.Get(ctx, id)
}

// List is admin-only; other roles only ever see themselves.
func (s *Service) List(ctx context.Context, role string) ([]User, error) {
	if !rbac.IsAdmin(role) {
		return nil, ErrForbidden
	}
	return s.repo.List(ctx)
}

// Deactivate blocks future logins without deleting account history.
func (s *Service) Deactivate(ctx context.Context, id, actorRole string) (User, error) {
	if !rbac.IsAdmin(actorRole) {
		return User{}, ErrForbidden
	}
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	u.IsActive = false
	u.UpdatedAt = s.clock().UTC()
	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}
