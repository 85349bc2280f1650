package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"fleet/internal/auth"
	"fleet/internal/domain"
	"fleet/internal/repository"
)

// TokenIssuer issues access tokens for authenticated users.
type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// AuthService handles registration, login and user lookups.
type AuthService struct {
	repos  repository.Repositories
	tx     repository.Transactor
	hasher PasswordHasher
	issuer TokenIssuer
	now    func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(repos repository.Repositories, tx repository.Transactor, hasher PasswordHasher, issuer TokenIssuer) *AuthService {
	return &AuthService{
		repos:  repos,
		tx:     tx,
		hasher: hasher,
		issuer: issuer,
		now:    time.Now,
	}
}

// RegisterRequest contains the parameters for creating an account.
type RegisterRequest struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     domain.Role // Optional: defaults to CUSTOMER
}

// AuthResult is a user together with a fresh access token.
type AuthResult struct {
	User  *domain.User
	Token string
}

// Register creates a self-service account. Dealers get a fleet profile
// named after them. Admin accounts cannot self-register.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	if req.Role == "" {
		req.Role = domain.RoleCustomer
	}
	if !req.Role.Valid() {
		return nil, ErrInvalidRole
	}
	if req.Role == domain.RoleAdmin {
		return nil, ErrForbidden
	}

	user, err := s.createUser(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// CreateAdmin creates an ADMIN account. Only reachable from the operator CLI.
func (s *AuthService) CreateAdmin(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	req.Role = domain.RoleAdmin
	return s.createUser(ctx, req)
}

func (s *AuthService) createUser(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password", ErrMissingField)
	}

	if _, err := s.repos.Users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        email,
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         req.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		if err := repos.Users.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrEmailTaken
			}
			return err
		}
		if user.Role != domain.RoleDealer {
			return nil
		}
		return repos.Dealers.Create(ctx, &domain.Dealer{
			ID:                uuid.New().String(),
			UserID:            user.ID,
			CompanyName:       user.Name + "'s Fleet",
			CommissionPercent: domain.DefaultDealerCommissionPercent,
			CreatedAt:         now,
		})
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)
	return user, nil
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.repos.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, notFound(err, ErrInvalidCredentials)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	return s.issue(user)
}

// Me returns the caller's account.
func (s *AuthService) Me(ctx context.Context, caller domain.Identity) (*domain.User, error) {
	user, err := s.repos.Users.GetByID(ctx, caller.UserID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return user, nil
}

// ListUsers returns every account. Admin only.
func (s *AuthService) ListUsers(ctx context.Context, caller domain.Identity) ([]*domain.User, error) {
	if !caller.Is(domain.RoleAdmin) {
		return nil, ErrForbidden
	}
	return s.repos.Users.GetAll(ctx)
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, err := s.issuer.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}
