package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mfcoelho/go-todo-api/internal/types"
)

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService orchestrates registration and login.
type AuthService interface {
	// Register fails with types.ErrEmailInUse when the email is already
	// taken; no second row is created. On success the user is persisted and
	// an access token issued.
	Register(ctx context.Context, name, email, password string) (*types.User, string, error)
	// Login fails with types.ErrInvalidCredentials both for an unknown
	// email and for a wrong password, so callers cannot tell which field
	// was wrong.
	Login(ctx context.Context, email, password string) (*types.User, string, error)
}

type AuthServiceImpl struct {
	logger *slog.Logger
	repo   AuthRepo
	hasher PasswordHasher
	tokens TokenService
}

func NewAuthService(repo AuthRepo, hasher PasswordHasher, tokens TokenService, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		logger: logger,
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, name, email, password string) (*types.User, string, error) {
	l := s.logger.With(slog.String("method", "Register"))

	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		return nil, "", fmt.Errorf("failed to check existing email: %w", err)
	}
	if existing != nil {
		l.WarnContext(ctx, "Registration attempt with email already in use")
		return nil, "", types.ErrEmailInUse
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, name, email, hash)
	if err != nil {
		return nil, "", fmt.Errorf("failed to persist user: %w", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	l.InfoContext(ctx, "User registered", slog.String("user_id", user.ID.String()))
	return user, token, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*types.User, string, error) {
	l := s.logger.With(slog.String("method", "Login"))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			// Same error as a wrong password: do not leak which field failed
			return nil, "", types.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		l.WarnContext(ctx, "Login attempt with wrong password", slog.String("user_id", user.ID.String()))
		return nil, "", types.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	return user, token, nil
}
