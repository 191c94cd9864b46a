package user

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mfcoelho/go-todo-api/app/storage"
	"github.com/mfcoelho/go-todo-api/internal/types"
)

var _ UserService = (*UserServiceImpl)(nil)

type UserService interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*types.User, error)
	// UploadProfilePhoto stores the photo in the object store under
	// "profile_<timestamp>_<original filename>" and returns its public URL.
	UploadProfilePhoto(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error)
}

type UserServiceImpl struct {
	logger  *slog.Logger
	repo    UserRepo
	storage storage.ObjectStorage
}

func NewUserService(repo UserRepo, objectStorage storage.ObjectStorage, logger *slog.Logger) *UserServiceImpl {
	return &UserServiceImpl{
		logger:  logger,
		repo:    repo,
		storage: objectStorage,
	}
}

func (s *UserServiceImpl) GetProfile(ctx context.Context, id uuid.UUID) (*types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserServiceImpl) UploadProfilePhoto(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	if s.storage == nil {
		return "", fmt.Errorf("object storage is not configured")
	}

	objectName := fmt.Sprintf("profile_%d_%s", time.Now().UnixMilli(), filename)

	url, err := s.storage.Upload(ctx, objectName, reader, size, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload profile photo: %w", err)
	}

	s.logger.InfoContext(ctx, "Profile photo uploaded", slog.String("object", objectName))
	return url, nil
}
