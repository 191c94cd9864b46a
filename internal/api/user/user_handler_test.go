package user

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mfcoelho/go-todo-api/internal/api/auth"
	"github.com/mfcoelho/go-todo-api/internal/types"
)

// MockUserService is a mock implementation of the UserService interface
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetProfile(ctx context.Context, id uuid.UUID) (*types.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockUserService) UploadProfilePhoto(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, filename, reader, size, contentType)
	return args.String(0), args.Error(1)
}

func authedRequest(method, target string, body io.Reader, user types.AuthUser) *http.Request {
	req := httptest.NewRequest(method, target, body)
	return req.WithContext(auth.WithAuthUser(req.Context(), user))
}

func TestGetProfileHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewUserHandler(mockService, slog.Default())
		stored := &types.User{ID: uuid.New(), Name: "Test User", Email: "test@example.com"}

		mockService.On("GetProfile", mock.Anything, stored.ID).Return(stored, nil).Once()

		req := authedRequest(http.MethodGet, "/profile", nil, types.AuthUser{
			ID:    stored.ID.String(),
			Email: stored.Email,
			Name:  stored.Name,
		})
		w := httptest.NewRecorder()

		handler.GetProfile(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var got types.User
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, stored.Email, got.Email)
		// The password hash must never leave the server.
		assert.NotContains(t, w.Body.String(), "password")
		mockService.AssertExpectations(t)
	})

	t.Run("NoIdentityInContext", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewUserHandler(mockService, slog.Default())

		req := httptest.NewRequest(http.MethodGet, "/profile", nil)
		w := httptest.NewRecorder()

		handler.GetProfile(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockService.AssertNotCalled(t, "GetProfile", mock.Anything, mock.Anything)
	})

	t.Run("UserNotFound", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewUserHandler(mockService, slog.Default())
		id := uuid.New()

		mockService.On("GetProfile", mock.Anything, id).Return(nil, types.ErrNotFound).Once()

		req := authedRequest(http.MethodGet, "/profile", nil, types.AuthUser{ID: id.String()})
		w := httptest.NewRecorder()

		handler.GetProfile(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"Usuário não encontrado"}`, w.Body.String())
	})

	t.Run("MalformedSubject", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewUserHandler(mockService, slog.Default())

		req := authedRequest(http.MethodGet, "/profile", nil, types.AuthUser{ID: "not-a-uuid"})
		w := httptest.NewRecorder()

		handler.GetProfile(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"Usuário não encontrado"}`, w.Body.String())
	})
}

func photoUploadRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/profile/photo", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadPhotoHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewUserHandler(mockService, slog.Default())

		mockService.On("UploadProfilePhoto", mock.Anything, "avatar.png", mock.Anything,
			mock.AnythingOfType("int64"), mock.AnythingOfType("string")).
			Return("https://cdn.example.com/photos/profile_123_avatar.png", nil).Once()

		req := photoUploadRequest(t, "photo", "avatar.png", []byte("fake-png-bytes"))
		w := httptest.NewRecorder()

		handler.UploadPhoto(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"url":"https://cdn.example.com/photos/profile_123_avatar.png"}`, w.Body.String())
		mockService.AssertExpectations(t)
	})

	t.Run("NoFile", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewUserHandler(mockService, slog.Default())

		// Multipart body carrying the wrong field name
		req := photoUploadRequest(t, "file", "avatar.png", []byte("fake-png-bytes"))
		w := httptest.NewRecorder()

		handler.UploadPhoto(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"Nenhum arquivo enviado"}`, w.Body.String())
		mockService.AssertNotCalled(t, "UploadProfilePhoto",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NotMultipart", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewUserHandler(mockService, slog.Default())

		req := httptest.NewRequest(http.MethodPost, "/profile/photo", bytes.NewBufferString("raw body"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		handler.UploadPhoto(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"Nenhum arquivo enviado"}`, w.Body.String())
	})

	t.Run("StorageError", func(t *testing.T) {
		mockService := new(MockUserService)
		handler := NewUserHandler(mockService, slog.Default())

		mockService.On("UploadProfilePhoto", mock.Anything, "avatar.png", mock.Anything,
			mock.AnythingOfType("int64"), mock.AnythingOfType("string")).
			Return("", errors.New("bucket unreachable")).Once()

		req := photoUploadRequest(t, "photo", "avatar.png", []byte("fake-png-bytes"))
		w := httptest.NewRecorder()

		handler.UploadPhoto(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"Erro ao fazer upload da imagem"}`, w.Body.String())
	})
}
