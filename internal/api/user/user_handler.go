package user

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/mfcoelho/go-todo-api/internal/api"
	"github.com/mfcoelho/go-todo-api/internal/api/auth"
	"github.com/mfcoelho/go-todo-api/internal/types"
)

// maxPhotoBytes caps multipart memory for profile photo uploads (8MB).
const maxPhotoBytes = 8 << 20

type UserHandler struct {
	userService UserService
	logger      *slog.Logger
}

func NewUserHandler(userService UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// GetProfile handles GET /profile. The identity comes from the token claims
// attached by the authentication gate; the fresh user row is fetched so the
// profile reflects persisted state.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetProfile"))

	authUser, ok := auth.GetAuthUserFromContext(ctx)
	if !ok {
		l.ErrorContext(ctx, "Identity not found in context")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Token não fornecido")
		return
	}

	id, err := uuid.Parse(authUser.ID)
	if err != nil {
		l.ErrorContext(ctx, "Invalid subject id in token", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusNotFound, "Usuário não encontrado")
		return
	}

	profile, err := h.userService.GetProfile(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Usuário não encontrado")
			return
		}
		l.ErrorContext(ctx, "Failed to get profile", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, profile)
}

// UploadPhoto handles POST /profile/photo. The photo travels as the
// multipart field "photo".
func (h *UserHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "UploadPhoto"))

	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Nenhum arquivo enviado")
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Nenhum arquivo enviado")
		return
	}
	defer file.Close()

	url, err := h.userService.UploadProfilePhoto(ctx, header.Filename, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		l.ErrorContext(ctx, "Failed to upload photo", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Erro ao fazer upload da imagem")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]string{"url": url})
}
