package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mfcoelho/go-todo-api/internal/api"
	"github.com/mfcoelho/go-todo-api/internal/types"
)

type AuthHandler struct {
	authService AuthService
	logger      *slog.Logger
}

func NewAuthHandler(authService AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Signup handles POST /signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Signup"))

	var req SignupRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid signup body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Campos obrigatórios ausentes")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Campos obrigatórios ausentes")
		return
	}

	user, token, err := h.authService.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, types.ErrEmailInUse) {
			api.ErrorResponse(w, r, http.StatusConflict, "Email já está em uso")
			return
		}
		l.ErrorContext(ctx, "Registration failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, AuthResponse{
		User:        user,
		AccessToken: token,
	})
}

// Signin handles POST /signin.
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Signin"))

	var req SigninRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid signin body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Campos obrigatórios ausentes")
		return
	}
	if req.Email == "" || req.Password == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Campos obrigatórios ausentes")
		return
	}

	user, token, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, types.ErrInvalidCredentials) {
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Credenciais inválidas")
			return
		}
		l.ErrorContext(ctx, "Login failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, AuthResponse{
		User:        user,
		AccessToken: token,
	})
}
