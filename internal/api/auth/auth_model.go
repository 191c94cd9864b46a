package auth

import "github.com/mfcoelho/go-todo-api/internal/types"

// SignupRequest represents the expected JSON body for user registration.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SigninRequest represents the expected JSON body for user login.
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by both signup and signin.
type AuthResponse struct {
	User        *types.User `json:"user"`
	AccessToken string      `json:"accessToken"`
}
