package types

import "github.com/golang-jwt/jwt/v5"

// Claims are the custom claims embedded in the access token. The subject id
// travels in RegisteredClaims.Subject.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// AuthUser is the verified identity the authentication gate attaches to the
// request context. It is built from token claims only, never re-fetched.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
