package types

import "errors"

// Domain error variants. Handlers match these with errors.Is and translate
// them to HTTP statuses; anything unmatched surfaces as a generic 500.
var (
	ErrNotFound           = errors.New("requested item not found")
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)
