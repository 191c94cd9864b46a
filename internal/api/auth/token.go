package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mfcoelho/go-todo-api/config"
	"github.com/mfcoelho/go-todo-api/internal/api"
	"github.com/mfcoelho/go-todo-api/internal/types"
)

// TokenService issues and verifies the signed, self-contained access tokens.
// Tokens are stateless: verification relies on signature and claim checks
// only, there is no server-side session store or revocation list.
type TokenService interface {
	Issue(user *types.User) (string, error)
	// Verify returns the claims of a valid token. Every failure mode
	// (bad signature, malformed token, expiry, issuer/audience mismatch)
	// collapses into types.ErrInvalidToken so callers cannot distinguish
	// them.
	Verify(tokenString string) (*types.Claims, error)
}

var _ TokenService = (*JWTService)(nil)

// JWTService signs HS256 tokens carrying the subject id, email and display
// name.
type JWTService struct {
	cfg config.JWTConfig
}

func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{cfg: cfg}
}

func (s *JWTService) Issue(user *types.User) (string, error) {
	now := time.Now()
	claims := types.Claims{
		Email: user.Email,
		Name:  user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.Expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	if s.cfg.Issuer != "" {
		claims.Issuer = s.cfg.Issuer
	}
	if s.cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{s.cfg.Audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.SecretKey))
}

func (s *JWTService) Verify(tokenString string) (*types.Claims, error) {
	claims := &types.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, types.ErrInvalidToken
		}
		return []byte(s.cfg.SecretKey), nil
	})
	if err != nil || !token.Valid {
		return nil, types.ErrInvalidToken
	}

	// jwt.ParseWithClaims already rejects expired tokens; re-check here so a
	// missing exp claim also fails.
	if claims.ExpiresAt == nil || time.Now().After(claims.ExpiresAt.Time) {
		return nil, types.ErrInvalidToken
	}
	if s.cfg.Issuer != "" && claims.Issuer != s.cfg.Issuer {
		return nil, types.ErrInvalidToken
	}
	if !api.VerifyAudience(claims.Audience, s.cfg.Audience) {
		return nil, types.ErrInvalidToken
	}

	return claims, nil
}
