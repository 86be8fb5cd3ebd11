package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/slcgroup/costing-api/internal/config"
	"github.com/slcgroup/costing-api/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims are the JWT claims carried by issued access tokens
type Claims struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates HS256 access tokens
type TokenManager struct {
	config *config.JwtConfig
}

// NewTokenManager creates a new token manager
func NewTokenManager(cfg *config.JwtConfig) *TokenManager {
	return &TokenManager{config: cfg}
}

// IssueToken creates a signed access token for the given user.
// Returns the token string and its expiry time.
func (m *TokenManager) IssueToken(user *domain.User) (string, time.Time, error) {
	if m.config.Secret == "" {
		return "", time.Time{}, fmt.Errorf("jwt secret not configured")
	}

	now := time.Now().UTC()
	expiresAt := now.Add(m.config.ExpiryDuration())

	claims := Claims{
		Email:    user.Email,
		Username: user.Username,
		FullName: user.FullName,
		Role:     string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    m.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// ValidateToken validates a token string and returns the user context
func (m *TokenManager) ValidateToken(tokenString string) (*UserContext, error) {
	if m.config.Secret == "" {
		return nil, fmt.Errorf("jwt secret not configured")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.config.Secret), nil
	},
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid subject", ErrInvalidToken)
	}

	role := domain.UserRole(claims.Role)
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: invalid role claim", ErrInvalidToken)
	}

	return &UserContext{
		UserID:   userID,
		Email:    claims.Email,
		Username: claims.Username,
		FullName: claims.FullName,
		Role:     role,
	}, nil
}
