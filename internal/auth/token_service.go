package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/rentora/posts-service/internal/entity"
	"github.com/rentora/posts-service/internal/port/repository"
)

var (
	ErrMissingCredential = errors.New("authorization credential is missing or malformed")
	ErrInvalidCredential = errors.New("credential is invalid")
	ErrExpiredCredential = errors.New("credential has expired")
	ErrUnknownUser       = errors.New("user for credential no longer exists")
)

// Claims is the JWT payload issued by the user directory.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService verifies bearer credentials and resolves them to a live
// Identity. Verification always re-fetches the user record, so revoked
// accounts and role changes take effect on the next request; the role in
// the token claim is only a fallback for logging.
type TokenService struct {
	secret []byte
	users  repository.UserRepository
	logger *zap.Logger
}

func NewTokenService(secret string, users repository.UserRepository, logger *zap.Logger) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		users:  users,
		logger: logger,
	}
}

// Verify takes the raw Authorization header value ("Bearer <token>") and
// returns the caller's Identity.
func (s *TokenService) Verify(ctx context.Context, authHeader string) (*entity.Identity, error) {
	tokenString, err := bearerToken(authHeader)
	if err != nil {
		return nil, err
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredCredential
		}
		s.logger.Debug("token verification failed", zap.Error(err))
		return nil, ErrInvalidCredential
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidCredential
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("valid token for a deleted user", zap.String("user_id", claims.UserID))
			return nil, ErrUnknownUser
		}
		return nil, fmt.Errorf("TokenService.Verify: user lookup: %w", err)
	}
	if !user.Active {
		return nil, ErrUnknownUser
	}

	return &entity.Identity{UserID: user.ID, Role: user.Role}, nil
}

// GenerateToken signs a token with the service secret. Used by tests and
// by operational tooling that needs to mint service credentials.
func (s *TokenService) GenerateToken(userID, role string, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func bearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingCredential
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", ErrMissingCredential
	}
	return parts[1], nil
}
