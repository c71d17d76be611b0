package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/posthub/posthub/internal/config"
	"github.com/posthub/posthub/internal/domain"
	"github.com/posthub/posthub/internal/repository"
	"gorm.io/gorm"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Claims is the JWT payload for both token kinds. Refresh tokens additionally
// carry a unique identifier in the registered ID (jti) claim, which is what
// the revocation registry keys on.
type Claims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type TokenService struct {
	userRepo       repository.UserRepository
	revocationRepo repository.RevocationRepository
	cfg            *config.Config
}

func NewTokenService(userRepo repository.UserRepository, revocationRepo repository.RevocationRepository, cfg *config.Config) *TokenService {
	return &TokenService{
		userRepo:       userRepo,
		revocationRepo: revocationRepo,
		cfg:            cfg,
	}
}

// Issue mints a fresh access/refresh pair for the subject. Signing is
// stateless; nothing is persisted.
func (s *TokenService) Issue(userID uuid.UUID) (*TokenPair, error) {
	access, err := s.sign(userID, tokenTypeAccess, s.cfg.AccessTokenTTL, uuid.Nil)
	if err != nil {
		return nil, err
	}

	refresh, err := s.sign(userID, tokenTypeRefresh, s.cfg.RefreshTokenTTL, uuid.New())
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess checks signature, token type and expiry and returns the
// subject. Access tokens are never checked against the revocation registry;
// their short lifetime stands in for revocation.
func (s *TokenService) VerifyAccess(tokenString string) (uuid.UUID, error) {
	claims, err := s.parse(tokenString, tokenTypeAccess, true)
	if err != nil {
		return uuid.Nil, err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}

// Refresh exchanges a valid, non-revoked refresh token for a new access
// token. The refresh token itself is not rotated and stays valid until it
// expires or is revoked.
func (s *TokenService) Refresh(ctx context.Context, tokenString string) (string, error) {
	claims, err := s.parse(tokenString, tokenTypeRefresh, true)
	if err != nil {
		return "", err
	}

	jti, err := uuid.Parse(claims.ID)
	if err != nil {
		return "", ErrInvalidToken
	}

	revoked, err := s.revocationRepo.Contains(ctx, jti)
	if err != nil {
		return "", err
	}
	if revoked {
		return "", ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return "", ErrInvalidToken
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	return s.sign(userID, tokenTypeAccess, s.cfg.AccessTokenTTL, uuid.Nil)
}

// Revoke denylists the refresh token's identifier. Expiry is deliberately not
// checked; revoking an already-expired token is harmless. Revoking twice is a
// no-op.
func (s *TokenService) Revoke(ctx context.Context, tokenString string) error {
	claims, err := s.parse(tokenString, tokenTypeRefresh, false)
	if err != nil {
		return err
	}

	jti, err := uuid.Parse(claims.ID)
	if err != nil {
		return ErrInvalidToken
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ErrInvalidToken
	}

	return s.revocationRepo.Add(ctx, &domain.RevokedToken{
		JTI:       jti,
		UserID:    userID,
		RevokedAt: time.Now(),
	})
}

func (s *TokenService) sign(userID uuid.UUID, tokenType string, ttl time.Duration, jti uuid.UUID) (string, error) {
	now := time.Now()
	claims := Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if jti != uuid.Nil {
		claims.ID = jti.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *TokenService) parse(tokenString, wantType string, validateClaims bool) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if !validateClaims {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != wantType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
