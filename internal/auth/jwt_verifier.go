package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"blogwriter/internal/domain"
	"blogwriter/internal/domain/models"
)

const (
	tokenIssuer = "blog-writer"
	tokenScope  = "api"

	minSecretBytes = 32
)

// HMACTokenManager issues and verifies HS256 tokens signed with a shared
// secret. The server and the desktop shell are the only parties, so there
// is no key distribution.
type HMACTokenManager struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewTokenManager creates a token manager. The secret must be at least 32 bytes.
func NewTokenManager(secret []byte, lifetime time.Duration, logger *slog.Logger) (*HMACTokenManager, error) {
	if len(secret) < minSecretBytes {
		return nil, fmt.Errorf("API secret must be at least %d bytes, got %d", minSecretBytes, len(secret))
	}
	return &HMACTokenManager{
		secret:   secret,
		lifetime: lifetime,
		now:      time.Now,
		logger:   logger,
	}, nil
}

// GenerateSecret returns a random hex-encoded secret for servers started
// without API_SECRET.
func GenerateSecret() (string, error) {
	b := make([]byte, minSecretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// IssueToken signs a token for clientID.
func (m *HMACTokenManager) IssueToken(clientID string) (string, error) {
	if clientID == "" {
		return "", errors.New("client ID cannot be empty")
	}
	now := m.now()
	claims := models.APIClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clientID,
			Issuer:    tokenIssuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.lifetime)),
		},
		Scope: tokenScope,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates a token and extracts its claims.
func (m *HMACTokenManager) VerifyToken(tokenString string) (*models.APIClaims, error) {
	// Prevent algorithm confusion attacks - allow only HS256
	token, err := jwt.ParseWithClaims(tokenString, &models.APIClaims{},
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		m.logger.Debug("token rejected", "error", err.Error())
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.APIClaims)
	if !ok || !token.Valid {
		m.logger.Error("failed to extract claims from token")
		return nil, domain.ErrUnauthorized
	}
	if claims.Subject == "" {
		m.logger.Debug("token missing subject claim")
		return nil, domain.ErrUnauthorized
	}
	if claims.Scope != tokenScope {
		m.logger.Warn("token has invalid scope",
			"scope", claims.Scope,
			"expected", tokenScope,
			"client", claims.Subject,
		)
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

// WriteTokenFile stores token where the desktop shell reads it. The file is
// readable by the current user only.
func WriteTokenFile(path, token string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}
