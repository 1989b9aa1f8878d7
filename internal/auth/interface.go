package auth

import "blogwriter/internal/domain/models"

// JWTVerifier defines the interface for bearer token verification.
// The middleware depends on this so tests can supply their own verifier.
type JWTVerifier interface {
	// VerifyToken validates a token string and returns the parsed claims.
	// Returns domain.ErrUnauthorized if the token is invalid, expired, or
	// has an invalid signature.
	VerifyToken(tokenString string) (*models.APIClaims, error)
}

// JWTIssuer mints bearer tokens for local clients.
type JWTIssuer interface {
	IssueToken(clientID string) (string, error)
}
