package models

import "github.com/golang-jwt/jwt/v5"

// APIClaims is the claim set of a local API bearer token.
type APIClaims struct {
	jwt.RegisteredClaims        // sub, iss, exp, iat, jti
	Scope                string `json:"scope"` // "api" for shell clients
}

// GetClientID returns the client identifier from the subject claim.
func (c *APIClaims) GetClientID() string {
	return c.Subject
}
