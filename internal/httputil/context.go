package httputil

import (
	"context"
	"net/http"

	"blogwriter/internal/domain/models"
)

type claimsKey struct{}

// WithClaims attaches verified token claims to the request.
func WithClaims(r *http.Request, claims *models.APIClaims) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims))
}

// Claims returns the verified claims, or nil for unauthenticated routes.
func Claims(r *http.Request) *models.APIClaims {
	claims, _ := r.Context().Value(claimsKey{}).(*models.APIClaims)
	return claims
}

// ClientID names the caller for logs. Empty when the request carried no token.
func ClientID(r *http.Request) string {
	if claims := Claims(r); claims != nil {
		return claims.GetClientID()
	}
	return ""
}
