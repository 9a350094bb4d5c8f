package crypto

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/storekit/admission/internal/domain/models"
)

// HMACVerifier verifies session tokens signed with HS256. Used only by the
// authoritative tier; the edge tier never sees the secret.
type HMACVerifier struct {
	secret []byte
}

// NewHMACVerifier creates a verifier over the shared signing secret.
func NewHMACVerifier(secret string) (*HMACVerifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("signing secret is required")
	}
	return &HMACVerifier{secret: []byte(secret)}, nil
}

// Verify checks the token's signature and standard claims (exp included) and
// returns the verified claims.
func (v *HMACVerifier) Verify(token string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	if claims.Subject == "" || claims.SessionID == "" {
		return nil, fmt.Errorf("token missing identity claims")
	}

	return claims, nil
}
