// Package crypto implements token handling for both admission tiers: a
// structural, signature-blind codec for the edge tier and an HMAC verifier
// for the authoritative tier. Only the verifier ever sees the signing secret.
package crypto

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/storekit/admission/internal/domain/models"
)

// TokenCodec decodes the structural shape of a bearer session token without
// validating the signature segment. Every caller must treat the result as
// provisional.
type TokenCodec struct {
	parser *jwt.Parser
}

// NewTokenCodec creates a structural token codec.
func NewTokenCodec() *TokenCodec {
	return &TokenCodec{parser: jwt.NewParser()}
}

// DecodeUnverified validates that the token is a three-segment, dot-delimited
// base64url structure, decodes the payload segment, and requires the subject,
// email, and expiry claims. Any malformed input yields an error; malformed
// and absent input are both normal conditions for the edge tier.
func (c *TokenCodec) DecodeUnverified(token string) (*models.SessionClaims, error) {
	if strings.Count(token, ".") != 2 {
		return nil, fmt.Errorf("token must have 3 segments")
	}

	claims := &models.SessionClaims{}
	if _, _, err := c.parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decode token payload: %w", err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("missing sub claim")
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("missing email claim")
	}
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("missing exp claim")
	}

	return claims, nil
}
