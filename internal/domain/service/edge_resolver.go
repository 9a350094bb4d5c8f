package service

import (
	"net/http"
	"time"

	"github.com/storekit/admission/internal/domain/models"
	"github.com/storekit/admission/pkg/constants"
)

// EdgeSessionResolver builds a provisional EdgeSession from a request's
// session cookie using a structural token decode only. It never touches a
// backing store and never blocks: a pure function of the request and the
// wall clock.
type EdgeSessionResolver struct {
	decoder TokenDecoder
	now     func() time.Time
}

// NewEdgeSessionResolver creates an edge session resolver.
func NewEdgeSessionResolver(decoder TokenDecoder) *EdgeSessionResolver {
	return &EdgeSessionResolver{
		decoder: decoder,
		now:     time.Now,
	}
}

// WithClock overrides the resolver's clock. Intended for tests.
func (r *EdgeSessionResolver) WithClock(now func() time.Time) *EdgeSessionResolver {
	r.now = now
	return r
}

// Resolve returns the EdgeSession for the request, or nil when no usable
// session is present. An absent cookie, a malformed token, and an expired
// token all resolve to nil; none of these is an error condition at the edge.
//
// Identity and expiry fail closed; optional metadata fails open: a missing
// role claim defaults to CUSTOMER and a missing active flag to true.
func (r *EdgeSessionResolver) Resolve(req *http.Request) *models.EdgeSession {
	cookie, err := req.Cookie(constants.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	claims, err := r.decoder.DecodeUnverified(cookie.Value)
	if err != nil {
		return nil
	}

	if claims.ExpiresAt == nil {
		return nil
	}
	expiresAt := claims.ExpiresAt.Time
	if !expiresAt.After(r.now()) {
		return nil
	}

	role := claims.Role
	if !role.Valid() {
		role = constants.RoleCustomer
	}

	return &models.EdgeSession{
		User: models.User{
			ID:       claims.Subject,
			Email:    claims.Email,
			Name:     claims.Name,
			Role:     role,
			IsActive: claims.Active(),
		},
		Session: models.SessionInfo{
			ID:        claims.SessionID,
			UserID:    claims.Subject,
			ExpiresAt: expiresAt,
		},
	}
}
