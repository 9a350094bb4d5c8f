package service

import (
	"context"
	"net/http"
	"time"

	"github.com/storekit/admission/internal/domain/models"
	"github.com/storekit/admission/pkg/constants"
	"github.com/storekit/admission/pkg/logger"
)

// AuthoritativeValidator resolves canonical, store-backed sessions. It is
// the single point that must run before any state-mutating operation; the
// edge tier only sheds obviously-unauthenticated traffic cheaply.
type AuthoritativeValidator struct {
	verifier     TokenVerifier
	store        SessionStore
	log          logger.Logger
	storeTimeout time.Duration
	refreshTTL   time.Duration
}

// NewAuthoritativeValidator creates an authoritative session validator.
// Every store round trip is bounded by storeTimeout so a slow backing store
// fails the validation instead of stalling the request.
func NewAuthoritativeValidator(
	verifier TokenVerifier,
	store SessionStore,
	log logger.Logger,
	storeTimeout time.Duration,
) *AuthoritativeValidator {
	if storeTimeout <= 0 {
		storeTimeout = constants.DefaultStoreTimeout
	}
	return &AuthoritativeValidator{
		verifier:     verifier,
		store:        store,
		log:          log.WithComponent("session_validator"),
		storeTimeout: storeTimeout,
		refreshTTL:   constants.SessionDefaultTTL,
	}
}

// Validate resolves the request's canonical session and enforces the
// account-active and role checks. requiredRole may be empty for "any
// authenticated session".
//
// Failure taxonomy: no resolvable session (including an unreachable session
// store) is 401; an inactive account or an unmet role floor is 403. The
// store-unreachable case fails closed deliberately: no canonical identity
// can be asserted without it.
func (v *AuthoritativeValidator) Validate(ctx context.Context, req *http.Request, requiredRole constants.Role) models.SessionValidation {
	cookie, err := req.Cookie(constants.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return invalid(constants.ErrCodeAuthenticationRequired, http.StatusUnauthorized, ReasonAuthenticationRequired)
	}

	claims, err := v.verifier.Verify(cookie.Value)
	if err != nil {
		v.log.Debug(ctx, "token verification failed", logger.Err(err))
		return invalid(constants.ErrCodeAuthenticationRequired, http.StatusUnauthorized, ReasonAuthenticationRequired)
	}

	storeCtx, cancel := context.WithTimeout(ctx, v.storeTimeout)
	defer cancel()

	session, err := v.store.Get(storeCtx, claims.SessionID)
	if err != nil {
		v.log.Warn(ctx, "session store unreachable, failing closed",
			logger.Err(err),
			logger.String("session_id", claims.SessionID),
		)
		return invalid(constants.ErrCodeAuthenticationRequired, http.StatusUnauthorized, ReasonAuthenticationRequired)
	}
	if session == nil {
		return invalid(constants.ErrCodeAuthenticationRequired, http.StatusUnauthorized, ReasonAuthenticationRequired)
	}

	// Authoritative-only check: deactivation can happen after token
	// issuance, so the edge tier can never make this determination.
	if !session.User.IsActive {
		return invalid(constants.ErrCodeAccountDeactivated, http.StatusForbidden, "account deactivated")
	}

	if requiredRole != "" && !HasRole(session.User, requiredRole) {
		return invalid(constants.ErrCodeForbidden, http.StatusForbidden, string(requiredRole)+" access required")
	}

	// Sliding-window refresh on activity. Best effort.
	if err := v.store.Refresh(storeCtx, session.Session.ID, v.refreshTTL); err != nil {
		v.log.Debug(ctx, "session refresh failed", logger.Err(err))
	}

	return models.SessionValidation{IsValid: true, Session: session}
}

func invalid(code constants.ErrorCode, status int, message string) models.SessionValidation {
	return models.SessionValidation{
		IsValid: false,
		Error: &models.ValidationError{
			Code:    code,
			Status:  status,
			Message: message,
		},
	}
}
