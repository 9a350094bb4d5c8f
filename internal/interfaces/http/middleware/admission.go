package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storekit/admission/internal/domain/models"
	"github.com/storekit/admission/internal/domain/service"
	"github.com/storekit/admission/internal/infrastructure/monitoring"
	"github.com/storekit/admission/pkg/constants"
	apperrors "github.com/storekit/admission/pkg/errors"
	"github.com/storekit/admission/pkg/logger"
)

const (
	ctxKeyEdgeSession      = "edge_session"
	ctxKeyCanonicalSession = "canonical_session"
)

// Admission runs the edge tier for every request: route classification over
// the provisional session, then, only where the edge decision flagged it,
// the authoritative re-check. Page routes render optimistically; API
// mutation endpoints never trust the edge-only decision. Admin-class
// decisions are additionally written to the audit sink.
func Admission(
	classifier *service.RouteClassifier,
	validator *service.AuthoritativeValidator,
	sink service.AuditSink,
	metrics *monitoring.Metrics,
	log logger.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := classifier.Classify(c.Request)
		metrics.RecordAdmission(string(decision.Class), decision.Allowed)

		if decision.Session != nil {
			c.Set(ctxKeyEdgeSession, decision.Session)
		}

		if decision.Class == service.RouteClassAdmin {
			defer auditAdminDecision(c, sink, decision)
		}

		if !decision.Allowed {
			// Authenticated users landing on login/register pages are sent
			// back to their account rather than shown an error. API callers
			// get the structured denial instead.
			if decision.Class == service.RouteClassAuth && !decision.IsAPI {
				c.Redirect(http.StatusFound, "/account")
				c.Abort()
				return
			}

			status := http.StatusForbidden
			err := apperrors.ErrPermissionDenied(decision.Reason)
			if decision.Reason == service.ReasonAuthenticationRequired {
				status = http.StatusUnauthorized
				err = apperrors.ErrAuthenticationRequired()
			}
			log.Debug(c.Request.Context(), "edge admission denied",
				logger.String("path", c.Request.URL.Path),
				logger.String("class", string(decision.Class)),
				logger.String("reason", decision.Reason),
			)
			c.AbortWithStatusJSON(status, apperrors.ToBody(err))
			return
		}

		if decision.RequiresFullValidation {
			requiredRole := constants.RoleCustomer
			if decision.Class == service.RouteClassAdmin {
				requiredRole = constants.RoleAdmin
			}
			if !enforceCanonical(c, validator, metrics, requiredRole) {
				return
			}
		}

		c.Next()
	}
}

// RequireSession enforces an authoritative session with the given role floor
// on an individual route group, independent of the edge classification.
// Pass an empty role for "any authenticated session".
func RequireSession(
	validator *service.AuthoritativeValidator,
	metrics *monitoring.Metrics,
	requiredRole constants.Role,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enforceCanonical(c, validator, metrics, requiredRole) {
			return
		}
		c.Next()
	}
}

// auditAdminDecision records the final outcome of an admin-class request,
// after any authoritative re-check has run. The canonical identity is
// preferred; a denial before validation falls back to the provisional one.
func auditAdminDecision(c *gin.Context, sink service.AuditSink, decision service.AccessDecision) {
	var userID string
	var role constants.Role
	if session := CanonicalSessionFrom(c); session != nil {
		userID = session.User.ID
		role = session.User.Role
	} else if decision.Session != nil {
		userID = decision.Session.User.ID
		role = decision.Session.User.Role
	}

	sink.Record(c.Request.Context(), models.AccessAuditRecord{
		UserID:  userID,
		Role:    role,
		Action:  c.Request.Method + " " + c.Request.URL.Path,
		Allowed: decision.Allowed && c.Writer.Status() < http.StatusBadRequest,
		Reason:  decision.Reason,
	})
}

func enforceCanonical(
	c *gin.Context,
	validator *service.AuthoritativeValidator,
	metrics *monitoring.Metrics,
	requiredRole constants.Role,
) bool {
	validation := validator.Validate(c.Request.Context(), c.Request, requiredRole)
	if !validation.IsValid {
		metrics.RecordValidation(string(validation.Error.Code))
		c.AbortWithStatusJSON(validation.Error.Status, apperrors.Body{
			Code:        string(validation.Error.Code),
			Description: validation.Error.Message,
			Timestamp:   nowUnix(),
		})
		return false
	}

	metrics.RecordValidation("valid")
	c.Set(ctxKeyCanonicalSession, validation.Session)
	return true
}
