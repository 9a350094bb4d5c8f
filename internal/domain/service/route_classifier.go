package service

import (
	"net/http"
	"strings"

	"github.com/storekit/admission/internal/domain/models"
	"github.com/storekit/admission/pkg/constants"
)

// RouteClass categorizes a request path.
type RouteClass string

const (
	// RouteClassPublic needs no session
	RouteClassPublic RouteClass = "public"
	// RouteClassAuth is for login/register pages that authenticated users
	// should be redirected away from
	RouteClassAuth RouteClass = "auth"
	// RouteClassProtected requires any authenticated session
	RouteClassProtected RouteClass = "protected"
	// RouteClassAdmin requires an ADMIN session
	RouteClassAdmin RouteClass = "admin"
	// RouteClassUnmatched matched none of the configured prefix sets
	RouteClassUnmatched RouteClass = "unmatched"
)

// DefaultAction decides unmatched paths.
type DefaultAction string

const (
	// DefaultAllow admits paths outside every configured prefix set. This
	// preserves the observed fail-open behavior; new route prefixes must be
	// added to the tables or they bypass classification entirely.
	DefaultAllow DefaultAction = "allow"
	// DefaultDeny rejects paths outside every configured prefix set.
	DefaultDeny DefaultAction = "deny"
)

// RoutePolicy enumerates the four disjoint path-prefix sets, separately for
// page routes and API routes so the two surfaces can diverge.
type RoutePolicy struct {
	PublicPages    []string
	AuthPages      []string
	ProtectedPages []string
	AdminPages     []string

	PublicAPI    []string
	AuthAPI      []string
	ProtectedAPI []string
	AdminAPI     []string

	// Default decides paths matching none of the sets.
	Default DefaultAction
}

// AccessDecision is the edge tier's admission verdict for one request.
type AccessDecision struct {
	Allowed bool
	// Session is the provisional identity the decision was made under, if any.
	Session *models.EdgeSession
	// Class is the path's route class.
	Class RouteClass
	// IsAPI reports whether the path matched an API table rather than a
	// page table. Handlers use it to pick between redirect and JSON denial.
	IsAPI bool
	// RequiresFullValidation is set only for protected/admin API paths that
	// were allowed at the edge. Page routes render optimistically and
	// re-check on their first mutating call; API mutations must not trust
	// the edge-only decision.
	RequiresFullValidation bool
	// Reason explains a denial.
	Reason string
}

// Denial reasons are part of the produced interface; handlers and tests
// match on them.
const (
	ReasonAuthenticationRequired = "authentication required"
	ReasonAdminAccessRequired    = "admin access required"
	ReasonAlreadyAuthenticated   = "already authenticated"
	ReasonUnmatchedRoute         = "route not classified"
)

// RouteClassifier categorizes request paths and renders the edge admission
// decision using the edge session resolver and the RBAC hierarchy.
type RouteClassifier struct {
	policy   RoutePolicy
	resolver *EdgeSessionResolver
}

// NewRouteClassifier creates a route classifier over the given policy.
func NewRouteClassifier(policy RoutePolicy, resolver *EdgeSessionResolver) *RouteClassifier {
	if policy.Default == "" {
		policy.Default = DefaultAllow
	}
	return &RouteClassifier{policy: policy, resolver: resolver}
}

// matchesPrefix reports whether the pathname matches the route prefix:
// either exactly, or as a strict path-segment descendant. "/admin" matches
// "/admin" and "/admin/users" but not "/administrator".
func matchesPrefix(pathname, route string) bool {
	return pathname == route || strings.HasPrefix(pathname, route+"/")
}

func matchesAny(pathname string, routes []string) bool {
	for _, route := range routes {
		if matchesPrefix(pathname, route) {
			return true
		}
	}
	return false
}

// classify resolves the route class of a pathname and whether it is an API
// route. API tables are consulted first so API and page policy stay
// independent even when prefixes nest.
func (c *RouteClassifier) classify(pathname string) (RouteClass, bool) {
	switch {
	case matchesAny(pathname, c.policy.AdminAPI):
		return RouteClassAdmin, true
	case matchesAny(pathname, c.policy.ProtectedAPI):
		return RouteClassProtected, true
	case matchesAny(pathname, c.policy.AuthAPI):
		return RouteClassAuth, true
	case matchesAny(pathname, c.policy.PublicAPI):
		return RouteClassPublic, true
	case matchesAny(pathname, c.policy.AdminPages):
		return RouteClassAdmin, false
	case matchesAny(pathname, c.policy.ProtectedPages):
		return RouteClassProtected, false
	case matchesAny(pathname, c.policy.AuthPages):
		return RouteClassAuth, false
	case matchesAny(pathname, c.policy.PublicPages):
		return RouteClassPublic, false
	}
	return RouteClassUnmatched, false
}

// Classify renders the admission decision for the request.
func (c *RouteClassifier) Classify(req *http.Request) AccessDecision {
	session := c.resolver.Resolve(req)
	class, isAPI := c.classify(req.URL.Path)

	decision := AccessDecision{
		Allowed: true,
		Session: session,
		Class:   class,
		IsAPI:   isAPI,
	}

	switch class {
	case RouteClassPublic:
		return decision

	case RouteClassAuth:
		if session != nil {
			decision.Allowed = false
			decision.Reason = ReasonAlreadyAuthenticated
		}
		return decision

	case RouteClassProtected:
		if session == nil {
			decision.Allowed = false
			decision.Reason = ReasonAuthenticationRequired
			return decision
		}
		// Role floor is CUSTOMER; every valid session satisfies it, but an
		// inactive principal still fails HasRole.
		if !HasRole(session.User, constants.RoleCustomer) {
			decision.Allowed = false
			decision.Reason = ReasonAuthenticationRequired
			return decision
		}
		decision.RequiresFullValidation = isAPI
		return decision

	case RouteClassAdmin:
		if session == nil {
			decision.Allowed = false
			decision.Reason = ReasonAuthenticationRequired
			return decision
		}
		if !HasRole(session.User, constants.RoleAdmin) {
			decision.Allowed = false
			decision.Reason = ReasonAdminAccessRequired
			return decision
		}
		decision.RequiresFullValidation = isAPI
		return decision
	}

	if c.policy.Default == DefaultDeny {
		decision.Allowed = false
		decision.Reason = ReasonUnmatchedRoute
	}
	return decision
}
