package ratelimit

import (
	"net"
	"net/http"
	"strings"

	"github.com/storekit/admission/pkg/constants"
)

// ClientIP resolves the client IP for rate limit keying. Resolution order,
// first present wins: the provider edge header, the first entry of the
// forwarded-for chain, the real-IP header, the transport peer address, and
// finally the literal "unknown".
//
// The first forwarded-for entry is the original client in a well-formed
// proxy chain; trusting a later entry would let a client spoof its own
// rate limit key by appending addresses.
func ClientIP(req *http.Request) string {
	if ip := strings.TrimSpace(req.Header.Get(constants.HeaderEdgeClientIP)); ip != "" {
		return ip
	}

	if xff := req.Header.Get(constants.HeaderForwardedFor); xff != "" {
		if ip := strings.TrimSpace(strings.SplitN(xff, ",", 2)[0]); ip != "" {
			return ip
		}
	}

	if ip := strings.TrimSpace(req.Header.Get(constants.HeaderRealIP)); ip != "" {
		return ip
	}

	if host, _, err := net.SplitHostPort(strings.TrimSpace(req.RemoteAddr)); err == nil && host != "" {
		return host
	}
	if req.RemoteAddr != "" {
		return req.RemoteAddr
	}

	return constants.UnknownClientIP
}
