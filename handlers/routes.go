package handlers

import "strings"

// routeRule classifies a path as public. A rule is either a prefix match or a
// wildcard pattern whose single "*" stands for exactly one non-empty segment.
type routeRule struct {
	prefix   string
	wildcard string
}

// publicRoutes is the single route-classification table. Both the auth filter
// (token-validation bypass) and the auth gate (permit-all policy) consult it,
// so a route can never be public for one and protected for the other.
var publicRoutes = []routeRule{
	{prefix: "/health"},
	{prefix: "/api/auth/"},
	{prefix: "/api/shared/access/"},
	{prefix: "/api/shared/download/"},
	{prefix: "/api/shared/view/"},
	{prefix: "/api/pdf/search"},
	{wildcard: "/api/shared/*/comments"},
}

// IsPublicRoute reports whether the path is exempt from session-token
// validation.
func IsPublicRoute(path string) bool {
	for _, r := range publicRoutes {
		if r.prefix != "" && strings.HasPrefix(path, r.prefix) {
			return true
		}
		if r.wildcard != "" && matchSingleSegment(r.wildcard, path) {
			return true
		}
	}
	return false
}

func matchSingleSegment(pattern, path string) bool {
	ps := strings.Split(pattern, "/")
	segs := strings.Split(path, "/")
	if len(ps) != len(segs) {
		return false
	}
	for i, p := range ps {
		if p == "*" {
			if segs[i] == "" {
				return false
			}
			continue
		}
		if p != segs[i] {
			return false
		}
	}
	return true
}
