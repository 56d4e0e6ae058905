package auth

import (
	"net/http"
	"strings"
)

// Policy determines required roles by request.
type Policy struct {
	ExemptPaths    map[string]struct{}
	ExemptPrefixes []string
}

// NewDefaultPolicy builds a default policy with exemptions.
func NewDefaultPolicy(exemptPaths []string, exemptPrefixes []string) Policy {
	set := make(map[string]struct{}, len(exemptPaths))
	for _, path := range exemptPaths {
		set[path] = struct{}{}
	}
	return Policy{ExemptPaths: set, ExemptPrefixes: exemptPrefixes}
}

// IsExempt returns true when a request should skip auth/RBAC.
func (p Policy) IsExempt(r *http.Request) bool {
	if r == nil {
		return true
	}
	if _, ok := p.ExemptPaths[r.URL.Path]; ok {
		return true
	}
	for _, prefix := range p.ExemptPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	return false
}

// RequiredRole resolves required role for the request.
//
// Viewers read ledgers, previews and history. Managers record payments,
// add tenants and save or send notices. Only the owner changes settings
// or exports stored notices.
func (p Policy) RequiredRole(r *http.Request) (Role, bool) {
	if r == nil {
		return "", false
	}
	path := r.URL.Path
	method := r.Method

	switch {
	case path == "/api/v1/settings":
		if method == http.MethodGet {
			return RoleViewer, true
		}
		return RoleOwner, true
	case path == "/api/v1/tenants":
		if method == http.MethodGet {
			return RoleViewer, true
		}
		return RoleManager, true
	case strings.HasPrefix(path, "/api/v1/tenants/"):
		switch {
		case strings.HasSuffix(path, "/notice/preview"), strings.HasSuffix(path, "/notice/document"):
			return RoleViewer, true
		case method == http.MethodGet:
			return RoleViewer, true
		}
		return RoleManager, true
	case strings.HasPrefix(path, "/api/v1/notices/"):
		if strings.HasSuffix(path, "/export.pdf") {
			return RoleOwner, true
		}
		return RoleViewer, true
	}

	if strings.HasPrefix(path, "/api/") {
		if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
			return RoleViewer, true
		}
		return RoleManager, true
	}
	return "", false
}
