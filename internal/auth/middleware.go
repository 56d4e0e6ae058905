package auth

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
)

const bearerChallenge = `Bearer realm="rentnotice"`

// Middleware authenticates owner accounts from HS256 bearer tokens and
// enforces the per-route role from Policy.
type Middleware struct {
	Secret []byte
	Policy Policy
	// Logger receives one line per denied request when set.
	Logger *log.Logger
}

// NewMiddleware constructs an auth middleware.
func NewMiddleware(secret []byte, policy Policy) *Middleware {
	return &Middleware{Secret: secret, Policy: policy}
}

// Wrap applies auth and RBAC to the handler. Exempt paths and paths the
// policy does not know pass through without an identity.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Policy.IsExempt(r) {
			next.ServeHTTP(w, r)
			return
		}
		required, ok := m.Policy.RequiredRole(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		token, found := bearerToken(r.Header.Get("Authorization"))
		if !found {
			m.deny(w, r, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := ParseJWT(token, m.Secret)
		if err != nil {
			m.deny(w, r, http.StatusUnauthorized, err.Error())
			return
		}
		role, _ := NormalizeRole(claims.Role)
		if !RoleAtLeast(role, required) {
			m.deny(w, r, http.StatusForbidden, "requires role "+string(required))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), claims.OwnerID, role, claims.Subject)))
	})
}

func (m *Middleware) deny(w http.ResponseWriter, r *http.Request, status int, reason string) {
	if m.Logger != nil {
		m.Logger.Printf("auth denied: method=%s path=%s status=%d reason=%s", r.Method, r.URL.Path, status, reason)
	}
	message := "forbidden"
	if status == http.StatusUnauthorized {
		message = "unauthorized"
		w.Header().Set("WWW-Authenticate", bearerChallenge)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "reason": reason})
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
