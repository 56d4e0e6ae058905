package apihttp

import (
	"encoding/json"
	"log"
	"net"
	"net/http"

	"rentnotice-cloud/internal/audit"
	"rentnotice-cloud/internal/auth"
)

type auditor struct {
	logger audit.Logger
	log    *log.Logger
}

func (a auditor) record(r *http.Request, action, resourceType, resourceID, tenantID string, meta map[string]any) {
	if a.logger == nil {
		return
	}
	ownerID := auth.OwnerIDFromContext(r.Context())
	if ownerID == "" {
		return
	}
	payload, _ := json.Marshal(meta)
	err := a.logger.Log(r.Context(), audit.Entry{
		OwnerID:      ownerID,
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		TenantID:     tenantID,
		Metadata:     payload,
		IP:           remoteIP(r),
		UserAgent:    r.UserAgent(),
	})
	if err != nil && a.log != nil {
		a.log.Printf("audit log error: action=%s resource=%s err=%v", action, resourceID, err)
	}
}

// remoteIP reads the peer address. Forwarding headers are resolved by the
// router's RealIP middleware before handlers run, so they are not consulted here.
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
