package controllers

import (
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/licimar/licimar-backend/api/middleware"
	"github.com/licimar/licimar-backend/internal/auditlog"
)

func actorFromRequest(r *http.Request) *uuid.UUID {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func recordAudit(r *http.Request, audit auditlog.Service, action, details string) {
	if audit == nil {
		return
	}
	audit.Record(r.Context(), actorFromRequest(r), action, details, clientIP(r), r.UserAgent())
}
