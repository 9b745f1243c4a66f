package controllers

import (
	"net/http"
	"strings"

	"github.com/licimar/licimar-backend/api/responses"
	"github.com/licimar/licimar-backend/internal/auditlog"
	pkgerrors "github.com/licimar/licimar-backend/pkg/errors"
	"github.com/licimar/licimar-backend/pkg/logger"
)

// ListAuditLogs returns a filtered, paginated audit trail, newest first.
// Admin only.
func ListAuditLogs(svc auditlog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "audit service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID, err := queryUUID(r, "user_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		from, err := queryDate(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := queryDate(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := auditlog.ListFilter{
			UserID: userID,
			Action: strings.TrimSpace(r.URL.Query().Get("action")),
			From:   from,
			To:     to,
		}

		page, err := svc.List(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// CleanupAuditLogs runs the retention sweep on demand. Admin only.
func CleanupAuditLogs(svc auditlog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "audit service unavailable"))
			return
		}

		result, err := svc.Cleanup(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
