package api

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/dompet-pintar/waitlist-api/internal/metrics"
	"github.com/dompet-pintar/waitlist-api/internal/waitlist"
)

type adminRequest struct {
	Password     string `json:"password"`
	Action       string `json:"action"`
	ConfirmClear bool   `json:"confirmClear"`
}

// Admin handles POST /admin. A single shared passphrase, resubmitted on
// every call, gates three actions: getSignups, exportCSV, and clearWaitlist.
// When no passphrase is configured the endpoint fails closed.
func (h *Handlers) Admin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req adminRequest
	if !BindJSON(r, &req) {
		return
	}

	if h.adminPassword == "" {
		SetError(r, ErrInternal.With("Admin access not configured"))
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.adminPassword)) != 1 {
		SetError(r, ErrUnauthorized.With("Invalid admin password"))
		return
	}

	switch req.Action {
	case "getSignups":
		stats, err := h.svc.Stats(ctx)
		if err != nil {
			SetError(r, ErrInternal.With("Failed to process admin request"))
			return
		}
		metrics.AdminActions.WithLabelValues("getSignups").Inc()
		SetResponse(r, http.StatusOK, map[string]any{
			"success": true,
			"data":    stats,
		})

	case "exportCSV":
		data, err := h.svc.ExportCSV(ctx)
		if err != nil {
			SetError(r, ErrInternal.With("Failed to process admin request"))
			return
		}
		metrics.AdminActions.WithLabelValues("exportCSV").Inc()
		SetHeader(r, "Content-Disposition", fmt.Sprintf("attachment; filename=%q", waitlist.CSVFilename))
		SetRaw(r, http.StatusOK, "text/csv", data)

	case "clearWaitlist":
		if !req.ConfirmClear {
			SetError(r, ErrBadRequest.With("Please confirm clear action"))
			return
		}
		if err := h.svc.Clear(ctx); err != nil {
			SetError(r, ErrInternal.With("Failed to process admin request"))
			return
		}
		metrics.AdminActions.WithLabelValues("clearWaitlist").Inc()
		SetResponse(r, http.StatusOK, map[string]any{
			"success": true,
			"message": "Waitlist cleared successfully",
		})

	default:
		SetError(r, ErrBadRequest.With("Invalid action"))
	}
}
