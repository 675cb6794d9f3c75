package api

import (
	"fmt"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/dompet-pintar/waitlist-api/internal/metrics"
)

type countResponse struct {
	Success bool   `json:"success"`
	Count   int64  `json:"count"`
	Message string `json:"message"`
}

// Count handles GET /count. The count is a non-critical display value: on a
// storage failure the endpoint degrades to a success-shaped zero rather than
// surfacing an error, so the landing page never breaks.
func (h *Handlers) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.Count(r.Context())
	if err != nil {
		metrics.CountFallbacks.Inc()
		SetResponse(r, http.StatusOK, countResponse{
			Success: false,
			Count:   0,
			Message: "Join our waitlist",
		})
		return
	}

	message := "Be the first to join!"
	if count > 0 {
		message = fmt.Sprintf("Join %s others on the waitlist", humanize.Comma(count))
	}

	// One minute of staleness is acceptable for marketing copy.
	SetHeader(r, "Cache-Control", "s-maxage=60, stale-while-revalidate")
	SetResponse(r, http.StatusOK, countResponse{
		Success: true,
		Count:   count,
		Message: message,
	})
}
