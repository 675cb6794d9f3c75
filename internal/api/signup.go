package api

import (
	"errors"
	"net/http"

	"github.com/dompet-pintar/waitlist-api/internal/metrics"
	"github.com/dompet-pintar/waitlist-api/internal/ratelimit"
	"github.com/dompet-pintar/waitlist-api/internal/waitlist"
	"github.com/dompet-pintar/waitlist-api/internal/waitlist/store"
)

// Handlers wires the HTTP endpoints to the waitlist service.
type Handlers struct {
	svc           *waitlist.Service
	limiter       *ratelimit.Limiter
	adminPassword string
}

// NewHandlers creates the endpoint handlers. adminPassword may be empty, in
// which case the admin endpoint fails closed.
func NewHandlers(svc *waitlist.Service, limiter *ratelimit.Limiter, adminPassword string) *Handlers {
	return &Handlers{
		svc:           svc,
		limiter:       limiter,
		adminPassword: adminPassword,
	}
}

type signupRequest struct {
	Email string `json:"email" validate:"required,emailshape"`
	// Honeypot is a hidden form field humans never fill in. Any value
	// marks the submission as automated.
	Honeypot string `json:"honeypot" validate:"isdefault"`
}

type signupResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Position int64  `json:"position"`
}

// Signup handles POST /signup.
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req signupRequest
	if !BindJSON(r, &req) {
		return
	}

	// Normalize before validation and everything after it, so case and
	// whitespace variants of one address are one signup.
	req.Email = waitlist.NormalizeEmail(req.Email)

	if verrs := Validate(req); verrs != nil {
		for _, fe := range verrs {
			if fe.Field() == "honeypot" {
				metrics.SignupsRejected.WithLabelValues("honeypot").Inc()
				SetError(r, ErrBadRequest.With("Invalid submission"))
				return
			}
		}
		metrics.SignupsRejected.WithLabelValues("invalid_email").Inc()
		SetError(r, ErrBadRequest.With("Invalid email address"))
		return
	}

	// Fast-path duplicate check so an already-registered email answers 400
	// even when the IP is rate limited. AddSignup re-checks atomically.
	if exists, err := h.svc.IsRegistered(ctx, req.Email); err != nil {
		metrics.SignupsRejected.WithLabelValues("storage").Inc()
		SetError(r, ErrInternal.With("Failed to process signup"))
		return
	} else if exists {
		metrics.SignupsRejected.WithLabelValues("duplicate").Inc()
		SetError(r, ErrBadRequest.With("Email already on waitlist"))
		return
	}

	ip := ratelimit.ClientIP(r)
	allowed, err := h.limiter.Allow(ctx, ip)
	if err != nil {
		metrics.SignupsRejected.WithLabelValues("storage").Inc()
		SetError(r, ErrInternal.With("Failed to process signup"))
		return
	}
	if !allowed {
		metrics.SignupsRejected.WithLabelValues("rate_limited").Inc()
		SetError(r, ErrRateLimited)
		return
	}

	position, err := h.svc.Join(ctx, req.Email, r.Referer(), r.UserAgent())
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			metrics.SignupsRejected.WithLabelValues("duplicate").Inc()
			SetError(r, ErrBadRequest.With("Email already on waitlist"))
			return
		}
		metrics.SignupsRejected.WithLabelValues("storage").Inc()
		SetError(r, ErrInternal.With("Failed to process signup"))
		return
	}

	if err := h.limiter.Record(ctx, ip); err != nil {
		// The signup is already stored at this point; the generic error
		// matches the mutating-path contract even though the write is
		// partially applied.
		metrics.SignupsRejected.WithLabelValues("storage").Inc()
		SetError(r, ErrInternal.With("Failed to process signup"))
		return
	}

	metrics.SignupsAccepted.Inc()
	SetResponse(r, http.StatusOK, signupResponse{
		Success:  true,
		Message:  "Successfully joined waitlist",
		Position: position,
	})
}
