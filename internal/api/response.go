package api

import "net/http"

// SetError sets an error response in the request context.
// If the wrapper middleware is not present (state is nil), this is a no-op.
func SetError(r *http.Request, err *APIError) {
	state := getState(r.Context())
	if state == nil {
		return
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	state.err = err
}

// SetResponse sets a JSON success response in the request context.
// If the wrapper middleware is not present (state is nil), this is a no-op.
func SetResponse(r *http.Request, status int, body any) {
	state := getState(r.Context())
	if state == nil {
		return
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	state.status = status
	state.body = body
}

// SetRaw sets a pre-encoded response body with an explicit content type.
// Used for the CSV export download path.
func SetRaw(r *http.Request, status int, contentType string, data []byte) {
	state := getState(r.Context())
	if state == nil {
		return
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	state.status = status
	state.contentType = contentType
	state.raw = data
}

// SetHeader sets a response header in the request context.
// If the wrapper middleware is not present (state is nil), this is a no-op.
func SetHeader(r *http.Request, key, value string) {
	state := getState(r.Context())
	if state == nil {
		return
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.headers == nil {
		state.headers = make(http.Header)
	}
	state.headers.Set(key, value)
}
