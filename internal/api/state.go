package api

import (
	"context"
	"net/http"
	"sync"
)

type stateContextKey string

const stateKey stateContextKey = "api_state"

// State holds the response state for a request. Handlers record an outcome
// via SetResponse, SetRaw, or SetError; the wrapper middleware writes it
// after the handler returns.
type State struct {
	mu          sync.Mutex
	err         *APIError
	status      int
	body        any
	raw         []byte
	contentType string
	headers     http.Header
}

// HasState returns true if wrapper state exists in the context.
func HasState(ctx context.Context) bool {
	return getState(ctx) != nil
}

func getState(ctx context.Context) *State {
	state, _ := ctx.Value(stateKey).(*State)
	return state
}
