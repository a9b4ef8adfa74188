// Package backend is the port to the generative text service used by the
// coaching advisor and the debrief generator.
package backend

import (
	"context"
	"errors"
)

// Request is one generation call.
type Request struct {
	Model string
	// System is the grounding instruction; empty means none.
	System string
	User   string
}

// Backend produces the raw text reply for a request. Implementations wrap
// failures in one of the error kinds below.
type Backend interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Error kinds. Timeout covers deadline and cancellation; Client covers
// configuration and authorization rejections (400/401/403/404); Transport is
// everything else.
var (
	ErrTimeout   = errors.New("backend timeout")
	ErrClient    = errors.New("backend rejected request")
	ErrTransport = errors.New("backend transport failure")
	ErrEmpty     = errors.New("backend returned no text")
	ErrMalformed = errors.New("backend reply malformed")
)

// Func adapts a function to Backend.
type Func func(ctx context.Context, req Request) (string, error)

func (f Func) Generate(ctx context.Context, req Request) (string, error) { return f(ctx, req) }
