package classifier

import (
	"context"
	"errors"

	"github.com/secureproxy/validation-gateway/internal/models"
)

// Client is the outbound contract to an external content-safety scorer.
// Implementations return a flagged/score pair or an error; the fail-open
// policy lives in the Adapter, not here, so errors stay visible to tests.
type Client interface {
	Classify(ctx context.Context, content string) (*models.Classification, error)
}

// ErrUnavailable marks a classifier backend that was never configured.
var ErrUnavailable = errors.New("classifier backend unavailable")

// Unavailable is the classifier variant selected at startup when no backend
// is configured. Every call errors, which the Adapter converts into the
// neutral fail-open signal.
type Unavailable struct{}

func (Unavailable) Classify(context.Context, string) (*models.Classification, error) {
	return nil, ErrUnavailable
}
