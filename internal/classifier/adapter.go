package classifier

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/secureproxy/validation-gateway/internal/models"
)

// Adapter bounds every classifier call with a timeout and fails open: any
// error (network, timeout, malformed response, unconfigured backend) yields
// a nil classification, which scoring treats as neutral evidence. An outage
// must degrade analysis depth, never availability.
type Adapter struct {
	client  Client
	timeout time.Duration
	logger  *zerolog.Logger
}

func NewAdapter(client Client, timeout time.Duration, logger *zerolog.Logger) *Adapter {
	return &Adapter{
		client:  client,
		timeout: timeout,
		logger:  logger,
	}
}

// Classify returns the external classification, or nil when none could be
// obtained. The degradation is logged but never propagated as an error.
func (a *Adapter) Classify(ctx context.Context, content string) *models.Classification {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	result, err := a.client.Classify(ctx, content)
	if err != nil {
		a.logger.Warn().Err(err).Msg("classifier call failed, failing open")
		return nil
	}

	if result.Score < 0.0 || result.Score > 1.0 {
		a.logger.Warn().Float64("score", result.Score).Msg("classifier returned out-of-range score, failing open")
		return nil
	}

	return result
}
