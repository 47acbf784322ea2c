package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"facturas/internal/port"
)

// circuitState tracks rate-limit backoff for a single provider.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// Fallback tries providers in order, skipping those whose circuit is open after a rate limit.
// Each provider is called at most once per request.
type Fallback struct {
	services []port.CompletionService
	circuits []*circuitState
	log      zerolog.Logger
	now      func() time.Time
}

// FallbackOption configures a Fallback.
type FallbackOption func(*Fallback)

// WithLogger sets the logger used to report skipped and failed providers.
func WithLogger(l zerolog.Logger) FallbackOption {
	return func(f *Fallback) { f.log = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) FallbackOption {
	return func(f *Fallback) { f.now = now }
}

// NewFallback creates a Fallback from an ordered list of providers.
func NewFallback(services []port.CompletionService, opts ...FallbackOption) *Fallback {
	circuits := make([]*circuitState, len(services))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	f := &Fallback{
		services: services,
		circuits: circuits,
		log:      zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fallback) Name() string {
	names := make([]string, len(f.services))
	for i, s := range f.services {
		names[i] = s.Name()
	}
	return strings.Join(names, ",")
}

func (f *Fallback) Complete(ctx context.Context, req port.CompletionRequest) (*port.CompletionResponse, error) {
	now := f.now()
	var lastErr error
	allRateLimited := true
	allQuota := true
	var earliestReset time.Time

	for i, svc := range f.services {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			f.log.Debug().Str("provider", svc.Name()).Time("reset_at", resetAt).Msg("skipping provider, circuit open")
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := svc.Complete(ctx, req)
		if err == nil {
			return out, nil
		}

		f.log.Warn().Err(err).Str("provider", svc.Name()).Msg("completion provider failed")
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			if !rlErr.Quota {
				allQuota = false
			}
		} else {
			allRateLimited = false
		}

		if ctx.Err() != nil {
			break
		}
	}

	if lastErr == nil || allRateLimited {
		// Every provider was skipped or refused the call with a rate limit.
		retryAfter := earliestReset.Sub(f.now())
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		rlErr := NewRateLimitError("all", fmt.Errorf("all completion providers rate limited"), int(retryAfter.Seconds()))
		rlErr.Quota = lastErr != nil && allQuota
		return nil, rlErr
	}

	return nil, fmt.Errorf("all completion providers failed: %w", lastErr)
}
