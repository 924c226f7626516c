package deploy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/slotshift/slotshift/internal/clock"
	"github.com/slotshift/slotshift/internal/constants"
	"github.com/slotshift/slotshift/internal/domain"
)

// Doer issues a single HTTP request. *http.Client satisfies it; tests
// substitute fakes.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Validator performs the bounded-retry health check against a staged
// slot. It never returns an error: pass/fail and diagnostics are carried
// in the ValidationResult.
type Validator struct {
	client         Doer
	clock          clock.Clock
	maxAttempts    int
	backoff        time.Duration
	requestTimeout time.Duration
	logger         zerolog.Logger
}

// NewValidator creates a Validator with the standard attempt cap, fixed
// backoff interval, and per-request timeout.
func NewValidator(client Doer, clk clock.Clock, logger zerolog.Logger) *Validator {
	if client == nil {
		client = &http.Client{}
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Validator{
		client:         client,
		clock:          clk,
		maxAttempts:    constants.ValidationMaxAttempts,
		backoff:        constants.ValidationBackoff,
		requestTimeout: constants.ValidationRequestTimeout,
		logger:         logger,
	}
}

// Validate checks the target's health URL until it returns HTTP 200,
// the attempt cap is reached, or the time budget is exhausted, whichever
// comes first. Attempts are separated by a fixed backoff; there is no
// sleep after the final attempt.
//
// An empty URL means no validation was configured: the target is assumed
// healthy and the result reports zero attempts. Callers that want a
// stronger guarantee must supply a URL.
func (v *Validator) Validate(ctx context.Context, url string, budget time.Duration, target string) domain.ValidationResult {
	if url == "" {
		v.logger.Warn().
			Str("target", target).
			Msg("no validation URL configured; assuming healthy")
		return domain.ValidationResult{Passed: true, Attempts: 0}
	}

	log := v.logger.With().Str("target", target).Str("url", url).Logger()
	start := v.clock.Now()

	var lastErr string
	attempts := 0
	for attempts < v.maxAttempts {
		if err := ctx.Err(); err != nil {
			lastErr = err.Error()
			break
		}

		attempts++
		passed, detail := v.attempt(ctx, url)
		if passed {
			elapsed := v.clock.Now().Sub(start)
			log.Info().
				Int("attempts", attempts).
				Dur("elapsed", elapsed).
				Msg("validation passed")
			return domain.ValidationResult{Passed: true, Attempts: attempts, Elapsed: elapsed}
		}
		lastErr = detail
		log.Warn().
			Int("attempt", attempts).
			Str("error", detail).
			Msg("validation attempt failed")

		if attempts >= v.maxAttempts {
			break
		}
		if v.clock.Now().Sub(start) >= budget {
			lastErr = fmt.Sprintf("time budget exhausted after %d attempt(s): %s", attempts, lastErr)
			break
		}
		if err := v.clock.Sleep(ctx, v.backoff); err != nil {
			lastErr = err.Error()
			break
		}
	}

	elapsed := v.clock.Now().Sub(start)
	log.Warn().
		Int("attempts", attempts).
		Dur("elapsed", elapsed).
		Str("last_error", lastErr).
		Msg("validation failed")

	return domain.ValidationResult{
		Passed:    false,
		Attempts:  attempts,
		Elapsed:   elapsed,
		LastError: lastErr,
	}
}

// attempt issues one GET with its own request timeout. Only HTTP 200
// counts as a pass; any other status or transport error fails the
// attempt.
func (v *Validator) attempt(ctx context.Context, url string) (bool, string) {
	reqCtx, cancel := context.WithTimeout(ctx, v.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Sprintf("build request: %v", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return false, err.Error()
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Sprintf("unexpected status %d", resp.StatusCode)
	}
	return true, ""
}
