// Package estimate asks a language model to split S&M and R&D spend into
// maintenance and growth, validating the answer strictly.
package estimate

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/epv-cli/internal/model"
	"github.com/sells-group/epv-cli/internal/resilience"
)

var requiredKeys = []string{"maintenance_sga_percent", "maintenance_rnd_percent", "reasoning"}

// DefaultRetry is three attempts with a fixed one second pause.
func DefaultRetry() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts: 3,
		Backoff:     resilience.FixedBackoff(time.Second),
	}
}

// DefaultAttemptTimeout bounds one backend call. A call that runs past it
// counts as a failed attempt.
const DefaultAttemptTimeout = 30 * time.Second

// Estimator produces a MaintenanceEstimate. Estimate never fails.
type Estimator struct {
	backend        Backend
	retry          resilience.RetryConfig
	maxChars       int
	attemptTimeout time.Duration
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithAttemptTimeout sets the bound on each backend call. Non-positive
// values keep DefaultAttemptTimeout.
func WithAttemptTimeout(d time.Duration) Option {
	return func(e *Estimator) {
		if d > 0 {
			e.attemptTimeout = d
		}
	}
}

// NewEstimator creates an Estimator. A non-positive maxChars uses
// DefaultMaxNarrativeChars.
func NewEstimator(backend Backend, retry resilience.RetryConfig, maxChars int, opts ...Option) *Estimator {
	if maxChars <= 0 {
		maxChars = DefaultMaxNarrativeChars
	}
	if retry.OnRetry == nil {
		retry = retry.WithLogger("estimate", backend.Name())
	}
	e := &Estimator{
		backend:        backend,
		retry:          retry,
		maxChars:       maxChars,
		attemptTimeout: DefaultAttemptTimeout,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Estimate asks the backend for the maintenance split, retrying on any
// backend error or invalid answer. When every attempt fails it returns
// model.FallbackEstimate.
func (e *Estimator) Estimate(ctx context.Context, narrative model.NarrativeText, fin model.FinancialRecord) model.MaintenanceEstimate {
	user, err := BuildUserContent(narrative, fin, e.maxChars)
	if err != nil {
		zap.L().Warn("estimate: using conservative defaults", zap.String("ticker", fin.Ticker), zap.Error(err))
		return model.FallbackEstimate()
	}

	est, err := resilience.DoVal(ctx, e.retry, func(ctx context.Context) (model.MaintenanceEstimate, error) {
		return e.attempt(ctx, user)
	})
	if err != nil {
		zap.L().Warn("estimate: using conservative defaults",
			zap.String("ticker", fin.Ticker),
			zap.String("backend", e.backend.Name()),
			zap.Error(err),
		)
		return model.FallbackEstimate()
	}
	return est
}

// attempt runs one bounded backend call. The backend sees a context that
// expires after attemptTimeout; if it does not return by then the attempt
// fails without waiting for it.
func (e *Estimator) attempt(ctx context.Context, user string) (model.MaintenanceEstimate, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.attemptTimeout)
	defer cancel()

	answer := make(chan string, 1)
	go func() {
		answer <- e.backend.Invoke(callCtx, SystemPrompt, user)
	}()

	select {
	case raw := <-answer:
		return Parse(raw)
	case <-callCtx.Done():
		return model.MaintenanceEstimate{}, eris.Wrapf(callCtx.Err(), "estimate: %s call exceeded %s", e.backend.Name(), e.attemptTimeout)
	}
}

// StripFences removes a surrounding ```json or ``` code fence.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if rest, ok := strings.CutPrefix(s, "```json"); ok {
		s = rest
	} else if rest, ok := strings.CutPrefix(s, "```"); ok {
		s = rest
	}
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Parse decodes a model answer. All three keys must be present and
// non-null and both ratios must lie in [0,1].
func Parse(raw string) (model.MaintenanceEstimate, error) {
	cleaned := []byte(StripFences(raw))

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(cleaned, &fields); err != nil {
		return model.MaintenanceEstimate{}, eris.Wrapf(err, "estimate: response is not a JSON object: %.80q", raw)
	}
	for _, k := range requiredKeys {
		v, ok := fields[k]
		if !ok {
			return model.MaintenanceEstimate{}, eris.Errorf("estimate: missing key %q", k)
		}
		if string(v) == "null" {
			return model.MaintenanceEstimate{}, eris.Errorf("estimate: key %q is null", k)
		}
	}

	var est model.MaintenanceEstimate
	if err := json.Unmarshal(cleaned, &est); err != nil {
		return model.MaintenanceEstimate{}, eris.Wrap(err, "estimate: decode estimate")
	}
	est.Fallback = false
	if err := est.Validate(); err != nil {
		return model.MaintenanceEstimate{}, err
	}
	return est, nil
}
