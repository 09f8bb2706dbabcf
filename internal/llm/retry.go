package llm

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// RetryPolicy bounds retries of transient backend failures.
type RetryPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// RetryingBackend retries Generate on errors classified as retryable.
type RetryingBackend struct {
	inner  Backend
	policy RetryPolicy
	logger *zap.Logger
}

func NewRetryingBackend(inner Backend, policy RetryPolicy, logger *zap.Logger) *RetryingBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy.InitialInterval <= 0 {
		policy.InitialInterval = 500 * time.Millisecond
	}
	if policy.MaxInterval <= 0 {
		policy.MaxInterval = 10 * time.Second
	}
	return &RetryingBackend{inner: inner, policy: policy, logger: logger}
}

func (r *RetryingBackend) Name() string {
	return r.inner.Name()
}

func (r *RetryingBackend) Generate(ctx context.Context, prompt string) (string, error) {
	if r.policy.MaxRetries <= 0 {
		return r.inner.Generate(ctx, prompt)
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = r.policy.InitialInterval
	eb.MaxInterval = r.policy.MaxInterval
	eb.MaxElapsedTime = 0
	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(r.policy.MaxRetries)), ctx)

	attempt := 0
	var out string
	op := func() error {
		attempt++
		resp, err := r.inner.Generate(ctx, prompt)
		if err != nil {
			if !IsRetryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		out = resp
		return nil
	}
	notify := func(err error, wait time.Duration) {
		r.logger.Warn("Retrying backend call",
			zap.String("backend", r.inner.Name()),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return "", err
	}
	return out, nil
}
