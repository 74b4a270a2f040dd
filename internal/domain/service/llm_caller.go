package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// callLLMWithRetry calls the model with automatic retry and exponential
// backoff. Transient errors (timeout, connection reset, 5xx) are
// retried up to MaxRetries times; auth and bad-request errors are not.
func (a *AgentLoop) callLLMWithRetry(ctx context.Context, req *LLMRequest, step int, sm *StateMachine, logger *zap.Logger) (*LLMResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= a.config.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := a.config.RetryBaseWait * (1 << (attempt - 1))

			sm.RecordRetry()
			_ = sm.Transition(StateRetrying)
			logger.Info("Retrying model call",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", a.config.MaxRetries),
				zap.Duration("wait", wait),
				zap.Error(lastErr),
			)

			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			_ = sm.Transition(StateThinking)
		}

		// Per-call timeout: a single inference should never hang the
		// whole request; retries handle transients.
		callCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		resp, err := a.llm.Generate(callCtx, req)
		cancel()

		if err == nil {
			if attempt > 0 {
				logger.Info("Model retry succeeded",
					zap.Int("attempt", attempt),
					zap.Int("step", step),
				)
			}
			return resp, nil
		}

		lastErr = err
		logger.Warn("Model call failed",
			zap.Int("attempt", attempt),
			zap.Int("step", step),
			zap.Error(err),
		)

		if !isRetryableError(err) {
			return nil, fmt.Errorf("non-retryable model error: %w", err)
		}
	}

	return nil, fmt.Errorf("model call failed after %d retries: %w", a.config.MaxRetries, lastErr)
}

// isRetryableError determines if a model error is worth retrying.
// Retryable: timeout, connection reset, 5xx, rate limits.
// Non-retryable: auth failures, bad requests, cancelled contexts.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	nonRetryable := []string{
		"context canceled",
		"unauthorized",
		"invalid api key",
		"bad request",
		"invalid argument",
		"model not found",
	}
	for _, pattern := range nonRetryable {
		if strings.Contains(errStr, pattern) {
			return false
		}
	}

	retryable := []string{
		"timeout",
		"deadline exceeded",
		"connection reset",
		"connection refused",
		"eof",
		"server error",
		"502", "503", "504", "529",
		"rate limit",
		"too many requests",
		"overloaded",
		"temporarily unavailable",
	}
	for _, pattern := range retryable {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	// Default: retry on unknown errors — prevents single-point failures
	// at the cost of a few wasted calls.
	return true
}
