// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	relaierrors "github.com/sirseerhq/sirseer-activity/internal/errors"
	"github.com/sirseerhq/sirseer-activity/internal/giterror"
	"github.com/sirseerhq/sirseer-activity/internal/logging"
)

// RetryConfig configures the retry behavior for API calls
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first one
	MaxAttempts int
	// Multiplier scales the exponential backoff: the wait ceiling before
	// attempt n+1 is Multiplier * 2^(n-1)
	Multiplier time.Duration
	// MaxBackoff caps the wait ceiling
	MaxBackoff time.Duration
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 7,
		Multiplier:  time.Second,
		MaxBackoff:  120 * time.Second,
	}
}

// RetryClient wraps a GitHub client and retries every failed attempt with
// randomized exponential backoff. Schema errors and context cancellation
// are returned immediately.
type RetryClient struct {
	client    Client
	config    *RetryConfig
	inspector giterror.Inspector
	logger    *slog.Logger

	// jitter picks the actual wait in [0, ceiling]
	jitter func(ceiling time.Duration) time.Duration
}

// NewRetryClient creates a new RetryClient with the given configuration
func NewRetryClient(client Client, config *RetryConfig, logger *slog.Logger) *RetryClient {
	if config == nil {
		config = DefaultRetryConfig()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &RetryClient{
		client:    client,
		config:    config,
		inspector: giterror.NewInspector(),
		logger:    logger.With("component", "github"),
		jitter:    fullJitter,
	}
}

// FetchMergedPullRequests implements the Client interface with retry logic
func (r *RetryClient) FetchMergedPullRequests(ctx context.Context, owner, repo string, opts FetchOptions) (*PullRequestPage, error) {
	var lastErr error
	attempts := r.maxAttempts()

	for attempt := 1; attempt <= attempts; attempt++ {
		page, err := r.client.FetchMergedPullRequests(ctx, owner, repo, opts)
		if err == nil {
			return page, nil
		}

		lastErr = err

		if !r.shouldRetry(ctx, err) {
			return nil, err
		}

		if attempt == attempts {
			break
		}

		wait := r.jitter(r.backoffCeiling(attempt))
		r.logger.Warn("Request failed, retrying",
			"attempt", attempt,
			"max_attempts", attempts,
			"wait", wait.Round(time.Millisecond),
			"kind", giterror.Classify(r.inspector, err),
			"error", err)

		// Wait with context cancellation support
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

func (r *RetryClient) maxAttempts() int {
	if r.config.MaxAttempts < 1 {
		return 1
	}
	return r.config.MaxAttempts
}

// shouldRetry determines if an error is retryable
func (r *RetryClient) shouldRetry(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, relaierrors.ErrSchema) {
		return false
	}
	return true
}

// backoffCeiling returns min(MaxBackoff, Multiplier*2^(attempt-1)) for the
// wait that follows the given 1-based attempt.
func (r *RetryClient) backoffCeiling(attempt int) time.Duration {
	ceiling := r.config.Multiplier
	for i := 1; i < attempt; i++ {
		ceiling *= 2
		if ceiling >= r.config.MaxBackoff || ceiling <= 0 {
			return r.config.MaxBackoff
		}
	}
	if ceiling > r.config.MaxBackoff {
		return r.config.MaxBackoff
	}
	return ceiling
}

func fullJitter(ceiling time.Duration) time.Duration {
	if ceiling <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(ceiling) + 1))
}
