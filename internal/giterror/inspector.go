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

package giterror

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

// Inspector classifies errors coming back from the GitHub GraphQL endpoint.
// GitHub reports most failures as free text (HTTP status lines or GraphQL
// error messages), so classification is done on the lower-cased message.
type Inspector interface {
	// IsAuthError returns true if the error represents an authentication or authorization failure.
	IsAuthError(err error) bool

	// IsNotFoundError returns true if the error represents a missing repository.
	IsNotFoundError(err error) bool

	// IsRateLimitError returns true if the error represents a primary or secondary rate limit.
	IsRateLimitError(err error) bool

	// IsComplexityError returns true if the query exceeded GitHub's node or complexity limits.
	IsComplexityError(err error) bool

	// IsNetworkError returns true if the error represents a network connectivity error.
	IsNetworkError(err error) bool
}

// Kind is a short label for an error class, used in retry log lines.
type Kind string

const (
	KindCanceled   Kind = "canceled"
	KindRateLimit  Kind = "rate_limit"
	KindAuth       Kind = "auth"
	KindNotFound   Kind = "not_found"
	KindComplexity Kind = "complexity"
	KindNetwork    Kind = "network"
	KindOther      Kind = "other"
)

type GitHubErrorInspector struct{}

func NewInspector() Inspector {
	return &GitHubErrorInspector{}
}

// Status codes are only trusted next to "status code:" or their reason
// phrase. GitHub request IDs and error pages carry arbitrary digit runs.
var (
	authPattern = regexp.MustCompile(
		`status code: 40[13]\b|\b401 unauthorized\b|\b403 forbidden\b|\bunauthorized\b|\bforbidden\b|\bbad credentials\b|\bauthentication\b`)
	notFoundPattern = regexp.MustCompile(
		`status code: 404\b|\b404 not found\b|\bnot found\b|\bcould not resolve to a repository\b`)
	rateLimitPattern = regexp.MustCompile(
		`\brate limit|status code: 429\b|\b429 too many requests\b|\babuse detection\b`)
	complexityPattern = regexp.MustCompile(
		`\bcomplexity\b|\bexceeds maximum\b|\bmaximum limit\b|\bmax_node_limit_exceeded\b`)
	networkPattern = regexp.MustCompile(
		`\bconnection refused\b|\bconnection reset\b|\bno such host\b|\btimeout\b|\btemporary failure\b|\bdial tcp\b|\btls handshake\b|\bnetwork is unreachable\b|\beof\b`)
)

func (i *GitHubErrorInspector) IsAuthError(err error) bool {
	return messageMatches(err, authPattern)
}

func (i *GitHubErrorInspector) IsNotFoundError(err error) bool {
	return messageMatches(err, notFoundPattern)
}

func (i *GitHubErrorInspector) IsRateLimitError(err error) bool {
	return messageMatches(err, rateLimitPattern)
}

func (i *GitHubErrorInspector) IsComplexityError(err error) bool {
	return messageMatches(err, complexityPattern)
}

func (i *GitHubErrorInspector) IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return messageMatches(err, networkPattern)
}

// Classify returns the first matching Kind for err. Rate limits are checked
// before auth because GitHub answers secondary rate limits with 403.
func Classify(in Inspector, err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case in.IsRateLimitError(err):
		return KindRateLimit
	case in.IsAuthError(err):
		return KindAuth
	case in.IsNotFoundError(err):
		return KindNotFound
	case in.IsComplexityError(err):
		return KindComplexity
	case in.IsNetworkError(err):
		return KindNetwork
	default:
		return KindOther
	}
}

func messageMatches(err error, re *regexp.Regexp) bool {
	if err == nil {
		return false
	}
	return re.MatchString(strings.ToLower(err.Error()))
}
