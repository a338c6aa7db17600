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

package activity

import (
	"errors"
	"fmt"
	"slices"
	"time"

	relaierrors "github.com/sirseerhq/sirseer-activity/internal/errors"
	"github.com/sirseerhq/sirseer-activity/internal/github"
)

const (
	// GitHubTimeLayout is the only mergedAt form accepted from the API.
	GitHubTimeLayout = "2006-01-02T15:04:05Z"

	// MergedAtLayout is the minute-precision form written to records.
	MergedAtLayout = "2006-01-02T15:04"

	// DefaultProviderLabel marks pull requests attributed to Google.
	DefaultProviderLabel = "provider:Google"
)

// Record is one participant's involvement in one merged pull request.
type Record struct {
	MergedAt  string
	Permalink string
	Title     string
	Author    *string
	MergedBy  string
	UserLogin string
	IsGoogle  bool
}

// DerivationError reports the pull request, and the participant if any, that
// could not be turned into records.
type DerivationError struct {
	PullRequest github.RawPullRequest
	Participant string
	Err         error
}

func (e *DerivationError) Error() string {
	if e.Participant != "" {
		return fmt.Sprintf("pull request %s (participant %s): %v", e.PullRequest.Permalink, e.Participant, e.Err)
	}
	return fmt.Sprintf("pull request %s: %v", e.PullRequest.Permalink, e.Err)
}

func (e *DerivationError) Unwrap() error {
	return e.Err
}

// NormalizeMergedAt converts "YYYY-MM-DDTHH:MM:SSZ" to "YYYY-MM-DDTHH:MM".
// Seconds are truncated. Fractional seconds and numeric offsets are rejected.
func NormalizeMergedAt(raw string) (string, error) {
	if len(raw) != len(GitHubTimeLayout) {
		return "", fmt.Errorf("%q: %w", raw, relaierrors.ErrInvalidTimestamp)
	}
	t, err := time.Parse(GitHubTimeLayout, raw)
	if err != nil {
		return "", fmt.Errorf("%q: %w", raw, errors.Join(relaierrors.ErrInvalidTimestamp, err))
	}
	return t.Format(MergedAtLayout), nil
}

// Derive returns one record per participant of pr. label is matched
// exactly, case included, against the pull request's labels. A missing
// mergedBy only fails when there is a participant to attribute it to.
func Derive(pr github.RawPullRequest, label string) ([]Record, error) {
	mergedAt, err := NormalizeMergedAt(pr.MergedAt)
	if err != nil {
		return nil, &DerivationError{PullRequest: pr, Err: err}
	}

	var author *string
	if pr.Author != nil {
		login := *pr.Author
		author = &login
	}
	isGoogle := slices.Contains(pr.Labels, label)

	records := make([]Record, 0, len(pr.Participants))
	for _, login := range pr.Participants {
		if login == "" {
			return nil, &DerivationError{
				PullRequest: pr,
				Participant: login,
				Err:         fmt.Errorf("participant without login: %w", relaierrors.ErrDerivation),
			}
		}
		if pr.MergedBy == nil {
			return nil, &DerivationError{
				PullRequest: pr,
				Participant: login,
				Err:         fmt.Errorf("merged pull request has no mergedBy: %w", relaierrors.ErrDerivation),
			}
		}
		records = append(records, Record{
			MergedAt:  mergedAt,
			Permalink: pr.Permalink,
			Title:     pr.Title,
			Author:    author,
			MergedBy:  *pr.MergedBy,
			UserLogin: login,
			IsGoogle:  isGoogle,
		})
	}

	return records, nil
}

// DeriveAll derives records for every pull request in order. It stops at
// the first pull request that fails.
func DeriveAll(prs []github.RawPullRequest, label string) ([]Record, error) {
	var records []Record
	for _, pr := range prs {
		derived, err := Derive(pr, label)
		if err != nil {
			return nil, err
		}
		records = append(records, derived...)
	}
	return records, nil
}
