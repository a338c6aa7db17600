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
	"net/http"
	"time"

	"github.com/shurcooL/graphql"

	relaierrors "github.com/sirseerhq/sirseer-activity/internal/errors"
	"github.com/sirseerhq/sirseer-activity/internal/giterror"
)

// GraphQLClient implements the GitHub Client interface using GraphQL API.
// Every call is exactly one HTTP POST; retries live in RetryClient.
type GraphQLClient struct {
	client    *graphql.Client
	inspector giterror.Inspector
}

// NewGraphQLClient creates a new GitHub GraphQL client for endpoint.
// The token may be empty, in which case requests are sent without an
// Authorization header and GitHub applies its unauthenticated limits.
func NewGraphQLClient(token string, endpoint string) *GraphQLClient {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        2,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return newGraphQLClient(token, endpoint, transport)
}

func newGraphQLClient(token, endpoint string, base http.RoundTripper) *GraphQLClient {
	httpClient := &http.Client{
		Transport: &authTransport{
			token: token,
			base:  &envelopeTransport{base: base},
		},
	}

	return &GraphQLClient{
		client:    graphql.NewClient(endpoint, httpClient),
		inspector: giterror.NewInspector(),
	}
}

type actorNode struct {
	Login graphql.String
}

type pullRequestNode struct {
	Permalink    graphql.String
	Title        graphql.String
	MergedAt     graphql.String
	Author       *actorNode
	MergedBy     *actorNode
	Participants struct {
		Nodes []actorNode
	} `graphql:"participants(first: $participants)"`
	Labels struct {
		Nodes []struct {
			Name graphql.String
		}
	} `graphql:"labels(first: $labels)"`
}

type mergedPullRequestsQuery struct {
	Repository *struct {
		PullRequests *struct {
			Nodes      []pullRequestNode
			TotalCount graphql.Int
			PageInfo   struct {
				EndCursor   *graphql.String
				StartCursor *graphql.String
			}
		} `graphql:"pullRequests(states: MERGED, first: $first, after: $cursor, orderBy: {field: UPDATED_AT, direction: DESC})"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// FetchMergedPullRequests fetches one page of merged pull requests.
//
// Transport failures (non-200, malformed body, GraphQL errors, missing data)
// are returned wrapping ErrTransport. A response whose data lacks the
// repository or the pullRequests connection wraps ErrSchema.
func (c *GraphQLClient) FetchMergedPullRequests(ctx context.Context, owner, repo string, opts FetchOptions) (*PullRequestPage, error) {
	opts = opts.withDefaults()

	var cursor *graphql.String
	if opts.After != "" {
		cursor = graphql.NewString(graphql.String(opts.After))
	}

	variables := map[string]interface{}{
		"owner":        graphql.String(owner),
		"name":         graphql.String(repo),
		"first":        graphql.Int(int32(opts.PageSize)),          // #nosec G115 - capped at 100
		"participants": graphql.Int(int32(opts.ParticipantsLimit)), // #nosec G115 - validated by config
		"labels":       graphql.Int(int32(opts.LabelsLimit)),       // #nosec G115 - validated by config
		"cursor":       cursor,
	}

	var query mergedPullRequestsQuery
	if err := c.client.Query(ctx, &query, variables); err != nil {
		return nil, c.mapError(err, owner, repo)
	}

	if query.Repository == nil {
		return nil, fmt.Errorf("response for %s/%s has no repository: %w", owner, repo, relaierrors.ErrSchema)
	}
	conn := query.Repository.PullRequests
	if conn == nil {
		return nil, fmt.Errorf("response for %s/%s has no pullRequests: %w", owner, repo, relaierrors.ErrSchema)
	}

	page := &PullRequestPage{
		TotalCount: int(conn.TotalCount),
		Nodes:      make([]RawPullRequest, 0, len(conn.Nodes)),
	}
	if conn.PageInfo.EndCursor != nil {
		page.EndCursor = string(*conn.PageInfo.EndCursor)
	}
	if conn.PageInfo.StartCursor != nil {
		page.StartCursor = string(*conn.PageInfo.StartCursor)
	}

	for i := range conn.Nodes {
		page.Nodes = append(page.Nodes, convertPullRequest(&conn.Nodes[i]))
	}

	return page, nil
}

// convertPullRequest converts a GraphQL pull request node to our domain model
func convertPullRequest(n *pullRequestNode) RawPullRequest {
	pr := RawPullRequest{
		Permalink:    string(n.Permalink),
		Title:        string(n.Title),
		MergedAt:     string(n.MergedAt),
		Participants: make([]string, 0, len(n.Participants.Nodes)),
		Labels:       make([]string, 0, len(n.Labels.Nodes)),
	}

	// Deleted accounts come back as a null author
	if n.Author != nil {
		login := string(n.Author.Login)
		pr.Author = &login
	}
	if n.MergedBy != nil {
		login := string(n.MergedBy.Login)
		pr.MergedBy = &login
	}

	for _, p := range n.Participants.Nodes {
		pr.Participants = append(pr.Participants, string(p.Login))
	}
	for _, l := range n.Labels.Nodes {
		pr.Labels = append(pr.Labels, string(l.Name))
	}

	return pr
}

// RequestError is a failed request attempt. It unwraps to ErrTransport, to
// the sentinel of its class (rate limit, auth, ...) if any, and to the
// underlying error.
type RequestError struct {
	Kind giterror.Kind
	Hint string
	Err  error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %v", e.Hint, e.Err)
}

func (e *RequestError) Unwrap() []error {
	errs := []error{relaierrors.ErrTransport, e.Err}
	switch e.Kind {
	case giterror.KindRateLimit:
		errs = append(errs, relaierrors.ErrRateLimit)
	case giterror.KindAuth:
		errs = append(errs, relaierrors.ErrInvalidToken)
	case giterror.KindNotFound:
		errs = append(errs, relaierrors.ErrRepoNotFound)
	case giterror.KindNetwork:
		errs = append(errs, relaierrors.ErrNetworkFailure)
	}
	return errs
}

// mapError maps GraphQL errors to our domain errors with actionable messages
func (c *GraphQLClient) mapError(err error, owner, repo string) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	kind := giterror.Classify(c.inspector, err)

	var hint string
	switch kind {
	case giterror.KindRateLimit:
		hint = "GitHub API rate limit exceeded"
	case giterror.KindAuth:
		hint = "GitHub API authentication failed. Check the token in GITHUB_TOKEN"
	case giterror.KindNotFound:
		hint = fmt.Sprintf("repository '%s/%s' not found. Please check the repository name and your access permissions", owner, repo)
	case giterror.KindComplexity:
		hint = "GraphQL query complexity exceeded. Lowering the page size may help"
	case giterror.KindNetwork:
		hint = "network error connecting to GitHub API"
	default:
		hint = "failed to fetch pull requests"
	}

	return &RequestError{Kind: kind, Hint: hint, Err: err}
}
