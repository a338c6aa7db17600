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

// Package testutil provides common test helpers for sirseer-activity:
// GraphQL fixtures, httptest servers speaking the GitHub GraphQL envelope,
// and file assertions.
package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
)

// GraphQLRequest is the decoded body of a GraphQL POST.
type GraphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

// MockServer is an httptest server that records every GraphQL request.
type MockServer struct {
	*httptest.Server

	requests atomic.Int32
	mu       sync.Mutex
	received []GraphQLRequest
	headers  []http.Header
}

// RequestCount returns the number of requests served so far.
func (s *MockServer) RequestCount() int {
	return int(s.requests.Load())
}

// Requests returns the decoded bodies of all requests, in arrival order.
func (s *MockServer) Requests() []GraphQLRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]GraphQLRequest(nil), s.received...)
}

// Headers returns the request headers of all requests, in arrival order.
func (s *MockServer) Headers() []http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]http.Header(nil), s.headers...)
}

// GraphQLURL returns the GraphQL endpoint of the server.
func (s *MockServer) GraphQLURL() string {
	return s.Server.URL + "/graphql"
}

// HandlerFunc handles the n-th request (1-based).
type HandlerFunc func(w http.ResponseWriter, n int, req GraphQLRequest)

// NewMockServer creates a server that decodes each request and passes it to
// handler. The server is closed when the test ends.
func NewMockServer(t *testing.T, handler HandlerFunc) *MockServer {
	t.Helper()
	s := &MockServer{}

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(s.requests.Add(1))

		var req GraphQLRequest
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &req)

		s.mu.Lock()
		s.received = append(s.received, req)
		s.headers = append(s.headers, r.Header.Clone())
		s.mu.Unlock()

		handler(w, n, req)
	}))
	t.Cleanup(s.Close)

	return s
}

// NewPagedServer serves pages[n-1] for the n-th request. Requests beyond the
// last page get a 500 so that an extra call shows up as a failure.
func NewPagedServer(t *testing.T, pages ...map[string]interface{}) *MockServer {
	t.Helper()
	return NewMockServer(t, func(w http.ResponseWriter, n int, _ GraphQLRequest) {
		if n > len(pages) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"message": "unexpected extra request"}`))
			return
		}
		WriteJSONResponse(w, pages[n-1])
	})
}

// NewErrorServer creates a mock server that always returns the specified status.
func NewErrorServer(t *testing.T, statusCode int) *MockServer {
	t.Helper()
	return NewMockServer(t, func(w http.ResponseWriter, _ int, _ GraphQLRequest) {
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(http.StatusText(statusCode)))
	})
}

// NewGraphQLErrorServer creates a mock server that always answers 200 with a
// GraphQL errors payload.
func NewGraphQLErrorServer(t *testing.T, message string) *MockServer {
	t.Helper()
	return NewMockServer(t, func(w http.ResponseWriter, _ int, _ GraphQLRequest) {
		WriteJSONResponse(w, GraphQLErrorResponse(message))
	})
}

// NewTransientErrorServer fails the first failCount requests with errorCode,
// then serves pages like NewPagedServer.
func NewTransientErrorServer(t *testing.T, failCount, errorCode int, pages ...map[string]interface{}) *MockServer {
	t.Helper()
	return NewMockServer(t, func(w http.ResponseWriter, n int, _ GraphQLRequest) {
		if n <= failCount {
			w.WriteHeader(errorCode)
			_, _ = w.Write([]byte(http.StatusText(errorCode)))
			return
		}
		idx := n - failCount - 1
		if idx >= len(pages) {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		WriteJSONResponse(w, pages[idx])
	})
}

// WriteJSONResponse writes v as a 200 JSON response.
func WriteJSONResponse(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// GraphQLErrorResponse builds a GraphQL errors payload with null data.
func GraphQLErrorResponse(message string) map[string]interface{} {
	return map[string]interface{}{
		"data": nil,
		"errors": []interface{}{
			map[string]interface{}{
				"message": message,
			},
		},
	}
}

// GeneratePRResponse builds a merged pullRequests page. An empty endCursor
// is encoded as null, which ends pagination.
func GeneratePRResponse(nodes []map[string]interface{}, totalCount int, endCursor string) map[string]interface{} {
	if nodes == nil {
		nodes = []map[string]interface{}{}
	}

	var cursor interface{}
	var start interface{}
	if endCursor != "" {
		cursor = endCursor
	}
	if len(nodes) > 0 {
		start = fmt.Sprintf("start-%v", nodes[0]["permalink"])
	}

	return map[string]interface{}{
		"data": map[string]interface{}{
			"repository": map[string]interface{}{
				"pullRequests": map[string]interface{}{
					"nodes":      nodes,
					"totalCount": totalCount,
					"pageInfo": map[string]interface{}{
						"endCursor":   cursor,
						"startCursor": start,
					},
				},
			},
		},
	}
}

// GeneratePRNodes builds nodes for PRs startNum..endNum with default values.
func GeneratePRNodes(startNum, endNum int) []map[string]interface{} {
	nodes := make([]map[string]interface{}, 0, endNum-startNum+1)
	for i := startNum; i <= endNum; i++ {
		nodes = append(nodes, NewPullRequestNode(i).Build())
	}
	return nodes
}
