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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sirseerhq/sirseer-activity/pkg/version"
)

// maxResponseSize bounds a single GraphQL response body.
const maxResponseSize = 10 * 1024 * 1024

// ErrMissingData is returned for a 200 response whose JSON body carries
// neither a data nor an errors member.
var ErrMissingData = errors.New("graphql response has no data")

// authTransport sets the Authorization and User-Agent headers.
type authTransport struct {
	token string
	base  http.RoundTripper
}

// RoundTrip implements http.RoundTripper
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	req = req.Clone(req.Context())

	if t.token != "" {
		req.Header.Set("Authorization", "Token "+t.token)
	}
	req.Header.Set("User-Agent", fmt.Sprintf("sirseer-activity/%s", version.Version))

	return t.base.RoundTrip(req)
}

// envelopeTransport checks the top-level shape of successful GraphQL
// responses before the graphql client decodes them. Non-200 responses are
// passed through; the graphql client turns them into errors itself.
type envelopeTransport struct {
	base http.RoundTripper
}

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors json.RawMessage `json:"errors"`
}

// RoundTrip implements http.RoundTripper with envelope validation.
func (t *envelopeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read graphql response: %w", err)
	}
	if len(body) > maxResponseSize {
		return nil, fmt.Errorf("response size exceeded limit of %d bytes", maxResponseSize)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("malformed graphql response: %w", err)
	}
	if isNull(env.Errors) && isNull(env.Data) {
		return nil, ErrMissingData
	}

	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	return resp, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}
