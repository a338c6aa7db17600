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

package testutil

import (
	"fmt"
	"time"
)

// PullRequestNodeBuilder provides a fluent API for creating merged pull
// request nodes in the shape the GraphQL API returns them.
type PullRequestNodeBuilder struct {
	number       int
	title        string
	mergedAt     string
	author       *string
	mergedBy     *string
	participants []string
	labels       []string
}

// NewPullRequestNode creates a new node builder with defaults: authored by
// userN, merged by "merger", with the author as the only participant.
func NewPullRequestNode(number int) *PullRequestNodeBuilder {
	author := fmt.Sprintf("user%d", number)
	merger := "merger"
	merged := time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(number) * time.Hour)
	return &PullRequestNodeBuilder{
		number:       number,
		title:        fmt.Sprintf("PR %d", number),
		mergedAt:     merged.Format("2006-01-02T15:04:05Z"),
		author:       &author,
		mergedBy:     &merger,
		participants: []string{author},
	}
}

// WithTitle sets the PR title
func (b *PullRequestNodeBuilder) WithTitle(title string) *PullRequestNodeBuilder {
	b.title = title
	return b
}

// WithMergedAt sets the raw mergedAt string
func (b *PullRequestNodeBuilder) WithMergedAt(mergedAt string) *PullRequestNodeBuilder {
	b.mergedAt = mergedAt
	return b
}

// WithAuthor sets the PR author
func (b *PullRequestNodeBuilder) WithAuthor(login string) *PullRequestNodeBuilder {
	b.author = &login
	return b
}

// WithoutAuthor makes the author null, as for deleted accounts
func (b *PullRequestNodeBuilder) WithoutAuthor() *PullRequestNodeBuilder {
	b.author = nil
	return b
}

// WithMergedBy sets the merger
func (b *PullRequestNodeBuilder) WithMergedBy(login string) *PullRequestNodeBuilder {
	b.mergedBy = &login
	return b
}

// WithoutMergedBy makes mergedBy null
func (b *PullRequestNodeBuilder) WithoutMergedBy() *PullRequestNodeBuilder {
	b.mergedBy = nil
	return b
}

// WithParticipants replaces the participant logins
func (b *PullRequestNodeBuilder) WithParticipants(logins ...string) *PullRequestNodeBuilder {
	b.participants = logins
	return b
}

// WithLabels sets the label names
func (b *PullRequestNodeBuilder) WithLabels(labels ...string) *PullRequestNodeBuilder {
	b.labels = labels
	return b
}

// Permalink returns the permalink the node will carry
func (b *PullRequestNodeBuilder) Permalink() string {
	return fmt.Sprintf("https://github.com/apache/airflow/pull/%d", b.number)
}

// Build creates the node data structure
func (b *PullRequestNodeBuilder) Build() map[string]interface{} {
	participants := make([]map[string]interface{}, len(b.participants))
	for i, login := range b.participants {
		participants[i] = map[string]interface{}{"login": login}
	}

	labels := make([]map[string]interface{}, len(b.labels))
	for i, name := range b.labels {
		labels[i] = map[string]interface{}{"name": name}
	}

	return map[string]interface{}{
		"permalink": b.Permalink(),
		"title":     b.title,
		"mergedAt":  b.mergedAt,
		"author":    actor(b.author),
		"mergedBy":  actor(b.mergedBy),
		"participants": map[string]interface{}{
			"nodes": participants,
		},
		"labels": map[string]interface{}{
			"nodes": labels,
		},
	}
}

func actor(login *string) interface{} {
	if login == nil {
		return nil
	}
	return map[string]interface{}{"login": *login}
}
