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

// Package report turns activity records into the entries of the activity
// report and writes them in canonical order.
package report

import (
	"fmt"

	"github.com/sirseerhq/sirseer-activity/internal/activity"
	"github.com/sirseerhq/sirseer-activity/internal/affiliation"
	"github.com/sirseerhq/sirseer-activity/internal/output"
)

// Entry is one element of the report. Fields are declared in key order so
// the encoded objects have sorted keys.
type Entry struct {
	Author          *string `json:"author"`
	AuthorCompany   string  `json:"author_company"`
	Company         string  `json:"company"`
	IsGoogle        string  `json:"is_google"`
	MergedAt        string  `json:"merged_at"`
	MergedBy        string  `json:"merged_by"`
	MergedByCompany string  `json:"merged_by_company"`
	Permalink       string  `json:"permalink"`
	Title           string  `json:"title"`
	UserLogin       string  `json:"user_login"`
}

// Attributor resolves logins to organizations.
type Attributor interface {
	Resolve(login string) affiliation.Affiliation
	ResolvePtr(login *string) affiliation.Affiliation
}

// NewEntry builds the entry for r, attributing the author, the merger and
// the participant.
func NewEntry(r activity.Record, resolver Attributor) Entry {
	isGoogle := "N"
	if r.IsGoogle {
		isGoogle = "Y"
	}

	return Entry{
		Author:          r.Author,
		AuthorCompany:   string(resolver.ResolvePtr(r.Author)),
		Company:         string(resolver.Resolve(r.UserLogin)),
		IsGoogle:        isGoogle,
		MergedAt:        r.MergedAt,
		MergedBy:        r.MergedBy,
		MergedByCompany: string(resolver.Resolve(r.MergedBy)),
		Permalink:       r.Permalink,
		Title:           r.Title,
		UserLogin:       r.UserLogin,
	}
}

// Serialize sorts a copy of records, writes one entry per record to w and
// commits w. It returns the number of entries written. The caller still
// owns w and must Close it.
func Serialize(w output.OutputWriter, records []activity.Record, resolver Attributor) (int, error) {
	sorted := activity.Sorted(records)

	for i, r := range sorted {
		if err := w.Write(NewEntry(r, resolver)); err != nil {
			return i, fmt.Errorf("failed to write entry %d (%s, %s): %w", i, r.Permalink, r.UserLogin, err)
		}
	}

	if err := w.Commit(); err != nil {
		return len(sorted), fmt.Errorf("failed to commit report: %w", err)
	}
	return len(sorted), nil
}
