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

// Package affiliation attributes GitHub logins to organizations using
// static membership tables.
package affiliation

import "github.com/sirseerhq/sirseer-activity/internal/config"

// Affiliation is the organization a login is attributed to.
type Affiliation string

// Unknown is returned for logins that appear in no table, and for missing logins.
const Unknown Affiliation = "Unknown"

// Table lists the logins that belong to one organization.
type Table struct {
	Organization Affiliation
	Logins       []string
}

// Resolver maps logins to affiliations. Tables are consulted in the order
// they were given and the first match wins; a login listed in two tables is
// a configuration error that config.Validate rejects.
//
// A Resolver is immutable after construction and safe for concurrent use.
type Resolver struct {
	order  []Affiliation
	lookup []map[string]struct{}
}

// NewResolver builds a Resolver from tables. The input slices are copied.
func NewResolver(tables ...Table) *Resolver {
	r := &Resolver{
		order:  make([]Affiliation, 0, len(tables)),
		lookup: make([]map[string]struct{}, 0, len(tables)),
	}
	for _, t := range tables {
		set := make(map[string]struct{}, len(t.Logins))
		for _, login := range t.Logins {
			set[login] = struct{}{}
		}
		r.order = append(r.order, t.Organization)
		r.lookup = append(r.lookup, set)
	}
	return r
}

// FromConfig builds a Resolver from the configured affiliation tables.
func FromConfig(tables []config.AffiliationConfig) *Resolver {
	converted := make([]Table, 0, len(tables))
	for _, t := range tables {
		converted = append(converted, Table{
			Organization: Affiliation(t.Organization),
			Logins:       t.Logins,
		})
	}
	return NewResolver(converted...)
}

// Resolve returns the affiliation of login, or Unknown.
func (r *Resolver) Resolve(login string) Affiliation {
	if login == "" {
		return Unknown
	}
	for i, set := range r.lookup {
		if _, ok := set[login]; ok {
			return r.order[i]
		}
	}
	return Unknown
}

// ResolvePtr is Resolve for optional logins; nil resolves to Unknown.
func (r *Resolver) ResolvePtr(login *string) Affiliation {
	if login == nil {
		return Unknown
	}
	return r.Resolve(*login)
}

// Organizations returns the configured organizations in lookup order.
func (r *Resolver) Organizations() []Affiliation {
	out := make([]Affiliation, len(r.order))
	copy(out, r.order)
	return out
}
