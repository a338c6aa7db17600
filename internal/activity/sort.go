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
	"cmp"
	"slices"
)

// Compare orders records by MergedAt, then Permalink, Title, Author,
// MergedBy, UserLogin and IsGoogle. A nil Author sorts before any login and
// false sorts before true.
func Compare(a, b Record) int {
	if c := cmp.Compare(a.MergedAt, b.MergedAt); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Permalink, b.Permalink); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Title, b.Title); c != 0 {
		return c
	}
	if c := compareOptional(a.Author, b.Author); c != 0 {
		return c
	}
	if c := cmp.Compare(a.MergedBy, b.MergedBy); c != 0 {
		return c
	}
	if c := cmp.Compare(a.UserLogin, b.UserLogin); c != 0 {
		return c
	}
	return compareBool(a.IsGoogle, b.IsGoogle)
}

func compareOptional(a, b *string) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return cmp.Compare(*a, *b)
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// Sort sorts records in place by Compare. Records that compare equal keep
// their relative order.
func Sort(records []Record) {
	slices.SortStableFunc(records, Compare)
}

// Sorted returns a sorted copy of records.
func Sorted(records []Record) []Record {
	out := slices.Clone(records)
	Sort(out)
	return out
}
