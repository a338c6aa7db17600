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
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	base := Record{
		MergedAt:  "2021-03-15T08:42",
		Permalink: "https://github.com/apache/airflow/pull/2",
		Title:     "B",
		Author:    strPtr("b"),
		MergedBy:  "b",
		UserLogin: "b",
		IsGoogle:  false,
	}

	tests := []struct {
		name   string
		modify func(r *Record)
	}{
		{name: "merged_at", modify: func(r *Record) { r.MergedAt = "2021-03-15T08:41" }},
		{name: "permalink", modify: func(r *Record) { r.Permalink = "https://github.com/apache/airflow/pull/1" }},
		{name: "title", modify: func(r *Record) { r.Title = "A" }},
		{name: "nil author", modify: func(r *Record) { r.Author = nil }},
		{name: "author", modify: func(r *Record) { r.Author = strPtr("a") }},
		{name: "merged_by", modify: func(r *Record) { r.MergedBy = "a" }},
		{name: "user_login", modify: func(r *Record) { r.UserLogin = "a" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			smaller := base
			tt.modify(&smaller)

			assert.Equal(t, -1, Compare(smaller, base))
			assert.Equal(t, 1, Compare(base, smaller))
		})
	}

	t.Run("is_google false first", func(t *testing.T) {
		google := base
		google.IsGoogle = true
		assert.Equal(t, -1, Compare(base, google))
		assert.Equal(t, 1, Compare(google, base))
	})

	t.Run("equal", func(t *testing.T) {
		other := base
		other.Author = strPtr("b")
		assert.Equal(t, 0, Compare(base, other))
	})

	t.Run("earlier fields dominate", func(t *testing.T) {
		earlier := base
		earlier.MergedAt = "2021-03-15T08:41"
		earlier.UserLogin = "z"
		earlier.IsGoogle = true
		assert.Equal(t, -1, Compare(earlier, base))
	})
}

func TestSort_SameMinuteTieBreak(t *testing.T) {
	records := []Record{
		{MergedAt: "2021-03-14T10:00", Permalink: "https://github.com/apache/airflow/pull/1233", MergedBy: "kaxil", UserLogin: "kaxil"},
		{MergedAt: "2021-03-14T10:00", Permalink: "https://github.com/apache/airflow/pull/1232", MergedBy: "mik-laj", UserLogin: "mik-laj"},
		{MergedAt: "2021-03-14T10:00", Permalink: "https://github.com/apache/airflow/pull/1233", MergedBy: "kaxil", UserLogin: "ashb"},
		{MergedAt: "2021-03-13T09:00", Permalink: "https://github.com/apache/airflow/pull/1300", MergedBy: "ashb", UserLogin: "ashb"},
	}

	Sort(records)

	got := make([]string, len(records))
	for i, r := range records {
		got[i] = r.Permalink[len(r.Permalink)-4:] + "/" + r.UserLogin
	}
	assert.Equal(t, []string{"1300/ashb", "1232/mik-laj", "1233/ashb", "1233/kaxil"}, got)
}

func TestSorted_IsDeterministic(t *testing.T) {
	var records []Record
	for _, at := range []string{"2021-01-01T00:00", "2021-01-01T00:01", "2020-12-31T23:59"} {
		for _, login := range []string{"c", "a", "b"} {
			for _, google := range []bool{true, false} {
				records = append(records, Record{MergedAt: at, Permalink: "p", MergedBy: "m", UserLogin: login, IsGoogle: google})
			}
		}
	}

	want := Sorted(records)

	for i := 0; i < 10; i++ {
		shuffled := make([]Record, len(records))
		copy(shuffled, records)
		rand.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		assert.Equal(t, want, Sorted(shuffled))
	}

	assert.Equal(t, "2020-12-31T23:59", want[0].MergedAt)
	assert.Equal(t, "a", want[0].UserLogin)
	assert.False(t, want[0].IsGoogle)
}

func TestSorted_DoesNotModifyInput(t *testing.T) {
	records := []Record{
		{MergedAt: "2021-01-02T00:00", UserLogin: "b"},
		{MergedAt: "2021-01-01T00:00", UserLogin: "a"},
	}

	sorted := Sorted(records)

	assert.Equal(t, "b", records[0].UserLogin)
	assert.Equal(t, "a", sorted[0].UserLogin)
}
