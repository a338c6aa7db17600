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

package output

import (
	"bytes"
	"testing"
)

// Compile-time checks that both writers implement OutputWriter
var (
	_ OutputWriter = (*Writer)(nil)
	_ OutputWriter = (*FileWriter)(nil)
)

func TestWriterImplementsInterface(t *testing.T) {
	buf := &bytes.Buffer{}
	var w OutputWriter = NewWriter(buf)

	if err := w.Write(map[string]string{"test": "data"}); err != nil {
		t.Errorf("Write() error = %v", err)
	}
	if err := w.Commit(); err != nil {
		t.Errorf("Commit() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	if buf.Len() == 0 {
		t.Error("Expected data to be written to buffer")
	}
}
