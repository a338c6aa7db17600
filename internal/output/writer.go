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
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

const indent = "  "

// ErrCommitted is returned by Write and Commit once the output was committed.
var ErrCommitted = errors.New("output already committed")

// Writer writes records as the elements of one JSON array.
// It is safe for concurrent use.
type Writer struct {
	mu        sync.Mutex
	output    io.Writer
	buf       bytes.Buffer
	encoder   *json.Encoder
	count     int
	committed bool
	closeFunc func() error
}

// NewWriter creates a new JSON array writer that writes to the specified output.
func NewWriter(w io.Writer) *Writer {
	writer := &Writer{output: w}
	writer.encoder = json.NewEncoder(&writer.buf)
	writer.encoder.SetIndent(indent, indent)
	writer.encoder.SetEscapeHTML(false)
	return writer
}

// Write encodes record as the next array element.
func (w *Writer) Write(record interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.committed {
		return ErrCommitted
	}

	w.buf.Reset()
	if w.count == 0 {
		w.buf.WriteString("[\n" + indent)
	} else {
		w.buf.WriteString(",\n" + indent)
	}
	if err := w.encoder.Encode(record); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	// Encode terminates every value with a newline; the separator is
	// written with the next element instead.
	w.buf.Truncate(w.buf.Len() - 1)

	if _, err := w.output.Write(w.buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}

	w.count++
	return nil
}

// Commit closes the array. An output without records becomes "[]".
func (w *Writer) Commit() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.committed {
		return ErrCommitted
	}

	tail := "\n]\n"
	if w.count == 0 {
		tail = "[]\n"
	}
	if _, err := io.WriteString(w.output, tail); err != nil {
		return fmt.Errorf("failed to finish output: %w", err)
	}

	w.committed = true
	return nil
}

// Count returns the number of records written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Close closes the underlying writer if it owns one.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closeFunc != nil {
		fn := w.closeFunc
		w.closeFunc = nil
		return fn()
	}
	return nil
}

// FileWriter writes the JSON array to a temporary file in the destination's
// directory and renames it over the destination on Commit.
type FileWriter struct {
	*Writer

	path     string
	file     *os.File
	bw       *bufio.Writer
	replaced bool
	closed   bool
}

// NewFileWriter creates a writer whose output replaces path on Commit.
// The caller must call Close, which removes the temporary file unless the
// output was committed.
func NewFileWriter(path string) (*FileWriter, error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	file, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	bw := bufio.NewWriter(file)
	return &FileWriter{
		Writer: NewWriter(bw),
		path:   path,
		file:   file,
		bw:     bw,
	}, nil
}

// Path returns the destination path.
func (f *FileWriter) Path() string {
	return f.path
}

// Commit finishes the array, syncs it to disk and atomically replaces the
// destination.
func (f *FileWriter) Commit() error {
	if f.closed {
		return fmt.Errorf("commit %s: file writer closed", f.path)
	}
	if err := f.Writer.Commit(); err != nil {
		return err
	}
	if err := f.bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	if err := f.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync output: %w", err)
	}
	if err := f.file.Chmod(0o644); err != nil {
		return fmt.Errorf("failed to set output permissions: %w", err)
	}
	if err := f.file.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}
	f.closed = true

	if err := os.Rename(f.file.Name(), f.path); err != nil {
		_ = os.Remove(f.file.Name())
		return fmt.Errorf("failed to replace %s: %w", f.path, err)
	}

	f.replaced = true
	return nil
}

// Close releases the temporary file. Without a prior successful Commit the
// destination is left as it was.
func (f *FileWriter) Close() error {
	if f.replaced {
		return nil
	}

	var err error
	if !f.closed {
		err = f.file.Close()
		f.closed = true
	}
	if rmErr := os.Remove(f.file.Name()); rmErr != nil && !os.IsNotExist(rmErr) {
		return errors.Join(err, rmErr)
	}
	return err
}
