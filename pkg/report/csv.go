// Copyright (c) 2017 Intel Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package report

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Sink persists report rows.
type Sink interface {
	Append(Row) error
}

// CSVWriter appends rows to a CSV file. Each row is written with a single
// write followed by fsync, so an interrupted campaign never leaves a
// truncated row behind.
type CSVWriter struct {
	path string

	mu   sync.Mutex
	file *os.File
}

// NewCSVWriter returns writer of file at path. Nothing is touched until
// EnsureInitialized is called.
func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

// Path of the report file.
func (w *CSVWriter) Path() string {
	return w.path
}

// EnsureInitialized opens the report for appending and writes the header only
// when the file is missing or empty. Calling it again is a no-op.
//
// A resumed report must start with Columns. A partial last row left by a
// killed run is dropped before any new row is appended.
func (w *CSVWriter) EnsureInitialized() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file != nil {
		return nil
	}

	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0644)
	if err != nil {
		return errors.Wrapf(err, "cannot open report %q", w.path)
	}

	if err := resume(file, w.path); err != nil {
		file.Close()
		return err
	}

	w.file = file
	return nil
}

// resume prepares file for appending whole rows. The header is checked before
// anything is truncated, so a foreign file is never modified.
func resume(file *os.File, path string) error {
	info, err := file.Stat()
	if err != nil {
		return errors.Wrapf(err, "cannot stat report %q", path)
	}

	size := info.Size()
	if size == 0 {
		return errors.Wrapf(writeRecord(file, Columns), "cannot write header of report %q", path)
	}

	end, err := completeLinesEnd(file, size)
	if err != nil {
		return errors.Wrapf(err, "cannot read report %q", path)
	}
	partial := make([]byte, size-end)
	if _, err := file.ReadAt(partial, end); err != nil && err != io.EOF {
		return errors.Wrapf(err, "cannot read report %q", path)
	}

	if end == 0 {
		// Only a part of the header made it to disk.
		if !strings.HasPrefix(strings.Join(Columns, ","), string(partial)) {
			return errors.Errorf("unexpected header of report %q: %q", path, partial)
		}
	} else {
		header, err := csv.NewReader(io.NewSectionReader(file, 0, end)).Read()
		if err != nil {
			return errors.Wrapf(err, "cannot read header of report %q", path)
		}
		if !reflect.DeepEqual(header, Columns) {
			return errors.Errorf("unexpected header of report %q: %v", path, header)
		}
	}

	if end < size {
		logrus.Warnf("Dropping partial last line of report %q: %q", path, partial)
		if err := file.Truncate(end); err != nil {
			return errors.Wrapf(err, "cannot truncate report %q", path)
		}
	}
	if end == 0 {
		return errors.Wrapf(writeRecord(file, Columns), "cannot write header of report %q", path)
	}
	return nil
}

// completeLinesEnd returns offset just past the last newline of file, 0 when
// there is none.
func completeLinesEnd(file *os.File, size int64) (int64, error) {
	const chunkSize = 4096
	chunk := make([]byte, chunkSize)
	for end := size; end > 0; {
		start := end - chunkSize
		if start < 0 {
			start = 0
		}
		buffer := chunk[:end-start]
		if _, err := file.ReadAt(buffer, start); err != nil {
			return 0, err
		}
		if idx := bytes.LastIndexByte(buffer, '\n'); idx >= 0 {
			return start + int64(idx) + 1, nil
		}
		end = start
	}
	return 0, nil
}

// Append implements Sink.
func (w *CSVWriter) Append(row Row) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return errors.Errorf("report %q is not initialized", w.path)
	}
	return errors.Wrapf(writeRecord(w.file, row.Record()), "cannot append %s iteration %d to report %q",
		row.Implementation, row.Iteration, w.path)
}

// Close flushes and closes the report file.
func (w *CSVWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// writeRecord encodes record into memory first and issues one write.
func writeRecord(file *os.File, record []string) error {
	var buffer bytes.Buffer
	encoder := csv.NewWriter(&buffer)
	if err := encoder.Write(record); err != nil {
		return err
	}
	encoder.Flush()
	if err := encoder.Error(); err != nil {
		return err
	}

	if _, err := file.Write(buffer.Bytes()); err != nil {
		return err
	}
	return file.Sync()
}

// ReadRows reads all rows of the report at path. Header must match Columns.
func ReadRows(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open report %q", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = len(Columns)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read header of report %q", path)
	}
	if !reflect.DeepEqual(header, Columns) {
		return nil, errors.Errorf("unexpected header of report %q: %v", path, header)
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "cannot read report %q", path)
		}
		row, err := ParseRow(record)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d of report %q", len(rows)+2, path)
		}
		rows = append(rows, row)
	}
}
