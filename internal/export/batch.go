// Copyright (c) 2025 STRR Reports
// Licensed under the MIT License. See LICENSE file in the project root for details.

package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// WriteBatch spools one page to a batch CSV file, header row first.
// It returns the number of data rows written. Batch files exist only between
// page-write and merge-completion.
func WriteBatch(path string, page *Page) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create batch file: %w", err)
	}
	defer f.Close()

	buf := bufio.NewWriter(f)
	w := csv.NewWriter(buf)
	if err := w.Write(page.Columns); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}
	for _, row := range page.Rows {
		if err := w.Write(row); err != nil {
			return 0, fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("flush batch file: %w", err)
	}
	if err := buf.Flush(); err != nil {
		return 0, fmt.Errorf("flush batch file: %w", err)
	}
	return len(page.Rows), nil
}

// Merge concatenates batch files, in page order, into a single CSV at
// outPath. The header is written once, from the first batch file; every
// batch file is deleted after its rows are consumed. The returned count is
// data rows only, never the header.
func Merge(batchPaths []string, outPath string) (int64, error) {
	if len(batchPaths) == 0 {
		return 0, fmt.Errorf("no batch files to merge")
	}

	out, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("create merged file: %w", err)
	}
	defer out.Close()

	buf := bufio.NewWriter(out)
	w := csv.NewWriter(buf)

	var total int64
	for i, p := range batchPaths {
		n, err := appendBatch(w, p, i == 0)
		if err != nil {
			return total, fmt.Errorf("merge %s: %w", p, err)
		}
		total += n
		// Invariant: a consumed batch file never outlives the merge.
		if err := os.Remove(p); err != nil {
			return total, fmt.Errorf("remove batch file %s: %w", p, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return total, fmt.Errorf("flush merged file: %w", err)
	}
	if err := buf.Flush(); err != nil {
		return total, fmt.Errorf("flush merged file: %w", err)
	}
	return total, nil
}

// appendBatch copies one batch file into the merge writer, optionally
// keeping its header row.
func appendBatch(w *csv.Writer, path string, keepHeader bool) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err == io.EOF {
		return 0, fmt.Errorf("batch file is empty")
	}
	if err != nil {
		return 0, err
	}
	if keepHeader {
		if err := w.Write(header); err != nil {
			return 0, err
		}
	}

	var n int64
	for {
		row, err := r.Read()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if err := w.Write(row); err != nil {
			return n, err
		}
		n++
	}
}
