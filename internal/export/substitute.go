// Copyright (c) 2025 STRR Reports
// Licensed under the MIT License. See LICENSE file in the project root for details.

package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// SubstituteColumn rewrites the named column of a merged CSV file through the
// substitution table, in place. Values absent from the table pass through
// unchanged; a miss is never an error. The rewrite is row-preserving: the
// output has exactly the rows of the input.
func SubstituteColumn(path, column string, subs map[string]string) error {
	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open merged file: %w", err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(path), ".subst-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after successful rename

	r := csv.NewReader(in)
	buf := bufio.NewWriter(tmp)
	w := csv.NewWriter(buf)

	header, err := r.Read()
	if err != nil {
		tmp.Close()
		return fmt.Errorf("read header: %w", err)
	}
	colIdx := -1
	for i, name := range header {
		if name == column {
			colIdx = i
			break
		}
	}
	if colIdx == -1 {
		tmp.Close()
		return fmt.Errorf("column %q not found in %s", column, path)
	}
	if err := w.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			tmp.Close()
			return fmt.Errorf("read row: %w", err)
		}
		if org, ok := subs[row[colIdx]]; ok {
			row[colIdx] = org
		}
		if err := w.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush: %w", err)
	}
	if err := buf.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace merged file: %w", err)
	}
	return nil
}
