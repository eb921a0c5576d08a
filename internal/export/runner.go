// Copyright (c) 2025 STRR Reports
// Licensed under the MIT License. See LICENSE file in the project root for details.

package export

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Page holds one bounded chunk of query results: the column names and the
// row values already rendered to strings. A page is owned by the batch writer
// for exactly one spooling iteration.
type Page struct {
	Columns []string
	Rows    [][]string
}

// Runner fetches one page of an extract. Implementations must be read-only.
type Runner interface {
	Page(ctx context.Context, spec QuerySpec, limit, offset int) (*Page, error)
}

// PoolRunner executes extract queries against a pgx connection pool.
type PoolRunner struct {
	pool *pgxpool.Pool
}

// NewPoolRunner creates a Runner backed by the given pool.
func NewPoolRunner(pool *pgxpool.Pool) *PoolRunner {
	return &PoolRunner{pool: pool}
}

// Page runs the spec's SQL with the given limit/offset and renders every
// value to its CSV string form. An empty result still carries column names
// so the header-only file can be written.
func (r *PoolRunner) Page(ctx context.Context, spec QuerySpec, limit, offset int) (*Page, error) {
	rows, err := r.pool.Query(ctx, spec.SQL, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", spec.ID, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	page := &Page{Columns: make([]string, len(fields))}
	for i, f := range fields {
		page.Columns[i] = string(f.Name)
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("query %s: scan: %w", spec.ID, err)
		}
		record := make([]string, len(values))
		for i, v := range values {
			record[i] = formatValue(v)
		}
		page.Rows = append(page.Rows, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s: %w", spec.ID, err)
	}
	return page, nil
}

// formatValue renders a pgx-decoded value for CSV output. NULL becomes the
// empty string; 16-byte arrays are treated as UUIDs, matching how pgx hands
// back uuid columns.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	case [16]byte:
		return formatUUID(val[:])
	case []byte:
		if len(val) == 16 {
			return formatUUID(val)
		}
		return "\\x" + hex.EncodeToString(val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", val)
	}
}

func formatUUID(b []byte) string {
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}
