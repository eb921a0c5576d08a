// Copyright (c) 2025 STRR Reports
// Licensed under the MIT License. See LICENSE file in the project root for details.

package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, path string, records [][]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	w := csv.NewWriter(f)
	require.NoError(t, w.WriteAll(records))
	require.NoError(t, f.Close())
}

func TestSubstituteColumn(t *testing.T) {
	subs := map[string]string{
		"airbnb-api": "Airbnb",
		"vrbo-api":   "Vrbo (Expedia Group)",
	}

	path := filepath.Join(t.TempDir(), "applications.csv")
	writeCSV(t, path, [][]string{
		{"application_number", "submitter"},
		{"10000000000001", "airbnb-api"},
		{"10000000000002", "jdoe"},
		{"10000000000003", "vrbo-api"},
		{"10000000000004", ""},
	})

	require.NoError(t, SubstituteColumn(path, "submitter", subs))

	records := readCSV(t, path)
	require.Len(t, records, 5) // row-preserving
	require.Equal(t, "Airbnb", records[1][1])
	require.Equal(t, "jdoe", records[2][1]) // miss passes through
	require.Equal(t, "Vrbo (Expedia Group)", records[3][1])
	require.Equal(t, "", records[4][1])
}

func TestSubstituteColumnIdempotent(t *testing.T) {
	subs := map[string]string{"airbnb-api": "Airbnb"}

	path := filepath.Join(t.TempDir(), "registrations.csv")
	writeCSV(t, path, [][]string{
		{"registration_number", "submitter"},
		{"H12345678", "airbnb-api"},
	})

	require.NoError(t, SubstituteColumn(path, "submitter", subs))
	first := readCSV(t, path)

	// Already-substituted values are not in the map and pass through.
	require.NoError(t, SubstituteColumn(path, "submitter", subs))
	second := readCSV(t, path)
	require.Equal(t, first, second)
}

func TestSubstituteColumnHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	writeCSV(t, path, [][]string{{"id", "submitter"}})

	require.NoError(t, SubstituteColumn(path, "submitter", Substitutions))
	require.Len(t, readCSV(t, path), 1)
}

func TestSubstituteColumnMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	writeCSV(t, path, [][]string{{"id", "status"}, {"1", "ACTIVE"}})

	err := SubstituteColumn(path, "submitter", Substitutions)
	require.Error(t, err)
	// The file is untouched on failure.
	require.Equal(t, [][]string{{"id", "status"}, {"1", "ACTIVE"}}, readCSV(t, path))
}
