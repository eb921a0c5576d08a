// Copyright (c) 2025 STRR Reports
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package export runs the registry extract queries and produces the merged
// CSV artifact for each one. Results are fetched in fixed-size pages, spooled
// to per-page batch files and merged into a single file with one header row.
// Two of the exports rewrite their submitter column through the static
// platform service-account substitution table.
package export

import "sort"

// QuerySpec describes one extract: a stable identifier, the SQL text and the
// page size used while spooling. Specs are immutable once built.
type QuerySpec struct {
	ID    string
	Title string
	// SQL must accept LIMIT and OFFSET as $1 and $2 and order by a stable key.
	SQL      string
	PageSize int
	// SubstituteColumn names the CSV column rewritten through the
	// substitution table. Empty means no substitution for this extract.
	SubstituteColumn string
}

// Specs returns the four registry extracts in report order.
func Specs(pageSize int) []QuerySpec {
	return []QuerySpec{
		{
			ID:    "registrations",
			Title: "Registrations",
			SQL: `SELECT r.id,
       r.registration_number,
       r.registration_type,
       r.status,
       r.start_date,
       r.expiry_date,
       u.username AS submitter
  FROM registrations r
  LEFT JOIN users u ON u.id = r.user_id
 ORDER BY r.id
 LIMIT $1 OFFSET $2`,
			PageSize:         pageSize,
			SubstituteColumn: "submitter",
		},
		{
			ID:    "applications",
			Title: "Applications",
			SQL: `SELECT a.id,
       a.application_number,
       a.type,
       a.status,
       a.payment_status_code,
       a.application_date,
       u.username AS submitter
  FROM application a
  LEFT JOIN users u ON u.id = a.submitter_id
 ORDER BY a.id
 LIMIT $1 OFFSET $2`,
			PageSize:         pageSize,
			SubstituteColumn: "submitter",
		},
		{
			ID:    "sbc_accounts",
			Title: "SBC Account IDs",
			SQL: `SELECT DISTINCT a.payment_account
  FROM application a
 WHERE a.payment_account IS NOT NULL
 ORDER BY a.payment_account
 LIMIT $1 OFFSET $2`,
			PageSize: pageSize,
		},
		{
			ID:    "review_queue",
			Title: "Applications Awaiting Review",
			SQL: `SELECT a.id,
       a.application_number,
       a.registration_type,
       a.status,
       a.application_date
  FROM application a
 WHERE a.status IN ('FULL_REVIEW', 'PROVISIONAL_REVIEW', 'NOC_PENDING')
 ORDER BY a.id
 LIMIT $1 OFFSET $2`,
			PageSize: pageSize,
		},
	}
}

// Substitutions maps platform service-account usernames to the organization
// names shown in the exported files. Loaded once, never mutated. Usernames
// absent from this table pass through untouched.
var Substitutions = map[string]string{
	"airbnb-api":      "Airbnb",
	"booking-api":     "Booking.com",
	"expedia-api":     "Expedia",
	"sonder-api":      "Sonder",
	"tripadvisor-api": "FlipKey (Tripadvisor)",
	"vrbo-api":        "Vrbo (Expedia Group)",
	"whimstay-api":    "Whimstay",
}

// Substitution is one username to organization pair, for display.
type Substitution struct {
	Username     string
	Organization string
}

// OrderedSubstitutions returns the substitution table sorted by username so
// the report renders it deterministically.
func OrderedSubstitutions() []Substitution {
	out := make([]Substitution, 0, len(Substitutions))
	for u, o := range Substitutions {
		out = append(out, Substitution{Username: u, Organization: o})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}
