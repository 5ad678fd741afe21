package ingest

// Per-field coercions from raw CSV strings to staging-table types. Every
// function is total: bad input becomes an invalid (NULL) value, never an
// error. Data-quality triage happens downstream of the staging table.

import (
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// timestampLayouts are tried in order; the first match wins. Day-first
// before month-first means an ambiguous date like 03/04/2024 parses as
// April 3rd. That follows the upstream export convention and is resolved by
// layout order, not by inspecting the value.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"Mon, 02 Jan 2006 15:04:05 MST",
}

var truthyValues = map[string]bool{
	"true": true,
	"1":    true,
	"yes":  true,
	"t":    true,
	"y":    true,
}

func toText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toInt(s string) pgtype.Int4 {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Int4{}
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(n), Valid: true}
}

func toBool(s string) pgtype.Bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Bool{}
	}
	return pgtype.Bool{Bool: truthyValues[strings.ToLower(s)], Valid: true}
}

func toTimestamp(s string) pgtype.Timestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Timestamp{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return pgtype.Timestamp{Time: t, Valid: true}
		}
	}
	return pgtype.Timestamp{}
}
