// Package sqldb is the database/sql storage shared by the sqlite and
// postgres backends. Queries are written with '?' placeholders and rebound
// for the target dialect.
package sqldb

import (
	"strconv"
	"strings"
)

// Dialect describes the placeholder style of a SQL backend
type Dialect struct {
	Name     string
	Numbered bool // $1, $2 ... instead of ?
}

var (
	// SQLite uses '?' placeholders
	SQLite = Dialect{Name: "sqlite"}
	// Postgres uses '$n' placeholders
	Postgres = Dialect{Name: "postgres", Numbered: true}
)

// Rebind rewrites '?' placeholders for the dialect. Question marks inside
// single-quoted literals are left alone.
func (d Dialect) Rebind(query string) string {
	if !d.Numbered {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for _, r := range query {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
