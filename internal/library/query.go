/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package library

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"gorm.io/gorm"
)

// ErrInvalidQuery indicates a playlist query that cannot be parsed.
var ErrInvalidQuery = errors.New("invalid query")

// Term is one condition of a playlist query. An empty Field means a free
// text match on title, artist and album.
type Term struct {
	Field  string
	Value  string
	Negate bool
}

var textFields = map[string]bool{
	"artist": true,
	"album":  true,
	"title":  true,
	"genre":  true,
}

var numericFields = map[string]string{
	"rating":    "rating",
	"playcount": "play_count",
}

// ParseQuery splits a query into terms. Terms are separated by spaces;
// double quotes group words, a leading "-" negates a term.
func ParseQuery(expr string) ([]Term, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return nil, err
	}

	terms := make([]Term, 0, len(tokens))
	for _, tok := range tokens {
		var t Term
		if strings.HasPrefix(tok, "-") && len(tok) > 1 {
			t.Negate = true
			tok = tok[1:]
		}

		field, value, found := strings.Cut(tok, ":")
		if !found {
			t.Value = tok
			terms = append(terms, t)
			continue
		}

		field = strings.ToLower(field)
		if !textFields[field] && numericFields[field] == "" {
			return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidQuery, field)
		}
		if value == "" {
			return nil, fmt.Errorf("%w: empty value for %q", ErrInvalidQuery, field)
		}
		if numericFields[field] != "" {
			if _, _, err := parseRange(value); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidQuery, field, err)
			}
		}
		t.Field = field
		t.Value = value
		terms = append(terms, t)
	}
	return terms, nil
}

// tokenize splits on whitespace outside double quotes and strips the quotes.
func tokenize(expr string) ([]string, error) {
	var (
		tokens  []string
		current strings.Builder
		quoted  bool
	)
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	for _, r := range expr {
		switch {
		case r == '"':
			quoted = !quoted
		case unicode.IsSpace(r) && !quoted:
			flush()
		default:
			current.WriteRune(r)
		}
	}
	if quoted {
		return nil, fmt.Errorf("%w: unterminated quote", ErrInvalidQuery)
	}
	flush()
	return tokens, nil
}

// parseRange reads "N", "A..B", "A.." or "..B". A nil bound is open.
func parseRange(value string) (lo, hi *int, err error) {
	bound := func(s string) (*int, error) {
		if s == "" {
			return nil, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("%q is not a whole number", s)
		}
		return &n, nil
	}

	from, to, isRange := strings.Cut(value, "..")
	if !isRange {
		n, err := bound(value)
		if err != nil {
			return nil, nil, err
		}
		return n, n, nil
	}
	if from == "" && to == "" {
		return nil, nil, errors.New("range needs at least one bound")
	}
	if lo, err = bound(from); err != nil {
		return nil, nil, err
	}
	if hi, err = bound(to); err != nil {
		return nil, nil, err
	}
	if lo != nil && hi != nil && *lo > *hi {
		return nil, nil, fmt.Errorf("range %d..%d is empty", *lo, *hi)
	}
	return lo, hi, nil
}

// applyTerm narrows query by one parsed term.
func applyTerm(query *gorm.DB, t Term) *gorm.DB {
	cond := func(clause string, args ...any) *gorm.DB {
		if t.Negate {
			return query.Where("NOT ("+clause+")", args...)
		}
		return query.Where(clause, args...)
	}

	switch {
	case t.Field == "":
		pattern := "%" + strings.ToLower(t.Value) + "%"
		return cond("(LOWER(title) LIKE ? OR LOWER(artist) LIKE ? OR LOWER(album) LIKE ?)", pattern, pattern, pattern)
	case textFields[t.Field]:
		return cond("LOWER("+t.Field+") = ?", strings.ToLower(t.Value))
	default:
		column := numericFields[t.Field]
		lo, hi, _ := parseRange(t.Value)
		switch {
		case lo != nil && hi != nil:
			return cond(column+" BETWEEN ? AND ?", *lo, *hi)
		case lo != nil:
			return cond(column+" >= ?", *lo)
		default:
			return cond(column+" <= ?", *hi)
		}
	}
}
