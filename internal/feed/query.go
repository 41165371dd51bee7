// Package feed parses and validates the query parameters that narrow the
// shared post feed.
//
// A search term is exclusive: it matches posts whose owner's username or
// one of whose category names equals the term exactly, and it may not be
// combined with published_by, category or ordering. Without a search term
// the remaining filters combine with AND, and ordering sorts ascending by
// the chosen counter.
package feed

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"photogenie/internal/validation"
)

type Ordering string

const (
	OrderNone      Ordering = ""
	OrderViews     Ordering = "views"
	OrderDownloads Ordering = "downloads"
)

const (
	ParamSearch      = "search"
	ParamPublishedBy = "published_by"
	ParamCategory    = "category"
	ParamOrdering    = "ordering"
)

const (
	msgExclusiveSearch = "Either search is allowed or the other query parameters."
	msgCategoryCase    = "Category must be in lower case."
)

// Query is an immutable description of one feed request. The zero value
// selects every post in default order.
type Query struct {
	Search      string
	PublishedBy string
	Category    string
	Ordering    Ordering
}

// IsSearch reports whether the query runs in search mode.
func (q Query) IsSearch() bool {
	return q.Search != ""
}

// ParseQuery reads the feed parameters from values and validates them.
// Empty parameters count as absent.
func ParseQuery(values url.Values) (Query, error) {
	q := Query{
		Search:      strings.TrimSpace(values.Get(ParamSearch)),
		PublishedBy: strings.TrimSpace(values.Get(ParamPublishedBy)),
		Category:    strings.TrimSpace(values.Get(ParamCategory)),
		Ordering:    Ordering(strings.TrimSpace(values.Get(ParamOrdering))),
	}
	if err := q.Validate(); err != nil {
		return Query{}, err
	}
	return q, nil
}

// Validate reports every rule the query breaks as validation.Errors.
func (q Query) Validate() error {
	errs := validation.Errors{}

	if !q.Ordering.Valid() {
		errs.Add(ParamOrdering, fmt.Sprintf("%q is not a valid choice.", string(q.Ordering)))
	}
	if q.Search != "" && (q.PublishedBy != "" || q.Category != "" || q.Ordering != OrderNone) {
		errs.Add(validation.NonFieldKey, msgExclusiveSearch)
	}
	if q.Category != "" && hasUpper(q.Category) {
		errs.Add(ParamCategory, msgCategoryCase)
	}

	return errs.Err()
}

func (o Ordering) Valid() bool {
	switch o {
	case OrderNone, OrderViews, OrderDownloads:
		return true
	}
	return false
}

func hasUpper(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}
