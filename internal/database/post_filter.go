package database

import (
	"fmt"
	"strings"

	"photogenie/internal/feed"
)

const defaultPostOrder = "p.published_at ASC, p.id ASC"

// postFilter is the SQL rendering of a feed.Query over the aliases
// p (posts) and u (users). Arguments are numbered from $1.
type postFilter struct {
	where   string
	args    []interface{}
	orderBy string
}

func hasCategory(placeholder string) string {
	return `EXISTS (
			SELECT 1 FROM post_categories pc
			JOIN categories c ON c.id = pc.category_id
			WHERE pc.post_id = p.id AND c.name = ` + placeholder + `)`
}

// buildPostFilter is pure: the same query always yields the same filter.
func buildPostFilter(q feed.Query) postFilter {
	f := postFilter{orderBy: defaultPostOrder}

	if q.IsSearch() {
		f.args = []interface{}{q.Search}
		f.where = "WHERE (u.username = $1 OR " + hasCategory("$1") + ")"
		return f
	}

	var conds []string
	if q.PublishedBy != "" {
		f.args = append(f.args, q.PublishedBy)
		conds = append(conds, fmt.Sprintf("u.username = $%d", len(f.args)))
	}
	if q.Category != "" {
		f.args = append(f.args, q.Category)
		conds = append(conds, hasCategory(fmt.Sprintf("$%d", len(f.args))))
	}
	if len(conds) > 0 {
		f.where = "WHERE " + strings.Join(conds, " AND ")
	}

	switch q.Ordering {
	case feed.OrderViews:
		f.orderBy = "p.views ASC, " + defaultPostOrder
	case feed.OrderDownloads:
		f.orderBy = "p.downloads ASC, " + defaultPostOrder
	}

	return f
}

// nextArg returns the placeholder for an argument appended after the
// filter's own.
func (f postFilter) nextArg(offset int) string {
	return fmt.Sprintf("$%d", len(f.args)+offset)
}
