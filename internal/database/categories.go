package database

import (
	"context"
	"errors"
	"fmt"
	"photogenie/internal/models"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
)

// UnknownCategoriesError lists requested category ids that do not exist.
type UnknownCategoriesError struct {
	IDs []int64
}

func (e *UnknownCategoriesError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = fmt.Sprint(id)
	}
	return "unknown categories: " + strings.Join(ids, ", ")
}

func (q *Queries) ListCategories(ctx context.Context, limit, offset int) ([]models.Category, error) {
	query := `SELECT id, name FROM categories ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := q.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

func (q *Queries) CountCategories(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `SELECT count(*) FROM categories`).Scan(&count)
	return count, err
}

func (q *Queries) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	var c models.Category
	err := q.db.QueryRow(ctx, `SELECT id, name FROM categories WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// CreateCategory stores name as given; callers normalise it to lower case.
func (q *Queries) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	var c models.Category
	err := q.db.QueryRow(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING id, name`, name,
	).Scan(&c.ID, &c.Name)
	if err != nil {
		switch pgErrorCode(err) {
		case pgUniqueViolation:
			return nil, ErrDuplicateCategory
		case pgCheckViolation:
			return nil, ErrInvalidCategory
		}
		return nil, err
	}
	return &c, nil
}

// ResolveCategories loads every id in ids, failing with
// *UnknownCategoriesError if any is missing.
func (q *Queries) ResolveCategories(ctx context.Context, ids []int64) ([]models.Category, error) {
	if len(ids) == 0 {
		return []models.Category{}, nil
	}

	rows, err := q.db.Query(ctx, `SELECT id, name FROM categories WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := make(map[int64]bool, len(ids))
	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		found[c.ID] = true
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var missing []int64
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
		return nil, &UnknownCategoriesError{IDs: missing}
	}

	return categories, nil
}

func (q *Queries) SetPostCategories(ctx context.Context, postID int64, categoryIDs []int64) error {
	if _, err := q.db.Exec(ctx, `DELETE FROM post_categories WHERE post_id = $1`, postID); err != nil {
		return err
	}
	if len(categoryIDs) == 0 {
		return nil
	}

	query := `
		INSERT INTO post_categories (post_id, category_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING
	`
	_, err := q.db.Exec(ctx, query, postID, categoryIDs)
	return err
}
