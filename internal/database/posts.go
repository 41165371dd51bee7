package database

import (
	"context"
	"errors"
	"photogenie/internal/feed"
	"photogenie/internal/models"

	"github.com/jackc/pgx/v5"
)

type CreatePostParams struct {
	OwnerID     int64
	Description string
	Image       ImageParams
}

type ImageParams struct {
	Key         string
	Name        string
	ContentType string
	Width       int
	Height      int
}

// UpdatePostParams leaves a field untouched when it is nil. The owner is
// not updatable.
type UpdatePostParams struct {
	Description *string
	Image       *ImageParams
}

const postSelect = `
	SELECT p.id, p.published_at, p.published_by, u.username, p.description,
	       p.image_name, p.image_key, p.content_type, p.width, p.height,
	       p.views, p.downloads
	FROM posts p
	JOIN users u ON u.id = p.published_by
`

func scanPost(row pgx.Row) (*models.Post, error) {
	var post models.Post
	err := row.Scan(
		&post.ID,
		&post.PublishedAt,
		&post.PublishedBy.ID,
		&post.PublishedBy.Username,
		&post.Description,
		&post.Image,
		&post.ImageKey,
		&post.ContentType,
		&post.Width,
		&post.Height,
		&post.Views,
		&post.Downloads,
	)
	if err != nil {
		return nil, err
	}
	post.Categories = []models.Category{}
	post.Tags = []string{}
	return &post, nil
}

func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (int64, error) {
	query := `
		INSERT INTO posts (published_by, description, image_key, image_name, content_type, width, height)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	var id int64
	err := q.db.QueryRow(ctx, query,
		arg.OwnerID,
		arg.Description,
		arg.Image.Key,
		arg.Image.Name,
		arg.Image.ContentType,
		arg.Image.Width,
		arg.Image.Height,
	).Scan(&id)
	return id, err
}

// GetPost returns nil when no post has the id.
func (q *Queries) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	post, err := scanPost(q.db.QueryRow(ctx, postSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	posts := []*models.Post{post}
	if err := q.loadPostRelations(ctx, posts); err != nil {
		return nil, err
	}
	return post, nil
}

func (q *Queries) ListPosts(ctx context.Context, query feed.Query, limit, offset int) ([]models.Post, error) {
	f := buildPostFilter(query)
	sql := postSelect + f.where +
		` ORDER BY ` + f.orderBy +
		` LIMIT ` + f.nextArg(1) + ` OFFSET ` + f.nextArg(2)
	args := append(append([]interface{}{}, f.args...), limit, offset)

	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		refs = append(refs, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := q.loadPostRelations(ctx, refs); err != nil {
		return nil, err
	}

	posts := make([]models.Post, 0, len(refs))
	for _, p := range refs {
		posts = append(posts, *p)
	}
	return posts, nil
}

func (q *Queries) CountPosts(ctx context.Context, query feed.Query) (int64, error) {
	f := buildPostFilter(query)
	sql := `SELECT count(*) FROM posts p JOIN users u ON u.id = p.published_by ` + f.where

	var count int64
	err := q.db.QueryRow(ctx, sql, f.args...).Scan(&count)
	return count, err
}

func (q *Queries) loadPostRelations(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	byID := make(map[int64]*models.Post, len(posts))
	ids := make([]int64, 0, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	rows, err := q.db.Query(ctx, `
		SELECT pc.post_id, c.id, c.name
		FROM post_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.post_id = ANY($1)
		ORDER BY c.name
	`, ids)
	if err != nil {
		return err
	}
	for rows.Next() {
		var postID int64
		var c models.Category
		if err := rows.Scan(&postID, &c.ID, &c.Name); err != nil {
			rows.Close()
			return err
		}
		byID[postID].Categories = append(byID[postID].Categories, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = q.db.Query(ctx, `
		SELECT pt.post_id, t.name
		FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id = ANY($1)
		ORDER BY t.name
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var postID int64
		var name string
		if err := rows.Scan(&postID, &name); err != nil {
			return err
		}
		byID[postID].Tags = append(byID[postID].Tags, name)
	}

	return rows.Err()
}

func (q *Queries) UpdatePost(ctx context.Context, id int64, arg UpdatePostParams) (bool, error) {
	var key, name, contentType *string
	var width, height *int
	if arg.Image != nil {
		key, name, contentType = &arg.Image.Key, &arg.Image.Name, &arg.Image.ContentType
		width, height = &arg.Image.Width, &arg.Image.Height
	}

	query := `
		UPDATE posts SET
			description  = COALESCE($2, description),
			image_key    = COALESCE($3, image_key),
			image_name   = COALESCE($4, image_name),
			content_type = COALESCE($5, content_type),
			width        = COALESCE($6, width),
			height       = COALESCE($7, height)
		WHERE id = $1
	`
	res, err := q.db.Exec(ctx, query, id, arg.Description, key, name, contentType, width, height)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

// DeletePost removes the post only if ownerID still owns it.
func (q *Queries) DeletePost(ctx context.Context, id int64, ownerID int64) (bool, error) {
	res, err := q.db.Exec(ctx, `DELETE FROM posts WHERE id = $1 AND published_by = $2`, id, ownerID)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

// IncrementViews bumps the view counter in a single statement and returns
// the new value, so concurrent readers never lose an update.
func (q *Queries) IncrementViews(ctx context.Context, id int64) (int64, error) {
	return q.incrementCounter(ctx, `UPDATE posts SET views = views + 1 WHERE id = $1 RETURNING views`, id)
}

func (q *Queries) IncrementDownloads(ctx context.Context, id int64) (int64, error) {
	return q.incrementCounter(ctx, `UPDATE posts SET downloads = downloads + 1 WHERE id = $1 RETURNING downloads`, id)
}

func (q *Queries) incrementCounter(ctx context.Context, query string, id int64) (int64, error) {
	var value int64
	if err := q.db.QueryRow(ctx, query, id).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrPostNotFound
		}
		return 0, err
	}
	return value, nil
}
