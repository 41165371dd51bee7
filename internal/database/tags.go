package database

import "context"

// EnsureTags creates any tag in names that does not exist yet and returns
// the ids of all of them.
func (q *Queries) EnsureTags(ctx context.Context, names []string) ([]int64, error) {
	if len(names) == 0 {
		return []int64{}, nil
	}

	_, err := q.db.Exec(ctx,
		`INSERT INTO tags (name) SELECT unnest($1::text[]) ON CONFLICT (name) DO NOTHING`, names)
	if err != nil {
		return nil, err
	}

	rows, err := q.db.Query(ctx, `SELECT id FROM tags WHERE name = ANY($1) ORDER BY id`, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (q *Queries) SetPostTags(ctx context.Context, postID int64, names []string) error {
	tagIDs, err := q.EnsureTags(ctx, names)
	if err != nil {
		return err
	}

	if _, err := q.db.Exec(ctx, `DELETE FROM post_tags WHERE post_id = $1`, postID); err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}

	_, err = q.db.Exec(ctx,
		`INSERT INTO post_tags (post_id, tag_id) SELECT $1, unnest($2::bigint[]) ON CONFLICT DO NOTHING`,
		postID, tagIDs)
	return err
}
