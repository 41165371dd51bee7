package database

import (
	"context"
	"photogenie/internal/models"
	"testing"

	"github.com/jaevor/go-nanoid"
	"github.com/stretchr/testify/require"
)

var randomSuffix = func() func() string {
	gen, err := nanoid.CustomASCII("abcdefghijklmnopqrstuvwxyz0123456789", 10)
	if err != nil {
		panic(err)
	}
	return gen
}()

// uniqueName keeps tests independent while they share one database.
func uniqueName(prefix string) string {
	return prefix + "_" + randomSuffix()
}

func createTestUser(t *testing.T, username string) *models.User {
	user, err := testStore.CreateUser(context.Background(), CreateUserParams{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	require.NotNil(t, user)
	return user
}

func createTestCategory(t *testing.T, name string) *models.Category {
	category, err := testStore.CreateCategory(context.Background(), name)
	require.NoError(t, err)
	return category
}

type testPostOptions struct {
	categories []int64
	tags       []string
	views      int64
	downloads  int64
}

func createTestPost(t *testing.T, owner *models.User, opts testPostOptions) *models.Post {
	ctx := context.Background()
	var id int64
	err := testStore.ExecTx(ctx, func(q *Queries) error {
		var err error
		id, err = q.CreatePost(ctx, CreatePostParams{
			OwnerID:     owner.ID,
			Description: "description of " + owner.Username,
			Image: ImageParams{
				Key:         randomSuffix(),
				Name:        "photo.png",
				ContentType: "image/png",
				Width:       40,
				Height:      30,
			},
		})
		if err != nil {
			return err
		}
		if err := q.SetPostCategories(ctx, id, opts.categories); err != nil {
			return err
		}
		return q.SetPostTags(ctx, id, opts.tags)
	})
	require.NoError(t, err)

	_, err = testStore.pool.Exec(ctx, `UPDATE posts SET views = $2, downloads = $3 WHERE id = $1`, id, opts.views, opts.downloads)
	require.NoError(t, err)

	post, err := testStore.GetPost(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, post)
	return post
}

func postIDs(posts []models.Post) []int64 {
	ids := make([]int64, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}
