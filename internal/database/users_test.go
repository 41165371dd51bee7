package database

import (
	"context"
	"photogenie/internal/auth"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetUser(t *testing.T) {
	ctx := context.Background()
	hashedPassword, err := auth.HashPassword("secretpassword")
	require.NoError(t, err)

	username := uniqueName("user")
	created, err := testStore.CreateUser(ctx, CreateUserParams{
		Username:     username,
		Email:        "someone@example.com",
		FirstName:    "Some",
		LastName:     "One",
		PasswordHash: hashedPassword,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.NotZero(t, created.CreatedAt)

	foundUser, err := testStore.GetUserByUsername(ctx, username)
	require.NoError(t, err)
	require.NotNil(t, foundUser)
	require.Equal(t, created.ID, foundUser.ID)
	require.Equal(t, "Some", foundUser.FirstName)
	require.True(t, auth.CheckPasswordHash("secretpassword", foundUser.PasswordHash))

	byID, err := testStore.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, username, byID.Username)

	nonExistentUser, err := testStore.GetUserByUsername(ctx, "nonexistent_"+username)
	require.NoError(t, err)
	require.Nil(t, nonExistentUser)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	username := uniqueName("dup")
	createTestUser(t, username)

	_, err := testStore.CreateUser(context.Background(), CreateUserParams{Username: username, PasswordHash: "hash"})
	require.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	user := createTestUser(t, uniqueName("session"))

	live := CreateSessionParams{
		ID:           uuid.New(),
		UserID:       user.ID,
		RefreshToken: uniqueName("live"),
		UserAgent:    "test-agent",
		ClientIP:     "127.0.0.1",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	expired := live
	expired.ID = uuid.New()
	expired.RefreshToken = uniqueName("expired")
	expired.ExpiresAt = time.Now().Add(-time.Hour)

	require.NoError(t, testStore.CreateSession(ctx, live))
	require.NoError(t, testStore.CreateSession(ctx, expired))

	found, err := testStore.GetUserByRefreshToken(ctx, live.RefreshToken)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, user.ID, found.ID)

	found, err = testStore.GetUserByRefreshToken(ctx, expired.RefreshToken)
	require.NoError(t, err)
	require.Nil(t, found, "expired refresh tokens must not authenticate")

	sessions, err := testStore.ListSessionsForUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, live.ID, sessions[0].ID)

	deleted, err := testStore.DeleteSessionByID(ctx, live.ID, user.ID+1)
	require.NoError(t, err)
	require.False(t, deleted, "sessions of other users cannot be deleted")

	consumed, err := testStore.DeleteSessionByRefreshToken(ctx, live.RefreshToken)
	require.NoError(t, err)
	require.True(t, consumed)
	consumed, err = testStore.DeleteSessionByRefreshToken(ctx, live.RefreshToken)
	require.NoError(t, err)
	require.False(t, consumed, "a refresh token is consumed only once")
	consumed, err = testStore.DeleteSessionByRefreshToken(ctx, expired.RefreshToken)
	require.NoError(t, err)
	require.False(t, consumed, "expired sessions cannot be consumed")
	found, err = testStore.GetUserByRefreshToken(ctx, live.RefreshToken)
	require.NoError(t, err)
	require.Nil(t, found)

	require.NoError(t, testStore.DeleteAllSessionsForUser(ctx, user.ID))
	var remaining int
	err = testStore.pool.QueryRow(ctx, `SELECT count(*) FROM sessions WHERE user_id = $1`, user.ID).Scan(&remaining)
	require.NoError(t, err)
	require.Zero(t, remaining)
}

func TestDeleteSessionByRefreshToken_Concurrent(t *testing.T) {
	ctx := context.Background()
	user := createTestUser(t, uniqueName("race"))

	session := CreateSessionParams{
		ID:           uuid.New(),
		UserID:       user.ID,
		RefreshToken: uniqueName("race"),
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	require.NoError(t, testStore.CreateSession(ctx, session))

	const callers = 8
	results := make(chan bool, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var consumed bool
			err := testStore.ExecTx(ctx, func(q *Queries) error {
				var err error
				consumed, err = q.DeleteSessionByRefreshToken(ctx, session.RefreshToken)
				return err
			})
			if err == nil {
				results <- consumed
			}
		}()
	}
	wg.Wait()
	close(results)

	var wins, total int
	for consumed := range results {
		total++
		if consumed {
			wins++
		}
	}
	require.Equal(t, callers, total)
	require.Equal(t, 1, wins, "exactly one caller consumes the token")
}
