package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	r "github.com/quipper/poc/people/be/pkg/repositories/users"
)

func newTestRepo(t *testing.T) *SQLiteRepo {
	t.Helper()
	repo, err := NewSQLiteRepo(filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(repo.Disconnect)
	return repo
}

func seed(t *testing.T, repo *SQLiteRepo, users ...*r.User) {
	t.Helper()
	for _, u := range users {
		_, err := repo.CreateUser(context.Background(), u)
		require.NoError(t, err)
	}
}

func names(users []*r.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.SortableName)
	}
	return out
}

func TestCreateAndGetUser(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	login := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	u := &r.User{
		Name:         "Ada Lovelace",
		SortableName: "Lovelace, Ada",
		ShortName:    "Ada",
		Email:        "ada@example.com",
		LastLogin:    &login,
		Roles:        []string{"teacher"},
	}
	id, err := repo.CreateUser(ctx, u)
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.NotEmpty(t, u.UUID)

	got, err := repo.GetUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Lovelace, Ada", got.SortableName)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, []string{"teacher"}, got.Roles)
	assert.Equal(t, u.UUID, got.UUID)
	require.NotNil(t, got.LastLogin)
	assert.True(t, login.Equal(*got.LastLogin))

	_, err = repo.GetUser(ctx, id+100)
	assert.ErrorIs(t, err, r.ErrNotFound)
}

func TestUpdateUser(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := &r.User{Name: "Grace Hopper", SortableName: "Hopper, Grace", ShortName: "Grace"}
	seed(t, repo, u)

	u.Email = "grace@example.com"
	u.ShortName = "Amazing Grace"
	require.NoError(t, repo.UpdateUser(ctx, u))

	got, err := repo.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Amazing Grace", got.ShortName)
	assert.Equal(t, "grace@example.com", got.Email)

	missing := &r.User{ID: 9999, Name: "x", SortableName: "x", ShortName: "x"}
	assert.ErrorIs(t, repo.UpdateUser(ctx, missing), r.ErrNotFound)
}

func TestListUsersPage(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	for i := 1; i <= 7; i++ {
		seed(t, repo, &r.User{
			Name:         fmt.Sprintf("Student %02d", i),
			SortableName: fmt.Sprintf("%02d, Student", i),
			ShortName:    fmt.Sprintf("S%d", i),
			Email:        fmt.Sprintf("s%d@example.com", i),
			Roles:        []string{"student"},
		})
	}
	seed(t, repo, &r.User{Name: "Teach Er", SortableName: "99, Teacher", ShortName: "T", Roles: []string{"teacher", "admin"}})

	t.Run("first page with total", func(t *testing.T) {
		users, total, hasMore, err := repo.ListUsersPage(ctx, r.ListFilter{}, 0, 3, true)
		require.NoError(t, err)
		assert.Equal(t, 8, total)
		assert.True(t, hasMore)
		assert.Equal(t, []string{"01, Student", "02, Student", "03, Student"}, names(users))
	})

	t.Run("last page without total", func(t *testing.T) {
		users, total, hasMore, err := repo.ListUsersPage(ctx, r.ListFilter{}, 6, 3, false)
		require.NoError(t, err)
		assert.Equal(t, -1, total)
		assert.False(t, hasMore)
		assert.Equal(t, []string{"07, Student", "99, Teacher"}, names(users))
	})

	t.Run("search term", func(t *testing.T) {
		users, total, _, err := repo.ListUsersPage(ctx, r.ListFilter{SearchTerm: "s3@exa"}, 0, 10, true)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, []string{"03, Student"}, names(users))
	})

	t.Run("search wildcards are literal", func(t *testing.T) {
		users, _, _, err := repo.ListUsersPage(ctx, r.ListFilter{SearchTerm: "%"}, 0, 10, true)
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("role filter", func(t *testing.T) {
		users, total, _, err := repo.ListUsersPage(ctx, r.ListFilter{RoleID: "admin"}, 0, 10, true)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, []string{"99, Teacher"}, names(users))
	})

	t.Run("descending order", func(t *testing.T) {
		users, _, _, err := repo.ListUsersPage(ctx, r.ListFilter{Order: r.OrderDesc}, 0, 2, false)
		require.NoError(t, err)
		assert.Equal(t, []string{"99, Teacher", "07, Student"}, names(users))
	})

	t.Run("unknown sort falls back to username", func(t *testing.T) {
		users, _, _, err := repo.ListUsersPage(ctx, r.ListFilter{Sort: "drop table"}, 0, 1, false)
		require.NoError(t, err)
		assert.Equal(t, []string{"01, Student"}, names(users))
	})
}

func TestHealth(t *testing.T) {
	repo := newTestRepo(t)
	assert.NoError(t, repo.Health())
}
