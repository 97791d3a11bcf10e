package roster

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quipper/poc/people/be/pkg/pagination"
	"github.com/quipper/poc/people/be/pkg/repositories/users"
)

// memRepo is an in-memory users.Repository ordered by insertion.
type memRepo struct {
	users      []*users.User
	lastFilter users.ListFilter
	failList   error
}

func (m *memRepo) Health() error { return nil }
func (m *memRepo) Disconnect()   {}

func (m *memRepo) ListUsersPage(ctx context.Context, f users.ListFilter, offset, limit int, withTotal bool) ([]*users.User, int, bool, error) {
	m.lastFilter = f
	if m.failList != nil {
		return nil, 0, false, m.failList
	}
	var matched []*users.User
	for _, u := range m.users {
		if f.SearchTerm == "" || strings.Contains(strings.ToLower(u.Name), strings.ToLower(f.SearchTerm)) {
			matched = append(matched, u)
		}
	}
	total := -1
	if withTotal {
		total = len(matched)
	}
	if offset >= len(matched) {
		return nil, total, false, nil
	}
	end := min(offset+limit, len(matched))
	return matched[offset:end], total, end < len(matched), nil
}

func (m *memRepo) GetUser(ctx context.Context, id int64) (*users.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, users.ErrNotFound
}

func (m *memRepo) CreateUser(ctx context.Context, u *users.User) (int64, error) {
	u.ID = int64(len(m.users) + 1)
	m.users = append(m.users, u)
	return u.ID, nil
}

func (m *memRepo) UpdateUser(ctx context.Context, u *users.User) error {
	for i, existing := range m.users {
		if existing.ID == u.ID {
			m.users[i] = u
			return nil
		}
	}
	return users.ErrNotFound
}

func newMemRepo(n int) *memRepo {
	m := &memRepo{}
	for i := 1; i <= n; i++ {
		_, _ = m.CreateUser(context.Background(), &users.User{Name: fmt.Sprintf("User %d", i)})
	}
	return m
}

func TestListUsersLinks(t *testing.T) {
	testCases := []struct {
		name        string
		total       int
		countTotals bool
		page        int
		want        pagination.Links
		wantUsers   int
	}{
		{
			name:        "first of several pages",
			total:       25,
			countTotals: true,
			page:        1,
			want:        pagination.Links{Current: 1, Next: pagination.Page(2), Last: pagination.Page(3)},
			wantUsers:   10,
		},
		{
			name:        "last page has no next",
			total:       25,
			countTotals: true,
			page:        3,
			want:        pagination.Links{Current: 3, Last: pagination.Page(3)},
			wantUsers:   5,
		},
		{
			name:        "totals off leaves last unknown",
			total:       25,
			countTotals: false,
			page:        2,
			want:        pagination.Links{Current: 2, Next: pagination.Page(3)},
			wantUsers:   10,
		},
		{
			name:        "empty roster still has one page",
			total:       0,
			countTotals: true,
			page:        0,
			want:        pagination.Links{Current: 1, Last: pagination.Page(1)},
			wantUsers:   0,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			svc := NewService(newMemRepo(testCase.total), Options{PageSize: 10, CountTotals: testCase.countTotals})
			page, err := svc.ListUsers(context.Background(), SearchFilter{Page: testCase.page})
			require.NoError(t, err)
			assert.Equal(t, testCase.want, page.PageLinks())
			assert.Len(t, page.Users, testCase.wantUsers)
			assert.NotNil(t, page.Users)
		})
	}
}

func TestListUsersIgnoresShortSearchTerm(t *testing.T) {
	repo := newMemRepo(3)
	svc := NewService(repo, Options{PageSize: 10})

	_, err := svc.ListUsers(context.Background(), SearchFilter{SearchTerm: "Us"})
	require.NoError(t, err)
	assert.Equal(t, "", repo.lastFilter.SearchTerm)

	_, err = svc.ListUsers(context.Background(), SearchFilter{SearchTerm: "User 2", RoleFilterID: "student", Sort: "email", Order: "desc"})
	require.NoError(t, err)
	assert.Equal(t, users.ListFilter{SearchTerm: "User 2", RoleID: "student", Sort: "email", Order: "desc"}, repo.lastFilter)
}

func TestListUsersWrapsRepositoryError(t *testing.T) {
	boom := errors.New("disk on fire")
	repo := newMemRepo(1)
	repo.failList = boom
	_, err := NewService(repo, Options{}).ListUsers(context.Background(), SearchFilter{Page: 2})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "page 2")
}

func TestSearchTerms(t *testing.T) {
	assert.Equal(t, "", EffectiveSearchTerm("ab"))
	assert.Equal(t, "abc", EffectiveSearchTerm(" abc "))
	assert.True(t, SearchTermTooShort("ab"))
	assert.False(t, SearchTermTooShort(""))
	assert.False(t, SearchTermTooShort("abc"))
}

func TestCreateUser(t *testing.T) {
	repo := newMemRepo(0)
	svc := NewService(repo, Options{})

	u, err := svc.CreateUser(context.Background(), UserInput{
		Name: " Ada Lovelace ", SortableName: "Lovelace, Ada", ShortName: "Ada", Email: "ada@example.com", SendConfirmation: "true",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "Ada Lovelace", u.Name)

	_, err = svc.CreateUser(context.Background(), UserInput{Name: "No Sortable", Email: "nope"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	var ie *InputError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "is required", ie.Fields["sortable_name"])
	assert.Equal(t, "is required", ie.Fields["short_name"])
	assert.Equal(t, "must be an email address", ie.Fields["email"])
	assert.NotContains(t, ie.Fields, "name")
}

func TestUpdateUser(t *testing.T) {
	repo := newMemRepo(2)
	svc := NewService(repo, Options{})
	in := UserInput{Name: "Renamed", SortableName: "Renamed", ShortName: "R"}

	u, err := svc.UpdateUser(context.Background(), 2, in)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", u.Name)
	assert.Equal(t, "Renamed", repo.users[1].Name)

	_, err = svc.UpdateUser(context.Background(), 42, in)
	assert.ErrorIs(t, err, ErrNotFound)
}
