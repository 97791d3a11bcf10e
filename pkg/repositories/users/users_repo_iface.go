package users

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a user id does not exist.
var ErrNotFound = errors.New("user not found")

// User is an account shown in the people roster.
// Roles holds role ids; the toolbar filters on them.
type User struct {
	ID           int64      `json:"id"`
	UUID         string     `json:"uuid"`
	Name         string     `json:"name"`
	SortableName string     `json:"sortable_name"`
	ShortName    string     `json:"short_name"`
	Email        string     `json:"email,omitempty"`
	TimeZone     string     `json:"time_zone,omitempty"`
	AvatarURL    string     `json:"avatar_url,omitempty"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	SISUserID    string     `json:"sis_user_id,omitempty"`
	UniqueID     string     `json:"unique_id,omitempty"`
	Path         string     `json:"path,omitempty"`
	Roles        []string   `json:"roles,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Sort keys accepted by ListFilter.Sort.
const (
	SortUsername  = "username"
	SortEmail     = "email"
	SortSISID     = "sis_id"
	SortLastLogin = "last_login"
)

// Orders accepted by ListFilter.Order.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// ListFilter narrows and orders a roster listing. Zero values mean no
// filtering and the default ordering (username, ascending).
type ListFilter struct {
	SearchTerm string
	RoleID     string
	Sort       string
	Order      string
}

type Repository interface {
	// Health is a simple check to verify repository works.
	Health() error
	// ListUsersPage returns users matching filter with pagination.
	// When withTotal is true the total count of matching users is returned,
	// otherwise total is -1 and hasMore reports whether a further row exists.
	ListUsersPage(ctx context.Context, filter ListFilter, offset, limit int, withTotal bool) (users []*User, total int, hasMore bool, err error)
	GetUser(ctx context.Context, id int64) (*User, error)
	CreateUser(ctx context.Context, u *User) (int64, error)
	UpdateUser(ctx context.Context, u *User) error
	Disconnect()
}
