package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	r "github.com/quipper/poc/people/be/pkg/repositories/users"
)

type SQLiteRepo struct{ db *sql.DB }

// Ensure interface compliance
var _ r.Repository = (*SQLiteRepo)(nil)

func NewSQLiteRepo(path string) (*SQLiteRepo, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Pragmas safe for simple single-process usage
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteRepo{db: db}, nil
}

func (s *SQLiteRepo) Disconnect() { _ = s.db.Close() }

func (s *SQLiteRepo) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS users (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  uuid TEXT NOT NULL UNIQUE,
	  name TEXT NOT NULL,
	  sortable_name TEXT NOT NULL,
	  short_name TEXT NOT NULL,
	  email TEXT,
	  time_zone TEXT,
	  avatar_url TEXT,
	  last_login TIMESTAMP,
	  sis_user_id TEXT,
	  unique_id TEXT,
	  path TEXT,
	  roles_json TEXT,
	  created_at TIMESTAMP NOT NULL,
	  updated_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_users_sortable_name ON users(sortable_name);
	`)
	return err
}

const userColumns = `id, uuid, name, sortable_name, short_name, email, time_zone, avatar_url, last_login, sis_user_id, unique_id, path, roles_json, created_at, updated_at`

var sortColumns = map[string]string{
	r.SortUsername:  "sortable_name",
	r.SortEmail:     "email",
	r.SortSISID:     "sis_user_id",
	r.SortLastLogin: "last_login",
}

// whereClause builds the filter predicate and its args.
func whereClause(f r.ListFilter) (string, []any) {
	var conds []string
	var args []any
	if term := strings.TrimSpace(f.SearchTerm); term != "" {
		like := "%" + escapeLike(term) + "%"
		conds = append(conds, `(name LIKE ? ESCAPE '\' OR sortable_name LIKE ? ESCAPE '\' OR short_name LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\' OR sis_user_id LIKE ? ESCAPE '\' OR unique_id LIKE ? ESCAPE '\')`)
		for i := 0; i < 6; i++ {
			args = append(args, like)
		}
	}
	if f.RoleID != "" {
		conds = append(conds, `EXISTS (SELECT 1 FROM json_each(users.roles_json) WHERE json_each.value = ?)`)
		args = append(args, f.RoleID)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderClause(f r.ListFilter) string {
	col, ok := sortColumns[f.Sort]
	if !ok {
		col = sortColumns[r.SortUsername]
	}
	dir := "ASC"
	if strings.EqualFold(f.Order, r.OrderDesc) {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, id %s", col, dir, dir)
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}

func (s *SQLiteRepo) ListUsersPage(ctx context.Context, filter r.ListFilter, offset, limit int, withTotal bool) ([]*r.User, int, bool, error) {
	where, args := whereClause(filter)
	total := -1
	if withTotal {
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
			return nil, 0, false, err
		}
	}
	// one extra row tells whether another page exists without counting
	fetch := limit + 1
	q := `SELECT ` + userColumns + ` FROM users` + where + orderClause(filter) + ` LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, q, append(args, fetch, offset)...)
	if err != nil {
		return nil, 0, false, err
	}
	defer rows.Close()
	var out []*r.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, false, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, false, err
	}
	hasMore := len(out) > limit
	if hasMore {
		out = out[:limit]
	}
	return out, total, hasMore, nil
}

func (s *SQLiteRepo) GetUser(ctx context.Context, id int64) (*r.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.ErrNotFound
	}
	return u, err
}

func (s *SQLiteRepo) CreateUser(ctx context.Context, u *r.User) (int64, error) {
	now := time.Now().UTC()
	if u.UUID == "" {
		u.UUID = uuid.NewString()
	}
	res, err := s.db.ExecContext(ctx, `
	INSERT INTO users (uuid, name, sortable_name, short_name, email, time_zone, avatar_url, last_login, sis_user_id, unique_id, path, roles_json, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, u.UUID, u.Name, u.SortableName, u.ShortName, nullString(u.Email), nullString(u.TimeZone), nullString(u.AvatarURL),
		nullTime(u.LastLogin), nullString(u.SISUserID), nullString(u.UniqueID), nullString(u.Path), rolesJSON(u.Roles), now, now)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	u.ID = id
	u.CreatedAt = now
	u.UpdatedAt = now
	return id, nil
}

func (s *SQLiteRepo) UpdateUser(ctx context.Context, u *r.User) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
	UPDATE users SET name = ?, sortable_name = ?, short_name = ?, email = ?, time_zone = ?, sis_user_id = ?, unique_id = ?, path = ?, updated_at = ?
	WHERE id = ?
	`, u.Name, u.SortableName, u.ShortName, nullString(u.Email), nullString(u.TimeZone),
		nullString(u.SISUserID), nullString(u.UniqueID), nullString(u.Path), now, u.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return r.ErrNotFound
	}
	u.UpdatedAt = now
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*r.User, error) {
	var u r.User
	var email, tz, avatar, sis, uniqueID, path, roles sql.NullString
	var lastLogin sql.NullTime
	if err := row.Scan(&u.ID, &u.UUID, &u.Name, &u.SortableName, &u.ShortName, &email, &tz, &avatar,
		&lastLogin, &sis, &uniqueID, &path, &roles, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Email = email.String
	u.TimeZone = tz.String
	u.AvatarURL = avatar.String
	u.SISUserID = sis.String
	u.UniqueID = uniqueID.String
	u.Path = path.String
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	if roles.Valid && roles.String != "" {
		_ = json.Unmarshal([]byte(roles.String), &u.Roles)
	}
	return &u, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func rolesJSON(roles []string) string {
	if roles == nil {
		roles = []string{}
	}
	b, err := json.Marshal(roles)
	if err != nil {
		return "[]"
	}
	return string(b)
}
