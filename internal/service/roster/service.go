package roster

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/quipper/poc/people/be/pkg/common/logger"
	"github.com/quipper/poc/people/be/pkg/common/metrics"
	"github.com/quipper/poc/people/be/pkg/pagination"
	"github.com/quipper/poc/people/be/pkg/repositories/users"
)

// MinSearchLength is the shortest search term sent to the repository.
// Shorter terms list everyone.
const MinSearchLength = 3

const defaultPageSize = 15

var (
	ErrInvalidInput = errors.New("invalid user input")
	ErrNotFound     = users.ErrNotFound
)

// SearchFilter is the roster toolbar state plus the requested page.
type SearchFilter struct {
	SearchTerm   string `json:"search_term"`
	RoleFilterID string `json:"role_filter_id,omitempty"`
	Sort         string `json:"sort,omitempty"`
	Order        string `json:"order,omitempty"`
	Page         int    `json:"page,omitempty"`
}

// EffectiveSearchTerm drops terms shorter than MinSearchLength.
func EffectiveSearchTerm(term string) string {
	term = strings.TrimSpace(term)
	if len([]rune(term)) < MinSearchLength {
		return ""
	}
	return term
}

// SearchTermTooShort reports a non-empty term that will be ignored.
func SearchTermTooShort(term string) bool {
	term = strings.TrimSpace(term)
	return term != "" && len([]rune(term)) < MinSearchLength
}

// UsersPage is one page of the roster with its navigation links.
type UsersPage struct {
	Users []*users.User       `json:"users"`
	Links pagination.RawLinks `json:"links"`
}

// PageLinks returns the parsed links of the page.
func (p *UsersPage) PageLinks() pagination.Links {
	return pagination.ParseLinks(p.Links)
}

// UserInput is the create/update payload for a user.
type UserInput struct {
	Name             string `json:"name" validate:"required,max=255"`
	SortableName     string `json:"sortable_name" validate:"required,max=255"`
	ShortName        string `json:"short_name" validate:"required,max=255"`
	Email            string `json:"email" validate:"omitempty,email,max=255"`
	TimeZone         string `json:"time_zone" validate:"omitempty,max=64"`
	UniqueID         string `json:"unique_id" validate:"omitempty,max=255"`
	Path             string `json:"path" validate:"omitempty,max=255"`
	SISUserID        string `json:"sis_user_id" validate:"omitempty,max=255"`
	SendConfirmation string `json:"send_confirmation" validate:"omitempty,oneof=true false 0 1"`
}

// InputError carries per-field validation messages keyed by json name.
type InputError struct {
	Fields map[string]string
}

func (e *InputError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for f, msg := range e.Fields {
		parts = append(parts, f+": "+msg)
	}
	return ErrInvalidInput.Error() + " (" + strings.Join(parts, ", ") + ")"
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

type Options struct {
	PageSize    int
	CountTotals bool
}

type Service struct {
	repo        users.Repository
	pageSize    int
	countTotals bool
	validate    *validator.Validate
}

func NewService(repo users.Repository, opts Options) *Service {
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Service{repo: repo, pageSize: opts.PageSize, countTotals: opts.CountTotals, validate: v}
}

// PageSize is the number of users per page.
func (s *Service) PageSize() int { return s.pageSize }

// ListUsers fetches the requested page. Links.Next is set when another page
// exists; Links.Last only when totals are counted.
func (s *Service) ListUsers(ctx context.Context, f SearchFilter) (*UsersPage, error) {
	page := max(f.Page, 1)
	filter := users.ListFilter{
		SearchTerm: EffectiveSearchTerm(f.SearchTerm),
		RoleID:     f.RoleFilterID,
		Sort:       f.Sort,
		Order:      f.Order,
	}
	list, total, hasMore, err := s.repo.ListUsersPage(ctx, filter, (page-1)*s.pageSize, s.pageSize, s.countTotals)
	if err != nil {
		return nil, fmt.Errorf("list users page %d: %w", page, err)
	}
	if list == nil {
		list = []*users.User{}
	}
	links := pagination.Links{Current: page}
	if hasMore {
		links.Next = pagination.Page(page + 1)
	}
	if s.countTotals && total >= 0 {
		links.Last = pagination.Page(max(1, (total+s.pageSize-1)/s.pageSize))
	}
	metrics.ObserveRosterPage(links.Last != nil)
	logger.Debug("roster: page=%d term=%q role=%q returned=%d next=%t", page, filter.SearchTerm, filter.RoleID, len(list), hasMore)
	return &UsersPage{Users: list, Links: links.Raw()}, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*users.User, error) {
	return s.repo.GetUser(ctx, id)
}

func (s *Service) CreateUser(ctx context.Context, in UserInput) (*users.User, error) {
	if err := s.validateInput(in); err != nil {
		return nil, err
	}
	u := &users.User{}
	in.apply(u)
	if _, err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if in.confirm() && u.Email != "" {
		// no mailer in this service; record the request
		logger.Info("roster: confirmation requested for user id=%d email=%s", u.ID, u.Email)
	}
	return u, nil
}

func (s *Service) UpdateUser(ctx context.Context, id int64, in UserInput) (*users.User, error) {
	if err := s.validateInput(in); err != nil {
		return nil, err
	}
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(u)
	if err := s.repo.UpdateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	return u, nil
}

func (s *Service) validateInput(in UserInput) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	ie := &InputError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			ie.Fields[fe.Field()] = "is required"
		case "email":
			ie.Fields[fe.Field()] = "must be an email address"
		case "max":
			ie.Fields[fe.Field()] = "must be at most " + fe.Param() + " characters"
		default:
			ie.Fields[fe.Field()] = "is invalid"
		}
	}
	return ie
}

func (in UserInput) apply(u *users.User) {
	u.Name = strings.TrimSpace(in.Name)
	u.SortableName = strings.TrimSpace(in.SortableName)
	u.ShortName = strings.TrimSpace(in.ShortName)
	u.Email = strings.TrimSpace(in.Email)
	u.TimeZone = in.TimeZone
	u.UniqueID = in.UniqueID
	u.Path = in.Path
	u.SISUserID = in.SISUserID
}

func (in UserInput) confirm() bool {
	return in.SendConfirmation == "true" || in.SendConfirmation == "1"
}
