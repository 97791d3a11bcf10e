package graphql

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/quipper/poc/people/be/internal/service/roster"
	"github.com/quipper/poc/people/be/pkg/common/logger"
	"github.com/quipper/poc/people/be/pkg/pagination"
	"github.com/quipper/poc/people/be/pkg/repositories/users"
)

// Roster is the service surface the resolvers need.
type Roster interface {
	ListUsers(ctx context.Context, f roster.SearchFilter) (*roster.UsersPage, error)
	GetUser(ctx context.Context, id int64) (*users.User, error)
	CreateUser(ctx context.Context, in roster.UserInput) (*users.User, error)
	UpdateUser(ctx context.Context, id int64, in roster.UserInput) (*users.User, error)
}

// Resolver is the root resolver for queries and mutations.
type Resolver struct {
	roster Roster
	radius int
}

// NewResolver uses radius as the default page window radius.
func NewResolver(r Roster, radius int) *Resolver {
	if pagination.CheckRadius(radius) != nil {
		radius = pagination.DefaultRadius
	}
	return &Resolver{roster: r, radius: radius}
}

type usersArgs struct {
	Page         int32
	SearchTerm   string
	Sort         *string
	Order        *string
	RoleFilterID *string
}

func (r *Resolver) Users(ctx context.Context, args usersArgs) (*usersPageResolver, error) {
	page, err := r.roster.ListUsers(ctx, roster.SearchFilter{
		SearchTerm:   args.SearchTerm,
		RoleFilterID: deref(args.RoleFilterID),
		Sort:         deref(args.Sort),
		Order:        deref(args.Order),
		Page:         int(args.Page),
	})
	if err != nil {
		logger.Error("graphql users: %v", err)
		return nil, err
	}
	return &usersPageResolver{page: page, radius: r.radius}, nil
}

func (r *Resolver) User(ctx context.Context, args struct{ ID int32 }) (*userResolver, error) {
	u, err := r.roster.GetUser(ctx, int64(args.ID))
	if errors.Is(err, users.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &userResolver{u: u}, nil
}

type pageWindowArgs struct {
	Current *string
	Next    *string
	Last    *string
	Radius  *int32
}

func (r *Resolver) PageWindow(args pageWindowArgs) (*pageWindowResolver, error) {
	links := pagination.ParseLinks(pagination.RawLinks{Current: deref(args.Current), Next: args.Next, Last: args.Last})
	return newPageWindowResolver(links, r.radiusOr(args.Radius))
}

type userInputArgs struct {
	Name             string
	SortableName     string
	ShortName        string
	Email            *string
	TimeZone         *string
	UniqueID         *string
	Path             *string
	SisUserID        *string
	SendConfirmation *string
}

func (in userInputArgs) toInput() roster.UserInput {
	return roster.UserInput{
		Name:             in.Name,
		SortableName:     in.SortableName,
		ShortName:        in.ShortName,
		Email:            deref(in.Email),
		TimeZone:         deref(in.TimeZone),
		UniqueID:         deref(in.UniqueID),
		Path:             deref(in.Path),
		SISUserID:        deref(in.SisUserID),
		SendConfirmation: deref(in.SendConfirmation),
	}
}

func (r *Resolver) CreateUser(ctx context.Context, args struct{ Input userInputArgs }) (*userResolver, error) {
	u, err := r.roster.CreateUser(ctx, args.Input.toInput())
	if err != nil {
		logger.Debug("graphql createUser: %v", err)
		return nil, err
	}
	return &userResolver{u: u}, nil
}

func (r *Resolver) UpdateUser(ctx context.Context, args struct {
	ID    int32
	Input userInputArgs
}) (*userResolver, error) {
	u, err := r.roster.UpdateUser(ctx, int64(args.ID), args.Input.toInput())
	if err != nil {
		logger.Debug("graphql updateUser id=%d: %v", args.ID, err)
		return nil, err
	}
	return &userResolver{u: u}, nil
}

func (r *Resolver) radiusOr(radius *int32) int {
	if radius == nil {
		return r.radius
	}
	return int(*radius)
}

type usersPageResolver struct {
	page   *roster.UsersPage
	radius int
}

func (p *usersPageResolver) Users() []*userResolver {
	out := make([]*userResolver, 0, len(p.page.Users))
	for _, u := range p.page.Users {
		out = append(out, &userResolver{u: u})
	}
	return out
}

func (p *usersPageResolver) Links() *linksResolver {
	return &linksResolver{raw: p.page.Links, radius: p.radius}
}

type linksResolver struct {
	raw    pagination.RawLinks
	radius int
}

func (l *linksResolver) Current() string { return l.raw.Current }
func (l *linksResolver) Next() *string   { return l.raw.Next }
func (l *linksResolver) Last() *string   { return l.raw.Last }

func (l *linksResolver) Window(args struct{ Radius *int32 }) (*pageWindowResolver, error) {
	radius := l.radius
	if args.Radius != nil {
		radius = int(*args.Radius)
	}
	return newPageWindowResolver(pagination.ParseLinks(l.raw), radius)
}

type pageWindowResolver struct {
	w pagination.Window
}

// errPageOutOfRange is returned for pages that do not fit a GraphQL Int.
var errPageOutOfRange = errors.New("page numbers must not exceed 2147483647")

// newPageWindowResolver validates client supplied links and radius before
// computing, so a single request cannot ask for an unbounded window.
func newPageWindowResolver(links pagination.Links, radius int) (*pageWindowResolver, error) {
	if err := pagination.CheckRadius(radius); err != nil {
		return nil, err
	}
	if links.Current > math.MaxInt32 || links.LastKnownPage() > math.MaxInt32 {
		return nil, errPageOutOfRange
	}
	return &pageWindowResolver{w: pagination.ComputeWindow(pagination.WindowRequest{Links: links, Radius: radius})}, nil
}

func (w *pageWindowResolver) Pages() []int32 {
	out := make([]int32, len(w.w.Pages))
	for i, p := range w.w.Pages {
		out[i] = int32(p)
	}
	return out
}

func (w *pageWindowResolver) LastPageUnknown() bool { return w.w.LastPageUnknown }

type userResolver struct {
	u *users.User
}

func (r *userResolver) ID() int32            { return int32(r.u.ID) }
func (r *userResolver) UUID() string         { return r.u.UUID }
func (r *userResolver) Name() string         { return r.u.Name }
func (r *userResolver) SortableName() string { return r.u.SortableName }
func (r *userResolver) ShortName() string    { return r.u.ShortName }
func (r *userResolver) Email() *string       { return optional(r.u.Email) }
func (r *userResolver) TimeZone() *string    { return optional(r.u.TimeZone) }
func (r *userResolver) AvatarURL() *string   { return optional(r.u.AvatarURL) }
func (r *userResolver) SisUserID() *string   { return optional(r.u.SISUserID) }
func (r *userResolver) UniqueID() *string    { return optional(r.u.UniqueID) }
func (r *userResolver) Path() *string        { return optional(r.u.Path) }

func (r *userResolver) LastLogin() *string {
	if r.u.LastLogin == nil {
		return nil
	}
	s := r.u.LastLogin.UTC().Format(time.RFC3339)
	return &s
}

func (r *userResolver) Roles() []string {
	if r.u.Roles == nil {
		return []string{}
	}
	return r.u.Roles
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
