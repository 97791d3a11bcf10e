package roster

import (
	"context"
	"net/url"
)

// MsgSearchTooShort is shown next to the search box for ignored terms.
const MsgSearchTooShort = "Search message too short"

// Fetcher loads one roster page. *Service satisfies it.
type Fetcher interface {
	ListUsers(ctx context.Context, f SearchFilter) (*UsersPage, error)
}

// Pane is the people roster view state: the toolbar filter, the requested
// page and the last fetched result. Every transition that changes what should
// be shown publishes the new query params and refetches before returning.
// A Pane is not safe for concurrent use.
type Pane struct {
	fetcher       Fetcher
	onQueryParams func(url.Values)

	filter   SearchFilter
	tooShort bool
	page     *UsersPage
	err      error
}

// NewPane returns a Pane fetching through f. onQueryParams may be nil.
func NewPane(f Fetcher, onQueryParams func(url.Values)) *Pane {
	return &Pane{fetcher: f, onQueryParams: onQueryParams}
}

// Restore sets the initial state from query params without fetching.
func (p *Pane) Restore(q url.Values) {
	p.filter = ParseSearchFilter(q)
	p.tooShort = SearchTermTooShort(p.filter.SearchTerm)
}

// UpdateFilters applies toolbar changes. The page resets to the first one.
func (p *Pane) UpdateFilters(ctx context.Context, patch FilterPatch) error {
	p.filter = patch.applyTo(p.filter)
	p.filter.Page = 0
	p.tooShort = patch.SearchTerm != nil && SearchTermTooShort(*patch.SearchTerm)
	return p.changed(ctx)
}

// SetPage requests page n and refetches.
func (p *Pane) SetPage(ctx context.Context, n int) error {
	if n < 1 {
		n = 1
	}
	p.filter.Page = n
	return p.changed(ctx)
}

// Refetch reloads the current page, e.g. after a user was created or edited.
func (p *Pane) Refetch(ctx context.Context) error {
	p.page, p.err = p.fetcher.ListUsers(ctx, p.filter)
	return p.err
}

func (p *Pane) changed(ctx context.Context) error {
	if p.onQueryParams != nil {
		p.onQueryParams(p.QueryParams())
	}
	return p.Refetch(ctx)
}

func (p *Pane) Filter() SearchFilter { return p.filter }

func (p *Pane) QueryParams() url.Values { return p.filter.QueryParams() }

// Result is the last fetched page, nil before the first fetch or on error.
func (p *Pane) Result() *UsersPage { return p.page }

// Err is the error of the last fetch.
func (p *Pane) Err() error { return p.err }

func (p *Pane) SearchTermTooShort() bool { return p.tooShort }

// Errors are the toolbar field errors to display.
func (p *Pane) Errors() map[string]string {
	if p.tooShort {
		return map[string]string{"search_term": MsgSearchTooShort}
	}
	return map[string]string{}
}
