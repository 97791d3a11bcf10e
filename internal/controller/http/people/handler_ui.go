package people

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"

	"github.com/quipper/poc/people/be/internal/service/roster"
	"github.com/quipper/poc/people/be/pkg/common/logger"
	"github.com/quipper/poc/people/be/pkg/pagination"
	"github.com/quipper/poc/people/be/pkg/repositories/users"
)

//go:embed templates/*.html
var templateFS embed.FS

var rosterTmpl = template.Must(template.New("roster.html").
	Funcs(template.FuncMap{"lastLogin": lastLogin}).
	ParseFS(templateFS, "templates/roster.html"))

type pageButton struct {
	pagination.Control
	Href string
}

type rosterView struct {
	Filter   roster.SearchFilter
	Errors   map[string]string
	Users    []*users.User
	Buttons  []pageButton
	Ellipsis bool
	LoadErr  bool
}

// applyFiltersParam marks a toolbar submission. The toolbar form carries the
// current page too, which UpdateFilters resets.
const applyFiltersParam = "apply"

// usersPage GET /users renders the roster with its toolbar and pagination nav.
// A toolbar submission goes through Pane.UpdateFilters, a page link through
// Pane.SetPage. The resulting canonical query is sent as a Link header.
func (h *Handler) usersPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pane := roster.NewPane(h.roster, func(params url.Values) {
		w.Header().Set("Link", "<"+usersURL(params)+">; rel=\"canonical\"")
	})
	pane.Restore(q)

	var err error
	switch {
	case q.Has(applyFiltersParam):
		err = pane.UpdateFilters(r.Context(), roster.ParseFilterPatch(q))
	case q.Has("page"):
		err = pane.SetPage(r.Context(), pane.Filter().Page)
	default:
		err = pane.Refetch(r.Context())
	}

	view := rosterView{Filter: pane.Filter(), Errors: pane.Errors()}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err != nil {
		logger.Error("users page: %v", err)
		view.LoadErr = true
		w.WriteHeader(http.StatusInternalServerError)
		h.render(w, view)
		return
	}

	result := pane.Result()
	view.Users = result.Users
	if len(result.Users) > 0 {
		links := result.PageLinks()
		win := pagination.ComputeWindow(pagination.WindowRequest{Links: links, Radius: h.radius})
		controls := pagination.BuildControls(win, links.Current)
		view.Ellipsis = controls.Ellipsis
		for _, c := range controls.Items {
			view.Buttons = append(view.Buttons, pageButton{
				Control: c,
				Href:    usersURL(pane.Filter().WithPage(c.Page).QueryParams()),
			})
		}
	}
	h.render(w, view)
}

func usersURL(params url.Values) string {
	if len(params) == 0 {
		return "/users"
	}
	return "/users?" + params.Encode()
}

func (h *Handler) render(w http.ResponseWriter, view rosterView) {
	if err := rosterTmpl.Execute(w, view); err != nil {
		logger.Error("render roster: %v", err)
	}
}

// lastLogin formats an optional timestamp for the table.
func lastLogin(u *users.User) string {
	if u.LastLogin == nil {
		return ""
	}
	return u.LastLogin.Format("2006-01-02 15:04")
}
