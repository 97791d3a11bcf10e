package people

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/quipper/poc/people/be/internal/service/roster"
	"github.com/quipper/poc/people/be/pkg/common/logger"
)

// listUsers GET /api/users?page=&search_term=&sort=&order=&role_filter_id=
func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	filter := roster.ParseSearchFilter(r.URL.Query())
	page, err := h.roster.ListUsers(r.Context(), filter)
	if err != nil {
		logger.Error("list users: %v", err)
		http.Error(w, "failed to list users", http.StatusInternalServerError)
		return
	}
	setLinkHeader(w, r, page)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(page)
}

// getUser GET /api/users/{id}
func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	u, err := h.roster.GetUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, "get user", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(u)
}

// createUser POST /api/users
func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var in roster.UserInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		logger.Debug("createUser: invalid JSON: %v", err)
		http.Error(w, "invalidJson", http.StatusBadRequest)
		return
	}
	u, err := h.roster.CreateUser(r.Context(), in)
	if err != nil {
		writeServiceError(w, "create user", err)
		return
	}
	logger.Debug("createUser: created id=%d name=%s", u.ID, u.Name)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(u)
}

// updateUser PUT /api/users/{id}
func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	var in roster.UserInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalidJson", http.StatusBadRequest)
		return
	}
	u, err := h.roster.UpdateUser(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, "update user", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(u)
}

func userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id < 1 {
		logger.Debug("invalid user id=%q", idStr)
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeServiceError(w http.ResponseWriter, op string, err error) {
	var ie *roster.InputError
	switch {
	case errors.As(err, &ie):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "invalidInput", "fields": ie.Fields})
	case errors.Is(err, roster.ErrNotFound):
		http.Error(w, "userNotFound", http.StatusNotFound)
	default:
		logger.Error("%s: %v", op, err)
		http.Error(w, "failed to "+op, http.StatusInternalServerError)
	}
}

// setLinkHeader adds Link entries for current, first, next and last pages.
// next and last are omitted when unknown.
func setLinkHeader(w http.ResponseWriter, r *http.Request, page *roster.UsersPage) {
	links := page.PageLinks()
	add := func(rel string, n int) {
		w.Header().Add("Link", "<"+buildPageURL(r, n)+">; rel=\""+rel+"\"")
	}
	add("current", links.Current)
	add("first", 1)
	if links.Next != nil {
		add("next", *links.Next)
	}
	if links.Last != nil {
		add("last", *links.Last)
	}
}

// schemeHost uses X-Forwarded-* headers when present, otherwise falls back
// to r.Host and TLS.
func schemeHost(r *http.Request) (string, string) {
	scheme := r.Header.Get("X-Forwarded-Proto")
	if scheme == "" {
		if r.TLS != nil {
			scheme = "https"
		} else {
			scheme = "http"
		}
	}
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	return scheme, host
}

func buildPageURL(r *http.Request, page int) string {
	scheme, host := schemeHost(r)
	u := url.URL{Scheme: scheme, Host: host, Path: r.URL.Path}
	q := r.URL.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}
