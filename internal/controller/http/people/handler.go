package people

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quipper/poc/people/be/internal/service/roster"
	"github.com/quipper/poc/people/be/pkg/pagination"
)

// HealthChecker reports whether the backing store works.
type HealthChecker interface {
	Health() error
}

type Handler struct {
	roster  *roster.Service
	health  HealthChecker
	graphql http.Handler
	radius  int
}

// NewHandler wires the roster service, the store health check and the
// GraphQL endpoint. radius is the page window radius of the HTML roster.
func NewHandler(svc *roster.Service, health HealthChecker, graphql http.Handler, radius int) *Handler {
	if pagination.CheckRadius(radius) != nil {
		radius = pagination.DefaultRadius
	}
	return &Handler{roster: svc, health: health, graphql: graphql, radius: radius}
}

// Router returns a chi-based router for the API, GraphQL and the roster UI.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/api/health", h.healthz)

	if h.graphql != nil {
		r.Post("/graphql", h.graphql.ServeHTTP)
	}

	r.Route("/api/users", func(r chi.Router) {
		r.Get("/", h.listUsers)
		r.Post("/", h.createUser)
		r.Get("/{id}", h.getUser)
		r.Put("/{id}", h.updateUser)
	})

	// Browser roster
	r.Get("/users", h.usersPage)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/users", http.StatusFound)
	})
	return r
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := h.health.Health(); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "unhealthy", "error": err.Error()})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
