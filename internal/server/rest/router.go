// Package rest exposes the competition core over HTTP. Read endpoints are
// public; mutating endpoints require the admin bearer token.
package rest

import (
	"net/http"

	"github.com/avolkovs/teamcomp/internal/logging"
	"github.com/avolkovs/teamcomp/internal/server/auth"
	"github.com/avolkovs/teamcomp/internal/server/history"
	"github.com/avolkovs/teamcomp/internal/server/leaderboard"
	"github.com/avolkovs/teamcomp/internal/server/metrics"
	"github.com/avolkovs/teamcomp/internal/server/roster"
	"github.com/avolkovs/teamcomp/internal/server/stats"
	"github.com/go-chi/chi/v5"
)

type Handlers struct {
	admin       *auth.Admin
	stats       *stats.Service
	roster      *roster.Service
	history     *history.Service
	leaderboard *leaderboard.Service
	log         logging.Logger
}

func NewHandlers(admin *auth.Admin, statsSvc *stats.Service, rosterSvc *roster.Service,
	historySvc *history.Service, leaderboardSvc *leaderboard.Service, log logging.Logger) *Handlers {
	return &Handlers{
		admin:       admin,
		stats:       statsSvc,
		roster:      rosterSvc,
		history:     historySvc,
		leaderboard: leaderboardSvc,
		log:         log,
	}
}

func NewRouter(h *Handlers, m *metrics.Metrics) *chi.Mux {
	r := chi.NewRouter()
	r.Use(instrument(h.log, m))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.login)

		r.Get("/summary", h.competitionSummary)
		r.Get("/users/{userID}/summary", h.userSummary)
		r.Get("/users/{userID}/historic", h.historicStats)
		r.Get("/leaderboard/teams", h.teamLeaderboard)
		r.Get("/leaderboard/categories", h.categoryLeaderboard)
		r.Get("/results/{year}/{month}", h.monthlyResult)
		r.Get("/teams/{teamID}/captain", h.teamCaptain)

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin(h.admin))

			r.Post("/ingest", h.triggerIngest)
			r.Post("/reset", h.triggerReset)
			r.Post("/users/{userID}/offset", h.applyOffset)

			r.Post("/teams", h.createTeam)
			r.Delete("/teams/{teamID}", h.deleteTeam)
			r.Post("/users", h.createUser)
			r.Delete("/users/{userID}", h.deleteUser)
			r.Post("/hardware", h.createHardware)
			r.Delete("/hardware/{hardwareID}", h.deleteHardware)
			r.Post("/hardware/catalog", h.refreshCatalog)
		})
	})

	return r
}
