package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/avolkovs/teamcomp/internal/common"
	"github.com/avolkovs/teamcomp/internal/server/history"
	"github.com/avolkovs/teamcomp/internal/server/models"
	"github.com/avolkovs/teamcomp/internal/server/roster"
	"github.com/go-chi/chi/v5"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	token, err := h.admin.Login(req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

func (h *Handlers) triggerIngest(w http.ResponseWriter, r *http.Request) {
	report, err := h.stats.RunCycle(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handlers) competitionSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.stats.CompetitionSummary(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handlers) userSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.stats.UserSummary(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type offsetRequest struct {
	Points           int64 `json:"points"`
	MultipliedPoints int64 `json:"multipliedPoints"`
	Units            int64 `json:"units"`
}

func (h *Handlers) applyOffset(w http.ResponseWriter, r *http.Request) {
	var req offsetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	userID := chi.URLParam(r, "userID")
	if err := h.stats.ApplyOffset(r.Context(), userID, req.Points, req.MultipliedPoints, req.Units); err != nil {
		writeError(w, err)
		return
	}
	summary, err := h.stats.UserSummary(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// historicStats serves bucketed per-user history with ETag-based conditional
// fetch: a matching If-None-Match yields 304 with no body.
func (h *Handlers) historicStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		writeError(w, common.ErrInvalidState)
		return
	}
	monthNum, err := strconv.Atoi(q.Get("month"))
	if err != nil || monthNum < 1 || monthNum > 12 {
		writeError(w, common.ErrInvalidState)
		return
	}
	period := history.Period{Year: year, Month: time.Month(monthNum)}

	granularity := models.Granularity(q.Get("granularity"))
	if granularity == models.GranularityHour {
		if period.Day, err = strconv.Atoi(q.Get("day")); err != nil {
			writeError(w, common.ErrInvalidState)
			return
		}
	}

	buckets, fingerprint, unchanged, err := h.history.HistoricStats(r.Context(),
		chi.URLParam(r, "userID"), granularity, period, r.Header.Get("If-None-Match"))
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("ETag", fingerprint)
	if unchanged {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, buckets)
}

func (h *Handlers) teamLeaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.leaderboard.TeamLeaderboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *Handlers) categoryLeaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.leaderboard.CategoryLeaderboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (h *Handlers) triggerReset(w http.ResponseWriter, r *http.Request) {
	result, err := h.leaderboard.TriggerMonthlyReset(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) monthlyResult(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, common.ErrInvalidState)
		return
	}
	monthNum, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || monthNum < 1 || monthNum > 12 {
		writeError(w, common.ErrInvalidState)
		return
	}
	result, err := h.leaderboard.GetMonthlyResult(r.Context(), year, time.Month(monthNum))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type createTeamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ForumLink   string `json:"forumLink"`
}

func (h *Handlers) createTeam(w http.ResponseWriter, r *http.Request) {
	var req createTeamRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Name == "" {
		writeError(w, common.ErrInvalidState)
		return
	}
	team, err := h.roster.CreateTeam(r.Context(), req.Name, req.Description, req.ForumLink)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, team)
}

func (h *Handlers) deleteTeam(w http.ResponseWriter, r *http.Request) {
	if err := h.roster.DeleteTeam(r.Context(), chi.URLParam(r, "teamID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) teamCaptain(w http.ResponseWriter, r *http.Request) {
	has, err := h.roster.HasActiveCaptain(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"hasCaptain": has})
}

type createUserRequest struct {
	FoldingName string          `json:"foldingName"`
	Passkey     string          `json:"passkey"`
	DisplayName string          `json:"displayName"`
	Category    models.Category `json:"category"`
	TeamID      string          `json:"teamId"`
	HardwareID  string          `json:"hardwareId"`
	IsCaptain   bool            `json:"isCaptain"`
}

func (h *Handlers) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.FoldingName == "" {
		writeError(w, common.ErrInvalidState)
		return
	}
	user, err := h.roster.CreateUser(r.Context(), roster.NewUser{
		FoldingName: req.FoldingName,
		Passkey:     req.Passkey,
		DisplayName: req.DisplayName,
		Category:    req.Category,
		TeamID:      req.TeamID,
		HardwareID:  req.HardwareID,
		IsCaptain:   req.IsCaptain,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handlers) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.roster.DeleteUser(r.Context(), chi.URLParam(r, "userID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createHardwareRequest struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Make        string `json:"make"`
	Type        string `json:"type"`
	AveragePPD  int64  `json:"averagePPD"`
}

func (h *Handlers) createHardware(w http.ResponseWriter, r *http.Request) {
	var req createHardwareRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	hw, err := h.roster.CreateHardware(r.Context(), req.Name, req.DisplayName, req.Make, req.Type, req.AveragePPD)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, hw)
}

func (h *Handlers) deleteHardware(w http.ResponseWriter, r *http.Request) {
	if err := h.roster.DeleteHardware(r.Context(), chi.URLParam(r, "hardwareID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) refreshCatalog(w http.ResponseWriter, r *http.Request) {
	var catalog []models.CatalogEntry
	if err := decodeJSON(r, &catalog); err != nil {
		writeError(w, err)
		return
	}
	if err := h.roster.RefreshCatalog(r.Context(), catalog); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
