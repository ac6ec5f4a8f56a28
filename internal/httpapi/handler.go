package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/julianstephens/keepstreak/internal/models"
	"github.com/julianstephens/keepstreak/internal/tracker"
)

type habitsResponse struct {
	Habits []models.Habit `json:"habits"`
}

type achievementsResponse struct {
	Achievements []models.AchievementStatus `json:"achievements"`
}

// RegisterRoutes mounts the authenticated v1 API on r
func RegisterRoutes(r chi.Router, svc *tracker.Service) {
	h := &handler{svc: svc}

	r.Route("/v1/habits", func(r chi.Router) {
		r.Get("/", h.listHabits)
		r.Post("/", h.createHabit)
		r.Route("/{habitID}", func(r chi.Router) {
			r.Get("/", h.getHabit)
			r.Put("/", h.updateHabit)
			r.Delete("/", h.deleteHabit)
			r.Post("/restore", h.restoreHabit)
			r.Post("/complete", h.complete)
			r.Post("/progress", h.progress)
			r.Delete("/completions/{date}", h.clearCompletion)
		})
	})

	r.Route("/v1/achievements", func(r chi.Router) {
		r.Get("/", h.listAchievements)
		r.Post("/check", h.checkAchievements)
	})

	r.Get("/v1/stats", h.stats)
}

type handler struct {
	svc *tracker.Service
}

func userID(r *http.Request) string {
	user, _ := UserFromContext(r.Context())
	return user.UserID
}

func (h *handler) listHabits(w http.ResponseWriter, r *http.Request) {
	includeDeleted := r.URL.Query().Get("all") == "true"
	habits, err := h.svc.Habits(r.Context(), userID(r), includeDeleted)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if habits == nil {
		habits = []models.Habit{}
	}
	writeJSON(w, http.StatusOK, habitsResponse{Habits: habits})
}

func (h *handler) getHabit(w http.ResponseWriter, r *http.Request) {
	habit, err := h.svc.GetHabit(r.Context(), userID(r), chi.URLParam(r, "habitID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, habit)
}

func (h *handler) createHabit(w http.ResponseWriter, r *http.Request) {
	var req habitRequest
	if !decode(w, r, &req) {
		return
	}
	habit, err := req.toHabit(userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.svc.CreateHabit(r.Context(), habit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) updateHabit(w http.ResponseWriter, r *http.Request) {
	var req habitRequest
	if !decode(w, r, &req) {
		return
	}
	existing, err := h.svc.GetHabit(r.Context(), userID(r), chi.URLParam(r, "habitID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	habit, err := req.toHabit(existing.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	habit.ID = existing.ID
	habit.CreatedAt = existing.CreatedAt
	if habit.StartDate.IsZero() {
		habit.StartDate = existing.StartDate
	}

	updated, err := h.svc.UpdateHabit(r.Context(), habit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteHabit(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteHabit(r.Context(), userID(r), chi.URLParam(r, "habitID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) restoreHabit(w http.ResponseWriter, r *http.Request) {
	user, id := userID(r), chi.URLParam(r, "habitID")
	if err := h.svc.RestoreHabit(r.Context(), user, id); err != nil {
		writeError(w, r, err)
		return
	}
	habit, err := h.svc.GetHabit(r.Context(), user, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, habit)
}

func (h *handler) complete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if !decode(w, r, &req) {
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	progress, err := req.Progress.Ptr()
	if err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.svc.RecordCompletion(r.Context(), userID(r), chi.URLParam(r, "habitID"), date, *req.Completed, progress)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *handler) progress(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if !decode(w, r, &req) {
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var change tracker.ProgressChange
	if change.Progress, err = req.Progress.Ptr(); err != nil {
		writeError(w, r, err)
		return
	}
	if change.Increment, err = req.Increment.Ptr(); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.svc.AdjustProgress(r.Context(), userID(r), chi.URLParam(r, "habitID"), date, change)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *handler) clearCompletion(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.ClearCompletion(r.Context(), userID(r), chi.URLParam(r, "habitID"), date); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) listAchievements(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.svc.ListAchievements(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, achievementsResponse{Achievements: statuses})
}

func (h *handler) checkAchievements(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.EvaluateAchievements(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Stats(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
