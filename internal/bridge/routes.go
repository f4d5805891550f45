package bridge

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/mwhelan/daybreak/internal/quotes"
	"github.com/mwhelan/daybreak/internal/record"
	"github.com/mwhelan/daybreak/internal/stats"
)

// Routes builds the daemon's HTTP surface.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)

	r.Get("/healthz", h.handleHealthz)
	r.Get("/ws/analytics", h.serveAnalytics)

	r.Route("/api", func(r chi.Router) {
		r.Post("/checkins", h.handleAddCheckIn)
		r.Get("/checkins", h.handleListCheckIns)
		r.Post("/meetings", h.handleAddMeeting)
		r.Get("/meetings", h.handleListMeetings)
		r.Post("/meditations", h.handleAddMeditation)
		r.Get("/meditations", h.handleListMeditations)

		r.Get("/stats", h.handleStats)

		r.Get("/quote", h.handleQuoteOfDay)
		r.Get("/quotes", h.handleListQuotes)
		r.Get("/quotes/favorites", h.handleListFavorites)
		r.Post("/quotes/{id}/favorite", h.handleFavoriteQuote)
	})

	return r
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleAddCheckIn(w http.ResponseWriter, r *http.Request) {
	var c record.CheckIn
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "malformed check-in: "+err.Error())
		return
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now().UTC()
	}
	if err := c.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.repo.AddCheckIn(r.Context(), c); err != nil {
		h.logger.Error("add check-in", "error", err)
		writeError(w, http.StatusInternalServerError, "store check-in")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleListCheckIns(w http.ResponseWriter, r *http.Request) {
	out, err := h.repo.CheckIns(r.Context())
	if err != nil {
		h.logger.Error("list check-ins", "error", err)
		writeError(w, http.StatusInternalServerError, "load check-ins")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleAddMeeting(w http.ResponseWriter, r *http.Request) {
	var m record.MeetingAttendance
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, "malformed meeting: "+err.Error())
		return
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	if err := m.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.repo.AddMeeting(r.Context(), m); err != nil {
		h.logger.Error("add meeting", "error", err)
		writeError(w, http.StatusInternalServerError, "store meeting")
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *Handler) handleListMeetings(w http.ResponseWriter, r *http.Request) {
	out, err := h.repo.Meetings(r.Context())
	if err != nil {
		h.logger.Error("list meetings", "error", err)
		writeError(w, http.StatusInternalServerError, "load meetings")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleAddMeditation(w http.ResponseWriter, r *http.Request) {
	var m record.MeditationSession
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, "malformed meditation: "+err.Error())
		return
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	if err := m.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.repo.AddMeditation(r.Context(), m); err != nil {
		h.logger.Error("add meditation", "error", err)
		writeError(w, http.StatusInternalServerError, "store meditation")
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *Handler) handleListMeditations(w http.ResponseWriter, r *http.Request) {
	out, err := h.repo.Meditations(r.Context())
	if err != nil {
		h.logger.Error("list meditations", "error", err)
		writeError(w, http.StatusInternalServerError, "load meditations")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cis, err := h.repo.CheckIns(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load check-ins")
		return
	}
	mts, err := h.repo.Meetings(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load meetings")
		return
	}
	mds, err := h.repo.Meditations(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load meditations")
		return
	}
	writeJSON(w, http.StatusOK, stats.Compute(cis, mts, mds))
}

func (h *Handler) handleQuoteOfDay(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}
	writeJSON(w, http.StatusOK, quotes.QuoteOfDay(date))
}

func (h *Handler) handleListQuotes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, quotes.All())
}

func (h *Handler) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	ids, err := h.repo.FavoriteQuotes(r.Context())
	if err != nil {
		h.logger.Error("list favorites", "error", err)
		writeError(w, http.StatusInternalServerError, "load favorites")
		return
	}
	out := make([]quotes.Quote, 0, len(ids))
	for _, id := range ids {
		if q, ok := quotes.ByID(id); ok {
			out = append(out, q)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleFavoriteQuote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := quotes.ByID(id); !ok {
		writeError(w, http.StatusNotFound, "unknown quote")
		return
	}
	if err := h.repo.FavoriteQuote(r.Context(), id); err != nil {
		h.logger.Error("favorite quote", "error", err)
		writeError(w, http.StatusInternalServerError, "store favorite")
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
