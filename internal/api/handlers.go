package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dealerflow/dealerflow/internal/contracts"
	"github.com/dealerflow/dealerflow/internal/macro"
	"github.com/dealerflow/dealerflow/internal/universe"
	"github.com/dealerflow/dealerflow/pkg/logger"
	"github.com/dealerflow/dealerflow/pkg/redis"
)

// Handler bundles the read-side dependencies behind the HTTP endpoints
type Handler struct {
	scores   contracts.ScoreStore
	state    *macro.StateBuilder
	universe *universe.Universe
	cache    *redis.Cache
	logger   *logger.Logger
}

// NewHandler creates a new Handler
func NewHandler(scores contracts.ScoreStore, state *macro.StateBuilder, u *universe.Universe, cache *redis.Cache, log *logger.Logger) *Handler {
	return &Handler{
		scores:   scores,
		state:    state,
		universe: u,
		cache:    cache,
		logger:   log,
	}
}

// Health responds to liveness probes
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// GetScores returns all asset scores for a date
func (h *Handler) GetScores(w http.ResponseWriter, r *http.Request) {
	asOf, ok := parseDate(w, r)
	if !ok {
		return
	}
	dateStr := asOf.Format(contracts.DateLayout)

	var cached []contracts.AssetScore
	if hit, err := h.cache.Get(r.Context(), redis.ScoresKey(dateStr), &cached); err == nil && hit {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	scores, err := h.scores.GetByDate(r.Context(), asOf)
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch scores")
		writeError(w, http.StatusInternalServerError, "failed to fetch scores")
		return
	}
	if len(scores) == 0 {
		writeError(w, http.StatusNotFound, "data pending for "+dateStr)
		return
	}

	if err := h.cache.Set(r.Context(), redis.ScoresKey(dateStr), scores, redis.TTLState); err != nil {
		h.logger.WithError(err).Warn("Failed to cache scores")
	}

	writeJSON(w, http.StatusOK, scores)
}

// GetState returns the assembled macro state for a date
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	asOf, ok := parseDate(w, r)
	if !ok {
		return
	}
	dateStr := asOf.Format(contracts.DateLayout)

	var cached macro.MacroState
	if hit, err := h.cache.Get(r.Context(), redis.StateKey(dateStr), &cached); err == nil && hit {
		writeJSON(w, http.StatusOK, &cached)
		return
	}

	state, err := h.state.Build(r.Context(), asOf, h.universe)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build state")
		writeError(w, http.StatusInternalServerError, "failed to build state")
		return
	}

	if err := h.cache.Set(r.Context(), redis.StateKey(dateStr), state, redis.TTLState); err != nil {
		h.logger.WithError(err).Warn("Failed to cache state")
	}

	writeJSON(w, http.StatusOK, state)
}

// parseDate extracts and validates the {date} path variable
func parseDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := mux.Vars(r)["date"]
	asOf, err := time.Parse(contracts.DateLayout, raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return contracts.NormalizeDate(asOf), true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
