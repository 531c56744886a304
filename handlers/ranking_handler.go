package handlers

import (
	"net/http"

	"github.com/fencelab/fencing-system/models"
	"github.com/fencelab/fencing-system/repositories"
	"github.com/fencelab/fencing-system/services"
)

type RankingHandler struct {
	rankingService *services.RankingService
}

func NewRankingHandler(rankingService *services.RankingService) *RankingHandler {
	return &RankingHandler{rankingService: rankingService}
}

// ListHandler обрабатывает GET /api/rankings — таблица рейтинга,
// отсортированная по очкам, с фильтрами по категории/оружию/полу.
func (h *RankingHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var filter repositories.ListRankingsFilter
	query := r.URL.Query()

	if bracketStr := query.Get("bracket"); bracketStr != "" {
		bracket := models.Bracket(bracketStr)
		filter.Bracket = &bracket
	}
	if weaponStr := query.Get("weapon"); weaponStr != "" {
		weapon := models.Weapon(weaponStr)
		filter.Weapon = &weapon
	}
	if genderStr := query.Get("gender"); genderStr != "" {
		gender := models.Gender(genderStr)
		filter.Gender = &gender
	}

	limit, offset, err := parsePagination(r, 50)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	filter.Limit = limit
	filter.Offset = offset

	rankings, err := h.rankingService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rankings": rankings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecomputeAllHandler обрабатывает POST /api/rankings/recompute.
func (h *RankingHandler) RecomputeAllHandler(w http.ResponseWriter, r *http.Request) {
	count, err := h.rankingService.RecomputeAll(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"fencers_recomputed": count}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResetAllHandler обрабатывает POST /api/rankings/reset.
func (h *RankingHandler) ResetAllHandler(w http.ResponseWriter, r *http.Request) {
	affected, err := h.rankingService.ResetAll(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rankings_reset": affected}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
