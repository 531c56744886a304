package handlers

import (
	"net/http"

	"github.com/fencelab/fencing-system/models"
	"github.com/fencelab/fencing-system/repositories"
	"github.com/fencelab/fencing-system/services"
)

type FencerHandler struct {
	fencerService  *services.FencerService
	rankingService *services.RankingService
}

func NewFencerHandler(fencerService *services.FencerService, rankingService *services.RankingService) *FencerHandler {
	return &FencerHandler{fencerService: fencerService, rankingService: rankingService}
}

// CreateHandler обрабатывает POST /api/fencers.
func (h *FencerHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateFencerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	fencer, err := h.fencerService.CreateFencer(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"fencer": fencer}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler обрабатывает GET /api/fencers/{fencerID}.
func (h *FencerHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "fencerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	fencer, err := h.fencerService.GetFencer(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"fencer": fencer}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler обрабатывает GET /api/fencers.
func (h *FencerHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var filter repositories.ListFencersFilter
	query := r.URL.Query()

	if weaponStr := query.Get("weapon"); weaponStr != "" {
		weapon := models.Weapon(weaponStr)
		filter.Weapon = &weapon
	}
	if genderStr := query.Get("gender"); genderStr != "" {
		gender := models.Gender(genderStr)
		filter.Gender = &gender
	}
	if clubID := query.Get("club_id"); clubID != "" {
		filter.ClubID = &clubID
	}
	filter.Search = query.Get("search")

	limit, offset, err := parsePagination(r, 50)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	filter.Limit = limit
	filter.Offset = offset

	fencers, err := h.fencerService.ListFencers(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"fencers": fencers}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateHandler обрабатывает PUT /api/fencers/{fencerID}.
func (h *FencerHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "fencerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateFencerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	fencer, err := h.fencerService.UpdateFencer(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"fencer": fencer}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler обрабатывает DELETE /api/fencers/{fencerID}.
func (h *FencerHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "fencerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.fencerService.DeleteFencer(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResultsHandler обрабатывает GET /api/fencers/{fencerID}/results.
func (h *FencerHandler) ResultsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "fencerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	results, err := h.fencerService.GetFencerResults(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"results": results}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpcomingTournamentsHandler обрабатывает
// GET /api/fencers/{fencerID}/tournaments/upcoming.
func (h *FencerHandler) UpcomingTournamentsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "fencerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournaments, err := h.fencerService.GetFencerUpcomingTournaments(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RankingsHandler обрабатывает GET /api/fencers/{fencerID}/rankings.
func (h *FencerHandler) RankingsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "fencerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rankings, err := h.rankingService.ListByFencer(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rankings": rankings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecomputeHandler обрабатывает POST /api/fencers/{fencerID}/rankings/recompute.
func (h *FencerHandler) RecomputeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "fencerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rankings, err := h.rankingService.RecomputeForFencer(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rankings": rankings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
