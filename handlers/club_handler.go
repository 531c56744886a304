package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fencelab/fencing-system/models"
	"github.com/fencelab/fencing-system/services"
)

type ClubHandler struct {
	clubService *services.ClubService
}

func NewClubHandler(clubService *services.ClubService) *ClubHandler {
	return &ClubHandler{clubService: clubService}
}

// CreateHandler обрабатывает POST /api/clubs.
func (h *ClubHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateClubInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	club, err := h.clubService.CreateClub(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"club": club}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler обрабатывает GET /api/clubs/{clubID}.
func (h *ClubHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "clubID")

	club, err := h.clubService.GetClub(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"club": club}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler обрабатывает GET /api/clubs.
func (h *ClubHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var status *models.ClubStatus
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		s := models.ClubStatus(statusStr)
		status = &s
	}

	clubs, err := h.clubService.ListClubs(r.Context(), status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"clubs": clubs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateHandler обрабатывает PUT /api/clubs/{clubID}.
func (h *ClubHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "clubID")

	var input services.UpdateClubInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	club, err := h.clubService.UpdateClub(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"club": club}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler обрабатывает DELETE /api/clubs/{clubID}.
func (h *ClubHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "clubID")

	if err := h.clubService.DeleteClub(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StandingHandler обрабатывает GET /api/clubs/{clubID}/standing.
func (h *ClubHandler) StandingHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "clubID")

	var bracket *models.Bracket
	if bracketStr := r.URL.Query().Get("bracket"); bracketStr != "" {
		b := models.Bracket(bracketStr)
		bracket = &b
	}

	standing, err := h.clubService.GetClubStanding(r.Context(), id, bracket)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standing": standing}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
