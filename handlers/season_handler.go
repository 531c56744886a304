package handlers

import (
	"net/http"

	"github.com/fencelab/fencing-system/services"
)

type SeasonHandler struct {
	seasonService     *services.SeasonService
	simulationService *services.SimulationService
	exportService     *services.ExportService
	rosterService     *services.RosterService
}

func NewSeasonHandler(
	seasonService *services.SeasonService,
	simulationService *services.SimulationService,
	exportService *services.ExportService,
	rosterService *services.RosterService,
) *SeasonHandler {
	return &SeasonHandler{
		seasonService:     seasonService,
		simulationService: simulationService,
		exportService:     exportService,
		rosterService:     rosterService,
	}
}

// CreateHandler обрабатывает POST /api/seasons.
func (h *SeasonHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateSeasonInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	season, err := h.seasonService.CreateSeason(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"season": season}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler обрабатывает GET /api/seasons/{seasonID}.
func (h *SeasonHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "seasonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	season, err := h.seasonService.GetSeason(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"season": season}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler обрабатывает GET /api/seasons.
func (h *SeasonHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	seasons, err := h.seasonService.ListSeasons(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"seasons": seasons}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler обрабатывает DELETE /api/seasons/{seasonID}.
func (h *SeasonHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "seasonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.seasonService.DeleteSeason(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TournamentsHandler обрабатывает GET /api/seasons/{seasonID}/tournaments.
func (h *SeasonHandler) TournamentsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "seasonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournaments, err := h.seasonService.GetSeasonTournaments(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SimulateHandler обрабатывает POST /api/seasons/simulate: создаёт
// сезон и прогоняет его турниры через обычный конвейер регистрации и
// результатов.
func (h *SeasonHandler) SimulateHandler(w http.ResponseWriter, r *http.Request) {
	var params services.SimulationParams
	if err := readJSON(w, r, &params); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if params.NumTournaments == 0 {
		params.NumTournaments = 20
	}

	stats, err := h.simulationService.Run(r.Context(), params)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"simulation": stats}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ExportHandler обрабатывает POST /api/seasons/{seasonID}/export:
// собирает снимок сезона и выкладывает его в объектное хранилище.
func (h *SeasonHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "seasonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.exportService.ExportSeason(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"export": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SeedRosterHandler обрабатывает POST /api/roster/seed: наполняет базу
// сгенерированными клубами и фехтовальщиками.
func (h *SeasonHandler) SeedRosterHandler(w http.ResponseWriter, r *http.Request) {
	var params services.RosterSeedParams
	if err := readJSON(w, r, &params); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	summary, err := h.rosterService.Seed(r.Context(), params)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"roster": summary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
