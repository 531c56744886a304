package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/fencelab/fencing-system/handlers"
	"github.com/fencelab/fencing-system/middleware"
	"github.com/fencelab/fencing-system/models"
)

// SetupRoutes собирает маршрутизатор API. Чтение открыто всем,
// мутации — только администраторам.
func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Authenticator,
	authHandler *handlers.AuthHandler,
	fencerHandler *handlers.FencerHandler,
	clubHandler *handlers.ClubHandler,
	tournamentHandler *handlers.TournamentHandler,
	rankingHandler *handlers.RankingHandler,
	seasonHandler *handlers.SeasonHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	adminOnly := func(r chi.Router) chi.Router {
		r.Use(auth.Authenticate)
		r.Use(middleware.Authorize(models.RoleAdmin))
		return r
	}

	router.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	router.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", authHandler.LoginHandler)
		r.With(auth.Authenticate).Get("/me", authHandler.MeHandler)
		r.Group(func(r chi.Router) {
			adminOnly(r)
			r.Post("/register", authHandler.RegisterHandler)
		})
	})

	router.Route("/api/fencers", func(r chi.Router) {
		r.Get("/", fencerHandler.ListHandler)
		r.Get("/{fencerID}", fencerHandler.GetByIDHandler)
		r.Get("/{fencerID}/results", fencerHandler.ResultsHandler)
		r.Get("/{fencerID}/rankings", fencerHandler.RankingsHandler)
		r.Get("/{fencerID}/tournaments/upcoming", fencerHandler.UpcomingTournamentsHandler)

		r.Group(func(r chi.Router) {
			adminOnly(r)
			r.Post("/", fencerHandler.CreateHandler)
			r.Put("/{fencerID}", fencerHandler.UpdateHandler)
			r.Delete("/{fencerID}", fencerHandler.DeleteHandler)
			r.Post("/{fencerID}/rankings/recompute", fencerHandler.RecomputeHandler)
		})
	})

	router.Route("/api/clubs", func(r chi.Router) {
		r.Get("/", clubHandler.ListHandler)
		r.Get("/{clubID}", clubHandler.GetByIDHandler)
		r.Get("/{clubID}/standing", clubHandler.StandingHandler)

		r.Group(func(r chi.Router) {
			adminOnly(r)
			r.Post("/", clubHandler.CreateHandler)
			r.Put("/{clubID}", clubHandler.UpdateHandler)
			r.Delete("/{clubID}", clubHandler.DeleteHandler)
		})
	})

	router.Route("/api/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.ListHandler)
		r.Get("/{tournamentID}", tournamentHandler.GetByIDHandler)
		r.Get("/{tournamentID}/results", tournamentHandler.ResultsHandler)

		r.Group(func(r chi.Router) {
			adminOnly(r)
			r.Post("/", tournamentHandler.CreateHandler)
			r.Put("/{tournamentID}", tournamentHandler.UpdateHandler)
			r.Patch("/{tournamentID}/status", tournamentHandler.UpdateStatusHandler)
			r.Delete("/{tournamentID}", tournamentHandler.DeleteHandler)
			r.Post("/{tournamentID}/register", tournamentHandler.RegisterHandler)
			r.Delete("/{tournamentID}/register/{fencerID}", tournamentHandler.UnregisterHandler)
			r.Post("/{tournamentID}/results", tournamentHandler.RecordResultsHandler)
		})
	})

	router.Route("/api/rankings", func(r chi.Router) {
		r.Get("/", rankingHandler.ListHandler)

		r.Group(func(r chi.Router) {
			adminOnly(r)
			r.Post("/recompute", rankingHandler.RecomputeAllHandler)
			r.Post("/reset", rankingHandler.ResetAllHandler)
		})
	})

	router.Route("/api/seasons", func(r chi.Router) {
		r.Get("/", seasonHandler.ListHandler)
		r.Get("/{seasonID}", seasonHandler.GetByIDHandler)
		r.Get("/{seasonID}/tournaments", seasonHandler.TournamentsHandler)

		r.Group(func(r chi.Router) {
			adminOnly(r)
			r.Post("/", seasonHandler.CreateHandler)
			r.Delete("/{seasonID}", seasonHandler.DeleteHandler)
			r.Post("/simulate", seasonHandler.SimulateHandler)
			r.Post("/{seasonID}/export", seasonHandler.ExportHandler)
		})
	})

	router.Group(func(r chi.Router) {
		adminOnly(r)
		r.Post("/api/roster/seed", seasonHandler.SeedRosterHandler)
	})

	router.Get("/ws/standings/{bracket}", webSocketHandler.StandingsHandler)
}
