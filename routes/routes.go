package routes

import (
	"github.com/bracketforge/tournament-engine/handlers"
	"github.com/bracketforge/tournament-engine/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes wires the HTTP surface. Reads are public, every mutation goes
// through the authenticator so the audit trail always has an actor.
func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Authenticator,
	tournamentHandler *handlers.TournamentHandler,
	matchHandler *handlers.MatchHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/{tournamentID}", tournamentHandler.GetByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Post("/", tournamentHandler.CreateHandler)
			r.Post("/{tournamentID}/players", tournamentHandler.RegisterPlayerHandler)
			r.Post("/{tournamentID}/fixtures", tournamentHandler.GenerateFixturesHandler)
			r.Post("/{tournamentID}/cancel", tournamentHandler.CancelHandler)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", matchHandler.GetByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Post("/{matchID}/result", matchHandler.SubmitResultHandler)
		})
	})

	router.Get("/groups/{groupID}/standings", tournamentHandler.GroupStandingsHandler)
}
