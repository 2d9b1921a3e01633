package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/cupline/tournament-engine/handlers"
)

func InitRoutes(
	tournamentHandler *handlers.TournamentHandler,
	matchHandler *handlers.MatchHandler,
	teamHandler *handlers.TeamHandler,
	wsHandler *handlers.WebSocketHandler,
) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.ListHandler)
		r.Post("/", tournamentHandler.CreateHandler)

		r.Route("/{tournamentID}", func(r chi.Router) {
			r.Get("/", tournamentHandler.GetByIDHandler)
			r.Patch("/status", tournamentHandler.UpdateStatusHandler)
			r.Post("/registrations", tournamentHandler.RegisterTeamHandler)
			r.Put("/opening-pair", tournamentHandler.SelectOpeningPairHandler)
			r.Post("/schedule", tournamentHandler.GenerateScheduleHandler)
			r.Get("/standings", tournamentHandler.StandingsHandler)
			r.Post("/qualification/confirm", tournamentHandler.ConfirmQualificationHandler)
			r.Post("/draw/confirm", tournamentHandler.ConfirmDrawHandler)
			r.Get("/matches", matchHandler.ListByTournamentHandler)
		})
	})

	router.Patch("/registrations/{registrationID}", tournamentHandler.ReviewRegistrationHandler)

	router.Route("/matches/{matchID}", func(r chi.Router) {
		r.Get("/", matchHandler.GetByIDHandler)
		r.Put("/result", matchHandler.SubmitResultHandler)
	})

	router.Route("/teams", func(r chi.Router) {
		r.Post("/", teamHandler.CreateHandler)
		r.Get("/{teamID}", teamHandler.GetByIDHandler)
		r.Put("/{teamID}/logo", teamHandler.UploadLogoHandler)
	})

	router.Get("/ws/tournaments/{tournamentID}", wsHandler.ServeWs)

	return router
}
