package routes

import (
	"net/http"

	"github.com/Dosada05/bracket-engine/handlers"
	"github.com/Dosada05/bracket-engine/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	bracketHandler *handlers.BracketHandler,
	matchHandler *handlers.MatchHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Post("/auth/login", authHandler.Login)

	router.Route("/competitions/{competitionID}", func(r chi.Router) {
		// Public read surface for bracket display.
		r.Get("/brackets", bracketHandler.ListByCompetitionHandler)

		// Rebuild is destructive; operators only.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Use(middleware.RequireRole(middleware.RoleOperator))

			r.Post("/brackets/rebuild", bracketHandler.RebuildAllHandler)
			r.Post("/brackets/{categoryKey}/rebuild", bracketHandler.RebuildCategoryHandler)
		})
	})

	router.Route("/brackets/{bracketID}", func(r chi.Router) {
		r.Get("/", bracketHandler.GetBracketHandler)
		r.Get("/placements", bracketHandler.GetPlacementsHandler)
	})

	router.Route("/matches/{matchID}", func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))
		r.Use(middleware.RequireRole(middleware.RoleOperator))

		r.Post("/result", matchHandler.RecordResultHandler)
		r.Delete("/result", matchHandler.ClearResultHandler)
	})

	router.Get("/ws/competitions/{competitionID}", webSocketHandler.ServeWs)
}
