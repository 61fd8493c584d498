package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Dosada05/fantasy-league/handlers"
	"github.com/Dosada05/fantasy-league/middleware"
	"github.com/Dosada05/fantasy-league/models"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	fantasyHandler *handlers.FantasyHandler,
	pickHandler *handlers.PickHandler,
	leaderboardHandler *handlers.LeaderboardHandler,
	adminHandler *handlers.AdminHandler,
	feedHandler *handlers.FeedHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Feed-Key"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate([]byte(jwtSecret))
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/me", authHandler.Me)
		})
	})

	// Public tournament views.
	router.Get("/tournaments", tournamentHandler.List)
	router.Get("/tournaments/live", tournamentHandler.GetLive)
	router.Get("/tournaments/{slug}", tournamentHandler.GetBySlug)
	router.Get("/stages/{stageID}", tournamentHandler.GetStage)
	router.Get("/stages/{stageID}/fantasy", fantasyHandler.StageFantasy)
	router.Get("/tournaments/{tournamentID}/playoffs/fantasy", fantasyHandler.PlayoffFantasy)

	// Leaderboard and public profiles.
	router.Get("/leaderboard", leaderboardHandler.GetLeaderboard)
	router.Get("/users/{userID}/profile", leaderboardHandler.GetPublicProfile)

	// Picks require a logged-in user.
	router.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/stages/{stageID}/picks", pickHandler.GetPhasePick)
		r.Post("/stages/{stageID}/picks", pickHandler.SavePhasePick)
		r.Get("/tournaments/{tournamentID}/playoff-picks", pickHandler.GetPlayoffPick)
		r.Post("/tournaments/{tournamentID}/playoff-picks", pickHandler.SavePlayoffPick)
	})

	router.Route("/admin", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(adminOnly)

		r.Post("/tournaments", adminHandler.CreateTournament)
		r.Put("/tournaments/{tournamentID}/live", adminHandler.SetTournamentLive)
		r.Post("/tournaments/{tournamentID}/stages", adminHandler.CreateStage)
		r.Post("/tournaments/{tournamentID}/finalize-playoffs", adminHandler.FinalizePlayoffs)

		r.Put("/stages/{stageID}/status", adminHandler.SetStageStatus)
		r.Post("/stages/{stageID}/finalize", adminHandler.FinalizeStage)
		r.Post("/stages/{stageID}/teams", adminHandler.AddTeamToStage)

		r.Post("/teams", adminHandler.CreateTeam)
		r.Post("/teams/{teamID}/logo", adminHandler.UploadTeamLogo)

		r.Put("/matches/{matchID}/result", adminHandler.SetMatchResult)
	})

	// Provider push endpoint, authenticated by shared key inside the
	// handler.
	router.Post("/feed/webhook", feedHandler.Webhook)

	router.Get("/ws/{tournamentID}", webSocketHandler.Subscribe)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
}
