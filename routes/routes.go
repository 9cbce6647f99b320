package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/tsumo-app/tsumo-server/handlers"
	"github.com/tsumo-app/tsumo-server/middleware"
)

// SetupRoutes mounts every HTTP and WebSocket endpoint on the router.
func SetupRoutes(
	router *chi.Mux,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	groupHandler *handlers.GroupHandler,
	gameHandler *handlers.GameHandler,
	statsHandler *handlers.StatsHandler,
	webSocketHandler *handlers.WebSocketHandler,
	jwtSecret string,
) {
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

	authenticate := middleware.Authenticate(jwtSecret)

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/users", func(r chi.Router) {
		r.Get("/{id}", userHandler.GetUserByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/me", userHandler.GetCurrentUser)
			r.Patch("/me", userHandler.UpdateCurrentUser)
			r.Post("/me/avatar", userHandler.UploadUserAvatar)
		})
	})

	router.Route("/groups", func(r chi.Router) {
		r.Use(authenticate)

		r.Post("/", groupHandler.CreateGroup)
		r.Get("/", groupHandler.ListMyGroups)
		r.Post("/join", groupHandler.JoinByInviteToken)

		r.Route("/{groupID}", func(r chi.Router) {
			r.Get("/", groupHandler.GetGroup)
			r.Patch("/", groupHandler.RenameGroup)
			r.Delete("/", groupHandler.DeleteGroup)

			r.Post("/invite", groupHandler.GenerateInviteToken)
			r.Delete("/invite", groupHandler.InvalidateInviteToken)

			r.Post("/leave", groupHandler.LeaveGroup)
			r.Post("/transfer", groupHandler.TransferOwnership)
			r.Delete("/members/{userID}", groupHandler.RemoveMember)

			r.Get("/leaderboard", groupHandler.GetLeaderboard)
			r.Get("/games", gameHandler.ListGroupGames)
			r.Post("/logo", groupHandler.UploadGroupLogo)
		})
	})

	router.Route("/games", func(r chi.Router) {
		r.Use(authenticate)

		r.Post("/", gameHandler.RecordGame)
		r.Get("/", gameHandler.ListMyGames)
		r.Get("/{gameID}", gameHandler.GetGame)
		r.Delete("/{gameID}", gameHandler.DeleteGame)
	})

	router.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/stats", statsHandler.GetMyStatistics)
	})

	router.Get("/ws/groups/{groupID}", webSocketHandler.ServeGroupWs)
}
