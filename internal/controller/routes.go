package controller

import (
	"github.com/benbeisheim/ochello-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// RegisterRoutes mounts the REST and WebSocket endpoints on app.
func RegisterRoutes(app *fiber.App, gc *GameController, wsc *WebSocketController, origins []string, logger *zap.Logger) {
	wsConfig := websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		Origins:         origins,
	}

	app.Use("/ws", middleware.EnsurePlayerID(logger), middleware.WebSocketUpgrade(logger))
	app.Get("/ws/game/:gameId", websocket.New(wsc.HandleConnection, wsConfig))
	app.Get("/ws/matchmaking", websocket.New(wsc.HandleMatchmaking, wsConfig))

	api := app.Group("/api", middleware.EnsurePlayerID(logger))

	archiveRoutes := api.Group("/archive")
	archiveRoutes.Get("/", gc.ListArchivedGames)
	archiveRoutes.Get("/stats", gc.GetStats)
	archiveRoutes.Get("/:gameId", gc.GetArchivedGame)

	gameRoutes := api.Group("/game")
	gameRoutes.Post("/matchmaking/join", gc.JoinMatchmaking)
	gameRoutes.Post("/matchmaking/leave", gc.LeaveMatchmaking)
	gameRoutes.Post("/create", gc.CreateGame)
	gameRoutes.Post("/join/:gameId", gc.JoinGame)
	gameRoutes.Get("/:gameId", gc.GetGameState)
	gameRoutes.Get("/:gameId/history", gc.GetHistory)
	gameRoutes.Post("/:gameId/click", gc.Click)
}
