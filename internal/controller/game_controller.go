package controller

import (
	"errors"

	"github.com/benbeisheim/ochello-backend/internal/model"
	"github.com/benbeisheim/ochello-backend/internal/service"
	"github.com/benbeisheim/ochello-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type GameController struct {
	gameService *service.GameService
	logger      *zap.Logger
}

func NewGameController(gameService *service.GameService, logger *zap.Logger) *GameController {
	return &GameController{gameService: gameService, logger: logger}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound), errors.Is(err, storage.ErrRecordNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrNoArchive):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, model.ErrOutOfBounds):
		return fiber.StatusBadRequest
	case errors.Is(err, model.ErrNotInGame), errors.Is(err, model.ErrNotAuthorized):
		return fiber.StatusForbidden
	case errors.Is(err, model.ErrGameFull),
		errors.Is(err, model.ErrNotYourTurn),
		errors.Is(err, model.ErrWaitingForOpponent),
		errors.Is(err, model.ErrGameOver),
		errors.Is(err, model.ErrAlreadyQueued),
		errors.Is(err, model.ErrAlreadyConnected),
		errors.Is(err, service.ErrGameExists):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

func (gc *GameController) fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		gc.logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	local := c.Query("mode") == "local"

	gameID, err := gc.gameService.CreateGame(local)
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
		"local":   local,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)

	color, err := gc.gameService.JoinGame(gameID, playerID)
	if err != nil {
		return gc.fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   color,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return gc.fail(c, err)
	}

	return c.JSON(gameState)
}

func (gc *GameController) GetHistory(c *fiber.Ctx) error {
	history, err := gc.gameService.History(c.Params("gameId"))
	if err != nil {
		return gc.fail(c, err)
	}

	return c.JSON(fiber.Map{
		"history": history,
	})
}

func (gc *GameController) Click(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)

	var click model.ClickRequest
	if err := c.BodyParser(&click); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid click payload",
		})
	}

	result, err := gc.gameService.HandleClick(gameID, playerID, click)
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(result)
}

func (gc *GameController) JoinMatchmaking(c *fiber.Ctx) error {
	playerID := c.Locals("playerID").(string)

	if err := gc.gameService.JoinMatchmaking(playerID); err != nil {
		return gc.fail(c, err)
	}

	return c.JSON(fiber.Map{
		"status": "queued",
	})
}

func (gc *GameController) LeaveMatchmaking(c *fiber.Ctx) error {
	playerID := c.Locals("playerID").(string)

	return c.JSON(fiber.Map{
		"removed": gc.gameService.LeaveMatchmaking(playerID),
	})
}

func (gc *GameController) GetArchivedGame(c *fiber.Ctx) error {
	record, err := gc.gameService.ArchivedGame(c.Params("gameId"))
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(record)
}

func (gc *GameController) ListArchivedGames(c *fiber.Ctx) error {
	records, err := gc.gameService.ArchivedGames(c.QueryInt("limit", 50))
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"games": records,
	})
}

func (gc *GameController) GetStats(c *fiber.Ctx) error {
	stats, err := gc.gameService.ArchiveStats()
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(stats)
}
