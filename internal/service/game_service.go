package service

import (
	"fmt"

	"github.com/benbeisheim/ochello-backend/internal/model"
	"github.com/benbeisheim/ochello-backend/internal/rules"
	"github.com/benbeisheim/ochello-backend/internal/storage"
	"github.com/benbeisheim/ochello-backend/internal/ws"
	"github.com/google/uuid"
)

type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

func (gs *GameService) JoinGame(gameID string, playerID string) (rules.Color, error) {
	return gs.gameManager.AddPlayerToGame(gameID, playerID)
}

func (gs *GameService) CreateGame(local bool) (string, error) {
	gameID := uuid.New().String()

	if err := gs.gameManager.CreateGame(gameID, local); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}

	return gameID, nil
}

func (gs *GameService) JoinMatchmaking(playerID string) error {
	return gs.gameManager.JoinMatchmaking(playerID)
}

func (gs *GameService) GetGameState(gameID string) (model.GameState, error) {
	return gs.gameManager.GetGameState(gameID)
}

func (gs *GameService) History(gameID string) ([]string, error) {
	return gs.gameManager.History(gameID)
}

// HandleClick applies a click and returns the outcome with the state after it.
func (gs *GameService) HandleClick(gameID string, playerID string, click model.ClickRequest) (model.ClickResult, error) {
	out, err := gs.gameManager.Click(gameID, playerID, click.Position())
	if err != nil {
		return model.ClickResult{}, err
	}
	state, err := gs.gameManager.GetGameState(gameID)
	if err != nil {
		return model.ClickResult{}, err
	}
	return model.ClickResult{Outcome: out, State: state}, nil
}

func (gs *GameService) RegisterConnection(gameID string, playerID string, conn *ws.Conn) error {
	return gs.gameManager.RegisterConnection(gameID, playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string) {
	gs.gameManager.UnregisterConnection(gameID, playerID)
}

func (gs *GameService) RegisterMatchmakingChannel(playerID string, ch chan string) error {
	return gs.gameManager.RegisterMatchmakingChannel(playerID, ch)
}

func (gs *GameService) UnregisterMatchmakingChannel(playerID string) {
	gs.gameManager.UnregisterMatchmakingChannel(playerID)
}

func (gs *GameService) LeaveMatchmaking(playerID string) bool {
	return gs.gameManager.LeaveMatchmaking(playerID)
}

func (gs *GameService) ArchivedGame(gameID string) (storage.GameRecord, error) {
	return gs.gameManager.ArchivedGame(gameID)
}

func (gs *GameService) ArchivedGames(limit int) ([]storage.GameRecord, error) {
	return gs.gameManager.ArchivedGames(limit)
}

func (gs *GameService) ArchiveStats() (storage.Stats, error) {
	return gs.gameManager.ArchiveStats()
}
