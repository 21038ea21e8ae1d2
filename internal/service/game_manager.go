// service/game_manager.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/benbeisheim/ochello-backend/internal/model"
	"github.com/benbeisheim/ochello-backend/internal/rules"
	"github.com/benbeisheim/ochello-backend/internal/storage"
	"github.com/benbeisheim/ochello-backend/internal/ws"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
	ErrNoArchive    = errors.New("game archive is disabled")
)

// ManagerConfig carries the settings every new game is created with.
type ManagerConfig struct {
	EnPassant           rules.EnPassantRule
	Assets              rules.AssetResolver
	MatchmakingInterval time.Duration
	// Archive receives every finished game. Nil disables archiving.
	Archive *storage.Archive
}

type GameManager struct {
	games            map[string]*model.Game
	queue            *model.Queue
	matchingChannels map[string]chan string
	mu               sync.RWMutex
	cfg              ManagerConfig
	logger           *zap.Logger
	cancel           context.CancelFunc
	done             chan struct{}
	closed           bool
	archiving        sync.WaitGroup
}

func NewGameManager(cfg ManagerConfig, logger *zap.Logger) *GameManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MatchmakingInterval <= 0 {
		cfg.MatchmakingInterval = time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	gm := &GameManager{
		games:            make(map[string]*model.Game),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan string),
		cfg:              cfg,
		logger:           logger,
		cancel:           cancel,
		done:             make(chan struct{}),
	}

	go gm.processMatchmaking(ctx)

	return gm
}

// Close stops the matchmaking loop and waits for it and any pending archive writes.
func (gm *GameManager) Close() {
	gm.cancel()
	<-gm.done

	gm.mu.Lock()
	gm.closed = true
	gm.mu.Unlock()
	gm.archiving.Wait()
}

func (gm *GameManager) newGame(gameID string, local bool) *model.Game {
	cfg := model.GameConfig{
		Local:     local,
		EnPassant: gm.cfg.EnPassant,
		Assets:    gm.cfg.Assets,
	}
	if gm.cfg.Archive != nil {
		cfg.OnFinish = gm.archiveGame
	}
	return model.NewGame(gameID, cfg, nil, gm.logger)
}

func (gm *GameManager) archiveGame(result model.GameResult) {
	gm.mu.Lock()
	if gm.closed {
		gm.mu.Unlock()
		gm.logger.Warn("archive closed, dropping result", zap.String("game", result.ID))
		return
	}
	gm.archiving.Add(1)
	gm.mu.Unlock()
	defer gm.archiving.Done()

	err := gm.cfg.Archive.RecordGame(storage.GameRecord{
		ID:            result.ID,
		Winner:        result.Winner,
		Local:         result.Local,
		White:         result.Players.White.ID,
		Black:         result.Players.Black.ID,
		Plies:         result.Plies,
		History:       result.History,
		FinalPosition: result.FinalPosition,
	})
	if err != nil {
		gm.logger.Error("failed to archive game", zap.String("game", result.ID), zap.Error(err))
		return
	}
	gm.logger.Info("game archived", zap.String("game", result.ID), zap.String("winner", string(result.Winner)))
}

// ArchivedGame returns a finished game from the archive.
func (gm *GameManager) ArchivedGame(gameID string) (storage.GameRecord, error) {
	if gm.cfg.Archive == nil {
		return storage.GameRecord{}, ErrNoArchive
	}
	return gm.cfg.Archive.LoadGame(gameID)
}

func (gm *GameManager) ArchiveStats() (storage.Stats, error) {
	if gm.cfg.Archive == nil {
		return storage.Stats{}, ErrNoArchive
	}
	return gm.cfg.Archive.LoadStats()
}

func (gm *GameManager) ArchivedGames(limit int) ([]storage.GameRecord, error) {
	if gm.cfg.Archive == nil {
		return nil, ErrNoArchive
	}
	return gm.cfg.Archive.ListGames(limit)
}

func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	gm.logger.Debug("registering matchmaking channel", zap.String("player", playerID))

	if existingCh, exists := gm.matchingChannels[playerID]; exists {
		// Remove from map first to prevent any new writes
		delete(gm.matchingChannels, playerID)
		close(existingCh)
	}

	gm.matchingChannels[playerID] = ch
	return nil
}

func (gm *GameManager) UnregisterMatchmakingChannel(playerID string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	gm.logger.Debug("unregistering matchmaking channel", zap.String("player", playerID))

	// The creator of the channel is responsible for closing it
	delete(gm.matchingChannels, playerID)
}

func (gm *GameManager) processMatchmaking(ctx context.Context) {
	defer close(gm.done)
	ticker := time.NewTicker(gm.cfg.MatchmakingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			gm.matchPending()
		}
	}
}

// matchPending pairs queued players into new games until fewer than two remain.
func (gm *GameManager) matchPending() {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	for {
		player1, player2, ok := gm.queue.GetNextPair()
		if !ok {
			return
		}

		gameID := uuid.New().String()
		game := gm.newGame(gameID, false)
		p1Color, err := game.AddPlayer(player1.ID)
		if err != nil {
			gm.logger.Error("failed to seat player", zap.String("player", player1.ID), zap.Error(err))
			continue
		}
		p2Color, err := game.AddPlayer(player2.ID)
		if err != nil {
			gm.logger.Error("failed to seat player", zap.String("player", player2.ID), zap.Error(err))
			continue
		}
		gm.games[gameID] = game
		gm.logger.Info("match created",
			zap.String("game", gameID),
			zap.String("white", player1.ID),
			zap.String("black", player2.ID),
		)

		sent1 := gm.notifyMatch(player1.ID, model.MatchFoundEvent{GameID: gameID, Color: p1Color})
		sent2 := gm.notifyMatch(player2.ID, model.MatchFoundEvent{GameID: gameID, Color: p2Color})
		if !sent1 || !sent2 {
			gm.logger.Warn("failed to notify all players of match", zap.String("game", gameID))
		}
	}
}

// notifyMatch sends the event on the player's channel and closes it. Callers hold gm.mu.
func (gm *GameManager) notifyMatch(playerID string, event model.MatchFoundEvent) bool {
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		return false
	}
	payload, err := json.Marshal(event)
	if err != nil {
		gm.logger.Error("failed to marshal match event", zap.Error(err))
		return false
	}
	select {
	case ch <- string(payload):
		delete(gm.matchingChannels, playerID)
		close(ch)
		return true
	default:
		return false
	}
}

func (gm *GameManager) CreateGame(gameID string, local bool) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return ErrGameExists
	}

	gm.games[gameID] = gm.newGame(gameID, local)
	gm.logger.Info("game created", zap.String("game", gameID), zap.Bool("local", local))
	return nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}

	return game, nil
}

func (gm *GameManager) AddPlayerToGame(gameID string, playerID string) (rules.Color, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return "", err
	}
	return game.AddPlayer(playerID)
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if err := gm.queue.AddPlayer(model.Player{ID: playerID}); err != nil {
		return err
	}
	gm.logger.Info("player queued", zap.String("player", playerID), zap.Int("queued", gm.queue.Size()))
	return nil
}

func (gm *GameManager) LeaveMatchmaking(playerID string) bool {
	return gm.queue.Remove(playerID)
}

func (gm *GameManager) GetGameState(gameID string) (model.GameState, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

func (gm *GameManager) History(gameID string) ([]string, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return game.History(), nil
}

func (gm *GameManager) Click(gameID string, playerID string, cell rules.Position) (rules.Outcome, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return rules.Outcome{}, err
	}
	return game.Click(playerID, cell)
}

func (gm *GameManager) RegisterConnection(gameID string, playerID string, conn *ws.Conn) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gm *GameManager) UnregisterConnection(gameID string, playerID string) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(playerID)
}
