package model

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/benbeisheim/ochello-backend/internal/rules"
	"github.com/benbeisheim/ochello-backend/internal/ws"
	"go.uber.org/zap"
)

// GameConnections holds the sockets observing a game, keyed by player ID.
type GameConnections struct {
	connections map[string]*ws.Conn
	mu          sync.RWMutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]*ws.Conn),
	}
}

// GameConfig holds the per-game settings chosen at creation.
type GameConfig struct {
	// Local games are hot-seat: one player moves for both colors.
	Local     bool
	EnPassant rules.EnPassantRule
	Assets    rules.AssetResolver
	// OnFinish, if set, runs once in its own goroutine after the winning move.
	OnFinish func(GameResult)
}

// GameResult summarizes a finished game.
type GameResult struct {
	ID            string
	Winner        rules.Color
	Local         bool
	Players       Players
	Plies         int
	History       []string
	FinalPosition string
}

// Game wraps a rules session with its players and observers.
type Game struct {
	ID          string
	mu          sync.Mutex
	session     *rules.Session
	players     Players
	local       bool
	lastEvents  []rules.Event
	connections *GameConnections
	clock       *TurnClock
	onFinish    func(GameResult)
	logger      *zap.Logger
}

// GameState is what clients render.
type GameState struct {
	rules.View
	ID          string        `json:"id"`
	Players     Players       `json:"players"`
	Local       bool          `json:"local"`
	Events      []rules.Event `json:"events"`
	MoveHistory []rules.Ply   `json:"moveHistory"`
	TurnBanner  bool          `json:"turnBanner"`
	TurnMillis  int64         `json:"turnElapsedMs"`
}

func NewGame(id string, cfg GameConfig, clock *TurnClock, logger *zap.Logger) *Game {
	if clock == nil {
		clock = NewTurnClock(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Game{
		ID: id,
		session: rules.NewSession(
			rules.WithAssets(cfg.Assets),
			rules.WithEnPassantRule(cfg.EnPassant),
		),
		local:       cfg.Local,
		lastEvents:  make([]rules.Event, 0),
		connections: NewGameConnections(),
		clock:       clock,
		onFinish:    cfg.OnFinish,
		logger:      logger.With(zap.String("game", id)),
	}
}

// AddPlayer seats playerID, white first. The only player of a local game holds both seats.
func (g *Game) AddPlayer(playerID string) (rules.Color, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if color := g.players.colorOf(playerID); color != "" {
		return color, nil
	}
	if g.players.White.ID == "" {
		g.players.White = ClientPlayer{ID: playerID, Color: rules.White}
		if g.local {
			g.players.Black = ClientPlayer{ID: playerID, Color: rules.Black}
		}
		g.logger.Info("player joined", zap.String("player", playerID), zap.String("color", string(rules.White)))
		return rules.White, nil
	}
	if g.players.Black.ID == "" {
		g.players.Black = ClientPlayer{ID: playerID, Color: rules.Black}
		g.logger.Info("player joined", zap.String("player", playerID), zap.String("color", string(rules.Black)))
		return rules.Black, nil
	}
	return "", ErrGameFull
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.stateLocked()
}

func (g *Game) stateLocked() GameState {
	return GameState{
		View:        g.session.Snapshot(),
		ID:          g.ID,
		Players:     g.players,
		Local:       g.local,
		Events:      append([]rules.Event{}, g.lastEvents...),
		MoveHistory: append([]rules.Ply{}, g.session.Plies()...),
		TurnBanner:  !g.session.GameOver() && g.clock.BannerVisible(),
		TurnMillis:  g.clock.Elapsed().Milliseconds(),
	}
}

func (g *Game) resultLocked() GameResult {
	board := g.session.Board()
	return GameResult{
		ID:            g.ID,
		Winner:        g.session.Winner(),
		Local:         g.local,
		Players:       g.players,
		Plies:         len(g.session.Plies()),
		History:       g.session.History(),
		FinalPosition: rules.Serialize(&board, g.session.ToMove()),
	}
}

// History returns the encoded position after every completed turn.
func (g *Game) History() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.session.History()
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.isPlayerInGame(playerID)
}

func (g *Game) isPlayerInGame(playerID string) bool {
	return g.players.colorOf(playerID) != ""
}

func (g *Game) CanSpectate() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.canSpectate()
}

func (g *Game) canSpectate() bool {
	return g.players.White.ID == "" || g.players.Black.ID == ""
}

// Click forwards a cell click from playerID to the session. Only the player whose
// color is to move may click.
func (g *Game) Click(playerID string, cell rules.Position) (rules.Outcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !cell.InBounds() {
		return rules.Outcome{}, fmt.Errorf("%w: %v", ErrOutOfBounds, cell)
	}
	if !g.isPlayerInGame(playerID) {
		return rules.Outcome{}, ErrNotInGame
	}
	if g.session.GameOver() {
		return rules.Outcome{}, ErrGameOver
	}
	if g.players.White.ID == "" || g.players.Black.ID == "" {
		return rules.Outcome{}, ErrWaitingForOpponent
	}
	toMove := g.session.ToMove()
	if !g.local && g.players.colorOf(playerID) != toMove {
		return rules.Outcome{}, ErrNotYourTurn
	}

	out := g.session.Click(cell)
	switch out.Kind {
	case rules.OutcomeIgnored:
		return out, nil
	case rules.OutcomeMoved:
		g.lastEvents = out.Events
		g.clock.Start()
		g.logger.Info("move played",
			zap.String("player", playerID),
			zap.String("color", string(toMove)),
			zap.String("piece", string(out.Ply.Piece.Kind)),
			zap.Stringer("from", out.Ply.From),
			zap.Stringer("to", out.Ply.To),
			zap.Int("flipped", len(out.Ply.Flipped)),
			zap.Any("events", out.Events),
		)
		if g.session.GameOver() {
			g.logger.Info("game over", zap.String("winner", string(g.session.Winner())))
			if g.onFinish != nil {
				go g.onFinish(g.resultLocked())
			}
		}
	default:
		g.logger.Debug("selection changed", zap.String("player", playerID), zap.String("outcome", string(out.Kind)))
	}

	go g.broadcastState()
	return out, nil
}

// RegisterConnection attaches conn as playerID's observer. A second socket for the same
// player is refused with ErrAlreadyConnected and the existing one is kept.
func (g *Game) RegisterConnection(playerID string, conn *ws.Conn) error {
	g.mu.Lock()
	isAuthorized := g.isPlayerInGame(playerID) || g.canSpectate()
	g.mu.Unlock()

	if !isAuthorized {
		return ErrNotAuthorized
	}

	g.connections.mu.Lock()
	if _, exists := g.connections.connections[playerID]; exists {
		g.connections.mu.Unlock()
		return ErrAlreadyConnected
	}

	g.connections.connections[playerID] = conn
	g.connections.mu.Unlock()
	g.logger.Info("connection registered", zap.String("player", playerID))

	go g.broadcastState()
	return nil
}

func (g *Game) UnregisterConnection(playerID string) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if _, exists := g.connections.connections[playerID]; exists {
		delete(g.connections.connections, playerID)
		g.logger.Info("connection unregistered", zap.String("player", playerID))
	}
}

// ConnectionCount returns how many observers are attached.
func (g *Game) ConnectionCount() int {
	g.connections.mu.RLock()
	defer g.connections.mu.RUnlock()

	return len(g.connections.connections)
}

func (g *Game) broadcastState() {
	payload, err := json.Marshal(g.GetState())
	if err != nil {
		g.logger.Error("failed to marshal state", zap.Error(err))
		return
	}
	msg := ws.Message{Type: ws.MessageTypeGameState, Payload: payload}

	// Snapshot connections so writes happen without holding the lock
	g.connections.mu.RLock()
	active := make(map[string]*ws.Conn, len(g.connections.connections))
	for playerID, conn := range g.connections.connections {
		active[playerID] = conn
	}
	g.connections.mu.RUnlock()

	for playerID, conn := range active {
		if err := conn.WriteJSON(msg); err != nil {
			g.logger.Warn("failed to send state", zap.String("player", playerID), zap.Error(err))
			g.connections.mu.Lock()
			if g.connections.connections[playerID] == conn {
				delete(g.connections.connections, playerID)
			}
			g.connections.mu.Unlock()
		}
	}
}
