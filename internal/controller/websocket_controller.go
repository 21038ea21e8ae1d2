package controller

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/benbeisheim/ochello-backend/internal/model"
	"github.com/benbeisheim/ochello-backend/internal/service"
	"github.com/benbeisheim/ochello-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

type WebSocketController struct {
	gameService *service.GameService
	logger      *zap.Logger
}

func NewWebSocketController(gameService *service.GameService, logger *zap.Logger) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
		logger:      logger,
	}
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)
	logger := wsc.logger.With(zap.String("game", gameID), zap.String("player", playerID))
	// Broadcasts and error replies share the socket, so both write through conn.
	conn := ws.NewConn(c)

	if err := wsc.gameService.RegisterConnection(gameID, playerID, conn); err != nil {
		logger.Warn("failed to register connection", zap.Error(err))
		wsc.sendError(conn, err)
		if errors.Is(err, model.ErrAlreadyConnected) {
			c.WriteMessage(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, err.Error()),
			)
		}
		c.Close()
		return
	}

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			logger.Debug("read ended", zap.Error(err))
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			logger.Debug("parse error", zap.Error(err))
			continue
		}

		if err := wsc.handleMessage(gameID, playerID, msg); err != nil {
			logger.Debug("handle error", zap.Error(err))
			wsc.sendError(conn, err)
		}
	}

	wsc.gameService.UnregisterConnection(gameID, playerID)
}

func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeClick:
		var click model.ClickRequest
		if err := json.Unmarshal(msg.Payload, &click); err != nil {
			return err
		}
		// State reaches every observer through the game's broadcast.
		_, err := wsc.gameService.HandleClick(gameID, playerID, click)
		return err

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

// HandleMatchmaking waits until the player is paired and sends the match.
func (wsc *WebSocketController) HandleMatchmaking(c *websocket.Conn) {
	playerID := c.Locals("playerID").(string)
	ch := make(chan string, 1)
	if err := wsc.gameService.RegisterMatchmakingChannel(playerID, ch); err != nil {
		wsc.sendError(ws.NewConn(c), err)
		c.Close()
		return
	}
	defer wsc.gameService.UnregisterMatchmakingChannel(playerID)

	// A dropped socket leaves the queue.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case event, ok := <-ch:
		if !ok {
			return
		}
		if err := c.WriteJSON(ws.Message{
			Type:    ws.MessageTypeMatchFound,
			Payload: json.RawMessage(event),
		}); err != nil {
			wsc.logger.Warn("failed to send match", zap.String("player", playerID), zap.Error(err))
		}
	case <-closed:
		wsc.gameService.LeaveMatchmaking(playerID)
	}
}

func (wsc *WebSocketController) sendError(c *ws.Conn, err error) {
	if werr := c.WriteJSON(ws.NewError(err)); werr != nil {
		wsc.logger.Debug("failed to send error", zap.Error(werr))
	}
}
