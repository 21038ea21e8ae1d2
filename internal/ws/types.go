package ws

import (
	"encoding/json"
	"sync"
)

// MessageType represents the different kinds of messages our system can handle
type MessageType string

const (
	MessageTypeClick      MessageType = "click"
	MessageTypeGameState  MessageType = "gameState"
	MessageTypeMatchFound MessageType = "matchFound"
	MessageTypeError      MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

// NewError builds an error message with a JSON payload.
func NewError(err error) Message {
	payload, _ := json.Marshal(ErrorPayload{Error: err.Error()})
	return Message{Type: MessageTypeError, Payload: payload}
}

// JSONWriter is the write side of a socket.
type JSONWriter interface {
	WriteJSON(v interface{}) error
}

// Conn serializes writes to a socket that allows only one writer at a time. Every
// write to a registered socket, broadcasts and error replies alike, goes through it.
type Conn struct {
	mu sync.Mutex
	w  JSONWriter
}

func NewConn(w JSONWriter) *Conn {
	return &Conn{w: w}
}

func (c *Conn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.w.WriteJSON(v)
}
