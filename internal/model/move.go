package model

import "github.com/benbeisheim/ochello-backend/internal/rules"

// ClickRequest is a cell click sent by a client.
type ClickRequest struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c ClickRequest) Position() rules.Position {
	return rules.Position{Row: c.Row, Col: c.Col}
}

// ClickResult is returned to the clicking client.
type ClickResult struct {
	Outcome rules.Outcome `json:"outcome"`
	State   GameState     `json:"state"`
}

type MatchFoundEvent struct {
	GameID string      `json:"gameId"`
	Color  rules.Color `json:"color"`
}
