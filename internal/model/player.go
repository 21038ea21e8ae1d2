package model

import "github.com/benbeisheim/ochello-backend/internal/rules"

type Player struct {
	ID    string
	Color rules.Color
}

type ClientPlayer struct {
	ID    string      `json:"name"`
	Color rules.Color `json:"color"`
}

type Players struct {
	White ClientPlayer `json:"white"`
	Black ClientPlayer `json:"black"`
}

// colorOf returns the seat held by playerID, or "" for spectators.
func (p Players) colorOf(playerID string) rules.Color {
	switch {
	case playerID == "":
		return ""
	case p.White.ID == playerID:
		return rules.White
	case p.Black.ID == playerID:
		return rules.Black
	}
	return ""
}
