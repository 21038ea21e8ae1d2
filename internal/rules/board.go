// Package rules implements the Ochello rule engine: chess movement where every move
// also brackets and flips opposing pieces the way Othello does.
package rules

import "fmt"

const Size = 8

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

type Kind string

const (
	King   Kind = "king"
	Queen  Kind = "queen"
	Rook   Kind = "rook"
	Bishop Kind = "bishop"
	Knight Kind = "knight"
	Pawn   Kind = "pawn"
)

// Letter returns the upper-case piece letter used by the position encoding.
func (k Kind) Letter() byte {
	switch k {
	case King:
		return 'K'
	case Queen:
		return 'Q'
	case Rook:
		return 'R'
	case Bishop:
		return 'B'
	case Knight:
		return 'N'
	case Pawn:
		return 'P'
	}
	return '0'
}

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// NoPosition marks "no previous move".
var NoPosition = Position{Row: -1, Col: -1}

func (p Position) InBounds() bool {
	return p.Row >= 0 && p.Row < Size && p.Col >= 0 && p.Col < Size
}

func (p Position) add(d Position) Position {
	return Position{Row: p.Row + d.Row, Col: p.Col + d.Col}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Piece is stored by value in its board cell. The zero Piece is an empty cell.
type Piece struct {
	Kind     Kind     `json:"type"`
	Color    Color    `json:"color"`
	Position Position `json:"position"`
	HasMoved bool     `json:"hasMoved"`
	Asset    string   `json:"asset,omitempty"`
}

func (p Piece) IsEmpty() bool {
	return p.Kind == ""
}

type Board [Size][Size]Piece

var backRank = [Size]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewBoard returns the standard starting layout, white on rows 6 and 7.
func NewBoard(assets AssetResolver) Board {
	var b Board
	for col, kind := range backRank {
		b.place(Position{Row: 0, Col: col}, newPiece(Black, kind, assets))
		b.place(Position{Row: 7, Col: col}, newPiece(White, kind, assets))
		b.place(Position{Row: 1, Col: col}, newPiece(Black, Pawn, assets))
		b.place(Position{Row: 6, Col: col}, newPiece(White, Pawn, assets))
	}
	return b
}

func newPiece(c Color, k Kind, assets AssetResolver) Piece {
	return Piece{Kind: k, Color: c, Asset: resolveAsset(assets, c, k)}
}

// At returns the piece at p, or the empty piece when p is empty or off the board.
func (b *Board) At(p Position) Piece {
	if !p.InBounds() {
		return Piece{}
	}
	return b[p.Row][p.Col]
}

func (b *Board) IsEmpty(p Position) bool {
	return b.At(p).IsEmpty()
}

func (b *Board) place(p Position, pc Piece) {
	pc.Position = p
	b[p.Row][p.Col] = pc
}

func (b *Board) remove(p Position) Piece {
	old := b[p.Row][p.Col]
	b[p.Row][p.Col] = Piece{}
	return old
}

// move relocates the piece at from onto to and returns whatever occupied to.
func (b *Board) move(from, to Position) Piece {
	captured := b.At(to)
	b.place(to, b.remove(from))
	return captured
}

// Count returns how many pieces of color c are on the board.
func (b *Board) Count(c Color) int {
	n := 0
	for r := 0; r < Size; r++ {
		for col := 0; col < Size; col++ {
			if !b[r][col].IsEmpty() && b[r][col].Color == c {
				n++
			}
		}
	}
	return n
}
