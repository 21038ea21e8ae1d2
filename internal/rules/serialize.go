package rules

import (
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedPosition = errors.New("malformed position")

// Serialize encodes the 64 cells row by row followed by the side to move: '0' for an
// empty cell, KQRBNP for white, kqrbnp for black, then '1' if white moves next, '0' if not.
func Serialize(b *Board, toMove Color) string {
	var sb strings.Builder
	sb.Grow(Size*Size + 1)
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			pc := b[r][c]
			if pc.IsEmpty() {
				sb.WriteByte('0')
				continue
			}
			ch := pc.Kind.Letter()
			if pc.Color == Black {
				ch += 'a' - 'A'
			}
			sb.WriteByte(ch)
		}
	}
	if toMove == White {
		sb.WriteByte('1')
	} else {
		sb.WriteByte('0')
	}
	return sb.String()
}

var kindByLetter = map[byte]Kind{
	'K': King, 'Q': Queen, 'R': Rook, 'B': Bishop, 'N': Knight, 'P': Pawn,
}

// Deserialize parses the Serialize format. Pieces come back with HasMoved false and no
// display handle.
func Deserialize(s string) (Board, Color, error) {
	var b Board
	if len(s) != Size*Size+1 {
		return b, "", fmt.Errorf("%w: want %d characters, got %d", ErrMalformedPosition, Size*Size+1, len(s))
	}
	for i := 0; i < Size*Size; i++ {
		ch := s[i]
		if ch == '0' {
			continue
		}
		color := White
		if ch >= 'a' && ch <= 'z' {
			color = Black
			ch -= 'a' - 'A'
		}
		kind, ok := kindByLetter[ch]
		if !ok {
			return b, "", fmt.Errorf("%w: unknown piece %q at index %d", ErrMalformedPosition, s[i], i)
		}
		b.place(Position{Row: i / Size, Col: i % Size}, Piece{Kind: kind, Color: color})
	}
	switch s[Size*Size] {
	case '1':
		return b, White, nil
	case '0':
		return b, Black, nil
	}
	return b, "", fmt.Errorf("%w: bad side to move %q", ErrMalformedPosition, s[Size*Size])
}
