package rules

// LastMove is the previous ply. From is what the en passant rule inspects.
type LastMove struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

var noLastMove = LastMove{From: NoPosition, To: NoPosition}

// EnPassantRule selects how en passant eligibility is read from the previous ply.
type EnPassantRule string

const (
	// EnPassantReference offers the diagonal when the previous ply started on it and
	// that cell now holds an opposing pawn.
	EnPassantReference EnPassantRule = "reference"
	// EnPassantStrict offers the diagonal only right after an opposing pawn advanced two
	// squares to land beside the capturing pawn.
	EnPassantStrict EnPassantRule = "strict"
)

func (r EnPassantRule) Valid() bool {
	return r == EnPassantReference || r == EnPassantStrict
}

var (
	rookDirs   = []Position{{Row: -1, Col: 0}, {Row: 0, Col: -1}, {Row: 0, Col: 1}, {Row: 1, Col: 0}}
	bishopDirs = []Position{{Row: -1, Col: -1}, {Row: -1, Col: 1}, {Row: 1, Col: -1}, {Row: 1, Col: 1}}
	kingDirs   = []Position{
		{Row: -1, Col: -1}, {Row: -1, Col: 0}, {Row: -1, Col: 1}, {Row: 0, Col: -1},
		{Row: 0, Col: 1}, {Row: 1, Col: -1}, {Row: 1, Col: 0}, {Row: 1, Col: 1},
	}
	knightJumps = []Position{
		{Row: -2, Col: -1}, {Row: -2, Col: 1}, {Row: -1, Col: -2}, {Row: -1, Col: 2},
		{Row: 1, Col: -2}, {Row: 1, Col: 2}, {Row: 2, Col: -1}, {Row: 2, Col: 1},
	}
)

// pawnDir is the row step a pawn of color c advances by.
func pawnDir(c Color) int {
	if c == White {
		return -1
	}
	return 1
}

func pawnStartRow(c Color) int {
	if c == White {
		return 6
	}
	return 1
}

// LegalMoves returns the destinations the piece on from may move to. It never mutates b
// and returns nil for an empty cell.
func LegalMoves(b *Board, from Position, last LastMove, rule EnPassantRule) []Position {
	piece := b.At(from)
	if piece.IsEmpty() {
		return nil
	}
	g := moveSet{board: b, piece: piece}
	switch piece.Kind {
	case King:
		g.steps(kingDirs)
		g.castles()
	case Queen:
		g.slides(kingDirs)
	case Rook:
		g.slides(rookDirs)
	case Bishop:
		g.slides(bishopDirs)
	case Knight:
		g.steps(knightJumps)
	case Pawn:
		g.pawn(last, rule)
	}
	return g.moves
}

type moveSet struct {
	board *Board
	piece Piece
	moves []Position
}

// add applies the base filter: on the board and not onto an own piece.
func (g *moveSet) add(to Position) {
	if !to.InBounds() {
		return
	}
	target := g.board.At(to)
	if !target.IsEmpty() && target.Color == g.piece.Color {
		return
	}
	for _, m := range g.moves {
		if m == to {
			return
		}
	}
	g.moves = append(g.moves, to)
}

func (g *moveSet) steps(offsets []Position) {
	for _, d := range offsets {
		g.add(g.piece.Position.add(d))
	}
}

func (g *moveSet) slides(dirs []Position) {
	for _, d := range dirs {
		for to := g.piece.Position.add(d); to.InBounds(); to = to.add(d) {
			target := g.board.At(to)
			if target.IsEmpty() {
				g.add(to)
				continue
			}
			if target.Color != g.piece.Color {
				g.add(to)
			}
			break
		}
	}
}

func (g *moveSet) castles() {
	if g.piece.HasMoved {
		return
	}
	row := g.piece.Position.Row
	if g.castleRook(row, 7) && g.emptyRow(row, 5, 6) {
		g.add(Position{Row: row, Col: 6})
	}
	if g.castleRook(row, 0) && g.emptyRow(row, 1, 3) {
		g.add(Position{Row: row, Col: 2})
	}
}

// castleRook reports whether the corner holds a rook that has never moved.
func (g *moveSet) castleRook(row, col int) bool {
	corner := g.board.At(Position{Row: row, Col: col})
	return corner.Kind == Rook && !corner.HasMoved
}

func (g *moveSet) emptyRow(row, fromCol, toCol int) bool {
	for col := fromCol; col <= toCol; col++ {
		if !g.board.IsEmpty(Position{Row: row, Col: col}) {
			return false
		}
	}
	return true
}

func (g *moveSet) pawn(last LastMove, rule EnPassantRule) {
	pos := g.piece.Position
	dr := pawnDir(g.piece.Color)

	one := Position{Row: pos.Row + dr, Col: pos.Col}
	if one.InBounds() && g.board.IsEmpty(one) {
		g.add(one)
	}
	two := Position{Row: pos.Row + 2*dr, Col: pos.Col}
	if pos.Row == pawnStartRow(g.piece.Color) && g.board.IsEmpty(one) && g.board.IsEmpty(two) {
		g.add(two)
	}

	for _, dc := range []int{-1, 1} {
		diag := Position{Row: pos.Row + dr, Col: pos.Col + dc}
		if !diag.InBounds() {
			continue
		}
		target := g.board.At(diag)
		if !target.IsEmpty() && target.Color != g.piece.Color {
			g.add(diag)
		}
		if g.enPassant(diag, last, rule) {
			g.add(diag)
		}
	}
}

func (g *moveSet) enPassant(diag Position, last LastMove, rule EnPassantRule) bool {
	if rule == EnPassantStrict {
		beside := Position{Row: g.piece.Position.Row, Col: diag.Col}
		victim := g.board.At(beside)
		return last.To == beside &&
			last.From == Position{Row: beside.Row - 2*pawnDir(g.piece.Color.Opponent()), Col: beside.Col} &&
			victim.Kind == Pawn && victim.Color != g.piece.Color &&
			g.board.IsEmpty(diag)
	}
	if last.From != diag {
		return false
	}
	victim := g.board.At(last.From)
	return victim.Kind == Pawn && victim.Color != g.piece.Color
}
