package rules

// Phase is where a Session sits between clicks.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseSelected Phase = "selected"
	PhaseTerminal Phase = "terminal"
)

type OutcomeKind string

const (
	OutcomeIgnored    OutcomeKind = "ignored"
	OutcomeSelected   OutcomeKind = "selected"
	OutcomeDeselected OutcomeKind = "deselected"
	OutcomeMoved      OutcomeKind = "moved"
)

// Event is a feedback signal for sound or animation, emitted once per resolved move.
type Event string

const (
	EventMove     Event = "move"
	EventCapture  Event = "capture"
	EventFlip     Event = "flip"
	EventGameOver Event = "gameover"
)

type CastleRookMove struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

// Ply records one executed move and its side effects.
type Ply struct {
	Piece          Piece           `json:"piece"`
	From           Position        `json:"from"`
	To             Position        `json:"to"`
	CapturedPiece  *Piece          `json:"capturedPiece"`
	EnPassant      bool            `json:"enPassant"`
	CastleRookMove *CastleRookMove `json:"castleRookMove"`
	Promotion      Kind            `json:"promotion,omitempty"`
	Flipped        []Position      `json:"flipped"`
}

type Outcome struct {
	Kind   OutcomeKind `json:"kind"`
	Ply    *Ply        `json:"ply,omitempty"`
	Events []Event     `json:"events,omitempty"`
}

// Session owns one game: the board, whose turn it is, the current selection and the
// position history. It is not safe for concurrent use.
type Session struct {
	board         Board
	toMove        Color
	phase         Phase
	selected      Position
	legal         []Position
	lastMove      LastMove
	halfMoveClock int
	gameOver      bool
	winner        Color
	history       []string
	plies         []Ply

	assets      AssetResolver
	enPassant   EnPassantRule
	customBoard bool
}

type Option func(*Session)

func WithAssets(assets AssetResolver) Option {
	return func(s *Session) {
		s.assets = assets
	}
}

func WithEnPassantRule(rule EnPassantRule) Option {
	return func(s *Session) {
		if rule.Valid() {
			s.enPassant = rule
		}
	}
}

// WithPosition starts the session from b with toMove to play instead of the standard setup.
func WithPosition(b Board, toMove Color) Option {
	return func(s *Session) {
		s.board = b
		s.toMove = toMove
		s.customBoard = true
	}
}

func NewSession(opts ...Option) *Session {
	s := &Session{
		toMove:    White,
		phase:     PhaseIdle,
		selected:  NoPosition,
		lastMove:  noLastMove,
		enPassant: EnPassantReference,
		history:   make([]string, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	if !s.customBoard {
		s.board = NewBoard(s.assets)
		return s
	}
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			pc := s.board[r][c]
			if pc.IsEmpty() {
				continue
			}
			pc.Asset = resolveAsset(s.assets, pc.Color, pc.Kind)
			s.board.place(Position{Row: r, Col: c}, pc)
		}
	}
	return s
}

// Click feeds one cell click into the turn state machine.
func (s *Session) Click(p Position) Outcome {
	if s.phase == PhaseTerminal || !p.InBounds() {
		return Outcome{Kind: OutcomeIgnored}
	}
	if s.phase == PhaseSelected {
		if s.isLegal(p) {
			return s.execute(p)
		}
		s.clearSelection()
		if s.selectable(p) {
			s.selectAt(p)
			return Outcome{Kind: OutcomeSelected}
		}
		return Outcome{Kind: OutcomeDeselected}
	}
	if s.selectable(p) {
		s.selectAt(p)
		return Outcome{Kind: OutcomeSelected}
	}
	return Outcome{Kind: OutcomeIgnored}
}

func (s *Session) selectable(p Position) bool {
	pc := s.board.At(p)
	return !pc.IsEmpty() && pc.Color == s.toMove
}

// selectAt enters the selected phase even when the piece has nowhere to go.
func (s *Session) selectAt(p Position) {
	s.selected = p
	s.legal = LegalMoves(&s.board, p, s.lastMove, s.enPassant)
	s.phase = PhaseSelected
}

func (s *Session) clearSelection() {
	s.selected = NoPosition
	s.legal = nil
	if s.phase != PhaseTerminal {
		s.phase = PhaseIdle
	}
}

func (s *Session) isLegal(p Position) bool {
	for _, m := range s.legal {
		if m == p {
			return true
		}
	}
	return false
}

func (s *Session) execute(to Position) Outcome {
	from := s.selected
	piece := s.board.At(from)
	ply := &Ply{Piece: piece, From: from, To: to, Flipped: make([]Position, 0)}
	captured := false

	if piece.Kind == Pawn && s.board.IsEmpty(to) && from.Col != to.Col {
		behind := Position{Row: to.Row - pawnDir(piece.Color), Col: to.Col}
		if victim := s.board.remove(behind); !victim.IsEmpty() {
			ply.CapturedPiece = &victim
			ply.EnPassant = true
			captured = true
		}
	}

	taken := s.board.move(from, to)
	s.lastMove = LastMove{From: from, To: to}
	if !taken.IsEmpty() {
		ply.CapturedPiece = &taken
		captured = true
		if taken.Kind == King {
			s.declareWinner(piece.Color)
		}
	}

	if piece.Kind == King && abs(to.Col-from.Col) == 2 {
		rookFrom := Position{Row: to.Row, Col: Size - 1}
		rookTo := Position{Row: to.Row, Col: to.Col - 1}
		if to.Col < from.Col {
			rookFrom = Position{Row: to.Row, Col: 0}
			rookTo = Position{Row: to.Row, Col: to.Col + 1}
		}
		if rook := s.board.remove(rookFrom); !rook.IsEmpty() {
			rook.HasMoved = true
			s.board.place(rookTo, rook)
			ply.CastleRookMove = &CastleRookMove{From: rookFrom, To: rookTo}
		}
	}

	// Both far ranks are checked regardless of the pawn's direction.
	if piece.Kind == Pawn && (to.Row == 0 || to.Row == Size-1) {
		queen := newPiece(piece.Color, Queen, s.assets)
		queen.HasMoved = true
		s.board.place(to, queen)
		ply.Promotion = Queen
	}

	if captured || piece.Kind == Pawn {
		s.halfMoveClock = 0
	} else {
		s.halfMoveClock++
	}

	flips := ResolveFlips(&s.board, to, s.assets)
	ply.Flipped = append(ply.Flipped, flips.Flipped...)
	if flips.KingFlipped {
		s.declareWinner(piece.Color)
	}

	landed := s.board.At(to)
	landed.HasMoved = true
	s.board.place(to, landed)

	events := []Event{EventMove}
	if captured {
		events[0] = EventCapture
	}
	if flips.FlippedAny && !s.gameOver {
		events = append(events, EventFlip)
	}

	s.plies = append(s.plies, *ply)
	s.clearSelection()
	if s.gameOver {
		s.phase = PhaseTerminal
		events = append(events, EventGameOver)
		return Outcome{Kind: OutcomeMoved, Ply: ply, Events: events}
	}
	s.toMove = s.toMove.Opponent()
	s.history = append(s.history, Serialize(&s.board, s.toMove))
	return Outcome{Kind: OutcomeMoved, Ply: ply, Events: events}
}

// declareWinner keeps the first winner reached in a turn.
func (s *Session) declareWinner(c Color) {
	if s.gameOver {
		return
	}
	s.gameOver = true
	s.winner = c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Board returns a copy of the current board.
func (s *Session) Board() Board { return s.board }

func (s *Session) ToMove() Color { return s.toMove }

func (s *Session) Phase() Phase { return s.phase }

// Selected returns the selected cell, if any.
func (s *Session) Selected() (Position, bool) {
	return s.selected, s.phase == PhaseSelected
}

func (s *Session) LegalMoves() []Position {
	return append([]Position(nil), s.legal...)
}

func (s *Session) LastMove() LastMove { return s.lastMove }

func (s *Session) GameOver() bool { return s.gameOver }

// Winner is empty until the game is over.
func (s *Session) Winner() Color { return s.winner }

func (s *Session) HalfMoveClock() int { return s.halfMoveClock }

func (s *Session) History() []string {
	return append([]string(nil), s.history...)
}

func (s *Session) Plies() []Ply {
	return append([]Ply(nil), s.plies...)
}

func (s *Session) EnPassantRule() EnPassantRule { return s.enPassant }

// View is the read-only render state of a session.
type View struct {
	Board         [][]*Piece `json:"board"`
	ToMove        Color      `json:"toMove"`
	Phase         Phase      `json:"phase"`
	Selected      *Position  `json:"selectedSquare"`
	LegalMoves    []Position `json:"legalMoves"`
	LastMove      *LastMove  `json:"lastMove"`
	GameOver      bool       `json:"gameOver"`
	Winner        Color      `json:"winner,omitempty"`
	HalfMoveClock int        `json:"halfMoveClock"`
	History       []string   `json:"history"`
}

func (s *Session) Snapshot() View {
	v := View{
		Board:         make([][]*Piece, Size),
		ToMove:        s.toMove,
		Phase:         s.phase,
		LegalMoves:    make([]Position, 0, len(s.legal)),
		GameOver:      s.gameOver,
		Winner:        s.winner,
		HalfMoveClock: s.halfMoveClock,
		History:       s.History(),
	}
	for r := 0; r < Size; r++ {
		v.Board[r] = make([]*Piece, Size)
		for c := 0; c < Size; c++ {
			if pc := s.board[r][c]; !pc.IsEmpty() {
				v.Board[r][c] = &pc
			}
		}
	}
	v.LegalMoves = append(v.LegalMoves, s.legal...)
	if sel, ok := s.Selected(); ok {
		v.Selected = &sel
	}
	if s.lastMove != noLastMove {
		lm := s.lastMove
		v.LastMove = &lm
	}
	return v
}
