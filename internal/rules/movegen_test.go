package rules

import "testing"

func TestLegalMovesBaseFilter(t *testing.T) {
	start := NewBoard(nil)
	boards := map[string]Board{
		"start": start,
		"open": mustBoard(t,
			"r000k00r",
			"p0p00p0p",
			"0n00b000",
			"000qP000",
			"00B0Np00",
			"0000000Q",
			"PP000PPP",
			"R000K00R",
		),
		"crowded": mustBoard(t,
			"rnbqkbnr",
			"pPpPpPpP",
			"PpPpPpPp",
			"00NnBb00",
			"00RrQq00",
			"pPpPpPpP",
			"PpPpPpPp",
			"RNBQKBNR",
		),
	}
	for name, b := range boards {
		b := b
		t.Run(name, func(t *testing.T) {
			for r := 0; r < Size; r++ {
				for c := 0; c < Size; c++ {
					pc := b[r][c]
					if pc.IsEmpty() {
						continue
					}
					for _, to := range LegalMoves(&b, pos(r, c), noLastMove, EnPassantReference) {
						if !to.InBounds() {
							t.Fatalf("%s at %v: out of bounds destination %v", pc.Kind, pos(r, c), to)
						}
						if target := b.At(to); !target.IsEmpty() && target.Color == pc.Color {
							t.Fatalf("%s at %v: destination %v holds own piece", pc.Kind, pos(r, c), to)
						}
					}
				}
			}
		})
	}
}

func TestLegalMovesDoNotMutateBoard(t *testing.T) {
	b := NewBoard(nil)
	before := b
	for c := 0; c < Size; c++ {
		LegalMoves(&b, pos(6, c), noLastMove, EnPassantStrict)
		LegalMoves(&b, pos(7, c), noLastMove, EnPassantStrict)
	}
	if b != before {
		t.Fatalf("move generation changed the board")
	}
}

func TestLegalMovesEmptyCell(t *testing.T) {
	b := NewBoard(nil)
	if moves := LegalMoves(&b, pos(4, 4), noLastMove, EnPassantReference); moves != nil {
		t.Fatalf("expected nil for empty cell, got %v", moves)
	}
}

func TestKnightFromStart(t *testing.T) {
	b := NewBoard(nil)
	assertMoves(t, LegalMoves(&b, pos(7, 1), noLastMove, EnPassantReference), pos(5, 0), pos(5, 2))
	assertMoves(t, LegalMoves(&b, pos(0, 6), noLastMove, EnPassantReference), pos(2, 5), pos(2, 7))
}

func TestSlidersStopAtFirstOccupant(t *testing.T) {
	b := mustBoard(t,
		emptyRow,
		emptyRow,
		"0000P000",
		emptyRow,
		"0000R0n0",
		emptyRow,
		emptyRow,
		emptyRow,
	)
	moves := LegalMoves(&b, pos(4, 4), noLastMove, EnPassantReference)
	assertMoves(t, moves,
		pos(3, 4),
		pos(5, 4), pos(6, 4), pos(7, 4),
		pos(4, 3), pos(4, 2), pos(4, 1), pos(4, 0),
		pos(4, 5), pos(4, 6),
	)
	if contains(moves, pos(4, 7)) || contains(moves, pos(1, 4)) {
		t.Fatalf("rook jumped an occupied cell: %v", moves)
	}
}

func TestBishopAndQueenRays(t *testing.T) {
	b := mustBoard(t,
		emptyRow,
		"0p000000",
		emptyRow,
		"000B0000",
		"00P0p000",
		emptyRow,
		emptyRow,
		"0000000Q",
	)
	assertMoves(t, LegalMoves(&b, pos(3, 3), noLastMove, EnPassantReference),
		pos(2, 2), pos(1, 1),
		pos(2, 4), pos(1, 5), pos(0, 6),
		pos(4, 4),
	)
	queen := LegalMoves(&b, pos(7, 7), noLastMove, EnPassantReference)
	assertMoves(t, queen,
		pos(6, 6), pos(5, 5), pos(4, 4),
		pos(6, 7), pos(5, 7), pos(4, 7), pos(3, 7), pos(2, 7), pos(1, 7), pos(0, 7),
		pos(7, 6), pos(7, 5), pos(7, 4), pos(7, 3), pos(7, 2), pos(7, 1), pos(7, 0),
	)
}

func TestPawnMoves(t *testing.T) {
	tests := []struct {
		name string
		rows []string
		from Position
		want []Position
	}{
		{
			name: "white double step from start",
			rows: []string{emptyRow, emptyRow, emptyRow, emptyRow, emptyRow, emptyRow, "0000P000", emptyRow},
			from: pos(6, 4),
			want: []Position{pos(5, 4), pos(4, 4)},
		},
		{
			name: "black double step from start",
			rows: []string{emptyRow, "000p0000", emptyRow, emptyRow, emptyRow, emptyRow, emptyRow, emptyRow},
			from: pos(1, 3),
			want: []Position{pos(2, 3), pos(3, 3)},
		},
		{
			name: "double step needs the far cell empty",
			rows: []string{emptyRow, emptyRow, emptyRow, emptyRow, "0000n000", emptyRow, "0000P000", emptyRow},
			from: pos(6, 4),
			want: []Position{pos(5, 4)},
		},
		{
			name: "blocked pawn has no forward moves",
			rows: []string{emptyRow, emptyRow, emptyRow, emptyRow, emptyRow, "0000N000", "0000P000", emptyRow},
			from: pos(6, 4),
			want: nil,
		},
		{
			name: "diagonal captures only opposing pieces",
			rows: []string{emptyRow, emptyRow, emptyRow, "000b0N00", "0000P000", emptyRow, emptyRow, emptyRow},
			from: pos(4, 4),
			want: []Position{pos(3, 4), pos(3, 3)},
		},
		{
			name: "no double step away from the start rank",
			rows: []string{emptyRow, emptyRow, emptyRow, emptyRow, emptyRow, "0000P000", emptyRow, emptyRow},
			from: pos(5, 4),
			want: []Position{pos(4, 4)},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			b := mustBoard(t, tt.rows...)
			assertMoves(t, LegalMoves(&b, tt.from, noLastMove, EnPassantReference), tt.want...)
		})
	}
}

func TestCastlingOffers(t *testing.T) {
	rows := []string{"0000k000", emptyRow, emptyRow, emptyRow, emptyRow, emptyRow, emptyRow, "R000K00R"}

	t.Run("both sides", func(t *testing.T) {
		b := mustBoard(t, rows...)
		moves := LegalMoves(&b, pos(7, 4), noLastMove, EnPassantReference)
		if !contains(moves, pos(7, 6)) || !contains(moves, pos(7, 2)) {
			t.Fatalf("expected both castles, got %v", moves)
		}
	})
	t.Run("moved king", func(t *testing.T) {
		b := mustBoard(t, rows...)
		b[7][4].HasMoved = true
		moves := LegalMoves(&b, pos(7, 4), noLastMove, EnPassantReference)
		if contains(moves, pos(7, 6)) || contains(moves, pos(7, 2)) {
			t.Fatalf("moved king offered castling: %v", moves)
		}
	})
	t.Run("moved rook", func(t *testing.T) {
		b := mustBoard(t, rows...)
		b[7][7].HasMoved = true
		moves := LegalMoves(&b, pos(7, 4), noLastMove, EnPassantReference)
		if contains(moves, pos(7, 6)) {
			t.Fatalf("castled with moved rook: %v", moves)
		}
		if !contains(moves, pos(7, 2)) {
			t.Fatalf("queen side should still be offered: %v", moves)
		}
	})
	t.Run("blocked path", func(t *testing.T) {
		b := mustBoard(t, "0000k000", emptyRow, emptyRow, emptyRow, emptyRow, emptyRow, emptyRow, "RN00K0NR")
		moves := LegalMoves(&b, pos(7, 4), noLastMove, EnPassantReference)
		if contains(moves, pos(7, 6)) || contains(moves, pos(7, 2)) {
			t.Fatalf("castled through pieces: %v", moves)
		}
	})
	t.Run("corner is not a rook", func(t *testing.T) {
		b := mustBoard(t, "0000k000", emptyRow, emptyRow, emptyRow, emptyRow, emptyRow, emptyRow, "B000K00N")
		moves := LegalMoves(&b, pos(7, 4), noLastMove, EnPassantReference)
		if contains(moves, pos(7, 6)) || contains(moves, pos(7, 2)) {
			t.Fatalf("castled without a rook: %v", moves)
		}
	})
}

func TestEnPassantInterpretations(t *testing.T) {
	// Black has just played (1,3)->(3,3), landing beside the white pawn on (3,4).
	rows := []string{"0000k000", emptyRow, emptyRow, "000pP000", emptyRow, emptyRow, emptyRow, "0000K000"}
	last := LastMove{From: pos(1, 3), To: pos(3, 3)}

	t.Run("strict", func(t *testing.T) {
		b := mustBoard(t, rows...)
		assertMoves(t, LegalMoves(&b, pos(3, 4), last, EnPassantStrict), pos(2, 4), pos(2, 3))
	})
	t.Run("strict needs a two square advance", func(t *testing.T) {
		b := mustBoard(t, rows...)
		single := LastMove{From: pos(2, 3), To: pos(3, 3)}
		assertMoves(t, LegalMoves(&b, pos(3, 4), single, EnPassantStrict), pos(2, 4))
	})
	t.Run("strict needs a pawn", func(t *testing.T) {
		b := mustBoard(t, "0000k000", emptyRow, emptyRow, "000nP000", emptyRow, emptyRow, emptyRow, "0000K000")
		assertMoves(t, LegalMoves(&b, pos(3, 4), last, EnPassantStrict), pos(2, 4))
	})
	t.Run("reference ignores the advance", func(t *testing.T) {
		b := mustBoard(t, rows...)
		assertMoves(t, LegalMoves(&b, pos(3, 4), last, EnPassantReference), pos(2, 4))
	})
	t.Run("reference matches the previous origin", func(t *testing.T) {
		b := mustBoard(t, "0000k000", emptyRow, "000p0000", "0000P000", emptyRow, emptyRow, emptyRow, "0000K000")
		origin := LastMove{From: pos(2, 3), To: pos(0, 4)}
		assertMoves(t, LegalMoves(&b, pos(3, 4), origin, EnPassantReference), pos(2, 4), pos(2, 3))
	})
}
