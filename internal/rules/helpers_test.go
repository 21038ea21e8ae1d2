package rules

import (
	"sort"
	"strings"
	"testing"
)

const emptyRow = "00000000"

// mustBoard builds a board from eight rows in the position encoding.
func mustBoard(t *testing.T, rows ...string) Board {
	t.Helper()
	if len(rows) != Size {
		t.Fatalf("need %d rows, got %d", Size, len(rows))
	}
	b, _, err := Deserialize(strings.Join(rows, "") + "1")
	if err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return b
}

func pos(r, c int) Position {
	return Position{Row: r, Col: c}
}

func sorted(ps []Position) []Position {
	out := append([]Position(nil), ps...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

func assertMoves(t *testing.T, got []Position, want ...Position) {
	t.Helper()
	g, w := sorted(got), sorted(want)
	if len(g) != len(w) {
		t.Fatalf("expected moves %v, got %v", w, g)
	}
	for i := range g {
		if g[i] != w[i] {
			t.Fatalf("expected moves %v, got %v", w, g)
		}
	}
}

func contains(ps []Position, p Position) bool {
	for _, q := range ps {
		if q == p {
			return true
		}
	}
	return false
}

// play clicks through from/to pairs and fails on anything but a completed move.
func play(t *testing.T, s *Session, moves ...[2]Position) {
	t.Helper()
	for _, m := range moves {
		if out := s.Click(m[0]); out.Kind != OutcomeSelected {
			t.Fatalf("select %v: got %s", m[0], out.Kind)
		}
		if out := s.Click(m[1]); out.Kind != OutcomeMoved {
			t.Fatalf("move %v->%v: got %s (legal %v)", m[0], m[1], out.Kind, s.LegalMoves())
		}
	}
}

func mv(fr, fc, tr, tc int) [2]Position {
	return [2]Position{pos(fr, fc), pos(tr, tc)}
}
