package search

import (
	"sort"

	"github.com/notnil/chess"

	"github.com/ryanchiang0306/chess/eval"
	"github.com/ryanchiang0306/chess/rules"
)

const promotionBonus = 900

// MoveOrderer orders candidate moves so that the ones most likely to
// cause an early alpha-beta cutoff come first. Ordering never affects
// the search result, only the amount of work pruned.
type MoveOrderer struct{}

// Order sorts moves in place by descending estimate and returns the
// slice. Captures are scored MVV-LVA (ten times the victim's value
// minus the attacker's), promotions get a flat bonus, and every move
// adds the destination-square table value for the moving piece.
func (MoveOrderer) Order(b *rules.Board, moves []*chess.Move) []*chess.Move {
	estimates := make([]int, len(moves))
	for i, m := range moves {
		estimates[i] = estimate(b, m)
	}
	sorter := &moveSorter{estimates: estimates, moves: moves}
	sort.Sort(sorter)
	return sorter.moves
}

// Captures filters moves down to the capturing subset explored by
// quiescence search.
func (MoveOrderer) Captures(b *rules.Board, moves []*chess.Move) []*chess.Move {
	var out []*chess.Move
	for _, m := range moves {
		if isCapture(b, m) {
			out = append(out, m)
		}
	}
	return out
}

func isCapture(b *rules.Board, m *chess.Move) bool {
	return m.HasTag(chess.Capture) || m.HasTag(chess.EnPassant) ||
		b.PieceAt(m.S2()) != chess.NoPiece
}

func estimate(b *rules.Board, m *chess.Move) int {
	score := 0
	if isCapture(b, m) {
		// The en passant victim stands beside the destination, but it
		// is always a pawn.
		victim := eval.PawnValue
		if piece := b.PieceAt(m.S2()); piece != chess.NoPiece {
			victim = eval.PieceValue(piece.Type())
		}
		attacker := b.PieceAt(m.S1())
		score = 10*victim - eval.PieceValue(attacker.Type())
	}
	if m.Promo() != chess.NoPieceType {
		score += promotionBonus
	}
	if mover := b.PieceAt(m.S1()); mover != chess.NoPiece {
		score += eval.PositionBonus(mover.Type(), m.S2(), mover.Color(), false)
	}
	return score
}

type moveSorter struct {
	estimates []int
	moves     []*chess.Move
}

func (s moveSorter) Len() int { return len(s.moves) }
func (s moveSorter) Swap(i, j int) {
	s.estimates[i], s.estimates[j] = s.estimates[j], s.estimates[i]
	s.moves[i], s.moves[j] = s.moves[j], s.moves[i]
}
func (s moveSorter) Less(i, j int) bool {
	return s.estimates[j] < s.estimates[i]
}
