// Package eval scores static chess positions. Scores are centipawns
// from White's point of view: positive favors White. The score is a
// deterministic function of the position; the bounded jitter used to
// de-mechanize play is drawn separately (Jitter) so cached search
// values stay reproducible.
package eval

import (
	"github.com/notnil/chess"
	"lukechampine.com/frand"

	"github.com/ryanchiang0306/chess/rules"
)

const (
	// MateScore is the terminal sentinel for checkmate. It appears
	// only at terminal nodes, never as an intermediate value.
	MateScore = 10000

	mobilityWeight     = 5
	castlingRightsTerm = 60
	doubledPawnPenalty = 15
)

// Evaluator scores positions. The zero value evaluates with no
// jitter.
type Evaluator struct {
	jitterMax int
}

// New returns an evaluator whose Jitter draws are bounded by
// ±jitterMax. A jitterMax of 0 makes play fully deterministic.
func New(jitterMax int) *Evaluator {
	return &Evaluator{jitterMax: jitterMax}
}

// Evaluate returns the deterministic score of the current position.
//
// Terminal positions short-circuit: checkmate is ±MateScore against
// the side to move, stalemate and insufficient material are 0. Other
// positions sum material, piece-square bonuses, weighted mobility,
// the castling-rights term and the doubled-pawn penalty.
func (e *Evaluator) Evaluate(b *rules.Board) (int, error) {
	if b.IsCheckmate() {
		if b.SideToMove() == chess.White {
			return -MateScore, nil
		}
		return MateScore, nil
	}
	if b.IsStalemate() || b.IsInsufficientMaterial() {
		return 0, nil
	}

	endgame := isEndgame(b)

	var whiteMaterial, blackMaterial int
	var whitePosition, blackPosition int
	for sq, piece := range b.Position().Board().SquareMap() {
		value := PieceValue(piece.Type())
		bonus := PositionBonus(piece.Type(), sq, piece.Color(), endgame)
		if piece.Color() == chess.White {
			whiteMaterial += value
			whitePosition += bonus
		} else {
			blackMaterial += value
			blackPosition += bonus
		}
	}

	whiteMobility, blackMobility, err := e.mobility(b)
	if err != nil {
		return 0, err
	}

	castling := 0
	if b.HasCastlingRights(chess.White) {
		castling += castlingRightsTerm
	}
	if b.HasCastlingRights(chess.Black) {
		castling -= castlingRightsTerm
	}

	whiteDoubled, blackDoubled := doubledPawns(b)
	whitePosition -= whiteDoubled * doubledPawnPenalty
	blackPosition -= blackDoubled * doubledPawnPenalty

	score := (whiteMaterial - blackMaterial) +
		(whitePosition - blackPosition) +
		(whiteMobility-blackMobility)*mobilityWeight +
		castling
	return score, nil
}

// Jitter returns a bounded random perturbation. It is applied to root
// move scores only, never to values that reach the transposition
// table.
func (e *Evaluator) Jitter() int {
	if e.jitterMax <= 0 {
		return 0
	}
	return frand.Intn(2*e.jitterMax+1) - e.jitterMax
}

// mobility counts legal moves for both sides. The opponent's count
// requires switching the side to move with a null move, which is
// undone before returning so the push/pop invariant holds.
func (e *Evaluator) mobility(b *rules.Board) (white, black int, err error) {
	own := len(b.LegalMoves())
	if err := b.ApplyNullMove(); err != nil {
		return 0, 0, err
	}
	other := len(b.LegalMoves())
	if err := b.UndoNullMove(); err != nil {
		return 0, 0, err
	}
	if b.SideToMove() == chess.White {
		return own, other, nil
	}
	return other, own, nil
}

// doubledPawns returns, per side, the number of pawns in excess of
// one on any file.
func doubledPawns(b *rules.Board) (white, black int) {
	var whiteFiles, blackFiles [8]int
	for sq, piece := range b.Position().Board().SquareMap() {
		if piece.Type() != chess.Pawn {
			continue
		}
		if piece.Color() == chess.White {
			whiteFiles[sq.File()]++
		} else {
			blackFiles[sq.File()]++
		}
	}
	for f := 0; f < 8; f++ {
		if whiteFiles[f] > 1 {
			white += whiteFiles[f] - 1
		}
		if blackFiles[f] > 1 {
			black += blackFiles[f] - 1
		}
	}
	return white, black
}

// isEndgame reports the endgame condition: both queens are off the
// board, or ten or fewer pieces remain in total.
func isEndgame(b *rules.Board) bool {
	queens := 0
	total := 0
	for _, piece := range b.Position().Board().SquareMap() {
		total++
		if piece.Type() == chess.Queen {
			queens++
		}
	}
	return queens == 0 || total <= 10
}
