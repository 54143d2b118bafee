package search

import (
	"context"
	"testing"

	"github.com/matryer/is"
	"github.com/notnil/chess"

	"github.com/ryanchiang0306/chess/eval"
	"github.com/ryanchiang0306/chess/rules"
)

// Scholar's mate one move away: Qh5xf7 is mate.
const mateInOneFEN = "r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w KQkq - 4 4"

func newSolver(t *testing.T, fen string) (*Solver, *rules.Board) {
	t.Helper()
	is := is.New(t)
	var b *rules.Board
	if fen == "" {
		b = rules.NewBoard()
	} else {
		var err error
		b, err = rules.NewBoardFEN(fen)
		is.NoErr(err)
	}
	s := &Solver{}
	is.NoErr(s.Init(b, eval.New(0), NewTranspositionTable(1<<16)))
	return s, b
}

func TestFindsMateInOne(t *testing.T) {
	is := is.New(t)
	s, b := newSolver(t, mateInOneFEN)

	key := b.Key()
	m, score, err := s.FindBestMove(context.Background(), 2)
	is.NoErr(err)
	is.True(m != nil)
	is.Equal(m.String(), "h5f7")
	is.Equal(score, eval.MateScore)
	// The board is exactly as it was before the search.
	is.Equal(b.Key(), key)

	b.Apply(m)
	is.True(b.IsCheckmate())
}

func TestNoMoveOnTerminalPositions(t *testing.T) {
	is := is.New(t)
	for _, fen := range []string{
		// Fool's mate, White mated.
		"rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3",
		// Stalemate, Black to move.
		"7k/5Q2/6K1/8/8/8/8/8 b - - 0 1",
	} {
		s, _ := newSolver(t, fen)
		m, score, err := s.FindBestMove(context.Background(), 3)
		is.NoErr(err)
		is.Equal(m, (*chess.Move)(nil))
		is.Equal(score, 0)
	}
}

func TestBestMoveIsLegal(t *testing.T) {
	is := is.New(t)
	s, b := newSolver(t, "")

	m, _, err := s.FindBestMove(context.Background(), 1)
	is.NoErr(err)
	is.True(m != nil)

	found := false
	for _, legal := range b.LegalMoves() {
		if legal.String() == m.String() {
			found = true
		}
	}
	is.True(found)
}

func TestExpiredContextStillReturnsAMove(t *testing.T) {
	is := is.New(t)
	s, b := newSolver(t, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	key := b.Key()
	m, _, err := s.FindBestMove(ctx, 4)
	is.NoErr(err)
	is.True(m != nil)
	is.Equal(b.Key(), key)
}

// naiveMinimax is an exhaustive reference search with no pruning,
// caching, ordering or quiescence.
func naiveMinimax(b *rules.Board, ev *eval.Evaluator, depth int, maximizing bool) (int, error) {
	if depth == 0 || b.IsGameOver() {
		return ev.Evaluate(b)
	}
	best := -HugeScore
	if !maximizing {
		best = HugeScore
	}
	for _, m := range b.LegalMoves() {
		b.Apply(m)
		value, err := naiveMinimax(b, ev, depth-1, !maximizing)
		b.Undo()
		if err != nil {
			return 0, err
		}
		if maximizing {
			best = max(best, value)
		} else {
			best = min(best, value)
		}
	}
	return best, nil
}

func TestPruningPreservesMinimaxValue(t *testing.T) {
	is := is.New(t)
	for _, fen := range []string{
		"r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3",
		"4k3/8/8/4q3/3P4/8/8/6K1 w - - 0 1",
	} {
		s, b := newSolver(t, fen)
		ev := eval.New(0)

		want, err := naiveMinimax(b, ev, 2, b.SideToMove() == chess.White)
		is.NoErr(err)

		got, err := s.minimax(context.Background(), 2, -HugeScore, HugeScore,
			b.SideToMove() == chess.White, false)
		is.NoErr(err)
		is.Equal(got, want)
	}
}
