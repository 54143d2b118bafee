// Package search implements the move-search core: minimax with
// alpha-beta pruning, a quiescence extension at the horizon, MVV-LVA
// move ordering and a transposition table. The rules engine is
// consumed through rules.Board; the search only ever applies moves it
// obtained from the legal move supply.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/notnil/chess"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/ryanchiang0306/chess/eval"
	"github.com/ryanchiang0306/chess/rules"
)

// HugeScore bounds the alpha-beta window. It must dominate every
// reachable evaluation, including the mate sentinels.
const HugeScore = 1 << 20

// DefaultQuiescenceDepth is the capture-only extension budget,
// independent of the main search depth.
const DefaultQuiescenceDepth = 3

// Solver searches a board for the best move. It borrows the board for
// the duration of one top-level call; the caller holds the board lock
// for that whole call.
type Solver struct {
	board     *rules.Board
	evaluator *eval.Evaluator
	table     *TranspositionTable
	orderer   MoveOrderer

	quiescenceDepth int

	nodes  uint64
	qnodes uint64
}

type solution struct {
	m     *chess.Move
	score int
}

func (s *solution) String() string {
	return fmt.Sprintf("%s=%d", s.m, s.score)
}

// Init wires the solver to a board, an evaluator and a transposition
// table.
func (s *Solver) Init(b *rules.Board, ev *eval.Evaluator, t *TranspositionTable) error {
	if b == nil || ev == nil || t == nil {
		return errors.New("solver requires a board, an evaluator and a table")
	}
	s.board = b
	s.evaluator = ev
	s.table = t
	s.quiescenceDepth = DefaultQuiescenceDepth
	return nil
}

// FindBestMove searches to the requested depth and returns the best
// move for the side to move, with its minimax score from White's
// point of view. It returns a nil move when the position is terminal
// or no legal move exists; the caller declares game over.
//
// If ctx expires mid-search the best move found so far is returned.
// The board is unchanged when FindBestMove returns: every trial move
// is undone on every path.
func (s *Solver) FindBestMove(ctx context.Context, depth int) (*chess.Move, int, error) {
	if s.board.IsGameOver() {
		return nil, 0, nil
	}
	moves := s.board.LegalMoves()
	if len(moves) == 0 {
		return nil, 0, nil
	}
	moves = s.orderer.Order(s.board, moves)

	s.nodes = 0
	s.qnodes = 0
	start := time.Now()
	stm := s.board.SideToMove()

	α := -HugeScore
	β := HugeScore
	var best *chess.Move
	bestValue := -HugeScore
	if stm == chess.Black {
		bestValue = HugeScore
	}
	sols := make([]*solution, 0, len(moves))
	deadlined := false

	for _, m := range moves {
		s.board.Apply(m)
		// The side to move flipped, so the child takes the opposite
		// role.
		value, err := s.minimax(ctx, depth-1, α, β, stm == chess.Black, true)
		if uerr := s.board.Undo(); uerr != nil {
			return nil, 0, uerr
		}
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				deadlined = true
				break
			}
			return nil, 0, err
		}
		// Presentation-only perturbation: bounded, applied after any
		// cache lookups, never stored.
		value += s.evaluator.Jitter()
		sols = append(sols, &solution{m: m, score: value})

		if stm == chess.White {
			if value > bestValue {
				bestValue = value
				best = m
			}
			α = max(α, value)
		} else {
			if value < bestValue {
				bestValue = value
				best = m
			}
			β = min(β, value)
		}
		if α >= β {
			break
		}
	}

	if best == nil {
		// Tie and ordering edge cases: fall back to the first ordered
		// move, which is still guaranteed legal.
		best = moves[0]
	}
	log.Debug().
		Int("depth", depth).
		Uint64("nodes", s.nodes).
		Uint64("qnodes", s.qnodes).
		Int("table-entries", s.table.Len()).
		Bool("deadlined", deadlined).
		Strs("root-scores", lo.Map(sols, func(sol *solution, _ int) string { return sol.String() })).
		Float64("elapsed-sec", time.Since(start).Seconds()).
		Msg("search-complete")
	return best, bestValue, nil
}

// minimax explores the move tree depth plies deep inside an
// alpha-beta window. Scores are from White's point of view; the
// maximizing flag alternates each ply. With quiescent set, leaves
// that are not terminal are extended by a capture-only search instead
// of being evaluated statically.
func (s *Solver) minimax(ctx context.Context, depth, α, β int, maximizing, quiescent bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.nodes++

	key := s.board.Key()
	if score, ok := s.table.Lookup(key, depth); ok {
		return score, nil
	}

	if depth == 0 || s.board.IsGameOver() {
		if quiescent && !s.board.IsGameOver() {
			return s.quiescenceRoot(α, β)
		}
		return s.evaluator.Evaluate(s.board)
	}

	moves := s.orderer.Order(s.board, s.board.LegalMoves())

	var best int
	if maximizing {
		best = -HugeScore
		for _, m := range moves {
			s.board.Apply(m)
			value, err := s.minimax(ctx, depth-1, α, β, false, quiescent)
			if uerr := s.board.Undo(); uerr != nil {
				return 0, uerr
			}
			if err != nil {
				return value, err
			}
			best = max(best, value)
			α = max(α, value)
			if β <= α {
				break
			}
		}
	} else {
		best = HugeScore
		for _, m := range moves {
			s.board.Apply(m)
			value, err := s.minimax(ctx, depth-1, α, β, true, quiescent)
			if uerr := s.board.Undo(); uerr != nil {
				return 0, uerr
			}
			if err != nil {
				return value, err
			}
			best = min(best, value)
			β = min(β, value)
			if β <= α {
				break
			}
		}
	}

	s.table.Store(key, depth, best)
	return best, nil
}

// quiescenceRoot adapts the white-POV alpha-beta window to the
// side-to-move-relative negamax window quiescence runs in.
func (s *Solver) quiescenceRoot(α, β int) (int, error) {
	if s.board.SideToMove() == chess.White {
		return s.quiescence(α, β, s.quiescenceDepth)
	}
	value, err := s.quiescence(-β, -α, s.quiescenceDepth)
	return -value, err
}

// quiescence is a capture-only negamax extension that keeps searching
// past the horizon until the position is quiet, its own depth budget
// runs out, or no captures remain. Scores are relative to the side to
// move. It never touches the transposition table.
func (s *Solver) quiescence(α, β, depth int) (int, error) {
	s.qnodes++

	standPat, err := s.evaluateRelative()
	if err != nil {
		return 0, err
	}
	if standPat >= β {
		return β, nil
	}
	if standPat > α {
		α = standPat
	}
	if depth == 0 {
		return standPat, nil
	}

	captures := s.orderer.Captures(s.board, s.board.LegalMoves())
	captures = s.orderer.Order(s.board, captures)
	for _, m := range captures {
		s.board.Apply(m)
		value, err := s.quiescence(-β, -α, depth-1)
		if uerr := s.board.Undo(); uerr != nil {
			return 0, uerr
		}
		if err != nil {
			return 0, err
		}
		value = -value
		if value >= β {
			return β, nil
		}
		if value > α {
			α = value
		}
	}
	return α, nil
}

func (s *Solver) evaluateRelative() (int, error) {
	score, err := s.evaluator.Evaluate(s.board)
	if err != nil {
		return 0, err
	}
	if s.board.SideToMove() == chess.Black {
		score = -score
	}
	return score, nil
}
