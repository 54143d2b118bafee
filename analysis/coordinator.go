// Package analysis owns the shared board and decides when the search
// engine runs. At most one background analysis is in flight at a
// time; the board is locked for the full duration of one search call,
// never per node.
package analysis

import (
	"context"
	"errors"
	"time"

	"github.com/notnil/chess"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/ryanchiang0306/chess/eval"
	"github.com/ryanchiang0306/chess/gamestore"
	"github.com/ryanchiang0306/chess/rules"
	"github.com/ryanchiang0306/chess/search"
)

// ErrAnalysisInFlight is returned when an analysis is requested while
// one is already running. Requests are rejected, not queued.
var ErrAnalysisInFlight = errors.New("analysis already in progress")

// Result is the outcome of one background analysis. A nil Move with a
// nil Err means the position was terminal and the game is over.
type Result struct {
	Move    *chess.Move
	Score   int
	Depth   int
	Elapsed time.Duration
	Err     error
}

// Coordinator runs searches against the shared board and applies the
// chosen move. It owns the transposition table for the session and
// clears it on game reset.
type Coordinator struct {
	board      *rules.Board
	evaluator  *eval.Evaluator
	table      *search.TranspositionTable
	solver     *search.Solver
	difficulty Difficulty

	// thinkDelay lets the interactive side render the human's move
	// before the engine starts burning CPU. Presentation only.
	thinkDelay time.Duration

	inflight *semaphore.Weighted
	results  chan Result

	store *gamestore.Store
}

// Options configures a Coordinator.
type Options struct {
	Difficulty    Difficulty
	JitterMax     int
	TableCapacity int
	ThinkDelay    time.Duration
	// Store, when non-nil, receives a record of every completed
	// analysis.
	Store *gamestore.Store
}

// NewCoordinator creates a coordinator over a fresh board.
func NewCoordinator(opts Options) (*Coordinator, error) {
	if opts.Difficulty == 0 {
		opts.Difficulty = Medium
	}
	c := &Coordinator{
		board:      rules.NewBoard(),
		evaluator:  eval.New(opts.JitterMax),
		table:      search.NewTranspositionTable(opts.TableCapacity),
		difficulty: opts.Difficulty,
		thinkDelay: opts.ThinkDelay,
		inflight:   semaphore.NewWeighted(1),
		results:    make(chan Result, 1),
		store:      opts.Store,
	}
	c.solver = &search.Solver{}
	if err := c.solver.Init(c.board, c.evaluator, c.table); err != nil {
		return nil, err
	}
	return c, nil
}

// Results delivers one Result per accepted analysis request.
func (c *Coordinator) Results() <-chan Result {
	return c.results
}

// RequestAnalysis starts a background search for the side to move and
// applies the chosen move to the board. If an analysis is already
// running the request is rejected with ErrAnalysisInFlight.
func (c *Coordinator) RequestAnalysis(ctx context.Context) error {
	if !c.inflight.TryAcquire(1) {
		return ErrAnalysisInFlight
	}
	go func() {
		defer c.inflight.Release(1)
		c.results <- c.analyze(ctx)
	}()
	return nil
}

// Analyze runs one search synchronously under the same single-flight
// guarantee as RequestAnalysis.
func (c *Coordinator) Analyze(ctx context.Context) (Result, error) {
	if !c.inflight.TryAcquire(1) {
		return Result{}, ErrAnalysisInFlight
	}
	defer c.inflight.Release(1)
	return c.analyze(ctx), nil
}

func (c *Coordinator) analyze(ctx context.Context) Result {
	if c.thinkDelay > 0 {
		time.Sleep(c.thinkDelay)
	}

	c.board.Lock()
	defer c.board.Unlock()

	depth := c.difficulty.Depth()
	fen := c.board.Key()
	start := time.Now()
	m, score, err := c.solver.FindBestMove(ctx, depth)
	elapsed := time.Since(start)
	if err != nil {
		log.Err(err).Msg("analysis-failed")
		return Result{Depth: depth, Elapsed: elapsed, Err: err}
	}
	if m == nil {
		return Result{Depth: depth, Elapsed: elapsed}
	}
	c.board.Apply(m)
	log.Info().
		Stringer("move", m).
		Int("score", score).
		Int("depth", depth).
		Float64("elapsed-sec", elapsed.Seconds()).
		Msg("analysis-complete")

	if c.store != nil {
		rec := gamestore.AnalysisRecord{
			FEN:      fen,
			Depth:    depth,
			BestMove: m.String(),
			Score:    score,
			Elapsed:  elapsed,
		}
		if err := c.store.Record(ctx, rec); err != nil {
			log.Err(err).Msg("analysis-record-failed")
		}
	}
	return Result{Move: m, Score: score, Depth: depth, Elapsed: elapsed}
}

// PlayMove validates and applies a move for the interactive side.
func (c *Coordinator) PlayMove(m *chess.Move) error {
	c.board.Lock()
	defer c.board.Unlock()
	return c.board.Move(m)
}

// Undo takes back the last engine move together with the human move
// that prompted it, so the human is back on turn.
func (c *Coordinator) Undo() error {
	c.board.Lock()
	defer c.board.Unlock()
	if len(c.board.MoveHistory()) < 2 {
		return rules.ErrEmptyStack
	}
	if err := c.board.Undo(); err != nil {
		return err
	}
	return c.board.Undo()
}

// Reset restores the starting position and clears the transposition
// table.
func (c *Coordinator) Reset() {
	c.board.Lock()
	defer c.board.Unlock()
	c.board.Reset()
	c.table.Reset()
}

// Evaluate scores the current position under the board lock.
func (c *Coordinator) Evaluate() (int, error) {
	c.board.Lock()
	defer c.board.Unlock()
	return c.evaluator.Evaluate(c.board)
}

// Board exposes the shared board. Callers must hold its lock around
// any use that races with background analysis.
func (c *Coordinator) Board() *rules.Board {
	return c.board
}

// SetDifficulty switches the search depth for subsequent analyses.
// The field is guarded by the board lock because the analysis task
// reads it inside its critical section.
func (c *Coordinator) SetDifficulty(d Difficulty) {
	c.board.Lock()
	defer c.board.Unlock()
	c.difficulty = d
}

// Difficulty returns the current level.
func (c *Coordinator) Difficulty() Difficulty {
	c.board.Lock()
	defer c.board.Unlock()
	return c.difficulty
}

// ResultMessage describes a finished game, or returns "" while play
// continues.
func (c *Coordinator) ResultMessage() string {
	c.board.Lock()
	defer c.board.Unlock()
	switch {
	case c.board.IsCheckmate():
		if c.board.SideToMove() == chess.White {
			return "Black wins!"
		}
		return "White wins!"
	case c.board.IsStalemate(), c.board.IsInsufficientMaterial():
		return "Draw!"
	}
	return ""
}
