// Package shell is the interactive front end: a readline loop that
// plays the human against the engine, one command per line.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/notnil/chess"
	"github.com/rs/zerolog/log"

	"github.com/ryanchiang0306/chess/analysis"
	"github.com/ryanchiang0306/chess/config"
	"github.com/ryanchiang0306/chess/gamestore"
)

type ShellController struct {
	l *readline.Instance

	coordinator *analysis.Coordinator
	store       *gamestore.Store
	cfg         *config.Config
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func usage(w io.Writer) {
	io.WriteString(w, "commands:\n")
	io.WriteString(w, "new - start a new game\n")
	io.WriteString(w, "show - draw the board\n")
	io.WriteString(w, "move <m> - play a move (e2e4 or Nf3); the engine replies\n")
	io.WriteString(w, "go - ask the engine to move for the side to move\n")
	io.WriteString(w, "moves <square> - list legal moves from a square\n")
	io.WriteString(w, "eval - static evaluation of the position\n")
	io.WriteString(w, "undo - take back the last engine and human moves\n")
	io.WriteString(w, "difficulty [easy|medium|hard|master] - show or set the level\n")
	io.WriteString(w, "log [n] - show the n most recent analyses (default 10)\n")
	io.WriteString(w, "exit - quit\n")
}

// NewShellController builds the readline loop around a coordinator.
func NewShellController(coordinator *analysis.Coordinator, store *gamestore.Store,
	cfg *config.Config) *ShellController {

	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mchess>\033[0m ",
		HistoryFile:     "/tmp/readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	return &ShellController{l: l, coordinator: coordinator, store: store, cfg: cfg}
}

// Loop reads and executes commands until exit or EOF.
func (sc *ShellController) Loop() {
	defer sc.l.Close()
	sc.showBoard()
	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			continue
		} else if err == io.EOF {
			break
		}
		fields, err := shellquote.Split(line)
		if err != nil {
			showMessage("error: "+err.Error(), sc.l.Stderr())
			continue
		}
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "exit" || fields[0] == "quit" {
			break
		}
		if err := sc.execute(fields[0], fields[1:]); err != nil {
			showMessage("error: "+err.Error(), sc.l.Stderr())
		}
	}
	log.Info().Msg("exiting shell")
}

func (sc *ShellController) execute(cmd string, args []string) error {
	switch cmd {
	case "new":
		sc.coordinator.Reset()
		sc.showBoard()
		return nil
	case "show":
		sc.showBoard()
		return nil
	case "move":
		if len(args) != 1 {
			return errors.New("move takes exactly one argument")
		}
		return sc.humanMove(args[0])
	case "go":
		return sc.engineMove()
	case "moves":
		if len(args) != 1 {
			return errors.New("moves takes a square, e.g. moves e2")
		}
		return sc.listMoves(args[0])
	case "eval":
		score, err := sc.coordinator.Evaluate()
		if err != nil {
			return err
		}
		showMessage(fmt.Sprintf("evaluation: %+d", score), sc.l.Stderr())
		return nil
	case "undo":
		if err := sc.coordinator.Undo(); err != nil {
			return err
		}
		sc.showBoard()
		return nil
	case "difficulty":
		return sc.difficulty(args)
	case "log":
		return sc.showLog(args)
	case "help":
		usage(sc.l.Stderr())
		return nil
	}
	return fmt.Errorf("unknown command %q; type help", cmd)
}

func (sc *ShellController) showBoard() {
	board := sc.coordinator.Board()
	board.Lock()
	drawn := board.Draw()
	turn := board.SideToMove()
	board.Unlock()
	showMessage(drawn, sc.l.Stderr())
	if msg := sc.coordinator.ResultMessage(); msg != "" {
		showMessage(msg, sc.l.Stderr())
		return
	}
	showMessage(fmt.Sprintf("%s to move", turn.Name()), sc.l.Stderr())
}

func (sc *ShellController) humanMove(text string) error {
	m, err := sc.decodeMove(text)
	if err != nil {
		return err
	}
	if err := sc.coordinator.PlayMove(m); err != nil {
		return err
	}
	if msg := sc.coordinator.ResultMessage(); msg != "" {
		sc.showBoard()
		return nil
	}
	return sc.engineMove()
}

func (sc *ShellController) engineMove() error {
	ctx := context.Background()
	var cancel context.CancelFunc
	if sc.cfg.SearchTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, sc.cfg.SearchTimeout)
		defer cancel()
	}
	if err := sc.coordinator.RequestAnalysis(ctx); err != nil {
		return err
	}
	showMessage("thinking...", sc.l.Stderr())
	result := <-sc.coordinator.Results()
	if result.Err != nil {
		return result.Err
	}
	if result.Move == nil {
		sc.showBoard()
		return nil
	}
	showMessage(fmt.Sprintf("engine plays %s (score %+d, %.2fs)",
		result.Move, result.Score, result.Elapsed.Seconds()), sc.l.Stderr())
	sc.showBoard()
	return nil
}

// decodeMove accepts coordinate form (e2e4, a7a8q) or standard
// algebraic notation.
func (sc *ShellController) decodeMove(text string) (*chess.Move, error) {
	board := sc.coordinator.Board()
	board.Lock()
	defer board.Unlock()
	for _, m := range board.LegalMoves() {
		if m.String() == text {
			return m, nil
		}
	}
	m, err := chess.AlgebraicNotation{}.Decode(board.Position(), text)
	if err != nil {
		return nil, fmt.Errorf("cannot parse move %q", text)
	}
	return m, nil
}

func (sc *ShellController) listMoves(square string) error {
	sq, err := parseSquare(square)
	if err != nil {
		return err
	}
	board := sc.coordinator.Board()
	board.Lock()
	moves := board.LegalMovesFrom(sq)
	board.Unlock()
	if len(moves) == 0 {
		showMessage("no legal moves from "+square, sc.l.Stderr())
		return nil
	}
	for _, m := range moves {
		showMessage(m.String(), sc.l.Stderr())
	}
	return nil
}

func (sc *ShellController) difficulty(args []string) error {
	if len(args) == 0 {
		showMessage("difficulty: "+sc.coordinator.Difficulty().String(), sc.l.Stderr())
		return nil
	}
	d, err := analysis.ParseDifficulty(args[0])
	if err != nil {
		return err
	}
	sc.coordinator.SetDifficulty(d)
	showMessage(fmt.Sprintf("difficulty set to %s (depth %d)", d, d.Depth()), sc.l.Stderr())
	return nil
}

func (sc *ShellController) showLog(args []string) error {
	if sc.store == nil {
		return errors.New("no analysis store configured")
	}
	limit := 10
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return errors.New("log takes a positive count")
		}
		limit = n
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	records, err := sc.store.Recent(ctx, limit)
	if err != nil {
		return err
	}
	for _, rec := range records {
		showMessage(fmt.Sprintf("%s depth=%d score=%+d %.2fs  %s",
			rec.BestMove, rec.Depth, rec.Score, rec.Elapsed.Seconds(), rec.FEN),
			sc.l.Stderr())
	}
	return nil
}

func parseSquare(s string) (chess.Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return 0, fmt.Errorf("bad square %q", s)
	}
	return chess.Square(int(s[0]-'a') + int(s[1]-'1')*8), nil
}
