// Package rules wraps the notnil/chess rules engine behind the small
// capability surface the search core needs: legal-move supply, strict
// push/pop move application, terminal detection, and a canonical
// position key. The search never derives chess legality itself.
package rules

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/notnil/chess"
)

var (
	ErrIllegalMove = errors.New("move is not legal in this position")
	ErrEmptyStack  = errors.New("no move to undo")
)

// Board is a mutable position with a strict stack discipline: every
// Apply (or ApplyNullMove) must be matched by exactly one Undo (or
// UndoNullMove) on every return path. The underlying notnil positions
// are immutable, so Undo restores the exact prior position value and
// the canonical key is preserved bit-for-bit.
//
// Board embeds the coarse lock of the concurrency model: the analysis
// task holds it for the full duration of one search call. Board
// methods themselves do not lock; the search runs single-threaded
// inside the critical section.
type Board struct {
	sync.Mutex

	positions []*chess.Position
	// moves[i] produced positions[i+1]; nil marks a null move.
	moves []*chess.Move
}

// NewBoard returns a board at the standard starting position.
func NewBoard() *Board {
	return &Board{positions: []*chess.Position{chess.StartingPosition()}}
}

// NewBoardFEN returns a board at the position described by fen.
func NewBoardFEN(fen string) (*Board, error) {
	pos := &chess.Position{}
	if err := pos.UnmarshalText([]byte(fen)); err != nil {
		return nil, fmt.Errorf("parsing fen: %w", err)
	}
	return &Board{positions: []*chess.Position{pos}}, nil
}

// Position returns the current position. Callers must treat it as
// read-only; all mutation goes through Apply/Undo.
func (b *Board) Position() *chess.Position {
	return b.positions[len(b.positions)-1]
}

// Reset restores the starting position and discards all history.
func (b *Board) Reset() {
	b.positions = []*chess.Position{chess.StartingPosition()}
	b.moves = nil
}

// LegalMoves returns every legal move for the side to move.
func (b *Board) LegalMoves() []*chess.Move {
	return b.Position().ValidMoves()
}

// LegalMovesFrom returns the legal moves originating on sq.
func (b *Board) LegalMovesFrom(sq chess.Square) []*chess.Move {
	var out []*chess.Move
	for _, m := range b.Position().ValidMoves() {
		if m.S1() == sq {
			out = append(out, m)
		}
	}
	return out
}

// Apply pushes m onto the board. The caller is responsible for m
// coming from LegalMoves; use Move for validated application.
func (b *Board) Apply(m *chess.Move) {
	b.positions = append(b.positions, b.Position().Update(m))
	b.moves = append(b.moves, m)
}

// Move validates m against the legal move list and applies it.
func (b *Board) Move(m *chess.Move) error {
	for _, legal := range b.LegalMoves() {
		if legal.String() == m.String() {
			b.Apply(legal)
			return nil
		}
	}
	return ErrIllegalMove
}

// Undo pops the most recent move (null or real).
func (b *Board) Undo() error {
	if len(b.moves) == 0 {
		return ErrEmptyStack
	}
	b.positions = b.positions[:len(b.positions)-1]
	b.moves = b.moves[:len(b.moves)-1]
	return nil
}

// ApplyNullMove switches the side to move without moving a piece.
// It is an evaluation device only, never a legal game move, and must
// be undone with UndoNullMove before the caller returns.
func (b *Board) ApplyNullMove() error {
	fields := strings.Fields(b.Position().String())
	if len(fields) != 6 {
		return fmt.Errorf("malformed fen %q", b.Position().String())
	}
	if fields[1] == "w" {
		fields[1] = "b"
	} else {
		fields[1] = "w"
	}
	// A null move can never be answered by en passant.
	fields[3] = "-"
	pos := &chess.Position{}
	if err := pos.UnmarshalText([]byte(strings.Join(fields, " "))); err != nil {
		return fmt.Errorf("null move fen: %w", err)
	}
	b.positions = append(b.positions, pos)
	b.moves = append(b.moves, nil)
	return nil
}

// UndoNullMove pops a null move pushed by ApplyNullMove.
func (b *Board) UndoNullMove() error {
	return b.Undo()
}

// SideToMove returns the color to move.
func (b *Board) SideToMove() chess.Color {
	return b.Position().Turn()
}

// Key returns the canonical FEN of the current position. It is a
// total identity over board, turn, castling and en passant state and
// is what the transposition table keys on.
func (b *Board) Key() string {
	return b.Position().String()
}

// PieceAt returns the piece on sq, or chess.NoPiece.
func (b *Board) PieceAt(sq chess.Square) chess.Piece {
	return b.Position().Board().Piece(sq)
}

// HasCastlingRights reports whether color may still castle on either
// side.
func (b *Board) HasCastlingRights(color chess.Color) bool {
	rights := b.Position().CastleRights()
	return rights.CanCastle(color, chess.KingSide) ||
		rights.CanCastle(color, chess.QueenSide)
}

// IsCheckmate reports whether the side to move is checkmated.
func (b *Board) IsCheckmate() bool {
	return b.Position().Status() == chess.Checkmate
}

// IsStalemate reports whether the side to move is stalemated.
func (b *Board) IsStalemate() bool {
	return b.Position().Status() == chess.Stalemate
}

// IsInsufficientMaterial reports whether neither side can ever
// deliver mate: no pawns, rooks or queens remain and at most one
// minor piece is on the board, or the only remaining pieces are
// bishops that all stand on squares of one color.
func (b *Board) IsInsufficientMaterial() bool {
	minors := 0
	bishops := 0
	lightBishops := 0
	for sq, piece := range b.Position().Board().SquareMap() {
		switch piece.Type() {
		case chess.Pawn, chess.Rook, chess.Queen:
			return false
		case chess.Knight:
			minors++
		case chess.Bishop:
			minors++
			bishops++
			if isLightSquare(sq) {
				lightBishops++
			}
		}
	}
	if minors <= 1 {
		return true
	}
	// Any number of same-colored bishops cannot mate.
	return bishops == minors && (lightBishops == 0 || lightBishops == bishops)
}

// IsGameOver reports whether the position is terminal.
func (b *Board) IsGameOver() bool {
	return b.IsCheckmate() || b.IsStalemate() || b.IsInsufficientMaterial()
}

// MoveHistory returns the real moves played so far, oldest first.
// Null moves are never present: they are always undone before a
// caller regains control.
func (b *Board) MoveHistory() []*chess.Move {
	out := make([]*chess.Move, 0, len(b.moves))
	for _, m := range b.moves {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

// Draw renders the current board for terminal display.
func (b *Board) Draw() string {
	return b.Position().Board().Draw()
}

func isLightSquare(sq chess.Square) bool {
	return (int(sq.File())+int(sq.Rank()))%2 == 1
}
