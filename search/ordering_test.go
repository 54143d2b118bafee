package search

import (
	"testing"

	"github.com/matryer/is"
	"github.com/notnil/chess"

	"github.com/ryanchiang0306/chess/rules"
)

func TestOrderPutsQueenCaptureFirst(t *testing.T) {
	is := is.New(t)
	// White pawn on d4 can take the queen on e5.
	b, err := rules.NewBoardFEN("4k3/8/8/4q3/3P4/8/8/6K1 w - - 0 1")
	is.NoErr(err)

	var orderer MoveOrderer
	moves := orderer.Order(b, b.LegalMoves())
	is.True(len(moves) > 1)
	is.Equal(moves[0].String(), "d4e5")
}

func TestOrderPrefersBiggerVictims(t *testing.T) {
	is := is.New(t)
	// The knight on d5 can take either the rook on e7 or the pawn on b6.
	b, err := rules.NewBoardFEN("4k3/4r3/1p6/3N4/8/8/8/6K1 w - - 0 1")
	is.NoErr(err)

	var orderer MoveOrderer
	moves := orderer.Order(b, b.LegalMoves())
	is.Equal(moves[0].String(), "d5e7")
	is.Equal(moves[1].String(), "d5b6")
}

func TestOrderPutsPromotionsFirst(t *testing.T) {
	is := is.New(t)
	b, err := rules.NewBoardFEN("4k3/P7/8/8/8/8/8/4K3 w - - 0 1")
	is.NoErr(err)

	var orderer MoveOrderer
	moves := orderer.Order(b, b.LegalMoves())
	is.True(moves[0].Promo() != chess.NoPieceType)
}

func TestCapturesFilter(t *testing.T) {
	is := is.New(t)
	var orderer MoveOrderer

	start := rules.NewBoard()
	is.Equal(len(orderer.Captures(start, start.LegalMoves())), 0)

	b, err := rules.NewBoardFEN("4k3/8/8/4q3/3P4/8/8/6K1 w - - 0 1")
	is.NoErr(err)
	captures := orderer.Captures(b, b.LegalMoves())
	is.Equal(len(captures), 1)
	is.Equal(captures[0].String(), "d4e5")
}
