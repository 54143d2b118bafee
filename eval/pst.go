package eval

import "github.com/notnil/chess"

// Piece values in centipawns.
const (
	PawnValue   = 100
	KnightValue = 320
	BishopValue = 330
	RookValue   = 500
	QueenValue  = 900
	KingValue   = 20000
)

// PieceValue returns the material value for a piece type.
func PieceValue(pt chess.PieceType) int {
	switch pt {
	case chess.Pawn:
		return PawnValue
	case chess.Knight:
		return KnightValue
	case chess.Bishop:
		return BishopValue
	case chess.Rook:
		return RookValue
	case chess.Queen:
		return QueenValue
	case chess.King:
		return KingValue
	}
	return 0
}

// Piece-square tables, authored from White's viewpoint and indexed by
// square (A1 = 0). Black lookups mirror the square rank-wise.
var pawnTable = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	50, 50, 50, 50, 50, 50, 50, 50,
	10, 10, 20, 30, 30, 20, 10, 10,
	5, 5, 10, 25, 25, 10, 5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, -5, -10, 0, 0, -10, -5, 5,
	5, 10, 10, -20, -20, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightTable = [64]int{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

var bishopTable = [64]int{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 5, 5, 5, 5, 5, 5, -10,
	-10, 0, 5, 0, 0, 5, 0, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

var rookTable = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, 10, 10, 10, 10, 5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	0, 0, 0, 5, 5, 0, 0, 0,
}

var queenTable = [64]int{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-5, 0, 5, 5, 5, 5, 0, -5,
	0, 0, 5, 5, 5, 5, 0, -5,
	-10, 5, 5, 5, 5, 5, 0, -10,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

// King safety table for the opening and middlegame: hide behind the
// pawn shield, reward likely castled squares.
var kingMidgameTable = [64]int{
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	20, 20, 0, 0, 0, 0, 20, 20,
	20, 30, 10, 0, 0, 10, 30, 20,
}

// King centralization table for the endgame.
var kingEndgameTable = [64]int{
	-50, -40, -30, -20, -20, -30, -40, -50,
	-30, -20, -10, 0, 0, -10, -20, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -30, 0, 0, 0, 0, -30, -30,
	-50, -30, -30, -30, -30, -30, -30, -50,
}

// Mirror flips a square rank-wise, translating Black squares into the
// White viewpoint the tables are authored from.
func Mirror(sq chess.Square) chess.Square {
	return sq ^ 56
}

// PositionBonus looks up the positional value of pt standing on sq.
// The endgame flag selects the king centralization table; all other
// piece types use a single table for the whole game.
func PositionBonus(pt chess.PieceType, sq chess.Square, color chess.Color, endgame bool) int {
	if color == chess.Black {
		sq = Mirror(sq)
	}
	switch pt {
	case chess.Pawn:
		return pawnTable[sq]
	case chess.Knight:
		return knightTable[sq]
	case chess.Bishop:
		return bishopTable[sq]
	case chess.Rook:
		return rookTable[sq]
	case chess.Queen:
		return queenTable[sq]
	case chess.King:
		if endgame {
			return kingEndgameTable[sq]
		}
		return kingMidgameTable[sq]
	}
	return 0
}
