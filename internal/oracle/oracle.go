package oracle

import (
	"errors"
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// The oracle is the UI-side legality capability: it derives legal targets for
// highlighting and validates/applies candidate moves against a FEN snapshot.
// It never talks to the network; the remote authority has the final word.

var (
	ErrBadSquare   = errors.New("invalid square")
	ErrBadPosition = errors.New("invalid position")
	ErrIllegalMove = errors.New("illegal move")
)

// DefaultPromotion is applied when a move requires promotion and the caller
// did not pick a piece. Auto-queen, no prompt; kept as an explicit policy.
const DefaultPromotion = "q"

// MoveResult describes an applied move.
type MoveResult struct {
	FEN         string // position after the move
	UCI         string // move as sent to the server, promotion suffix included
	SAN         string
	IsCapture   bool
	IsPromotion bool
}

func gameFromFEN(fen string) (*nchess.Game, error) {
	opt, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPosition, err)
	}
	return nchess.NewGame(opt), nil
}

func squareFromString(s string) (nchess.Square, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return 0, fmt.Errorf("%w: %q", ErrBadSquare, s)
	}
	return nchess.NewSquare(nchess.File(s[0]-'a'), nchess.Rank(s[1]-'1')), nil
}

// LegalTargets returns the destination squares reachable from origin in the
// given position. An empty slice means the square has no moves (empty square,
// wrong side to move, or pinned piece with no escape).
func LegalTargets(fen, origin string) ([]string, error) {
	from, err := squareFromString(origin)
	if err != nil {
		return nil, err
	}
	game, err := gameFromFEN(fen)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var targets []string
	for _, mv := range game.ValidMoves() {
		if mv.S1() != from {
			continue
		}
		dst := mv.S2().String()
		if _, ok := seen[dst]; ok {
			continue // promotion variants collapse to one target
		}
		seen[dst] = struct{}{}
		targets = append(targets, dst)
	}
	return targets, nil
}

// OwnPiece reports whether origin holds a piece of the given side
// ("white"/"black") in the FEN snapshot.
func OwnPiece(fen, origin, side string) (bool, error) {
	sq, err := squareFromString(origin)
	if err != nil {
		return false, err
	}
	game, err := gameFromFEN(fen)
	if err != nil {
		return false, err
	}
	piece := game.Position().Board().Piece(sq)
	if piece == nchess.NoPiece {
		return false, nil
	}
	want := nchess.White
	if strings.EqualFold(side, "black") {
		want = nchess.Black
	}
	return piece.Color() == want, nil
}

// Apply validates origin→destination against the snapshot and returns the
// resulting position plus move metadata. promotion may be empty; when the
// move requires one, DefaultPromotion is used.
func Apply(fen, origin, destination, promotion string) (*MoveResult, error) {
	from, err := squareFromString(origin)
	if err != nil {
		return nil, err
	}
	to, err := squareFromString(destination)
	if err != nil {
		return nil, err
	}
	game, err := gameFromFEN(fen)
	if err != nil {
		return nil, err
	}

	needsPromo := false
	found := false
	for _, mv := range game.ValidMoves() {
		if mv.S1() != from || mv.S2() != to {
			continue
		}
		found = true
		if mv.Promo() != nchess.NoPieceType {
			needsPromo = true
		}
	}
	if !found {
		return nil, ErrIllegalMove
	}

	uci := strings.ToLower(origin + destination)
	if needsPromo {
		p := strings.ToLower(strings.TrimSpace(promotion))
		if p == "" {
			p = DefaultPromotion
		}
		uci += p
	}

	pos := game.Position()
	mv, err := nchess.UCINotation{}.Decode(pos, uci)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	san := nchess.AlgebraicNotation{}.Encode(pos, mv)
	isCapture := mv.HasTag(nchess.Capture) || mv.HasTag(nchess.EnPassant)
	if err := game.Move(mv, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}

	return &MoveResult{
		FEN:         game.FEN(),
		UCI:         uci,
		SAN:         san,
		IsCapture:   isCapture,
		IsPromotion: needsPromo,
	}, nil
}
