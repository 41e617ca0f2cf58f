package oracle

import (
	"errors"
	"testing"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// White pawn on e7, promotion one push away.
const promoFEN = "k7/4P3/8/8/8/8/8/3K4 w - - 0 1"

func TestLegalTargetsPawn(t *testing.T) {
	targets, err := LegalTargets(startFEN, "e2")
	if err != nil {
		t.Fatalf("LegalTargets: %v", err)
	}
	if len(targets) != 2 {
		t.Fatalf("expected 2 targets for e2, got %v", targets)
	}
	want := map[string]bool{"e3": true, "e4": true}
	for _, sq := range targets {
		if !want[sq] {
			t.Fatalf("unexpected target %s", sq)
		}
	}
}

func TestLegalTargetsEmptySquare(t *testing.T) {
	targets, err := LegalTargets(startFEN, "e4")
	if err != nil {
		t.Fatalf("LegalTargets: %v", err)
	}
	if len(targets) != 0 {
		t.Fatalf("expected no targets for empty square, got %v", targets)
	}
}

func TestLegalTargetsOpponentPiece(t *testing.T) {
	// black to move is not the case here, so e7 (black pawn) has no moves
	targets, err := LegalTargets(startFEN, "e7")
	if err != nil {
		t.Fatalf("LegalTargets: %v", err)
	}
	if len(targets) != 0 {
		t.Fatalf("expected no targets for opponent piece, got %v", targets)
	}
}

func TestLegalTargetsBadSquare(t *testing.T) {
	if _, err := LegalTargets(startFEN, "z9"); !errors.Is(err, ErrBadSquare) {
		t.Fatalf("expected ErrBadSquare, got %v", err)
	}
}

func TestLegalTargetsCollapsePromotionVariants(t *testing.T) {
	targets, err := LegalTargets(promoFEN, "e7")
	if err != nil {
		t.Fatalf("LegalTargets: %v", err)
	}
	if len(targets) != 1 || targets[0] != "e8" {
		t.Fatalf("expected single e8 target, got %v", targets)
	}
}

func TestOwnPiece(t *testing.T) {
	cases := []struct {
		square, side string
		want         bool
	}{
		{"e2", "white", true},
		{"e2", "black", false},
		{"e7", "black", true},
		{"e4", "white", false},
	}
	for _, tc := range cases {
		got, err := OwnPiece(startFEN, tc.square, tc.side)
		if err != nil {
			t.Fatalf("OwnPiece(%s,%s): %v", tc.square, tc.side, err)
		}
		if got != tc.want {
			t.Fatalf("OwnPiece(%s,%s) = %v, want %v", tc.square, tc.side, got, tc.want)
		}
	}
}

func TestApplyPawnPush(t *testing.T) {
	res, err := Apply(startFEN, "e2", "e4", "")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.UCI != "e2e4" {
		t.Fatalf("uci = %q", res.UCI)
	}
	if res.SAN != "e4" {
		t.Fatalf("san = %q", res.SAN)
	}
	if res.IsCapture || res.IsPromotion {
		t.Fatalf("unexpected flags: %+v", res)
	}
	if res.FEN == startFEN {
		t.Fatalf("FEN did not change")
	}
	// side to move flips in the resulting position
	if got, _ := OwnPiece(res.FEN, "e4", "white"); !got {
		t.Fatalf("pawn not on e4 after move")
	}
}

func TestApplyIllegal(t *testing.T) {
	if _, err := Apply(startFEN, "e2", "e5", ""); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove, got %v", err)
	}
	if _, err := Apply(startFEN, "e4", "e5", ""); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove for empty origin, got %v", err)
	}
}

func TestApplyAutoQueen(t *testing.T) {
	res, err := Apply(promoFEN, "e7", "e8", "")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.UCI != "e7e8q" {
		t.Fatalf("expected auto-queen uci e7e8q, got %q", res.UCI)
	}
	if !res.IsPromotion {
		t.Fatalf("promotion flag not set")
	}
}

func TestApplyExplicitUnderpromotion(t *testing.T) {
	res, err := Apply(promoFEN, "e7", "e8", "n")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.UCI != "e7e8n" {
		t.Fatalf("expected e7e8n, got %q", res.UCI)
	}
}

func TestApplyBadPosition(t *testing.T) {
	if _, err := Apply("not a fen", "e2", "e4", ""); !errors.Is(err, ErrBadPosition) {
		t.Fatalf("expected ErrBadPosition, got %v", err)
	}
}
