package render

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	nchess "github.com/corentings/chess/v2"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func startBoard(t *testing.T) *nchess.Board {
	t.Helper()
	opt, err := nchess.FEN(startFEN)
	if err != nil {
		t.Fatalf("fen: %v", err)
	}
	return nchess.NewGame(opt).Position().Board()
}

func pieceAt(t *testing.T, file nchess.File, rank nchess.Rank) nchess.Piece {
	t.Helper()
	p := startBoard(t).Piece(nchess.NewSquare(file, rank))
	if p == nchess.NoPiece {
		t.Fatalf("no piece at %v%v", file, rank)
	}
	return p
}

func TestSnapshotPNG(t *testing.T) {
	data, err := SnapshotPNG(context.Background(), startFEN, Options{})
	if err != nil {
		t.Fatalf("SnapshotPNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := boardSize + margin*2
	if img.Bounds().Dx() != want || img.Bounds().Dy() != want {
		t.Fatalf("bounds = %v, want %dx%d", img.Bounds(), want, want)
	}
}

func TestSnapshotPNGWithOverlays(t *testing.T) {
	opts := Options{
		LastMove: HighlightUCI("e2e4"),
		Targets:  []string{"e3", "e4", "zz"}, // bad squares are skipped
	}
	if _, err := SnapshotPNG(context.Background(), startFEN, opts); err != nil {
		t.Fatalf("SnapshotPNG: %v", err)
	}
}

func TestHighlightUCI(t *testing.T) {
	h := HighlightUCI("e7e8q")
	if h == nil || h.From != "e7" || h.To != "e8" {
		t.Fatalf("HighlightUCI = %+v", h)
	}
	if HighlightUCI("e2") != nil {
		t.Fatalf("short uci should yield nil")
	}
}

func TestSnapshotPNGBadFEN(t *testing.T) {
	if _, err := SnapshotPNG(context.Background(), "garbage", Options{}); err == nil {
		t.Fatalf("expected error for bad fen")
	}
}

func TestSnapshotPNGCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := SnapshotPNG(ctx, startFEN, Options{}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestPieceAssetName(t *testing.T) {
	cases := []struct {
		file nchess.File
		rank nchess.Rank
		want string
	}{
		{nchess.FileE, nchess.Rank1, "assets/pieces/wK.svg"},
		{nchess.FileD, nchess.Rank8, "assets/pieces/bQ.svg"},
		{nchess.FileA, nchess.Rank2, "assets/pieces/wP.svg"},
		{nchess.FileB, nchess.Rank8, "assets/pieces/bN.svg"},
	}
	for _, tc := range cases {
		piece := pieceAt(t, tc.file, tc.rank)
		if got := pieceAssetName(piece); got != tc.want {
			t.Fatalf("pieceAssetName(%v) = %q, want %q", piece, got, tc.want)
		}
	}
}

func TestRenderPieceImageCached(t *testing.T) {
	king := pieceAt(t, nchess.FileE, nchess.Rank1)
	a, err := renderPieceImage(king, 64)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	b, err := renderPieceImage(king, 64)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if a != b {
		t.Fatalf("cache miss on identical key")
	}
}
