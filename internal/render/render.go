package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"

	nchess "github.com/corentings/chess/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Options controls highlight overlays on the exported snapshot.
type Options struct {
	// LastMove highlights the origin and destination of the latest move.
	LastMove *MoveHighlight
	// Targets marks the legal destinations of the current selection.
	Targets []string
}

// MoveHighlight names the two squares of a move in algebraic form ("e2").
type MoveHighlight struct {
	From string
	To   string
}

// HighlightUCI builds a MoveHighlight from a UCI move string, nil when the
// string is too short to carry two squares.
func HighlightUCI(uci string) *MoveHighlight {
	if len(uci) < 4 {
		return nil
	}
	return &MoveHighlight{From: uci[:2], To: uci[2:4]}
}

const (
	squareSize   = 72
	boardSquares = 8
	boardSize    = squareSize * boardSquares
	margin       = 24
)

var (
	lightSquare    = color.RGBA{R: 0xEE, G: 0xEE, B: 0xD2, A: 0xFF}
	darkSquare     = color.RGBA{R: 0x76, G: 0x96, B: 0x56, A: 0xFF}
	highlightTint  = color.RGBA{R: 0xF6, G: 0xF6, B: 0x69, A: 0x90}
	targetDotColor = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0x70}
	marginColor    = color.RGBA{R: 0x30, G: 0x2E, B: 0x2B, A: 0xFF}
	coordColor     = color.RGBA{R: 0xD0, G: 0xD0, B: 0xC8, A: 0xFF}
)

// SnapshotPNG renders the position in fen to a PNG image.
func SnapshotPNG(ctx context.Context, fen string, opts Options) ([]byte, error) {
	fenOpt, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen: %w", err)
	}
	game := nchess.NewGame(fenOpt)
	board := game.Position().Board()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	total := boardSize + margin*2
	img := image.NewRGBA(image.Rect(0, 0, total, total))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(marginColor), image.Point{}, imagedraw.Src)

	origin := image.Point{X: margin, Y: margin}
	drawSquares(img, origin)
	drawOverlays(img, origin, opts)
	if err := drawPieces(img, board, origin); err != nil {
		return nil, err
	}
	drawCoordinates(img, origin)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// squareRect maps a square to pixels with rank 8 at the top, white at bottom.
func squareRect(sq nchess.Square, origin image.Point) image.Rectangle {
	x := origin.X + int(sq.File())*squareSize
	y := origin.Y + (7-int(sq.Rank()))*squareSize
	return image.Rect(x, y, x+squareSize, y+squareSize)
}

func drawSquares(img *image.RGBA, origin image.Point) {
	for file := nchess.FileA; file <= nchess.FileH; file++ {
		for rank := nchess.Rank1; rank <= nchess.Rank8; rank++ {
			sq := nchess.NewSquare(file, rank)
			fill := lightSquare
			if (int(file)+int(rank))%2 == 0 {
				fill = darkSquare
			}
			imagedraw.Draw(img, squareRect(sq, origin), image.NewUniform(fill), image.Point{}, imagedraw.Src)
		}
	}
}

func drawOverlays(img *image.RGBA, origin image.Point, opts Options) {
	if opts.LastMove != nil {
		if sq, ok := squareByName(opts.LastMove.From); ok {
			tintSquare(img, squareRect(sq, origin))
		}
		if sq, ok := squareByName(opts.LastMove.To); ok {
			tintSquare(img, squareRect(sq, origin))
		}
	}
	for _, t := range opts.Targets {
		if sq, ok := squareByName(t); ok {
			drawTargetDot(img, squareRect(sq, origin))
		}
	}
}

func tintSquare(img *image.RGBA, rect image.Rectangle) {
	imagedraw.Draw(img, rect, image.NewUniform(highlightTint), image.Point{}, imagedraw.Over)
}

func drawTargetDot(img *image.RGBA, rect image.Rectangle) {
	cx := rect.Min.X + squareSize/2
	cy := rect.Min.Y + squareSize/2
	r := squareSize / 8
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			if x*x+y*y <= r*r {
				blend(img, cx+x, cy+y, targetDotColor)
			}
		}
	}
}

func blend(img *image.RGBA, x, y int, c color.RGBA) {
	imagedraw.Draw(img, image.Rect(x, y, x+1, y+1), image.NewUniform(c), image.Point{}, imagedraw.Over)
}

func drawPieces(img *image.RGBA, board *nchess.Board, origin image.Point) error {
	for file := nchess.FileA; file <= nchess.FileH; file++ {
		for rank := nchess.Rank1; rank <= nchess.Rank8; rank++ {
			sq := nchess.NewSquare(file, rank)
			piece := board.Piece(sq)
			if piece == nchess.NoPiece {
				continue
			}
			glyph, err := renderPieceImage(piece, squareSize)
			if err != nil {
				return err
			}
			rect := squareRect(sq, origin)
			imagedraw.Draw(img, rect, glyph, image.Point{}, imagedraw.Over)
		}
	}
	return nil
}

func drawCoordinates(img *image.RGBA, origin image.Point) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(coordColor),
		Face: face,
	}
	for i := 0; i < boardSquares; i++ {
		fileLabel := string(rune('a' + i))
		drawer.Dot = fixed.P(origin.X+i*squareSize+squareSize/2-3, origin.Y+boardSize+margin/2+4)
		drawer.DrawString(fileLabel)

		rankLabel := string(rune('1' + (7 - i)))
		drawer.Dot = fixed.P(origin.X-margin/2-3, origin.Y+i*squareSize+squareSize/2+4)
		drawer.DrawString(rankLabel)
	}
}

func squareByName(name string) (nchess.Square, bool) {
	if len(name) != 2 || name[0] < 'a' || name[0] > 'h' || name[1] < '1' || name[1] > '8' {
		return 0, false
	}
	return nchess.NewSquare(nchess.File(name[0]-'a'), nchess.Rank(name[1]-'1')), true
}
