package display

import (
	"fmt"
	"io"
	"strings"
)

// BoardMarks controls per-square highlighting on the ASCII board.
type BoardMarks struct {
	// Selected is the currently picked-up origin square, or "".
	Selected string
	// Targets are the legal destinations of the selection.
	Targets []string
}

// WriteBoard renders the piece placement field of a FEN to w, one rank per
// line, rank 8 on top (or rank 1 on top when flipped). White pieces print
// blue, black pieces red, matching the rest of the terminal output.
func WriteBoard(w io.Writer, fen string, flipped bool, marks BoardMarks) {
	placement := fen
	if i := strings.IndexByte(fen, ' '); i >= 0 {
		placement = fen[:i]
	}

	grid := expandPlacement(placement)
	targets := make(map[string]bool, len(marks.Targets))
	for _, t := range marks.Targets {
		targets[t] = true
	}

	files := "  a b c d e f g h"
	if flipped {
		files = "  h g f e d c b a"
	}
	fmt.Fprintln(w, Cyan+files+Reset)

	for row := 0; row < 8; row++ {
		rank := 8 - row
		if flipped {
			rank = row + 1
		}
		fmt.Fprintf(w, "%s%d%s ", Cyan, rank, Reset)
		for col := 0; col < 8; col++ {
			file := col
			if flipped {
				file = 7 - col
			}
			sq := squareName(file, rank)
			piece := grid[8-rank][file]
			fmt.Fprint(w, cell(piece, sq, marks.Selected, targets))
		}
		fmt.Fprintf(w, "%s%d%s\n", Cyan, rank, Reset)
	}
	fmt.Fprintln(w, Cyan+files+Reset)
}

func cell(piece byte, sq, selected string, targets map[string]bool) string {
	var bg string
	switch {
	case sq == selected:
		bg = BgSelect
	case targets[sq]:
		bg = BgTarget
	}

	var body string
	switch {
	case piece == 0:
		if targets[sq] {
			body = Gray + "*" + Reset
		} else {
			body = Gray + "." + Reset
		}
	case piece >= 'A' && piece <= 'Z':
		body = Blue + string(piece) + Reset
	default:
		body = Red + string(piece) + Reset
	}
	if bg != "" {
		return bg + body + bg + " " + Reset
	}
	return body + " "
}

// expandPlacement turns the FEN placement field into an 8x8 byte grid,
// grid[0] holding rank 8. Zero bytes are empty squares.
func expandPlacement(placement string) [8][8]byte {
	var grid [8][8]byte
	row, col := 0, 0
	for i := 0; i < len(placement) && row < 8; i++ {
		c := placement[i]
		switch {
		case c == '/':
			row++
			col = 0
		case c >= '1' && c <= '8':
			col += int(c - '0')
		default:
			if col < 8 {
				grid[row][col] = c
			}
			col++
		}
	}
	return grid
}

func squareName(file, rank int) string {
	return string([]byte{byte('a' + file), byte('0' + rank)})
}
