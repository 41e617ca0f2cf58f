package display

import (
	"bytes"
	"strings"
	"testing"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func render(fen string, flipped bool, marks BoardMarks) string {
	var buf bytes.Buffer
	WriteBoard(&buf, fen, flipped, marks)
	return buf.String()
}

func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\033':
			inEsc = true
		case inEsc && s[i] == 'm':
			inEsc = false
		case !inEsc:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func TestWriteBoardOrientation(t *testing.T) {
	out := stripANSI(render(startFEN, false, BoardMarks{}))
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 10 {
		t.Fatalf("expected 10 lines, got %d:\n%s", len(lines), out)
	}
	// rank 8 (black back rank) on top for white
	if !strings.HasPrefix(lines[1], "8 r n b q k b n r") {
		t.Fatalf("top rank wrong: %q", lines[1])
	}
	if !strings.HasPrefix(lines[8], "1 R N B Q K B N R") {
		t.Fatalf("bottom rank wrong: %q", lines[8])
	}
}

func TestWriteBoardFlipped(t *testing.T) {
	out := stripANSI(render(startFEN, true, BoardMarks{}))
	lines := strings.Split(strings.TrimSpace(out), "\n")
	// rank 1 on top for black, files reversed
	if !strings.HasPrefix(lines[0], "h g f e d c b a") {
		t.Fatalf("file header not flipped: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "1 R N B K Q B N R") {
		t.Fatalf("top rank for black wrong: %q", lines[1])
	}
}

func TestWriteBoardTargetMarks(t *testing.T) {
	out := stripANSI(render(startFEN, false, BoardMarks{
		Selected: "e2",
		Targets:  []string{"e3", "e4"},
	}))
	// target squares are empty and render as asterisks
	if strings.Count(out, "*") != 2 {
		t.Fatalf("expected 2 target marks:\n%s", out)
	}
}

func TestExpandPlacement(t *testing.T) {
	grid := expandPlacement("8/8/8/8/4P3/8/8/8")
	if grid[4][4] != 'P' {
		t.Fatalf("pawn not at e4 slot: %+v", grid[4])
	}
	count := 0
	for _, row := range grid {
		for _, c := range row {
			if c != 0 {
				count++
			}
		}
	}
	if count != 1 {
		t.Fatalf("expected a single piece, got %d", count)
	}
}
