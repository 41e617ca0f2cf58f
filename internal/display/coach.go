package display

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/kapu/chess-coach-client-go/pkg/coachdto"
)

// WriteStateSummary prints one status line for the current game.
func WriteStateSummary(w io.Writer, state *coachdto.GameState) {
	if state == nil {
		fmt.Fprintln(w, Gray+"no game in progress"+Reset)
		return
	}

	turn := colorForSide(state.SideToMove)
	fmt.Fprintf(w, "move %d, %s to move", len(state.MoveList)/2+1, turn)
	fmt.Fprintf(w, "  %sW %s  B %s%s",
		Gray, clock(state.Clocks.WhiteMs), clock(state.Clocks.BlackMs), Reset)
	if caps := capturedLine(state.CapturedPieces); caps != "" {
		fmt.Fprintf(w, "  captured: %s", caps)
	}
	fmt.Fprintln(w)

	if state.GameOver {
		fmt.Fprintf(w, "%sGame over: %s%s\n", Magenta, state.Result, Reset)
	}
}

// WriteAgentOutput prints the coach commentary block returned alongside a
// state update. Sections the backend left empty are skipped.
func WriteAgentOutput(w io.Writer, out *coachdto.AgentOutput) {
	if out == nil {
		return
	}

	c := out.Coach
	if c.MoveQuality != "" || len(c.Bullets) > 0 || c.PV != "" {
		fmt.Fprintf(w, "%s-- coach --%s\n", Green, Reset)
		if c.MoveQuality != "" {
			fmt.Fprintf(w, "  quality: %s\n", qualityColor(c.MoveQuality))
		}
		for _, b := range c.Bullets {
			fmt.Fprintf(w, "  * %s\n", b)
		}
		if c.PV != "" {
			fmt.Fprintf(w, "  %spv: %s%s\n", Gray, c.PV, Reset)
		}
	}

	p := out.Position
	if p.Eval != "" || len(p.Why) > 0 || len(p.Threats) > 0 || len(p.Plans) > 0 {
		fmt.Fprintf(w, "%s-- position --%s\n", Blue, Reset)
		if p.Eval != "" {
			fmt.Fprintf(w, "  eval: %s\n", p.Eval)
		}
		for _, why := range p.Why {
			fmt.Fprintf(w, "  %s\n", why)
		}
		for _, t := range p.Threats {
			fmt.Fprintf(w, "  %s! %s%s\n", Red, t, Reset)
		}
		for _, side := range sortedKeys(p.Plans) {
			for _, pl := range p.Plans[side] {
				fmt.Fprintf(w, "  %s> %s: %s%s\n", Cyan, side, pl, Reset)
			}
		}
	}

	m := out.Mental
	if m.Inference != "" || len(m.ObservedSignals) > 0 || m.MicroResetTip != "" {
		fmt.Fprintf(w, "%s-- mental --%s\n", Magenta, Reset)
		if m.Inference != "" {
			fmt.Fprintf(w, "  %s\n", m.Inference)
		}
		if len(m.ObservedSignals) > 0 {
			fmt.Fprintf(w, "  %ssignals: %s%s\n", Gray, strings.Join(m.ObservedSignals, ", "), Reset)
		}
		if m.MicroResetTip != "" {
			fmt.Fprintf(w, "  %stip: %s%s\n", Green, m.MicroResetTip, Reset)
		}
	}
}

func capturedLine(captured map[string][]string) string {
	if len(captured) == 0 {
		return ""
	}
	parts := make([]string, 0, len(captured))
	for _, side := range sortedKeys(captured) {
		if len(captured[side]) == 0 {
			continue
		}
		parts = append(parts, side+":"+strings.Join(captured[side], ""))
	}
	return strings.Join(parts, " ")
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func qualityColor(q string) string {
	switch strings.ToLower(q) {
	case "best", "excellent", "good":
		return Green + q + Reset
	case "inaccuracy", "dubious":
		return Yellow + q + Reset
	case "mistake", "blunder":
		return Red + q + Reset
	default:
		return q
	}
}

func colorForSide(side string) string {
	if side == "white" || side == "w" {
		return Blue + "White" + Reset
	}
	return Red + "Black" + Reset
}

func clock(ms int) string {
	if ms < 0 {
		ms = 0
	}
	d := time.Duration(ms) * time.Millisecond
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
