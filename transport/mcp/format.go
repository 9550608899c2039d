package mcp

import (
	"fmt"
	"strings"

	"github.com/wricardo/ringlight/game/engine"
	"github.com/wricardo/ringlight/game/service"
)

// Board glyphs
const (
	glyphEmpty   = "."
	glyphLine    = "L"
	glyphWall    = "#"
	glyphGate    = "G"
	glyphLitGate = "*"
)

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nLevel: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

// renderBoard draws the goal ring above the rings, outermost first, one
// column per slot. The selected ring is marked with '>'.
func renderBoard(state *engine.GameState) string {
	var b strings.Builder

	b.WriteString("          ")
	for slot := 0; slot < engine.NumPositions; slot++ {
		fmt.Fprintf(&b, "%3d", slot)
	}
	b.WriteString("\n")

	lit := make(map[int]bool, len(state.Illuminated))
	for _, g := range state.Illuminated {
		lit[g] = true
	}
	gates := make(map[int]bool, len(state.Goals))
	for _, g := range state.Goals {
		gates[g] = true
	}

	b.WriteString("  Gates   ")
	for slot := 0; slot < engine.NumPositions; slot++ {
		glyph := glyphEmpty
		switch {
		case lit[slot]:
			glyph = glyphLitGate
		case gates[slot]:
			glyph = glyphGate
		}
		fmt.Fprintf(&b, "%3s", glyph)
	}
	b.WriteString("\n")

	for ring := len(state.Rings) - 1; ring >= 0; ring-- {
		row := make([]string, engine.NumPositions)
		for i := range row {
			row[i] = glyphEmpty
		}
		for _, el := range state.Rings[ring] {
			if el.Position < 0 || el.Position >= engine.NumPositions {
				continue
			}
			if el.Type == engine.Line {
				row[el.Position] = glyphLine
			} else {
				row[el.Position] = glyphWall
			}
		}

		marker := " "
		if ring == state.ActiveRing {
			marker = ">"
		}
		fmt.Fprintf(&b, "%s Ring %d  ", marker, ring)
		for _, glyph := range row {
			fmt.Fprintf(&b, "%3s", glyph)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func formatRoute(line engine.LineResult) string {
	return fmt.Sprintf("(%d,%d) -> (%d,%d) %s",
		line.Start.Ring, line.Start.Slot, line.Terminal.Ring, line.Terminal.Slot, line.Outcome)
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Active ring: %d | Offsets: %v | Gates lit: %d/%d | Moves: %d\n\n",
		state.ActiveRing, state.Offsets, len(state.Illuminated), len(state.Goals), state.TotalMoves)

	b.WriteString(renderBoard(state))

	if len(state.Lines) > 0 {
		b.WriteString("\nRoutes:\n")
		for _, line := range state.Lines {
			b.WriteString("  " + formatRoute(line) + "\n")
		}
	}

	if state.Victory {
		b.WriteString("\nVICTORY! Every gate is lit.")
	}

	if state.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", state.Message)
	}

	return b.String()
}

func formatStep(step service.StepInfo) string {
	status := "✗"
	if step.Success {
		status = "✓"
	}
	line := fmt.Sprintf("%d. %s ring=%d offset %d->%d %s", step.Idx, step.Command, step.Ring, step.OffsetBefore, step.OffsetAfter, status)
	if len(step.Lit) > 0 {
		line += fmt.Sprintf(" lit=%v", step.Lit)
	}
	if len(step.Darkened) > 0 {
		line += fmt.Sprintf(" dark=%v", step.Darkened)
	}
	if step.Victory {
		line += " VICTORY"
	}
	return line + "\n"
}

func formatEvents(b *strings.Builder, events []service.GameEvent) {
	if len(events) == 0 {
		return
	}
	b.WriteString("Events:\n")
	for _, event := range events {
		fmt.Fprintf(b, "- %s: %s\n", event.Type, event.Message)
	}
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Command executed\n")
	} else {
		b.WriteString("✗ Command failed\n")
	}

	if result.Step != nil {
		b.WriteString("Step: " + formatStep(*result.Step))
	}

	formatEvents(&b, result.Events)

	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder

	level := ""
	if result.GameState != nil {
		level = result.GameState.ConfigName
	}
	fmt.Fprintf(&b, "Session: %s • Level: %s\n", sessionID, level)

	fmt.Fprintf(&b, "Executed %d/%d commands\n", result.MovesExecuted, result.RequestedMoves)
	if result.Truncated {
		fmt.Fprintf(&b, "Truncated to the first %d commands\n", result.Limit)
	}
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped: %s (%s)\n", result.StoppedReason, result.StopReasonCode)
	}
	fmt.Fprintf(&b, "Offsets: %v -> %v\n", result.StartOffsets, result.EndOffsets)
	fmt.Fprintf(&b, "Gates lit: %v -> %v\n", result.StartIlluminated, result.EndIlluminated)

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps (this call):\n")
		for _, step := range result.Steps {
			b.WriteString(formatStep(step))
		}
	}

	if len(result.Events) > 0 {
		b.WriteString("\n")
		formatEvents(&b, result.Events)
	}

	if len(result.PossibleMoves) > 0 {
		fmt.Fprintf(&b, "\nPossible moves: %s\n", strings.Join(result.PossibleMoves, ","))
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d, Total: %d):\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, move := range history.Moves {
		status := "✓"
		if !move.Success {
			status = "✗"
		}
		fmt.Fprintf(&b, "%d. %s %s ring=%d lit=%v", move.MoveNumber, move.Action, status, move.Ring, move.Illuminated)
		if move.Victory {
			b.WriteString(" VICTORY")
		}
		b.WriteString("\n")
	}

	if history.HasPrevious || history.HasNext {
		b.WriteString("\n")
		if history.HasPrevious {
			b.WriteString("← previous page available ")
		}
		if history.HasNext {
			b.WriteString("next page available →")
		}
		b.WriteString("\n")
	}

	return b.String()
}

func formatSlotInfo(info *engine.SlotInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cell (ring %d, slot %d), opposite slot %d\n", info.Ring, info.Slot, info.Opposite)
	b.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━\n")

	if info.Ring == engine.GoalRing {
		switch {
		case info.GoalGate && info.Illuminated:
			b.WriteString("Goal gate: LIT\n")
		case info.GoalGate:
			b.WriteString("Goal gate: dark\n")
		default:
			b.WriteString("No goal gate here. Lines exiting here escape unfilled.\n")
		}
		return b.String()
	}

	if info.Occupied {
		fmt.Fprintf(&b, "Contains: %s\n", info.Type)
	} else {
		b.WriteString("Contains: nothing (lines pass through)\n")
	}
	if info.Route != nil {
		fmt.Fprintf(&b, "Route: %s\n", formatRoute(*info.Route))
	}
	for _, start := range info.BlockedBy {
		fmt.Fprintf(&b, "Stops the line from (%d,%d)\n", start.Ring, start.Slot)
	}
	return b.String()
}
