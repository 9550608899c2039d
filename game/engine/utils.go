package engine

import "fmt"

// CountElements counts the elements of one type across all rings of a level
func CountElements(config *LevelConfig, elementType ElementType) int {
	count := 0
	for _, ring := range config.Elements {
		for _, el := range ring {
			if el.Type == elementType {
				count++
			}
		}
	}
	return count
}

// SlotInfo describes one cell of the board, including the goal ring
type SlotInfo struct {
	Ring        int         `json:"ring"`
	Slot        int         `json:"slot"`
	Occupied    bool        `json:"occupied"`
	Type        ElementType `json:"type,omitempty"`
	GoalGate    bool        `json:"goal_gate,omitempty"`
	Illuminated bool        `json:"illuminated,omitempty"`
	Route       *LineResult `json:"route,omitempty"`      // set when the cell holds a line
	Opposite    int         `json:"opposite"`             // slot across the center
	BlockedBy   []Cell      `json:"blocked_by,omitempty"` // lines whose path stops here
}

// DescribeSlot reports what occupies a cell and which routes touch it
func (e *GameEngine) DescribeSlot(ring, slot int) (*SlotInfo, error) {
	if ring < 0 || ring > GoalRing {
		return nil, fmt.Errorf("ring %d out of range [0,%d]", ring, GoalRing)
	}
	if slot < 0 || slot >= NumPositions {
		return nil, fmt.Errorf("slot %d out of range [0,%d)", slot, NumPositions)
	}

	info := &SlotInfo{Ring: ring, Slot: slot, Opposite: OppositeSlot(slot)}

	if ring == GoalRing {
		info.GoalGate = e.goals.Has(slot)
		for _, lit := range e.state.Illuminated {
			if lit == slot {
				info.Illuminated = true
			}
		}
		return info, nil
	}

	if el, ok := e.board.At(ring, slot); ok {
		info.Occupied = true
		info.Type = el.Type
	}
	for _, line := range e.state.Lines {
		if line.Start.Ring == ring && line.Start.Slot == slot {
			route := line
			info.Route = &route
		}
		if line.Terminal.Ring == ring && line.Terminal.Slot == slot {
			info.BlockedBy = append(info.BlockedBy, line.Start)
		}
	}
	return info, nil
}
