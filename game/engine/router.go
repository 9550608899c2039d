package engine

import (
	"fmt"
	"sort"

	"github.com/zyedidia/generic/mapset"
)

// Route traces a line inward from its ring and returns the cell where the
// path stops. The path first crosses the inner rings on the line's own slot,
// then passes through the center and crosses every ring again on the opposite
// slot. A path that meets no element escapes to the goal ring.
func Route(line Cell, occupied Occupancy) Cell {
	for ring := line.Ring - 1; ring >= 0; ring-- {
		if occupied.Has(ring, line.Slot) {
			return Cell{Ring: ring, Slot: line.Slot}
		}
	}

	opposite := OppositeSlot(line.Slot)
	for ring := 0; ring < NumRings; ring++ {
		if occupied.Has(ring, opposite) {
			return Cell{Ring: ring, Slot: opposite}
		}
	}

	return Cell{Ring: GoalRing, Slot: opposite}
}

// Classify decides the outcome of a routed line. Only a path that escapes on
// the slot opposite its origin is clear; it fills the goal when a gate sits
// there.
func Classify(line, terminal Cell, goals mapset.Set[int]) Outcome {
	if terminal.Ring != GoalRing {
		return Blocked
	}
	if terminal.Slot != OppositeSlot(line.Slot) {
		panic(fmt.Sprintf("router: line at %d/%d escaped to slot %d, expected %d",
			line.Ring, line.Slot, terminal.Slot, OppositeSlot(line.Slot)))
	}
	if goals.Has(terminal.Slot) {
		return GoalFilled
	}
	return GoalUnfilled
}

// Resolution is the result of routing every line on the board
type Resolution struct {
	Lines       []LineResult
	Illuminated []int // sorted goal slots that some line fills
	Won         bool
}

// ResolveGoals routes every line against one occupancy snapshot and derives
// the illuminated goals and the win flag from scratch.
func ResolveGoals(lines []Cell, occupied Occupancy, goals mapset.Set[int]) Resolution {
	lit := mapset.New[int]()
	results := make([]LineResult, 0, len(lines))

	for _, line := range lines {
		terminal := Route(line, occupied)
		outcome := Classify(line, terminal, goals)
		if outcome == GoalFilled {
			lit.Put(terminal.Slot)
		}

		draw := terminal
		if draw.Ring == GoalRing {
			draw.Ring = OuterRing
		}
		results = append(results, LineResult{
			Start:        line,
			Terminal:     terminal,
			DrawTerminal: draw,
			Outcome:      outcome,
			Color:        outcome.Color(),
		})
	}

	return Resolution{
		Lines:       results,
		Illuminated: sortedSlots(lit),
		Won:         sameSlots(lit, goals),
	}
}

// GoalSet builds the goal gate set used by Classify and ResolveGoals
func GoalSet(goals []int) mapset.Set[int] {
	set := mapset.New[int]()
	for _, g := range goals {
		set.Put(g)
	}
	return set
}

func sameSlots(a, b mapset.Set[int]) bool {
	if a.Size() != b.Size() {
		return false
	}
	same := true
	a.Each(func(slot int) {
		if !b.Has(slot) {
			same = false
		}
	})
	return same
}

func sortedSlots(set mapset.Set[int]) []int {
	slots := make([]int, 0, set.Size())
	set.Each(func(slot int) {
		slots = append(slots, slot)
	})
	sort.Ints(slots)
	return slots
}
