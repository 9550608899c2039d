package engine

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

// Board holds the element positions of every ring. It is owned by a single
// engine and mutated only through Rotate.
type Board struct {
	rings   [NumRings][]Element
	offsets [NumRings]int
}

// NewBoard builds a board from per-ring element lists, innermost ring first.
// Elements are copied so later rotations never touch the caller's slices.
func NewBoard(rings [][]Element) (*Board, error) {
	if len(rings) != NumRings {
		return nil, fmt.Errorf("board: expected %d rings, got %d", NumRings, len(rings))
	}

	b := &Board{}
	seen := mapset.New[int]()
	for ring, elements := range rings {
		b.rings[ring] = make([]Element, len(elements))
		for i, el := range elements {
			if el.Type != Line && el.Type != Wall {
				return nil, fmt.Errorf("board: ring %d element %d has unknown type %q", ring, i, el.Type)
			}
			if el.Position < 0 || el.Position >= NumPositions {
				return nil, fmt.Errorf("board: ring %d element %d position %d out of range [0,%d)", ring, i, el.Position, NumPositions)
			}
			key := CellKey(ring, el.Position)
			if seen.Has(key) {
				return nil, fmt.Errorf("board: ring %d slot %d is occupied twice", ring, el.Position)
			}
			seen.Put(key)
			b.rings[ring][i] = el
		}
	}

	return b, nil
}

// OppositeSlot returns the slot diametrically across the circle
func OppositeSlot(slot int) int {
	return (slot + NumPositions/2) % NumPositions
}

// CellKey packs a ring and slot into the integer key used by Occupancy
func CellKey(ring, slot int) int {
	return ring*NumPositions + slot
}

// Rotate shifts every element on ring by direction slots, wrapping around.
// The active-ring selector is clamped, so an out-of-range ring is a caller bug.
func (b *Board) Rotate(ring, direction int) {
	if ring < 0 || ring >= NumRings {
		panic(fmt.Sprintf("board: rotate on invalid ring %d", ring))
	}
	for i := range b.rings[ring] {
		b.rings[ring][i].Position = wrapSlot(b.rings[ring][i].Position + direction)
	}
	b.offsets[ring] = wrapSlot(b.offsets[ring] + direction)
}

// Occupancy is a snapshot of which cells hold an element
type Occupancy struct {
	cells mapset.Set[int]
}

// Has reports whether the cell at ring/slot is occupied
func (o Occupancy) Has(ring, slot int) bool {
	return o.cells.Has(CellKey(ring, slot))
}

// Size returns the number of occupied cells
func (o Occupancy) Size() int {
	return o.cells.Size()
}

// OccupancyIndex snapshots every occupied cell. It is rebuilt on each call;
// a board never holds more than NumRings*NumPositions cells.
func (b *Board) OccupancyIndex() Occupancy {
	cells := mapset.New[int]()
	for ring, elements := range b.rings {
		for _, el := range elements {
			cells.Put(CellKey(ring, el.Position))
		}
	}
	return Occupancy{cells: cells}
}

// Lines returns the cell of every line element, outermost ring first
func (b *Board) Lines() []Cell {
	var lines []Cell
	for ring := OuterRing; ring >= 0; ring-- {
		for _, el := range b.rings[ring] {
			if el.Type == Line {
				lines = append(lines, Cell{Ring: ring, Slot: el.Position})
			}
		}
	}
	return lines
}

// At returns the element occupying ring/slot, if any
func (b *Board) At(ring, slot int) (Element, bool) {
	if ring < 0 || ring >= NumRings {
		return Element{}, false
	}
	for _, el := range b.rings[ring] {
		if el.Position == slot {
			return el, true
		}
	}
	return Element{}, false
}

// Rings returns a copy of the current element positions
func (b *Board) Rings() [][]Element {
	out := make([][]Element, NumRings)
	for ring, elements := range b.rings {
		out[ring] = append([]Element{}, elements...)
	}
	return out
}

// Offsets returns the net rotation applied to each ring
func (b *Board) Offsets() []int {
	return append([]int{}, b.offsets[:]...)
}

func wrapSlot(slot int) int {
	return ((slot % NumPositions) + NumPositions) % NumPositions
}
