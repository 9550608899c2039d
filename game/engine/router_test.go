package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBoard(t *testing.T, rings [][]Element) *Board {
	t.Helper()
	b, err := NewBoard(rings)
	require.NoError(t, err)
	return b
}

func TestRoute_ClearPathEscapesOpposite(t *testing.T) {
	goals := GoalSet([]int{6})
	for ring := 0; ring < NumRings; ring++ {
		for slot := 0; slot < NumPositions; slot++ {
			rings := emptyRings()
			rings[ring] = []Element{{Type: Line, Position: slot}}
			b := mustBoard(t, rings)

			line := Cell{Ring: ring, Slot: slot}
			terminal := Route(line, b.OccupancyIndex())
			assert.Equal(t, Cell{Ring: GoalRing, Slot: OppositeSlot(slot)}, terminal)

			want := GoalUnfilled
			if OppositeSlot(slot) == 6 {
				want = GoalFilled
			}
			assert.Equal(t, want, Classify(line, terminal, goals), "line %d/%d", ring, slot)
		}
	}
}

func TestRoute_BlockedOnDirectPhase(t *testing.T) {
	for j := 0; j < OuterRing; j++ {
		rings := emptyRings()
		rings[OuterRing] = []Element{{Type: Line, Position: 3}}
		rings[j] = []Element{{Type: Wall, Position: 3}}
		b := mustBoard(t, rings)

		line := Cell{Ring: OuterRing, Slot: 3}
		terminal := Route(line, b.OccupancyIndex())
		assert.Equal(t, Cell{Ring: j, Slot: 3}, terminal)
		assert.Equal(t, Blocked, Classify(line, terminal, GoalSet([]int{9})))
	}
}

func TestRoute_NearestObstacleWins(t *testing.T) {
	b := mustBoard(t, [][]Element{
		{{Type: Wall, Position: 5}},
		{{Type: Wall, Position: 5}},
		{{Type: Line, Position: 5}},
	})
	assert.Equal(t, Cell{Ring: 1, Slot: 5}, Route(Cell{Ring: 2, Slot: 5}, b.OccupancyIndex()))
}

func TestRoute_ReflectedPhaseScansInnerToOuter(t *testing.T) {
	tests := []struct {
		name  string
		rings [][]Element
		line  Cell
		want  Cell
	}{
		{
			name:  "wall on outer ring opposite side",
			rings: [][]Element{{}, {}, {{Type: Line, Position: 1}, {Type: Wall, Position: 7}}},
			line:  Cell{Ring: 2, Slot: 1},
			want:  Cell{Ring: 2, Slot: 7},
		},
		{
			name: "inner ring checked before middle ring",
			rings: [][]Element{
				{{Type: Wall, Position: 10}},
				{{Type: Wall, Position: 10}},
				{{Type: Line, Position: 4}},
			},
			line: Cell{Ring: 2, Slot: 4},
			want: Cell{Ring: 0, Slot: 10},
		},
		{
			name:  "innermost line skips straight to reflection",
			rings: [][]Element{{{Type: Line, Position: 0}}, {{Type: Wall, Position: 6}}, {}},
			line:  Cell{Ring: 0, Slot: 0},
			want:  Cell{Ring: 1, Slot: 6},
		},
		{
			name:  "line ignores cells outward of itself on its own slot",
			rings: [][]Element{{}, {{Type: Line, Position: 2}}, {{Type: Wall, Position: 2}}},
			line:  Cell{Ring: 1, Slot: 2},
			want:  Cell{Ring: GoalRing, Slot: 8},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mustBoard(t, tt.rings)
			assert.Equal(t, tt.want, Route(tt.line, b.OccupancyIndex()))
		})
	}
}

func TestRoute_LineOriginBlocksOtherLines(t *testing.T) {
	b := mustBoard(t, [][]Element{
		{},
		{{Type: Line, Position: 0}},
		{{Type: Line, Position: 0}},
	})
	res := ResolveGoals(b.Lines(), b.OccupancyIndex(), GoalSet([]int{6}))

	require.Len(t, res.Lines, 2)
	assert.Equal(t, Cell{Ring: 1, Slot: 0}, res.Lines[0].Terminal)
	assert.Equal(t, Blocked, res.Lines[0].Outcome)
	assert.Equal(t, Cell{Ring: GoalRing, Slot: 6}, res.Lines[1].Terminal)
	assert.Equal(t, GoalFilled, res.Lines[1].Outcome)
	assert.Equal(t, []int{6}, res.Illuminated)
	assert.True(t, res.Won)
}

func TestClassify_MisplacedEscapePanics(t *testing.T) {
	assert.Panics(t, func() {
		Classify(Cell{Ring: 2, Slot: 0}, Cell{Ring: GoalRing, Slot: 5}, GoalSet([]int{5}))
	})
}

func TestResolveGoals_OpenEscapeFillsGoal(t *testing.T) {
	b := mustBoard(t, [][]Element{{}, {}, {{Type: Line, Position: 0}}})
	res := ResolveGoals(b.Lines(), b.OccupancyIndex(), GoalSet([]int{6}))

	require.Len(t, res.Lines, 1)
	line := res.Lines[0]
	assert.Equal(t, Cell{Ring: 2, Slot: 0}, line.Start)
	assert.Equal(t, Cell{Ring: GoalRing, Slot: 6}, line.Terminal)
	assert.Equal(t, Cell{Ring: OuterRing, Slot: 6}, line.DrawTerminal)
	assert.Equal(t, GoalFilled, line.Outcome)
	assert.Equal(t, "#90BE6D", line.Color)
	assert.Equal(t, []int{6}, res.Illuminated)
	assert.True(t, res.Won)
}

func TestResolveGoals_DirectPhaseBlocked(t *testing.T) {
	b := mustBoard(t, [][]Element{{}, {{Type: Wall, Position: 0}}, {{Type: Line, Position: 0}}})
	res := ResolveGoals(b.Lines(), b.OccupancyIndex(), GoalSet([]int{6}))

	require.Len(t, res.Lines, 1)
	assert.Equal(t, Cell{Ring: 1, Slot: 0}, res.Lines[0].Terminal)
	assert.Equal(t, Cell{Ring: 1, Slot: 0}, res.Lines[0].DrawTerminal)
	assert.Equal(t, Blocked, res.Lines[0].Outcome)
	assert.Equal(t, "#bc4b51", res.Lines[0].Color)
	assert.Empty(t, res.Illuminated)
	assert.False(t, res.Won)
}

func TestResolveGoals_ReflectedPhaseBlocked(t *testing.T) {
	b := mustBoard(t, [][]Element{{{Type: Wall, Position: 6}}, {}, {{Type: Line, Position: 0}}})
	res := ResolveGoals(b.Lines(), b.OccupancyIndex(), GoalSet([]int{6}))

	require.Len(t, res.Lines, 1)
	assert.Equal(t, Cell{Ring: 0, Slot: 6}, res.Lines[0].Terminal)
	assert.Equal(t, Blocked, res.Lines[0].Outcome)
	assert.Empty(t, res.Illuminated)
	assert.False(t, res.Won)
}

func TestResolveGoals_TwoGoals(t *testing.T) {
	t.Run("two gates lit then one blocked by a rotation", func(t *testing.T) {
		b := mustBoard(t, [][]Element{
			{{Type: Wall, Position: 4}},
			{{Type: Line, Position: 2}},
			{{Type: Line, Position: 9}},
		})
		goals := GoalSet([]int{3, 8})

		res := ResolveGoals(b.Lines(), b.OccupancyIndex(), goals)
		assert.Equal(t, []int{3, 8}, res.Illuminated)
		assert.True(t, res.Won)

		b.Rotate(0, -1) // wall moves onto the reflected path of the outer line
		res = ResolveGoals(b.Lines(), b.OccupancyIndex(), goals)
		assert.Equal(t, Cell{Ring: 0, Slot: 3}, res.Lines[0].Terminal)
		assert.Equal(t, Blocked, res.Lines[0].Outcome)
		assert.Equal(t, []int{8}, res.Illuminated)
		assert.False(t, res.Won)

		b.Rotate(0, 1)
		res = ResolveGoals(b.Lines(), b.OccupancyIndex(), goals)
		assert.True(t, res.Won)
	})

	t.Run("gates on one diameter block each other", func(t *testing.T) {
		b := mustBoard(t, [][]Element{{}, {{Type: Line, Position: 3}}, {{Type: Line, Position: 9}}})
		res := ResolveGoals(b.Lines(), b.OccupancyIndex(), GoalSet([]int{3, 9}))

		assert.Equal(t, Cell{Ring: 1, Slot: 3}, res.Lines[0].Terminal)
		assert.Equal(t, Cell{Ring: 2, Slot: 9}, res.Lines[1].Terminal)
		assert.Empty(t, res.Illuminated)
		assert.False(t, res.Won)
	})
}

func TestResolveGoals_UnfilledEscape(t *testing.T) {
	b := mustBoard(t, [][]Element{{}, {{Type: Line, Position: 1}}, {}})
	res := ResolveGoals(b.Lines(), b.OccupancyIndex(), GoalSet([]int{3}))

	assert.Equal(t, GoalUnfilled, res.Lines[0].Outcome)
	assert.Equal(t, "#EA9010", res.Lines[0].Color)
	assert.Empty(t, res.Illuminated)
	assert.False(t, res.Won)
}

func TestResolveGoals_InnerRingLine(t *testing.T) {
	// a ring 0 line has no direct phase and only crosses the rings on the far side
	b := mustBoard(t, [][]Element{{{Type: Line, Position: 0}}, {}, {{Type: Line, Position: 5}}})
	res := ResolveGoals(b.Lines(), b.OccupancyIndex(), GoalSet([]int{6, 11}))

	assert.Equal(t, []int{6, 11}, res.Illuminated)
	assert.True(t, res.Won)
}
