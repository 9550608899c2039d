package engine

import "slices"

// ElementType represents the kind of element sitting in a ring slot
type ElementType string

const (
	Line ElementType = "line"
	Wall ElementType = "wall"

	// Board geometry
	NumPositions = 12
	NumRings     = 3
	GoalRing     = NumRings // virtual ring holding the goal gates
	OuterRing    = NumRings - 1

	// Validation constants
	MaxBulkMoves        = 50
	WebSocketBufferSize = 256
)

// Outcome classifies where a line's path ended
type Outcome string

const (
	GoalFilled   Outcome = "goal_filled"
	GoalUnfilled Outcome = "goal_unfilled"
	Blocked      Outcome = "blocked"
)

// Color returns the stroke color a renderer uses for the outcome
func (o Outcome) Color() string {
	switch o {
	case GoalFilled:
		return "#90BE6D"
	case GoalUnfilled:
		return "#EA9010"
	default:
		return "#bc4b51"
	}
}

// Element is a line or wall placed on a ring
type Element struct {
	Type     ElementType `json:"type"`
	Position int         `json:"position"`
}

// Cell addresses one slot on one ring. Ring 3 is the goal boundary.
type Cell struct {
	Ring int `json:"ring"`
	Slot int `json:"slot"`
}

// LevelConfig represents a level definition loaded from JSON
type LevelConfig struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Elements    [][]Element   `json:"elements"` // indexed by ring, innermost first
	Goals       []int         `json:"goals"`
	Messages    LevelMessages `json:"messages"`
}

// LevelMessages holds the player-facing message templates of a level
type LevelMessages struct {
	Welcome      string `json:"welcome"`
	Rotated      string `json:"rotated"`       // ring, lit goals, total goals
	RingSelected string `json:"ring_selected"` // ring
	RingLimit    string `json:"ring_limit"`    // ring
	Victory      string `json:"victory"`       // total goals
	BadCommand   string `json:"bad_command"`   // raw command
}

// LineResult is the routed path of a single line element
type LineResult struct {
	Start        Cell    `json:"start"`
	Terminal     Cell    `json:"terminal"`
	DrawTerminal Cell    `json:"draw_terminal"` // terminal with the goal ring capped to the outer ring
	Outcome      Outcome `json:"outcome"`
	Color        string  `json:"color"`
}

// GameState represents the complete game state
type GameState struct {
	Rings       [][]Element        `json:"rings"`
	Offsets     []int              `json:"offsets"` // net rotation of each ring, mod NumPositions
	ActiveRing  int                `json:"active_ring"`
	Goals       []int              `json:"goals"`
	Lines       []LineResult       `json:"lines"`
	Illuminated []int              `json:"illuminated"`
	Victory     bool               `json:"victory"`
	Message     string             `json:"message"`
	ConfigName  string             `json:"config_name"`
	MoveHistory []MoveHistoryEntry `json:"move_history"`
	TotalMoves  int                `json:"total_moves"`

	// CurrentMoves tracks only the moves since the last reset. MoveHistory stays cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`
}

// MoveHistoryEntry represents a single command in the game history
type MoveHistoryEntry struct {
	Action      string `json:"action"`
	Ring        int    `json:"ring"`
	Illuminated []int  `json:"illuminated"`
	Victory     bool   `json:"victory"`
	Timestamp   int64  `json:"timestamp"`
	Success     bool   `json:"success"`
	MoveNumber  int    `json:"move_number"`
}

// Clone returns a deep copy of the state that later commands cannot touch
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}

	c := *s
	if s.Rings != nil {
		c.Rings = make([][]Element, len(s.Rings))
		for i, ring := range s.Rings {
			c.Rings[i] = slices.Clone(ring)
		}
	}
	c.Offsets = slices.Clone(s.Offsets)
	c.Goals = slices.Clone(s.Goals)
	c.Lines = slices.Clone(s.Lines)
	c.Illuminated = slices.Clone(s.Illuminated)
	c.MoveHistory = cloneHistory(s.MoveHistory)
	c.CurrentMoves = cloneHistory(s.CurrentMoves)
	return &c
}

func cloneHistory(in []MoveHistoryEntry) []MoveHistoryEntry {
	out := slices.Clone(in)
	for i := range out {
		out[i].Illuminated = slices.Clone(out[i].Illuminated)
	}
	return out
}
