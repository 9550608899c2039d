package engine

import (
	"fmt"
	"time"

	"github.com/zyedidia/generic/mapset"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	Reset() *GameState
	IsVictory() bool
	GetActiveRing() int

	// Commands
	Move(command string) bool
	CanMove(command string) bool
	GetPossibleMoves() []string

	// Configuration
	GetConfig() *LevelConfig
	SetConfig(config *LevelConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry

	// Goals
	GetIlluminatedGoals() []int
	GetRemainingGoals() int
	DescribeSlot(ring, slot int) (*SlotInfo, error)
}

// GameEngine implements the Engine interface. It is not safe for concurrent
// use; callers serialize each command together with its recomputation.
type GameEngine struct {
	state      *GameState
	config     *LevelConfig
	board      *Board
	goals      mapset.Set[int]
	activeRing int
}

// NewEngine creates a new game engine with the provided level
func NewEngine(config *LevelConfig) (*GameEngine, error) {
	if err := ValidateLevelConfig(config); err != nil {
		return nil, err
	}

	e := &GameEngine{}
	if err := e.load(config); err != nil {
		return nil, err
	}
	return e, nil
}

// NewEngineWithDefaults creates a new game engine with the built-in level
func NewEngineWithDefaults() *GameEngine {
	e, err := NewEngine(DefaultLevelConfig())
	if err != nil {
		panic(fmt.Sprintf("engine: built-in level is invalid: %v", err))
	}
	return e
}

// load resets the board and selector from config and recomputes routing
func (e *GameEngine) load(config *LevelConfig) error {
	board, err := NewBoard(config.Elements)
	if err != nil {
		return err
	}

	e.config = withDefaultMessages(config)
	e.board = board
	e.goals = GoalSet(config.Goals)
	e.activeRing = OuterRing
	e.state = &GameState{
		Goals:        sortedSlots(e.goals),
		Message:      e.config.Messages.Welcome,
		ConfigName:   config.Name,
		MoveHistory:  []MoveHistoryEntry{},
		CurrentMoves: []MoveHistoryEntry{},
	}
	e.recompute()
	return nil
}

// recompute routes every line against a fresh occupancy snapshot
func (e *GameEngine) recompute() Resolution {
	res := ResolveGoals(e.board.Lines(), e.board.OccupancyIndex(), e.goals)

	e.state.Rings = e.board.Rings()
	e.state.Offsets = e.board.Offsets()
	e.state.ActiveRing = e.activeRing
	e.state.Lines = res.Lines
	e.state.Illuminated = res.Illuminated
	e.state.Victory = res.Won
	return res
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// Reset restores the level's starting positions, keeping cumulative history
func (e *GameEngine) Reset() *GameState {
	prevHistory := e.state.MoveHistory
	prevTotal := e.state.TotalMoves

	if err := e.load(e.config); err != nil {
		// config was validated when the engine was built
		panic(fmt.Sprintf("engine: reset failed: %v", err))
	}

	e.state.MoveHistory = prevHistory
	e.state.TotalMoves = prevTotal
	return e.state
}

// IsVictory returns whether every goal gate is lit
func (e *GameEngine) IsVictory() bool {
	return e.state.Victory
}

// GetActiveRing returns the ring the next rotation affects
func (e *GameEngine) GetActiveRing() int {
	return e.activeRing
}

// Move applies a single command and recomputes every line route
func (e *GameEngine) Move(command string) bool {
	cmd, err := ParseCommand(command)
	if err != nil {
		e.state.Message = fmt.Sprintf(e.config.Messages.BadCommand, command)
		e.addMoveToHistory(command, false)
		return false
	}

	if cmd.IsRotation() {
		e.board.Rotate(e.activeRing, cmd.Delta())
		res := e.recompute()
		if res.Won {
			e.state.Message = fmt.Sprintf(e.config.Messages.Victory, len(e.state.Goals))
		} else {
			e.state.Message = fmt.Sprintf(e.config.Messages.Rotated,
				e.activeRing, len(res.Illuminated), len(e.state.Goals))
		}
		e.addMoveToHistory(string(cmd), true)
		return true
	}

	target := e.activeRing + cmd.Delta()
	if target < 0 || target > OuterRing {
		e.state.Message = fmt.Sprintf(e.config.Messages.RingLimit, e.activeRing)
		e.addMoveToHistory(string(cmd), false)
		return false
	}

	e.activeRing = target
	e.recompute()
	e.state.Message = fmt.Sprintf(e.config.Messages.RingSelected, e.activeRing)
	e.addMoveToHistory(string(cmd), true)
	return true
}

// CanMove checks whether a command would change the game
func (e *GameEngine) CanMove(command string) bool {
	cmd, err := ParseCommand(command)
	if err != nil {
		return false
	}
	if cmd.IsRotation() {
		return true
	}
	target := e.activeRing + cmd.Delta()
	return target >= 0 && target <= OuterRing
}

// GetPossibleMoves returns every command that currently applies
func (e *GameEngine) GetPossibleMoves() []string {
	var possible []string
	for _, cmd := range AllCommands() {
		if e.CanMove(cmd) {
			possible = append(possible, cmd)
		}
	}
	return possible
}

// GetConfig returns the current level
func (e *GameEngine) GetConfig() *LevelConfig {
	return e.config
}

// SetConfig switches to a new level and starts it fresh
func (e *GameEngine) SetConfig(config *LevelConfig) error {
	if err := ValidateLevelConfig(config); err != nil {
		return err
	}
	return e.load(config)
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}

// GetIlluminatedGoals returns the lit goal slots in ascending order
func (e *GameEngine) GetIlluminatedGoals() []int {
	return e.state.Illuminated
}

// GetRemainingGoals returns how many goal gates are still dark
func (e *GameEngine) GetRemainingGoals() int {
	return len(e.state.Goals) - len(e.state.Illuminated)
}

func (e *GameEngine) addMoveToHistory(action string, success bool) {
	entry := MoveHistoryEntry{
		Action:      action,
		Ring:        e.activeRing,
		Illuminated: append([]int{}, e.state.Illuminated...),
		Victory:     e.state.Victory,
		Timestamp:   time.Now().Unix(),
		Success:     success,
		MoveNumber:  e.state.TotalMoves + 1,
	}
	e.state.MoveHistory = append(e.state.MoveHistory, entry)
	e.state.TotalMoves++

	e.state.CurrentMoves = append(e.state.CurrentMoves, entry)
	e.state.CurrentMovesCount++
}
