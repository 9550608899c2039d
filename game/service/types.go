package service

import (
	"time"

	"github.com/wricardo/ringlight/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string              `json:"id"`
	ConfigName     string              `json:"config_name"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	GameState      *engine.GameState   `json:"game_state"`
	Level          *engine.LevelConfig `json:"level"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success   bool              `json:"success"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []GameEvent       `json:"events,omitempty"`
	Step      *StepInfo         `json:"step,omitempty"`
}

// Stop reason codes reported by BulkMove
const (
	StopInvalidCommand = "invalid_command"
	StopRingLimit      = "ring_limit"
	StopVictory        = "victory"
)

// BulkMoveResult contains the result of multiple commands
type BulkMoveResult struct {
	// Summary
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // invalid_command|ring_limit|victory
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the command that caused the stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartOffsets     []int `json:"start_offsets"`
	EndOffsets       []int `json:"end_offsets"`
	StartIlluminated []int `json:"start_illuminated"`
	EndIlluminated   []int `json:"end_illuminated"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	Victory       bool     `json:"victory"`
	Message       string   `json:"message,omitempty"`
	PossibleMoves []string `json:"possible_moves,omitempty"`
}

// StepInfo is a compact record of one executed command
type StepInfo struct {
	Idx          int    `json:"idx"`
	Command      string `json:"command"`
	Ring         int    `json:"ring"` // active ring after the command
	OffsetBefore int    `json:"offset_before"`
	OffsetAfter  int    `json:"offset_after"`
	Lit          []int  `json:"lit,omitempty"`      // goals that became lit
	Darkened     []int  `json:"darkened,omitempty"` // goals that went dark
	Success      bool   `json:"success"`
	Victory      bool   `json:"victory,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string    `json:"type"` // "rotate", "select", "goal_lit", "goal_dark", "victory", "reset"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Ring      int       `json:"ring"`
	Goal      *int      `json:"goal,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a level file
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Lines       int    `json:"lines"`
	Walls       int    `json:"walls"`
	Goals       int    `json:"goals"`
}
