package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/ringlight/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	logger   *zap.Logger
	mu       sync.RWMutex
}

// getConfigID returns the config_id for a given level name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	// Fallback: return as-is or "default"
	if configName == "" {
		return "default"
	}
	return configName
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, logger *zap.Logger) GameService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   logger.Named("service"),
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.LevelConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let the session manager generate the ID
	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	s.logger.Info("session created", zap.String("session", session.ID), zap.String("config", configID))

	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     configID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState().Clone(),
		Level:          session.Config,
	}, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	_ = s.sessions.UpdateLastAccessed(sessionID)

	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     s.getConfigID(session.Config.Name),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState().Clone(),
		Level:          session.Config,
	}, nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		result = append(result, &SessionInfo{
			ID:             sess.ID,
			ConfigName:     s.getConfigID(sess.Config.Name),
			CreatedAt:      sess.CreatedAt,
			LastAccessedAt: sess.LastAccessedAt,
			GameState:      sess.Engine.GetState().Clone(),
			Level:          sess.Config,
		})
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	s.logger.Info("session deleted", zap.String("session", sessionID))
	return nil
}

// Move executes a single command for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, command string, reset bool) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	_ = s.sessions.UpdateLastAccessed(sessionID)

	events := []GameEvent{}
	if reset {
		sess.Engine.Reset()
		events = append(events, resetEvent())
	}

	before := takeSnapshot(sess.Engine)
	success := sess.Engine.Move(command)
	after := takeSnapshot(sess.Engine)
	state := sess.Engine.GetState().Clone()

	result := &MoveResult{
		Success:   success,
		GameState: state,
		Message:   state.Message,
		Events:    events,
	}

	if success {
		step := buildStep(1, sess.Engine.GetLastMove().Action, before, after)
		result.Step = &step
		result.Events = append(result.Events, commandEvents(step, before, after)...)
	}

	s.logger.Debug("move",
		zap.String("session", sessionID),
		zap.String("command", command),
		zap.Bool("success", success),
		zap.Int("ring", after.ring),
		zap.Ints("illuminated", after.illuminated),
		zap.Bool("victory", after.victory),
	)

	return result, nil
}

// BulkMove executes several commands in sequence. It stops at the first
// command that fails or once the level is solved.
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, commands []string, reset bool) (*BulkMoveResult, error) {
	if len(commands) == 0 {
		return nil, ErrNoCommands
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	_ = s.sessions.UpdateLastAccessed(sessionID)

	result := &BulkMoveResult{
		RequestedMoves: len(commands),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, resetEvent())
	}

	start := takeSnapshot(sess.Engine)
	result.StartOffsets = start.offsets
	result.StartIlluminated = start.illuminated

	// Limit commands to prevent abuse
	if len(commands) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		commands = commands[:engine.MaxBulkMoves]
	}

	for i, command := range commands {
		before := takeSnapshot(sess.Engine)
		if !sess.Engine.Move(command) {
			result.Success = false
			result.StoppedOnMove = i + 1
			result.StoppedReason = fmt.Sprintf("move %d failed: %s", i+1, sess.Engine.GetState().Message)
			if _, err := engine.ParseCommand(command); err != nil {
				result.StopReasonCode = StopInvalidCommand
			} else {
				result.StopReasonCode = StopRingLimit
			}
			break
		}

		result.MovesExecuted++
		after := takeSnapshot(sess.Engine)
		step := buildStep(i+1, sess.Engine.GetLastMove().Action, before, after)
		result.Steps = append(result.Steps, step)
		result.Events = append(result.Events, commandEvents(step, before, after)...)

		if step.Victory {
			result.StopReasonCode = StopVictory
			if i < len(commands)-1 {
				result.StoppedOnMove = i + 1
				result.StoppedReason = fmt.Sprintf("level solved on move %d", i+1)
			}
			break
		}
	}

	end := takeSnapshot(sess.Engine)
	state := sess.Engine.GetState().Clone()
	result.GameState = state
	result.EndOffsets = end.offsets
	result.EndIlluminated = end.illuminated
	result.Victory = end.victory
	result.Message = state.Message
	result.PossibleMoves = sess.Engine.GetPossibleMoves()

	s.logger.Debug("bulk move",
		zap.String("session", sessionID),
		zap.Int("requested", result.RequestedMoves),
		zap.Int("executed", result.MovesExecuted),
		zap.String("stop_reason", result.StopReasonCode),
	)

	return result, nil
}

// Reset resets a game session to its starting positions
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	_ = s.sessions.UpdateLastAccessed(sessionID)
	state := sess.Engine.Reset().Clone()
	s.logger.Debug("reset", zap.String("session", sessionID))
	return state, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	_ = s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.GetState().Clone(), nil
}

// DescribeSlot reports the contents and routes of one cell
func (s *gameServiceImpl) DescribeSlot(ctx context.Context, sessionID string, ring, slot int) (*engine.SlotInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.DescribeSlot(ring, slot)
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var moves []engine.MoveHistoryEntry
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = append(moves, history[start:end]...)
	}

	if moves == nil {
		moves = []engine.MoveHistoryEntry{}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available levels
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific level
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.LevelConfig, error) {
	return s.configs.LoadConfig(configName)
}

// snapshot captures the parts of the state that events are derived from
type snapshot struct {
	ring        int
	offsets     []int
	illuminated []int
	victory     bool
}

func takeSnapshot(e *engine.GameEngine) snapshot {
	state := e.GetState()
	return snapshot{
		ring:        e.GetActiveRing(),
		offsets:     append([]int{}, state.Offsets...),
		illuminated: append([]int{}, state.Illuminated...),
		victory:     state.Victory,
	}
}

func buildStep(idx int, action string, before, after snapshot) StepInfo {
	return StepInfo{
		Idx:          idx,
		Command:      action,
		Ring:         after.ring,
		OffsetBefore: before.offsets[after.ring],
		OffsetAfter:  after.offsets[after.ring],
		Lit:          difference(after.illuminated, before.illuminated),
		Darkened:     difference(before.illuminated, after.illuminated),
		Success:      true,
		Victory:      after.victory && !before.victory,
	}
}

// commandEvents generates the events of one successful command
func commandEvents(step StepInfo, before, after snapshot) []GameEvent {
	now := time.Now()
	events := []GameEvent{}

	cmd, _ := engine.ParseCommand(step.Command)
	if cmd.IsRotation() {
		events = append(events, GameEvent{
			Type:      "rotate",
			Message:   fmt.Sprintf("Ring %d rotated %s to offset %d", step.Ring, cmd, step.OffsetAfter),
			Timestamp: now,
			Ring:      step.Ring,
		})
	} else {
		events = append(events, GameEvent{
			Type:      "select",
			Message:   fmt.Sprintf("Ring %d selected", step.Ring),
			Timestamp: now,
			Ring:      step.Ring,
		})
	}

	for _, g := range step.Lit {
		goal := g
		events = append(events, GameEvent{
			Type:      "goal_lit",
			Message:   fmt.Sprintf("Goal at slot %d lit", goal),
			Timestamp: now,
			Ring:      engine.GoalRing,
			Goal:      &goal,
		})
	}
	for _, g := range step.Darkened {
		goal := g
		events = append(events, GameEvent{
			Type:      "goal_dark",
			Message:   fmt.Sprintf("Goal at slot %d went dark", goal),
			Timestamp: now,
			Ring:      engine.GoalRing,
			Goal:      &goal,
		})
	}

	if step.Victory {
		events = append(events, GameEvent{
			Type:      "victory",
			Message:   fmt.Sprintf("Victory! All %d goals lit!", len(after.illuminated)),
			Timestamp: now,
			Ring:      step.Ring,
		})
	}

	return events
}

func resetEvent() GameEvent {
	return GameEvent{
		Type:      "reset",
		Message:   "Game reset to initial state",
		Timestamp: time.Now(),
		Ring:      engine.OuterRing,
	}
}

// difference returns the slots of a that are missing from b, keeping a's order
func difference(a, b []int) []int {
	var out []int
	for _, x := range a {
		found := false
		for _, y := range b {
			if x == y {
				found = true
				break
			}
		}
		if !found {
			out = append(out, x)
		}
	}
	return out
}
