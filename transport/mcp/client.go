package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/wricardo/ringlight/game/engine"
	"github.com/wricardo/ringlight/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
	logger     *zap.Logger
}

// NewClient creates a new MCP client that calls the REST API at baseURL
func NewClient(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger.Named("mcp"),
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Ringlight",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Ringlight - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Rotate three concentric rings until every goal gate on the outer boundary is lit.
Each line element shoots inward across the center and out the opposite side.
Walls and other lines stop it.

AVAILABLE TOOLS:
- game_state: Board, routes and lit gates
- move: One command (left/right rotate, up/down select) - requires intent explanation
- bulk_move: Several commands at once - requires intent explanation
- reset_game: Back to the starting positions
- move_history: Past commands
- create_session: New session
- get_session: Session details
- list_sessions: Active sessions
- list_configs: Available levels
- game_instructions: Full rules
- describe_slot: What sits at one ring/slot and which routes touch it

NOTE: The 'intent' parameter on move/bulk_move serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionSchema(extra map[string]interface{}, required ...string) mcp.ToolInputSchema {
	props := map[string]interface{}{
		"session_id": map[string]interface{}{
			"type":        "string",
			"description": "Session ID",
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: props,
		Required:   append([]string{"session_id"}, required...),
	}
}

var commandEnum = []string{"left", "right", "up", "down", "ccw", "cw", "out", "in"}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional level selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Level to play (see list_configs). Omit for the default level.",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: sessionSchema(nil),
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board, line routes and lit gates",
		InputSchema: sessionSchema(nil),
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Rotate the active ring (left/right) or move the ring selector (up/down)",
		InputSchema: sessionSchema(map[string]interface{}{
			"command": map[string]interface{}{
				"type":        "string",
				"enum":        commandEnum,
				"description": "Command to execute",
			},
			"intent": map[string]interface{}{
				"type":        "string",
				"description": "Brief explanation of the intent behind this command (serves as a rubber duck to help explain your reasoning)",
			},
			"reset": map[string]interface{}{
				"type":        "boolean",
				"description": "Reset before executing",
			},
		}, "command"),
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: fmt.Sprintf("Execute up to %d commands in sequence. Stops at the first failure or when the level is solved.", engine.MaxBulkMoves),
		InputSchema: sessionSchema(map[string]interface{}{
			"moves": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "string",
					"enum": commandEnum,
				},
				"description": "Commands to execute in order",
			},
			"intent": map[string]interface{}{
				"type":        "string",
				"description": "Brief explanation of the intent behind this sequence (serves as a rubber duck to help explain your reasoning)",
			},
			"reset": map[string]interface{}{
				"type":        "boolean",
				"description": "Reset before executing",
			},
		}, "moves"),
	}, c.handleBulkMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the board to its starting positions",
		InputSchema: sessionSchema(nil),
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get command history for a session",
		InputSchema: sessionSchema(map[string]interface{}{
			"page": map[string]interface{}{
				"type":        "integer",
				"description": "Page number",
			},
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Items per page",
			},
		}),
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available levels",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the complete rules of the puzzle",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_slot",
		Description: "Describe one cell: its element, the route of a line starting there, and lines stopped there. Ring 3 addresses the goal gates.",
		InputSchema: sessionSchema(map[string]interface{}{
			"ring": map[string]interface{}{
				"type":        "integer",
				"description": fmt.Sprintf("Ring index, 0 (innermost) to %d (goal gates)", engine.GoalRing),
			},
			"slot": map[string]interface{}{
				"type":        "integer",
				"description": fmt.Sprintf("Slot index, 0 to %d", engine.NumPositions-1),
			},
		}, "ring", "slot"),
	}, c.handleDescribeSlot)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Argument helpers

func stringArg(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return v
}

func boolArg(args map[string]interface{}, key string) bool {
	v, _ := args[key].(bool)
	return v
}

// intArg accepts JSON numbers, which decode as float64
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

func requireSession(args map[string]interface{}) (string, *mcp.CallToolResult) {
	id := stringArg(args, "session_id")
	if id == "" {
		return "", mcp.NewToolResultError("session_id is required")
	}
	return id, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	configID := stringArg(args, "config_id")
	if configID == "" {
		configID = stringArg(args, "config_name")
	}

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	c.logger.Debug("session created", zap.String("session", session.ID))
	result := fmt.Sprintf("Created session: %s\nLevel: %s\n\n%s", session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		lit, total := 0, 0
		if s.GameState != nil {
			lit, total = len(s.GameState.Illuminated), len(s.GameState.Goals)
		}
		fmt.Fprintf(&b, "- %s (Level: %s, Gates: %d/%d, Created: %s)\n",
			s.ID, s.ConfigName, lit, total, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(request.GetArguments())
	if errResult != nil {
		return errResult, nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(request.GetArguments())
	if errResult != nil {
		return errResult, nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}

	command := stringArg(args, "command")
	if command == "" {
		command = stringArg(args, "direction")
	}
	c.logger.Debug("move", zap.String("session", sessionID), zap.String("command", command),
		zap.String("intent", stringArg(args, "intent")))

	body := map[string]interface{}{
		"command": command,
		"reset":   boolArg(args, "reset"),
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}

	var moves []string
	switch raw := args["moves"].(type) {
	case []interface{}:
		for _, m := range raw {
			if move, ok := m.(string); ok {
				moves = append(moves, move)
			}
		}
	case []string:
		moves = raw
	}
	c.logger.Debug("bulk move", zap.String("session", sessionID), zap.Strings("moves", moves),
		zap.String("intent", stringArg(args, "intent")))

	body := map[string]interface{}{
		"moves": moves,
		"reset": boolArg(args, "reset"),
	}

	var result service.BulkMoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk-move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkMoveResult(sessionID, &result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(request.GetArguments())
	if errResult != nil {
		return errResult, nil
	}

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Levels:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Lines: %d, Walls: %d, Goals: %d\n\n",
			config.Name, config.ConfigID, config.Description, config.Lines, config.Walls, config.Goals)
	}

	return mcp.NewToolResultText(b.String()), nil
}

const instructions = `Ringlight - Complete Instructions

BOARD:
• Three concentric rings (0 innermost, 2 outermost) with 12 slots each, numbered clockwise.
• A virtual ring 3 outside the board holds the goal gates.
• Each slot holds at most one element: a line (L) or a wall (#).

ROUTING:
• A line at (ring R, slot S) first travels inward along slot S, checking rings R-1 down to 0.
  The first occupied cell stops it.
• If nothing is in the way it crosses the center and travels outward along the opposite
  slot (S+6 mod 12), checking rings 0 to 2. The first occupied cell stops it. A line may be
  stopped by its own starting cell when it sits on the opposite side.
• If it reaches the boundary it exits at ring 3 on the opposite slot.
  - A goal gate there is lit (green route).
  - Otherwise the line escapes unfilled (orange route).
• Stopped lines are blocked (red route).

COMMANDS:
• left / ccw: rotate the selected ring one slot counterclockwise
• right / cw: rotate the selected ring one slot clockwise
• up / out: select the next ring outward (stops at ring 2)
• down / in: select the next ring inward (stops at ring 0)
The outer ring is selected at the start.

VICTORY:
Every goal gate is lit at the same time. Rotating after victory is allowed and
may darken gates again.

TIPS:
• Inner rings hide or reveal paths for the outer lines; rotate them first.
• describe_slot on ring 3 tells you whether a gate is lit.
• bulk_move stops on the move that solves the level, so long sequences are safe.
`

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeSlot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}

	ring, okRing := intArg(args, "ring")
	slot, okSlot := intArg(args, "slot")
	if !okRing || !okSlot {
		return mcp.NewToolResultError("ring and slot are required integers"), nil
	}
	if ring < 0 || ring > engine.GoalRing || slot < 0 || slot >= engine.NumPositions {
		return mcp.NewToolResultError(fmt.Sprintf("(%d,%d) is off the board: ring 0-%d, slot 0-%d",
			ring, slot, engine.GoalRing, engine.NumPositions-1)), nil
	}

	var info engine.SlotInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, fmt.Sprintf("/slots/%d/%d", ring, slot)), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSlotInfo(&info)), nil
}
