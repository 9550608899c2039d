// Package mcp exposes the Ringlight puzzle to AI agents over the Model
// Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a REST request against
// the api package and the JSON response is rendered as text an agent can read.
//
// Tools:
//   - create_session, list_sessions, get_session
//   - game_state: board drawing, routes and lit gates
//   - move, bulk_move: commands with an optional intent note
//   - reset_game, move_history
//   - list_configs, game_instructions
//   - describe_slot: contents and routes of one ring/slot
//
// Boards are drawn one row per ring, outermost first, under a row of goal
// gates. Lines are L, walls #, dark gates G and lit gates *.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080", logger)
//	server.ServeStdio(client.GetMCPServer())
package mcp
