// Package websocket provides live board updates for the Ringlight server.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - State broadcasting after every change
//   - Connection lifecycle management with ping/pong keepalive
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub owns all
// connections. Registration, unregistration and broadcasts are serialized
// through the hub's Run loop. Each client runs a read pump and a write pump.
//
// Message Protocol:
//
// Clients connect with ?session=<id> and receive JSON messages:
//   - state_update: {session_id, event, game_state} after each command or reset
//   - game_events: {session_id, event, data} with the rotate/select/goal events of a command
//   - session_deleted: sent when the session is removed
//
// Several queued messages may share one frame, separated by newlines.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run()
//	defer hub.Stop()
//
//	hub.ServeWS(w, r, sessionID)
//	hub.BroadcastToSession(sessionID, state)
package websocket
