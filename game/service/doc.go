// Package service provides the business logic layer for the Ringlight puzzle server.
//
// The service package implements:
//   - Multi-session game management
//   - Command processing with per-step traces and events
//   - Move history pagination
//   - Level listing and loading
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager loads and lists level files.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Every session owns its own engine; the service serializes
// each command together with the route recomputation that follows it, so a
// reader never sees a rotated board with stale goal results.
//
// Usage:
//
//	sessionMgr := session.NewManager(logger)
//	configMgr, _ := config.NewManager("levels", "classic")
//	gameService := service.NewGameService(sessionMgr, configMgr, logger)
//
//	info, err := gameService.CreateSession(ctx, "easy")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, info.ID, "down", false)
//
// Events:
//
// Successful commands emit a rotate or select event, followed by goal_lit and
// goal_dark events for every gate whose state changed and a victory event when
// the command completes the level.
package service
