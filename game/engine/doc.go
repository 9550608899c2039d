// Package engine provides the core game logic for the Ringlight rotation puzzle.
//
// The engine package implements the game mechanics including:
//   - The board model: three concentric rings of twelve slots holding lines and walls
//   - Line routing through the rings and across the center
//   - Goal resolution and the victory condition
//   - Level loading and load-time validation
//
// Core Types:
//
// Board owns element positions and produces occupancy snapshots. Route,
// Classify and ResolveGoals are pure functions over a snapshot. GameEngine
// wraps one board with the active-ring selector and recomputes every route
// after each command. LevelConfig is the level definition loaded from JSON.
//
// Usage:
//
//	config, err := engine.LoadLevelConfig("levels/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Rotate the active (outer) ring one slot clockwise
//	gameEngine.Move("right")
//	state := gameEngine.GetState()
//
// Game Rules:
//
// Each line fires toward the center. Its path stops at the first occupied
// cell on the inner rings, or, passing through the center, on the rings of the
// opposite side. A path that clears every ring lights the goal gate on the
// opposite slot of the goal ring, if one is there. The level is won when every
// goal gate is lit at once.
package engine
