// Package session provides session management for the Ringlight puzzle server.
//
// The session package implements:
//   - Thread-safe in-memory session storage and retrieval
//   - Unique session ID generation
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the session manager that handles all session operations. Each
// session (service.Session) owns its own engine instance, so rotations in one
// session never affect another.
//
// Session Identifiers:
//
// Generated IDs are the first eight hex characters of a random UUID. Lookups
// are case-insensitive. Callers may also pick their own ID.
//
// Usage:
//
//	manager := session.NewManager(logger)
//
//	sess, err := manager.Create("", level)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//
//	// Drop sessions idle for a day
//	removed := manager.CleanupExpiredSessions(24 * time.Hour)
package session
