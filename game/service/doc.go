// Package service provides the business logic layer for the Street Crossing Game.
//
// The service package implements:
//   - Multi-session game management
//   - Per-session simulation tick loops
//   - Configuration management and loading
//   - Move processing and validation
//   - Session lifecycle management
//   - Move history tracking
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
// Notifier receives the post-tick state of every running session; the
// websocket hub implements it to push live state to connected clients.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine, providing session isolation, configuration management, and
// business logic orchestration. Each session maintains its own game engine
// instance with independent state, driven by a dedicated goroutine ticking on
// the configured fixed interval. Game over freezes the simulation but not the
// loop; a reset resumes it.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//	gameService.SetNotifier(hub)
//
//	// Create a new session (starts its tick loop)
//	sessionInfo, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Steer the player
//	result, err := gameService.Move(ctx, sessionInfo.ID, "up", false)
//
// Session Management:
//
// Sessions are identified by unique 4-character IDs and maintain independent
// game state. Multiple sessions can run concurrently with different
// configurations. Sessions track creation time, last access time, and move
// history for analytics and debugging.
package service
