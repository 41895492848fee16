// Package api provides HTTP REST API handlers for the Street Crossing Game.
//
// The api package implements:
//   - RESTful endpoints for game operations
//   - Session management endpoints
//   - Configuration listing, loading and saving
//   - WebSocket upgrade handling
//   - Static file serving
//
// Endpoints:
//
// Session Management:
//   - POST   /api/sessions - Create new session (optional config_id in body)
//   - GET    /api/sessions - List all sessions (sort, order, limit params)
//   - GET    /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session and stop its tick loop
//
// Game Operations:
//   - GET  /api/sessions/{id}/state - Current game state snapshot
//   - POST /api/sessions/{id}/move - Move the pedestrian one step
//   - POST /api/sessions/{id}/reset - Reset the session to its start state
//   - GET  /api/sessions/{id}/history - Move history with pagination
//
// Configuration:
//   - GET  /api/configs - List available street configurations
//   - GET  /api/configs/{name} - Get a single configuration
//   - POST /api/configs - Save a new configuration
//
// Misc:
//   - GET /api/health - Liveness check
//   - GET /ws?session={id} - WebSocket upgrade for state streaming
//
// Request/Response Format:
//
// All endpoints accept and return JSON. Moves are sent as POST with a JSON
// body:
//
//	{
//	  "direction": "up|down|left|right",
//	  "reset": true|false // optional reset before the move
//	}
//
// The move response carries the post-move game state plus the events the
// move produced (move, crossing, game_over, reset). Continuous simulation
// updates are not polled over REST; clients subscribe to /ws and receive a
// state_update message on every tick.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	server := api.NewServer(gameService, hub)
//	http.ListenAndServe(":8080", server)
//
// Error Handling:
//
// Errors are returned as JSON with appropriate HTTP status codes:
//
//	{
//	  "error": "error message"
//	}
package api
