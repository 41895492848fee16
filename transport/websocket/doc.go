// Package websocket provides WebSocket transport for the Street Crossing Game.
//
// The websocket package implements:
//   - Real-time state streaming to connected clients
//   - Session-aware WebSocket connections
//   - Automatic state broadcasting on every simulation tick
//   - Connection lifecycle management
//   - Message routing and handling
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by a dedicated
// goroutine that manages reading, writing, and cleanup. All session
// bookkeeping happens on the hub's event loop; broadcasts and tick
// notifications are funneled through a single channel.
//
// Message Protocol:
//
// Messages are JSON-encoded with the following structure:
//   - Outgoing: {session_id: "abc1", event: "state_update", game_state: {...}}
//
// Clients do not send game commands over the socket; moves go through the
// REST API and the resulting state arrives here.
//
// Session Integration:
//
// WebSocket connections are session-aware. Clients specify their session ID
// via query parameter (?session=abc1) when establishing the connection.
// State updates are broadcast only to clients connected to the same session.
//
// The Hub implements service.Notifier, so the per-session tick loops push
// the post-tick state straight into the hub:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	gameService.SetNotifier(hub)
//
// Connection Lifecycle:
//
// 1. Client connects with session ID
// 2. Connection registered with hub
// 3. Client receives a state update on every simulation tick
// 4. Disconnection triggers cleanup
//
// Concurrency:
//
// The hub and client handlers are designed for concurrent operation.
// Multiple clients can connect, disconnect, and receive state updates
// simultaneously without blocking each other.
package websocket
