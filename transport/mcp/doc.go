// Package mcp provides Model Context Protocol server implementation for the Street Crossing Game.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions for game operations
//   - Session-aware command execution
//   - Stdio transport via the REST API proxy
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - game_state: Get current game state with lane and traffic summary
//   - move: Execute single directional movement
//   - reset_game: Reset game to initial state
//   - move_history: Retrieve move history with pagination
//   - create_session: Create new game session with config selection
//   - get_session: Get specific session details
//   - list_sessions: List all active sessions
//   - list_configs: List available game configurations
//   - describe_lanes: Per-lane traffic detail for timing a crossing
//   - game_instructions: Rules and strategy notes
//
// Architecture:
//
// The client is a thin proxy: every tool call is translated into an HTTP
// request against the REST API, so the MCP process carries no game state of
// its own. The simulation keeps ticking server-side between tool calls,
// which is why game_state and describe_lanes exist as separate cheap reads.
//
// Session Management:
//
// All game tools take a session_id parameter for multi-session gameplay.
// AI agents can manage multiple concurrent game sessions independently.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
