package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/streetcross/crossing-game/game/engine"
	"github.com/streetcross/crossing-game/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Street Crossing Game",
		"2.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Street Crossing Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Walk the pedestrian (P) across a street of moving traffic. Each full crossing
(top and back, or bottom and back) scores one crossing. Getting hit by a
vehicle ends the game.

IMPORTANT: Traffic keeps moving in real time on the server. The state you
fetched a moment ago is already stale; re-read game_state before each move.

AVAILABLE TOOLS:
- game_state: Get current game state
- move: Single move (up/down/left/right) - requires intent explanation
- reset_game: Reset to initial state
- move_history: View past moves
- create_session: Create new game session
- get_session: Get session details
- list_sessions: List all active sessions
- list_configs: List available configurations
- game_instructions: Get comprehensive game instructions and rules
- describe_lanes: Get per-lane traffic detail (direction, speeds, gaps)

NOTE: The 'intent' parameter on the move tool serves as rubber duck debugging - explain your reasoning!`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_name": map[string]interface{}{
					"type":        "string",
					"description": "Name of the config to use (optional)",
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
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID to retrieve",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move the pedestrian one step in a direction",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"up", "down", "left", "right"},
					"description": "Direction to move",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before moving",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to initial state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_lanes",
		Description: "Get detailed per-lane traffic information: direction, vehicle positions, speeds, and the gap nearest the pedestrian's column. Useful for timing a crossing.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleDescribeLanes)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
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

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	configName, _ := args["config_name"].(string)

	body := map[string]string{}
	if configName != "" {
		body["config_name"] = configName
	}

	var session service.SessionInfo
	err := c.apiCall("POST", "/api/sessions", body, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n", session.ID, session.ConfigName)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall("GET", "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		result += fmt.Sprintf("- %s (Config: %s, Created: %s)\n",
			s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var session service.SessionInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatSessionInfo(&session)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var state engine.GameState
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatGameState(&state)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	direction, _ := args["direction"].(string)
	intent, _ := args["intent"].(string)
	reset, _ := args["reset"].(bool)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	body := map[string]interface{}{
		"direction": direction,
		"reset":     reset,
	}

	var result service.MoveResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/move", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatMoveResult(&result)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/reset", sessionID), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	params := "?"
	if page, ok := args["page"].(float64); ok {
		params += fmt.Sprintf("page=%d&", int(page))
	}
	if limit, ok := args["limit"].(float64); ok {
		params += fmt.Sprintf("limit=%d&", int(limit))
	}

	var history service.HistoryResponse
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/history%s", sessionID, params), nil, &history)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Also fetch current segment from live state
	var session service.SessionInfo
	if err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session); err != nil {
		// If fetching session fails, still return the history
		result := formatHistory(&history)
		return mcp.NewToolResultText(result), nil
	}

	result := formatHistory(&history)
	result += "\n" + formatCurrentSegment(session.GameState)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	err := c.apiCall("GET", "/api/configs", nil, &configs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Configurations:\n\n"
	for _, config := range configs {
		result += fmt.Sprintf("• %s\n  %s\n  Street: %.0f units, Lanes: %d, Tick: %dms\n\n",
			config.ConfigID, config.Description, config.StreetLength, config.LaneCount, config.TickMillis)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🚶 Street Crossing Game - Complete Instructions

GAME OBJECTIVE:
Guide the pedestrian across a multi-lane street of autonomous traffic. Reach
the far sidewalk and come back to score crossings. A collision with any
vehicle ends the game.

GAME MECHANICS:
• Movement: up/down/left/right, one step per move (step size set by config)
• Traffic runs continuously: vehicles spawn, drive, brake, and overtake on a
  server-side tick loop whether or not you move
• Crossing: each time you touch the opposite sidewalk and return, the
  crossing counter increments
• Game Over: any overlap between the pedestrian box and a vehicle box

TRAFFIC BEHAVIOR:
• BRAKE vehicles slow down and stop for pedestrians ahead of them in their
  lane, then speed back up once the way is clear
• PASS vehicles swerve around slower traffic by borrowing the neighbor lane
• NONE vehicles never react - do not step in front of them
• Emergency vehicles ignore pedestrians entirely and never slow down
• Crashed (wrecked) vehicles stop where they collided and block the lane
• Vehicles brake for each other too; a stopped vehicle backs traffic up

CROSSWALKS AND SIGNALS:
• Some configs paint a crosswalk zone with a pedestrian signal
• When the pedestrian stands inside the zone, the signal starts flashing
• A signal-gated producer stops spawning while its signal flashes, opening a
  gap in that lane
• The signal keeps flashing until the pedestrian leaves the zone

🤖 AI AGENTS - CRITICAL SUCCESS STRATEGIES:

⏱️ THE STATE IS ALWAYS STALE:
The simulation advances between your tool calls. Strategies that work:
1. Fetch game_state immediately before each move
2. Check describe_lanes for the gap nearest your column
3. Cross one lane at a time; stand on lane boundaries only briefly
4. Prefer columns behind a BRAKE vehicle that has already stopped

🚦 READING THE TRAFFIC:
- Each lane flows one direction; vehicles list their x, speed, and avoidance
- A vehicle's time to reach your column ≈ distance / speed (in ticks)
- speed 0 with crashed=false means the vehicle is braking for something -
  it will accelerate again when the path clears
- crashed=true vehicles never move again; use them as shields

🚨 CRITICAL PITFALLS TO AVOID:
- ❌ Planning a full crossing from one stale snapshot
- ❌ Stepping into a lane in front of a NONE or emergency vehicle
- ❌ Waiting on the street instead of on a sidewalk or behind a wreck
- ❌ Ignoring PASS vehicles: they can swing into the lane you thought was clear

MOVEMENT COMMANDS:
- up, down, left, right - single steps in screen coordinates
  (up decreases y, toward the top sidewalk)
- Reset parameter available for fresh starts

SESSION MANAGEMENT:
- Multiple game sessions can run simultaneously
- Each session has a unique 4-character ID
- Sessions maintain independent state, traffic, and configuration
- Use session-specific tools for multi-game management

Remember: this is a timing game. Watch the lanes, wait for the gap, and
commit to one lane at a time. Good luck crossing! 🚗🚶🚗`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeLanes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var state engine.GameState
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(state.Lanes) == 0 {
		return mcp.NewToolResultText("No lanes in this configuration."), nil
	}

	playerCenter := state.Player.X + state.Player.Width/2

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Pedestrian at (%.0f,%.0f), column center %.0f\n",
		state.Player.X, state.Player.Y, playerCenter))
	b.WriteString(fmt.Sprintf("Street: x 0..%.0f, lanes top to bottom:\n\n", state.StreetLength))

	for i, lane := range state.Lanes {
		b.WriteString(fmt.Sprintf("Lane %d: direction=%s y=%.0f..%.0f\n",
			i, lane.Direction, lane.TopY, lane.BottomY))

		vehicles := vehiclesInLane(&state, i)
		if len(vehicles) == 0 {
			b.WriteString("  (empty)\n\n")
			continue
		}

		for _, o := range vehicles {
			status := ""
			if o.Crashed {
				status = " WRECKED"
			} else if o.Speed == 0 {
				status = " stopped"
			}
			extra := ""
			if o.Emergency {
				extra = " emergency"
			}
			b.WriteString(fmt.Sprintf("  - %s x=%.0f..%.0f speed=%.1f avoidance=%s%s%s\n",
				o.ID, o.X, o.X+o.Width, o.Speed, o.Avoidance, extra, status))
		}

		b.WriteString(fmt.Sprintf("  Nearest threat to your column: %s\n\n",
			nearestThreat(vehicles, lane.Direction, playerCenter)))
	}

	// Signal state, when present
	for _, sign := range state.Signs {
		flashing := "idle"
		if sign.Flashing {
			flashing = "FLASHING (gated lane paused)"
		}
		b.WriteString(fmt.Sprintf("Signal at (%.0f,%.0f): %s\n", sign.X, sign.Y, flashing))
	}

	return mcp.NewToolResultText(b.String()), nil
}

// vehiclesInLane filters the state's obstacles to one lane, sorted by x.
func vehiclesInLane(state *engine.GameState, laneIndex int) []engine.ObstacleView {
	var out []engine.ObstacleView
	for _, o := range state.Obstacles {
		if o.LaneIndex == laneIndex {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].X < out[j].X })
	return out
}

// nearestThreat describes the closest approaching vehicle relative to the
// pedestrian's column, with a rough ETA in simulation ticks.
func nearestThreat(vehicles []engine.ObstacleView, direction string, column float64) string {
	best := ""
	bestDist := -1.0

	for _, o := range vehicles {
		if o.Crashed {
			continue
		}
		var dist float64
		if direction == "right" {
			dist = column - (o.X + o.Width)
		} else {
			dist = o.X - column
		}
		if dist < 0 {
			continue // already past the column
		}
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			if o.Speed > 0 {
				best = fmt.Sprintf("%s at %.0f units, ~%.0f ticks away", o.ID, dist, dist/o.Speed)
			} else {
				best = fmt.Sprintf("%s at %.0f units, currently stopped", o.ID, dist)
			}
		}
	}

	if best == "" {
		return "none approaching"
	}
	return best
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder

	// Header (include cumulative total moves)
	result.WriteString(fmt.Sprintf("Position: (%.0f,%.0f) | Crossings: %d | Moves: %d | Tick: %d\n",
		state.Player.X, state.Player.Y, state.Crossings, state.TotalMoves, state.Tick))

	// Side the pedestrian is on
	streetBottom := state.StreetTop + state.StreetWidth
	switch {
	case state.Player.Y+state.Player.Height <= state.StreetTop:
		result.WriteString("Location: top sidewalk (safe)\n")
	case state.Player.Y >= streetBottom:
		result.WriteString("Location: bottom sidewalk (safe)\n")
	default:
		result.WriteString("Location: ON THE STREET\n")
	}
	result.WriteString("\n")

	// Lane summary
	for i, lane := range state.Lanes {
		count := 0
		wrecked := 0
		for _, o := range state.Obstacles {
			if o.LaneIndex == i {
				count++
				if o.Crashed {
					wrecked++
				}
			}
		}
		line := fmt.Sprintf("Lane %d (%s): %d vehicles", i, lane.Direction, count)
		if wrecked > 0 {
			line += fmt.Sprintf(", %d wrecked", wrecked)
		}
		result.WriteString(line + "\n")
	}

	// Signal state
	for _, sign := range state.Signs {
		if sign.Flashing {
			result.WriteString("Pedestrian signal: FLASHING\n")
		}
	}

	// Status
	if state.GameOver {
		if state.Crashed {
			result.WriteString("\n💥 GAME OVER - hit by a vehicle")
		} else {
			result.WriteString("\n💀 GAME OVER")
		}
	}

	if state.Message != "" {
		result.WriteString(fmt.Sprintf("\nMessage: %s", state.Message))
	}

	return result.String()
}

func formatMoveResult(result *service.MoveResult) string {
	response := ""
	if result.Success {
		response = "✓ Move successful\n"
	} else {
		response = "✗ Move failed\n"
	}

	if len(result.Events) > 0 {
		response += "Events:\n"
		for _, event := range result.Events {
			response += fmt.Sprintf("- %s: %s\n", event.Type, event.Message)
		}
	}

	response += "\n" + formatGameState(result.GameState)
	return response
}

func formatHistory(history *service.HistoryResponse) string {
	result := fmt.Sprintf("Move History (Page %d/%d) — Total (cumulative): %d\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for i, move := range history.Moves {
		num := (history.Page-1)*history.PageSize + i + 1
		status := "✓"
		if !move.Success {
			status = "✗"
		}
		result += fmt.Sprintf("%d. %s %s (%.0f,%.0f)→(%.0f,%.0f)\n",
			num, move.Action, status,
			move.FromPosition.X, move.FromPosition.Y,
			move.ToPosition.X, move.ToPosition.Y)
	}

	return result
}

func formatCurrentSegment(state *engine.GameState) string {
	if state == nil {
		return "Current Segment: unavailable"
	}
	moves := state.CurrentMoves
	total := state.CurrentMovesCount
	header := fmt.Sprintf("Current Move Segment — Moves: %d\n\n", total)
	if len(moves) == 0 {
		return header + "(no moves in current segment)"
	}
	var b strings.Builder
	b.WriteString(header)
	for i, move := range moves {
		status := "✓"
		if !move.Success {
			status = "✗"
		}
		// i is zero-based within the segment
		b.WriteString(fmt.Sprintf("%d. %s %s\n", i+1, move.Action, status))
	}
	return b.String()
}
