package main

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	headerHeight  = 80 // Taller header for multi-session stats
	footerHeight  = 24
	screenWidth   = 800
	screenHeight  = 520
	baseURL       = "http://localhost:8080"
	crashDuration = 400 * time.Millisecond // Crash animation duration
)

// ScreenType represents different screens in the app
type ScreenType int

const (
	ScreenWelcome ScreenType = iota
	ScreenGame
)

// Pedestrian colors for different sessions
var playerColors = []color.RGBA{
	{255, 100, 100, 255}, // Red
	{100, 100, 255, 255}, // Blue
	{100, 255, 100, 255}, // Green
	{255, 255, 100, 255}, // Yellow
	{255, 100, 255, 255}, // Magenta
	{100, 255, 255, 255}, // Cyan
	{255, 165, 0, 255},   // Orange
	{128, 0, 128, 255},   // Purple
	{255, 192, 203, 255}, // Pink
}

// LineStyle mirrors the server's lane line styling
type LineStyle struct {
	Color       string    `json:"color"`
	Width       float64   `json:"width"`
	Dashed      bool      `json:"dashed"`
	Hidden      bool      `json:"hidden"`
	DashPattern []float64 `json:"dash_pattern,omitempty"`
}

// Player represents the pedestrian
type Player struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Step   float64 `json:"step"`
	Image  string  `json:"image"`
}

// Obstacle represents a vehicle on the street
type Obstacle struct {
	ID        string  `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Image     string  `json:"image"`
	Speed     float64 `json:"speed"`
	Direction string  `json:"direction"`
	Avoidance string  `json:"avoidance"`
	Emergency bool    `json:"emergency"`
	Crashed   bool    `json:"crashed"`
	LaneIndex int     `json:"lane_index"`
}

// Lane represents one traffic lane
type Lane struct {
	Direction  string    `json:"direction"`
	Width      float64   `json:"width"`
	CenterY    float64   `json:"center_y"`
	TopY       float64   `json:"top_y"`
	BottomY    float64   `json:"bottom_y"`
	TopLine    LineStyle `json:"top_line"`
	BottomLine LineStyle `json:"bottom_line"`
}

// Sign represents a crosswalk sign
type Sign struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Image    string  `json:"image"`
	Flashing bool    `json:"flashing"`
}

// GameState represents the state from the crossing game server
type GameState struct {
	Tick         int64      `json:"tick"`
	Player       Player     `json:"player"`
	Obstacles    []Obstacle `json:"obstacles"`
	Lanes        []Lane     `json:"lanes"`
	Signs        []Sign     `json:"signs"`
	StreetTop    float64    `json:"street_top"`
	StreetWidth  float64    `json:"street_width"`
	StreetLength float64    `json:"street_length"`
	AreaHeight   float64    `json:"area_height"`
	Crashed      bool       `json:"crashed"`
	GameOver     bool       `json:"game_over"`
	Crossings    int        `json:"crossings"`
	Message      string     `json:"message"`
	ConfigName   string     `json:"config_name"`
	MoveHistory  []Move     `json:"move_history,omitempty"`
	TotalMoves   int        `json:"total_moves"`
}

// Move represents a single move in history
type Move struct {
	Action     string   `json:"action"`
	MoveNumber int      `json:"move_number"`
	Success    bool     `json:"success"`
	FromPos    Position `json:"from_position"`
	ToPos      Position `json:"to_position"`
}

// Position represents a point in street coordinates
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// WSMessage represents WebSocket message wrapper
type WSMessage struct {
	SessionID string     `json:"session_id"`
	GameState *GameState `json:"game_state,omitempty"`
	Event     string     `json:"event,omitempty"`
}

// SessionData holds data for a single session
type SessionData struct {
	sessionID  string
	state      *GameState
	wsConn     *websocket.Conn
	lastUpdate time.Time
	crashTime  time.Time // When a crash happened
	isCrashing bool      // Currently showing crash animation
}

// SessionListItem represents a session from the server
type SessionListItem struct {
	ID         string     `json:"id"`
	ConfigName string     `json:"config_name"`
	CreatedAt  string     `json:"created_at"`
	GameState  *GameState `json:"game_state"`
}

// ConfigListItem represents a game configuration
type ConfigListItem struct {
	ConfigID    string `json:"config_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Game represents the desktop game client
type Game struct {
	sessions         []*SessionData
	activeSession    int // index of currently active session
	stateMutex       sync.RWMutex
	currentScreen    ScreenType
	welcomeScreen    *WelcomeScreen
	selectedSessions map[string]bool // session IDs selected to play
}

// WelcomeScreen manages the welcome screen state
type WelcomeScreen struct {
	availableSessions []SessionListItem
	availableConfigs  []ConfigListItem
	scrollOffset      int
	cursorPos         int
	loading           bool
	errorMsg          string
	newSessionConfig  string // selected config for new session
}

// NewGame creates a new game instance with initial sessions
func NewGame(sessionIDs []string) *Game {
	g := &Game{
		sessions:         make([]*SessionData, 0),
		activeSession:    0,
		currentScreen:    ScreenWelcome,
		selectedSessions: make(map[string]bool),
		welcomeScreen: &WelcomeScreen{
			availableSessions: make([]SessionListItem, 0),
			availableConfigs:  make([]ConfigListItem, 0),
			cursorPos:         0,
			scrollOffset:      0,
		},
	}

	// If session IDs provided, skip welcome screen and go straight to game
	if len(sessionIDs) > 0 {
		for _, sid := range sessionIDs {
			g.addSession(sid)
		}
		g.currentScreen = ScreenGame
	} else {
		// Load available sessions and configs for welcome screen
		g.loadWelcomeData()
	}

	return g
}

// addSession adds a new session to the game with optional config
func (g *Game) addSession(sessionID string) {
	session := &SessionData{
		sessionID:  sessionID,
		lastUpdate: time.Now(),
	}

	// If no session ID provided, create one with same config as first session
	if sessionID == "" {
		configID := ""
		if len(g.sessions) > 0 && g.sessions[0].state != nil {
			configID = g.sessions[0].state.ConfigName
		}
		if err := g.createSessionWithConfig(session, configID); err != nil {
			log.Printf("Failed to create session: %v", err)
			return
		}
	}

	g.sessions = append(g.sessions, session)

	// Connect to WebSocket
	if err := g.connectWebSocket(session); err != nil {
		log.Printf("Failed to connect WebSocket for %s: %v (falling back to polling)", session.sessionID, err)
	} else {
		// Start WebSocket listener
		go g.listenWebSocket(session)
	}

	// Initial state fetch
	g.fetchGameState(session)
}

// createSessionWithConfig creates a new game session with specific config
func (g *Game) createSessionWithConfig(session *SessionData, configID string) error {
	url := fmt.Sprintf("%s/api/sessions", baseURL)

	payload := "{}"
	if configID != "" {
		payload = fmt.Sprintf(`{"config_id":"%s"}`, configID)
	}

	resp, err := http.Post(url, "application/json", strings.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse session response: %v (body: %s)", err, string(body))
	}

	session.sessionID = result.ID
	log.Printf("Created new session: %s (config: %s)", session.sessionID, configID)
	return nil
}

// connectWebSocket establishes WebSocket connection
func (g *Game) connectWebSocket(session *SessionData) error {
	if session.sessionID == "" {
		return fmt.Errorf("no session ID set")
	}

	wsURL := url.URL{Scheme: "ws", Host: "localhost:8080", Path: "/ws"}
	q := wsURL.Query()
	q.Set("session", session.sessionID)
	wsURL.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		return err
	}

	session.wsConn = conn
	log.Printf("WebSocket connected for session %s", session.sessionID)
	return nil
}

// listenWebSocket listens for WebSocket updates
func (g *Game) listenWebSocket(session *SessionData) {
	defer func() {
		if session.wsConn != nil {
			session.wsConn.Close()
		}
	}()

	for {
		_, message, err := session.wsConn.ReadMessage()
		if err != nil {
			log.Printf("WebSocket read error for %s: %v", session.sessionID, err)
			return
		}

		// WebSocket sends wrapped message
		var wsMsg WSMessage
		if err := json.Unmarshal(message, &wsMsg); err != nil {
			log.Printf("WebSocket JSON parse error: %v", err)
			continue
		}

		if wsMsg.GameState == nil {
			continue
		}

		g.applyState(session, wsMsg.GameState)
	}
}

// fetchGameState gets the current game state from the server
func (g *Game) fetchGameState(session *SessionData) error {
	if session.sessionID == "" {
		return fmt.Errorf("no session ID set")
	}

	url := fmt.Sprintf("%s/api/sessions/%s/state", baseURL, session.sessionID)
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var state GameState
	if err := json.Unmarshal(body, &state); err != nil {
		return fmt.Errorf("failed to parse JSON: %v (body: %s)", err, string(body))
	}

	g.applyState(session, &state)
	return nil
}

// applyState installs a fresh state snapshot and triggers the crash flash
// when the pedestrian just got hit.
func (g *Game) applyState(session *SessionData, state *GameState) {
	g.stateMutex.Lock()
	if session.state != nil && !session.state.Crashed && state.Crashed {
		session.crashTime = time.Now()
		session.isCrashing = true
	}
	session.state = state
	session.lastUpdate = time.Now()
	g.stateMutex.Unlock()
}

// loadWelcomeData fetches available sessions and configs from server
func (g *Game) loadWelcomeData() {
	g.welcomeScreen.loading = true
	g.welcomeScreen.errorMsg = ""

	// Fetch available sessions
	resp, err := http.Get(fmt.Sprintf("%s/api/sessions", baseURL))
	if err != nil {
		g.welcomeScreen.errorMsg = fmt.Sprintf("Error loading sessions: %v", err)
		g.welcomeScreen.loading = false
		return
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var sessionsResp struct {
		Sessions []SessionListItem `json:"sessions"`
	}
	if err := json.Unmarshal(body, &sessionsResp); err == nil {
		g.welcomeScreen.availableSessions = sessionsResp.Sessions
	}

	// Fetch available configs
	resp, err = http.Get(fmt.Sprintf("%s/api/configs", baseURL))
	if err != nil {
		g.welcomeScreen.errorMsg = fmt.Sprintf("Error loading configs: %v", err)
		g.welcomeScreen.loading = false
		return
	}
	defer resp.Body.Close()

	body, _ = io.ReadAll(resp.Body)
	var configsResp struct {
		Configs []ConfigListItem `json:"configs"`
	}
	if err := json.Unmarshal(body, &configsResp); err == nil {
		g.welcomeScreen.availableConfigs = configsResp.Configs
	}

	g.welcomeScreen.loading = false
}

// createNewSessionFromWelcome creates a new session with selected config
func (g *Game) createNewSessionFromWelcome() error {
	session := &SessionData{}
	if err := g.createSessionWithConfig(session, g.welcomeScreen.newSessionConfig); err != nil {
		return err
	}

	// Add to selected sessions
	g.selectedSessions[session.sessionID] = true

	// Reload session list
	g.loadWelcomeData()
	return nil
}

// startGameWithSelectedSessions transitions to game screen with selected sessions
func (g *Game) startGameWithSelectedSessions() {
	if len(g.selectedSessions) == 0 {
		g.welcomeScreen.errorMsg = "Please select at least one session"
		return
	}

	// Create sessions for each selected ID
	for sessionID := range g.selectedSessions {
		g.addSession(sessionID)
	}

	// Switch to game screen
	g.currentScreen = ScreenGame
}

// sendAction sends a move action to the server for active session
func (g *Game) sendAction(action string) error {
	if len(g.sessions) == 0 {
		return fmt.Errorf("no sessions available")
	}

	session := g.sessions[g.activeSession]
	if session.sessionID == "" {
		return fmt.Errorf("no session ID set")
	}

	var url string
	var payload string

	if action == "reset" {
		url = fmt.Sprintf("%s/api/sessions/%s/reset", baseURL, session.sessionID)
		payload = "{}"
	} else {
		url = fmt.Sprintf("%s/api/sessions/%s/move", baseURL, session.sessionID)
		payload = fmt.Sprintf(`{"direction":"%s"}`, action)
	}

	resp, err := http.Post(url, "application/json", strings.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return g.fetchGameState(session)
}

// Update updates game logic
func (g *Game) Update() error {
	// Route to appropriate screen update
	switch g.currentScreen {
	case ScreenWelcome:
		return g.updateWelcomeScreen()
	case ScreenGame:
		return g.updateGameScreen()
	}
	return nil
}

// updateWelcomeScreen handles welcome screen input
func (g *Game) updateWelcomeScreen() error {
	ws := g.welcomeScreen

	// Refresh data with F5
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.loadWelcomeData()
	}

	// Navigate with arrow keys
	totalItems := len(ws.availableSessions)
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		ws.cursorPos++
		if ws.cursorPos >= totalItems {
			ws.cursorPos = totalItems - 1
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		ws.cursorPos--
		if ws.cursorPos < 0 {
			ws.cursorPos = 0
		}
	}

	// Toggle selection with Space
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if ws.cursorPos < len(ws.availableSessions) {
			sessionID := ws.availableSessions[ws.cursorPos].ID
			g.selectedSessions[sessionID] = !g.selectedSessions[sessionID]
			if !g.selectedSessions[sessionID] {
				delete(g.selectedSessions, sessionID)
			}
		}
	}

	// Cycle through configs with Tab
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		if len(ws.availableConfigs) > 0 {
			// Find current config index
			currentIdx := -1
			for i, cfg := range ws.availableConfigs {
				if cfg.ConfigID == ws.newSessionConfig {
					currentIdx = i
					break
				}
			}
			// Move to next
			currentIdx++
			if currentIdx >= len(ws.availableConfigs) {
				ws.newSessionConfig = "" // No config (default)
			} else {
				ws.newSessionConfig = ws.availableConfigs[currentIdx].ConfigID
			}
		}
	}

	// Create new session with N
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		if err := g.createNewSessionFromWelcome(); err != nil {
			ws.errorMsg = fmt.Sprintf("Failed to create session: %v", err)
		}
	}

	// Start game with Enter
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.startGameWithSelectedSessions()
	}

	// Back to game screen with Escape (if sessions exist)
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && len(g.sessions) > 0 {
		g.currentScreen = ScreenGame
	}

	return nil
}

// updateGameScreen handles game screen input
func (g *Game) updateGameScreen() error {
	if len(g.sessions) == 0 {
		return nil
	}

	// End crash animations after their duration
	g.stateMutex.Lock()
	for _, session := range g.sessions {
		if session.isCrashing && time.Since(session.crashTime) > crashDuration {
			session.isCrashing = false
		}
	}
	g.stateMutex.Unlock()

	// Poll all sessions if WebSocket is not connected
	for _, session := range g.sessions {
		if session.wsConn == nil {
			if session.state == nil || time.Since(session.lastUpdate) > 100*time.Millisecond {
				if err := g.fetchGameState(session); err != nil {
					log.Printf("Error fetching state for %s: %v", session.sessionID, err)
				}
			}
		}
	}

	// Session switching with number keys (1-9)
	for i := ebiten.Key1; i <= ebiten.Key9; i++ {
		if inpututil.IsKeyJustPressed(i) {
			sessionIdx := int(i - ebiten.Key1)
			if sessionIdx < len(g.sessions) {
				g.activeSession = sessionIdx
				log.Printf("Switched to session %d: %s", sessionIdx+1, g.sessions[sessionIdx].sessionID)
			}
		}
	}

	// Add new session with N key
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		if len(g.sessions) < 9 {
			g.addSession("")
			log.Printf("Added new session (total: %d)", len(g.sessions))
		}
	}

	// Handle keyboard input for active session
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) || inpututil.IsKeyJustPressed(ebiten.KeyW) {
		g.sendAction("up")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) || inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.sendAction("down")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) || inpututil.IsKeyJustPressed(ebiten.KeyA) {
		g.sendAction("left")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) || inpututil.IsKeyJustPressed(ebiten.KeyD) {
		g.sendAction("right")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.sendAction("reset")
	}

	// Return to welcome screen with Escape
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.currentScreen = ScreenWelcome
		g.loadWelcomeData()
	}

	return nil
}

// Draw renders the game
func (g *Game) Draw(screen *ebiten.Image) {
	// Route to appropriate screen renderer
	switch g.currentScreen {
	case ScreenWelcome:
		g.drawWelcomeScreen(screen)
	case ScreenGame:
		g.drawGameScreen(screen)
	}
}

// drawWelcomeScreen renders the welcome/session selection screen
func (g *Game) drawWelcomeScreen(screen *ebiten.Image) {
	ws := g.welcomeScreen

	// Clear screen
	screen.Fill(color.RGBA{20, 20, 30, 255})

	y := 20
	ebitenutil.DebugPrintAt(screen, "=== STREET CROSSING - SESSION SELECT ===", 200, y)
	y += 30

	if ws.loading {
		ebitenutil.DebugPrintAt(screen, "Loading sessions...", 20, y)
		return
	}

	if ws.errorMsg != "" {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("ERROR: %s", ws.errorMsg), 20, y)
		y += 20
	}

	// Session list
	ebitenutil.DebugPrintAt(screen, "Available Sessions:", 20, y)
	y += 20

	if len(ws.availableSessions) == 0 {
		ebitenutil.DebugPrintAt(screen, "  No sessions found. Press N to create one.", 20, y)
		y += 20
	} else {
		for i, session := range ws.availableSessions {
			cursor := "  "
			if i == ws.cursorPos {
				cursor = "> "
			}

			checkbox := "[ ]"
			if g.selectedSessions[session.ID] {
				checkbox = "[X]"
			}

			crossings := 0
			moves := 0
			status := ""
			if session.GameState != nil {
				crossings = session.GameState.Crossings
				moves = session.GameState.TotalMoves
				if session.GameState.GameOver {
					status = " GAME OVER"
				}
			}

			line := fmt.Sprintf("%s%s %s | %s | Crossings:%d Moves:%d%s",
				cursor, checkbox, session.ID, session.ConfigName,
				crossings, moves, status)

			ebitenutil.DebugPrintAt(screen, line, 20, y)
			y += 15
		}
	}

	y += 20
	ebitenutil.DebugPrintAt(screen, "─────────────────────────────────────────", 20, y)
	y += 20

	// New session creation
	ebitenutil.DebugPrintAt(screen, "Create New Session:", 20, y)
	y += 20

	configDisplay := "default"
	if ws.newSessionConfig != "" {
		configDisplay = ws.newSessionConfig
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("  Selected Config: %s", configDisplay), 20, y)
	y += 15

	ebitenutil.DebugPrintAt(screen, "  Available Configs:", 20, y)
	y += 15
	for _, cfg := range ws.availableConfigs {
		marker := "  "
		if cfg.ConfigID == ws.newSessionConfig {
			marker = "→ "
		}
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("    %s%s - %s", marker, cfg.Name, cfg.Description), 20, y)
		y += 15
	}

	y += 20
	ebitenutil.DebugPrintAt(screen, "─────────────────────────────────────────", 20, y)
	y += 20

	// Selected sessions summary
	selectedCount := len(g.selectedSessions)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Selected: %d session(s)", selectedCount), 20, y)
	y += 20

	// Controls
	y += 10
	ebitenutil.DebugPrintAt(screen, "CONTROLS:", 20, y)
	y += 20
	ebitenutil.DebugPrintAt(screen, "  ↑/↓      - Navigate sessions", 20, y)
	y += 15
	ebitenutil.DebugPrintAt(screen, "  SPACE    - Toggle session selection", 20, y)
	y += 15
	ebitenutil.DebugPrintAt(screen, "  TAB      - Cycle config for new session", 20, y)
	y += 15
	ebitenutil.DebugPrintAt(screen, "  N        - Create new session with selected config", 20, y)
	y += 15
	ebitenutil.DebugPrintAt(screen, "  ENTER    - Start game with selected sessions", 20, y)
	y += 15
	ebitenutil.DebugPrintAt(screen, "  F5       - Refresh session list", 20, y)
	y += 15
	if len(g.sessions) > 0 {
		ebitenutil.DebugPrintAt(screen, "  ESC      - Back to game", 20, y)
	}
}

// drawGameScreen renders the active session's street
func (g *Game) drawGameScreen(screen *ebiten.Image) {
	g.stateMutex.RLock()
	defer g.stateMutex.RUnlock()

	if len(g.sessions) == 0 {
		ebitenutil.DebugPrint(screen, "No sessions available. Press ESC to go to session select.")
		return
	}

	screen.Fill(color.RGBA{20, 20, 30, 255})

	// Draw header with all session stats
	g.drawSessionStats(screen)

	session := g.sessions[g.activeSession]
	if session.state == nil {
		ebitenutil.DebugPrintAt(screen, "Loading...", 10, headerHeight+10)
		return
	}
	state := session.state

	// World to screen scaling. Each session can use a different street size,
	// so the scale comes from the active state.
	scaleX := float64(screenWidth) / state.StreetLength
	scaleY := float64(screenHeight-headerHeight-footerHeight) / state.AreaHeight
	sx := func(x float64) float64 { return x * scaleX }
	sy := func(y float64) float64 { return y*scaleY + headerHeight }

	// Sidewalks above and below the street
	sidewalk := color.RGBA{60, 120, 60, 255}
	ebitenutil.DrawRect(screen, 0, sy(0), float64(screenWidth), sy(state.StreetTop)-sy(0), sidewalk)
	streetBottom := state.StreetTop + state.StreetWidth
	ebitenutil.DrawRect(screen, 0, sy(streetBottom), float64(screenWidth), sy(state.AreaHeight)-sy(streetBottom), sidewalk)

	// Asphalt
	ebitenutil.DrawRect(screen, 0, sy(state.StreetTop), float64(screenWidth), sy(streetBottom)-sy(state.StreetTop), color.RGBA{70, 70, 75, 255})

	// Lane lines
	for _, lane := range state.Lanes {
		drawLaneLine(screen, lane.TopLine, sy(lane.TopY), scaleX, state.StreetLength)
		drawLaneLine(screen, lane.BottomLine, sy(lane.BottomY), scaleX, state.StreetLength)
	}

	// Crosswalk signs, flashing signs alternate with the tick
	for _, sign := range state.Signs {
		signColor := color.RGBA{220, 220, 40, 255}
		if sign.Flashing && (state.Tick/5)%2 == 0 {
			signColor = color.RGBA{255, 120, 0, 255}
		}
		ebitenutil.DrawRect(screen, sx(sign.X), sy(sign.Y), sign.Width*scaleX, sign.Height*scaleY, signColor)
	}

	// Vehicles
	for _, o := range state.Obstacles {
		ebitenutil.DrawRect(screen, sx(o.X), sy(o.Y), o.Width*scaleX, o.Height*scaleY, vehicleColor(o))
	}

	// Pedestrian, with crash shake and flash
	playerColor := playerColors[g.activeSession%len(playerColors)]
	var shakeX, shakeY float64
	if session.isCrashing {
		crashProgress := time.Since(session.crashTime).Seconds() / crashDuration.Seconds()
		shakeIntensity := 4.0 * (1.0 - crashProgress)
		shakeX = shakeIntensity * math.Sin(crashProgress*40)
		shakeY = shakeIntensity * math.Cos(crashProgress*40)

		flashAmount := (1.0 - crashProgress) * 0.7
		playerColor.R = uint8(float64(playerColor.R)*(1.0-flashAmount) + 255*flashAmount)
	}
	ebitenutil.DrawRect(screen,
		sx(state.Player.X)+shakeX,
		sy(state.Player.Y)+shakeY,
		state.Player.Width*scaleX,
		state.Player.Height*scaleY,
		playerColor)

	// Status message
	if state.Message != "" {
		ebitenutil.DebugPrintAt(screen, state.Message, 10, headerHeight+5)
	}

	// Footer controls
	ebitenutil.DebugPrintAt(screen, "1-9: Switch Session | N: New Session | Arrow/WASD: Move | R: Reset | ESC: Menu", 10, screenHeight-18)
}

// drawLaneLine draws one lane boundary line across the street
func drawLaneLine(screen *ebiten.Image, style LineStyle, screenY, scaleX, streetLength float64) {
	if style.Hidden {
		return
	}

	lineColor := color.RGBA{255, 255, 255, 255}
	if style.Color == "yellow" {
		lineColor = color.RGBA{230, 200, 40, 255}
	}

	h := style.Width
	if h <= 0 {
		h = 2
	}

	if !style.Dashed {
		ebitenutil.DrawRect(screen, 0, screenY, streetLength*scaleX, h, lineColor)
		return
	}

	dash, gap := 10.0, 10.0
	if len(style.DashPattern) >= 2 {
		dash, gap = style.DashPattern[0], style.DashPattern[1]
	}
	for x := 0.0; x < streetLength; x += dash + gap {
		ebitenutil.DrawRect(screen, x*scaleX, screenY, dash*scaleX, h, lineColor)
	}
}

// vehicleColor picks a draw color from the vehicle's kind and condition
func vehicleColor(o Obstacle) color.RGBA {
	if o.Crashed {
		return color.RGBA{60, 60, 60, 255} // Wreck
	}
	if o.Emergency {
		return color.RGBA{255, 40, 40, 255} // Emergency vehicle
	}
	switch {
	case strings.Contains(o.Image, "truck"), strings.Contains(o.Image, "bus"):
		return color.RGBA{180, 140, 60, 255}
	case strings.Contains(o.Image, "red"):
		return color.RGBA{200, 60, 60, 255}
	case strings.Contains(o.Image, "green"):
		return color.RGBA{60, 180, 60, 255}
	case strings.Contains(o.Image, "blue"):
		return color.RGBA{70, 110, 220, 255}
	default:
		return color.RGBA{160, 160, 200, 255}
	}
}

// drawSessionStats draws stats for all sessions in header
func (g *Game) drawSessionStats(screen *ebiten.Image) {
	headerY := 5
	for idx, session := range g.sessions {
		if session.state == nil {
			continue
		}

		y := headerY + (idx * 15)
		playerColor := playerColors[idx%len(playerColors)]

		// Draw color indicator
		ebitenutil.DrawRect(screen, 5, float64(y), 10, 10, playerColor)

		// Session info
		activeMarker := ""
		if idx == g.activeSession {
			activeMarker = ">>>"
		}

		connStatus := "POLL"
		if session.wsConn != nil {
			connStatus = "WS"
		}

		info := fmt.Sprintf("%s [%d] %s [%s] CROSS:%d MV:%d TICK:%d",
			activeMarker,
			idx+1,
			session.sessionID,
			connStatus,
			session.state.Crossings,
			session.state.TotalMoves,
			session.state.Tick)

		if session.state.Crashed {
			info += " CRASHED"
		} else if session.state.GameOver {
			info += " GAME OVER"
		}

		ebitenutil.DebugPrintAt(screen, info, 20, y)
	}
}

// Layout returns the game screen size
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	// Accept multiple session IDs as arguments
	sessionIDs := []string{}
	if len(os.Args) > 1 {
		sessionIDs = os.Args[1:]
	}

	game := NewGame(sessionIDs)

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Street Crossing - Multi-Session Desktop Client")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
