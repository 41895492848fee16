package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/streetcross/crossing-game/game/engine"
	"github.com/streetcross/crossing-game/game/service"
	"github.com/streetcross/crossing-game/game/street"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	// Generate ID if empty (mimics real session manager behavior)
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}

	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, err
	}

	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}

	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, errors.New("session not found")
	}
	return session, nil
}

func (m *MockSessionManager) GetOrCreate(id string, config *engine.GameConfig) (*service.Session, error) {
	if session, exists := m.sessions[id]; exists {
		return session, nil
	}
	return m.Create(id, config)
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return errors.New("session not found")
}

func (m *MockSessionManager) Save(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return errors.New("session not found")
	}
	// Mock save - in real implementation this would persist to disk
	return nil
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GameConfig
}

func NewMockConfigManager() *MockConfigManager {
	defaultConfig := newTestGameConfig()

	return &MockConfigManager{
		configs: map[string]*engine.GameConfig{
			"test":    defaultConfig,
			"default": defaultConfig,
		},
	}
}

// newTestGameConfig builds a two-lane street with the slowest allowed tick so
// background tick loops stay quiet for the duration of a test.
func newTestGameConfig() *engine.GameConfig {
	config := &engine.GameConfig{
		Name:         "test",
		Description:  "Test configuration",
		StreetLength: 600,
		StreetTop:    100,
		AreaHeight:   400,
		TickMillis:   engine.MaxTickMillis,
		Player: engine.PlayerConfig{
			X: 290, Y: 360, Width: 20, Height: 20, Step: 10, Image: "player",
		},
		Lanes: []engine.LaneConfig{
			{
				Direction:  "right",
				Width:      60,
				TopLine:    street.LineStyle{Color: "white", Width: 2},
				BottomLine: street.LineStyle{Color: "white", Width: 2},
				Producers: []engine.ProducerConfig{
					{Image: "car", Width: 40, Height: 20, Speed: 6, Avoidance: "brake", FrequencyMillis: 2000, DetectCollisions: true, RandomTraffic: true, UseLaneEdge: true},
				},
			},
			{
				Direction:  "left",
				Width:      60,
				TopLine:    street.LineStyle{Hidden: true},
				BottomLine: street.LineStyle{Color: "white", Width: 2},
				Producers: []engine.ProducerConfig{
					{Image: "car", Width: 40, Height: 20, Speed: 7, Avoidance: "pass", FrequencyMillis: 2500, DetectCollisions: true, RandomTraffic: true, UseLaneEdge: true},
				},
			},
		},
	}
	config.Messages.Welcome = "Welcome to test!"
	config.Messages.Crashed = "Hit!"
	config.Messages.Crossed = "Crossed %d times"
	return config
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GameConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, errors.New("configuration not found")
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	result := make([]*service.ConfigInfo, 0, len(m.configs))
	for name, config := range m.configs {
		result = append(result, &service.ConfigInfo{
			Filename:     name + ".json",
			ConfigID:     name,
			Name:         config.Name,
			Description:  config.Description,
			StreetLength: config.StreetLength,
			LaneCount:    len(config.Lanes),
			TickMillis:   config.TickMillis,
		})
	}
	return result, nil
}

func (m *MockConfigManager) GetDefault() *engine.GameConfig {
	return m.configs["default"]
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.GameConfig) error {
	if err := engine.ValidateGameConfig(config); err != nil {
		return err
	}
	m.configs[name] = config
	return nil
}

// recordingNotifier counts NotifyState deliveries per session.
type recordingNotifier struct {
	mu     sync.Mutex
	counts map[string]int
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{counts: make(map[string]int)}
}

func (n *recordingNotifier) NotifyState(sessionID string, state *engine.GameState) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.counts[sessionID]++
}

func (n *recordingNotifier) count(sessionID string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.counts[sessionID]
}

// Test cases
func TestGameService_CreateSession(t *testing.T) {
	ctx := context.Background()
	sessions := NewMockSessionManager()
	configs := NewMockConfigManager()
	svc := service.NewGameService(sessions, configs)
	defer svc.StopAll()

	tests := []struct {
		name       string
		configName string
		wantErr    bool
	}{
		{
			name:       "create with default config",
			configName: "",
			wantErr:    false,
		},
		{
			name:       "create with specific config",
			configName: "test",
			wantErr:    false,
		},
		{
			name:       "create with invalid config",
			configName: "nonexistent",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := svc.CreateSession(ctx, tt.configName)
			if (err != nil) != tt.wantErr {
				t.Errorf("CreateSession() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && session == nil {
				t.Error("CreateSession() returned nil session")
			}
			if !tt.wantErr && session.GameState == nil {
				t.Error("CreateSession() returned session without game state")
			}
		})
	}
}

func TestGameService_CreateSessionStartsTickLoop(t *testing.T) {
	ctx := context.Background()
	sessions := NewMockSessionManager()
	configs := NewMockConfigManager()
	svc := service.NewGameService(sessions, configs)
	defer svc.StopAll()

	sessionInfo, err := svc.CreateSession(ctx, "test")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	sess, err := sessions.Get(sessionInfo.ID)
	if err != nil {
		t.Fatalf("Session missing from manager: %v", err)
	}
	if sess.CancelTick == nil {
		t.Error("Expected tick loop to be running after CreateSession")
	}

	if err := svc.DeleteSession(ctx, sessionInfo.ID); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if _, err := sessions.Get(sessionInfo.ID); err == nil {
		t.Error("Expected session to be removed after DeleteSession")
	}
}

func TestGameService_TickLoopNotifies(t *testing.T) {
	ctx := context.Background()
	sessions := NewMockSessionManager()
	configs := NewMockConfigManager()

	// A fast-ticking config so the loop fires during the test.
	fast := newTestGameConfig()
	fast.TickMillis = engine.MinTickMillis
	configs.configs["fast"] = fast

	svc := service.NewGameService(sessions, configs)
	defer svc.StopAll()

	notifier := newRecordingNotifier()
	svc.SetNotifier(notifier)

	sessionInfo, err := svc.CreateSession(ctx, "fast")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for notifier.count(sessionInfo.ID) < 3 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := notifier.count(sessionInfo.ID); got < 3 {
		t.Errorf("Expected at least 3 tick notifications, got %d", got)
	}

	// Deleting the session must stop the notifications.
	if err := svc.DeleteSession(ctx, sessionInfo.ID); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	settled := notifier.count(sessionInfo.ID)
	time.Sleep(100 * time.Millisecond)
	if after := notifier.count(sessionInfo.ID); after > settled+1 {
		t.Errorf("Tick loop kept notifying after delete: %d -> %d", settled, after)
	}
}

func TestGameService_Move(t *testing.T) {
	ctx := context.Background()
	sessions := NewMockSessionManager()
	configs := NewMockConfigManager()
	svc := service.NewGameService(sessions, configs)
	defer svc.StopAll()

	// Create a session first
	sessionInfo, err := svc.CreateSession(ctx, "test")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	tests := []struct {
		name      string
		sessionID string
		direction string
		reset     bool
		wantErr   bool
	}{
		{
			name:      "valid move up",
			sessionID: sessionInfo.ID,
			direction: "up",
			reset:     false,
			wantErr:   false,
		},
		{
			name:      "valid move with reset",
			sessionID: sessionInfo.ID,
			direction: "right",
			reset:     true,
			wantErr:   false,
		},
		{
			name:      "invalid session",
			sessionID: "nonexistent",
			direction: "up",
			reset:     false,
			wantErr:   true,
		},
		{
			name:      "invalid direction",
			sessionID: sessionInfo.ID,
			direction: "diagonal",
			reset:     false,
			wantErr:   false, // Won't error but success will be false
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Move(ctx, tt.sessionID, tt.direction, tt.reset)
			if (err != nil) != tt.wantErr {
				t.Errorf("Move() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && result == nil {
				t.Error("Move() returned nil result")
			}
		})
	}

	// Event diagnostics on top of the table cases. Reset for a known start.
	if _, err := svc.Reset(ctx, sessionInfo.ID); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	// Player starts at (290,360); an upward step lands at (290,350).
	res1, err := svc.Move(ctx, sessionInfo.ID, "up", false)
	if err != nil {
		t.Fatalf("Move up failed unexpectedly: %v", err)
	}
	if !res1.Success {
		t.Errorf("Expected successful move up, got success=%v", res1.Success)
	}
	if res1.GameState.Player.Y != 350 {
		t.Errorf("Expected player y 350 after move up, got %v", res1.GameState.Player.Y)
	}
	foundMove := false
	for _, ev := range res1.Events {
		if ev.Type == "move" {
			foundMove = true
			if ev.Position.Y != 350 {
				t.Errorf("Expected move event at y 350, got %v", ev.Position.Y)
			}
		}
	}
	if !foundMove {
		t.Error("Expected a move event for a successful move")
	}

	// A move with reset=true carries a reset event first.
	res2, err := svc.Move(ctx, sessionInfo.ID, "up", true)
	if err != nil {
		t.Fatalf("Move with reset failed: %v", err)
	}
	if len(res2.Events) == 0 || res2.Events[0].Type != "reset" {
		t.Errorf("Expected reset event first, got %+v", res2.Events)
	}

	// An unknown direction does not move the player.
	if _, err := svc.Reset(ctx, sessionInfo.ID); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	res3, err := svc.Move(ctx, sessionInfo.ID, "diagonal", false)
	if err != nil {
		t.Fatalf("Move diagonal failed with error: %v", err)
	}
	if res3.Success {
		t.Error("Expected unknown direction to fail")
	}
	if res3.GameState.Player.X != 290 || res3.GameState.Player.Y != 360 {
		t.Errorf("Expected player to stay at (290,360), got (%v,%v)",
			res3.GameState.Player.X, res3.GameState.Player.Y)
	}
}

func TestGameService_GetMoveHistory(t *testing.T) {
	ctx := context.Background()
	sessions := NewMockSessionManager()
	configs := NewMockConfigManager()
	svc := service.NewGameService(sessions, configs)
	defer svc.StopAll()

	// Create a session and make some moves
	sessionInfo, err := svc.CreateSession(ctx, "test")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	// Make some moves to generate history
	for _, dir := range []string{"up", "right", "down", "left"} {
		if _, err := svc.Move(ctx, sessionInfo.ID, dir, false); err != nil {
			t.Fatalf("Failed to move %s: %v", dir, err)
		}
	}

	tests := []struct {
		name      string
		sessionID string
		opts      service.HistoryOptions
		wantMoves int
		wantErr   bool
	}{
		{
			name:      "default options",
			sessionID: sessionInfo.ID,
			opts:      service.HistoryOptions{},
			wantMoves: 4,
			wantErr:   false,
		},
		{
			name:      "with pagination",
			sessionID: sessionInfo.ID,
			opts: service.HistoryOptions{
				Page:  1,
				Limit: 2,
				Order: "asc",
			},
			wantMoves: 2,
			wantErr:   false,
		},
		{
			name:      "descending order",
			sessionID: sessionInfo.ID,
			opts: service.HistoryOptions{
				Page:  1,
				Limit: 10,
				Order: "desc",
			},
			wantMoves: 4,
			wantErr:   false,
		},
		{
			name:      "invalid session",
			sessionID: "nonexistent",
			opts:      service.HistoryOptions{},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.GetMoveHistory(ctx, tt.sessionID, tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("GetMoveHistory() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if result == nil {
				t.Fatal("GetMoveHistory() returned nil result")
			}
			if result.Moves == nil {
				t.Error("GetMoveHistory() returned nil moves slice")
			}
			if len(result.Moves) != tt.wantMoves {
				t.Errorf("GetMoveHistory() returned %d moves, want %d", len(result.Moves), tt.wantMoves)
			}
			if result.TotalMoves != 4 {
				t.Errorf("GetMoveHistory() TotalMoves = %d, want 4", result.TotalMoves)
			}
		})
	}

	// Ordering spot checks. The first recorded move was "up".
	asc, err := svc.GetMoveHistory(ctx, sessionInfo.ID, service.HistoryOptions{Order: "asc"})
	if err != nil {
		t.Fatalf("GetMoveHistory asc failed: %v", err)
	}
	if asc.Moves[0].Action != "up" {
		t.Errorf("Expected first ascending move 'up', got '%s'", asc.Moves[0].Action)
	}

	desc, err := svc.GetMoveHistory(ctx, sessionInfo.ID, service.HistoryOptions{Order: "desc"})
	if err != nil {
		t.Fatalf("GetMoveHistory desc failed: %v", err)
	}
	if desc.Moves[0].Action != "left" {
		t.Errorf("Expected first descending move 'left', got '%s'", desc.Moves[0].Action)
	}
}

func TestGameService_ListSessions(t *testing.T) {
	ctx := context.Background()
	sessions := NewMockSessionManager()
	configs := NewMockConfigManager()
	svc := service.NewGameService(sessions, configs)
	defer svc.StopAll()

	// Create multiple sessions
	for i := 0; i < 3; i++ {
		_, err := svc.CreateSession(ctx, "test")
		if err != nil {
			t.Fatalf("Failed to create session %d: %v", i, err)
		}
	}

	// List sessions
	sessionList, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}

	if len(sessionList) != 3 {
		t.Errorf("ListSessions() returned %d sessions, want 3", len(sessionList))
	}
}

func TestGameService_Reset(t *testing.T) {
	ctx := context.Background()
	sessions := NewMockSessionManager()
	configs := NewMockConfigManager()
	svc := service.NewGameService(sessions, configs)
	defer svc.StopAll()

	// Create a session
	sessionInfo, err := svc.CreateSession(ctx, "test")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	// Make some moves
	if _, err := svc.Move(ctx, sessionInfo.ID, "up", false); err != nil {
		t.Fatalf("Failed to move: %v", err)
	}

	// Reset the game
	state, err := svc.Reset(ctx, sessionInfo.ID)
	if err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	if state == nil {
		t.Fatal("Reset() returned nil state")
	}

	// Player back at the starting position, cumulative history retained.
	if state.Player.X != 290 || state.Player.Y != 360 {
		t.Errorf("Expected player back at (290,360), got (%v,%v)", state.Player.X, state.Player.Y)
	}
	if state.TotalMoves == 0 {
		t.Error("Expected cumulative move history to survive reset")
	}
	if state.CurrentMovesCount != 0 {
		t.Errorf("Expected current moves cleared on reset, got %d", state.CurrentMovesCount)
	}
}

func TestGameService_ResumeSessions(t *testing.T) {
	ctx := context.Background()
	sessions := NewMockSessionManager()
	configs := NewMockConfigManager()
	svc := service.NewGameService(sessions, configs)
	defer svc.StopAll()

	// A session created behind the service's back, as after a restore from
	// persistence. It has no tick loop yet.
	restored, err := sessions.Create("restored", configs.GetDefault())
	if err != nil {
		t.Fatalf("Failed to create restored session: %v", err)
	}
	if restored.CancelTick != nil {
		t.Fatal("Restored session should not have a tick loop yet")
	}

	if err := svc.ResumeSessions(); err != nil {
		t.Fatalf("ResumeSessions() error = %v", err)
	}
	if restored.CancelTick == nil {
		t.Error("Expected ResumeSessions to start the tick loop")
	}

	// Getting the session through the service still works.
	info, err := svc.GetSession(ctx, "restored")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if info.ID != "restored" {
		t.Errorf("Expected session ID 'restored', got '%s'", info.ID)
	}
}
