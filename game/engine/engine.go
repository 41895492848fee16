package engine

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/streetcross/crossing-game/game/street"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Simulation
	Tick() (*GameState, error)

	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsGameOver() bool
	IsCrashed() bool
	GetCrossings() int
	GetPlayerPosition() Point

	// Movement operations
	Move(direction string) bool
	CanMove(direction string) bool
	GetPossibleMoves() []string

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// GameEngine implements the Engine interface. All exported methods are safe
// for concurrent use; the tick loop and the HTTP handlers share one engine.
type GameEngine struct {
	mu     sync.Mutex
	config *GameConfig

	street street.Street
	player street.Player
	rng    *rand.Rand

	tick      int64
	simTime   int64 // simulated ms, advances by tick_ms per Tick
	crashed   bool
	gameOver  bool
	crossings int
	message   string

	moveHistory  []MoveHistoryEntry
	totalMoves   int
	currentMoves []MoveHistoryEntry
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *GameConfig) (*GameEngine, error) {
	return NewEngineWithSeed(config, time.Now().UnixNano())
}

// NewEngineWithSeed creates an engine whose spawn randomness is driven by
// the given seed. Used by tests and the headless simulator.
func NewEngineWithSeed(config *GameConfig, seed int64) (*GameEngine, error) {
	if config == nil {
		config = DefaultGameConfig()
	}
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	e := &GameEngine{
		config: config,
		rng:    rand.New(rand.NewSource(seed)),
	}
	e.initLocked()
	return e, nil
}

// NewEngineWithDefaults creates a new game engine with the default
// configuration.
func NewEngineWithDefaults() *GameEngine {
	e, _ := NewEngine(DefaultGameConfig())
	return e
}

// initLocked rebuilds the street and player from the config and clears the
// per-run state. Cumulative history is left alone.
func (e *GameEngine) initLocked() {
	e.street, e.player = buildStreet(e.config, e.rng)
	e.tick = 0
	e.simTime = 0
	e.crashed = false
	e.gameOver = false
	e.crossings = 0
	e.message = e.config.Messages.Welcome
	e.currentMoves = []MoveHistoryEntry{}
}

// tickInterval returns the simulated time one tick represents.
func (e *GameEngine) tickInterval() int64 {
	if e.config.TickMillis > 0 {
		return e.config.TickMillis
	}
	return DefaultTickMillis
}

// Tick advances the simulation by one step: spawn, move traffic, update the
// signal, then test the player against the new traffic. After game over the
// state is frozen and Tick returns it unchanged.
func (e *GameEngine) Tick() (*GameState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.gameOver {
		return e.snapshotLocked(), nil
	}

	e.tick++
	e.simTime += e.tickInterval()

	next, err := e.street.GenerateObstacles(e.simTime, &e.player)
	if err != nil {
		return nil, fmt.Errorf("tick %d: %w", e.tick, err)
	}
	e.street = next.Advance(e.simTime, &e.player)

	if e.street.DetectCollision(e.player) {
		e.crashed = true
		e.gameOver = true
		e.message = e.config.Messages.Crashed
	} else if e.player.Bounds().Bottom() <= e.street.Top {
		// Fully cleared the far side: score and walk back to the start.
		e.crossings++
		e.message = fmt.Sprintf(e.config.Messages.Crossed, e.crossings)
		e.player = buildPlayer(e.config)
	}

	return e.snapshotLocked(), nil
}

// GetState returns a snapshot of the current game state.
func (e *GameEngine) GetState() *GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Reset resets the game to initial state
func (e *GameEngine) Reset() *GameState {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Preserve cumulative history and totals across resets
	prevHistory := e.moveHistory
	prevTotal := e.totalMoves

	e.initLocked()

	e.moveHistory = prevHistory
	e.totalMoves = prevTotal

	return e.snapshotLocked()
}

// IsGameOver returns whether the game is over
func (e *GameEngine) IsGameOver() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gameOver
}

// IsCrashed returns whether the player was hit by an obstacle
func (e *GameEngine) IsCrashed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.crashed
}

// GetCrossings returns how many times the player has crossed the street
// since the last reset.
func (e *GameEngine) GetCrossings() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.crossings
}

// GetPlayerPosition returns the current player position
func (e *GameEngine) GetPlayerPosition() Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	b := e.player.Bounds()
	return Point{X: b.X, Y: b.Y}
}

// Move attempts to move the player in the specified direction
func (e *GameEngine) Move(direction string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.player.Bounds()
	success := false

	if !e.gameOver {
		switch direction {
		case "up":
			e.player = e.player.MoveUp()
		case "down":
			e.player = e.player.MoveDown()
		case "left":
			e.player = e.player.MoveLeft()
		case "right":
			e.player = e.player.MoveRight()
		default:
			return false
		}
		// A move clamped fully in place is a failed move.
		now := e.player.Bounds()
		success = now.X != prev.X || now.Y != prev.Y
	}

	e.addMoveLocked(direction, prev, e.player.Bounds(), success)
	return success
}

// CanMove checks if the player can move in the specified direction
func (e *GameEngine) CanMove(direction string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.gameOver {
		return false
	}

	var moved street.Player
	switch direction {
	case "up":
		moved = e.player.MoveUp()
	case "down":
		moved = e.player.MoveDown()
	case "left":
		moved = e.player.MoveLeft()
	case "right":
		moved = e.player.MoveRight()
	default:
		return false
	}
	return moved.Bounds() != e.player.Bounds()
}

// GetPossibleMoves returns all valid directions the player can move
func (e *GameEngine) GetPossibleMoves() []string {
	directions := []string{"up", "down", "left", "right"}
	var possible []string

	for _, dir := range directions {
		if e.CanMove(dir) {
			possible = append(possible, dir)
		}
	}

	return possible
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.config
}

// SetConfig sets a new game configuration and resets the game
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.config = config
	e.moveHistory = []MoveHistoryEntry{}
	e.totalMoves = 0
	e.initLocked()
	return nil
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]MoveHistoryEntry, len(e.moveHistory))
	copy(out, e.moveHistory)
	return out
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.moveHistory) == 0 {
		return nil
	}
	last := e.moveHistory[len(e.moveHistory)-1]
	return &last
}

func (e *GameEngine) addMoveLocked(direction string, from, to street.Rect, success bool) {
	e.totalMoves++
	entry := MoveHistoryEntry{
		Action:       direction,
		FromPosition: Point{X: from.X, Y: from.Y},
		ToPosition:   Point{X: to.X, Y: to.Y},
		Timestamp:    e.simTime,
		Success:      success,
		MoveNumber:   e.totalMoves,
	}
	e.moveHistory = append(e.moveHistory, entry)
	e.currentMoves = append(e.currentMoves, entry)
}
