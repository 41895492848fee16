// Package engine provides the core game logic for the Street Crossing Game.
//
// The engine package drives the traffic simulation including:
//   - Tick-based traffic advancement and obstacle spawning
//   - Player movement and collision detection
//   - Crossing completion and game-over handling
//   - Game state snapshots and persistence
//   - Configuration loading and validation
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState is the snapshot handed to transports
// and persisted for sessions, while GameConfig defines the street layout and
// traffic loaded from JSON files. The simulation itself lives in the street
// package; the engine owns the clock, the randomness and the rules around it.
//
// Usage:
//
//	config, err := engine.LoadConfigByName("classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Advance the simulation one tick and move the player
//	state, err := gameEngine.Tick()
//	success := gameEngine.Move("up")
//
// Game Rules:
//
// Players steer a pedestrian across a multi-lane street of autonomous
// traffic. Obstacles brake for hazards or change lanes to overtake, crash
// into wrecks when they collide, and spawn on timed producers, some gated on
// the pedestrian signal. Touching any obstacle ends the game; fully clearing
// the far side of the street scores a crossing and returns the player to the
// start.
package engine
