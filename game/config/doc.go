// Package config provides configuration management for the Street Crossing Game.
//
// The config package handles:
//   - Loading game configurations from JSON files
//   - Configuration validation and verification
//   - Default configuration management
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Game configurations are stored as JSON files in the configs directory.
// Each configuration defines:
//   - Street geometry (length, top offset, lane list with widths and lines)
//   - Traffic producers per lane (speed, size, avoidance, spawn frequency)
//   - Optional crosswalk zone, pedestrian signal and signal-gated producer
//   - Player start box, step size and game messages
//
// Available Configurations:
//
// The package ships with street layouts of increasing difficulty:
//   - classic: Two-lane street with balanced traffic and a crosswalk
//   - rush_hour: Dense multi-lane traffic with emergency vehicles
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load specific configuration
//	gameConfig, err := manager.LoadConfig("classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Get default configuration
//	defaultConfig := manager.GetDefault()
//
//	// List available configurations
//	configs, err := manager.ListConfigs()
//
// Validation:
//
// All configurations are validated for:
//   - Street and lane dimensions
//   - Valid lane directions and avoidance policies
//   - Crosswalk placement within the street
//   - Required message templates
//   - Tick interval constraints
package config
