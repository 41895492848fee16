// Command validate provides a small CLI that validates game configuration JSON
// files in the ../configs directory. It checks:
//   - JSON structure and required fields (via the engine's config validation)
//   - Lane layout: directions, widths, producers per lane
//   - Producer sanity: speeds, spawn frequencies, emergency flags
//   - Crosswalk geometry: zone inside the street, sane lane index
//   - Crossability: the player's step actually spans the street in both
//     directions within a reasonable number of moves
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/streetcross/crossing-game/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateConfig loads and validates a single configuration JSON file.
// It runs the engine's structural validation first, then layers lint checks
// that the engine accepts but a playable config should not have.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var config engine.GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	if err := engine.ValidateGameConfig(&config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	producerCount := 0
	emergencyCount := 0
	emptyLanes := []int{}

	for i, lane := range config.Lanes {
		if len(lane.Producers) == 0 {
			emptyLanes = append(emptyLanes, i)
		}
		for j, p := range lane.Producers {
			producerCount++
			if p.Emergency {
				emergencyCount++
			}
			if p.Speed <= 0 {
				result.Valid = false
				result.Errors = append(result.Errors, fmt.Sprintf("Lane %d producer %d: speed must be positive, got %g", i, j, p.Speed))
			}
			if p.FrequencyMillis < 0 {
				result.Valid = false
				result.Errors = append(result.Errors, fmt.Sprintf("Lane %d producer %d: frequency_ms cannot be negative, got %d", i, j, p.FrequencyMillis))
			}
			if p.Width > config.StreetLength {
				result.Valid = false
				result.Errors = append(result.Errors, fmt.Sprintf("Lane %d producer %d: vehicle width %g exceeds street length %g", i, j, p.Width, config.StreetLength))
			}
			if p.Height > lane.Width {
				result.Valid = false
				result.Errors = append(result.Errors, fmt.Sprintf("Lane %d producer %d: vehicle height %g does not fit lane width %g", i, j, p.Height, lane.Width))
			}
			if !p.UseLaneEdge && (p.X < 0 || p.X > config.StreetLength) {
				result.Valid = false
				result.Errors = append(result.Errors, fmt.Sprintf("Lane %d producer %d: fixed spawn x %g outside street 0..%g", i, j, p.X, config.StreetLength))
			}
		}
	}

	// Crosswalk lint beyond the engine's bounds checks
	if cw := config.Crosswalk; cw != nil {
		zoneEnd := cw.ZoneX + cw.ZoneWidth
		signCenter := cw.Sign.X + cw.Sign.Width/2
		if signCenter < cw.ZoneX || signCenter > zoneEnd {
			result.Errors = append(result.Errors, fmt.Sprintf("⚠ Crosswalk sign center %g sits outside its zone %g..%g", signCenter, cw.ZoneX, zoneEnd))
		}
		if cw.Producer != nil && cw.Producer.FrequencyMillis == 0 {
			result.Errors = append(result.Errors, "⚠ Crosswalk producer has frequency_ms 0; the gated lane will saturate instantly")
		}
	}

	// Crossability: the street must be spannable in a bounded number of steps
	if config.Player.Step > 0 {
		streetWidth := 0.0
		for _, lane := range config.Lanes {
			streetWidth += lane.Width
		}
		steps := int(streetWidth/config.Player.Step) + 1
		if steps > 200 {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Street takes %d steps to cross; raise player.step or shrink the lanes", steps))
		}
	}

	// Add informational data
	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", config.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Street: %g units, %d lanes", config.StreetLength, len(config.Lanes)))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Producers: %d (%d emergency)", producerCount, emergencyCount))
		if config.Crosswalk != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("✓ Crosswalk: zone %g..%g in lane %d",
				config.Crosswalk.ZoneX, config.Crosswalk.ZoneX+config.Crosswalk.ZoneWidth, config.Crosswalk.LaneIndex))
		}
		if len(emptyLanes) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("⚠ Lanes with no producers: %v", emptyLanes))
		}
	}

	return result
}

// main scans ../configs for *.json files and validates each one, printing a
// concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
