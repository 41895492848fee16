package engine

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/streetcross/crossing-game/game/street"
)

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate street dimensions
	if config.StreetLength < MinStreetLength || config.StreetLength > MaxStreetLength {
		return fmt.Errorf("config validation: street_length must be between %d and %d, got %v", MinStreetLength, MaxStreetLength, config.StreetLength)
	}
	if config.StreetTop < 0 {
		return fmt.Errorf("config validation: street_top must not be negative, got %v", config.StreetTop)
	}
	if config.TickMillis != 0 && (config.TickMillis < MinTickMillis || config.TickMillis > MaxTickMillis) {
		return fmt.Errorf("config validation: tick_ms must be between %d and %d, got %d", MinTickMillis, MaxTickMillis, config.TickMillis)
	}

	// Validate lanes
	if len(config.Lanes) == 0 {
		return fmt.Errorf("config validation: at least one lane is required")
	}
	if len(config.Lanes) > MaxLanes {
		return fmt.Errorf("config validation: at most %d lanes are supported, got %d", MaxLanes, len(config.Lanes))
	}
	streetWidth := 0.0
	for i, lane := range config.Lanes {
		if _, err := parseDirection(lane.Direction); err != nil {
			return fmt.Errorf("config validation: lane %d: %v", i+1, err)
		}
		if lane.Width < MinLaneWidth {
			return fmt.Errorf("config validation: lane %d: width must be at least %d, got %v", i+1, MinLaneWidth, lane.Width)
		}
		streetWidth += lane.Width
		for j, p := range lane.Producers {
			if err := validateProducer(&p); err != nil {
				return fmt.Errorf("config validation: lane %d producer %d: %v", i+1, j+1, err)
			}
		}
	}

	// Validate player
	if config.Player.Width <= 0 || config.Player.Height <= 0 {
		return fmt.Errorf("config validation: player width and height must be positive, got %vx%v", config.Player.Width, config.Player.Height)
	}
	if config.Player.Step <= 0 {
		return fmt.Errorf("config validation: player step must be positive, got %v", config.Player.Step)
	}
	if config.AreaHeight < config.StreetTop+streetWidth+config.Player.Height {
		return fmt.Errorf("config validation: area_height %v leaves no room below the street (top %v + lanes %v + player %v)",
			config.AreaHeight, config.StreetTop, streetWidth, config.Player.Height)
	}
	if config.Player.Y < config.StreetTop+streetWidth {
		return fmt.Errorf("config validation: player must start below the street, got y=%v with street bottom %v",
			config.Player.Y, config.StreetTop+streetWidth)
	}

	// Validate crosswalk
	if cw := config.Crosswalk; cw != nil {
		if cw.ZoneWidth <= 0 {
			return fmt.Errorf("config validation: crosswalk zone_width must be positive, got %v", cw.ZoneWidth)
		}
		if cw.ZoneX < 0 || cw.ZoneX+cw.ZoneWidth > config.StreetLength {
			return fmt.Errorf("config validation: crosswalk zone [%v, %v] must lie within the street length %v",
				cw.ZoneX, cw.ZoneX+cw.ZoneWidth, config.StreetLength)
		}
		if _, err := parseDirection(cw.Sign.Direction); err != nil {
			return fmt.Errorf("config validation: crosswalk sign: %v", err)
		}
		if cw.LaneIndex < 0 || cw.LaneIndex >= len(config.Lanes) {
			return fmt.Errorf("config validation: crosswalk lane_index %d out of range (have %d lanes)", cw.LaneIndex, len(config.Lanes))
		}
		if cw.Producer != nil {
			if err := validateProducer(cw.Producer); err != nil {
				return fmt.Errorf("config validation: crosswalk producer: %v", err)
			}
		}
	}

	// Validate messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if config.Messages.Crashed == "" {
		return fmt.Errorf("config validation: messages.crashed is required")
	}
	if config.Messages.Crossed == "" {
		return fmt.Errorf("config validation: messages.crossed is required")
	}
	if !strings.Contains(config.Messages.Crossed, "%d") {
		return fmt.Errorf("config validation: messages.crossed must contain %%d for the crossing count")
	}

	return nil
}

func validateProducer(p *ProducerConfig) error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("obstacle width and height must be positive, got %vx%v", p.Width, p.Height)
	}
	if p.Speed < 0 {
		return fmt.Errorf("speed must not be negative, got %v", p.Speed)
	}
	if p.FrequencyMillis <= 0 {
		return fmt.Errorf("frequency_ms must be positive, got %d", p.FrequencyMillis)
	}
	if _, err := parseAvoidance(p.Avoidance); err != nil {
		return err
	}
	return nil
}

// LoadGameConfig loads a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		// If filename starts with "configs/", replace with CONFIG_DIR
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	// Validate the loaded configuration
	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadConfigByName loads a game configuration by name from the configs directory
func LoadConfigByName(configName string) (*GameConfig, error) {
	// Add .json extension if not present
	if !strings.HasSuffix(configName, ".json") {
		configName = configName + ".json"
	}

	configPath := filepath.Join("configs", configName)

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file '%s' not found", configName)
	}

	// Load and parse the config
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %v", configName, err)
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %v", configName, err)
	}

	// Validate the config
	if err := ValidateGameConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config '%s': %v", configName, err)
	}

	return &config, nil
}

// DefaultGameConfig returns the built-in two-lane street used when no config
// is supplied.
func DefaultGameConfig() *GameConfig {
	config := &GameConfig{
		Name:         "Default Crossing",
		Description:  "Two-lane street with mixed traffic",
		StreetLength: 600,
		StreetTop:    100,
		AreaHeight:   400,
		TickMillis:   DefaultTickMillis,
		Player: PlayerConfig{
			X: 290, Y: 360, Width: 20, Height: 20, Step: 10, Image: "player",
		},
		Lanes: []LaneConfig{
			{
				Direction:  "right",
				Width:      60,
				TopLine:    street.LineStyle{Color: "white", Width: 2},
				BottomLine: street.LineStyle{Color: "yellow", Width: 2, Dashed: true, DashPattern: []float64{10, 10}},
				Producers: []ProducerConfig{
					{Image: "car", Width: 40, Height: 20, Speed: 6, Avoidance: "brake", FrequencyMillis: 2000, DetectCollisions: true, RandomTraffic: true, UseLaneEdge: true},
					{Image: "truck", Width: 60, Height: 24, Speed: 4, Avoidance: "none", FrequencyMillis: 5000, DetectCollisions: true, RandomTraffic: true, UseLaneEdge: true},
				},
			},
			{
				Direction:  "left",
				Width:      60,
				TopLine:    street.LineStyle{Hidden: true},
				BottomLine: street.LineStyle{Color: "white", Width: 2},
				Producers: []ProducerConfig{
					{Image: "car", Width: 40, Height: 20, Speed: 7, Avoidance: "pass", FrequencyMillis: 2500, DetectCollisions: true, RandomTraffic: true, UseLaneEdge: true},
				},
			},
		},
	}
	config.Messages.Welcome = "Cross the street. Mind the traffic!"
	config.Messages.Crashed = "You were hit! Game Over!"
	config.Messages.Crossed = "Crossed! Total crossings: %d"
	return config
}

func parseDirection(s string) (street.Direction, error) {
	switch s {
	case "left":
		return street.Left, nil
	case "right":
		return street.Right, nil
	default:
		return 0, fmt.Errorf("direction must be 'left' or 'right', got '%s'", s)
	}
}

func parseAvoidance(s string) (street.Avoidance, error) {
	switch s {
	case "", "none":
		return street.AvoidNone, nil
	case "brake":
		return street.AvoidBrake, nil
	case "pass":
		return street.AvoidPass, nil
	default:
		return 0, fmt.Errorf("avoidance must be 'none', 'brake' or 'pass', got '%s'", s)
	}
}

// buildStreet assembles the street and player described by a validated
// config. The rng drives spawn selection and is owned by the engine.
func buildStreet(config *GameConfig, rng *rand.Rand) (street.Street, street.Player) {
	s := street.NewStreet(config.StreetTop, config.StreetLength, rng)

	// The crosswalk zone and sign must exist before lanes are added so the
	// gated producer can join its lane's producer list.
	var zone *street.Crosswalk
	var sign *street.CrosswalkSign
	if cw := config.Crosswalk; cw != nil {
		streetWidth := 0.0
		for _, l := range config.Lanes {
			streetWidth += l.Width
		}
		zone = street.NewCrosswalk(street.Rect{
			X: cw.ZoneX, Y: config.StreetTop, W: cw.ZoneWidth, H: streetWidth,
		})
		signDir, _ := parseDirection(cw.Sign.Direction)
		sign = street.NewCrosswalkSign(street.Rect{
			X: cw.Sign.X, Y: cw.Sign.Y, W: cw.Sign.Width, H: cw.Sign.Height,
		}, cw.Sign.Image, signDir, zone)
	}

	for i, lane := range config.Lanes {
		dir, _ := parseDirection(lane.Direction)
		producers := make([]street.ObstacleProducer, 0, len(lane.Producers)+1)
		for _, pc := range lane.Producers {
			producers = append(producers, buildProducer(&pc, dir))
		}
		if cw := config.Crosswalk; cw != nil && cw.Producer != nil && cw.LaneIndex == i {
			producers = append(producers, buildCrosswalkProducer(cw.Producer, dir))
		}
		s = s.WithLane(dir, lane.Width, lane.TopLine, lane.BottomLine, producers)
	}

	if zone != nil {
		s = s.WithScene(zone, sign)
	}

	return s, buildPlayer(config)
}

// buildPlayer returns a player at the configured start box, confined to the
// play area.
func buildPlayer(config *GameConfig) street.Player {
	return street.NewPlayer(
		street.Rect{X: config.Player.X, Y: config.Player.Y, W: config.Player.Width, H: config.Player.Height},
		config.Player.Image,
		config.Player.Step,
		street.Rect{X: 0, Y: 0, W: config.StreetLength, H: config.AreaHeight},
	)
}

func producerTemplate(pc *ProducerConfig, dir street.Direction) street.Obstacle {
	avoidance, _ := parseAvoidance(pc.Avoidance)
	return street.Obstacle{
		Rect:             street.Rect{X: pc.X, W: pc.Width, H: pc.Height},
		Image:            pc.Image,
		Speed:            pc.Speed,
		Dir:              dir,
		Avoidance:        avoidance,
		DetectCollisions: pc.DetectCollisions,
		Emergency:        pc.Emergency,
	}
}

func buildProducer(pc *ProducerConfig, dir street.Direction) *street.Producer {
	return street.NewProducer(producerTemplate(pc, dir),
		time.Duration(pc.FrequencyMillis)*time.Millisecond, pc.UseLaneEdge, pc.RandomTraffic)
}

func buildCrosswalkProducer(pc *ProducerConfig, dir street.Direction) *street.CrosswalkProducer {
	return street.NewCrosswalkProducer(producerTemplate(pc, dir),
		time.Duration(pc.FrequencyMillis)*time.Millisecond, pc.UseLaneEdge, pc.RandomTraffic)
}
