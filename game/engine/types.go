package engine

import "github.com/streetcross/crossing-game/game/street"

const (
	// Validation constants
	MinStreetLength = 100
	MaxStreetLength = 10000
	MinLaneWidth    = 10
	MaxLanes        = 12
	MinTickMillis   = 10
	MaxTickMillis   = 1000

	// DefaultTickMillis is the simulated time added per tick when the
	// config leaves tick_ms unset.
	DefaultTickMillis = 50

	WebSocketBufferSize = 256
)

// GameConfig represents the game configuration from JSON
type GameConfig struct {
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	StreetLength float64          `json:"street_length"`
	StreetTop    float64          `json:"street_top"`
	AreaHeight   float64          `json:"area_height"`
	TickMillis   int64            `json:"tick_ms"`
	Player       PlayerConfig     `json:"player"`
	Lanes        []LaneConfig     `json:"lanes"`
	Crosswalk    *CrosswalkConfig `json:"crosswalk,omitempty"`
	Messages     struct {
		Welcome string `json:"welcome"`
		Crashed string `json:"crashed"`
		Crossed string `json:"crossed"`
	} `json:"messages"`
}

// PlayerConfig describes the player's start box and per-move step.
type PlayerConfig struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Step   float64 `json:"step"`
	Image  string  `json:"image"`
}

// LaneConfig describes one lane and its producers.
type LaneConfig struct {
	Direction  string           `json:"direction"`
	Width      float64          `json:"width"`
	TopLine    street.LineStyle `json:"top_line"`
	BottomLine street.LineStyle `json:"bottom_line"`
	Producers  []ProducerConfig `json:"producers"`
}

// ProducerConfig is an obstacle template plus the producer's gating knobs.
type ProducerConfig struct {
	Image            string  `json:"image"`
	Width            float64 `json:"width"`
	Height           float64 `json:"height"`
	Speed            float64 `json:"speed"`
	Avoidance        string  `json:"avoidance"`
	FrequencyMillis  int64   `json:"frequency_ms"`
	DetectCollisions bool    `json:"detect_collisions"`
	Emergency        bool    `json:"emergency"`
	RandomTraffic    bool    `json:"random_traffic"`
	UseLaneEdge      bool    `json:"use_lane_edge"`
	X                float64 `json:"x,omitempty"` // used when use_lane_edge is false
}

// CrosswalkConfig describes the painted zone, the pedestrian signal watching
// it, and the signal-gated producer placed in one of the lanes.
type CrosswalkConfig struct {
	ZoneX     float64 `json:"zone_x"`
	ZoneWidth float64 `json:"zone_width"`
	Sign      struct {
		X         float64 `json:"x"`
		Y         float64 `json:"y"`
		Width     float64 `json:"width"`
		Height    float64 `json:"height"`
		Image     string  `json:"image"`
		Direction string  `json:"direction"`
	} `json:"sign"`
	LaneIndex int             `json:"lane_index"`
	Producer  *ProducerConfig `json:"producer,omitempty"`
}

// Point is an x,y coordinate pair in street units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PlayerView is the player portion of a state snapshot.
type PlayerView struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Step   float64 `json:"step"`
	Image  string  `json:"image"`
}

// ObstacleView is one obstacle in a state snapshot. Origin fields and the
// lane index are carried so a snapshot can be restored.
type ObstacleView struct {
	ID               string  `json:"id"`
	X                float64 `json:"x"`
	Y                float64 `json:"y"`
	Width            float64 `json:"width"`
	Height           float64 `json:"height"`
	Image            string  `json:"image"`
	FlipH            bool    `json:"flip_horizontal"`
	Rotation         float64 `json:"rotation"`
	Speed            float64 `json:"speed"`
	Direction        string  `json:"direction"`
	Avoidance        string  `json:"avoidance"`
	Emergency        bool    `json:"emergency"`
	Crashed          bool    `json:"crashed"`
	DetectCollisions bool    `json:"detect_collisions"`
	OriginSpeed      float64 `json:"origin_speed"`
	OriginY          float64 `json:"origin_y"`
	LaneIndex        int     `json:"lane_index"`
}

// LaneView is the geometry a renderer needs to draw one lane.
type LaneView struct {
	Direction  string           `json:"direction"`
	Width      float64          `json:"width"`
	CenterY    float64          `json:"center_y"`
	TopY       float64          `json:"top_y"`
	BottomY    float64          `json:"bottom_y"`
	TopLine    street.LineStyle `json:"top_line"`
	BottomLine street.LineStyle `json:"bottom_line"`
}

// SignView is the pedestrian signal portion of a state snapshot.
type SignView struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Image      string  `json:"image"`
	Direction  string  `json:"direction"`
	Flashing   bool    `json:"flashing"`
	Sequence   bool    `json:"sequence"`
	FlipH      bool    `json:"flip_horizontal"`
	Rotation   float64 `json:"rotation"`
	LastToggle int64   `json:"last_toggle"`
}

// GameState is the complete snapshot handed to transports and persisted for
// sessions. It is a plain DTO; all simulation state lives in the engine.
type GameState struct {
	Tick         int64          `json:"tick"`
	SimTime      int64          `json:"sim_time_ms"`
	Player       PlayerView     `json:"player"`
	Obstacles    []ObstacleView `json:"obstacles"`
	Lanes        []LaneView     `json:"lanes"`
	Signs        []SignView     `json:"signs"`
	StreetTop    float64        `json:"street_top"`
	StreetWidth  float64        `json:"street_width"`
	StreetLength float64        `json:"street_length"`
	AreaHeight   float64        `json:"area_height"`
	Crashed      bool           `json:"crashed"`
	GameOver     bool           `json:"game_over"`
	Crossings    int            `json:"crossings"`
	Message      string         `json:"message"`
	ConfigName   string         `json:"config_name"`

	MoveHistory []MoveHistoryEntry `json:"move_history"`
	TotalMoves  int                `json:"total_moves"`

	// CurrentMoves tracks only the moves since the last reset. It mirrors
	// MoveHistory entries but gets cleared on reset while MoveHistory
	// remains cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`
}

// MoveHistoryEntry represents a single move in the game history
type MoveHistoryEntry struct {
	Action       string `json:"action"`
	FromPosition Point  `json:"from_position"`
	ToPosition   Point  `json:"to_position"`
	Timestamp    int64  `json:"timestamp"`
	Success      bool   `json:"success"`
	MoveNumber   int    `json:"move_number"`
}
