package street

// Direction is the travel orientation of a lane and of every obstacle in it.
// The numeric values are used directly as the sign of horizontal movement.
type Direction int

const (
	// Left means decreasing x.
	Left Direction = -1
	// Right means increasing x.
	Right Direction = 1
)

// String returns the lowercase name used in configuration files.
func (d Direction) String() string {
	if d == Left {
		return "left"
	}
	return "right"
}

// Avoidance is an obstacle's hazard-avoidance policy.
type Avoidance int

const (
	// AvoidNone keeps a constant speed and lane.
	AvoidNone Avoidance = iota
	// AvoidBrake negotiates speed against hazards ahead, never the lane.
	AvoidBrake
	// AvoidPass negotiates the lane (y) against obstacles ahead, never speed.
	AvoidPass
)

// String returns the lowercase name used in configuration files.
func (a Avoidance) String() string {
	switch a {
	case AvoidBrake:
		return "brake"
	case AvoidPass:
		return "pass"
	default:
		return "none"
	}
}

// Rect is an axis-aligned bounding box. X and Y are the top-left corner.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Intersects reports whether the two boxes overlap. Overlap holds iff
// neither box is entirely left of, right of, above or below the other; a
// shared edge does not count as overlap.
func (r Rect) Intersects(o Rect) bool {
	if r.X >= o.Right() || o.X >= r.Right() {
		return false
	}
	if r.Y >= o.Bottom() || o.Y >= r.Bottom() {
		return false
	}
	return true
}

// SceneEntity is a free-standing entity on the street, outside any lane.
// Advancing returns the entity's next state; static entities return
// themselves.
type SceneEntity interface {
	Bounds() Rect
	Advance(now int64, obstacles []Obstacle, player *Player) SceneEntity
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
