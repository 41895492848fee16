package street

// LineStyle describes how one of a lane's boundary lines is drawn. The core
// never draws anything; the style is exposed to the render collaborator.
type LineStyle struct {
	Color       string    `json:"color"`
	Width       float64   `json:"width"`
	Dashed      bool      `json:"dashed"`
	Hidden      bool      `json:"hidden"`
	DashPattern []float64 `json:"dash_pattern,omitempty"`
}

// Lane is an ordered, directional strip of the street. The producer list is
// fixed at construction; the obstacle list is replaced wholesale each tick.
type Lane struct {
	Dir        Direction
	Width      float64
	Length     float64
	CenterY    float64
	TopLine    LineStyle
	BottomLine LineStyle
	Producers  []ObstacleProducer
	Obstacles  []Obstacle
}

// Top returns the y coordinate of the lane's upper boundary.
func (l Lane) Top() float64 { return l.CenterY - l.Width/2 }

// Bottom returns the y coordinate of the lane's lower boundary.
func (l Lane) Bottom() float64 { return l.CenterY + l.Width/2 }

// WithObstacle returns a copy of the lane with o appended.
func (l Lane) WithObstacle(o Obstacle) Lane {
	next := l
	next.Obstacles = make([]Obstacle, len(l.Obstacles), len(l.Obstacles)+1)
	copy(next.Obstacles, l.Obstacles)
	next.Obstacles = append(next.Obstacles, o)
	return next
}

// Advance maps Advance over every obstacle in the lane and drops the ones
// whose box has fully exited the street on their trailing side. Each
// obstacle sees the supplied obstacle set — normally the street-wide
// combined set — so hazard detection works across lanes and against the
// player.
func (l Lane) Advance(all []Obstacle, player *Player) Lane {
	next := l
	next.Obstacles = make([]Obstacle, 0, len(l.Obstacles))
	for _, o := range l.Obstacles {
		moved := o.Advance(all, player)
		if moved.exited(l.Length) {
			continue
		}
		next.Obstacles = append(next.Obstacles, moved)
	}
	return next
}
