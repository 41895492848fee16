package street

// Player is the controllable crossing agent. Movement methods return a new
// Player clamped to the movement bounds; the simulation never moves the
// player on its own.
type Player struct {
	Rect
	Image  string
	Step   float64
	bounds Rect
}

// NewPlayer creates a player at rect moving step units per move, confined to
// bounds.
func NewPlayer(rect Rect, image string, step float64, bounds Rect) Player {
	return Player{Rect: rect, Image: image, Step: step, bounds: bounds}
}

// Bounds returns the player's box.
func (p Player) Bounds() Rect { return p.Rect }

// MoveUp returns the player shifted one step up, clamped to the movement
// bounds. The other Move methods behave the same on their axis.
func (p Player) MoveUp() Player {
	next := p
	next.Y = p.Y - p.Step
	return next.clamped()
}

func (p Player) MoveDown() Player {
	next := p
	next.Y = p.Y + p.Step
	return next.clamped()
}

func (p Player) MoveLeft() Player {
	next := p
	next.X = p.X - p.Step
	return next.clamped()
}

func (p Player) MoveRight() Player {
	next := p
	next.X = p.X + p.Step
	return next.clamped()
}

// MovementBounds returns the area the player is confined to.
func (p Player) MovementBounds() Rect { return p.bounds }

func (p Player) clamped() Player {
	next := p
	if next.X < p.bounds.X {
		next.X = p.bounds.X
	}
	if next.X+next.W > p.bounds.Right() {
		next.X = p.bounds.Right() - next.W
	}
	if next.Y < p.bounds.Y {
		next.Y = p.bounds.Y
	}
	if next.Y+next.H > p.bounds.Bottom() {
		next.Y = p.bounds.Bottom() - next.H
	}
	return next
}
