package street

// signToggleInterval is the minimum simulated time between beacon toggles.
const signToggleInterval = 500 // ms

// Crosswalk is a static zone painted on the street. It never changes state;
// its box is what the sign monitors and what target-gated producers test the
// player against.
type Crosswalk struct {
	Rect
}

// NewCrosswalk creates a crosswalk zone at the given box.
func NewCrosswalk(rect Rect) *Crosswalk {
	return &Crosswalk{Rect: rect}
}

// Bounds returns the crosswalk zone.
func (c *Crosswalk) Bounds() Rect { return c.Rect }

// Advance returns the crosswalk unchanged. Crosswalks are static.
func (c *Crosswalk) Advance(int64, []Obstacle, *Player) SceneEntity { return c }

// CrosswalkSign is the pedestrian signal. Once the player steps into the
// monitored zone the sign starts flashing and never stops; the two beacons
// alternate at most once per signToggleInterval. FlipH and Rotation are
// derived from the flashing state each toggle, so a rendered sign always
// shows the beacon selected by Sequence.
type CrosswalkSign struct {
	Rect
	Image      string
	Dir        Direction
	Zone       *Crosswalk
	Flashing   bool
	Sequence   bool
	FlipH      bool
	Rotation   float64
	LastToggle int64
}

// NewCrosswalkSign creates a dark sign at rect facing dir, monitoring zone.
func NewCrosswalkSign(rect Rect, image string, dir Direction, zone *Crosswalk) *CrosswalkSign {
	return &CrosswalkSign{Rect: rect, Image: image, Dir: dir, Zone: zone}
}

// Bounds returns the sign post's box.
func (s *CrosswalkSign) Bounds() Rect { return s.Rect }

// Advance runs one step of the signal state machine. The sign toggles when
// it is already flashing or the player currently occupies the monitored
// zone, and at least signToggleInterval has elapsed since the last toggle.
// The first toggle latches Flashing on.
func (s *CrosswalkSign) Advance(now int64, _ []Obstacle, player *Player) SceneEntity {
	triggered := s.Flashing
	if !triggered && player != nil && s.Zone != nil {
		triggered = player.Rect.Intersects(s.Zone.Bounds())
	}
	if !triggered || now-s.LastToggle < signToggleInterval {
		return s
	}

	next := *s
	next.Flashing = true
	next.Sequence = !s.Sequence
	next.LastToggle = now
	next.FlipH, next.Rotation = signPose(next.Flashing, next.Sequence, next.Dir)
	return &next
}

// signPose maps (flashing, sequence, direction) to the visual facing. A dark
// sign keeps its neutral pose; a flashing sign flips or rotates so the lit
// beacon matches the sequence, with the facing direction deciding which
// physical orientation each sequence value maps to.
func signPose(flashing, sequence bool, dir Direction) (flipH bool, rotation float64) {
	if !flashing {
		return false, 0
	}
	if dir == Left {
		return sequence, 180
	}
	return !sequence, 0
}
