package street

import "math"

// Speed-policy thresholds for BRAKE obstacles. Distances are in street
// units, speed deltas in units per tick.
const (
	brakeTimeHorizon    = 100.0
	brakeFarDistance    = 200.0
	brakeNearDistance   = 100.0
	brakeSoftDelta      = 0.5
	brakeHardDelta      = 1.0
	speedRecoveryDelta  = 0.25
	passNudgeStep       = 8.0
	passPressureWidths  = 2.0
	passClearanceWidths = 5.0
)

// ImageWreck is the visual assigned to an obstacle once it has crashed.
const ImageWreck = "wreck"

// Obstacle is a single traffic participant. An Obstacle value is an
// immutable per-tick snapshot: Advance returns the next snapshot and never
// mutates the receiver. OriginSpeed and OriginY are fixed at creation and
// anchor speed recovery and lane-return behavior.
type Obstacle struct {
	ID string `json:"id"`
	Rect
	Image            string    `json:"image"`
	FlipH            bool      `json:"flip_horizontal"`
	Rotation         float64   `json:"rotation"`
	Speed            float64   `json:"speed"`
	Dir              Direction `json:"direction"`
	Avoidance        Avoidance `json:"avoidance"`
	DetectCollisions bool      `json:"detect_collisions"`
	Emergency        bool      `json:"emergency"`
	Crashed          bool      `json:"crashed"`
	OriginSpeed      float64   `json:"origin_speed"`
	OriginY          float64   `json:"origin_y"`
}

// hazard is anything the speed policy weighs: another obstacle or the player.
type hazard struct {
	rect      Rect
	speed     float64
	emergency bool
}

// Advance computes the obstacle's next snapshot against the supplied
// obstacle set (which may include the receiver itself; it is skipped by ID)
// and the player. A collision-sensitive obstacle that currently overlaps
// another obstacle becomes a terminal wreck: speed zero, collision checks
// off, emergency flag cleared. Origin fields are carried unchanged in every
// case.
func (o Obstacle) Advance(obstacles []Obstacle, player *Player) Obstacle {
	if o.DetectCollisions {
		for _, other := range obstacles {
			if other.ID == o.ID {
				continue
			}
			if o.Rect.Intersects(other.Rect) {
				return o.crash()
			}
		}
	}

	next := o
	next.Speed = o.adjustedSpeed(o.hazards(obstacles, player))
	next.X = o.X + next.Speed*float64(o.Dir)
	next.Y = o.adjustedY(obstacles)
	return next
}

func (o Obstacle) crash() Obstacle {
	next := o
	next.Crashed = true
	next.Speed = 0
	next.DetectCollisions = false
	next.Emergency = false
	next.Image = ImageWreck
	return next
}

// hazards builds the candidate hazard set: all other obstacles plus the
// player (treated as a stationary, non-emergency hazard).
func (o Obstacle) hazards(obstacles []Obstacle, player *Player) []hazard {
	hz := make([]hazard, 0, len(obstacles)+1)
	for _, other := range obstacles {
		if other.ID == o.ID {
			continue
		}
		hz = append(hz, hazard{rect: other.Rect, speed: other.Speed, emergency: other.Emergency})
	}
	if player != nil {
		hz = append(hz, hazard{rect: player.Rect})
	}
	return hz
}

// adjustedSpeed applies the BRAKE speed policy. NONE and PASS obstacles keep
// a constant speed. Braking pressure comes from the closest relevant hazard
// ahead; an emergency vehicle anywhere in the hazard set forces hard
// braking. When nothing forced a brake this tick, speed recovers toward the
// origin speed by at most speedRecoveryDelta. The result is clamped to >= 0.
func (o Obstacle) adjustedSpeed(hz []hazard) float64 {
	if o.Avoidance != AvoidBrake {
		return o.Speed
	}

	speed := o.Speed
	braking := false

	closest, dist, found := o.closestHazardAhead(hz)
	if found {
		// Time to collision is only meaningful while closing in; a
		// slower or equal-speed follower exerts no timing pressure.
		if closing := o.Speed - closest.speed; closing > 0 {
			if ttc := dist / closing; ttc > 0 && ttc < brakeTimeHorizon {
				speed -= brakeSoftDelta
				braking = true
			}
		}
		if dist < brakeFarDistance {
			speed -= brakeSoftDelta
			braking = true
		}
	}
	if (found && dist < brakeNearDistance) || anyEmergency(hz) {
		speed -= brakeHardDelta
		braking = true
	}
	if !braking && speed < o.OriginSpeed {
		speed = math.Min(o.OriginSpeed, speed+speedRecoveryDelta)
	}
	return math.Max(0, speed)
}

// closestHazardAhead returns the nearest hazard positioned ahead in the
// obstacle's direction of travel whose vertical span lies within one
// obstacle-height of this obstacle's, along with its horizontal distance.
func (o Obstacle) closestHazardAhead(hz []hazard) (hazard, float64, bool) {
	var best hazard
	bestDist := math.MaxFloat64
	found := false
	for _, h := range hz {
		if abs(h.rect.Y-o.Y) >= o.H {
			continue
		}
		if !o.isAhead(h.rect.X) {
			continue
		}
		if d := abs(h.rect.X - o.X); d < bestDist {
			bestDist = d
			best = h
			found = true
		}
	}
	return best, bestDist, found
}

func (o Obstacle) isAhead(x float64) bool {
	if o.Dir == Right {
		return x > o.X
	}
	return x < o.X
}

func anyEmergency(hz []hazard) bool {
	for _, h := range hz {
		if h.emergency {
			return true
		}
	}
	return false
}

// adjustedY applies the PASS lane-change policy; it only ever moves y, never
// speed. The player is ignored: overtaking considers obstacles alone.
func (o Obstacle) adjustedY(obstacles []Obstacle) float64 {
	if o.Avoidance != AvoidPass {
		return o.Y
	}

	closest, found := o.closestObstacleAhead(obstacles)
	if !found {
		return o.Y
	}

	// Never overtake something faster: fall back in behind it.
	if o.Speed < closest.Speed {
		return o.OriginY
	}

	// Displaced beyond one obstacle-height: try to merge back into the
	// origin lane if the slot is free and has clearance ahead.
	if abs(o.Y-o.OriginY) > o.H {
		back := o
		back.Y = o.OriginY
		if !back.overlapsAny(obstacles) {
			ahead, ok := back.closestObstacleAhead(obstacles)
			if !ok || abs(ahead.X-back.X) > passClearanceWidths*o.W {
				return o.OriginY
			}
		}
	}

	// No lane-change pressure until the obstacle ahead is close.
	if abs(closest.X-o.X) > passPressureWidths*o.W {
		return o.Y
	}

	// Nudge toward the passing side while the total displacement from the
	// origin lane stays below one obstacle-height.
	if abs(o.Y-o.OriginY) < o.H {
		return o.Y - passNudgeStep*float64(o.Dir)
	}
	return o.Y
}

// closestObstacleAhead returns the nearest other obstacle strictly ahead in
// the direction of travel, regardless of vertical position.
func (o Obstacle) closestObstacleAhead(obstacles []Obstacle) (Obstacle, bool) {
	var best Obstacle
	bestDist := math.MaxFloat64
	found := false
	for _, other := range obstacles {
		if other.ID == o.ID {
			continue
		}
		if !o.isAhead(other.X) {
			continue
		}
		if d := abs(other.X - o.X); d < bestDist {
			bestDist = d
			best = other
			found = true
		}
	}
	return best, found
}

func (o Obstacle) overlapsAny(obstacles []Obstacle) bool {
	for _, other := range obstacles {
		if other.ID == o.ID {
			continue
		}
		if o.Rect.Intersects(other.Rect) {
			return true
		}
	}
	return false
}

// exited reports whether the obstacle has fully left the street on its
// trailing side for the given street length.
func (o Obstacle) exited(streetLength float64) bool {
	if o.Dir == Left {
		return o.X+o.W <= 0
	}
	return o.X >= streetLength
}
