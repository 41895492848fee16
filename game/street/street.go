package street

import (
	"fmt"
	"math/rand"
)

const (
	// MaxObstaclesPerLane caps spawning per lane; existing obstacles are
	// never evicted to enforce it.
	MaxObstaclesPerLane = 15

	// spawnEdgeOffset places new obstacles this far beyond the street end
	// they enter from.
	spawnEdgeOffset = 50.0

	// spawnRetries bounds the shift-and-retry loop when a spawn position
	// collides. Collision avoidance on spawn is best-effort.
	spawnRetries = 3
)

// Street composes the lanes and free-standing scene entities of the whole
// crossing. Street is a value: GenerateObstacles and Advance return the next
// Street rather than mutating the receiver. Lane vertical centers stack
// downward from Top in lane-insertion order.
type Street struct {
	Top    float64
	Length float64
	Lanes  []Lane
	Scene  []SceneEntity

	rng *rand.Rand
}

// NewStreet creates an empty street. rng drives lane and producer selection
// during spawning and must not be nil.
func NewStreet(top, length float64, rng *rand.Rand) Street {
	return Street{Top: top, Length: length, rng: rng}
}

// WithLane appends a lane of the given direction and width. The lane's
// vertical center is computed from the lanes inserted before it, and every
// producer template is centered on it.
func (s Street) WithLane(dir Direction, width float64, topLine, bottomLine LineStyle, producers []ObstacleProducer) Street {
	centerY := s.Top + s.Width() + width/2
	for _, p := range producers {
		if pl, ok := p.(lanePlaceable); ok {
			pl.placeInLane(centerY)
		}
	}
	next := s
	next.Lanes = append(append([]Lane{}, s.Lanes...), Lane{
		Dir:        dir,
		Width:      width,
		Length:     s.Length,
		CenterY:    centerY,
		TopLine:    topLine,
		BottomLine: bottomLine,
		Producers:  producers,
	})
	return next
}

// WithScene appends free-standing scene entities (crosswalks, signs).
func (s Street) WithScene(entities ...SceneEntity) Street {
	next := s
	next.Scene = append(append([]SceneEntity{}, s.Scene...), entities...)
	return next
}

// Width returns the street's total width, the sum of its lane widths.
func (s Street) Width() float64 {
	w := 0.0
	for _, l := range s.Lanes {
		w += l.Width
	}
	return w
}

// AllObstacles returns every live obstacle across all lanes.
func (s Street) AllObstacles() []Obstacle {
	n := 0
	for _, l := range s.Lanes {
		n += len(l.Obstacles)
	}
	all := make([]Obstacle, 0, n)
	for _, l := range s.Lanes {
		all = append(all, l.Obstacles...)
	}
	return all
}

// GenerateObstacles runs one spawn round. Exactly one lane is chosen
// uniformly at random as the only lane eligible this tick; within it, one
// producer index is chosen the same way. A producer fires only if ready and
// either opted out of randomized-traffic selection or holding the chosen
// index. Spawn positions start at the lane's off-screen edge and shift away
// from the street on collision, at most spawnRetries times.
//
// A readiness contract violation (ErrNoPlayer, ErrNoSignal) aborts the
// whole spawn round and is returned to the caller.
func (s Street) GenerateObstacles(now int64, player *Player) (Street, error) {
	if len(s.Lanes) == 0 {
		return s, nil
	}
	laneIdx := s.rng.Intn(len(s.Lanes))
	lane := s.Lanes[laneIdx]
	if len(lane.Obstacles) >= MaxObstaclesPerLane || len(lane.Producers) == 0 {
		return s, nil
	}
	chosen := s.rng.Intn(len(lane.Producers))

	next := lane
	for i, p := range lane.Producers {
		ready, err := p.ReadyForNext(now, s.Scene, player)
		if err != nil {
			return s, fmt.Errorf("lane %d producer %d: %w", laneIdx, i, err)
		}
		if !ready {
			continue
		}
		if p.InRandomTraffic() && i != chosen {
			continue
		}

		x := s.spawnX(lane.Dir, p)
		if p.UsesLaneEdge() {
			template := p.Template()
			probe := template.Rect
			probe.X = x
			for attempt := 0; attempt < spawnRetries; attempt++ {
				if !collidesAny(probe, next.Obstacles) {
					break
				}
				// Shift further off-screen, opposite to travel.
				probe.X -= float64(lane.Dir) * 2 * template.W
			}
			x = probe.X
		}
		next = next.WithObstacle(p.Next(now, x))
	}

	out := s
	out.Lanes = append([]Lane{}, s.Lanes...)
	out.Lanes[laneIdx] = next
	return out, nil
}

// spawnX returns the off-screen entry position for the lane direction, or
// the template's own x for producers that don't spawn at the lane edge.
func (s Street) spawnX(dir Direction, p ObstacleProducer) float64 {
	if !p.UsesLaneEdge() {
		return p.Template().X
	}
	if dir == Right {
		return -spawnEdgeOffset
	}
	return s.Length + spawnEdgeOffset
}

func collidesAny(r Rect, obstacles []Obstacle) bool {
	for _, o := range obstacles {
		if r.Intersects(o.Rect) {
			return true
		}
	}
	return false
}

// Advance moves every lane and scene entity one tick forward. Each lane
// receives the globally combined obstacle set so obstacles can react to
// traffic outside their own lane.
func (s Street) Advance(now int64, player *Player) Street {
	all := s.AllObstacles()

	next := s
	next.Lanes = make([]Lane, len(s.Lanes))
	for i, l := range s.Lanes {
		next.Lanes[i] = l.Advance(all, player)
	}
	next.Scene = make([]SceneEntity, len(s.Scene))
	for i, e := range s.Scene {
		next.Scene[i] = e.Advance(now, all, player)
	}
	return next
}

// DetectCollision reports whether the player's box intersects any live
// obstacle. Pure query; acting on a collision is the game loop's job.
func (s Street) DetectCollision(player Player) bool {
	for _, l := range s.Lanes {
		for _, o := range l.Obstacles {
			if player.Rect.Intersects(o.Rect) {
				return true
			}
		}
	}
	return false
}

// PrimeProducers re-anchors every producer cooldown at now. Used after
// restoring a persisted session.
func (s Street) PrimeProducers(now int64) {
	for _, l := range s.Lanes {
		for _, p := range l.Producers {
			if pr, ok := p.(interface{ Prime(int64) }); ok {
				pr.Prime(now)
			}
		}
	}
}

// lanePlaceable is satisfied by the producer implementations in this
// package via their embedded Producer.
type lanePlaceable interface {
	placeInLane(centerY float64)
}
