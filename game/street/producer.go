package street

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNoPlayer reports a target-gated producer invoked without a player.
	// This is a programming-contract violation: the street composition is
	// wrong, not a transient condition.
	ErrNoPlayer = errors.New("target producer requires a player entity")

	// ErrNoSignal reports a crosswalk-gated producer invoked on a street
	// with no crosswalk sign among its scene entities.
	ErrNoSignal = errors.New("crosswalk producer requires a crosswalk sign entity")
)

// ObstacleProducer decides, each tick, whether a new obstacle may be emitted
// and builds it. Implementations share the base time gate and narrow the
// readiness condition.
type ObstacleProducer interface {
	// ReadyForNext reports whether a new obstacle may be emitted at the
	// given simulated time. The scene entities and player are the live
	// entity set gating conditions are evaluated against. A missing
	// required entity is a contract violation reported as an error.
	ReadyForNext(now int64, scene []SceneEntity, player *Player) (bool, error)

	// Next clones the template at the given x (ignored when the producer
	// does not take its x from the lane edge) and stamps the emission
	// time. The cooldown is consumed whether or not the caller keeps the
	// obstacle.
	Next(now int64, x float64) Obstacle

	// Template returns the immutable obstacle template.
	Template() Obstacle

	// UsesLaneEdge reports whether spawn x is assigned by the lane edge
	// rather than taken from the template.
	UsesLaneEdge() bool

	// InRandomTraffic reports whether the producer participates in the
	// street's random single-producer selection. Producers that opt out
	// fire unconditionally whenever ready.
	InRandomTraffic() bool
}

// Producer is the base, purely time-gated obstacle producer. The
// last-emission timestamp is the only producer state that changes over time.
type Producer struct {
	template      Obstacle
	frequency     int64 // minimum ms between emissions
	useLaneEdge   bool
	randomTraffic bool
	lastSpawn     int64
}

// NewProducer creates a producer emitting clones of template at most once
// per frequency interval.
func NewProducer(template Obstacle, frequency time.Duration, useLaneEdge, randomTraffic bool) *Producer {
	return &Producer{
		template:      template,
		frequency:     frequency.Milliseconds(),
		useLaneEdge:   useLaneEdge,
		randomTraffic: randomTraffic,
	}
}

// ReadyForNext reports whether the cooldown interval has fully elapsed.
func (p *Producer) ReadyForNext(now int64, _ []SceneEntity, _ *Player) (bool, error) {
	return now-p.lastSpawn > p.frequency, nil
}

// Next clones the template at x and consumes the cooldown.
func (p *Producer) Next(now int64, x float64) Obstacle {
	p.lastSpawn = now
	o := p.template
	o.ID = uuid.NewString()
	if p.useLaneEdge {
		o.X = x
	}
	o.OriginSpeed = o.Speed
	o.OriginY = o.Y
	return o
}

// Template returns the obstacle template.
func (p *Producer) Template() Obstacle { return p.template }

// UsesLaneEdge reports whether spawn x comes from the lane edge.
func (p *Producer) UsesLaneEdge() bool { return p.useLaneEdge }

// InRandomTraffic reports whether the producer is subject to the street's
// random producer selection.
func (p *Producer) InRandomTraffic() bool { return p.randomTraffic }

// Prime moves the cooldown anchor to now. Used when restoring a persisted
// session so producers don't all fire on the first restored tick.
func (p *Producer) Prime(now int64) { p.lastSpawn = now }

// placeInLane centers the template vertically on the lane and records that
// center as the template's origin lane. Called once during street assembly.
func (p *Producer) placeInLane(centerY float64) {
	p.template.Y = centerY - p.template.H/2
	p.template.OriginY = p.template.Y
}

// TargetProducer emits only while the player's box intersects a designated
// target zone. Invoking it without a player is a contract violation.
type TargetProducer struct {
	Producer
	target SceneEntity
}

// NewTargetProducer creates a producer gated on the player touching target.
func NewTargetProducer(template Obstacle, frequency time.Duration, useLaneEdge, randomTraffic bool, target SceneEntity) *TargetProducer {
	return &TargetProducer{
		Producer: *NewProducer(template, frequency, useLaneEdge, randomTraffic),
		target:   target,
	}
}

// ReadyForNext applies the time gate, then requires the player to intersect
// the target zone.
func (p *TargetProducer) ReadyForNext(now int64, scene []SceneEntity, player *Player) (bool, error) {
	ready, err := p.Producer.ReadyForNext(now, scene, player)
	if err != nil || !ready {
		return false, err
	}
	if player == nil {
		return false, ErrNoPlayer
	}
	return player.Rect.Intersects(p.target.Bounds()), nil
}

// CrosswalkProducer emits only while the street's crosswalk sign is
// flashing. Invoking it on a street without a sign is a contract violation.
type CrosswalkProducer struct {
	Producer
}

// NewCrosswalkProducer creates a producer gated on a flashing crosswalk sign.
func NewCrosswalkProducer(template Obstacle, frequency time.Duration, useLaneEdge, randomTraffic bool) *CrosswalkProducer {
	return &CrosswalkProducer{Producer: *NewProducer(template, frequency, useLaneEdge, randomTraffic)}
}

// ReadyForNext applies the time gate, then scans the scene entities for the
// crosswalk sign and requires it to be flashing.
func (p *CrosswalkProducer) ReadyForNext(now int64, scene []SceneEntity, player *Player) (bool, error) {
	ready, err := p.Producer.ReadyForNext(now, scene, player)
	if err != nil || !ready {
		return false, err
	}
	for _, e := range scene {
		if sign, ok := e.(*CrosswalkSign); ok {
			return sign.Flashing, nil
		}
	}
	return false, ErrNoSignal
}
