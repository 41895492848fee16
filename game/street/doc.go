// Package street implements the traffic simulation core for the Street
// Crossing Game.
//
// The street package implements:
//   - Axis-aligned bounding boxes and intersection testing
//   - Obstacles with braking and overtaking avoidance policies
//   - Throttled obstacle producers (plain, target-gated, signal-gated)
//   - Directional lanes that advance and prune their obstacles
//   - The Street aggregate that orchestrates spawning and movement
//   - The crosswalk sign state machine
//   - Player movement clamped to the street bounds
//
// Core Types:
//
// Street composes Lanes and scene entities (Crosswalk, CrosswalkSign) and is
// advanced one discrete tick at a time. Obstacle, Lane, Street and Player are
// immutable values: every transition returns a new value rather than mutating
// in place. The only mutable state in the package is a producer's
// last-emission timestamp, which models a spawn cooldown that persists
// across ticks.
//
// Time and Randomness:
//
// All transitions take the current simulated time in milliseconds, supplied
// by the external tick driver. Spawn decisions draw from an injected
// *rand.Rand so tests can force deterministic spawn sequencing.
//
// Usage:
//
//	rng := rand.New(rand.NewSource(seed))
//	st := street.NewStreet(40, 600, rng)
//	st = st.WithLane(street.Right, 40, top, bottom, producers)
//
//	// once per tick, driven externally:
//	st, err := st.GenerateObstacles(now, &player)
//	if err != nil {
//		log.Fatal(err) // misconfigured street composition
//	}
//	st = st.Advance(now, &player)
//	if st.DetectCollision(player) {
//		// game over is the driver's responsibility
//	}
package street
