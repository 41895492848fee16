package main

import (
	"log"
	"math"
)

// GapStrategy crosses lane by lane: it waits on a boundary until the next
// lane has a safe gap, retreats when a vehicle closes in on the lane it is
// standing in, and walks along the bottom sidewalk to a crosswalk first when
// the config has one.
type GapStrategy struct {
	waitTicks int
	lastLane  int
}

// Ticks of headway required before stepping in front of a vehicle. Retreat
// triggers at a tighter threshold so the bot holds ground while it still has
// time to advance instead.
const (
	entryHeadway   = 18.0
	dangerHeadway  = 8.0
	emergencyScale = 2.0
)

func NewGapStrategy() *GapStrategy {
	return &GapStrategy{lastLane: -1}
}

func (s *GapStrategy) Reset() {
	s.waitTicks = 0
	s.lastLane = -1
}

// NextMove picks one move from the snapshot, or "" to wait for a gap.
func (s *GapStrategy) NextMove(state *GameState) string {
	column := state.Player.X + state.Player.Width/2
	onBottomSidewalk := state.Player.Y >= state.StreetTop+state.StreetWidth

	// Head for the crosswalk before stepping onto the street
	if onBottomSidewalk && len(state.Signs) > 0 {
		if dir := s.walkToCrosswalk(state, column); dir != "" {
			s.waitTicks = 0
			return dir
		}
	}

	currentLane := laneAt(state, state.Player.Y)

	// A vehicle closing in on our own lane beats everything else
	if currentLane >= 0 && s.threatened(state, currentLane, column, dangerHeadway) {
		below := laneAt(state, state.Player.Y+state.Player.Step)
		if below < 0 || !s.threatened(state, below, column, dangerHeadway) {
			log.Printf("⬇️  Retreating from lane %d", currentLane)
			s.waitTicks = 0
			return "down"
		}
		// Nowhere to go, hold position and hope the driver brakes
		return ""
	}

	// Step up when the lane above is clear
	targetLane := laneAt(state, state.Player.Y-state.Player.Step)
	if targetLane < 0 {
		// Above the street or onto the far sidewalk, always safe
		s.waitTicks = 0
		return "up"
	}

	if !s.threatened(state, targetLane, column, entryHeadway) {
		if targetLane != s.lastLane {
			log.Printf("🚶 Entering lane %d", targetLane)
			s.lastLane = targetLane
		}
		s.waitTicks = 0
		return "up"
	}

	s.waitTicks++
	if s.waitTicks > 0 && s.waitTicks%100 == 0 {
		log.Printf("⏳ Waiting for a gap in lane %d (%d polls)", targetLane, s.waitTicks)
	}
	return ""
}

// walkToCrosswalk returns a lateral step toward the first sign's zone, or ""
// when the bot is already lined up with it.
func (s *GapStrategy) walkToCrosswalk(state *GameState, column float64) string {
	sign := state.Signs[0]
	center := sign.X + sign.Width/2

	if math.Abs(column-center) <= state.Player.Step {
		return ""
	}
	if column < center {
		return "right"
	}
	return "left"
}

// threatened reports whether any vehicle in the lane overlaps the column or
// will reach it within the given headway in ticks. Wrecks block the column
// they sit on but never approach.
func (s *GapStrategy) threatened(state *GameState, laneIndex int, column float64, headway float64) bool {
	clearance := state.Player.Width

	for _, o := range state.Obstacles {
		if o.LaneIndex != laneIndex {
			continue
		}

		// Physical overlap, wrecked or not
		if o.X <= column+clearance && o.X+o.Width >= column-clearance {
			return true
		}
		if o.Crashed || o.Speed <= 0 {
			continue
		}

		var dist float64
		switch o.Direction {
		case "right":
			dist = column - (o.X + o.Width)
		case "left":
			dist = o.X - column
		}
		if dist < 0 {
			// Already past us
			continue
		}

		h := headway
		if o.Emergency {
			h *= emergencyScale
		}
		if dist < o.Speed*h {
			return true
		}
	}
	return false
}

// laneAt returns the index of the lane containing the y coordinate, or -1
// when y is outside the street.
func laneAt(state *GameState, y float64) int {
	for i, lane := range state.Lanes {
		if y >= lane.TopY && y < lane.BottomY {
			return i
		}
	}
	return -1
}
