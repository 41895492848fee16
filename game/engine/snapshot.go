package engine

import (
	"fmt"

	"github.com/streetcross/crossing-game/game/street"
)

// snapshotLocked builds the full state DTO. Caller holds e.mu.
func (e *GameEngine) snapshotLocked() *GameState {
	state := &GameState{
		Tick:         e.tick,
		SimTime:      e.simTime,
		Player:       playerView(e.player),
		StreetTop:    e.street.Top,
		StreetWidth:  e.street.Width(),
		StreetLength: e.street.Length,
		AreaHeight:   e.config.AreaHeight,
		Crashed:      e.crashed,
		GameOver:     e.gameOver,
		Crossings:    e.crossings,
		Message:      e.message,
		ConfigName:   e.config.Name,

		MoveHistory:       append([]MoveHistoryEntry{}, e.moveHistory...),
		TotalMoves:        e.totalMoves,
		CurrentMoves:      append([]MoveHistoryEntry{}, e.currentMoves...),
		CurrentMovesCount: len(e.currentMoves),
	}

	for i, lane := range e.street.Lanes {
		state.Lanes = append(state.Lanes, LaneView{
			Direction:  lane.Dir.String(),
			Width:      lane.Width,
			CenterY:    lane.CenterY,
			TopY:       lane.Top(),
			BottomY:    lane.Bottom(),
			TopLine:    lane.TopLine,
			BottomLine: lane.BottomLine,
		})
		for _, o := range lane.Obstacles {
			state.Obstacles = append(state.Obstacles, obstacleView(o, i))
		}
	}

	for _, entity := range e.street.Scene {
		if sign, ok := entity.(*street.CrosswalkSign); ok {
			state.Signs = append(state.Signs, signView(sign))
		}
	}

	return state
}

func playerView(p street.Player) PlayerView {
	b := p.Bounds()
	return PlayerView{X: b.X, Y: b.Y, Width: b.W, Height: b.H, Step: p.Step, Image: p.Image}
}

func obstacleView(o street.Obstacle, laneIndex int) ObstacleView {
	return ObstacleView{
		ID:               o.ID,
		X:                o.X,
		Y:                o.Y,
		Width:            o.W,
		Height:           o.H,
		Image:            o.Image,
		FlipH:            o.FlipH,
		Rotation:         o.Rotation,
		Speed:            o.Speed,
		Direction:        o.Dir.String(),
		Avoidance:        o.Avoidance.String(),
		Emergency:        o.Emergency,
		Crashed:          o.Crashed,
		DetectCollisions: o.DetectCollisions,
		OriginSpeed:      o.OriginSpeed,
		OriginY:          o.OriginY,
		LaneIndex:        laneIndex,
	}
}

func signView(s *street.CrosswalkSign) SignView {
	return SignView{
		X:          s.X,
		Y:          s.Y,
		Width:      s.W,
		Height:     s.H,
		Image:      s.Image,
		Direction:  s.Dir.String(),
		Flashing:   s.Flashing,
		Sequence:   s.Sequence,
		FlipH:      s.FlipH,
		Rotation:   s.Rotation,
		LastToggle: s.LastToggle,
	}
}

// SetState restores a previously snapshotted state, rebuilding the street
// from the current config and reinstalling obstacles, signal state, player
// position and counters. Producer cooldowns are re-anchored at the restored
// simulated time so a loaded session does not open with a spawn burst.
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.street, e.player = buildStreet(e.config, e.rng)

	for _, view := range state.Obstacles {
		if view.LaneIndex < 0 || view.LaneIndex >= len(e.street.Lanes) {
			return fmt.Errorf("obstacle %s: lane index %d out of range", view.ID, view.LaneIndex)
		}
		o, err := obstacleFromView(view)
		if err != nil {
			return fmt.Errorf("obstacle %s: %v", view.ID, err)
		}
		e.street.Lanes[view.LaneIndex] = e.street.Lanes[view.LaneIndex].WithObstacle(o)
	}

	if len(state.Signs) > 0 {
		restored := state.Signs[0]
		for _, entity := range e.street.Scene {
			if sign, ok := entity.(*street.CrosswalkSign); ok {
				sign.Flashing = restored.Flashing
				sign.Sequence = restored.Sequence
				sign.FlipH = restored.FlipH
				sign.Rotation = restored.Rotation
				sign.LastToggle = restored.LastToggle
				break
			}
		}
	}

	moved := e.player
	moved.X = state.Player.X
	moved.Y = state.Player.Y
	e.player = moved

	e.tick = state.Tick
	e.simTime = state.SimTime
	e.crashed = state.Crashed
	e.gameOver = state.GameOver
	e.crossings = state.Crossings
	e.message = state.Message
	e.moveHistory = append([]MoveHistoryEntry{}, state.MoveHistory...)
	e.totalMoves = state.TotalMoves
	e.currentMoves = append([]MoveHistoryEntry{}, state.CurrentMoves...)

	e.street.PrimeProducers(e.simTime)
	return nil
}

func obstacleFromView(view ObstacleView) (street.Obstacle, error) {
	dir, err := parseDirection(view.Direction)
	if err != nil {
		return street.Obstacle{}, err
	}
	avoidance, err := parseAvoidance(view.Avoidance)
	if err != nil {
		return street.Obstacle{}, err
	}
	return street.Obstacle{
		ID:               view.ID,
		Rect:             street.Rect{X: view.X, Y: view.Y, W: view.Width, H: view.Height},
		Image:            view.Image,
		FlipH:            view.FlipH,
		Rotation:         view.Rotation,
		Speed:            view.Speed,
		Dir:              dir,
		Avoidance:        avoidance,
		DetectCollisions: view.DetectCollisions,
		Emergency:        view.Emergency,
		Crashed:          view.Crashed,
		OriginSpeed:      view.OriginSpeed,
		OriginY:          view.OriginY,
	}, nil
}
