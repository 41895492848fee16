package street

import "testing"

func newTestSign() (*CrosswalkSign, *Crosswalk) {
	zone := NewCrosswalk(Rect{X: 200, Y: 0, W: 60, H: 300})
	sign := NewCrosswalkSign(Rect{X: 270, Y: 0, W: 10, H: 30}, "sign", Right, zone)
	return sign, zone
}

func TestSignStaysDarkWithoutPlayerInZone(t *testing.T) {
	sign, _ := newTestSign()
	outside := NewPlayer(Rect{X: 0, Y: 0, W: 20, H: 20}, "player", 10, Rect{W: 600, H: 400})

	var e SceneEntity = sign
	for tick := 1; tick <= 10; tick++ {
		e = e.Advance(int64(tick*100), nil, &outside)
		if e.(*CrosswalkSign).Flashing {
			t.Fatalf("tick %d: sign started flashing with player outside the zone", tick)
		}
	}
}

func TestSignFirstToggleWaitsFullInterval(t *testing.T) {
	sign, _ := newTestSign()
	inside := NewPlayer(Rect{X: 210, Y: 10, W: 20, H: 20}, "player", 10, Rect{W: 600, H: 400})

	var e SceneEntity = sign
	e = e.Advance(499, nil, &inside)
	if e.(*CrosswalkSign).Flashing {
		t.Fatal("sign toggled before 500ms since construction")
	}
	e = e.Advance(500, nil, &inside)
	s := e.(*CrosswalkSign)
	if !s.Flashing {
		t.Fatal("sign did not toggle at 500ms with player in zone")
	}
	if !s.Sequence {
		t.Error("first toggle should flip sequence on")
	}
	if s.LastToggle != 500 {
		t.Errorf("LastToggle = %d, want 500", s.LastToggle)
	}
}

func TestSignAlternatesAndLatches(t *testing.T) {
	sign, _ := newTestSign()
	inside := NewPlayer(Rect{X: 210, Y: 10, W: 20, H: 20}, "player", 10, Rect{W: 600, H: 400})
	outside := NewPlayer(Rect{X: 0, Y: 0, W: 20, H: 20}, "player", 10, Rect{W: 600, H: 400})

	var e SceneEntity = sign
	e = e.Advance(500, nil, &inside)

	// Within the interval nothing changes even while flashing.
	e = e.Advance(900, nil, &inside)
	if e.(*CrosswalkSign).LastToggle != 500 {
		t.Fatal("sign toggled again before the interval elapsed")
	}

	// Player leaves the zone; flashing has latched, toggles continue.
	e = e.Advance(1000, nil, &outside)
	s := e.(*CrosswalkSign)
	if !s.Flashing {
		t.Fatal("flashing state did not latch after the player left")
	}
	if s.Sequence {
		t.Error("second toggle should flip sequence back off")
	}

	e = e.Advance(1500, nil, nil)
	if !e.(*CrosswalkSign).Sequence {
		t.Error("third toggle should flip sequence on again")
	}
}

func TestSignPose(t *testing.T) {
	if flip, rot := signPose(false, true, Left); flip || rot != 0 {
		t.Errorf("dark sign pose = (%v, %v), want neutral", flip, rot)
	}
	if flip, rot := signPose(true, true, Left); !flip || rot != 180 {
		t.Errorf("left flashing pose = (%v, %v), want flipped and rotated", flip, rot)
	}
	if flip, rot := signPose(true, true, Right); flip || rot != 0 {
		t.Errorf("right flashing pose = (%v, %v), want unflipped", flip, rot)
	}
	if flip, _ := signPose(true, false, Right); !flip {
		t.Error("right flashing with sequence off should flip")
	}
}

func TestCrosswalkIsStatic(t *testing.T) {
	zone := NewCrosswalk(Rect{X: 200, Y: 0, W: 60, H: 300})
	if zone.Advance(1000, nil, nil) != SceneEntity(zone) {
		t.Error("crosswalk should return itself unchanged")
	}
}
