package street

import (
	"errors"
	"testing"
	"time"
)

func testTemplate() Obstacle {
	return Obstacle{Rect: Rect{X: 0, Y: 100, W: 20, H: 20}, Image: "car", Speed: 5, Dir: Right}
}

func TestProducerThrottling(t *testing.T) {
	p := NewProducer(testTemplate(), time.Second, true, true)

	// Tick every 50ms of simulated time; emissions must be spaced more than
	// a full second apart no matter how often readiness is polled.
	var emissions []int64
	for now := int64(0); now <= 3500; now += 50 {
		ready, err := p.ReadyForNext(now, nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ready {
			p.Next(now, 0)
			emissions = append(emissions, now)
		}
	}
	if len(emissions) < 2 {
		t.Fatalf("emitted %d obstacles over 3500ms, want at least 2", len(emissions))
	}
	for i := 1; i < len(emissions); i++ {
		if gap := emissions[i] - emissions[i-1]; gap <= 1000 {
			t.Errorf("emissions %d and %d only %dms apart", i-1, i, gap)
		}
	}
}

func TestProducerNextClonesTemplate(t *testing.T) {
	template := testTemplate()
	p := NewProducer(template, time.Second, true, true)

	a := p.Next(100, 250)
	b := p.Next(2000, 300)

	if a.ID == "" || b.ID == "" || a.ID == b.ID {
		t.Errorf("expected distinct non-empty IDs, got %q and %q", a.ID, b.ID)
	}
	if a.X != 250 || b.X != 300 {
		t.Errorf("expected lane-edge x assignment, got %v and %v", a.X, b.X)
	}
	if a.OriginSpeed != template.Speed || a.OriginY != template.Y {
		t.Errorf("origin fields not stamped: speed %v, y %v", a.OriginSpeed, a.OriginY)
	}
	if p.Template().ID != "" {
		t.Error("template mutated by Next")
	}
}

func TestProducerWithoutLaneEdgeKeepsTemplateX(t *testing.T) {
	template := testTemplate()
	template.X = 123
	p := NewProducer(template, time.Second, false, false)

	o := p.Next(0, 999)
	if o.X != 123 {
		t.Errorf("X = %v, want template x 123", o.X)
	}
}

func TestProducerNextConsumesCooldownUnconditionally(t *testing.T) {
	p := NewProducer(testTemplate(), time.Second, true, true)
	p.Next(500, 0) // emitted obstacle discarded by the caller

	if ready, _ := p.ReadyForNext(1400, nil, nil); ready {
		t.Error("cooldown not consumed by a discarded emission")
	}
}

func TestTargetProducerRequiresPlayer(t *testing.T) {
	zone := NewCrosswalk(Rect{X: 200, Y: 0, W: 60, H: 300})
	p := NewTargetProducer(testTemplate(), time.Second, true, false, zone)

	if _, err := p.ReadyForNext(2000, nil, nil); !errors.Is(err, ErrNoPlayer) {
		t.Fatalf("err = %v, want ErrNoPlayer", err)
	}

	outside := NewPlayer(Rect{X: 0, Y: 0, W: 20, H: 20}, "player", 10, Rect{W: 600, H: 400})
	ready, err := p.ReadyForNext(2000, nil, &outside)
	if err != nil || ready {
		t.Errorf("ready = %v, err = %v, want not ready with player outside zone", ready, err)
	}

	inside := NewPlayer(Rect{X: 210, Y: 10, W: 20, H: 20}, "player", 10, Rect{W: 600, H: 400})
	ready, err = p.ReadyForNext(2000, nil, &inside)
	if err != nil || !ready {
		t.Errorf("ready = %v, err = %v, want ready with player in zone", ready, err)
	}
}

func TestCrosswalkProducerRequiresSign(t *testing.T) {
	p := NewCrosswalkProducer(testTemplate(), time.Second, true, false)

	if _, err := p.ReadyForNext(2000, nil, nil); !errors.Is(err, ErrNoSignal) {
		t.Fatalf("err = %v, want ErrNoSignal", err)
	}

	sign := NewCrosswalkSign(Rect{X: 300, Y: 0, W: 10, H: 30}, "sign", Right, nil)
	scene := []SceneEntity{sign}

	ready, err := p.ReadyForNext(2000, scene, nil)
	if err != nil || ready {
		t.Errorf("ready = %v, err = %v, want not ready while sign is dark", ready, err)
	}

	sign.Flashing = true
	ready, err = p.ReadyForNext(2000, scene, nil)
	if err != nil || !ready {
		t.Errorf("ready = %v, err = %v, want ready while sign flashes", ready, err)
	}
}

func TestGateEvaluatedOnlyAfterTimeGate(t *testing.T) {
	// Inside the cooldown window the contract check must not fire.
	p := NewCrosswalkProducer(testTemplate(), time.Second, true, false)
	p.Next(100, 0)

	ready, err := p.ReadyForNext(500, nil, nil)
	if err != nil || ready {
		t.Errorf("ready = %v, err = %v, want quiet not-ready inside cooldown", ready, err)
	}
}
