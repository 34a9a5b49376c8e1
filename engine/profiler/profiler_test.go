package profiler

import (
	"math"
	"testing"
	"time"
)

func TestProfilerTick(t *testing.T) {
	p := NewProfilerWithInterval(time.Second)
	start := p.lastTime

	for i := 1; i < 30; i++ {
		if p.tickAt(start.Add(time.Duration(i) * 10 * time.Millisecond)) {
			t.Fatalf("tick %d reported before the interval elapsed", i)
		}
	}
	if !p.tickAt(start.Add(1500 * time.Millisecond)) {
		t.Fatal("tick after the interval did not report")
	}
	if got := p.FPS(); math.Abs(got-20) > 1e-9 {
		t.Errorf("FPS() = %v, want 20", got)
	}
	if p.frameCount != 0 {
		t.Errorf("frameCount after report = %d, want 0", p.frameCount)
	}
}

func TestProfilerIntervalDefault(t *testing.T) {
	if got := NewProfilerWithInterval(0).updateInterval; got != time.Second {
		t.Errorf("updateInterval = %v, want 1s", got)
	}
}
