package instance

import (
	"bytes"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestNewStoreDeterministicForSeed(t *testing.T) {
	a := NewStore(WithCount(64), WithSeed(42))
	b := NewStore(WithCount(64), WithSeed(42))
	c := NewStore(WithCount(64), WithSeed(43))

	if a.Len() != 64 {
		t.Fatalf("Len() = %d, want 64", a.Len())
	}
	for i := range a.Len() {
		if a.At(i) != b.At(i) {
			t.Fatalf("At(%d) differs for equal seeds", i)
		}
	}
	same := true
	for i := range a.Len() {
		if a.At(i).Velocity != c.At(i).Velocity {
			same = false
			break
		}
	}
	if same {
		t.Errorf("velocities identical for different seeds")
	}
}

func TestNewStoreVelocityBounds(t *testing.T) {
	const scale = 0.05
	s := NewStore(WithCount(256), WithVelocityScale(scale))
	for i := range s.Len() {
		for axis, v := range s.At(i).Velocity {
			if v < -scale || v >= scale {
				t.Fatalf("At(%d).Velocity[%d] = %v, want in [-%v, %v)", i, axis, v, scale, scale)
			}
		}
	}
}

func TestNewStoreRotationRange(t *testing.T) {
	s := NewStore(WithCount(256), WithSeed(9))
	var spread float32
	for i := range s.Len() {
		for axis, r := range s.At(i).Rotation {
			if r < 0 || r > 2*math.Pi {
				t.Fatalf("At(%d).Rotation[%d] = %v, want in [0, 2π]", i, axis, r)
			}
			spread = max(spread, r)
		}
	}
	if spread < math.Pi {
		t.Errorf("largest rotation = %v, want angles spread past π", spread)
	}
}

func TestStoreUpdateMatchesAdvance(t *testing.T) {
	s := NewStore(WithCount(32), WithSeed(9))
	before := s.Snapshot()

	s.Update(2.5)
	for i, inst := range before {
		if want := Advance(inst, 2.5, s.Period()); s.At(i) != want {
			t.Fatalf("At(%d) after Update = %v, want %v", i, s.At(i), want)
		}
	}
}

func TestStoreUpdateRangeAndAt(t *testing.T) {
	s := NewStore(WithCount(10))
	before := s.Snapshot()

	s.UpdateRange(2, 5, 0.1)
	s.UpdateAt(8, 0.1)

	for i := range s.Len() {
		changed := (i >= 2 && i < 5) || i == 8
		if got := s.At(i) != before[i]; got != changed {
			t.Errorf("instance %d changed = %v, want %v", i, got, changed)
		}
	}
}

func TestStoreReset(t *testing.T) {
	s := NewStore(WithCount(16))
	initial := s.Snapshot()
	s.Update(0)
	s.Update(1)
	s.Reset()
	for i := range initial {
		if s.At(i) != initial[i] {
			t.Fatalf("At(%d) after Reset = %v, want %v", i, s.At(i), initial[i])
		}
	}
}

func TestStoreModelData(t *testing.T) {
	s := NewStore(WithCount(5))
	data := s.ModelData()
	if len(data) != 5*ModelDataStride {
		t.Fatalf("len(ModelData()) = %d, want %d", len(data), 5*ModelDataStride)
	}
	for i := range s.Len() {
		rec := data[i*ModelDataStride : (i+1)*ModelDataStride]
		if !bytes.Equal(rec, s.MarshalInstance(i)) {
			t.Errorf("ModelData() record %d differs from MarshalInstance(%d)", i, i)
		}
	}
}

func TestStoreWithInstances(t *testing.T) {
	src := []Instance{
		New(99, mgl32.Vec3{0, 0, -5}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{}),
		New(99, mgl32.Vec3{0, 0, -5000}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{}),
	}
	s := NewStore(WithInstances(src), WithPeriod(3))

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	for i := range s.Len() {
		if got := s.At(i).Index; got != uint32(i) {
			t.Errorf("At(%d).Index = %d, want %d", i, got, i)
		}
	}
	if s.Period() != 3 {
		t.Errorf("Period() = %v, want 3", s.Period())
	}
	if got := s.Box(1).Center(); got != (mgl32.Vec3{0, 0, -5000}) {
		t.Errorf("Box(1).Center() = %v, want (0,0,-5000)", got)
	}
}
