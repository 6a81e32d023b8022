package vec

import (
	"math"
	"testing"
)

func TestCross(t *testing.T) {
	x := Vec3{X: 1}
	y := Vec3{Y: 1}
	z := x.Cross(y)
	if z.X != 0 || z.Y != 0 || z.Z != 1 {
		t.Errorf("expected x cross y = z, got %+v", z)
	}
}

func TestAddScaled(t *testing.T) {
	v := Vec3{X: 1, Y: 2, Z: 3}.AddScaled(Vec3{X: 1, Y: 1, Z: 1}, 0.5)
	want := Vec3{X: 1.5, Y: 2.5, Z: 3.5}
	if v != want {
		t.Errorf("expected %+v, got %+v", want, v)
	}
}

func TestNormalizeZero(t *testing.T) {
	v := Vec3{}.Normalize()
	if !v.IsZero() {
		t.Errorf("normalizing zero vector should stay zero, got %+v", v)
	}
}

func TestMagnitude(t *testing.T) {
	v := Vec3{X: 3, Y: 4}
	if v.Magnitude() != 5 {
		t.Errorf("expected magnitude 5, got %f", v.Magnitude())
	}
	if v.MagnitudeSq() != 25 {
		t.Errorf("expected squared magnitude 25, got %f", v.MagnitudeSq())
	}
}

func TestDistance(t *testing.T) {
	a := Vec3{X: 1, Y: 1}
	b := Vec3{X: 4, Y: 5}
	if d := a.Distance(b); math.Abs(d-5) > 1e-12 {
		t.Errorf("expected distance 5, got %f", d)
	}
}
