package dfedit_test

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/dfedit"
	"github.com/soypat/geometry/ms2"
)

func TestShapeResize(t *testing.T) {
	const h = 0.01
	drag := func(s dfedit.Shape, from, to ms2.Vec) dfedit.Shape {
		return s.Resize(from, to, s.Derivative(from, h))
	}
	near := func(a, b float32) bool { return math32.Abs(a-b) < 2e-3 }

	t.Run("disk", func(t *testing.T) {
		got := drag(disk(0.3), ms2.Vec{Y: 0.3}, ms2.Vec{Y: 0.2}).Disk()
		if !near(got.Radius, 0.2) {
			t.Errorf("radius %g", got.Radius)
		}
		got = drag(disk(0.1), ms2.Vec{X: 0.1}, ms2.Vec{X: -0.5}).Disk()
		if got.Radius != 0 {
			t.Errorf("radius must clamp at zero, got %g", got.Radius)
		}
	})
	t.Run("torus", func(t *testing.T) {
		torus := dfedit.DefaultShape(dfedit.KindTorus)
		// Outer edge grows the major radius.
		got := drag(torus, ms2.Vec{X: 0.3}, ms2.Vec{X: 0.35}).Torus()
		if !near(got.MajorRadius, 0.25) || got.MinorRadius != 0.1 {
			t.Errorf("outer drag %+v", got)
		}
		// Inner edge moving inward grows the tube.
		got = drag(torus, ms2.Vec{X: 0.1}, ms2.Vec{X: 0.05}).Torus()
		if !near(got.MinorRadius, 0.15) || got.MajorRadius != 0.2 {
			t.Errorf("inner drag %+v", got)
		}
		got = drag(torus, ms2.Vec{X: 0.1}, ms2.Vec{X: -0.5}).Torus()
		if got.MinorRadius > got.MajorRadius {
			t.Errorf("minor exceeds major %+v", got)
		}
	})
	t.Run("rectangle", func(t *testing.T) {
		rect := dfedit.DefaultShape(dfedit.KindRectangle)
		got := drag(rect, ms2.Vec{X: 0.25}, ms2.Vec{X: 0.35}).Rectangle()
		if !near(got.Width, 0.7) || !near(got.Height, 0.3) {
			t.Errorf("edge drag %+v", got)
		}
		got = drag(rect, ms2.Vec{X: 0.3, Y: 0.2}, ms2.Vec{X: 0.35, Y: 0.25}).Rectangle()
		if !near(got.Width, 0.6) || !near(got.Height, 0.4) {
			t.Errorf("corner drag %+v", got)
		}
	})
	t.Run("cross", func(t *testing.T) {
		cross := dfedit.DefaultShape(dfedit.KindCross)
		got := drag(cross, ms2.Vec{X: 0.4}, ms2.Vec{X: 0.5}).Cross()
		if !near(got.Length, 0.5) || got.Thickness != 0.2 {
			t.Errorf("bar end drag %+v", got)
		}
		got = drag(cross, ms2.Vec{X: 0.3, Y: 0.2}, ms2.Vec{X: 0.3, Y: 0.25}).Cross()
		if !near(got.Thickness, 0.25) || got.Length != 0.4 {
			t.Errorf("bar side drag %+v", got)
		}
		got = drag(cross, ms2.Vec{X: 0.3, Y: 0.2}, ms2.Vec{X: 0.3, Y: 0.9}).Cross()
		if got.Thickness > got.Length {
			t.Errorf("thickness exceeds length %+v", got)
		}
	})
	t.Run("segment", func(t *testing.T) {
		seg := dfedit.DefaultLineSegment()
		s := dfedit.NewLineSegmentShape(seg)
		got := s.Resize(seg.A, ms2.Vec{X: -0.4}, ms2.Vec{}).LineSegment()
		if got.A != (ms2.Vec{X: -0.4}) || got.B != seg.B {
			t.Errorf("drag A %+v", got)
		}
		got = s.Resize(seg.B, ms2.Vec{Y: 0.4}, ms2.Vec{}).LineSegment()
		if got.B != (ms2.Vec{Y: 0.4}) || got.A != seg.A {
			t.Errorf("drag B %+v", got)
		}
	})
	t.Run("plane and ray", func(t *testing.T) {
		plane := dfedit.DefaultShape(dfedit.KindPlane)
		if got := drag(plane, ms2.Vec{}, ms2.Vec{X: 1}); got != plane {
			t.Errorf("plane changed: %v", got)
		}
		got := dfedit.DefaultShape(dfedit.KindRay).Resize(ms2.Vec{X: 1}, ms2.Vec{Y: -2}, ms2.Vec{}).Ray()
		if got.Direction != (ms2.Vec{Y: -1}) {
			t.Errorf("ray direction %v", got.Direction)
		}
	})
}

func TestGrabKind(t *testing.T) {
	tf := at(0.2, 0.2)
	for _, test := range []struct {
		p    ms2.Vec
		want dfedit.Grab
	}{
		{p: ms2.Vec{X: 0.2, Y: 0.2}, want: dfedit.GrabMove},
		{p: ms2.Vec{X: 0.2, Y: 0.505}, want: dfedit.GrabResize},
		{p: ms2.Vec{X: 0.2, Y: 0.6}, want: dfedit.GrabNone},
	} {
		if got := dfedit.GrabKind(disk(0.3), tf, test.p); got != test.want {
			t.Errorf("grab at %v: got %s, want %s", test.p, got, test.want)
		}
	}
}
