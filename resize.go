package dfedit

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
)

// Grab is the kind of interaction a pointer press on a shape starts.
type Grab uint8

const (
	GrabNone Grab = iota
	// GrabMove drags the shape around. Started inside the shape.
	GrabMove
	// GrabResize changes the shape's parameters. Started on the boundary.
	GrabResize
)

func (g Grab) String() string {
	switch g {
	case GrabMove:
		return "move"
	case GrabResize:
		return "resize"
	}
	return "none"
}

// GrabKind classifies a press at scene point p on shape placed by tf.
func GrabKind(shape Shape, tf Transform, p ms2.Vec) Grab {
	d := shape.SignedDistance(tf.Apply(p))
	switch {
	case absf(d) < grabTol:
		return GrabResize
	case d < 0:
		return GrabMove
	}
	return GrabNone
}

// Resize returns the shape with its parameters adjusted for a drag that started at
// initial and is now at current, both in the shape's local frame. derivative is the
// shape's gradient sampled at initial.
func (s Shape) Resize(initial, current, derivative ms2.Vec) Shape {
	switch s.kind {
	case KindDisk:
		d := s.Disk()
		ds := ms2.MulElem(ms2.Sub(current, initial), derivative)
		d.Radius = maxf(d.Radius+ds.X+ds.Y, 0)
		return NewDiskShape(d)

	case KindTorus:
		t := s.Torus()
		ds := ms2.MulElem(ms2.Sub(current, initial), derivative)
		if ms2.Norm(initial) > t.MajorRadius {
			t.MajorRadius = maxf(t.MajorRadius+ds.X+ds.Y, 0)
		} else {
			t.MinorRadius = maxf(t.MinorRadius+ds.X+ds.Y, 0)
		}
		t.MinorRadius = minf(t.MinorRadius, t.MajorRadius)
		return NewTorusShape(t)

	case KindRectangle:
		r := s.Rectangle()
		scale := ms2.Scale(2, ms2.Vec{X: snapSign(derivative.X), Y: snapSign(derivative.Y)})
		ds := ms2.MulElem(ms2.Sub(current, initial), scale)
		r.Width = maxf(r.Width+ds.X, 0)
		r.Height = maxf(r.Height+ds.Y, 0)
		return NewRectangleShape(r)

	case KindCross:
		c := s.Cross()
		diff := ms2.Sub(current, initial)
		aInit := ms2.AbsElem(initial)
		switch {
		case maxElem(aInit) < c.Length-0.01:
			// Grabbed along the side of a bar.
			ds := ms2.MulElem(diff, derivative)
			c.Thickness += ds.X + ds.Y
		case absf(derivative.X) > 0.05 && absf(derivative.Y) > 0.05:
			ds := ms2.MulElem(diff, ms2.Vec{X: signf(derivative.X), Y: signf(derivative.Y)})
			if aInit.Y > aInit.X {
				ds.X, ds.Y = ds.Y, ds.X
			}
			c.Length += ds.X
			c.Thickness += ds.Y
		default:
			ds := ms2.MulElem(diff, derivative)
			c.Length += ds.X + ds.Y
		}
		c.Length = maxf(c.Length, 0)
		c.Thickness = clampf(c.Thickness, 0, c.Length)
		return NewCrossShape(c)

	case KindLineSegment:
		l := s.LineSegment()
		if ms2.Norm(ms2.Sub(initial, l.A)) < 0.01 {
			l.A = current
		} else {
			l.B = current
		}
		return NewLineSegmentShape(l)

	case KindPlane:
		return s

	case KindRay:
		r := s.Ray()
		if n := ms2.Norm(current); n > epstol {
			r.Direction = ms2.Scale(1/n, current)
		}
		return NewRayShape(r)
	}
	panic("Resize on undefined shape")
}

// snapSign returns the sign of a clear gradient component and the component itself when
// it is close to zero, so corners scale both dimensions and edges mostly one.
func snapSign(d float32) float32 {
	if math32.Abs(d) > 0.05 {
		return signf(d)
	}
	return d
}
