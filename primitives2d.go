package dfedit

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
)

// SignedDistancer is implemented by anything that can be queried for a signed distance at a point.
// All primitives, [Shape] and [Tape] implement it.
type SignedDistancer interface {
	SignedDistance(p ms2.Vec) float32
}

// Derivative estimates the gradient of sdf at p by central differences with step h.
func Derivative(sdf SignedDistancer, p ms2.Vec, h float32) ms2.Vec {
	dx := ms2.Vec{X: h}
	dy := ms2.Vec{Y: h}
	inv := 1 / (2 * h)
	return ms2.Vec{
		X: (sdf.SignedDistance(ms2.Add(p, dx)) - sdf.SignedDistance(ms2.Sub(p, dx))) * inv,
		Y: (sdf.SignedDistance(ms2.Add(p, dy)) - sdf.SignedDistance(ms2.Sub(p, dy))) * inv,
	}
}

// Disk is a filled circle centered at the origin.
type Disk struct {
	Radius float32
}

// DefaultDisk returns the disk new items start out as.
func DefaultDisk() Disk { return Disk{Radius: 0.3} }

func (d Disk) SignedDistance(p ms2.Vec) float32 {
	return ms2.Norm(p) - d.Radius
}

func (d Disk) Distance(p ms2.Vec) float32 {
	return absf(d.SignedDistance(p))
}

// Torus is the 2D torus, an annulus of thickness 2*MinorRadius around a circle of MajorRadius.
type Torus struct {
	MajorRadius float32
	MinorRadius float32
}

func DefaultTorus() Torus { return Torus{MajorRadius: 0.2, MinorRadius: 0.1} }

func (t Torus) SignedDistance(p ms2.Vec) float32 {
	return absf(ms2.Norm(p)-t.MajorRadius) - t.MinorRadius
}

func (t Torus) Distance(p ms2.Vec) float32 {
	return absf(t.SignedDistance(p))
}

// Rectangle is an axis aligned box of Width along x and Height along y centered at the origin.
type Rectangle struct {
	Width  float32
	Height float32
}

func DefaultRectangle() Rectangle { return Rectangle{Width: 0.5, Height: 0.3} }

func (r Rectangle) q(p ms2.Vec) ms2.Vec {
	return ms2.Sub(ms2.AbsElem(p), ms2.Vec{X: r.Width / 2, Y: r.Height / 2})
}

func (r Rectangle) SignedDistance(p ms2.Vec) float32 {
	q := r.q(p)
	return ms2.Norm(ms2.MaxElem(q, ms2.Vec{})) + maxElem(ms2.MinElem(q, ms2.Vec{}))
}

// Distance returns the unsigned distance to the rectangle's boundary.
func (r Rectangle) Distance(p ms2.Vec) float32 {
	q := r.q(p)
	return ms2.Norm(ms2.MaxElem(q, ms2.Vec{})) - maxElem(ms2.MinElem(q, ms2.Vec{}))
}

// Cross is a plus sign made of two bars of half-length Length and half-width Thickness.
type Cross struct {
	Length    float32
	Thickness float32
}

func DefaultCross() Cross { return Cross{Length: 0.4, Thickness: 0.2} }

func (c Cross) SignedDistance(p ms2.Vec) float32 {
	p = ms2.AbsElem(p)
	if p.Y > p.X {
		p.X, p.Y = p.Y, p.X
	}
	u := ms2.Sub(p, ms2.Vec{X: c.Thickness, Y: c.Thickness})
	v := ms2.Sub(p, ms2.Vec{X: c.Length, Y: c.Thickness})
	switch {
	case u.X < 0:
		return maxf(-ms2.Norm(u), v.X)
	case v.X < 0 || v.Y < 0:
		return maxElem(v)
	default:
		return ms2.Norm(v)
	}
}

// Distance returns the unsigned distance to the cross boundary.
func (c Cross) Distance(p ms2.Vec) float32 { return absf(c.SignedDistance(p)) }

// LineSegment joins A and B. It has no interior so its signed distance is non-negative.
type LineSegment struct {
	A, B ms2.Vec
}

func DefaultLineSegment() LineSegment {
	return LineSegment{A: ms2.Vec{X: -0.2, Y: -0.15}, B: ms2.Vec{X: 0.2, Y: 0.15}}
}

func (l LineSegment) SignedDistance(p ms2.Vec) float32 {
	b := ms2.Sub(l.B, l.A)
	pa := ms2.Sub(p, l.A)
	bb := ms2.Dot(b, b)
	var t float32
	if bb > 0 {
		t = clampf(ms2.Dot(pa, b)/bb, 0, 1)
	}
	return ms2.Norm(ms2.Sub(pa, ms2.Scale(t, b)))
}

func (l LineSegment) Distance(p ms2.Vec) float32 { return l.SignedDistance(p) }

// Plane is the half-plane whose boundary passes through the origin with outward Normal.
type Plane struct {
	Normal ms2.Vec
}

func DefaultPlane() Plane { return Plane{Normal: ms2.Vec{Y: 1}} }

func (pl Plane) SignedDistance(p ms2.Vec) float32 {
	return ms2.Dot(pl.Normal, p)
}

func (pl Plane) Distance(p ms2.Vec) float32 {
	return absf(pl.SignedDistance(p))
}

// Ray starts at the origin and extends along Direction.
type Ray struct {
	Direction ms2.Vec
}

func DefaultRay() Ray { return Ray{Direction: ms2.Vec{X: 1}} }

func (r Ray) SignedDistance(p ms2.Vec) float32 {
	t := math32.Max(ms2.Dot(p, r.Direction), 0)
	return ms2.Norm(ms2.Sub(p, ms2.Scale(t, r.Direction)))
}

func (r Ray) Distance(p ms2.Vec) float32 { return r.SignedDistance(p) }
