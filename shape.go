package dfedit

import (
	"fmt"

	"github.com/soypat/geometry/ms2"
)

// ShapeKind enumerates the primitives a [Shape] may hold.
type ShapeKind uint8

const (
	kindUndefined ShapeKind = iota
	KindDisk
	KindTorus
	KindRectangle
	KindCross
	KindLineSegment
	KindPlane
	KindRay
	kindEnd
)

// AllShapeKinds returns every valid shape kind in declaration order.
func AllShapeKinds() []ShapeKind {
	kinds := make([]ShapeKind, 0, kindEnd-1)
	for k := KindDisk; k < kindEnd; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// IsValid reports whether k is one of the defined shape kinds.
func (k ShapeKind) IsValid() bool { return k > kindUndefined && k < kindEnd }

func (k ShapeKind) String() string {
	switch k {
	case KindDisk:
		return "Disk"
	case KindTorus:
		return "Torus"
	case KindRectangle:
		return "Rectangle"
	case KindCross:
		return "Cross"
	case KindLineSegment:
		return "Line segment"
	case KindPlane:
		return "Plane"
	case KindRay:
		return "Ray"
	}
	return fmt.Sprintf("ShapeKind(%d)", uint8(k))
}

// Shape is a closed tagged union over the primitives. It is a comparable value type;
// two shapes are equal when their kind and parameters are equal.
type Shape struct {
	kind   ShapeKind
	params [4]float32
}

func NewDiskShape(d Disk) Shape { return Shape{kind: KindDisk, params: [4]float32{d.Radius}} }

func NewTorusShape(t Torus) Shape {
	return Shape{kind: KindTorus, params: [4]float32{t.MajorRadius, t.MinorRadius}}
}

func NewRectangleShape(r Rectangle) Shape {
	return Shape{kind: KindRectangle, params: [4]float32{r.Width, r.Height}}
}

func NewCrossShape(c Cross) Shape {
	return Shape{kind: KindCross, params: [4]float32{c.Length, c.Thickness}}
}

func NewLineSegmentShape(l LineSegment) Shape {
	return Shape{kind: KindLineSegment, params: [4]float32{l.A.X, l.A.Y, l.B.X, l.B.Y}}
}

func NewPlaneShape(p Plane) Shape {
	return Shape{kind: KindPlane, params: [4]float32{p.Normal.X, p.Normal.Y}}
}

func NewRayShape(r Ray) Shape {
	return Shape{kind: KindRay, params: [4]float32{r.Direction.X, r.Direction.Y}}
}

// AsShape wraps a primitive value in a [Shape]. It returns an error for unknown types.
func AsShape(primitive any) (Shape, error) {
	switch v := primitive.(type) {
	case Shape:
		return v, nil
	case Disk:
		return NewDiskShape(v), nil
	case Torus:
		return NewTorusShape(v), nil
	case Rectangle:
		return NewRectangleShape(v), nil
	case Cross:
		return NewCrossShape(v), nil
	case LineSegment:
		return NewLineSegmentShape(v), nil
	case Plane:
		return NewPlaneShape(v), nil
	case Ray:
		return NewRayShape(v), nil
	}
	return Shape{}, fmt.Errorf("unsupported primitive type %T", primitive)
}

// DefaultShape returns the default primitive of the given kind. It panics on an invalid kind.
func DefaultShape(kind ShapeKind) Shape {
	switch kind {
	case KindDisk:
		return NewDiskShape(DefaultDisk())
	case KindTorus:
		return NewTorusShape(DefaultTorus())
	case KindRectangle:
		return NewRectangleShape(DefaultRectangle())
	case KindCross:
		return NewCrossShape(DefaultCross())
	case KindLineSegment:
		return NewLineSegmentShape(DefaultLineSegment())
	case KindPlane:
		return NewPlaneShape(DefaultPlane())
	case KindRay:
		return NewRayShape(DefaultRay())
	}
	panic("invalid shape kind " + kind.String())
}

// Kind returns the active primitive kind of the shape.
func (s Shape) Kind() ShapeKind { return s.kind }

// Params returns the raw parameters of the shape in the packed layout used by GPU buffers.
// Unused trailing parameters are zero.
func (s Shape) Params() [4]float32 { return s.params }

// NumParams returns how many of [Shape.Params] are meaningful for the shape's kind.
func (s Shape) NumParams() int {
	switch s.kind {
	case KindDisk:
		return 1
	case KindLineSegment:
		return 4
	case kindUndefined:
		return 0
	}
	return 2
}

// ShapeFromParams builds a shape from its kind and packed parameters, the inverse of [Shape.Params].
func ShapeFromParams(kind ShapeKind, params []float32) (Shape, error) {
	s := Shape{kind: kind}
	if !kind.IsValid() {
		return s, fmt.Errorf("invalid shape kind %d", kind)
	}
	if len(params) != s.NumParams() {
		return s, fmt.Errorf("%s expects %d params, got %d", kind, s.NumParams(), len(params))
	}
	copy(s.params[:], params)
	return s, nil
}

func (s Shape) Disk() Disk { return Disk{Radius: s.params[0]} }

func (s Shape) Torus() Torus {
	return Torus{MajorRadius: s.params[0], MinorRadius: s.params[1]}
}

func (s Shape) Rectangle() Rectangle {
	return Rectangle{Width: s.params[0], Height: s.params[1]}
}

func (s Shape) Cross() Cross {
	return Cross{Length: s.params[0], Thickness: s.params[1]}
}

func (s Shape) LineSegment() LineSegment {
	return LineSegment{
		A: ms2.Vec{X: s.params[0], Y: s.params[1]},
		B: ms2.Vec{X: s.params[2], Y: s.params[3]},
	}
}

func (s Shape) Plane() Plane {
	return Plane{Normal: ms2.Vec{X: s.params[0], Y: s.params[1]}}
}

func (s Shape) Ray() Ray {
	return Ray{Direction: ms2.Vec{X: s.params[0], Y: s.params[1]}}
}

// SignedDistance evaluates the active primitive's signed distance at p.
func (s Shape) SignedDistance(p ms2.Vec) float32 {
	switch s.kind {
	case KindDisk:
		return s.Disk().SignedDistance(p)
	case KindTorus:
		return s.Torus().SignedDistance(p)
	case KindRectangle:
		return s.Rectangle().SignedDistance(p)
	case KindCross:
		return s.Cross().SignedDistance(p)
	case KindLineSegment:
		return s.LineSegment().SignedDistance(p)
	case KindPlane:
		return s.Plane().SignedDistance(p)
	case KindRay:
		return s.Ray().SignedDistance(p)
	}
	panic("SignedDistance on undefined shape")
}

// Distance evaluates the active primitive's unsigned distance at p.
func (s Shape) Distance(p ms2.Vec) float32 {
	switch s.kind {
	case KindDisk:
		return s.Disk().Distance(p)
	case KindTorus:
		return s.Torus().Distance(p)
	case KindRectangle:
		return s.Rectangle().Distance(p)
	case KindCross:
		return s.Cross().Distance(p)
	case KindLineSegment:
		return s.LineSegment().Distance(p)
	case KindPlane:
		return s.Plane().Distance(p)
	case KindRay:
		return s.Ray().Distance(p)
	}
	panic("Distance on undefined shape")
}

// Derivative returns the central difference gradient of the shape at p with step h.
func (s Shape) Derivative(p ms2.Vec, h float32) ms2.Vec {
	return Derivative(s, p, h)
}

func (s Shape) String() string {
	switch s.kind {
	case KindDisk:
		return fmt.Sprintf("Disk(r=%g)", s.params[0])
	case KindLineSegment:
		return fmt.Sprintf("%s(%g,%g)->(%g,%g)", s.kind, s.params[0], s.params[1], s.params[2], s.params[3])
	case kindUndefined:
		return "Shape(undefined)"
	}
	return fmt.Sprintf("%s(%g, %g)", s.kind, s.params[0], s.params[1])
}

// Transform places a shape in the scene. Only translation is supported.
type Transform struct {
	Position ms2.Vec
}

// Apply maps a scene point into the shape's local frame.
func (t Transform) Apply(p ms2.Vec) ms2.Vec {
	return ms2.Sub(p, t.Position)
}
