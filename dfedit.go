package dfedit

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
)

const (
	// epstol is used to check for badly conditioned denominators
	// such as lengths used for normalization.
	epstol = 6e-7
	// grabTol is the distance to a shape's boundary under which a grab resizes instead of moves.
	grabTol = 0.01
	// derivativeStep is the central difference step used by editors to sample shape gradients.
	derivativeStep = 0.01
)

// Flags is a bitmask of values to control the functioning of the [Builder] type.
type Flags uint64

const (
	// FlagNoDimensionPanic controls panicking behavior on invalid shape dimension errors.
	// If set then these errors are stored in [Builder] and can be checked with [Builder.Err].
	FlagNoDimensionPanic Flags = 1 << iota
)

// Builder validates shape parameters supplied by editing logic before they reach the tree.
// Provides error handling strategies with panics or error accumulation during shape generation.
type Builder struct {
	flags     Flags
	accumErrs []error
}

// Flags returns the current Builder's flags.
func (bld *Builder) Flags() Flags { return bld.flags }

// SetFlags sets the Builder's flags.
func (bld *Builder) SetFlags(flags Flags) { bld.flags = flags }

// Err returns errors accumulated during shape creation when [FlagNoDimensionPanic] is set.
func (bld *Builder) Err() error {
	if len(bld.accumErrs) == 0 {
		return nil
	}
	return errors.Join(bld.accumErrs...)
}

// ClearErrors clears accumulated errors such that [Builder.Err] returns nil on next call.
func (bld *Builder) ClearErrors() {
	clear(bld.accumErrs)
	bld.accumErrs = bld.accumErrs[:0]
}

func (bld *Builder) shapeErrorf(msg string, args ...any) {
	if bld.flags&FlagNoDimensionPanic == 0 {
		panic(fmt.Sprintf(msg, args...))
	}
	bld.accumErrs = append(bld.accumErrs, fmt.Errorf(msg, args...))
}

func badFloat(vs ...float32) bool {
	for _, v := range vs {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return true
		}
	}
	return false
}

// NewDisk returns a disk shape centered at the origin.
func (bld *Builder) NewDisk(radius float32) Shape {
	if badFloat(radius) || radius < 0 {
		bld.shapeErrorf("bad disk radius %g", radius)
	}
	return NewDiskShape(Disk{Radius: radius})
}

// NewTorus returns an annulus (2D torus) shape centered at the origin.
func (bld *Builder) NewTorus(majorRadius, minorRadius float32) Shape {
	if badFloat(majorRadius, minorRadius) || majorRadius < 0 || minorRadius < 0 {
		bld.shapeErrorf("bad torus radii %g, %g", majorRadius, minorRadius)
	} else if minorRadius > majorRadius {
		bld.shapeErrorf("torus minor radius %g exceeds major radius %g", minorRadius, majorRadius)
	}
	return NewTorusShape(Torus{MajorRadius: majorRadius, MinorRadius: minorRadius})
}

// NewRectangle returns a rectangle centered at the origin with given x and y dimensions.
func (bld *Builder) NewRectangle(width, height float32) Shape {
	if badFloat(width, height) || width < 0 || height < 0 {
		bld.shapeErrorf("bad rectangle dimension %gx%g", width, height)
	}
	return NewRectangleShape(Rectangle{Width: width, Height: height})
}

// NewCross returns a plus-sign shape centered at the origin.
func (bld *Builder) NewCross(length, thickness float32) Shape {
	if badFloat(length, thickness) || length < 0 || thickness < 0 {
		bld.shapeErrorf("bad cross dimension %g, %g", length, thickness)
	} else if thickness > length {
		bld.shapeErrorf("cross thickness %g exceeds length %g", thickness, length)
	}
	return NewCrossShape(Cross{Length: length, Thickness: thickness})
}

// NewLineSegment returns the segment joining a and b.
func (bld *Builder) NewLineSegment(a, b ms2.Vec) Shape {
	if badFloat(a.X, a.Y, b.X, b.Y) {
		bld.shapeErrorf("NaN or infinite argument to NewLineSegment")
	} else if ms2.Norm(ms2.Sub(b, a)) < epstol {
		bld.shapeErrorf("infimal line segment")
	}
	return NewLineSegmentShape(LineSegment{A: a, B: b})
}

// NewPlane returns a half-plane with the given outward normal. The normal is normalized.
func (bld *Builder) NewPlane(normal ms2.Vec) Shape {
	n, ok := unit(normal)
	if !ok {
		bld.shapeErrorf("bad plane normal %v", normal)
	}
	return NewPlaneShape(Plane{Normal: n})
}

// NewRay returns a ray starting at the origin pointing along direction. The direction is normalized.
func (bld *Builder) NewRay(direction ms2.Vec) Shape {
	d, ok := unit(direction)
	if !ok {
		bld.shapeErrorf("bad ray direction %v", direction)
	}
	return NewRayShape(Ray{Direction: d})
}

func unit(v ms2.Vec) (ms2.Vec, bool) {
	n := ms2.Norm(v)
	if n < epstol || badFloat(v.X, v.Y) {
		return v, false
	}
	return ms2.Scale(1/n, v), true
}

func minf(a, b float32) float32 {
	return math32.Min(a, b)
}

func maxf(a, b float32) float32 {
	return math32.Max(a, b)
}

func absf(a float32) float32 {
	return math32.Abs(a)
}

func signf(a float32) float32 {
	if a == 0 {
		return 0
	}
	return math32.Copysign(1, a)
}

func clampf(v, Min, Max float32) float32 {
	if v < Min {
		return Min
	} else if v > Max {
		return Max
	}
	return v
}

func maxElem(v ms2.Vec) float32 {
	return math32.Max(v.X, v.Y)
}
