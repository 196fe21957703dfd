package dfedit

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
)

// SignedDistance is the contract satisfied by values the boolean operators combine.
// Value returns the scalar distance (negative inside), WithDistance rebuilds the value
// keeping its payload and Divergent returns the "nothing here" sentinel whose Value is +Inf.
type SignedDistance[T any] interface {
	Value() float32
	WithDistance(d float32) T
	Divergent() T
}

// Dist is a payload-less signed distance.
type Dist float32

func (d Dist) Value() float32              { return float32(d) }
func (d Dist) WithDistance(nd float32) Dist { return Dist(nd) }
func (d Dist) Divergent() Dist              { return Dist(math32.Inf(1)) }

// WrappedDistance pairs a signed distance with a payload. Boolean composition
// propagates the payload of the winning operand.
type WrappedDistance[P any] struct {
	D    float32
	Data P
}

// TaggedDistance carries the ID of the item that owns the distance.
type TaggedDistance = WrappedDistance[ItemID]

func (w WrappedDistance[P]) Value() float32 { return w.D }

func (w WrappedDistance[P]) WithDistance(d float32) WrappedDistance[P] {
	w.D = d
	return w
}

// Divergent returns +Inf with a zero payload.
func (w WrappedDistance[P]) Divergent() WrappedDistance[P] {
	return WrappedDistance[P]{D: math32.Inf(1)}
}

// Union returns the operand closest to or deepest inside a shape. Ties return b.
func Union[T SignedDistance[T]](a, b T) T {
	if a.Value() < b.Value() {
		return a
	}
	return b
}

// Intersect returns the operand with the larger distance. Ties return b.
func Intersect[T SignedDistance[T]](a, b T) T {
	if a.Value() > b.Value() {
		return a
	}
	return b
}

// Subtract carves a out of b, returning a with its sign flipped when a's interior
// is the limiting boundary.
func Subtract[T SignedDistance[T]](a, b T) T {
	if na := -a.Value(); na > b.Value() {
		return a.WithDistance(na)
	}
	return b
}

// Xor keeps the regions covered by exactly one of a and b.
func Xor[T SignedDistance[T]](a, b T) T {
	return Subtract(Intersect(a, b), Union(a, b))
}

// Operator is a boolean operation on signed distances.
type Operator uint8

const (
	OpUnion Operator = iota
	OpIntersect
	OpSubtract
	OpXor
	opEnd
)

// AllOperators returns every operator in declaration order.
func AllOperators() []Operator {
	return []Operator{OpUnion, OpIntersect, OpSubtract, OpXor}
}

func (op Operator) IsValid() bool { return op < opEnd }

func (op Operator) String() string {
	switch op {
	case OpUnion:
		return "Union"
	case OpIntersect:
		return "Intersect"
	case OpSubtract:
		return "Subtract"
	case OpXor:
		return "Xor"
	}
	return fmt.Sprintf("Operator(%d)", uint8(op))
}

// ParseOperator is the inverse of [Operator.String], case insensitive.
func ParseOperator(s string) (Operator, error) {
	for _, op := range AllOperators() {
		if strings.EqualFold(op.String(), s) {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown operator %q", s)
}

// Operate applies op to a and b where b is the most recently pushed operand.
func Operate[T SignedDistance[T]](op Operator, a, b T) T {
	switch op {
	case OpUnion:
		return Union(a, b)
	case OpIntersect:
		return Intersect(a, b)
	case OpSubtract:
		return Subtract(a, b)
	case OpXor:
		return Xor(a, b)
	}
	panic("invalid operator " + op.String())
}
