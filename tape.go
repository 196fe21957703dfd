package dfedit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
)

var (
	errEmptyBuffers         = errors.New("empty buffers")
	errMismatchBufferLength = errors.New("mismatched buffer lengths")
)

// Instruction is one step of a postfix tape. When IsOp is set the instruction pops two
// operands and pushes Op applied to them, otherwise it pushes Shape's distance at the
// point translated by Transform. ID is the owning item: the shape's item for shapes and
// the operator node for operators.
type Instruction struct {
	Op        Operator
	Shape     Shape
	ID        ItemID
	Transform Transform
	IsOp      bool
}

// ShapeInstruction returns an instruction pushing shape's distance.
func ShapeInstruction(shape Shape, id ItemID, tf Transform) Instruction {
	return Instruction{Shape: shape, ID: id, Transform: tf}
}

// OpInstruction returns an instruction combining the two topmost operands.
func OpInstruction(op Operator, id ItemID) Instruction {
	return Instruction{Op: op, ID: id, IsOp: true}
}

func (ins Instruction) String() string {
	if ins.IsOp {
		return fmt.Sprintf("%s %s", ins.Op, ins.ID)
	}
	return fmt.Sprintf("%s %s @(%g,%g)", ins.Shape, ins.ID, ins.Transform.Position.X, ins.Transform.Position.Y)
}

// Tape is an immutable postfix program evaluating to a signed distance.
// The zero Tape is empty and evaluates to +Inf everywhere.
type Tape struct {
	ins      []Instruction
	maxDepth int
}

// NewTape validates instructions and returns a tape owning a copy of them.
func NewTape(instructions []Instruction) (Tape, error) {
	depth, err := validateInstructions(instructions)
	if err != nil {
		return Tape{}, err
	}
	return Tape{ins: append([]Instruction(nil), instructions...), maxDepth: depth}, nil
}

func newTapeUnchecked(ins []Instruction) Tape {
	t := Tape{ins: ins}
	depth := 0
	for _, in := range ins {
		if in.IsOp {
			depth--
		} else {
			depth++
			t.maxDepth = max(t.maxDepth, depth)
		}
	}
	return t
}

func validateInstructions(ins []Instruction) (maxDepth int, err error) {
	depth := 0
	for i, in := range ins {
		if in.IsOp {
			if !in.Op.IsValid() {
				return 0, fmt.Errorf("instruction %d: invalid operator %d", i, in.Op)
			}
			if depth < 2 {
				return 0, fmt.Errorf("instruction %d: %s needs 2 operands, have %d", i, in.Op, depth)
			}
			depth--
			continue
		}
		if !in.Shape.Kind().IsValid() {
			return 0, fmt.Errorf("instruction %d: undefined shape", i)
		}
		depth++
		maxDepth = max(maxDepth, depth)
	}
	if len(ins) > 0 && depth != 1 {
		return 0, fmt.Errorf("tape leaves %d operands on stack, want 1", depth)
	}
	return maxDepth, nil
}

// Validate checks the tape is a well formed postfix program.
func (t Tape) Validate() error {
	_, err := validateInstructions(t.ins)
	return err
}

// Len returns the number of instructions in the tape.
func (t Tape) Len() int { return len(t.ins) }

// Instructions returns the tape's instructions. The returned slice must not be modified.
func (t Tape) Instructions() []Instruction { return t.ins }

// MaxDepth returns the largest number of operands on the stack during evaluation.
func (t Tape) MaxDepth() int { return t.maxDepth }

// NumOps returns the number of operator instructions.
func (t Tape) NumOps() (n int) {
	for _, in := range t.ins {
		if in.IsOp {
			n++
		}
	}
	return n
}

func (t Tape) String() string {
	var sb strings.Builder
	for i, in := range t.ins {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(in.String())
	}
	return sb.String()
}

// evaluate runs the tape at p using st as scratch space. leaf builds the value pushed
// by shape instructions.
func evaluate[T SignedDistance[T]](ins []Instruction, p ms2.Vec, st *stack[T], leaf func(in Instruction, d float32) T) T {
	var zero T
	if len(ins) == 0 {
		return zero.Divergent()
	}
	st.reset()
	for _, in := range ins {
		if in.IsOp {
			b := st.pop()
			a := st.pop()
			st.push(Operate(in.Op, a, b))
			continue
		}
		d := in.Shape.SignedDistance(in.Transform.Apply(p))
		st.push(leaf(in, d))
	}
	return st.pop()
}

func distLeaf(_ Instruction, d float32) Dist { return Dist(d) }

func taggedLeaf(in Instruction, d float32) TaggedDistance {
	return TaggedDistance{D: d, Data: in.ID}
}

// SignedDistance evaluates the tape at p. An empty tape returns +Inf.
func (t Tape) SignedDistance(p ms2.Vec) float32 {
	var st stack[Dist]
	return evaluate(t.ins, p, &st, distLeaf).Value()
}

// Distance returns the unsigned distance to the composite boundary at p.
func (t Tape) Distance(p ms2.Vec) float32 {
	return absf(t.SignedDistance(p))
}

// Tagged evaluates the tape at p and returns the distance with the ID of the
// shape item that owns it. An empty tape returns +Inf with the zero ID.
func (t Tape) Tagged(p ms2.Vec) TaggedDistance {
	var st stack[TaggedDistance]
	return evaluate(t.ins, p, &st, taggedLeaf)
}

// Pick returns the item owning p. ok is false when nothing is hit, i.e. the distance is +Inf.
func (t Tape) Pick(p ms2.Vec) (id ItemID, ok bool) {
	td := t.Tagged(p)
	if math32.IsInf(td.D, 1) || td.Data == 0 {
		return 0, false
	}
	return td.Data, true
}

// Evaluate computes the signed distance at every position. It implements gleval.SDF2.
func (t Tape) Evaluate(pos []ms2.Vec, dist []float32, userData any) error {
	if len(pos) != len(dist) {
		return errMismatchBufferLength
	} else if len(pos) == 0 {
		return errEmptyBuffers
	}
	var st stack[Dist]
	for i, p := range pos {
		dist[i] = evaluate(t.ins, p, &st, distLeaf).Value()
	}
	return nil
}

// EvaluateTagged computes distance and owner ID at every position.
func (t Tape) EvaluateTagged(pos []ms2.Vec, dist []float32, ids []ItemID) error {
	if len(pos) != len(dist) || len(pos) != len(ids) {
		return errMismatchBufferLength
	} else if len(pos) == 0 {
		return errEmptyBuffers
	}
	var st stack[TaggedDistance]
	for i, p := range pos {
		td := evaluate(t.ins, p, &st, taggedLeaf)
		dist[i] = td.D
		ids[i] = td.Data
	}
	return nil
}
