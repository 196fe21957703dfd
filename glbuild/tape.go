package glbuild

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/soypat/dfedit"
	"github.com/soypat/geometry/ms2"
)

// OpCodeBase is added to an operator's value to form its instruction code. Shape
// instructions use their [dfedit.ShapeKind] as code, which is always below OpCodeBase.
const OpCodeBase = 0x100

// Binding points of the buffers used by the tape interpreter shader.
const (
	BindingPositions = iota
	BindingDistances
	BindingIDs
	BindingTapeHeader
	BindingTapeParams
	BindingTapeOffset
)

var (
	errEmptyTape     = errors.New("empty tape")
	errTapeTooDeep   = fmt.Errorf("tape stack depth exceeds GPU stack size %d", dfedit.StackSize)
	shapeDefineNames = map[dfedit.ShapeKind]string{
		dfedit.KindDisk:        "DF_DISK",
		dfedit.KindTorus:       "DF_TORUS",
		dfedit.KindRectangle:   "DF_RECTANGLE",
		dfedit.KindCross:       "DF_CROSS",
		dfedit.KindLineSegment: "DF_SEGMENT",
		dfedit.KindPlane:       "DF_PLANE",
		dfedit.KindRay:         "DF_RAY",
	}
)

// InstructionCode returns the code identifying in's shape kind or operator on the GPU.
func InstructionCode(in dfedit.Instruction) uint32 {
	if in.IsOp {
		return OpCodeBase + uint32(in.Op)
	}
	return uint32(in.Shape.Kind())
}

// TapeBuffers is a tape laid out as parallel arrays ready for upload.
type TapeBuffers struct {
	// Header holds the instruction code and the owning item ID.
	Header [][2]uint32
	// Params holds the shape parameters packed two per vector.
	Params [][2]ms2.Vec
	// Offset holds the shape's position, subtracted from the evaluated point.
	Offset []ms2.Vec
}

// PackTape lays out tape's instructions for the interpreter shader. Operator
// instructions have zero parameters and offset.
func PackTape(tape dfedit.Tape) TapeBuffers {
	ins := tape.Instructions()
	tb := TapeBuffers{
		Header: make([][2]uint32, len(ins)),
		Params: make([][2]ms2.Vec, len(ins)),
		Offset: make([]ms2.Vec, len(ins)),
	}
	for i, in := range ins {
		tb.Header[i] = [2]uint32{InstructionCode(in), uint32(in.ID)}
		if in.IsOp {
			continue
		}
		prm := in.Shape.Params()
		tb.Params[i] = [2]ms2.Vec{{X: prm[0], Y: prm[1]}, {X: prm[2], Y: prm[3]}}
		tb.Offset[i] = in.Transform.Position
	}
	return tb
}

// Len returns the number of packed instructions.
func (tb TapeBuffers) Len() int { return len(tb.Header) }

// ShaderObjects returns read-only SSBO handles over the tape buffers with consecutive
// bindings starting at firstBinding. tb must outlive the returned objects.
func (tb TapeBuffers) ShaderObjects(firstBinding int) ([]ShaderObject, error) {
	if tb.Len() == 0 {
		return nil, errEmptyTape
	}
	header, err := MakeShaderBufferReadOnly([]byte("tape_header"), tb.Header)
	if err != nil {
		return nil, err
	}
	params, err := MakeShaderBufferReadOnly([]byte("tape_params"), tb.Params)
	if err != nil {
		return nil, err
	}
	offset, err := MakeShaderBufferReadOnly([]byte("tape_offset"), tb.Offset)
	if err != nil {
		return nil, err
	}
	objs := []ShaderObject{header, params, offset}
	for i := range objs {
		objs[i].Binding = firstBinding + i
	}
	return objs, nil
}

func checkTape(tape dfedit.Tape) error {
	if tape.Len() == 0 {
		return errEmptyTape
	} else if tape.MaxDepth() > dfedit.StackSize {
		return errTapeTooDeep
	}
	return nil
}

func appendTapeDefines(dst []byte, tape dfedit.Tape) []byte {
	for _, kind := range dfedit.AllShapeKinds() {
		dst = AppendDefineDecl(dst, shapeDefineNames[kind], strconv.Itoa(int(kind))+"u")
	}
	for _, op := range dfedit.AllOperators() {
		dst = AppendDefineDecl(dst, "DF_"+strings.ToUpper(op.String()), strconv.Itoa(OpCodeBase+int(op))+"u")
	}
	dst = AppendDefineDecl(dst, "DF_OP_BASE", strconv.Itoa(OpCodeBase)+"u")
	dst = AppendDefineDecl(dst, "TAPE_LEN", strconv.Itoa(tape.Len()))
	dst = AppendDefineDecl(dst, "STACK_SIZE", strconv.Itoa(dfedit.StackSize))
	return dst
}

// WriteComputeTape writes a GLSL compute shader that interprets tape at every position of the
// positions buffer, writing the distance and owning item ID of each. lib must contain every
// function the interpreter calls, typically glsllib.TapeInterpreter. The returned objects are the
// tape buffers to bind alongside positions, distances and IDs.
func (p *Programmer) WriteComputeTape(w io.Writer, tape dfedit.Tape, lib []ShaderObject) (n int, objs []ShaderObject, err error) {
	err = checkTape(tape)
	if err != nil {
		return 0, nil, err
	}
	tb := PackTape(tape)
	objs, err = tb.ShaderObjects(BindingTapeHeader)
	if err != nil {
		return 0, nil, err
	}
	buf := append(p.scratch[:0], p.computeHeader...)
	buf = appendTapeDefines(buf, tape)
	buf = append(buf, "layout(local_size_x = "...)
	buf = strconv.AppendInt(buf, int64(p.invocX), 10)
	buf = append(buf, `, local_size_y = 1, local_size_z = 1) in;

layout(std430, binding = 0) buffer PositionsBuffer {
	vec2 vbo_positions[];
};
layout(std430, binding = 1) buffer DistancesBuffer {
	float vbo_distances[];
};
layout(std430, binding = 2) buffer IDsBuffer {
	uint vbo_ids[];
};
`...)
	blockNames := [...]string{"TapeHeaderBuffer", "TapeParamsBuffer", "TapeOffsetBuffer"}
	for i, obj := range objs {
		buf, err = AppendShaderBufferDecl(buf, blockNames[i], "", obj)
		if err != nil {
			return 0, nil, err
		}
	}
	buf, err = p.appendFunctions(buf, lib)
	if err != nil {
		return 0, nil, err
	}
	buf = append(buf, `
void main() {
	int idx = int(gl_GlobalInvocationID.x);
	if (idx >= vbo_positions.length()) {
		return;
	}
	vec2 p = vbo_positions[idx];
	float dstack[STACK_SIZE];
	uint istack[STACK_SIZE];
	int sp = 0;
	for (int i = 0; i < TAPE_LEN; i++) {
		uvec2 h = tape_header[i];
		if (h.x >= DF_OP_BASE) {
			sp--;
			float d;
			uint id;
			dfOperate(h.x, dstack[sp-1], istack[sp-1], dstack[sp], istack[sp], d, id);
			dstack[sp-1] = d;
			istack[sp-1] = id;
		} else {
			dstack[sp] = dfShape(h.x, p - tape_offset[i], tape_params[i]);
			istack[sp] = h.y;
			sp++;
		}
	}
	vbo_distances[idx] = dstack[0];
	vbo_ids[idx] = istack[0];
}
`...)
	p.scratch = buf[:0]
	n, err = w.Write(buf)
	return n, objs, err
}
