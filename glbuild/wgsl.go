package glbuild

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gogpu/naga"
	"github.com/soypat/dfedit"
)

// wgslShapeCalls maps shape kinds to the interpreter's call expression.
var wgslShapeCalls = map[dfedit.ShapeKind]string{
	dfedit.KindDisk:        "df_disk(p, prm.x)",
	dfedit.KindTorus:       "df_torus(p, prm.xy)",
	dfedit.KindRectangle:   "df_rect(p, prm.xy)",
	dfedit.KindCross:       "df_cross(p, prm.xy)",
	dfedit.KindLineSegment: "df_segment(p, prm)",
	dfedit.KindPlane:       "dot(prm.xy, p)",
	dfedit.KindRay:         "df_ray(p, prm.xy)",
}

const wgslPrimitives = `struct Tagged {
	d: f32,
	id: u32,
}

fn df_inf() -> f32 {
	return bitcast<f32>(0x7f800000u);
}

fn df_disk(p: vec2<f32>, r: f32) -> f32 {
	return length(p) - r;
}

fn df_torus(p: vec2<f32>, radii: vec2<f32>) -> f32 {
	return abs(length(p) - radii.x) - radii.y;
}

fn df_rect(p: vec2<f32>, wh: vec2<f32>) -> f32 {
	let q = abs(p) - 0.5 * wh;
	return length(max(q, vec2<f32>(0.0, 0.0))) + min(max(q.x, q.y), 0.0);
}

fn df_cross(p0: vec2<f32>, lt: vec2<f32>) -> f32 {
	var p = abs(p0);
	if (p.y > p.x) {
		p = p.yx;
	}
	let u = p - vec2<f32>(lt.y, lt.y);
	let v = p - lt;
	if (u.x < 0.0) {
		return max(-length(u), v.x);
	}
	if (v.x < 0.0 || v.y < 0.0) {
		return max(v.x, v.y);
	}
	return length(v);
}

fn df_segment(p: vec2<f32>, ab: vec4<f32>) -> f32 {
	let b = ab.zw - ab.xy;
	let pa = p - ab.xy;
	let bb = dot(b, b);
	var t: f32 = 0.0;
	if (bb > 0.0) {
		t = clamp(dot(pa, b) / bb, 0.0, 1.0);
	}
	return length(pa - t * b);
}

fn df_ray(p: vec2<f32>, dir: vec2<f32>) -> f32 {
	let t = max(dot(p, dir), 0.0);
	return length(p - t * dir);
}
`

// WriteComputeTapeWGSL writes a WGSL compute shader equivalent to [Programmer.WriteComputeTape]
// using the same bindings in group 0. Instruction codes are inlined since WGSL has no preprocessor.
func (p *Programmer) WriteComputeTapeWGSL(w io.Writer, tape dfedit.Tape) (n int, objs []ShaderObject, err error) {
	err = checkTape(tape)
	if err != nil {
		return 0, nil, err
	}
	tb := PackTape(tape)
	objs, err = tb.ShaderObjects(BindingTapeHeader)
	if err != nil {
		return 0, nil, err
	}
	buf := append(p.scratch[:0], `@group(0) @binding(0) var<storage, read> positions: array<vec2<f32>>;
@group(0) @binding(1) var<storage, read_write> distances: array<f32>;
@group(0) @binding(2) var<storage, read_write> ids: array<u32>;
@group(0) @binding(3) var<storage, read> tape_header: array<vec2<u32>>;
@group(0) @binding(4) var<storage, read> tape_params: array<vec4<f32>>;
@group(0) @binding(5) var<storage, read> tape_offset: array<vec2<f32>>;

`...)
	buf = append(buf, wgslPrimitives...)

	buf = append(buf, "\nfn df_shape(kind: u32, p: vec2<f32>, prm: vec4<f32>) -> f32 {\n"...)
	for _, kind := range dfedit.AllShapeKinds() {
		buf = append(buf, "\tif (kind == "...)
		buf = strconv.AppendUint(buf, uint64(kind), 10)
		buf = append(buf, "u) {\n\t\treturn "...)
		buf = append(buf, wgslShapeCalls[kind]...)
		buf = append(buf, ";\n\t}\n"...)
	}
	buf = append(buf, "\treturn df_inf();\n}\n"...)

	opc := func(op dfedit.Operator) string { return strconv.Itoa(OpCodeBase+int(op)) + "u" }
	buf = fmt.Appendf(buf, `
fn df_operate(op: u32, a: Tagged, b: Tagged) -> Tagged {
	if (op == %[1]s) {
		if (a.d < b.d) {
			return a;
		}
		return b;
	}
	if (op == %[2]s) {
		if (a.d > b.d) {
			return a;
		}
		return b;
	}
	if (op == %[3]s) {
		if (-a.d > b.d) {
			return Tagged(-a.d, a.id);
		}
		return b;
	}
	if (op == %[4]s) {
		var i = b;
		if (a.d > b.d) {
			i = a;
		}
		var u = b;
		if (a.d < b.d) {
			u = a;
		}
		if (-i.d > u.d) {
			return Tagged(-i.d, i.id);
		}
		return u;
	}
	return Tagged(df_inf(), 0u);
}
`, opc(dfedit.OpUnion), opc(dfedit.OpIntersect), opc(dfedit.OpSubtract), opc(dfedit.OpXor))

	buf = fmt.Appendf(buf, `
@compute @workgroup_size(%d)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
	let idx = gid.x;
	if (idx >= arrayLength(&positions)) {
		return;
	}
	let p = positions[idx];
	var stack: array<Tagged, %d>;
	var sp: u32 = 0u;
	for (var i: u32 = 0u; i < %du; i = i + 1u) {
		let h = tape_header[i];
		if (h.x >= %du) {
			sp = sp - 1u;
			stack[sp - 1u] = df_operate(h.x, stack[sp - 1u], stack[sp]);
		} else {
			stack[sp] = Tagged(df_shape(h.x, p - tape_offset[i], tape_params[i]), h.y);
			sp = sp + 1u;
		}
	}
	distances[idx] = stack[0].d;
	ids[idx] = stack[0].id;
}
`, p.invocX, dfedit.StackSize, tb.Len(), OpCodeBase)
	p.scratch = buf[:0]
	n, err = w.Write(buf)
	return n, objs, err
}

// SPIRV compiles WGSL source to a SPIR-V binary using naga.
func SPIRV(wgsl string) ([]byte, error) {
	spirv, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("compile WGSL to SPIR-V: %w", err)
	}
	return spirv, nil
}
