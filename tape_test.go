package dfedit_test

import (
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/dfedit"
	"github.com/soypat/geometry/ms2"
)

func TestAlgebraLaws(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		a := dfedit.TaggedDistance{D: rng.Float32()*2 - 1, Data: 1}
		b := dfedit.TaggedDistance{D: rng.Float32()*2 - 1, Data: 2}
		if a.D == b.D {
			continue
		}
		u := dfedit.Union(a, b)
		if u.D != math32.Min(a.D, b.D) {
			t.Fatalf("union(%v,%v)=%v", a, b, u)
		}
		if (u.D == a.D) != (u.Data == 1) {
			t.Fatalf("union payload not from winner: %v", u)
		}
		in := dfedit.Intersect(a, b)
		if in.D != math32.Max(a.D, b.D) {
			t.Fatalf("intersect(%v,%v)=%v", a, b, in)
		}
		s := dfedit.Subtract(a, b)
		if s.D != math32.Max(b.D, -a.D) {
			t.Fatalf("subtract(%v,%v)=%v", a, b, s)
		}
		if s.D == -a.D && s.D != b.D && s.Data != 1 {
			t.Fatalf("subtract should keep a's payload when a wins: %v", s)
		}
		x := dfedit.Xor(a, b)
		if x != dfedit.Subtract(dfedit.Intersect(a, b), dfedit.Union(a, b)) {
			t.Fatalf("xor(%v,%v)=%v not composed of subtract/intersect/union", a, b, x)
		}
		lo, hi := math32.Min(a.D, b.D), math32.Max(a.D, b.D)
		if x.D != math32.Max(lo, -hi) {
			t.Fatalf("xor(%v,%v)=%v", a, b, x)
		}
		for _, op := range dfedit.AllOperators() {
			fa, fb := dfedit.Dist(a.D), dfedit.Dist(b.D)
			if got, want := dfedit.Operate(op, fa, fb).Value(), dfedit.Operate(op, a, b).D; got != want {
				t.Fatalf("%s: plain %g != tagged %g", op, got, want)
			}
		}
	}
	var d dfedit.Dist
	if !math32.IsInf(d.Divergent().Value(), 1) {
		t.Error("Dist divergent not +Inf")
	}
	var td dfedit.TaggedDistance
	if !math32.IsInf(td.Divergent().Value(), 1) || td.Divergent().Data != 0 {
		t.Error("TaggedDistance divergent not +Inf with zero payload")
	}
}

func TestParseOperator(t *testing.T) {
	for _, op := range dfedit.AllOperators() {
		got, err := dfedit.ParseOperator(op.String())
		if err != nil || got != op {
			t.Errorf("ParseOperator(%q)=%v, %v", op.String(), got, err)
		}
	}
	if _, err := dfedit.ParseOperator("blend"); err == nil {
		t.Error("expected error for unknown operator")
	}
}

func disk(r float32) dfedit.Shape { return dfedit.NewDiskShape(dfedit.Disk{Radius: r}) }

func at(x, y float32) dfedit.Transform { return dfedit.Transform{Position: ms2.Vec{X: x, Y: y}} }

func TestCompileLeaves(t *testing.T) {
	items := map[dfedit.ItemID]dfedit.Item{
		1: dfedit.NewOperatorItem(dfedit.OpUnion, 2),
		2: dfedit.NewShapeItem(disk(0.1), at(0, 0)),
		3: dfedit.NewShapeItem(disk(0.2), at(0.5, 0)),
		4: dfedit.NewOperatorItem(dfedit.OpUnion),
		5: dfedit.NewOperatorItem(dfedit.OpUnion, 4, 99),
	}
	tape := dfedit.Compile(items, 1)
	if tape.Len() != 1 || tape.NumOps() != 0 {
		t.Fatalf("single leaf: got tape\n%s", tape)
	}
	if ins := tape.Instructions()[0]; ins.IsOp || ins.ID != 2 {
		t.Errorf("single leaf instruction: %v", ins)
	}

	items[1] = dfedit.NewOperatorItem(dfedit.OpUnion, 2, 3)
	tape = dfedit.Compile(items, 1)
	ins := tape.Instructions()
	if len(ins) != 3 || ins[0].IsOp || ins[1].IsOp || !ins[2].IsOp {
		t.Fatalf("two leaves: want [Shape, Shape, Op], got\n%s", tape)
	}
	if ins[0].ID != 3 || ins[1].ID != 2 || ins[2].ID != 1 {
		t.Errorf("children must be emitted last first, got\n%s", tape)
	}

	// Empty operators and dangling IDs produce nothing.
	for _, root := range []dfedit.ItemID{4, 5, 42} {
		tape = dfedit.Compile(items, root)
		if tape.Len() != 0 {
			t.Errorf("root %d: expected empty tape, got\n%s", root, tape)
		}
		if d := tape.SignedDistance(ms2.Vec{}); !math32.IsInf(d, 1) {
			t.Errorf("root %d: empty tape should evaluate to +Inf, got %g", root, d)
		}
		if _, ok := tape.Pick(ms2.Vec{}); ok {
			t.Errorf("root %d: empty tape should pick nothing", root)
		}
	}

	// Collapsed children do not count toward operators.
	items[1] = dfedit.NewOperatorItem(dfedit.OpIntersect, 4, 2, 77, 5)
	tape = dfedit.Compile(items, 1)
	if tape.Len() != 1 {
		t.Errorf("operator with one live child: got\n%s", tape)
	}
}

func TestCompileFoldOrder(t *testing.T) {
	a, b, c := disk(0.3), disk(0.2), disk(0.1)
	items := map[dfedit.ItemID]dfedit.Item{
		1: dfedit.NewOperatorItem(dfedit.OpSubtract, 2, 3, 4),
		2: dfedit.NewShapeItem(a, at(0, 0)),
		3: dfedit.NewShapeItem(b, at(0.1, 0)),
		4: dfedit.NewShapeItem(c, at(0.15, 0)),
	}
	tape := dfedit.Compile(items, 1)
	ins := tape.Instructions()
	wantIDs := []dfedit.ItemID{4, 3, 1, 2, 1}
	wantOp := []bool{false, false, true, false, true}
	if len(ins) != len(wantIDs) {
		t.Fatalf("got tape\n%s", tape)
	}
	for i := range ins {
		if ins[i].ID != wantIDs[i] || ins[i].IsOp != wantOp[i] {
			t.Fatalf("instruction %d: got %v", i, ins[i])
		}
	}
	if tape.MaxDepth() != 2 {
		t.Errorf("max depth: got %d, want 2", tape.MaxDepth())
	}
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		p := ms2.Vec{X: rng.Float32() - 0.5, Y: rng.Float32() - 0.5}
		da := dfedit.Dist(a.SignedDistance(p))
		db := dfedit.Dist(b.SignedDistance(ms2.Sub(p, ms2.Vec{X: 0.1})))
		dc := dfedit.Dist(c.SignedDistance(ms2.Sub(p, ms2.Vec{X: 0.15})))
		want := dfedit.Subtract(dfedit.Subtract(dc, db), da)
		if got := tape.SignedDistance(p); got != want.Value() {
			t.Fatalf("at %v: got %g, want %g", p, got, want.Value())
		}
	}
}

func TestCompilePreview(t *testing.T) {
	preview := &dfedit.Preview{Shape: disk(0.1), Transform: at(0.3, 0), Op: dfedit.OpSubtract}
	items := map[dfedit.ItemID]dfedit.Item{
		1: dfedit.NewOperatorItem(dfedit.OpUnion),
		2: dfedit.NewShapeItem(disk(0.3), at(0, 0)),
	}
	tape := dfedit.CompilePreview(items, 1, preview)
	if tape.Len() != 1 || tape.Instructions()[0].Shape != preview.Shape {
		t.Fatalf("preview into empty scene: got\n%s", tape)
	}
	items[1] = dfedit.NewOperatorItem(dfedit.OpUnion, 2)
	tape = dfedit.CompilePreview(items, 1, preview)
	ins := tape.Instructions()
	if len(ins) != 3 || ins[0].Shape != preview.Shape || !ins[2].IsOp || ins[2].Op != dfedit.OpSubtract {
		t.Fatalf("preview: got\n%s", tape)
	}
	// The preview carves a hole in the scene.
	if d := tape.SignedDistance(ms2.Vec{X: 0.3}); d <= 0 {
		t.Errorf("inside preview hole: got %g, want positive", d)
	}
	if d := tape.SignedDistance(ms2.Vec{}); d >= 0 {
		t.Errorf("scene center: got %g, want negative", d)
	}
}

func TestTapeEvaluate(t *testing.T) {
	tree := dfedit.NewTree(nil)
	id1, _ := tree.AddLeaf(disk(0.1), at(-0.2, 0), tree.Root(), 0)
	id2, _ := tree.AddLeaf(dfedit.NewRectangleShape(dfedit.DefaultRectangle()), at(0.3, 0), tree.Root(), 1)
	tape := tree.Compile(nil)
	if err := tape.Validate(); err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewSource(1))
	pos := make([]ms2.Vec, 64)
	for i := range pos {
		pos[i] = ms2.Vec{X: rng.Float32() - 0.5, Y: rng.Float32() - 0.5}
	}
	dist := make([]float32, len(pos))
	dist2 := make([]float32, len(pos))
	ids := make([]dfedit.ItemID, len(pos))
	if err := tape.Evaluate(pos, dist, nil); err != nil {
		t.Fatal(err)
	}
	if err := tape.EvaluateTagged(pos, dist2, ids); err != nil {
		t.Fatal(err)
	}
	for i, p := range pos {
		if dist[i] != tape.SignedDistance(p) || dist[i] != dist2[i] {
			t.Fatalf("evaluation not deterministic at %v", p)
		}
		if ids[i] != id1 && ids[i] != id2 {
			t.Fatalf("unexpected owner %s", ids[i])
		}
	}
	if got, ok := tape.Pick(ms2.Vec{X: -0.2}); !ok || got != id1 {
		t.Errorf("pick disk: got %s %v", got, ok)
	}
	if got, ok := tape.Pick(ms2.Vec{X: 0.3, Y: 0.1}); !ok || got != id2 {
		t.Errorf("pick rectangle: got %s %v", got, ok)
	}
	if err := tape.Evaluate(pos, dist[:3], nil); err == nil {
		t.Error("expected mismatched buffer error")
	}
	if err := tape.Evaluate(nil, nil, nil); err == nil {
		t.Error("expected empty buffer error")
	}
}

func TestTapeDeep(t *testing.T) {
	// Deeper than the inline stack.
	const n = 3 * dfedit.StackSize
	var ins []dfedit.Instruction
	for i := 0; i < n; i++ {
		ins = append(ins, dfedit.ShapeInstruction(disk(0.01), dfedit.ItemID(i+1), at(float32(i)*0.05, 0)))
	}
	for i := 1; i < n; i++ {
		ins = append(ins, dfedit.OpInstruction(dfedit.OpUnion, 1000))
	}
	tape, err := dfedit.NewTape(ins)
	if err != nil {
		t.Fatal(err)
	}
	if tape.MaxDepth() != n {
		t.Errorf("max depth: got %d, want %d", tape.MaxDepth(), n)
	}
	for i := 0; i < n; i++ {
		p := ms2.Vec{X: float32(i) * 0.05}
		if id, ok := tape.Pick(p); !ok || id != dfedit.ItemID(i+1) {
			t.Errorf("pick %d: got %s", i+1, id)
		}
	}
}

func TestNewTapeInvalid(t *testing.T) {
	shape := dfedit.ShapeInstruction(disk(1), 1, dfedit.Transform{})
	op := dfedit.OpInstruction(dfedit.OpUnion, 2)
	for _, ins := range [][]dfedit.Instruction{
		{op},
		{shape, op},
		{shape, shape},
		{{}},
		{shape, shape, dfedit.OpInstruction(dfedit.Operator(200), 2)},
	} {
		if _, err := dfedit.NewTape(ins); err == nil {
			t.Errorf("expected error for tape %v", ins)
		}
	}
	if _, err := dfedit.NewTape(nil); err != nil {
		t.Errorf("empty tape should be valid: %v", err)
	}
}
