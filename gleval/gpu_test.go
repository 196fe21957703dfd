//go:build !tinygo && cgo

package gleval_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/dfedit"
	"github.com/soypat/dfedit/gleval"
)

func TestTapeGPU(t *testing.T) {
	var logs bytes.Buffer
	dfedit.SetLogger(slog.New(slog.NewTextHandler(&logs, nil)))
	defer dfedit.SetLogger(nil)
	terminate, err := gleval.Init1x1GLFW()
	if err != nil {
		t.Skip("no GL context:", err)
	}
	defer terminate()
	if !strings.Contains(logs.String(), "GPU context created") {
		t.Errorf("missing context creation log, got %q", logs.String())
	}
	tape := testTape(t)
	sdf, err := gleval.NewTapeGPU(tape, gleval.ComputeConfig{InvocX: 32})
	if err != nil {
		t.Fatal(err)
	}
	pos := testPositions(20)
	dist := make([]float32, len(pos))
	ids := make([]dfedit.ItemID, len(pos))
	if err := sdf.EvaluateTagged(pos, dist, ids); err != nil {
		t.Fatal(err)
	}
	idMismatch := 0
	for i, p := range pos {
		want := tape.Tagged(p)
		if math32.Abs(dist[i]-want.D) > 1e-5 {
			t.Errorf("at %v: GPU %g, CPU %g", p, dist[i], want.D)
		}
		if ids[i] != want.Data {
			idMismatch++
		}
	}
	// Near-ties between shapes may resolve differently under float rounding.
	if idMismatch > len(pos)/50 {
		t.Errorf("%d of %d IDs differ from CPU evaluation", idMismatch, len(pos))
	}

	if err := sdf.Configure(dfedit.Tape{}, gleval.ComputeConfig{InvocX: 32}); err != nil {
		t.Fatal(err)
	}
	if err := sdf.Evaluate(pos, dist, nil); err != nil {
		t.Fatal(err)
	}
	if !math32.IsInf(dist[0], 1) {
		t.Errorf("empty tape distance %g", dist[0])
	}
}
