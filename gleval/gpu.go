//go:build !tinygo && cgo

package gleval

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/soypat/dfedit"
	"github.com/soypat/dfedit/glbuild"
	"github.com/soypat/dfedit/glbuild/glsllib"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/glgl/v4.6-core/glgl"
)

// Init1x1GLFW starts a 1x1 sized GLFW so that user can start working with GPU.
// It returns a termination function that should be called when user is done running loads on GPU.
func Init1x1GLFW() (terminate func(), err error) {
	_, terminate, err = glgl.InitWithCurrentWindow33(glgl.WindowConfig{
		Title:   "compute",
		Version: [2]int{4, 6},
		Width:   1,
		Height:  1,
	})
	if err != nil {
		return nil, err
	}
	dfedit.Logger().Info("GPU context created", "version", "4.6")
	return terminate, nil
}

// TapeGPU evaluates a tape with a GL compute shader. A current GL context
// (see [Init1x1GLFW]) is required and all methods must be called from the thread owning it.
type TapeGPU struct {
	prog   glgl.Program
	tape   dfedit.Tape
	objs   []glbuild.ShaderObject
	tb     glbuild.TapeBuffers
	invocX int
	// scratch receives IDs from the GPU before conversion.
	scratch []uint32
}

var _ TaggedSDF2 = (*TapeGPU)(nil)

// NewTapeGPU compiles the interpreter shader for tape.
func NewTapeGPU(tape dfedit.Tape, cfg ComputeConfig) (*TapeGPU, error) {
	var t TapeGPU
	err := t.Configure(tape, cfg)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Configure recompiles the interpreter for a new tape, releasing the previous program.
// An empty tape needs no program and evaluates to +Inf.
func (t *TapeGPU) Configure(tape dfedit.Tape, cfg ComputeConfig) error {
	err := cfg.validate()
	if err != nil {
		return err
	}
	err = tape.Validate()
	if err != nil {
		return err
	}
	if t.prog.ID() != 0 {
		t.prog.Delete()
		t.prog = glgl.Program{}
	}
	t.tape = tape
	t.invocX = cfg.InvocX
	t.objs = nil
	if tape.Len() == 0 {
		return nil
	}
	programmer := glbuild.NewDefaultProgrammer()
	programmer.SetComputeInvocations(cfg.InvocX, 1, 1)
	var source bytes.Buffer
	_, _, err = programmer.WriteComputeTape(&source, tape, glsllib.TapeInterpreter())
	if err != nil {
		return err
	}
	combinedSource, err := glgl.ParseCombined(&source)
	if err != nil {
		return err
	}
	t.prog, err = glgl.CompileProgram(combinedSource)
	if err != nil {
		return errors.New(string(combinedSource.Compute) + "\n" + err.Error())
	}
	// Objects point into tb which must live as long as the program.
	t.tb = glbuild.PackTape(tape)
	t.objs, err = t.tb.ShaderObjects(glbuild.BindingTapeHeader)
	if err != nil {
		return err
	}
	dfedit.Logger().Debug("tape compiled for GPU", "instructions", tape.Len(), "invocX", cfg.InvocX)
	return nil
}

// Tape returns the tape the program was compiled for.
func (t *TapeGPU) Tape() dfedit.Tape { return t.tape }

func (t *TapeGPU) Evaluate(pos []ms2.Vec, dist []float32, userData any) error {
	return t.evaluate(pos, dist, nil)
}

func (t *TapeGPU) EvaluateTagged(pos []ms2.Vec, dist []float32, ids []dfedit.ItemID) error {
	if ids == nil {
		return errMismatchBufferLength
	}
	return t.evaluate(pos, dist, ids)
}

func (t *TapeGPU) evaluate(pos []ms2.Vec, dist []float32, ids []dfedit.ItemID) error {
	err := checkBuffers(pos, dist, ids)
	if err != nil {
		return err
	}
	if t.tape.Len() == 0 {
		fillDivergent(dist, ids)
		return nil
	} else if t.prog.ID() == 0 {
		return errors.New("TapeGPU not configured before first use")
	}
	t.prog.Bind()
	defer t.prog.Unbind()
	var idbuf []uint32
	if ids != nil {
		t.scratch = append(t.scratch[:0], make([]uint32, len(ids))...)
		idbuf = t.scratch
	}
	err = computeEvaluate(pos, dist, idbuf, t.invocX, t.objs)
	if err != nil {
		return fmt.Errorf("GPU tape evaluation: %w", err)
	}
	for i, id := range idbuf {
		ids[i] = dfedit.ItemID(id)
	}
	return nil
}
