//go:build tinygo || !cgo

package gleval

import (
	"errors"

	"github.com/soypat/dfedit"
	"github.com/soypat/geometry/ms2"
)

var errNoCGO = errors.New("GPU evaluation requires CGo and is not supported on TinyGo")

// Init1x1GLFW starts a 1x1 sized GLFW so that user can start working with GPU.
func Init1x1GLFW() (terminate func(), err error) {
	return nil, errNoCGO
}

// TapeGPU evaluates a tape with a GL compute shader. Unavailable without CGo.
type TapeGPU struct {
	tape dfedit.Tape
}

// NewTapeGPU compiles the interpreter shader for tape.
func NewTapeGPU(tape dfedit.Tape, cfg ComputeConfig) (*TapeGPU, error) {
	return nil, errNoCGO
}

func (t *TapeGPU) Configure(tape dfedit.Tape, cfg ComputeConfig) error {
	return errNoCGO
}

func (t *TapeGPU) Tape() dfedit.Tape { return t.tape }

func (t *TapeGPU) Evaluate(pos []ms2.Vec, dist []float32, userData any) error {
	return errNoCGO
}

func (t *TapeGPU) EvaluateTagged(pos []ms2.Vec, dist []float32, ids []dfedit.ItemID) error {
	return errNoCGO
}
