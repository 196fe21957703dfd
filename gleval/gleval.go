// Package gleval evaluates tapes over batches of positions on the CPU or on the GPU.
package gleval

import (
	"errors"
	"sync/atomic"

	"github.com/chewxy/math32"
	"github.com/soypat/dfedit"
	"github.com/soypat/geometry/ms2"
)

// SDF2 implements a 2D signed distance field in vectorized
// form suitable for running on GPU.
type SDF2 interface {
	// Evaluate evaluates the signed distance field over pos positions.
	// dist and pos must be of same length.  Resulting distances are stored
	// in dist.
	Evaluate(pos []ms2.Vec, dist []float32, userData any) error
}

// TaggedSDF2 is an [SDF2] that also reports which item owns each distance.
type TaggedSDF2 interface {
	SDF2
	// EvaluateTagged stores distances in dist and owning item IDs in ids.
	// The zero ID is stored where no shape contributes, i.e. for an empty tape.
	EvaluateTagged(pos []ms2.Vec, dist []float32, ids []dfedit.ItemID) error
}

var (
	errEmptyBuffers         = errors.New("empty buffers")
	errMismatchBufferLength = errors.New("position and distance buffer length mismatch")
)

// ComputeConfig configures GPU evaluators.
type ComputeConfig struct {
	// InvocX is the compute shader local group size in X.
	InvocX int
}

func (cfg ComputeConfig) validate() error {
	if cfg.InvocX <= 0 {
		return errors.New("invalid compute InvocX")
	}
	return nil
}

// CPUSDF2 evaluates a tape on the CPU.
type CPUSDF2 struct {
	tape        dfedit.Tape
	evaluations atomic.Uint64
}

var _ TaggedSDF2 = (*CPUSDF2)(nil)

// NewCPUSDF2 validates tape and returns a CPU evaluator for it.
func NewCPUSDF2(tape dfedit.Tape) (*CPUSDF2, error) {
	err := tape.Validate()
	if err != nil {
		return nil, err
	}
	return &CPUSDF2{tape: tape}, nil
}

// Tape returns the evaluated tape.
func (c *CPUSDF2) Tape() dfedit.Tape { return c.tape }

// Evaluations returns total evaluations performed succesfully during the evaluator's lifetime.
func (c *CPUSDF2) Evaluations() uint64 { return c.evaluations.Load() }

func (c *CPUSDF2) Evaluate(pos []ms2.Vec, dist []float32, userData any) error {
	err := c.tape.Evaluate(pos, dist, userData)
	if err != nil {
		return err
	}
	c.evaluations.Add(uint64(len(dist)))
	return nil
}

func (c *CPUSDF2) EvaluateTagged(pos []ms2.Vec, dist []float32, ids []dfedit.ItemID) error {
	err := c.tape.EvaluateTagged(pos, dist, ids)
	if err != nil {
		return err
	}
	c.evaluations.Add(uint64(len(dist)))
	return nil
}

func checkBuffers(pos []ms2.Vec, dist []float32, ids []dfedit.ItemID) error {
	if len(pos) != len(dist) || (ids != nil && len(ids) != len(pos)) {
		return errMismatchBufferLength
	} else if len(pos) == 0 {
		return errEmptyBuffers
	}
	return nil
}

// fillDivergent writes the result of evaluating an empty tape.
func fillDivergent(dist []float32, ids []dfedit.ItemID) {
	inf := math32.Inf(1)
	for i := range dist {
		dist[i] = inf
	}
	clear(ids)
}
