package dfedit

import (
	"runtime"
	"unsafe"

	"github.com/soypat/geometry/ms2"
	"golang.org/x/sync/errgroup"
)

// GridConfig configures grid evaluation.
type GridConfig struct {
	// Workers is the number of goroutines used by [Grid.Update].
	// Zero or negative uses GOMAXPROCS.
	Workers int
}

// BatchSDF2 evaluates signed distances at many positions at once, such as a GPU evaluator.
type BatchSDF2 interface {
	Evaluate(pos []ms2.Vec, dist []float32, userData any) error
}

// Grid is a dense row-major cache of values sampled over the normalized scene space.
// Row indices run along x and column indices along y. The shorter axis spans [-0.5, 0.5]
// when rows >= cols and x is scaled by the aspect ratio rows/cols.
type Grid[T any] struct {
	rows, cols int
	buf        []T
	cfg        GridConfig
	scratch    []ms2.Vec
}

// NewGrid returns a grid of rows*cols zero values.
func NewGrid[T any](rows, cols int) *Grid[T] {
	if rows < 0 || cols < 0 {
		panic("negative grid dimension")
	}
	return &Grid[T]{rows: rows, cols: cols, buf: make([]T, rows*cols)}
}

// NewGridFrom returns a grid with every cell set to sample evaluated at the cell's point.
func NewGridFrom[T any](rows, cols int, sample func(p ms2.Vec) T) *Grid[T] {
	g := NewGrid[T](rows, cols)
	g.Update(sample)
	return g
}

// Configure sets the grid's evaluation configuration.
func (g *Grid[T]) Configure(cfg GridConfig) { g.cfg = cfg }

func (g *Grid[T]) Rows() int { return g.rows }
func (g *Grid[T]) Cols() int { return g.cols }

// AspectRatio returns rows/cols, the extent of the x axis.
func (g *Grid[T]) AspectRatio() float32 {
	if g.cols == 0 {
		return 0
	}
	return float32(g.rows) / float32(g.cols)
}

// Resize sets the logical dimensions. The backing buffer only ever grows so cells
// hold stale values until the next update.
func (g *Grid[T]) Resize(rows, cols int) {
	if rows < 0 || cols < 0 {
		panic("negative grid dimension")
	}
	n := rows * cols
	if n > cap(g.buf) {
		g.buf = append(g.buf[:cap(g.buf)], make([]T, n-cap(g.buf))...)
	}
	g.buf = g.buf[:n]
	g.rows, g.cols = rows, cols
}

// Point returns the sample point of the cell at row, col.
func (g *Grid[T]) Point(row, col int) ms2.Vec {
	rows, cols := float32(g.rows), float32(g.cols)
	ar := rows / cols
	half := 0.5 / cols
	return ms2.Vec{
		X: (float32(row)/rows-0.5)*ar + half,
		Y: float32(col)/cols - 0.5 + half,
	}
}

// Get returns the value at row, col. Indices must be in range.
func (g *Grid[T]) Get(row, col int) T { return g.buf[row*g.cols+col] }

// Set stores v at row, col. Indices must be in range.
func (g *Grid[T]) Set(row, col int, v T) { g.buf[row*g.cols+col] = v }

// At returns the value of the cell containing p. Points outside the grid
// are clamped to the nearest border cell.
func (g *Grid[T]) At(p ms2.Vec) T {
	row, col := g.cellOf(p)
	return g.Get(row, col)
}

func (g *Grid[T]) cellOf(p ms2.Vec) (row, col int) {
	ar := g.AspectRatio()
	row = int((p.X + 0.5*ar) / ar * float32(g.rows))
	col = int((p.Y + 0.5) * float32(g.cols))
	return clampi(row, 0, g.rows-1), clampi(col, 0, g.cols-1)
}

// Buffer returns the logical cells in row-major order. The slice aliases the grid.
func (g *Grid[T]) Buffer() []T { return g.buf }

// Bytes returns the logical cells as a flat byte slice for upload to renderers.
// T must not contain pointers.
func (g *Grid[T]) Bytes() []byte {
	if len(g.buf) == 0 {
		return nil
	}
	var z T
	return unsafe.Slice((*byte)(unsafe.Pointer(&g.buf[0])), len(g.buf)*int(unsafe.Sizeof(z)))
}

// Update overwrites every cell with sample evaluated at the cell's point. Rows are
// distributed over the configured number of workers. sample must be safe for concurrent use.
func (g *Grid[T]) Update(sample func(p ms2.Vec) T) {
	if len(g.buf) == 0 {
		return
	}
	workers := g.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	var group errgroup.Group
	group.SetLimit(workers)
	for row := 0; row < g.rows; row++ {
		group.Go(func() error {
			line := g.buf[row*g.cols : (row+1)*g.cols]
			for col := range line {
				line[col] = sample(g.Point(row, col))
			}
			return nil
		})
	}
	group.Wait()
}

// Positions returns the sample points of all cells in row-major order.
// The returned slice is reused by subsequent calls.
func (g *Grid[T]) Positions() []ms2.Vec {
	n := len(g.buf)
	if cap(g.scratch) < n {
		g.scratch = make([]ms2.Vec, n)
	}
	g.scratch = g.scratch[:n]
	for i := range g.scratch {
		row := i / g.cols
		g.scratch[i] = g.Point(row, i-row*g.cols)
	}
	return g.scratch
}

// UpdateBatch overwrites the cells of a distance grid using a batch evaluator.
func UpdateBatch(g *Grid[float32], ev BatchSDF2, userData any) error {
	if len(g.buf) == 0 {
		return nil
	}
	return ev.Evaluate(g.Positions(), g.buf, userData)
}

func clampi(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
