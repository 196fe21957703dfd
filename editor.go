package dfedit

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
)

// Command is an edit queued on an [Editor] and applied by [Editor.Drain].
type Command interface {
	apply(e *Editor) error
}

// SetSelected selects the item with ID. NewItem, when not nil, also replaces
// the item with its contents; the selection only changes if that edit succeeds.
type SetSelected struct {
	ID      ItemID
	NewItem *Item
}

// MoveItem moves ID into Target at Index.
type MoveItem struct {
	ID     ItemID
	Target ItemID
	Index  int
}

// AddItem inserts Item as ID into Target at Index. A zero ID is allocated by the tree.
type AddItem struct {
	Item   Item
	ID     ItemID
	Target ItemID
	Index  int
}

// EditItem replaces the item with ID.
type EditItem struct {
	Item Item
	ID   ItemID
}

// RemoveItem removes ID and its descendants.
type RemoveItem struct {
	ID ItemID
}

// HighlightTarget marks the container a drag would drop into. Zero clears it.
type HighlightTarget struct {
	ID ItemID
}

// SetPreview shows a shape being placed. A nil Preview clears it.
type SetPreview struct {
	Preview *Preview
}

// CommitPreview adds the current preview to the tree and clears it.
type CommitPreview struct{}

func (c SetSelected) apply(e *Editor) error {
	if c.NewItem != nil && c.ID != 0 {
		if err := e.EditItemNow(c.ID, *c.NewItem); err != nil {
			return err
		}
	}
	e.selected = c.ID
	return nil
}

func (c MoveItem) apply(e *Editor) error {
	Logger().Debug("moving item", "id", c.ID, "target", c.Target, "index", c.Index)
	if err := e.tree.Move(c.ID, c.Target, c.Index); err != nil {
		return err
	}
	e.dirty = true
	return nil
}

func (c AddItem) apply(e *Editor) error {
	id := c.ID
	if id == 0 {
		id = e.tree.NewID()
	}
	Logger().Debug("adding item", "id", id, "item", c.Item, "target", c.Target, "index", c.Index)
	if err := e.tree.Add(c.Item, id, c.Target, c.Index); err != nil {
		return err
	}
	e.dirty = true
	return nil
}

func (c EditItem) apply(e *Editor) error { return e.EditItemNow(c.ID, c.Item) }

func (c RemoveItem) apply(e *Editor) error {
	Logger().Debug("removing item", "id", c.ID)
	if err := e.tree.Remove(c.ID); err != nil {
		return err
	}
	if _, ok := e.tree.items[e.selected]; !ok {
		e.selected = 0
	}
	if _, ok := e.tree.items[e.highlighted]; !ok {
		e.highlighted = 0
	}
	e.dirty = true
	return nil
}

func (c HighlightTarget) apply(e *Editor) error {
	e.highlighted = c.ID
	return nil
}

func (c SetPreview) apply(e *Editor) error {
	if c.Preview == nil {
		if e.preview != nil {
			e.dirty = true
		}
		e.preview = nil
		return nil
	}
	p := *c.Preview
	if !p.Shape.Kind().IsValid() || !p.Op.IsValid() {
		return fmt.Errorf("invalid preview %v", p)
	}
	e.preview = &p
	e.dirty = true
	return nil
}

func (c CommitPreview) apply(e *Editor) error {
	if e.preview == nil {
		return errors.New("no preview to commit")
	}
	id := e.tree.NewID()
	Logger().Debug("adding item", "id", id, "item", e.preview.Shape, "op", e.preview.Op)
	if err := e.tree.CommitPreview(id, *e.preview); err != nil {
		return err
	}
	e.preview = nil
	e.selected = id
	e.dirty = true
	return nil
}

// Snapshot is an immutable evaluation of the scene. Its grids are never
// modified after publication unless the snapshot is handed to [Editor.Recycle].
type Snapshot struct {
	Tape Tape
	// Grid holds the scene's signed distance per cell.
	Grid *Grid[float32]
	// Tags holds the owning item per cell, zero where nothing is hit.
	Tags *Grid[ItemID]
}

// Pick returns the owner of p using the snapshot's tape.
func (s *Snapshot) Pick(p ms2.Vec) (ItemID, bool) {
	return s.Tape.Pick(p)
}

// Editor owns a [Tree] and applies queued edit commands to it once per frame.
// Send may be called from any goroutine. Drain, Refresh, Resize and the
// accessors of editor state must be called from a single goroutine. Snapshot
// and Pick are safe to call concurrently with Refresh.
type Editor struct {
	mu    sync.Mutex
	queue []Command
	// spare holds a recycled snapshot whose grids the next refresh reuses.
	spare *Snapshot

	tree        *Tree
	selected    ItemID
	highlighted ItemID
	preview     *Preview
	dirty       bool

	rows, cols int
	cfg        GridConfig
	scratch    *Grid[TaggedDistance]
	snap       atomic.Pointer[Snapshot]
}

// NewEditor returns an editor over tree with grids of rows*cols cells.
// A nil tree starts an empty scene.
func NewEditor(tree *Tree, rows, cols int, cfg GridConfig) *Editor {
	if tree == nil {
		tree = NewTree(nil)
	}
	e := &Editor{
		tree:    tree,
		rows:    rows,
		cols:    cols,
		cfg:     cfg,
		scratch: NewGrid[TaggedDistance](rows, cols),
		dirty:   true,
	}
	e.scratch.Configure(cfg)
	e.snap.Store(&Snapshot{})
	return e
}

// Tree returns the edited tree. It must not be modified while commands are pending.
func (e *Editor) Tree() *Tree { return e.tree }

// Send queues commands to be applied on the next Drain.
func (e *Editor) Send(cmds ...Command) {
	e.mu.Lock()
	e.queue = append(e.queue, cmds...)
	e.mu.Unlock()
}

// Drain applies all queued commands in order. Failing commands do not stop
// processing; their errors are joined in the returned error.
func (e *Editor) Drain() error {
	e.mu.Lock()
	cmds := e.queue
	e.queue = nil
	e.mu.Unlock()
	var errs []error
	for _, cmd := range cmds {
		if err := cmd.apply(e); err != nil {
			errs = append(errs, fmt.Errorf("%T: %w", cmd, err))
		}
	}
	return errors.Join(errs...)
}

// EditItemNow replaces an item immediately, bypassing the queue.
func (e *Editor) EditItemNow(id ItemID, item Item) error {
	Logger().Debug("editing item", "id", id, "item", item)
	if err := e.tree.Edit(id, item); err != nil {
		return err
	}
	e.dirty = true
	return nil
}

// NeedsUpdate reports whether the published snapshot is out of date.
func (e *Editor) NeedsUpdate() bool { return e.dirty }

// Resize sets the grid dimensions used by the next Refresh.
func (e *Editor) Resize(rows, cols int) {
	if rows == e.rows && cols == e.cols {
		return
	}
	e.rows, e.cols = rows, cols
	e.dirty = true
}

// Refresh regenerates the tape and grids if any edit happened since the last
// refresh and publishes a new snapshot. It reports whether a new snapshot was published.
func (e *Editor) Refresh() bool {
	if !e.dirty {
		return false
	}
	tape := e.tree.Compile(e.preview)
	Logger().Debug("tape regenerated", "instructions", tape.Len(), "maxdepth", tape.MaxDepth())
	e.scratch.Resize(e.rows, e.cols)
	e.scratch.Update(tape.Tagged)
	e.mu.Lock()
	spare := e.spare
	e.spare = nil
	e.mu.Unlock()
	var dist *Grid[float32]
	var tags *Grid[ItemID]
	if spare != nil {
		dist, tags = spare.Grid, spare.Tags
		dist.Resize(e.rows, e.cols)
		tags.Resize(e.rows, e.cols)
	} else {
		dist = NewGrid[float32](e.rows, e.cols)
		tags = NewGrid[ItemID](e.rows, e.cols)
	}
	for i, td := range e.scratch.Buffer() {
		dist.buf[i] = td.D
		var tag ItemID
		if !math32.IsInf(td.D, 1) {
			tag = td.Data
		}
		tags.buf[i] = tag
	}
	e.snap.Store(&Snapshot{Tape: tape, Grid: dist, Tags: tags})
	e.dirty = false
	return true
}

// Recycle hands back a snapshot the caller no longer reads so the next Refresh
// reuses its grids instead of allocating. The published snapshot is not recycled.
func (e *Editor) Recycle(s *Snapshot) {
	if s == nil || s.Grid == nil || s.Tags == nil || s == e.snap.Load() {
		return
	}
	e.mu.Lock()
	e.spare = s
	e.mu.Unlock()
}

// Snapshot returns the last published snapshot.
func (e *Editor) Snapshot() *Snapshot { return e.snap.Load() }

// Pick returns the item owning p in the last published snapshot.
func (e *Editor) Pick(p ms2.Vec) (ItemID, bool) {
	return e.Snapshot().Pick(p)
}

// Selected returns the selected item. ok is false if nothing is selected.
func (e *Editor) Selected() (id ItemID, item Item, ok bool) {
	item, ok = e.tree.Get(e.selected)
	if !ok {
		return 0, Item{}, false
	}
	return e.selected, item, true
}

// Highlighted returns the container highlighted as drop target, or zero.
func (e *Editor) Highlighted() ItemID { return e.highlighted }

// Preview returns the preview being placed, or nil.
func (e *Editor) Preview() *Preview {
	if e.preview == nil {
		return nil
	}
	p := *e.preview
	return &p
}

// Grab classifies a press at p on the selected shape.
func (e *Editor) Grab(p ms2.Vec) Grab {
	_, item, ok := e.Selected()
	if !ok || item.IsOperator {
		return GrabNone
	}
	return GrabKind(item.Shape, item.Transform, p)
}

// Drag returns the selected item updated for a drag from initial to current. It does not
// modify the tree; send the result in an [EditItem] command.
func (e *Editor) Drag(grab Grab, initial, current ms2.Vec) (Item, error) {
	id, item, ok := e.Selected()
	if !ok || item.IsOperator {
		return item, errors.New("no shape selected")
	}
	switch grab {
	case GrabMove:
		item.Transform.Position = ms2.Add(item.Transform.Position, ms2.Sub(current, initial))
	case GrabResize:
		li := item.Transform.Apply(initial)
		lc := item.Transform.Apply(current)
		deriv := item.Shape.Derivative(li, derivativeStep)
		item.Shape = item.Shape.Resize(li, lc, deriv)
	default:
		return item, fmt.Errorf("cannot drag %s with grab %s", id, grab)
	}
	return item, nil
}
