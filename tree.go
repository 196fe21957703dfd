package dfedit

import (
	"errors"
	"fmt"
	"slices"
)

// ItemID identifies an item of a [Tree]. The zero ItemID means "no item".
type ItemID uint32

func (id ItemID) String() string { return fmt.Sprintf("#%04x", uint32(id)) }

// IDAllocator hands out item IDs. IDs returned must be non-zero and never repeat.
type IDAllocator interface {
	NewID() ItemID
}

// CounterAllocator is a monotonic [IDAllocator] starting at 1.
type CounterAllocator struct {
	last ItemID
}

func (c *CounterAllocator) NewID() ItemID {
	c.last++
	return c.last
}

// Reserve ensures id is never returned by a later NewID call.
func (c *CounterAllocator) Reserve(id ItemID) {
	if id > c.last {
		c.last = id
	}
}

// Item is a tree node: either an operator combining its ordered Children or a shape leaf.
type Item struct {
	Op         Operator
	Children   []ItemID
	Shape      Shape
	Transform  Transform
	IsOperator bool
}

func NewShapeItem(shape Shape, tf Transform) Item {
	return Item{Shape: shape, Transform: tf}
}

func NewOperatorItem(op Operator, children ...ItemID) Item {
	return Item{Op: op, Children: children, IsOperator: true}
}

func (it Item) clone() Item {
	it.Children = slices.Clone(it.Children)
	return it
}

func (it Item) String() string {
	if it.IsOperator {
		return fmt.Sprintf("%s%v", it.Op, it.Children)
	}
	return it.Shape.String()
}

var (
	errRootItem     = errors.New("operation not permitted on root item")
	errZeroID       = errors.New("zero item ID")
	errNotContainer = errors.New("target is not an operator")
)

// Tree is an arena of items keyed by ID. The scene is the subtree reachable from
// the root, a Union operator. Every item has at most one parent.
type Tree struct {
	items map[ItemID]Item
	root  ItemID
	alloc IDAllocator
}

// NewTree returns a tree holding only an empty root Union. A nil alloc uses a [CounterAllocator].
func NewTree(alloc IDAllocator) *Tree {
	if alloc == nil {
		alloc = &CounterAllocator{}
	}
	t := &Tree{items: make(map[ItemID]Item), alloc: alloc}
	t.root = t.NewID()
	t.items[t.root] = NewOperatorItem(OpUnion)
	return t
}

// Root returns the ID of the root operator.
func (t *Tree) Root() ItemID { return t.root }

// Len returns the number of items in the arena, root included.
func (t *Tree) Len() int { return len(t.items) }

// NewID allocates an ID not yet present in the tree.
func (t *Tree) NewID() ItemID {
	for {
		id := t.alloc.NewID()
		if _, exists := t.items[id]; !exists && id != 0 {
			return id
		}
	}
}

// Get returns a copy of the item with the given ID.
func (t *Tree) Get(id ItemID) (Item, bool) {
	it, ok := t.items[id]
	return it.clone(), ok
}

func (t *Tree) container(id ItemID) (Item, error) {
	it, ok := t.items[id]
	if !ok {
		return it, fmt.Errorf("container %s not found", id)
	} else if !it.IsOperator {
		return it, fmt.Errorf("container %s: %w", id, errNotContainer)
	}
	return it, nil
}

// Add inserts item under container at position pos, clamped to the container's children.
// id must not be in use. Children of an operator item must exist and have no parent.
func (t *Tree) Add(item Item, id, container ItemID, pos int) error {
	if id == 0 {
		return errZeroID
	} else if _, exists := t.items[id]; exists {
		return fmt.Errorf("item %s already exists", id)
	}
	parent, err := t.container(container)
	if err != nil {
		return err
	}
	if item.IsOperator {
		if !item.Op.IsValid() {
			return fmt.Errorf("invalid operator %d", item.Op)
		}
		for _, child := range item.Children {
			if _, ok := t.items[child]; !ok || child == t.root {
				return fmt.Errorf("child %s of new item %s not found", child, id)
			} else if p, _, hasParent := t.ParentOf(child); hasParent {
				return fmt.Errorf("child %s already belongs to %s", child, p)
			}
		}
	} else if !item.Shape.Kind().IsValid() {
		return fmt.Errorf("item %s has undefined shape", id)
	}
	if r, ok := t.alloc.(interface{ Reserve(ItemID) }); ok {
		r.Reserve(id)
	}
	t.items[id] = item.clone()
	parent.Children = slices.Insert(parent.Children, clampPos(pos, len(parent.Children)), id)
	t.items[container] = parent
	return nil
}

// AddLeaf allocates an ID for a shape and inserts it under container.
func (t *Tree) AddLeaf(shape Shape, tf Transform, container ItemID, pos int) (ItemID, error) {
	id := t.NewID()
	err := t.Add(NewShapeItem(shape, tf), id, container, pos)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Move detaches id from its parent and inserts it into container at pos. When moving
// within the same container pos refers to the index before the item was removed.
func (t *Tree) Move(id, container ItemID, pos int) error {
	if id == t.root {
		return errRootItem
	} else if _, ok := t.items[id]; !ok {
		return fmt.Errorf("item %s not found", id)
	}
	if _, err := t.container(container); err != nil {
		return err
	}
	if t.Contains(id, container) {
		return fmt.Errorf("cannot move %s into its own subtree %s", id, container)
	}
	if parent, srcPos, ok := t.ParentOf(id); ok {
		t.detach(parent, srcPos)
		if parent == container && srcPos < pos {
			pos--
		}
	}
	dst := t.items[container]
	dst.Children = slices.Insert(dst.Children, clampPos(pos, len(dst.Children)), id)
	t.items[container] = dst
	return nil
}

// Edit replaces the item with the given ID. An operator edited into an operator with nil
// Children keeps its children. Otherwise an operator's new Children must be a reordering of
// its current children. An operator with children cannot become a shape.
func (t *Tree) Edit(id ItemID, item Item) error {
	old, ok := t.items[id]
	if !ok {
		return fmt.Errorf("item %s not found", id)
	}
	switch {
	case item.IsOperator && !item.Op.IsValid():
		return fmt.Errorf("invalid operator %d", item.Op)
	case !item.IsOperator && !item.Shape.Kind().IsValid():
		return fmt.Errorf("item %s has undefined shape", id)
	case !item.IsOperator && id == t.root:
		return errRootItem
	case !item.IsOperator && len(old.Children) > 0:
		return fmt.Errorf("operator %s has children and cannot become a shape", id)
	case item.IsOperator && item.Children == nil:
		item.Children = old.Children
	case item.IsOperator && !samePermutation(old.Children, item.Children):
		return fmt.Errorf("edit of %s changes its children; use Move, Add or Remove", id)
	}
	t.items[id] = item.clone()
	return nil
}

// Remove deletes id and all its descendants and detaches it from its parent.
func (t *Tree) Remove(id ItemID) error {
	if id == t.root {
		return errRootItem
	} else if _, ok := t.items[id]; !ok {
		return fmt.Errorf("item %s not found", id)
	}
	if parent, pos, ok := t.ParentOf(id); ok {
		t.detach(parent, pos)
	}
	t.removeRecursive(id)
	return nil
}

func (t *Tree) removeRecursive(id ItemID) {
	it, ok := t.items[id]
	if !ok {
		return
	}
	delete(t.items, id)
	for _, child := range it.Children {
		t.removeRecursive(child)
	}
}

func (t *Tree) detach(parent ItemID, pos int) {
	p := t.items[parent]
	p.Children = slices.Delete(slices.Clone(p.Children), pos, pos+1)
	t.items[parent] = p
}

// Contains reports whether id is container itself or one of its descendants.
func (t *Tree) Contains(container, id ItemID) bool {
	if container == id {
		_, ok := t.items[id]
		return ok
	}
	it, ok := t.items[container]
	if !ok {
		return false
	}
	for _, child := range it.Children {
		if t.Contains(child, id) {
			return true
		}
	}
	return false
}

// ParentOf returns the operator holding id and id's position among its children.
func (t *Tree) ParentOf(id ItemID) (parent ItemID, pos int, ok bool) {
	for pid, it := range t.items {
		if i := slices.Index(it.Children, id); i >= 0 {
			return pid, i, true
		}
	}
	return 0, 0, false
}

// Reachable returns the IDs reachable from the root in depth first pre-order.
func (t *Tree) Reachable() []ItemID {
	var ids []ItemID
	var walk func(ItemID)
	walk = func(id ItemID) {
		it, ok := t.items[id]
		if !ok {
			return
		}
		ids = append(ids, id)
		for _, child := range it.Children {
			walk(child)
		}
	}
	walk(t.root)
	return ids
}

// Compile flattens the scene into a tape, combining preview with it when not nil.
func (t *Tree) Compile(preview *Preview) Tape {
	return CompilePreview(t.items, t.root, preview)
}

// CommitPreview adds the preview shape to the tree as item id. A Union preview or a
// preview into an empty scene is inserted first under the root. Other operators wrap
// the current scene in a Union and combine it with the preview under a new operator
// so the committed tree evaluates like the preview did.
func (t *Tree) CommitPreview(id ItemID, preview Preview) error {
	shape := NewShapeItem(preview.Shape, preview.Transform)
	root := t.items[t.root]
	if preview.Op == OpUnion || len(root.Children) == 0 {
		return t.Add(shape, id, t.root, 0)
	}
	if !preview.Op.IsValid() {
		return fmt.Errorf("invalid operator %d", preview.Op)
	} else if id == 0 {
		return errZeroID
	} else if _, exists := t.items[id]; exists {
		return fmt.Errorf("item %s already exists", id)
	}
	if r, ok := t.alloc.(interface{ Reserve(ItemID) }); ok {
		r.Reserve(id)
	}
	t.items[id] = shape
	unionID := t.NewID()
	t.items[unionID] = NewOperatorItem(OpUnion, root.Children...)
	opID := t.NewID()
	t.items[opID] = NewOperatorItem(preview.Op, unionID, id)
	root.Children = []ItemID{opID}
	t.items[t.root] = root
	return nil
}

func clampPos(pos, n int) int {
	return max(0, min(pos, n))
}

func samePermutation(a, b []ItemID) bool {
	if len(a) != len(b) {
		return false
	}
	sa := slices.Clone(a)
	sb := slices.Clone(b)
	slices.Sort(sa)
	slices.Sort(sb)
	return slices.Equal(sa, sb)
}
