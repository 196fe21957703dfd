package dfedit

// Preview is a shape being placed that is not yet part of the tree. It is
// combined with the rest of the scene using Op.
type Preview struct {
	Shape     Shape
	Transform Transform
	Op        Operator
}

// Compile flattens the tree rooted at root into a postfix tape.
//
// Children of an operator are emitted last to first. The first two children that
// produce a value are followed by one operator instruction and every further
// producing child is followed by another, so an operator with k live children
// emits k-1 operator instructions. An operator with a single live child emits
// only that child and one with none emits nothing. IDs missing from items
// produce nothing.
func Compile(items map[ItemID]Item, root ItemID) Tape {
	return CompilePreview(items, root, nil)
}

// CompilePreview is like [Compile] and additionally combines preview, if not nil,
// with the compiled scene. The preview shape is pushed first and its operator applied
// last so the preview is the left operand. An empty scene compiles to the preview alone.
func CompilePreview(items map[ItemID]Item, root ItemID, preview *Preview) Tape {
	c := compiler{items: items}
	var ins []Instruction
	if preview != nil {
		ins = append(ins, ShapeInstruction(preview.Shape, 0, preview.Transform))
	}
	ins, _ = c.appendItem(ins, root)
	if preview != nil && len(ins) > 1 {
		ins = append(ins, OpInstruction(preview.Op, 0))
	}
	return newTapeUnchecked(ins)
}

type compiler struct {
	items    map[ItemID]Item
	visiting map[ItemID]bool
}

// appendItem appends the instructions of id to dst and reports whether they push a value.
func (c *compiler) appendItem(dst []Instruction, id ItemID) ([]Instruction, bool) {
	item, ok := c.items[id]
	if !ok || c.visiting[id] {
		return dst, false
	}
	if !item.IsOperator {
		return append(dst, ShapeInstruction(item.Shape, id, item.Transform)), true
	}
	if c.visiting == nil {
		c.visiting = make(map[ItemID]bool)
	}
	c.visiting[id] = true
	defer delete(c.visiting, id)

	produced := 0
	for i := len(item.Children) - 1; i >= 0; i-- {
		var live bool
		dst, live = c.appendItem(dst, item.Children[i])
		if !live {
			continue
		}
		produced++
		if produced >= 2 {
			dst = append(dst, OpInstruction(item.Op, id))
		}
	}
	return dst, produced > 0
}
