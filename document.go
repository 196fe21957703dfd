package dfedit

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/soypat/geometry/ms2"
)

// docNode is the JSON form of an item. Operators set Op, shapes set Shape.
type docNode struct {
	Op       string      `json:"op,omitempty"`
	Children []docNode   `json:"children,omitempty"`
	Shape    string      `json:"shape,omitempty"`
	Params   []float32   `json:"params,omitempty"`
	Position *[2]float32 `json:"position,omitempty"`
}

var shapeDocNames = map[ShapeKind]string{
	KindDisk:        "disk",
	KindTorus:       "torus",
	KindRectangle:   "rectangle",
	KindCross:       "cross",
	KindLineSegment: "segment",
	KindPlane:       "plane",
	KindRay:         "ray",
}

func shapeKindFromDoc(name string) (ShapeKind, bool) {
	for k, v := range shapeDocNames {
		if v == name {
			return k, true
		}
	}
	return kindUndefined, false
}

// MarshalJSON encodes the scene reachable from the root as nested JSON.
// Item IDs are not part of the document.
func (t *Tree) MarshalJSON() ([]byte, error) {
	node, err := t.docNode(t.root)
	if err != nil {
		return nil, err
	}
	return json.Marshal(node)
}

func (t *Tree) docNode(id ItemID) (docNode, error) {
	it, ok := t.items[id]
	if !ok {
		return docNode{}, fmt.Errorf("dangling item %s", id)
	}
	if !it.IsOperator {
		pos := [2]float32{it.Transform.Position.X, it.Transform.Position.Y}
		params := it.Shape.Params()
		return docNode{
			Shape:    shapeDocNames[it.Shape.Kind()],
			Params:   params[:it.Shape.NumParams()],
			Position: &pos,
		}, nil
	}
	node := docNode{Op: strings.ToLower(it.Op.String())}
	for _, child := range it.Children {
		if _, ok := t.items[child]; !ok {
			continue // Dangling children produce nothing when compiled either.
		}
		cn, err := t.docNode(child)
		if err != nil {
			return node, err
		}
		node.Children = append(node.Children, cn)
	}
	return node, nil
}

// UnmarshalJSON replaces the tree's contents with the decoded document. IDs are
// allocated afresh with the tree's allocator, or a new [CounterAllocator] if it has none.
func (t *Tree) UnmarshalJSON(b []byte) error {
	var root docNode
	if err := json.Unmarshal(b, &root); err != nil {
		return err
	}
	if root.Op == "" {
		return errors.New("document root must be an operator")
	}
	alloc := t.alloc
	if alloc == nil {
		alloc = &CounterAllocator{}
	}
	fresh := &Tree{items: make(map[ItemID]Item), alloc: alloc}
	rootID, err := fresh.addDocNode(root)
	if err != nil {
		return err
	}
	fresh.root = rootID
	*t = *fresh
	return nil
}

func (t *Tree) addDocNode(node docNode) (ItemID, error) {
	id := t.NewID()
	if node.Op == "" {
		kind, ok := shapeKindFromDoc(node.Shape)
		if !ok {
			return 0, fmt.Errorf("unknown shape %q", node.Shape)
		}
		shape, err := ShapeFromParams(kind, node.Params)
		if err != nil {
			return 0, err
		}
		var tf Transform
		if node.Position != nil {
			tf.Position = ms2.Vec{X: node.Position[0], Y: node.Position[1]}
		}
		t.items[id] = NewShapeItem(shape, tf)
		return id, nil
	}
	op, err := ParseOperator(node.Op)
	if err != nil {
		return 0, err
	}
	// Reserve the operator's slot before children take IDs.
	t.items[id] = NewOperatorItem(op)
	children := make([]ItemID, 0, len(node.Children))
	for _, cn := range node.Children {
		cid, err := t.addDocNode(cn)
		if err != nil {
			return 0, err
		}
		children = append(children, cid)
	}
	t.items[id] = NewOperatorItem(op, children...)
	return id, nil
}
