package dfedit_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/soypat/dfedit"
	"github.com/soypat/geometry/ms2"
)

func TestTreeJSON(t *testing.T) {
	tree := dfedit.NewTree(nil)
	root := tree.Root()
	xor := tree.NewID()
	if err := tree.Add(dfedit.NewOperatorItem(dfedit.OpXor), xor, root, 0); err != nil {
		t.Fatal(err)
	}
	tree.AddLeaf(dfedit.DefaultShape(dfedit.KindLineSegment), at(0.1, -0.1), xor, 0)
	tree.AddLeaf(dfedit.DefaultShape(dfedit.KindTorus), at(0, 0.2), xor, 1)
	tree.AddLeaf(dfedit.DefaultShape(dfedit.KindCross), at(-0.3, 0), root, 1)

	b, err := json.Marshal(tree)
	if err != nil {
		t.Fatal(err)
	}
	doc := string(b)
	for _, want := range []string{`"op":"union"`, `"op":"xor"`, `"shape":"segment"`, `"shape":"torus"`, `"position":[-0.3,0]`} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %s: %s", want, doc)
		}
	}

	var loaded dfedit.Tree
	if err := json.Unmarshal(b, &loaded); err != nil {
		t.Fatal(err)
	}
	if loaded.Len() != tree.Len() {
		t.Errorf("loaded %d items, want %d", loaded.Len(), tree.Len())
	}
	want := tree.Compile(nil)
	got := loaded.Compile(nil)
	if got.Len() != want.Len() {
		t.Fatalf("tape length %d, want %d", got.Len(), want.Len())
	}
	for _, p := range []ms2.Vec{{}, {X: 0.1, Y: 0.2}, {X: -0.3, Y: 0.05}, {X: 0.4, Y: -0.4}} {
		if got.SignedDistance(p) != want.SignedDistance(p) {
			t.Errorf("at %v: loaded %g, original %g", p, got.SignedDistance(p), want.SignedDistance(p))
		}
	}
	// New IDs do not collide with loaded ones.
	if _, err := loaded.AddLeaf(dfedit.DefaultShape(dfedit.KindDisk), dfedit.Transform{}, loaded.Root(), 0); err != nil {
		t.Error(err)
	}

	for _, bad := range []string{
		`{"shape":"disk","params":[0.1]}`,
		`{"op":"union","children":[{"shape":"blob"}]}`,
		`{"op":"union","children":[{"shape":"disk","params":[0.1,0.2]}]}`,
		`{"op":"morph"}`,
	} {
		var tr dfedit.Tree
		if err := json.Unmarshal([]byte(bad), &tr); err == nil {
			t.Errorf("expected error decoding %s", bad)
		}
	}
}
