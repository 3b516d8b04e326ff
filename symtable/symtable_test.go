package symtable

import "testing"

func TestChildResolvesFromParent(t *testing.T) {
	root := New()
	root.Define("x", 1)
	child := NewChild(root)

	v, ok := child.Resolve("x")
	if !ok || v != 1 {
		t.Fatalf("expected to resolve x=1 via parent, got %v, %v", v, ok)
	}
}

func TestDefinedHereIgnoresParent(t *testing.T) {
	root := New()
	root.Define("x", 1)
	child := NewChild(root)

	if child.DefinedHere("x") {
		t.Errorf("DefinedHere should not see parent bindings")
	}
}

func TestChildShadowsParent(t *testing.T) {
	root := New()
	root.Define("x", 1)
	child := NewChild(root)
	child.Define("x", 2)

	v, _ := child.Resolve("x")
	if v != 2 {
		t.Errorf("expected shadowed value 2, got %v", v)
	}
}
