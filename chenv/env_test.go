package chenv

import "testing"

func TestLookupWalksParentChain(t *testing.T) {
	a := NewArena()
	root := a.New(Nil, map[string]any{"x": 1})
	child := a.Child(root)
	if v, ok := a.Lookup(child, "x"); !ok || v != 1 {
		t.Fatalf("expected to find x=1 via parent chain, got %v, %v", v, ok)
	}
	if _, ok := a.Lookup(child, "missing"); ok {
		t.Fatalf("expected missing variable to be absent")
	}
}

func TestAssignUpdatesOwnFrame(t *testing.T) {
	a := NewArena()
	root := a.New(Nil, map[string]any{"x": 1})
	updated := a.Assign(root, "x", 2)
	if v, _ := a.Lookup(updated, "x"); v != 2 {
		t.Fatalf("expected x=2, got %v", v)
	}
	if v, _ := a.Lookup(root, "x"); v != 1 {
		t.Fatalf("original frame must stay immutable, got %v", v)
	}
}

func TestAssignRethreadsAncestorInPlace(t *testing.T) {
	a := NewArena()
	root := a.New(Nil, map[string]any{"x": 1})
	child := a.Child(root)
	grandchild := a.Child(child)

	result := a.Assign(grandchild, "x", 99)
	if result != grandchild {
		t.Fatalf("assigning an ancestor's variable must return self unchanged")
	}
	if v, ok := a.Lookup(grandchild, "x"); !ok || v != 99 {
		t.Fatalf("expected rethreaded lookup to see x=99, got %v, %v", v, ok)
	}
	if v, _ := a.Lookup(root, "x"); v != 1 {
		t.Fatalf("original root frame must stay immutable, got %v", v)
	}
}

func TestAssignDeclaresNewVariableInSelf(t *testing.T) {
	a := NewArena()
	root := a.New(Nil, nil)
	loopVar := a.Child(root)

	result := a.Assign(loopVar, "i", 0)
	if v, ok := a.Lookup(result, "i"); !ok || v != 0 {
		t.Fatalf("expected new binding i=0, got %v, %v", v, ok)
	}
	if _, ok := a.Lookup(root, "i"); ok {
		t.Fatalf("new binding must not leak into parent frame")
	}
}

func TestDefineSeedsFrameDirectly(t *testing.T) {
	a := NewArena()
	root := a.Root()
	a.Define(root, "pi", 3)
	if v, ok := a.Lookup(root, "pi"); !ok || v != 3 {
		t.Fatalf("expected pi=3, got %v, %v", v, ok)
	}
}
