package vfsnode

import (
	"testing"

	"github.com/kylelemons/godebug/pretty"
)

// TestReaddirOrderAndTermination checks that readdir emits each child
// name exactly once, in mount (insertion) order, then signals end of
// stream.
func TestReaddirOrderAndTermination(t *testing.T) {
	root := MkRoot(&VirtDir{})
	MkVirtDir(root, "rom")
	MkVirtDir(root, "flash")
	MkVirtDir(root, "gdrom")

	h, errno := Opendir(root, "")
	if errno != OK {
		t.Fatalf("Opendir: %v", errno)
	}
	defer Closedir(h)

	var got []string
	for {
		de, ok, errno := Readdir(h)
		if errno != OK {
			t.Fatalf("Readdir: %v", errno)
		}
		if !ok {
			break
		}
		got = append(got, de.Name)
	}

	want := []string{"rom", "flash", "gdrom"}
	if diff := pretty.Compare(got, want); diff != "" {
		t.Fatalf("readdir order mismatch (-got +want):\n%s", diff)
	}
}

// TestFindNestedTraversal exercises multi-step resolution by hand:
// each step's returned node feeds the next Find call rather than
// restarting from the root.
func TestFindNestedTraversal(t *testing.T) {
	root := MkRoot(&VirtDir{})
	flash := MkVirtDir(root, "flash")
	MkVirtDir(flash, "partition0")

	child, off, ok := Find(root, "/flash/partition0")
	if !ok || child != flash {
		t.Fatalf("first step: got child=%v ok=%v, want flash", child, ok)
	}

	child, step, ok := Find(child, "/flash/partition0"[off:])
	if !ok || child.Name() != "partition0" {
		t.Fatalf("second step: got child=%v ok=%v, want partition0", child, ok)
	}
	off += step
	if off != len("/flash/partition0") {
		t.Fatalf("final offset = %d, want %d (path exhausted)", off, len("/flash/partition0"))
	}
}

// TestFindNoMatch checks that Find reports ok=false when no child
// matches.
func TestFindNoMatch(t *testing.T) {
	root := MkRoot(&VirtDir{})
	MkVirtDir(root, "rom")

	_, _, ok := Find(root, "/nope")
	if ok {
		t.Fatalf("Find matched a nonexistent child")
	}
}

// TestDestroyRecursesPostOrder checks that destroying a virtual
// directory destroys descendants first, and orphans a handle opened
// on a grandchild.
func TestDestroyRecursesPostOrder(t *testing.T) {
	root := MkRoot(&VirtDir{})
	sub := MkVirtDir(root, "gdrom")
	leaf := mkMemLeaf(sub, "track01.iso", []byte("payload"))

	fh, errno := Open(leaf, "", false)
	if errno != OK {
		t.Fatalf("Open: %v", errno)
	}

	Destroy(sub)

	if fh.Node() != nil {
		t.Fatalf("grandchild handle not orphaned by ancestor Destroy")
	}

	children := root.backend.(*VirtDir).ListChildren(root)
	if len(children) != 0 {
		t.Fatalf("parent still lists destroyed child: %v", children)
	}
}

// TestRemoveChildNotFound checks RemoveChild's reported success when
// asked to remove a node that isn't a child.
func TestRemoveChildNotFound(t *testing.T) {
	root := MkRoot(&VirtDir{})
	other := MkRoot(&VirtDir{})
	stray := MkVirtDir(other, "stray")

	if ok := root.backend.(*VirtDir).RemoveChild(root, stray); ok {
		t.Fatalf("RemoveChild reported success for a non-child node")
	}
}
