// Package vfspath implements pathname normalization and tree
// traversal for the virtual filesystem.
package vfspath

import (
	"strings"

	"github.com/dcvfs/dcvfs/vfsnode"
)

// Resolve walks from root, repeatedly invoking the current node's
// Find capability, until the current node has no Find capability (a
// leaf), no child matches, or path is exhausted. It returns the
// deepest matched node and the byte offset into path where the
// unmatched remainder (possibly empty) begins.
//
// Resolve threads the node most recently returned by Find into the
// next step and accumulates the offset. An earlier vfsnode_find design
// restarted from rootnode on every step instead, which breaks nested
// virtual mounts once the first component resolves into a subtree.
func Resolve(root *vfsnode.Node, path string) (node *vfsnode.Node, tailOffset int) {
	node = root
	offset := 0
	for {
		child, off, ok := vfsnode.Find(node, path[offset:])
		offset += off
		if !ok {
			return node, offset
		}
		node = child
	}
}

// Join builds the absolute path resulting from applying input to cwd:
//
//   - If cwd is "" (no session cwd yet) or input starts with "/", the
//     base is "/"; otherwise the base is cwd.
//   - input is appended to the base component by component, with
//     exactly one "/" between components.
//   - "." is elided. ".." pops one component, never past the root.
//   - A trailing empty segment (input ending in "/") preserves a
//     trailing "/" on the result.
func Join(cwd, input string) string {
	base := cwd
	if base == "" || strings.HasPrefix(input, "/") {
		base = "/"
	}

	components := splitComponents(base)
	trailingSlash := false

	segs := strings.Split(input, "/")
	for i, seg := range segs {
		switch seg {
		case "":
			if i == len(segs)-1 && len(segs) > 1 {
				trailingSlash = true
			}
		case ".":
			// elided
		case "..":
			if len(components) > 0 {
				components = components[:len(components)-1]
			}
			trailingSlash = false
		default:
			components = append(components, seg)
			trailingSlash = false
		}
	}

	out := "/" + strings.Join(components, "/")
	if trailingSlash && out != "/" {
		out += "/"
	}
	return out
}

func splitComponents(p string) []string {
	var out []string
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

// Normalize reduces path to its canonical absolute form relative to
// an empty cwd (i.e. treats path as already absolute, collapsing "."
// and ".." and redundant separators). It is idempotent:
// Normalize(Normalize(p)) == Normalize(p).
func Normalize(path string) string {
	return Join("/", path)
}
