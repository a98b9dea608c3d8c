// Package comments turns the flat comment rows of a single post into the
// nested reply structure the detail page renders. Everything here is a pure
// function of an already-fetched snapshot: no queries, no mutation of the
// input, sibling order is whatever order the rows arrived in.
package comments

import (
	"discuss/internal/models"
)

// Node is one comment with its direct replies attached.
type Node struct {
	models.Comment
	Children []*Node
}

// Roots returns the top-level comments (nil ParentID) in input order.
func Roots(cs []models.Comment) []models.Comment {
	var roots []models.Comment
	for _, c := range cs {
		if c.ParentID == nil {
			roots = append(roots, c)
		}
	}
	return roots
}

// Children returns the direct replies to parentID in input order. An id
// that matches nothing yields an empty result, not an error.
func Children(cs []models.Comment, parentID uint) []models.Comment {
	var kids []models.Comment
	for _, c := range cs {
		if c.ParentID != nil && *c.ParentID == parentID {
			kids = append(kids, c)
		}
	}
	return kids
}

// Build groups the flat rows by parent id in a single pass and links them
// into a forest. The recursion depth of anything walking the result is
// bounded by the actual reply depth. A comment whose parent is missing
// from the snapshot is unreachable from the roots, same as if it had been
// filtered out by the fetch.
func Build(cs []models.Comment) []*Node {
	nodes := make(map[uint]*Node, len(cs))
	order := make([]*Node, 0, len(cs))
	for i := range cs {
		n := &Node{Comment: cs[i]}
		nodes[cs[i].ID] = n
		order = append(order, n)
	}

	var roots []*Node
	for _, n := range order {
		if n.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		if parent, ok := nodes[*n.ParentID]; ok {
			parent.Children = append(parent.Children, n)
		}
	}
	return roots
}
