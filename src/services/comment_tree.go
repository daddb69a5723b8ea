package services

import (
	"github.com/theleywin/Backend-Meme-Nest/src/models"
)

// CommentNode is one comment with its direct replies in creation order.
type CommentNode struct {
	Comment  *models.Comment
	Children []*CommentNode
}

// CommentTree is the reply forest of a single post.
type CommentTree struct {
	Roots []*CommentNode
	ByID  map[uint]*CommentNode
}

// Shape is the id-only form of a tree: every key maps to the shape of its replies.
type Shape map[uint]Shape

// CommentLink is the flat (id, parent) form a tree can be rebuilt from.
type CommentLink struct {
	ID       uint
	ParentID *uint
}

// BuildCommentTree arranges comments by parent. Input order is kept among
// siblings. A comment whose parent is not in the input, or that points at
// itself, becomes a root. The first member of a parent cycle met in input
// order becomes a root and the rest of the cycle hangs below it, so every
// comment appears exactly once.
func BuildCommentTree(comments []models.Comment) *CommentTree {
	tree := &CommentTree{
		Roots: []*CommentNode{},
		ByID:  make(map[uint]*CommentNode, len(comments)),
	}

	order := make([]uint, 0, len(comments))
	for i := range comments {
		c := &comments[i]
		if _, dup := tree.ByID[c.ID]; dup {
			continue
		}
		tree.ByID[c.ID] = &CommentNode{Comment: c, Children: []*CommentNode{}}
		order = append(order, c.ID)
	}

	// Índice de hijos por padre, una sola pasada
	children := make(map[uint][]uint, len(order))
	var roots []uint
	for _, id := range order {
		parent := tree.ByID[id].Comment.ParentID
		if parent == nil || *parent == id || tree.ByID[*parent] == nil {
			roots = append(roots, id)
			continue
		}
		children[*parent] = append(children[*parent], id)
	}

	visited := make(map[uint]bool, len(order))
	var attach func(id uint) *CommentNode
	attach = func(id uint) *CommentNode {
		visited[id] = true
		node := tree.ByID[id]
		for _, child := range children[id] {
			if visited[child] {
				continue
			}
			node.Children = append(node.Children, attach(child))
		}
		return node
	}

	for _, id := range roots {
		tree.Roots = append(tree.Roots, attach(id))
	}
	for _, id := range order {
		if !visited[id] {
			tree.Roots = append(tree.Roots, attach(id))
		}
	}
	return tree
}

// Len is the number of comments in the tree.
func (t *CommentTree) Len() int {
	return len(t.ByID)
}

func (t *CommentTree) Shape() Shape {
	var shape func(nodes []*CommentNode) Shape
	shape = func(nodes []*CommentNode) Shape {
		out := make(Shape, len(nodes))
		for _, n := range nodes {
			out[n.Comment.ID] = shape(n.Children)
		}
		return out
	}
	return shape(t.Roots)
}

// Flatten walks the tree depth first. Feeding the result back into
// BuildCommentTree yields the same shape.
func (t *CommentTree) Flatten() []CommentLink {
	out := make([]CommentLink, 0, len(t.ByID))
	var walk func(nodes []*CommentNode, parent *uint)
	walk = func(nodes []*CommentNode, parent *uint) {
		for _, n := range nodes {
			out = append(out, CommentLink{ID: n.Comment.ID, ParentID: parent})
			id := n.Comment.ID
			walk(n.Children, &id)
		}
	}
	walk(t.Roots, nil)
	return out
}

// Descendants lists every reply below id, nearest first.
func (t *CommentTree) Descendants(id uint) []*models.Comment {
	node := t.ByID[id]
	if node == nil {
		return nil
	}
	var out []*models.Comment
	queue := append([]*CommentNode(nil), node.Children...)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		out = append(out, n.Comment)
		queue = append(queue, n.Children...)
	}
	return out
}
