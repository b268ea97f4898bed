package remap

import "github.com/dshills/keyflow/internal/input/key"

// prefixTree indexes the entries of one mode by their left-hand side.
type prefixTree struct {
	root *prefixNode
	size int
}

type prefixNode struct {
	children map[key.Event]*prefixNode
	entry    *Entry
}

func newPrefixTree() *prefixTree {
	return &prefixTree{root: newPrefixNode()}
}

func newPrefixNode() *prefixNode {
	return &prefixNode{children: make(map[key.Event]*prefixNode)}
}

// insert stores e under its LHS, replacing any existing entry.
func (t *prefixTree) insert(e *Entry) {
	node := t.root
	for _, ev := range e.LHS {
		child, ok := node.children[ev]
		if !ok {
			child = newPrefixNode()
			node.children[ev] = child
		}
		node = child
	}
	if node.entry == nil {
		t.size++
	}
	node.entry = e
}

// remove deletes the entry stored under lhs and prunes empty nodes.
func (t *prefixTree) remove(lhs key.Sequence) bool {
	if len(lhs) == 0 {
		return false
	}

	path := make([]*prefixNode, 0, len(lhs)+1)
	path = append(path, t.root)

	node := t.root
	for _, ev := range lhs {
		child, ok := node.children[ev]
		if !ok {
			return false
		}
		path = append(path, child)
		node = child
	}
	if node.entry == nil {
		return false
	}
	node.entry = nil
	t.size--

	// Prune empty nodes from leaf to root
	for i := len(path) - 1; i > 0; i-- {
		current := path[i]
		if current.entry != nil || len(current.children) > 0 {
			break
		}
		delete(path[i-1].children, lhs[i-1])
	}
	return true
}

// find returns the node reached by walking seq, or nil.
func (t *prefixTree) find(seq key.Sequence) *prefixNode {
	node := t.root
	for _, ev := range seq {
		child, ok := node.children[ev]
		if !ok {
			return nil
		}
		node = child
	}
	return node
}

// walk follows seq as far as the tree allows. It returns the longest
// entry whose LHS prefixes seq, and whether the whole of seq was a path in
// the tree that continues further (some longer LHS is still possible).
func (t *prefixTree) walk(seq key.Sequence) (longest *Entry, pending bool) {
	node := t.root
	for i, ev := range seq {
		child, ok := node.children[ev]
		if !ok {
			return longest, false
		}
		node = child
		if node.entry != nil {
			longest = node.entry
		}
		if i == len(seq)-1 {
			pending = len(node.children) > 0
		}
	}
	return longest, pending
}

// each visits every entry in the tree.
func (t *prefixTree) each(fn func(*Entry)) {
	var visit func(*prefixNode)
	visit = func(n *prefixNode) {
		if n.entry != nil {
			fn(n.entry)
		}
		for _, child := range n.children {
			visit(child)
		}
	}
	visit(t.root)
}
