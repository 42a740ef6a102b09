package bst

import (
	"iter"
	"math"
	"strings"

	"github.com/kjk/stockroom/stock"
	"github.com/kjk/stockroom/u"
)

// nodes live in Tree.nodes and refer to children by position in
// Tree.nodes plus 1, so that 0 means "no node" and the zero Tree is valid.
// With an arena there's no per-node allocation and no recursion
// is needed to free the tree.
const noNode = 0

type node struct {
	item  stock.Item
	left  int32
	right int32
}

// Tree is an unbalanced binary search tree of items ordered by name.
//
// Items with equal names are all kept: an item goes to the right
// of a node with the same name so in-order traversal returns
// duplicates in insertion order.
//
// Inserting items in sorted order degenerates the tree into a list.
// That only affects insert performance, traversal doesn't recurse.
//
// The zero value is an empty tree ready to use.
// Tree is not safe for concurrent use.
type Tree struct {
	nodes []node
	root  int32
}

// New creates an empty tree. sizeHint pre-allocates space for that many items.
func New(sizeHint int) *Tree {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &Tree{
		nodes: make([]node, 0, sizeHint),
	}
}

// Len returns number of items in the tree
func (t *Tree) Len() int {
	return len(t.nodes)
}

func (t *Tree) allocNode(it stock.Item) int32 {
	u.PanicIf(len(t.nodes) >= math.MaxInt32, "tree is full, %d nodes", len(t.nodes))
	// the runtime aborts the process if it runs out of memory here
	t.nodes = append(t.nodes, node{
		item:  it,
		left:  noNode,
		right: noNode,
	})
	return int32(len(t.nodes))
}

func (t *Tree) node(ref int32) *node {
	return &t.nodes[ref-1]
}

// Insert adds an item to the tree
func (t *Tree) Insert(it stock.Item) {
	if t.root == noNode {
		t.root = t.allocNode(it)
		return
	}
	curr := t.root
	for {
		n := t.node(curr)
		if strings.Compare(it.Name, n.item.Name) < 0 {
			if n.left == noNode {
				ref := t.allocNode(it)
				// allocNode might have moved nodes
				t.node(curr).left = ref
				return
			}
			curr = n.left
		} else {
			if n.right == noNode {
				ref := t.allocNode(it)
				t.node(curr).right = ref
				return
			}
			curr = n.right
		}
	}
}

// All returns an iterator over items in ascending name order.
// The iterator can be ranged over multiple times.
// The tree must not be modified during iteration.
func (t *Tree) All() iter.Seq[stock.Item] {
	return func(yield func(stock.Item) bool) {
		var stack []int32
		curr := t.root
		for curr != noNode || len(stack) > 0 {
			for curr != noNode {
				stack = append(stack, curr)
				curr = t.node(curr).left
			}
			last := len(stack) - 1
			curr = stack[last]
			stack = stack[:last]
			n := t.node(curr)
			if !yield(n.item) {
				return
			}
			curr = n.right
		}
	}
}

// Items returns all items in ascending name order
func (t *Tree) Items() []stock.Item {
	res := make([]stock.Item, 0, len(t.nodes))
	for it := range t.All() {
		res = append(res, it)
	}
	return res
}

// Height returns the number of nodes on the longest path from the root.
// 0 for empty tree, Len() for a tree built from sorted input.
func (t *Tree) Height() int {
	if t.root == noNode {
		return 0
	}
	type entry struct {
		ref   int32
		depth int
	}
	maxDepth := 0
	stack := []entry{{t.root, 1}}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		maxDepth = max(maxDepth, e.depth)
		n := t.node(e.ref)
		if n.left != noNode {
			stack = append(stack, entry{n.left, e.depth + 1})
		}
		if n.right != noNode {
			stack = append(stack, entry{n.right, e.depth + 1})
		}
	}
	return maxDepth
}

// Release frees all nodes. It's safe to call on an empty tree
// and more than once. The tree is empty and usable afterwards.
func (t *Tree) Release() {
	if t == nil {
		return
	}
	t.nodes = nil
	t.root = noNode
}
