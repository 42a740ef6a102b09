/*
Package bst implements the ordered index of inventory items: an unbalanced
binary search tree keyed by item name.

The index only supports insertion and in-order traversal. It's rebuilt
from the source store on every run:

	t := bst.New(500)
	for _, it := range items {
		t.Insert(it)
	}
	defer t.Release()
	for it := range t.All() {
		// items in ascending name order
	}
*/
package bst
