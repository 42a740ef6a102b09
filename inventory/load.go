package inventory

import (
	"github.com/kjk/stockroom/bst"
	"github.com/kjk/stockroom/store"
)

// LoadIndex builds an index from up to maxCount items of store name.
// maxCount <= 0 means no limit.
//
// A missing store is not an error: the index is empty and count is 0.
// If a malformed record is found, items before it stay in the index
// and the error is returned along with them.
func LoadIndex(st *store.Store, name string, maxCount int) (*bst.Tree, int, error) {
	tree := bst.New(max(maxCount, 0))
	n := 0
	items, errFn := st.Items(name)
	for it := range items {
		if maxCount > 0 && n >= maxCount {
			break
		}
		tree.Insert(it)
		n++
	}
	err := errFn()
	if store.IsNotFound(err) {
		return tree, 0, nil
	}
	return tree, n, err
}
