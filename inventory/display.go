package inventory

import (
	"fmt"
	"io"

	"github.com/kjk/stockroom/codec"
	"github.com/kjk/stockroom/store"
)

// Display writes items of store name to w, one per line.
// A missing store is reported as not found. Returns number of items
// shown and an error if the store is malformed.
func Display(w io.Writer, st *store.Store, name string) (int, error) {
	if !st.Exists(name) {
		fmt.Fprintf(w, "Store %s not found.\n", name)
		return 0, nil
	}
	fmt.Fprintf(w, "Contents of %s:\n", name)
	items, errFn := st.Items(name)
	n := 0
	for it := range items {
		fmt.Fprintf(w, "%s\n", codec.FormatLine(it))
		n++
	}
	return n, errFn()
}
