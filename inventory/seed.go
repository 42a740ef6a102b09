package inventory

import (
	"fmt"
	"iter"
	"math/rand"

	"github.com/kjk/stockroom/stock"
	"github.com/kjk/stockroom/store"
)

// SampleItems returns n sample items. Category and sector cycle through
// the known categories, every 10th item (starting with the first) is
// expired and the rest expire in 1 to 30 days.
func SampleItems(n int, rng *rand.Rand) iter.Seq[stock.Item] {
	return func(yield func(stock.Item) bool) {
		for i := 0; i < n; i++ {
			catIdx := i % len(stock.Categories)
			var expiry int32
			if i%10 != 0 {
				expiry = int32(1 + rng.Intn(30))
			}
			it := stock.Item{
				Name:     fmt.Sprintf("Item_%d", i+1),
				Category: stock.Categories[catIdx].Category,
				Expiry:   expiry,
				Sector:   fmt.Sprintf("Setor %c", 'A'+catIdx),
			}
			if !yield(it) {
				return
			}
		}
	}
}

// SeedIfAbsent writes n sample items to store name if it doesn't exist.
// Returns true if the store was created. An existing store is never
// modified.
func SeedIfAbsent(st *store.Store, name string, n int, rng *rand.Rand) (bool, error) {
	if st.Exists(name) {
		return false, nil
	}
	if err := st.Create(name, SampleItems(n, rng)); err != nil {
		return false, fmt.Errorf("failed to create '%s': %w", name, err)
	}
	return true, nil
}
