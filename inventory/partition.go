package inventory

import (
	"errors"
	"fmt"
	"iter"

	"github.com/kjk/stockroom/log"
	"github.com/kjk/stockroom/stock"
	"github.com/kjk/stockroom/store"
)

// PartitionStats describes what PartitionAndPersist did with items
type PartitionStats struct {
	Visited int `json:"visited"`
	// number of items written, by store name
	Written map[string]int `json:"written"`
	Expired int            `json:"expired"`
	Unknown int            `json:"unknown"`
	Failed  int            `json:"failed"`
}

// TotalWritten returns number of items written to all stores
func (ps *PartitionStats) TotalWritten() int {
	n := 0
	for _, v := range ps.Written {
		n += v
	}
	return n
}

// PartitionAndPersist appends every item from items to the category store
// for its category, in the order of items.
//
// Expired items are skipped. Items of unknown category are reported and
// not written anywhere, that's not an error. A failure to open or write
// a store is reported for the item and doesn't stop processing: the
// remaining items are still written and nothing written is undone.
// The returned error joins all such failures.
func PartitionAndPersist(st *store.Store, items iter.Seq[stock.Item]) (*PartitionStats, error) {
	stats := &PartitionStats{
		Written: map[string]int{},
	}
	a := st.NewAppender()
	var errs []error
	for it := range items {
		stats.Visited++
		if it.Expired() {
			stats.Expired++
			log.Verbosef("Skipping expired item: %s\n", it.Name)
			continue
		}
		log.Logf("Item: %s | Type detected: [%s]\n", it.Name, it.Category)
		storeName, ok := stock.StoreFor(it.Category)
		if !ok {
			stats.Unknown++
			log.Logf("Unknown type: %s - item %s will not be written.\n", it.Category, it.Name)
			log.Event("partition.unknown", "name", it.Name, "category", string(it.Category))
			continue
		}
		if err := a.Append(storeName, it); err != nil {
			stats.Failed++
			log.Logf("Error writing %s to %s: %s\n", it.Name, storeName, err)
			log.Event("partition.failed", "name", it.Name, "store", storeName, "error", err.Error())
			errs = append(errs, fmt.Errorf("item '%s' to '%s': %w", it.Name, storeName, err))
			continue
		}
		stats.Written[storeName]++
		log.Logf("Written: %s to %s\n", it.Name, storeName)
		log.Event("partition.write", "name", it.Name, "store", storeName, "expiry", int(it.Expiry))
	}
	if err := a.Close(); err != nil {
		errs = append(errs, err)
	}
	return stats, errors.Join(errs...)
}
