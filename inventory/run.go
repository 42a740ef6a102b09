package inventory

import (
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/kjk/stockroom/codec"
	"github.com/kjk/stockroom/config"
	"github.com/kjk/stockroom/log"
	"github.com/kjk/stockroom/stock"
	"github.com/kjk/stockroom/store"
	"github.com/kjk/stockroom/u"
)

// Run does a single pass over the inventory:
//   - creates the source store with sample items if it doesn't exist
//   - loads items from the source store into the index
//   - writes non-expired items to category stores
//   - shows every category store and removes expired items from it
//   - shows category stores again
//
// Problems with individual items or stores are logged and don't stop
// the run. An error is only returned if the run can't start.
func Run(cfg *config.Config, rng *rand.Rand) (*Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c, err := codec.ByName(cfg.Codec)
	if err != nil {
		return nil, err
	}
	if err = os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	runID := uuid.NewString()
	log.SetRunID(runID)
	sum := &Summary{
		RunID:     runID,
		StartedAt: time.Now().UTC(),
		Codec:     c.Name(),
		Source:    cfg.SourceName,
	}
	log.Event("run.start", "source", cfg.SourceName, "codec", c.Name())

	st := store.New(cfg.DataDir, c)
	st.OnDrop = func(name string, it stock.Item) {
		log.Logf("Removed expired: %s from %s\n", it.Name, name)
		log.Event("sweep.drop", "name", it.Name, "store", name)
	}
	out := log.Writer()

	sum.Seeded, err = SeedIfAbsent(st, cfg.SourceName, cfg.SeedCount, rng)
	if !log.IfErrf(err) && sum.Seeded {
		log.Logf("Created %s with %d sample items.\n", cfg.SourceName, cfg.SeedCount)
	}

	tree, loaded, err := LoadIndex(st, cfg.SourceName, cfg.MaxItems)
	defer tree.Release()
	log.IfErrf(err, "Error loading %s: %s", cfg.SourceName, err)
	sum.Loaded = loaded
	sum.TreeHeight = tree.Height()
	if loaded == 0 {
		log.Logf("No items were loaded from %s.\n", cfg.SourceName)
	} else {
		log.Logf("Items loaded: %d\n", loaded)
		log.Verbosef("Index height: %d\n", sum.TreeHeight)
		sum.Partition, err = PartitionAndPersist(st, tree.All())
		log.IfErrf(err)
	}

	for _, name := range stock.StoreNames() {
		ss := &StoreSummary{Name: name}
		sum.Stores = append(sum.Stores, ss)

		log.Logf("\nStore: %s\n", name)
		n, err := Display(out, st, name)
		ss.BeforeSweep = n
		if log.IfErrf(err) {
			ss.Error = err.Error()
			continue
		}
		if !st.Exists(name) {
			continue
		}
		stats, err := st.Sweep(name)
		if log.IfErrf(err, "Error removing expired items from %s: %s", name, err) {
			ss.Error = err.Error()
			continue
		}
		ss.Dropped = stats.Dropped
		log.Event("sweep.done", "store", name, "kept", stats.Kept, "dropped", stats.Dropped)
	}

	log.Logf("\nAfter removing expired items:\n")
	for i, name := range stock.StoreNames() {
		log.Logf("\nStore: %s\n", name)
		n, err := Display(out, st, name)
		sum.Stores[i].AfterSweep = n
		sum.Stores[i].Size = u.FileSize(st.Path(name))
		log.IfErrf(err)
	}

	sum.DurationMs = time.Since(sum.StartedAt).Milliseconds()
	log.Event("run.done", "loaded", loaded, "duration_ms", sum.DurationMs)
	if cfg.Summary {
		err = WriteSummary(st, sum)
		log.IfErrf(err, "Error writing %s: %s", SummaryFileName, err)
	}
	return sum, nil
}
