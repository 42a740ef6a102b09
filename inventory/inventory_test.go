package inventory

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/kjk/stockroom/bst"
	"github.com/kjk/stockroom/codec"
	"github.com/kjk/stockroom/config"
	"github.com/kjk/stockroom/log"
	"github.com/kjk/stockroom/stock"
	"github.com/kjk/stockroom/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	var buf bytes.Buffer
	log.Init(&log.Config{Out: &buf})
	t.Cleanup(log.Close)
	return &buf
}

func forEachCodec(t *testing.T, fn func(t *testing.T, st *store.Store)) {
	for _, c := range []codec.Codec{codec.Text, codec.Binary} {
		t.Run(c.Name(), func(t *testing.T) {
			fn(t, store.New(t.TempDir(), c))
		})
	}
}

func names(items []stock.Item) []string {
	var res []string
	for _, it := range items {
		res = append(res, it.Name)
	}
	return res
}

func TestScenarioLoadAndPartition(t *testing.T) {
	captureLog(t)
	forEachCodec(t, func(t *testing.T, st *store.Store) {
		src := []stock.Item{
			{Name: "Banana", Category: stock.Fruit, Expiry: 5, Sector: "A"},
			{Name: "Apple", Category: stock.Fruit, Expiry: 0, Sector: "A"},
			{Name: "Cola", Category: stock.Beverage, Expiry: 10, Sector: "B"},
		}
		require.NoError(t, st.Append("ListaItens", src...))

		tree, n, err := LoadIndex(st, "ListaItens", 500)
		require.NoError(t, err)
		defer tree.Release()
		assert.Equal(t, 3, n)
		// Apple is in the index even though it won't be persisted
		assert.Equal(t, []string{"Apple", "Banana", "Cola"}, names(tree.Items()))

		stats, err := PartitionAndPersist(st, tree.All())
		require.NoError(t, err)
		assert.Equal(t, 3, stats.Visited)
		assert.Equal(t, 1, stats.Expired)
		assert.Equal(t, 2, stats.TotalWritten())

		fruits, err := st.ReadAll("ListaFrutas")
		require.NoError(t, err)
		assert.Equal(t, []stock.Item{src[0]}, fruits)
		drinks, err := st.ReadAll("ListaBebidas")
		require.NoError(t, err)
		assert.Equal(t, []stock.Item{src[2]}, drinks)
		for _, name := range []string{"ListaDoces", "ListaSalgados", "ListaEnlatados"} {
			assert.False(t, st.Exists(name), "store: %s", name)
		}
	})
}

func TestPartitionOrderAndExclusions(t *testing.T) {
	logBuf := captureLog(t)
	st := store.New(t.TempDir(), codec.Text)
	rng := rand.New(rand.NewSource(7))

	tree := bst.New(0)
	var all []stock.Item
	for i := 0; i < 300; i++ {
		cat := stock.Categories[rng.Intn(len(stock.Categories))].Category
		if i%17 == 0 {
			cat = "carne"
		}
		it := stock.Item{
			Name:     string(rune('a'+rng.Intn(26))) + string(rune('a'+rng.Intn(26))),
			Category: cat,
			Expiry:   int32(rng.Intn(4)),
			Sector:   "S",
		}
		tree.Insert(it)
		all = append(all, it)
	}
	stats, err := PartitionAndPersist(st, tree.All())
	require.NoError(t, err)

	// expected content of each store: in-order items filtered by category
	exp := map[string][]stock.Item{}
	expUnknown := 0
	for _, it := range tree.Items() {
		if it.Expired() {
			continue
		}
		name, ok := stock.StoreFor(it.Category)
		if !ok {
			expUnknown++
			continue
		}
		exp[name] = append(exp[name], it)
	}
	assert.Equal(t, expUnknown, stats.Unknown)
	assert.True(t, expUnknown > 0)

	total := 0
	for _, name := range stock.StoreNames() {
		got, err := st.ReadAll(name)
		if len(exp[name]) == 0 {
			assert.True(t, store.IsNotFound(err))
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, exp[name], got, "store: %s", name)
		assert.Equal(t, len(got), stats.Written[name])
		for _, it := range got {
			assert.False(t, it.Expired())
			assert.True(t, it.Category.Known())
		}
		total += len(got)
	}
	assert.Equal(t, total, stats.TotalWritten())
	assert.Equal(t, len(all), stats.Visited)
	assert.Contains(t, logBuf.String(), "Unknown type: carne")
}

func TestPartitionAppends(t *testing.T) {
	captureLog(t)
	st := store.New(t.TempDir(), codec.Text)
	existing := stock.Item{Name: "Zebra cake", Category: stock.Candy, Expiry: 3, Sector: "C"}
	require.NoError(t, st.Append("ListaDoces", existing))

	tree := bst.New(0)
	tree.Insert(stock.Item{Name: "Apple pie", Category: stock.Candy, Expiry: 2, Sector: "C"})
	_, err := PartitionAndPersist(st, tree.All())
	require.NoError(t, err)

	got, err := st.ReadAll("ListaDoces")
	require.NoError(t, err)
	// never truncated or re-ordered
	assert.Equal(t, []string{"Zebra cake", "Apple pie"}, names(got))
}

func TestPartitionWriteFailureIsContained(t *testing.T) {
	captureLog(t)
	st := store.New(t.TempDir(), codec.Text)
	// a directory with the name of the store can't be opened for appending
	require.NoError(t, os.Mkdir(st.Path("ListaBebidas"), 0755))

	tree := bst.New(0)
	tree.Insert(stock.Item{Name: "Cola", Category: stock.Beverage, Expiry: 5})
	tree.Insert(stock.Item{Name: "Banana", Category: stock.Fruit, Expiry: 5})
	tree.Insert(stock.Item{Name: "Water", Category: stock.Beverage, Expiry: 5})
	tree.Insert(stock.Item{Name: "Peach", Category: stock.Fruit, Expiry: 5})

	stats, err := PartitionAndPersist(st, tree.All())
	assert.Error(t, err)
	assert.Equal(t, 2, stats.Failed)
	assert.Equal(t, 2, stats.Written["ListaFrutas"])
	got, err := st.ReadAll("ListaFrutas")
	require.NoError(t, err)
	assert.Equal(t, []string{"Banana", "Peach"}, names(got))
}

func TestLoadIndex(t *testing.T) {
	st := store.New(t.TempDir(), codec.Text)

	tree, n, err := LoadIndex(st, "ListaItens", 500)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, tree.Len())

	var items []stock.Item
	for it := range SampleItems(20, rand.New(rand.NewSource(1))) {
		items = append(items, it)
	}
	require.NoError(t, st.Append("ListaItens", items...))

	tree, n, err = LoadIndex(st, "ListaItens", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, 7, tree.Len())

	tree, n, err = LoadIndex(st, "ListaItens", 0)
	require.NoError(t, err)
	assert.Equal(t, 20, n)
	assert.Equal(t, 20, tree.Len())
}

func TestLoadIndexMalformed(t *testing.T) {
	st := store.New(t.TempDir(), codec.Text)
	d := "Nome: b | Tipo: fruta | Vencimento: 1 | Setor: A\n" +
		"Nome: a | Tipo: fruta | Vencimento: 1 | Setor: A\n" +
		"Nome: c | Tipo: fruta | Vencimento: oops | Setor: A\n" +
		"Nome: d | Tipo: fruta | Vencimento: 1 | Setor: A\n"
	require.NoError(t, os.WriteFile(st.Path("ListaItens"), []byte(d), 0644))

	tree, n, err := LoadIndex(st, "ListaItens", 500)
	assert.True(t, errors.Is(err, codec.ErrMalformed))
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"a", "b"}, names(tree.Items()))
}

func TestSeedIfAbsent(t *testing.T) {
	forEachCodec(t, func(t *testing.T, st *store.Store) {
		rng := rand.New(rand.NewSource(3))
		created, err := SeedIfAbsent(st, "ListaItens", 50, rng)
		require.NoError(t, err)
		assert.True(t, created)

		items, err := st.ReadAll("ListaItens")
		require.NoError(t, err)
		require.Len(t, items, 50)
		for i, it := range items {
			assert.Equal(t, stock.Categories[i%5].Category, it.Category)
			if i%10 == 0 {
				assert.Equal(t, int32(0), it.Expiry)
			} else {
				assert.True(t, it.Expiry >= 1 && it.Expiry <= 30)
			}
			assert.NoError(t, it.Validate())
		}
		assert.Equal(t, "Item_1", items[0].Name)
		assert.Equal(t, "Setor B", items[1].Sector)

		before, err := os.ReadFile(st.Path("ListaItens"))
		require.NoError(t, err)
		created, err = SeedIfAbsent(st, "ListaItens", 10, rng)
		require.NoError(t, err)
		assert.False(t, created)
		after, err := os.ReadFile(st.Path("ListaItens"))
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestSeedCompressed(t *testing.T) {
	st := store.New(t.TempDir(), codec.Text)
	for _, name := range []string{"ListaItens.zst", "ListaItens.br", "ListaItens.gz"} {
		created, err := SeedIfAbsent(st, name, 100, rand.New(rand.NewSource(5)))
		require.NoError(t, err)
		assert.True(t, created)
		n, err := st.Count(name)
		require.NoError(t, err)
		assert.Equal(t, 100, n)
		_, loaded, err := LoadIndex(st, name, 500)
		require.NoError(t, err)
		assert.Equal(t, 100, loaded)
	}
}

func TestDisplay(t *testing.T) {
	st := store.New(t.TempDir(), codec.Text)
	var buf bytes.Buffer
	n, err := Display(&buf, st, "nonexistent")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, "Store nonexistent not found.\n", buf.String())

	require.NoError(t, st.Append("ListaFrutas", stock.Item{Name: "Banana", Category: stock.Fruit, Expiry: 5, Sector: "A"}))
	buf.Reset()
	n, err = Display(&buf, st, "ListaFrutas")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "Contents of ListaFrutas:\nNome: Banana | Tipo: fruta | Vencimento: 5 | Setor: A\n", buf.String())
	// display doesn't change the store
	c, err := st.Count("ListaFrutas")
	require.NoError(t, err)
	assert.Equal(t, 1, c)
}

func TestRun(t *testing.T) {
	logBuf := captureLog(t)
	forEachCodec(t, func(t *testing.T, st *store.Store) {
		cfg := config.Default()
		cfg.DataDir = st.Dir
		cfg.Codec = st.Codec.Name()
		cfg.SeedCount = 100
		sum, err := Run(cfg, rand.New(rand.NewSource(11)))
		require.NoError(t, err)

		assert.True(t, sum.Seeded)
		assert.Equal(t, 100, sum.Loaded)
		require.NotNil(t, sum.Partition)
		// every 10th sample item is expired
		assert.Equal(t, 10, sum.Partition.Expired)
		assert.Equal(t, 90, sum.Partition.TotalWritten())
		require.Len(t, sum.Stores, 5)
		// categories cycle with period 5 so all expired items are fruits
		expCounts := []int{10, 20, 20, 20, 20}
		for i, ss := range sum.Stores {
			assert.Equal(t, expCounts[i], ss.BeforeSweep, "store: %s", ss.Name)
			assert.Equal(t, 0, ss.Dropped)
			assert.Equal(t, expCounts[i], ss.AfterSweep)
			assert.Greater(t, ss.Size, int64(0))
			assert.Empty(t, ss.Error)
		}

		d, err := os.ReadFile(filepath.Join(st.Dir, SummaryFileName))
		require.NoError(t, err)
		var got Summary
		require.NoError(t, json.Unmarshal(d, &got))
		assert.Equal(t, sum.RunID, got.RunID)
		assert.Equal(t, 100, got.Loaded)

		// a second run appends the same items again
		sum2, err := Run(cfg, nil)
		require.NoError(t, err)
		assert.False(t, sum2.Seeded)
		assert.NotEqual(t, sum.RunID, sum2.RunID)
		for i, ss := range sum2.Stores {
			assert.Equal(t, 2*expCounts[i], ss.AfterSweep)
		}
	})
	out := logBuf.String()
	assert.Contains(t, out, "Items loaded: 100")
	assert.Contains(t, out, "After removing expired items:")
}

func TestRunEmptySource(t *testing.T) {
	logBuf := captureLog(t)
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.SeedCount = 0
	cfg.Summary = false
	sum, err := Run(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Loaded)
	assert.Nil(t, sum.Partition)
	assert.Contains(t, logBuf.String(), "No items were loaded from ListaItens.")
	assert.Contains(t, logBuf.String(), "Store ListaFrutas not found.")
	assert.False(t, store.New(cfg.DataDir, nil).Exists(SummaryFileName))
}

func TestRunSweepsExpiredFromCategoryStores(t *testing.T) {
	captureLog(t)
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	st := store.New(cfg.DataDir, codec.Text)
	// left over from an earlier run, with items that expired since
	require.NoError(t, st.Append("ListaFrutas",
		stock.Item{Name: "Old", Category: stock.Fruit, Expiry: 0, Sector: "A"},
		stock.Item{Name: "Fresh", Category: stock.Fruit, Expiry: 4, Sector: "A"},
	))
	require.NoError(t, st.Append("ListaItens", stock.Item{Name: "Kiwi", Category: stock.Fruit, Expiry: 2, Sector: "A"}))

	sum, err := Run(cfg, nil)
	require.NoError(t, err)
	assert.False(t, sum.Seeded)
	fruits := sum.Stores[0]
	assert.Equal(t, "ListaFrutas", fruits.Name)
	assert.Equal(t, 3, fruits.BeforeSweep)
	assert.Equal(t, 1, fruits.Dropped)
	assert.Equal(t, 2, fruits.AfterSweep)

	got, err := st.ReadAll("ListaFrutas")
	require.NoError(t, err)
	assert.Equal(t, []string{"Fresh", "Kiwi"}, names(got))
}
