package inventory

import (
	"encoding/json"
	"time"

	"github.com/kjk/stockroom/store"
	"github.com/tidwall/pretty"
)

// SummaryFileName is the name of the run summary written to the data dir
const SummaryFileName = "summary.json"

// StoreSummary describes a category store after a run
type StoreSummary struct {
	Name        string `json:"name"`
	BeforeSweep int    `json:"before_sweep"`
	Dropped     int    `json:"dropped"`
	AfterSweep  int    `json:"after_sweep"`
	Size        int64  `json:"size"` // -1 if the store doesn't exist
	Error       string `json:"error,omitempty"`
}

// Summary describes a single run
type Summary struct {
	RunID      string          `json:"run_id"`
	StartedAt  time.Time       `json:"started_at"`
	DurationMs int64           `json:"duration_ms"`
	Codec      string          `json:"codec"`
	Source     string          `json:"source"`
	Seeded     bool            `json:"seeded"`
	Loaded     int             `json:"loaded"`
	TreeHeight int             `json:"tree_height"`
	Partition  *PartitionStats `json:"partition,omitempty"`
	Stores     []*StoreSummary `json:"stores"`
}

// WriteSummary writes summary as pretty-printed JSON to SummaryFileName
// in the store's directory, replacing it atomically
func WriteSummary(st *store.Store, s *Summary) error {
	d, err := json.Marshal(s)
	if err != nil {
		return err
	}
	d = pretty.Pretty(d)
	return st.WriteFileAtomic(st.Path(SummaryFileName), d)
}
