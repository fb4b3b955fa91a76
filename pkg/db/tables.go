package db

import (
	"fmt"
	"sort"

	"github.com/jakechorley/rodizio/pkg/core/model"
)

// Logical table names
const (
	TableRoster       = "roster"
	TableRegions      = "region-map"
	TableAvailability = "availability"
	TableLoading      = "loading"
	TableReturns      = "returns"
	TableCancellation = "cancellation"
	TableRefusals     = "refusals"
	TableImportLog    = "import_log"
)

// LogicalTables lists every logical table in a stable order
var LogicalTables = []string{
	TableRoster,
	TableRegions,
	TableAvailability,
	TableLoading,
	TableReturns,
	TableCancellation,
	TableRefusals,
	TableImportLog,
}

// managedModels are the tables written by ingestion, keyed by logical name
var managedModels = map[string]interface{}{
	TableAvailability: model.AvailabilityRecord{},
	TableLoading:      model.LoadingRecord{},
	TableReturns:      model.ReturnRecord{},
	TableCancellation: model.CancellationRecord{},
	TableRefusals:     model.RefusalRecord{},
	TableImportLog:    model.ImportLog{},
}

// Tables maps logical table names to physical tab or table names.
// Names without an entry map to themselves.
type Tables map[string]string

// Physical returns the physical name for a logical table
func (t Tables) Physical(logical string) string {
	if name, ok := t[logical]; ok && name != "" {
		return name
	}
	return logical
}

// Validate checks that only known logical tables are mapped and no two map to
// the same physical name
func (t Tables) Validate() error {
	known := make(map[string]bool, len(LogicalTables))
	for _, l := range LogicalTables {
		known[l] = true
	}

	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !known[k] {
			return fmt.Errorf("unknown table %q", k)
		}
	}

	seen := make(map[string]string, len(LogicalTables))
	for _, l := range LogicalTables {
		p := t.Physical(l)
		if other, ok := seen[p]; ok {
			return fmt.Errorf("tables %q and %q both map to %q", other, l, p)
		}
		seen[p] = l
	}
	return nil
}
