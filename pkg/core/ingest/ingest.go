// Package ingest cleans one freshly uploaded file per stream into the
// stream's canonical records.
//
// Each ingestor normalizes column labels, checks the required raw columns,
// derives shift / date / week fields, enriches from the driver roster and
// drops rows it cannot make sense of. Cross-batch deduplication against
// already persisted rows is the caller's job.
package ingest

import (
	"time"

	"github.com/jakechorley/rodizio/pkg/core/model"
	"github.com/jakechorley/rodizio/pkg/core/week"
)

// Options tunes an ingestion run
type Options struct {
	// Now supplies the wall clock used for import_timestamp. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) timestamp() string {
	now := time.Now
	if o.Now != nil {
		now = o.Now
	}
	return now().Format(week.TimestampLayout)
}

// Report summarises what an ingestor did with its input
type Report struct {
	RowsIn  int // data rows in the raw upload
	RowsOut int // records produced
	Skipped int // raw rows dropped as malformed or unavailable
	Dupes   int // records dropped as duplicates
}

// rosterIndex looks drivers up by canonical id; the first roster entry wins
type rosterIndex map[string]model.Driver

func indexRoster(roster []model.Driver) rosterIndex {
	idx := make(rosterIndex, len(roster))
	for _, d := range roster {
		id := model.CanonicalID(d.ID)
		if _, exists := idx[id]; !exists {
			idx[id] = d
		}
	}
	return idx
}

func (r rosterIndex) baseShift(driverID string) model.Shift {
	return r[driverID].BaseShift
}
