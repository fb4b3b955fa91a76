package ingest

import (
	"strings"

	"github.com/jakechorley/rodizio/pkg/core/model"
	"github.com/jakechorley/rodizio/pkg/core/week"
	"github.com/jakechorley/rodizio/pkg/table"
)

var cancellationColumns = []string{"driver_id", "driver_name", "data", "turno"}

// Cancellation cleans a cancelled-shifts upload. There is no roster
// enrichment; an unrecognised shift is kept as absent.
func Cancellation(raw *table.Table, opts Options) ([]model.CancellationRecord, Report, error) {
	t := prepare(raw, "cancellation")
	report := Report{RowsIn: t.Len()}

	if err := t.RequireColumns(cancellationColumns...); err != nil {
		return nil, report, err
	}

	ts := opts.timestamp()
	records := make([]model.CancellationRecord, 0, t.Len())

	for i := range t.Rows {
		driverID := model.CanonicalID(t.Get(i, "driver_id"))
		date, ok := week.ParseDate(t.Get(i, "data"))
		if driverID == "" || !ok {
			report.Skipped++
			continue
		}

		records = append(records, model.CancellationRecord{
			DriverID:        driverID,
			DriverName:      strings.TrimSpace(t.Get(i, "driver_name")),
			Date:            week.FormatDate(date),
			WeekKey:         week.Key(date),
			Shift:           model.ParseShift(t.Get(i, "turno")),
			ImportTimestamp: ts,
		})
	}

	report.RowsOut = len(records)
	return records, report, nil
}
