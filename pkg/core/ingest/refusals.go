package ingest

import (
	"strings"

	"github.com/jakechorley/rodizio/pkg/core/model"
	"github.com/jakechorley/rodizio/pkg/core/week"
	"github.com/jakechorley/rodizio/pkg/table"
)

const (
	refusalSlotColumn   = "call-up_time_slot"
	refusalDriverColumn = "driver"
)

var refusalColumns = []string{"notification_id", refusalSlotColumn, refusalDriverColumn}

// Refusals cleans a refused call-up export. Driver id and name come from a
// "[<id>] <name>" field, the date and shift from the call-up time slot. Rows
// where any of the three cannot be extracted are dropped.
func Refusals(raw *table.Table, roster []model.Driver, opts Options) ([]model.RefusalRecord, Report, error) {
	t := prepare(raw, "refusals")
	report := Report{RowsIn: t.Len()}

	if err := t.RequireColumns(refusalColumns...); err != nil {
		return nil, report, err
	}

	drivers := indexRoster(roster)
	ts := opts.timestamp()
	records := make([]model.RefusalRecord, 0, t.Len())

	for i := range t.Rows {
		driverID, driverName, ok := ParseCompositeDriver(t.Get(i, refusalDriverColumn))
		slot := t.Get(i, refusalSlotColumn)
		date, dateOK := parseSlotDate(slot)
		shift := classifyRefusalSlot(slot)
		if !ok || !dateOK || shift == model.ShiftNone {
			report.Skipped++
			continue
		}

		d, _ := week.ParseDate(date)
		records = append(records, model.RefusalRecord{
			NotificationID:  model.CanonicalID(t.Get(i, "notification_id")),
			DriverID:        driverID,
			DriverName:      strings.TrimSpace(driverName),
			Date:            date,
			WeekKey:         week.Key(d),
			RefusalShift:    shift,
			BaseShift:       drivers.baseShift(driverID),
			ImportTimestamp: ts,
		})
	}

	report.RowsOut = len(records)
	return records, report, nil
}
