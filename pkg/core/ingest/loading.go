package ingest

import (
	"strings"

	"github.com/jakechorley/rodizio/pkg/core/model"
	"github.com/jakechorley/rodizio/pkg/core/week"
	"github.com/jakechorley/rodizio/pkg/table"
)

var loadingColumns = []string{
	"task_id",
	"driver_id",
	"driver_name",
	"vehicle_type",
	"delivery_date",
	"create_time",
}

// Loading cleans a task export into loading records.
// Tasks are deduplicated first on the raw task id and then on the
// normalized (task, driver, date) triple, keeping the first occurrence.
// Rows without a driver id or a parseable delivery date are skipped.
func Loading(raw *table.Table, roster []model.Driver, opts Options) ([]model.LoadingRecord, Report, error) {
	t := prepare(raw, "loading")
	report := Report{RowsIn: t.Len()}

	if err := t.RequireColumns(loadingColumns...); err != nil {
		return nil, report, err
	}

	drivers := indexRoster(roster)
	ts := opts.timestamp()

	seenRaw := make(map[string]bool)
	seenKey := make(map[string]bool)
	records := make([]model.LoadingRecord, 0, t.Len())

	for i := range t.Rows {
		rawTaskID := strings.TrimSpace(t.Get(i, "task_id"))
		if rawTaskID == "" {
			report.Skipped++
			continue
		}
		if seenRaw[rawTaskID] {
			report.Dupes++
			continue
		}
		seenRaw[rawTaskID] = true

		taskID := model.CanonicalID(rawTaskID)
		driverID := model.CanonicalID(t.Get(i, "driver_id"))
		deliveryDate, ok := week.ParseDate(t.Get(i, "delivery_date"))
		if driverID == "" || !ok {
			report.Skipped++
			continue
		}
		date := week.FormatDate(deliveryDate)

		key := taskID + "|" + driverID + "|" + date
		if seenKey[key] {
			report.Dupes++
			continue
		}
		seenKey[key] = true

		loadingShift := model.ShiftNone
		if created, ok := week.ParseDateTime(t.Get(i, "create_time")); ok {
			loadingShift = classifyLoadingHour(created.Hour())
		}
		baseShift := drivers.baseShift(driverID)

		records = append(records, model.LoadingRecord{
			TaskID:          taskID,
			DriverID:        driverID,
			DriverName:      strings.TrimSpace(t.Get(i, "driver_name")),
			VehicleType:     strings.TrimSpace(t.Get(i, "vehicle_type")),
			Date:            date,
			WeekKey:         week.Key(deliveryDate),
			LoadingShift:    loadingShift,
			BaseShift:       baseShift,
			IsOffShift:      loadingShift != model.ShiftNone && baseShift != model.ShiftNone && loadingShift != baseShift,
			ImportTimestamp: ts,
		})
	}

	report.RowsOut = len(records)
	return records, report, nil
}

// FilterNewTasks drops records whose task id is already persisted
func FilterNewTasks(records []model.LoadingRecord, existing map[string]bool) ([]model.LoadingRecord, int) {
	out := make([]model.LoadingRecord, 0, len(records))
	dropped := 0
	for _, r := range records {
		if existing[r.TaskID] {
			dropped++
			continue
		}
		out = append(out, r)
	}
	return out, dropped
}
