package ingest

import (
	"strconv"
	"strings"

	"github.com/jakechorley/rodizio/pkg/core/model"
	"github.com/jakechorley/rodizio/pkg/core/week"
	"github.com/jakechorley/rodizio/pkg/table"
)

var returnsColumns = []string{"driver_id", "qtd_pacotes", "data"}

// Returns cleans a returned-packages upload. Rows with an unparseable date or
// package count are skipped.
func Returns(raw *table.Table, roster []model.Driver, opts Options) ([]model.ReturnRecord, Report, error) {
	t := prepare(raw, "returns")
	report := Report{RowsIn: t.Len()}

	if err := t.RequireColumns(returnsColumns...); err != nil {
		return nil, report, err
	}

	drivers := indexRoster(roster)
	ts := opts.timestamp()
	records := make([]model.ReturnRecord, 0, t.Len())

	for i := range t.Rows {
		driverID := model.CanonicalID(t.Get(i, "driver_id"))
		date, ok := week.ParseDate(t.Get(i, "data"))
		count, err := parseCount(t.Get(i, "qtd_pacotes"))
		if driverID == "" || !ok || err != nil {
			report.Skipped++
			continue
		}

		name := strings.TrimSpace(t.Get(i, "driver_name"))
		if name == "" {
			name = drivers[driverID].Name
		}

		records = append(records, model.ReturnRecord{
			DriverID:        driverID,
			DriverName:      name,
			PackageCount:    count,
			Date:            week.FormatDate(date),
			WeekKey:         week.Key(date),
			BaseShift:       drivers.baseShift(driverID),
			ImportTimestamp: ts,
		})
	}

	report.RowsOut = len(records)
	return records, report, nil
}

// parseCount reads a package count, accepting a decimal comma
func parseCount(raw string) (float64, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	return strconv.ParseFloat(raw, 64)
}
