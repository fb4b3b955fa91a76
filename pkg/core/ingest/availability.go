package ingest

import (
	"errors"
	"strings"

	"github.com/jakechorley/rodizio/pkg/core/model"
	"github.com/jakechorley/rodizio/pkg/core/week"
	"github.com/jakechorley/rodizio/pkg/table"
)

// noShowColumn marks the end of the fixed columns; every column after it is a date
const noShowColumn = "no_show_time"

var availabilityColumns = []string{
	"driver_id",
	"driver_name",
	"cluster",
	"vehicle_type",
	noShowColumn,
}

// ErrNoDateColumns is returned when an availability upload has no columns after no_show_time
var ErrNoDateColumns = errors.New("availability upload has no date columns after no_show_time")

// postal prefixes are compared on their first two digits
const regionPrefixDigits = 2

// Availability explodes a weekly availability grid (one column per date) into
// one record per driver, date and offered shift. A cell offering both shifts
// yields an AM and an SD record.
func Availability(raw *table.Table, roster []model.Driver, regions []model.Region, opts Options) ([]model.AvailabilityRecord, Report, error) {
	t := prepare(raw, "availability")
	report := Report{RowsIn: t.Len()}

	if err := t.RequireColumns(availabilityColumns...); err != nil {
		return nil, report, err
	}

	// Date labels are parsed from the raw header: normalization would turn
	// "10/02/2026" into "10_02_2026"
	type dateColumn struct {
		index int
		date  string
		week  string
	}
	first := t.Index(noShowColumn) + 1
	if first >= len(t.Columns) {
		return nil, report, ErrNoDateColumns
	}
	var dateColumns []dateColumn
	for j := first; j < len(t.Columns); j++ {
		d, ok := week.ParseDate(raw.Columns[j])
		if !ok {
			continue
		}
		dateColumns = append(dateColumns, dateColumn{index: j, date: week.FormatDate(d), week: week.Key(d)})
	}

	drivers := indexRoster(roster)
	clusterPostal := make(map[string]string, len(regions))
	for _, r := range regions {
		key := strings.ToLower(strings.TrimSpace(r.Cluster))
		if _, exists := clusterPostal[key]; !exists {
			clusterPostal[key] = r.PostalCode
		}
	}

	ts := opts.timestamp()
	seen := make(map[string]bool)
	records := make([]model.AvailabilityRecord, 0, t.Len())

	skippedRows := make(map[int]bool)
	for _, col := range dateColumns {
		for i, row := range t.Rows {
			driverID := model.CanonicalID(t.Get(i, "driver_id"))
			if driverID == "" {
				skippedRows[i] = true
				continue
			}
			if col.index >= len(row) {
				continue
			}

			offer := classifyAvailability(row[col.index])
			shifts := offer.shifts()
			if len(shifts) == 0 {
				continue
			}

			driver := drivers[driverID]
			cluster := strings.TrimSpace(t.Get(i, "cluster"))
			clusterCode, ok := clusterPostal[strings.ToLower(cluster)]
			if !ok {
				clusterCode = cluster
			}
			basePrefix := digitsPrefix(clusterCode, regionPrefixDigits)
			offeredPrefix := digitsPrefix(driver.OfferedPostalPrefix, regionPrefixDigits)

			name := strings.TrimSpace(t.Get(i, "driver_name"))
			if name == "" {
				name = driver.Name
			}

			for _, shift := range shifts {
				key := driverID + "|" + col.date + "|" + string(shift)
				if seen[key] {
					report.Dupes++
					continue
				}
				seen[key] = true

				records = append(records, model.AvailabilityRecord{
					DriverID:            driverID,
					DriverName:          name,
					Cluster:             cluster,
					VehicleType:         strings.TrimSpace(t.Get(i, "vehicle_type")),
					OfferedPostalPrefix: offeredPrefix,
					BasePostalPrefix:    basePrefix,
					IsInRegion:          offeredPrefix != "" && offeredPrefix == basePrefix,
					Date:                col.date,
					WeekKey:             col.week,
					BaseShift:           driver.BaseShift,
					OfferedShift:        shift,
					ImportTimestamp:     ts,
				})
			}
		}
	}

	report.Skipped = len(skippedRows)
	report.RowsOut = len(records)
	return records, report, nil
}

// prepare normalizes the column labels of an upload and names it after its stream
func prepare(raw *table.Table, stream string) *table.Table {
	t := table.NormalizeColumns(raw)
	t.Name = stream
	return t
}
