package ingest

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/rodizio/pkg/core/model"
	"github.com/jakechorley/rodizio/pkg/table"
)

var fixedNow = func() time.Time { return time.Date(2026, 2, 14, 18, 30, 0, 0, time.UTC) }

func availabilityUpload(dates ...string) *table.Table {
	cols := append([]string{"Driver ID", "Driver Name", "Cluster", "Vehicle Type", "No Show Time"}, dates...)
	return table.New("disponibilidade.xlsx", cols...)
}

func TestAvailability_SingleAMSlot(t *testing.T) {
	raw := availabilityUpload("2026-02-10")
	raw.Append("1001", "JOHN DOE", "SP-04 Vila Mariana", "VAN", "0", "05:45-09:30")

	records, report, err := Availability(raw, nil, nil, Options{Now: fixedNow})
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "1001", r.DriverID)
	assert.Equal(t, model.ShiftAM, r.OfferedShift)
	assert.Equal(t, "2026-02-10", r.Date)
	assert.Equal(t, "2026-W07", r.WeekKey)
	assert.Equal(t, "2026-02-14 18:30:00", r.ImportTimestamp)
	assert.Equal(t, 1, report.RowsIn)
	assert.Equal(t, 1, report.RowsOut)
}

func TestAvailability_BothShiftsExplodeIntoTwoRows(t *testing.T) {
	raw := availabilityUpload("2026-02-10")
	raw.Append("1001", "JOHN DOE", "SP-04", "VAN", "0", "05:45 & 12:30")

	records, _, err := Availability(raw, nil, nil, Options{Now: fixedNow})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, model.ShiftAM, records[0].OfferedShift)
	assert.Equal(t, model.ShiftSD, records[1].OfferedShift)
	for _, r := range records {
		assert.Equal(t, "1001", r.DriverID)
		assert.Equal(t, "2026-02-10", r.Date)
	}
}

func TestAvailability_OfferedShiftIsAlwaysAMOrSD(t *testing.T) {
	raw := availabilityUpload("2026-02-09", "2026-02-10", "2026-02-11", "2026-02-12", "2026-02-13")
	raw.Append("1", "A", "SP-04", "VAN", "0", "05:45-09:30", "12:30-15:00", "05:45-09:30 / 12:30-15:00", "Not Available", "Pending 05:45")
	raw.Append("2", "B", "SP-04", "VAN", "0", "09:30", "15:00", "", "whatever", "05:45-09:30;12:30-15:00")

	records, _, err := Availability(raw, nil, nil, Options{Now: fixedNow})
	require.NoError(t, err)
	require.NotEmpty(t, records)

	for _, r := range records {
		assert.True(t, r.OfferedShift.IsValid(), "unexpected shift %q", r.OfferedShift)
	}
}

func TestAvailability_UnavailableMarkersWin(t *testing.T) {
	raw := availabilityUpload("2026-02-10", "2026-02-11")
	raw.Append("1", "A", "SP-04", "VAN", "0", "NOT AVAILABLE", "pending 12:30")

	records, _, err := Availability(raw, nil, nil, Options{Now: fixedNow})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAvailability_DayFirstHeadersAndUnparseableColumns(t *testing.T) {
	raw := availabilityUpload("10/02/2026", "Observações")
	raw.Append("1", "A", "SP-04", "VAN", "0", "12:30-15:00", "05:45")

	records, _, err := Availability(raw, nil, nil, Options{Now: fixedNow})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2026-02-10", records[0].Date)
	assert.Equal(t, model.ShiftSD, records[0].OfferedShift)
}

func TestAvailability_DeduplicatesDriverDateShift(t *testing.T) {
	raw := availabilityUpload("2026-02-10")
	raw.Append("1", "A", "SP-04", "VAN", "0", "05:45-09:30")
	raw.Append("1.0", "A again", "SP-04", "VAN", "0", "05:45")

	records, report, err := Availability(raw, nil, nil, Options{Now: fixedNow})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "A", records[0].DriverName)
	assert.Equal(t, 1, report.Dupes)
}

func TestAvailability_RosterAndRegionEnrichment(t *testing.T) {
	roster := []model.Driver{
		{ID: "1", Name: "A", BaseShift: model.ShiftSD, OfferedPostalPrefix: "04567-000"},
		{ID: "2", Name: "B", BaseShift: model.ShiftAM, OfferedPostalPrefix: "09876-000"},
	}
	regions := []model.Region{
		{Cluster: "Vila Mariana", PostalCode: "04000-000"},
	}

	raw := availabilityUpload("2026-02-10")
	raw.Append("1", "A", "Vila Mariana", "VAN", "0", "12:30")
	raw.Append("2", "B", "vila mariana", "VAN", "0", "05:45")
	raw.Append("3", "C", "SP-04 Centro", "MOTO", "0", "05:45")

	records, _, err := Availability(raw, roster, regions, Options{Now: fixedNow})
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, model.ShiftSD, records[0].BaseShift)
	assert.Equal(t, "04", records[0].OfferedPostalPrefix)
	assert.Equal(t, "04", records[0].BasePostalPrefix)
	assert.True(t, records[0].IsInRegion)

	assert.Equal(t, model.ShiftAM, records[1].BaseShift)
	assert.Equal(t, "09", records[1].OfferedPostalPrefix)
	assert.False(t, records[1].IsInRegion)

	// Not in the roster: absent shift, cluster label digits, out of region
	assert.Equal(t, model.ShiftNone, records[2].BaseShift)
	assert.Equal(t, "04", records[2].BasePostalPrefix)
	assert.False(t, records[2].IsInRegion)
}

func TestAvailability_MissingColumns(t *testing.T) {
	raw := table.New("upload", "Driver ID", "Cluster", "2026-02-10")
	raw.Append("1", "SP", "05:45")

	_, _, err := Availability(raw, nil, nil, Options{})
	require.Error(t, err)

	var mce *table.MissingColumnError
	require.True(t, errors.As(err, &mce))
	assert.Equal(t, []string{"driver_name", "vehicle_type", "no_show_time"}, mce.Columns)
}

func TestAvailability_NoDateColumns(t *testing.T) {
	raw := availabilityUpload()
	raw.Append("1", "A", "SP", "VAN", "0")

	_, _, err := Availability(raw, nil, nil, Options{})
	assert.ErrorIs(t, err, ErrNoDateColumns)
}

func TestAvailability_BlankDriverIDSkipped(t *testing.T) {
	raw := availabilityUpload("2026-02-10")
	raw.Append("", "A", "SP", "VAN", "0", "05:45")

	records, report, err := Availability(raw, nil, nil, Options{Now: fixedNow})
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 1, report.Skipped)
}
