package ingest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/rodizio/pkg/core/model"
	"github.com/jakechorley/rodizio/pkg/table"
)

func TestReturns(t *testing.T) {
	roster := []model.Driver{{ID: "7", Name: "ROSTER NAME", BaseShift: model.ShiftSD}}

	raw := table.New("devolucoes.xlsx", "Driver ID", "Driver Name", "qtd_pacotes", "data")
	raw.Append("7.0", "", "3", "10/02/2026")
	raw.Append("8", "OTHER", "2,5", "2026-02-11")
	raw.Append("9", "BAD", "many", "2026-02-11")
	raw.Append("10", "BAD", "1", "never")

	records, report, err := Returns(raw, roster, Options{Now: fixedNow})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "7", records[0].DriverID)
	assert.Equal(t, "ROSTER NAME", records[0].DriverName)
	assert.Equal(t, 3.0, records[0].PackageCount)
	assert.Equal(t, "2026-02-10", records[0].Date)
	assert.Equal(t, "2026-W07", records[0].WeekKey)
	assert.Equal(t, model.ShiftSD, records[0].BaseShift)

	assert.Equal(t, 2.5, records[1].PackageCount)
	assert.Equal(t, model.ShiftNone, records[1].BaseShift)
	assert.Equal(t, 2, report.Skipped)
}

func TestReturns_MissingColumns(t *testing.T) {
	raw := table.New("upload", "Driver ID", "data")

	_, _, err := Returns(raw, nil, Options{})

	var mce *table.MissingColumnError
	require.True(t, errors.As(err, &mce))
	assert.Equal(t, []string{"qtd_pacotes"}, mce.Columns)
}

func TestCancellation(t *testing.T) {
	raw := table.New("cancelamento.xlsx", "Driver ID", "Driver Name", "Data", "Turno")
	raw.Append("11", "ANA", "10/02/2026", "am")
	raw.Append("12", "BIA", "11/02/2026", "noite")
	raw.Append("13", "CAU", "", "SD")

	records, report, err := Cancellation(raw, Options{Now: fixedNow})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, model.ShiftAM, records[0].Shift)
	assert.Equal(t, "2026-W07", records[0].WeekKey)
	assert.Equal(t, model.ShiftNone, records[1].Shift)
	assert.Equal(t, 1, report.Skipped)
}

func TestCancellation_MissingColumns(t *testing.T) {
	raw := table.New("upload", "Driver ID", "Data")

	_, _, err := Cancellation(raw, Options{})

	var mce *table.MissingColumnError
	require.True(t, errors.As(err, &mce))
	assert.Equal(t, []string{"driver_name", "turno"}, mce.Columns)
}

func TestRefusals_CompositeDriverAndSlot(t *testing.T) {
	roster := []model.Driver{{ID: "77", BaseShift: model.ShiftAM}}

	raw := table.New("recusas.csv", "Notification ID", "Call-up Time Slot", "Driver")
	raw.Append("N1", "2026-02-10 12:30 - 15:00", "[77] JANE DOE")

	records, _, err := Refusals(raw, roster, Options{Now: fixedNow})
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "N1", r.NotificationID)
	assert.Equal(t, "77", r.DriverID)
	assert.Equal(t, "JANE DOE", r.DriverName)
	assert.Equal(t, "2026-02-10", r.Date)
	assert.Equal(t, "2026-W07", r.WeekKey)
	assert.Equal(t, model.ShiftSD, r.RefusalShift)
	assert.Equal(t, model.ShiftAM, r.BaseShift)
}

func TestRefusals_DropsUnextractableRows(t *testing.T) {
	raw := table.New("recusas.csv", "notification_id", "call-up_time_slot", "driver")
	raw.Append("N1", "2026-02-10 05:45 - 09:30", "JANE DOE")  // no id
	raw.Append("N2", "tomorrow 05:45", "[78] JOHN")           // no date
	raw.Append("N3", "2026-02-10 18:00 - 21:00", "[79] JOE")  // no shift
	raw.Append("N4", "2026-02-10 05:45 - 09:30", "[80] MARY") // ok

	records, report, err := Refusals(raw, nil, Options{Now: fixedNow})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "80", records[0].DriverID)
	assert.Equal(t, model.ShiftAM, records[0].RefusalShift)
	assert.Equal(t, model.ShiftNone, records[0].BaseShift)
	assert.Equal(t, 3, report.Skipped)
}

func TestRefusals_MissingColumns(t *testing.T) {
	raw := table.New("upload", "notification_id")

	_, _, err := Refusals(raw, nil, Options{})

	var mce *table.MissingColumnError
	require.True(t, errors.As(err, &mce))
	assert.Equal(t, []string{"call-up_time_slot", "driver"}, mce.Columns)
}

func TestParseCompositeDriver(t *testing.T) {
	id, name, ok := ParseCompositeDriver("[1414170] FELIPE BOTELHO DA ROCHA")
	require.True(t, ok)
	assert.Equal(t, "1414170", id)
	assert.Equal(t, "FELIPE BOTELHO DA ROCHA", name)

	id, name, ok = ParseCompositeDriver("  [ 12.0 ]JOE ")
	require.True(t, ok)
	assert.Equal(t, "12", id)
	assert.Equal(t, "JOE", name)

	_, _, ok = ParseCompositeDriver("[] NOBODY")
	assert.False(t, ok)

	_, _, ok = ParseCompositeDriver("[12 NOBODY")
	assert.False(t, ok)

	_, _, ok = ParseCompositeDriver("")
	assert.False(t, ok)
}

func TestParseRoster(t *testing.T) {
	raw := table.New("base_motoristas", "Driver ID", "Driver Name", "Turno", "CEP Ofertado")
	raw.Append("9.0", "NINE", "AM", "04567-000")
	raw.Append("", "GHOST", "SD", "")
	raw.Append("10", "TEN", "N/D", "")

	drivers, err := ParseRoster(raw)
	require.NoError(t, err)
	require.Len(t, drivers, 2)

	assert.Equal(t, model.Driver{ID: "9", Name: "NINE", BaseShift: model.ShiftAM, OfferedPostalPrefix: "04567-000"}, drivers[0])
	assert.Equal(t, model.ShiftNone, drivers[1].BaseShift)
}

func TestParseRoster_MissingColumns(t *testing.T) {
	raw := table.New("base_motoristas", "Driver Name")
	raw.Append("X")

	_, err := ParseRoster(raw)

	var mce *table.MissingColumnError
	require.True(t, errors.As(err, &mce))
	assert.Equal(t, []string{"driver_id", "turno"}, mce.Columns)
}

func TestParseRoster_EmptyTable(t *testing.T) {
	drivers, err := ParseRoster(table.Empty("base_motoristas"))
	require.NoError(t, err)
	assert.Empty(t, drivers)
}

func TestParseRegions(t *testing.T) {
	raw := table.New("base_regiao", "Cluster", "CEP Base")
	raw.Append("Vila Mariana", "04000-000")
	raw.Append("", "01000-000")

	regions, err := ParseRegions(raw)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.Equal(t, model.Region{Cluster: "Vila Mariana", PostalCode: "04000-000"}, regions[0])
}
