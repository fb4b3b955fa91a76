package ingest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/rodizio/pkg/core/model"
	"github.com/jakechorley/rodizio/pkg/table"
)

func loadingUpload() *table.Table {
	return table.New("carregamento.csv", "Task ID", "Driver ID", "Driver name", "Vehicle Type", "Delivery Date", "Create Time")
}

func TestLoading_DuplicateTaskInBatch(t *testing.T) {
	raw := loadingUpload()
	raw.Append("T1", "5", "JOHN", "VAN", "2026-02-10", "2026-02-10 03:10:00")
	raw.Append("T1", "5", "JOHN", "VAN", "2026-02-10", "2026-02-10 03:10:00")

	records, report, err := Loading(raw, nil, Options{Now: fixedNow})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "T1", records[0].TaskID)
	assert.Equal(t, 1, report.Dupes)
}

func TestLoading_DuplicateAfterFloatNormalization(t *testing.T) {
	raw := loadingUpload()
	raw.Append("123", "5", "JOHN", "VAN", "2026-02-10", "2026-02-10 03:10:00")
	raw.Append("123.0", "5.0", "JOHN", "VAN", "10/02/2026", "2026-02-10 08:00:00")

	records, report, err := Loading(raw, nil, Options{Now: fixedNow})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, model.ShiftAM, records[0].LoadingShift)
	assert.Equal(t, 1, report.Dupes)
}

func TestLoading_ShiftFromCreateHour(t *testing.T) {
	raw := loadingUpload()
	raw.Append("T0", "5", "J", "VAN", "2026-02-10", "2026-02-10 00:00:00")
	raw.Append("T4", "5", "J", "VAN", "2026-02-10", "2026-02-10 04:59:00")
	raw.Append("T5", "5", "J", "VAN", "2026-02-10", "2026-02-10 05:30:00")
	raw.Append("T6", "5", "J", "VAN", "2026-02-10", "2026-02-10 06:00:00")
	raw.Append("T12", "5", "J", "VAN", "2026-02-10", "2026-02-10 12:59:00")
	raw.Append("T13", "5", "J", "VAN", "2026-02-10", "2026-02-10 13:00:00")
	raw.Append("TX", "5", "J", "VAN", "2026-02-10", "garbage")

	records, _, err := Loading(raw, nil, Options{Now: fixedNow})
	require.NoError(t, err)
	require.Len(t, records, 7)

	want := []model.Shift{
		model.ShiftAM, model.ShiftAM, model.ShiftNone,
		model.ShiftSD, model.ShiftSD, model.ShiftNone, model.ShiftNone,
	}
	for i, r := range records {
		assert.Equal(t, want[i], r.LoadingShift, r.TaskID)
	}
}

func TestLoading_OffShift(t *testing.T) {
	roster := []model.Driver{
		{ID: "1", BaseShift: model.ShiftAM},
		{ID: "2", BaseShift: model.ShiftSD},
	}
	raw := loadingUpload()
	raw.Append("A", "1", "J", "VAN", "2026-02-10", "2026-02-10 03:00:00") // AM on AM
	raw.Append("B", "1", "J", "VAN", "2026-02-10", "2026-02-10 08:00:00") // SD on AM
	raw.Append("C", "2", "K", "VAN", "2026-02-10", "2026-02-10 14:00:00") // unclassified
	raw.Append("D", "3", "L", "VAN", "2026-02-10", "2026-02-10 08:00:00") // not in roster

	records, _, err := Loading(raw, roster, Options{Now: fixedNow})
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.False(t, records[0].IsOffShift)
	assert.True(t, records[1].IsOffShift)
	assert.False(t, records[2].IsOffShift)
	assert.False(t, records[3].IsOffShift)
	assert.Equal(t, model.ShiftNone, records[3].BaseShift)
}

func TestLoading_SkipsMalformedRows(t *testing.T) {
	raw := loadingUpload()
	raw.Append("T1", "", "J", "VAN", "2026-02-10", "2026-02-10 03:00:00")
	raw.Append("T2", "5", "J", "VAN", "someday", "2026-02-10 03:00:00")
	raw.Append("", "5", "J", "VAN", "2026-02-10", "2026-02-10 03:00:00")
	raw.Append("T3", "5", "J", "VAN", "2026-02-10", "2026-02-10 03:00:00")

	records, report, err := Loading(raw, nil, Options{Now: fixedNow})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "T3", records[0].TaskID)
	assert.Equal(t, 3, report.Skipped)
}

func TestLoading_MissingColumns(t *testing.T) {
	raw := table.New("upload", "Task ID", "Driver ID")

	_, _, err := Loading(raw, nil, Options{})

	var mce *table.MissingColumnError
	require.True(t, errors.As(err, &mce))
	assert.Equal(t, []string{"driver_name", "vehicle_type", "delivery_date", "create_time"}, mce.Columns)
}

func TestFilterNewTasks(t *testing.T) {
	records := []model.LoadingRecord{{TaskID: "T1"}, {TaskID: "T2"}, {TaskID: "T3"}}

	out, dropped := FilterNewTasks(records, map[string]bool{"T2": true})

	assert.Equal(t, 1, dropped)
	require.Len(t, out, 2)
	assert.Equal(t, "T1", out[0].TaskID)
	assert.Equal(t, "T3", out[1].TaskID)
}
