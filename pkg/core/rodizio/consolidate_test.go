package rodizio

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/rodizio/pkg/core/model"
)

func avail(id, date string, shift model.Shift) model.AvailabilityRecord {
	return model.AvailabilityRecord{DriverID: id, DriverName: "DRIVER " + id, Date: date, WeekKey: "2026-W07", OfferedShift: shift}
}

func load(task, id string, shift model.Shift) model.LoadingRecord {
	return model.LoadingRecord{TaskID: task, DriverID: id, Date: "2026-02-10", WeekKey: "2026-W07", LoadingShift: shift}
}

func findRow(t *testing.T, rows []model.RodizioRow, id string) model.RodizioRow {
	t.Helper()
	for _, r := range rows {
		if r.DriverID == id {
			return r
		}
	}
	require.Failf(t, "row not found", "driver %s", id)
	return model.RodizioRow{}
}

func TestConsolidate_RosterShiftDrivesUtilisation(t *testing.T) {
	in := Inputs{
		Roster: []model.Driver{{ID: "9", Name: "NOVE", BaseShift: model.ShiftAM}},
		Availability: []model.AvailabilityRecord{
			avail("9", "2026-02-09", model.ShiftAM),
			avail("9", "2026-02-10", model.ShiftAM),
			avail("9", "2026-02-11", model.ShiftAM),
			avail("9", "2026-02-11", model.ShiftSD),
		},
		Loading: []model.LoadingRecord{
			load("T1", "9", model.ShiftAM),
			load("T2", "9", model.ShiftAM),
		},
	}

	rows := Consolidate(in)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, 3, row.DispAM)
	assert.Equal(t, 1, row.DispSD)
	assert.Equal(t, 4, row.DispTotal)
	assert.Equal(t, model.ShiftAM, row.ReferenceShift)
	assert.Equal(t, model.OriginRoster, row.ShiftOrigin)
	assert.Equal(t, 3, row.DispInShift)
	assert.Equal(t, 2, row.CargInShift)
	assert.Equal(t, 2, row.CargAM)
	assert.Equal(t, 0.67, row.ShiftUtilisationRate)
	assert.Equal(t, 67.0, row.ShiftUtilisationRatePct)
	assert.Equal(t, 2.0, row.PriorityIndex)
	assert.Equal(t, model.StatusActive, row.Status)
	assert.Equal(t, "DRIVER 9", row.DriverName)
}

func TestConsolidate_NoAvailabilitySinksToBottom(t *testing.T) {
	in := Inputs{
		Roster: []model.Driver{
			{ID: "1", Name: "IDLE", BaseShift: model.ShiftSD},
			{ID: "2", Name: "BUSY", BaseShift: model.ShiftAM},
		},
		Availability: []model.AvailabilityRecord{avail("2", "2026-02-10", model.ShiftAM)},
		Loading: []model.LoadingRecord{
			load("T1", "2", model.ShiftAM),
			load("T2", "2", model.ShiftSD),
			load("T3", "2", model.ShiftSD),
		},
		Refusals: []model.RefusalRecord{{DriverID: "2"}, {DriverID: "2"}},
	}

	rows := Consolidate(in)
	require.Len(t, rows, 2)

	assert.Equal(t, "2", rows[0].DriverID)
	assert.Equal(t, "1", rows[1].DriverID)

	idle := rows[1]
	assert.Equal(t, 0, idle.DispTotal)
	assert.GreaterOrEqual(t, idle.PriorityIndex, NoAvailabilityOffset)
	assert.Equal(t, model.StatusNoAvailability, idle.Status)
	assert.Equal(t, 0.0, idle.ShiftUtilisationRate)

	busy := rows[0]
	assert.Equal(t, 3, busy.CargTotal)
	assert.Equal(t, 1, busy.CargInShift)
	assert.Equal(t, 2, busy.CargSD)
	assert.Equal(t, 4.0, busy.Penalty)
	assert.Equal(t, 7.0, busy.PriorityIndex)
}

func TestConsolidate_InferredShift(t *testing.T) {
	in := Inputs{
		Availability: []model.AvailabilityRecord{
			avail("5", "2026-02-10", model.ShiftSD),
			avail("5", "2026-02-11", model.ShiftSD),
			avail("5", "2026-02-12", model.ShiftAM),
			avail("6", "2026-02-10", model.ShiftAM),
			avail("6", "2026-02-10", model.ShiftSD),
		},
		Roster: []model.Driver{{ID: "5", Name: "CINCO", BaseShift: model.ShiftNone}},
	}

	rows := Consolidate(in)
	require.Len(t, rows, 2)

	five := findRow(t, rows, "5")
	assert.Equal(t, model.ShiftSD, five.PredominantShift)
	assert.Equal(t, model.ShiftSD, five.ReferenceShift)
	assert.Equal(t, model.OriginInferred, five.ShiftOrigin)
	assert.Equal(t, 2, five.DispInShift)
	assert.Equal(t, model.ShiftNone, five.BaseShift)

	// AM wins ties
	six := findRow(t, rows, "6")
	assert.Equal(t, model.ShiftAM, six.PredominantShift)
}

func TestConsolidate_IgnoresDriversOutsideUniverse(t *testing.T) {
	in := Inputs{
		Availability:  []model.AvailabilityRecord{avail("1", "2026-02-10", model.ShiftAM)},
		Loading:       []model.LoadingRecord{load("T9", "99", model.ShiftAM)},
		Returns:       []model.ReturnRecord{{DriverID: "99", PackageCount: 4}},
		Cancellations: []model.CancellationRecord{{DriverID: "99"}},
		Refusals:      []model.RefusalRecord{{DriverID: "99"}},
	}

	rows := Consolidate(in)
	require.Len(t, rows, 1)
	assert.Equal(t, "1", rows[0].DriverID)
	assert.Equal(t, 0, rows[0].CargTotal)
}

func TestConsolidate_CanonicalIDsJoin(t *testing.T) {
	in := Inputs{
		Availability:  []model.AvailabilityRecord{avail("42.0", "2026-02-10", model.ShiftAM)},
		Roster:        []model.Driver{{ID: "42", BaseShift: model.ShiftAM}},
		Returns:       []model.ReturnRecord{{DriverID: "42", PackageCount: 3}},
		Cancellations: []model.CancellationRecord{{DriverID: " 42 "}},
	}

	rows := Consolidate(in)
	require.Len(t, rows, 1)
	assert.Equal(t, 3.0, rows[0].Returns)
	assert.Equal(t, 1, rows[0].Cancellations)
	assert.Equal(t, 4.5, rows[0].Penalty)
	assert.Equal(t, model.OriginRoster, rows[0].ShiftOrigin)
}

func TestConsolidate_TiesOrderedByDriverID(t *testing.T) {
	in := Inputs{
		Availability: []model.AvailabilityRecord{
			avail("30", "2026-02-10", model.ShiftAM),
			avail("10", "2026-02-10", model.ShiftAM),
			avail("20", "2026-02-10", model.ShiftAM),
		},
	}

	rows := Consolidate(in)
	require.Len(t, rows, 3)
	assert.Equal(t, "10", rows[0].DriverID)
	assert.Equal(t, "20", rows[1].DriverID)
	assert.Equal(t, "30", rows[2].DriverID)
}

func TestConsolidate_Empty(t *testing.T) {
	assert.Empty(t, Consolidate(Inputs{}))
}

func TestPenalty_Monotonic(t *testing.T) {
	base := Penalty(1, 1, 1)
	assert.Greater(t, Penalty(2, 1, 1), base)
	assert.Greater(t, Penalty(1, 2, 1), base)
	assert.Greater(t, Penalty(1, 1, 2), base)
	assert.Equal(t, 5.5, base)
}

func TestConsolidate_PriorityGrowsWithIncidents(t *testing.T) {
	consolidate := func(refusals, cancellations int, returned float64) model.RodizioRow {
		in := Inputs{
			Roster:       []model.Driver{{ID: "9", Name: "NOVE", BaseShift: model.ShiftAM}},
			Availability: []model.AvailabilityRecord{avail("9", "2026-02-10", model.ShiftAM)},
			Loading:      []model.LoadingRecord{load("T1", "9", model.ShiftAM)},
		}
		for i := 0; i < refusals; i++ {
			in.Refusals = append(in.Refusals, model.RefusalRecord{DriverID: "9", WeekKey: "2026-W07"})
		}
		for i := 0; i < cancellations; i++ {
			in.Cancellations = append(in.Cancellations, model.CancellationRecord{DriverID: "9", WeekKey: "2026-W07"})
		}
		if returned > 0 {
			in.Returns = []model.ReturnRecord{{DriverID: "9", PackageCount: returned, WeekKey: "2026-W07"}}
		}
		return findRow(t, Consolidate(in), "9")
	}

	base := consolidate(0, 0, 0).PriorityIndex
	assert.Equal(t, 1.0, base)

	previous := base
	for n := 1; n <= 3; n++ {
		got := consolidate(n, 0, 0).PriorityIndex
		assert.GreaterOrEqual(t, got, previous, "refusals=%d", n)
		previous = got
	}

	previous = base
	for n := 1; n <= 3; n++ {
		got := consolidate(0, n, 0).PriorityIndex
		assert.GreaterOrEqual(t, got, previous, "cancellations=%d", n)
		previous = got
	}

	previous = base
	for _, returned := range []float64{0.5, 1, 4} {
		got := consolidate(0, 0, returned).PriorityIndex
		assert.GreaterOrEqual(t, got, previous, "returns=%v", returned)
		previous = got
	}

	assert.Greater(t, consolidate(1, 1, 1).PriorityIndex, base)
}

func TestUtilisationRate(t *testing.T) {
	tests := []struct {
		name   string
		loads  int
		disp   int
		expect float64
	}{
		{"two of three", 2, 3, 0.67},
		{"no availability floors divisor", 2, 0, 2},
		{"none", 0, 4, 0},
		{"one of eight", 1, 8, 0.12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, UtilisationRate(tt.loads, tt.disp))
		})
	}
}

func TestWriteCSV(t *testing.T) {
	rows := Consolidate(Inputs{
		Availability: []model.AvailabilityRecord{avail("1", "2026-02-10", model.ShiftAM)},
		Loading:      []model.LoadingRecord{load("T1", "1", model.ShiftAM)},
		Roster:       []model.Driver{{ID: "2", Name: "NO SHIFT"}},
	})

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, Columns, records[0])
	assert.Equal(t, "1", records[1][0])
	assert.Equal(t, "N/D", records[1][2])
	assert.Equal(t, "1", records[1][16])
	assert.Equal(t, "100", records[1][17])
	assert.Equal(t, "INFERIDO_PELA_DISP", records[1][20])

	assert.Equal(t, "2", records[2][0])
	assert.Equal(t, "1000", records[2][19])
	assert.Equal(t, "SEM DISPONIBILIDADE", records[2][21])
}
