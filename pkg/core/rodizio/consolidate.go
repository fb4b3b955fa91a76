// Package rodizio builds the weekly driver rotation report.
//
// Consolidate joins the five week-filtered record streams with the driver
// roster into one row per driver and ranks them by priority index, lowest
// first. It does not filter by week itself.
package rodizio

import (
	"math"
	"sort"

	"github.com/jakechorley/rodizio/pkg/core/model"
)

// Score weights
const (
	RefusalWeight        = 2.0
	CancellationWeight   = 3.0
	ReturnWeight         = 0.5
	NoAvailabilityOffset = 1000.0
)

// Inputs are the week-filtered streams plus the full roster
type Inputs struct {
	Availability  []model.AvailabilityRecord
	Loading       []model.LoadingRecord
	Returns       []model.ReturnRecord
	Cancellations []model.CancellationRecord
	Refusals      []model.RefusalRecord
	Roster        []model.Driver
}

// driverUniverse keeps drivers in first-seen order with O(1) lookup
type driverUniverse struct {
	rows  []*model.RodizioRow
	index map[string]*model.RodizioRow
}

func (u *driverUniverse) get(id string) *model.RodizioRow {
	if row, ok := u.index[id]; ok {
		return row
	}
	row := &model.RodizioRow{DriverID: id}
	u.rows = append(u.rows, row)
	u.index[id] = row
	return row
}

func (u *driverUniverse) lookup(id string) (*model.RodizioRow, bool) {
	row, ok := u.index[model.CanonicalID(id)]
	return row, ok
}

// Consolidate builds the ranked rotation table.
//
// Only drivers that offered availability or appear in the roster are
// represented; loading, returns, cancellations and refusals of anybody else
// are ignored.
func Consolidate(in Inputs) []model.RodizioRow {
	u := &driverUniverse{index: make(map[string]*model.RodizioRow)}

	// Universe: availability first, then roster
	for _, a := range in.Availability {
		id := model.CanonicalID(a.DriverID)
		if id == "" {
			continue
		}
		row := u.get(id)
		if row.DriverName == "" {
			row.DriverName = a.DriverName
		}
		switch a.OfferedShift {
		case model.ShiftAM:
			row.DispAM++
			row.DispTotal++
		case model.ShiftSD:
			row.DispSD++
			row.DispTotal++
		}
	}
	for _, d := range in.Roster {
		id := model.CanonicalID(d.ID)
		if id == "" {
			continue
		}
		row := u.get(id)
		if row.DriverName == "" {
			row.DriverName = d.Name
		}
		if row.BaseShift == model.ShiftNone && d.BaseShift.IsValid() {
			row.BaseShift = d.BaseShift
		}
	}

	// Predominant and reference shift
	for _, row := range u.rows {
		row.PredominantShift = model.ShiftSD
		if row.DispAM >= row.DispSD {
			row.PredominantShift = model.ShiftAM
		}
		row.ReferenceShift = row.PredominantShift
		row.ShiftOrigin = model.OriginInferred
		if row.BaseShift.IsValid() {
			row.ReferenceShift = row.BaseShift
			row.ShiftOrigin = model.OriginRoster
		}
	}

	for _, l := range in.Loading {
		row, ok := u.lookup(l.DriverID)
		if !ok {
			continue
		}
		row.CargTotal++
		if l.LoadingShift == row.ReferenceShift {
			row.CargInShift++
		}
		switch l.LoadingShift {
		case model.ShiftAM:
			row.CargAM++
		case model.ShiftSD:
			row.CargSD++
		}
	}

	for _, r := range in.Returns {
		if row, ok := u.lookup(r.DriverID); ok {
			row.Returns += r.PackageCount
		}
	}
	for _, c := range in.Cancellations {
		if row, ok := u.lookup(c.DriverID); ok {
			row.Cancellations++
		}
	}
	for _, r := range in.Refusals {
		if row, ok := u.lookup(r.DriverID); ok {
			row.Refusals++
		}
	}

	for _, row := range u.rows {
		score(row)
	}

	out := make([]model.RodizioRow, len(u.rows))
	for i, row := range u.rows {
		out[i] = *row
	}

	// Ties keep ascending driver id order
	sort.Slice(out, func(i, j int) bool { return out[i].DriverID < out[j].DriverID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].PriorityIndex < out[j].PriorityIndex })

	return out
}

// score fills in the derived rate, penalty, priority and status of a row
// whose counts are complete
func score(row *model.RodizioRow) {
	switch row.ReferenceShift {
	case model.ShiftAM:
		row.DispInShift = row.DispAM
	case model.ShiftSD:
		row.DispInShift = row.DispSD
	}

	row.ShiftUtilisationRate = UtilisationRate(row.CargInShift, row.DispInShift)
	row.ShiftUtilisationRatePct = round(row.ShiftUtilisationRate*100, 1)

	row.Penalty = Penalty(row.Refusals, row.Cancellations, row.Returns)
	row.PriorityIndex = float64(row.CargTotal) + row.Penalty

	row.Status = model.StatusActive
	if row.DispTotal == 0 {
		row.PriorityIndex += NoAvailabilityOffset
		row.Status = model.StatusNoAvailability
	}
}

// UtilisationRate is loads in the reference shift over availability in that
// shift, rounded to 2 decimals. The divisor is floored at 1.
func UtilisationRate(loadsInShift, dispInShift int) float64 {
	divisor := dispInShift
	if divisor < 1 {
		divisor = 1
	}
	return round(float64(loadsInShift)/float64(divisor), 2)
}

// Penalty weighs refusals, cancellations and returned packages
func Penalty(refusals, cancellations int, returns float64) float64 {
	return float64(refusals)*RefusalWeight + float64(cancellations)*CancellationWeight + returns*ReturnWeight
}

// round rounds half to even
func round(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.RoundToEven(x*p) / p
}
