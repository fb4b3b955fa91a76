package ingest

import (
	"strings"

	"github.com/jakechorley/rodizio/pkg/core/model"
	"github.com/jakechorley/rodizio/pkg/table"
)

// Roster columns as maintained by operations
const (
	rosterDriverID      = "driver_id"
	rosterDriverName    = "driver_name"
	rosterShift         = "turno"
	rosterOfferedPostal = "cep_ofertado"
)

// Region map columns
const (
	regionCluster = "cluster"
	regionPostal  = "cep_base"
)

// ParseRoster reads the driver roster. driver_id and turno are required;
// driver_name and cep_ofertado are read when present. Rows without a driver
// id are ignored.
func ParseRoster(raw *table.Table) ([]model.Driver, error) {
	t := table.NormalizeColumns(raw)
	if t.IsEmpty() {
		return []model.Driver{}, nil
	}
	if err := t.RequireColumns(rosterDriverID, rosterShift); err != nil {
		return nil, err
	}

	drivers := make([]model.Driver, 0, t.Len())
	for i := range t.Rows {
		id := model.CanonicalID(t.Get(i, rosterDriverID))
		if id == "" {
			continue
		}
		drivers = append(drivers, model.Driver{
			ID:                  id,
			Name:                strings.TrimSpace(t.Get(i, rosterDriverName)),
			BaseShift:           model.ParseShift(t.Get(i, rosterShift)),
			OfferedPostalPrefix: strings.TrimSpace(t.Get(i, rosterOfferedPostal)),
		})
	}
	return drivers, nil
}

// ParseRegions reads the cluster to base postal code map
func ParseRegions(raw *table.Table) ([]model.Region, error) {
	t := table.NormalizeColumns(raw)
	if t.IsEmpty() {
		return []model.Region{}, nil
	}
	if err := t.RequireColumns(regionCluster, regionPostal); err != nil {
		return nil, err
	}

	regions := make([]model.Region, 0, t.Len())
	for i := range t.Rows {
		cluster := strings.TrimSpace(t.Get(i, regionCluster))
		if cluster == "" {
			continue
		}
		regions = append(regions, model.Region{
			Cluster:    cluster,
			PostalCode: strings.TrimSpace(t.Get(i, regionPostal)),
		})
	}
	return regions, nil
}
