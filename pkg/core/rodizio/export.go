package rodizio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/jakechorley/rodizio/pkg/core/model"
)

// Columns is the exported column order. Downstream consumers parse the CSV by
// these names, so they must not change.
var Columns = []string{
	"driver_id",
	"driver_name",
	"turno_base",
	"disp_am",
	"disp_sd",
	"disp_total",
	"turno_predominante",
	"turno_referencia",
	"carg_total",
	"carg_no_turno",
	"carg_am",
	"carg_sd",
	"devolucoes",
	"cancelamentos",
	"recusas",
	"disp_no_turno",
	"taxa_aproveitamento_turno",
	"taxa_aproveitamento_turno_pct",
	"penalidade",
	"indice_prioridade",
	"origem_turno",
	"status_rodizio",
}

// Record renders a row as text cells in Columns order
func Record(r model.RodizioRow) []string {
	return []string{
		r.DriverID,
		r.DriverName,
		r.BaseShift.Display(),
		strconv.Itoa(r.DispAM),
		strconv.Itoa(r.DispSD),
		strconv.Itoa(r.DispTotal),
		string(r.PredominantShift),
		string(r.ReferenceShift),
		strconv.Itoa(r.CargTotal),
		strconv.Itoa(r.CargInShift),
		strconv.Itoa(r.CargAM),
		strconv.Itoa(r.CargSD),
		formatNumber(r.Returns),
		strconv.Itoa(r.Cancellations),
		strconv.Itoa(r.Refusals),
		strconv.Itoa(r.DispInShift),
		formatNumber(r.ShiftUtilisationRate),
		formatNumber(r.ShiftUtilisationRatePct),
		formatNumber(r.Penalty),
		formatNumber(r.PriorityIndex),
		r.ShiftOrigin,
		r.Status,
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// WriteCSV writes the report as UTF-8 CSV with a header row
func WriteCSV(w io.Writer, rows []model.RodizioRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(Record(r)); err != nil {
			return fmt.Errorf("failed to write row for driver %s: %w", r.DriverID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
