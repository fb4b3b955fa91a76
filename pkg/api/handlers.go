// Package api exposes uploads and the weekly rotation over HTTP.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jakechorley/rodizio/pkg/core/ingest"
	"github.com/jakechorley/rodizio/pkg/core/model"
	"github.com/jakechorley/rodizio/pkg/core/rodizio"
	"github.com/jakechorley/rodizio/pkg/core/services"
	"github.com/jakechorley/rodizio/pkg/db"
	"github.com/jakechorley/rodizio/pkg/fileio"
	"github.com/jakechorley/rodizio/pkg/metrics"
	"github.com/jakechorley/rodizio/pkg/table"
)

// Store is everything the handlers need from storage
type Store interface {
	services.IngestStore
}

// Handler serves the rodizio endpoints
type Handler struct {
	store    Store
	recorder metrics.Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewHandler creates a new handler. A nil now defaults to time.Now
func NewHandler(store Store, recorder metrics.Recorder, logger *zap.Logger, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{store: store, recorder: recorder, logger: logger, now: now}
}

// UploadResponse describes an ingested upload
type UploadResponse struct {
	ImportID      string   `json:"import_id"`
	Stream        string   `json:"stream"`
	FileName      string   `json:"file_name"`
	RowsIn        int      `json:"rows_in"`
	Appended      int      `json:"appended"`
	Skipped       int      `json:"skipped"`
	Duplicates    int      `json:"duplicates"`
	AlreadyStored int      `json:"already_stored"`
	Weeks         []string `json:"weeks"`
}

// RodizioRow is one driver of the rotation as served over JSON
type RodizioRow struct {
	DriverID                   string  `json:"driver_id"`
	DriverName                 string  `json:"driver_name"`
	TurnoBase                  string  `json:"turno_base"`
	DispAM                     int     `json:"disp_am"`
	DispSD                     int     `json:"disp_sd"`
	DispTotal                  int     `json:"disp_total"`
	TurnoPredominante          string  `json:"turno_predominante"`
	TurnoReferencia            string  `json:"turno_referencia"`
	CargTotal                  int     `json:"carg_total"`
	CargNoTurno                int     `json:"carg_no_turno"`
	CargAM                     int     `json:"carg_am"`
	CargSD                     int     `json:"carg_sd"`
	Devolucoes                 float64 `json:"devolucoes"`
	Cancelamentos              int     `json:"cancelamentos"`
	Recusas                    int     `json:"recusas"`
	DispNoTurno                int     `json:"disp_no_turno"`
	TaxaAproveitamentoTurno    float64 `json:"taxa_aproveitamento_turno"`
	TaxaAproveitamentoTurnoPct float64 `json:"taxa_aproveitamento_turno_pct"`
	Penalidade                 float64 `json:"penalidade"`
	IndicePrioridade           float64 `json:"indice_prioridade"`
	OrigemTurno                string  `json:"origem_turno"`
	StatusRodizio              string  `json:"status_rodizio"`
}

// RodizioResponse is the rotation of one week
type RodizioResponse struct {
	Week  string       `json:"week"`
	Weeks []string     `json:"weeks"`
	Rows  []RodizioRow `json:"rows"`
}

func toRodizioRow(r model.RodizioRow) RodizioRow {
	return RodizioRow{
		DriverID:                   r.DriverID,
		DriverName:                 r.DriverName,
		TurnoBase:                  r.BaseShift.Display(),
		DispAM:                     r.DispAM,
		DispSD:                     r.DispSD,
		DispTotal:                  r.DispTotal,
		TurnoPredominante:          string(r.PredominantShift),
		TurnoReferencia:            string(r.ReferenceShift),
		CargTotal:                  r.CargTotal,
		CargNoTurno:                r.CargInShift,
		CargAM:                     r.CargAM,
		CargSD:                     r.CargSD,
		Devolucoes:                 r.Returns,
		Cancelamentos:              r.Cancellations,
		Recusas:                    r.Refusals,
		DispNoTurno:                r.DispInShift,
		TaxaAproveitamentoTurno:    r.ShiftUtilisationRate,
		TaxaAproveitamentoTurnoPct: r.ShiftUtilisationRatePct,
		Penalidade:                 r.Penalty,
		IndicePrioridade:           r.PriorityIndex,
		OrigemTurno:                r.ShiftOrigin,
		StatusRodizio:              r.Status,
	}
}

// Upload ingests a multipart file into the stream named in the path
func (h *Handler) Upload(c *gin.Context) {
	stream, err := services.ParseStream(c.Param("stream"))
	if err != nil {
		h.fail(c, err)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing multipart field: file"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open upload: " + err.Error()})
		return
	}
	defer f.Close()

	fileName := filepath.Base(fh.Filename)
	raw, err := fileio.Read(f, fileName)
	if err != nil {
		h.fail(c, err)
		return
	}

	result, err := services.IngestUpload(c.Request.Context(), h.store, h.recorder, h.logger, stream, fileName, raw, h.now)
	if err != nil {
		h.fail(c, err)
		return
	}

	weeks := result.Weeks
	if weeks == nil {
		weeks = []string{}
	}
	c.JSON(http.StatusCreated, UploadResponse{
		ImportID:      result.ImportID,
		Stream:        string(result.Stream),
		FileName:      result.FileName,
		RowsIn:        result.Report.RowsIn,
		Appended:      result.Appended,
		Skipped:       result.Report.Skipped,
		Duplicates:    result.Report.Dupes,
		AlreadyStored: result.AlreadyStored,
		Weeks:         weeks,
	})
}

// Weeks lists the weeks with availability
func (h *Handler) Weeks(c *gin.Context) {
	weeks, err := services.ListWeeks(c.Request.Context(), h.store, h.logger, h.now())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"weeks": weeks})
}

// Rodizio returns the consolidated rotation of the week in the query, or of the latest week
func (h *Handler) Rodizio(c *gin.Context) {
	result, err := services.ViewRodizio(c.Request.Context(), h.store, h.recorder, h.logger, c.Query("week"), h.now())
	if err != nil {
		h.fail(c, err)
		return
	}

	rows := make([]RodizioRow, len(result.Rows))
	for i, r := range result.Rows {
		rows[i] = toRodizioRow(r)
	}
	c.JSON(http.StatusOK, RodizioResponse{Week: result.Week, Weeks: result.Weeks, Rows: rows})
}

// RodizioCSV downloads the consolidated rotation as CSV
func (h *Handler) RodizioCSV(c *gin.Context) {
	// Consolidate first so errors are still reported as JSON
	result, err := services.ViewRodizio(c.Request.Context(), h.store, h.recorder, h.logger, c.Query("week"), h.now())
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="rodizio_%s.csv"`, result.Week))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := rodizio.WriteCSV(c.Writer, result.Rows); err != nil {
		h.logger.Error("Failed to write rodizio csv", zap.Error(err))
	}
}

// Health reports liveness
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": h.now().UTC()})
}

// fail maps an error to its HTTP status and writes it as JSON
func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	} else {
		h.logger.Debug("Request rejected", zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err))
	}

	body := gin.H{"error": err.Error()}
	var mce *table.MissingColumnError
	if errors.As(err, &mce) {
		body["missing_columns"] = mce.Columns
	}
	c.JSON(status, body)
}

func statusFor(err error) int {
	var mce *table.MissingColumnError
	var sue *db.StorageUnavailableError
	switch {
	case errors.As(err, &mce), errors.Is(err, ingest.ErrNoDateColumns):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrUnknownStream),
		errors.Is(err, services.ErrWeekNotFound),
		errors.Is(err, services.ErrNoAvailability):
		return http.StatusNotFound
	case errors.Is(err, fileio.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, fileio.ErrEmptyFile):
		return http.StatusBadRequest
	case errors.As(err, &sue):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
