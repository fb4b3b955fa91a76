package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/rodizio/pkg/core/model"
	"github.com/jakechorley/rodizio/pkg/core/rodizio"
	"github.com/jakechorley/rodizio/pkg/core/week"
	"github.com/jakechorley/rodizio/pkg/db"
	"github.com/jakechorley/rodizio/pkg/metrics"
	"github.com/jakechorley/rodizio/pkg/sheetssql"
	"github.com/jakechorley/rodizio/pkg/table"
)

// RodizioResult is the consolidated rotation of one week
type RodizioResult struct {
	Week  string
	Weeks []string // every week with availability, ascending
	Rows  []model.RodizioRow
}

// storedStreams holds every stream table read from storage, with normalized
// columns and week keys
type storedStreams struct {
	availability *table.Table
	loading      *table.Table
	returns      *table.Table
	cancellation *table.Table
	refusals     *table.Table
}

func readStreams(ctx context.Context, store TableReader, now time.Time) (*storedStreams, error) {
	read := func(logical string) (*table.Table, error) {
		raw, err := store.ReadTable(ctx, logical)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", logical, err)
		}
		return normalizeStored(raw, logical, now), nil
	}

	var s storedStreams
	var err error
	if s.availability, err = read(db.TableAvailability); err != nil {
		return nil, err
	}
	if s.loading, err = read(db.TableLoading); err != nil {
		return nil, err
	}
	if s.returns, err = read(db.TableReturns); err != nil {
		return nil, err
	}
	if s.cancellation, err = read(db.TableCancellation); err != nil {
		return nil, err
	}
	if s.refusals, err = read(db.TableRefusals); err != nil {
		return nil, err
	}
	return &s, nil
}

// normalizeStored canonicalises a stored stream table: column labels, legacy
// headers and week keys
func normalizeStored(raw *table.Table, logical string, now time.Time) *table.Table {
	t := table.NormalizeColumns(raw).RenameColumns(legacyHeaders[logical])
	return week.NormalizeTable(t, now)
}

// ListWeeks returns the weeks that have availability stored, ascending
func ListWeeks(ctx context.Context, store TableReader, logger *zap.Logger, now time.Time) ([]string, error) {
	raw, err := store.ReadTable(ctx, db.TableAvailability)
	if err != nil {
		return nil, fmt.Errorf("failed to read availability: %w", err)
	}
	weeks := week.Keys(normalizeStored(raw, db.TableAvailability, now))
	logger.Debug("Listed weeks", zap.Strings("weeks", weeks))
	if len(weeks) == 0 {
		return nil, ErrNoAvailability
	}
	return weeks, nil
}

// ViewRodizio consolidates the rotation for weekKey, or for the latest week
// with availability when weekKey is empty
func ViewRodizio(
	ctx context.Context,
	store TableReader,
	recorder metrics.Recorder,
	logger *zap.Logger,
	weekKey string,
	now time.Time,
) (*RodizioResult, error) {
	start := time.Now()
	logger.Debug("Starting viewRodizio", zap.String("week", weekKey))

	// Step 1: Read and normalize every stream
	streams, err := readStreams(ctx, store, now)
	if err != nil {
		return nil, err
	}
	roster, err := loadRoster(ctx, store)
	if err != nil {
		return nil, err
	}

	// Step 2: Resolve the selected week
	weeks := week.Keys(streams.availability)
	if len(weeks) == 0 {
		return nil, ErrNoAvailability
	}
	selected := weekKey
	if selected == "" {
		selected = weeks[len(weeks)-1]
	} else {
		key, ok := resolveWeek(weekKey, now)
		if !ok || !contains(weeks, key) {
			return nil, fmt.Errorf("%w: %s", ErrWeekNotFound, weekKey)
		}
		selected = key
	}
	logger.Debug("Selected week", zap.String("week", selected), zap.Int("available_weeks", len(weeks)))

	// Step 3: Filter each stream to the week and decode its records
	in := rodizio.Inputs{Roster: roster}
	if in.Availability, err = decodeWeek[model.AvailabilityRecord](streams.availability, selected, logger); err != nil {
		return nil, err
	}
	if in.Loading, err = decodeWeek[model.LoadingRecord](streams.loading, selected, logger); err != nil {
		return nil, err
	}
	if in.Returns, err = decodeWeek[model.ReturnRecord](streams.returns, selected, logger); err != nil {
		return nil, err
	}
	if in.Cancellations, err = decodeWeek[model.CancellationRecord](streams.cancellation, selected, logger); err != nil {
		return nil, err
	}
	if in.Refusals, err = decodeWeek[model.RefusalRecord](streams.refusals, selected, logger); err != nil {
		return nil, err
	}

	logger.Debug("Week records",
		zap.Int("availability", len(in.Availability)),
		zap.Int("loading", len(in.Loading)),
		zap.Int("returns", len(in.Returns)),
		zap.Int("cancellations", len(in.Cancellations)),
		zap.Int("refusals", len(in.Refusals)),
		zap.Int("roster", len(roster)))

	// Step 4: Consolidate
	rows := rodizio.Consolidate(in)
	recorder.RecordConsolidation(len(rows), time.Since(start))

	logger.Info("Rodizio consolidated", zap.String("week", selected), zap.Int("drivers", len(rows)))

	return &RodizioResult{Week: selected, Weeks: weeks, Rows: rows}, nil
}

// ExportRodizioCSV consolidates the rotation like ViewRodizio and writes it to w as CSV
func ExportRodizioCSV(
	ctx context.Context,
	store TableReader,
	recorder metrics.Recorder,
	logger *zap.Logger,
	w io.Writer,
	weekKey string,
	now time.Time,
) (*RodizioResult, error) {
	result, err := ViewRodizio(ctx, store, recorder, logger, weekKey, now)
	if err != nil {
		return nil, err
	}
	if err := rodizio.WriteCSV(w, result.Rows); err != nil {
		return nil, fmt.Errorf("failed to write rodizio csv: %w", err)
	}
	return result, nil
}

// decodeWeek decodes the rows of t that belong to weekKey. Rows with cells
// that do not decode are dropped.
func decodeWeek[T any](t *table.Table, weekKey string, logger *zap.Logger) ([]T, error) {
	records, rowErrs, err := sheetssql.DecodeRows[T](week.Filter(t, weekKey))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", t.Name, err)
	}
	for _, rowErr := range rowErrs {
		logger.Debug("Dropped undecodable row",
			zap.String("table", t.Name),
			zap.Int("row", rowErr.Row),
			zap.String("column", rowErr.Column),
			zap.Error(rowErr.Err))
	}
	if len(rowErrs) > 0 {
		logger.Info("Dropped undecodable rows", zap.String("table", t.Name), zap.Int("count", len(rowErrs)))
	}
	return records, nil
}

// resolveWeek accepts a week key, a bare week number or a date inside the week
func resolveWeek(raw string, now time.Time) (string, bool) {
	if d, ok := week.ParseDate(raw); ok {
		return week.Key(d), true
	}
	return week.Normalize(raw, "", now)
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
