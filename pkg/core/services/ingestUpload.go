package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/rodizio/pkg/core/ingest"
	"github.com/jakechorley/rodizio/pkg/core/model"
	"github.com/jakechorley/rodizio/pkg/core/week"
	"github.com/jakechorley/rodizio/pkg/db"
	"github.com/jakechorley/rodizio/pkg/metrics"
	"github.com/jakechorley/rodizio/pkg/table"
)

// IngestStore defines the database operations needed to ingest an upload
type IngestStore interface {
	TableReader
	GetLoadedTaskIDs(ctx context.Context) (map[string]bool, error)
	InsertAvailability(ctx context.Context, records []model.AvailabilityRecord) error
	InsertLoading(ctx context.Context, records []model.LoadingRecord) error
	InsertReturns(ctx context.Context, records []model.ReturnRecord) error
	InsertCancellations(ctx context.Context, records []model.CancellationRecord) error
	InsertRefusals(ctx context.Context, records []model.RefusalRecord) error
	InsertImportLog(ctx context.Context, entry *model.ImportLog) error
}

// IngestResult describes one appended upload
type IngestResult struct {
	ImportID      string
	Stream        Stream
	FileName      string
	Report        ingest.Report
	AlreadyStored int // loading tasks dropped because their task_id was already persisted
	Appended      int
	Weeks         []string // week keys touched by the appended records
}

// dropped counts rows and records that were not appended
func (r *IngestResult) dropped() int {
	return r.Report.Skipped + r.Report.Dupes + r.AlreadyStored
}

// IngestUpload cleans one uploaded file with its stream's ingestor and appends
// the records to storage, followed by an import_log entry.
// Nothing is written when the upload is rejected
func IngestUpload(
	ctx context.Context,
	store IngestStore,
	recorder metrics.Recorder,
	logger *zap.Logger,
	stream Stream,
	fileName string,
	raw *table.Table,
	now func() time.Time,
) (*IngestResult, error) {
	if now == nil {
		now = time.Now
	}

	result, err := ingestUpload(ctx, store, logger, stream, fileName, raw, now)
	if result != nil {
		recorder.RecordUpload(string(stream), result.Report.RowsIn, result.Appended, result.dropped(), err)
	} else {
		recorder.RecordUpload(string(stream), 0, 0, 0, err)
	}
	return result, err
}

func ingestUpload(
	ctx context.Context,
	store IngestStore,
	logger *zap.Logger,
	stream Stream,
	fileName string,
	raw *table.Table,
	now func() time.Time,
) (*IngestResult, error) {
	if stream.Table() == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStream, stream)
	}

	logger.Debug("Starting ingestUpload",
		zap.String("stream", string(stream)),
		zap.String("file", fileName),
		zap.Int("rows", raw.Len()))

	opts := ingest.Options{Now: now}
	result := &IngestResult{Stream: stream, FileName: fileName}

	// Step 1: Load roster (all streams but cancellation are enriched from it)
	var roster []model.Driver
	if stream != StreamCancellation {
		var err error
		roster, err = loadRoster(ctx, store)
		if err != nil {
			return nil, err
		}
		logger.Debug("Loaded roster", zap.Int("drivers", len(roster)))
	}

	// Step 2: Clean the upload and append the records
	var weeks []string
	switch stream {
	case StreamAvailability:
		regions, err := loadRegions(ctx, store)
		if err != nil {
			return nil, err
		}
		records, report, err := ingest.Availability(raw, roster, regions, opts)
		result.Report = report
		if err != nil {
			return result, fmt.Errorf("failed to ingest availability: %w", err)
		}
		if err := store.InsertAvailability(ctx, records); err != nil {
			return result, fmt.Errorf("failed to store availability: %w", err)
		}
		result.Appended = len(records)
		for _, r := range records {
			weeks = append(weeks, r.WeekKey)
		}

	case StreamLoading:
		records, report, err := ingest.Loading(raw, roster, opts)
		result.Report = report
		if err != nil {
			return result, fmt.Errorf("failed to ingest loading: %w", err)
		}

		existing, err := store.GetLoadedTaskIDs(ctx)
		if err != nil {
			return result, fmt.Errorf("failed to fetch stored task ids: %w", err)
		}
		fresh, dropped := ingest.FilterNewTasks(records, existing)
		result.AlreadyStored = dropped
		if dropped > 0 {
			logger.Info("Skipping tasks already stored", zap.Int("count", dropped))
		}

		if err := store.InsertLoading(ctx, fresh); err != nil {
			return result, fmt.Errorf("failed to store loading: %w", err)
		}
		result.Appended = len(fresh)
		for _, r := range fresh {
			weeks = append(weeks, r.WeekKey)
		}

	case StreamReturns:
		records, report, err := ingest.Returns(raw, roster, opts)
		result.Report = report
		if err != nil {
			return result, fmt.Errorf("failed to ingest returns: %w", err)
		}
		if err := store.InsertReturns(ctx, records); err != nil {
			return result, fmt.Errorf("failed to store returns: %w", err)
		}
		result.Appended = len(records)
		for _, r := range records {
			weeks = append(weeks, r.WeekKey)
		}

	case StreamCancellation:
		records, report, err := ingest.Cancellation(raw, opts)
		result.Report = report
		if err != nil {
			return result, fmt.Errorf("failed to ingest cancellation: %w", err)
		}
		if err := store.InsertCancellations(ctx, records); err != nil {
			return result, fmt.Errorf("failed to store cancellation: %w", err)
		}
		result.Appended = len(records)
		for _, r := range records {
			weeks = append(weeks, r.WeekKey)
		}

	case StreamRefusals:
		records, report, err := ingest.Refusals(raw, roster, opts)
		result.Report = report
		if err != nil {
			return result, fmt.Errorf("failed to ingest refusals: %w", err)
		}
		if err := store.InsertRefusals(ctx, records); err != nil {
			return result, fmt.Errorf("failed to store refusals: %w", err)
		}
		result.Appended = len(records)
		for _, r := range records {
			weeks = append(weeks, r.WeekKey)
		}
	}
	result.Weeks = uniqueSorted(weeks)

	logger.Debug("Stored records",
		zap.Int("appended", result.Appended),
		zap.Int("skipped", result.Report.Skipped),
		zap.Int("dupes", result.Report.Dupes))

	// Step 3: Record the import
	entry := &model.ImportLog{
		ID:          uuid.New().String(),
		Stream:      string(stream),
		FileName:    fileName,
		RowsIn:      result.Report.RowsIn,
		RowsOut:     result.Appended,
		RowsSkipped: result.dropped(),
		ImportedAt:  now().Format(week.TimestampLayout),
	}
	if err := store.InsertImportLog(ctx, entry); err != nil {
		return result, fmt.Errorf("failed to record import: %w", err)
	}
	result.ImportID = entry.ID

	logger.Info("Upload ingested",
		zap.String("import_id", entry.ID),
		zap.String("stream", string(stream)),
		zap.String("file", fileName),
		zap.Int("rows_in", result.Report.RowsIn),
		zap.Int("appended", result.Appended),
		zap.Strings("weeks", result.Weeks))

	return result, nil
}

// TableReader reads logical tables as stored
type TableReader interface {
	ReadTable(ctx context.Context, logical string) (*table.Table, error)
}

func loadRoster(ctx context.Context, store TableReader) ([]model.Driver, error) {
	raw, err := store.ReadTable(ctx, db.TableRoster)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}
	roster, err := ingest.ParseRoster(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse roster: %w", err)
	}
	return roster, nil
}

func loadRegions(ctx context.Context, store TableReader) ([]model.Region, error) {
	raw, err := store.ReadTable(ctx, db.TableRegions)
	if err != nil {
		return nil, fmt.Errorf("failed to read region map: %w", err)
	}
	regions, err := ingest.ParseRegions(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse region map: %w", err)
	}
	return regions, nil
}

func uniqueSorted(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0)
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
