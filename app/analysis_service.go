package app

import (
	"context"
	stderrors "errors"
	"time"

	"geoprospect/adapters/cache"
	"geoprospect/adapters/tabular"
	"geoprospect/domain/core"
	"geoprospect/domain/dataset"
	"geoprospect/domain/geochem"
	"geoprospect/internal"
	"geoprospect/internal/analysis"
	"geoprospect/internal/errors"
	"geoprospect/ports"
)

// MaxPageSize caps the rows returned by one Rows call
const MaxPageSize = 500

// ServiceDeps are the collaborators of the analysis service. Archive,
// Repository and Cache are optional.
type ServiceDeps struct {
	Reader     ports.TableReader
	Store      ports.DatasetStore
	Archive    ports.UploadArchive
	Repository ports.AnalysisRepository
	Cache      ports.AnalysisCache
	Logger     *internal.Logger
}

// AnalysisService runs uploads and column analyses for the dashboard and API
type AnalysisService struct {
	reader  ports.TableReader
	store   ports.DatasetStore
	archive ports.UploadArchive
	repo    ports.AnalysisRepository
	cache   ports.AnalysisCache
	options analysis.Options
	log     *internal.Logger
}

// NewAnalysisService wires the service
func NewAnalysisService(deps ServiceDeps, options analysis.Options) *AnalysisService {
	logger := deps.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AnalysisService{
		reader:  deps.Reader,
		store:   deps.Store,
		archive: deps.Archive,
		repo:    deps.Repository,
		cache:   deps.Cache,
		options: options,
		log:     logger.With("AnalysisService"),
	}
}

// Options returns the analysis options in use
func (s *AnalysisService) Options() analysis.Options {
	return s.options
}

// Upload parses a file, profiles its columns and keeps it for the session
func (s *AnalysisService) Upload(ctx context.Context, filename string, data []byte) (*dataset.Dataset, error) {
	format, err := tabular.FormatOf(filename)
	if err != nil {
		return nil, err
	}
	table, err := s.reader.Read(filename, data)
	if err != nil {
		s.log.Warn("upload %s rejected: %v", filename, err)
		return nil, err
	}

	ds := &dataset.Dataset{
		ID:               core.NewDatasetID(),
		OriginalFilename: filename,
		Format:           format,
		FileSize:         int64(len(data)),
		ContentHash:      core.NewHash(data),
		Columns:          s.reader.Profile(table),
		RecordCount:      len(table.Rows),
		UploadedAt:       time.Now().UTC(),
		Table:            table,
	}

	if s.archive != nil {
		path, err := s.archive.Store(ctx, filename, data)
		if err != nil {
			s.log.Warn("failed to archive upload %s: %v", filename, err)
		} else {
			ds.ArchivePath = path
		}
	}

	if err := s.store.Put(ctx, ds); err != nil {
		return nil, errors.Wrap(err, "failed to keep uploaded dataset")
	}
	s.log.Info("dataset %s uploaded: %s (%d rows, %d numeric columns)",
		ds.ID, filename, ds.RecordCount, len(ds.NumericColumns()))
	return ds, nil
}

// Dataset returns an uploaded dataset
func (s *AnalysisService) Dataset(ctx context.Context, id core.DatasetID) (*dataset.Dataset, error) {
	return s.store.Get(ctx, id)
}

// Columns returns the profiled columns of a dataset
func (s *AnalysisService) Columns(ctx context.Context, id core.DatasetID) ([]dataset.Column, error) {
	ds, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return ds.Columns, nil
}

// Rows returns a page of a dataset and the total row count
func (s *AnalysisService) Rows(ctx context.Context, id core.DatasetID, offset, limit int) ([]dataset.Row, int, error) {
	ds, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	return ds.Table.Slice(offset, limit), len(ds.Table.Rows), nil
}

// Analyze runs the log-probability pipeline on one column. Results are cached
// per dataset, column and options; cache and history failures only log.
func (s *AnalysisService) Analyze(ctx context.Context, id core.DatasetID, column string) (*geochem.Analysis, error) {
	ds, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ds.Table.HasColumn(column) {
		return nil, errors.ColumnNotFound(column)
	}

	key := cache.Key(id, column, s.options.Params())
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.log.Warn("cache read failed for %s: %v", key, err)
		} else if ok {
			s.log.Debug("cache hit for %s/%s", id, column)
			return cached, nil
		}
	}

	result, err := analysis.Analyze(ctx, ds.Table, column, s.options)
	if err != nil {
		return nil, s.mapAnalysisError(column, err)
	}
	result.DatasetID = id

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result); err != nil {
			s.log.Warn("cache write failed for %s: %v", key, err)
		}
	}
	s.record(ctx, result, ds.OriginalFilename)
	return result, nil
}

// Frequency builds the frequency table of a column
func (s *AnalysisService) Frequency(ctx context.Context, id core.DatasetID, column string) ([]geochem.FrequencyClass, error) {
	ds, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	table, err := analysis.Frequency(ds.Table, column, s.options.BelowDetection)
	if err != nil {
		return nil, s.mapAnalysisError(column, err)
	}
	return table, nil
}

// History returns the most recent analyses, newest first
func (s *AnalysisService) History(ctx context.Context, limit int) ([]geochem.AnalysisRecord, error) {
	if s.repo == nil {
		return []geochem.AnalysisRecord{}, nil
	}
	return s.repo.ListRecent(ctx, limit)
}

// Record returns one persisted analysis summary
func (s *AnalysisService) Record(ctx context.Context, id core.AnalysisID) (*geochem.AnalysisRecord, error) {
	if s.repo == nil {
		return nil, errors.NotFound("analysis")
	}
	return s.repo.GetByID(ctx, id)
}

func (s *AnalysisService) record(ctx context.Context, result *geochem.Analysis, filename string) {
	if s.repo == nil {
		return
	}
	rec, err := geochem.NewAnalysisRecord(result, filename)
	if err != nil {
		s.log.Warn("failed to build history record: %v", err)
		return
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		s.log.Warn("failed to save analysis %s: %v", result.ID, err)
	}
}

func (s *AnalysisService) mapAnalysisError(column string, err error) error {
	switch {
	case stderrors.Is(err, analysis.ErrColumnNotFound):
		return errors.ColumnNotFound(column)
	case stderrors.Is(err, analysis.ErrNoPositiveValues):
		return errors.NoNumericData(column, err)
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return errors.Wrapf(err, "analysis of %s failed", column)
	}
}
