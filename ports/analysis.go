package ports

import (
	"context"

	"geoprospect/domain/core"
	"geoprospect/domain/dataset"
	"geoprospect/domain/geochem"
)

// TableReader parses uploaded files into tables
type TableReader interface {
	Read(filename string, data []byte) (*dataset.Table, error)
	Profile(table *dataset.Table) []dataset.Column
}

// DatasetStore holds uploaded datasets for the duration of a session
type DatasetStore interface {
	Put(ctx context.Context, ds *dataset.Dataset) error
	Get(ctx context.Context, id core.DatasetID) (*dataset.Dataset, error)
	Delete(ctx context.Context, id core.DatasetID) error
}

// UploadArchive keeps a copy of raw uploads and returns the stored path
type UploadArchive interface {
	Store(ctx context.Context, filename string, data []byte) (string, error)
}

// AnalysisRepository persists the history of analysis runs
type AnalysisRepository interface {
	Create(ctx context.Context, record *geochem.AnalysisRecord) error
	ListRecent(ctx context.Context, limit int) ([]geochem.AnalysisRecord, error)
	GetByID(ctx context.Context, id core.AnalysisID) (*geochem.AnalysisRecord, error)
}

// AnalysisCache stores finished analyses by key. A miss is (nil, false, nil).
type AnalysisCache interface {
	Get(ctx context.Context, key string) (*geochem.Analysis, bool, error)
	Set(ctx context.Context, key string, analysis *geochem.Analysis) error
}
