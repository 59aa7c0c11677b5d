package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	"geoprospect/adapters/cache"
	"geoprospect/adapters/tabular"
	"geoprospect/domain/core"
	"geoprospect/domain/geochem"
	"geoprospect/internal/analysis"
	"geoprospect/internal/config"
	datastore "geoprospect/internal/dataset"
	"geoprospect/internal/errors"
	"geoprospect/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAnalysisRepository records history writes
type MockAnalysisRepository struct {
	mock.Mock
}

func (m *MockAnalysisRepository) Create(ctx context.Context, record *geochem.AnalysisRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAnalysisRepository) ListRecent(ctx context.Context, limit int) ([]geochem.AnalysisRecord, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]geochem.AnalysisRecord), args.Error(1)
}

func (m *MockAnalysisRepository) GetByID(ctx context.Context, id core.AnalysisID) (*geochem.AnalysisRecord, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*geochem.AnalysisRecord), args.Error(1)
}

// MockAnalysisCache fails or misses on demand
type MockAnalysisCache struct {
	mock.Mock
}

func (m *MockAnalysisCache) Get(ctx context.Context, key string) (*geochem.Analysis, bool, error) {
	args := m.Called(ctx, key)
	a, _ := args.Get(0).(*geochem.Analysis)
	return a, args.Bool(1), args.Error(2)
}

func (m *MockAnalysisCache) Set(ctx context.Context, key string, a *geochem.Analysis) error {
	args := m.Called(ctx, key, a)
	return args.Error(0)
}

func newService(repo *MockAnalysisRepository, c *MockAnalysisCache) *AnalysisService {
	deps := ServiceDeps{
		Reader: tabular.NewReader(tabular.DefaultReaderConfig()),
		Store:  datastore.NewMemoryStore(time.Hour, 10),
	}
	if repo != nil {
		deps.Repository = repo
	}
	if c != nil {
		deps.Cache = c
	} else {
		deps.Cache = cache.NewMemoryCache(time.Hour, 10)
	}
	return NewAnalysisService(deps, analysis.DefaultOptions())
}

func surveyCSV() []byte {
	cfg := testkit.DefaultSurveyConfig()
	cfg.IndexColumn = true
	return testkit.CSV(testkit.NewSurveyGenerator(cfg).Generate())
}

func TestUpload(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil, nil)

	ds, err := svc.Upload(ctx, "survey.csv", surveyCSV())
	require.NoError(t, err)
	assert.NotEmpty(t, ds.ID)
	assert.Equal(t, 300, ds.RecordCount)
	assert.Equal(t, []string{"lat", "lon", "Cu_ppm", "Zn_ppm"}, ds.NumericColumns())
	assert.False(t, ds.ContentHash.IsEmpty())

	columns, err := svc.Columns(ctx, ds.ID)
	require.NoError(t, err)
	for _, c := range columns {
		assert.NotEqual(t, "Unnamed: 0", c.Name)
	}

	rows, total, err := svc.Rows(ctx, ds.ID, 290, 50)
	require.NoError(t, err)
	assert.Equal(t, 300, total)
	assert.Len(t, rows, 10)
}

func TestUpload_Rejected(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil, nil)

	_, err := svc.Upload(ctx, "survey.xls", []byte("whatever"))
	assert.True(t, errors.HasCode(err, errors.CodeUnsupportedFormat))

	_, err = svc.Upload(ctx, "survey.csv", []byte("Cu\n"))
	assert.True(t, errors.HasCode(err, errors.CodeMalformedFile))
}

func TestAnalyze_CachesAndRecords(t *testing.T) {
	ctx := context.Background()
	repo := &MockAnalysisRepository{}
	repo.On("Create", mock.Anything, mock.AnythingOfType("*geochem.AnalysisRecord")).Return(nil).Once()
	svc := newService(repo, nil)

	ds, err := svc.Upload(ctx, "survey.csv", surveyCSV())
	require.NoError(t, err)

	first, err := svc.Analyze(ctx, ds.ID, "Cu_ppm")
	require.NoError(t, err)
	assert.Equal(t, ds.ID, first.DatasetID)
	assert.Len(t, first.Points, 300)

	second, err := svc.Analyze(ctx, ds.ID, "Cu_ppm")
	require.NoError(t, err)
	assert.Same(t, first, second, "second call is served from the cache")

	repo.AssertExpectations(t)
	record := repo.Calls[0].Arguments.Get(1).(*geochem.AnalysisRecord)
	assert.Equal(t, "survey.csv", record.Filename)
	assert.Equal(t, first.Clusters(), record.Clusters)
}

func TestAnalyze_SideEffectFailuresDoNotFail(t *testing.T) {
	ctx := context.Background()
	repo := &MockAnalysisRepository{}
	repo.On("Create", mock.Anything, mock.Anything).Return(fmt.Errorf("disk full"))
	c := &MockAnalysisCache{}
	c.On("Get", mock.Anything, mock.Anything).Return(nil, false, fmt.Errorf("connection refused"))
	c.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(fmt.Errorf("connection refused"))
	svc := newService(repo, c)

	ds, err := svc.Upload(ctx, "survey.csv", surveyCSV())
	require.NoError(t, err)

	result, err := svc.Analyze(ctx, ds.ID, "Zn_ppm")
	require.NoError(t, err)
	assert.Equal(t, "Zn_ppm", result.Column)
	c.AssertNumberOfCalls(t, "Set", 1)
	repo.AssertNumberOfCalls(t, "Create", 1)
}

func TestAnalyze_Errors(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil, nil)

	_, err := svc.Analyze(ctx, core.NewDatasetID(), "Cu_ppm")
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))

	ds, err := svc.Upload(ctx, "survey.csv", []byte("sample,Cu_ppm,note\nA,1,x\nB,2,y\n"))
	require.NoError(t, err)

	_, err = svc.Analyze(ctx, ds.ID, "Au_ppb")
	assert.True(t, errors.HasCode(err, errors.CodeColumnNotFound))

	_, err = svc.Analyze(ctx, ds.ID, "note")
	assert.True(t, errors.HasCode(err, errors.CodeNoNumericData))

	_, err = svc.Frequency(ctx, ds.ID, "note")
	assert.True(t, errors.HasCode(err, errors.CodeNoNumericData))
}

func TestFrequency(t *testing.T) {
	ctx := context.Background()
	svc := newService(nil, nil)
	ds, err := svc.Upload(ctx, "survey.csv", surveyCSV())
	require.NoError(t, err)

	table, err := svc.Frequency(ctx, ds.ID, "Cu_ppm")
	require.NoError(t, err)
	assert.Len(t, table, analysis.SturgesClasses(300))
	assert.Equal(t, 300, table[len(table)-1].CumulativeFrequency)
}

func TestHistory(t *testing.T) {
	ctx := context.Background()

	records, err := newService(nil, nil).History(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, records)

	repo := &MockAnalysisRepository{}
	repo.On("ListRecent", mock.Anything, 5).Return([]geochem.AnalysisRecord{{Column: "Cu_ppm"}}, nil)
	records, err = newService(repo, nil).History(ctx, 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Cu_ppm", records[0].Column)
}

func TestAnalysisOptions(t *testing.T) {
	opts := AnalysisOptions(config.AnalysisConfig{KMin: 2, KMax: 6, Seed: 7, BelowDetection: "half"})
	assert.Equal(t, 2, opts.Elbow.KMin)
	assert.Equal(t, 6, opts.Elbow.KMax)
	assert.Equal(t, int64(7), opts.Elbow.KMeans.Seed)
	assert.Equal(t, analysis.DefaultKMeansOptions().NInit, opts.Elbow.KMeans.NInit)
	assert.Equal(t, analysis.DetectionHalf, opts.BelowDetection)

	assert.Equal(t, analysis.DefaultOptions(), AnalysisOptions(config.AnalysisConfig{}))
}

func TestRecord(t *testing.T) {
	ctx := context.Background()
	id := core.NewAnalysisID()

	_, err := newService(nil, nil).Record(ctx, id)
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))

	repo := &MockAnalysisRepository{}
	repo.On("GetByID", mock.Anything, id).Return(&geochem.AnalysisRecord{ID: id, Column: "Zn_ppm"}, nil)
	record, err := newService(repo, nil).Record(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Zn_ppm", record.Column)
	repo.AssertExpectations(t)
}
