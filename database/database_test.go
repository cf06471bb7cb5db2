package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocockn/image-compare/types"
)

func TestRecordAndFetchComparison(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	db, err := InitDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()

	result := &types.ComparisonResult{
		FirstPath:    "expected.png",
		SecondPath:   "actual.png",
		Score:        0.8731,
		Threshold:    1.0,
		Regions:      []types.Region{{X: 20, Y: 20, Width: 10, Height: 10}},
		ArtifactPath: "my-diff.png",
	}
	require.NoError(t, RecordComparison(db, result))

	records, err := GetRecentComparisons(db, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "expected.png", rec.FirstPath)
	assert.Equal(t, "actual.png", rec.SecondPath)
	assert.InDelta(t, 0.8731, rec.Score, 1e-9)
	assert.Equal(t, 1.0, rec.Threshold)
	assert.Equal(t, 1, rec.RegionCount)
	assert.Equal(t, "my-diff.png", rec.ArtifactPath)
	assert.NotEmpty(t, rec.ComparedAt)
}

func TestGetRecentComparisonsNewestFirst(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	db, err := InitDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()

	older := &types.ComparisonResult{FirstPath: "one.png", SecondPath: "two.png", Score: 1.0, Threshold: 1.0}
	newer := &types.ComparisonResult{FirstPath: "three.png", SecondPath: "four.png", Score: 0.5, Threshold: 1.0}
	require.NoError(t, RecordComparison(db, older))
	require.NoError(t, RecordComparison(db, newer))

	records, err := GetRecentComparisons(db, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "three.png", records[0].FirstPath)
}

func TestGetComparisonStats(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	db, err := InitDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()

	stats, err := GetComparisonStats(db)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalComparisons)

	require.NoError(t, RecordComparison(db, &types.ComparisonResult{
		FirstPath: "a.png", SecondPath: "b.png", Score: 1.0, Threshold: 1.0,
	}))
	require.NoError(t, RecordComparison(db, &types.ComparisonResult{
		FirstPath: "a.png", SecondPath: "c.png", Score: 0.5, Threshold: 1.0,
	}))

	stats, err = GetComparisonStats(db)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalComparisons)
	assert.InDelta(t, 0.75, stats.MeanScore, 1e-9)
	assert.Equal(t, 1, stats.BelowThreshold)
}

func TestInitDatabaseIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	db, err := InitDatabase(dbPath)
	require.NoError(t, err)
	db.Close()

	db, err = InitDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()

	reopened, err := OpenDatabase(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	_, err = GetRecentComparisons(reopened, 5)
	assert.NoError(t, err)
}
