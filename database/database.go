package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/pocockn/image-compare/types"

	_ "github.com/mattn/go-sqlite3"
)

// InitDatabase initializes and returns a database connection
func InitDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Create table if it doesn't exist
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS comparisons (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		first_path TEXT NOT NULL,
		second_path TEXT NOT NULL,
		score REAL NOT NULL,
		threshold REAL NOT NULL,
		region_count INTEGER NOT NULL DEFAULT 0,
		artifact_path TEXT,
		compared_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_first_path ON comparisons(first_path);
	CREATE INDEX IF NOT EXISTS idx_compared_at ON comparisons(compared_at);`

	_, err = db.Exec(createTableSQL)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// OpenDatabase opens an existing database connection
func OpenDatabase(dbPath string) (*sql.DB, error) {
	return sql.Open("sqlite3", dbPath)
}

// RecordComparison appends one comparison outcome to the history
func RecordComparison(db *sql.DB, result *types.ComparisonResult) error {
	stmt, err := db.Prepare(`
		INSERT INTO comparisons (
			first_path, second_path, score, threshold, region_count, artifact_path, compared_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("cannot prepare history statement: %v", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(
		result.FirstPath,
		result.SecondPath,
		result.Score,
		result.Threshold,
		len(result.Regions),
		result.ArtifactPath,
		time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("cannot record comparison of %s and %s: %v",
			result.FirstPath, result.SecondPath, err)
	}

	return nil
}

// GetRecentComparisons returns the most recent history rows, newest first
func GetRecentComparisons(db *sql.DB, limit int) ([]types.ComparisonRecord, error) {
	rows, err := db.Query(`
		SELECT id, first_path, second_path, score, threshold, region_count,
		       COALESCE(artifact_path, ''), compared_at
		FROM comparisons
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("database query error: %v", err)
	}
	defer rows.Close()

	var records []types.ComparisonRecord
	for rows.Next() {
		var rec types.ComparisonRecord
		err := rows.Scan(&rec.ID, &rec.FirstPath, &rec.SecondPath, &rec.Score,
			&rec.Threshold, &rec.RegionCount, &rec.ArtifactPath, &rec.ComparedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning history row: %v", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// ComparisonStats contains aggregate statistics over the recorded history
type ComparisonStats struct {
	TotalComparisons int
	MeanScore        float64
	BelowThreshold   int
}

// GetComparisonStats retrieves statistics about recorded comparisons
func GetComparisonStats(db *sql.DB) (*ComparisonStats, error) {
	var stats ComparisonStats

	err := db.QueryRow("SELECT COUNT(*), COALESCE(AVG(score), 0) FROM comparisons").
		Scan(&stats.TotalComparisons, &stats.MeanScore)
	if err != nil {
		return nil, fmt.Errorf("failed to get comparison totals: %v", err)
	}

	err = db.QueryRow("SELECT COUNT(*) FROM comparisons WHERE score < threshold").
		Scan(&stats.BelowThreshold)
	if err != nil {
		return nil, fmt.Errorf("failed to count below-threshold comparisons: %v", err)
	}

	return &stats, nil
}
