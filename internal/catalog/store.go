package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Asset is one catalogued media file and its transcript artifacts.
type Asset struct {
	ID              int64
	VideoID         string
	MediaFile       string
	WordTable       string
	VTTFile         string
	Source          string
	Language        string
	SegmentCount    int
	WordCount       int
	AvgConfidence   float64
	// DurationSeconds is taken from the end of the last VTT cue, 0 when the
	// asset has no readable VTT.
	DurationSeconds float64
	RetriedSegments int
	ScannedAt       time.Time
}

// Transcript sources recorded for an asset.
const (
	SourceWhisper  = "whisper"
	SourceCaptions = "captions"
)

// Store manages catalog persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure catalog dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Upsert inserts or replaces an asset keyed by its media file path.
func (s *Store) Upsert(ctx context.Context, asset Asset) error {
	scannedAt := asset.ScannedAt
	if scannedAt.IsZero() {
		scannedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO assets (
            video_id, media_file, word_table, vtt_file, source, language,
            segment_count, word_count, avg_confidence, duration_seconds,
            retried_segments, scanned_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(media_file) DO UPDATE SET
            video_id = excluded.video_id,
            word_table = excluded.word_table,
            vtt_file = excluded.vtt_file,
            source = excluded.source,
            language = excluded.language,
            segment_count = excluded.segment_count,
            word_count = excluded.word_count,
            avg_confidence = excluded.avg_confidence,
            duration_seconds = excluded.duration_seconds,
            retried_segments = excluded.retried_segments,
            scanned_at = excluded.scanned_at`,
		asset.VideoID,
		asset.MediaFile,
		nullableString(asset.WordTable),
		nullableString(asset.VTTFile),
		asset.Source,
		nullableString(asset.Language),
		asset.SegmentCount,
		asset.WordCount,
		asset.AvgConfidence,
		asset.DurationSeconds,
		asset.RetriedSegments,
		scannedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert asset %s: %w", asset.MediaFile, err)
	}
	return nil
}

// List returns all assets ordered by video id then media file.
func (s *Store) List(ctx context.Context) ([]Asset, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, video_id, media_file, word_table, vtt_file, source, language,
                segment_count, word_count, avg_confidence, duration_seconds,
                retried_segments, scanned_at
         FROM assets ORDER BY video_id, media_file`,
	)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var assets []Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, rows.Err()
}

// GetByVideoID returns the assets catalogued for one video identifier.
func (s *Store) GetByVideoID(ctx context.Context, videoID string) ([]Asset, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, video_id, media_file, word_table, vtt_file, source, language,
                segment_count, word_count, avg_confidence, duration_seconds,
                retried_segments, scanned_at
         FROM assets WHERE video_id = ? ORDER BY media_file`,
		videoID,
	)
	if err != nil {
		return nil, fmt.Errorf("get assets for %s: %w", videoID, err)
	}
	defer rows.Close()

	var assets []Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, rows.Err()
}

// Count returns the number of catalogued assets.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM assets").Scan(&count); err != nil {
		return 0, fmt.Errorf("count assets: %w", err)
	}
	return count, nil
}

func scanAsset(rows *sql.Rows) (Asset, error) {
	var (
		asset     Asset
		wordTable sql.NullString
		vttFile   sql.NullString
		language  sql.NullString
		scannedAt string
	)
	if err := rows.Scan(
		&asset.ID,
		&asset.VideoID,
		&asset.MediaFile,
		&wordTable,
		&vttFile,
		&asset.Source,
		&language,
		&asset.SegmentCount,
		&asset.WordCount,
		&asset.AvgConfidence,
		&asset.DurationSeconds,
		&asset.RetriedSegments,
		&scannedAt,
	); err != nil {
		return Asset{}, fmt.Errorf("scan asset: %w", err)
	}
	asset.WordTable = wordTable.String
	asset.VTTFile = vttFile.String
	asset.Language = language.String
	if ts, err := time.Parse(time.RFC3339Nano, scannedAt); err == nil {
		asset.ScannedAt = ts
	}
	return asset, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
