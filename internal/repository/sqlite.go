package repository

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	_ "modernc.org/sqlite"

	"github.com/mr1hm/go-quake-impact/internal/grid"
	"github.com/mr1hm/go-quake-impact/internal/models"
)

type SQLiteDB struct {
	db *sql.DB
}

var _ AssessmentRepository = (*SQLiteDB)(nil)

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// :memory: databases are per connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS assessments (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			source TEXT NOT NULL,
			hazard TEXT,
			exposure TEXT,
			status TEXT NOT NULL,
			error TEXT,
			total_population INTEGER NOT NULL DEFAULT 0,
			total_fatalities INTEGER NOT NULL DEFAULT 0,
			total_displaced INTEGER NOT NULL DEFAULT 0,
			include_displaced INTEGER NOT NULL DEFAULT 1,
			rows INTEGER NOT NULL DEFAULT 0,
			cols INTEGER NOT NULL DEFAULT 0,
			projection TEXT,
			geotransform TEXT,
			grid BLOB,
			summary TEXT,
			created_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS band_stats (
			assessment_id TEXT NOT NULL,
			band INTEGER NOT NULL,
			cells INTEGER NOT NULL,
			exposed REAL NOT NULL,
			fatalities REAL NOT NULL,
			displaced REAL NOT NULL,
			PRIMARY KEY (assessment_id, band),
			FOREIGN KEY (assessment_id) REFERENCES assessments(id)
		);

		CREATE INDEX IF NOT EXISTS idx_assessments_created_at ON assessments(created_at);
		CREATE INDEX IF NOT EXISTS idx_assessments_status ON assessments(status);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

func (s *SQLiteDB) Add(ctx context.Context, a *models.Assessment) error {
	geo, err := json.Marshal(a.GeoReference.GeoTransform)
	if err != nil {
		return fmt.Errorf("error encoding geotransform: %w", err)
	}

	var rows, cols int
	var blob []byte
	if a.Grid != nil {
		rows, cols = a.Grid.Rows(), a.Grid.Cols()
		blob = encodeGrid(a.Grid)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO assessments (id, label, source, hazard, exposure, status, error,
			total_population, total_fatalities, total_displaced, include_displaced,
			rows, cols, projection, geotransform, grid, summary, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Label, a.Source, a.Hazard, a.Exposure, string(a.Status), a.Error,
		a.Population, a.Fatalities, a.Displaced, a.IncludeDisplaced,
		rows, cols, a.GeoReference.Projection, string(geo), blob, a.Summary, a.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("error inserting assessment %s: %w", a.ID, err)
	}

	for _, b := range a.Bands {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO band_stats (assessment_id, band, cells, exposed, fatalities, displaced) VALUES (?, ?, ?, ?, ?, ?)`,
			a.ID, b.Band, b.Cells, nullFloat(b.Exposed), nullFloat(b.Fatalities), nullFloat(b.Displaced),
		)
		if err != nil {
			return fmt.Errorf("error inserting band %d of %s: %w", b.Band, a.ID, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteDB) GetByID(ctx context.Context, id string) (*models.Assessment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, label, source, hazard, exposure, status, error,
			total_population, total_fatalities, total_displaced, include_displaced,
			rows, cols, projection, geotransform, grid, summary, created_at
		FROM assessments WHERE id = ?`, id)

	var (
		a                         models.Assessment
		hazard, exposure, errText sql.NullString
		projection, geo, summary  sql.NullString
		status                    string
		rows, cols                int
		blob                      []byte
	)
	err := row.Scan(&a.ID, &a.Label, &a.Source, &hazard, &exposure, &status, &errText,
		&a.Population, &a.Fatalities, &a.Displaced, &a.IncludeDisplaced,
		&rows, &cols, &projection, &geo, &blob, &summary, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error reading assessment %s: %w", id, err)
	}

	a.Hazard, a.Exposure, a.Error = hazard.String, exposure.String, errText.String
	a.Status = models.Status(status)
	a.Summary = summary.String
	a.GeoReference.Projection = projection.String
	if geo.Valid && geo.String != "" {
		if err := json.Unmarshal([]byte(geo.String), &a.GeoReference.GeoTransform); err != nil {
			return nil, fmt.Errorf("error decoding geotransform of %s: %w", id, err)
		}
	}
	if len(blob) > 0 {
		if a.Grid, err = decodeGrid(rows, cols, blob); err != nil {
			return nil, fmt.Errorf("error decoding grid of %s: %w", id, err)
		}
	}

	if a.Bands, err = s.bandStats(ctx, id); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *SQLiteDB) bandStats(ctx context.Context, id string) ([]models.BandStat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT band, cells, exposed, fatalities, displaced FROM band_stats WHERE assessment_id = ? ORDER BY band`, id)
	if err != nil {
		return nil, fmt.Errorf("error reading bands of %s: %w", id, err)
	}
	defer rows.Close()

	var bands []models.BandStat
	for rows.Next() {
		var b models.BandStat
		if err := rows.Scan(&b.Band, &b.Cells, &b.Exposed, &b.Fatalities, &b.Displaced); err != nil {
			return nil, fmt.Errorf("error scanning band of %s: %w", id, err)
		}
		bands = append(bands, b)
	}
	return bands, rows.Err()
}

func (s *SQLiteDB) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM assessments WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("error checking assessment %s: %w", id, err)
	}
	return n > 0, nil
}

func (s *SQLiteDB) List(ctx context.Context, opts Filter) ([]models.Assessment, error) {
	query := `
		SELECT id, label, source, hazard, exposure, status, error,
			total_population, total_fatalities, total_displaced, include_displaced, created_at
		FROM assessments WHERE 1=1`
	var args []any

	if opts.Since != nil {
		query += ` AND created_at >= ?`
		args = append(args, opts.Since.UTC())
	}
	if opts.MinFatalities != nil {
		query += ` AND total_fatalities >= ?`
		args = append(args, *opts.MinFatalities)
	}
	if opts.Status != nil {
		query += ` AND status = ?`
		args = append(args, string(*opts.Status))
	}
	query += ` ORDER BY created_at DESC, id`

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if opts.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, opts.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing assessments: %w", err)
	}
	defer rows.Close()

	var out []models.Assessment
	for rows.Next() {
		var (
			a                         models.Assessment
			hazard, exposure, errText sql.NullString
			status                    string
		)
		if err := rows.Scan(&a.ID, &a.Label, &a.Source, &hazard, &exposure, &status, &errText,
			&a.Population, &a.Fatalities, &a.Displaced, &a.IncludeDisplaced, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning assessment: %w", err)
		}
		a.Hazard, a.Exposure, a.Error = hazard.String, exposure.String, errText.String
		a.Status = models.Status(status)
		out = append(out, a)
	}
	return out, rows.Err()
}

// encodeGrid stores cells as little-endian float64 bits so no-data survives.
func encodeGrid(g *grid.Grid) []byte {
	buf := make([]byte, 8*g.Len())
	for i := 0; i < g.Len(); i++ {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(g.Cell(i)))
	}
	return buf
}

func decodeGrid(rows, cols int, buf []byte) (*grid.Grid, error) {
	if err := grid.CheckSize(rows, cols); err != nil {
		return nil, err
	}
	if len(buf) != 8*rows*cols {
		return nil, fmt.Errorf("grid blob holds %d bytes, want %d", len(buf), 8*rows*cols)
	}
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[8*i:]))
	}
	return grid.Wrap(rows, cols, data)
}

// nullFloat keeps NaN out of REAL columns.
func nullFloat(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
