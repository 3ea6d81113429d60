package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mklimuk/als/light"
)

//go:embed migration/*.sql
var migrationFiles embed.FS

// Sample is one logged reading together with the settings it was taken with.
type Sample struct {
	ID      int64
	TakenAt time.Time
	Variant string
	Config  light.Config
	light.Measurement
}

// SQLite keeps samples in a sqlite database file.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(ctx context.Context, filePath string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", filePath)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", filePath, err)
	}
	err = db.PingContext(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("could not connect to %s: %w", filePath, err)
	}
	err = runMigrations(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	entries, err := fs.ReadDir(migrationFiles, "migration")
	if err != nil {
		return fmt.Errorf("could not list migrations: %w", err)
	}
	for _, entry := range entries {
		data, err := fs.ReadFile(migrationFiles, path.Join("migration", entry.Name()))
		if err != nil {
			return fmt.Errorf("could not read migration %s: %w", entry.Name(), err)
		}
		if _, err := db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("migration %s failed: %w", entry.Name(), err)
		}
	}
	return nil
}

func (s *SQLite) Save(ctx context.Context, sample Sample) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO als_samples (taken_at, variant, resolution, rate_ms, gain, als, clear) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sample.TakenAt.UTC(),
		sample.Variant,
		sample.Config.Resolution.Bits(),
		sample.Config.MeasurementRate.Duration().Milliseconds(),
		sample.Config.Gain.Multiplier(),
		sample.ALS,
		sample.Clear,
	)
	if err != nil {
		return 0, fmt.Errorf("could not save sample: %w", err)
	}
	return res.LastInsertId()
}

// Latest returns up to limit samples, newest first.
func (s *SQLite) Latest(ctx context.Context, limit int) ([]Sample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, taken_at, variant, resolution, rate_ms, gain, als, clear FROM als_samples ORDER BY taken_at DESC, id DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("could not query samples: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Sample
	for rows.Next() {
		var smp Sample
		var bits, gain int
		var rateMs int64
		err := rows.Scan(&smp.ID, &smp.TakenAt, &smp.Variant, &bits, &rateMs, &gain, &smp.ALS, &smp.Clear)
		if err != nil {
			return nil, fmt.Errorf("could not scan sample: %w", err)
		}
		smp.Config, err = configFromColumns(bits, rateMs, gain)
		if err != nil {
			return nil, err
		}
		out = append(out, smp)
	}
	return out, rows.Err()
}

func configFromColumns(bits int, rateMs int64, gain int) (light.Config, error) {
	var c light.Config
	var err error
	c.Resolution, err = light.ParseResolution(fmt.Sprint(bits))
	if err != nil {
		return c, err
	}
	c.MeasurementRate, err = light.ParseMeasurementRate(fmt.Sprint(rateMs))
	if err != nil {
		return c, err
	}
	c.Gain, err = light.ParseGain(fmt.Sprint(gain))
	return c, err
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
