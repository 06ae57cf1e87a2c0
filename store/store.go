// Package store keeps finished paintings' genotypes in a SQLite database so
// they can be redrawn later at any scale.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/wbrown/finch"
)

// ErrNotFound is returned when no run has the requested ID.
var ErrNotFound = errors.New("store: run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	style       TEXT NOT NULL,
	method      TEXT NOT NULL,
	width       INTEGER NOT NULL,
	height      INTEGER NOT NULL,
	score       INTEGER NOT NULL,
	generations INTEGER NOT NULL,
	created_at  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS brushes (
	run_id  TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	seq     INTEGER NOT NULL,
	r       INTEGER NOT NULL,
	g       INTEGER NOT NULL,
	b       INTEGER NOT NULL,
	texture INTEGER NOT NULL,
	x       INTEGER NOT NULL,
	y       INTEGER NOT NULL,
	angle   REAL NOT NULL,
	size    INTEGER NOT NULL,
	PRIMARY KEY (run_id, seq)
);
`

// Run is a stored genotype.
type Run struct {
	ID      ulid.ULID
	Created time.Time
	finch.Genotype
}

// Store is a genotype database. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening genotype store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating genotype schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveGenotype stores g under a new ULID and returns its string form.
func (s *Store) SaveGenotype(ctx context.Context, g finch.Genotype) (string, error) {
	id := ulid.Make()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("error in db execution: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs(id, name, style, method, width, height, score, generations, created_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id.String(), g.Name, g.Style.String(), g.Method.String(),
		g.Width, g.Height, g.Score, g.Generations, int64(id.Time()))
	if err != nil {
		return "", fmt.Errorf("error in db execution: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO brushes(run_id, seq, r, g, b, texture, x, y, angle, size)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("error in db execution: %w", err)
	}
	defer stmt.Close()
	for i, b := range g.Brushes {
		_, err := stmt.ExecContext(ctx, id.String(), i,
			b.Color.R, b.Color.G, b.Color.B, b.Texture,
			b.Position.X, b.Position.Y, b.Angle, b.Size)
		if err != nil {
			return "", fmt.Errorf("error in db execution: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("error in db execution: %w", err)
	}
	return id.String(), nil
}

// LoadRun returns the run with the given ID, brushes included.
func (s *Store) LoadRun(ctx context.Context, id string) (*Run, error) {
	parsed, err := ulid.ParseStrict(id)
	if err != nil {
		return nil, fmt.Errorf("invalid run id %q: %w", id, err)
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, style, method, width, height, score, generations, created_at
		 FROM runs WHERE id = ? LIMIT 1`, parsed.String())
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT r, g, b, texture, x, y, angle, size
		 FROM brushes WHERE run_id = ? ORDER BY seq`, parsed.String())
	if err != nil {
		return nil, fmt.Errorf("error in db execution: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var b finch.Brush
		err := rows.Scan(&b.Color.R, &b.Color.G, &b.Color.B, &b.Texture,
			&b.Position.X, &b.Position.Y, &b.Angle, &b.Size)
		if err != nil {
			return nil, fmt.Errorf("error reading brush: %w", err)
		}
		run.Brushes = append(run.Brushes, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading brushes: %w", err)
	}
	return run, nil
}

// ListRuns returns every stored run, oldest first, without brushes.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, style, method, width, height, score, generations, created_at
		 FROM runs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error in db execution: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run           Run
		id            string
		style, method string
		created       int64
	)
	err := row.Scan(&id, &run.Name, &style, &method, &run.Width, &run.Height,
		&run.Score, &run.Generations, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("error reading run: %w", err)
	}
	if run.ID, err = ulid.ParseStrict(id); err != nil {
		return nil, fmt.Errorf("corrupt run id %q: %w", id, err)
	}
	if run.Style, err = finch.ParseStyle(style); err != nil {
		return nil, err
	}
	if run.Method, err = finch.ParseDifferenceMethod(method); err != nil {
		return nil, err
	}
	run.Created = time.UnixMilli(created)
	return &run, nil
}
