// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records every simulation and validation run in a SQLite
// database so regeneration cycles can be compared.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/thesis-engine/internal/logging"
	"github.com/pdiddy/thesis-engine/pkg/types"
)

// Run modes.
const (
	ModeSimulate = "simulate"
	ModeValidate = "validate"
)

// Run is one row of the ledger.
type Run struct {
	ID           string    `db:"id" json:"id" yaml:"id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at" yaml:"created_at"`
	Mode         string    `db:"mode" json:"mode" yaml:"mode"`
	Study        string    `db:"study" json:"study" yaml:"study"`
	Seed         int64     `db:"seed" json:"seed" yaml:"seed"`
	SampleSize   int       `db:"sample_size" json:"sample_size" yaml:"sample_size"`
	NoiseScale   float64   `db:"noise_scale" json:"noise_scale" yaml:"noise_scale"`
	CarelessRate float64   `db:"careless_rate" json:"careless_rate" yaml:"careless_rate"`
	MissingRate  float64   `db:"missing_rate" json:"missing_rate" yaml:"missing_rate"`
	PSDPolicy    string    `db:"psd_policy" json:"psd_policy" yaml:"psd_policy"`
	Corrected    bool      `db:"corrected" json:"corrected" yaml:"corrected"`

	// LatentCorrected records a repair of the derived sampling structure.
	LatentCorrected bool `db:"latent_corrected" json:"latent_corrected" yaml:"latent_corrected"`

	Verdict   string `db:"verdict" json:"verdict" yaml:"verdict"`
	Concerns  int    `db:"concerns" json:"concerns" yaml:"concerns"`
	OutputDir string `db:"output_dir" json:"output_dir" yaml:"output_dir"`

	// Report is the JSON-encoded validation report.
	Report string `db:"report" json:"-" yaml:"-"`
}

// NewRun builds a ledger row. params is nil for externally supplied data.
func NewRun(mode, study string, params *types.SimulationParameters, report types.ValidationReport, outDir string) (Run, error) {
	data, err := json.Marshal(report.JSONSafe())
	if err != nil {
		return Run{}, fmt.Errorf("encoding report: %w", err)
	}
	r := Run{
		ID:         uuid.NewString(),
		CreatedAt:  report.GeneratedAt.UTC(),
		Mode:       mode,
		Study:      study,
		SampleSize: report.SampleSize,
		Verdict:    string(report.Verdict),
		Concerns:   len(report.Concerns),
		OutputDir:  outDir,
		Report:     string(data),
	}
	if params != nil {
		r.Seed = params.Seed
		r.NoiseScale = params.NoiseScale
		r.CarelessRate = params.CarelessRate
		r.MissingRate = params.MissingRate
		r.PSDPolicy = string(params.PSDPolicy)
		r.Corrected = params.MatrixCorrected
		r.LatentCorrected = params.LatentCorrected
	}
	return r, nil
}

// DecodeReport returns the validation report stored with r.
func (r Run) DecodeReport() (*types.ValidationReport, error) {
	var rep types.ValidationReport
	if err := json.Unmarshal([]byte(r.Report), &rep); err != nil {
		return nil, fmt.Errorf("decoding report of run %s: %w", r.ID, err)
	}
	return &rep, nil
}

// Store manages the run ledger database.
type Store struct {
	db *sqlx.DB
}

// NewStore opens or creates the ledger database at path, creating parent
// directories and the schema as needed.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}
	db, err := sqlx.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMP NOT NULL,
			mode TEXT NOT NULL,
			study TEXT,
			seed INTEGER,
			sample_size INTEGER,
			noise_scale REAL,
			careless_rate REAL,
			missing_rate REAL,
			psd_policy TEXT,
			corrected BOOLEAN,
			latent_corrected BOOLEAN,
			verdict TEXT NOT NULL,
			concerns INTEGER,
			output_dir TEXT,
			report TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_verdict ON runs(verdict)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// Ledgers created before latent_corrected existed get the column added.
	var n int
	if err := s.db.Get(&n, `SELECT COUNT(*) FROM pragma_table_info('runs') WHERE name = 'latent_corrected'`); err != nil {
		return fmt.Errorf("inspecting runs table: %w", err)
	}
	if n == 0 {
		if _, err := s.db.Exec(`ALTER TABLE runs ADD COLUMN latent_corrected BOOLEAN`); err != nil {
			return fmt.Errorf("adding latent_corrected column: %w", err)
		}
	}
	return nil
}

// Record inserts r.
func (s *Store) Record(ctx context.Context, r Run) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO runs (id, created_at, mode, study, seed, sample_size, noise_scale,
			careless_rate, missing_rate, psd_policy, corrected, latent_corrected, verdict, concerns, output_dir, report)
		VALUES (:id, :created_at, :mode, :study, :seed, :sample_size, :noise_scale,
			:careless_rate, :missing_rate, :psd_policy, :corrected, :latent_corrected, :verdict, :concerns, :output_dir, :report)
	`, r)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", r.ID, err)
	}
	logging.Debug("run recorded", "id", r.ID, "mode", r.Mode, "verdict", r.Verdict)
	return nil
}

// ListOptions filters List.
type ListOptions struct {
	// Verdict keeps only runs with this verdict when set.
	Verdict types.Verdict

	// Limit caps the number of runs returned. Zero means no limit.
	Limit int
}

// List returns runs newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Run, error) {
	query := `SELECT * FROM runs`
	var args []any
	if opts.Verdict != "" {
		query += ` WHERE verdict = ?`
		args = append(args, string(opts.Verdict))
	}
	query += ` ORDER BY created_at DESC, rowid DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	var runs []Run
	if err := s.db.SelectContext(ctx, &runs, query, args...); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// Get returns the run with id, matching a unique prefix as well.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	var runs []Run
	if err := s.db.SelectContext(ctx, &runs, `SELECT * FROM runs WHERE id LIKE ? || '%' LIMIT 2`, id); err != nil {
		return nil, fmt.Errorf("reading run %s: %w", id, err)
	}
	switch len(runs) {
	case 0:
		return nil, fmt.Errorf("run %s not found", id)
	case 1:
		return &runs[0], nil
	default:
		return nil, fmt.Errorf("run prefix %s is ambiguous", id)
	}
}
