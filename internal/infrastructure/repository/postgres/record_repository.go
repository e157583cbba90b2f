package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/avelichko/docscan/internal/core/domain"
)

const uniqueViolation = "23505"

type RecordRepository struct {
	db *sql.DB
}

func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *RecordRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across cli/repairer startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS records (
	id BIGSERIAL PRIMARY KEY,
	filename TEXT NOT NULL UNIQUE,
	text TEXT NOT NULL,
	confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
	uploaded_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_records_uploaded_at ON records(uploaded_at DESC, id DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// Insert writes the record and returns the store-generated id. The unique
// constraint on filename is the single source of truth for duplicate
// detection; a violation surfaces as domain.ErrDuplicate.
func (r *RecordRepository) Insert(ctx context.Context, rec *domain.Record) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
INSERT INTO records (filename, text, confidence, uploaded_at)
VALUES ($1, $2, $3, $4)
RETURNING id
`,
		rec.Filename, rec.Text, rec.Confidence, rec.UploadedAt.UTC().Format(domain.UploadTimeLayout),
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, domain.WrapError(domain.ErrDuplicate, "insert record", err)
		}
		return 0, fmt.Errorf("insert record: %w", err)
	}
	return id, nil
}

func (r *RecordRepository) GetByID(ctx context.Context, id int64) (*domain.Record, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, filename, text, confidence, to_char(uploaded_at, 'YYYY-MM-DD HH24:MI:SS')
FROM records
WHERE id = $1
`, id)

	rec, err := scanRecord(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrRecordNotFound, "get record", err)
		}
		return nil, fmt.Errorf("scan record: %w", err)
	}
	return rec, nil
}

// ListAll returns every record, most recent first with id as tiebreak.
func (r *RecordRepository) ListAll(ctx context.Context) ([]domain.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, filename, text, confidence, to_char(uploaded_at, 'YYYY-MM-DD HH24:MI:SS')
FROM records
ORDER BY uploaded_at DESC, id DESC
`)
	if err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan record row: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate record rows: %w", err)
	}
	return records, nil
}

func scanRecord(scan func(dest ...any) error) (*domain.Record, error) {
	var rec domain.Record
	var uploadedAt string

	if err := scan(&rec.ID, &rec.Filename, &rec.Text, &rec.Confidence, &uploadedAt); err != nil {
		return nil, err
	}

	ts, err := time.Parse(domain.UploadTimeLayout, uploadedAt)
	if err != nil {
		return nil, fmt.Errorf("parse uploaded_at %q: %w", uploadedAt, err)
	}
	rec.UploadedAt = ts.UTC()
	return &rec, nil
}
