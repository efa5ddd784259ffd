package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"keycycle/internal/modules/session/domain"
	sessionout "keycycle/internal/modules/session/port/out"

	_ "modernc.org/sqlite"
)

type SQLiteReceiptProjector struct {
	db *sql.DB
}

func NewSQLiteReceiptProjector(dbPath string) (*SQLiteReceiptProjector, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	projector := &SQLiteReceiptProjector{db: db}
	if err := projector.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return projector, nil
}

func (s *SQLiteReceiptProjector) Close() error {
	return s.db.Close()
}

func (s *SQLiteReceiptProjector) ensureSchema(ctx context.Context) error {
	const receiptsDDL = `
CREATE TABLE IF NOT EXISTS receipts (
  id TEXT PRIMARY KEY,
  started_at TEXT NOT NULL,
  ended_at TEXT NOT NULL,
  duration_sec INTEGER NOT NULL,
  total_repetitions INTEGER NOT NULL,
  keys_practiced INTEGER NOT NULL,
  note_path TEXT NOT NULL
);
`
	const keysDDL = `
CREATE TABLE IF NOT EXISTS receipt_keys (
  receipt_id TEXT NOT NULL,
  nid INTEGER NOT NULL,
  name TEXT NOT NULL,
  repetitions INTEGER NOT NULL,
  work_sec INTEGER NOT NULL,
  PRIMARY KEY (receipt_id, nid)
);
`
	if _, err := s.db.ExecContext(ctx, receiptsDDL); err != nil {
		return fmt.Errorf("create receipts table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, keysDDL); err != nil {
		return fmt.Errorf("create receipt_keys table: %w", err)
	}
	return nil
}

func (s *SQLiteReceiptProjector) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM receipt_keys`); err != nil {
		return fmt.Errorf("reset receipt keys: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM receipts`); err != nil {
		return fmt.Errorf("reset receipts: %w", err)
	}
	return nil
}

func (s *SQLiteReceiptProjector) UpsertReceipt(ctx context.Context, receipt domain.Receipt, notePath string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin receipt upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const stmt = `
INSERT INTO receipts (id, started_at, ended_at, duration_sec, total_repetitions, keys_practiced, note_path)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  started_at=excluded.started_at,
  ended_at=excluded.ended_at,
  duration_sec=excluded.duration_sec,
  total_repetitions=excluded.total_repetitions,
  keys_practiced=excluded.keys_practiced,
  note_path=excluded.note_path;
`
	_, err = tx.ExecContext(ctx, stmt,
		receipt.ID,
		receipt.StartedAt.UTC().Format(time.RFC3339),
		receipt.EndedAt.UTC().Format(time.RFC3339),
		int64(receipt.Duration()/time.Second),
		receipt.KeyArchive.TotalRepetitions(),
		receipt.KeysPracticed(),
		notePath,
	)
	if err != nil {
		return fmt.Errorf("upsert receipt: %w", err)
	}

	const keyStmt = `
INSERT INTO receipt_keys (receipt_id, nid, name, repetitions, work_sec)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(receipt_id, nid) DO UPDATE SET
  name=excluded.name,
  repetitions=excluded.repetitions,
  work_sec=excluded.work_sec;
`
	for _, row := range receipt.Report() {
		if _, err := tx.ExecContext(ctx, keyStmt, receipt.ID, row.Key.NID, row.Name, row.Key.Repetitions, int64(row.Work/time.Second)); err != nil {
			return fmt.Errorf("upsert receipt key %s: %w", row.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit receipt upsert: %w", err)
	}
	return nil
}

func (s *SQLiteReceiptProjector) ListReceipts(ctx context.Context) ([]sessionout.ReceiptRow, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, started_at, ended_at, duration_sec, total_repetitions, keys_practiced, note_path
FROM receipts
ORDER BY ended_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query receipts: %w", err)
	}
	defer rows.Close()

	out := []sessionout.ReceiptRow{}
	for rows.Next() {
		row := sessionout.ReceiptRow{}
		if err := rows.Scan(&row.ID, &row.StartedAt, &row.EndedAt, &row.DurationSec, &row.TotalRepetitions, &row.KeysPracticed, &row.NotePath); err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate receipts: %w", err)
	}
	return out, nil
}

// KeyTotals sums repetitions per key over every indexed receipt, in nid order.
func (s *SQLiteReceiptProjector) KeyTotals(ctx context.Context) ([domain.KeyCount]int, error) {
	var totals [domain.KeyCount]int
	rows, err := s.db.QueryContext(ctx, `SELECT nid, SUM(repetitions) FROM receipt_keys GROUP BY nid`)
	if err != nil {
		return totals, fmt.Errorf("query key totals: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var nid, total int
		if err := rows.Scan(&nid, &total); err != nil {
			return totals, fmt.Errorf("scan key total: %w", err)
		}
		if nid >= 0 && nid < domain.KeyCount {
			totals[nid] = total
		}
	}
	if err := rows.Err(); err != nil {
		return totals, fmt.Errorf("iterate key totals: %w", err)
	}
	return totals, nil
}
