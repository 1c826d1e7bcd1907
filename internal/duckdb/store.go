// Package duckdb persists the item collection in a DuckDB database: one JSON
// payload row per item plus a flattened answer_records table for ad-hoc SQL.
package duckdb

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/duckdb/duckdb-go/v2"

	"redactbench/internal/record"
)

// The tables carry no key constraints: Save deletes and re-inserts every row
// inside one transaction, which DuckDB rejects on indexed columns.
//
//go:embed schema.sql
var schemaDDL string

// EnsureSchema creates the tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Store is a record.Persistence backed by DuckDB.
type Store struct {
	db    *sql.DB
	owned bool
}

// Open opens (or creates) a database file and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("duckdb: path is required")
	}
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, owned: true}, nil
}

// New wraps an existing connection whose schema is already applied.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close releases the connection when the store opened it.
func (s *Store) Close() error {
	if s == nil || !s.owned {
		return nil
	}
	return s.db.Close()
}

// Load reads item payloads in position order.
func (s *Store) Load(ctx context.Context) ([]record.Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT item_id, payload FROM items ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()
	var items []record.Item
	for rows.Next() {
		var (
			id      string
			payload string
		)
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		var item record.Item
		if err := json.Unmarshal([]byte(payload), &item); err != nil {
			return nil, fmt.Errorf("decode item %s: %w", id, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// Save replaces both tables in one transaction.
func (s *Store) Save(ctx context.Context, items []record.Item) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM answer_records`); err != nil {
		return fmt.Errorf("clear answer records: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}
	for position, item := range items {
		payload, marshalErr := json.Marshal(item)
		if marshalErr != nil {
			err = fmt.Errorf("encode item %s: %w", item.ID, marshalErr)
			return err
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO items (item_id, position, payload, saved_at) VALUES (?, ?, ?, now())`,
			item.ID, position, string(payload),
		); err != nil {
			return fmt.Errorf("insert item %s: %w", item.ID, err)
		}
		if err = insertAnswerRecords(ctx, tx, item); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

func insertAnswerRecords(ctx context.Context, tx *sql.Tx, item record.Item) error {
	for textIndex, text := range item.Texts {
		bucket := item.Answers[text.ID]
		for _, qa := range item.QA {
			rec, ok := bucket[qa.ID]
			if !ok {
				continue
			}
			var score sql.NullFloat64
			if rec.Score != nil {
				score = sql.NullFloat64{Float64: *rec.Score, Valid: true}
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO answer_records (item_id, text_id, text_index, qa_id, redact, value, score) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				item.ID, text.ID, textIndex, qa.ID, qa.Redact, rec.Value, score,
			); err != nil {
				return fmt.Errorf("insert answer record %s/%s/%s: %w", item.ID, text.ID, qa.ID, err)
			}
		}
	}
	return nil
}

// AnswerRow is one flattened answer record.
type AnswerRow struct {
	ItemID    string
	TextID    string
	TextIndex int
	QAID      string
	Redact    bool
	Value     string
	Score     *float64
}

// AnswerRecords lists the flattened records of an item in text, then qa order.
func (s *Store) AnswerRecords(ctx context.Context, itemID string) ([]AnswerRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id, text_id, text_index, qa_id, redact, value, score
		 FROM answer_records WHERE item_id = ? ORDER BY text_index, qa_id`, itemID)
	if err != nil {
		return nil, fmt.Errorf("query answer records: %w", err)
	}
	defer rows.Close()
	var out []AnswerRow
	for rows.Next() {
		var (
			row   AnswerRow
			score sql.NullFloat64
		)
		if err := rows.Scan(&row.ItemID, &row.TextID, &row.TextIndex, &row.QAID, &row.Redact, &row.Value, &score); err != nil {
			return nil, fmt.Errorf("scan answer record: %w", err)
		}
		if score.Valid {
			value := score.Float64
			row.Score = &value
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// LeakRate returns, per text index, the share of scored redact probes whose
// score reached threshold.
func (s *Store) LeakRate(ctx context.Context, itemID string, threshold float64) (map[int]float64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT text_index, avg(CASE WHEN score >= ? THEN 1.0 ELSE 0.0 END)
		 FROM answer_records
		 WHERE item_id = ? AND redact AND score IS NOT NULL
		 GROUP BY text_index ORDER BY text_index`, threshold, itemID)
	if err != nil {
		return nil, fmt.Errorf("query leak rate: %w", err)
	}
	defer rows.Close()
	out := map[int]float64{}
	for rows.Next() {
		var (
			index int
			rate  float64
		)
		if err := rows.Scan(&index, &rate); err != nil {
			return nil, fmt.Errorf("scan leak rate: %w", err)
		}
		out[index] = rate
	}
	return out, rows.Err()
}
