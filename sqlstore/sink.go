package sqlstore

import (
	"encoding/json"
	"fmt"

	trackfolio "github.com/okutan/trackfolio"
)

// Sink exposes the store's report tables through the tabular sink
// contract. Writes replace the whole table, callers serialize writers
// to the same database.
type Sink struct {
	store *Store
}

var _ trackfolio.TabularSink = (*Sink)(nil)

// Sink returns the report sink backed by this store.
func (s *Store) Sink() *Sink { return &Sink{store: s} }

// Read returns a table's rows in stored order, nil when the table was
// never written.
func (k *Sink) Read(table string) ([]trackfolio.Record, error) {
	rows, err := k.store.db.Query(
		`SELECT row FROM report_rows WHERE table_name = ? ORDER BY idx`, table)
	if err != nil {
		return nil, fmt.Errorf("reading table %s: %w", table, err)
	}
	defer rows.Close()

	var out []trackfolio.Record
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning row of %s: %w", table, err)
		}
		var rec trackfolio.Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decoding row of %s: %w", table, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Write replaces a table's content.
func (k *Sink) Write(table string, header []string, rows []trackfolio.Record) error {
	head, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("encoding header of %s: %w", table, err)
	}

	tx, err := k.store.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning write of %s: %w", table, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO report_tables (name, header) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET header = excluded.header`, table, string(head)); err != nil {
		return fmt.Errorf("storing header of %s: %w", table, err)
	}
	if _, err := tx.Exec(`DELETE FROM report_rows WHERE table_name = ?`, table); err != nil {
		return fmt.Errorf("clearing table %s: %w", table, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO report_rows (table_name, idx, row) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert for %s: %w", table, err)
	}
	defer stmt.Close()

	for i, rec := range rows {
		raw, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encoding row %d of %s: %w", i, table, err)
		}
		if _, err := stmt.Exec(table, i, string(raw)); err != nil {
			return fmt.Errorf("inserting row %d of %s: %w", i, table, err)
		}
	}
	return tx.Commit()
}
