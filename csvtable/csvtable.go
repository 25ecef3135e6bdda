// Package csvtable stores report tables as CSV files, one file per
// table, so exports stay diffable and spreadsheet friendly.
package csvtable

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	trackfolio "github.com/okutan/trackfolio"
)

// Sink maps table names to <dir>/<name>.csv files.
type Sink struct {
	dir string
	log zerolog.Logger
}

var _ trackfolio.TabularSink = (*Sink)(nil)

// New returns a sink rooted at dir, creating it if needed.
func New(dir string, log zerolog.Logger) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}
	return &Sink{dir: dir, log: log.With().Str("component", "csvtable").Logger()}, nil
}

func (s *Sink) path(table string) string {
	return filepath.Join(s.dir, table+".csv")
}

// Read loads a table, nil when its file does not exist yet. The
// header row is not returned.
func (s *Sink) Read(table string) ([]trackfolio.Record, error) {
	f, err := os.Open(s.path(table))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening table %s: %w", table, err)
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading table %s: %w", table, err)
	}
	if len(all) <= 1 {
		return nil, nil
	}
	out := make([]trackfolio.Record, 0, len(all)-1)
	for _, row := range all[1:] {
		out = append(out, trackfolio.Record(row))
	}
	return out, nil
}

// Write replaces the table file, going through a temp file so readers
// never observe a half written table.
func (s *Sink) Write(table string, header []string, rows []trackfolio.Record) error {
	tmp, err := os.CreateTemp(s.dir, table+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", table, err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("writing header of %s: %w", table, err)
	}
	for _, rec := range rows {
		if err := w.Write(rec); err != nil {
			tmp.Close()
			return fmt.Errorf("writing row of %s: %w", table, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flushing %s: %w", table, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file for %s: %w", table, err)
	}
	if err := os.Rename(tmp.Name(), s.path(table)); err != nil {
		return fmt.Errorf("replacing table %s: %w", table, err)
	}
	s.log.Debug().Str("table", table).Int("rows", len(rows)).Msg("table written")
	return nil
}
