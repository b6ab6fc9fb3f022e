// Package export serializes run results to CSV and seeds the processed-ID
// set from a prior export.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/jackzampolin/orgsync/internal/notion"
	"github.com/jackzampolin/orgsync/internal/reconcile"
)

// Header is the fixed column order of the export file.
var Header = []string{"Link", "Card Title", "Org ID", "Source"}

// WriteCSV writes records to path with the fixed header. Callers decide what
// to do with an empty record set; an empty file with only a header is never
// written.
func WriteCSV(path string, records []reconcile.Record) error {
	if len(records) == 0 {
		return fmt.Errorf("refusing to write empty export to %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	w := csv.NewWriter(f)
	w.Write(Header)
	for _, rec := range records {
		w.Write([]string{rec.Link, rec.Title, rec.OrgID, rec.Source})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write export file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}
	return nil
}

// LoadProcessedIDs reads a prior export once and returns the set of
// normalized card IDs it covers, extracted from the trailing path segment of
// each row's Link. A missing file yields an empty set.
func LoadProcessedIDs(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]struct{}{}, nil
		}
		return nil, fmt.Errorf("failed to open prior export: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read prior export: %w", err)
	}

	ids := make(map[string]struct{})
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		if i == 0 && row[0] == Header[0] {
			continue
		}
		link := row[0]
		tail := link[strings.LastIndex(link, "/")+1:]
		if tail == "" {
			continue
		}
		ids[notion.NormalizeID(tail)] = struct{}{}
	}
	return ids, nil
}
