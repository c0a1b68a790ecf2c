// package formatter serializes flattened catalog rows to export formats (CSV, JSON)
// and writes run manifests describing what an export produced.
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spotcat/spotcat/internal/records"
	"github.com/spotcat/spotcat/internal/shared"
)

// RecordsToCSV converts flat records to CSV with the fixed catalog column set.
// Column order always matches records.Headers regardless of input.
func RecordsToCSV(rows []records.FlatRecord) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(records.Headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.AlbumArtists,
			row.AlbumName,
			row.UPC,
			row.ReleaseDate,
			row.ReleaseType,
			row.Label,
			row.PLine,
			row.AlbumURL,
			strconv.Itoa(row.DiscNumber),
			strconv.Itoa(row.TrackNumber),
			row.TrackArtists,
			row.TrackName,
			row.ISRC,
			row.Explicit,
			row.Duration,
			row.TrackURL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// RecordsToJSON converts flat records to a pretty-printed JSON array.
func RecordsToJSON(rows []records.FlatRecord) ([]byte, error) {
	if rows == nil {
		rows = []records.FlatRecord{}
	}
	return shared.MarshalJSON(rows, true)
}

// Manifest summarizes one export run.
type Manifest struct {
	RunID       string   `json:"run_id"`
	GeneratedAt string   `json:"generated_at"`
	Source      string   `json:"source"`
	RecordCount int      `json:"record_count"`
	Partial     bool     `json:"partial"`
	Files       []string `json:"files"`
}

// NewManifest builds a manifest for an export run. Source identifies what was
// exported, e.g. "album 4aawyAB9vmqN3uQ7FjRGTy".
func NewManifest(source string, recordCount int, partial bool, files []string) Manifest {
	if files == nil {
		files = []string{}
	}
	return Manifest{
		RunID:       shared.GenerateID(),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Source:      source,
		RecordCount: recordCount,
		Partial:     partial,
		Files:       files,
	}
}

// ExportResult contains the paths of files created by an export.
type ExportResult struct {
	DataFile     string
	ManifestFile string
}

// WriteCSVExport writes rows to {base}.csv plus a {base}_manifest.json manifest.
//
// The base path's directory is created when missing.
func WriteCSVExport(rows []records.FlatRecord, base, source string, partial bool) (*ExportResult, error) {
	csvData, err := RecordsToCSV(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	dataFile := base + ".csv"
	if err := writeFile(dataFile, csvData); err != nil {
		return nil, err
	}

	manifestFile, err := writeManifest(base, source, len(rows), partial, []string{dataFile})
	if err != nil {
		return nil, err
	}

	return &ExportResult{DataFile: dataFile, ManifestFile: manifestFile}, nil
}

// WriteJSONExport writes rows to {base}.json plus a {base}_manifest.json manifest.
func WriteJSONExport(rows []records.FlatRecord, base, source string, partial bool) (*ExportResult, error) {
	jsonData, err := RecordsToJSON(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to generate JSON: %w", err)
	}

	dataFile := base + ".json"
	if err := writeFile(dataFile, jsonData); err != nil {
		return nil, err
	}

	manifestFile, err := writeManifest(base, source, len(rows), partial, []string{dataFile})
	if err != nil {
		return nil, err
	}

	return &ExportResult{DataFile: dataFile, ManifestFile: manifestFile}, nil
}

// WriteExport dispatches on format ("csv" or "json").
func WriteExport(rows []records.FlatRecord, format, base, source string, partial bool) (*ExportResult, error) {
	switch format {
	case "csv", "":
		return WriteCSVExport(rows, base, source, partial)
	case "json":
		return WriteJSONExport(rows, base, source, partial)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidConfig, format)
	}
}

func writeManifest(base, source string, count int, partial bool, files []string) (string, error) {
	manifest := NewManifest(source, count, partial, files)
	manifestJSON, err := shared.MarshalJSON(manifest, true)
	if err != nil {
		return "", fmt.Errorf("failed to generate manifest: %w", err)
	}

	manifestFile := base + "_manifest.json"
	if err := writeFile(manifestFile, manifestJSON); err != nil {
		return "", err
	}
	return manifestFile, nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
