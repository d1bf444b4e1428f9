package normalize

import (
	"encoding/csv"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "disposal-watch/internal/errors"
	"disposal-watch/internal/models"
)

// Stats aggregates per-document row accounting.
type Stats struct {
	RowsExtracted int
	RowsSkipped   int
}

// Normalizer runs layout detection and row extraction over whole documents.
type Normalizer struct {
	logger zerolog.Logger
}

// New creates a Normalizer.
func New(logger zerolog.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize decodes one raw document and produces its canonical records.
// Rows that fail extraction or whose release date is not strictly after
// today are skipped and counted; only decode and header faults are
// document-level errors.
func (n *Normalizer) Normalize(doc models.RawDocument, today time.Time) ([]models.DisposalRecord, Stats, error) {
	var stats Stats

	text, err := DecodeDocument(doc)
	if err != nil {
		return nil, stats, err
	}

	lines := splitLines(text)
	layout := DetectLayout(lines)
	if layout.HeaderSkip >= len(lines) {
		return nil, stats, apperrors.NewDecodeError(doc.Name, nil, apperrors.ErrEmptyDocument)
	}

	reader := csv.NewReader(strings.NewReader(strings.Join(lines[layout.HeaderSkip:], "\n")))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, stats, apperrors.Wrapf(err, "reading header of %s", doc.Name)
	}
	for i, name := range header {
		header[i] = strings.TrimSpace(name)
	}
	layout = ResolveColumns(header, layout)

	var records []models.DisposalRecord
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed rows are noise, never fatal for the document.
			stats.RowsSkipped++
			continue
		}
		rec, err := ExtractRecord(rowFromFields(header, fields), layout)
		if err != nil {
			stats.RowsSkipped++
			n.logger.Debug().Str("document", doc.Name).Err(err).Msg("Row skipped")
			continue
		}
		if expired(rec, today) {
			stats.RowsSkipped++
			n.logger.Debug().
				Str("document", doc.Name).
				Str("code", rec.Code).
				Time("release_date", rec.ReleaseDate).
				Msg("Expired record dropped")
			continue
		}
		records = append(records, rec)
		stats.RowsExtracted++
	}

	n.logger.Info().
		Str("document", doc.Name).
		Str("layout", string(layout.Kind)).
		Int("rows_extracted", stats.RowsExtracted).
		Int("rows_skipped", stats.RowsSkipped).
		Msg("Document normalized")
	return records, stats, nil
}

// rowFromFields zips a header with one record's fields. Short rows simply
// lack the trailing columns.
func rowFromFields(header, fields []string) Row {
	row := make(Row, len(header))
	for i, name := range header {
		if i < len(fields) {
			row[name] = fields[i]
		}
	}
	return row
}
