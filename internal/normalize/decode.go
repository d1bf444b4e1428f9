// Package normalize turns raw disposal documents into canonical records.
package normalize

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/traditionalchinese"

	apperrors "disposal-watch/internal/errors"
	"disposal-watch/internal/models"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeDocument decodes raw document bytes to text. Official exports ship
// as cp950 (Big5), so that is tried first; backup files re-saved by
// spreadsheet tools arrive as BOM-marked UTF-8 and take the fast path.
func DecodeDocument(doc models.RawDocument) (string, error) {
	raw := doc.Content
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", apperrors.NewDecodeError(doc.Name, nil, apperrors.ErrEmptyDocument)
	}

	if bytes.HasPrefix(raw, utf8BOM) {
		body := bytes.TrimPrefix(raw, utf8BOM)
		if utf8.Valid(body) {
			return string(body), nil
		}
		return "", apperrors.NewDecodeError(doc.Name, []string{"utf-8-sig"}, nil)
	}

	decoded, err := traditionalchinese.Big5.NewDecoder().Bytes(raw)
	if err == nil && !bytes.ContainsRune(decoded, utf8.RuneError) {
		return string(decoded), nil
	}

	if utf8.Valid(raw) {
		return string(raw), nil
	}
	return "", apperrors.NewDecodeError(doc.Name, []string{"cp950", "utf-8"}, err)
}

// splitLines normalizes line endings and splits decoded text into lines,
// dropping trailing blanks.
func splitLines(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
