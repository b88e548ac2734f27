package content

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"lamah/internal/models"
)

var (
	ErrMissingColumns = errors.New("sheet must have question and answer columns")
	ErrNoSheet        = errors.New("archive has no .csv sheet")
)

// Row is one line of a structured sheet. Media holds either a file name
// inside the accompanying archive or an absolute URL.
type Row struct {
	Line       int
	Text       string
	Answer     string
	Difficulty models.QuestionDifficulty
	Options    []string
	Media      map[MediaSlot]string
}

var columnAliases = map[string]string{
	"question":   "question",
	"text":       "question",
	"السؤال":     "question",
	"answer":     "answer",
	"الجواب":     "answer",
	"الإجابة":    "answer",
	"difficulty": "difficulty",
	"الصعوبة":    "difficulty",
	"options":    "options",
	"الخيارات":   "options",
}

// ParseRows reads a CSV sheet with a header row. Rows without question or
// answer, or with an unknown difficulty, are skipped and their line numbers
// returned.
func ParseRows(r io.Reader) ([]Row, []int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	columns := map[string]int{}
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if alias, ok := columnAliases[name]; ok {
			name = alias
		}
		if _, exists := columns[name]; !exists {
			columns[name] = i
		}
	}
	if _, ok := columns["question"]; !ok {
		return nil, nil, ErrMissingColumns
	}
	if _, ok := columns["answer"]; !ok {
		return nil, nil, ErrMissingColumns
	}

	cell := func(record []string, column string) string {
		i, ok := columns[column]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []Row
	var skipped []int
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}

		row := Row{
			Line:    line,
			Text:    cell(record, "question"),
			Answer:  cell(record, "answer"),
			Options: SplitList(cell(record, "options")),
			Media:   map[MediaSlot]string{},
		}
		if row.Text == "" && row.Answer == "" && len(row.Options) == 0 {
			continue
		}

		difficulty, ok := models.ParseDifficulty(cell(record, "difficulty"))
		if row.Text == "" || row.Answer == "" || !ok {
			skipped = append(skipped, line)
			continue
		}
		row.Difficulty = difficulty

		for _, slot := range MediaSlots {
			if v := cell(record, string(slot)); v != "" {
				row.Media[slot] = v
			}
		}
		rows = append(rows, row)
	}

	return rows, skipped, nil
}

// ReadArchive opens a zip holding one sheet and its media files. Media are
// keyed by base file name.
func ReadArchive(data []byte) ([]Row, []int, map[string][]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, nil, err
	}

	var sheet *zip.File
	media := map[string][]byte{}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || strings.HasPrefix(path.Base(f.Name), ".") {
			continue
		}
		if sheet == nil && strings.EqualFold(path.Ext(f.Name), ".csv") {
			sheet = f
			continue
		}

		b, err := readZipFile(f)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		media[path.Base(f.Name)] = b
	}
	if sheet == nil {
		return nil, nil, nil, ErrNoSheet
	}

	b, err := readZipFile(sheet)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read %s: %w", sheet.Name, err)
	}
	rows, skipped, err := ParseRows(bytes.NewReader(b))
	if err != nil {
		return nil, nil, nil, err
	}
	return rows, skipped, media, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// IsURL reports whether a media reference already points to hosted content.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
