package content

import (
	"strings"

	"lamah/internal/models"
)

const (
	DefaultDelimiter = "؛"
	listSeparator    = "|"

	legacyColumns = 9
)

// ParsedQuestion is one usable line of a bulk text import.
type ParsedQuestion struct {
	Line          int
	CategoryName  string
	CategoryImage string
	models.QuestionData
}

// ParseText splits bulk text into questions. Two line layouts are accepted:
//
//	text؛answer؛media؛category؛difficulty[؛options]
//	text؛answer؛qImage؛aImage؛qAudio؛aAudio؛category؛categoryImage؛difficulty[؛qVideo؛aVideo]
//
// Lines that fit neither layout, lack text, answer or category, or carry an
// unknown difficulty are skipped. Skipped line numbers are returned.
func ParseText(text, delimiter string) ([]ParsedQuestion, []int) {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}

	var parsed []ParsedQuestion
	var skipped []int
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" {
			continue
		}

		fields := strings.Split(line, delimiter)
		for j := range fields {
			fields[j] = strings.TrimSpace(fields[j])
		}

		var (
			pq ParsedQuestion
			ok bool
		)
		switch {
		case len(fields) >= legacyColumns:
			pq, ok = parseLegacyLine(fields)
		case len(fields) >= 4:
			pq, ok = parseInlineLine(fields)
		}
		if !ok || pq.Text == "" || pq.Answer == "" || pq.CategoryName == "" {
			skipped = append(skipped, i+1)
			continue
		}

		pq.Line = i + 1
		parsed = append(parsed, pq)
	}

	return parsed, skipped
}

func parseInlineLine(fields []string) (ParsedQuestion, bool) {
	pq := ParsedQuestion{
		CategoryName: fields[3],
		QuestionData: models.QuestionData{
			Text:          fields[0],
			Answer:        fields[1],
			QuestionMedia: parseMediaTokens(fields[2]),
		},
	}

	difficulty := ""
	if len(fields) > 4 {
		difficulty = fields[4]
	}
	d, ok := models.ParseDifficulty(difficulty)
	if !ok {
		return pq, false
	}
	pq.Difficulty = d

	if len(fields) > 5 {
		pq.Options = SplitList(fields[5])
	}
	return pq, true
}

func parseLegacyLine(fields []string) (ParsedQuestion, bool) {
	pq := ParsedQuestion{
		CategoryName:  fields[6],
		CategoryImage: fields[7],
		QuestionData: models.QuestionData{
			Text:   fields[0],
			Answer: fields[1],
			QuestionMedia: models.QuestionMedia{
				QuestionImageURL: optional(fields[2]),
				AnswerImageURL:   optional(fields[3]),
				QuestionAudioURL: optional(fields[4]),
				AnswerAudioURL:   optional(fields[5]),
			},
		},
	}
	if len(fields) > 9 {
		pq.QuestionVideoURL = optional(fields[9])
	}
	if len(fields) > 10 {
		pq.AnswerVideoURL = optional(fields[10])
	}

	d, ok := models.ParseDifficulty(fields[8])
	if !ok {
		return pq, false
	}
	pq.Difficulty = d
	return pq, true
}

// parseMediaTokens reads "Q:url|AA:url" style references. Unknown prefixes
// are ignored.
func parseMediaTokens(s string) models.QuestionMedia {
	var m models.QuestionMedia
	for _, token := range strings.Split(s, listSeparator) {
		prefix, value, found := strings.Cut(strings.TrimSpace(token), ":")
		if !found {
			continue
		}
		slot, ok := mediaPrefixes[strings.ToUpper(strings.TrimSpace(prefix))]
		if !ok {
			continue
		}
		SetMedia(&m, slot, strings.TrimSpace(value))
	}
	return m
}

// SplitList splits a "|" separated cell, dropping empty entries.
func SplitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, listSeparator) {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
