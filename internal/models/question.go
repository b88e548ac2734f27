package models

import (
	"strings"
	"time"
)

type QuestionDifficulty string

const (
	QuestionEasy   QuestionDifficulty = "easy"
	QuestionMedium QuestionDifficulty = "medium"
	QuestionHard   QuestionDifficulty = "hard"
)

func (v QuestionDifficulty) Valid() bool {
	switch v {
	case QuestionEasy, QuestionMedium, QuestionHard:
		return true
	default:
		return false
	}
}

// Points is the score a question of this difficulty is worth.
func (v QuestionDifficulty) Points() int {
	switch v {
	case QuestionMedium:
		return 400
	case QuestionHard:
		return 600
	default:
		return 200
	}
}

// ParseDifficulty accepts the english and arabic labels used by the import
// sheets. An empty label means easy.
func ParseDifficulty(s string) (QuestionDifficulty, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "easy", "سهل":
		return QuestionEasy, true
	case "medium", "متوسط":
		return QuestionMedium, true
	case "hard", "صعب":
		return QuestionHard, true
	default:
		return "", false
	}
}

type QuestionType string

const (
	QuestionTypeText           QuestionType = "text"
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
)

type QuestionMedia struct {
	QuestionImageURL *string `json:"questionImageUrl"`
	QuestionAudioURL *string `json:"questionAudioUrl"`
	QuestionVideoURL *string `json:"questionVideoUrl"`
	AnswerImageURL   *string `json:"answerImageUrl"`
	AnswerAudioURL   *string `json:"answerAudioUrl"`
	AnswerVideoURL   *string `json:"answerVideoUrl"`
}

// URLs lists the media references that are set.
func (m QuestionMedia) URLs() []string {
	var urls []string
	for _, u := range []*string{m.QuestionImageURL, m.QuestionAudioURL, m.QuestionVideoURL, m.AnswerImageURL, m.AnswerAudioURL, m.AnswerVideoURL} {
		if u != nil && *u != "" {
			urls = append(urls, *u)
		}
	}
	return urls
}

// db
type Question struct {
	ID           string             `json:"id"`
	TrackingID   string             `json:"trackingId"`
	Text         string             `json:"text"`
	Answer       string             `json:"answer"`
	Difficulty   QuestionDifficulty `json:"difficulty"`
	Points       int                `json:"points"`
	Options      []string           `json:"options"`
	Type         QuestionType       `json:"type"`
	CategoryID   string             `json:"categoryId"`
	CategoryName string             `json:"categoryName"`
	QuestionMedia
	Verified    bool       `json:"verified"`
	VerifiedAt  *time.Time `json:"verifiedAt"`
	SubmittedBy *string    `json:"submittedBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// QuestionData is the caller supplied content of a question, shared by direct
// writes, imports and moderation submissions.
type QuestionData struct {
	Text       string             `json:"text"`
	Answer     string             `json:"answer"`
	Difficulty QuestionDifficulty `json:"difficulty"`
	Options    []string           `json:"options"`
	QuestionMedia
}

// ToQuestion fills the derived fields. ID and tracking id are left to the
// caller since they depend on the store.
func (d QuestionData) ToQuestion(category *Category, now time.Time) *Question {
	difficulty := d.Difficulty
	if !difficulty.Valid() {
		difficulty = QuestionEasy
	}

	questionType := QuestionTypeText
	options := d.Options
	if len(options) > 0 {
		questionType = QuestionTypeMultipleChoice
	} else {
		options = []string{}
	}

	q := &Question{
		Text:          strings.TrimSpace(d.Text),
		Answer:        strings.TrimSpace(d.Answer),
		Difficulty:    difficulty,
		Points:        difficulty.Points(),
		Options:       options,
		Type:          questionType,
		QuestionMedia: d.QuestionMedia,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if category != nil {
		q.CategoryID = category.ID
		q.CategoryName = category.Name
	}
	return q
}

func (q *Question) Data() QuestionData {
	return QuestionData{
		Text:          q.Text,
		Answer:        q.Answer,
		Difficulty:    q.Difficulty,
		Options:       q.Options,
		QuestionMedia: q.QuestionMedia,
	}
}

// QuestionPatch carries the editable fields of an existing question.
type QuestionPatch struct {
	Text       *string             `json:"text,omitempty"`
	Answer     *string             `json:"answer,omitempty"`
	Difficulty *QuestionDifficulty `json:"difficulty,omitempty"`
	Options    []string            `json:"options,omitempty"`
}
