package models

import "time"

type ImportPhase string

const (
	ImportPhaseParsing            ImportPhase = "parsing"
	ImportPhaseCategoryResolution ImportPhase = "category_resolution"
	ImportPhaseDuplicateDetection ImportPhase = "duplicate_detection"
	ImportPhaseWriting            ImportPhase = "writing"
	ImportPhaseSummarizing        ImportPhase = "summarizing"
	ImportPhaseDone               ImportPhase = "done"
)

type ImportProgress struct {
	RunID     string      `json:"runId" msgpack:"run_id"`
	Phase     ImportPhase `json:"phase" msgpack:"phase"`
	Processed int         `json:"processed" msgpack:"processed"`
	Total     int         `json:"total" msgpack:"total"`
	UpdatedAt time.Time   `json:"updatedAt" msgpack:"updated_at"`
}

type AddedQuestion struct {
	ID           string `json:"id"`
	TrackingID   string `json:"trackingId"`
	Text         string `json:"text"`
	Answer       string `json:"answer"`
	CategoryID   string `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	Similar      bool   `json:"similar"`
}

type SkippedQuestion struct {
	Text       string `json:"text"`
	Answer     string `json:"answer"`
	CategoryID string `json:"categoryId"`
	Reason     string `json:"reason"`
	ExistingID string `json:"existingId,omitempty"`
	Error      string `json:"error,omitempty"`
}

const (
	SkipReasonDuplicate  = "duplicate"
	SkipReasonWriteError = "write_error"
)

type ImportSummary struct {
	RunID                 string            `json:"runId"`
	Total                 int               `json:"total"`
	Added                 int               `json:"added"`
	DuplicatesSkipped     int               `json:"duplicatesSkipped"`
	SimilarQuestionsAdded int               `json:"similarQuestionsAdded"`
	CreatedCategories     []string          `json:"createdCategories"`
	Errors                []string          `json:"errors"`
	AddedQuestions        []AddedQuestion   `json:"addedQuestions"`
	SkippedQuestions      []SkippedQuestion `json:"skippedQuestions"`
}

func NewImportSummary(runID string) *ImportSummary {
	return &ImportSummary{
		RunID:             runID,
		CreatedCategories: []string{},
		Errors:            []string{},
		AddedQuestions:    []AddedQuestion{},
		SkippedQuestions:  []SkippedQuestion{},
	}
}
