package models

import "time"

type PendingStatus string

const (
	PendingStatusPending  PendingStatus = "pending"
	PendingStatusApproved PendingStatus = "approved"
	PendingStatusDenied   PendingStatus = "denied"
)

type PendingQuestion struct {
	ID         string             `json:"id"`
	CategoryID string             `json:"categoryId"`
	Text       string             `json:"text"`
	Answer     string             `json:"answer"`
	Difficulty QuestionDifficulty `json:"difficulty"`
	Options    []string           `json:"options"`
	QuestionMedia
	Status       PendingStatus `json:"status"`
	SubmittedBy  string        `json:"submittedBy"`
	SubmittedAt  time.Time     `json:"submittedAt"`
	ApprovedAt   *time.Time    `json:"approvedAt"`
	QuestionID   *string       `json:"questionId"`
	DeniedAt     *time.Time    `json:"deniedAt"`
	DenialReason *string       `json:"denialReason"`
}

func (p *PendingQuestion) Data() QuestionData {
	return QuestionData{
		Text:          p.Text,
		Answer:        p.Answer,
		Difficulty:    p.Difficulty,
		Options:       p.Options,
		QuestionMedia: p.QuestionMedia,
	}
}
