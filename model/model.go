package model

import (
	"time"

	"github.com/gofrs/uuid"
)

type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

type Form struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	CreatorID   uuid.UUID  `json:"creatorId"`
	CreatorName string     `json:"creatorName,omitempty"`
	Questions   []Question `json:"questions"`
}

type Question struct {
	ID           uuid.UUID    `json:"id"`
	FormID       uuid.UUID    `json:"formId"`
	Text         string       `json:"text"`
	Type         QuestionType `json:"type"`
	Required     bool         `json:"required"`
	Active       bool         `json:"active"`
	DisplayOrder int          `json:"displayOrder"`
	Options      []Option     `json:"options,omitempty"`
}

type Option struct {
	ID           uuid.UUID `json:"id"`
	QuestionID   uuid.UUID `json:"questionId"`
	Text         string    `json:"text"`
	DisplayOrder int       `json:"displayOrder"`
	Active       bool      `json:"active"`
}

type Submission struct {
	ID           uuid.UUID  `json:"id"`
	FormID       uuid.UUID  `json:"formId"`
	FormTitle    string     `json:"formTitle,omitempty"`
	SubmittedAt  time.Time  `json:"submittedAt"`
	Deleted      bool       `json:"deleted,omitempty"`
	RespondentID *uuid.UUID `json:"respondentId,omitempty"`
	Respondent   string     `json:"respondent,omitempty"`
	Answers      []Answer   `json:"answers"`
}

// Answer.Value holds whatever the client sent: free text, an option id, or a
// serialized list of option ids for multi-select questions. The encoding is
// the client's business.
type Answer struct {
	ID           uuid.UUID `json:"id"`
	SubmissionID uuid.UUID `json:"submissionId"`
	QuestionID   uuid.UUID `json:"questionId"`
	Value        string    `json:"value"`
}
