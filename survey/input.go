package survey

import "github.com/gofrs/uuid"

// Request payloads, decoded by the controllers and handed to the services
// untouched.

type FormSpec struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Questions   []QuestionSpec `json:"questions"`
}

type QuestionSpec struct {
	Text         string       `json:"text"`
	Type         string       `json:"type"`
	Required     bool         `json:"required"`
	DisplayOrder int          `json:"displayOrder"`
	Options      []OptionSpec `json:"options"`
}

type OptionSpec struct {
	Text         string `json:"text"`
	DisplayOrder int    `json:"displayOrder"`
}

// FormPatch edits title and description. Empty fields are left alone.
type FormPatch struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// QuestionPatch edits text and the required flag. An empty text and a nil
// required are left alone.
type QuestionPatch struct {
	Text     string `json:"text"`
	Required *bool  `json:"required"`
}

type SubmissionSpec struct {
	FormID  uuid.UUID    `json:"formId"`
	Answers []AnswerSpec `json:"answers"`
}

type AnswerSpec struct {
	QuestionID uuid.UUID `json:"questionId"`
	Value      string    `json:"value"`
}
