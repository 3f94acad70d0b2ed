package model

import "fmt"

type QuestionType string

const (
	ShortAnswer    QuestionType = "SHORT_ANSWER"
	Paragraph      QuestionType = "PARAGRAPH"
	Dropdown       QuestionType = "DROPDOWN"
	Checkbox       QuestionType = "CHECKBOX"
	MultipleChoice QuestionType = "MULTIPLE_CHOICE"
	Likert         QuestionType = "LIKERT"
)

func ParseQuestionType(s string) (QuestionType, error) {
	switch t := QuestionType(s); t {
	case ShortAnswer, Paragraph, Dropdown, Checkbox, MultipleChoice, Likert:
		return t, nil
	}
	return "", fmt.Errorf("unknown question type %q", s)
}

// HasOptions reports whether questions of this type may carry options.
// Free-text types never do.
func (t QuestionType) HasOptions() bool {
	switch t {
	case Dropdown, Checkbox, MultipleChoice, Likert:
		return true
	}
	return false
}
