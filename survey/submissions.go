package survey

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"

	"github.com/iic/form-system/model"
)

// Submissions records respondent submissions against forms and validates
// them on the way in. Submissions are immutable once created, except for the
// soft-delete flag.
type Submissions struct {
	db *sql.DB
}

func NewSubmissions(db *sql.DB) *Submissions {
	return &Submissions{db}
}

// Create validates the form state, maps the submitted answers onto the
// form's active questions and persists the submission with its answers in
// one transaction.
//
// The respondent is optional: anonymous submissions are an expected path.
// Answers to unknown or inactive questions are dropped. A blank answer to a
// required question fails the whole submission; a blank answer to an
// optional question is simply not stored.
func (s *Submissions) Create(ctx context.Context, spec SubmissionSpec, respondent *model.User) (model.Submission, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Submission{}, errors.Wrap(err, "db.begin_tx")
	}
	defer tx.Rollback()

	form, err := loadForm(ctx, tx, spec.FormID)
	if err != nil {
		return model.Submission{}, err
	}
	if !form.Active {
		return model.Submission{}, ErrFormInactive
	}
	if form.ExpiresAt != nil && form.ExpiresAt.Before(time.Now()) {
		return model.Submission{}, ErrFormExpired
	}

	questions, err := loadFormQuestions(ctx, tx, form.ID)
	if err != nil {
		return model.Submission{}, err
	}
	active := make(map[uuid.UUID]model.Question, len(questions))
	for _, question := range questions {
		if question.Active {
			active[question.ID] = question
		}
	}

	submission := model.Submission{
		ID:          uuid.Must(uuid.NewV4()),
		FormID:      form.ID,
		FormTitle:   form.Title,
		SubmittedAt: time.Now(),
	}
	if respondent != nil {
		id := respondent.ID
		submission.RespondentID = &id
		submission.Respondent = respondent.Username
	}

	for _, answerSpec := range spec.Answers {
		question, ok := active[answerSpec.QuestionID]
		if !ok {
			continue
		}

		blank := strings.TrimSpace(answerSpec.Value) == ""
		if question.Required && blank {
			return model.Submission{}, RequiredAnswerError{question.Text}
		}
		if blank {
			continue
		}

		submission.Answers = append(submission.Answers, model.Answer{
			ID:           uuid.Must(uuid.NewV4()),
			SubmissionID: submission.ID,
			QuestionID:   question.ID,
			Value:        answerSpec.Value,
		})
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO submission (id, form_id, submitted_at, deleted, respondent_id)
		VALUES (?, ?, ?, FALSE, ?)`,
		submission.ID, submission.FormID, submission.SubmittedAt, submission.RespondentID,
	)
	if err != nil {
		return model.Submission{}, errors.Wrap(err, "db.insert_submission")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO answer (id, submission_id, question_id, value)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return model.Submission{}, errors.Wrap(err, "db.insert_answers.prepare")
	}
	defer stmt.Close()

	for _, answer := range submission.Answers {
		_, err = stmt.ExecContext(ctx, answer.ID, answer.SubmissionID, answer.QuestionID, answer.Value)
		if err != nil {
			return model.Submission{}, errors.Wrap(err, "db.insert_answers")
		}
	}

	return submission, errors.Wrap(tx.Commit(), "db.commit")
}

func (s *Submissions) Get(ctx context.Context, id uuid.UUID) (model.Submission, error) {
	submission := model.Submission{}
	var respondent sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT s.id, s.form_id, f.title, s.submitted_at, s.deleted, s.respondent_id, u.username
		FROM submission s
		INNER JOIN form f ON (f.id = s.form_id)
		LEFT OUTER JOIN user u ON (u.id = s.respondent_id)
		WHERE s.id = ?`,
		id,
	).Scan(
		&submission.ID, &submission.FormID, &submission.FormTitle,
		&submission.SubmittedAt, &submission.Deleted,
		&submission.RespondentID, &respondent,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Submission{}, NotFoundError{"submission", id}
	}
	if err != nil {
		return model.Submission{}, errors.Wrap(err, "db.load_submission")
	}
	submission.Respondent = respondent.String

	submission.Answers, err = s.loadAnswers(ctx, id)
	return submission, err
}

func (s *Submissions) ListByForm(ctx context.Context, formID uuid.UUID) ([]model.Submission, error) {
	return s.list(ctx, `WHERE s.form_id = ?`, formID)
}

func (s *Submissions) ListByRespondent(ctx context.Context, respondentID uuid.UUID) ([]model.Submission, error) {
	return s.list(ctx, `WHERE s.respondent_id = ?`, respondentID)
}

func (s *Submissions) ListAll(ctx context.Context) ([]model.Submission, error) {
	return s.list(ctx, "")
}

// Count reports how many submissions a form has. The lifecycle managers use
// this to decide whether a cascading delete is safe.
func (s *Submissions) Count(ctx context.Context, formID uuid.UUID) (int, error) {
	return countSubmissions(ctx, s.db, formID)
}

// SoftDelete flags the submission without removing any data.
func (s *Submissions) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE submission SET deleted = TRUE WHERE id = ?`,
		id,
	)
	if err != nil {
		return errors.Wrap(err, "db.soft_delete_submission")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "db.soft_delete_submission.verify")
	}
	if n < 1 {
		return NotFoundError{"submission", id}
	}
	return nil
}

// HardDelete removes the submission and its answers in one transaction.
func (s *Submissions) HardDelete(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "db.begin_tx")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM answer WHERE submission_id = ?`,
		id,
	)
	if err != nil {
		return errors.Wrap(err, "db.delete_answers")
	}
	res, err := tx.ExecContext(ctx, `
		DELETE FROM submission WHERE id = ?`,
		id,
	)
	if err != nil {
		return errors.Wrap(err, "db.delete_submission")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "db.delete_submission.verify")
	}
	if n < 1 {
		return NotFoundError{"submission", id}
	}

	return errors.Wrap(tx.Commit(), "db.commit")
}

func (s *Submissions) list(ctx context.Context, where string, args ...any) ([]model.Submission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.form_id, f.title, s.submitted_at, s.deleted, s.respondent_id, u.username
		FROM submission s
		INNER JOIN form f ON (f.id = s.form_id)
		LEFT OUTER JOIN user u ON (u.id = s.respondent_id) `+where+`
		ORDER BY s.submitted_at, s.id`,
		args...,
	)
	if err != nil {
		return nil, errors.Wrap(err, "db.list_submissions")
	}
	defer rows.Close()

	submissions := []model.Submission{}
	for rows.Next() {
		submission := model.Submission{}
		var respondent sql.NullString
		err = rows.Scan(
			&submission.ID, &submission.FormID, &submission.FormTitle,
			&submission.SubmittedAt, &submission.Deleted,
			&submission.RespondentID, &respondent,
		)
		if err != nil {
			return nil, errors.Wrap(err, "db.list_submissions.scan")
		}
		submission.Respondent = respondent.String
		submissions = append(submissions, submission)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "db.list_submissions")
	}

	for i := range submissions {
		submissions[i].Answers, err = s.loadAnswers(ctx, submissions[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return submissions, nil
}

func (s *Submissions) loadAnswers(ctx context.Context, submissionID uuid.UUID) ([]model.Answer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, submission_id, question_id, value
		FROM answer
		WHERE submission_id = ?
		ORDER BY id`,
		submissionID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "db.load_answers")
	}
	defer rows.Close()

	answers := []model.Answer{}
	for rows.Next() {
		answer := model.Answer{}
		err = rows.Scan(&answer.ID, &answer.SubmissionID, &answer.QuestionID, &answer.Value)
		if err != nil {
			return nil, errors.Wrap(err, "db.load_answers.scan")
		}
		answers = append(answers, answer)
	}
	return answers, errors.Wrap(rows.Err(), "db.load_answers")
}
