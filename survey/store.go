package survey

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"

	"github.com/iic/form-system/model"
)

// querier is satisfied by both *sql.DB and *sql.Tx, so loaders can run inside
// the transaction of the calling operation.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func loadForm(ctx context.Context, q querier, id uuid.UUID) (form model.Form, err error) {
	err = q.QueryRowContext(ctx, `
		SELECT f.id, f.title, f.description, f.active,
			f.created_at, f.updated_at, f.expires_at,
			f.creator_id, u.username
		FROM form f
		INNER JOIN user u ON (u.id = f.creator_id)
		WHERE f.id = ?`,
		id,
	).Scan(
		&form.ID, &form.Title, &form.Description, &form.Active,
		&form.CreatedAt, &form.UpdatedAt, &form.ExpiresAt,
		&form.CreatorID, &form.CreatorName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		err = NotFoundError{"form", id}
	} else if err != nil {
		err = errors.Wrap(err, "db.load_form")
	}
	return
}

func loadQuestion(ctx context.Context, q querier, id uuid.UUID) (question model.Question, err error) {
	err = q.QueryRowContext(ctx, `
		SELECT id, form_id, text, type, required, active, display_order
		FROM question
		WHERE id = ?`,
		id,
	).Scan(
		&question.ID, &question.FormID, &question.Text, &question.Type,
		&question.Required, &question.Active, &question.DisplayOrder,
	)
	if errors.Is(err, sql.ErrNoRows) {
		err = NotFoundError{"question", id}
	} else if err != nil {
		err = errors.Wrap(err, "db.load_question")
	}
	return
}

func loadOption(ctx context.Context, q querier, id uuid.UUID) (option model.Option, err error) {
	err = q.QueryRowContext(ctx, `
		SELECT id, question_id, text, display_order, active
		FROM question_option
		WHERE id = ?`,
		id,
	).Scan(&option.ID, &option.QuestionID, &option.Text, &option.DisplayOrder, &option.Active)
	if errors.Is(err, sql.ErrNoRows) {
		err = NotFoundError{"option", id}
	} else if err != nil {
		err = errors.Wrap(err, "db.load_option")
	}
	return
}

// loadFormQuestions returns the form's questions in display order, each with
// its options in display order.
func loadFormQuestions(ctx context.Context, q querier, formID uuid.UUID) ([]model.Question, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, form_id, text, type, required, active, display_order
		FROM question
		WHERE form_id = ?
		ORDER BY display_order, id`,
		formID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "db.load_questions")
	}
	defer rows.Close()

	questions := []model.Question{}
	index := map[uuid.UUID]int{}
	for rows.Next() {
		question := model.Question{}
		err = rows.Scan(
			&question.ID, &question.FormID, &question.Text, &question.Type,
			&question.Required, &question.Active, &question.DisplayOrder,
		)
		if err != nil {
			return nil, errors.Wrap(err, "db.load_questions.scan")
		}
		index[question.ID] = len(questions)
		questions = append(questions, question)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "db.load_questions")
	}

	optRows, err := q.QueryContext(ctx, `
		SELECT o.id, o.question_id, o.text, o.display_order, o.active
		FROM question_option o
		INNER JOIN question s ON (s.id = o.question_id)
		WHERE s.form_id = ?
		ORDER BY o.question_id, o.display_order, o.id`,
		formID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "db.load_options")
	}
	defer optRows.Close()

	for optRows.Next() {
		option := model.Option{}
		err = optRows.Scan(&option.ID, &option.QuestionID, &option.Text, &option.DisplayOrder, &option.Active)
		if err != nil {
			return nil, errors.Wrap(err, "db.load_options.scan")
		}
		if i, ok := index[option.QuestionID]; ok {
			questions[i].Options = append(questions[i].Options, option)
		}
	}
	if err = optRows.Err(); err != nil {
		return nil, errors.Wrap(err, "db.load_options")
	}

	return questions, nil
}

func loadQuestionOptions(ctx context.Context, q querier, questionID uuid.UUID) ([]model.Option, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, question_id, text, display_order, active
		FROM question_option
		WHERE question_id = ?
		ORDER BY display_order, id`,
		questionID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "db.load_options")
	}
	defer rows.Close()

	options := []model.Option{}
	for rows.Next() {
		option := model.Option{}
		err = rows.Scan(&option.ID, &option.QuestionID, &option.Text, &option.DisplayOrder, &option.Active)
		if err != nil {
			return nil, errors.Wrap(err, "db.load_options.scan")
		}
		options = append(options, option)
	}
	return options, errors.Wrap(rows.Err(), "db.load_options")
}

// touchForm refreshes the form's updatedAt. Every mutation of a form or any
// of its descendants goes through here.
func touchForm(ctx context.Context, q querier, formID uuid.UUID, now time.Time) error {
	_, err := q.ExecContext(ctx, `
		UPDATE form SET updated_at = ? WHERE id = ?`,
		now, formID,
	)
	return errors.Wrap(err, "db.touch_form")
}

func countSubmissions(ctx context.Context, q querier, formID uuid.UUID) (n int, err error) {
	err = q.QueryRowContext(ctx, `
		SELECT count(*) FROM submission WHERE form_id = ?`,
		formID,
	).Scan(&n)
	return n, errors.Wrap(err, "db.count_submissions")
}
