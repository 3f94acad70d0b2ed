package survey

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"

	"github.com/iic/form-system/model"
)

// Questions manages the lifecycle of questions within a form. Option cascades
// are delegated to the option layer.
type Questions struct {
	db *sql.DB
}

func NewQuestions(db *sql.DB) *Questions {
	return &Questions{db}
}

// newQuestion builds a question and its child options without persisting
// anything. Used here and by the bulk form construction path.
func newQuestion(spec QuestionSpec, formID uuid.UUID) (model.Question, error) {
	questionType, err := model.ParseQuestionType(spec.Type)
	if err != nil {
		return model.Question{}, ValidationError{err.Error()}
	}
	if len(spec.Options) > 0 && !questionType.HasOptions() {
		return model.Question{}, ValidationError{"question type " + spec.Type + " does not carry options"}
	}

	question := model.Question{
		ID:           uuid.Must(uuid.NewV4()),
		FormID:       formID,
		Text:         spec.Text,
		Type:         questionType,
		Required:     spec.Required,
		Active:       true,
		DisplayOrder: spec.DisplayOrder,
	}
	orders := make(map[int]bool, len(spec.Options))
	for _, optionSpec := range spec.Options {
		if orders[optionSpec.DisplayOrder] {
			return model.Question{}, DisplayOrderConflictError{"option", optionSpec.DisplayOrder}
		}
		orders[optionSpec.DisplayOrder] = true
		question.Options = append(question.Options, newOption(optionSpec, question.ID))
	}
	return question, nil
}

func insertQuestion(ctx context.Context, q querier, question model.Question) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO question (id, form_id, text, type, required, active, display_order)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		question.ID, question.FormID, question.Text, question.Type,
		question.Required, question.Active, question.DisplayOrder,
	)
	if err != nil {
		return errors.Wrap(err, "db.insert_question")
	}
	for _, option := range question.Options {
		if err = insertOption(ctx, q, option); err != nil {
			return err
		}
	}
	return nil
}

func (s *Questions) Get(ctx context.Context, id uuid.UUID) (model.Question, error) {
	question, err := loadQuestion(ctx, s.db, id)
	if err != nil {
		return model.Question{}, err
	}
	question.Options, err = loadQuestionOptions(ctx, s.db, id)
	return question, err
}

// Add persists a new question under the form, provided the actor owns it and
// the display order is free among the form's active questions.
func (s *Questions) Add(ctx context.Context, formID uuid.UUID, spec QuestionSpec, actor model.User) (model.Question, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Question{}, errors.Wrap(err, "db.begin_tx")
	}
	defer tx.Rollback()

	form, err := formIfCreator(ctx, tx, formID, actor)
	if err != nil {
		return model.Question{}, err
	}

	var taken bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM question
			WHERE form_id = ? AND display_order = ? AND active
		)`,
		formID, spec.DisplayOrder,
	).Scan(&taken)
	if err != nil {
		return model.Question{}, errors.Wrap(err, "db.check_question_order")
	}
	if taken {
		return model.Question{}, DisplayOrderConflictError{"question", spec.DisplayOrder}
	}

	question, err := newQuestion(spec, form.ID)
	if err != nil {
		return model.Question{}, err
	}
	if err = insertQuestion(ctx, tx, question); err != nil {
		return model.Question{}, err
	}
	if err = touchForm(ctx, tx, form.ID, time.Now()); err != nil {
		return model.Question{}, err
	}

	return question, errors.Wrap(tx.Commit(), "db.commit")
}

// Edit applies a non-empty text and a non-nil required flag from the patch.
func (s *Questions) Edit(ctx context.Context, id uuid.UUID, patch QuestionPatch, actor model.User) (model.Question, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Question{}, errors.Wrap(err, "db.begin_tx")
	}
	defer tx.Rollback()

	question, err := questionIfCreator(ctx, tx, id, actor)
	if err != nil {
		return model.Question{}, err
	}

	if patch.Text != "" {
		question.Text = patch.Text
	}
	if patch.Required != nil {
		question.Required = *patch.Required
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE question SET text = ?, required = ? WHERE id = ?`,
		question.Text, question.Required, id,
	)
	if err != nil {
		return model.Question{}, errors.Wrap(err, "db.update_question")
	}
	if err = touchForm(ctx, tx, question.FormID, time.Now()); err != nil {
		return model.Question{}, err
	}

	question.Options, err = loadQuestionOptions(ctx, tx, id)
	if err != nil {
		return model.Question{}, err
	}
	return question, errors.Wrap(tx.Commit(), "db.commit")
}

func (s *Questions) ToggleActive(ctx context.Context, id uuid.UUID, actor model.User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "db.begin_tx")
	}
	defer tx.Rollback()

	question, err := questionIfCreator(ctx, tx, id, actor)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE question SET active = NOT active WHERE id = ?`,
		id,
	)
	if err != nil {
		return errors.Wrap(err, "db.toggle_question")
	}
	if err = touchForm(ctx, tx, question.FormID, time.Now()); err != nil {
		return err
	}

	return errors.Wrap(tx.Commit(), "db.commit")
}

// Reorder assigns display order i+1 to the i-th listed question that belongs
// to the form. Same contract as option reorder.
func (s *Questions) Reorder(ctx context.Context, formID uuid.UUID, orderedIDs []uuid.UUID, actor model.User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "db.begin_tx")
	}
	defer tx.Rollback()

	form, err := formIfCreator(ctx, tx, formID, actor)
	if err != nil {
		return err
	}

	questions, err := loadFormQuestions(ctx, tx, formID)
	if err != nil {
		return err
	}
	owned := make(map[uuid.UUID]bool, len(questions))
	for _, question := range questions {
		owned[question.ID] = true
	}

	for i, id := range orderedIDs {
		if !owned[id] {
			continue
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE question SET display_order = ? WHERE id = ?`,
			i+1, id,
		)
		if err != nil {
			return errors.Wrap(err, "db.reorder_questions")
		}
	}

	if err = touchForm(ctx, tx, form.ID, time.Now()); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "db.commit")
}

// HardDelete removes the question and its options. Blocked while the owning
// form has submissions: recorded answers would be orphaned.
func (s *Questions) HardDelete(ctx context.Context, id uuid.UUID, actor model.User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "db.begin_tx")
	}
	defer tx.Rollback()

	question, err := questionIfCreator(ctx, tx, id, actor)
	if err != nil {
		return err
	}

	n, err := countSubmissions(ctx, tx, question.FormID)
	if err != nil {
		return err
	}
	if n > 0 {
		return ConflictError{"cannot delete this question: submissions exist for its form"}
	}

	if err = batchDeleteOptions(ctx, tx, id); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		DELETE FROM question WHERE id = ?`,
		id,
	)
	if err != nil {
		return errors.Wrap(err, "db.delete_question")
	}
	if err = touchForm(ctx, tx, question.FormID, time.Now()); err != nil {
		return err
	}

	return errors.Wrap(tx.Commit(), "db.commit")
}

// batchDeleteQuestions removes every question of the form, options first.
// Cascade step only: the caller has gate-checked the form and verified there
// are no submissions.
func batchDeleteQuestions(ctx context.Context, q querier, formID uuid.UUID) error {
	_, err := q.ExecContext(ctx, `
		DELETE FROM question_option
		WHERE question_id IN (SELECT id FROM question WHERE form_id = ?)`,
		formID,
	)
	if err != nil {
		return errors.Wrap(err, "db.delete_options")
	}
	_, err = q.ExecContext(ctx, `
		DELETE FROM question WHERE form_id = ?`,
		formID,
	)
	return errors.Wrap(err, "db.delete_questions")
}
