package survey

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"

	"github.com/iic/form-system/model"
)

// Options manages the lifecycle of options within a question.
type Options struct {
	db *sql.DB
}

func NewOptions(db *sql.DB) *Options {
	return &Options{db}
}

// newOption builds an option without persisting it. Used here and by the
// bulk question/form construction paths.
func newOption(spec OptionSpec, questionID uuid.UUID) model.Option {
	return model.Option{
		ID:           uuid.Must(uuid.NewV4()),
		QuestionID:   questionID,
		Text:         spec.Text,
		DisplayOrder: spec.DisplayOrder,
		Active:       true,
	}
}

func insertOption(ctx context.Context, q querier, option model.Option) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO question_option (id, question_id, text, display_order, active)
		VALUES (?, ?, ?, ?, ?)`,
		option.ID, option.QuestionID, option.Text, option.DisplayOrder, option.Active,
	)
	return errors.Wrap(err, "db.insert_option")
}

func (s *Options) Get(ctx context.Context, id uuid.UUID) (model.Option, error) {
	return loadOption(ctx, s.db, id)
}

// Add persists a new option under the question, provided the actor owns it,
// the question type carries options, and the display order is free among the
// question's active options.
func (s *Options) Add(ctx context.Context, questionID uuid.UUID, spec OptionSpec, actor model.User) (model.Option, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Option{}, errors.Wrap(err, "db.begin_tx")
	}
	defer tx.Rollback()

	question, err := questionIfCreator(ctx, tx, questionID, actor)
	if err != nil {
		return model.Option{}, err
	}
	if !question.Type.HasOptions() {
		return model.Option{}, ValidationError{"question type " + string(question.Type) + " does not carry options"}
	}

	var taken bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM question_option
			WHERE question_id = ? AND display_order = ? AND active
		)`,
		questionID, spec.DisplayOrder,
	).Scan(&taken)
	if err != nil {
		return model.Option{}, errors.Wrap(err, "db.check_option_order")
	}
	if taken {
		return model.Option{}, DisplayOrderConflictError{"option", spec.DisplayOrder}
	}

	option := newOption(spec, questionID)
	if err = insertOption(ctx, tx, option); err != nil {
		return model.Option{}, err
	}
	if err = touchForm(ctx, tx, question.FormID, time.Now()); err != nil {
		return model.Option{}, err
	}

	return option, errors.Wrap(tx.Commit(), "db.commit")
}

// Edit replaces the option text. An empty text is a no-op.
func (s *Options) Edit(ctx context.Context, id uuid.UUID, text string, actor model.User) (model.Option, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Option{}, errors.Wrap(err, "db.begin_tx")
	}
	defer tx.Rollback()

	option, err := optionIfCreator(ctx, tx, id, actor)
	if err != nil {
		return model.Option{}, err
	}

	if text != "" {
		option.Text = text
		_, err = tx.ExecContext(ctx, `
			UPDATE question_option SET text = ? WHERE id = ?`,
			text, id,
		)
		if err != nil {
			return model.Option{}, errors.Wrap(err, "db.update_option")
		}
		if err = touchFormOfQuestion(ctx, tx, option.QuestionID); err != nil {
			return model.Option{}, err
		}
	}

	return option, errors.Wrap(tx.Commit(), "db.commit")
}

func (s *Options) ToggleActive(ctx context.Context, id uuid.UUID, actor model.User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "db.begin_tx")
	}
	defer tx.Rollback()

	option, err := optionIfCreator(ctx, tx, id, actor)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE question_option SET active = NOT active WHERE id = ?`,
		id,
	)
	if err != nil {
		return errors.Wrap(err, "db.toggle_option")
	}
	if err = touchFormOfQuestion(ctx, tx, option.QuestionID); err != nil {
		return err
	}

	return errors.Wrap(tx.Commit(), "db.commit")
}

// Reorder assigns display order i+1 to the i-th listed option that belongs to
// the question. Unknown ids are ignored; options left out keep their order,
// so callers should send the complete ordering.
func (s *Options) Reorder(ctx context.Context, questionID uuid.UUID, orderedIDs []uuid.UUID, actor model.User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "db.begin_tx")
	}
	defer tx.Rollback()

	question, err := questionIfCreator(ctx, tx, questionID, actor)
	if err != nil {
		return err
	}

	options, err := loadQuestionOptions(ctx, tx, questionID)
	if err != nil {
		return err
	}
	owned := make(map[uuid.UUID]bool, len(options))
	for _, option := range options {
		owned[option.ID] = true
	}

	for i, id := range orderedIDs {
		if !owned[id] {
			continue
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE question_option SET display_order = ? WHERE id = ?`,
			i+1, id,
		)
		if err != nil {
			return errors.Wrap(err, "db.reorder_options")
		}
	}

	if err = touchForm(ctx, tx, question.FormID, time.Now()); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "db.commit")
}

func (s *Options) HardDelete(ctx context.Context, id uuid.UUID, actor model.User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "db.begin_tx")
	}
	defer tx.Rollback()

	option, err := optionIfCreator(ctx, tx, id, actor)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM question_option WHERE id = ?`,
		id,
	)
	if err != nil {
		return errors.Wrap(err, "db.delete_option")
	}
	if err = touchFormOfQuestion(ctx, tx, option.QuestionID); err != nil {
		return err
	}

	return errors.Wrap(tx.Commit(), "db.commit")
}

// batchDeleteOptions removes every option of the question. Cascade step only:
// the caller has already gate-checked the parent.
func batchDeleteOptions(ctx context.Context, q querier, questionID uuid.UUID) error {
	_, err := q.ExecContext(ctx, `
		DELETE FROM question_option WHERE question_id = ?`,
		questionID,
	)
	return errors.Wrap(err, "db.delete_options")
}

func touchFormOfQuestion(ctx context.Context, q querier, questionID uuid.UUID) error {
	_, err := q.ExecContext(ctx, `
		UPDATE form SET updated_at = ?
		WHERE id = (SELECT form_id FROM question WHERE id = ?)`,
		time.Now(), questionID,
	)
	return errors.Wrap(err, "db.touch_form")
}
