package survey

import (
	"context"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"

	"github.com/iic/form-system/model"
)

// The ownership gate. Each resolver loads the target entity, walks up to the
// owning form's creator and compares it against the actor. No entity is ever
// returned to a caller that is not allowed to mutate it.

func formIfCreator(ctx context.Context, q querier, formID uuid.UUID, actor model.User) (model.Form, error) {
	form, err := loadForm(ctx, q, formID)
	if err != nil {
		return model.Form{}, err
	}
	if err := checkCreator(form.CreatorID, actor, "form"); err != nil {
		return model.Form{}, err
	}
	return form, nil
}

func questionIfCreator(ctx context.Context, q querier, questionID uuid.UUID, actor model.User) (model.Question, error) {
	question, err := loadQuestion(ctx, q, questionID)
	if err != nil {
		return model.Question{}, err
	}

	var creatorID uuid.UUID
	err = q.QueryRowContext(ctx, `
		SELECT creator_id FROM form WHERE id = ?`,
		question.FormID,
	).Scan(&creatorID)
	if err != nil {
		return model.Question{}, errors.Wrap(err, "db.load_question.creator")
	}

	if err := checkCreator(creatorID, actor, "question"); err != nil {
		return model.Question{}, err
	}
	return question, nil
}

func optionIfCreator(ctx context.Context, q querier, optionID uuid.UUID, actor model.User) (model.Option, error) {
	option, err := loadOption(ctx, q, optionID)
	if err != nil {
		return model.Option{}, err
	}

	// Option -> Question -> Form -> creator
	var creatorID uuid.UUID
	err = q.QueryRowContext(ctx, `
		SELECT f.creator_id
		FROM question s
		INNER JOIN form f ON (f.id = s.form_id)
		WHERE s.id = ?`,
		option.QuestionID,
	).Scan(&creatorID)
	if err != nil {
		return model.Option{}, errors.Wrap(err, "db.load_option.creator")
	}

	if err := checkCreator(creatorID, actor, "option"); err != nil {
		return model.Option{}, err
	}
	return option, nil
}

func checkCreator(creatorID uuid.UUID, actor model.User, entity string) error {
	if creatorID != actor.ID {
		return ForbiddenError{entity}
	}
	return nil
}
