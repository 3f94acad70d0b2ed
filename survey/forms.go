package survey

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"

	"github.com/iic/form-system/model"
)

// Forms is the top-level lifecycle manager: it builds whole form trees,
// edits form state and drives cascading deletes down through questions and
// options.
type Forms struct {
	db *sql.DB
}

func NewForms(db *sql.DB) *Forms {
	return &Forms{db}
}

// Create builds the full question/option tree in memory and persists it in a
// single transaction, owned by the actor.
func (s *Forms) Create(ctx context.Context, spec FormSpec, actor model.User) (model.Form, error) {
	now := time.Now()
	form := model.Form{
		ID:          uuid.Must(uuid.NewV4()),
		Title:       spec.Title,
		Description: spec.Description,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatorID:   actor.ID,
		CreatorName: actor.Username,
	}
	orders := make(map[int]bool, len(spec.Questions))
	for _, questionSpec := range spec.Questions {
		if orders[questionSpec.DisplayOrder] {
			return model.Form{}, DisplayOrderConflictError{"question", questionSpec.DisplayOrder}
		}
		orders[questionSpec.DisplayOrder] = true

		question, err := newQuestion(questionSpec, form.ID)
		if err != nil {
			return model.Form{}, err
		}
		form.Questions = append(form.Questions, question)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Form{}, errors.Wrap(err, "db.begin_tx")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO form (id, title, description, active, created_at, updated_at, expires_at, creator_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		form.ID, form.Title, form.Description, form.Active,
		form.CreatedAt, form.UpdatedAt, form.ExpiresAt, form.CreatorID,
	)
	if err != nil {
		return model.Form{}, errors.Wrap(err, "db.insert_form")
	}
	for _, question := range form.Questions {
		if err = insertQuestion(ctx, tx, question); err != nil {
			return model.Form{}, err
		}
	}

	return form, errors.Wrap(tx.Commit(), "db.commit")
}

// Edit applies non-empty title and description fields from the patch.
func (s *Forms) Edit(ctx context.Context, id uuid.UUID, patch FormPatch, actor model.User) (model.Form, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Form{}, errors.Wrap(err, "db.begin_tx")
	}
	defer tx.Rollback()

	form, err := formIfCreator(ctx, tx, id, actor)
	if err != nil {
		return model.Form{}, err
	}

	if patch.Title != "" {
		form.Title = patch.Title
	}
	if patch.Description != "" {
		form.Description = patch.Description
	}
	form.UpdatedAt = time.Now()

	_, err = tx.ExecContext(ctx, `
		UPDATE form SET title = ?, description = ?, updated_at = ? WHERE id = ?`,
		form.Title, form.Description, form.UpdatedAt, id,
	)
	if err != nil {
		return model.Form{}, errors.Wrap(err, "db.update_form")
	}

	return form, errors.Wrap(tx.Commit(), "db.commit")
}

// ToggleActive flips the active flag. This doubles as the form's soft delete.
func (s *Forms) ToggleActive(ctx context.Context, id uuid.UUID, actor model.User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "db.begin_tx")
	}
	defer tx.Rollback()

	if _, err = formIfCreator(ctx, tx, id, actor); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE form SET active = NOT active, updated_at = ? WHERE id = ?`,
		time.Now(), id,
	)
	if err != nil {
		return errors.Wrap(err, "db.toggle_form")
	}

	return errors.Wrap(tx.Commit(), "db.commit")
}

// SetExpiry sets or clears the expiry timestamp.
func (s *Forms) SetExpiry(ctx context.Context, id uuid.UUID, expiresAt *time.Time, actor model.User) (model.Form, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Form{}, errors.Wrap(err, "db.begin_tx")
	}
	defer tx.Rollback()

	form, err := formIfCreator(ctx, tx, id, actor)
	if err != nil {
		return model.Form{}, err
	}

	form.ExpiresAt = expiresAt
	form.UpdatedAt = time.Now()
	_, err = tx.ExecContext(ctx, `
		UPDATE form SET expires_at = ?, updated_at = ? WHERE id = ?`,
		form.ExpiresAt, form.UpdatedAt, id,
	)
	if err != nil {
		return model.Form{}, errors.Wrap(err, "db.update_form_expiry")
	}

	return form, errors.Wrap(tx.Commit(), "db.commit")
}

// HardDelete removes the form with its whole question/option tree, top-down
// in one transaction. Blocked while submissions exist.
func (s *Forms) HardDelete(ctx context.Context, id uuid.UUID, actor model.User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "db.begin_tx")
	}
	defer tx.Rollback()

	form, err := formIfCreator(ctx, tx, id, actor)
	if err != nil {
		return err
	}

	n, err := countSubmissions(ctx, tx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ConflictError{fmt.Sprintf(
			"cannot hard delete this form because it has %d submissions; deactivate it instead, or delete the submissions first", n)}
	}

	if err = batchDeleteQuestions(ctx, tx, form.ID); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		DELETE FROM form WHERE id = ?`,
		id,
	)
	if err != nil {
		return errors.Wrap(err, "db.delete_form")
	}

	return errors.Wrap(tx.Commit(), "db.commit")
}

// Get returns the form with its questions and options fully materialized.
func (s *Forms) Get(ctx context.Context, id uuid.UUID) (model.Form, error) {
	form, err := loadForm(ctx, s.db, id)
	if err != nil {
		return model.Form{}, err
	}
	form.Questions, err = loadFormQuestions(ctx, s.db, id)
	return form, err
}

func (s *Forms) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]model.Form, error) {
	return s.list(ctx, `WHERE f.creator_id = ?`, creatorID)
}

func (s *Forms) ListAll(ctx context.Context) ([]model.Form, error) {
	return s.list(ctx, "")
}

func (s *Forms) list(ctx context.Context, where string, args ...any) ([]model.Form, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.id, f.title, f.description, f.active,
			f.created_at, f.updated_at, f.expires_at,
			f.creator_id, u.username
		FROM form f
		INNER JOIN user u ON (u.id = f.creator_id) `+where+`
		ORDER BY f.created_at, f.id`,
		args...,
	)
	if err != nil {
		return nil, errors.Wrap(err, "db.list_forms")
	}
	defer rows.Close()

	forms := []model.Form{}
	for rows.Next() {
		form := model.Form{}
		err = rows.Scan(
			&form.ID, &form.Title, &form.Description, &form.Active,
			&form.CreatedAt, &form.UpdatedAt, &form.ExpiresAt,
			&form.CreatorID, &form.CreatorName,
		)
		if err != nil {
			return nil, errors.Wrap(err, "db.list_forms.scan")
		}
		forms = append(forms, form)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "db.list_forms")
	}

	for i := range forms {
		forms[i].Questions, err = loadFormQuestions(ctx, s.db, forms[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return forms, nil
}
