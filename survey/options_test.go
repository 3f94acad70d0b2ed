package survey_test

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iic/form-system/survey"
)

func TestAddOption(t *testing.T) {
	db := newTestDB(t)
	alice := newTestUser(t, db, "alice")
	form := newTestForm(t, db, alice)
	checkbox := form.Questions[1]

	option, err := survey.NewOptions(db).Add(context.Background(), checkbox.ID, survey.OptionSpec{
		Text:         "Tooling",
		DisplayOrder: 3,
	}, alice)
	require.NoError(t, err)
	assert.True(t, option.Active)

	loaded, err := survey.NewQuestions(db).Get(context.Background(), checkbox.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Options, 3)
}

func TestAddOption_RejectsFreeTextQuestion(t *testing.T) {
	db := newTestDB(t)
	alice := newTestUser(t, db, "alice")
	form := newTestForm(t, db, alice)
	shortAnswer := form.Questions[0]

	_, err := survey.NewOptions(db).Add(context.Background(), shortAnswer.ID, survey.OptionSpec{
		Text:         "Yes",
		DisplayOrder: 1,
	}, alice)

	var invalid survey.ValidationError
	require.ErrorAs(t, err, &invalid)
}

func TestAddOption_DisplayOrderScopedToQuestion(t *testing.T) {
	db := newTestDB(t)
	alice := newTestUser(t, db, "alice")
	form := newTestForm(t, db, alice)
	options := survey.NewOptions(db)

	// order 1 is taken within the checkbox question...
	_, err := options.Add(context.Background(), form.Questions[1].ID, survey.OptionSpec{
		Text:         "Focus",
		DisplayOrder: 1,
	}, alice)
	var conflict survey.DisplayOrderConflictError
	require.ErrorAs(t, err, &conflict)

	// ...but a different question is free to use it
	likert, err := survey.NewQuestions(db).Add(context.Background(), form.ID, survey.QuestionSpec{
		Text:         "Rate the quarter",
		Type:         "LIKERT",
		DisplayOrder: 3,
	}, alice)
	require.NoError(t, err)

	_, err = options.Add(context.Background(), likert.ID, survey.OptionSpec{
		Text:         "Poor",
		DisplayOrder: 1,
	}, alice)
	require.NoError(t, err)
}

func TestEditOption(t *testing.T) {
	db := newTestDB(t)
	alice := newTestUser(t, db, "alice")
	form := newTestForm(t, db, alice)
	options := survey.NewOptions(db)
	target := form.Questions[1].Options[0]

	edited, err := options.Edit(context.Background(), target.ID, "Roadmap planning", alice)
	require.NoError(t, err)
	assert.Equal(t, "Roadmap planning", edited.Text)

	// empty text is a no-op
	edited, err = options.Edit(context.Background(), target.ID, "", alice)
	require.NoError(t, err)
	assert.Equal(t, "Roadmap planning", edited.Text)
}

func TestToggleOptionActive(t *testing.T) {
	db := newTestDB(t)
	alice := newTestUser(t, db, "alice")
	form := newTestForm(t, db, alice)
	options := survey.NewOptions(db)
	target := form.Questions[1].Options[0]

	require.NoError(t, options.ToggleActive(context.Background(), target.ID, alice))
	loaded, err := options.Get(context.Background(), target.ID)
	require.NoError(t, err)
	assert.False(t, loaded.Active)

	// an inactive sibling no longer holds its display order
	_, err = options.Add(context.Background(), form.Questions[1].ID, survey.OptionSpec{
		Text:         "Focus",
		DisplayOrder: target.DisplayOrder,
	}, alice)
	require.NoError(t, err)
}

func TestReorderOptions(t *testing.T) {
	db := newTestDB(t)
	alice := newTestUser(t, db, "alice")
	form := newTestForm(t, db, alice)
	options := survey.NewOptions(db)

	a, b := form.Questions[1].Options[0], form.Questions[1].Options[1]

	err := options.Reorder(context.Background(), form.Questions[1].ID, []uuid.UUID{b.ID, a.ID}, alice)
	require.NoError(t, err)

	loadedA, err := options.Get(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, loadedA.DisplayOrder)

	loadedB, err := options.Get(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, loadedB.DisplayOrder)
}

func TestHardDeleteOption(t *testing.T) {
	db := newTestDB(t)
	alice := newTestUser(t, db, "alice")
	form := newTestForm(t, db, alice)
	options := survey.NewOptions(db)
	target := form.Questions[1].Options[0]

	require.NoError(t, options.HardDelete(context.Background(), target.ID, alice))

	var notFound survey.NotFoundError
	_, err := options.Get(context.Background(), target.ID)
	require.ErrorAs(t, err, &notFound)

	loaded, err := survey.NewQuestions(db).Get(context.Background(), form.Questions[1].ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Options, 1)
}

// The gate walks Option -> Question -> Form -> creator.
func TestOptionOwnershipWalk(t *testing.T) {
	db := newTestDB(t)
	alice := newTestUser(t, db, "alice")
	mallory := newTestUser(t, db, "mallory")
	form := newTestForm(t, db, alice)
	options := survey.NewOptions(db)
	target := form.Questions[1].Options[0]

	var forbidden survey.ForbiddenError
	_, err := options.Edit(context.Background(), target.ID, "Mine", mallory)
	require.ErrorAs(t, err, &forbidden)
	err = options.ToggleActive(context.Background(), target.ID, mallory)
	require.ErrorAs(t, err, &forbidden)
	err = options.HardDelete(context.Background(), target.ID, mallory)
	require.ErrorAs(t, err, &forbidden)

	var notFound survey.NotFoundError
	_, err = options.Edit(context.Background(), uuid.Must(uuid.NewV4()), "x", alice)
	require.ErrorAs(t, err, &notFound)
}
