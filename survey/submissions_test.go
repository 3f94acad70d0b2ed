package survey_test

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iic/form-system/survey"
)

func TestCreateSubmission(t *testing.T) {
	db := newTestDB(t)
	alice := newTestUser(t, db, "alice")
	form := newTestForm(t, db, alice)
	submissions := survey.NewSubmissions(db)

	required := form.Questions[0]
	checkbox := form.Questions[1]

	// blank required answer fails, naming the question
	_, err := submissions.Create(context.Background(), survey.SubmissionSpec{
		FormID: form.ID,
		Answers: []survey.AnswerSpec{
			{QuestionID: required.ID, Value: "   "},
		},
	}, nil)
	var missing survey.RequiredAnswerError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "What went well?", missing.Question)

	// required answered, checkbox skipped: exactly one answer
	submission, err := submissions.Create(context.Background(), survey.SubmissionSpec{
		FormID: form.ID,
		Answers: []survey.AnswerSpec{
			{QuestionID: required.ID, Value: "Shipping on time"},
		},
	}, nil)
	require.NoError(t, err)
	require.Len(t, submission.Answers, 1)
	assert.Equal(t, required.ID, submission.Answers[0].QuestionID)

	// required answered plus a multi-select checkbox value: two answers
	both := `["` + checkbox.Options[0].ID.String() + `","` + checkbox.Options[1].ID.String() + `"]`
	submission, err = submissions.Create(context.Background(), survey.SubmissionSpec{
		FormID: form.ID,
		Answers: []survey.AnswerSpec{
			{QuestionID: required.ID, Value: "Shipping on time"},
			{QuestionID: checkbox.ID, Value: both},
		},
	}, nil)
	require.NoError(t, err)
	require.Len(t, submission.Answers, 2)
	assert.Equal(t, both, submission.Answers[1].Value)
}

func TestCreateSubmission_FormState(t *testing.T) {
	db := newTestDB(t)
	alice := newTestUser(t, db, "alice")
	form := newTestForm(t, db, alice)
	submissions := survey.NewSubmissions(db)

	spec := survey.SubmissionSpec{
		FormID:  form.ID,
		Answers: []survey.AnswerSpec{{QuestionID: form.Questions[0].ID, Value: "Fine"}},
	}

	// deactivate, then submit
	require.NoError(t, survey.NewForms(db).ToggleActive(context.Background(), form.ID, alice))
	_, err := submissions.Create(context.Background(), spec, nil)
	require.ErrorIs(t, err, survey.ErrFormInactive)
	require.NoError(t, survey.NewForms(db).ToggleActive(context.Background(), form.ID, alice))

	// expired form
	past := time.Now().Add(-time.Hour)
	_, err = survey.NewForms(db).SetExpiry(context.Background(), form.ID, &past, alice)
	require.NoError(t, err)
	_, err = submissions.Create(context.Background(), spec, nil)
	require.ErrorIs(t, err, survey.ErrFormExpired)

	// unknown form
	_, err = submissions.Create(context.Background(), survey.SubmissionSpec{FormID: uuid.Must(uuid.NewV4())}, nil)
	var notFound survey.NotFoundError
	require.ErrorAs(t, err, &notFound)

	// nothing was recorded along the way
	n, err := submissions.Count(context.Background(), form.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreateSubmission_DropsStaleAnswers(t *testing.T) {
	db := newTestDB(t)
	alice := newTestUser(t, db, "alice")
	form := newTestForm(t, db, alice)
	submissions := survey.NewSubmissions(db)

	// deactivate the checkbox question: answers to it are silently dropped
	require.NoError(t, survey.NewQuestions(db).ToggleActive(context.Background(), form.Questions[1].ID, alice))

	submission, err := submissions.Create(context.Background(), survey.SubmissionSpec{
		FormID: form.ID,
		Answers: []survey.AnswerSpec{
			{QuestionID: form.Questions[0].ID, Value: "Fine"},
			{QuestionID: form.Questions[1].ID, Value: "ignored"},
			{QuestionID: uuid.Must(uuid.NewV4()), Value: "also ignored"},
		},
	}, nil)
	require.NoError(t, err)
	require.Len(t, submission.Answers, 1)

	// a blank optional answer is dropped, not stored as an empty row
	require.NoError(t, survey.NewQuestions(db).ToggleActive(context.Background(), form.Questions[1].ID, alice))
	submission, err = submissions.Create(context.Background(), survey.SubmissionSpec{
		FormID: form.ID,
		Answers: []survey.AnswerSpec{
			{QuestionID: form.Questions[0].ID, Value: "Fine"},
			{QuestionID: form.Questions[1].ID, Value: "  "},
		},
	}, nil)
	require.NoError(t, err)
	require.Len(t, submission.Answers, 1)
}

func TestCreateSubmission_Attribution(t *testing.T) {
	db := newTestDB(t)
	alice := newTestUser(t, db, "alice")
	bob := newTestUser(t, db, "bob")
	form := newTestForm(t, db, alice)
	submissions := survey.NewSubmissions(db)

	spec := survey.SubmissionSpec{
		FormID:  form.ID,
		Answers: []survey.AnswerSpec{{QuestionID: form.Questions[0].ID, Value: "Fine"}},
	}

	anonymous, err := submissions.Create(context.Background(), spec, nil)
	require.NoError(t, err)
	assert.Nil(t, anonymous.RespondentID)

	attributed, err := submissions.Create(context.Background(), spec, &bob)
	require.NoError(t, err)
	require.NotNil(t, attributed.RespondentID)
	assert.Equal(t, bob.ID, *attributed.RespondentID)

	loaded, err := submissions.Get(context.Background(), attributed.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", loaded.Respondent)
	assert.Equal(t, "Team feedback", loaded.FormTitle)

	byBob, err := submissions.ListByRespondent(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.Len(t, byBob, 1)

	byForm, err := submissions.ListByForm(context.Background(), form.ID)
	require.NoError(t, err)
	assert.Len(t, byForm, 2)

	all, err := submissions.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	n, err := submissions.Count(context.Background(), form.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSoftDeleteSubmission(t *testing.T) {
	db := newTestDB(t)
	alice := newTestUser(t, db, "alice")
	form := newTestForm(t, db, alice)
	submissions := survey.NewSubmissions(db)

	submission, err := submissions.Create(context.Background(), survey.SubmissionSpec{
		FormID:  form.ID,
		Answers: []survey.AnswerSpec{{QuestionID: form.Questions[0].ID, Value: "Fine"}},
	}, nil)
	require.NoError(t, err)

	require.NoError(t, submissions.SoftDelete(context.Background(), submission.ID))

	// flagged, not removed
	loaded, err := submissions.Get(context.Background(), submission.ID)
	require.NoError(t, err)
	assert.True(t, loaded.Deleted)
	assert.Len(t, loaded.Answers, 1)

	var notFound survey.NotFoundError
	err = submissions.SoftDelete(context.Background(), uuid.Must(uuid.NewV4()))
	require.ErrorAs(t, err, &notFound)
}

func TestHardDeleteSubmission(t *testing.T) {
	db := newTestDB(t)
	alice := newTestUser(t, db, "alice")
	form := newTestForm(t, db, alice)
	submissions := survey.NewSubmissions(db)

	submission, err := submissions.Create(context.Background(), survey.SubmissionSpec{
		FormID:  form.ID,
		Answers: []survey.AnswerSpec{{QuestionID: form.Questions[0].ID, Value: "Fine"}},
	}, nil)
	require.NoError(t, err)

	require.NoError(t, submissions.HardDelete(context.Background(), submission.ID))

	var notFound survey.NotFoundError
	_, err = submissions.Get(context.Background(), submission.ID)
	require.ErrorAs(t, err, &notFound)

	// the answers went with it
	var n int
	err = db.QueryRow(`SELECT count(*) FROM answer WHERE submission_id = ?`, submission.ID).Scan(&n)
	require.NoError(t, err)
	assert.Zero(t, n)

	// and the form can be hard-deleted again
	require.NoError(t, survey.NewForms(db).HardDelete(context.Background(), form.ID, alice))
}
