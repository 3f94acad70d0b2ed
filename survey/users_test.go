package survey_test

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iic/form-system/survey"
)

func TestRegister(t *testing.T) {
	db := newTestDB(t)
	users := survey.NewUsers(db)

	alice, err := users.Register(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice", alice.Username)
	assert.NotEqual(t, uuid.Nil, alice.ID)

	// the stored hash verifies against the password, not the other way around
	var hash []byte
	err = db.QueryRow(`SELECT password_hash FROM user WHERE id = ?`, alice.ID).Scan(&hash)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword(hash, []byte("s3cret")))
	assert.Error(t, bcrypt.CompareHashAndPassword(hash, []byte("wrong")))
}

func TestRegister_UsernameTaken(t *testing.T) {
	db := newTestDB(t)
	users := survey.NewUsers(db)

	_, err := users.Register(context.Background(), "alice", "s3cret")
	require.NoError(t, err)

	_, err = users.Register(context.Background(), "alice", "other")
	var conflict survey.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Error(), "alice")
}

func TestUserLookup(t *testing.T) {
	db := newTestDB(t)
	users := survey.NewUsers(db)

	alice, err := users.Register(context.Background(), "alice", "s3cret")
	require.NoError(t, err)

	byName, err := users.ByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byName.ID)

	byID, err := users.ByID(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	var notFound survey.NotFoundError
	_, err = users.ByUsername(context.Background(), "nobody")
	require.ErrorAs(t, err, &notFound)
	_, err = users.ByID(context.Background(), uuid.Must(uuid.NewV4()))
	require.ErrorAs(t, err, &notFound)
}
