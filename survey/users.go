package survey

import (
	"context"
	"database/sql"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/iic/form-system/model"
)

// Users resolves identities for ownership checks and submission attribution,
// and handles registration.
type Users struct {
	db *sql.DB
}

func NewUsers(db *sql.DB) *Users {
	return &Users{db}
}

// Register creates a new user with a bcrypt password hash. Usernames are
// unique; a taken one is a conflict.
func (s *Users) Register(ctx context.Context, username, password string) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, errors.Wrap(err, "register.hash_password")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.User{}, errors.Wrap(err, "db.begin_tx")
	}
	defer tx.Rollback()

	var taken bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM user WHERE username = ?)`,
		username,
	).Scan(&taken)
	if err != nil {
		return model.User{}, errors.Wrap(err, "db.check_username")
	}
	if taken {
		return model.User{}, ConflictError{"username " + username + " is already taken"}
	}

	user := model.User{
		ID:       uuid.Must(uuid.NewV4()),
		Username: username,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO user (id, username, password_hash) VALUES (?, ?, ?)`,
		user.ID, user.Username, hash,
	)
	if err != nil {
		return model.User{}, errors.Wrap(err, "db.insert_user")
	}

	return user, errors.Wrap(tx.Commit(), "db.commit")
}

func (s *Users) ByUsername(ctx context.Context, username string) (model.User, error) {
	user := model.User{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username FROM user WHERE username = ?`,
		username,
	).Scan(&user.ID, &user.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, NotFoundError{Entity: "user"}
	}
	return user, errors.Wrap(err, "db.load_user")
}

func (s *Users) ByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	user := model.User{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username FROM user WHERE id = ?`,
		id,
	).Scan(&user.ID, &user.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, NotFoundError{"user", id}
	}
	return user, errors.Wrap(err, "db.load_user")
}
