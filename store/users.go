package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/mbolis/quick-vote/model"
	"golang.org/x/crypto/bcrypt"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db}
}

func (s *UserStore) Create(ctx context.Context, username, password, role, displayName string) (model.User, error) {
	if strings.TrimSpace(username) == "" {
		return model.User{}, validationErrorf("username must not be blank")
	}
	if password == "" {
		return model.User{}, validationErrorf("password must not be blank")
	}
	if role != "member" && role != "admin" {
		return model.User{}, validationErrorf("unknown role %q", role)
	}
	if displayName == "" {
		displayName = username
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, err
	}

	user := model.User{Username: username, DisplayName: displayName, Role: role}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO user (username, password_hash, display_name, role)
		VALUES (?, ?, ?, ?)
		RETURNING id`,
		username,
		hash,
		displayName,
		role,
	).Scan(&user.ID)
	if isUniqueViolation(err) {
		return model.User{}, validationErrorf("username %q is taken", username)
	}
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (s *UserStore) ByUsername(ctx context.Context, username string) (model.User, error) {
	user := model.User{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, display_name, role
		FROM user
		WHERE username = ?`,
		username,
	).Scan(&user.ID, &user.Username, &user.DisplayName, &user.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}
