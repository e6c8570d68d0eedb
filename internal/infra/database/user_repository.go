package database

import (
	"context"
	"database/sql"

	"github.com/niveshpath/advisory-backend/internal/entity"
)

// UserRepository reads the externally managed user accounts. This service
// only resolves identities and labels; account administration lives
// elsewhere.
type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	var u entity.User
	var role string
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, email, role FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Name, &u.Email, &role)
	if err == sql.ErrNoRows {
		return nil, entity.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Role = entity.Role(role)
	return &u, nil
}
