package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"roomdesigner/internal/auth/models"
	"roomdesigner/internal/common/database"

	"github.com/google/uuid"
)

// ============================================================
// SQLite Repository
// ============================================================

type Repository struct {
	db *sql.DB
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Init applies migrations and makes sure the demo account exists.
func (r *Repository) Init(ctx context.Context, demoLogin, demoPassword string) error {
	if err := database.Migrate(ctx, r.db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return r.ensureUser(ctx, demoLogin, demoPassword, "Demo User")
}

func (r *Repository) GetByCredentials(ctx context.Context, login, password string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, login, password, display_name, created_at
        FROM users
        WHERE login = ? AND password = ?
    `, login, password)
	return scanUser(row)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, login, password, display_name, created_at
        FROM users
        WHERE id = ?
    `, id)
	return scanUser(row)
}

func (r *Repository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, login, password, display_name, created_at
        FROM users
        WHERE login = ?
    `, login)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Login, &u.Password, &u.DisplayName, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ============================================================
// Seeding
// ============================================================

// ensureUser inserts login with password unless a user with that login
// exists. An existing password is left alone.
func (r *Repository) ensureUser(ctx context.Context, login, password, displayName string) error {
	_, err := r.GetByLogin(ctx, login)
	if err == nil {
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
        INSERT INTO users (id, login, password, display_name)
        VALUES (?, ?, ?, ?)
    `, uuid.NewString(), login, password, displayName)
	if err != nil {
		return fmt.Errorf("seed %s: %w", login, err)
	}
	return nil
}
