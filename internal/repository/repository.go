package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"user-service/internal/apperrors"
	"user-service/internal/entity"
)

const userColumns = `id, email, phone, created_at`

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type UserRepository struct {
	db      *sql.DB
	dialect dialect
}

// NewUserRepository wraps db, which must have been opened with driver.
func NewUserRepository(db *sql.DB, driver string) (*UserRepository, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	return &UserRepository{db: db, dialect: d}, nil
}

// GetUsers returns every user, newest first.
func (r *UserRepository) GetUsers(ctx context.Context) ([]entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, id DESC`
	return r.queryUsers(ctx, r.db, query)
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.queryUser(ctx, r.db, query, id)
}

func (r *UserRepository) CreateUser(ctx context.Context, email, phone string) (*entity.User, error) {
	if r.dialect.returning {
		query := `INSERT INTO users (email, phone) VALUES (?, ?) RETURNING ` + userColumns
		return r.queryUser(ctx, r.db, query, email, phone)
	}

	res, err := r.db.ExecContext(ctx, `INSERT INTO users (email, phone) VALUES (?, ?)`, email, phone)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return r.GetUserByID(ctx, id)
}

// UpdateUser replaces email and phone of the user with the given id and
// returns the updated row. id and created_at are left untouched.
func (r *UserRepository) UpdateUser(ctx context.Context, id int64, email, phone string) (*entity.User, error) {
	if r.dialect.returning {
		query := `UPDATE users SET email = ?, phone = ? WHERE id = ? RETURNING ` + userColumns
		return r.queryUser(ctx, r.db, query, email, phone, id)
	}

	var updated *entity.User
	err := r.withTransaction(ctx, func(tx *sql.Tx) error {
		user, err := r.queryUser(ctx, tx, `SELECT `+userColumns+` FROM users WHERE id = ? FOR UPDATE`, id)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `UPDATE users SET email = ?, phone = ? WHERE id = ?`, email, phone, id)
		if err != nil {
			return err
		}

		user.Email = email
		user.Phone = phone
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteUser removes the user with the given id and returns its last contents.
func (r *UserRepository) DeleteUser(ctx context.Context, id int64) (*entity.User, error) {
	if r.dialect.returning {
		query := `DELETE FROM users WHERE id = ? RETURNING ` + userColumns
		return r.queryUser(ctx, r.db, query, id)
	}

	var deleted *entity.User
	err := r.withTransaction(ctx, func(tx *sql.Tx) error {
		user, err := r.queryUser(ctx, tx, `SELECT `+userColumns+` FROM users WHERE id = ? FOR UPDATE`, id)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
		if err != nil {
			return err
		}

		deleted = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	return deleted, nil
}

func (r *UserRepository) queryUsers(ctx context.Context, q querier, query string, args ...any) ([]entity.User, error) {
	rows, err := q.QueryContext(ctx, r.dialect.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []entity.User{}
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		user, err := SerializeUser(row)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// queryUser expects exactly one row; no rows at all is ErrUserNotFound.
func (r *UserRepository) queryUser(ctx context.Context, q querier, query string, args ...any) (*entity.User, error) {
	users, err := r.queryUsers(ctx, q, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	if len(users) == 0 {
		return nil, apperrors.ErrUserNotFound
	}
	if len(users) > 1 {
		return nil, fmt.Errorf("expected 1 row, got %d", len(users))
	}

	return &users[0], nil
}

func (r *UserRepository) withTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
