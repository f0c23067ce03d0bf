package admindb

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

type Admin struct {
	ID           uuid.UUID
	Email        string
	FullName     string
	PasswordHash string
	CreatedAt    time.Time
}

const createAdmin = `
INSERT INTO admins (email, full_name, password_hash)
VALUES ($1, $2, $3)
RETURNING id, email, full_name, password_hash, created_at`

type CreateAdminParams struct {
	Email        string
	FullName     string
	PasswordHash string
}

func (q *Queries) CreateAdmin(ctx context.Context, arg CreateAdminParams) (Admin, error) {
	row := q.db.QueryRowContext(ctx, createAdmin, arg.Email, arg.FullName, arg.PasswordHash)
	var i Admin
	err := row.Scan(&i.ID, &i.Email, &i.FullName, &i.PasswordHash, &i.CreatedAt)
	return i, err
}

const getAdminByEmail = `
SELECT id, email, full_name, password_hash, created_at
FROM admins
WHERE email = $1`

func (q *Queries) GetAdminByEmail(ctx context.Context, email string) (Admin, error) {
	row := q.db.QueryRowContext(ctx, getAdminByEmail, email)
	var i Admin
	err := row.Scan(&i.ID, &i.Email, &i.FullName, &i.PasswordHash, &i.CreatedAt)
	return i, err
}
