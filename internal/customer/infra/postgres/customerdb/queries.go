package customerdb

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

type Customer struct {
	ID           uuid.UUID
	Email        string
	FullName     string
	PasswordHash string
	CreatedAt    time.Time
}

const createCustomer = `
INSERT INTO customers (email, full_name, password_hash)
VALUES ($1, $2, $3)
RETURNING id, email, full_name, password_hash, created_at`

type CreateCustomerParams struct {
	Email        string
	FullName     string
	PasswordHash string
}

func (q *Queries) CreateCustomer(ctx context.Context, arg CreateCustomerParams) (Customer, error) {
	row := q.db.QueryRowContext(ctx, createCustomer, arg.Email, arg.FullName, arg.PasswordHash)
	var i Customer
	err := row.Scan(&i.ID, &i.Email, &i.FullName, &i.PasswordHash, &i.CreatedAt)
	return i, err
}

const getCustomer = `
SELECT id, email, full_name, password_hash, created_at
FROM customers
WHERE id = $1`

func (q *Queries) GetCustomer(ctx context.Context, id uuid.UUID) (Customer, error) {
	row := q.db.QueryRowContext(ctx, getCustomer, id)
	var i Customer
	err := row.Scan(&i.ID, &i.Email, &i.FullName, &i.PasswordHash, &i.CreatedAt)
	return i, err
}

const getCustomerByEmail = `
SELECT id, email, full_name, password_hash, created_at
FROM customers
WHERE email = $1`

func (q *Queries) GetCustomerByEmail(ctx context.Context, email string) (Customer, error) {
	row := q.db.QueryRowContext(ctx, getCustomerByEmail, email)
	var i Customer
	err := row.Scan(&i.ID, &i.Email, &i.FullName, &i.PasswordHash, &i.CreatedAt)
	return i, err
}
