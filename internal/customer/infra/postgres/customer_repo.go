package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dwikikusuma/storefront/internal/customer/app"
	"github.com/dwikikusuma/storefront/internal/customer/domain"
	"github.com/dwikikusuma/storefront/internal/customer/infra/postgres/customerdb"
	"github.com/dwikikusuma/storefront/pkg/postgres"
	"github.com/google/uuid"
)

type CustomerRepo struct {
	q *customerdb.Queries
}

func NewCustomerRepo(db *sql.DB) *CustomerRepo {
	return &CustomerRepo{q: customerdb.New(db)}
}

func (r *CustomerRepo) Create(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	row, err := r.q.CreateCustomer(ctx, customerdb.CreateCustomerParams{
		Email:        c.Email,
		FullName:     c.FullName,
		PasswordHash: c.PasswordHash,
	})
	if postgres.IsUniqueViolation(err) {
		return domain.Customer{}, app.ErrEmailTaken
	}
	if err != nil {
		return domain.Customer{}, fmt.Errorf("create customer: %w", err)
	}
	return toDomain(row), nil
}

func (r *CustomerRepo) Get(ctx context.Context, id string) (domain.Customer, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return domain.Customer{}, app.ErrNotFound
	}

	row, err := r.q.GetCustomer(ctx, uid)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Customer{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Customer{}, fmt.Errorf("get customer: %w", err)
	}
	return toDomain(row), nil
}

func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (domain.Customer, error) {
	row, err := r.q.GetCustomerByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Customer{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Customer{}, fmt.Errorf("get customer by email: %w", err)
	}
	return toDomain(row), nil
}

func toDomain(row customerdb.Customer) domain.Customer {
	return domain.Customer{
		ID:           row.ID.String(),
		Email:        row.Email,
		FullName:     row.FullName,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
	}
}
