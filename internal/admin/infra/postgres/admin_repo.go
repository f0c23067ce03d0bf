package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dwikikusuma/storefront/internal/admin/app"
	"github.com/dwikikusuma/storefront/internal/admin/domain"
	"github.com/dwikikusuma/storefront/internal/admin/infra/postgres/admindb"
	"github.com/dwikikusuma/storefront/pkg/postgres"
)

type AdminRepo struct {
	q *admindb.Queries
}

func NewAdminRepo(db *sql.DB) *AdminRepo {
	return &AdminRepo{q: admindb.New(db)}
}

func (r *AdminRepo) Create(ctx context.Context, a domain.Admin) (domain.Admin, error) {
	row, err := r.q.CreateAdmin(ctx, admindb.CreateAdminParams{
		Email:        a.Email,
		FullName:     a.FullName,
		PasswordHash: a.PasswordHash,
	})
	if postgres.IsUniqueViolation(err) {
		return domain.Admin{}, app.ErrEmailTaken
	}
	if err != nil {
		return domain.Admin{}, fmt.Errorf("create admin: %w", err)
	}
	return toDomain(row), nil
}

func (r *AdminRepo) GetByEmail(ctx context.Context, email string) (domain.Admin, error) {
	row, err := r.q.GetAdminByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Admin{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Admin{}, fmt.Errorf("get admin: %w", err)
	}
	return toDomain(row), nil
}

func toDomain(row admindb.Admin) domain.Admin {
	return domain.Admin{
		ID:           row.ID.String(),
		Email:        row.Email,
		FullName:     row.FullName,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
	}
}
