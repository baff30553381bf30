package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"curryhouse/internal/domain"
)

type RegistrationRepositoryInterface interface {
	Create(ctx context.Context, name, email string) (domain.Registration, error)
	List(ctx context.Context) ([]domain.Registration, error)
}

type RegistrationRepository struct {
	db *sql.DB
}

func NewRegistrationRepository(db *sql.DB) RegistrationRepositoryInterface {
	return &RegistrationRepository{db: db}
}

func (r *RegistrationRepository) Create(ctx context.Context, name, email string) (domain.Registration, error) {
	var reg domain.Registration
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO registrations (name, email)
		VALUES ($1, LOWER($2))
		RETURNING id, name, email, registered_at`,
		name, email).Scan(&reg.ID, &reg.Name, &reg.Email, &reg.RegisteredAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.Registration{}, domain.ErrDuplicate
	}
	if err != nil {
		return domain.Registration{}, fmt.Errorf("insert registration: %w", err)
	}
	return reg, nil
}

func (r *RegistrationRepository) List(ctx context.Context) ([]domain.Registration, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, registered_at
		FROM registrations ORDER BY registered_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query registrations: %w", err)
	}
	defer rows.Close()

	out := []domain.Registration{}
	for rows.Next() {
		var reg domain.Registration
		if err := rows.Scan(&reg.ID, &reg.Name, &reg.Email, &reg.RegisteredAt); err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}
