package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"curryhouse/internal/domain"
)

type SettingsRepositoryInterface interface {
	Latest(ctx context.Context) (domain.Settings, error)
	List(ctx context.Context) ([]domain.Settings, error)
	Create(ctx context.Context, modes map[string]bool) (domain.Settings, error)

	LatestPrinter(ctx context.Context) (domain.Printer, error)
	CreatePrinter(ctx context.Context, ip string) (domain.Printer, error)
}

type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) SettingsRepositoryInterface {
	return &SettingsRepository{db: db}
}

// Latest returns the newest settings document; the admin console only
// ever appends new ones.
func (r *SettingsRepository) Latest(ctx context.Context) (domain.Settings, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, modes, updated_at
		FROM settings ORDER BY updated_at DESC, id DESC LIMIT 1`)
	return scanSettings(row)
}

func (r *SettingsRepository) List(ctx context.Context) ([]domain.Settings, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, modes, updated_at
		FROM settings ORDER BY updated_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query settings: %w", err)
	}
	defer rows.Close()

	out := []domain.Settings{}
	for rows.Next() {
		s, err := scanSettings(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SettingsRepository) Create(ctx context.Context, modes map[string]bool) (domain.Settings, error) {
	if modes == nil {
		modes = map[string]bool{}
	}
	modesJSON, _ := json.Marshal(modes)

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO settings (name, modes, updated_at)
		VALUES ('order_settings', $1, NOW())
		RETURNING id, name, modes, updated_at`, string(modesJSON))
	return scanSettings(row)
}

func (r *SettingsRepository) LatestPrinter(ctx context.Context) (domain.Printer, error) {
	var p domain.Printer
	err := r.db.QueryRowContext(ctx, `
		SELECT id, ip, created_at FROM printers
		ORDER BY created_at DESC, id DESC LIMIT 1`).Scan(&p.ID, &p.IP, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Printer{}, domain.ErrNotFound
	}
	return p, err
}

func (r *SettingsRepository) CreatePrinter(ctx context.Context, ip string) (domain.Printer, error) {
	var p domain.Printer
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO printers (ip) VALUES ($1)
		RETURNING id, ip, created_at`, ip).Scan(&p.ID, &p.IP, &p.CreatedAt)
	return p, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSettings(row rowScanner) (domain.Settings, error) {
	var (
		s        domain.Settings
		modesRaw []byte
	)
	err := row.Scan(&s.ID, &s.Name, &modesRaw, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Settings{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Settings{}, err
	}
	if err := json.Unmarshal(modesRaw, &s.Modes); err != nil {
		return domain.Settings{}, fmt.Errorf("decode modes: %w", err)
	}
	return s, nil
}
