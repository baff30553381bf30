package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"curryhouse/internal/domain"
)

type MenuRepositoryInterface interface {
	ListSections(ctx context.Context, day string) ([]domain.MenuSection, error)
	GetSection(ctx context.Context, id int) (domain.MenuSection, error)
	CreateSection(ctx context.Context, in domain.SectionInput) (int, error)
	UpdateSection(ctx context.Context, id int, in domain.SectionInput) error
	DeleteSection(ctx context.Context, id int) error

	AddItem(ctx context.Context, sectionID int, item domain.MenuItem) (int, error)
	UpdateItem(ctx context.Context, sectionID, itemID int, item domain.MenuItem) error
	DeleteItem(ctx context.Context, sectionID, itemID int) error
}

type MenuRepository struct {
	db *sql.DB
}

func NewMenuRepository(db *sql.DB) MenuRepositoryInterface {
	return &MenuRepository{db: db}
}

func (r *MenuRepository) ListSections(ctx context.Context, day string) ([]domain.MenuSection, error) {
	query := `
		SELECT id, title, color, days, position
		FROM menu_sections
		ORDER BY position, id`
	args := []any{}
	if day != "" {
		// empty days list means the section runs every day
		query = `
			SELECT id, title, color, days, position
			FROM menu_sections
			WHERE days = '[]'::jsonb OR days @> $1::jsonb
			ORDER BY position, id`
		dayJSON, _ := json.Marshal([]string{day})
		args = append(args, string(dayJSON))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sections: %w", err)
	}
	defer rows.Close()

	var sections []domain.MenuSection
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sections {
		items, err := r.listItems(ctx, sections[i].ID)
		if err != nil {
			return nil, err
		}
		sections[i].Items = items
	}
	return sections, nil
}

func (r *MenuRepository) GetSection(ctx context.Context, id int) (domain.MenuSection, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, color, days, position
		FROM menu_sections WHERE id = $1`, id)

	s, err := scanSection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.MenuSection{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.MenuSection{}, err
	}

	s.Items, err = r.listItems(ctx, s.ID)
	if err != nil {
		return domain.MenuSection{}, err
	}
	return s, nil
}

func (r *MenuRepository) CreateSection(ctx context.Context, in domain.SectionInput) (int, error) {
	days := in.Days
	if days == nil {
		days = []string{}
	}
	daysJSON, _ := json.Marshal(days)

	var id int
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO menu_sections (title, color, days, position)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		in.Title, in.Color, string(daysJSON), in.Position).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert section: %w", err)
	}
	return id, nil
}

func (r *MenuRepository) UpdateSection(ctx context.Context, id int, in domain.SectionInput) error {
	days := in.Days
	if days == nil {
		days = []string{}
	}
	daysJSON, _ := json.Marshal(days)

	res, err := r.db.ExecContext(ctx, `
		UPDATE menu_sections SET title=$2, color=$3, days=$4, position=$5
		WHERE id=$1`,
		id, in.Title, in.Color, string(daysJSON), in.Position)
	if err != nil {
		return fmt.Errorf("update section: %w", err)
	}
	return notFoundIfZero(res)
}

func (r *MenuRepository) DeleteSection(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM menu_sections WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete section: %w", err)
	}
	return notFoundIfZero(res)
}

func (r *MenuRepository) AddItem(ctx context.Context, sectionID int, item domain.MenuItem) (int, error) {
	spiceJSON, _ := json.Marshal(orEmpty(item.SpiceLevels))
	addonsJSON, _ := json.Marshal(orEmptyAddons(item.Addons))

	var id int
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO menu_items (section_id, name, price, spice_levels, addons, position)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		sectionID, item.Name, item.Price, string(spiceJSON), string(addonsJSON), item.Position).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert item: %w", err)
	}
	return id, nil
}

func (r *MenuRepository) UpdateItem(ctx context.Context, sectionID, itemID int, item domain.MenuItem) error {
	spiceJSON, _ := json.Marshal(orEmpty(item.SpiceLevels))
	addonsJSON, _ := json.Marshal(orEmptyAddons(item.Addons))

	res, err := r.db.ExecContext(ctx, `
		UPDATE menu_items SET name=$3, price=$4, spice_levels=$5, addons=$6, position=$7
		WHERE id=$2 AND section_id=$1`,
		sectionID, itemID, item.Name, item.Price, string(spiceJSON), string(addonsJSON), item.Position)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return notFoundIfZero(res)
}

func (r *MenuRepository) DeleteItem(ctx context.Context, sectionID, itemID int) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM menu_items WHERE id=$2 AND section_id=$1`, sectionID, itemID)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return notFoundIfZero(res)
}

func (r *MenuRepository) listItems(ctx context.Context, sectionID int) ([]domain.MenuItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, price, spice_levels, addons, position
		FROM menu_items
		WHERE section_id = $1
		ORDER BY position, id`, sectionID)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := []domain.MenuItem{}
	for rows.Next() {
		var (
			it        domain.MenuItem
			spiceRaw  []byte
			addonsRaw []byte
		)
		if err := rows.Scan(&it.ID, &it.Name, &it.Price, &spiceRaw, &addonsRaw, &it.Position); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(spiceRaw, &it.SpiceLevels); err != nil {
			return nil, fmt.Errorf("decode spice levels: %w", err)
		}
		if err := json.Unmarshal(addonsRaw, &it.Addons); err != nil {
			return nil, fmt.Errorf("decode addons: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSection(row rowScanner) (domain.MenuSection, error) {
	var (
		s       domain.MenuSection
		daysRaw []byte
	)
	if err := row.Scan(&s.ID, &s.Title, &s.Color, &daysRaw, &s.Position); err != nil {
		return domain.MenuSection{}, err
	}
	if err := json.Unmarshal(daysRaw, &s.Days); err != nil {
		return domain.MenuSection{}, fmt.Errorf("decode days: %w", err)
	}
	return s, nil
}

func notFoundIfZero(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orEmptyAddons(a []domain.Addon) []domain.Addon {
	if a == nil {
		return []domain.Addon{}
	}
	return a
}
