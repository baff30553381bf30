package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"curryhouse/internal/domain"
	"curryhouse/internal/menu/repository"
)

const (
	menuCacheTTL = time.Minute
	menuCacheKey = "menu:day:"
)

type MenuServiceInterface interface {
	MenuForDay(ctx context.Context, day string) ([]domain.MenuSection, error)
	AllSections(ctx context.Context) ([]domain.MenuSection, error)
	CreateSection(ctx context.Context, in domain.SectionInput) (int, error)
	UpdateSection(ctx context.Context, id int, in domain.SectionInput) error
	DeleteSection(ctx context.Context, id int) error
	AddItem(ctx context.Context, sectionID int, in domain.ItemInput) (domain.MenuSection, error)
	UpdateItem(ctx context.Context, sectionID, itemID int, in domain.ItemInput) (domain.MenuSection, error)
	DeleteItem(ctx context.Context, sectionID, itemID int) (domain.MenuSection, error)
}

// Cache is the slice of the redis client the menu service needs.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type MenuService struct {
	db    repository.MenuRepositoryInterface
	cache Cache
}

func NewMenuService(db repository.MenuRepositoryInterface, cache Cache) MenuServiceInterface {
	return &MenuService{db: db, cache: cache}
}

// MenuForDay returns the sections served on the given weekday. An empty
// day means "today". The customer site polls this, so results are served
// from redis when fresh.
func (s *MenuService) MenuForDay(ctx context.Context, day string) ([]domain.MenuSection, error) {
	day = strings.ToLower(strings.TrimSpace(day))
	if day == "" {
		day = strings.ToLower(time.Now().Weekday().String())
	}
	if !validDay(day) {
		return nil, fmt.Errorf("%w: unknown day %q", domain.ErrInvalid, day)
	}

	key := menuCacheKey + day
	if s.cache != nil {
		var cached []domain.MenuSection
		if err := s.cache.GetJSON(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	sections, err := s.db.ListSections(ctx, day)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, key, sections, menuCacheTTL)
	}
	return sections, nil
}

func (s *MenuService) AllSections(ctx context.Context) ([]domain.MenuSection, error) {
	return s.db.ListSections(ctx, "")
}

func (s *MenuService) CreateSection(ctx context.Context, in domain.SectionInput) (int, error) {
	in, err := normalizeSection(in)
	if err != nil {
		return 0, err
	}
	id, err := s.db.CreateSection(ctx, in)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx)
	return id, nil
}

func (s *MenuService) UpdateSection(ctx context.Context, id int, in domain.SectionInput) error {
	in, err := normalizeSection(in)
	if err != nil {
		return err
	}
	if err := s.db.UpdateSection(ctx, id, in); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// normalizeSection lowercases the day names so they match the menu's
// day filter, which compares lowercase weekdays.
func normalizeSection(in domain.SectionInput) (domain.SectionInput, error) {
	if strings.TrimSpace(in.Title) == "" {
		return in, fmt.Errorf("%w: section title is required", domain.ErrInvalid)
	}
	for i, d := range in.Days {
		in.Days[i] = strings.ToLower(strings.TrimSpace(d))
		if !validDay(in.Days[i]) {
			return in, fmt.Errorf("%w: unknown day %q", domain.ErrInvalid, d)
		}
	}
	return in, nil
}

func (s *MenuService) DeleteSection(ctx context.Context, id int) error {
	if err := s.db.DeleteSection(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// AddItem normalizes the item and returns the full refreshed section, so
// the admin console can swap its local copy in one go.
func (s *MenuService) AddItem(ctx context.Context, sectionID int, in domain.ItemInput) (domain.MenuSection, error) {
	item, err := normalizeItem(in)
	if err != nil {
		return domain.MenuSection{}, err
	}
	if _, err := s.db.AddItem(ctx, sectionID, item); err != nil {
		return domain.MenuSection{}, err
	}
	s.invalidate(ctx)
	return s.db.GetSection(ctx, sectionID)
}

func (s *MenuService) UpdateItem(ctx context.Context, sectionID, itemID int, in domain.ItemInput) (domain.MenuSection, error) {
	item, err := normalizeItem(in)
	if err != nil {
		return domain.MenuSection{}, err
	}
	if err := s.db.UpdateItem(ctx, sectionID, itemID, item); err != nil {
		return domain.MenuSection{}, err
	}
	s.invalidate(ctx)
	return s.db.GetSection(ctx, sectionID)
}

func (s *MenuService) DeleteItem(ctx context.Context, sectionID, itemID int) (domain.MenuSection, error) {
	if err := s.db.DeleteItem(ctx, sectionID, itemID); err != nil {
		return domain.MenuSection{}, err
	}
	s.invalidate(ctx)
	return s.db.GetSection(ctx, sectionID)
}

func (s *MenuService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	keys := make([]string, 0, 7)
	for _, d := range weekdays {
		keys = append(keys, menuCacheKey+d)
	}
	_ = s.cache.Del(ctx, keys...)
}

func normalizeItem(in domain.ItemInput) (domain.MenuItem, error) {
	if strings.TrimSpace(in.Name) == "" {
		return domain.MenuItem{}, fmt.Errorf("%w: item name is required", domain.ErrInvalid)
	}
	if in.Price <= 0 {
		return domain.MenuItem{}, fmt.Errorf("%w: item price must be positive", domain.ErrInvalid)
	}

	addons := make([]domain.Addon, 0, len(in.Addons))
	for _, a := range in.Addons {
		a.Name = NormalizeAddonName(a.Name)
		if a.Name == "" {
			continue
		}
		addons = append(addons, a)
	}

	return domain.MenuItem{
		Name:        strings.TrimSpace(in.Name),
		Price:       in.Price,
		SpiceLevels: in.SpiceLevels,
		Addons:      addons,
		Position:    in.Position,
	}, nil
}

// NormalizeAddonName strips the "Add " prefix the menu editor tends to
// type, so "Add Extra Paneer" is stored and displayed as "Extra Paneer".
func NormalizeAddonName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "Add ")
	return strings.TrimSpace(name)
}

var weekdays = []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

func validDay(d string) bool {
	for _, w := range weekdays {
		if d == w {
			return true
		}
	}
	return false
}
