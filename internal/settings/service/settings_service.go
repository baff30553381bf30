package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"curryhouse/internal/domain"
	"curryhouse/internal/settings/repository"
)

const (
	settingsCacheKey = "settings:latest"
	settingsCacheTTL = 30 * time.Second
)

type SettingsServiceInterface interface {
	Latest(ctx context.Context) (domain.Settings, error)
	List(ctx context.Context) ([]domain.Settings, error)
	Save(ctx context.Context, in domain.SettingsInput) (domain.Settings, error)

	Printer(ctx context.Context) (domain.Printer, error)
	SavePrinter(ctx context.Context, in domain.PrinterInput) (domain.Printer, error)
}

type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type SettingsService struct {
	db    repository.SettingsRepositoryInterface
	cache Cache
}

func NewSettingsService(db repository.SettingsRepositoryInterface, cache Cache) SettingsServiceInterface {
	return &SettingsService{db: db, cache: cache}
}

// Latest is polled by both the ordering page and the admin console, so
// the newest document is kept in redis for a short window.
func (s *SettingsService) Latest(ctx context.Context) (domain.Settings, error) {
	if s.cache != nil {
		var cached domain.Settings
		if err := s.cache.GetJSON(ctx, settingsCacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	st, err := s.db.Latest(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		// before anyone saves settings, every mode is open
		return domain.Settings{
			Name: "order_settings",
			Modes: map[string]bool{
				domain.TypeDineIn:   true,
				domain.TypePickup:   true,
				domain.TypeDelivery: true,
			},
		}, nil
	}
	if err != nil {
		return domain.Settings{}, err
	}
	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, settingsCacheKey, st, settingsCacheTTL)
	}
	return st, nil
}

func (s *SettingsService) List(ctx context.Context) ([]domain.Settings, error) {
	return s.db.List(ctx)
}

func (s *SettingsService) Save(ctx context.Context, in domain.SettingsInput) (domain.Settings, error) {
	for mode := range in.Modes {
		switch mode {
		case domain.TypeDineIn, domain.TypePickup, domain.TypeDelivery:
		default:
			return domain.Settings{}, fmt.Errorf("%w: unknown order mode %q", domain.ErrInvalid, mode)
		}
	}
	st, err := s.db.Create(ctx, in.Modes)
	if err != nil {
		return domain.Settings{}, err
	}
	if s.cache != nil {
		_ = s.cache.Del(ctx, settingsCacheKey)
	}
	return st, nil
}

func (s *SettingsService) Printer(ctx context.Context) (domain.Printer, error) {
	return s.db.LatestPrinter(ctx)
}

func (s *SettingsService) SavePrinter(ctx context.Context, in domain.PrinterInput) (domain.Printer, error) {
	if net.ParseIP(in.IP) == nil {
		return domain.Printer{}, fmt.Errorf("%w: %q is not a valid IP address", domain.ErrInvalid, in.IP)
	}
	return s.db.CreatePrinter(ctx, in.IP)
}
