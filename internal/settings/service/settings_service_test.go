package service

import (
	"context"
	"errors"
	"testing"

	"curryhouse/internal/domain"
)

type fakeSettingsRepo struct {
	history  []domain.Settings
	printers []domain.Printer
}

func (f *fakeSettingsRepo) Latest(ctx context.Context) (domain.Settings, error) {
	if len(f.history) == 0 {
		return domain.Settings{}, domain.ErrNotFound
	}
	return f.history[len(f.history)-1], nil
}

func (f *fakeSettingsRepo) List(ctx context.Context) ([]domain.Settings, error) {
	return f.history, nil
}

func (f *fakeSettingsRepo) Create(ctx context.Context, modes map[string]bool) (domain.Settings, error) {
	st := domain.Settings{ID: len(f.history) + 1, Name: "order_settings", Modes: modes}
	f.history = append(f.history, st)
	return st, nil
}

func (f *fakeSettingsRepo) LatestPrinter(ctx context.Context) (domain.Printer, error) {
	if len(f.printers) == 0 {
		return domain.Printer{}, domain.ErrNotFound
	}
	return f.printers[len(f.printers)-1], nil
}

func (f *fakeSettingsRepo) CreatePrinter(ctx context.Context, ip string) (domain.Printer, error) {
	p := domain.Printer{ID: len(f.printers) + 1, IP: ip}
	f.printers = append(f.printers, p)
	return p, nil
}

func TestLatestDefaultsToAllModesOpen(t *testing.T) {
	svc := NewSettingsService(&fakeSettingsRepo{}, nil)

	st, err := svc.Latest(context.Background())
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	for _, mode := range []string{domain.TypeDineIn, domain.TypePickup, domain.TypeDelivery} {
		if !st.Modes[mode] {
			t.Fatalf("mode %s should default to open: %+v", mode, st.Modes)
		}
	}
}

func TestSaveLatestWins(t *testing.T) {
	repo := &fakeSettingsRepo{}
	svc := NewSettingsService(repo, nil)
	ctx := context.Background()

	if _, err := svc.Save(ctx, domain.SettingsInput{Modes: map[string]bool{domain.TypeDelivery: true}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := svc.Save(ctx, domain.SettingsInput{Modes: map[string]bool{domain.TypeDelivery: false}}); err != nil {
		t.Fatalf("save: %v", err)
	}

	st, err := svc.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if st.Modes[domain.TypeDelivery] {
		t.Fatalf("latest settings should have delivery off: %+v", st.Modes)
	}

	history, _ := svc.List(ctx)
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
}

func TestSaveRejectsUnknownMode(t *testing.T) {
	svc := NewSettingsService(&fakeSettingsRepo{}, nil)

	_, err := svc.Save(context.Background(), domain.SettingsInput{Modes: map[string]bool{"drive-thru": true}})
	if !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected invalid, got %v", err)
	}
}

func TestSavePrinterValidatesIP(t *testing.T) {
	repo := &fakeSettingsRepo{}
	svc := NewSettingsService(repo, nil)
	ctx := context.Background()

	if _, err := svc.SavePrinter(ctx, domain.PrinterInput{IP: "not-an-ip"}); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected invalid, got %v", err)
	}

	p, err := svc.SavePrinter(ctx, domain.PrinterInput{IP: "192.168.1.50"})
	if err != nil {
		t.Fatalf("save printer: %v", err)
	}
	if p.IP != "192.168.1.50" {
		t.Fatalf("printer ip = %q", p.IP)
	}

	latest, err := svc.Printer(ctx)
	if err != nil {
		t.Fatalf("printer: %v", err)
	}
	if latest.IP != "192.168.1.50" {
		t.Fatalf("latest printer ip = %q", latest.IP)
	}
}
