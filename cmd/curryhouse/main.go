package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"curryhouse/internal/common/logger"
	"curryhouse/internal/config"
	"curryhouse/internal/connections/database"
	"curryhouse/internal/connections/rabbitmq"
	"curryhouse/internal/connections/rediscache"
	menuhandlers "curryhouse/internal/menu/handlers"
	menurepo "curryhouse/internal/menu/repository"
	menuservice "curryhouse/internal/menu/service"
	"curryhouse/internal/notifier"
	orderhandlers "curryhouse/internal/orders/handlers"
	orderrepo "curryhouse/internal/orders/repository"
	orderservice "curryhouse/internal/orders/service"
	"curryhouse/internal/payments/gateway"
	paymenthandlers "curryhouse/internal/payments/handlers"
	reghandlers "curryhouse/internal/registrations/handlers"
	regrepo "curryhouse/internal/registrations/repository"
	"curryhouse/internal/server"
	settingshandlers "curryhouse/internal/settings/handlers"
	settingsrepo "curryhouse/internal/settings/repository"
	settingsservice "curryhouse/internal/settings/service"
	"curryhouse/internal/ticketprinter"
)

const shutdownTimeout = 10 * time.Second

func main() {
	mode := flag.String("mode", "api", "api | ticket-printer | notifier")
	migrationsDir := flag.String("migrations", "migrations", "path to migration files")
	flag.Parse()

	lg := logger.New(*mode)

	cfg, err := config.Load()
	if err != nil {
		lg.WithError(err).Fatal("config load failed")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		lg.WithError(err).Fatal("database connect failed")
	}
	defer db.Close()

	switch *mode {
	case "api":
		if err := database.Migrate(cfg.Database, *migrationsDir); err != nil {
			lg.WithError(err).Fatal("migrations failed")
		}
		lg.Info("migrations applied")
		runAPI(ctx, cfg, db, lg)
	case "ticket-printer":
		rmq := mustRabbit(cfg, lg)
		defer rmq.Close()
		w := ticketprinter.NewWorker(rmq, settingsrepo.NewSettingsRepository(db), nil, cfg.Printer.Port, lg)
		if err := w.Run(ctx); err != nil {
			lg.WithError(err).Fatal("ticket printer stopped with error")
		}
	case "notifier":
		rmq := mustRabbit(cfg, lg)
		defer rmq.Close()
		w := notifier.NewWorker(rmq, notifier.NewMailer(cfg.Mail), lg)
		if err := w.Run(ctx); err != nil {
			lg.WithError(err).Fatal("notifier stopped with error")
		}
	default:
		fmt.Fprintln(os.Stderr, "--mode must be one of: api | ticket-printer | notifier")
		os.Exit(2)
	}
}

func runAPI(ctx context.Context, cfg *config.Config, db *sql.DB, lg *logrus.Entry) {
	rmq := mustRabbit(cfg, lg)
	defer rmq.Close()
	// queues are declared up front so events published before any worker
	// has started are not lost
	if err := rmq.DeclareQueue(rabbitmq.TicketQueue, rabbitmq.TicketKeyBind); err != nil {
		lg.WithError(err).Fatal("declare ticket queue failed")
	}
	if err := rmq.DeclareQueue(rabbitmq.NotifyQueue, rabbitmq.OrderCreatedKey); err != nil {
		lg.WithError(err).Fatal("declare notify queue failed")
	}

	cache := rediscache.New(cfg.Redis)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		lg.WithError(err).Warn("redis unreachable, serving without cache")
		cache = nil
	}

	settingsRepo := settingsrepo.NewSettingsRepository(db)
	var menuCache menuservice.Cache
	var settingsCache settingsservice.Cache
	if cache != nil {
		menuCache = cache
		settingsCache = cache
	}

	menuSvc := menuservice.NewMenuService(menurepo.NewMenuRepository(db), menuCache)
	settingsSvc := settingsservice.NewSettingsService(settingsRepo, settingsCache)
	orderSvc := orderservice.NewOrderService(orderrepo.NewOrderRepository(db), rmq, settingsRepo, cfg.TaxRate, lg)

	svr := server.SetupRoutes(server.Handlers{
		Menu:          menuhandlers.NewMenuHandler(menuSvc),
		Orders:        orderhandlers.NewOrderHandler(orderSvc),
		Payments:      paymenthandlers.NewPaymentHandler(gateway.New(cfg.Gateway), lg),
		Registrations: reghandlers.NewRegistrationHandler(regrepo.NewRegistrationRepository(db)),
		Settings:      settingshandlers.NewSettingsHandler(settingsSvc),
	}, cfg.Admin)

	errCh := make(chan error, 1)
	go func() {
		lg.WithField("port", cfg.HTTP.Port).Info("http server listening")
		if err := svr.Run(cfg.HTTP.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		lg.Info("shutdown signal received")
	case err := <-errCh:
		lg.WithError(err).Fatal("http server failed")
	}

	if err := svr.Shutdown(shutdownTimeout); err != nil {
		lg.WithError(err).Error("graceful shutdown failed")
	}
	lg.Info("server stopped")
}

func mustRabbit(cfg *config.Config, lg *logrus.Entry) *rabbitmq.Client {
	rmq, err := rabbitmq.Dial(cfg.Rabbit)
	if err != nil {
		lg.WithError(err).Fatal("rabbitmq connect failed")
	}
	if err := rmq.Ping(); err != nil {
		lg.WithError(err).Fatal("rabbitmq ping failed")
	}
	return rmq
}
