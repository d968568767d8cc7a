package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/goliatone/go-storefront"
	"github.com/goliatone/go-storefront/checkout"
	"github.com/goliatone/go-storefront/middleware/jwtware"
	"github.com/goliatone/go-storefront/payment/stripepay"
	"github.com/goliatone/go-storefront/repository"
)

type App struct {
	config   *storefront.Config
	bunDB    *bun.DB
	repo     *repository.Manager
	checkout *checkout.Service
	srv      router.Server[*fiber.App]
	logger   *glog.BaseLogger
}

func (a *App) GetLogger(name string) storefront.Logger {
	return a.logger.GetLogger(name)
}

func (a *App) LoggerProvider() storefront.LoggerProvider {
	return storefront.LoggerProviderFunc(a.GetLogger)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("storefront"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg, err := storefront.LoadConfig()
	if err != nil {
		panic(err)
	}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	fmt.Println("============")
	fmt.Println(print.MaybeHighlightJSON(cfg.Redacted()))
	fmt.Println("============")

	app := &App{
		config: cfg,
		logger: lgr,
	}

	ctx := context.Background()

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}

	if err := WithCheckout(ctx, app); err != nil {
		panic(err)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		panic(err)
	}

	PaymentRoutes(app)

	go func() {
		if err := app.srv.Serve(cfg.Addr); err != nil {
			app.GetLogger("http").Error("server stopped", "error", err)
		}
	}()

	sig := WaitExitSignal()
	app.GetLogger("app").Info("shutting down", "signal", sig.String())

	if err := app.srv.Shutdown(ctx); err != nil {
		app.GetLogger("http").Error("shutdown failed", "error", err)
	}
	if err := app.bunDB.Close(); err != nil {
		app.GetLogger("persistence").Error("closing database failed", "error", err)
	}
}

func WithPersistence(ctx context.Context, app *App) error {
	sqldb, err := sql.Open(sqliteshim.ShimName, app.config.DatabaseDSN)
	if err != nil {
		return err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	repo := repository.NewRepositoryManager(db, storefront.ContextCustomer{})
	if err := repo.Validate(); err != nil {
		return err
	}

	if err := repo.CreateSchema(ctx); err != nil {
		return err
	}

	app.bunDB = db
	app.repo = repo
	return nil
}

func WithCheckout(_ context.Context, app *App) error {
	payments, err := stripepay.NewProvider(
		stripepay.ConfigFromPayment(app.config.Payment),
		stripepay.WithLogger(app.GetLogger("stripe")),
	)
	if err != nil {
		return err
	}

	app.checkout = checkout.NewService(
		app.repo.Carts(),
		storefront.ContextCustomer{},
		payments,
		checkout.WithConfig(checkout.ConfigFromPayment(app.config.Payment)),
		checkout.WithFulfillment(payments, app.repo.Orders()),
		checkout.WithLoggerProvider(app.LoggerProvider()),
	)
	return nil
}

func WithHTTPServer(_ context.Context, app *App) error {
	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return fiber.New(fiber.Config{
			UnescapePath:      true,
			EnablePrintRoutes: true,
			StrictRouting:     false,
		})
	})

	app.srv = srv
	return nil
}

func PaymentRoutes(app *App) {
	jwtCfg := jwtware.ConfigFromJWT(app.config.JWT)
	jwtCfg.Logger = app.GetLogger("jwt")

	controller := checkout.NewHTTPController(app.checkout, checkout.HTTPConfig{})
	controller.RegisterRoutes(app.srv.Router().Group("/payment"), jwtware.New(jwtCfg))
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
